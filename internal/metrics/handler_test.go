package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
)

// TestHandler_ServesMetrics はメトリクスがテキスト形式で返ることを検証する。
func TestHandler_ServesMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg)
	c.RecordWebhookEvent("invoice.payment_failed", "applied")

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	w := httptest.NewRecorder()
	Handler(reg).ServeHTTP(w, req)

	resp := w.Result()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("status = %d, want %d", resp.StatusCode, http.StatusOK)
	}

	body, _ := io.ReadAll(resp.Body)
	if !strings.Contains(string(body), "pianoclass_webhook_events_total") {
		t.Error("response should contain pianoclass_webhook_events_total metric")
	}
}

// TestStatusRecorder_RecordsWrittenStatus はレスポンスのステータスコードが記録されることを検証する。
func TestStatusRecorder_RecordsWrittenStatus(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg)

	handler := StatusRecorder(c)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/missing" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.Write([]byte("ok"))
	}))

	for _, path := range []string{"/ok", "/missing", "/missing"} {
		handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, path, nil))
	}

	mf := findMetricFamily(t, reg, "pianoclass_http_status_total")
	got := map[string]float64{}
	for _, m := range mf.GetMetric() {
		got[labelValue(m, "status_code")] = m.GetCounter().GetValue()
	}
	if got["200"] != 1 || got["404"] != 2 {
		t.Errorf("http_status_total = %v, want 200:1 404:2", got)
	}
}
