package reconcile

import (
	"errors"
	"testing"

	"github.com/go-redsync/redsync/v4"
)

func TestClassifyLockError(t *testing.T) {
	connErr := errors.New("dial tcp 127.0.0.1:6379: connect: connection refused")

	tests := []struct {
		name     string
		err      error
		wantHeld bool
	}{
		{"retries exhausted", redsync.ErrFailed, true},
		{"taken on quorum", &redsync.ErrTaken{Nodes: []int{0}}, true},
		{"redis unreachable", &redsync.RedisError{Node: 0, Err: connErr}, false},
		{"plain error", connErr, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := classifyLockError(tt.err)
			if got == nil {
				t.Fatal("classifyLockError() = nil")
			}
			if errors.Is(got, ErrLockHeld) != tt.wantHeld {
				t.Errorf("errors.Is(ErrLockHeld) = %v, want %v (err = %v)", !tt.wantHeld, tt.wantHeld, got)
			}
			if !tt.wantHeld && !errors.Is(got, tt.err) {
				t.Errorf("元のエラーを保持していない: %v", got)
			}
		})
	}
}
