// Package security はアプリケーションのセキュリティ機能を提供する。
//
// TextSanitizer は教室オーナーや問い合わせ送信者が入力した自由記述から
// HTMLタグを除去し、プレーンテキストとして保存できる形に正規化する。
package security

import (
	"html"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

// TextSanitizer は自由記述テキストのサニタイズ機能のインターフェースを定義する。
type TextSanitizer interface {
	// Clean はHTMLタグを全て除去したプレーンテキストを返す。
	// script/styleの中身も除去する。前後の空白は取り除く。
	// 同一入力に対して常に同一出力を返す。
	Clean(raw string) string
}

// textSanitizer はTextSanitizerの実装。
// bluemondayのStrictPolicyを保持し、スレッドセーフにサニタイズ処理を行う。
type textSanitizer struct {
	policy *bluemonday.Policy
}

// NewTextSanitizer はTextSanitizerの新しいインスタンスを生成する。
func NewTextSanitizer() *textSanitizer {
	return &textSanitizer{
		policy: bluemonday.StrictPolicy(),
	}
}

// Clean はHTMLタグを除去したプレーンテキストを返す。
// 結果はエンティティを戻した生の文字列のため、HTMLに埋め込む側でエスケープすること。
func (s *textSanitizer) Clean(raw string) string {
	if raw == "" {
		return ""
	}
	return strings.TrimSpace(html.UnescapeString(s.policy.Sanitize(raw)))
}

// CleanAll はスライスの各要素にCleanを適用し、空になった要素を取り除く。
func CleanAll(s TextSanitizer, values []string) []string {
	cleaned := make([]string, 0, len(values))
	for _, v := range values {
		if c := s.Clean(v); c != "" {
			cleaned = append(cleaned, c)
		}
	}
	return cleaned
}
