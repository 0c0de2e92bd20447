// Package security はアプリケーションのセキュリティ機能を提供する。
//
// ContentSanitizerService はAIが生成したナラティブテキストをサニタイズし、
// マークアップ混入によるXSSリスクからクライアントを保護する。
// bluemondayライブラリを使用した許可リストベースのポリシーで、
// 生成テキストからは全てのHTMLタグを除去する。
package security

import (
	"html"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

// ContentSanitizerService はテキストサニタイズ機能のインターフェースを定義する。
// AI生成ナラティブの保存前に使用される。
type ContentSanitizerService interface {
	// Sanitize はテキストから全てのHTMLタグを除去したプレーンテキストを返す。
	// 言語モデルの出力にマークアップが混入した場合の防衛線として機能する。
	// 実体参照はデコードして返す（クライアントはJSONとして受け取るため）。
	// 空文字列の入力には空文字列を返す。
	// 同一入力に対して常に同一出力を返す（冪等）。
	Sanitize(raw string) string
}

// contentSanitizer はContentSanitizerServiceの実装。
// bluemondayのポリシーを保持し、スレッドセーフにサニタイズ処理を行う。
type contentSanitizer struct {
	policy *bluemonday.Policy
}

// NewContentSanitizer はContentSanitizerServiceの新しいインスタンスを生成する。
// StrictPolicyは全てのタグと属性を除去する。
// script, iframe, style、on*イベント属性もタグごと除去される。
func NewContentSanitizer() *contentSanitizer {
	return &contentSanitizer{
		policy: bluemonday.StrictPolicy(),
	}
}

// Sanitize はテキストから全てのHTMLタグを除去したプレーンテキストを返す。
func (s *contentSanitizer) Sanitize(raw string) string {
	stripped := s.policy.Sanitize(raw)
	// bluemondayは残存テキストをエスケープするため、実体参照を戻してから返す
	return strings.TrimSpace(html.UnescapeString(stripped))
}
