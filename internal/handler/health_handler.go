package handler

import (
	"net/http"
)

// HealthChecker はデータストアの疎通確認インターフェース。
// *sql.DBがそのまま満たす。
type HealthChecker interface {
	Ping() error
}

// NewHealthHandler はヘルスチェックのハンドラー関数を返す。
// DBに疎通できない場合は503を返す。
func NewHealthHandler(checker HealthChecker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := checker.Ping(); err != nil {
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}
}
