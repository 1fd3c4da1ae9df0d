package middleware

import (
	"crypto/subtle"
	"os"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
)

// MetricsBasicAuth は /metrics エンドポイントのBasic認証ミドルウェア
// METRICS_USER / METRICS_PASSWORD が両方設定されている場合のみ認証を要求し、
// 未設定時は素通しにする（ローカル開発用）
func MetricsBasicAuth() echo.MiddlewareFunc {
	user := os.Getenv("METRICS_USER")
	pass := os.Getenv("METRICS_PASSWORD")
	if user == "" || pass == "" {
		return passthrough
	}

	return middleware.BasicAuth(func(u, p string, c echo.Context) (bool, error) {
		userOK := subtle.ConstantTimeCompare([]byte(u), []byte(user)) == 1
		passOK := subtle.ConstantTimeCompare([]byte(p), []byte(pass)) == 1
		return userOK && passOK, nil
	})
}

func passthrough(next echo.HandlerFunc) echo.HandlerFunc {
	return next
}
