package middleware

import (
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/DanieleGelsomino/djscovery-sub000/internal/pkg/metrics"
)

// PrometheusMiddleware はHTTPリクエストの件数とレイテンシを記録するミドルウェア
// パスラベルにはルートパターン（/api/v1/events/:id）を使い、カーディナリティを抑える
func PrometheusMiddleware(m *metrics.Metrics) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			err := next(c)

			status := c.Response().Status
			if he, ok := err.(*echo.HTTPError); ok {
				status = he.Code
			}

			path := c.Path()
			if path == "" {
				// ルートに一致しなかったリクエスト（404など）
				path = "unmatched"
			}
			method := c.Request().Method

			m.HTTPRequestsTotal.WithLabelValues(method, path, strconv.Itoa(status)).Inc()
			m.HTTPRequestDuration.WithLabelValues(method, path).Observe(time.Since(start).Seconds())

			return err
		}
	}
}
