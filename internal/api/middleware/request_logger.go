package middleware

import (
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/DanieleGelsomino/djscovery-sub000/internal/pkg/logger"
)

// RequestLogger はリクエスト単位の構造化ログを出力するミドルウェア
// ヘルスチェックはログを汚すだけなので出力しない
func RequestLogger() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			err := next(c)

			req := c.Request()
			if req.URL.Path == "/api/v1/health" {
				return err
			}

			res := c.Response()
			fields := []zap.Field{
				zap.String("request_id", requestID(c)),
				zap.String("method", req.Method),
				zap.String("path", req.URL.Path),
				zap.Int("status", res.Status),
				zap.Duration("latency", time.Since(start)),
				zap.String("remote_ip", c.RealIP()),
			}
			if q := req.URL.RawQuery; q != "" {
				fields = append(fields, zap.String("query", q))
			}
			if err != nil {
				fields = append(fields, zap.Error(err))
			}

			switch {
			case res.Status >= 500 || err != nil:
				logger.Error("リクエスト失敗", fields...)
			case res.Status >= 400:
				logger.Warn("リクエスト拒否", fields...)
			default:
				logger.Info("リクエスト完了", fields...)
			}
			return err
		}
	}
}

func requestID(c echo.Context) string {
	if id := c.Request().Header.Get(echo.HeaderXRequestID); id != "" {
		return id
	}
	return c.Response().Header().Get(echo.HeaderXRequestID)
}
