package api

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/DanieleGelsomino/djscovery-sub000/internal/domain/booking"
	"github.com/DanieleGelsomino/djscovery-sub000/internal/domain/event"
	"github.com/DanieleGelsomino/djscovery-sub000/internal/pkg/logger"
	"github.com/DanieleGelsomino/djscovery-sub000/internal/pkg/qrtoken"
)

// ErrorResponse はエラーレスポンスの統一フォーマット
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

// CodeInternal は内部エラーのエラーコード
const CodeInternal = "internal"

// internalMessage は内部エラー時にクライアントへ返す汎用メッセージ
// ストアのエラー詳細は決して外部へ出さない
const internalMessage = "内部エラーが発生しました。しばらくしてから再度お試しください"

// domainStatus はドメインエラーをHTTPステータスとエラーコードに対応付ける
func domainStatus(err error) (int, string) {
	switch {
	// 予約枠確保プロトコル
	case errors.Is(err, event.ErrEventNotFound):
		return http.StatusNotFound, "event_not_found"
	case errors.Is(err, event.ErrEventNotPublished):
		return http.StatusConflict, "event_not_published"
	case errors.Is(err, event.ErrSoldOut):
		return http.StatusConflict, "sold_out"
	case errors.Is(err, event.ErrCapacityExceeded):
		return http.StatusConflict, "capacity_exceeded"
	case errors.Is(err, booking.ErrInvalidQuantity):
		return http.StatusBadRequest, "invalid_quantity"

	// チェックインカウンタープロトコル
	case errors.Is(err, booking.ErrBookingNotFound):
		return http.StatusNotFound, "not_found"
	case errors.Is(err, booking.ErrTokenMismatch):
		return http.StatusConflict, "token_mismatch"
	case errors.Is(err, booking.ErrAlreadyFullyCheckedIn):
		return http.StatusConflict, "already_fully_checked_in"
	case errors.Is(err, booking.ErrExceedsQuantity):
		return http.StatusConflict, "exceeds_quantity"
	case errors.Is(err, booking.ErrNothingToUndo):
		return http.StatusConflict, "nothing_to_undo"
	case errors.Is(err, booking.ErrInvalidCheckInCount):
		return http.StatusBadRequest, "invalid_count"

	// トークン検証
	case errors.Is(err, qrtoken.ErrTokenExpired):
		return http.StatusUnauthorized, "token_expired"
	case errors.Is(err, qrtoken.ErrInvalidToken):
		return http.StatusUnauthorized, "invalid_token"

	// その他の検証エラー
	case errors.Is(err, event.ErrTitleRequired),
		errors.Is(err, event.ErrInvalidCapacity),
		errors.Is(err, event.ErrInvalidStatus),
		errors.Is(err, event.ErrEventArchived),
		errors.Is(err, booking.ErrEventIDRequired):
		return http.StatusBadRequest, "validation_failed"
	}

	// 競合リトライ上限・ストア障害などは全て内部エラーに正規化する
	return http.StatusInternalServerError, CodeInternal
}

// DomainError はドメインエラーをHTTPエラーに変換する
// 業務エラーはコード付きでそのまま、それ以外は内部エラーとして正規化される
func DomainError(err error) *echo.HTTPError {
	status, code := domainStatus(err)
	if status == http.StatusInternalServerError {
		return echo.NewHTTPError(status, ErrorResponse{Error: internalMessage, Code: CodeInternal}).SetInternal(err)
	}
	return echo.NewHTTPError(status, ErrorResponse{Error: err.Error(), Code: code})
}

// CustomHTTPErrorHandler はカスタムエラーハンドラー
func CustomHTTPErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	var (
		status = http.StatusInternalServerError
		body   = ErrorResponse{Error: internalMessage, Code: CodeInternal}
	)

	var he *echo.HTTPError
	if errors.As(err, &he) {
		status = he.Code
		switch m := he.Message.(type) {
		case ErrorResponse:
			body = m
		case string:
			body = ErrorResponse{Error: m, Code: codeForStatus(status)}
		default:
			body = ErrorResponse{Error: http.StatusText(status), Code: codeForStatus(status)}
		}
	}

	// 5xx エラーはログに残す（内部詳細はレスポンスに含めない）
	if status >= 500 {
		logger.Error("サーバーエラー",
			zap.Int("status", status),
			zap.String("path", c.Request().URL.Path),
			zap.Error(err),
		)
		body = ErrorResponse{Error: internalMessage, Code: CodeInternal}
	}

	if err := c.JSON(status, body); err != nil {
		logger.Error("エラーレスポンス送信失敗", zap.Error(err))
	}
}

func codeForStatus(status int) string {
	switch {
	case status == http.StatusNotFound:
		return "not_found"
	case status == http.StatusUnauthorized:
		return "unauthorized"
	case status >= 400 && status < 500:
		return "bad_request"
	default:
		return CodeInternal
	}
}
