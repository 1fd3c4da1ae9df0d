package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/DanieleGelsomino/djscovery-sub000/internal/api"
	"github.com/DanieleGelsomino/djscovery-sub000/internal/application"
)

// CheckinHandler は入場チェックインAPIのハンドラー
type CheckinHandler struct {
	service CheckinServiceInterface
}

// NewCheckinHandler は新しいCheckinHandlerを作成する
func NewCheckinHandler(s CheckinServiceInterface) *CheckinHandler {
	return &CheckinHandler{service: s}
}

type CheckinRequest struct {
	Token string `json:"token" validate:"required"`
	// 0 は1枚、-1 は残り全員
	Count int `json:"count" validate:"min=-1,max=10"`
}

type CheckinResponse struct {
	BookingID      string `json:"booking_id"`
	CheckedInCount int    `json:"checked_in_count"`
	Remaining      int    `json:"remaining"`
	State          string `json:"state"`
}

func toCheckinResponse(r *application.CheckinResult) CheckinResponse {
	return CheckinResponse{
		BookingID:      r.BookingID,
		CheckedInCount: r.CheckedInCount,
		Remaining:      r.Remaining,
		State:          string(r.State),
	}
}

// CheckIn godoc
// @Summary チェックインを実行
// @Description QRトークンを検証しチェックイン済み枚数を進めます（冪等ではありません）
// @Tags checkin
// @Accept json
// @Produce json
// @Param request body CheckinRequest true "チェックイン情報"
// @Success 200 {object} CheckinResponse
// @Failure 401 {object} api.ErrorResponse "トークン不正・期限切れ"
// @Failure 404 {object} api.ErrorResponse
// @Failure 409 {object} api.ErrorResponse "枚数超過・チェックイン済み"
// @Router /checkin [post]
func (h *CheckinHandler) CheckIn(c echo.Context) error {
	var req CheckinRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "無効なリクエスト")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	result, err := h.service.CheckIn(c.Request().Context(), req.Token, req.Count)
	if err != nil {
		return api.DomainError(err)
	}
	return c.JSON(http.StatusOK, toCheckinResponse(result))
}

// Undo godoc
// @Summary 直前のチェックインを取り消す
// @Tags checkin
// @Accept json
// @Produce json
// @Param request body CheckinRequest true "取り消し情報"
// @Success 200 {object} CheckinResponse
// @Failure 401 {object} api.ErrorResponse
// @Failure 404 {object} api.ErrorResponse
// @Failure 409 {object} api.ErrorResponse "取り消せるチェックインがない"
// @Router /checkin/undo [post]
func (h *CheckinHandler) Undo(c echo.Context) error {
	var req CheckinRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "無効なリクエスト")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	result, err := h.service.Undo(c.Request().Context(), req.Token, req.Count)
	if err != nil {
		return api.DomainError(err)
	}
	return c.JSON(http.StatusOK, toCheckinResponse(result))
}
