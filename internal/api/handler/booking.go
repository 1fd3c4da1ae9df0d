package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/DanieleGelsomino/djscovery-sub000/internal/api"
	"github.com/DanieleGelsomino/djscovery-sub000/internal/application"
	"github.com/DanieleGelsomino/djscovery-sub000/internal/domain/booking"
)

// BookingHandler は予約APIのハンドラー
type BookingHandler struct {
	service  BookingServiceInterface
	renderer TicketRendererInterface
}

// NewBookingHandler は新しいBookingHandlerを作成する
func NewBookingHandler(s BookingServiceInterface, renderer TicketRendererInterface) *BookingHandler {
	return &BookingHandler{service: s, renderer: renderer}
}

type CreateBookingRequest struct {
	EventID  string `json:"event_id" validate:"required" example:"550e8400-e29b-41d4-a716-446655440000"`
	Quantity int    `json:"quantity" validate:"min=0,max=10" example:"2"`
	Name     string `json:"name" validate:"required" example:"Mario"`
	Surname  string `json:"surname" example:"Rossi"`
	Email    string `json:"email" validate:"required,email" example:"mario.rossi@example.com"`
	Phone    string `json:"phone" example:"+39 333 1234567"`
}

type CreateBookingResponse struct {
	ID            string `json:"id"`
	BookingsCount int    `json:"bookings_count"`
	SoldOut       bool   `json:"sold_out"`
}

type BookingResponse struct {
	ID             string    `json:"id"`
	EventID        string    `json:"event_id"`
	Name           string    `json:"name"`
	Surname        string    `json:"surname,omitempty"`
	Email          string    `json:"email"`
	Phone          string    `json:"phone,omitempty"`
	Quantity       int       `json:"quantity"`
	CheckedInCount int       `json:"checked_in_count"`
	Status         string    `json:"status"`
	CreatedAt      time.Time `json:"created_at"`
}

func toBookingResponse(b *booking.Booking) BookingResponse {
	return BookingResponse{
		ID:             b.ID,
		EventID:        b.EventID,
		Name:           b.Name,
		Surname:        b.Surname,
		Email:          b.Email,
		Phone:          b.Phone,
		Quantity:       b.Quantity,
		CheckedInCount: b.CheckedInCount,
		Status:         string(b.Status),
		CreatedAt:      b.CreatedAt,
	}
}

// Create godoc
// @Summary 予約を作成
// @Description イベントの残り枠を確保して予約を作成します
// @Tags bookings
// @Accept json
// @Produce json
// @Param request body CreateBookingRequest true "予約情報"
// @Success 201 {object} CreateBookingResponse
// @Failure 400 {object} api.ErrorResponse
// @Failure 404 {object} api.ErrorResponse "イベントが存在しない"
// @Failure 409 {object} api.ErrorResponse "売り切れ・枠数超過・非公開"
// @Router /bookings [post]
func (h *BookingHandler) Create(c echo.Context) error {
	var req CreateBookingRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "無効なリクエスト")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	result, err := h.service.CreateBooking(c.Request().Context(), application.CreateBookingInput{
		EventID:  req.EventID,
		Quantity: req.Quantity,
		Name:     req.Name,
		Surname:  req.Surname,
		Email:    req.Email,
		Phone:    req.Phone,
	})
	if err != nil {
		return api.DomainError(err)
	}

	return c.JSON(http.StatusCreated, CreateBookingResponse{
		ID:            result.Booking.ID,
		BookingsCount: result.BookingsCount,
		SoldOut:       result.SoldOut,
	})
}

// GetByID godoc
// @Summary 予約を取得
// @Tags bookings
// @Produce json
// @Param id path string true "予約ID"
// @Success 200 {object} BookingResponse
// @Failure 404 {object} api.ErrorResponse
// @Router /bookings/{id} [get]
func (h *BookingHandler) GetByID(c echo.Context) error {
	b, err := h.service.GetBooking(c.Request().Context(), c.Param("id"))
	if err != nil {
		return api.DomainError(err)
	}
	return c.JSON(http.StatusOK, toBookingResponse(b))
}

// GetTicket godoc
// @Summary 予約のQRチケットを取得
// @Description チェックイン用の署名付きトークンをQRコードPNGとして返します
// @Tags bookings
// @Produce png
// @Param id path string true "予約ID"
// @Success 200 {file} binary
// @Failure 404 {object} api.ErrorResponse
// @Router /bookings/{id}/qr [get]
func (h *BookingHandler) GetTicket(c echo.Context) error {
	b, err := h.service.GetBooking(c.Request().Context(), c.Param("id"))
	if err != nil {
		return api.DomainError(err)
	}

	png, err := h.renderer.RenderTicket(b.ID, b.EventID)
	if err != nil {
		return api.DomainError(err)
	}
	return c.Blob(http.StatusOK, "image/png", png)
}

// ListByEvent godoc
// @Summary イベントの予約一覧を取得（管理）
// @Tags bookings
// @Produce json
// @Param id path string true "イベントID"
// @Param limit query int false "取得件数" default(20)
// @Param offset query int false "オフセット" default(0)
// @Success 200 {array} BookingResponse
// @Router /admin/events/{id}/bookings [get]
func (h *BookingHandler) ListByEvent(c echo.Context) error {
	limit, _ := strconv.Atoi(c.QueryParam("limit"))
	offset, _ := strconv.Atoi(c.QueryParam("offset"))

	bookings, err := h.service.GetEventBookings(c.Request().Context(), c.Param("id"), limit, offset)
	if err != nil {
		return api.DomainError(err)
	}

	resp := make([]BookingResponse, len(bookings))
	for i, b := range bookings {
		resp[i] = toBookingResponse(b)
	}
	return c.JSON(http.StatusOK, resp)
}
