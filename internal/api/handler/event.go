package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/DanieleGelsomino/djscovery-sub000/internal/api"
	"github.com/DanieleGelsomino/djscovery-sub000/internal/application"
	"github.com/DanieleGelsomino/djscovery-sub000/internal/domain/event"
)

// EventHandler はイベントAPIのハンドラー
type EventHandler struct {
	service EventServiceInterface
}

// NewEventHandler は新しいEventHandlerを作成する
func NewEventHandler(s EventServiceInterface) *EventHandler {
	return &EventHandler{service: s}
}

type CreateEventRequest struct {
	Title       string    `json:"title" validate:"required" example:"Summer Closing Party"`
	Description string    `json:"description" example:"シーズン最終イベント"`
	Location    string    `json:"location" example:"Lido di Venezia"`
	StartAt     time.Time `json:"start_at" validate:"required"`
	Capacity    int       `json:"capacity" validate:"min=0" example:"200"`
	Published   bool      `json:"published"`
}

type UpdateEventRequest struct {
	Title       string    `json:"title" validate:"required"`
	Description string    `json:"description"`
	Location    string    `json:"location"`
	StartAt     time.Time `json:"start_at" validate:"required"`
	Capacity    int       `json:"capacity" validate:"min=0"`
}

type EventResponse struct {
	ID            string    `json:"id"`
	Title         string    `json:"title"`
	Description   string    `json:"description,omitempty"`
	Location      string    `json:"location,omitempty"`
	StartAt       time.Time `json:"start_at"`
	Status        string    `json:"status"`
	Capacity      int       `json:"capacity"`
	BookingsCount int       `json:"bookings_count"`
	SoldOut       bool      `json:"sold_out"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

func toEventResponse(e *event.Event) EventResponse {
	return EventResponse{
		ID:            e.ID,
		Title:         e.Title,
		Description:   e.Description,
		Location:      e.Location,
		StartAt:       e.StartAt,
		Status:        string(e.Status),
		Capacity:      e.Capacity,
		BookingsCount: e.BookingsCount,
		SoldOut:       e.SoldOut,
		CreatedAt:     e.CreatedAt,
		UpdatedAt:     e.UpdatedAt,
	}
}

func toEventResponses(events []*event.Event) []EventResponse {
	resp := make([]EventResponse, len(events))
	for i, e := range events {
		resp[i] = toEventResponse(e)
	}
	return resp
}

// Create godoc
// @Summary イベントを作成（管理）
// @Tags events
// @Accept json
// @Produce json
// @Param request body CreateEventRequest true "イベント情報"
// @Success 201 {object} EventResponse
// @Failure 400 {object} api.ErrorResponse
// @Router /admin/events [post]
func (h *EventHandler) Create(c echo.Context) error {
	var req CreateEventRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "無効なリクエスト")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	e, err := h.service.CreateEvent(c.Request().Context(), application.CreateEventInput{
		Title:       req.Title,
		Description: req.Description,
		Location:    req.Location,
		StartAt:     req.StartAt,
		Capacity:    req.Capacity,
		Published:   req.Published,
	})
	if err != nil {
		return api.DomainError(err)
	}
	return c.JSON(http.StatusCreated, toEventResponse(e))
}

// List godoc
// @Summary 公開中のイベント一覧を取得
// @Tags events
// @Produce json
// @Param limit query int false "取得件数" default(20)
// @Param offset query int false "オフセット" default(0)
// @Success 200 {array} EventResponse
// @Router /events [get]
func (h *EventHandler) List(c echo.Context) error {
	limit, _ := strconv.Atoi(c.QueryParam("limit"))
	offset, _ := strconv.Atoi(c.QueryParam("offset"))

	events, err := h.service.ListPublishedEvents(c.Request().Context(), limit, offset)
	if err != nil {
		return api.DomainError(err)
	}
	return c.JSON(http.StatusOK, toEventResponses(events))
}

// ListAll godoc
// @Summary 全イベント一覧を取得（管理）
// @Tags events
// @Produce json
// @Param limit query int false "取得件数" default(20)
// @Param offset query int false "オフセット" default(0)
// @Success 200 {array} EventResponse
// @Router /admin/events [get]
func (h *EventHandler) ListAll(c echo.Context) error {
	limit, _ := strconv.Atoi(c.QueryParam("limit"))
	offset, _ := strconv.Atoi(c.QueryParam("offset"))

	events, err := h.service.ListEvents(c.Request().Context(), limit, offset)
	if err != nil {
		return api.DomainError(err)
	}
	return c.JSON(http.StatusOK, toEventResponses(events))
}

// GetByID godoc
// @Summary イベントを取得
// @Tags events
// @Produce json
// @Param id path string true "イベントID"
// @Success 200 {object} EventResponse
// @Failure 404 {object} api.ErrorResponse
// @Router /events/{id} [get]
func (h *EventHandler) GetByID(c echo.Context) error {
	e, err := h.service.GetEvent(c.Request().Context(), c.Param("id"))
	if err != nil {
		return api.DomainError(err)
	}
	return c.JSON(http.StatusOK, toEventResponse(e))
}

// Update godoc
// @Summary イベントを更新（管理）
// @Tags events
// @Accept json
// @Produce json
// @Param id path string true "イベントID"
// @Param request body UpdateEventRequest true "イベント情報"
// @Success 200 {object} EventResponse
// @Failure 400 {object} api.ErrorResponse
// @Failure 404 {object} api.ErrorResponse
// @Router /admin/events/{id} [put]
func (h *EventHandler) Update(c echo.Context) error {
	var req UpdateEventRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "無効なリクエスト")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	e, err := h.service.UpdateEvent(c.Request().Context(), application.UpdateEventInput{
		ID:          c.Param("id"),
		Title:       req.Title,
		Description: req.Description,
		Location:    req.Location,
		StartAt:     req.StartAt,
		Capacity:    req.Capacity,
	})
	if err != nil {
		return api.DomainError(err)
	}
	return c.JSON(http.StatusOK, toEventResponse(e))
}

// Publish godoc
// @Summary イベントを公開（管理）
// @Tags events
// @Produce json
// @Param id path string true "イベントID"
// @Success 200 {object} EventResponse
// @Failure 404 {object} api.ErrorResponse
// @Router /admin/events/{id}/publish [post]
func (h *EventHandler) Publish(c echo.Context) error {
	e, err := h.service.PublishEvent(c.Request().Context(), c.Param("id"))
	if err != nil {
		return api.DomainError(err)
	}
	return c.JSON(http.StatusOK, toEventResponse(e))
}

// Archive godoc
// @Summary イベントをアーカイブ（管理）
// @Tags events
// @Produce json
// @Param id path string true "イベントID"
// @Success 200 {object} EventResponse
// @Failure 404 {object} api.ErrorResponse
// @Router /admin/events/{id}/archive [post]
func (h *EventHandler) Archive(c echo.Context) error {
	e, err := h.service.ArchiveEvent(c.Request().Context(), c.Param("id"))
	if err != nil {
		return api.DomainError(err)
	}
	return c.JSON(http.StatusOK, toEventResponse(e))
}

// Delete godoc
// @Summary イベントを削除（管理）
// @Tags events
// @Param id path string true "イベントID"
// @Success 204
// @Failure 404 {object} api.ErrorResponse
// @Router /admin/events/{id} [delete]
func (h *EventHandler) Delete(c echo.Context) error {
	if err := h.service.DeleteEvent(c.Request().Context(), c.Param("id")); err != nil {
		return api.DomainError(err)
	}
	return c.NoContent(http.StatusNoContent)
}
