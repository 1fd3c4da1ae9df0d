package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/DanieleGelsomino/djscovery-sub000/internal/application"
	"github.com/DanieleGelsomino/djscovery-sub000/internal/domain/event"
)

func testEvent() *event.Event {
	return &event.Event{
		ID:            "event-1",
		Title:         "Summer Closing Party",
		Location:      "Lido di Venezia",
		StartAt:       time.Now().Add(24 * time.Hour),
		Status:        event.StatusPublished,
		Capacity:      200,
		BookingsCount: 10,
	}
}

func TestEventHandler_Create(t *testing.T) {
	e := NewTestEcho()

	t.Run("イベントを作成できる", func(t *testing.T) {
		svc := new(mockEventService)
		h := NewEventHandler(svc)
		svc.On("CreateEvent", mock.Anything, mock.MatchedBy(func(in application.CreateEventInput) bool {
			return in.Title == "Summer Closing Party" && in.Capacity == 200
		})).Return(testEvent(), nil)

		body := `{"title":"Summer Closing Party","location":"Lido di Venezia","start_at":"2026-09-01T21:00:00Z","capacity":200,"published":true}`
		req := httptest.NewRequest(http.MethodPost, "/api/v1/admin/events", strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)

		require.NoError(t, h.Create(c))
		assert.Equal(t, http.StatusCreated, rec.Code)

		var resp EventResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, "event-1", resp.ID)
		assert.Equal(t, "published", resp.Status)
		svc.AssertExpectations(t)
	})

	t.Run("タイトルなしは400", func(t *testing.T) {
		svc := new(mockEventService)
		h := NewEventHandler(svc)

		body := `{"start_at":"2026-09-01T21:00:00Z","capacity":200}`
		req := httptest.NewRequest(http.MethodPost, "/api/v1/admin/events", strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)

		err := h.Create(c)
		require.Error(t, err)
		he, ok := err.(*echo.HTTPError)
		require.True(t, ok)
		assert.Equal(t, http.StatusBadRequest, he.Code)
		svc.AssertNotCalled(t, "CreateEvent")
	})
}

func TestEventHandler_List(t *testing.T) {
	e := NewTestEcho()

	svc := new(mockEventService)
	h := NewEventHandler(svc)
	svc.On("ListPublishedEvents", mock.Anything, 0, 0).
		Return([]*event.Event{testEvent()}, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/events", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	require.NoError(t, h.List(c))
	assert.Equal(t, http.StatusOK, rec.Code)

	var resp []EventResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Len(t, resp, 1)
	assert.Equal(t, 10, resp[0].BookingsCount)
}

func TestEventHandler_GetByID(t *testing.T) {
	e := NewTestEcho()

	t.Run("イベントを取得できる", func(t *testing.T) {
		svc := new(mockEventService)
		h := NewEventHandler(svc)
		svc.On("GetEvent", mock.Anything, "event-1").Return(testEvent(), nil)

		req := httptest.NewRequest(http.MethodGet, "/", nil)
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)
		c.SetParamNames("id")
		c.SetParamValues("event-1")

		require.NoError(t, h.GetByID(c))
		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("存在しないイベントは404", func(t *testing.T) {
		svc := new(mockEventService)
		h := NewEventHandler(svc)
		svc.On("GetEvent", mock.Anything, "missing").Return(nil, event.ErrEventNotFound)

		req := httptest.NewRequest(http.MethodGet, "/", nil)
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)
		c.SetParamNames("id")
		c.SetParamValues("missing")

		err := h.GetByID(c)
		require.Error(t, err)
		he, ok := err.(*echo.HTTPError)
		require.True(t, ok)
		assert.Equal(t, http.StatusNotFound, he.Code)
	})
}

func TestEventHandler_Publish(t *testing.T) {
	e := NewTestEcho()

	svc := new(mockEventService)
	h := NewEventHandler(svc)
	published := testEvent()
	svc.On("PublishEvent", mock.Anything, "event-1").Return(published, nil)

	req := httptest.NewRequest(http.MethodPost, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues("event-1")

	require.NoError(t, h.Publish(c))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestEventHandler_Delete(t *testing.T) {
	e := NewTestEcho()

	svc := new(mockEventService)
	h := NewEventHandler(svc)
	svc.On("DeleteEvent", mock.Anything, "event-1").Return(nil)

	req := httptest.NewRequest(http.MethodDelete, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues("event-1")

	require.NoError(t, h.Delete(c))
	assert.Equal(t, http.StatusNoContent, rec.Code)
}
