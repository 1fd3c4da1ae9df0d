package handler

import (
	"context"

	"github.com/DanieleGelsomino/djscovery-sub000/internal/application"
	"github.com/DanieleGelsomino/djscovery-sub000/internal/domain/booking"
	"github.com/DanieleGelsomino/djscovery-sub000/internal/domain/event"
)

// EventServiceInterface はイベントサービスのインターフェース
type EventServiceInterface interface {
	CreateEvent(ctx context.Context, input application.CreateEventInput) (*event.Event, error)
	GetEvent(ctx context.Context, id string) (*event.Event, error)
	ListEvents(ctx context.Context, limit, offset int) ([]*event.Event, error)
	ListPublishedEvents(ctx context.Context, limit, offset int) ([]*event.Event, error)
	UpdateEvent(ctx context.Context, input application.UpdateEventInput) (*event.Event, error)
	PublishEvent(ctx context.Context, id string) (*event.Event, error)
	ArchiveEvent(ctx context.Context, id string) (*event.Event, error)
	DeleteEvent(ctx context.Context, id string) error
}

// BookingServiceInterface は予約サービスのインターフェース
type BookingServiceInterface interface {
	CreateBooking(ctx context.Context, input application.CreateBookingInput) (*application.CreateBookingResult, error)
	GetBooking(ctx context.Context, id string) (*booking.Booking, error)
	GetEventBookings(ctx context.Context, eventID string, limit, offset int) ([]*booking.Booking, error)
}

// CheckinServiceInterface はチェックインサービスのインターフェース
type CheckinServiceInterface interface {
	CheckIn(ctx context.Context, token string, n int) (*application.CheckinResult, error)
	Undo(ctx context.Context, token string, n int) (*application.CheckinResult, error)
}

// TicketRendererInterface はQRチケット描画のインターフェース
type TicketRendererInterface interface {
	RenderTicket(bookingID, eventID string) ([]byte, error)
}
