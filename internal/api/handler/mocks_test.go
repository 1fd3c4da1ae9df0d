package handler

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/DanieleGelsomino/djscovery-sub000/internal/application"
	"github.com/DanieleGelsomino/djscovery-sub000/internal/domain/booking"
	"github.com/DanieleGelsomino/djscovery-sub000/internal/domain/event"
)

type mockEventService struct {
	mock.Mock
}

func (m *mockEventService) CreateEvent(ctx context.Context, input application.CreateEventInput) (*event.Event, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*event.Event), args.Error(1)
}

func (m *mockEventService) GetEvent(ctx context.Context, id string) (*event.Event, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*event.Event), args.Error(1)
}

func (m *mockEventService) ListEvents(ctx context.Context, limit, offset int) ([]*event.Event, error) {
	args := m.Called(ctx, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*event.Event), args.Error(1)
}

func (m *mockEventService) ListPublishedEvents(ctx context.Context, limit, offset int) ([]*event.Event, error) {
	args := m.Called(ctx, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*event.Event), args.Error(1)
}

func (m *mockEventService) UpdateEvent(ctx context.Context, input application.UpdateEventInput) (*event.Event, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*event.Event), args.Error(1)
}

func (m *mockEventService) PublishEvent(ctx context.Context, id string) (*event.Event, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*event.Event), args.Error(1)
}

func (m *mockEventService) ArchiveEvent(ctx context.Context, id string) (*event.Event, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*event.Event), args.Error(1)
}

func (m *mockEventService) DeleteEvent(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

type mockBookingService struct {
	mock.Mock
}

func (m *mockBookingService) CreateBooking(ctx context.Context, input application.CreateBookingInput) (*application.CreateBookingResult, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*application.CreateBookingResult), args.Error(1)
}

func (m *mockBookingService) GetBooking(ctx context.Context, id string) (*booking.Booking, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*booking.Booking), args.Error(1)
}

func (m *mockBookingService) GetEventBookings(ctx context.Context, eventID string, limit, offset int) ([]*booking.Booking, error) {
	args := m.Called(ctx, eventID, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*booking.Booking), args.Error(1)
}

type mockCheckinService struct {
	mock.Mock
}

func (m *mockCheckinService) CheckIn(ctx context.Context, token string, n int) (*application.CheckinResult, error) {
	args := m.Called(ctx, token, n)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*application.CheckinResult), args.Error(1)
}

func (m *mockCheckinService) Undo(ctx context.Context, token string, n int) (*application.CheckinResult, error) {
	args := m.Called(ctx, token, n)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*application.CheckinResult), args.Error(1)
}

type mockTicketRenderer struct {
	mock.Mock
}

func (m *mockTicketRenderer) RenderTicket(bookingID, eventID string) ([]byte, error) {
	args := m.Called(bookingID, eventID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]byte), args.Error(1)
}

// インターフェースを満たしているか確認
var (
	_ EventServiceInterface   = (*mockEventService)(nil)
	_ BookingServiceInterface = (*mockBookingService)(nil)
	_ CheckinServiceInterface = (*mockCheckinService)(nil)
	_ TicketRendererInterface = (*mockTicketRenderer)(nil)
)
