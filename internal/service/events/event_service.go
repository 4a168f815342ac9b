package events

import (
	"context"
	"fmt"
	"log"

	"github.com/Domenick1991/ticketing/internal/domain"
	"github.com/Domenick1991/ticketing/internal/repository"
)

type EventUseCase interface {
	GetEvent(ctx context.Context, id int64) (*domain.Event, error)
	UpdateCapacity(ctx context.Context, actor domain.Actor, id int64, maxParticipants int) (*domain.Event, error)
}

type EventCache interface {
	GetEvent(ctx context.Context, id int64) (*domain.Event, error)
	SetEvent(ctx context.Context, event *domain.Event) error
	InvalidateEvent(ctx context.Context, id int64) error
}

type EventService struct {
	store repository.Store
	cache EventCache
}

func NewEventService(store repository.Store, cache EventCache) *EventService {
	return &EventService{store: store, cache: cache}
}

// GetEvent serves the public event page. Drafts are not public and read as
// missing.
func (s *EventService) GetEvent(ctx context.Context, id int64) (*domain.Event, error) {
	if s.cache != nil {
		if cached, err := s.cache.GetEvent(ctx, id); err == nil && cached != nil {
			return visible(cached)
		}
	}

	event, err := s.store.GetEvent(ctx, id)
	if err != nil {
		return nil, err
	}
	if s.cache != nil {
		_ = s.cache.SetEvent(ctx, event)
	}
	return visible(event)
}

func visible(event *domain.Event) (*domain.Event, error) {
	if event.Status == domain.EventStatusDraft {
		return nil, fmt.Errorf("event %d: %w", event.ID, domain.ErrNotFound)
	}
	return event, nil
}

// UpdateCapacity changes max_participants and recomputes available_tickets
// from the quantity held by pending and confirmed bookings.
func (s *EventService) UpdateCapacity(ctx context.Context, actor domain.Actor, id int64, maxParticipants int) (*domain.Event, error) {
	if !actor.Is(domain.RoleAdmin) && !actor.Is(domain.RoleOrganizer) {
		return nil, fmt.Errorf("%w: admin or organizer only", domain.ErrForbidden)
	}
	if maxParticipants < 1 {
		return nil, domain.NewValidationError("max_participants", "The max participants field must be at least 1.")
	}

	var updated *domain.Event
	err := s.store.WithinTx(ctx, func(ctx context.Context, tx repository.Tx) error {
		event, err := tx.LockEvent(ctx, id)
		if err != nil {
			return err
		}
		if !actor.Is(domain.RoleAdmin) && event.OrganizerID != actor.UserID {
			return fmt.Errorf("%w: you are not authorized to update this event", domain.ErrForbidden)
		}

		held, err := tx.SumActiveQuantity(ctx, id)
		if err != nil {
			return err
		}
		event.MaxParticipants = maxParticipants
		event.AvailableTickets = max(0, maxParticipants-held)
		if err := tx.SaveEventStock(ctx, event); err != nil {
			return fmt.Errorf("save event stock: %w", err)
		}
		updated = event
		return nil
	})
	if err != nil {
		return nil, err
	}

	log.Printf("[events] event %d capacity=%d available=%d", updated.ID, updated.MaxParticipants, updated.AvailableTickets)
	if s.cache != nil {
		if err := s.cache.InvalidateEvent(ctx, id); err != nil {
			log.Printf("[events] invalidate event %d cache: %v", id, err)
		}
	}
	return updated, nil
}

var _ EventUseCase = (*EventService)(nil)
