package tickets

import (
	"context"
	"fmt"

	"github.com/Domenick1991/ticketing/internal/domain"
	"github.com/Domenick1991/ticketing/internal/repository"
)

const listLimit = 100

type TicketUseCase interface {
	ListUserTickets(ctx context.Context, actor domain.Actor) ([]domain.Ticket, error)
}

type TicketService struct {
	store repository.Reader
}

func NewTicketService(store repository.Reader) *TicketService {
	return &TicketService{store: store}
}

// ListUserTickets returns the caller's tickets, newest first.
func (s *TicketService) ListUserTickets(ctx context.Context, actor domain.Actor) ([]domain.Ticket, error) {
	if !actor.Is(domain.RoleUser) {
		return nil, fmt.Errorf("%w: only customers hold tickets", domain.ErrForbidden)
	}
	return s.store.ListTicketsByUser(ctx, actor.UserID, listLimit)
}

var _ TicketUseCase = (*TicketService)(nil)
