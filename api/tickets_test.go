package api

import (
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/Domenick1991/ticketing/internal/domain"
	"github.com/Domenick1991/ticketing/internal/middleware"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestTicketHandler_listMine(t *testing.T) {
	mockService := &MockTicketUseCase{}
	handler := NewTicketHandler(mockService)

	c, w := newContext("GET", "/api/my-tickets", nil)
	middleware.SetActor(c, customer)

	list := []domain.Ticket{
		{ID: 1, TicketID: "TKT-20251221-00101", BookingID: 5, QRCode: "VEtULTIwMjUxMjIxLTAwMTAx", Status: domain.TicketStatusActive, CreatedAt: time.Date(2025, 12, 21, 10, 5, 0, 0, time.UTC)},
		{ID: 2, TicketID: "TKT-20251221-00102", BookingID: 5, QRCode: "VEtULTIwMjUxMjIxLTAwMTAy", Status: domain.TicketStatusActive, CreatedAt: time.Date(2025, 12, 21, 10, 5, 0, 0, time.UTC)},
	}
	mockService.On("ListUserTickets", mock.Anything, customer).Return(list, nil)

	handler.listMine(c)

	assert.Equal(t, http.StatusOK, w.Code)

	var response ticketListResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.Equal(t, "My tickets retrieved successfully", response.Message)
	require.Len(t, response.Data, 2)
	assert.Equal(t, "TKT-20251221-00102", response.Data[1].TicketID)
	assert.Equal(t, "active", response.Data[1].Status)
	assert.Nil(t, response.Data[0].CheckedInAt)

	mockService.AssertExpectations(t)
}

func TestTicketHandler_listMineForbidden(t *testing.T) {
	mockService := &MockTicketUseCase{}
	handler := NewTicketHandler(mockService)

	admin := domain.Actor{UserID: 1, Role: domain.RoleAdmin}
	c, w := newContext("GET", "/api/my-tickets", nil)
	middleware.SetActor(c, admin)
	mockService.On("ListUserTickets", mock.Anything, admin).Return(nil, domain.ErrForbidden)

	handler.listMine(c)

	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.JSONEq(t, `{"message":"Forbidden."}`, w.Body.String())
}
