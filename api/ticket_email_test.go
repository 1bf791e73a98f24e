package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/Domenick1991/ticketmail/internal/domain"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

const allowedOrigin = "https://chicago-tickets-cms.netlify.app"

// MockTicketMailUseCase is a mock implementation of ticketmail.TicketMailUseCase
type MockTicketMailUseCase struct {
	mock.Mock
}

func (m *MockTicketMailUseCase) SendBookingEmails(ctx context.Context, req domain.BookingRequest) error {
	args := m.Called(ctx, req)
	return args.Error(0)
}

func testLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

func newTestRouter(service *MockTicketMailUseCase) *gin.Engine {
	gin.SetMode(gin.TestMode)
	logger := testLogger()
	router := gin.New()
	router.Use(RequestLogger(logger))
	RegisterHealth(router)
	handler := NewTicketEmailHandler(service, NewOriginGate([]string{allowedOrigin}, logger), logger)
	handler.Register(router.Group("/api/tickets"))
	return router
}

const validBody = `{"bookingId":"b1","tickets":[{"_key":"t1","section":"stalls","row":"A","seat":"1"}]}`

var validRequest = domain.BookingRequest{
	BookingID: "b1",
	Tickets: []domain.Ticket{{
		ID: "t1", Section: "stalls", Row: "A", Seat: "1",
		Fields: map[string]any{"_key": "t1", "section": "stalls", "row": "A", "seat": "1"},
	}},
}

func TestTicketEmailHandler_send_Success(t *testing.T) {
	service := &MockTicketMailUseCase{}
	service.On("SendBookingEmails", mock.Anything, validRequest).Return(nil).Once()
	router := newTestRouter(service)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/tickets/email", strings.NewReader(validBody))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Origin", allowedOrigin)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, w.Body.String())
	assert.Equal(t, allowedOrigin, w.Header().Get("Access-Control-Allow-Origin"))
	service.AssertExpectations(t)
}

func TestTicketEmailHandler_send_NumericTicketFields(t *testing.T) {
	var got domain.BookingRequest
	service := &MockTicketMailUseCase{}
	service.On("SendBookingEmails", mock.Anything, mock.AnythingOfType("domain.BookingRequest")).
		Run(func(args mock.Arguments) { got = args.Get(1).(domain.BookingRequest) }).
		Return(nil).Once()
	router := newTestRouter(service)

	body := `{"bookingId":"b1","tickets":[{"_key":"t1","section":"stalls","row":3,"seat":12,"price":25}]}`
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/tickets/email", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	service.AssertExpectations(t)
	if assert.Len(t, got.Tickets, 1) {
		ticket := got.Tickets[0]
		assert.Equal(t, "3", ticket.Row)
		assert.Equal(t, "12", ticket.Seat)
		assert.Equal(t, json.Number("25"), ticket.Fields["price"])
	}
}

func TestTicketEmailHandler_send_UnknownOrigin(t *testing.T) {
	service := &MockTicketMailUseCase{}
	service.On("SendBookingEmails", mock.Anything, validRequest).Return(nil).Once()
	router := newTestRouter(service)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/tickets/email", strings.NewReader(validBody))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Origin", "https://evil.example")
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
}

func TestTicketEmailHandler_send_ServiceError(t *testing.T) {
	service := &MockTicketMailUseCase{}
	service.On("SendBookingEmails", mock.Anything, validRequest).
		Return(errors.New(`send "Your invoice for Carmen" to a@x.com: 550 relay rejected`)).Once()
	router := newTestRouter(service)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/tickets/email", strings.NewReader(validBody))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Origin", allowedOrigin)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.JSONEq(t, `{"error":"send \"Your invoice for Carmen\" to a@x.com: 550 relay rejected"}`, w.Body.String())
	assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
}

func TestTicketEmailHandler_send_BookingNotFound(t *testing.T) {
	service := &MockTicketMailUseCase{}
	service.On("SendBookingEmails", mock.Anything, validRequest).
		Return(errors.Join(errors.New("booking b1"), domain.ErrBookingNotFound)).Once()
	router := newTestRouter(service)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/tickets/email", strings.NewReader(validBody))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), domain.ErrBookingNotFound.Error())
}

func TestTicketEmailHandler_send_BadRequest(t *testing.T) {
	cases := map[string]string{
		"malformed json":     `{"bookingId":`,
		"missing booking id": `{"tickets":[]}`,
		"missing tickets":    `{"bookingId":"b1"}`,
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			service := &MockTicketMailUseCase{}
			router := newTestRouter(service)

			w := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodPost, "/api/tickets/email", strings.NewReader(body))
			req.Header.Set("Content-Type", "application/json")
			router.ServeHTTP(w, req)

			assert.Equal(t, http.StatusBadRequest, w.Code)
			assert.Contains(t, w.Body.String(), `"error"`)
			service.AssertNotCalled(t, "SendBookingEmails", mock.Anything, mock.Anything)
		})
	}
}

func TestTicketEmailHandler_preflight(t *testing.T) {
	router := newTestRouter(&MockTicketMailUseCase{})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodOptions, "/api/tickets/email", nil)
	req.Header.Set("Origin", allowedOrigin)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, allowedOrigin, w.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "POST, OPTIONS", w.Header().Get("Access-Control-Allow-Methods"))
	assert.Equal(t, "Content-Type", w.Header().Get("Access-Control-Allow-Headers"))
}

func TestTicketEmailHandler_preflight_UnknownOrigin(t *testing.T) {
	router := newTestRouter(&MockTicketMailUseCase{})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodOptions, "/api/tickets/email", nil)
	req.Header.Set("Origin", "https://evil.example")
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
	assert.Empty(t, w.Header().Get("Access-Control-Allow-Methods"))
}

func TestRegisterHealth(t *testing.T) {
	router := newTestRouter(&MockTicketMailUseCase{})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "ok", w.Body.String())
}
