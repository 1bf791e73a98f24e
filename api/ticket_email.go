package api

import (
	"net/http"

	"github.com/Domenick1991/ticketmail/internal/domain"
	"github.com/Domenick1991/ticketmail/internal/service/ticketmail"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

type TicketEmailHandler struct {
	service ticketmail.TicketMailUseCase
	gate    *OriginGate
	logger  *logrus.Logger
}

func NewTicketEmailHandler(service ticketmail.TicketMailUseCase, gate *OriginGate, logger *logrus.Logger) *TicketEmailHandler {
	return &TicketEmailHandler{service: service, gate: gate, logger: logger}
}

func (h *TicketEmailHandler) Register(router *gin.RouterGroup) {
	router.POST("/email", h.send)
	router.OPTIONS("/email", h.gate.preflight)
}

func (h *TicketEmailHandler) send(c *gin.Context) {
	var req domain.BookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ctx := c.Request.Context()
	if err := h.service.SendBookingEmails(ctx, req); err != nil {
		h.logger.WithContext(ctx).WithError(err).WithField("booking_id", req.BookingID).Error("send booking emails")
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	h.gate.apply(c)
	c.Status(http.StatusOK)
}
