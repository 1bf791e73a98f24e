package ticketmail

import (
	"context"
	"fmt"

	"github.com/Domenick1991/ticketmail/internal/domain"
	"github.com/Domenick1991/ticketmail/internal/email"
	"github.com/Domenick1991/ticketmail/internal/names"
	"github.com/Domenick1991/ticketmail/internal/render"
	"github.com/sirupsen/logrus"
)

type TicketMailUseCase interface {
	SendBookingEmails(ctx context.Context, req domain.BookingRequest) error
}

type ContentFetcher interface {
	Fetch(ctx context.Context, bookingID string) (domain.Configuration, domain.BookingDetails, error)
}

type Renderer interface {
	TicketsData(name string, cfg domain.Configuration, details domain.BookingDetails, tickets []domain.Ticket) render.TicketsData
	InvoiceData(name string, cfg domain.Configuration, details domain.BookingDetails, tickets []domain.Ticket) render.InvoiceData
	RenderEmail(name render.Template, data any) (string, error)
}

type TicketMailService struct {
	fetcher     ContentFetcher
	renderer    Renderer
	transports  email.TransportFactory
	credentials email.CredentialsProvider
	sender      email.Sender
	logger      *logrus.Logger
}

type TicketMailServiceProperty struct {
	Fetcher     ContentFetcher
	Renderer    Renderer
	Transports  email.TransportFactory
	Credentials email.CredentialsProvider
	Sender      email.Sender
	Logger      *logrus.Logger
}

func NewTicketMailService(props TicketMailServiceProperty) *TicketMailService {
	return &TicketMailService{
		fetcher:     props.Fetcher,
		renderer:    props.Renderer,
		transports:  props.Transports,
		credentials: props.Credentials,
		sender:      props.Sender,
		logger:      props.Logger,
	}
}

// SendBookingEmails sends the tickets and invoice emails for one booking. Either email failing
// fails the call, even when the other one already went out.
func (s *TicketMailService) SendBookingEmails(ctx context.Context, req domain.BookingRequest) error {
	cfg, details, err := s.fetcher.Fetch(ctx, req.BookingID)
	if err != nil {
		return err
	}

	greeting := names.Greeting(details.Name)

	ticketsHTML, err := s.renderer.RenderEmail(render.TemplateTickets, s.renderer.TicketsData(greeting, cfg, details, req.Tickets))
	if err != nil {
		return err
	}
	invoiceHTML, err := s.renderer.RenderEmail(render.TemplateInvoice, s.renderer.InvoiceData(greeting, cfg, details, req.Tickets))
	if err != nil {
		return err
	}

	creds, err := s.credentials.Credentials()
	if err != nil {
		return fmt.Errorf("smtp credentials: %w", err)
	}
	transport, err := s.transports.New(creds)
	if err != nil {
		return fmt.Errorf("smtp transport: %w", err)
	}
	defer func() {
		if err := transport.Close(); err != nil {
			s.logger.WithContext(ctx).WithError(err).Warn("close smtp transport")
		}
	}()

	err = email.SendAll(ctx, transport,
		s.sender.Envelope(details.Name, details.Email, fmt.Sprintf("Your tickets for %s", cfg.ShowName), ticketsHTML),
		s.sender.Envelope(details.Name, details.Email, fmt.Sprintf("Your invoice for %s", cfg.ShowName), invoiceHTML),
	)
	if err != nil {
		return err
	}

	s.logger.WithContext(ctx).WithFields(logrus.Fields{
		"booking_id": req.BookingID,
		"to":         details.Email,
		"tickets":    len(req.Tickets),
	}).Info("booking emails sent")
	return nil
}

var _ TicketMailUseCase = (*TicketMailService)(nil)
