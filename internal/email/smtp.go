package email

import (
	"context"
	"errors"
	"sync"

	"github.com/sirupsen/logrus"
	"gopkg.in/gomail.v2"
)

var ErrTransportClosed = errors.New("smtp transport closed")

type SMTPConfig struct {
	Host string
	Port int
	SSL  bool
	// LocalName is sent with EHLO/HELO. Empty keeps gomail's "localhost".
	LocalName      string
	MaxConnections int
}

type dialer interface {
	Dial() (gomail.SendCloser, error)
}

// SMTPTransportFactory builds a fresh pooled transport for every set of credentials.
type SMTPTransportFactory struct {
	cfg    SMTPConfig
	logger *logrus.Logger
}

func NewSMTPTransportFactory(cfg SMTPConfig, logger *logrus.Logger) *SMTPTransportFactory {
	return &SMTPTransportFactory{cfg: cfg, logger: logger}
}

func (f *SMTPTransportFactory) New(creds Credentials) (Transport, error) {
	d := gomail.NewDialer(f.cfg.Host, f.cfg.Port, creds.Username, creds.Password)
	d.SSL = f.cfg.SSL
	d.LocalName = f.cfg.LocalName
	return newSMTPTransport(d, f.cfg.MaxConnections, f.logger), nil
}

// SMTPTransport keeps up to maxConns authenticated connections open and reuses idle ones.
type SMTPTransport struct {
	dialer dialer
	logger *logrus.Logger
	slots  chan struct{}

	mu     sync.Mutex
	idle   []gomail.SendCloser
	closed bool
}

func newSMTPTransport(d dialer, maxConns int, logger *logrus.Logger) *SMTPTransport {
	if maxConns <= 0 {
		maxConns = 1
	}
	return &SMTPTransport{
		dialer: d,
		logger: logger,
		slots:  make(chan struct{}, maxConns),
	}
}

func (t *SMTPTransport) Send(ctx context.Context, env Envelope) error {
	select {
	case t.slots <- struct{}{}:
	case <-ctx.Done():
		return ctx.Err()
	}
	defer func() { <-t.slots }()

	if err := ctx.Err(); err != nil {
		return err
	}

	conn, err := t.acquire()
	if err != nil {
		return err
	}

	if err := gomail.Send(conn, newMessage(env)); err != nil {
		// a failed exchange may leave the session in an unknown state
		_ = conn.Close()
		return err
	}
	t.logger.WithContext(ctx).WithFields(logrus.Fields{
		"to":      env.ToAddress,
		"subject": env.Subject,
	}).Debug("email accepted by relay")

	t.release(conn)
	return nil
}

func (t *SMTPTransport) Close() error {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.closed = true
	var errs []error
	for _, conn := range t.idle {
		if err := conn.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	t.idle = nil
	return errors.Join(errs...)
}

func (t *SMTPTransport) acquire() (gomail.SendCloser, error) {
	t.mu.Lock()
	if t.closed {
		t.mu.Unlock()
		return nil, ErrTransportClosed
	}
	if n := len(t.idle); n > 0 {
		conn := t.idle[n-1]
		t.idle = t.idle[:n-1]
		t.mu.Unlock()
		return conn, nil
	}
	t.mu.Unlock()

	return t.dialer.Dial()
}

func (t *SMTPTransport) release(conn gomail.SendCloser) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.closed {
		_ = conn.Close()
		return
	}
	t.idle = append(t.idle, conn)
}

var _ Transport = (*SMTPTransport)(nil)
var _ TransportFactory = (*SMTPTransportFactory)(nil)
