package email

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
	"gopkg.in/gomail.v2"
)

// Envelope is one outbound message as handed to a Transport.
type Envelope struct {
	FromName  string
	From      string
	ReplyTo   string
	ToName    string
	ToAddress string
	Subject   string
	HTML      string
}

// Sender is the fixed identity mail goes out under.
type Sender struct {
	Name    string
	Address string
	ReplyTo string
}

func (s Sender) Envelope(toName, toAddress, subject, html string) Envelope {
	return Envelope{
		FromName:  s.Name,
		From:      s.Address,
		ReplyTo:   s.ReplyTo,
		ToName:    toName,
		ToAddress: toAddress,
		Subject:   subject,
		HTML:      html,
	}
}

type Credentials struct {
	Username string
	Password string
}

type CredentialsProvider interface {
	Credentials() (Credentials, error)
}

// EnvCredentials reads the relay credentials from the environment on every call.
type EnvCredentials struct {
	UsernameVar string
	PasswordVar string
}

func NewEnvCredentials() EnvCredentials {
	return EnvCredentials{UsernameVar: "MAILJET_API_KEY", PasswordVar: "MAILJET_SECRET_KEY"}
}

func (e EnvCredentials) Credentials() (Credentials, error) {
	return Credentials{
		Username: os.Getenv(e.UsernameVar),
		Password: os.Getenv(e.PasswordVar),
	}, nil
}

type StaticCredentials Credentials

func (s StaticCredentials) Credentials() (Credentials, error) {
	return Credentials(s), nil
}

type Transport interface {
	Send(ctx context.Context, env Envelope) error
	Close() error
}

type TransportFactory interface {
	New(creds Credentials) (Transport, error)
}

// SendAll submits every envelope concurrently and waits for all of them. The first failure
// is returned; messages that were already accepted by the relay stay sent.
func SendAll(ctx context.Context, t Transport, envs ...Envelope) error {
	g, ctx := errgroup.WithContext(ctx)
	for _, env := range envs {
		g.Go(func() error {
			if err := t.Send(ctx, env); err != nil {
				return fmt.Errorf("send %q to %s: %w", env.Subject, env.ToAddress, err)
			}
			return nil
		})
	}
	return g.Wait()
}

func newMessage(env Envelope) *gomail.Message {
	m := gomail.NewMessage()
	m.SetHeader("From", m.FormatAddress(env.From, env.FromName))
	if env.ReplyTo != "" {
		m.SetHeader("Reply-To", env.ReplyTo)
	}
	m.SetHeader("To", m.FormatAddress(env.ToAddress, env.ToName))
	m.SetHeader("Subject", env.Subject)
	m.SetHeader("Message-ID", messageID(env.From))
	m.SetBody("text/html", env.HTML)
	return m
}

func messageID(from string) string {
	domain := "localhost"
	if i := strings.LastIndex(from, "@"); i >= 0 && i < len(from)-1 {
		domain = from[i+1:]
	}
	return fmt.Sprintf("<%s@%s>", uuid.NewString(), domain)
}
