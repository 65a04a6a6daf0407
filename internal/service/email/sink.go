package email

import (
	"context"
	"crypto/tls"
	"fmt"
	"time"

	"github.com/wneessen/go-mail"

	"TVRelay/internal/domain/models"
	"TVRelay/internal/domain/repository"
)

// Config holds SMTP credentials and the single recipient.
type Config struct {
	User      string
	Password  string
	Recipient string
	Host      string
	Port      int
	Timeout   time.Duration
	// TLSConfig overrides the STARTTLS settings. Nil verifies Host against
	// the system roots.
	TLSConfig *tls.Config
}

// Sink sends each notification as one plain-text email over STARTTLS.
type Sink struct {
	cfg Config
}

var _ repository.Sink = (*Sink)(nil)

func New(cfg Config) *Sink {
	if cfg.Host == "" {
		cfg.Host = "smtp.gmail.com"
	}
	if cfg.Port == 0 {
		cfg.Port = 587
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	return &Sink{cfg: cfg}
}

func (s *Sink) Name() string { return models.SinkEmail }

// Enabled requires user, password and recipient.
func (s *Sink) Enabled() bool {
	return s.cfg.User != "" && s.cfg.Password != "" && s.cfg.Recipient != ""
}

// Send runs one SMTP session. The whole exchange, greeting to QUIT, is
// bounded by the earlier of ctx's deadline and Timeout, and the socket is
// closed on every return path.
func (s *Sink) Send(ctx context.Context, n models.Notification) error {
	if !s.Enabled() {
		return nil
	}

	msg, err := s.message(n)
	if err != nil {
		return err
	}

	sess := newSession(ctx, s.cfg.Timeout)
	defer sess.close()

	client, err := mail.NewClient(s.cfg.Host, s.options(sess)...)
	if err != nil {
		return fmt.Errorf("email: new client: %w", err)
	}
	// Runs before sess.close, so a healthy server still gets QUIT.
	defer func() { _ = client.Close() }()

	if err := client.DialWithContext(ctx); err != nil {
		return fmt.Errorf("email: dial %s:%d: %w", s.cfg.Host, s.cfg.Port, err)
	}

	if err := client.Send(msg); err != nil {
		return fmt.Errorf("email: send: %w", err)
	}
	return nil
}

func (s *Sink) options(sess *session) []mail.Option {
	opts := []mail.Option{
		mail.WithPort(s.cfg.Port),
		mail.WithSMTPAuth(mail.SMTPAuthPlain),
		mail.WithUsername(s.cfg.User),
		mail.WithPassword(s.cfg.Password),
		mail.WithTLSPolicy(mail.TLSMandatory),
		mail.WithTimeout(s.cfg.Timeout),
		mail.WithDialContextFunc(sess.dial),
	}
	if s.cfg.TLSConfig != nil {
		opts = append(opts, mail.WithTLSConfig(s.cfg.TLSConfig))
	}
	return opts
}

func (s *Sink) message(n models.Notification) (*mail.Msg, error) {
	m := mail.NewMsg()
	if err := m.From(s.cfg.User); err != nil {
		return nil, fmt.Errorf("email: from: %w", err)
	}
	if err := m.To(s.cfg.Recipient); err != nil {
		return nil, fmt.Errorf("email: to: %w", err)
	}
	m.Subject(n.Subject)
	m.SetDate()
	m.SetBodyString(mail.TypeTextPlain, n.Body)
	return m, nil
}
