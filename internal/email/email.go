// Package email sends multipart text+HTML mail over SMTP.
package email

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/inbucket/html2text"
	mail "github.com/wneessen/go-mail"
)

// Client holds SMTP connection settings. Field tags match the config keys
// under "email.".
type Client struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
	From     string `mapstructure:"from"`
}

// Message is one outbound email.
type Message struct {
	To      []string
	Subject string
	HTML    string
	Text    string // optional, derived from HTML if empty
}

func NewClient(host string, port int, username, password, from string) *Client {
	return &Client{
		Host:     host,
		Port:     port,
		Username: username,
		Password: password,
		From:     from,
	}
}

// Send delivers msg. Delivery is fire-and-forget from the caller's
// perspective: an error means the handoff to the SMTP server failed, nothing
// more is tracked.
func (c *Client) Send(ctx context.Context, msg *Message) error {
	if msg.Text == "" {
		text, err := htmlToText(msg.HTML)
		if err != nil {
			return fmt.Errorf("failed to convert HTML to text: %w", err)
		}
		msg.Text = text
	}

	m := mail.NewMsg()
	if err := m.From(c.From); err != nil {
		return fmt.Errorf("invalid from address %q: %w", c.From, err)
	}
	if err := m.To(msg.To...); err != nil {
		return fmt.Errorf("invalid recipient list: %w", err)
	}
	m.Subject(msg.Subject)
	m.SetBodyString(mail.TypeTextPlain, msg.Text)
	m.AddAlternativeString(mail.TypeTextHTML, msg.HTML)

	opts := []mail.Option{
		mail.WithPort(c.Port),
		mail.WithTLSPolicy(mail.TLSOpportunistic),
	}
	if c.Username != "" {
		opts = append(opts,
			mail.WithSMTPAuth(mail.SMTPAuthPlain),
			mail.WithUsername(c.Username),
			mail.WithPassword(c.Password),
		)
	}

	client, err := mail.NewClient(c.Host, opts...)
	if err != nil {
		return fmt.Errorf("smtp client: %w", err)
	}

	return client.DialAndSendWithContext(ctx, m)
}

// htmlToText converts HTML to plain text for the alternative part.
func htmlToText(htmlContent string) (string, error) {
	text, err := html2text.FromString(htmlContent, html2text.Options{
		PrettyTables: true,
		OmitLinks:    false,
	})
	if err != nil {
		slog.Error("failed to convert HTML to text", "error", err)
		return "", err
	}
	return text, nil
}
