// Package mailbox stores follow-up drafts in the user's IMAP drafts folder.
package mailbox

import (
	"bytes"
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"log"
	"net"
	"strconv"
	"strings"
	"time"

	"github.com/emersion/go-imap/v2"
	"github.com/emersion/go-imap/v2/imapclient"
	"github.com/emersion/go-message/mail"

	"audittrack-engine/internal/config"
)

var ErrDisabled = errors.New("email drafts are disabled (email.enabled=false)")

type Draft struct {
	From    string
	To      string
	Subject string
	Body    string
	Date    time.Time
}

type PasswordFunc func() (string, error)

type Client struct {
	cfg      config.EmailConfig
	password PasswordFunc
	tlsCfg   *tls.Config
}

func New(cfg config.EmailConfig, password PasswordFunc) *Client {
	return &Client{
		cfg:      cfg,
		password: password,
		tlsCfg: &tls.Config{
			MinVersion: tls.VersionTLS12,
			ServerName: cfg.IMAPHost,
		},
	}
}

// SaveDraft appends d to the drafts mailbox with the \Draft flag set.
func (c *Client) SaveDraft(ctx context.Context, d Draft) error {
	if !c.cfg.Enabled {
		return ErrDisabled
	}
	if d.From == "" {
		d.From = c.cfg.From
	}
	if d.From == "" {
		d.From = c.cfg.Username
	}
	raw, err := Compose(d)
	if err != nil {
		return err
	}

	pw, err := c.password()
	if err != nil {
		return fmt.Errorf("imap password: %w", err)
	}
	addr := net.JoinHostPort(c.cfg.IMAPHost, strconv.Itoa(c.cfg.IMAPPort))
	ic, err := dialAndLogin(ctx, addr, c.cfg.Username, pw, c.tlsCfg)
	if err != nil {
		return err
	}
	defer logoutAndClose(ic)

	cmd := ic.Append(c.cfg.DraftsMailbox, int64(len(raw)), &imap.AppendOptions{
		Flags: []imap.Flag{imap.FlagDraft, imap.FlagSeen},
		Time:  d.Date,
	})
	if _, err := cmd.Write(raw); err != nil {
		_ = cmd.Close()
		return fmt.Errorf("imap append write: %w", err)
	}
	if err := cmd.Close(); err != nil {
		return fmt.Errorf("imap append close: %w", err)
	}
	if _, err := cmd.Wait(); err != nil {
		return fmt.Errorf("imap append %q: %w", c.cfg.DraftsMailbox, err)
	}
	log.Printf("[mailbox] draft saved mailbox=%q to=%s bytes=%d", c.cfg.DraftsMailbox, d.To, len(raw))
	return nil
}

// Compose renders d as a plain-text RFC 5322 message.
func Compose(d Draft) ([]byte, error) {
	from, err := mail.ParseAddress(d.From)
	if err != nil {
		return nil, fmt.Errorf("from address %q: %w", d.From, err)
	}
	to, err := mail.ParseAddressList(d.To)
	if err != nil {
		return nil, fmt.Errorf("to address %q: %w", d.To, err)
	}
	if d.Date.IsZero() {
		d.Date = time.Now()
	}

	var h mail.Header
	h.SetDate(d.Date)
	h.SetAddressList("From", []*mail.Address{from})
	h.SetAddressList("To", to)
	h.SetSubject(d.Subject)
	if err := h.GenerateMessageID(); err != nil {
		return nil, err
	}
	h.SetContentType("text/plain", map[string]string{"charset": "utf-8"})
	h.Set("Content-Transfer-Encoding", "quoted-printable")

	var buf bytes.Buffer
	w, err := mail.CreateSingleInlineWriter(&buf, h)
	if err != nil {
		return nil, err
	}
	body := strings.ReplaceAll(strings.ReplaceAll(d.Body, "\r\n", "\n"), "\n", "\r\n")
	if _, err := w.Write([]byte(body)); err != nil {
		return nil, err
	}
	if err := w.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// dialAndLogin connects over TLS and logs in.
func dialAndLogin(ctx context.Context, addr, username, password string, tlsCfg *tls.Config) (*imapclient.Client, error) {
	if username == "" || password == "" {
		return nil, errors.New("imap username/password is required")
	}
	c, err := imapclient.DialTLS(addr, &imapclient.Options{
		TLSConfig: tlsCfg,
	})
	if err != nil {
		return nil, fmt.Errorf("imap dial tls: %w", err)
	}

	// Best-effort close on context cancel.
	done := make(chan struct{})
	go func() {
		select {
		case <-ctx.Done():
			_ = c.Close()
		case <-done:
		}
	}()
	defer close(done)

	if err := c.Login(username, password).Wait(); err != nil {
		_ = c.Close()
		return nil, fmt.Errorf("imap login: %w", err)
	}
	return c, nil
}

// logoutAndClose logs out then closes the connection.
func logoutAndClose(c *imapclient.Client) {
	if err := c.Logout().Wait(); err != nil {
		log.Printf("[mailbox] imap logout: %v", err)
	}
	_ = c.Close()
}
