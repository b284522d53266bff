package report

import (
	"bytes"
	"context"
	"crypto/tls"
	"fmt"
	"io"
	"net"
	"net/smtp"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/emersion/go-message/mail"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"gitlab.com/boxker/boxk"
)

// ErrNoRecipients when a mail has nobody to go to
var ErrNoRecipients = errors.New("no recipients")

// Stages of sending a mail, reported in SendError
const (
	StageBuild   = "build"
	StageConnect = "connect"
	StageTLS     = "starttls"
	StageAuth    = "auth"
	StageSend    = "send"
)

// SendError wraps the failure of a stage of sending a mail
type SendError struct {
	Stage string
	Err   error
}

func (e *SendError) Error() string {
	return fmt.Sprintf("mail %s failed: %s", e.Stage, e.Err)
}

func (e *SendError) Unwrap() error {
	return e.Err
}

// Attachment of a mail
type Attachment struct {
	Name        string
	ContentType string
	Data        []byte
}

// Mail to send, To may hold ; separated addresses
type Mail struct {
	Subject    string
	To         []string
	HTMLBody   string
	Attachment *Attachment
}

// Mailer sends mail over smtp
type Mailer struct {
	cfg     *boxk.SMTPConfig
	timeout time.Duration
}

// NewMailer for cfg
func NewMailer(cfg *boxk.SMTPConfig) *Mailer {
	return &Mailer{cfg: cfg, timeout: 30 * time.Second}
}

// SplitRecipients splits every entry on ; and drops blanks
func SplitRecipients(to ...string) []string {
	out := make([]string, 0, len(to))
	for _, entry := range to {
		for _, addr := range strings.Split(entry, ";") {
			if addr = strings.TrimSpace(addr); addr != "" {
				out = append(out, addr)
			}
		}
	}
	return out
}

// Build the multipart message: an html body and an optional base64 attachment
func (m *Mailer) Build(msg *Mail, to []string) ([]byte, error) {
	buf := &bytes.Buffer{}
	if err := m.WriteMessage(buf, msg, to); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// WriteMessage encodes msg for to into w
func (m *Mailer) WriteMessage(w io.Writer, msg *Mail, to []string) error {
	from, err := mail.ParseAddress(m.cfg.From)
	if err != nil {
		return errors.Wrapf(err, "invalid from address %q", m.cfg.From)
	}
	rcpts := make([]*mail.Address, len(to))
	for i, addr := range to {
		rcpts[i], err = mail.ParseAddress(addr)
		if err != nil {
			return errors.Wrapf(err, "invalid recipient %q", addr)
		}
	}

	var h mail.Header
	h.SetDate(time.Now())
	h.SetAddressList("From", []*mail.Address{from})
	h.SetAddressList("To", rcpts)
	h.SetSubject(msg.Subject)

	mw, err := mail.CreateWriter(w, h)
	if err != nil {
		return err
	}

	tw, err := mw.CreateInline()
	if err != nil {
		return err
	}
	var th mail.InlineHeader
	th.Set("Content-Type", "text/html; charset=utf-8")
	th.Set("Content-Transfer-Encoding", "quoted-printable")
	bw, err := tw.CreatePart(th)
	if err != nil {
		return err
	}
	if _, err := bw.Write([]byte(msg.HTMLBody)); err != nil {
		return err
	}
	if err := bw.Close(); err != nil {
		return errors.Wrap(err, "failed to flush html body")
	}
	if err := tw.Close(); err != nil {
		return errors.Wrap(err, "failed to close inline part")
	}

	if msg.Attachment != nil {
		var ah mail.AttachmentHeader
		contentType := msg.Attachment.ContentType
		if contentType == "" {
			contentType = "application/octet-stream"
		}
		ah.Set("Content-Type", contentType)
		ah.Set("Content-Transfer-Encoding", "base64")
		ah.SetFilename(filepath.Base(msg.Attachment.Name))
		aw, err := mw.CreateAttachment(ah)
		if err != nil {
			return err
		}
		if _, err := aw.Write(msg.Attachment.Data); err != nil {
			return err
		}
		if err := aw.Close(); err != nil {
			return errors.Wrap(err, "failed to flush attachment")
		}
	}

	return mw.Close()
}

// Send msg, every failure is returned as a *SendError
func (m *Mailer) Send(ctx context.Context, msg *Mail) error {
	to := SplitRecipients(msg.To...)
	if len(to) == 0 {
		return &SendError{Stage: StageBuild, Err: ErrNoRecipients}
	}

	body, err := m.Build(msg, to)
	if err != nil {
		return &SendError{Stage: StageBuild, Err: err}
	}

	client, err := m.dial(ctx)
	if err != nil {
		return err
	}
	defer client.Close()

	if err := m.authenticate(client); err != nil {
		return &SendError{Stage: StageAuth, Err: err}
	}

	if err := client.Mail(m.cfg.From); err != nil {
		return &SendError{Stage: StageSend, Err: errors.Wrap(err, "MAIL FROM rejected")}
	}
	for _, rcpt := range to {
		if err := client.Rcpt(rcpt); err != nil {
			return &SendError{Stage: StageSend, Err: errors.Wrapf(err, "RCPT TO %s rejected", rcpt)}
		}
	}
	w, err := client.Data()
	if err != nil {
		return &SendError{Stage: StageSend, Err: errors.Wrap(err, "DATA rejected")}
	}
	if _, err := w.Write(body); err != nil {
		return &SendError{Stage: StageSend, Err: errors.Wrap(err, "failed to write message")}
	}
	if err := w.Close(); err != nil {
		return &SendError{Stage: StageSend, Err: errors.Wrap(err, "failed to close data transfer")}
	}
	if err := client.Quit(); err != nil {
		return &SendError{Stage: StageSend, Err: errors.Wrap(err, "failed to quit smtp session")}
	}

	log.Info().Strs("to", to).Str("subject", msg.Subject).Msg("report mail sent")
	return nil
}

func (m *Mailer) dial(ctx context.Context) (*smtp.Client, error) {
	addr := net.JoinHostPort(m.cfg.Host, strconv.Itoa(m.cfg.Port))
	tlsConfig := &tls.Config{ServerName: m.cfg.Host}
	dialer := &net.Dialer{Timeout: m.timeout}

	var conn net.Conn
	var err error
	mode := strings.ToLower(strings.TrimSpace(m.cfg.TLSMode))
	if mode == "smtps" {
		conn, err = (&tls.Dialer{NetDialer: dialer, Config: tlsConfig}).DialContext(ctx, "tcp", addr)
	} else {
		conn, err = dialer.DialContext(ctx, "tcp", addr)
	}
	if err != nil {
		return nil, &SendError{Stage: StageConnect, Err: errors.Wrapf(err, "failed to connect to %s", addr)}
	}

	client, err := smtp.NewClient(conn, m.cfg.Host)
	if err != nil {
		conn.Close()
		return nil, &SendError{Stage: StageConnect, Err: errors.Wrap(err, "failed to create smtp client")}
	}

	if mode == "starttls" {
		if err := client.StartTLS(tlsConfig); err != nil {
			client.Close()
			return nil, &SendError{Stage: StageTLS, Err: err}
		}
	}
	return client, nil
}

func (m *Mailer) authenticate(client *smtp.Client) error {
	if m.cfg.User == "" || m.cfg.Password == "" {
		return nil
	}

	var auth smtp.Auth
	switch strings.ToLower(strings.TrimSpace(m.cfg.AuthType)) {
	case "login":
		auth = &loginAuth{username: m.cfg.User, password: m.cfg.Password}
	default:
		auth = smtp.PlainAuth("", m.cfg.User, m.cfg.Password, m.cfg.Host)
	}
	return client.Auth(auth)
}

// loginAuth implements SMTP LOGIN authentication
type loginAuth struct {
	username, password string
}

func (a *loginAuth) Start(_ *smtp.ServerInfo) (string, []byte, error) {
	return "LOGIN", []byte{}, nil
}

func (a *loginAuth) Next(fromServer []byte, more bool) ([]byte, error) {
	if !more {
		return nil, nil
	}
	switch strings.ToLower(strings.TrimSpace(string(fromServer))) {
	case "username:":
		return []byte(a.username), nil
	case "password:":
		return []byte(a.password), nil
	}
	return nil, errors.Errorf("unexpected server challenge: %s", fromServer)
}
