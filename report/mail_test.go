package report_test

import (
	"bufio"
	"bytes"
	"context"
	"encoding/base64"
	"io"
	"net"
	"strings"
	"testing"

	"github.com/emersion/go-message/mail"
	"github.com/pkg/errors"
	"gitlab.com/boxker/boxk"
	"gitlab.com/boxker/report"
)

// fakeSMTP accepts a single session and records what it was sent
type fakeSMTP struct {
	ln         net.Listener
	rejectAuth bool
	auth       []string
	rcpts      []string
	data       bytes.Buffer
	done       chan struct{}
}

func newFakeSMTP(t *testing.T, rejectAuth bool) *fakeSMTP {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("error listening: %s\n", err)
	}
	s := &fakeSMTP{ln: ln, rejectAuth: rejectAuth, done: make(chan struct{})}
	go s.serve()
	t.Cleanup(func() { ln.Close() })
	return s
}

func (s *fakeSMTP) port() int {
	return s.ln.Addr().(*net.TCPAddr).Port
}

func (s *fakeSMTP) serve() {
	defer close(s.done)
	conn, err := s.ln.Accept()
	if err != nil {
		return
	}
	defer conn.Close()

	r := bufio.NewReader(conn)
	reply := func(lines ...string) {
		for _, l := range lines {
			io.WriteString(conn, l+"\r\n")
		}
	}
	readLine := func() (string, bool) {
		line, err := r.ReadString('\n')
		if err != nil {
			return "", false
		}
		return strings.TrimRight(line, "\r\n"), true
	}

	reply("220 localhost ESMTP fake")
	for {
		line, ok := readLine()
		if !ok {
			return
		}
		cmd := strings.ToUpper(line)
		switch {
		case strings.HasPrefix(cmd, "EHLO"), strings.HasPrefix(cmd, "HELO"):
			reply("250-localhost", "250 AUTH PLAIN LOGIN")
		case strings.HasPrefix(cmd, "AUTH LOGIN"):
			reply("334 " + base64.StdEncoding.EncodeToString([]byte("Username:")))
			user, _ := readLine()
			reply("334 " + base64.StdEncoding.EncodeToString([]byte("Password:")))
			pass, _ := readLine()
			s.auth = append(s.auth, "LOGIN", decode(user), decode(pass))
			s.authReply(reply)
		case strings.HasPrefix(cmd, "AUTH PLAIN"):
			s.auth = append(s.auth, "PLAIN", decode(strings.TrimSpace(line[len("AUTH PLAIN"):])))
			s.authReply(reply)
		case strings.HasPrefix(cmd, "MAIL FROM"):
			reply("250 ok")
		case strings.HasPrefix(cmd, "RCPT TO"):
			s.rcpts = append(s.rcpts, strings.Trim(line[len("RCPT TO:"):], "<>"))
			reply("250 ok")
		case cmd == "DATA":
			reply("354 go ahead")
			for {
				l, ok := readLine()
				if !ok || l == "." {
					break
				}
				s.data.WriteString(strings.TrimPrefix(l, ".") + "\r\n")
			}
			reply("250 queued")
		case cmd == "QUIT":
			reply("221 bye")
			return
		default:
			reply("502 unknown")
		}
	}
}

func (s *fakeSMTP) authReply(reply func(lines ...string)) {
	if s.rejectAuth {
		reply("535 authentication failed")
		return
	}
	reply("235 ok")
}

func decode(s string) string {
	b, _ := base64.StdEncoding.DecodeString(s)
	return string(b)
}

func testMailer(port int, authType string) *report.Mailer {
	return report.NewMailer(&boxk.SMTPConfig{
		Host:     "127.0.0.1",
		Port:     port,
		User:     "qa",
		Password: "s3cret",
		From:     "boxker@example.com",
		AuthType: authType,
	})
}

func TestSplitRecipients(t *testing.T) {
	got := report.SplitRecipients("a@example.com; b@example.com;", " ", "c@example.com")
	expected := []string{"a@example.com", "b@example.com", "c@example.com"}
	if len(got) != len(expected) {
		t.Fatalf("expected %v got %v\n", expected, got)
	}
	for i := range expected {
		if got[i] != expected[i] {
			t.Fatalf("expected %v got %v\n", expected, got)
		}
	}
}

func TestSend(t *testing.T) {
	srv := newFakeSMTP(t, false)
	m := testMailer(srv.port(), "")

	err := m.Send(context.Background(), &report.Mail{
		Subject:    "boxker report: login",
		To:         []string{"qa@example.com;dev@example.com"},
		HTMLBody:   "<h1>boxker test report</h1>",
		Attachment: &report.Attachment{Name: "reports/run1.html", ContentType: "text/html", Data: []byte("<html>run1</html>")},
	})
	if err != nil {
		t.Fatalf("error sending: %s\n", err)
	}
	<-srv.done

	if len(srv.auth) != 2 || srv.auth[0] != "PLAIN" || srv.auth[1] != "\x00qa\x00s3cret" {
		t.Fatalf("unexpected auth %q\n", srv.auth)
	}
	if len(srv.rcpts) != 2 || srv.rcpts[1] != "dev@example.com" {
		t.Fatalf("unexpected recipients %v\n", srv.rcpts)
	}

	mr, err := mail.CreateReader(bytes.NewReader(srv.data.Bytes()))
	if err != nil {
		t.Fatalf("error reading message: %s\n%s\n", err, srv.data.String())
	}
	subject, _ := mr.Header.Subject()
	if subject != "boxker report: login" {
		t.Fatalf("unexpected subject %s\n", subject)
	}

	var html, attachment, filename string
	for {
		p, err := mr.NextPart()
		if err == io.EOF {
			break
		} else if err != nil {
			t.Fatalf("error reading part: %s\n", err)
		}
		body, _ := io.ReadAll(p.Body)
		switch h := p.Header.(type) {
		case *mail.InlineHeader:
			html = string(body)
		case *mail.AttachmentHeader:
			filename, _ = h.Filename()
			attachment = string(body)
		}
	}
	if html != "<h1>boxker test report</h1>" {
		t.Fatalf("unexpected body %q\n", html)
	}
	if filename != "run1.html" || attachment != "<html>run1</html>" {
		t.Fatalf("unexpected attachment %s %q\n", filename, attachment)
	}
	if !strings.Contains(srv.data.String(), "Content-Transfer-Encoding: base64") {
		t.Fatalf("expected base64 attachment\n%s\n", srv.data.String())
	}
}

func TestSendLoginAuth(t *testing.T) {
	srv := newFakeSMTP(t, false)
	m := testMailer(srv.port(), "LOGIN")

	err := m.Send(context.Background(), &report.Mail{Subject: "s", To: []string{"qa@example.com"}, HTMLBody: "<p>x</p>"})
	if err != nil {
		t.Fatalf("error sending: %s\n", err)
	}
	<-srv.done
	if len(srv.auth) != 3 || srv.auth[0] != "LOGIN" || srv.auth[1] != "qa" || srv.auth[2] != "s3cret" {
		t.Fatalf("unexpected auth %q\n", srv.auth)
	}
}

func TestSendErrors(t *testing.T) {
	var sendErr *report.SendError

	m := testMailer(1, "")
	err := m.Send(context.Background(), &report.Mail{Subject: "s", To: []string{" ; "}})
	if !errors.As(err, &sendErr) || sendErr.Stage != report.StageBuild || !errors.Is(err, report.ErrNoRecipients) {
		t.Fatalf("expected build error for no recipients got %v\n", err)
	}

	err = m.Send(context.Background(), &report.Mail{Subject: "s", To: []string{"not an address"}})
	if !errors.As(err, &sendErr) || sendErr.Stage != report.StageBuild {
		t.Fatalf("expected build error for bad address got %v\n", err)
	}

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("error listening: %s\n", err)
	}
	port := ln.Addr().(*net.TCPAddr).Port
	ln.Close()
	m = testMailer(port, "")
	err = m.Send(context.Background(), &report.Mail{Subject: "s", To: []string{"qa@example.com"}})
	if !errors.As(err, &sendErr) || sendErr.Stage != report.StageConnect {
		t.Fatalf("expected connect error got %v\n", err)
	}

	srv := newFakeSMTP(t, true)
	m = testMailer(srv.port(), "")
	err = m.Send(context.Background(), &report.Mail{Subject: "s", To: []string{"qa@example.com"}})
	if !errors.As(err, &sendErr) || sendErr.Stage != report.StageAuth {
		t.Fatalf("expected auth error got %v\n", err)
	}
	if !strings.Contains(err.Error(), "535") {
		t.Fatalf("expected server reply in error got %s\n", err)
	}
}

// shortWriter fails once more than n bytes were written
type shortWriter struct {
	n       int
	written int
}

func (w *shortWriter) Write(p []byte) (int, error) {
	if w.written+len(p) > w.n {
		left := w.n - w.written
		w.written = w.n
		return left, errors.New("disk full")
	}
	w.written += len(p)
	return len(p), nil
}

func TestWriteMessageTruncated(t *testing.T) {
	m := testMailer(25, "")
	msg := &report.Mail{
		Subject:    "boxker report: login",
		HTMLBody:   "<h1>boxker test report</h1>" + strings.Repeat("<p>passed</p>", 20),
		Attachment: &report.Attachment{Name: "run1.html", Data: bytes.Repeat([]byte("<html>run1</html>"), 10)},
	}
	to := []string{"qa@example.com"}

	full, err := m.Build(msg, to)
	if err != nil {
		t.Fatalf("error building: %s\n", err)
	}
	// the trailing boundary is written after the attachment is flushed
	for n := 0; n < len(full)-20; n++ {
		if err := m.WriteMessage(&shortWriter{n: n}, msg, to); err == nil {
			t.Fatalf("expected write error with %d of %d bytes\n", n, len(full))
		}
	}
	if err := m.WriteMessage(&shortWriter{n: len(full) * 2}, msg, to); err != nil {
		t.Fatalf("error writing message: %s\n", err)
	}
}
