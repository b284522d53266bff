package browser

import (
	"context"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"

	"github.com/pkg/errors"
)

// DefaultSocket for unix socket comms with a leaser service
const DefaultSocket = "boxker.sock"

// SocketLeaser leases browsers from a leaser service listening on a unix
// socket, so several boxker processes can share one host's browsers
type SocketLeaser struct {
	leaserClient http.Client
}

// NewSocketLeaser talking to the leaser service at socket
func NewSocketLeaser(socket string) *SocketLeaser {
	if socket == "" {
		socket = DefaultSocket
	}
	s := &SocketLeaser{}
	s.leaserClient = http.Client{
		Transport: &http.Transport{
			DialContext: func(ctx context.Context, _, _ string) (net.Conn, error) {
				var d net.Dialer
				return d.DialContext(ctx, "unix", socket)
			},
		},
	}
	return s
}

func (s *SocketLeaser) get(path string) (string, error) {
	resp, err := s.leaserClient.Get("http://unix" + path)
	if err != nil {
		return "", err
	}
	body, err := io.ReadAll(resp.Body)
	resp.Body.Close()
	if err != nil {
		return "", err
	}

	switch resp.StatusCode {
	case http.StatusOK:
		return string(body), nil
	case http.StatusNotFound:
		return "", errors.Wrap(ErrBrowserNotLeased, strings.TrimSpace(string(body)))
	}
	return "", errors.Errorf("leaser returned %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
}

// Acquire a new browser
func (s *SocketLeaser) Acquire() (string, error) {
	return s.get("/acquire")
}

// Count how many browsers
func (s *SocketLeaser) Count() (string, error) {
	return s.get("/count")
}

// Return (and kill) the browser
func (s *SocketLeaser) Return(port string) error {
	_, err := s.get("/return?port=" + url.QueryEscape(port))
	return err
}

// Cleanup every browser of the leaser service
func (s *SocketLeaser) Cleanup() (string, error) {
	return s.get("/cleanup")
}
