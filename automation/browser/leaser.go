package browser

import (
	"net"
	"os"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
)

const profilePrefix = "boxker"

// ErrBrowserNotLeased when returning a port the leaser did not hand out
var ErrBrowserNotLeased = errors.New("browser not leased")

// LeaserService starts and stops browser processes
type LeaserService interface {
	Acquire() (string, error) // returns port number
	Return(port string) error
	Cleanup() (string, error)
	Count() (string, error)
}

func randPort() string {
	l, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		log.Warn().Err(err).Msg("unable to get port using default 9022")
		return "9022"
	}
	_, randPort, _ := net.SplitHostPort(l.Addr().String())
	l.Close()
	return randPort
}

func randProfile(tmp string) (string, error) {
	return os.MkdirTemp(tmp, profilePrefix)
}
