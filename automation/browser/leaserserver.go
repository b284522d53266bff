package browser

import (
	"context"
	"io"
	"net"
	"net/http"
	"os"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
)

// NewLeaserHandler exposes svc to SocketLeaser clients
func NewLeaserHandler(svc LeaserService) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/acquire", func(w http.ResponseWriter, r *http.Request) {
		port, err := svc.Acquire()
		if err != nil {
			log.Error().Err(err).Msg("failed to acquire browser")
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		io.WriteString(w, port)
	})
	mux.HandleFunc("/return", func(w http.ResponseWriter, r *http.Request) {
		port := r.URL.Query().Get("port")
		if err := svc.Return(port); err != nil {
			if errors.Is(err, ErrBrowserNotLeased) {
				http.Error(w, err.Error(), http.StatusNotFound)
				return
			}
			log.Warn().Err(err).Str("port", port).Msg("browser did not exit cleanly")
		}
		io.WriteString(w, "ok")
	})
	mux.HandleFunc("/count", func(w http.ResponseWriter, r *http.Request) {
		count, _ := svc.Count()
		io.WriteString(w, count)
	})
	mux.HandleFunc("/cleanup", func(w http.ResponseWriter, r *http.Request) {
		out, err := svc.Cleanup()
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		io.WriteString(w, out)
	})
	return mux
}

// ServeLeaser serves svc on the unix socket until ctx is done, then cleans up
// every leased browser
func ServeLeaser(ctx context.Context, socket string, svc LeaserService) error {
	if socket == "" {
		socket = DefaultSocket
	}
	os.Remove(socket)
	l, err := net.Listen("unix", socket)
	if err != nil {
		return errors.Wrapf(err, "failed to listen on %s", socket)
	}

	srv := &http.Server{Handler: NewLeaserHandler(svc)}
	go func() {
		<-ctx.Done()
		srv.Close()
	}()

	log.Info().Str("socket", socket).Msg("leaser service started")
	err = srv.Serve(l)
	if _, cerr := svc.Cleanup(); cerr != nil {
		log.Warn().Err(cerr).Msg("failed to clean up browsers")
	}
	os.Remove(socket)
	if err == http.ErrServerClosed {
		return nil
	}
	return err
}
