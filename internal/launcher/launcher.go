package launcher

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/ferretcode/lovebug/pkg/types"
)

const (
	ShutdownTimeout   = 10 * time.Second
	readHeaderTimeout = 10 * time.Second
)

// Banner prints the two startup diagnostics. The MongoDB password is never
// printed.
func Banner(w io.Writer, config *types.LovebugConfig) {
	fmt.Fprintf(w, "PORT: %s\n", config.Port)
	fmt.Fprintf(w, "MONGODB_URL: %s\n", config.RedactedMongodbUrl())
}

// Addr joins HOST and PORT; PORT is used exactly as configured.
func Addr(config *types.LovebugConfig) string {
	return net.JoinHostPort(config.Host, config.Port)
}

func Listen(config *types.LovebugConfig) (net.Listener, error) {
	ln, err := net.Listen("tcp", Addr(config))
	if err != nil {
		return nil, fmt.Errorf("error listening on %s: %w", Addr(config), err)
	}
	return ln, nil
}

// Serve runs handler on ln until ctx is cancelled, then drains in-flight
// requests for up to ShutdownTimeout.
func Serve(ctx context.Context, ln net.Listener, handler http.Handler, logger *slog.Logger) error {
	server := &http.Server{
		Handler:           handler,
		ReadHeaderTimeout: readHeaderTimeout,
		ErrorLog:          slog.NewLogLogger(logger.Handler(), slog.LevelWarn),
	}

	errs := make(chan error, 1)
	go func() {
		logger.Info("running web server", "addr", ln.Addr().String())
		errs <- server.Serve(ln)
	}()

	select {
	case err := <-errs:
		return fmt.Errorf("error serving http server: %w", err)
	case <-ctx.Done():
	}

	logger.Info("shutting down web server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("error shutting down http server: %w", err)
	}

	if err := <-errs; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("error serving http server: %w", err)
	}

	return nil
}
