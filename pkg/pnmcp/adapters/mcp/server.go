package mcp

import (
	"context"
	"log/slog"
	"net"
	"net/http"
	"time"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/pkg/errors"
)

const (
	// EndpointPath serves the streamable HTTP transport.
	EndpointPath = "/mcp"
	// HealthPath answers liveness probes.
	HealthPath = "/healthz"

	shutdownTimeout = 5 * time.Second
)

// ServeStdio serves one client over stdin/stdout until ctx is done or the
// client disconnects.
func ServeStdio(ctx context.Context, srv *mcpsdk.Server) error {
	err := srv.Run(ctx, &mcpsdk.StdioTransport{})
	if err != nil && ctx.Err() != nil {
		return nil
	}

	return err
}

// Handler returns the HTTP routes for srv.
func Handler(srv *mcpsdk.Server) http.Handler {
	mux := http.NewServeMux()
	mux.Handle(EndpointPath, mcpsdk.NewStreamableHTTPHandler(
		func(*http.Request) *mcpsdk.Server { return srv },
		nil,
	))
	mux.HandleFunc(HealthPath, func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/plain")
		_, _ = w.Write([]byte("ok"))
	})

	return mux
}

// ServeHTTP listens on addr until ctx is done, then shuts down gracefully.
func ServeHTTP(ctx context.Context, addr string, srv *mcpsdk.Server, logger *slog.Logger) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return errors.Wrapf(err, "listen on %s", addr)
	}

	return serve(ctx, ln, Handler(srv), logger)
}

func serve(ctx context.Context, ln net.Listener, h http.Handler, logger *slog.Logger) error {
	if logger == nil {
		logger = slog.Default()
	}

	hs := &http.Server{
		Handler:           h,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("serving streamable HTTP", "addr", ln.Addr().String(), "path", EndpointPath)
		errCh <- hs.Serve(ln)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}

		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
	defer cancel()

	if err := hs.Shutdown(shutdownCtx); err != nil {
		return errors.Wrap(err, "shutdown")
	}
	<-errCh

	return nil
}
