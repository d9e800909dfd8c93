package mcpgo

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/server"
	"github.com/pkg/errors"
)

const shutdownTimeout = 5 * time.Second

// NewSSEServer wraps s in the SSE transport. baseURL is advertised to
// clients in the endpoint event; it defaults to http://localhost<addr>.
func NewSSEServer(s *server.MCPServer, addr, baseURL string) *server.SSEServer {
	if baseURL == "" {
		host := addr
		if strings.HasPrefix(host, ":") {
			host = "localhost" + host
		}
		baseURL = "http://" + host
	}

	return server.NewSSEServer(s, server.WithBaseURL(baseURL))
}

// ServeSSE listens on addr until ctx is done, then shuts down gracefully.
func ServeSSE(ctx context.Context, addr string, sse *server.SSEServer, logger *slog.Logger) error {
	if logger == nil {
		logger = slog.Default()
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("serving SSE", "addr", addr)
		errCh <- sse.Start(addr)
	}()

	select {
	case err := <-errCh:
		if err == nil || errors.Is(err, http.ErrServerClosed) {
			return nil
		}

		return errors.Wrapf(err, "serve SSE on %s", addr)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
	defer cancel()

	if err := sse.Shutdown(shutdownCtx); err != nil {
		return errors.Wrap(err, "shutdown SSE")
	}

	return nil
}
