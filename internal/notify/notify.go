// Package notify streams job progress to a socket.io server.
package notify

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"net/url"
	"time"

	"github.com/specialistvlad/parsegrid/internal/ctxlog"
	"github.com/specialistvlad/parsegrid/internal/engine"
	"github.com/zishang520/engine.io-client-go/transports"
	"github.com/zishang520/engine.io/v2/types"
	"github.com/zishang520/socket.io-client-go/socket"
)

// Event names emitted to the server.
const (
	EventJobStarted  = "job_started"
	EventResult      = "transformation_finished"
	EventJobFinished = "job_finished"
)

// Config describes the socket.io endpoint.
type Config struct {
	URL                string
	Namespace          string
	InsecureSkipVerify bool
	ConnectTimeout     time.Duration
}

// Notifier is an engine.Observer that emits one event per progress step.
type Notifier struct {
	emit       func(event string, payload map[string]any)
	disconnect func()
}

var _ engine.Observer = (*Notifier)(nil)

// Dial connects to the server and returns a ready notifier.
func Dial(ctx context.Context, cfg Config) (*Notifier, error) {
	logger := ctxlog.FromContext(ctx).With("component", "notify", "url", cfg.URL)

	parsedURL, err := url.Parse(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse notify URL: %w", err)
	}
	if parsedURL.Scheme == "" || parsedURL.Host == "" {
		return nil, fmt.Errorf("notify URL %q must be absolute", cfg.URL)
	}
	timeout := cfg.ConnectTimeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}

	opts := socket.DefaultOptions()
	opts.SetPath(parsedURL.Path)
	if cfg.InsecureSkipVerify {
		logger.Warn("Skipping TLS certificate verification")
		opts.SetTLSClientConfig(&tls.Config{InsecureSkipVerify: true})
	}
	opts.SetTransports(types.NewSet(transports.WebSocket))

	connectChan := make(chan error, 1)
	baseURL := fmt.Sprintf("%s://%s", parsedURL.Scheme, parsedURL.Host)
	manager := socket.NewManager(baseURL, opts)
	io := manager.Socket(cfg.Namespace, opts)

	report := func(err error) {
		select {
		case connectChan <- err:
		default:
		}
	}
	io.Once(types.EventName("connect"), func(...any) {
		logger.Info("📡 Connected to notify server", "sid", io.Id())
		report(nil)
	})
	io.Once(types.EventName("connect_error"), func(args ...any) {
		report(connectError(args...))
	})

	logger.Debug("Connecting to notify server.")
	io.Connect()

	select {
	case err := <-connectChan:
		if err != nil {
			io.Disconnect()
			return nil, fmt.Errorf("socket.io connection failed: %w", err)
		}
	case <-ctx.Done():
		io.Disconnect()
		return nil, fmt.Errorf("context cancelled while waiting for socket.io connection")
	case <-time.After(timeout):
		io.Disconnect()
		return nil, fmt.Errorf("timed out after %s waiting for socket.io connection", timeout)
	}

	return newNotifier(
		func(event string, payload map[string]any) { io.Emit(event, payload) },
		func() { io.Disconnect() },
	), nil
}

// connectError converts the arguments of a connect_error event into an error.
func connectError(args ...any) error {
	if len(args) == 0 || args[0] == nil {
		return errors.New("connection refused by server")
	}
	if err, ok := args[0].(error); ok {
		return err
	}
	return fmt.Errorf("%v", args[0])
}

func newNotifier(emit func(string, map[string]any), disconnect func()) *Notifier {
	return &Notifier{emit: emit, disconnect: disconnect}
}

// Close disconnects from the server.
func (n *Notifier) Close() {
	n.disconnect()
}

// JobStarted implements engine.Observer.
func (n *Notifier) JobStarted(_ context.Context, runID string, total int) {
	n.emit(EventJobStarted, map[string]any{
		"run_id": runID,
		"total":  total,
	})
}

// ResultRecorded implements engine.Observer.
func (n *Notifier) ResultRecorded(_ context.Context, runID string, res engine.Result) {
	d := res.Descriptor
	n.emit(EventResult, map[string]any{
		"run_id":      runID,
		"index":       d.Index,
		"id":          d.ID(),
		"origin":      d.Origin,
		"destiny":     d.Destiny,
		"parser":      d.ParserType,
		"operation":   d.Operation,
		"kind":        res.Outcome.Kind.String(),
		"message":     res.Outcome.Message,
		"duration_ms": res.Outcome.Duration.Milliseconds(),
	})
}

// JobFinished implements engine.Observer.
func (n *Notifier) JobFinished(_ context.Context, report *engine.Report) {
	n.emit(EventJobFinished, map[string]any{
		"run_id":      report.RunID,
		"succeeded":   report.Succeeded,
		"failed":      report.Failed,
		"duration_ms": report.Duration.Milliseconds(),
	})
}
