// Package notify tells a socket.io server, typically a dev server with hot
// reload, that the generated shader code changed.
package notify

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"net/url"
	"time"

	"github.com/specialistvlad/shaderbuild/internal/config"
	"github.com/specialistvlad/shaderbuild/internal/ctxlog"
	"github.com/zishang520/engine.io-client-go/transports"
	"github.com/zishang520/engine.io/v2/types"
	"github.com/zishang520/socket.io-client-go/socket"
)

const defaultTimeout = 10 * time.Second

// Payload is the event body.
type Payload struct {
	ShaderDir string   `json:"shader_dir"`
	Compiled  []string `json:"compiled"`
	Objects   []string `json:"objects"`
	Removed   []string `json:"removed"`
}

// Notifier emits one event per call over a fresh connection.
type Notifier struct {
	baseURL            string
	path               string
	namespace          string
	event              string
	timeout            time.Duration
	insecureSkipVerify bool
}

// New returns a Notifier for cfg, or nil when cfg is nil.
func New(cfg *config.Notify) (*Notifier, error) {
	if cfg == nil {
		return nil, nil
	}

	parsedURL, err := url.Parse(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse notify URL: %w", err)
	}
	if parsedURL.Scheme == "" || parsedURL.Host == "" {
		return nil, fmt.Errorf("notify URL %q must be absolute", cfg.URL)
	}

	timeout, err := time.ParseDuration(cfg.Timeout)
	if err != nil || timeout <= 0 {
		timeout = defaultTimeout
	}

	return &Notifier{
		baseURL:            fmt.Sprintf("%s://%s", parsedURL.Scheme, parsedURL.Host),
		path:               parsedURL.Path,
		namespace:          cfg.Namespace,
		event:              cfg.Event,
		timeout:            timeout,
		insecureSkipVerify: cfg.InsecureSkipVerify,
	}, nil
}

// Notify connects, emits the event with payload and waits for the server to
// acknowledge it before disconnecting. A nil Notifier does nothing.
func (n *Notifier) Notify(ctx context.Context, payload Payload) error {
	if n == nil {
		return nil
	}
	logger := ctxlog.FromContext(ctx).With("url", n.baseURL, "namespace", n.namespace, "event", n.event)

	opCtx, cancel := context.WithTimeout(ctx, n.timeout)
	defer cancel()

	opts := socket.DefaultOptions()
	if n.path != "" {
		opts.SetPath(n.path)
	}
	if n.insecureSkipVerify {
		logger.Warn("Skipping TLS certificate verification")
		opts.SetTLSClientConfig(&tls.Config{InsecureSkipVerify: true})
	}
	opts.SetTransports(types.NewSet(transports.WebSocket))
	opts.SetReconnection(false)
	opts.SetTimeout(n.timeout)

	manager := socket.NewManager(n.baseURL, opts)
	io := manager.Socket(n.namespace, opts)
	defer io.Disconnect()

	// done fires once: on the server ack, on an emit failure or on a
	// connection error. Emit alone only queues the packet.
	done := make(chan error, 1)
	finish := func(err error) {
		select {
		case done <- err:
		default:
		}
	}
	io.On(types.EventName("connect"), func(...any) {
		logger.Debug("Connected to notify server", "sid", io.Id())
		ack := func(_ []any, err error) {
			if err != nil {
				err = fmt.Errorf("no acknowledgement: %w", err)
			}
			finish(err)
		}
		if err := io.Timeout(n.timeout).Emit(n.event, payload, ack); err != nil {
			finish(err)
		}
	})
	io.On(types.EventName("connect_error"), func(errs ...any) {
		err := errors.New("connection refused")
		if len(errs) > 0 {
			if e, ok := errs[0].(error); ok {
				err = e
			}
		}
		finish(err)
	})

	io.Connect()

	select {
	case <-opCtx.Done():
		return fmt.Errorf("timed out after %s while notifying %s", n.timeout, n.baseURL)
	case err := <-done:
		if err != nil {
			return fmt.Errorf("failed to notify %s: %w", n.baseURL, err)
		}
		logger.Info("Rebuild notification acknowledged.")
		return nil
	}
}
