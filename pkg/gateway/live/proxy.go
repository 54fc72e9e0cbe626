// Package live implements the realtime duplex proxy: one client WebSocket
// relayed to one upstream WebSocket for the lifetime of a session.
package live

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"golang.org/x/sync/errgroup"

	"github.com/albilad-voice/voice-gateway/pkg/core"
)

const upstreamName = "hamsa-realtime"

// UpstreamConfig describes how the upstream leg of a session is opened.
type UpstreamConfig struct {
	URL string

	// APIKey is injected as the X-API-KEY connection header. It is never
	// forwarded from (or to) the client.
	APIKey string

	HandshakeTimeout time.Duration

	// Dialer overrides the default dialer; tests point it at a fake upstream.
	Dialer *websocket.Dialer
}

// DialUpstream opens the upstream leg of a session. It is called only after
// the client connection has been accepted.
func DialUpstream(ctx context.Context, cfg UpstreamConfig) (*websocket.Conn, error) {
	dialer := cfg.Dialer
	if dialer == nil {
		dialer = &websocket.Dialer{
			Proxy:            http.ProxyFromEnvironment,
			HandshakeTimeout: cfg.HandshakeTimeout,
		}
	}
	header := http.Header{}
	header.Set("X-API-KEY", cfg.APIKey)
	conn, resp, err := dialer.DialContext(ctx, cfg.URL, header)
	if err != nil {
		if resp != nil {
			resp.Body.Close()
		}
		return nil, core.NewUpstreamUnreachable(upstreamName, err)
	}
	return conn, nil
}

// Proxy owns one client connection and one upstream connection for the
// duration of a realtime session. No other component reads or writes either
// connection while the session runs.
type Proxy struct {
	client   *websocket.Conn
	upstream *websocket.Conn

	writeTimeout time.Duration
	logger       *slog.Logger

	closeClientOnce   sync.Once
	closeUpstreamOnce sync.Once
}

func NewProxy(client, upstream *websocket.Conn, writeTimeout time.Duration, logger *slog.Logger) *Proxy {
	if logger == nil {
		logger = slog.Default()
	}
	return &Proxy{
		client:       client,
		upstream:     upstream,
		writeTimeout: writeTimeout,
		logger:       logger,
	}
}

// Run relays frames in both directions until either side closes or errors,
// then tears the whole session down. The two relay loops are independent;
// the first one to terminate cancels its sibling through the shared group
// context rather than waiting for it to notice on its own. A client going
// silent must not leave the upstream connection open indefinitely.
//
// Within a direction, frame order is preserved exactly. No ordering is
// guaranteed between directions. Returns nil on a clean close from either
// side.
func (p *Proxy) Run(ctx context.Context) error {
	g, gctx := errgroup.WithContext(ctx)

	// Teardown watcher: WebSocket reads do not take a context, so group
	// cancellation closes both connections to unblock the sibling loop.
	// Relay loops never return nil, so the first to terminate always
	// cancels gctx and this goroutine always exits.
	g.Go(func() error {
		<-gctx.Done()
		p.closeBoth()
		return nil
	})
	g.Go(func() error {
		return p.relay(p.client, p.upstream, "client_to_upstream")
	})
	g.Go(func() error {
		return p.relay(p.upstream, p.client, "upstream_to_client")
	})

	err := g.Wait()
	p.closeBoth()

	if isExpectedClose(err) {
		return nil
	}
	return err
}

// relay forwards one direction of the session. A relay loop never returns
// nil: termination always carries the read or write error so the group
// context is cancelled and the sibling loop is torn down promptly.
func (p *Proxy) relay(src, dst *websocket.Conn, direction string) error {
	for {
		messageType, payload, err := src.ReadMessage()
		if err != nil {
			return fmt.Errorf("%s read: %w", direction, err)
		}
		// Frame-type fidelity is a hard contract: downstream audio decoders
		// depend on frame typing, not payload sniffing.
		if messageType != websocket.TextMessage && messageType != websocket.BinaryMessage {
			continue
		}
		if p.writeTimeout > 0 {
			_ = dst.SetWriteDeadline(time.Now().Add(p.writeTimeout))
		}
		if err := dst.WriteMessage(messageType, payload); err != nil {
			return fmt.Errorf("%s write: %w", direction, err)
		}
		p.logger.Debug("relayed frame",
			"direction", direction,
			"binary", messageType == websocket.BinaryMessage,
			"bytes", len(payload),
		)
	}
}

// closeBoth closes both connections exactly once. Cleanup is idempotent; no
// frame is forwarded after teardown begins because both relay loops fail
// their next read or write.
func (p *Proxy) closeBoth() {
	deadline := time.Now().Add(2 * time.Second)
	p.closeClientOnce.Do(func() {
		_ = p.client.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), deadline)
		_ = p.client.Close()
	})
	p.closeUpstreamOnce.Do(func() {
		_ = p.upstream.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), deadline)
		_ = p.upstream.Close()
	})
}

// isExpectedClose reports whether err is the normal end of a session rather
// than a failure: a clean close frame from either peer, or the local close
// triggered by teardown.
func isExpectedClose(err error) bool {
	if err == nil {
		return true
	}
	var closeErr *websocket.CloseError
	if errors.As(err, &closeErr) {
		switch closeErr.Code {
		case websocket.CloseNormalClosure, websocket.CloseGoingAway, websocket.CloseNoStatusReceived:
			return true
		}
		return false
	}
	return errors.Is(err, net.ErrClosed)
}
