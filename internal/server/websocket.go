package server

import (
	stderrors "errors"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"

	"github.com/PrideVRInc/VRCAuthProxy/internal/errors"
	"github.com/PrideVRInc/VRCAuthProxy/internal/metrics"
	"github.com/PrideVRInc/VRCAuthProxy/internal/vrchat"
)

const (
	// relayBufferSize is the per-direction copy buffer for relayed frames.
	relayBufferSize = 8192
	closeWriteWait  = 10 * time.Second
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  relayBufferSize,
	WriteBufferSize: relayBufferSize,
	CheckOrigin: func(r *http.Request) bool {
		return true // clients sit behind the proxy on arbitrary origins
	},
}

// websocketRelayMiddleware intercepts WebSocket upgrade requests on any path
// and relays them to the upstream realtime endpoint.
func (s *Server) websocketRelayMiddleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		if !websocket.IsWebSocketUpgrade(c.Request()) {
			return next(c)
		}
		return s.handleWebSocketRelay(c)
	}
}

func (s *Server) handleWebSocketRelay(c echo.Context) error {
	ctx := c.Request().Context()

	session := s.sessions.Active()
	if session == nil {
		metrics.WSRelaysTotal.WithLabelValues("pool_empty").Inc()
		errors.Log(ctx, errors.PoolEmptyError().WithContext("path", c.Request().URL.Path))
		return c.String(500, poolEmptyBody)
	}

	token := session.AuthToken()
	if token == "" {
		metrics.WSRelaysTotal.WithLabelValues("missing_token").Inc()
		errors.Log(ctx, errors.MissingSessionTokenError().WithContext("username", session.Username))
		return c.String(401, "Authentication token not found")
	}

	client, err := upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		// Upgrade writes its own error response.
		metrics.WSRelaysTotal.WithLabelValues("upgrade_failed").Inc()
		return nil
	}
	defer client.Close()

	upstream, err := s.dialUpstream(session, token)
	if err != nil {
		metrics.WSRelaysTotal.WithLabelValues("upstream_dial_failed").Inc()
		errors.Log(ctx, errors.UpstreamRequestError("failed to open upstream websocket", err).
			WithContext("username", session.Username))
		msg := websocket.FormatCloseMessage(websocket.CloseInternalServerErr, "upstream connection failed")
		_ = client.WriteControl(websocket.CloseMessage, msg, time.Now().Add(closeWriteWait))
		return nil
	}
	defer upstream.Close()

	metrics.WSRelaysTotal.WithLabelValues("started").Inc()
	metrics.WSRelaysCurrent.Inc()
	defer metrics.WSRelaysCurrent.Dec()
	start := time.Now()
	defer func() { metrics.WSRelayDuration.Observe(time.Since(start).Seconds()) }()

	slog.InfoContext(ctx, "WebSocket relay started", "account", session.Username)

	// First direction to exit wins; the other side's in-flight data is
	// discarded when both connections close. Known data-loss tradeoff.
	done := make(chan struct{}, 2)
	go func() {
		relayFrames(client, upstream, "client_to_upstream")
		done <- struct{}{}
	}()
	go func() {
		relayFrames(upstream, client, "upstream_to_client")
		done <- struct{}{}
	}()
	<-done

	slog.InfoContext(ctx, "WebSocket relay ended", "account", session.Username)
	return nil
}

func (s *Server) dialUpstream(session *vrchat.Session, token string) (*websocket.Conn, error) {
	dialer := &websocket.Dialer{
		Jar:             session.Jar(),
		ReadBufferSize:  relayBufferSize,
		WriteBufferSize: relayBufferSize,
	}
	header := http.Header{"User-Agent": {vrchat.UserAgent}}

	target := strings.TrimRight(s.config.UpstreamWSURL, "/") + "/?authToken=" + url.QueryEscape(token)
	conn, resp, err := dialer.Dial(target, header)
	if resp != nil && resp.Body != nil {
		resp.Body.Close()
	}
	return conn, err
}

// relayFrames copies frames from src to dst until either side closes or
// errors. A close frame from src is echoed to dst with the same code and
// reason before the loop exits.
func relayFrames(src, dst *websocket.Conn, direction string) {
	buf := make([]byte, relayBufferSize)
	for {
		msgType, r, err := src.NextReader()
		if err != nil {
			var closeErr *websocket.CloseError
			if stderrors.As(err, &closeErr) {
				msg := websocket.FormatCloseMessage(closeErr.Code, closeErr.Text)
				_ = dst.WriteControl(websocket.CloseMessage, msg, time.Now().Add(closeWriteWait))
			}
			return
		}

		w, err := dst.NextWriter(msgType)
		if err != nil {
			return
		}
		if _, err := io.CopyBuffer(w, r, buf); err != nil {
			_ = w.Close()
			return
		}
		if err := w.Close(); err != nil {
			return
		}
		metrics.WSFramesRelayed.WithLabelValues(direction).Inc()
	}
}
