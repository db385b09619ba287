package server

import (
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/PrideVRInc/VRCAuthProxy/internal/errors"
	"github.com/PrideVRInc/VRCAuthProxy/internal/metrics"
)

// apiPrefix is the proxy-facing path prefix stripped before forwarding.
const apiPrefix = "/api/1"

// handleAPIRelay forwards one inbound request to the upstream API using the
// active session's credentials. The response streams back unmodified except
// for hop-by-hop headers.
func (s *Server) handleAPIRelay(c echo.Context) error {
	session := s.sessions.Active()
	if session == nil {
		metrics.RelayErrorsTotal.WithLabelValues(string(errors.TypePoolEmpty)).Inc()
		errors.Log(c.Request().Context(), errors.PoolEmptyError().WithContext("path", c.Request().URL.Path))
		return c.String(500, poolEmptyBody)
	}

	inbound := c.Request()
	target := s.config.UpstreamAPIURL + strings.TrimPrefix(inbound.URL.Path, apiPrefix)
	if inbound.URL.RawQuery != "" {
		target += "?" + inbound.URL.RawQuery
	}

	hasBody := inbound.ContentLength > 0 || len(inbound.TransferEncoding) > 0

	var body io.Reader
	if hasBody {
		body = inbound.Body
	}

	outbound, err := http.NewRequestWithContext(inbound.Context(), inbound.Method, target, body)
	if err != nil {
		metrics.RelayErrorsTotal.WithLabelValues(string(errors.TypeInternal)).Inc()
		serr := errors.InternalError("failed to build upstream request", err)
		errors.Log(c.Request().Context(), serr)
		return c.String(serr.HTTPStatus(), "Failed to build upstream request")
	}
	if hasBody {
		outbound.ContentLength = inbound.ContentLength
	}
	copyRequestHeaders(outbound, inbound, hasBody)

	start := time.Now()
	resp, err := session.Do(outbound)
	if err != nil {
		metrics.RelayErrorsTotal.WithLabelValues(string(errors.TypeUpstreamRequest)).Inc()
		serr := errors.UpstreamRequestError("failed to reach upstream", err).
			WithContext("method", inbound.Method).
			WithContext("path", inbound.URL.Path)
		errors.Log(c.Request().Context(), serr)
		return c.String(serr.HTTPStatus(), "Failed to reach upstream")
	}
	defer resp.Body.Close()

	metrics.RelayRequestsTotal.WithLabelValues(inbound.Method, strconv.Itoa(resp.StatusCode)).Inc()
	metrics.RelayRequestDuration.Observe(time.Since(start).Seconds())

	header := c.Response().Header()
	for name, values := range resp.Header {
		header[http.CanonicalHeaderKey(name)] = values
	}
	// The proxy frames its own response; relaying the upstream's
	// Transfer-Encoding would double-chunk it.
	header.Del("Transfer-Encoding")

	c.Response().WriteHeader(resp.StatusCode)
	if _, err := io.Copy(c.Response(), resp.Body); err != nil {
		// Headers are already on the wire; nothing left to surface.
		errors.Log(c.Request().Context(), errors.UpstreamRequestError("response copy interrupted", err))
	}
	return nil
}

// copyRequestHeaders applies the partition rule: the three content headers
// travel with the body, everything else except Host goes on the request,
// skipping names already present.
func copyRequestHeaders(outbound, inbound *http.Request, hasBody bool) {
	for name, values := range inbound.Header {
		canonical := http.CanonicalHeaderKey(name)
		switch canonical {
		case "Host":
			// Host must reflect the upstream, derived from the target URL.
		case "Content-Length":
			// Carried by outbound.ContentLength, never as a raw header.
		case "Content-Type", "Content-Disposition":
			if hasBody {
				outbound.Header[canonical] = values
			}
		case "Transfer-Encoding", "Connection", "Upgrade", "Keep-Alive":
			// Hop-by-hop, owned by the transport on each leg.
		default:
			if _, exists := outbound.Header[canonical]; exists {
				continue
			}
			outbound.Header[canonical] = values
		}
	}
}
