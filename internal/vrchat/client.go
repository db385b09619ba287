package vrchat

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"

	"github.com/jonboulle/clockwork"

	"github.com/PrideVRInc/VRCAuthProxy/internal/config"
	"github.com/PrideVRInc/VRCAuthProxy/internal/errors"
)

// UserAgent identifies the proxy on every upstream call, HTTP and WebSocket.
const UserAgent = "VRCAuthProxy V1.0.0 (https://github.com/PrideVRInc/VRCAuthProxy)"

const (
	currentUserPath = "/auth/user"
	totpVerifyPath  = "/auth/twofactorauth/totp/verify"
)

// Client performs the upstream login handshake. One Client serves all
// accounts; each login gets its own cookie jar.
type Client struct {
	baseURL string
	clock   clockwork.Clock
}

// NewClient creates a login client for the given upstream API base URL
// (scheme + host + API prefix, no trailing slash).
func NewClient(baseURL string, clock clockwork.Clock) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		clock:   clock,
	}
}

type totpVerifyResponse struct {
	Verified bool `json:"verified"`
}

type currentUserResponse struct {
	DisplayName string `json:"displayName"`
}

// Login authenticates one account against the upstream and returns a usable
// session. Failures are typed (*errors.Error) so the caller can classify and
// log them; a failed login never affects other accounts.
func (c *Client) Login(ctx context.Context, account config.Account) (*Session, error) {
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, errors.InternalError("failed to create cookie jar", err)
	}
	httpClient := &http.Client{Jar: jar}

	base, err := url.Parse(c.baseURL)
	if err != nil {
		return nil, errors.InternalError("invalid upstream base URL", err)
	}
	// Cookies are scoped to the host, not the API prefix.
	cookieURL := &url.URL{Scheme: base.Scheme, Host: base.Host, Path: "/"}

	body, err := c.probe(ctx, httpClient, account)
	if err != nil {
		return nil, err
	}

	// The upstream signals a pending second factor by mentioning "totp" in
	// the probe body. This is a compatibility surface: a substring check,
	// not structured parsing.
	if strings.Contains(body, "totp") {
		if account.TOTPSecret == "" {
			return nil, errors.MissingTOTPSecretError(account.Username)
		}
		if err := c.verifyTOTP(ctx, httpClient, account); err != nil {
			return nil, err
		}
	}

	displayName, err := c.confirm(ctx, httpClient, account)
	if err != nil {
		return nil, err
	}

	return &Session{
		Username:        account.Username,
		DisplayName:     displayName,
		AuthenticatedAt: c.clock.Now(),
		client:          httpClient,
		apiURL:          cookieURL,
	}, nil
}

// probe issues the current-user request with Basic credentials and returns
// the raw response body.
func (c *Client) probe(ctx context.Context, httpClient *http.Client, account config.Account) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+currentUserPath, nil)
	if err != nil {
		return "", errors.InternalError("failed to create probe request", err)
	}
	req.Header.Set("User-Agent", UserAgent)
	req.Header.Set("Authorization", "Basic "+basicAuth(account.Username, account.Password))

	resp, err := httpClient.Do(req)
	if err != nil {
		return "", errors.UpstreamUnreachableError(account.Username, 0, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", errors.UpstreamUnreachableError(account.Username, resp.StatusCode, err)
	}
	return string(body), nil
}

// verifyTOTP computes the current code and submits it to the verification
// endpoint.
func (c *Client) verifyTOTP(ctx context.Context, httpClient *http.Client, account config.Account) error {
	code, err := GenerateTOTPCode(account.TOTPSecret, c.clock.Now())
	if err != nil {
		return errors.TOTPComputationError(account.Username, err)
	}

	payload, err := json.Marshal(map[string]string{"code": code})
	if err != nil {
		return errors.InternalError("failed to encode totp payload", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+totpVerifyPath, bytes.NewReader(payload))
	if err != nil {
		return errors.InternalError("failed to create verify request", err)
	}
	req.Header.Set("User-Agent", UserAgent)
	req.Header.Set("Content-Type", "application/json")

	resp, err := httpClient.Do(req)
	if err != nil {
		return errors.UpstreamUnreachableError(account.Username, 0, err)
	}
	defer resp.Body.Close()

	var verify totpVerifyResponse
	if err := json.NewDecoder(resp.Body).Decode(&verify); err != nil {
		return errors.TOTPVerificationError(account.Username, err)
	}
	if !verify.Verified {
		return errors.TOTPVerificationError(account.Username, nil)
	}
	return nil
}

// confirm re-fetches the current user through the session cookie and extracts
// the display identity for diagnostics.
func (c *Client) confirm(ctx context.Context, httpClient *http.Client, account config.Account) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+currentUserPath, nil)
	if err != nil {
		return "", errors.InternalError("failed to create confirmation request", err)
	}
	req.Header.Set("User-Agent", UserAgent)

	resp, err := httpClient.Do(req)
	if err != nil {
		return "", errors.UpstreamUnreachableError(account.Username, 0, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", errors.UpstreamUnreachableError(account.Username, resp.StatusCode,
			fmt.Errorf("current user request returned status %d", resp.StatusCode))
	}

	var user currentUserResponse
	if err := json.NewDecoder(resp.Body).Decode(&user); err != nil {
		return "", errors.UpstreamUnreachableError(account.Username, resp.StatusCode, err)
	}
	return user.DisplayName, nil
}

// basicAuth builds the upstream's Basic credential from URL-encoded username
// and password.
func basicAuth(username, password string) string {
	credentials := url.QueryEscape(username) + ":" + url.QueryEscape(password)
	return base64.StdEncoding.EncodeToString([]byte(credentials))
}
