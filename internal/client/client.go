package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/inventory-service/internal/api/dto"
	"github.com/spec-kit/inventory-service/internal/domain"
)

// Options tune a Client. Zero values pick defaults.
type Options struct {
	HTTPClient *http.Client
	Timeout    time.Duration
	Logger     *zap.Logger
	// OnSessionEnded is called after the stored credentials were cleared
	// because they could not be renewed.
	OnSessionEnded func()
}

// Response is a fully read HTTP response.
type Response struct {
	StatusCode int
	Header     http.Header
	Body       []byte
}

type refreshOutcome struct {
	token string
	err   error
}

// Client sends bearer-authenticated requests and renews the access token
// once when the API answers 401. Concurrent 401s share a single refresh call.
type Client struct {
	baseURL        string
	http           *http.Client
	session        *Session
	logger         *zap.Logger
	onSessionEnded func()

	mu         sync.Mutex
	refreshing bool
	pending    []func(refreshOutcome)
}

// New builds a client for the API at baseURL storing credentials in store.
func New(baseURL string, store Store, opts Options) *Client {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	httpClient := opts.HTTPClient
	if httpClient == nil {
		timeout := opts.Timeout
		if timeout <= 0 {
			timeout = 10 * time.Second
		}
		httpClient = &http.Client{Timeout: timeout}
	}
	return &Client{
		baseURL:        strings.TrimRight(baseURL, "/"),
		http:           httpClient,
		session:        NewSession(store, logger),
		logger:         logger,
		onSessionEnded: opts.OnSessionEnded,
	}
}

// Session exposes the stored credentials.
func (c *Client) Session() *Session { return c.session }

// Do sends an authenticated request. body is replayed byte-for-byte if the
// request has to be retried after a refresh.
func (c *Client) Do(ctx context.Context, method, path string, body []byte, header http.Header) (*Response, error) {
	token := c.session.AccessToken()
	resp, err := c.send(ctx, method, path, body, header, token)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusUnauthorized {
		return resp, nil
	}

	fresh, err := c.renew(ctx, token)
	if err != nil {
		return nil, err
	}
	resp, err = c.send(ctx, method, path, body, header, fresh)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode == http.StatusUnauthorized {
		return nil, ErrUnauthorized
	}
	return resp, nil
}

// renew returns an access token newer than stale, refreshing at most once
// across all concurrent callers.
func (c *Client) renew(ctx context.Context, stale string) (string, error) {
	c.mu.Lock()
	if current := c.session.AccessToken(); current != "" && current != stale {
		c.mu.Unlock()
		return current, nil
	}
	if c.refreshing {
		ch := make(chan refreshOutcome, 1)
		c.pending = append(c.pending, func(out refreshOutcome) { ch <- out })
		c.mu.Unlock()
		select {
		case out := <-ch:
			return out.token, out.err
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}
	refreshToken := c.session.RefreshToken()
	if refreshToken == "" {
		c.mu.Unlock()
		c.endSession()
		return "", ErrSessionEnded
	}
	c.refreshing = true
	c.mu.Unlock()

	// The refresh outlives the caller that started it; waiters depend on it.
	token, err := c.refresh(context.WithoutCancel(ctx), refreshToken)
	if err != nil && !errors.Is(err, ErrOffline) {
		c.endSession()
	}
	c.flush(refreshOutcome{token: token, err: err})
	return token, err
}

// flush resolves waiting callers in arrival order and clears the in-flight flag.
func (c *Client) flush(out refreshOutcome) {
	c.mu.Lock()
	pending := c.pending
	c.pending = nil
	c.refreshing = false
	c.mu.Unlock()
	for _, resolve := range pending {
		resolve(out)
	}
}

// refresh exchanges refreshToken and persists the new pair before returning.
// A rejection by the API is reported as ErrSessionEnded; transport failures
// keep the stored session.
func (c *Client) refresh(ctx context.Context, refreshToken string) (string, error) {
	body, err := json.Marshal(dto.RefreshRequest{RefreshToken: refreshToken})
	if err != nil {
		return "", err
	}
	resp, err := c.send(ctx, http.MethodPost, "/api/auth/refresh", body, nil, "")
	if err != nil {
		return "", err
	}
	if resp.StatusCode != http.StatusOK {
		c.logger.Info("refresh rejected", zap.Int("status", resp.StatusCode))
		return "", fmt.Errorf("%w: %w", ErrSessionEnded, decodeError(resp))
	}
	var auth dto.AuthResponse
	if err := json.Unmarshal(resp.Body, &auth); err != nil || auth.Token == "" {
		return "", fmt.Errorf("%w: malformed refresh response", ErrSessionEnded)
	}
	if err := c.session.Save(auth); err != nil {
		return "", fmt.Errorf("store session: %w", err)
	}
	c.logger.Debug("access token refreshed")
	return auth.Token, nil
}

// endSession clears the stored credentials. The session-ended signal fires
// only for the call that found credentials to clear.
func (c *Client) endSession() {
	c.mu.Lock()
	present := c.session.Present()
	if present {
		if err := c.session.Clear(); err != nil {
			c.logger.Warn("clear session", zap.Error(err))
		}
	}
	c.mu.Unlock()
	if present && c.onSessionEnded != nil {
		c.onSessionEnded()
	}
}

func (c *Client) send(ctx context.Context, method, path string, body []byte, header http.Header, token string) (*Response, error) {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, err
	}
	for k, vals := range header {
		for _, v := range vals {
			req.Header.Add(k, v)
		}
	}
	if body != nil && req.Header.Get("Content-Type") == "" {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, fmt.Errorf("%w: %w", ErrOffline, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrOffline, err)
	}
	return &Response{StatusCode: resp.StatusCode, Header: resp.Header, Body: raw}, nil
}

// Login exchanges credentials for a session.
func (c *Client) Login(ctx context.Context, email, password string) (domain.Identity, error) {
	body, err := json.Marshal(dto.LoginRequest{Email: email, Password: password})
	if err != nil {
		return domain.Identity{}, err
	}
	resp, err := c.send(ctx, http.MethodPost, "/api/auth/login", body, nil, "")
	if err != nil {
		return domain.Identity{}, err
	}
	if resp.StatusCode != http.StatusOK {
		return domain.Identity{}, decodeError(resp)
	}
	var auth dto.AuthResponse
	if err := json.Unmarshal(resp.Body, &auth); err != nil {
		return domain.Identity{}, fmt.Errorf("decode login response: %w", err)
	}
	if err := c.session.Save(auth); err != nil {
		return domain.Identity{}, fmt.Errorf("store session: %w", err)
	}
	return auth.User, nil
}

// Logout revokes the refresh token and clears the stored credentials. The
// local session is cleared even when the API cannot be reached.
func (c *Client) Logout(ctx context.Context) error {
	refreshToken := c.session.RefreshToken()
	var remoteErr error
	if refreshToken != "" {
		body, err := json.Marshal(dto.RefreshRequest{RefreshToken: refreshToken})
		if err != nil {
			return err
		}
		resp, err := c.send(ctx, http.MethodPost, "/api/auth/logout", body, nil, "")
		switch {
		case err != nil:
			remoteErr = err
		case resp.StatusCode >= 300:
			remoteErr = decodeError(resp)
		}
	}
	if err := c.session.Clear(); err != nil {
		return err
	}
	return remoteErr
}

// Reachable reports whether the API answers its liveness probe.
func (c *Client) Reachable(ctx context.Context) bool {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	resp, err := c.send(ctx, http.MethodGet, "/health/live", nil, nil, "")
	return err == nil && resp.StatusCode == http.StatusOK
}

func decodeError(resp *Response) error {
	var envelope struct {
		Error struct {
			Code    string         `json:"code"`
			Message string         `json:"message"`
			Details map[string]any `json:"details"`
		} `json:"error"`
	}
	apiErr := &APIError{Status: resp.StatusCode}
	if err := json.Unmarshal(resp.Body, &envelope); err == nil {
		apiErr.Code = envelope.Error.Code
		apiErr.Message = envelope.Error.Message
		apiErr.Details = envelope.Error.Details
	}
	return apiErr
}

// decodeData unmarshals the "data" member of a successful response into out.
func decodeData(resp *Response, out any) error {
	if resp.StatusCode >= 300 {
		return decodeError(resp)
	}
	var envelope struct {
		Data json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(resp.Body, &envelope); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	if err := json.Unmarshal(envelope.Data, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
