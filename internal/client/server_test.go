package client

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/spec-kit/inventory-service/internal/api/dto"
	"github.com/spec-kit/inventory-service/internal/domain"
)

// fakeAPI is a minimal stand-in for the inventory API. Protected routes
// accept only the current access token.
type fakeAPI struct {
	mu           sync.Mutex
	validToken   string
	refreshToken string
	refreshDelay time.Duration
	rejectAll    bool
	refreshFail  bool

	refreshCalls  atomic.Int32
	protectedHits atomic.Int32
	bodies        []string
	keys          []string
	authorized    []string
}

func newFakeAPI(t *testing.T) (*fakeAPI, *httptest.Server) {
	t.Helper()
	f := &fakeAPI{validToken: "new-access", refreshToken: "refresh-1"}
	srv := httptest.NewServer(http.HandlerFunc(f.serve))
	t.Cleanup(srv.Close)
	return f, srv
}

func (f *fakeAPI) serve(w http.ResponseWriter, r *http.Request) {
	body, _ := io.ReadAll(r.Body)
	switch r.URL.Path {
	case "/health/live":
		writeJSON(w, http.StatusOK, map[string]string{"status": "alive"})
	case "/api/auth/login":
		writeJSON(w, http.StatusOK, f.authResponse())
	case "/api/auth/logout":
		w.WriteHeader(http.StatusNoContent)
	case "/api/auth/refresh":
		f.refreshCalls.Add(1)
		time.Sleep(f.refreshDelay)
		var req dto.RefreshRequest
		_ = json.Unmarshal(body, &req)
		f.mu.Lock()
		ok := !f.refreshFail && req.RefreshToken == f.refreshToken
		f.mu.Unlock()
		if !ok {
			writeJSON(w, http.StatusUnauthorized, map[string]any{"error": map[string]string{"code": "UNAUTHORIZED", "message": "refresh token revoked"}})
			return
		}
		f.mu.Lock()
		f.refreshToken = "refresh-2"
		f.mu.Unlock()
		writeJSON(w, http.StatusOK, f.authResponse())
	default:
		f.protectedHits.Add(1)
		token := strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")
		f.mu.Lock()
		valid := !f.rejectAll && token == f.validToken
		f.bodies = append(f.bodies, string(body))
		f.keys = append(f.keys, r.Header.Get(dto.IdempotencyKeyHeader))
		if valid {
			f.authorized = append(f.authorized, token)
		}
		f.mu.Unlock()
		if !valid {
			writeJSON(w, http.StatusUnauthorized, map[string]any{"error": map[string]string{"code": "UNAUTHORIZED", "message": "invalid token"}})
			return
		}
		if strings.HasPrefix(r.URL.Path, "/api/movements/") && r.Method == http.MethodPost {
			var req dto.MovementRequest
			_ = json.Unmarshal(body, &req)
			writeJSON(w, http.StatusCreated, map[string]any{"data": dto.MovementResponse{
				ID:             "m-1",
				ItemID:         req.ItemID,
				Quantity:       req.Quantity,
				IdempotencyKey: r.Header.Get(dto.IdempotencyKeyHeader),
			}})
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"data": dto.UserResponse{ID: "u-1", Role: domain.RoleWarehouseManager}})
	}
}

func (f *fakeAPI) recorded() (bodies, keys, authorized []string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.bodies...), append([]string(nil), f.keys...), append([]string(nil), f.authorized...)
}

func (f *fakeAPI) authResponse() dto.AuthResponse {
	f.mu.Lock()
	defer f.mu.Unlock()
	return dto.AuthResponse{
		Token:        f.validToken,
		RefreshToken: f.refreshToken,
		User:         domain.Identity{ID: "u-1", Email: "wm@example.com", Role: domain.RoleWarehouseManager},
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// switchTransport fails every round trip while offline is set.
type switchTransport struct {
	offline atomic.Bool
}

func (s *switchTransport) RoundTrip(r *http.Request) (*http.Response, error) {
	if s.offline.Load() {
		return nil, errors.New("dial tcp: network is unreachable")
	}
	return http.DefaultTransport.RoundTrip(r)
}

// seedSession stores an expired access token and a valid refresh token.
func seedSession(t *testing.T, store Store) {
	t.Helper()
	for k, v := range map[string]string{
		KeyToken:        "old-access",
		KeyRefreshToken: "refresh-1",
		KeyUser:         `{"id":"u-1","email":"wm@example.com","role":"WarehouseManager"}`,
	} {
		if err := store.Set(k, v); err != nil {
			t.Fatal(err)
		}
	}
}
