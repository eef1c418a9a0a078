package client

import (
	"encoding/json"

	"go.uber.org/zap"

	"github.com/spec-kit/inventory-service/internal/api/dto"
	"github.com/spec-kit/inventory-service/internal/domain"
)

// Keys under which client state is stored.
const (
	KeyToken             = "token"
	KeyRefreshToken      = "refreshToken"
	KeyUser              = "user"
	KeyOfflineQueue      = "offlineQueue"
	KeyOfflineDeadLetter = "offlineDeadLetter"
)

// Session reads and writes the stored credentials.
type Session struct {
	store  Store
	logger *zap.Logger
}

// NewSession wraps store.
func NewSession(store Store, logger *zap.Logger) *Session {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Session{store: store, logger: logger}
}

func (s *Session) get(key string) string {
	v, _, err := s.store.Get(key)
	if err != nil {
		s.logger.Warn("read session state", zap.String("key", key), zap.Error(err))
		return ""
	}
	return v
}

// AccessToken returns the stored access token or "".
func (s *Session) AccessToken() string { return s.get(KeyToken) }

// RefreshToken returns the stored refresh token or "".
func (s *Session) RefreshToken() string { return s.get(KeyRefreshToken) }

// Identity returns the cached identity. A corrupted record is deleted and
// reported as absent.
func (s *Session) Identity() (domain.Identity, bool) {
	raw := s.get(KeyUser)
	if raw == "" {
		return domain.Identity{}, false
	}
	var identity domain.Identity
	if err := json.Unmarshal([]byte(raw), &identity); err != nil || identity.ID == "" {
		s.logger.Warn("discarding corrupted identity", zap.Error(err))
		if err := s.store.Delete(KeyUser); err != nil {
			s.logger.Warn("delete corrupted identity", zap.Error(err))
		}
		return domain.Identity{}, false
	}
	return identity, true
}

// Save stores the credentials from a login or refresh response.
func (s *Session) Save(resp dto.AuthResponse) error {
	user, err := json.Marshal(resp.User)
	if err != nil {
		return err
	}
	if err := s.store.Set(KeyToken, resp.Token); err != nil {
		return err
	}
	if err := s.store.Set(KeyRefreshToken, resp.RefreshToken); err != nil {
		return err
	}
	return s.store.Set(KeyUser, string(user))
}

// Present reports whether any credential is stored.
func (s *Session) Present() bool {
	return s.get(KeyToken) != "" || s.get(KeyRefreshToken) != "" || s.get(KeyUser) != ""
}

// Clear removes the credentials. The offline queue is kept.
func (s *Session) Clear() error {
	return s.store.Delete(KeyToken, KeyRefreshToken, KeyUser)
}
