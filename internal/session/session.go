package session

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// Role values carried by a session principal. A session holds exactly one
// role; instructor and student identities are mutually exclusive.
const (
	RoleInstructor = "instructor"
	RoleStudent    = "student"
)

// ErrNotFound indicates the session ID is unknown or expired.
var ErrNotFound = errors.New("session not found")

// Principal is the tagged identity stored per session.
type Principal struct {
	Role string `json:"role"`
	ID   uint   `json:"id"`
	Name string `json:"name"`
}

// IsInstructor reports whether the principal carries the instructor role.
func (p Principal) IsInstructor() bool { return p.Role == RoleInstructor }

// IsStudent reports whether the principal carries the student role.
func (p Principal) IsStudent() bool { return p.Role == RoleStudent }

// Manager stores sessions in Redis keyed by a random identifier.
type Manager struct {
	client *redis.Client
	ttl    time.Duration
	logger zerolog.Logger
}

// NewManager constructs a session manager.
func NewManager(client *redis.Client, ttl time.Duration, logger zerolog.Logger) *Manager {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}

	return &Manager{
		client: client,
		ttl:    ttl,
		logger: logger.With().Str("component", "session_manager").Logger(),
	}
}

// Create stores the principal and returns the new session identifier.
func (m *Manager) Create(ctx context.Context, principal Principal) (string, error) {
	raw := make([]byte, 32)
	if _, err := rand.Read(raw); err != nil {
		return "", fmt.Errorf("generate session id: %w", err)
	}
	sessionID := hex.EncodeToString(raw)

	payload, err := json.Marshal(principal)
	if err != nil {
		return "", fmt.Errorf("encode principal: %w", err)
	}

	if err := m.client.Set(ctx, sessionKey(sessionID), payload, m.ttl).Err(); err != nil {
		return "", fmt.Errorf("store session: %w", err)
	}

	return sessionID, nil
}

// Get resolves the principal for a session identifier.
func (m *Manager) Get(ctx context.Context, sessionID string) (Principal, error) {
	if sessionID == "" {
		return Principal{}, ErrNotFound
	}

	payload, err := m.client.Get(ctx, sessionKey(sessionID)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return Principal{}, ErrNotFound
		}
		return Principal{}, fmt.Errorf("load session: %w", err)
	}

	var principal Principal
	if err := json.Unmarshal([]byte(payload), &principal); err != nil {
		m.logger.Warn().Err(err).Msg("corrupt session payload, treating as missing")
		return Principal{}, ErrNotFound
	}

	return principal, nil
}

// Destroy removes the session regardless of which role was active.
func (m *Manager) Destroy(ctx context.Context, sessionID string) error {
	if sessionID == "" {
		return nil
	}

	return m.client.Del(ctx, sessionKey(sessionID)).Err()
}

func sessionKey(id string) string {
	return "session:" + id
}
