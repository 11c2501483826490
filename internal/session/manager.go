package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const keyPrefix = "assistant:session:"

var sessionsCreated = promauto.NewCounter(prometheus.CounterOpts{
	Name: "school_assistant_sessions_created_total",
	Help: "Chat sessions created",
})

// Manager stores chat sessions in Redis as JSON with a sliding TTL.
type Manager struct {
	client     redis.UniversalClient
	logger     *zap.Logger
	ttl        time.Duration
	maxHistory int
}

// Connect opens a Redis client and checks it answers.
func Connect(ctx context.Context, addr, password string, db int) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         addr,
		Password:     password,
		DB:           db,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	})

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}
	return client, nil
}

func NewManager(client redis.UniversalClient, ttl time.Duration, maxHistory int, logger *zap.Logger) *Manager {
	if logger == nil {
		logger = zap.NewNop()
	}
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &Manager{
		client:     client,
		logger:     logger,
		ttl:        ttl,
		maxHistory: maxHistory,
	}
}

func (m *Manager) key(id string) string { return keyPrefix + id }

// Create starts an empty session owned by userID.
func (m *Manager) Create(ctx context.Context, userID int) (*Session, error) {
	now := time.Now().UTC()
	s := &Session{
		ID:        uuid.New().String(),
		UserID:    userID,
		CreatedAt: now,
		UpdatedAt: now,
		ExpiresAt: now.Add(m.ttl),
		History:   make([]Message, 0),
	}

	if err := m.write(ctx, s); err != nil {
		return nil, fmt.Errorf("failed to save session: %w", err)
	}

	m.logger.Info("Created new session",
		zap.String("session_id", s.ID),
		zap.Int("user_id", userID),
	)
	sessionsCreated.Inc()
	return s, nil
}

// Get loads a session owned by userID. Sessions owned by someone else are
// reported as not found so their existence does not leak.
func (m *Manager) Get(ctx context.Context, id string, userID int) (*Session, error) {
	data, err := m.client.Get(ctx, m.key(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrSessionNotFound
	} else if err != nil {
		return nil, fmt.Errorf("failed to get session: %w", err)
	}

	var s Session
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("failed to unmarshal session: %w", err)
	}

	if s.UserID != userID {
		return nil, ErrSessionNotFound
	}

	if s.IsExpired() {
		_ = m.Delete(ctx, id)
		return nil, ErrSessionExpired
	}
	return &s, nil
}

// Save persists s, trims its history and pushes the expiry forward.
func (m *Manager) Save(ctx context.Context, s *Session) error {
	now := time.Now().UTC()
	s.UpdatedAt = now
	s.ExpiresAt = now.Add(m.ttl)

	if m.maxHistory > 0 && len(s.History) > m.maxHistory {
		s.History = append([]Message(nil), s.History[len(s.History)-m.maxHistory:]...)
	}

	if err := m.write(ctx, s); err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}
	return nil
}

func (m *Manager) Delete(ctx context.Context, id string) error {
	if err := m.client.Del(ctx, m.key(id)).Err(); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return nil
}

func (m *Manager) write(ctx context.Context, s *Session) error {
	data, err := json.Marshal(s)
	if err != nil {
		return err
	}
	return m.client.Set(ctx, m.key(s.ID), data, m.ttl).Err()
}
