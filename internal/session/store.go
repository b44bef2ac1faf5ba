// Package session keeps per-session clickstream and personalization state in
// Redis.
package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jonesrussell/north-cloud/personalization/internal/domain"
	infralogger "github.com/jonesrussell/north-cloud/personalization/internal/logger"
	"github.com/redis/go-redis/v9"
)

// ErrNotFound is returned when a session has no stored personalization.
var ErrNotFound = errors.New("session: not found")

// Hash fields of the session key.
const (
	fieldTracking        = "tracking"
	fieldPersonalization = "personalization"

	trackingDisabled = "disabled"
)

// Options configures a Store.
type Options struct {
	KeyPrefix string
	TTL       time.Duration
	// MaxClicks caps the stored clickstream; older clicks are dropped first.
	MaxClicks int
	// TrackingEnabled is the site-wide clickstream switch.
	TrackingEnabled bool
}

// Store manages session state in Redis.
type Store struct {
	client redis.UniversalClient
	opts   Options
	logger infralogger.Logger
}

// NewStore creates a new session store.
func NewStore(client redis.UniversalClient, opts Options, log infralogger.Logger) *Store {
	return &Store{client: client, opts: opts, logger: log}
}

func (s *Store) sessionKey(id string) string {
	return fmt.Sprintf("%s:session:%s", s.opts.KeyPrefix, id)
}

func (s *Store) clicksKey(id string) string {
	return s.sessionKey(id) + ":clicks"
}

// expire queues a TTL refresh. A zero TTL keeps keys without expiry.
func (s *Store) expire(ctx context.Context, pipe redis.Pipeliner, key string) {
	if s.opts.TTL > 0 {
		pipe.Expire(ctx, key, s.opts.TTL)
	}
}

// Session returns a handle bound to one session id.
func (s *Store) Session(id string) *Session {
	return &Session{store: s, id: id}
}

// AppendClick records a click at the end of the session's clickstream and
// trims the stream to MaxClicks.
func (s *Store) AppendClick(ctx context.Context, id string, click domain.ClickEvent) error {
	payload, err := json.Marshal(click)
	if err != nil {
		return fmt.Errorf("encode click: %w", err)
	}

	key := s.clicksKey(id)
	pipe := s.client.TxPipeline()
	pipe.RPush(ctx, key, payload)
	if s.opts.MaxClicks > 0 {
		pipe.LTrim(ctx, key, int64(-s.opts.MaxClicks), -1)
	}
	s.expire(ctx, pipe, key)
	s.expire(ctx, pipe, s.sessionKey(id))

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("append click: %w", err)
	}

	return nil
}

// SetTracking opts a session in or out of clickstream tracking.
func (s *Store) SetTracking(ctx context.Context, id string, enabled bool) error {
	key := s.sessionKey(id)

	pipe := s.client.TxPipeline()
	if enabled {
		pipe.HDel(ctx, key, fieldTracking)
	} else {
		pipe.HSet(ctx, key, fieldTracking, trackingDisabled)
	}
	s.expire(ctx, pipe, key)

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("set tracking: %w", err)
	}

	return nil
}

// Personalization returns the category id stored for the session.
func (s *Store) Personalization(ctx context.Context, id string) (string, error) {
	val, err := s.client.HGet(ctx, s.sessionKey(id), fieldPersonalization).Result()
	if errors.Is(err, redis.Nil) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("get personalization: %w", err)
	}
	return val, nil
}

// Session is the per-session view used by the popular category resolver.
type Session struct {
	store *Store
	id    string
}

// ID returns the session id.
func (s *Session) ID() string {
	return s.id
}

// ClickstreamEnabled reports whether clicks of this session may be used.
func (s *Session) ClickstreamEnabled(ctx context.Context) (bool, error) {
	if !s.store.opts.TrackingEnabled {
		return false, nil
	}

	val, err := s.store.client.HGet(ctx, s.store.sessionKey(s.id), fieldTracking).Result()
	if errors.Is(err, redis.Nil) {
		return true, nil
	}
	if err != nil {
		return false, fmt.Errorf("get tracking flag: %w", err)
	}

	return val != trackingDisabled, nil
}

// Clicks returns the stored clickstream, oldest first. An entry that cannot be
// decoded keeps its position as an empty click, so it matches no page and the
// newest stored entry is still the last one.
func (s *Session) Clicks(ctx context.Context) ([]domain.ClickEvent, error) {
	raw, err := s.store.client.LRange(ctx, s.store.clicksKey(s.id), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("get clicks: %w", err)
	}

	clicks := make([]domain.ClickEvent, 0, len(raw))
	for _, item := range raw {
		var click domain.ClickEvent
		if decodeErr := json.Unmarshal([]byte(item), &click); decodeErr != nil {
			s.store.logger.Warn("Undecodable click kept as empty",
				infralogger.String("session_id", s.id),
				infralogger.Error(decodeErr),
			)
			click = domain.ClickEvent{}
		}
		clicks = append(clicks, click)
	}

	return clicks, nil
}

// SetPersonalization overwrites the session's personalization category.
func (s *Session) SetPersonalization(ctx context.Context, categoryID string) error {
	key := s.store.sessionKey(s.id)

	pipe := s.store.client.TxPipeline()
	pipe.HSet(ctx, key, fieldPersonalization, categoryID)
	s.store.expire(ctx, pipe, key)

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("set personalization: %w", err)
	}

	return nil
}
