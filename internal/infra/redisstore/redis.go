// Package redisstore implements domain.Store on Redis.
//
// Keys are namespaced as "{prefix}:{kind}:{id}":
//
//	account:{user}       JSON AccountState
//	settings:{user}      JSON UserSettings
//	session:{id}         JSON SleepSession
//	sessions:{user}      sorted set of session IDs scored by bedtime
//	open:{user}          ID of the session in progress
//	achievements:{user}  hash of achievement ID to unlock time (unix ms)
package redisstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sleepsheep/sheep/internal/domain"
)

var _ domain.Store = (*Store)(nil)

// Config configures the Redis store.
type Config struct {
	Addr     string
	Password string
	DB       int
	Prefix   string // key prefix, default "sheep"
}

// Store keeps sheep state in Redis.
type Store struct {
	client redis.UniversalClient
	prefix string
}

// Open connects to Redis and verifies the connection.
func Open(ctx context.Context, cfg Config) (*Store, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("ping redis %s: %w", cfg.Addr, err)
	}
	return New(client, cfg.Prefix), nil
}

// New wraps an existing client.
func New(client redis.UniversalClient, prefix string) *Store {
	if prefix == "" {
		prefix = "sheep"
	}
	return &Store{client: client, prefix: prefix}
}

// Ping checks connectivity.
func (s *Store) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

// Close releases the client.
func (s *Store) Close() error {
	return s.client.Close()
}

func (s *Store) key(kind, id string) string {
	return fmt.Sprintf("%s:%s:%s", s.prefix, kind, id)
}

// ─── Accounts ───────────────────────────────────────────────────────────────

// LoadAccount returns the stored account or domain.ErrAccountNotFound.
func (s *Store) LoadAccount(ctx context.Context, userID string) (domain.AccountState, error) {
	var st domain.AccountState
	if err := s.getJSON(ctx, s.key("account", userID), &st); err != nil {
		if errors.Is(err, redis.Nil) {
			return domain.AccountState{}, domain.ErrAccountNotFound
		}
		return domain.AccountState{}, fmt.Errorf("account %s: %w", userID, err)
	}
	st.Alive = true
	return st, nil
}

// SaveAccount stores an account snapshot.
func (s *Store) SaveAccount(ctx context.Context, st domain.AccountState) error {
	return s.setJSON(ctx, s.key("account", st.UserID), st)
}

// LoadSettings returns saved settings or domain.ErrAccountNotFound.
func (s *Store) LoadSettings(ctx context.Context, userID string) (domain.UserSettings, error) {
	var us domain.UserSettings
	if err := s.getJSON(ctx, s.key("settings", userID), &us); err != nil {
		if errors.Is(err, redis.Nil) {
			return domain.UserSettings{}, domain.ErrAccountNotFound
		}
		return domain.UserSettings{}, err
	}
	return us, nil
}

// SaveSettings stores a user's schedule.
func (s *Store) SaveSettings(ctx context.Context, userID string, us domain.UserSettings) error {
	return s.setJSON(ctx, s.key("settings", userID), us)
}

// ─── Sessions ───────────────────────────────────────────────────────────────

// SaveSession stores a session and maintains the user's index and open
// pointer in one transaction.
func (s *Store) SaveSession(ctx context.Context, sess domain.SleepSession) error {
	data, err := json.Marshal(sess)
	if err != nil {
		return err
	}
	openKey := s.key("open", sess.UserID)

	current, err := s.client.Get(ctx, openKey).Result()
	if err != nil && !errors.Is(err, redis.Nil) {
		return err
	}

	_, err = s.client.TxPipelined(ctx, func(p redis.Pipeliner) error {
		p.Set(ctx, s.key("session", sess.ID), data, 0)
		p.ZAdd(ctx, s.key("sessions", sess.UserID), redis.Z{
			Score:  float64(sess.Bedtime.UnixMilli()),
			Member: sess.ID,
		})
		switch {
		case sess.IsOpen():
			p.Set(ctx, openKey, sess.ID, 0)
		case current == sess.ID:
			p.Del(ctx, openKey)
		}
		return nil
	})
	return err
}

// OpenSession returns the user's unfinished session or domain.ErrNoOpenSession.
func (s *Store) OpenSession(ctx context.Context, userID string) (domain.SleepSession, error) {
	id, err := s.client.Get(ctx, s.key("open", userID)).Result()
	if errors.Is(err, redis.Nil) {
		return domain.SleepSession{}, domain.ErrNoOpenSession
	}
	if err != nil {
		return domain.SleepSession{}, err
	}

	var sess domain.SleepSession
	if err := s.getJSON(ctx, s.key("session", id), &sess); err != nil {
		if errors.Is(err, redis.Nil) {
			return domain.SleepSession{}, domain.ErrNoOpenSession
		}
		return domain.SleepSession{}, err
	}
	return sess, nil
}

// ListSessions returns up to limit sessions, newest first.
func (s *Store) ListSessions(ctx context.Context, userID string, limit int) ([]domain.SleepSession, error) {
	ids, err := s.client.ZRevRange(ctx, s.key("sessions", userID), 0, int64(limit-1)).Result()
	if err != nil {
		return nil, err
	}
	sessions := []domain.SleepSession{}
	if len(ids) == 0 {
		return sessions, nil
	}

	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = s.key("session", id)
	}
	vals, err := s.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, err
	}
	for _, v := range vals {
		str, ok := v.(string)
		if !ok {
			continue // index entry without a body
		}
		var sess domain.SleepSession
		if err := json.Unmarshal([]byte(str), &sess); err != nil {
			return nil, err
		}
		sessions = append(sessions, sess)
	}
	return sessions, nil
}

// ─── Achievements ───────────────────────────────────────────────────────────

// UnlockAchievement records an achievement once. Returns false if it was
// already unlocked.
func (s *Store) UnlockAchievement(ctx context.Context, userID, id string, at time.Time) (bool, error) {
	return s.client.HSetNX(ctx, s.key("achievements", userID), id, at.UnixMilli()).Result()
}

// ListAchievements returns a user's unlocked achievements, newest first.
func (s *Store) ListAchievements(ctx context.Context, userID string) ([]domain.UnlockedAchievement, error) {
	m, err := s.client.HGetAll(ctx, s.key("achievements", userID)).Result()
	if err != nil {
		return nil, err
	}
	out := make([]domain.UnlockedAchievement, 0, len(m))
	for id, v := range m {
		ms, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("achievement %s: %w", id, err)
		}
		out = append(out, domain.UnlockedAchievement{ID: id, UserID: userID, UnlockedAt: time.UnixMilli(ms)})
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].UnlockedAt.Equal(out[j].UnlockedAt) {
			return out[i].UnlockedAt.After(out[j].UnlockedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

// ─── JSON helpers ───────────────────────────────────────────────────────────

func (s *Store) getJSON(ctx context.Context, key string, v any) error {
	data, err := s.client.Get(ctx, key).Bytes()
	if err != nil {
		return err
	}
	return json.Unmarshal(data, v)
}

func (s *Store) setJSON(ctx context.Context, key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, key, data, 0).Err()
}
