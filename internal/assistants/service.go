// Package assistants fronts the platform's assistant configuration API with
// a short-lived read cache. Assistant behavior is owned by the platform;
// this service only reads and forwards configuration.
package assistants

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"voicewatch/internal/platform"

	"github.com/redis/go-redis/v9"
)

const (
	listKey   = "assistants:list"
	keyPrefix = "assistants:"

	defaultTTL = time.Minute
)

// API is the slice of the platform client this service needs.
type API interface {
	ListAssistants(ctx context.Context) ([]platform.Assistant, error)
	GetAssistant(ctx context.Context, id string) (platform.Assistant, error)
	CreateAssistant(ctx context.Context, req platform.AssistantRequest) (platform.Assistant, error)
	UpdateAssistant(ctx context.Context, id string, req platform.AssistantRequest) (platform.Assistant, error)
	DeleteAssistant(ctx context.Context, id string) error
}

// Cache is a byte-level read cache. Implementations must treat misses as
// (nil, false, nil), not errors.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, val []byte, ttl time.Duration) error
	Del(ctx context.Context, keys ...string) error
}

// RedisCache backs Cache with redis.
type RedisCache struct {
	RDB *redis.Client
}

func (c RedisCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	raw, err := c.RDB.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return raw, true, nil
}

func (c RedisCache) Set(ctx context.Context, key string, val []byte, ttl time.Duration) error {
	return c.RDB.Set(ctx, key, val, ttl).Err()
}

func (c RedisCache) Del(ctx context.Context, keys ...string) error {
	return c.RDB.Del(ctx, keys...).Err()
}

type Service struct {
	api   API
	cache Cache // optional; nil disables caching
	ttl   time.Duration
	log   *slog.Logger
}

func NewService(api API, cache Cache, log *slog.Logger) *Service {
	if log == nil {
		log = slog.Default()
	}
	return &Service{api: api, cache: cache, ttl: defaultTTL, log: log}
}

func (s *Service) List(ctx context.Context) ([]platform.Assistant, error) {
	var out []platform.Assistant
	if s.cacheGet(ctx, listKey, &out) {
		return out, nil
	}
	out, err := s.api.ListAssistants(ctx)
	if err != nil {
		return nil, err
	}
	s.cacheSet(ctx, listKey, out)
	return out, nil
}

func (s *Service) Get(ctx context.Context, id string) (platform.Assistant, error) {
	var out platform.Assistant
	if s.cacheGet(ctx, keyPrefix+id, &out) {
		return out, nil
	}
	out, err := s.api.GetAssistant(ctx, id)
	if err != nil {
		return platform.Assistant{}, err
	}
	s.cacheSet(ctx, keyPrefix+id, out)
	return out, nil
}

func (s *Service) Create(ctx context.Context, req platform.AssistantRequest) (platform.Assistant, error) {
	out, err := s.api.CreateAssistant(ctx, req)
	if err != nil {
		return platform.Assistant{}, err
	}
	s.invalidate(ctx, listKey)
	return out, nil
}

func (s *Service) Update(ctx context.Context, id string, req platform.AssistantRequest) (platform.Assistant, error) {
	out, err := s.api.UpdateAssistant(ctx, id, req)
	if err != nil {
		return platform.Assistant{}, err
	}
	s.invalidate(ctx, listKey, keyPrefix+id)
	return out, nil
}

func (s *Service) Delete(ctx context.Context, id string) error {
	if err := s.api.DeleteAssistant(ctx, id); err != nil {
		return err
	}
	s.invalidate(ctx, listKey, keyPrefix+id)
	return nil
}

// cacheGet loads key into out; any cache failure is a miss.
func (s *Service) cacheGet(ctx context.Context, key string, out any) bool {
	if s.cache == nil {
		return false
	}
	raw, ok, err := s.cache.Get(ctx, key)
	if err != nil {
		s.log.Warn("assistant cache read failed", "key", key, "err", err)
		return false
	}
	if !ok {
		return false
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return false
	}
	return true
}

func (s *Service) cacheSet(ctx context.Context, key string, val any) {
	if s.cache == nil {
		return
	}
	raw, err := json.Marshal(val)
	if err != nil {
		return
	}
	if err := s.cache.Set(ctx, key, raw, s.ttl); err != nil {
		s.log.Warn("assistant cache write failed", "key", key, "err", err)
	}
}

func (s *Service) invalidate(ctx context.Context, keys ...string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Del(ctx, keys...); err != nil {
		s.log.Warn("assistant cache invalidation failed", "err", err)
	}
}
