package llm

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/Veraticus/thrift/internal/common"
	"github.com/Veraticus/thrift/internal/service"
)

// Service layers caching, rate limiting and retries over a provider Client.
type Service struct {
	client    Client
	cache     responseCache
	limiter   *rateLimiter
	logger    *slog.Logger
	retryOpts service.RetryOptions
}

// New builds the provider named in cfg and wraps it in a Service.
func New(ctx context.Context, cfg Config, logger *slog.Logger) (*Service, error) {
	client, err := NewClient(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create LLM client: %w", err)
	}
	return NewService(client, cfg, logger)
}

// NewService wraps an existing Client.
func NewService(client Client, cfg Config, logger *slog.Logger) (*Service, error) {
	if logger == nil {
		logger = slog.Default()
	}

	retryOpts := service.RetryOptions{
		MaxAttempts:  cfg.MaxRetries,
		InitialDelay: cfg.RetryDelay,
		MaxDelay:     30 * time.Second,
		Multiplier:   2.0,
	}
	if retryOpts.MaxAttempts <= 0 {
		retryOpts.MaxAttempts = 1
	}
	if retryOpts.InitialDelay == 0 {
		retryOpts.InitialDelay = time.Second
	}

	var cache responseCache
	if cfg.CachePath != "" {
		dc, err := newDiskCache(cfg.CachePath, cfg.CacheTTL, logger)
		if err != nil {
			return nil, err
		}
		cache = dc
	} else {
		cache = newMemoryCache(cfg.CacheTTL)
	}

	return &Service{
		client:    client,
		cache:     cache,
		limiter:   newRateLimiter(cfg.RateLimit),
		logger:    logger,
		retryOpts: retryOpts,
	}, nil
}

// Complete returns a cached reply when one exists, otherwise calls the provider.
func (s *Service) Complete(ctx context.Context, system, user string, temperature float64) (string, error) {
	key := cacheKey(system, user, temperature)
	if text, ok := s.cache.get(key); ok {
		s.logger.Debug("completion cache hit")
		return text, nil
	}

	var text string
	err := s.call(ctx, func() error {
		var err error
		text, err = s.client.Complete(ctx, system, user, temperature)
		return err
	})
	if err != nil {
		return "", err
	}

	s.cache.set(key, text)
	return text, nil
}

// Chat forwards a conversation to the provider. Conversations are not cached.
func (s *Service) Chat(ctx context.Context, messages []Message, temperature float64) (string, error) {
	var text string
	err := s.call(ctx, func() error {
		var err error
		text, err = s.client.Chat(ctx, messages, temperature)
		return err
	})
	return text, err
}

func (s *Service) call(ctx context.Context, op func() error) error {
	if err := s.limiter.wait(ctx); err != nil {
		return err
	}

	if err := common.WithRetry(ctx, op, s.retryOpts); err != nil {
		return fmt.Errorf("completion failed: %w", err)
	}
	return nil
}

// Close releases the response cache.
func (s *Service) Close() error {
	return s.cache.Close()
}
