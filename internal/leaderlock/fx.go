package leaderlock

import (
	"strings"

	redis "github.com/redis/go-redis/v9"
	"go.uber.org/fx"

	"github.com/cobrato/cobrato/internal/config"
)

// NewFromConfig returns a nil Locker when no redis address is configured.
func NewFromConfig(cfg config.Config) *Locker {
	addr := strings.TrimSpace(cfg.RedisAddr)
	if addr == "" {
		return nil
	}
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: strings.TrimSpace(cfg.RedisPassword),
		DB:       cfg.RedisDB,
	})
	return NewLocker(client)
}

var Module = fx.Module("leader.lock",
	fx.Provide(NewFromConfig),
)
