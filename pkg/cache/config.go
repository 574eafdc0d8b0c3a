package cache

import (
	"fmt"
	"time"

	"github.com/creasty/defaults"
	"github.com/go-playground/validator/v10"
)

// RedisConfig describes the shared response cache. Zero fields take their default tag.
type RedisConfig struct {
	Addr        string        `default:"localhost:6379" validate:"hostname_port"`
	DB          int           `validate:"gte=0,lte=15"`
	Prefix      string        `default:"finmerge" validate:"required"`
	PoolSize    int           `default:"4" validate:"gte=1"`
	DialTimeout time.Duration `default:"3s"`
	IOTimeout   time.Duration `default:"2s"`
	Password    string
}

func (c *RedisConfig) normalize() error {
	if err := defaults.Set(c); err != nil {
		return fmt.Errorf("redis config defaults: %w", err)
	}
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("redis config: %w", err)
	}
	return nil
}

type MemoryOption func(*MemoryConfig)

type MemoryConfig struct {
	MaxSize int
	Now     func() time.Time
}

// WithMemoryMaxSize bounds the entry count; the least recently used entry goes first.
func WithMemoryMaxSize(size int) MemoryOption {
	return func(c *MemoryConfig) { c.MaxSize = size }
}

func WithMemoryClock(now func() time.Time) MemoryOption {
	return func(c *MemoryConfig) { c.Now = now }
}
