package savoury

import "gorm.io/gorm"
import "github.com/go-redis/redis/v8"

type ServiceConfig struct {
	Debug bool
}

type Config struct {
	DB          *gorm.DB
	RDB         *redis.Client
	TablePrefix string
	Service     ServiceConfig

	// BackplaneChannel 跨实例房间广播用的 Redis pub/sub channel。
	// 为空时默认 "sv:room_events"。多套环境共用一个 Redis 时务必区分开。
	BackplaneChannel string
}

type Option func(*Config)

func WithDB(db *gorm.DB) Option {
	return func(c *Config) {
		c.DB = db
	}
}

func WithTablePrefix(prefix string) Option {
	return func(c *Config) {
		c.TablePrefix = prefix
	}
}

func WithRDB(RDB *redis.Client) Option {
	return func(c *Config) {
		c.RDB = RDB
	}
}

// WithBackplaneChannel 自定义跨实例广播 channel。
func WithBackplaneChannel(channel string) Option {
	return func(c *Config) {
		c.BackplaneChannel = channel
	}
}

func WithServiceDebug(debug bool) Option {
	return func(c *Config) {
		c.Service.Debug = debug
	}
}
