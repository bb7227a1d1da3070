package config

import (
	"strings"
	"time"

	"github.com/spf13/viper"
)

const (
	SessionStoreMemory = "memory"
	SessionStoreRedis  = "redis"
)

type SessionConfig interface {
	GetSessionStore() string
	GetSessionTTL() time.Duration
	GetRedisAddr() string
	GetRedisPassword() string
	GetRedisDB() int
}

type Sessions struct {
	v *viper.Viper
}

var _ SessionConfig = Sessions{}

func (s Sessions) GetSessionStore() string {
	return strings.ToLower(s.v.GetString(sessionStoreVar))
}

func (s Sessions) GetSessionTTL() time.Duration {
	return s.v.GetDuration(sessionTTLVar)
}

func (s Sessions) GetRedisAddr() string {
	return s.v.GetString(redisAddrVar)
}

func (s Sessions) GetRedisPassword() string {
	return s.v.GetString(redisPasswordVar)
}

func (s Sessions) GetRedisDB() int {
	return s.v.GetInt(redisDBVar)
}
