package config

// RedisConfig holds the optional Redis connection used for the shared
// settings cache. When Addr is empty the service falls back to the
// process-local cache.
type RedisConfig struct {
	Addr     string `env:"REDIS_ADDR" env-default:""`
	Password string `env:"REDIS_PASSWORD" env-default:""`
	DB       int    `env:"REDIS_DB" env-default:"0"`
}

// Enabled returns true when a Redis address is configured
func (r RedisConfig) Enabled() bool {
	return r.Addr != ""
}
