package config

import (
	dbutils "github.com/tendant/db-utils/db"
)

// DatabaseConfig holds PostgreSQL database configuration
// This is shared across all services to avoid duplication
type DatabaseConfig struct {
	Host     string `env:"PBX_PG_HOST" env-default:"localhost"`
	Port     uint16 `env:"PBX_PG_PORT" env-default:"5432"`
	Database string `env:"PBX_PG_DATABASE" env-default:"pbx_db"`
	User     string `env:"PBX_PG_USER" env-default:"pbx"`
	Password string `env:"PBX_PG_PASSWORD" env-default:"pwd"`
}

// ToDbConfig converts the config to a db-utils DbConfig
func (d DatabaseConfig) ToDbConfig() dbutils.DbConfig {
	return dbutils.DbConfig{
		Host:     d.Host,
		Port:     d.Port,
		Database: d.Database,
		User:     d.User,
		Password: d.Password,
	}
}
