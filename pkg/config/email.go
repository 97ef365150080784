package config

import (
	"github.com/fluxpbx/adminapi/pkg/notice"
)

// EmailConfig holds SMTP configuration for the optional welcome notice
type EmailConfig struct {
	Host     string `env:"EMAIL_HOST" env-default:"localhost"`
	Port     uint16 `env:"EMAIL_PORT" env-default:"1025"`
	Username string `env:"EMAIL_USERNAME" env-default:""`
	Password string `env:"EMAIL_PASSWORD" env-default:""`
	From     string `env:"EMAIL_FROM" env-default:"noreply@example.com"`
	TLS      bool   `env:"EMAIL_TLS" env-default:"false"`
	Enabled  bool   `env:"EMAIL_WELCOME_ENABLED" env-default:"false"`
}

// ToSMTPConfig converts the config to a notice.SMTPConfig
func (e EmailConfig) ToSMTPConfig() notice.SMTPConfig {
	return notice.SMTPConfig{
		Host:     e.Host,
		Port:     int(e.Port),
		Username: e.Username,
		Password: e.Password,
		From:     e.From,
		TLS:      e.TLS,
	}
}
