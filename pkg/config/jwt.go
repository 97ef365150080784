package config

// JwtConfig holds settings for verifying API session tokens
type JwtConfig struct {
	Secret   string `env:"JWT_SECRET" env-default:"very-secure-jwt-secret"`
	Issuer   string `env:"JWT_ISSUER" env-default:"pbx-admin"`
	Audience string `env:"JWT_AUDIENCE" env-default:"pbx-admin"`
}
