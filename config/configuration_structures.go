package config

type DatabaseConfig struct {
	DSN            string `yaml:"dsn"`
	MigrationsPath string `yaml:"migrations_path"`
}

type JWTConfig struct {
	SecretKey       string `yaml:"secret_key"`
	Issuer          string `yaml:"issuer"`
	Audience        string `yaml:"audience"`
	AccessTokenTTL  string `yaml:"access_token_ttl"`
	RefreshTokenTTL string `yaml:"refresh_token_ttl"`
}

// RateLimitConfig : параметры защиты логина от перебора.
// Store выбирает реализацию: "memory" (один узел) или "redis" (общий счётчик на несколько инстансов).
type RateLimitConfig struct {
	Store       string `yaml:"store"`
	MaxFailures int    `yaml:"max_failures"`
	Window      string `yaml:"window"`
	Lockout     string `yaml:"lockout"`
}

type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}
