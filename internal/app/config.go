package app

import (
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	Env, Port string

	DBDriver          string
	DBDSN             string
	DBMaxOpenConns    int
	DBMaxIdleConns    int
	DBConnMaxLifetime time.Duration

	JWTSecret   string
	JWTTTL      time.Duration
	AdminEmails []string

	RedisAddr       string
	RedisPassword   string
	RedisDB         int
	ProductCacheTTL time.Duration
	RateLimitPerMin int

	SMTPHost, SMTPPort, SMTPFrom string

	ShutdownTimeout time.Duration
}

func getEnv(k, d string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return d
}

func getInt(k string, d int) int {
	if n, err := strconv.Atoi(os.Getenv(k)); err == nil {
		return n
	}
	return d
}

func getDuration(k string, d time.Duration) time.Duration {
	if v, err := time.ParseDuration(os.Getenv(k)); err == nil {
		return v
	}
	return d
}

func getList(k string) []string {
	var out []string
	for _, v := range strings.Split(os.Getenv(k), ",") {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}

func LoadConfig() Config {
	return Config{
		Env:  getEnv("APP_ENV", "dev"),
		Port: getEnv("APP_PORT", "8080"),

		DBDriver:          getEnv("DB_DRIVER", "postgres"),
		DBDSN:             os.Getenv("DB_DSN"),
		DBMaxOpenConns:    getInt("DB_MAX_OPEN_CONNS", 25),
		DBMaxIdleConns:    getInt("DB_MAX_IDLE_CONNS", 5),
		DBConnMaxLifetime: getDuration("DB_CONN_MAX_LIFETIME", 30*time.Minute),

		JWTSecret:   os.Getenv("JWT_SECRET"),
		JWTTTL:      getDuration("JWT_TTL", time.Hour),
		AdminEmails: getList("ADMIN_EMAILS"),

		RedisAddr:       os.Getenv("REDIS_ADDR"),
		RedisPassword:   os.Getenv("REDIS_PASSWORD"),
		RedisDB:         getInt("REDIS_DB", 0),
		ProductCacheTTL: getDuration("PRODUCT_CACHE_TTL", 5*time.Minute),
		RateLimitPerMin: getInt("RATE_LIMIT_PER_MINUTE", 5),

		SMTPHost: os.Getenv("SMTP_HOST"),
		SMTPPort: getEnv("SMTP_PORT", "1025"),
		SMTPFrom: getEnv("SMTP_FROM", "shop@localhost"),

		ShutdownTimeout: getDuration("SHUTDOWN_TIMEOUT", 10*time.Second),
	}
}
