package config

import (
	"os"
	"strconv"
)

type Config struct {
	Port                 int
	DBDriver             string
	DBDSN                string
	JWTSecret            string
	TokenTTLHours        int
	WSInsecureSkipVerify bool
}

func Load() Config {
	port := 8084
	if v := os.Getenv("APP_PORT"); v != "" {
		if p, err := strconv.Atoi(v); err == nil {
			port = p
		}
	}

	driver := os.Getenv("DB_DRIVER")
	if driver == "" {
		driver = "mysql"
	}

	ttl := 24 * 7
	if v := os.Getenv("TOKEN_TTL_HOURS"); v != "" {
		if t, err := strconv.Atoi(v); err == nil && t > 0 {
			ttl = t
		}
	}

	wsInsecure := false
	if os.Getenv("WS_INSECURE_SKIP_VERIFY") == "true" {
		wsInsecure = true
	}

	return Config{
		Port:                 port,
		DBDriver:             driver,
		DBDSN:                os.Getenv("DB_DSN"),
		JWTSecret:            os.Getenv("JWT_SECRET"),
		TokenTTLHours:        ttl,
		WSInsecureSkipVerify: wsInsecure,
	}
}
