package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
)

type Env struct {
	AppAddr    string
	GinMode    string
	DBUser     string
	DBPassword string
	DBHost     string
	DBName     string
	JWTSecret  string
}

// LoadEnv reads configuration from the environment, layering a local .env
// file underneath when present.
func LoadEnv() Env {
	_ = godotenv.Load()

	return Env{
		AppAddr:    getenv("APP_ADDR", ":8080"),
		GinMode:    getenv("GIN_MODE", ""),
		DBUser:     getenv("DB_USER", "root"),
		DBPassword: getenv("DB_PASSWORD", ""),
		DBHost:     getenv("DB_HOST", "127.0.0.1:3306"),
		DBName:     getenv("DB_NAME", "rwanda_bus"),
		JWTSecret:  getenv("JWT_SECRET", "super-secret-key-change-me"),
	}
}

// DSN renders the MySQL connection string for database/sql.
func (e Env) DSN() string {
	return fmt.Sprintf("%s:%s@tcp(%s)/%s?parseTime=true&charset=utf8mb4&timeout=5s&readTimeout=30s&writeTimeout=30s",
		e.DBUser, e.DBPassword, e.DBHost, e.DBName)
}

func getenv(key, def string) string {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	return v
}
