// Package config exposes the runtime configuration of the dashboard. Values come from the
// process environment, optionally seeded from a .env file in the working directory.
package config

import (
	_ "embed"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

//go:embed version
var version string

//go:embed name
var name string

type LogLevel string

const (
	Debug  LogLevel = "debug"
	Info   LogLevel = "info"
	Notice LogLevel = "notice"
	Warn   LogLevel = "warn"
	Error  LogLevel = "error"
)

const (
	defaultPort           = 5000
	defaultDriverAPIURL   = "https://api.jolpi.ca/ergast/f1"
	defaultSessionMaxAge  = 60 * 24 * 7
	defaultLoginRateLimit = 10
)

// LoadEnv merges the given .env files (or ./.env when none are given) into the process
// environment. Variables that are already set win. A missing file is not an error.
func LoadEnv(files ...string) error {
	if len(files) == 0 {
		files = []string{".env"}
	}
	existing := make([]string, 0, len(files))
	for _, f := range files {
		if _, err := os.Stat(f); err == nil {
			existing = append(existing, f)
		}
	}
	if len(existing) == 0 {
		return nil
	}
	return godotenv.Load(existing...)
}

func GetVersion() string {
	return strings.TrimSpace(version)
}

func GetName() string {
	return strings.TrimSpace(name)
}

func GetLogLevel() LogLevel {
	if IsDebug() {
		return Debug
	}
	logLevel := os.Getenv("APEX_LOG_LEVEL")
	if logLevel == "" {
		return Info
	}
	return LogLevel(logLevel)
}

func IsDebug() bool {
	return os.Getenv("APEX_DEBUG") == "true"
}

func GetDBFolderPath() string {
	dbFolderPath := os.Getenv("APEX_DB_FOLDER")
	if dbFolderPath == "" {
		dbFolderPath = "db"
	}
	return dbFolderPath
}

func GetDBPath() string {
	return filepath.Join(GetDBFolderPath(), fmt.Sprintf("%s.db", GetName()))
}

func GetLogFolder() string {
	logFolderPath := os.Getenv("APEX_LOG_FOLDER")
	if logFolderPath == "" {
		logFolderPath = "log"
	}
	return logFolderPath
}

// GetListen returns the bind address of the web server. Empty means all interfaces.
func GetListen() string {
	return os.Getenv("APEX_LISTEN")
}

func GetPort() int {
	return getInt("APEX_PORT", defaultPort)
}

// GetSecretKey returns the key used to sign session cookies. An empty value makes the
// server generate a throwaway key, so sessions do not survive a restart.
func GetSecretKey() string {
	return os.Getenv("SECRET_KEY")
}

// GetSessionMaxAge returns the login session lifetime in minutes.
func GetSessionMaxAge() int {
	return getInt("APEX_SESSION_MAX_AGE", defaultSessionMaxAge)
}

// GetLoginRateLimit returns how many login or register attempts one client may make per minute.
func GetLoginRateLimit() int {
	return getInt("APEX_LOGIN_RATE_LIMIT", defaultLoginRateLimit)
}

func GetDriverAPIURL() string {
	u := os.Getenv("APEX_DRIVER_API_URL")
	if u == "" {
		u = defaultDriverAPIURL
	}
	return strings.TrimRight(u, "/")
}

// GetPublicURL is the externally reachable base URL, used for links in emails.
func GetPublicURL() string {
	u := os.Getenv("APEX_PUBLIC_URL")
	if u == "" {
		u = fmt.Sprintf("http://localhost:%d", GetPort())
	}
	return strings.TrimRight(u, "/")
}

func getInt(key string, def int) int {
	raw := os.Getenv(key)
	if raw == "" {
		return def
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v <= 0 {
		return def
	}
	return v
}

func getBool(key string, def bool) bool {
	raw := os.Getenv(key)
	if raw == "" {
		return def
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return def
	}
	return v
}
