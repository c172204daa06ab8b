package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

type Env struct {
	AppAddr       string
	GinMode       string
	LedgerBaseURL string
	LedgerTimeout time.Duration
	PollInterval  time.Duration
	AuditDSN      string
	JWTSecret     string
}

func LoadEnv() Env {
	appAddr := strings.TrimSpace(os.Getenv("APP_ADDR"))
	if appAddr == "" {
		appAddr = ":8080"
	}

	ledgerBase := strings.TrimSpace(os.Getenv("LEDGER_BASE_URL"))
	if ledgerBase == "" {
		ledgerBase = "http://localhost:9090"
	}

	jwtSecret := strings.TrimSpace(os.Getenv("JWT_SECRET"))
	if jwtSecret == "" {
		jwtSecret = "washops-dev-secret-change-me"
	}

	return Env{
		AppAddr:       appAddr,
		GinMode:       strings.TrimSpace(os.Getenv("GIN_MODE")),
		LedgerBaseURL: strings.TrimRight(ledgerBase, "/"),
		LedgerTimeout: envSeconds("LEDGER_TIMEOUT_SECONDS", 10),
		PollInterval:  envSeconds("POLL_INTERVAL_SECONDS", 30),
		AuditDSN:      strings.TrimSpace(os.Getenv("AUDIT_DB_DSN")),
		JWTSecret:     jwtSecret,
	}
}

func envSeconds(key string, def int) time.Duration {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return time.Duration(def) * time.Second
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 {
		return time.Duration(def) * time.Second
	}
	return time.Duration(n) * time.Second
}
