package config

import (
	"errors"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type AuthMode string

const (
	// AuthModeDev: sin verifier, el header X-Debug-User-ID identifica al usuario.
	AuthModeDev AuthMode = "dev"
	// AuthModeOdin: Bearer token verificado contra Odin.
	AuthModeOdin AuthMode = "odin"
)

type Config struct {
	Env  string
	Addr string

	DBDSN     string
	DBMigrate bool

	AuthMode    AuthMode
	OdinBaseURL string
	OdinAPIKey  string

	PlansBaseURL    string
	PlansAPIKey     string
	StaffCapability string

	// RewardsReconcileCron vacío = job deshabilitado.
	RewardsReconcileCron string

	LogLevel  string
	LogFormat string
	LogFile   string
	AppName   string

	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// Load lee .env (si existe, sin pisar variables ya definidas) y luego el entorno.
func Load(files ...string) (Config, error) {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return Config{}, err
		}
	}

	addr := getenv("ADDR", "")
	if addr == "" {
		addr = ":" + getenv("PORT", "8080")
	}

	cfg := Config{
		Env:  getenv("APP_ENV", "development"),
		Addr: addr,

		DBDSN:     os.Getenv("DB_DSN"),
		DBMigrate: getenvBool("DB_MIGRATE", true),

		AuthMode:    AuthMode(strings.ToLower(getenv("AUTH_MODE", string(AuthModeDev)))),
		OdinBaseURL: os.Getenv("ODIN_BASE_URL"),
		OdinAPIKey:  os.Getenv("ODIN_API_KEY"),

		PlansBaseURL:    os.Getenv("PLANS_BASE_URL"),
		PlansAPIKey:     os.Getenv("PLANS_API_KEY"),
		StaffCapability: getenv("STAFF_CAPABILITY", "clinic:staff"),

		RewardsReconcileCron: strings.TrimSpace(os.Getenv("REWARDS_RECONCILE_CRON")),

		LogLevel:  getenv("LOG_LEVEL", "info"),
		LogFormat: getenv("LOG_FORMAT", "text"),
		LogFile:   os.Getenv("LOG_FILE"),
		AppName:   getenv("APP_NAME", "clinic-referrals"),

		ReadTimeout:  getenvDuration("HTTP_READ_TIMEOUT", 5*time.Second),
		WriteTimeout: getenvDuration("HTTP_WRITE_TIMEOUT", 10*time.Second),
	}

	switch cfg.AuthMode {
	case AuthModeDev:
	case AuthModeOdin:
		if cfg.OdinBaseURL == "" || cfg.OdinAPIKey == "" {
			return cfg, errors.New("AUTH_MODE=odin requires ODIN_BASE_URL and ODIN_API_KEY")
		}
	default:
		return cfg, errors.New("AUTH_MODE must be dev or odin")
	}

	return cfg, nil
}

// PlansConfigured: si no hay plans-features, no se chequea capability de staff.
func (c Config) PlansConfigured() bool {
	return c.PlansBaseURL != "" && c.PlansAPIKey != ""
}

func getenv(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}

func getenvBool(key string, def bool) bool {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return def
	}
	return b
}

func getenvDuration(key string, def time.Duration) time.Duration {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil || d <= 0 {
		return def
	}
	return d
}
