package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"family-finance-go/pkg/logger"
)

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

type Config struct {
	HTTPPort    string
	CORSOrigins []string
	Env         string
	DB          DBConfig
	Auth     AuthConfig
	Budget   BudgetConfig
	Reports  ReportsConfig
	AMQP     AMQPConfig
	Metrics  MetricsConfig
}

type DBConfig struct {
	Driver          string
	DSN             string
	Host            string
	Port            string
	User            string
	Password        string
	Name            string
	SSLMode         string
	TimeZone        string
	SQLitePath      string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

type AuthConfig struct {
	JWTSecret     string
	TokenTTL      time.Duration
	SkipAuth      bool
	MockUserID    string
	MockUserEmail string
	MockUserName  string
}

// BudgetConfig holds the ratios (monthly expenses / monthly income) at which
// budget notifications fire.
type BudgetConfig struct {
	WarningThreshold  float64
	CriticalThreshold float64
	TimeZone          string
}

type ReportsConfig struct {
	TopExpensesLimit    int
	SpendingTrendMonths int
	Concurrency         int
}

type AMQPConfig struct {
	URL        string
	Exchange   string
	RoutingKey string
}

type MetricsConfig struct {
	Enabled bool
}

func Load(log logger.Logger) (Config, error) {
	err := loadDotEnv(log)
	if err != nil {
		return Config{}, fmt.Errorf("load .env: %w", err)
	}

	cfg := Config{
		HTTPPort:    getEnv("HTTP_PORT", "8080"),
		CORSOrigins: getEnvList("HTTP_CORS_ORIGINS", []string{"http://localhost:5173"}),
		Env:      getEnv("ENV", "development"),
		DB: DBConfig{
			Driver:          strings.ToLower(getEnv("DB_DRIVER", DriverPostgres)),
			DSN:             getEnv("DB_DSN", ""),
			Host:            getEnv("DB_HOST", "localhost"),
			Port:            getEnv("DB_PORT", "5432"),
			User:            getEnv("DB_USER", "postgres"),
			Password:        getEnv("DB_PASSWORD", "postgres"),
			Name:            getEnv("DB_NAME", "family_finance"),
			SSLMode:         getEnv("DB_SSLMODE", "disable"),
			TimeZone:        getEnv("DB_TIMEZONE", "UTC"),
			SQLitePath:      getEnv("DB_SQLITE_PATH", "./data/family-finance.db"),
			MaxOpenConns:    getEnvInt("DB_MAX_OPEN_CONNS", 10),
			MaxIdleConns:    getEnvInt("DB_MAX_IDLE_CONNS", 5),
			ConnMaxLifetime: getEnvDuration("DB_CONN_MAX_LIFETIME", 30*time.Minute),
		},
		Auth: AuthConfig{
			JWTSecret:     getEnv("AUTH_JWT_SECRET", ""),
			TokenTTL:      getEnvDuration("AUTH_TOKEN_TTL", 24*time.Hour),
			SkipAuth:      getEnvBool("AUTH_SKIP", false),
			MockUserID:    getEnv("AUTH_MOCK_USER_ID", "00000000-0000-0000-0000-000000000001"),
			MockUserEmail: getEnv("AUTH_MOCK_USER_EMAIL", ""),
			MockUserName:  getEnv("AUTH_MOCK_USER_NAME", ""),
		},
		Budget: BudgetConfig{
			WarningThreshold:  getEnvFloat("BUDGET_WARNING_THRESHOLD", 0.7),
			CriticalThreshold: getEnvFloat("BUDGET_CRITICAL_THRESHOLD", 0.9),
			TimeZone:          getEnv("BUDGET_TIMEZONE", "UTC"),
		},
		Reports: ReportsConfig{
			TopExpensesLimit:    getEnvInt("REPORTS_TOP_EXPENSES_LIMIT", 5),
			SpendingTrendMonths: getEnvInt("REPORTS_SPENDING_TREND_MONTHS", 6),
			Concurrency:         getEnvInt("REPORTS_CONCURRENCY", 4),
		},
		AMQP: AMQPConfig{
			URL:        getEnv("AMQP_URL", ""),
			Exchange:   getEnv("AMQP_EXCHANGE", "family-finance"),
			RoutingKey: getEnv("AMQP_ROUTING_KEY", "notifications"),
		},
		Metrics: MetricsConfig{
			Enabled: getEnvBool("METRICS_ENABLED", true),
		},
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate reports every configuration problem at once.
func (c Config) Validate() error {
	var problems []string

	if port, err := strconv.Atoi(c.HTTPPort); err != nil || port < 1 || port > 65535 {
		problems = append(problems, fmt.Sprintf("invalid HTTP_PORT %q", c.HTTPPort))
	}

	switch c.DB.Driver {
	case DriverPostgres:
	case DriverSQLite:
		if strings.TrimSpace(c.DB.SQLitePath) == "" {
			problems = append(problems, "DB_SQLITE_PATH is required when DB_DRIVER=sqlite")
		}
	default:
		problems = append(problems, fmt.Sprintf("invalid DB_DRIVER %q: must be postgres or sqlite", c.DB.Driver))
	}

	if err := c.Budget.Validate(); err != nil {
		problems = append(problems, err.Error())
	}

	if !c.Auth.SkipAuth && c.Auth.JWTSecret == "" {
		problems = append(problems, "AUTH_JWT_SECRET is required unless AUTH_SKIP=true")
	}
	if c.Auth.SkipAuth && strings.TrimSpace(c.Auth.MockUserID) == "" {
		problems = append(problems, "AUTH_MOCK_USER_ID is required when AUTH_SKIP=true")
	}

	if c.AMQP.URL != "" {
		parsed, err := url.Parse(c.AMQP.URL)
		if err != nil {
			problems = append(problems, fmt.Sprintf("invalid AMQP_URL: %v", err))
		} else if parsed.Scheme != "amqp" && parsed.Scheme != "amqps" {
			problems = append(problems, fmt.Sprintf("invalid AMQP_URL scheme %q: must be amqp or amqps", parsed.Scheme))
		}
		if c.AMQP.Exchange == "" {
			problems = append(problems, "AMQP_EXCHANGE is required when AMQP_URL is set")
		}
	}

	if c.Reports.TopExpensesLimit <= 0 {
		problems = append(problems, "REPORTS_TOP_EXPENSES_LIMIT must be positive")
	}
	if c.Reports.SpendingTrendMonths <= 0 {
		problems = append(problems, "REPORTS_SPENDING_TREND_MONTHS must be positive")
	}

	if len(problems) > 0 {
		return fmt.Errorf("invalid config: %s", strings.Join(problems, "; "))
	}
	return nil
}

func (c BudgetConfig) Validate() error {
	if c.WarningThreshold <= 0 || c.WarningThreshold >= 1 {
		return fmt.Errorf("BUDGET_WARNING_THRESHOLD must be in (0,1), got %v", c.WarningThreshold)
	}
	if c.CriticalThreshold <= 0 || c.CriticalThreshold >= 1 {
		return fmt.Errorf("BUDGET_CRITICAL_THRESHOLD must be in (0,1), got %v", c.CriticalThreshold)
	}
	if c.WarningThreshold >= c.CriticalThreshold {
		return errors.New("BUDGET_WARNING_THRESHOLD must be lower than BUDGET_CRITICAL_THRESHOLD")
	}
	if _, err := time.LoadLocation(c.TimeZone); err != nil {
		return fmt.Errorf("invalid BUDGET_TIMEZONE %q", c.TimeZone)
	}
	return nil
}

// Location returns the reporting location, falling back to UTC.
func (c BudgetConfig) Location() *time.Location {
	loc, err := time.LoadLocation(c.TimeZone)
	if err != nil {
		return time.UTC
	}
	return loc
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvFloat(key string, fallback float64) float64 {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := time.ParseDuration(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvBool(key string, fallback bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func (c DBConfig) GetDSN() string {
	if c.DSN != "" {
		return c.DSN
	}
	return "host=" + c.Host +
		" user=" + c.User +
		" password=" + c.Password +
		" dbname=" + c.Name +
		" port=" + c.Port +
		" sslmode=" + c.SSLMode +
		" TimeZone=" + c.TimeZone
}

// getEnvList reads a comma separated list.
func getEnvList(key string, fallback []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	if len(out) == 0 {
		return fallback
	}
	return out
}
