package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

const (
	BackendPostgres = "postgres"
	BackendMemory   = "memory"
)

type Config struct {
	App struct {
		Name string `envconfig:"APP_NAME" default:"FYnance"`
		Port int    `envconfig:"PORT" default:"8080"`
	}

	DB struct {
		Host     string `envconfig:"DB_HOST" default:"localhost"`
		Port     int    `envconfig:"DB_PORT" default:"5432"`
		User     string `envconfig:"DB_USER" default:"postgres"`
		Password string `envconfig:"DB_PASSWORD" default:""`
		Name     string `envconfig:"DB_NAME" default:"fynance"`
	}

	Server struct {
		Timeout time.Duration `envconfig:"SERVER_TIMEOUT" default:"30s"`
	}

	Store struct {
		// Backend selects where categories and transactions live. "memory" is the demo mode.
		Backend string `envconfig:"STORE_BACKEND" default:"postgres"`
	}

	Auth struct {
		JWTSecret string `envconfig:"AUTH_JWT_SECRET"`
		Issuer    string `envconfig:"AUTH_ISSUER"`
	}

	CORS struct {
		AllowedOrigins []string `envconfig:"CORS_ALLOWED_ORIGINS" default:"http://localhost:5173"`
	}

	AMQP struct {
		URL      string `envconfig:"AMQP_URL"`
		Exchange string `envconfig:"AMQP_EXCHANGE" default:"fynance.invalidations"`
	}

	Report struct {
		Location      string `envconfig:"REPORT_LOCATION" default:"Asia/Jakarta"`
		TopN          int    `envconfig:"REPORT_TOP_N" default:"5"`
		MonthlyBudget int64  `envconfig:"REPORT_MONTHLY_BUDGET" default:"2000000"`
	}

	Reconcile struct {
		Concurrency int `envconfig:"RECONCILE_CONCURRENCY" default:"8"`
	}

	TUI struct {
		FamilyID string `envconfig:"TUI_FAMILY_ID" default:"family-demo-001"`
		Member   string `envconfig:"TUI_MEMBER"`
	}
}

func (c *Config) ConnectionString() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=disable",
		c.DB.User, url.QueryEscape(c.DB.Password), c.DB.Host, c.DB.Port, c.DB.Name)
}

// ReportLocation resolves the time zone reports are computed in.
func (c *Config) ReportLocation() (*time.Location, error) {
	loc, err := time.LoadLocation(c.Report.Location)
	if err != nil {
		return nil, fmt.Errorf("loading report location %q: %w", c.Report.Location, err)
	}

	return loc, nil
}

// Validate reports every configuration problem at once.
func (c *Config) Validate() error {
	var problems []string

	if c.App.Port < 1 || c.App.Port > 65535 {
		problems = append(problems, fmt.Sprintf("invalid port %d: must be between 1 and 65535", c.App.Port))
	}

	switch c.Store.Backend {
	case BackendPostgres, BackendMemory:
	default:
		problems = append(problems, fmt.Sprintf("invalid store backend %q: must be %q or %q",
			c.Store.Backend, BackendPostgres, BackendMemory))
	}

	if c.AMQP.URL != "" {
		u, err := url.Parse(c.AMQP.URL)
		switch {
		case err != nil:
			problems = append(problems, fmt.Sprintf("invalid AMQP URL: %v", err))
		case u.Scheme != "amqp" && u.Scheme != "amqps":
			problems = append(problems, fmt.Sprintf("invalid AMQP URL scheme %q: must be amqp or amqps", u.Scheme))
		}

		if c.AMQP.Exchange == "" {
			problems = append(problems, "AMQP exchange cannot be empty when AMQP_URL is set")
		}
	}

	if _, err := c.ReportLocation(); err != nil {
		problems = append(problems, err.Error())
	}

	if c.Report.TopN < 1 {
		problems = append(problems, fmt.Sprintf("invalid report top N %d: must be at least 1", c.Report.TopN))
	}

	if c.Report.MonthlyBudget < 0 {
		problems = append(problems, "monthly budget cannot be negative")
	}

	if c.Reconcile.Concurrency < 1 {
		problems = append(problems, fmt.Sprintf("invalid reconcile concurrency %d: must be at least 1", c.Reconcile.Concurrency))
	}

	if len(problems) > 0 {
		return fmt.Errorf("invalid configuration:\n- %s", strings.Join(problems, "\n- "))
	}

	return nil
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process config: %w", err)
	}

	return &cfg, nil
}
