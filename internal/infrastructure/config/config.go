package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/invoicefiler/backend/internal/domain/document"
	"github.com/invoicefiler/backend/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
	"github.com/spf13/viper"
)

// Config holds all application configuration
type Config struct {
	App      AppConfig
	Database DatabaseConfig
	Log      LogConfig
	HTTP     HTTPConfig
	Org      OrgConfig
}

// AppConfig holds application-specific settings
type AppConfig struct {
	Name string
	Env  string
	Port string
}

// DatabaseConfig holds database connection settings
type DatabaseConfig struct {
	Host            string
	Port            int
	User            string
	Password        string
	DBName          string
	SSLMode         string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime int // in minutes
	ConnMaxIdleTime int // in minutes
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level  string // debug, info, warn, error
	Format string // json, console
	Output string // stdout, stderr, or file path
}

// HTTPConfig holds HTTP server configuration
type HTTPConfig struct {
	ReadTimeout    time.Duration
	WriteTimeout   time.Duration
	IdleTimeout    time.Duration
	MaxHeaderBytes int
	MaxBodySize    int64
	TrustedProxies []string

	CORSAllowOrigins []string
	CORSAllowMethods []string
	CORSAllowHeaders []string

	RateLimitEnabled  bool
	RateLimitRequests int
	RateLimitWindow   time.Duration
}

// GrantConfig describes one grant in the organization's dictionary
type GrantConfig struct {
	Donor      string `mapstructure:"donor"`
	Restricted bool   `mapstructure:"restricted"`
}

// CategoryRuleConfig binds a spend category to its keywords
type CategoryRuleConfig struct {
	Category string   `mapstructure:"category"`
	Keywords []string `mapstructure:"keywords"`
}

// OrgConfig holds the organization's processing policy: fiscal year,
// tolerances, vendor aliases and the grant/project/category
// dictionaries the classifier resolves against.
type OrgConfig struct {
	Name                   string
	FiscalYearStartMonth   int
	AbsoluteTolerance      float64
	RelativeTolerance      float64
	VATTolerance           float64
	StatedRateTolerance    float64
	OCRConfidenceThreshold float64
	FutureGraceDays        int
	MaxAgeYears            int
	VATRates               map[string]float64
	VendorAliases          map[string]string
	Grants                 map[string]GrantConfig
	Projects               map[string]string
	CategoryRules          []CategoryRuleConfig
}

// Load loads configuration from TOML file and environment variables
// Priority (highest to lowest):
// 1. Environment variables with INVOICEFILER_ prefix (e.g., INVOICEFILER_DATABASE_PASSWORD)
// 2. config.toml
// 3. Built-in defaults
func Load() (*Config, error) {
	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("toml")
	v.AddConfigPath(".")
	v.AddConfigPath("./backend")
	v.AddConfigPath("/app")

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		// Config file not found is OK, we'll use defaults and env vars
	}

	v.SetEnvPrefix("INVOICEFILER")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	cfg := &Config{
		App: AppConfig{
			Name: v.GetString("app.name"),
			Env:  v.GetString("app.env"),
			Port: v.GetString("app.port"),
		},
		Database: DatabaseConfig{
			Host:            v.GetString("database.host"),
			Port:            v.GetInt("database.port"),
			User:            v.GetString("database.user"),
			Password:        v.GetString("database.password"),
			DBName:          v.GetString("database.dbname"),
			SSLMode:         v.GetString("database.sslmode"),
			MaxOpenConns:    v.GetInt("database.max_open_conns"),
			MaxIdleConns:    v.GetInt("database.max_idle_conns"),
			ConnMaxLifetime: v.GetInt("database.conn_max_lifetime"),
			ConnMaxIdleTime: v.GetInt("database.conn_max_idle_time"),
		},
		Log: LogConfig{
			Level:  v.GetString("log.level"),
			Format: v.GetString("log.format"),
			Output: v.GetString("log.output"),
		},
		HTTP: HTTPConfig{
			ReadTimeout:    v.GetDuration("http.read_timeout"),
			WriteTimeout:   v.GetDuration("http.write_timeout"),
			IdleTimeout:    v.GetDuration("http.idle_timeout"),
			MaxHeaderBytes: v.GetInt("http.max_header_bytes"),
			MaxBodySize:    v.GetInt64("http.max_body_size"),
			TrustedProxies: v.GetStringSlice("http.trusted_proxies"),

			CORSAllowOrigins: v.GetStringSlice("http.cors_allow_origins"),
			CORSAllowMethods: v.GetStringSlice("http.cors_allow_methods"),
			CORSAllowHeaders: v.GetStringSlice("http.cors_allow_headers"),

			RateLimitEnabled:  v.GetBool("http.rate_limit_enabled"),
			RateLimitRequests: v.GetInt("http.rate_limit_requests"),
			RateLimitWindow:   v.GetDuration("http.rate_limit_window"),
		},
		Org: OrgConfig{
			Name:                   v.GetString("org.name"),
			FiscalYearStartMonth:   v.GetInt("org.fiscal_year_start_month"),
			AbsoluteTolerance:      v.GetFloat64("org.absolute_tolerance"),
			RelativeTolerance:      v.GetFloat64("org.relative_tolerance"),
			VATTolerance:           v.GetFloat64("org.vat_tolerance"),
			StatedRateTolerance:    v.GetFloat64("org.stated_rate_tolerance"),
			OCRConfidenceThreshold: v.GetFloat64("org.ocr_confidence_threshold"),
			FutureGraceDays:        v.GetInt("org.future_grace_days"),
			MaxAgeYears:            v.GetInt("org.max_age_years"),
			VendorAliases:          v.GetStringMapString("org.vendor_aliases"),
			Projects:               v.GetStringMapString("org.projects"),
		},
	}

	vatRates := map[string]float64{}
	for code := range v.GetStringMap("org.vat_rates") {
		vatRates[strings.ToUpper(code)] = v.GetFloat64("org.vat_rates." + code)
	}
	cfg.Org.VATRates = vatRates

	if err := v.UnmarshalKey("org.grants", &cfg.Org.Grants); err != nil {
		return nil, fmt.Errorf("error parsing org.grants: %w", err)
	}
	if err := v.UnmarshalKey("org.category_rules", &cfg.Org.CategoryRules); err != nil {
		return nil, fmt.Errorf("error parsing org.category_rules: %w", err)
	}

	applyDefaults(cfg)

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// applyDefaults sets default values for any empty config fields
func applyDefaults(cfg *Config) {
	if cfg.App.Name == "" {
		cfg.App.Name = "invoicefiler-backend"
	}
	if cfg.App.Env == "" {
		cfg.App.Env = "development"
	}
	if cfg.App.Port == "" {
		cfg.App.Port = "8080"
	}
	if cfg.Database.Host == "" {
		cfg.Database.Host = "localhost"
	}
	if cfg.Database.Port == 0 {
		cfg.Database.Port = 5432
	}
	if cfg.Database.User == "" {
		cfg.Database.User = "postgres"
	}
	if cfg.Database.DBName == "" {
		cfg.Database.DBName = "invoicefiler"
	}
	if cfg.Database.SSLMode == "" {
		cfg.Database.SSLMode = "disable"
	}
	if cfg.Database.MaxOpenConns == 0 {
		cfg.Database.MaxOpenConns = 25
	}
	if cfg.Database.MaxIdleConns == 0 {
		cfg.Database.MaxIdleConns = 5
	}
	if cfg.Database.ConnMaxLifetime == 0 {
		cfg.Database.ConnMaxLifetime = 60
	}
	if cfg.Database.ConnMaxIdleTime == 0 {
		cfg.Database.ConnMaxIdleTime = 30
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "console"
	}
	if cfg.Log.Output == "" {
		cfg.Log.Output = "stdout"
	}
	if cfg.HTTP.ReadTimeout == 0 {
		cfg.HTTP.ReadTimeout = 15 * time.Second
	}
	if cfg.HTTP.WriteTimeout == 0 {
		cfg.HTTP.WriteTimeout = 15 * time.Second
	}
	if cfg.HTTP.IdleTimeout == 0 {
		cfg.HTTP.IdleTimeout = 60 * time.Second
	}
	if cfg.HTTP.MaxHeaderBytes == 0 {
		cfg.HTTP.MaxHeaderBytes = 1 << 20 // 1MB
	}
	if cfg.HTTP.MaxBodySize == 0 {
		cfg.HTTP.MaxBodySize = 25 << 20 // 25MB, scans are large
	}
	if len(cfg.HTTP.CORSAllowOrigins) == 0 {
		cfg.HTTP.CORSAllowOrigins = []string{"*"}
	}
	if len(cfg.HTTP.CORSAllowMethods) == 0 {
		cfg.HTTP.CORSAllowMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
	}
	if len(cfg.HTTP.CORSAllowHeaders) == 0 {
		cfg.HTTP.CORSAllowHeaders = []string{"Origin", "Content-Type", "Accept", "Authorization", "X-Request-ID"}
	}
	if cfg.HTTP.RateLimitRequests == 0 {
		cfg.HTTP.RateLimitRequests = 100
	}
	if cfg.HTTP.RateLimitWindow == 0 {
		cfg.HTTP.RateLimitWindow = time.Minute
	}
	if cfg.Org.Name == "" {
		cfg.Org.Name = "NGO"
	}
	if cfg.Org.FiscalYearStartMonth == 0 {
		cfg.Org.FiscalYearStartMonth = 1
	}
	if cfg.Org.AbsoluteTolerance == 0 {
		cfg.Org.AbsoluteTolerance = 0.02
	}
	if cfg.Org.RelativeTolerance == 0 {
		cfg.Org.RelativeTolerance = 0.001
	}
	if cfg.Org.VATTolerance == 0 {
		cfg.Org.VATTolerance = 1.0
	}
	if cfg.Org.StatedRateTolerance == 0 {
		cfg.Org.StatedRateTolerance = 0.5
	}
	if cfg.Org.OCRConfidenceThreshold == 0 {
		cfg.Org.OCRConfidenceThreshold = 0.75
	}
	if cfg.Org.FutureGraceDays == 0 {
		cfg.Org.FutureGraceDays = 7
	}
	if cfg.Org.MaxAgeYears == 0 {
		cfg.Org.MaxAgeYears = 2
	}
}

// validate performs validation on the configuration
func (c *Config) validate() error {
	if c.Database.MaxOpenConns <= 0 {
		return fmt.Errorf("database.max_open_conns must be positive")
	}
	if c.Database.MaxIdleConns < 0 {
		return fmt.Errorf("database.max_idle_conns cannot be negative")
	}
	if c.Database.MaxIdleConns > c.Database.MaxOpenConns {
		return fmt.Errorf("database.max_idle_conns (%d) cannot exceed database.max_open_conns (%d)",
			c.Database.MaxIdleConns, c.Database.MaxOpenConns)
	}

	if c.Org.FiscalYearStartMonth < 1 || c.Org.FiscalYearStartMonth > 12 {
		return fmt.Errorf("org.fiscal_year_start_month must be between 1 and 12, got %d", c.Org.FiscalYearStartMonth)
	}
	if c.Org.OCRConfidenceThreshold < 0 || c.Org.OCRConfidenceThreshold > 1 {
		return fmt.Errorf("org.ocr_confidence_threshold must be between 0.0 and 1.0, got %f", c.Org.OCRConfidenceThreshold)
	}
	if c.Org.AbsoluteTolerance < 0 || c.Org.RelativeTolerance < 0 {
		return fmt.Errorf("org tolerances cannot be negative")
	}

	if c.App.Env == "production" {
		if c.Database.Password == "" {
			return fmt.Errorf("database.password is required in production")
		}
		if c.Database.SSLMode == "disable" {
			return fmt.Errorf("database.sslmode cannot be 'disable' in production")
		}
	}

	return nil
}

// ToPolicy converts the organization config into the domain policy
func (o *OrgConfig) ToPolicy() document.Policy {
	policy := document.DefaultPolicy()
	policy.OrgName = o.Name
	policy.FiscalYearStartMonth = o.FiscalYearStartMonth
	policy.AbsoluteTolerance = decimal.NewFromFloat(o.AbsoluteTolerance)
	policy.RelativeTolerance = decimal.NewFromFloat(o.RelativeTolerance)
	policy.VATTolerance = decimal.NewFromFloat(o.VATTolerance)
	policy.StatedRateTolerance = decimal.NewFromFloat(o.StatedRateTolerance)
	policy.OCRConfidenceThreshold = o.OCRConfidenceThreshold
	policy.FutureGraceDays = o.FutureGraceDays
	policy.MaxAgeYears = o.MaxAgeYears

	for code, rate := range o.VATRates {
		policy.VATRules[valueobject.Currency(code)] = decimal.NewFromFloat(rate)
	}
	for raw, canonical := range o.VendorAliases {
		policy.VendorAliases[strings.ToLower(raw)] = canonical
	}
	// viper lowercases TOML table keys; codes are canonically uppercase
	for code, grant := range o.Grants {
		policy.GrantDictionary[strings.ToUpper(code)] = document.GrantInfo{Donor: grant.Donor, Restricted: grant.Restricted}
	}
	for code, name := range o.Projects {
		policy.ProjectCodes[strings.ToUpper(code)] = name
	}
	for _, rule := range o.CategoryRules {
		policy.CategoryRules = append(policy.CategoryRules, document.CategoryRule{
			Category: rule.Category,
			Keywords: rule.Keywords,
		})
	}

	return policy
}

// DSN returns the database connection string with properly escaped values
func (d *DatabaseConfig) DSN() string {
	u := url.URL{
		Scheme: "postgres",
		User:   url.UserPassword(d.User, d.Password),
		Host:   fmt.Sprintf("%s:%d", d.Host, d.Port),
		Path:   d.DBName,
	}
	q := u.Query()
	q.Set("sslmode", d.SSLMode)
	u.RawQuery = q.Encode()
	return u.String()
}
