package config

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	// Save original env vars and restore after tests
	originalEnv := map[string]string{
		"INVOICEFILER_APP_NAME":                     os.Getenv("INVOICEFILER_APP_NAME"),
		"INVOICEFILER_APP_ENV":                      os.Getenv("INVOICEFILER_APP_ENV"),
		"INVOICEFILER_APP_PORT":                     os.Getenv("INVOICEFILER_APP_PORT"),
		"INVOICEFILER_DATABASE_HOST":                os.Getenv("INVOICEFILER_DATABASE_HOST"),
		"INVOICEFILER_DATABASE_PASSWORD":            os.Getenv("INVOICEFILER_DATABASE_PASSWORD"),
		"INVOICEFILER_DATABASE_SSLMODE":             os.Getenv("INVOICEFILER_DATABASE_SSLMODE"),
		"INVOICEFILER_ORG_NAME":                     os.Getenv("INVOICEFILER_ORG_NAME"),
		"INVOICEFILER_ORG_FISCAL_YEAR_START_MONTH":  os.Getenv("INVOICEFILER_ORG_FISCAL_YEAR_START_MONTH"),
		"INVOICEFILER_ORG_OCR_CONFIDENCE_THRESHOLD": os.Getenv("INVOICEFILER_ORG_OCR_CONFIDENCE_THRESHOLD"),
	}

	defer func() {
		for k, v := range originalEnv {
			if v == "" {
				os.Unsetenv(k)
			} else {
				os.Setenv(k, v)
			}
		}
	}()

	clearEnv := func() {
		for k := range originalEnv {
			os.Unsetenv(k)
		}
	}

	t.Run("loads default values when env vars not set", func(t *testing.T) {
		clearEnv()

		cfg, err := Load()
		require.NoError(t, err)

		assert.Equal(t, "invoicefiler-backend", cfg.App.Name)
		assert.Equal(t, "development", cfg.App.Env)
		assert.Equal(t, "8080", cfg.App.Port)
		assert.Equal(t, "localhost", cfg.Database.Host)
		assert.Equal(t, 5432, cfg.Database.Port)
		assert.Equal(t, 1, cfg.Org.FiscalYearStartMonth)
		assert.Equal(t, 0.02, cfg.Org.AbsoluteTolerance)
		assert.Equal(t, 0.75, cfg.Org.OCRConfidenceThreshold)
	})

	t.Run("environment variables override defaults", func(t *testing.T) {
		clearEnv()
		os.Setenv("INVOICEFILER_APP_NAME", "filer-test")
		os.Setenv("INVOICEFILER_ORG_FISCAL_YEAR_START_MONTH", "4")

		cfg, err := Load()
		require.NoError(t, err)

		assert.Equal(t, "filer-test", cfg.App.Name)
		assert.Equal(t, 4, cfg.Org.FiscalYearStartMonth)
	})

	t.Run("rejects invalid fiscal year start month", func(t *testing.T) {
		clearEnv()
		os.Setenv("INVOICEFILER_ORG_FISCAL_YEAR_START_MONTH", "13")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "fiscal_year_start_month")
	})

	t.Run("rejects out-of-range confidence threshold", func(t *testing.T) {
		clearEnv()
		os.Setenv("INVOICEFILER_ORG_OCR_CONFIDENCE_THRESHOLD", "1.5")

		_, err := Load()
		require.Error(t, err)
	})

	t.Run("production requires database password and ssl", func(t *testing.T) {
		clearEnv()
		os.Setenv("INVOICEFILER_APP_ENV", "production")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "password")

		os.Setenv("INVOICEFILER_DATABASE_PASSWORD", "secret")
		_, err = Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "sslmode")

		os.Setenv("INVOICEFILER_DATABASE_SSLMODE", "require")
		cfg, err := Load()
		require.NoError(t, err)
		assert.Equal(t, "production", cfg.App.Env)
	})
}

func TestToPolicy(t *testing.T) {
	org := OrgConfig{
		Name:                   "Relief Works",
		FiscalYearStartMonth:   4,
		AbsoluteTolerance:      0.02,
		RelativeTolerance:      0.001,
		VATTolerance:           1.0,
		StatedRateTolerance:    0.5,
		OCRConfidenceThreshold: 0.8,
		FutureGraceDays:        7,
		MaxAgeYears:            2,
		VATRates:               map[string]float64{"ILS": 17},
		VendorAliases:          map[string]string{"Acme Ltd.": "Acme Ltd"},
		Grants:                 map[string]GrantConfig{"gr-eu-01": {Donor: "EU Commission", Restricted: true}},
		Projects:               map[string]string{"wash": "Water and Sanitation"},
		CategoryRules: []CategoryRuleConfig{
			{Category: "Travel", Keywords: []string{"flight", "taxi"}},
		},
	}

	policy := org.ToPolicy()

	assert.Equal(t, "Relief Works", policy.OrgName)
	assert.Equal(t, 4, policy.FiscalYearStartMonth)

	t.Run("vat rates keyed by currency", func(t *testing.T) {
		rate, ok := policy.VATRules["ILS"]
		require.True(t, ok)
		assert.Equal(t, "17", rate.String())
	})

	t.Run("vendor aliases lowercased", func(t *testing.T) {
		assert.Equal(t, "Acme Ltd", policy.VendorAliases["acme ltd."])
	})

	t.Run("grant and project codes uppercased", func(t *testing.T) {
		grant, ok := policy.GrantDictionary["GR-EU-01"]
		require.True(t, ok)
		assert.Equal(t, "EU Commission", grant.Donor)
		assert.True(t, grant.Restricted)
		assert.Equal(t, "Water and Sanitation", policy.ProjectCodes["WASH"])
	})

	t.Run("category rules preserve order", func(t *testing.T) {
		require.Len(t, policy.CategoryRules, 1)
		assert.Equal(t, "Travel", policy.CategoryRules[0].Category)
	})
}

func TestDatabaseDSN(t *testing.T) {
	db := DatabaseConfig{
		Host:     "db.internal",
		Port:     5432,
		User:     "filer",
		Password: "p@ss/word",
		DBName:   "invoicefiler",
		SSLMode:  "require",
	}

	dsn := db.DSN()
	assert.Contains(t, dsn, "postgres://")
	assert.Contains(t, dsn, "db.internal:5432")
	assert.Contains(t, dsn, "sslmode=require")
	// special characters in the password must be escaped
	assert.NotContains(t, dsn, "p@ss/word")
}
