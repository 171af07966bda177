package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
)

// Config is everything the API and the admin CLI read from the environment.
type Config struct {
	Port        string
	DSN         string
	JWTSecret   string
	JWTTTL      time.Duration
	CORSOrigins []string
	UploadDir   string
	BaseURL     string
	Shipping    decimal.Decimal
	TaxRate     decimal.Decimal
}

// Load reads the .env file (if any) and then the process environment.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Println("WARNING: Could not find or load .env file. Relying on system environment variables.")
	}
	return FromEnv(os.Getenv)
}

// FromEnv builds a Config from a lookup function so tests don't touch the
// real environment.
func FromEnv(getenv func(string) string) (*Config, error) {
	get := func(key, fallback string) string {
		if v := strings.TrimSpace(getenv(key)); v != "" {
			return v
		}
		return fallback
	}

	cfg := &Config{
		Port:      get("PORT", "8080"),
		DSN:       get("DB_DSN_PRIMARY", "root:root@tcp(127.0.0.1:3306)/storefront"),
		JWTSecret: get("JWT_SECRET", ""),
		UploadDir: get("UPLOAD_DIR", "./uploads"),
		BaseURL:   strings.TrimRight(get("BASE_URL", "http://localhost:8080"), "/"),
	}
	cfg.DSN = NormalizeDSN(cfg.DSN)
	if cfg.JWTSecret == "" {
		log.Println("WARNING: JWT_SECRET is not set, using an insecure development secret.")
		cfg.JWTSecret = "dev-secret-change-me"
	}

	hours, err := strconv.Atoi(get("JWT_TTL_HOURS", "72"))
	if err != nil || hours <= 0 {
		return nil, fmt.Errorf("config: JWT_TTL_HOURS must be a positive integer")
	}
	cfg.JWTTTL = time.Duration(hours) * time.Hour

	for _, origin := range strings.Split(get("CORS_ORIGINS", "http://localhost:5173"), ",") {
		if origin = strings.TrimSpace(origin); origin != "" {
			cfg.CORSOrigins = append(cfg.CORSOrigins, origin)
		}
	}

	if cfg.Shipping, err = decimal.NewFromString(get("SHIPPING_FLAT", "10.00")); err != nil || cfg.Shipping.IsNegative() {
		return nil, fmt.Errorf("config: SHIPPING_FLAT must be a non-negative amount")
	}
	if cfg.TaxRate, err = decimal.NewFromString(get("TAX_RATE", "0.085")); err != nil || cfg.TaxRate.IsNegative() {
		return nil, fmt.Errorf("config: TAX_RATE must be a non-negative rate")
	}

	return cfg, nil
}

// NormalizeDSN forces the driver options the repositories rely on.
// clientFoundRows makes RowsAffected count matched rows, so an UPDATE that
// rewrites identical values is not mistaken for a missing row.
func NormalizeDSN(dsn string) string {
	dsn = forceDSNParam(dsn, "parseTime", "true")
	return forceDSNParam(dsn, "clientFoundRows", "true")
}

// forceDSNParam sets key=value in the DSN query, replacing any value the
// operator gave.
func forceDSNParam(dsn, key, value string) string {
	base, query, _ := strings.Cut(dsn, "?")
	var params []string
	for _, p := range strings.Split(query, "&") {
		if p == "" || strings.HasPrefix(p, key+"=") {
			continue
		}
		params = append(params, p)
	}
	params = append(params, key+"="+value)
	return base + "?" + strings.Join(params, "&")
}
