package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Addr           string
	JWTSecret      string
	JWTUser        string
	JWTPassword    string
	JWTTTL         time.Duration
	TLSCertFile    string
	TLSKeyFile     string
	CORSOrigins    []string
	LogLevel       string
	LogFormat      string
	CatalogFile    string
	StorageDSN     string
	HistoryYears   []int
	HistoryMode    string
	HistoryTTL     time.Duration
	HistorySeed    uint64
	SalesMin       int
	SalesMax       int
	TargetYear     int
	StreamEvery    time.Duration
	RateLimitRPS   float64
	RateLimitBurst int
	UploadMaxBytes int64
}

// AuthEnabled reports whether API routes require a bearer token.
func (c *Config) AuthEnabled() bool { return c.JWTSecret != "" }

func Load() (*Config, error) {
	// a missing .env is normal outside local dev
	_ = godotenv.Load()

	v := viper.New()

	v.SetDefault("server_addr", ":8000")
	v.SetDefault("auth_user", "demo")
	v.SetDefault("auth_pass", "demo123")
	v.SetDefault("jwt_ttl", "1h")
	v.SetDefault("cors_origins", []string{"http://localhost:1337"})
	v.SetDefault("log_level", "info")
	v.SetDefault("log_format", "text")
	v.SetDefault("history_years", []int{2023, 2024, 2025})
	v.SetDefault("history_mode", "epoch")
	v.SetDefault("history_epoch_ttl", "0s")
	v.SetDefault("history_seed", 0)
	v.SetDefault("sales_min", 300)
	v.SetDefault("sales_max", 900)
	v.SetDefault("forecast_target_year", 0)
	v.SetDefault("stream_interval", "30s")
	v.SetDefault("rate_limit_rps", 0)
	v.SetDefault("rate_limit_burst", 20)
	v.SetDefault("upload_max_bytes", 10<<20)

	if path := os.Getenv("DISH_CONFIG"); path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
		v.AddConfigPath("/etc/dish-demand")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if os.Getenv("DISH_CONFIG") != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("config.Load: read config: %w", err)
		}
		slog.Debug("no config file found, using defaults + env vars")
	}

	v.AutomaticEnv()

	ttl, err := time.ParseDuration(v.GetString("history_epoch_ttl"))
	if err != nil {
		return nil, fmt.Errorf("config.Load: bad history_epoch_ttl: %w", err)
	}
	every, err := time.ParseDuration(v.GetString("stream_interval"))
	if err != nil {
		return nil, fmt.Errorf("config.Load: bad stream_interval: %w", err)
	}
	if every <= 0 {
		return nil, fmt.Errorf("config.Load: stream_interval must be positive, got %s", every)
	}
	years, err := intList(v.Get("history_years"))
	if err != nil {
		return nil, fmt.Errorf("config.Load: bad history_years: %w", err)
	}
	if len(years) == 0 {
		return nil, errors.New("config.Load: history_years is empty")
	}
	seen := make(map[int]bool, len(years))
	for _, y := range years {
		if seen[y] {
			return nil, fmt.Errorf("config.Load: history_years lists %d twice", y)
		}
		seen[y] = true
	}
	jwtTTL, err := time.ParseDuration(v.GetString("jwt_ttl"))
	if err != nil {
		return nil, fmt.Errorf("config.Load: bad jwt_ttl: %w", err)
	}
	if jwtTTL <= 0 {
		return nil, fmt.Errorf("config.Load: jwt_ttl must be positive, got %s", jwtTTL)
	}

	cfg := &Config{
		Addr:           v.GetString("server_addr"),
		JWTSecret:      v.GetString("jwt_secret"),
		JWTUser:        v.GetString("auth_user"),
		JWTPassword:    v.GetString("auth_pass"),
		JWTTTL:         jwtTTL,
		TLSCertFile:    os.Getenv("TLS_CERT_FILE"),
		TLSKeyFile:     os.Getenv("TLS_KEY_FILE"),
		CORSOrigins:    stringList(v.Get("cors_origins")),
		LogLevel:       v.GetString("log_level"),
		LogFormat:      v.GetString("log_format"),
		CatalogFile:    v.GetString("catalog_file"),
		StorageDSN:     v.GetString("storage_dsn"),
		HistoryYears:   years,
		HistoryMode:    v.GetString("history_mode"),
		HistoryTTL:     ttl,
		HistorySeed:    v.GetUint64("history_seed"),
		SalesMin:       v.GetInt("sales_min"),
		SalesMax:       v.GetInt("sales_max"),
		TargetYear:     v.GetInt("forecast_target_year"),
		StreamEvery:    every,
		RateLimitRPS:   v.GetFloat64("rate_limit_rps"),
		RateLimitBurst: v.GetInt("rate_limit_burst"),
		UploadMaxBytes: v.GetInt64("upload_max_bytes"),
	}

	if cfg.HistoryMode != "epoch" && cfg.HistoryMode != "per_request" {
		return nil, fmt.Errorf("config.Load: history_mode must be epoch or per_request, got %q", cfg.HistoryMode)
	}
	if cfg.SalesMin < 0 || cfg.SalesMin > cfg.SalesMax {
		return nil, fmt.Errorf("config.Load: bad sales range [%d, %d]", cfg.SalesMin, cfg.SalesMax)
	}
	return cfg, nil
}

// intList accepts a YAML/JSON list or a comma separated env value like "2023,2024,2025".
func intList(raw any) ([]int, error) {
	switch val := raw.(type) {
	case string:
		var out []int
		for _, part := range splitList(val) {
			n, err := strconv.Atoi(part)
			if err != nil {
				return nil, err
			}
			out = append(out, n)
		}
		return out, nil
	case []int:
		return append([]int(nil), val...), nil
	case []any:
		out := make([]int, 0, len(val))
		for _, item := range val {
			n, err := strconv.Atoi(fmt.Sprint(item))
			if err != nil {
				return nil, err
			}
			out = append(out, n)
		}
		return out, nil
	case nil:
		return nil, nil
	}
	return nil, fmt.Errorf("unsupported value %v", raw)
}

func stringList(raw any) []string {
	switch val := raw.(type) {
	case string:
		return splitList(val)
	case []string:
		return append([]string(nil), val...)
	case []any:
		out := make([]string, 0, len(val))
		for _, item := range val {
			out = append(out, fmt.Sprint(item))
		}
		return out
	}
	return nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.FieldsFunc(s, func(r rune) bool { return r == ',' || r == ' ' }) {
		out = append(out, strings.TrimSpace(part))
	}
	return out
}
