package config

import (
	"os"
	"reflect"
	"strings"
	"testing"
	"time"
)

// Keep the developer's shell from leaking into defaults.
func TestMain(m *testing.M) {
	for _, k := range []string{"PORT", "LOG_LEVEL", "DB_PATH", "API_BASE_PATH", "SENTIMENT_BACKEND", "GIN_MODE"} {
		os.Unsetenv(k)
	}
	os.Exit(m.Run())
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Port != "8080" || cfg.GinMode != "release" || cfg.LogLevel != "info" {
		t.Errorf("server defaults: %+v", cfg)
	}
	if cfg.APIBasePath != "/" || cfg.DBPath != "movies.db" {
		t.Errorf("paths: base=%q db=%q", cfg.APIBasePath, cfg.DBPath)
	}
	wantSent := SentimentConfig{Backend: "http", Timeout: 10 * time.Second, MaxTokens: 512}
	if cfg.Sentiment != wantSent {
		t.Errorf("sentiment = %+v", cfg.Sentiment)
	}
	if cfg.RateRPS != 5 || cfg.RateBurst != 10 || cfg.IdempotencyTTL != 24*time.Hour {
		t.Errorf("limits: %+v", cfg)
	}
	if cfg.CORS.AllowedOrigins != nil {
		t.Errorf("origins = %#v", cfg.CORS.AllowedOrigins)
	}
	if cfg.OTEL.Enabled || cfg.OTEL.ServiceName != "movie-catalog" || cfg.OTEL.SampleRatio != 1 {
		t.Errorf("otel = %+v", cfg.OTEL)
	}
}

func TestLoad_OverridesAndNormalization(t *testing.T) {
	env := map[string]string{
		"PORT":                        "8088",
		"READ_TIMEOUT":                "2s",
		"MAX_HEADER_BYTES":            "8192",
		"GIN_MODE":                    " DEBUG ",
		"LOG_LEVEL":                   "Warning",
		"LOG_PRETTY":                  "yes",
		"SWAGGER_ENABLED":             "on",
		"API_BASE_PATH":               "api/v1/",
		"DB_PATH":                     "/data/catalog.db",
		"SENTIMENT_BACKEND":           " HTTP ",
		"SENTIMENT_ENDPOINT":          "http://model:8000/predict",
		"SENTIMENT_HEALTH_PATH":       "/health",
		"SENTIMENT_TIMEOUT":           "750ms",
		"SENTIMENT_MAX_TOKENS":        "256",
		"RATE_RPS":                    "not-a-number",
		"CORS_ALLOWED_ORIGINS":        " https://a.example , , http://b.example ",
		"ENABLE_HSTS":                 "TRUE",
		"HSTS_MAX_AGE":                "24h",
		"IDEMPOTENCY_TTL":             "48h",
		"OTEL_ENABLED":                "1",
		"OTEL_EXPORTER_OTLP_INSECURE": "off",
		"OTEL_TRACES_SAMPLER_ARG":     "0.25",
	}
	for k, v := range env {
		t.Setenv(k, v)
	}

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.Port != "8088" || cfg.ReadTimeout != 2*time.Second || cfg.MaxHeaderBytes != 8192 {
		t.Errorf("server = %+v", cfg)
	}
	if cfg.GinMode != "debug" || cfg.LogLevel != "warn" || !cfg.LogPretty || !cfg.SwaggerEnabled {
		t.Errorf("modes: gin=%q log=%q pretty=%v swagger=%v", cfg.GinMode, cfg.LogLevel, cfg.LogPretty, cfg.SwaggerEnabled)
	}
	if cfg.APIBasePath != "/api/v1" || cfg.DBPath != "/data/catalog.db" {
		t.Errorf("paths: %q %q", cfg.APIBasePath, cfg.DBPath)
	}
	want := SentimentConfig{
		Backend:    "http",
		Endpoint:   "http://model:8000/predict",
		HealthPath: "/health",
		Timeout:    750 * time.Millisecond,
		MaxTokens:  256,
	}
	if cfg.Sentiment != want {
		t.Errorf("sentiment = %+v", cfg.Sentiment)
	}
	if cfg.RateRPS != 5 {
		t.Errorf("unparsable RATE_RPS should keep the default, got %v", cfg.RateRPS)
	}
	if !reflect.DeepEqual(cfg.CORS.AllowedOrigins, []string{"https://a.example", "http://b.example"}) {
		t.Errorf("origins = %#v", cfg.CORS.AllowedOrigins)
	}
	if !cfg.Security.EnableHSTS || cfg.Security.HSTSMaxAge != 24*time.Hour || cfg.IdempotencyTTL != 48*time.Hour {
		t.Errorf("security/idempotency = %+v %v", cfg.Security, cfg.IdempotencyTTL)
	}
	if !cfg.OTEL.Enabled || cfg.OTEL.Insecure || cfg.OTEL.SampleRatio != 0.25 {
		t.Errorf("otel = %+v", cfg.OTEL)
	}
}

func TestLoad_Validation(t *testing.T) {
	cases := []struct {
		key, val, wantErr string
	}{
		{"LOG_LEVEL", "verbose", "LOG_LEVEL"},
		{"PORT", "   ", "PORT must not be empty"},
		{"WRITE_TIMEOUT", "0s", "timeouts must be positive"},
		{"MAX_HEADER_BYTES", "0", "MAX_HEADER_BYTES"},
		{"DB_PATH", "  ", "DB_PATH must not be empty"},
		{"SHUTDOWN_TIMEOUT", "0s", "SHUTDOWN_TIMEOUT"},
		{"SENTIMENT_BACKEND", "gpu", "SENTIMENT_BACKEND"},
		{"SENTIMENT_TIMEOUT", "-1s", "SENTIMENT_TIMEOUT"},
		{"SENTIMENT_MAX_TOKENS", "0", "SENTIMENT_MAX_TOKENS"},
		{"RATE_RPS", "-1", "RATE_RPS"},
		{"RATE_BURST", "0", "RATE_BURST"},
		{"HSTS_MAX_AGE", "-1s", "HSTS_MAX_AGE"},
		{"IDEMPOTENCY_TTL", "0s", "IDEMPOTENCY_TTL"},
		{"OTEL_TRACES_SAMPLER_ARG", "1.5", "OTEL_TRACES_SAMPLER_ARG"},
	}
	for _, tc := range cases {
		t.Run(tc.key, func(t *testing.T) {
			t.Setenv(tc.key, tc.val)
			_, err := Load()
			if err == nil || !strings.Contains(err.Error(), tc.wantErr) {
				t.Fatalf("Load with %s=%q: err=%v, want containing %q", tc.key, tc.val, err, tc.wantErr)
			}
		})
	}
}

func TestMustLoad(t *testing.T) {
	t.Run("valid defaults", func(t *testing.T) {
		if cfg := MustLoad(); cfg.Port == "" {
			t.Fatal("empty config")
		}
	})
	t.Run("panics on invalid", func(t *testing.T) {
		t.Setenv("RATE_BURST", "0")
		defer func() {
			if recover() == nil {
				t.Fatal("MustLoad did not panic")
			}
		}()
		MustLoad()
	})
}

func TestGetbool(t *testing.T) {
	cases := []struct {
		in   string
		def  bool
		want bool
	}{
		{"1", false, true},
		{" yes ", false, true},
		{"On", false, true},
		{"Y", false, true},
		{"0", true, false},
		{"FALSE", true, false},
		{" no ", true, false},
		{"off", true, false},
		{"maybe", true, true},
		{"maybe", false, false},
		{"", true, true},
	}
	for _, tc := range cases {
		t.Setenv("TEST_BOOL", tc.in)
		if got := getbool("TEST_BOOL", tc.def); got != tc.want {
			t.Errorf("getbool(%q, %v) = %v, want %v", tc.in, tc.def, got, tc.want)
		}
	}
}

func TestNumericGetters_FallBackOnBadInput(t *testing.T) {
	t.Setenv("TEST_F", "3.5")
	t.Setenv("TEST_I", " 42 ")
	t.Setenv("TEST_D", "150ms")
	if getfloat("TEST_F", 0) != 3.5 || getint("TEST_I", 0) != 42 || getdur("TEST_D", 0) != 150*time.Millisecond {
		t.Fatal("valid values not parsed")
	}

	t.Setenv("TEST_F", "x")
	t.Setenv("TEST_I", "4.2")
	t.Setenv("TEST_D", "soon")
	if getfloat("TEST_F", 1.5) != 1.5 || getint("TEST_I", 7) != 7 || getdur("TEST_D", time.Second) != time.Second {
		t.Fatal("defaults not applied on bad input")
	}
}

func TestNormalizers(t *testing.T) {
	base := map[string]string{"": "/", " / ": "/", "v1": "/v1", "/v1/": "/v1", "/api//": "/api"}
	for in, want := range base {
		if got := normalizeBasePath(in); got != want {
			t.Errorf("normalizeBasePath(%q) = %q, want %q", in, got, want)
		}
	}
	modes := map[string]string{"TEST": "test", "debug": "debug", "prod": "release", "": "release"}
	for in, want := range modes {
		if got := normalizeGinMode(in); got != want {
			t.Errorf("normalizeGinMode(%q) = %q, want %q", in, got, want)
		}
	}
	if got := splitCSV(" a, ,b ,"); !reflect.DeepEqual(got, []string{"a", "b"}) {
		t.Errorf("splitCSV = %#v", got)
	}
	if splitCSV("") != nil {
		t.Error("splitCSV(\"\") should be nil")
	}
}
