package config

import (
	"os"
	"testing"
)

func clearEnv(t *testing.T) {
	t.Helper()
	envVars := []string{
		"SERVICE_PRINCIPAL", "HTTP_PORT", "METRICS_PORT",
		"STORE_PROVIDER", "FIRESTORE_PROJECT_ID", "PURGE_BATCH_SIZE",
		"STT_PROVIDER", "STT_LANGUAGE_CODE", "STT_SAMPLE_RATE_HZ", "STT_AUDIO_ENCODING",
		"KAFKA_ENABLED", "KAFKA_BROKERS", "KAFKA_TOPIC", "KAFKA_PRINCIPAL",
		"REDIS_ADDR", "REDIS_PASSWORD", "REDIS_DB",
		"LOG_LEVEL", "LOG_FORMAT",
	}
	for _, v := range envVars {
		os.Unsetenv(v)
	}
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)

	cfg := Load()

	if cfg.Service.Principal != "svc-transcriber-backend" {
		t.Errorf("expected default principal 'svc-transcriber-backend', got %s", cfg.Service.Principal)
	}
	if cfg.Service.HTTPPort != "8080" {
		t.Errorf("expected default HTTP port '8080', got %s", cfg.Service.HTTPPort)
	}
	if cfg.Service.MetricsPort != "9090" {
		t.Errorf("expected default metrics port '9090', got %s", cfg.Service.MetricsPort)
	}

	if cfg.Store.Provider != "memory" {
		t.Errorf("expected default store provider 'memory', got %s", cfg.Store.Provider)
	}
	if cfg.Store.PurgeBatchSize != 10 {
		t.Errorf("expected default purge batch size 10, got %d", cfg.Store.PurgeBatchSize)
	}

	if cfg.Speech.Provider != "mock" {
		t.Errorf("expected default STT provider 'mock', got %s", cfg.Speech.Provider)
	}
	if cfg.Speech.LanguageCode != "en-US" {
		t.Errorf("expected default language 'en-US', got %s", cfg.Speech.LanguageCode)
	}
	if cfg.Speech.SampleRateHz != 16000 {
		t.Errorf("expected default sample rate 16000, got %d", cfg.Speech.SampleRateHz)
	}
	if cfg.Speech.AudioEncoding != "LINEAR16" {
		t.Errorf("expected default encoding 'LINEAR16', got %s", cfg.Speech.AudioEncoding)
	}

	if cfg.Kafka.Enabled {
		t.Error("expected Kafka disabled by default")
	}
	if cfg.Kafka.Topic != "transcripts.lifecycle" {
		t.Errorf("expected default topic 'transcripts.lifecycle', got %s", cfg.Kafka.Topic)
	}

	if cfg.Redis.Addr != "localhost:6379" {
		t.Errorf("expected default redis addr 'localhost:6379', got %s", cfg.Redis.Addr)
	}

	if cfg.Observability.LogLevel != "info" {
		t.Errorf("expected default log level 'info', got %s", cfg.Observability.LogLevel)
	}
	if cfg.Observability.LogFormat != "json" {
		t.Errorf("expected default log format 'json', got %s", cfg.Observability.LogFormat)
	}
}

func TestLoad_CustomValues(t *testing.T) {
	clearEnv(t)
	os.Setenv("SERVICE_PRINCIPAL", "custom-principal")
	os.Setenv("HTTP_PORT", "9999")
	os.Setenv("STORE_PROVIDER", "firestore")
	os.Setenv("FIRESTORE_PROJECT_ID", "my-project")
	os.Setenv("PURGE_BATCH_SIZE", "25")
	os.Setenv("STT_PROVIDER", "google")
	os.Setenv("STT_LANGUAGE_CODE", "es-ES")
	os.Setenv("STT_SAMPLE_RATE_HZ", "8000")
	os.Setenv("KAFKA_ENABLED", "true")
	os.Setenv("KAFKA_BROKERS", "broker-1:9092, broker-2:9092")
	os.Setenv("LOG_LEVEL", "debug")
	defer clearEnv(t)

	cfg := Load()

	if cfg.Service.Principal != "custom-principal" {
		t.Errorf("expected principal 'custom-principal', got %s", cfg.Service.Principal)
	}
	if cfg.Service.HTTPPort != "9999" {
		t.Errorf("expected port '9999', got %s", cfg.Service.HTTPPort)
	}
	if cfg.Store.Provider != "firestore" {
		t.Errorf("expected store provider 'firestore', got %s", cfg.Store.Provider)
	}
	if cfg.Store.ProjectID != "my-project" {
		t.Errorf("expected project 'my-project', got %s", cfg.Store.ProjectID)
	}
	if cfg.Store.PurgeBatchSize != 25 {
		t.Errorf("expected purge batch size 25, got %d", cfg.Store.PurgeBatchSize)
	}
	if cfg.Speech.Provider != "google" {
		t.Errorf("expected STT provider 'google', got %s", cfg.Speech.Provider)
	}
	if cfg.Speech.LanguageCode != "es-ES" {
		t.Errorf("expected language 'es-ES', got %s", cfg.Speech.LanguageCode)
	}
	if cfg.Speech.SampleRateHz != 8000 {
		t.Errorf("expected sample rate 8000, got %d", cfg.Speech.SampleRateHz)
	}
	if !cfg.Kafka.Enabled {
		t.Error("expected Kafka enabled")
	}
	if len(cfg.Kafka.Brokers) != 2 || cfg.Kafka.Brokers[0] != "broker-1:9092" || cfg.Kafka.Brokers[1] != "broker-2:9092" {
		t.Errorf("expected trimmed broker list, got %v", cfg.Kafka.Brokers)
	}
	if cfg.Observability.LogLevel != "debug" {
		t.Errorf("expected log level 'debug', got %s", cfg.Observability.LogLevel)
	}
}

func TestLoad_InvalidValues_FallbackToDefaults(t *testing.T) {
	clearEnv(t)
	os.Setenv("PURGE_BATCH_SIZE", "not-a-number")
	os.Setenv("STT_SAMPLE_RATE_HZ", "loud")
	os.Setenv("KAFKA_ENABLED", "maybe")
	os.Setenv("REDIS_DB", "zero")
	defer clearEnv(t)

	cfg := Load()

	if cfg.Store.PurgeBatchSize != 10 {
		t.Errorf("expected default purge batch size on invalid input, got %d", cfg.Store.PurgeBatchSize)
	}
	if cfg.Speech.SampleRateHz != 16000 {
		t.Errorf("expected default sample rate on invalid input, got %d", cfg.Speech.SampleRateHz)
	}
	if cfg.Kafka.Enabled {
		t.Error("expected default Kafka enabled=false on invalid input")
	}
	if cfg.Redis.DB != 0 {
		t.Errorf("expected default redis db on invalid input, got %d", cfg.Redis.DB)
	}
}

func TestLoad_KafkaPrincipal_FallsBackToServicePrincipal(t *testing.T) {
	clearEnv(t)
	os.Setenv("SERVICE_PRINCIPAL", "my-service")
	defer clearEnv(t)

	cfg := Load()

	if cfg.Kafka.Principal != "my-service" {
		t.Errorf("expected Kafka principal to fall back to service principal, got %s", cfg.Kafka.Principal)
	}
}

func TestEnvOrDefaultBool(t *testing.T) {
	tests := []struct {
		name     string
		envValue string
		def      bool
		expected bool
	}{
		{"true string", "true", false, true},
		{"false string", "false", true, false},
		{"1", "1", false, true},
		{"0", "0", true, false},
		{"TRUE uppercase", "TRUE", false, true},
		{"invalid", "invalid", true, true},
		{"empty", "", true, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			key := "TEST_BOOL_VAR"
			if tt.envValue != "" {
				os.Setenv(key, tt.envValue)
			} else {
				os.Unsetenv(key)
			}
			defer os.Unsetenv(key)

			got := envOrDefaultBool(key, tt.def)
			if got != tt.expected {
				t.Errorf("envOrDefaultBool(%s, %v) = %v, want %v", tt.envValue, tt.def, got, tt.expected)
			}
		})
	}
}

func TestEnvOrDefaultList(t *testing.T) {
	key := "TEST_LIST_VAR"
	defer os.Unsetenv(key)

	os.Unsetenv(key)
	if got := envOrDefaultList(key, nil); got != nil {
		t.Errorf("expected nil default, got %v", got)
	}

	os.Setenv(key, "a, b ,c,,")
	got := envOrDefaultList(key, nil)
	if len(got) != 3 || got[0] != "a" || got[1] != "b" || got[2] != "c" {
		t.Errorf("expected [a b c], got %v", got)
	}
}
