package config

import (
	"errors"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	StorageMemory   = "memory"
	StoragePostgres = "postgres"

	AuthModeJWT = "jwt"
	AuthModeDev = "dev"
)

// Config centraliza a configuração carregada do ambiente.
type Config struct {
	Port            int
	StorageDriver   string
	DBDSN           string
	RedisURL        string
	AuthMode        string
	JWTSecret       string
	JWTAccessTTL    time.Duration
	AllowOrigins    []string
	RateLimitPublic RateLimitConfig
	RateLimitAuth   RateLimitConfig
	Mock            MockConfig
	ToastTTL        time.Duration
	Tokens          TokenPlanConfig
	SeedDemo        bool
}

// RateLimitConfig representa limites simples para throttling.
type RateLimitConfig struct {
	RequestsPerSecond float64
	Burst             int
}

// MockConfig controla a latência simulada das mutações.
type MockConfig struct {
	Latency time.Duration
	Jitter  time.Duration
}

// TokenPlanConfig descreve o plano de tokens contratado pelo escritório.
type TokenPlanConfig struct {
	Plano         string
	Limite        int
	RenovacaoDias int
}

// Load carrega variáveis de ambiente e aplica defaults seguros.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{}

	port, err := parseIntEnv("PORT", 8080)
	if err != nil || port <= 0 {
		return nil, errors.New("PORT inválida")
	}
	cfg.Port = port

	cfg.StorageDriver = strings.ToLower(strings.TrimSpace(getEnv("STORAGE_DRIVER", StorageMemory)))
	switch cfg.StorageDriver {
	case StorageMemory:
	case StoragePostgres:
		cfg.DBDSN = getEnv("DB_DSN", "")
		if cfg.DBDSN == "" {
			return nil, errors.New("DB_DSN obrigatório quando STORAGE_DRIVER=postgres")
		}
	default:
		return nil, errors.New("STORAGE_DRIVER inválido")
	}

	cfg.RedisURL = strings.TrimSpace(getEnv("REDIS_URL", ""))

	cfg.AuthMode = strings.ToLower(strings.TrimSpace(getEnv("AUTH_MODE", AuthModeJWT)))
	switch cfg.AuthMode {
	case AuthModeDev:
	case AuthModeJWT:
		cfg.JWTSecret = strings.TrimSpace(getEnv("JWT_SECRET", ""))
		if len(cfg.JWTSecret) < 32 {
			return nil, errors.New("JWT_SECRET deve ter pelo menos 32 caracteres")
		}
	default:
		return nil, errors.New("AUTH_MODE inválido")
	}

	accessTTL, err := parseDurationEnv("JWT_ACCESS_TTL", 8*time.Hour)
	if err != nil {
		return nil, err
	}
	cfg.JWTAccessTTL = accessTTL

	for _, origin := range strings.Split(getEnv("ALLOW_ORIGINS", ""), ",") {
		origin = strings.TrimSpace(origin)
		if origin != "" {
			cfg.AllowOrigins = append(cfg.AllowOrigins, origin)
		}
	}

	cfg.RateLimitPublic = RateLimitConfig{RequestsPerSecond: 10, Burst: 20}
	cfg.RateLimitAuth = RateLimitConfig{RequestsPerSecond: 10, Burst: 40}

	if cfg.Mock.Latency, err = parseDurationEnv("MOCK_LATENCY", 800*time.Millisecond); err != nil {
		return nil, err
	}
	if cfg.Mock.Jitter, err = parseDurationEnv("MOCK_LATENCY_JITTER", 400*time.Millisecond); err != nil {
		return nil, err
	}

	if cfg.ToastTTL, err = parseDurationEnv("TOAST_TTL", 5*time.Second); err != nil {
		return nil, err
	}
	if cfg.ToastTTL <= 0 {
		return nil, errors.New("TOAST_TTL deve ser positivo")
	}

	cfg.Tokens.Plano = strings.TrimSpace(getEnv("TOKEN_PLANO", "Profissional"))
	if cfg.Tokens.Limite, err = parseIntEnv("TOKEN_LIMITE", 50000); err != nil || cfg.Tokens.Limite <= 0 {
		return nil, errors.New("TOKEN_LIMITE inválido")
	}
	if cfg.Tokens.RenovacaoDias, err = parseIntEnv("TOKEN_RENOVACAO_DIAS", 30); err != nil || cfg.Tokens.RenovacaoDias <= 0 {
		return nil, errors.New("TOKEN_RENOVACAO_DIAS inválido")
	}

	seed, err := strconv.ParseBool(getEnv("SEED_DEMO", "true"))
	if err != nil {
		return nil, errors.New("SEED_DEMO inválido")
	}
	cfg.SeedDemo = seed

	return cfg, nil
}

func getEnv(key, def string) string {
	if val, ok := os.LookupEnv(key); ok {
		return val
	}
	return def
}

func parseIntEnv(key string, def int) (int, error) {
	val := strings.TrimSpace(getEnv(key, ""))
	if val == "" {
		return def, nil
	}
	return strconv.Atoi(val)
}

func parseDurationEnv(key string, def time.Duration) (time.Duration, error) {
	val := getEnv(key, "")
	if val == "" {
		return def, nil
	}
	dur, err := time.ParseDuration(val)
	if err != nil || dur < 0 {
		return 0, errors.New(key + " inválido")
	}
	return dur, nil
}
