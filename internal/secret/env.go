package env

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"sync"
	"unicode"
)

var (
	ErrInvalidFormat = errors.New("invalid line format")
	ErrEmptyKey      = errors.New("empty key not allowed")
	ErrInvalidKey    = errors.New("invalid key")
)

// Manager provides thread-safe access to environment variables and configuration settings
type Manager struct {
	envVars         map[string]string
	mutex           sync.RWMutex
	EngineEnvConfig // Embed EngineEnvConfig
}

type EngineEnvConfig struct {
	// Live rate provider, reached through the trusted backend proxy
	ProxyURL        *string
	ProxySigningKey *string
	ProxyIssuer     *string
	ProxyAudience   *string
	UseSandbox      *bool

	// Generative estimation service
	EstimatorURL   *string
	EstimatorModel *string
	EstimatorToken *string

	// Cache store
	CacheBackend *string // "memory" or "redis"
	RedisHost    *string
	RedisPort    *string
	RedisDb      *int
	RedisUser    *string
	RedisPw      *string

	// Optional Oracle override for the port fee reference table
	DbUser      *string
	DbPw        *string
	Host        *string
	Port        *int
	ServiceName *string

	// Monthly provider quota
	QuotaLimit         *int
	QuotaWarnThreshold *int
}

// NewManager creates a new instance of Manager and loads the configuration automatically
func NewManager() (*Manager, error) {
	manager := &Manager{envVars: make(map[string]string)}
	if err := manager.LoadEnvFile(".env"); err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	// Attempt to load configuration when creating a new Manager instance
	if err := manager.LoadConfig(); err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	return manager, nil
}

// LoadConfig populates the embedded EngineEnvConfig fields from environment variables
func (m *Manager) LoadConfig() error {
	m.mutex.RLock()
	defer m.mutex.RUnlock()
	ProxyURL := m.MustGet("PROXY_URL")
	ProxySigningKey := m.MustGet("PROXY_SIGNING_KEY")
	ProxyIssuer := m.GetOrDefault("PROXY_ISSUER", "ratehub")
	ProxyAudience := m.GetOrDefault("PROXY_AUDIENCE", "rate-provider-proxy")
	useSandbox, _ := strconv.ParseBool(m.GetOrDefault("USE_SANDBOX", "false"))
	EstimatorURL := m.MustGet("ESTIMATOR_URL")
	EstimatorModel := m.GetOrDefault("ESTIMATOR_MODEL", "freight-estimator-v1")
	EstimatorToken := m.GetOrDefault("ESTIMATOR_TOKEN", "")
	CacheBackend := m.GetOrDefault("CACHE_BACKEND", "memory")
	RedisHost := m.GetOrDefault("REDIS_HOST", "localhost")
	RedisPort := m.GetOrDefault("REDIS_PORT", "6379")
	redisDB, _ := strconv.Atoi(m.GetOrDefault("REDIS_DB", "0"))
	RedisUser := m.GetOrDefault("REDIS_USER", "")
	RedisPw := m.GetOrDefault("REDIS_PW", "")
	DbUser := m.GetOrDefault("DB_USER", "")
	DbPw := m.GetOrDefault("DB_PW", "")
	Host := m.GetOrDefault("HOST", "")
	Port, _ := strconv.Atoi(m.GetOrDefault("PORT", "1521"))
	ServiceName := m.GetOrDefault("SERVICE_NAME", "")
	quotaLimit, _ := strconv.Atoi(m.GetOrDefault("QUOTA_LIMIT", "50"))
	quotaWarn, _ := strconv.Atoi(m.GetOrDefault("QUOTA_WARN_THRESHOLD", "40"))
	// Populate the embedded EngineEnvConfig fields directly
	m.EngineEnvConfig = EngineEnvConfig{
		ProxyURL:           &ProxyURL,
		ProxySigningKey:    &ProxySigningKey,
		ProxyIssuer:        &ProxyIssuer,
		ProxyAudience:      &ProxyAudience,
		UseSandbox:         &useSandbox,
		EstimatorURL:       &EstimatorURL,
		EstimatorModel:     &EstimatorModel,
		EstimatorToken:     &EstimatorToken,
		CacheBackend:       &CacheBackend,
		RedisHost:          &RedisHost,
		RedisPort:          &RedisPort,
		RedisDb:            &redisDB,
		RedisUser:          &RedisUser,
		RedisPw:            &RedisPw,
		DbUser:             &DbUser,
		DbPw:               &DbPw,
		Host:               &Host,
		Port:               &Port,
		ServiceName:        &ServiceName,
		QuotaLimit:         &quotaLimit,
		QuotaWarnThreshold: &quotaWarn,
	}
	return nil
}

// LoadEnvFile reads a .env style file into the manager. Process environment
// variables take precedence over file entries.
func (m *Manager) LoadEnvFile(path string) error {
	tempVars := make(map[string]string)

	file, err := os.Open(path)
	if err == nil {
		defer file.Close()
		scanner := bufio.NewScanner(file)
		for scanner.Scan() {
			if err := m.processLine(scanner.Text(), tempVars); err != nil {
				return err
			}
		}
		if err := scanner.Err(); err != nil {
			return fmt.Errorf("error reading env file: %w", err)
		}
	}

	for _, kv := range os.Environ() {
		parts := strings.SplitN(kv, "=", 2)
		if len(parts) == 2 {
			tempVars[parts[0]] = parts[1]
		}
	}

	m.mutex.Lock()
	defer m.mutex.Unlock()
	m.envVars = tempVars
	return nil
}

// Get retrieves a value from the environment variables
func (m *Manager) Get(key string) (string, bool) {
	m.mutex.RLock()
	defer m.mutex.RUnlock()
	value, exists := m.envVars[key]
	return value, exists
}

// GetOrDefault retrieves a value or falls back to the supplied default
func (m *Manager) GetOrDefault(key, fallback string) string {
	if value, exists := m.Get(key); exists && value != "" {
		return value
	}
	return fallback
}

// MustGet retrieves a value and panics if it doesn't exist
func (m *Manager) MustGet(key string) string {
	value, exists := m.Get(key)
	if !exists {
		panic(fmt.Sprintf("required environment variable %s not found", key))
	}
	return value
}

func (m *Manager) processLine(line string, tempVars map[string]string) error {
	line = strings.TrimSpace(line)
	if line == "" || strings.HasPrefix(line, "#") {
		return nil
	}

	parts := strings.SplitN(line, "=", 2)
	if len(parts) != 2 {
		return fmt.Errorf("invalid format for line: %s", line)
	}

	key := strings.TrimSpace(parts[0])
	value := strings.TrimSpace(parts[1])

	if err := validateKey(key); err != nil {
		return fmt.Errorf("invalid key-value pair: %w", err)
	}

	tempVars[key] = value
	return nil
}

func validateKey(key string) error {
	if len(key) == 0 {
		return ErrEmptyKey
	}
	for i, char := range key {
		if i == 0 && !unicode.IsLetter(char) && char != '_' {
			return fmt.Errorf("%w: must start with letter or underscore", ErrInvalidKey)
		}
		if !unicode.IsLetter(char) && !unicode.IsNumber(char) && char != '_' {
			return fmt.Errorf("%w: invalid character %q", ErrInvalidKey, char)
		}
	}
	return nil
}

// OracleConfigured reports whether the optional Oracle reference store is set up.
func (m *Manager) OracleConfigured() bool {
	return *m.Host != "" && *m.ServiceName != "" && *m.DbUser != ""
}
