package config

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"ragreport/database"
	"ragreport/internal/analytics/domain"
	catalogdomain "ragreport/internal/catalog/domain"
)

// Backends de cache supportés
const (
	CacheBackendMemory = "memory"
	CacheBackendRedis  = "redis"
)

// DBConfig paramètres de connexion PostgreSQL
type DBConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	Name     string
	SSLMode  string
}

// ConnString construit la connection string PostgreSQL
func (c DBConfig) ConnString() string {
	return database.ConnString(c.Host, c.Port, c.User, c.Password, c.Name, c.SSLMode)
}

// CacheConfig paramètres du cache des rapports
type CacheConfig struct {
	Backend       string
	TTL           time.Duration
	RedisAddr     string
	RedisPassword string
	RedisDB       int
}

// Config configuration de l'application, lue depuis l'environnement
type Config struct {
	DB            DBConfig
	HTTPAddr      string
	Cache         CacheConfig
	CriteriaFile  string
	Policy        string
	ReportWorkers int
	LogFormat     string
}

// Load charge .env (s'il existe) puis lit les variables d'environnement
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}
	return FromEnv()
}

// FromEnv lit la configuration depuis les variables d'environnement, avec valeurs par défaut
func FromEnv() (*Config, error) {
	cfg := &Config{
		DB: DBConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnv("DB_PORT", "5432"),
			User:     getEnv("DB_USER", "raguser"),
			Password: getEnv("DB_PASSWORD", "ragpass"),
			Name:     getEnv("DB_NAME", "ragdb"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
		},
		HTTPAddr: getEnv("HTTP_ADDR", ":8080"),
		Cache: CacheConfig{
			Backend:       strings.ToLower(getEnv("CACHE_BACKEND", CacheBackendMemory)),
			RedisAddr:     getEnv("REDIS_ADDR", "localhost:6379"),
			RedisPassword: getEnv("REDIS_PASSWORD", ""),
		},
		CriteriaFile: getEnv("RAG_CRITERIA_FILE", ""),
		Policy:       getEnv("RAG_POLICY", "none"),
		LogFormat:    strings.ToLower(getEnv("LOG_FORMAT", "text")),
	}

	var err error
	if cfg.Cache.TTL, err = time.ParseDuration(getEnv("CACHE_TTL", "5m")); err != nil {
		return nil, fmt.Errorf("CACHE_TTL: %w", err)
	}
	if cfg.Cache.RedisDB, err = strconv.Atoi(getEnv("REDIS_DB", "0")); err != nil {
		return nil, fmt.Errorf("REDIS_DB: %w", err)
	}
	if cfg.ReportWorkers, err = strconv.Atoi(getEnv("REPORT_WORKERS", "4")); err != nil {
		return nil, fmt.Errorf("REPORT_WORKERS: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate vérifie la cohérence de la configuration
func (c *Config) Validate() error {
	switch c.Cache.Backend {
	case CacheBackendMemory, CacheBackendRedis:
	default:
		return fmt.Errorf("CACHE_BACKEND: unknown backend %q (memory|redis)", c.Cache.Backend)
	}
	if c.Cache.TTL <= 0 {
		return fmt.Errorf("CACHE_TTL must be positive, got %s", c.Cache.TTL)
	}
	if c.ReportWorkers <= 0 {
		return fmt.Errorf("REPORT_WORKERS must be positive, got %d", c.ReportWorkers)
	}
	switch c.LogFormat {
	case "text", "json":
	default:
		return fmt.Errorf("LOG_FORMAT: unknown format %q (text|json)", c.LogFormat)
	}
	if _, err := domain.ParsePolicy(c.Policy); err != nil {
		return fmt.Errorf("RAG_POLICY: %w", err)
	}
	return nil
}

// EscalationPolicy retourne la politique d'escalade configurée
func (c *Config) EscalationPolicy() (domain.EscalationPolicy, error) {
	return domain.ParsePolicy(c.Policy)
}

// Criteria retourne la table de seuils: fichier YAML si configuré, sinon défauts
func (c *Config) Criteria() (domain.Criteria, error) {
	if c.CriteriaFile == "" {
		return domain.DefaultCriteria(), nil
	}
	f, err := os.Open(c.CriteriaFile)
	if err != nil {
		return nil, fmt.Errorf("open criteria file: %w", err)
	}
	defer f.Close()
	return LoadCriteria(f)
}

// LoadCriteria lit une table de seuils YAML:
//
//	A_PLUS: {green: 70, amber: 50}
//	A:      {green: 60, amber: 40}
//
// Un tier inconnu ou une paire invalide est une *ConfigurationError
func LoadCriteria(r io.Reader) (domain.Criteria, error) {
	var raw map[string]domain.Thresholds
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&raw); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, &domain.ConfigurationError{Reason: "criteria file is empty"}
		}
		return nil, &domain.ConfigurationError{Reason: fmt.Sprintf("parse criteria: %v", err)}
	}

	criteria := make(domain.Criteria, len(raw))
	for name, t := range raw {
		tier := catalogdomain.ParseBrandTier(name)
		if !tier.IsKnown() {
			return nil, &domain.ConfigurationError{Tier: catalogdomain.BrandTier(name), Reason: "unknown brand tier"}
		}
		if _, dup := criteria[tier]; dup {
			return nil, &domain.ConfigurationError{Tier: tier, Reason: fmt.Sprintf("tier listed twice (as %q)", name)}
		}
		criteria[tier] = t
	}
	if err := criteria.Validate(); err != nil {
		return nil, err
	}
	return criteria, nil
}

// NewLogger crée le logger slog selon LOG_FORMAT
func NewLogger(format string, w io.Writer) *slog.Logger {
	opts := &slog.HandlerOptions{Level: slog.LevelInfo}
	if format == "json" {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

// getEnv récupère une variable d'environnement avec fallback
func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
