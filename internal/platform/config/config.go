package config

import (
	"encoding/base64"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds runtime configuration loaded from an optional YAML file and environment variables.
type Config struct {
	Port           string `yaml:"port"`
	GinMode        string `yaml:"gin_mode"`
	AllowedOrigins string `yaml:"allowed_origins"`

	ArcGISURL       string        `yaml:"arcgis_url"`
	SocrataDomain   string        `yaml:"socrata_domain"`
	SocrataDataset  string        `yaml:"socrata_dataset"`
	SocrataLimit    int           `yaml:"socrata_limit"`
	SocrataAppToken string        `yaml:"socrata_app_token"`
	HTTPTimeout     time.Duration `yaml:"http_timeout"`
	Timezone        string        `yaml:"timezone"`

	LogLevel string `yaml:"log_level"`
	LogFile  string `yaml:"log_file"`

	FirebaseProjectID   string `yaml:"firebase_project_id"`
	FirebaseCredsBase64 string `yaml:"firebase_creds_base64"`
	FirebaseCredsFile   string `yaml:"firebase_creds_file"`
}

// Defaults returns the configuration used when nothing is set.
func Defaults() Config {
	return Config{
		Port:           "8080",
		GinMode:        "release",
		ArcGISURL:      "https://services1.arcgis.com/0MSEUqKaxRlEPj5g/arcgis/rest/services/Coronavirus_2019_nCoV_Cases/FeatureServer/1/query?where=1%3D1&outFields=*&outSR=4326&f=json",
		SocrataDomain:  "data.cdc.gov",
		SocrataDataset: "9bhg-hcku",
		SocrataLimit:   1500,
		HTTPTimeout:    30 * time.Second,
		Timezone:       "Local",
		LogLevel:       "info",
	}
}

// Load reads CONFIG_FILE (if set) over the defaults, then applies environment variables.
func Load() (Config, error) {
	cfg := Defaults()

	if path := strings.TrimSpace(os.Getenv("CONFIG_FILE")); path != "" {
		if err := cfg.mergeFile(path); err != nil {
			return Config{}, err
		}
	}

	cfg.Port = getEnv("PORT", cfg.Port)
	cfg.GinMode = getEnv("GIN_MODE", cfg.GinMode)
	cfg.AllowedOrigins = getEnv("ALLOWED_ORIGINS", cfg.AllowedOrigins)
	cfg.ArcGISURL = getEnv("ARCGIS_URL", cfg.ArcGISURL)
	cfg.SocrataDomain = getEnv("SOCRATA_DOMAIN", cfg.SocrataDomain)
	cfg.SocrataDataset = getEnv("SOCRATA_DATASET", cfg.SocrataDataset)
	cfg.SocrataAppToken = getEnv("SOCRATA_APP_TOKEN", cfg.SocrataAppToken)
	cfg.Timezone = getEnv("TIMEZONE", cfg.Timezone)
	cfg.LogLevel = getEnv("LOG_LEVEL", cfg.LogLevel)
	cfg.LogFile = getEnv("LOG_FILE", cfg.LogFile)
	cfg.FirebaseProjectID = getEnv("FIREBASE_PROJECT_ID", cfg.FirebaseProjectID)
	cfg.FirebaseCredsBase64 = getEnv("FIREBASE_CREDS_BASE64", cfg.FirebaseCredsBase64)
	cfg.FirebaseCredsFile = getEnv("FIREBASE_CREDS_FILE", cfg.FirebaseCredsFile)

	limit, err := parseIntEnv("SOCRATA_LIMIT", cfg.SocrataLimit)
	if err != nil {
		return Config{}, fmt.Errorf("parse SOCRATA_LIMIT: %w", err)
	}
	cfg.SocrataLimit = limit

	timeout, err := parseDurationEnv("HTTP_TIMEOUT", cfg.HTTPTimeout)
	if err != nil {
		return Config{}, fmt.Errorf("parse HTTP_TIMEOUT: %w", err)
	}
	cfg.HTTPTimeout = timeout

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) mergeFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read CONFIG_FILE: %w", err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("decode CONFIG_FILE %s: %w", path, err)
	}
	return nil
}

// Validate ensures required fields are present.
func (c Config) Validate() error {
	if c.Port == "" {
		return errors.New("PORT is required")
	}
	if c.ArcGISURL == "" {
		return errors.New("ARCGIS_URL is required")
	}
	if c.SocrataDomain == "" || c.SocrataDataset == "" {
		return errors.New("SOCRATA_DOMAIN and SOCRATA_DATASET are required")
	}
	if c.SocrataLimit <= 0 {
		return errors.New("SOCRATA_LIMIT must be positive")
	}
	if c.HTTPTimeout <= 0 {
		return errors.New("HTTP_TIMEOUT must be positive")
	}
	if _, err := c.Location(); err != nil {
		return err
	}
	if c.FirebaseProjectID != "" && c.FirebaseCredsBase64 == "" && c.FirebaseCredsFile == "" {
		return errors.New("provide FIREBASE_CREDS_BASE64 or FIREBASE_CREDS_FILE for Firestore auth")
	}
	return nil
}

// Location resolves the zone whose calendar date drives the daily refresh.
func (c Config) Location() (*time.Location, error) {
	if c.Timezone == "" || c.Timezone == "Local" {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("load TIMEZONE %q: %w", c.Timezone, err)
	}
	return loc, nil
}

// FirestoreEnabled reports whether refresh run history should be persisted.
func (c Config) FirestoreEnabled() bool {
	return c.FirebaseProjectID != ""
}

// FirebaseCredentialsJSON returns the service account JSON bytes and the source used.
func (c Config) FirebaseCredentialsJSON() ([]byte, string, error) {
	if c.FirebaseCredsBase64 != "" {
		decoded, err := base64.StdEncoding.DecodeString(c.FirebaseCredsBase64)
		if err != nil {
			return nil, "base64", fmt.Errorf("decode FIREBASE_CREDS_BASE64: %w", err)
		}
		return decoded, "base64", nil
	}
	if c.FirebaseCredsFile != "" {
		data, err := os.ReadFile(c.FirebaseCredsFile)
		if err != nil {
			return nil, "file", fmt.Errorf("read FIREBASE_CREDS_FILE: %w", err)
		}
		return data, "file", nil
	}
	return nil, "", errors.New("no firebase credentials found")
}

func getEnv(key, defaultVal string) string {
	if val := strings.TrimSpace(os.Getenv(key)); val != "" {
		return val
	}
	return defaultVal
}

func parseIntEnv(key string, defaultVal int) (int, error) {
	val := strings.TrimSpace(os.Getenv(key))
	if val == "" {
		return defaultVal, nil
	}
	return strconv.Atoi(val)
}

func parseDurationEnv(key string, defaultVal time.Duration) (time.Duration, error) {
	val := strings.TrimSpace(os.Getenv(key))
	if val == "" {
		return defaultVal, nil
	}
	return time.ParseDuration(val)
}
