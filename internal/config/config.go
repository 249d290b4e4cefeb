package config

import (
	"fmt"
	"net"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

const (
	DefaultPort       = 3000
	DefaultHost       = ""
	DefaultDBPath     = "news.db"
	DefaultUploadsDir = "uploads"
	DefaultLogLevel   = "info"

	DefaultMaxUploadBytes     int64 = 20 * 1024 * 1024
	DefaultMultipartMaxMemory int64 = 8 * 1024 * 1024

	configFileName  = ".newspost.toml"
	dotEnvFileName  = ".env"
	configDirEnvKey = "NEWSPOST_CONFIG_DIR"
)

// UploadConfig defines limits for image uploads.
type UploadConfig struct {
	MaxUploadBytes     int64 `toml:"max_upload_bytes"`
	MultipartMaxMemory int64 `toml:"multipart_max_memory"`
}

// Config defines runtime configuration for newspost.
type Config struct {
	Port       int          `toml:"port"`
	Host       string       `toml:"host"`
	APIURL     string       `toml:"api_url"`
	DBPath     string       `toml:"db_path"`
	DBURL      string       `toml:"db_url"`
	UploadsDir string       `toml:"uploads_dir"`
	PublicDir  string       `toml:"public_dir"`
	LogLevel   string       `toml:"log_level"`
	Uploads    UploadConfig `toml:"uploads"`

	// LoadedPath is the config file that was read, if any.
	LoadedPath string `toml:"-"`
}

// Default returns default configuration values.
func Default() Config {
	return Config{
		Port:       DefaultPort,
		Host:       DefaultHost,
		DBPath:     DefaultDBPath,
		UploadsDir: DefaultUploadsDir,
		LogLevel:   DefaultLogLevel,
		Uploads: UploadConfig{
			MaxUploadBytes:     DefaultMaxUploadBytes,
			MultipartMaxMemory: DefaultMultipartMaxMemory,
		},
	}
}

// ListenAddr returns the host:port the server binds to.
func (c *Config) ListenAddr() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}

// BaseURL returns the URL clients use to reach the server.
func (c *Config) BaseURL() string {
	if strings.TrimSpace(c.APIURL) != "" {
		return strings.TrimRight(c.APIURL, "/")
	}
	host := c.Host
	if host == "" || host == "0.0.0.0" || host == "::" {
		host = "127.0.0.1"
	}
	return "http://" + net.JoinHostPort(host, strconv.Itoa(c.Port))
}

func loadFileIfExists(path string, cfg *Config) (bool, error) {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, err
	}
	if info.IsDir() {
		return false, nil
	}
	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return false, fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	return true, nil
}

var allowedKeys = []string{
	"port",
	"host",
	"api_url",
	"db_path",
	"db_url",
	"uploads_dir",
	"public_dir",
	"log_level",
	"uploads.max_upload_bytes",
	"uploads.multipart_max_memory",
}

// AllowedKeys returns the set of valid config keys.
func AllowedKeys() []string {
	return allowedKeys
}

// IsAllowedKey checks if a key is a valid config key.
func IsAllowedKey(key string) bool {
	for _, k := range allowedKeys {
		if k == key {
			return true
		}
	}
	return false
}

// Get returns the value of a config key.
func (c *Config) Get(key string) (string, error) {
	switch key {
	case "port":
		return strconv.Itoa(c.Port), nil
	case "host":
		return c.Host, nil
	case "api_url":
		return c.APIURL, nil
	case "db_path":
		return c.DBPath, nil
	case "db_url":
		return c.DBURL, nil
	case "uploads_dir":
		return c.UploadsDir, nil
	case "public_dir":
		return c.PublicDir, nil
	case "log_level":
		return c.LogLevel, nil
	case "uploads.max_upload_bytes":
		return strconv.FormatInt(c.Uploads.MaxUploadBytes, 10), nil
	case "uploads.multipart_max_memory":
		return strconv.FormatInt(c.Uploads.MultipartMaxMemory, 10), nil
	default:
		return "", fmt.Errorf("unknown key: %s", key)
	}
}

// Path returns the config file location: $NEWSPOST_CONFIG_DIR/.newspost.toml or ~/.newspost.toml.
func Path() (string, error) {
	if dir := strings.TrimSpace(os.Getenv(configDirEnvKey)); dir != "" {
		return filepath.Join(dir, configFileName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, configFileName), nil
}

// SetKey reads the TOML file at path, sets key=value, and writes it back.
func SetKey(path, key, value string) error {
	if !IsAllowedKey(key) {
		return fmt.Errorf("unknown key: %s", key)
	}

	data := make(map[string]any)
	if _, err := os.Stat(path); err == nil {
		if _, err := toml.DecodeFile(path, &data); err != nil {
			return fmt.Errorf("parse %s: %w", path, err)
		}
	}

	parsedValue, err := parseSetValue(key, value)
	if err != nil {
		return err
	}
	if err := setNestedKey(data, strings.Split(key, "."), parsedValue); err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	return toml.NewEncoder(f).Encode(data)
}

// Load reads the config file, then .env, then applies env overrides.
// Values already present in the process environment win over .env.
func Load() (*Config, error) {
	cfg := Default()

	path, err := Path()
	if err == nil {
		loaded, loadErr := loadFileIfExists(path, &cfg)
		if loadErr != nil {
			return nil, loadErr
		}
		if loaded {
			cfg.LoadedPath = path
		}
	}

	if err := loadDotEnv(dotEnvFileName); err != nil {
		return nil, err
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	cfg.normalize()

	return &cfg, nil
}

func loadDotEnv(path string) error {
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("failed to load %s: %w", path, err)
	}
	return nil
}

func (c *Config) applyEnv() error {
	if raw := strings.TrimSpace(os.Getenv("PORT")); raw != "" {
		port, err := parsePort(raw)
		if err != nil {
			return fmt.Errorf("invalid PORT: %w", err)
		}
		c.Port = port
	}
	if host, ok := os.LookupEnv("HOST"); ok {
		c.Host = strings.TrimSpace(host)
	}
	if apiURL := strings.TrimSpace(os.Getenv("NEWSPOST_API_URL")); apiURL != "" {
		c.APIURL = apiURL
	}
	if dbPath := strings.TrimSpace(os.Getenv("NEWSPOST_DB")); dbPath != "" {
		c.DBPath = dbPath
	}
	if dbURL := strings.TrimSpace(os.Getenv("DATABASE_URL")); dbURL != "" {
		c.DBURL = dbURL
	}
	if dbURL := strings.TrimSpace(os.Getenv("NEWSPOST_DB_URL")); dbURL != "" {
		c.DBURL = dbURL
	}
	if dir := strings.TrimSpace(os.Getenv("NEWSPOST_UPLOADS_DIR")); dir != "" {
		c.UploadsDir = dir
	}
	if dir := strings.TrimSpace(os.Getenv("NEWSPOST_PUBLIC_DIR")); dir != "" {
		c.PublicDir = dir
	}
	if level := strings.TrimSpace(os.Getenv("NEWSPOST_LOG_LEVEL")); level != "" {
		c.LogLevel = level
	}
	return nil
}

func parsePort(raw string) (int, error) {
	port, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return 0, fmt.Errorf("port must be an integer")
	}
	if port < 0 || port > 65535 {
		return 0, fmt.Errorf("port must be between 0 and 65535")
	}
	return port, nil
}

func parseSetValue(key, value string) (any, error) {
	value = strings.TrimSpace(value)
	switch key {
	case "port":
		port, err := parsePort(value)
		if err != nil {
			return nil, err
		}
		return int64(port), nil
	case "uploads.max_upload_bytes", "uploads.multipart_max_memory":
		parsed, err := strconv.ParseInt(value, 10, 64)
		if err != nil || parsed <= 0 {
			return nil, fmt.Errorf("%s must be a positive integer", key)
		}
		return parsed, nil
	default:
		return value, nil
	}
}

func setNestedKey(data map[string]any, parts []string, value any) error {
	if len(parts) == 0 {
		return fmt.Errorf("invalid config key")
	}
	if len(parts) == 1 {
		data[parts[0]] = value
		return nil
	}
	childRaw, ok := data[parts[0]]
	if !ok {
		child := map[string]any{}
		data[parts[0]] = child
		return setNestedKey(child, parts[1:], value)
	}
	child, ok := childRaw.(map[string]any)
	if !ok {
		return fmt.Errorf("cannot set nested key %q", strings.Join(parts, "."))
	}
	return setNestedKey(child, parts[1:], value)
}

func (c *Config) normalize() {
	if c.Port <= 0 {
		c.Port = DefaultPort
	}
	if strings.TrimSpace(c.DBPath) == "" {
		c.DBPath = DefaultDBPath
	}
	if strings.TrimSpace(c.UploadsDir) == "" {
		c.UploadsDir = DefaultUploadsDir
	}
	if strings.TrimSpace(c.LogLevel) == "" {
		c.LogLevel = DefaultLogLevel
	}
	if c.Uploads.MaxUploadBytes <= 0 {
		c.Uploads.MaxUploadBytes = DefaultMaxUploadBytes
	}
	if c.Uploads.MultipartMaxMemory <= 0 {
		c.Uploads.MultipartMaxMemory = DefaultMultipartMaxMemory
	}
}
