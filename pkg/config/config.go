package config

import (
	"io/fs"
	"os"
	"reflect"
	"strings"
	"time"

	"github.com/creasty/defaults"
	"github.com/iancoleman/strcase"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	"github.com/pkg/errors"
)

const (
	DatabaseDriverSQLite   = "sqlite"
	DatabaseDriverPostgres = "postgres"

	ImageStoreLocal = "local"
	ImageStoreMinIO = "minio"
)

type Config struct {
	DatabaseBusyTimeout       time.Duration `koanf:"database_busy_timeout" default:"5s"`
	DatabaseConnMaxIdleTime   time.Duration `koanf:"database_conn_max_idle_time" default:"10s"`
	DatabaseConnectRetryCount int           `koanf:"database_connect_retry_count" default:"5"`
	DatabaseConnectRetryDelay time.Duration `koanf:"database_connect_retry_delay" default:"2s"`
	DatabaseDebug             bool          `koanf:"database_debug"`
	DatabaseDriver            string        `koanf:"database_driver" default:"sqlite"`
	DatabaseFilePath          string        `koanf:"database_file_path"`
	DatabaseMaxIdleConns      int           `koanf:"database_max_idle_conns"`
	DatabaseMaxOpenConns      int           `koanf:"database_max_open_conns" default:"5"`
	DatabaseURL               string        `koanf:"database_url"`
	Environment               string        `koanf:"environment"`
	Hostname                  string        `koanf:"hostname"`
	ImageStore                string        `koanf:"image_store" default:"local"`
	ListEmptyAsArray          bool          `koanf:"list_empty_as_array"`
	MinIOAccessKey            string        `koanf:"minio_access_key"`
	MinIOBucket               string        `koanf:"minio_bucket" default:"bookstore"`
	MinIOEndpoint             string        `koanf:"minio_endpoint"`
	MinIOSecretKey            string        `koanf:"minio_secret_key"`
	MinIOUseSSL               bool          `koanf:"minio_use_ssl"`
	ServerHost                string        `koanf:"server_host" default:"0.0.0.0"`
	ServerPort                int           `koanf:"server_port" default:"3001"`
	UploadDir                 string        `koanf:"upload_dir" default:"./public/img"`
	UploadMaxBytes            int64         `koanf:"upload_max_bytes" default:"10485760"`
}

const (
	environmentENV    = "ENVIRONMENT"
	configFileENV     = "CONFIG_FILE"
	defaultConfigFile = "/config/bookstore.yaml"
)

// New builds the config from struct defaults, the environment profile, the
// optional YAML file at CONFIG_FILE and finally environment variables.
func New() (*Config, error) {
	hostname, err := os.Hostname()
	if err != nil {
		return nil, errors.WithStack(err)
	}

	cfg := &Config{}
	if err := defaults.Set(cfg); err != nil {
		return nil, errors.WithStack(err)
	}
	cfg.Hostname = hostname
	cfg.Environment = os.Getenv(environmentENV)

	switch cfg.Environment {
	case "development", "":
		loadDevelopmentConfig(cfg)
	case "test":
		loadTestConfig(cfg)
	case "production":
		loadProductionConfig(cfg)
	}

	k := koanf.New(".")

	configFile := os.Getenv(configFileENV)
	if configFile == "" {
		configFile = defaultConfigFile
	}
	if _, err := os.Stat(configFile); err == nil {
		if err := k.Load(file.Provider(configFile), yaml.Parser()); err != nil {
			return nil, errors.Wrapf(err, "failed to load config file: %s", configFile)
		}
	} else if !errors.Is(err, fs.ErrNotExist) {
		return nil, errors.WithStack(err)
	}

	keys := knownKeys()
	err = k.Load(env.Provider("", ".", func(s string) string {
		key := strings.ToLower(s)
		if _, ok := keys[key]; !ok {
			return ""
		}
		return key
	}), nil)
	if err != nil {
		return nil, errors.WithStack(err)
	}

	if err := k.Unmarshal("", cfg); err != nil {
		return nil, errors.WithStack(err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// NewForTest returns a config suitable for unit tests: an in-memory database
// and a loopback listener.
func NewForTest() *Config {
	cfg := &Config{}
	_ = defaults.Set(cfg)
	cfg.Environment = "test"
	loadTestConfig(cfg)
	return cfg
}

func (cfg *Config) validate() error {
	switch cfg.DatabaseDriver {
	case DatabaseDriverSQLite:
		if cfg.DatabaseFilePath == "" {
			return missingRequired("DatabaseFilePath")
		}
	case DatabaseDriverPostgres:
		if cfg.DatabaseURL == "" {
			return missingRequired("DatabaseURL")
		}
	default:
		return errors.Errorf("unsupported database_driver %q", cfg.DatabaseDriver)
	}

	switch cfg.ImageStore {
	case ImageStoreLocal:
		if cfg.UploadDir == "" {
			return missingRequired("UploadDir")
		}
	case ImageStoreMinIO:
		if cfg.MinIOEndpoint == "" {
			return missingRequired("MinIOEndpoint")
		}
	default:
		return errors.Errorf("unsupported image_store %q", cfg.ImageStore)
	}

	return nil
}

func missingRequired(field string) error {
	key := toSnakeCase(field)
	return errors.Errorf(
		"missing required config: set %s env var or %s in the config file",
		strings.ToUpper(key), key,
	)
}

// knownKeys lists every koanf key on Config so unrelated environment
// variables are never loaded.
func knownKeys() map[string]struct{} {
	keys := map[string]struct{}{}
	t := reflect.TypeOf(Config{})
	for i := 0; i < t.NumField(); i++ {
		if tag := t.Field(i).Tag.Get("koanf"); tag != "" {
			keys[tag] = struct{}{}
		}
	}
	return keys
}

func toSnakeCase(s string) string {
	return strcase.ToSnake(s)
}
