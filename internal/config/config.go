package config

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Server struct {
		Port int `yaml:"port"`
	} `yaml:"server"`

	Log struct {
		Level  string `yaml:"level"`
		Pretty bool   `yaml:"pretty"`
	} `yaml:"log"`

	AI struct {
		Model string `yaml:"model"`
		// Demo swaps the real vision client for the offline stub.
		Demo bool `yaml:"demo"`
		// APIKey is taken from the environment only; a credential never
		// lives in the config file. Empty is allowed here: its absence is
		// surfaced as a configuration error at call time, per request.
		APIKey string `yaml:"-"`
	} `yaml:"ai"`

	Storage struct {
		Driver    string `yaml:"driver"` // file | mysql | postgres
		Path      string `yaml:"path"`
		FaultPath string `yaml:"faultPath"`

		Database struct {
			Host     string `yaml:"host"`
			Port     int    `yaml:"port"`
			User     string `yaml:"user"`
			Password string `yaml:"password"`
			Name     string `yaml:"name"`
			SSLMode  string `yaml:"sslmode"`
		} `yaml:"database"`
	} `yaml:"storage"`

	Minio struct {
		Enabled    bool   `yaml:"enabled"`
		Endpoint   string `yaml:"endpoint"`
		AccessKey  string `yaml:"accessKey"`
		SecretKey  string `yaml:"secretKey"`
		BucketName string `yaml:"bucketName"`
		Region     string `yaml:"region"`
		UseSSL     bool   `yaml:"useSSL"`
	} `yaml:"minio"`
}

// Load reads the yaml config file and applies environment overrides. A
// missing file is fine; defaults cover local use.
func Load(path string) (*Config, error) {
	// Load .env file if it exists
	_ = godotenv.Load()

	var cfg Config
	data, err := os.ReadFile(path)
	if err == nil {
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("parsing %s: %w", path, err)
		}
	} else if !os.IsNotExist(err) {
		return nil, err
	}

	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = getEnv("LOG_LEVEL", "info")
	}
	if cfg.Storage.Driver == "" {
		cfg.Storage.Driver = "file"
	}
	if cfg.Storage.Path == "" {
		cfg.Storage.Path = "./data/analysis_history.json"
	}
	if cfg.Storage.FaultPath == "" {
		cfg.Storage.FaultPath = "./data/analysis_faults.jsonl"
	}
	if cfg.AI.Model == "" {
		cfg.AI.Model = getEnv("OPENAI_MODEL", "gpt-4o-mini")
	}
	cfg.AI.APIKey = os.Getenv("OPENAI_API_KEY")

	switch cfg.Storage.Driver {
	case "file", "mysql", "postgres":
	default:
		return nil, fmt.Errorf("unknown storage driver: %s", cfg.Storage.Driver)
	}

	return &cfg, nil
}

// MySQLDSN builds the DSN for the mysql history backend
func (c *Config) MySQLDSN() string {
	return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?parseTime=true&charset=utf8mb4&loc=UTC",
		c.Storage.Database.User,
		c.Storage.Database.Password,
		c.Storage.Database.Host,
		c.Storage.Database.Port,
		c.Storage.Database.Name,
	)
}

// PostgresDSN builds the DSN for the postgres history backend
func (c *Config) PostgresDSN() string {
	ssl := c.Storage.Database.SSLMode
	if ssl == "" {
		ssl = "disable"
	}
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Storage.Database.Host,
		c.Storage.Database.Port,
		c.Storage.Database.User,
		c.Storage.Database.Password,
		c.Storage.Database.Name,
		ssl,
	)
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
