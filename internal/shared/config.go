package shared

import (
	"errors"
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"

	"github.com/codewithboateng/diguard/internal/rules"
)

type Config struct {
	Database struct {
		Driver string `yaml:"driver"` // "sqlite" (default)
		DSN    string `yaml:"dsn"`    // "./diguard.db"
	} `yaml:"database"`

	Analysis struct {
		Sources  []string `yaml:"sources"`
		Include  []string `yaml:"include"`
		Exclude  []string `yaml:"exclude"`
		Workers  int      `yaml:"workers"`  // 0/1 = sequential
		Schedule string   `yaml:"schedule"` // cron spec, used by serve
	} `yaml:"analysis"`

	Conventions rules.Conventions `yaml:"conventions"`

	Rules struct {
		Pack        string   `yaml:"pack"`
		Disabled    []string `yaml:"disabled"`
		MinSeverity string   `yaml:"min_severity"` // INFO|BLOCKING
	} `yaml:"rules"`

	Reporting struct {
		OutDir string `yaml:"out_dir"` // "./reports"
	} `yaml:"reporting"`

	Logging struct {
		Format string `yaml:"format"` // "json"|"text"
		Level  string `yaml:"level"`  // "info"|"debug"|"warn"|"error"
	} `yaml:"logging"`

	Server struct {
		Addr           string   `yaml:"addr"`
		AllowedOrigins []string `yaml:"allowed_origins"`
		SessionHours   int      `yaml:"session_hours"`
		CacheSize      int      `yaml:"cache_size"`
	} `yaml:"server"`
}

func DefaultConfig() Config {
	var c Config
	c.Database.Driver = "sqlite"
	c.Database.DSN = "./diguard.db"
	c.Analysis.Exclude = []string{"**/build/**", "**/target/**", "**/.git/**"}
	c.Rules.MinSeverity = "INFO"
	c.Reporting.OutDir = "./reports"
	c.Logging.Format = "text"
	c.Logging.Level = "info"
	c.Server.Addr = ":8080"
	c.Server.SessionHours = 12
	c.Server.CacheSize = 64
	return c
}

// LoadConfig layers the file (if any) and DIGUARD_* environment variables
// over the defaults. Conventions are not validated here; commands that
// build rules do that.
func LoadConfig(path string) (Config, error) {
	c := DefaultConfig()
	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return c, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(b, &c); err != nil {
			return c, fmt.Errorf("parse config %s: %w", path, err)
		}
	}
	if err := applyEnv(&c); err != nil {
		return c, err
	}
	return c, nil
}

func applyEnv(c *Config) error {
	if v := os.Getenv("DIGUARD_DB_DSN"); v != "" {
		c.Database.DSN = v
	}
	if v := os.Getenv("DIGUARD_LOG_FORMAT"); v != "" {
		c.Logging.Format = v
	}
	if v := os.Getenv("DIGUARD_LOG_LEVEL"); v != "" {
		c.Logging.Level = v
	}
	if v := os.Getenv("DIGUARD_OUT_DIR"); v != "" {
		c.Reporting.OutDir = v
	}
	if v := os.Getenv("DIGUARD_SERVER_ADDR"); v != "" {
		c.Server.Addr = v
	}
	if v := os.Getenv("DIGUARD_WORKERS"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			return errors.New("DIGUARD_WORKERS must be a non-negative integer")
		}
		c.Analysis.Workers = n
	}
	return nil
}
