// Package config assembles the server configuration.
//
// Values are layered in this order, later sources winning: built-in defaults,
// the YAML file named by -config, a .env file, NAJDENO_* environment
// variables, and finally flags given on the command line.
package config

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config is the server configuration.
type Config struct {
	DBPath    string       `yaml:"db" validate:"required"`
	Addr      string       `yaml:"addr" validate:"required"`
	AdminUser string       `yaml:"admin_user" validate:"required"`
	LogPath   string       `yaml:"log"`
	Scorer    ScorerConfig `yaml:"scorer"`

	// MetricsAddr is a separate listener for /metrics, kept off the public
	// API address. Empty disables it.
	MetricsAddr string `yaml:"metrics_addr"`
}

// ScorerConfig points at the external match scoring service. An empty URL
// disables ranked matching.
type ScorerConfig struct {
	URL     string        `yaml:"url" validate:"omitempty,http_url"`
	Timeout time.Duration `yaml:"timeout" validate:"gt=0"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		DBPath:      "najdeno.sqlite3",
		Addr:        ":8080",
		AdminUser:   "Admin",
		MetricsAddr: "127.0.0.1:9090",
		Scorer: ScorerConfig{
			Timeout: 3 * time.Second,
		},
	}
}

// Environment variable names.
const (
	EnvDB            = "NAJDENO_DB"
	EnvAddr          = "NAJDENO_ADDR"
	EnvAdminUser     = "NAJDENO_ADMIN_USER"
	EnvLog           = "NAJDENO_LOG"
	EnvScorerURL     = "NAJDENO_SCORER_URL"
	EnvScorerTimeout = "NAJDENO_SCORER_TIMEOUT"
	EnvMetricsAddr   = "NAJDENO_METRICS_ADDR"
)

const usage = `Usage: najdeno [flags]

Flags:
  -c, -config <path>        YAML configuration file
  -e, -env <path>           dotenv file (default: .env, ignored if missing)
  -d, -db <path>            SQLite database path (default: najdeno.sqlite3)
  -a, -addr <host:port>     listen address (default: :8080)
  -u, -user <name>          admin username on first run (default: Admin)
  -l, -log <path>           log file path (default: no file, stdout/stderr only)
  -s, -scorer <url>         match scoring service base URL (default: none)
  -scorer-timeout <dur>     match scoring timeout (default: 3s)
  -metrics-addr <host:port> Prometheus listener, empty to disable (default: 127.0.0.1:9090)
  -h, -help                 show this help and exit
`

// Load parses args and merges every configuration source. lookupEnv is
// normally os.LookupEnv. Asking for help returns flag.ErrHelp.
func Load(args []string, lookupEnv func(string) (string, bool), output io.Writer) (*Config, error) {
	flags := flag.NewFlagSet("najdeno", flag.ContinueOnError)
	flags.SetOutput(output)
	flags.Usage = func() { fmt.Fprint(output, usage) }

	var configPath, envPath string
	flags.StringVar(&configPath, "config", "", "")
	flags.StringVar(&configPath, "c", "", "")
	flags.StringVar(&envPath, "env", ".env", "")
	flags.StringVar(&envPath, "e", ".env", "")

	var set Config
	flags.StringVar(&set.DBPath, "db", "", "")
	flags.StringVar(&set.DBPath, "d", "", "")
	flags.StringVar(&set.Addr, "addr", "", "")
	flags.StringVar(&set.Addr, "a", "", "")
	flags.StringVar(&set.AdminUser, "user", "", "")
	flags.StringVar(&set.AdminUser, "u", "", "")
	flags.StringVar(&set.LogPath, "log", "", "")
	flags.StringVar(&set.LogPath, "l", "", "")
	flags.StringVar(&set.Scorer.URL, "scorer", "", "")
	flags.StringVar(&set.Scorer.URL, "s", "", "")
	flags.DurationVar(&set.Scorer.Timeout, "scorer-timeout", 0, "")
	flags.StringVar(&set.MetricsAddr, "metrics-addr", "", "")

	if err := flags.Parse(args); err != nil {
		return nil, err
	}
	if flags.NArg() > 0 {
		return nil, fmt.Errorf("unexpected argument: %s", flags.Arg(0))
	}

	cfg := Default()
	if configPath != "" {
		if err := cfg.loadFile(configPath); err != nil {
			return nil, fmt.Errorf("loading config file: %w", err)
		}
	}

	dotenv, err := godotenv.Read(envPath)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("reading %s: %w", envPath, err)
	}
	lookup := func(key string) (string, bool) {
		if v, ok := lookupEnv(key); ok {
			return v, true
		}
		v, ok := dotenv[key]
		return v, ok
	}
	if err := cfg.applyEnv(lookup); err != nil {
		return nil, err
	}

	flags.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "db", "d":
			cfg.DBPath = set.DBPath
		case "addr", "a":
			cfg.Addr = set.Addr
		case "user", "u":
			cfg.AdminUser = set.AdminUser
		case "log", "l":
			cfg.LogPath = set.LogPath
		case "scorer", "s":
			cfg.Scorer.URL = set.Scorer.URL
		case "scorer-timeout":
			cfg.Scorer.Timeout = set.Scorer.Timeout
		case "metrics-addr":
			cfg.MetricsAddr = set.MetricsAddr
		}
	})

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// loadFile merges a YAML file into c. Unknown keys are rejected.
func (c *Config) loadFile(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	dec := yaml.NewDecoder(f)
	dec.KnownFields(true)
	if err := dec.Decode(c); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("parsing %s: %w", path, err)
	}
	return nil
}

func (c *Config) applyEnv(lookup func(string) (string, bool)) error {
	strs := map[string]*string{
		EnvDB:          &c.DBPath,
		EnvAddr:        &c.Addr,
		EnvAdminUser:   &c.AdminUser,
		EnvLog:         &c.LogPath,
		EnvScorerURL:   &c.Scorer.URL,
		EnvMetricsAddr: &c.MetricsAddr,
	}
	for key, dst := range strs {
		if v, ok := lookup(key); ok {
			*dst = v
		}
	}

	if v, ok := lookup(EnvScorerTimeout); ok {
		d, err := time.ParseDuration(v)
		if err != nil {
			// Bare numbers are seconds.
			secs, convErr := strconv.Atoi(v)
			if convErr != nil {
				return fmt.Errorf("%s: invalid duration %q", EnvScorerTimeout, v)
			}
			d = time.Duration(secs) * time.Second
		}
		c.Scorer.Timeout = d
	}
	return nil
}

// Validate checks that the configuration is usable.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			fe := verrs[0]
			return fmt.Errorf("invalid configuration: %s failed %q", fe.Namespace(), fe.Tag())
		}
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return nil
}
