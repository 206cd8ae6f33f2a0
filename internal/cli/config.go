package cli

import (
	stderrors "errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/charmbracelet/log"

	"github.com/matzehuels/flowtower/pkg/api"
	"github.com/matzehuels/flowtower/pkg/errors"
)

// Environment variables read by the CLI.
const (
	envAPIURL   = "FLOWTOWER_API_URL"
	envRedisURL = "FLOWTOWER_REDIS_URL"
)

const (
	defaultTimeout  = 10 * time.Second
	defaultCacheTTL = api.DefaultTTL
)

// Config is the resolved CLI configuration. The same struct decodes the
// TOML config file.
type Config struct {
	APIURL   string       `toml:"api_url"`
	Timeout  duration     `toml:"timeout"`
	CacheTTL duration     `toml:"cache_ttl"`
	RedisURL string       `toml:"redis_url"`
	Layout   LayoutConfig `toml:"layout"`

	NoCache bool `toml:"-"`
}

// LayoutConfig holds default layout settings.
type LayoutConfig struct {
	Direction string  `toml:"direction"`
	RankSep   float64 `toml:"rank_sep"`
	NodeSep   float64 `toml:"node_sep"`
}

// duration decodes TOML strings such as "30s" or "2m".
type duration struct {
	time.Duration
}

func (d *duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

func (d duration) MarshalText() ([]byte, error) {
	return []byte(d.Duration.String()), nil
}

func defaultConfig() Config {
	return Config{
		APIURL:   api.DefaultBaseURL,
		Timeout:  duration{defaultTimeout},
		CacheTTL: duration{defaultCacheTTL},
	}
}

// =============================================================================
// Paths
// =============================================================================

// configDir returns the config directory using XDG standard
// (~/.config/flowtower/).
func configDir() (string, error) {
	if configHome := os.Getenv("XDG_CONFIG_HOME"); configHome != "" {
		return filepath.Join(configHome, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", appName), nil
}

func defaultConfigPath() (string, error) {
	dir, err := configDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.toml"), nil
}

// =============================================================================
// Loading
// =============================================================================

// loadConfig reads the config file at path, or the default location when
// path is empty. A missing default file is not an error; a missing explicit
// file is.
func loadConfig(path string, logger *log.Logger) (Config, error) {
	explicit := path != ""
	if !explicit {
		p, err := defaultConfigPath()
		if err != nil {
			return Config{}, nil
		}
		path = p
	}

	var cfg Config
	md, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		if !explicit && stderrors.Is(err, fs.ErrNotExist) {
			return Config{}, nil
		}
		return Config{}, errors.Wrap(errors.ErrCodeInvalidConfig, err, "read config %s", path)
	}
	for _, key := range md.Undecoded() {
		logger.Warn("unknown config key", "key", key.String(), "file", path)
	}
	logger.Debug("loaded config", "file", path)
	return cfg, nil
}

func envLookup(key string) string {
	return strings.TrimSpace(os.Getenv(key))
}

// resolveConfig merges the layers: a flag that was set wins over the
// environment, which wins over the file, which wins over defaults.
func resolveConfig(file Config, env func(string) string, flags globalFlags, changed func(string) bool) Config {
	cfg := defaultConfig()

	pick := func(dst *string, fileVal, envVal, flagVal, flagName string) {
		switch {
		case changed(flagName):
			*dst = flagVal
		case envVal != "":
			*dst = envVal
		case fileVal != "":
			*dst = fileVal
		}
	}
	pick(&cfg.APIURL, file.APIURL, env(envAPIURL), flags.apiURL, "api-url")
	pick(&cfg.RedisURL, file.RedisURL, env(envRedisURL), flags.redisURL, "redis-url")

	if file.Timeout.Duration > 0 {
		cfg.Timeout = file.Timeout
	}
	if file.CacheTTL.Duration > 0 {
		cfg.CacheTTL = file.CacheTTL
	}
	cfg.Layout = file.Layout
	cfg.NoCache = flags.noCache
	return cfg
}
