package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log"
	"net"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Supported browser engines
const (
	BrowserChromium = "chromium"
	BrowserFirefox  = "firefox"
	BrowserWebKit   = "webkit"
)

// Config holds everything the smoke scenarios need to reach a browser and a site
type Config struct {
	BaseURL         string         `mapstructure:"base_url"`
	Browser         string         `mapstructure:"browser"`
	Headless        bool           `mapstructure:"headless"`
	SlowMo          int            `mapstructure:"slow_mo"`
	Timeout         time.Duration  `mapstructure:"timeout"`
	Screenshots     bool           `mapstructure:"screenshots"`
	ArtifactsDir    string         `mapstructure:"artifacts_dir"`
	Viewport        ViewportConfig `mapstructure:"viewport"`
	InstallBrowsers bool           `mapstructure:"install_browsers"`
	ScenariosFile   string         `mapstructure:"scenarios_file"`
}

// ViewportConfig is the browser window size in CSS pixels
type ViewportConfig struct {
	Width  int `mapstructure:"width"`
	Height int `mapstructure:"height"`
}

var dotEnvOnce sync.Once

// LoadDotEnv loads KEY=VALUE lines from path if it exists.
// Variables already present in the environment are not overwritten.
func LoadDotEnv(path string) error {
	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("failed to load %s: %w", path, err)
	}
	return nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("base_url", "https://playwright.dev")
	v.SetDefault("browser", BrowserChromium)
	v.SetDefault("headless", true)
	v.SetDefault("slow_mo", 0)
	v.SetDefault("timeout", 5*time.Second)
	v.SetDefault("screenshots", true)
	v.SetDefault("artifacts_dir", "./test-results")
	v.SetDefault("viewport.width", 1280)
	v.SetDefault("viewport.height", 720)
	v.SetDefault("install_browsers", false)
	v.SetDefault("scenarios_file", "")
}

// Load builds the configuration from defaults, an optional YAML file, .env and
// the environment. configFile may be empty, in which case smoke.yaml in the
// working directory is used when present.
func Load(configFile string) (*Config, error) {
	dotEnvOnce.Do(func() {
		if err := LoadDotEnv(".env"); err != nil {
			log.Printf("[smoke-config] %v", err)
		}
	})

	v := viper.New()
	setDefaults(v)
	v.SetConfigType("yaml")

	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	} else {
		v.SetConfigName("smoke")
		v.AddConfigPath(".")
		if err := v.ReadInConfig(); err != nil {
			if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
				return nil, fmt.Errorf("failed to read config: %w", err)
			}
		}
	}

	// Environment variable overrides
	v.SetEnvPrefix("SMOKE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	// Unprefixed names kept for existing CI pipelines
	_ = v.BindEnv("base_url", "SMOKE_BASE_URL", "BASE_URL")
	_ = v.BindEnv("headless", "SMOKE_HEADLESS", "HEADLESS")

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	log.Printf("[smoke-config] Resolved BaseURL=%s browser=%s headless=%t timeout=%s", cfg.BaseURL, cfg.Browser, cfg.Headless, cfg.Timeout)
	return cfg, nil
}

// MustLoad loads configuration and panics on error
func MustLoad(configFile string) *Config {
	cfg, err := Load(configFile)
	if err != nil {
		panic(fmt.Sprintf("Failed to load configuration: %v", err))
	}
	return cfg
}

// Validate rejects settings no browser session could start with
func (c *Config) Validate() error {
	var problems []string

	u, err := url.Parse(c.BaseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		problems = append(problems, fmt.Sprintf("base_url %q must be an absolute URL", c.BaseURL))
	}
	switch c.Browser {
	case BrowserChromium, BrowserFirefox, BrowserWebKit:
	default:
		problems = append(problems, fmt.Sprintf("browser %q must be one of chromium, firefox, webkit", c.Browser))
	}
	if c.Timeout <= 0 {
		problems = append(problems, "timeout must be positive")
	}
	if c.SlowMo < 0 {
		problems = append(problems, "slow_mo must not be negative")
	}
	if c.Viewport.Width <= 0 || c.Viewport.Height <= 0 {
		problems = append(problems, "viewport width and height must be positive")
	}

	if len(problems) > 0 {
		return fmt.Errorf("invalid configuration: %s", strings.Join(problems, "; "))
	}
	return nil
}

// ResolveURL resolves target against BaseURL. Rooted paths go under the
// base path, so a base of http://host/mirror maps "/" to http://host/mirror/.
// Absolute targets are returned unchanged.
func (c *Config) ResolveURL(target string) (string, error) {
	base, err := url.Parse(strings.TrimRight(c.BaseURL, "/"))
	if err != nil {
		return "", fmt.Errorf("invalid base url: %w", err)
	}
	ref, err := url.Parse(target)
	if err != nil {
		return "", fmt.Errorf("invalid target url %q: %w", target, err)
	}
	if ref.IsAbs() || ref.Host != "" {
		return base.ResolveReference(ref).String(), nil
	}

	if strings.HasPrefix(ref.Path, "/") {
		u := *base
		u.Path = base.Path + ref.Path
		u.RawPath = ""
		u.RawQuery = ref.RawQuery
		u.Fragment = ref.Fragment
		return u.String(), nil
	}

	dir := *base
	dir.Path = base.Path + "/"
	dir.RawPath = ""
	return dir.ResolveReference(ref).String(), nil
}

// TimeoutMS returns Timeout in the millisecond form playwright expects
func (c *Config) TimeoutMS() float64 {
	return float64(c.Timeout.Milliseconds())
}

// Reachable probes base with a TCP dial followed by an HTTP GET.
func Reachable(base string) bool {
	u, err := url.Parse(base)
	if err != nil || u.Host == "" {
		return false
	}
	host := u.Host
	if u.Port() == "" {
		if u.Scheme == "https" {
			host += ":443"
		} else {
			host += ":80"
		}
	}
	d := net.Dialer{Timeout: 500 * time.Millisecond}
	conn, err := d.Dial("tcp", host)
	if err != nil {
		return false
	}
	_ = conn.Close()

	client := &http.Client{Timeout: 2 * time.Second}
	resp, err := client.Get(base)
	if err != nil {
		return false
	}
	_ = resp.Body.Close()
	return true
}
