// Package config resolves the settings of one run from command line flags,
// the WTFIS_DEFAULTS variable, an optional YAML file and the environment.
//
// Precedence, highest first: command line, WTFIS_DEFAULTS, YAML file, built-in
// defaults. A boolean flag set both on the command line and in WTFIS_DEFAULTS
// is inverted. API keys come from the environment, falling back to the
// dotenv file ~/.env.wtfis.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/pflag"

	"github.com/kluth/wtfis/internal/entity"
	"github.com/kluth/wtfis/internal/handler"
	"github.com/kluth/wtfis/internal/view"
)

// Environment variables.
const (
	EnvVirusTotal = "VT_API_KEY"
	EnvIP2Whois   = "IP2WHOIS_API_KEY"
	EnvShodan     = "SHODAN_API_KEY"
	EnvGreyNoise  = "GREYNOISE_API_KEY"
	EnvAbuseIPDB  = "ABUSEIPDB_API_KEY"
	EnvURLhaus    = "URLHAUS_API_KEY"
	EnvDefaults   = "WTFIS_DEFAULTS"
)

const (
	// EnvFileName is the dotenv file read from the home directory.
	EnvFileName = ".env.wtfis"

	DefaultMaxResolutions = 3
	MaxResolutionsLimit   = 10
)

var (
	// ErrMissingKey is returned when an API key required by the selected
	// providers is not set.
	ErrMissingKey = errors.New("missing API key")

	// ErrInvalid is returned for settings that cannot be used together or
	// are out of range.
	ErrInvalid = errors.New("invalid configuration")
)

// Keys are the provider API keys.
type Keys struct {
	VirusTotal string
	IP2Whois   string
	Shodan     string
	GreyNoise  string
	AbuseIPDB  string
	URLhaus    string
}

// Config is the resolved configuration of one run.
type Config struct {
	Entity string
	Target entity.Entity

	MaxResolutions int
	UseShodan      bool
	UseGreyNoise   bool
	UseAbuseIPDB   bool
	UseURLhaus     bool

	NoColor   bool
	OneColumn bool
	Format    string
	Output    string
	Quiet     bool
	Verbose   bool

	Keys Keys
}

// BindFlags registers the lookup flags on fs, bound to c.
func BindFlags(fs *pflag.FlagSet, c *Config) {
	fs.IntVarP(&c.MaxResolutions, "max-resolutions", "m", DefaultMaxResolutions, fmt.Sprintf("maximum number of resolutions to show (max %d)", MaxResolutionsLimit))
	fs.BoolVarP(&c.UseShodan, "use-shodan", "s", false, "use Shodan to enrich IPs")
	fs.BoolVarP(&c.UseGreyNoise, "use-greynoise", "g", false, "enable GreyNoise for IP lookups")
	fs.BoolVarP(&c.UseAbuseIPDB, "use-abuseipdb", "a", false, "enable AbuseIPDB for IP lookups")
	fs.BoolVarP(&c.UseURLhaus, "use-urlhaus", "u", false, "enable URLhaus for IP and domain lookups")
	fs.BoolVarP(&c.NoColor, "no-color", "n", false, "show output without colors")
	fs.BoolVarP(&c.OneColumn, "one-column", "1", false, "display results in one column")
	fs.StringVarP(&c.Format, "format", "f", view.FormatTerminal, "output format (terminal, json, pdf)")
	fs.StringVarP(&c.Output, "output", "o", "", "write report to file instead of stdout")
	fs.BoolVarP(&c.Quiet, "quiet", "q", false, "suppress the progress display")
	fs.BoolVarP(&c.Verbose, "verbose", "v", false, "log provider requests to stderr")
}

// Source is the environment a configuration is resolved against.
type Source struct {
	Getenv  func(string) string
	HomeDir string
	WorkDir string
}

// DefaultSource reads the process environment.
func DefaultSource() Source {
	home, _ := os.UserHomeDir()
	wd, _ := os.Getwd()
	return Source{Getenv: os.Getenv, HomeDir: home, WorkDir: wd}
}

// Load completes c after fs has been parsed and validates the result.
func Load(fs *pflag.FlagSet, c *Config, src Source) error {
	if src.Getenv == nil {
		src.Getenv = func(string) string { return "" }
	}

	dotenv := map[string]string{}
	if src.HomeDir != "" {
		m, err := LoadEnvFile(filepath.Join(src.HomeDir, EnvFileName))
		if err != nil {
			return err
		}
		dotenv = m
	}
	getenv := func(key string) string {
		if v := src.Getenv(key); v != "" {
			return v
		}
		return dotenv[key]
	}

	if path := FindFile(src.WorkDir, src.HomeDir); path != "" {
		f, err := LoadFile(path)
		if err != nil {
			return err
		}
		ApplyFile(fs, c, f)
	}

	if err := ApplyDefaults(fs, getenv(EnvDefaults)); err != nil {
		return err
	}

	c.Keys = Keys{
		VirusTotal: getenv(EnvVirusTotal),
		IP2Whois:   getenv(EnvIP2Whois),
		Shodan:     getenv(EnvShodan),
		GreyNoise:  getenv(EnvGreyNoise),
		AbuseIPDB:  getenv(EnvAbuseIPDB),
		URLhaus:    getenv(EnvURLhaus),
	}
	return c.Validate()
}

// Validate checks the configuration and parses the entity.
func (c *Config) Validate() error {
	e, err := entity.Parse(c.Entity)
	if err != nil {
		return err
	}
	c.Target = e

	if c.MaxResolutions < 0 || c.MaxResolutions > MaxResolutionsLimit {
		return fmt.Errorf("%w: maximum --max-resolutions value is %d", ErrInvalid, MaxResolutionsLimit)
	}
	if !view.ValidFormat(c.Format) {
		return fmt.Errorf("%w: unknown format %q", ErrInvalid, c.Format)
	}
	if c.Format == view.FormatPDF && c.Output == "" {
		return fmt.Errorf("%w: --format pdf requires --output", ErrInvalid)
	}
	if c.Quiet && c.Verbose {
		return fmt.Errorf("%w: --quiet and --verbose are mutually exclusive", ErrInvalid)
	}

	if c.Keys.VirusTotal == "" {
		return fmt.Errorf("%w: %s is not set", ErrMissingKey, EnvVirusTotal)
	}
	for _, req := range []struct {
		enabled bool
		flag    string
		key     string
		env     string
	}{
		{c.UseShodan, "--use-shodan", c.Keys.Shodan, EnvShodan},
		{c.UseGreyNoise, "--use-greynoise", c.Keys.GreyNoise, EnvGreyNoise},
		{c.UseAbuseIPDB, "--use-abuseipdb", c.Keys.AbuseIPDB, EnvAbuseIPDB},
	} {
		if req.enabled && req.key == "" {
			return fmt.Errorf("%w: %s is required by %s", ErrMissingKey, req.env, req.flag)
		}
	}
	return nil
}

// HandlerOptions maps the configuration to the client selection inputs.
func (c *Config) HandlerOptions() handler.Options {
	return handler.Options{
		Entity: c.Target,
		Credentials: handler.Credentials{
			VirusTotal: c.Keys.VirusTotal,
			IP2Whois:   c.Keys.IP2Whois,
			Shodan:     c.Keys.Shodan,
			GreyNoise:  c.Keys.GreyNoise,
			AbuseIPDB:  c.Keys.AbuseIPDB,
			URLhaus:    c.Keys.URLhaus,
		},
		UseShodan:    c.UseShodan,
		UseGreyNoise: c.UseGreyNoise,
		UseAbuseIPDB: c.UseAbuseIPDB,
		UseURLhaus:   c.UseURLhaus,
	}
}

// ViewOptions maps the configuration to the renderer options.
func (c *Config) ViewOptions() view.Options {
	return view.Options{Format: c.Format, OneColumn: c.OneColumn, NoColor: c.NoColor}
}
