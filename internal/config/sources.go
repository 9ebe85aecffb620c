package config

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
	"gopkg.in/yaml.v3"
)

// File is the YAML configuration file. Nil fields are not set in the file.
type File struct {
	MaxResolutions *int    `yaml:"max-resolutions"`
	UseShodan      *bool   `yaml:"use-shodan"`
	UseGreyNoise   *bool   `yaml:"use-greynoise"`
	UseAbuseIPDB   *bool   `yaml:"use-abuseipdb"`
	UseURLhaus     *bool   `yaml:"use-urlhaus"`
	NoColor        *bool   `yaml:"no-color"`
	OneColumn      *bool   `yaml:"one-column"`
	Format         *string `yaml:"format"`
}

// LoadFile reads a YAML configuration file. A missing file yields nil.
func LoadFile(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("invalid config file %s: %w", path, err)
	}
	return &f, nil
}

// FindFile returns .wtfis.yaml in dir, or ~/.config/wtfis/config.yaml, or "".
func FindFile(dir, home string) string {
	if dir != "" {
		p := filepath.Join(dir, ".wtfis.yaml")
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	if home == "" {
		return ""
	}
	p := filepath.Join(home, ".config", "wtfis", "config.yaml")
	if _, err := os.Stat(p); err == nil {
		return p
	}
	return ""
}

func flagChanged(fs *pflag.FlagSet, name string) bool {
	f := fs.Lookup(name)
	return f != nil && f.Changed
}

// ApplyFile copies file settings into c for every flag not given on the
// command line.
func ApplyFile(fs *pflag.FlagSet, c *Config, f *File) {
	if f == nil {
		return
	}
	if f.MaxResolutions != nil && !flagChanged(fs, "max-resolutions") {
		c.MaxResolutions = *f.MaxResolutions
	}
	if f.Format != nil && !flagChanged(fs, "format") {
		c.Format = *f.Format
	}
	applyBool := func(name string, v *bool, target *bool) {
		if v != nil && !flagChanged(fs, name) {
			*target = *v
		}
	}
	applyBool("use-shodan", f.UseShodan, &c.UseShodan)
	applyBool("use-greynoise", f.UseGreyNoise, &c.UseGreyNoise)
	applyBool("use-abuseipdb", f.UseAbuseIPDB, &c.UseAbuseIPDB)
	applyBool("use-urlhaus", f.UseURLhaus, &c.UseURLhaus)
	applyBool("no-color", f.NoColor, &c.NoColor)
	applyBool("one-column", f.OneColumn, &c.OneColumn)
}

// ApplyDefaults applies the flags in defaults, as found in WTFIS_DEFAULTS, to
// fs. Flags not given on the command line take the default. Boolean flags
// set true in both places are inverted. An explicit false on the command line
// always wins.
func ApplyDefaults(fs *pflag.FlagSet, defaults string) error {
	args := strings.Fields(defaults)
	if len(args) == 0 {
		return nil
	}

	scratch := pflag.NewFlagSet(EnvDefaults, pflag.ContinueOnError)
	scratch.SetOutput(io.Discard)
	BindFlags(scratch, &Config{})
	if err := scratch.Parse(args); err != nil {
		return fmt.Errorf("%w: %s: %v", ErrInvalid, EnvDefaults, err)
	}
	if scratch.NArg() > 0 {
		return fmt.Errorf("%w: %s takes flags only, got %q", ErrInvalid, EnvDefaults, scratch.Args())
	}

	var err error
	scratch.Visit(func(def *pflag.Flag) {
		f := fs.Lookup(def.Name)
		if f == nil || err != nil {
			return
		}
		value := def.Value.String()
		if f.Changed {
			if def.Value.Type() != "bool" {
				return
			}
			cli, _ := strconv.ParseBool(f.Value.String())
			if !cli {
				return
			}
			dflt, _ := strconv.ParseBool(value)
			value = strconv.FormatBool(!dflt)
		}
		if setErr := f.Value.Set(value); setErr != nil {
			err = fmt.Errorf("%w: %s: --%s: %v", ErrInvalid, EnvDefaults, def.Name, setErr)
		}
	})
	return err
}

// LoadEnvFile reads KEY=value pairs from a dotenv file. A missing file yields
// an empty map.
func LoadEnvFile(path string) (map[string]string, error) {
	m, err := godotenv.Read(path)
	if err != nil {
		if os.IsNotExist(err) {
			return map[string]string{}, nil
		}
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	return m, nil
}
