package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/arthur-debert/repatch/pkg/errors"
	"github.com/arthur-debert/repatch/pkg/logging"
	"github.com/arthur-debert/repatch/pkg/types"
	"github.com/go-viper/mapstructure/v2"
	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// EnvPrefix prefixes every environment variable repatch reads
const EnvPrefix = "REPATCH_"

// ConfigFileNames are looked up in the working root, first match wins
var ConfigFileNames = []string{
	".repatch.toml",
	"repatch.toml",
	".repatch.yaml",
	"repatch.yaml",
	".repatch.yml",
	"repatch.yml",
}

// envKeys are the scalar keys that may come from the environment
var envKeys = map[string]bool{
	"on_no_match": true,
	"message":     true,
}

// Config is the main configuration structure
type Config struct {
	OnNoMatch types.NoMatchPolicy `koanf:"on_no_match"`
	Message   string              `koanf:"message"`
	Targets   []types.Target      `koanf:"targets"`

	// Source is the config file that was merged over the defaults, if any
	Source string `koanf:"-"`
}

// LoadOptions selects where configuration comes from
type LoadOptions struct {
	// Root is the directory searched for a config file
	Root string
	// ConfigFile is an explicit config file; it must exist
	ConfigFile string
	// Overrides are applied last, keyed like the config file
	Overrides map[string]interface{}
}

// Default returns the embedded configuration, with environment overrides
// applied, without looking for a config file
func Default() (*Config, error) {
	return Load(LoadOptions{Root: ""})
}

// Load builds the configuration from the embedded defaults, an optional
// config file, the environment and opts.Overrides, in that order.
// Lists are replaced rather than merged, so a file that defines targets
// discards the default targets.
func Load(opts LoadOptions) (*Config, error) {
	logger := logging.GetLogger("config")
	k := koanf.New(".")

	// 1. Embedded defaults
	if err := k.Load(&rawBytesProvider{bytes: defaultConfig}, toml.Parser()); err != nil {
		return nil, errors.Wrap(err, errors.ErrConfigParse, "failed to load embedded defaults")
	}

	// 2. Config file
	source, err := findConfigFile(opts)
	if err != nil {
		return nil, err
	}
	if source != "" {
		parser, err := parserFor(source)
		if err != nil {
			return nil, err
		}
		if err := k.Load(file.Provider(source), parser); err != nil {
			return nil, errors.Wrapf(err, errors.ErrConfigParse, "failed to load config from %s", source).
				WithDetail("path", source)
		}
		logger.Debug().Str("path", source).Msg("Loaded config file")
	}

	// 3. Environment
	err = k.Load(env.Provider(EnvPrefix, ".", func(s string) string {
		key := strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
		if !envKeys[key] {
			return ""
		}
		return key
	}), nil)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrConfigLoad, "failed to load environment")
	}

	// 4. Overrides
	if len(opts.Overrides) > 0 {
		if err := k.Load(confmap.Provider(opts.Overrides, "."), nil); err != nil {
			return nil, errors.Wrap(err, errors.ErrConfigLoad, "failed to apply overrides")
		}
	}

	// 5. Unmarshal
	var cfg Config
	unmarshalConf := koanf.UnmarshalConf{
		Tag: "koanf",
		DecoderConfig: &mapstructure.DecoderConfig{
			Result:           &cfg,
			WeaklyTypedInput: true,
			ErrorUnused:      true,
			TagName:          "koanf",
			DecodeHook: mapstructure.ComposeDecodeHookFunc(
				mapstructure.StringToTimeDurationHookFunc(),
			),
		},
	}
	if err := k.UnmarshalWithConf("", &cfg, unmarshalConf); err != nil {
		return nil, errors.Wrap(err, errors.ErrConfigParse, "failed to unmarshal configuration")
	}
	cfg.Source = source

	// 6. Validate
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	logger.Debug().
		Str("source", source).
		Str("on_no_match", string(cfg.OnNoMatch)).
		Int("targets", len(cfg.Targets)).
		Msg("Configuration loaded")

	return &cfg, nil
}

func findConfigFile(opts LoadOptions) (string, error) {
	if opts.ConfigFile != "" {
		if _, err := os.Stat(opts.ConfigFile); err != nil {
			return "", errors.Wrapf(err, errors.ErrConfigLoad, "config file %s not readable", opts.ConfigFile).
				WithDetail("path", opts.ConfigFile)
		}
		return opts.ConfigFile, nil
	}
	if opts.Root == "" {
		return "", nil
	}
	for _, name := range ConfigFileNames {
		path := filepath.Join(opts.Root, name)
		if info, err := os.Stat(path); err == nil && !info.IsDir() {
			return path, nil
		}
	}
	return "", nil
}

func parserFor(path string) (koanf.Parser, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		return toml.Parser(), nil
	case ".yaml", ".yml":
		return yaml.Parser(), nil
	default:
		return nil, errors.Newf(errors.ErrConfigParse, "unsupported config file type %q", filepath.Ext(path)).
			WithDetail("path", path)
	}
}

// ResolvePath joins a relative target path onto root
func ResolvePath(root, path string) string {
	if filepath.IsAbs(path) || root == "" {
		return filepath.Clean(path)
	}
	return filepath.Join(root, path)
}

// String summarises the configuration for logs
func (c *Config) String() string {
	return fmt.Sprintf("config(source=%q, on_no_match=%s, targets=%d)", c.Source, c.OnNoMatch, len(c.Targets))
}
