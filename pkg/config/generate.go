package config

import (
	"bytes"
	"os"
	"path/filepath"

	"github.com/arthur-debert/repatch/pkg/errors"
	"github.com/arthur-debert/repatch/pkg/logging"
	toml "github.com/pelletier/go-toml/v2"
)

// GeneratedFileName is where WriteConfig puts the configuration
const GeneratedFileName = ".repatch.toml"

type fileConfig struct {
	OnNoMatch string       `toml:"on_no_match"`
	Message   string       `toml:"message,omitempty"`
	Targets   []fileTarget `toml:"targets"`
}

type fileTarget struct {
	Path     string     `toml:"path"`
	Encoding string     `toml:"encoding,omitempty"`
	Rules    []fileRule `toml:"rules"`
}

type fileRule struct {
	Name           string `toml:"name,omitempty"`
	Pattern        string `toml:"pattern"`
	Replace        string `toml:"replace"`
	Engine         string `toml:"engine,omitempty"`
	FlexWhitespace bool   `toml:"flex_whitespace,omitempty"`
	IgnoreCase     bool   `toml:"ignore_case,omitempty"`
	DotAll         bool   `toml:"dot_all,omitempty"`
	Guard          string `toml:"guard,omitempty"`
	Timeout        string `toml:"timeout,omitempty"`
}

// Render encodes the configuration as a TOML config file
func Render(cfg *Config) ([]byte, error) {
	out := fileConfig{
		OnNoMatch: string(cfg.OnNoMatch),
		Message:   cfg.Message,
	}
	for _, t := range cfg.Targets {
		ft := fileTarget{Path: t.Path, Encoding: t.Encoding}
		for _, r := range t.Rules {
			fr := fileRule{
				Name:           r.Name,
				Pattern:        r.Pattern,
				Replace:        r.Replace,
				Engine:         string(r.Engine),
				FlexWhitespace: r.FlexWhitespace,
				IgnoreCase:     r.IgnoreCase,
				DotAll:         r.DotAll,
				Guard:          r.Guard,
			}
			if r.Timeout > 0 {
				fr.Timeout = r.Timeout.String()
			}
			ft.Rules = append(ft.Rules, fr)
		}
		out.Targets = append(out.Targets, ft)
	}

	var buf bytes.Buffer
	enc := toml.NewEncoder(&buf)
	enc.SetIndentTables(true)
	if err := enc.Encode(out); err != nil {
		return nil, errors.Wrap(err, errors.ErrInternal, "failed to encode configuration")
	}
	return buf.Bytes(), nil
}

// WriteResult reports what WriteConfig did
type WriteResult struct {
	Path           string
	Written        bool
	AlreadyExisted bool
}

// WriteConfig writes the rendered configuration to .repatch.toml in root.
// An existing file is left untouched.
func WriteConfig(cfg *Config, root string) (*WriteResult, error) {
	logger := logging.GetLogger("config")
	path := filepath.Join(root, GeneratedFileName)
	result := &WriteResult{Path: path}

	if _, err := os.Stat(path); err == nil {
		logger.Warn().Str("path", path).Msg("Config file already exists, skipping")
		result.AlreadyExisted = true
		return result, nil
	}

	data, err := Render(cfg)
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(root, 0755); err != nil {
		return nil, errors.Wrapf(err, errors.ErrFileWrite, "failed to create directory %s", root)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return nil, errors.Wrapf(err, errors.ErrFileWrite, "failed to write config to %s", path).
			WithDetail("path", path)
	}

	logger.Info().Str("path", path).Msg("Written config file")
	result.Written = true
	return result, nil
}
