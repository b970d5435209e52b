package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/arthur-debert/repatch/pkg/errors"
	"github.com/arthur-debert/repatch/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestDefault(t *testing.T) {
	cfg, err := Default()
	require.NoError(t, err)

	assert.Equal(t, types.NoMatchWarn, cfg.OnNoMatch)
	assert.Equal(t, "Fixed API URL issues successfully!", cfg.Message)
	assert.Empty(t, cfg.Source)

	require.Len(t, cfg.Targets, 1)
	target := cfg.Targets[0]
	assert.Equal(t, "nodes/NvidiaNim/NvidiaNim.node.ts", target.Path)
	assert.Equal(t, "utf-8", target.Encoding)

	require.Len(t, target.Rules, 4)
	names := []string{}
	for _, r := range target.Rules {
		names = append(names, r.Name)
		assert.Equal(t, types.EngineRE2, r.Engine)
		assert.Contains(t, r.Replace, `baseURL: (await this.getCredentials('nvidiaNimApi')).baseUrl as string,`)
		assert.NotEmpty(t, r.Guard)
	}
	assert.Equal(t, []string{"chat-completions", "completions", "embeddings", "list-models"}, names)
	assert.Contains(t, target.Rules[3].Pattern, `method: 'GET',`)
	assert.Contains(t, target.Rules[0].Pattern, `method: 'POST',`)
}

func TestLoadRootConfigReplacesTargets(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "repatch.toml", `
on_no_match = "error"

[[targets]]
path = "src/app.ts"

  [[targets.rules]]
  name = "v2"
  pattern = '''api/v1'''
  replace = '''api/v2'''
  engine = "regexp2"
  timeout = "250ms"
  flex_whitespace = true
`)

	cfg, err := Load(LoadOptions{Root: root})
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(root, "repatch.toml"), cfg.Source)
	assert.Equal(t, types.NoMatchError, cfg.OnNoMatch)
	assert.Equal(t, "Fixed API URL issues successfully!", cfg.Message, "scalar defaults survive")

	require.Len(t, cfg.Targets, 1)
	assert.Equal(t, "src/app.ts", cfg.Targets[0].Path)
	assert.Equal(t, "utf-8", cfg.Targets[0].Encoding)

	rule := cfg.Targets[0].Rules[0]
	assert.Equal(t, types.EngineRegexp2, rule.Engine)
	assert.Equal(t, 250*time.Millisecond, rule.Timeout)
	assert.True(t, rule.FlexWhitespace)
}

func TestLoadHiddenFileWins(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, ".repatch.toml", `message = "hidden"`)
	writeFile(t, root, "repatch.toml", `message = "visible"`)

	cfg, err := Load(LoadOptions{Root: root})
	require.NoError(t, err)
	assert.Equal(t, "hidden", cfg.Message)
}

func TestLoadYAML(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "repatch.yaml", `
on_no_match: ignore
targets:
  - path: README.md
    encoding: latin1
    rules:
      - name: title
        pattern: '^# Old'
        replace: '# New'
        ignore_case: true
`)

	cfg, err := Load(LoadOptions{Root: root})
	require.NoError(t, err)
	assert.Equal(t, types.NoMatchIgnore, cfg.OnNoMatch)
	require.Len(t, cfg.Targets, 1)
	assert.Equal(t, "latin1", cfg.Targets[0].Encoding)
	assert.True(t, cfg.Targets[0].Rules[0].IgnoreCase)
}

func TestLoadExplicitConfigFile(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "custom.toml", `message = "custom"`)

	cfg, err := Load(LoadOptions{Root: t.TempDir(), ConfigFile: path})
	require.NoError(t, err)
	assert.Equal(t, "custom", cfg.Message)
	assert.Equal(t, path, cfg.Source)
}

func TestLoadMissingExplicitConfigFile(t *testing.T) {
	_, err := Load(LoadOptions{ConfigFile: filepath.Join(t.TempDir(), "nope.toml")})
	require.Error(t, err)
	assert.True(t, errors.IsErrorCode(err, errors.ErrConfigLoad))
}

func TestLoadEnvAndOverrides(t *testing.T) {
	t.Setenv("REPATCH_ON_NO_MATCH", "ignore")
	t.Setenv("REPATCH_MESSAGE", "from env")
	t.Setenv("REPATCH_TARGETS", "ignored")

	cfg, err := Load(LoadOptions{})
	require.NoError(t, err)
	assert.Equal(t, types.NoMatchIgnore, cfg.OnNoMatch)
	assert.Equal(t, "from env", cfg.Message)
	assert.Len(t, cfg.Targets, 1)

	cfg, err = Load(LoadOptions{Overrides: map[string]interface{}{"on_no_match": "error"}})
	require.NoError(t, err)
	assert.Equal(t, types.NoMatchError, cfg.OnNoMatch, "overrides beat the environment")
}

func TestLoadErrors(t *testing.T) {
	tests := []struct {
		name    string
		file    string
		content string
		code    errors.ErrorCode
	}{
		{
			name:    "bad policy",
			file:    "repatch.toml",
			content: `on_no_match = "explode"`,
			code:    errors.ErrConfigValid,
		},
		{
			name:    "unknown key",
			file:    "repatch.toml",
			content: `on_nomatch = "warn"`,
			code:    errors.ErrConfigParse,
		},
		{
			name:    "malformed toml",
			file:    "repatch.toml",
			content: `on_no_match = `,
			code:    errors.ErrConfigParse,
		},
		{
			name: "rule without pattern",
			file: "repatch.toml",
			content: `
[[targets]]
path = "a.ts"
  [[targets.rules]]
  replace = "x"
`,
			code: errors.ErrConfigValid,
		},
		{
			name: "same target twice",
			file: "repatch.toml",
			content: `
[[targets]]
path = "f.txt"
  [[targets.rules]]
  pattern = "alpha"
  replace = "ALPHA"

[[targets]]
path = "./f.txt"
  [[targets.rules]]
  pattern = "beta"
  replace = "BETA"
`,
			code: errors.ErrConfigValid,
		},
		{
			name: "target without rules",
			file: "repatch.toml",
			content: `
[[targets]]
path = "a.ts"
`,
			code: errors.ErrConfigValid,
		},
		{
			name: "unknown engine",
			file: "repatch.toml",
			content: `
[[targets]]
path = "a.ts"
  [[targets.rules]]
  pattern = "a"
  engine = "pcre"
`,
			code: errors.ErrConfigValid,
		},
		{
			name: "unknown encoding",
			file: "repatch.toml",
			content: `
[[targets]]
path = "a.ts"
encoding = "klingon-8"
  [[targets.rules]]
  pattern = "a"
`,
			code: errors.ErrConfigValid,
		},
		{
			name: "empty target list",
			file: "repatch.toml",
			content: `targets = []`,
			code: errors.ErrConfigValid,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			root := t.TempDir()
			writeFile(t, root, tt.file, tt.content)

			_, err := Load(LoadOptions{Root: root})
			require.Error(t, err)
			assert.Equal(t, tt.code, errors.GetErrorCode(err), "got %v", err)
		})
	}
}

func TestUnsupportedConfigExtension(t *testing.T) {
	path := writeFile(t, t.TempDir(), "repatch.ini", "x=1")
	_, err := Load(LoadOptions{ConfigFile: path})
	require.Error(t, err)
	assert.True(t, errors.IsErrorCode(err, errors.ErrConfigParse))
}

func TestResolvePath(t *testing.T) {
	assert.Equal(t, filepath.Join("work", "a.ts"), ResolvePath("work", "a.ts"))
	assert.Equal(t, "/abs/a.ts", ResolvePath("work", "/abs/a.ts"))
	assert.Equal(t, "a.ts", ResolvePath("", "./a.ts"))
}

func TestRenderLoadsBack(t *testing.T) {
	cfg, err := Default()
	require.NoError(t, err)
	cfg.Targets[0].Rules[0].Engine = types.EngineRegexp2
	cfg.Targets[0].Rules[0].Timeout = 2 * time.Second

	data, err := Render(cfg)
	require.NoError(t, err)

	root := t.TempDir()
	writeFile(t, root, "repatch.toml", string(data))

	loaded, err := Load(LoadOptions{Root: root})
	require.NoError(t, err)
	assert.Equal(t, cfg.Targets, loaded.Targets)
	assert.Equal(t, cfg.OnNoMatch, loaded.OnNoMatch)
}

func TestWriteConfig(t *testing.T) {
	cfg, err := Default()
	require.NoError(t, err)
	root := t.TempDir()

	res, err := WriteConfig(cfg, root)
	require.NoError(t, err)
	assert.True(t, res.Written)
	assert.FileExists(t, filepath.Join(root, ".repatch.toml"))

	res, err = WriteConfig(cfg, root)
	require.NoError(t, err)
	assert.False(t, res.Written)
	assert.True(t, res.AlreadyExisted)
}
