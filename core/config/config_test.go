package config

import (
	"io/fs"
	"io/ioutil"
	"log"
	"reflect"
	"strings"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v2"

	"github.com/josephlewis42/wordexp/core/env"
	"github.com/josephlewis42/wordexp/core/shell"
)

func TestBuiltinConfig(t *testing.T) {
	rawConfig := make(map[string]interface{})
	assert.Nil(t, yaml.Unmarshal(defaultConfigData, &rawConfig))

	knownFields := make(map[string]bool)
	rt := reflect.TypeOf(Configuration{})
	for i := 0; i < rt.NumField(); i++ {
		field := rt.Field(i)
		if !field.IsExported() {
			continue
		}

		jsonTag := field.Tag.Get("json")
		assert.NotEmpty(t, jsonTag)
		jsonField := strings.Split(jsonTag, ",")[0]
		knownFields[jsonField] = true

		if _, ok := rawConfig[jsonField]; !ok {
			assert.False(t, true, "default config missing field: %q", jsonField)
		}
	}

	for k := range rawConfig {
		_, ok := knownFields[k]
		assert.True(t, ok, "default config contains invalid field: %q", k)
	}
}

func TestDefaultConfig(t *testing.T) {
	// Will panic() on load failure because it should never happen at runtime.
	cfg := defaultConfig()
	assert.NotNil(t, cfg)
	assert.NoError(t, cfg.Validate())
	assert.Equal(t, shell.DefaultMaxDepth, cfg.MaxNestingDepth)
}

func TestValidate(t *testing.T) {
	cases := map[string]func(*Configuration){
		"depth too small": func(c *Configuration) { c.MaxNestingDepth = 0 },
		"depth too large": func(c *Configuration) { c.MaxNestingDepth = 1025 },
		"bad color":       func(c *Configuration) { c.Color = "sometimes" },
		"empty prompt":    func(c *Configuration) { c.Prompt = "" },
		"empty binding":   func(c *Configuration) { c.Environment = []string{""} },
	}

	for tn, mutate := range cases {
		t.Run(tn, func(t *testing.T) {
			cfg := defaultConfig()
			mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestLoadFs(t *testing.T) {
	t.Run("overrides defaults", func(t *testing.T) {
		memFs := afero.NewMemMapFs()
		require.NoError(t, afero.WriteFile(memFs, ConfigurationName, []byte("max_nesting_depth: 8\ncolor: never\n"), 0600))

		cfg, err := LoadFs(memFs)
		require.NoError(t, err)
		assert.Equal(t, 8, cfg.MaxNestingDepth)
		assert.Equal(t, ColorNever, cfg.Color)
		assert.Equal(t, "wordexp> ", cfg.Prompt)
		assert.Equal(t, 8, cfg.Parser().MaxDepth)
	})

	t.Run("unknown fields", func(t *testing.T) {
		memFs := afero.NewMemMapFs()
		require.NoError(t, afero.WriteFile(memFs, ConfigurationName, []byte("max_depth: 8\n"), 0600))

		_, err := LoadFs(memFs)
		assert.Error(t, err)
	})

	t.Run("invalid values", func(t *testing.T) {
		memFs := afero.NewMemMapFs()
		require.NoError(t, afero.WriteFile(memFs, ConfigurationName, []byte("max_nesting_depth: -1\n"), 0600))

		_, err := LoadFs(memFs)
		assert.Error(t, err)
	})

	t.Run("missing", func(t *testing.T) {
		cfg, err := LoadFs(afero.NewMemMapFs())
		assert.ErrorIs(t, err, fs.ErrNotExist)
		require.NotNil(t, cfg)
		assert.Equal(t, defaultConfig().Prompt, cfg.Prompt)
	})
}

func TestInitializeFs(t *testing.T) {
	memFs := afero.NewMemMapFs()
	logger := log.New(ioutil.Discard, "", 0)

	cfg, err := InitializeFs(memFs, logger)
	require.NoError(t, err)

	t.Run("OpenEventLog", func(t *testing.T) {
		fd, err := cfg.OpenEventLog()
		require.NoError(t, err)
		_, err = fd.WriteString("{}\n")
		assert.NoError(t, err)
		fd.Close()

		fd, err = cfg.ReadEventLog()
		require.NoError(t, err)
		contents, err := ioutil.ReadAll(fd)
		assert.NoError(t, err)
		assert.Equal(t, "{}\n", string(contents))
		fd.Close()
	})

	t.Run("keeps existing config", func(t *testing.T) {
		require.NoError(t, afero.WriteFile(memFs, ConfigurationName, []byte("prompt: '$ '\n"), 0600))

		cfg, err := InitializeFs(memFs, logger)
		require.NoError(t, err)
		assert.Equal(t, "$ ", cfg.Prompt)
	})

	t.Run("event log disabled", func(t *testing.T) {
		cfg := Default()
		cfg.EventLog = ""

		_, err := cfg.OpenEventLog()
		assert.ErrorIs(t, err, ErrEventLogDisabled)
	})
}

func TestInitialize(t *testing.T) {
	tempDir := t.TempDir()
	if _, err := Initialize(tempDir, log.New(ioutil.Discard, "", 0)); err != nil {
		t.Fatal(err)
	}

	// Check that the config is valid
	if _, err := Load(tempDir); err != nil {
		t.Fatal(err)
	}
}

func TestConfiguration_Snapshot(t *testing.T) {
	process := env.FromEnviron([]string{"HOME=/root", "A=1"})

	cfg := defaultConfig()
	cfg.Environment = []string{"A=2", "B=3"}

	cfg.InheritEnvironment = true
	assert.Equal(t, []string{"HOME=/root", "A=2", "B=3"}, cfg.Snapshot(process).Environ())

	cfg.InheritEnvironment = false
	assert.Equal(t, []string{"A=2", "B=3"}, cfg.Snapshot(process).Environ())
}

func TestConfiguration_ShouldColor(t *testing.T) {
	cfg := defaultConfig()

	for _, tc := range []struct {
		color    string
		terminal bool
		expected bool
	}{
		{ColorAlways, false, true},
		{ColorNever, true, false},
		{ColorAuto, true, true},
		{ColorAuto, false, false},
	} {
		cfg.Color = tc.color
		assert.Equal(t, tc.expected, cfg.ShouldColor(tc.terminal), "color=%s terminal=%t", tc.color, tc.terminal)
	}
}

func TestConfiguration_HomeResolver(t *testing.T) {
	cfg := defaultConfig()
	assert.Equal(t, env.OSHome{}, cfg.HomeResolver())

	cfg.HomeDir = "/home/test"
	home, err := cfg.HomeResolver().UserHomeDir()
	assert.NoError(t, err)
	assert.Equal(t, "/home/test", home)
}
