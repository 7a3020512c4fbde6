package config

import (
	_ "embed"
	"errors"
	"os"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/afero"
	"sigs.k8s.io/yaml"

	"github.com/josephlewis42/wordexp/core/env"
	"github.com/josephlewis42/wordexp/core/shell"
)

var (
	//go:embed default/config.yaml
	defaultConfigData []byte
)

const (
	ConfigurationName = "config.yaml"

	ColorAlways = "always"
	ColorAuto   = "auto"
	ColorNever  = "never"
)

// ErrEventLogDisabled is returned when opening the event log while it's
// turned off.
var ErrEventLogDisabled = errors.New("event log is disabled")

type Configuration struct {
	configFs afero.Fs

	MaxNestingDepth    int      `json:"max_nesting_depth" validate:"gte=1,lte=1024"`
	InteractiveLex     bool     `json:"interactive_lex"`
	HomeDir            string   `json:"home_dir"`
	Color              string   `json:"color" validate:"oneof=always auto never"`
	Prompt             string   `json:"prompt" validate:"required"`
	EventLog           string   `json:"event_log"`
	InheritEnvironment bool     `json:"inherit_environment"`
	Environment        []string `json:"environment" validate:"dive,required"`
}

// Validate the configuration for basic semantic errors.
func (c *Configuration) Validate() error {
	validate := validator.New()
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		return name
	})

	return validate.Struct(c)
}

func (c *Configuration) fs() afero.Fs {
	if c.configFs == nil {
		return afero.NewMemMapFs()
	}
	return c.configFs
}

// Parser creates a parser limited to the configured nesting depth.
func (c *Configuration) Parser() *shell.Parser {
	return &shell.Parser{MaxDepth: c.MaxNestingDepth}
}

// HomeResolver returns the resolver used for ~.
func (c *Configuration) HomeResolver() env.HomeDirResolver {
	if c.HomeDir != "" {
		return env.StaticHome(c.HomeDir)
	}
	return env.OSHome{}
}

// Snapshot builds the bindings a session starts with from src and the
// configured environment.
func (c *Configuration) Snapshot(src env.EnvironFetcher) env.Bindings {
	var out env.Bindings
	if c.InheritEnvironment && src != nil {
		out = env.Snapshot(src)
	}
	for _, binding := range env.FromEnviron(c.Environment) {
		out = out.Set(binding.Name, binding.Value)
	}
	return out
}

// ShouldColor decides whether to colorize output written to a terminal or
// not.
func (c *Configuration) ShouldColor(isTerminal bool) bool {
	switch c.Color {
	case ColorNever:
		return false
	case ColorAlways:
		return true
	default:
		return isTerminal
	}
}

// OpenEventLog opens the event log in an append only state.
func (c *Configuration) OpenEventLog() (afero.File, error) {
	if c.EventLog == "" {
		return nil, ErrEventLogDisabled
	}
	return c.fs().OpenFile(c.EventLog, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0600)
}

// ReadEventLog opens the event log for reading.
func (c *Configuration) ReadEventLog() (afero.File, error) {
	if c.EventLog == "" {
		return nil, ErrEventLogDisabled
	}
	return c.fs().OpenFile(c.EventLog, os.O_RDONLY, 0600)
}

func defaultConfig() *Configuration {
	var out Configuration
	if err := yaml.UnmarshalStrict(defaultConfigData, &out); err != nil {
		panic(err)
	}
	return &out
}

// Default returns the built in configuration, backed by an in-memory
// filesystem.
func Default() *Configuration {
	out := defaultConfig()
	out.configFs = afero.NewMemMapFs()
	return out
}
