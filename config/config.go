// Package config loads docconv settings from docconv.yaml, DOCCONV_* environment
// variables and command line flags.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/spf13/viper"

	"docconv/converter"
	"docconv/markup"
	"docconv/render"
)

const (
	EnvPrefix = "DOCCONV"
	FileName  = "docconv"
)

type RendererConfig struct {
	Backend         string        `mapstructure:"backend"`
	WkhtmltopdfPath string        `mapstructure:"wkhtmltopdf_path"`
	Timeout         time.Duration `mapstructure:"timeout"`
	InstallBrowsers bool          `mapstructure:"install_browsers"`
	FontDir         string        `mapstructure:"font_dir"`
}

type WordConfig struct {
	Strategy converter.WordStrategy `mapstructure:"strategy"`
}

type OfficeConfig struct {
	Binary string `mapstructure:"binary"`
}

type StylesheetConfig struct {
	Policy markup.Policy `mapstructure:"policy"`
}

type Config struct {
	Renderer   RendererConfig   `mapstructure:"renderer"`
	Word       WordConfig       `mapstructure:"word"`
	Office     OfficeConfig     `mapstructure:"office"`
	Stylesheet StylesheetConfig `mapstructure:"stylesheet"`
	Workdir    string           `mapstructure:"workdir"`
}

func SetDefaults(v *viper.Viper) {
	v.SetDefault("renderer.backend", render.BackendWkhtmltopdf)
	v.SetDefault("renderer.wkhtmltopdf_path", "wkhtmltopdf")
	v.SetDefault("renderer.timeout", 60*time.Second)
	v.SetDefault("renderer.install_browsers", false)
	v.SetDefault("renderer.font_dir", "")
	v.SetDefault("word.strategy", string(converter.StrategyParagraphs))
	v.SetDefault("office.binary", "soffice")
	v.SetDefault("stylesheet.policy", string(markup.PolicyAlways))
	v.SetDefault("workdir", "")
}

// NewViper prepares a viper instance with defaults, the environment and the
// config file. configFile overrides the search path; a missing default file
// is not an error.
func NewViper(configFile string) (*viper.Viper, error) {
	v := viper.New()
	SetDefaults(v)

	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName(FileName)
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(filepath.Join(home, ".config", FileName))
		}
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if configFile != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}
	return v, nil
}

// FromViper decodes and validates the settings held by v.
func FromViper(v *viper.Viper) (*Config, error) {
	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	policy, err := markup.ParsePolicy(string(c.Stylesheet.Policy))
	if err != nil {
		return nil, fmt.Errorf("invalid config: stylesheet: %w", err)
	}
	c.Stylesheet.Policy = policy
	c.Word.Strategy = converter.WordStrategy(strings.ToLower(strings.TrimSpace(string(c.Word.Strategy))))
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return &c, nil
}

// Load is NewViper followed by FromViper.
func Load(configFile string) (*Config, error) {
	v, err := NewViper(configFile)
	if err != nil {
		return nil, err
	}
	return FromViper(v)
}

func (c *Config) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Renderer),
		validation.Field(&c.Word),
		validation.Field(&c.Office),
		validation.Field(&c.Stylesheet),
	)
}

func (r RendererConfig) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Backend, validation.Required, validation.In(toAny(render.Backends())...)),
		validation.Field(&r.WkhtmltopdfPath, validation.When(r.Backend == render.BackendWkhtmltopdf, validation.Required)),
		validation.Field(&r.Timeout, validation.Min(time.Duration(0))),
	)
}

func (w WordConfig) Validate() error {
	return validation.ValidateStruct(&w,
		validation.Field(&w.Strategy, validation.Required, validation.In(converter.StrategyParagraphs, converter.StrategyOffice)),
	)
}

func (o OfficeConfig) Validate() error {
	return validation.ValidateStruct(&o,
		validation.Field(&o.Binary, validation.Required),
	)
}

func (s StylesheetConfig) Validate() error {
	return validation.ValidateStruct(&s,
		validation.Field(&s.Policy, validation.Required,
			validation.In(markup.PolicyAlways, markup.PolicyExistingStyleOnly)),
	)
}

func (c *Config) RenderSettings() render.Settings {
	return render.Settings{
		Backend:         c.Renderer.Backend,
		WkhtmltopdfPath: c.Renderer.WkhtmltopdfPath,
		Timeout:         c.Renderer.Timeout,
		InstallBrowsers: c.Renderer.InstallBrowsers,
		FontDir:         c.Renderer.FontDir,
	}
}

func toAny(values []string) []any {
	out := make([]any, len(values))
	for i, v := range values {
		out[i] = v
	}
	return out
}
