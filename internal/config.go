package internal

import (
	"fmt"
	"log/slog"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"golang.org/x/text/language"

	"github.com/starford/kondate/internal/oracle"
	"github.com/starford/kondate/internal/recipe"
)

// Auth modes.
const (
	AuthModeDisabled = "disabled"
	AuthModeToken    = "token"
)

// Config represents the application configuration.
type Config struct {
	App        ApplicationConfig `yaml:"app"`
	Storage    StorageConfig     `yaml:"storage"`
	Oracle     OracleConfig      `yaml:"oracle"`
	Suggest    SuggestConfig     `yaml:"suggest"`
	Thumbnails ThumbnailsConfig  `yaml:"thumbnails"`
	Catalog    CatalogConfig     `yaml:"catalog"`
	Metrics    MetricsConfig     `yaml:"metrics"`
	Auth       AuthConfig        `yaml:"auth"`
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	for _, v := range []validation.Validatable{
		&c.App, &c.Storage, &c.Oracle, &c.Suggest, &c.Catalog, &c.Auth,
	} {
		if err := v.Validate(); err != nil {
			return err
		}
	}
	return nil
}

// ApplicationConfig holds application-level configuration.
type ApplicationConfig struct {
	LogLevel slog.Level `yaml:"log_level"`
	HTTP     HTTPConfig `yaml:"http"`
}

// Validate validates the application configuration.
func (c *ApplicationConfig) Validate() error {
	return c.HTTP.Validate()
}

// HTTPConfig holds HTTP server configuration.
type HTTPConfig struct {
	Port        int      `yaml:"port"`
	CORSOrigins []string `yaml:"cors_origins"`
}

// Address returns HTTP server address.
func (c *HTTPConfig) Address() string {
	return fmt.Sprintf(":%d", c.Port)
}

// Validate validates the HTTP configuration.
func (c *HTTPConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Port, validation.Required, validation.Min(1), validation.Max(65535)),
	)
}

// StorageConfig holds the directories for cached recipes and thumbnails.
type StorageConfig struct {
	RecipesDir string `yaml:"recipes_dir"`
	ThumbsDir  string `yaml:"thumbs_dir"`
}

// Validate validates the storage configuration.
func (c *StorageConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.RecipesDir, validation.Required),
		validation.Field(&c.ThumbsDir, validation.Required),
	)
}

// OracleConfig holds generative model configuration.
type OracleConfig struct {
	APIKey     string        `yaml:"api_key"`
	BaseURL    string        `yaml:"base_url"`
	TextModel  string        `yaml:"text_model"`
	ImageModel string        `yaml:"image_model"`
	Language   string        `yaml:"language"`
	Cuisine    string        `yaml:"cuisine"`
	Timeout    time.Duration `yaml:"timeout"`
}

// Validate validates the oracle configuration. The API key is checked at
// startup rather than here so that the key subcommand works without one.
func (c *OracleConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.TextModel, validation.Required),
		validation.Field(&c.ImageModel, validation.Required),
		validation.Field(&c.Language, validation.Required, validation.By(isLanguageTag)),
		validation.Field(&c.Timeout, validation.Min(time.Duration(0))),
	)
}

// LanguageTag returns the parsed reply language.
func (c *OracleConfig) LanguageTag() language.Tag {
	tag, err := language.Parse(c.Language)
	if err != nil {
		return language.Japanese
	}
	return tag
}

func isLanguageTag(v any) error {
	s, _ := v.(string)
	if _, err := language.Parse(s); err != nil {
		return fmt.Errorf("must be a BCP 47 language tag")
	}
	return nil
}

// SuggestConfig holds suggestion settings.
type SuggestConfig struct {
	Count int `yaml:"count"`
}

// Validate validates the suggestion configuration.
func (c *SuggestConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Count, validation.Required, validation.Min(1), validation.Max(10)),
	)
}

// ThumbnailsConfig toggles thumbnail generation for suggestions.
type ThumbnailsConfig struct {
	Enabled bool `yaml:"enabled"`
}

// CatalogConfig holds the SQLite catalog configuration.
type CatalogConfig struct {
	Path  string `yaml:"path"`
	Watch bool   `yaml:"watch"`
}

// Validate validates the catalog configuration.
func (c *CatalogConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Path, validation.Required),
	)
}

// MetricsConfig toggles the Prometheus endpoint.
type MetricsConfig struct {
	Enabled bool `yaml:"enabled"`
}

// AuthConfig holds authentication configuration.
//
// Mode controls how authentication is enforced:
//   - "disabled" (default): no authentication required, suitable for local dev.
//   - "token": Bearer token authentication; Token must be non-empty.
type AuthConfig struct {
	Mode  string `yaml:"mode"`
	Token string `yaml:"token"`
}

// Validate validates the auth configuration.
func (c *AuthConfig) Validate() error {
	if c.Mode == "" {
		c.Mode = AuthModeDisabled
	}
	if err := validation.ValidateStruct(c,
		validation.Field(&c.Mode, validation.Required, validation.In(AuthModeDisabled, AuthModeToken)),
	); err != nil {
		return err
	}
	if c.Mode == AuthModeToken && c.Token == "" {
		return fmt.Errorf("auth: mode is %q but token is empty", AuthModeToken)
	}
	return nil
}

// AuthEnabled returns true when authentication is active.
func (c *AuthConfig) AuthEnabled() bool {
	return c.Mode == AuthModeToken
}

// NewDefaultConfig returns a new Config with sensible default values.
func NewDefaultConfig() *Config {
	return &Config{
		App: ApplicationConfig{
			LogLevel: slog.LevelInfo,
			HTTP: HTTPConfig{
				Port: 8000,
			},
		},
		Storage: StorageConfig{
			RecipesDir: "./recipes",
			ThumbsDir:  "./thumbs",
		},
		Oracle: OracleConfig{
			TextModel:  oracle.DefaultTextModel,
			ImageModel: oracle.DefaultImageModel,
			Language:   "ja",
			Cuisine:    oracle.DefaultCuisine,
			Timeout:    60 * time.Second,
		},
		Suggest: SuggestConfig{
			Count: recipe.DefaultSuggestionCount,
		},
		Catalog: CatalogConfig{
			Path:  "./kondate.db",
			Watch: true,
		},
		Auth: AuthConfig{
			Mode: AuthModeDisabled,
		},
	}
}
