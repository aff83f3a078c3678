// Package core contains the client-side business logic of taskdeck: the
// list query engine, draft validation, configuration, and the task and
// authentication services that drive the backend API.
package core

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/viper"
	"github.com/valter-silva-au/taskdeck/pkg/models"
)

// ConfigFileName is the base name (without extension) of the config file.
const ConfigFileName = ".taskdeck"

// EnvPrefix prefixes environment variable overrides, e.g. TASKDECK_API_BASE_URL.
const EnvPrefix = "TASKDECK"

// ConfigurationManager loads and validates client configuration.
type ConfigurationManager interface {
	LoadGlobalConfig() (*models.GlobalConfig, error)
	ValidateConfig(cfg *models.GlobalConfig) error
}

// viperConfigManager implements ConfigurationManager using Viper for
// reading the YAML config file and environment overrides.
type viperConfigManager struct {
	basePath string
}

// NewConfigurationManager creates a ConfigurationManager that reads
// .taskdeck.yaml from basePath.
func NewConfigurationManager(basePath string) ConfigurationManager {
	return &viperConfigManager{basePath: basePath}
}

// DefaultGlobalConfig returns a GlobalConfig populated with defaults.
func DefaultGlobalConfig() *models.GlobalConfig {
	return &models.GlobalConfig{
		API: models.APIConfig{
			BaseURL: "http://localhost:8080/api",
			Timeout: 15 * time.Second,
		},
		Query: models.QueryConfig{
			SortBy:    string(SortByDueDate),
			SortOrder: string(SortAsc),
			Locale:    "en",
		},
		Log: models.LogConfig{
			Level:  "warn",
			Format: "console",
		},
		Alerts: models.AlertConfig{
			DueSoonDays:  2,
			MaxOpenTasks: 25,
		},
	}
}

// LoadGlobalConfig reads .taskdeck.yaml and TASKDECK_* environment
// variables. A missing file yields the defaults.
func (cm *viperConfigManager) LoadGlobalConfig() (*models.GlobalConfig, error) {
	def := DefaultGlobalConfig()

	v := viper.New()
	v.SetConfigName(ConfigFileName)
	v.SetConfigType("yaml")
	v.AddConfigPath(cm.basePath)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("api.base_url", def.API.BaseURL)
	v.SetDefault("api.timeout", def.API.Timeout)
	v.SetDefault("query.sort_by", def.Query.SortBy)
	v.SetDefault("query.sort_order", def.Query.SortOrder)
	v.SetDefault("query.locale", def.Query.Locale)
	v.SetDefault("log.level", def.Log.Level)
	v.SetDefault("log.format", def.Log.Format)
	v.SetDefault("alerts.due_soon_days", def.Alerts.DueSoonDays)
	v.SetDefault("alerts.max_open_tasks", def.Alerts.MaxOpenTasks)
	v.SetDefault("notifications.slack.webhook_url", "")

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("reading %s.yaml: %w", ConfigFileName, err)
		}
	}

	cfg := &models.GlobalConfig{
		API: models.APIConfig{
			BaseURL: strings.TrimRight(v.GetString("api.base_url"), "/"),
			Timeout: v.GetDuration("api.timeout"),
		},
		Query: models.QueryConfig{
			SortBy:    v.GetString("query.sort_by"),
			SortOrder: v.GetString("query.sort_order"),
			Locale:    v.GetString("query.locale"),
		},
		Log: models.LogConfig{
			Level:  v.GetString("log.level"),
			Format: v.GetString("log.format"),
		},
		Alerts: models.AlertConfig{
			DueSoonDays:  v.GetInt("alerts.due_soon_days"),
			MaxOpenTasks: v.GetInt("alerts.max_open_tasks"),
		},
		Notifications: models.NotificationConfig{
			Slack: models.SlackConfig{WebhookURL: v.GetString("notifications.slack.webhook_url")},
		},
	}
	return cfg, nil
}

// ValidateConfig checks every setting and reports all problems at once.
func (cm *viperConfigManager) ValidateConfig(cfg *models.GlobalConfig) error {
	if cfg == nil {
		return fmt.Errorf("configuration is nil")
	}

	var errs []string

	if u, err := url.Parse(cfg.API.BaseURL); err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		errs = append(errs, fmt.Sprintf("api.base_url %q must be an absolute http(s) URL", cfg.API.BaseURL))
	}
	if cfg.API.Timeout <= 0 {
		errs = append(errs, fmt.Sprintf("api.timeout must be positive, got %s", cfg.API.Timeout))
	}
	if _, err := ParseSortKey(cfg.Query.SortBy); err != nil {
		errs = append(errs, "query.sort_by: "+err.Error())
	}
	if _, err := ParseSortOrder(cfg.Query.SortOrder); err != nil {
		errs = append(errs, "query.sort_order: "+err.Error())
	}
	if _, err := zerolog.ParseLevel(cfg.Log.Level); err != nil {
		errs = append(errs, fmt.Sprintf("log.level %q is invalid", cfg.Log.Level))
	}
	if cfg.Log.Format != "console" && cfg.Log.Format != "json" {
		errs = append(errs, fmt.Sprintf("log.format %q is invalid, must be console or json", cfg.Log.Format))
	}
	if cfg.Alerts.DueSoonDays < 0 {
		errs = append(errs, fmt.Sprintf("alerts.due_soon_days must be non-negative, got %d", cfg.Alerts.DueSoonDays))
	}
	if cfg.Alerts.MaxOpenTasks < 0 {
		errs = append(errs, fmt.Sprintf("alerts.max_open_tasks must be non-negative, got %d", cfg.Alerts.MaxOpenTasks))
	}

	if len(errs) > 0 {
		return fmt.Errorf("config validation failed:\n  - %s", strings.Join(errs, "\n  - "))
	}
	return nil
}

// QueryDefaults converts the query section of cfg into list parameters.
// Invalid values fall back to DefaultQueryParams.
func QueryDefaults(cfg *models.GlobalConfig) QueryParams {
	p := DefaultQueryParams()
	if cfg == nil {
		return p
	}
	if k, err := ParseSortKey(cfg.Query.SortBy); err == nil {
		p.SortBy = k
	}
	if o, err := ParseSortOrder(cfg.Query.SortOrder); err == nil {
		p.SortOrder = o
	}
	p.Locale = cfg.Query.Locale
	return p
}
