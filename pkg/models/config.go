package models

import "time"

// APIConfig holds settings for reaching the task backend.
type APIConfig struct {
	BaseURL string        `yaml:"base_url" mapstructure:"base_url"`
	Timeout time.Duration `yaml:"timeout" mapstructure:"timeout"`
}

// QueryConfig holds the default list view parameters.
type QueryConfig struct {
	SortBy    string `yaml:"sort_by" mapstructure:"sort_by"`
	SortOrder string `yaml:"sort_order" mapstructure:"sort_order"`
	Locale    string `yaml:"locale" mapstructure:"locale"`
}

// LogConfig controls the diagnostic logger.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// AlertConfig holds thresholds for due-date alerts.
type AlertConfig struct {
	DueSoonDays  int `yaml:"due_soon_days" mapstructure:"due_soon_days"`
	MaxOpenTasks int `yaml:"max_open_tasks" mapstructure:"max_open_tasks"`
}

// SlackConfig holds Slack webhook settings.
type SlackConfig struct {
	WebhookURL string `yaml:"webhook_url" mapstructure:"webhook_url"`
}

// NotificationConfig holds notification channel settings.
type NotificationConfig struct {
	Slack SlackConfig `yaml:"slack" mapstructure:"slack"`
}

// GlobalConfig holds all client settings read from .taskdeck.yaml via Viper.
type GlobalConfig struct {
	API           APIConfig          `yaml:"api" mapstructure:"api"`
	Query         QueryConfig        `yaml:"query" mapstructure:"query"`
	Log           LogConfig          `yaml:"log" mapstructure:"log"`
	Alerts        AlertConfig        `yaml:"alerts" mapstructure:"alerts"`
	Notifications NotificationConfig `yaml:"notifications" mapstructure:"notifications"`
}
