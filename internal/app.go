// Package internal provides the App struct that wires all components of
// taskdeck together and initializes the CLI layer.
package internal

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"
	"github.com/valter-silva-au/taskdeck/internal/cli"
	"github.com/valter-silva-au/taskdeck/internal/core"
	"github.com/valter-silva-au/taskdeck/internal/integration"
	"github.com/valter-silva-au/taskdeck/internal/observability"
	"github.com/valter-silva-au/taskdeck/internal/storage"
	"github.com/valter-silva-au/taskdeck/pkg/models"
)

// HomeEnv names the environment variable that overrides the base directory.
const HomeEnv = "TASKDECK_HOME"

// App holds all service dependencies for taskdeck.
type App struct {
	BasePath string

	// Configuration
	ConfigMgr core.ConfigurationManager
	Config    *models.GlobalConfig
	Logger    zerolog.Logger

	// Backend and local storage
	API          *integration.TaskClient
	SessionStore storage.SessionStoreManager

	// Core services
	Auth    core.AuthService
	TaskMgr core.TaskManager

	// Observability
	EventLog    observability.EventLog
	AlertEngine observability.AlertEngine
	MetricsCalc observability.MetricsCalculator
	Notifier    observability.Notifier
}

// NewApp creates and wires all components. basePath is the directory that
// holds .taskdeck.yaml, the session file and the event log.
func NewApp(basePath string) (*App, error) {
	app := &App{BasePath: basePath}

	// --- Configuration ---
	app.ConfigMgr = core.NewConfigurationManager(basePath)
	cfg, err := app.ConfigMgr.LoadGlobalConfig()
	if err != nil {
		return nil, err
	}
	if err := app.ConfigMgr.ValidateConfig(cfg); err != nil {
		return nil, err
	}
	app.Config = cfg

	app.Logger, err = observability.NewLogger(observability.LoggerConfig{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
	})
	if err != nil {
		return nil, fmt.Errorf("creating logger: %w", err)
	}

	if err := os.MkdirAll(basePath, 0o750); err != nil {
		return nil, fmt.Errorf("creating base directory %s: %w", basePath, err)
	}

	// --- Backend client and session storage ---
	app.API = integration.NewTaskClient(integration.ClientConfig{
		BaseURL: cfg.API.BaseURL,
		Timeout: cfg.API.Timeout,
		Version: cli.Version(),
		Logger:  app.Logger,
	})
	app.SessionStore = storage.NewSessionStoreManager(basePath)

	// --- Observability ---
	app.EventLog, err = observability.NewJSONLEventLog(filepath.Join(basePath, observability.EventLogFileName))
	if err != nil {
		// Non-fatal: commands work without local metrics.
		app.Logger.Warn().Err(err).Msg("event log disabled")
		app.EventLog = nil
	}
	var events core.EventLogger
	if app.EventLog != nil {
		events = &eventLogAdapter{log: app.EventLog}
		app.MetricsCalc = observability.NewMetricsCalculator(app.EventLog)
	}
	app.AlertEngine = observability.NewAlertEngine(alertThresholds(cfg))
	if url := cfg.Notifications.Slack.WebhookURL; url != "" {
		app.Notifier = observability.NewSlackNotifier(url)
	}

	// --- Core services ---
	app.Auth = core.NewAuthService(app.API, app.SessionStore, events)
	app.TaskMgr = core.NewTaskManager(app.API, app.Auth, events)

	// --- Wire CLI package-level variables ---
	cli.TaskMgr = app.TaskMgr
	cli.Auth = app.Auth
	cli.QueryDefaults = core.QueryDefaults(cfg)
	cli.APIBaseURL = cfg.API.BaseURL

	cli.EventLog = app.EventLog
	cli.AlertEngine = app.AlertEngine
	cli.MetricsCalc = app.MetricsCalc
	cli.Notifier = app.Notifier

	return app, nil
}

// Close releases resources held by the App, such as the event log file
// handle. It is safe to call Close on an App whose EventLog is nil.
func (a *App) Close() error {
	if a.EventLog != nil {
		return a.EventLog.Close()
	}
	return nil
}

func alertThresholds(cfg *models.GlobalConfig) observability.AlertThresholds {
	t := observability.DefaultAlertThresholds()
	if cfg.Alerts.DueSoonDays > 0 {
		t.DueSoonDays = cfg.Alerts.DueSoonDays
	}
	if cfg.Alerts.MaxOpenTasks > 0 {
		t.MaxOpenTasks = cfg.Alerts.MaxOpenTasks
	}
	return t
}

// ResolveBasePath determines the taskdeck data directory: TASKDECK_HOME if
// set, else the nearest directory from cwd upwards containing
// .taskdeck.yaml, else ~/.taskdeck.
func ResolveBasePath() string {
	if home := os.Getenv(HomeEnv); home != "" {
		return home
	}
	if dir, err := os.Getwd(); err == nil {
		for {
			if _, err := os.Stat(filepath.Join(dir, core.ConfigFileName+".yaml")); err == nil {
				return dir
			}
			parent := filepath.Dir(dir)
			if parent == dir {
				break
			}
			dir = parent
		}
	}
	if home, err := os.UserHomeDir(); err == nil {
		return filepath.Join(home, ".taskdeck")
	}
	return "."
}

// --- Adapters ---

// eventLogAdapter adapts observability.EventLog to core.EventLogger.
type eventLogAdapter struct {
	log observability.EventLog
	now func() time.Time
}

func (a *eventLogAdapter) LogEvent(eventType string, data map[string]any) error {
	now := time.Now
	if a.now != nil {
		now = a.now
	}
	evt := observability.Event{
		Time:    now().UTC(),
		Level:   observability.EventLevel(eventType),
		Type:    eventType,
		Message: eventType,
		Data:    data,
	}
	if id, ok := data["user_id"].(int64); ok {
		evt.UserID = id
	}
	return a.log.Write(evt)
}
