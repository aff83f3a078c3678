package cli

import (
	"time"

	"github.com/valter-silva-au/taskdeck/internal/core"
	"github.com/valter-silva-au/taskdeck/internal/observability"
)

// Service instances, set during app initialization in app.go.
var (
	TaskMgr       core.TaskManager
	Auth          core.AuthService
	QueryDefaults core.QueryParams
	APIBaseURL    string
)

// Observability service instances, set during app initialization in app.go.
var (
	EventLog    observability.EventLog
	AlertEngine observability.AlertEngine
	MetricsCalc observability.MetricsCalculator
	Notifier    observability.Notifier
)

// now is replaced in tests.
var now = time.Now
