package observability

import (
	"fmt"
	"sort"
	"time"

	"github.com/valter-silva-au/taskdeck/pkg/models"
)

// AlertSeverity represents the urgency of an alert.
type AlertSeverity string

const (
	SeverityHigh   AlertSeverity = "high"
	SeverityMedium AlertSeverity = "medium"
	SeverityLow    AlertSeverity = "low"
)

func (s AlertSeverity) rank() int {
	switch s {
	case SeverityHigh:
		return 0
	case SeverityMedium:
		return 1
	default:
		return 2
	}
}

// Alert conditions.
const (
	ConditionOverdue     = "task_overdue"
	ConditionDueSoon     = "task_due_soon"
	ConditionTooManyOpen = "too_many_open_tasks"
)

// Alert represents a triggered alert condition.
type Alert struct {
	ID          string        `json:"id"`
	Condition   string        `json:"condition"`
	Severity    AlertSeverity `json:"severity"`
	TaskID      int64         `json:"task_id,omitempty"`
	TaskTitle   string        `json:"task_title,omitempty"`
	DueDate     models.Date   `json:"due_date"`
	Message     string        `json:"message"`
	TriggeredAt time.Time     `json:"triggered_at"`
}

// AlertThresholds configures when alerts should fire. A zero MaxOpenTasks
// disables the open-task alert.
type AlertThresholds struct {
	DueSoonDays  int `yaml:"due_soon_days" json:"due_soon_days"`
	MaxOpenTasks int `yaml:"max_open_tasks" json:"max_open_tasks"`
}

// DefaultAlertThresholds returns the default thresholds.
func DefaultAlertThresholds() AlertThresholds {
	return AlertThresholds{
		DueSoonDays:  2,
		MaxOpenTasks: 25,
	}
}

// AlertEngine evaluates alert conditions against the user's tasks.
type AlertEngine interface {
	Evaluate(tasks []models.Task, now time.Time) []Alert
}

type alertEngine struct {
	thresholds AlertThresholds
}

// NewAlertEngine creates an AlertEngine with the given thresholds.
func NewAlertEngine(thresholds AlertThresholds) AlertEngine {
	return &alertEngine{thresholds: thresholds}
}

// Evaluate returns the triggered alerts ordered by severity, then due date.
// Completed tasks never alert. Days are compared by calendar date in now's
// location.
func (ae *alertEngine) Evaluate(tasks []models.Task, now time.Time) []Alert {
	today := models.DateOf(now)
	soon := today.AddDays(ae.thresholds.DueSoonDays)
	triggered := now.UTC()

	var alerts []Alert
	open := 0
	for _, t := range tasks {
		if t.Status == models.StatusCompleted {
			continue
		}
		open++
		if t.DueDate.IsZero() {
			continue
		}
		switch {
		case t.DueDate.Before(today):
			alerts = append(alerts, Alert{
				ID:          fmt.Sprintf("overdue-%d", t.ID),
				Condition:   ConditionOverdue,
				Severity:    SeverityHigh,
				TaskID:      t.ID,
				TaskTitle:   t.Title,
				DueDate:     t.DueDate,
				Message:     fmt.Sprintf("task %d %q was due on %s", t.ID, t.Title, t.DueDate),
				TriggeredAt: triggered,
			})
		case !t.DueDate.After(soon):
			alerts = append(alerts, Alert{
				ID:          fmt.Sprintf("due-soon-%d", t.ID),
				Condition:   ConditionDueSoon,
				Severity:    SeverityMedium,
				TaskID:      t.ID,
				TaskTitle:   t.Title,
				DueDate:     t.DueDate,
				Message:     fmt.Sprintf("task %d %q is due on %s", t.ID, t.Title, t.DueDate),
				TriggeredAt: triggered,
			})
		}
	}

	idx := make([]int, len(alerts))
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(a, b int) bool {
		ra, rb := alerts[idx[a]].Severity.rank(), alerts[idx[b]].Severity.rank()
		if ra != rb {
			return ra < rb
		}
		return alerts[idx[a]].DueDate.Before(alerts[idx[b]].DueDate)
	})
	sorted := make([]Alert, 0, len(alerts)+1)
	for _, i := range idx {
		sorted = append(sorted, alerts[i])
	}

	if ae.thresholds.MaxOpenTasks > 0 && open > ae.thresholds.MaxOpenTasks {
		sorted = append(sorted, Alert{
			ID:          "open-tasks",
			Condition:   ConditionTooManyOpen,
			Severity:    SeverityLow,
			Message:     fmt.Sprintf("%d open tasks, exceeding the maximum of %d", open, ae.thresholds.MaxOpenTasks),
			TriggeredAt: triggered,
		})
	}
	return sorted
}
