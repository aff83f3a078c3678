package observability

import (
	"fmt"
	"time"
)

// Metrics summarises local activity recorded in the event log.
type Metrics struct {
	TasksCreated        int            `json:"tasks_created"`
	TasksUpdated        int            `json:"tasks_updated"`
	TasksDeleted        int            `json:"tasks_deleted"`
	TasksCompleted      int            `json:"tasks_completed"`
	StatusTransitions   map[string]int `json:"status_transitions"`
	TasksByPriority     map[string]int `json:"tasks_by_priority"`
	TasksByCategory     map[string]int `json:"tasks_by_category"`
	CommentsAdded       int            `json:"comments_added"`
	AttachmentsUploaded int            `json:"attachments_uploaded"`
	DependenciesAdded   int            `json:"dependencies_added"`
	SubtasksAdded       int            `json:"subtasks_added"`
	Logins              int            `json:"logins"`
	SessionsExpired     int            `json:"sessions_expired"`
	Warnings            int            `json:"warnings"`
	EventCount          int            `json:"event_count"`
	OldestEvent         *time.Time     `json:"oldest_event,omitempty"`
	NewestEvent         *time.Time     `json:"newest_event,omitempty"`
}

// MetricsCalculator derives metrics from the event log.
type MetricsCalculator interface {
	Calculate(since time.Time) (*Metrics, error)
}

// metricsCalculator implements MetricsCalculator by reading from an EventLog.
type metricsCalculator struct {
	eventLog EventLog
}

// NewMetricsCalculator creates a MetricsCalculator over eventLog.
func NewMetricsCalculator(eventLog EventLog) MetricsCalculator {
	return &metricsCalculator{eventLog: eventLog}
}

// Calculate aggregates every event at or after since.
func (mc *metricsCalculator) Calculate(since time.Time) (*Metrics, error) {
	events, err := mc.eventLog.Read(EventFilter{Since: &since})
	if err != nil {
		return nil, fmt.Errorf("reading events for metrics: %w", err)
	}

	m := &Metrics{
		StatusTransitions: make(map[string]int),
		TasksByPriority:   make(map[string]int),
		TasksByCategory:   make(map[string]int),
		EventCount:        len(events),
	}

	for i, event := range events {
		if i == 0 {
			t := event.Time
			m.OldestEvent = &t
		}
		t := event.Time
		m.NewestEvent = &t
		if event.Level == LevelWarn {
			m.Warnings++
		}

		switch event.Type {
		case "task.created":
			m.TasksCreated++
			if p, ok := event.Data["priority"].(string); ok && p != "" {
				m.TasksByPriority[p]++
			}
			if c, ok := event.Data["category"].(string); ok && c != "" {
				m.TasksByCategory[c]++
			}
		case "task.updated":
			m.TasksUpdated++
		case "task.deleted":
			m.TasksDeleted++
		case "task.status_changed":
			oldStatus, _ := event.Data["old_status"].(string)
			newStatus, _ := event.Data["new_status"].(string)
			if newStatus == "" {
				continue
			}
			m.StatusTransitions[oldStatus+"->"+newStatus]++
			if newStatus == "COMPLETED" && oldStatus != "COMPLETED" {
				m.TasksCompleted++
			}
		case "comment.added":
			m.CommentsAdded++
		case "attachment.uploaded":
			m.AttachmentsUploaded++
		case "dependency.added":
			m.DependenciesAdded++
		case "subtask.added":
			m.SubtasksAdded++
		case "session.login":
			m.Logins++
		case "session.expired":
			m.SessionsExpired++
		}
	}

	return m, nil
}
