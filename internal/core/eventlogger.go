package core

// EventLogger is the subset of the observability event log that core
// services need. Defining it here avoids importing the observability package.
type EventLogger interface {
	LogEvent(eventType string, data map[string]any) error
}

// Event types recorded by core services.
const (
	EventTaskCreated        = "task.created"
	EventTaskUpdated        = "task.updated"
	EventTaskStatusChanged  = "task.status_changed"
	EventTaskDeleted        = "task.deleted"
	EventCommentAdded       = "comment.added"
	EventAttachmentUploaded = "attachment.uploaded"
	EventAttachmentDeleted  = "attachment.deleted"
	EventDependencyAdded    = "dependency.added"
	EventDependencyRemoved  = "dependency.removed"
	EventSubtaskAdded       = "subtask.added"
	EventSessionLogin       = "session.login"
	EventSessionLogout      = "session.logout"
	EventSessionExpired     = "session.expired"
)
