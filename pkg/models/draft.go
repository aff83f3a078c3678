package models

// TaskDraft is an in-progress, not-yet-submitted task bound to a form or to
// command-line flags. Empty enum fields mean the value was not chosen.
type TaskDraft struct {
	Title       string
	Description string
	Status      TaskStatus
	Priority    Priority
	Category    Category
	DueDate     Date
}

// NewTaskDraft returns a draft pre-filled with the form defaults: status
// TODO, category Work and priority MEDIUM.
func NewTaskDraft() TaskDraft {
	return TaskDraft{
		Status:   StatusTodo,
		Priority: PriorityMedium,
		Category: CategoryWork,
	}
}

// DraftFromTask loads an existing task into a draft for editing. Missing
// category and priority fall back to the form defaults.
func DraftFromTask(t Task) TaskDraft {
	d := TaskDraft{
		Title:       t.Title,
		Description: t.Description,
		Status:      t.Status,
		Priority:    t.Priority,
		Category:    t.Category,
		DueDate:     t.DueDate,
	}
	if d.Category == "" {
		d.Category = CategoryWork
	}
	if d.Priority == "" {
		d.Priority = PriorityMedium
	}
	return d
}

// ToTask converts the draft into a task payload. A draft without a status
// becomes a TODO task.
func (d TaskDraft) ToTask() Task {
	status := d.Status
	if status == "" {
		status = StatusTodo
	}
	return Task{
		Title:       d.Title,
		Description: d.Description,
		Status:      status,
		Priority:    d.Priority,
		Category:    d.Category,
		DueDate:     d.DueDate,
	}
}
