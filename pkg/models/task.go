package models

import "time"

// TaskStatus represents the current lifecycle state of a task.
type TaskStatus string

const (
	StatusTodo       TaskStatus = "TODO"
	StatusInProgress TaskStatus = "IN_PROGRESS"
	StatusCompleted  TaskStatus = "COMPLETED"
)

// Priority represents the urgency level of a task.
type Priority string

const (
	PriorityLow    Priority = "LOW"
	PriorityMedium Priority = "MEDIUM"
	PriorityHigh   Priority = "HIGH"
	PriorityUrgent Priority = "URGENT"
)

// Category is one of a fixed set of labels a task is filed under.
type Category string

const (
	CategoryWork      Category = "Work"
	CategoryPersonal  Category = "Personal"
	CategoryShopping  Category = "Shopping"
	CategoryHealth    Category = "Health"
	CategoryEducation Category = "Education"
	CategoryOther     Category = "Other"
)

// Statuses lists every valid TaskStatus in lifecycle order.
var Statuses = []TaskStatus{StatusTodo, StatusInProgress, StatusCompleted}

// Priorities lists every valid Priority from lowest to highest.
var Priorities = []Priority{PriorityLow, PriorityMedium, PriorityHigh, PriorityUrgent}

// Categories lists every valid Category in display order.
var Categories = []Category{
	CategoryWork,
	CategoryPersonal,
	CategoryShopping,
	CategoryHealth,
	CategoryEducation,
	CategoryOther,
}

// Valid reports whether s is one of the known statuses.
func (s TaskStatus) Valid() bool {
	for _, v := range Statuses {
		if s == v {
			return true
		}
	}
	return false
}

// Valid reports whether p is one of the known priorities.
func (p Priority) Valid() bool {
	for _, v := range Priorities {
		if p == v {
			return true
		}
	}
	return false
}

// Valid reports whether c is one of the known categories.
func (c Category) Valid() bool {
	for _, v := range Categories {
		if c == v {
			return true
		}
	}
	return false
}

// Task is a user-owned unit of work as returned by the backend. The ID is
// assigned by the server; a zero ID means the task has not been created yet.
type Task struct {
	ID          int64      `json:"id,omitempty" yaml:"id"`
	Title       string     `json:"title" yaml:"title"`
	Description string     `json:"description" yaml:"description"`
	Status      TaskStatus `json:"status" yaml:"status"`
	Priority    Priority   `json:"priority,omitempty" yaml:"priority"`
	Category    Category   `json:"category,omitempty" yaml:"category"`
	DueDate     Date       `json:"dueDate" yaml:"due_date"`
	UserID      int64      `json:"userId,omitempty" yaml:"user_id"`
	ParentID    int64      `json:"parentId,omitempty" yaml:"parent_id,omitempty"`
	CreatedAt   *Date      `json:"createdAt,omitempty" yaml:"created_at,omitempty"`
	UpdatedAt   *Date      `json:"updatedAt,omitempty" yaml:"updated_at,omitempty"`
}

// Overdue reports whether the task is still open and its due date lies
// before the calendar day of now.
func (t Task) Overdue(now time.Time) bool {
	if t.Status == StatusCompleted || t.DueDate.IsZero() {
		return false
	}
	return t.DueDate.Before(DateOf(now))
}

// Comment is a note attached to a task, ordered by creation time.
type Comment struct {
	ID        int64      `json:"id,omitempty"`
	TaskID    int64      `json:"taskId,omitempty"`
	Content   string     `json:"content"`
	UserName  string     `json:"userName,omitempty"`
	CreatedAt *Timestamp `json:"createdAt,omitempty"`
}

// Attachment describes a file stored by the backend for a task.
type Attachment struct {
	ID          int64      `json:"id"`
	TaskID      int64      `json:"taskId,omitempty"`
	FileName    string     `json:"fileName"`
	FileSize    int64      `json:"fileSize"`
	ContentType string     `json:"contentType,omitempty"`
	UploadedAt  *Timestamp `json:"uploadedAt,omitempty"`
}

// CategoryCount is one slice of the category distribution in Analytics.
type CategoryCount struct {
	Name  string `json:"name"`
	Value int    `json:"value"`
}

// Analytics holds the aggregate counters computed by the backend for a user.
type Analytics struct {
	TotalTasks           int             `json:"totalTasks"`
	CompletedTasks       int             `json:"completedTasks"`
	OverdueTasks         int             `json:"overdueTasks"`
	LowPriorityTasks     int             `json:"lowPriorityTasks"`
	MediumPriorityTasks  int             `json:"mediumPriorityTasks"`
	HighPriorityTasks    int             `json:"highPriorityTasks"`
	UrgentTasks          int             `json:"urgentTasks"`
	CategoryDistribution []CategoryCount `json:"categoryDistribution"`
}

// PendingTasks returns the number of tasks that are not completed.
func (a Analytics) PendingTasks() int {
	return a.TotalTasks - a.CompletedTasks
}
