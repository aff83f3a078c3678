package core

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/valter-silva-au/taskdeck/pkg/models"
)

// SessionExpirer force-logs-out when the backend rejects a session.
type SessionExpirer interface {
	Expire() error
}

// TaskManager defines the task operations available to the CLI, the TUI
// and the MCP server. Every call receives the caller's session explicitly.
// The client keeps no authoritative copy of tasks; callers re-fetch the
// list after each mutation.
type TaskManager interface {
	ListTasks(ctx context.Context, sess *models.Session, params QueryParams) ([]models.Task, error)
	GetTask(ctx context.Context, sess *models.Session, id int64) (*models.Task, error)
	CreateTask(ctx context.Context, sess *models.Session, draft models.TaskDraft) (*models.Task, error)
	UpdateTask(ctx context.Context, sess *models.Session, id int64, draft models.TaskDraft) (*models.Task, error)
	UpdateStatus(ctx context.Context, sess *models.Session, id int64, status models.TaskStatus) (*models.Task, error)
	UpdatePriority(ctx context.Context, sess *models.Session, id int64, priority models.Priority) (*models.Task, error)
	DeleteTask(ctx context.Context, sess *models.Session, id int64) error

	ListComments(ctx context.Context, sess *models.Session, taskID int64) ([]models.Comment, error)
	AddComment(ctx context.Context, sess *models.Session, taskID int64, content string) (*models.Comment, error)

	ListAttachments(ctx context.Context, sess *models.Session, taskID int64) ([]models.Attachment, error)
	UploadAttachment(ctx context.Context, sess *models.Session, taskID int64, fileName string, r io.Reader) (*models.Attachment, error)
	DownloadAttachment(ctx context.Context, sess *models.Session, attachmentID int64, w io.Writer) (int64, error)
	DeleteAttachment(ctx context.Context, sess *models.Session, attachmentID int64) error

	ListDependencies(ctx context.Context, sess *models.Session, taskID int64) ([]models.Task, error)
	AddDependency(ctx context.Context, sess *models.Session, taskID, dependencyID int64) error
	RemoveDependency(ctx context.Context, sess *models.Session, taskID, dependencyID int64) error

	ListSubtasks(ctx context.Context, sess *models.Session, taskID int64) ([]models.Task, error)
	AddSubtask(ctx context.Context, sess *models.Session, parentID int64, title string) (*models.Task, error)
	RemoveSubtask(ctx context.Context, sess *models.Session, subtaskID int64) error

	Analytics(ctx context.Context, sess *models.Session) (*models.Analytics, error)
}

// taskManager implements TaskManager on top of the backend API.
type taskManager struct {
	api     TaskAPI
	expirer SessionExpirer
	events  EventLogger
	now     func() time.Time
}

// NewTaskManager creates a TaskManager. expirer and events may be nil.
func NewTaskManager(api TaskAPI, expirer SessionExpirer, events EventLogger) TaskManager {
	return &taskManager{
		api:     api,
		expirer: expirer,
		events:  events,
		now:     time.Now,
	}
}

// checkSession rejects calls made without a usable session.
func checkSession(sess *models.Session) error {
	if !sess.Valid() {
		return ErrNotLoggedIn
	}
	return nil
}

// wrap turns a backend 401 into ErrSessionExpired after clearing the stored
// session, and annotates every other error with the operation.
func (tm *taskManager) wrap(op string, err error) error {
	if err == nil {
		return nil
	}
	if IsUnauthorized(err) {
		if tm.expirer != nil {
			_ = tm.expirer.Expire()
		}
		return fmt.Errorf("%s: %w", op, errors.Join(ErrSessionExpired, err))
	}
	return fmt.Errorf("%s: %w", op, err)
}

func (tm *taskManager) logEvent(eventType string, data map[string]any) {
	if tm.events != nil {
		_ = tm.events.LogEvent(eventType, data)
	}
}

// ListTasks fetches the session user's tasks and applies the query.
func (tm *taskManager) ListTasks(ctx context.Context, sess *models.Session, params QueryParams) ([]models.Task, error) {
	if err := checkSession(sess); err != nil {
		return nil, err
	}
	tasks, err := tm.api.ListTasks(ctx, sess)
	if err != nil {
		return nil, tm.wrap("listing tasks", err)
	}
	return ApplyQuery(tasks, params), nil
}

func (tm *taskManager) GetTask(ctx context.Context, sess *models.Session, id int64) (*models.Task, error) {
	if err := checkSession(sess); err != nil {
		return nil, err
	}
	task, err := tm.api.GetTask(ctx, sess, id)
	if err != nil {
		return nil, tm.wrap(fmt.Sprintf("getting task %d", id), err)
	}
	return task, nil
}

// CreateTask validates the draft and, only if it passes, submits it. A
// failing draft is returned as FieldErrors without contacting the backend.
func (tm *taskManager) CreateTask(ctx context.Context, sess *models.Session, draft models.TaskDraft) (*models.Task, error) {
	if err := checkSession(sess); err != nil {
		return nil, err
	}
	if errs := ValidateDraft(draft, tm.now()); len(errs) > 0 {
		return nil, errs
	}
	payload := draft.ToTask()
	payload.UserID = sess.User.ID
	task, err := tm.api.CreateTask(ctx, sess, payload)
	if err != nil {
		return nil, tm.wrap("creating task", err)
	}
	tm.logEvent(EventTaskCreated, map[string]any{
		"task_id":  task.ID,
		"priority": string(task.Priority),
		"category": string(task.Category),
	})
	return task, nil
}

// UpdateTask validates the edited draft and replaces the task.
func (tm *taskManager) UpdateTask(ctx context.Context, sess *models.Session, id int64, draft models.TaskDraft) (*models.Task, error) {
	if err := checkSession(sess); err != nil {
		return nil, err
	}
	if errs := ValidateDraft(draft, tm.now()); len(errs) > 0 {
		return nil, errs
	}
	payload := draft.ToTask()
	payload.ID = id
	payload.UserID = sess.User.ID
	task, err := tm.api.UpdateTask(ctx, sess, id, payload)
	if err != nil {
		return nil, tm.wrap(fmt.Sprintf("updating task %d", id), err)
	}
	tm.logEvent(EventTaskUpdated, map[string]any{"task_id": id})
	return task, nil
}

// UpdateStatus is a quick field update that skips draft validation: a task
// whose due date has passed can still be completed.
func (tm *taskManager) UpdateStatus(ctx context.Context, sess *models.Session, id int64, status models.TaskStatus) (*models.Task, error) {
	if !status.Valid() {
		return nil, FieldErrors{FieldStatus: "Status must be one of: " + joinValues(models.Statuses)}
	}
	var oldStatus models.TaskStatus
	updated, err := tm.patch(ctx, sess, id, func(t *models.Task) {
		oldStatus = t.Status
		t.Status = status
	})
	if err != nil {
		return nil, err
	}
	tm.logEvent(EventTaskStatusChanged, map[string]any{
		"task_id":    id,
		"old_status": string(oldStatus),
		"new_status": string(status),
	})
	return updated, nil
}

// UpdatePriority is a quick field update of the priority only.
func (tm *taskManager) UpdatePriority(ctx context.Context, sess *models.Session, id int64, priority models.Priority) (*models.Task, error) {
	if !priority.Valid() {
		return nil, FieldErrors{FieldPriority: "Priority must be one of: " + joinValues(models.Priorities)}
	}
	updated, err := tm.patch(ctx, sess, id, func(t *models.Task) { t.Priority = priority })
	if err != nil {
		return nil, err
	}
	tm.logEvent(EventTaskUpdated, map[string]any{"task_id": id, "priority": string(priority)})
	return updated, nil
}

// patch fetches the current task, applies mutate and writes it back.
func (tm *taskManager) patch(ctx context.Context, sess *models.Session, id int64, mutate func(*models.Task)) (*models.Task, error) {
	current, err := tm.GetTask(ctx, sess, id)
	if err != nil {
		return nil, err
	}
	mutate(current)
	updated, err := tm.api.UpdateTask(ctx, sess, id, *current)
	if err != nil {
		return nil, tm.wrap(fmt.Sprintf("updating task %d", id), err)
	}
	return updated, nil
}

// DeleteTask removes the task outright; there is no soft delete.
func (tm *taskManager) DeleteTask(ctx context.Context, sess *models.Session, id int64) error {
	if err := checkSession(sess); err != nil {
		return err
	}
	if err := tm.api.DeleteTask(ctx, sess, id); err != nil {
		return tm.wrap(fmt.Sprintf("deleting task %d", id), err)
	}
	tm.logEvent(EventTaskDeleted, map[string]any{"task_id": id})
	return nil
}

func (tm *taskManager) ListComments(ctx context.Context, sess *models.Session, taskID int64) ([]models.Comment, error) {
	if err := checkSession(sess); err != nil {
		return nil, err
	}
	comments, err := tm.api.ListComments(ctx, sess, taskID)
	if err != nil {
		return nil, tm.wrap(fmt.Sprintf("listing comments for task %d", taskID), err)
	}
	return comments, nil
}

func (tm *taskManager) AddComment(ctx context.Context, sess *models.Session, taskID int64, content string) (*models.Comment, error) {
	if err := checkSession(sess); err != nil {
		return nil, err
	}
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, FieldErrors{"content": "Comment cannot be empty"}
	}
	c, err := tm.api.AddComment(ctx, sess, taskID, content)
	if err != nil {
		return nil, tm.wrap(fmt.Sprintf("adding comment to task %d", taskID), err)
	}
	tm.logEvent(EventCommentAdded, map[string]any{"task_id": taskID})
	return c, nil
}

func (tm *taskManager) ListAttachments(ctx context.Context, sess *models.Session, taskID int64) ([]models.Attachment, error) {
	if err := checkSession(sess); err != nil {
		return nil, err
	}
	atts, err := tm.api.ListAttachments(ctx, sess, taskID)
	if err != nil {
		return nil, tm.wrap(fmt.Sprintf("listing attachments for task %d", taskID), err)
	}
	return atts, nil
}

func (tm *taskManager) UploadAttachment(ctx context.Context, sess *models.Session, taskID int64, fileName string, r io.Reader) (*models.Attachment, error) {
	if err := checkSession(sess); err != nil {
		return nil, err
	}
	if strings.TrimSpace(fileName) == "" {
		return nil, FieldErrors{"file": "File name is required"}
	}
	att, err := tm.api.UploadAttachment(ctx, sess, taskID, fileName, r)
	if err != nil {
		return nil, tm.wrap(fmt.Sprintf("uploading %s to task %d", fileName, taskID), err)
	}
	tm.logEvent(EventAttachmentUploaded, map[string]any{"task_id": taskID, "file_name": fileName})
	return att, nil
}

func (tm *taskManager) DownloadAttachment(ctx context.Context, sess *models.Session, attachmentID int64, w io.Writer) (int64, error) {
	if err := checkSession(sess); err != nil {
		return 0, err
	}
	n, err := tm.api.DownloadAttachment(ctx, sess, attachmentID, w)
	if err != nil {
		return n, tm.wrap(fmt.Sprintf("downloading attachment %d", attachmentID), err)
	}
	return n, nil
}

func (tm *taskManager) DeleteAttachment(ctx context.Context, sess *models.Session, attachmentID int64) error {
	if err := checkSession(sess); err != nil {
		return err
	}
	if err := tm.api.DeleteAttachment(ctx, sess, attachmentID); err != nil {
		return tm.wrap(fmt.Sprintf("deleting attachment %d", attachmentID), err)
	}
	tm.logEvent(EventAttachmentDeleted, map[string]any{"attachment_id": attachmentID})
	return nil
}

func (tm *taskManager) ListDependencies(ctx context.Context, sess *models.Session, taskID int64) ([]models.Task, error) {
	if err := checkSession(sess); err != nil {
		return nil, err
	}
	deps, err := tm.api.ListDependencies(ctx, sess, taskID)
	if err != nil {
		return nil, tm.wrap(fmt.Sprintf("listing dependencies for task %d", taskID), err)
	}
	return deps, nil
}

// AddDependency records that taskID cannot complete before dependencyID.
func (tm *taskManager) AddDependency(ctx context.Context, sess *models.Session, taskID, dependencyID int64) error {
	if err := checkSession(sess); err != nil {
		return err
	}
	if taskID == dependencyID {
		return ErrSelfDependency
	}
	if err := tm.api.AddDependency(ctx, sess, taskID, dependencyID); err != nil {
		return tm.wrap(fmt.Sprintf("adding dependency %d to task %d", dependencyID, taskID), err)
	}
	tm.logEvent(EventDependencyAdded, map[string]any{"task_id": taskID, "dependency_id": dependencyID})
	return nil
}

func (tm *taskManager) RemoveDependency(ctx context.Context, sess *models.Session, taskID, dependencyID int64) error {
	if err := checkSession(sess); err != nil {
		return err
	}
	if err := tm.api.RemoveDependency(ctx, sess, taskID, dependencyID); err != nil {
		return tm.wrap(fmt.Sprintf("removing dependency %d from task %d", dependencyID, taskID), err)
	}
	tm.logEvent(EventDependencyRemoved, map[string]any{"task_id": taskID, "dependency_id": dependencyID})
	return nil
}

func (tm *taskManager) ListSubtasks(ctx context.Context, sess *models.Session, taskID int64) ([]models.Task, error) {
	if err := checkSession(sess); err != nil {
		return nil, err
	}
	subs, err := tm.api.ListSubtasks(ctx, sess, taskID)
	if err != nil {
		return nil, tm.wrap(fmt.Sprintf("listing subtasks for task %d", taskID), err)
	}
	return subs, nil
}

// AddSubtask creates a child task that inherits the parent's category,
// starting as TODO with MEDIUM priority.
func (tm *taskManager) AddSubtask(ctx context.Context, sess *models.Session, parentID int64, title string) (*models.Task, error) {
	if err := checkSession(sess); err != nil {
		return nil, err
	}
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, FieldErrors{FieldTitle: "Title is required"}
	}
	parent, err := tm.GetTask(ctx, sess, parentID)
	if err != nil {
		return nil, err
	}
	sub, err := tm.api.AddSubtask(ctx, sess, parentID, models.Task{
		Title:    title,
		Status:   models.StatusTodo,
		Priority: models.PriorityMedium,
		Category: parent.Category,
		ParentID: parentID,
		UserID:   sess.User.ID,
	})
	if err != nil {
		return nil, tm.wrap(fmt.Sprintf("adding subtask to task %d", parentID), err)
	}
	tm.logEvent(EventSubtaskAdded, map[string]any{"task_id": sub.ID, "parent_id": parentID})
	return sub, nil
}

// RemoveSubtask deletes the subtask; subtasks are ordinary tasks on the
// backend.
func (tm *taskManager) RemoveSubtask(ctx context.Context, sess *models.Session, subtaskID int64) error {
	return tm.DeleteTask(ctx, sess, subtaskID)
}

func (tm *taskManager) Analytics(ctx context.Context, sess *models.Session) (*models.Analytics, error) {
	if err := checkSession(sess); err != nil {
		return nil, err
	}
	a, err := tm.api.GetAnalytics(ctx, sess)
	if err != nil {
		return nil, tm.wrap("loading analytics", err)
	}
	return a, nil
}
