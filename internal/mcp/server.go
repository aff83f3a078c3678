// Package mcp provides an MCP (Model Context Protocol) server that exposes
// the signed-in user's tasks as tools for AI assistants.
package mcp

import (
	"context"
	"fmt"
	"time"

	gomcp "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/valter-silva-au/taskdeck/internal/core"
	"github.com/valter-silva-au/taskdeck/internal/observability"
	"github.com/valter-silva-au/taskdeck/pkg/models"
)

// SessionSource yields the session every tool call runs under.
type SessionSource interface {
	Current() (*models.Session, error)
}

// Server wraps the task services and exposes them as MCP tools.
type Server struct {
	server      *gomcp.Server
	taskMgr     core.TaskManager
	sessions    SessionSource
	defaults    core.QueryParams
	metricsCalc observability.MetricsCalculator
	alertEngine observability.AlertEngine
	now         func() time.Time
}

// Options carries the optional collaborators of the server.
type Options struct {
	Version       string
	QueryDefaults core.QueryParams
	Metrics       observability.MetricsCalculator
	Alerts        observability.AlertEngine
}

// NewServer creates a new MCP server. Metrics and Alerts in opts may be nil.
func NewServer(taskMgr core.TaskManager, sessions SessionSource, opts Options) *Server {
	version := opts.Version
	if version == "" {
		version = "dev"
	}
	defaults := opts.QueryDefaults
	if defaults.SortBy == "" {
		defaults = core.DefaultQueryParams()
	}

	s := &Server{
		taskMgr:     taskMgr,
		sessions:    sessions,
		defaults:    defaults,
		metricsCalc: opts.Metrics,
		alertEngine: opts.Alerts,
		now:         time.Now,
	}

	s.server = gomcp.NewServer(
		&gomcp.Implementation{Name: "tdeck", Version: version},
		nil,
	)

	s.registerTools()

	return s
}

// Run serves MCP over stdio, blocking until the client disconnects or the
// context is cancelled.
func (s *Server) Run(ctx context.Context) error {
	return s.server.Run(ctx, &gomcp.StdioTransport{})
}

// MCPServer returns the underlying mcp.Server for testing purposes.
func (s *Server) MCPServer() *gomcp.Server {
	return s.server
}

// --- Tool input/output types ---

type taskIDInput struct {
	TaskID int64 `json:"task_id" jsonschema:"the numeric task id"`
}

type taskOutput struct {
	ID          int64  `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Status      string `json:"status"`
	Priority    string `json:"priority,omitempty"`
	Category    string `json:"category,omitempty"`
	DueDate     string `json:"due_date,omitempty"`
	ParentID    int64  `json:"parent_id,omitempty"`
	Overdue     bool   `json:"overdue"`
}

type listTasksInput struct {
	Search    string `json:"search,omitempty" jsonschema:"case-insensitive substring matched against title and description"`
	Status    string `json:"status,omitempty" jsonschema:"TODO, IN_PROGRESS, COMPLETED or ALL"`
	Priority  string `json:"priority,omitempty" jsonschema:"LOW, MEDIUM, HIGH, URGENT or ALL"`
	Category  string `json:"category,omitempty" jsonschema:"Work, Personal, Shopping, Health, Education, Other or ALL"`
	SortBy    string `json:"sort_by,omitempty" jsonschema:"dueDate, title or status"`
	SortOrder string `json:"sort_order,omitempty" jsonschema:"asc or desc"`
}

type listTasksOutput struct {
	Tasks []taskOutput `json:"tasks"`
	Count int          `json:"count"`
}

type createTaskInput struct {
	Title       string `json:"title" jsonschema:"task title, at most 50 characters"`
	Description string `json:"description" jsonschema:"task description, at most 200 characters"`
	Status      string `json:"status,omitempty" jsonschema:"TODO, IN_PROGRESS or COMPLETED (default TODO)"`
	Priority    string `json:"priority,omitempty" jsonschema:"LOW, MEDIUM, HIGH or URGENT (default MEDIUM)"`
	Category    string `json:"category,omitempty" jsonschema:"Work, Personal, Shopping, Health, Education or Other (default Work)"`
	DueDate     string `json:"due_date" jsonschema:"due date as YYYY-MM-DD, today or later"`
}

type updateTaskStatusInput struct {
	TaskID int64  `json:"task_id" jsonschema:"the numeric task id"`
	Status string `json:"status" jsonschema:"the new status (TODO, IN_PROGRESS, COMPLETED)"`
}

type messageOutput struct {
	Message string `json:"message"`
}

type analyticsInput struct{}

type analyticsOutput struct {
	TotalTasks           int            `json:"total_tasks"`
	CompletedTasks       int            `json:"completed_tasks"`
	PendingTasks         int            `json:"pending_tasks"`
	OverdueTasks         int            `json:"overdue_tasks"`
	TasksByPriority      map[string]int `json:"tasks_by_priority"`
	CategoryDistribution map[string]int `json:"category_distribution"`
}

type getMetricsInput struct {
	Since string `json:"since,omitempty" jsonschema:"time window for metrics (e.g. 7d, 30d, 24h). Defaults to 7d."`
}

type metricsOutput struct {
	TasksCreated      int            `json:"tasks_created"`
	TasksCompleted    int            `json:"tasks_completed"`
	TasksDeleted      int            `json:"tasks_deleted"`
	StatusTransitions map[string]int `json:"status_transitions"`
	CommentsAdded     int            `json:"comments_added"`
	Logins            int            `json:"logins"`
	SessionsExpired   int            `json:"sessions_expired"`
	Warnings          int            `json:"warnings"`
	EventCount        int            `json:"event_count"`
	OldestEvent       string         `json:"oldest_event,omitempty"`
	NewestEvent       string         `json:"newest_event,omitempty"`
}

type getAlertsInput struct{}

type alertOutput struct {
	ID          string `json:"id"`
	Condition   string `json:"condition"`
	Severity    string `json:"severity"`
	TaskID      int64  `json:"task_id,omitempty"`
	Message     string `json:"message"`
	TriggeredAt string `json:"triggered_at"`
}

type getAlertsOutput struct {
	Alerts []alertOutput `json:"alerts"`
	Count  int           `json:"count"`
}

// --- Tool registration ---

func (s *Server) registerTools() {
	gomcp.AddTool(s.server, &gomcp.Tool{
		Name:        "list_tasks",
		Description: "List the signed-in user's tasks with optional search, status/priority/category filters and sorting.",
	}, s.handleListTasks)

	gomcp.AddTool(s.server, &gomcp.Tool{
		Name:        "get_task",
		Description: "Get a task by its numeric id.",
	}, s.handleGetTask)

	gomcp.AddTool(s.server, &gomcp.Tool{
		Name:        "create_task",
		Description: "Create a task. Title, description and a due date of today or later are required.",
	}, s.handleCreateTask)

	gomcp.AddTool(s.server, &gomcp.Tool{
		Name:        "update_task_status",
		Description: "Change a task's status. Valid statuses: TODO, IN_PROGRESS, COMPLETED.",
	}, s.handleUpdateTaskStatus)

	gomcp.AddTool(s.server, &gomcp.Tool{
		Name:        "delete_task",
		Description: "Permanently delete a task.",
	}, s.handleDeleteTask)

	gomcp.AddTool(s.server, &gomcp.Tool{
		Name:        "get_analytics",
		Description: "Get the backend's task analytics: totals, completion, overdue count, priority and category distribution.",
	}, s.handleGetAnalytics)

	gomcp.AddTool(s.server, &gomcp.Tool{
		Name:        "get_metrics",
		Description: "Get metrics derived from the local event log: tasks created and completed, status transitions, logins.",
	}, s.handleGetMetrics)

	gomcp.AddTool(s.server, &gomcp.Tool{
		Name:        "get_alerts",
		Description: "Evaluate due-date alerts over the user's open tasks (overdue, due soon, too many open).",
	}, s.handleGetAlerts)
}

// --- Tool handlers ---

func (s *Server) session() (*models.Session, *gomcp.CallToolResult) {
	sess, err := s.sessions.Current()
	if err != nil {
		return nil, errorResult(core.UserMessage(err))
	}
	return sess, nil
}

func (s *Server) handleListTasks(ctx context.Context, _ *gomcp.CallToolRequest, input listTasksInput) (*gomcp.CallToolResult, listTasksOutput, error) {
	params, err := s.queryParams(input)
	if err != nil {
		return errorResult(err.Error()), listTasksOutput{}, nil
	}
	sess, res := s.session()
	if res != nil {
		return res, listTasksOutput{}, nil
	}

	tasks, err := s.taskMgr.ListTasks(ctx, sess, params)
	if err != nil {
		return errorResult(core.UserMessage(err)), listTasksOutput{}, nil
	}

	now := s.now()
	out := listTasksOutput{
		Tasks: make([]taskOutput, len(tasks)),
		Count: len(tasks),
	}
	for i, t := range tasks {
		out.Tasks[i] = taskToOutput(t, now)
	}
	return nil, out, nil
}

func (s *Server) queryParams(input listTasksInput) (core.QueryParams, error) {
	params := s.defaults
	params.Search = input.Search
	if input.Status != "" {
		params.Status = input.Status
	}
	if input.Priority != "" {
		params.Priority = input.Priority
	}
	if input.Category != "" {
		params.Category = input.Category
	}
	if input.SortBy != "" {
		key, err := core.ParseSortKey(input.SortBy)
		if err != nil {
			return params, err
		}
		params.SortBy = key
	}
	if input.SortOrder != "" {
		order, err := core.ParseSortOrder(input.SortOrder)
		if err != nil {
			return params, err
		}
		params.SortOrder = order
	}
	return params, nil
}

func (s *Server) handleGetTask(ctx context.Context, _ *gomcp.CallToolRequest, input taskIDInput) (*gomcp.CallToolResult, taskOutput, error) {
	if input.TaskID <= 0 {
		return errorResult("task_id must be a positive number"), taskOutput{}, nil
	}
	sess, res := s.session()
	if res != nil {
		return res, taskOutput{}, nil
	}

	task, err := s.taskMgr.GetTask(ctx, sess, input.TaskID)
	if err != nil {
		return errorResult(fmt.Sprintf("getting task %d: %s", input.TaskID, core.UserMessage(err))), taskOutput{}, nil
	}
	return nil, taskToOutput(*task, s.now()), nil
}

func (s *Server) handleCreateTask(ctx context.Context, _ *gomcp.CallToolRequest, input createTaskInput) (*gomcp.CallToolResult, taskOutput, error) {
	due, err := models.ParseDate(input.DueDate)
	if err != nil {
		return errorResult(fmt.Sprintf("invalid due_date %q: use YYYY-MM-DD", input.DueDate)), taskOutput{}, nil
	}
	sess, res := s.session()
	if res != nil {
		return res, taskOutput{}, nil
	}

	draft := models.NewTaskDraft()
	draft.Title = input.Title
	draft.Description = input.Description
	draft.DueDate = due
	if input.Status != "" {
		draft.Status = models.TaskStatus(input.Status)
	}
	if input.Priority != "" {
		draft.Priority = models.Priority(input.Priority)
	}
	if input.Category != "" {
		draft.Category = models.Category(input.Category)
	}

	task, err := s.taskMgr.CreateTask(ctx, sess, draft)
	if err != nil {
		return errorResult(core.UserMessage(err)), taskOutput{}, nil
	}
	return nil, taskToOutput(*task, s.now()), nil
}

func (s *Server) handleUpdateTaskStatus(ctx context.Context, _ *gomcp.CallToolRequest, input updateTaskStatusInput) (*gomcp.CallToolResult, messageOutput, error) {
	if input.TaskID <= 0 {
		return errorResult("task_id must be a positive number"), messageOutput{}, nil
	}
	status := models.TaskStatus(input.Status)
	if !status.Valid() {
		return errorResult(fmt.Sprintf("invalid status %q: must be one of TODO, IN_PROGRESS, COMPLETED", input.Status)), messageOutput{}, nil
	}
	sess, res := s.session()
	if res != nil {
		return res, messageOutput{}, nil
	}

	if _, err := s.taskMgr.UpdateStatus(ctx, sess, input.TaskID, status); err != nil {
		return errorResult(fmt.Sprintf("updating task %d status: %s", input.TaskID, core.UserMessage(err))), messageOutput{}, nil
	}
	return nil, messageOutput{Message: fmt.Sprintf("task %d status updated to %s", input.TaskID, status)}, nil
}

func (s *Server) handleDeleteTask(ctx context.Context, _ *gomcp.CallToolRequest, input taskIDInput) (*gomcp.CallToolResult, messageOutput, error) {
	if input.TaskID <= 0 {
		return errorResult("task_id must be a positive number"), messageOutput{}, nil
	}
	sess, res := s.session()
	if res != nil {
		return res, messageOutput{}, nil
	}

	if err := s.taskMgr.DeleteTask(ctx, sess, input.TaskID); err != nil {
		return errorResult(fmt.Sprintf("deleting task %d: %s", input.TaskID, core.UserMessage(err))), messageOutput{}, nil
	}
	return nil, messageOutput{Message: fmt.Sprintf("task %d deleted", input.TaskID)}, nil
}

func (s *Server) handleGetAnalytics(ctx context.Context, _ *gomcp.CallToolRequest, _ analyticsInput) (*gomcp.CallToolResult, analyticsOutput, error) {
	sess, res := s.session()
	if res != nil {
		return res, analyticsOutput{}, nil
	}

	a, err := s.taskMgr.Analytics(ctx, sess)
	if err != nil {
		return errorResult(core.UserMessage(err)), analyticsOutput{}, nil
	}

	out := analyticsOutput{
		TotalTasks:     a.TotalTasks,
		CompletedTasks: a.CompletedTasks,
		PendingTasks:   a.PendingTasks(),
		OverdueTasks:   a.OverdueTasks,
		TasksByPriority: map[string]int{
			string(models.PriorityLow):    a.LowPriorityTasks,
			string(models.PriorityMedium): a.MediumPriorityTasks,
			string(models.PriorityHigh):   a.HighPriorityTasks,
			string(models.PriorityUrgent): a.UrgentTasks,
		},
		CategoryDistribution: make(map[string]int, len(a.CategoryDistribution)),
	}
	for _, c := range a.CategoryDistribution {
		out.CategoryDistribution[c.Name] = c.Value
	}
	return nil, out, nil
}

func (s *Server) handleGetMetrics(_ context.Context, _ *gomcp.CallToolRequest, input getMetricsInput) (*gomcp.CallToolResult, metricsOutput, error) {
	if s.metricsCalc == nil {
		return errorResult("metrics calculator not available (event log may be disabled)"), emptyMetricsOutput(), nil
	}

	sinceTime, err := observability.ParseSince(input.Since, s.now())
	if err != nil {
		return errorResult(fmt.Sprintf("parsing since duration: %s", err)), emptyMetricsOutput(), nil
	}

	metrics, err := s.metricsCalc.Calculate(sinceTime)
	if err != nil {
		return errorResult(fmt.Sprintf("calculating metrics: %s", err)), emptyMetricsOutput(), nil
	}

	out := metricsOutput{
		TasksCreated:      metrics.TasksCreated,
		TasksCompleted:    metrics.TasksCompleted,
		TasksDeleted:      metrics.TasksDeleted,
		StatusTransitions: metrics.StatusTransitions,
		CommentsAdded:     metrics.CommentsAdded,
		Logins:            metrics.Logins,
		SessionsExpired:   metrics.SessionsExpired,
		Warnings:          metrics.Warnings,
		EventCount:        metrics.EventCount,
	}
	if metrics.OldestEvent != nil {
		out.OldestEvent = metrics.OldestEvent.Format(time.RFC3339)
	}
	if metrics.NewestEvent != nil {
		out.NewestEvent = metrics.NewestEvent.Format(time.RFC3339)
	}

	return nil, out, nil
}

func (s *Server) handleGetAlerts(ctx context.Context, _ *gomcp.CallToolRequest, _ getAlertsInput) (*gomcp.CallToolResult, getAlertsOutput, error) {
	if s.alertEngine == nil {
		return errorResult("alert engine not available"), getAlertsOutput{}, nil
	}
	sess, res := s.session()
	if res != nil {
		return res, getAlertsOutput{}, nil
	}

	tasks, err := s.taskMgr.ListTasks(ctx, sess, core.DefaultQueryParams())
	if err != nil {
		return errorResult(core.UserMessage(err)), getAlertsOutput{}, nil
	}

	alerts := s.alertEngine.Evaluate(tasks, s.now())
	out := getAlertsOutput{
		Alerts: make([]alertOutput, len(alerts)),
		Count:  len(alerts),
	}
	for i, a := range alerts {
		out.Alerts[i] = alertOutput{
			ID:          a.ID,
			Condition:   a.Condition,
			Severity:    string(a.Severity),
			TaskID:      a.TaskID,
			Message:     a.Message,
			TriggeredAt: a.TriggeredAt.Format(time.RFC3339),
		}
	}

	return nil, out, nil
}

// --- Helpers ---

func taskToOutput(t models.Task, now time.Time) taskOutput {
	out := taskOutput{
		ID:          t.ID,
		Title:       t.Title,
		Description: t.Description,
		Status:      string(t.Status),
		Priority:    string(t.Priority),
		Category:    string(t.Category),
		ParentID:    t.ParentID,
		Overdue:     t.Overdue(now),
	}
	if !t.DueDate.IsZero() {
		out.DueDate = t.DueDate.String()
	}
	return out
}

func emptyMetricsOutput() metricsOutput {
	return metricsOutput{StatusTransitions: make(map[string]int)}
}

func errorResult(msg string) *gomcp.CallToolResult {
	return &gomcp.CallToolResult{
		Content: []gomcp.Content{&gomcp.TextContent{Text: msg}},
		IsError: true,
	}
}
