package cli

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/valter-silva-au/taskdeck/internal/core"
	"github.com/valter-silva-au/taskdeck/pkg/models"
)

func TestTaskList_NilTaskManager(t *testing.T) {
	origTaskMgr := TaskMgr
	defer func() { TaskMgr = origTaskMgr }()
	TaskMgr = nil

	_, err := runCmd(t, taskListCmd, "", nil)
	if err == nil || !strings.Contains(err.Error(), "task manager not initialized") {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestTaskList_NotLoggedIn(t *testing.T) {
	auth := withServices(t, &fakeTaskManager{})
	auth.session = nil

	_, err := runCmd(t, taskListCmd, "", nil)
	if !errors.Is(err, core.ErrNotLoggedIn) {
		t.Fatalf("err = %v, want ErrNotLoggedIn", err)
	}
}

func TestTaskList_Table(t *testing.T) {
	var got core.QueryParams
	tm := &fakeTaskManager{listFn: func(p core.QueryParams) ([]models.Task, error) {
		got = p
		return sampleTasks(), nil
	}}
	withServices(t, tm)

	out, err := runCmd(t, taskListCmd, "", nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != core.DefaultQueryParams() {
		t.Errorf("params = %+v, want defaults", got)
	}
	for _, want := range []string{"#1", "Pay rent (overdue)", "Write report", "Buy milk", "3 task(s)"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
	if strings.Contains(out, "Buy milk (overdue)") {
		t.Error("completed tasks are never overdue")
	}
	if len(tm.sessionsReceived) != 1 || tm.sessionsReceived[0] != cliSession {
		t.Errorf("session not passed through: %v", tm.sessionsReceived)
	}
}

func TestTaskList_FlagsOverrideDefaults(t *testing.T) {
	var got core.QueryParams
	withServices(t, &fakeTaskManager{listFn: func(p core.QueryParams) ([]models.Task, error) {
		got = p
		return nil, nil
	}})

	out, err := runCmd(t, taskListCmd, "", nil,
		"search=rent", "status=todo", "priority=high", "category=Personal", "sort-by=title", "order=DESC")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := core.QueryParams{
		Search: "rent", Status: "TODO", Priority: "HIGH", Category: "Personal",
		SortBy: core.SortByTitle, SortOrder: core.SortDesc,
	}
	if got != want {
		t.Errorf("params = %+v, want %+v", got, want)
	}
	if !strings.Contains(out, "No tasks found.") {
		t.Errorf("output = %q", out)
	}
}

func TestTaskList_ConfiguredDefaults(t *testing.T) {
	var got core.QueryParams
	withServices(t, &fakeTaskManager{listFn: func(p core.QueryParams) ([]models.Task, error) {
		got = p
		return nil, nil
	}})
	QueryDefaults = core.QueryParams{SortBy: core.SortByStatus, SortOrder: core.SortDesc, Locale: "sv"}

	if _, err := runCmd(t, taskListCmd, "", nil); err != nil {
		t.Fatal(err)
	}
	if got.SortBy != core.SortByStatus || got.SortOrder != core.SortDesc || got.Locale != "sv" {
		t.Errorf("params = %+v, want configured defaults", got)
	}
}

func TestTaskList_InvalidSort(t *testing.T) {
	withServices(t, &fakeTaskManager{})

	if _, err := runCmd(t, taskListCmd, "", nil, "sort-by=priority"); err == nil {
		t.Error("expected error for unknown sort key")
	}
	if _, err := runCmd(t, taskListCmd, "", nil, "order=sideways"); err == nil {
		t.Error("expected error for unknown order")
	}
}

func TestTaskList_JSON(t *testing.T) {
	withServices(t, &fakeTaskManager{listFn: func(core.QueryParams) ([]models.Task, error) {
		return sampleTasks(), nil
	}})

	out, err := runCmd(t, taskListCmd, "", nil, "json=true")
	if err != nil {
		t.Fatal(err)
	}
	var tasks []models.Task
	if err := json.Unmarshal([]byte(out), &tasks); err != nil {
		t.Fatalf("output is not a JSON task list: %v\n%s", err, out)
	}
	if len(tasks) != 3 || tasks[0].Title != "Pay rent" {
		t.Errorf("decoded = %+v", tasks)
	}
}

func TestTaskList_SessionExpired(t *testing.T) {
	withServices(t, &fakeTaskManager{listFn: func(core.QueryParams) ([]models.Task, error) {
		return nil, core.ErrSessionExpired
	}})

	_, err := runCmd(t, taskListCmd, "", nil)
	if !errors.Is(err, core.ErrSessionExpired) {
		t.Fatalf("err = %v", err)
	}
	if !strings.Contains(ErrorMessage(err), "Session expired") {
		t.Errorf("message = %q", ErrorMessage(err))
	}
}

func TestTaskShow(t *testing.T) {
	task := sampleTasks()[1]
	task.Description = "Quarterly numbers"
	withServices(t, &fakeTaskManager{
		getFn: func(id int64) (*models.Task, error) {
			if id != 2 {
				t.Errorf("GetTask id = %d", id)
			}
			return &task, nil
		},
		commentsFn: func(int64) ([]models.Comment, error) {
			return []models.Comment{{ID: 5, Content: "Started on it", UserName: "Ada"}}, nil
		},
		attachmentsFn: func(int64) ([]models.Attachment, error) {
			return []models.Attachment{{ID: 9, FileName: "draft.pdf", FileSize: 2048}}, nil
		},
		depsFn: func(int64) ([]models.Task, error) {
			return []models.Task{sampleTasks()[0]}, nil
		},
		subtasksFn: func(int64) ([]models.Task, error) { return nil, nil },
	})

	out, err := runCmd(t, taskShowCmd, "", []string{"2"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, want := range []string{
		"#2 Write report", "Quarterly numbers", "IN_PROGRESS",
		"Comments (1)", "Started on it",
		"Attachments (1)", "draft.pdf",
		"Depends on (1)", "Pay rent",
		"Subtasks (0)",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestTaskShow_InvalidID(t *testing.T) {
	withServices(t, &fakeTaskManager{})
	_, err := runCmd(t, taskShowCmd, "", []string{"abc"})
	if err == nil || !strings.Contains(err.Error(), "invalid task id") {
		t.Fatalf("err = %v", err)
	}
}

func TestTaskCreate(t *testing.T) {
	var got models.TaskDraft
	withServices(t, &fakeTaskManager{createFn: func(d models.TaskDraft) (*models.Task, error) {
		got = d
		task := d.ToTask()
		task.ID = 77
		return &task, nil
	}})

	out, err := runCmd(t, taskCreateCmd, "", nil,
		"title=Plan trip", "description=Book flights", "due=2025-07-01", "priority=urgent")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Title != "Plan trip" || got.Description != "Book flights" {
		t.Errorf("draft = %+v", got)
	}
	if got.Priority != models.PriorityUrgent {
		t.Errorf("priority = %q, want URGENT", got.Priority)
	}
	if got.Status != models.StatusTodo || got.Category != models.CategoryWork {
		t.Errorf("defaults not applied: %+v", got)
	}
	if got.DueDate.String() != "2025-07-01" {
		t.Errorf("due = %v", got.DueDate)
	}
	if !strings.Contains(out, "Created task #77") {
		t.Errorf("output = %q", out)
	}
}

func TestTaskCreate_BadDueDate(t *testing.T) {
	withServices(t, &fakeTaskManager{})

	_, err := runCmd(t, taskCreateCmd, "", nil, "title=x", "due=tomorrow")
	var fe core.FieldErrors
	if !errors.As(err, &fe) {
		t.Fatalf("err = %v, want FieldErrors", err)
	}
	if _, ok := fe[core.FieldDueDate]; !ok {
		t.Errorf("field errors = %v", fe)
	}
}

func TestTaskCreate_ValidationErrorsReported(t *testing.T) {
	withServices(t, &fakeTaskManager{createFn: func(d models.TaskDraft) (*models.Task, error) {
		return nil, core.ValidateDraft(d, cliNow).Err()
	}})

	_, err := runCmd(t, taskCreateCmd, "", nil)
	if err == nil {
		t.Fatal("expected validation error for empty draft")
	}
	msg := ErrorMessage(err)
	for _, field := range []string{core.FieldTitle, core.FieldDescription, core.FieldDueDate} {
		if !strings.Contains(msg, field+":") {
			t.Errorf("message missing %s:\n%s", field, msg)
		}
	}
}

func TestTaskEdit_KeepsUnchangedFields(t *testing.T) {
	current := sampleTasks()[1]
	current.Description = "Quarterly numbers"
	var got models.TaskDraft
	withServices(t, &fakeTaskManager{
		getFn: func(int64) (*models.Task, error) { return &current, nil },
		updateFn: func(id int64, d models.TaskDraft) (*models.Task, error) {
			if id != 2 {
				t.Errorf("UpdateTask id = %d", id)
			}
			got = d
			task := d.ToTask()
			task.ID = id
			return &task, nil
		},
	})

	out, err := runCmd(t, taskEditCmd, "", []string{"2"}, "title=Write final report")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Title != "Write final report" {
		t.Errorf("title = %q", got.Title)
	}
	if got.Description != current.Description || got.Status != current.Status ||
		got.Priority != current.Priority || got.DueDate != current.DueDate {
		t.Errorf("unchanged fields were modified: %+v", got)
	}
	if !strings.Contains(out, "Updated task #2") {
		t.Errorf("output = %q", out)
	}
}

func TestTaskDelete_Confirm(t *testing.T) {
	var deleted []int64
	withServices(t, &fakeTaskManager{deleteFn: func(id int64) error {
		deleted = append(deleted, id)
		return nil
	}})

	out, err := runCmd(t, taskDeleteCmd, "n\n", []string{"3"})
	if err != nil {
		t.Fatal(err)
	}
	if len(deleted) != 0 || !strings.Contains(out, "Cancelled.") {
		t.Errorf("declined delete: deleted=%v out=%q", deleted, out)
	}

	out, err = runCmd(t, taskDeleteCmd, "yes\n", []string{"3"})
	if err != nil {
		t.Fatal(err)
	}
	if len(deleted) != 1 || deleted[0] != 3 || !strings.Contains(out, "Deleted task #3") {
		t.Errorf("confirmed delete: deleted=%v out=%q", deleted, out)
	}
}

func TestTaskDelete_YesFlag(t *testing.T) {
	called := false
	withServices(t, &fakeTaskManager{deleteFn: func(int64) error {
		called = true
		return nil
	}})

	if _, err := runCmd(t, taskDeleteCmd, "", []string{"3"}, "yes=true"); err != nil {
		t.Fatal(err)
	}
	if !called {
		t.Error("--yes should delete without prompting")
	}
}

func TestTaskStatus(t *testing.T) {
	var gotStatus models.TaskStatus
	withServices(t, &fakeTaskManager{statusFn: func(id int64, s models.TaskStatus) (*models.Task, error) {
		gotStatus = s
		return &models.Task{ID: id, Status: s}, nil
	}})

	out, err := runCmd(t, taskStatusCmd, "", []string{"4", "in_progress"})
	if err != nil {
		t.Fatal(err)
	}
	if gotStatus != models.StatusInProgress {
		t.Errorf("status = %q", gotStatus)
	}
	if !strings.Contains(out, "Task #4 is now IN_PROGRESS") {
		t.Errorf("output = %q", out)
	}
}

func TestTaskStatus_NilTaskManager(t *testing.T) {
	origTaskMgr := TaskMgr
	defer func() { TaskMgr = origTaskMgr }()
	TaskMgr = nil

	_, err := runCmd(t, taskStatusCmd, "", []string{"4", "TODO"})
	if err == nil || !strings.Contains(err.Error(), "task manager not initialized") {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestTaskPriority(t *testing.T) {
	var gotPriority models.Priority
	withServices(t, &fakeTaskManager{priorityFn: func(id int64, p models.Priority) (*models.Task, error) {
		gotPriority = p
		return &models.Task{ID: id, Priority: p}, nil
	}})

	out, err := runCmd(t, taskPriorityCmd, "", []string{"4", "urgent"})
	if err != nil {
		t.Fatal(err)
	}
	if gotPriority != models.PriorityUrgent {
		t.Errorf("priority = %q", gotPriority)
	}
	if !strings.Contains(out, "Task #4 priority is now URGENT") {
		t.Errorf("output = %q", out)
	}
}
