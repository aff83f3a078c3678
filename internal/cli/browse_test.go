package cli

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/valter-silva-au/taskdeck/internal/core"
	"github.com/valter-silva-au/taskdeck/pkg/models"
)

func newTestBrowseModel(tm core.TaskManager) browseModel {
	m := newBrowseModel(context.Background(), tm, cliSession, core.DefaultQueryParams())
	m.now = func() time.Time { return cliNow }
	return m
}

// loaded returns a model that has received sampleTasks.
func loaded(t *testing.T, tm core.TaskManager) browseModel {
	t.Helper()
	m := newTestBrowseModel(tm)
	return update(t, m, tasksLoadedMsg{tasks: sampleTasks()})
}

func update(t *testing.T, m browseModel, msg tea.Msg) browseModel {
	t.Helper()
	next, _ := m.Update(msg)
	bm, ok := next.(browseModel)
	if !ok {
		t.Fatalf("Update returned %T", next)
	}
	return bm
}

func key(s string) tea.KeyMsg {
	switch s {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case "backspace":
		return tea.KeyMsg{Type: tea.KeyBackspace}
	case "down":
		return tea.KeyMsg{Type: tea.KeyDown}
	case "up":
		return tea.KeyMsg{Type: tea.KeyUp}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func visibleIDs(m browseModel) []int64 {
	ids := make([]int64, len(m.visible))
	for i, t := range m.visible {
		ids[i] = t.ID
	}
	return ids
}

func equalIDs(a, b []int64) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestBrowse_InitLoadsAllTasks(t *testing.T) {
	var got core.QueryParams
	m := newTestBrowseModel(&fakeTaskManager{listFn: func(p core.QueryParams) ([]models.Task, error) {
		got = p
		return sampleTasks(), nil
	}})

	cmd := m.Init()
	if cmd == nil {
		t.Fatal("Init should return a load command")
	}
	msg, ok := cmd().(tasksLoadedMsg)
	if !ok {
		t.Fatalf("Init command produced %T", msg)
	}
	if len(msg.tasks) != 3 || got != core.DefaultQueryParams() {
		t.Errorf("loaded %d tasks with %+v", len(msg.tasks), got)
	}

	if !strings.Contains(m.View(), "Loading tasks...") {
		t.Error("view should show loading before tasks arrive")
	}
	m = update(t, m, msg)
	if !equalIDs(visibleIDs(m), []int64{3, 1, 2}) {
		t.Errorf("visible = %v, want due date order", visibleIDs(m))
	}
}

func TestBrowse_View(t *testing.T) {
	m := loaded(t, &fakeTaskManager{})
	view := m.View()

	for _, want := range []string{"taskdeck", "Pay rent", "(overdue)", "sort: dueDate asc", "(3/3)"} {
		if !strings.Contains(view, want) {
			t.Errorf("view missing %q:\n%s", want, view)
		}
	}
	if strings.Count(view, "(overdue)") != 1 {
		t.Errorf("only the open past-due task is overdue:\n%s", view)
	}
}

func TestBrowse_Search(t *testing.T) {
	m := loaded(t, &fakeTaskManager{})

	m = update(t, m, key("/"))
	if !m.searching {
		t.Fatal("/ should enter search mode")
	}
	for _, r := range "RENTx" {
		m = update(t, m, key(string(r)))
	}
	m = update(t, m, key("backspace"))
	if m.params.Search != "RENT" {
		t.Errorf("search = %q", m.params.Search)
	}
	if !equalIDs(visibleIDs(m), []int64{1}) {
		t.Errorf("visible = %v, want case-insensitive match on Pay rent", visibleIDs(m))
	}

	m = update(t, m, key("enter"))
	if m.searching {
		t.Error("enter should leave search mode")
	}
	m = update(t, m, key("q"))
	if m.params.Search != "RENT" {
		t.Error("q outside search mode must not edit the search")
	}
}

func TestBrowse_FilterCycles(t *testing.T) {
	m := loaded(t, &fakeTaskManager{})

	m = update(t, m, key("s"))
	if m.params.Status != string(models.StatusTodo) || !equalIDs(visibleIDs(m), []int64{1}) {
		t.Errorf("status %q visible %v", m.params.Status, visibleIDs(m))
	}
	for range models.Statuses {
		m = update(t, m, key("s"))
	}
	if m.params.Status != core.FilterAll {
		t.Errorf("status cycle should wrap to ALL, got %q", m.params.Status)
	}

	m = update(t, m, key("p"))
	if m.params.Priority != string(models.PriorityLow) || !equalIDs(visibleIDs(m), []int64{3}) {
		t.Errorf("priority %q visible %v", m.params.Priority, visibleIDs(m))
	}

	m = update(t, m, key("c"))
	if m.params.Category != string(models.CategoryWork) || len(m.visible) != 0 {
		t.Errorf("category %q visible %v", m.params.Category, visibleIDs(m))
	}
	if !strings.Contains(m.View(), "No tasks match.") {
		t.Error("empty view should say so")
	}
}

func TestBrowse_SortKeys(t *testing.T) {
	m := loaded(t, &fakeTaskManager{})

	m = update(t, m, key("o"))
	if m.params.SortBy != core.SortByTitle || !equalIDs(visibleIDs(m), []int64{3, 1, 2}) {
		t.Errorf("title sort: %s %v", m.params.SortBy, visibleIDs(m))
	}
	m = update(t, m, key("r"))
	if m.params.SortOrder != core.SortDesc || !equalIDs(visibleIDs(m), []int64{2, 1, 3}) {
		t.Errorf("title desc: %s %v", m.params.SortOrder, visibleIDs(m))
	}
	m = update(t, m, key("o"))
	if m.params.SortBy != core.SortByStatus {
		t.Errorf("sort key = %s", m.params.SortBy)
	}
	m = update(t, m, key("o"))
	if m.params.SortBy != core.SortByDueDate {
		t.Errorf("sort key should wrap to dueDate, got %s", m.params.SortBy)
	}
}

func TestBrowse_CursorClamped(t *testing.T) {
	m := loaded(t, &fakeTaskManager{})

	m = update(t, m, key("up"))
	if m.cursor != 0 {
		t.Errorf("cursor = %d", m.cursor)
	}
	for i := 0; i < 5; i++ {
		m = update(t, m, key("j"))
	}
	if m.cursor != 2 {
		t.Errorf("cursor = %d, want last row", m.cursor)
	}

	m = update(t, m, key("s"))
	if m.cursor != 0 {
		t.Errorf("cursor = %d after filtering to one row", m.cursor)
	}
}

func TestBrowse_DeleteConfirm(t *testing.T) {
	var deleted []int64
	tm := &fakeTaskManager{
		deleteFn: func(id int64) error {
			deleted = append(deleted, id)
			return nil
		},
		listFn: func(core.QueryParams) ([]models.Task, error) { return sampleTasks()[:2], nil },
	}
	m := loaded(t, tm)

	m = update(t, m, key("d"))
	if m.confirmDelete != 3 {
		t.Fatalf("confirmDelete = %d, want selected task 3", m.confirmDelete)
	}
	if !strings.Contains(m.View(), "Delete task #3?") {
		t.Error("view should ask for confirmation")
	}
	m = update(t, m, key("n"))
	if m.confirmDelete != 0 || len(deleted) != 0 || m.notice != "Delete cancelled." {
		t.Errorf("declined: confirm=%d deleted=%v notice=%q", m.confirmDelete, deleted, m.notice)
	}

	m = update(t, m, key("d"))
	next, cmd := m.Update(key("y"))
	m = next.(browseModel)
	if cmd == nil {
		t.Fatal("y should return a delete command")
	}
	changed := cmd().(taskChangedMsg)
	if changed.err != nil || len(deleted) != 1 || deleted[0] != 3 {
		t.Fatalf("delete: %+v %v", changed, deleted)
	}

	next, cmd = m.Update(changed)
	m = next.(browseModel)
	if m.notice != "Deleted task #3." || cmd == nil {
		t.Fatalf("notice = %q, reload scheduled = %v", m.notice, cmd != nil)
	}
	m = update(t, m, cmd())
	if !equalIDs(visibleIDs(m), []int64{1, 2}) {
		t.Errorf("after reload visible = %v", visibleIDs(m))
	}
}

func TestBrowse_ToggleCompleted(t *testing.T) {
	var got []models.TaskStatus
	tm := &fakeTaskManager{statusFn: func(id int64, s models.TaskStatus) (*models.Task, error) {
		got = append(got, s)
		return &models.Task{ID: id, Status: s}, nil
	}}
	m := loaded(t, tm)

	// Cursor starts on task 3, which is completed.
	_, cmd := m.Update(key("x"))
	if msg := cmd().(taskChangedMsg); msg.err != nil || msg.notice != "Task #3 is now TODO." {
		t.Errorf("reopen: %+v", msg)
	}

	m = update(t, m, key("j"))
	_, cmd = m.Update(key("x"))
	cmd()
	if len(got) != 2 || got[0] != models.StatusTodo || got[1] != models.StatusCompleted {
		t.Errorf("statuses sent = %v", got)
	}
}

func TestBrowse_SessionExpiredShownNotFatal(t *testing.T) {
	m := loaded(t, &fakeTaskManager{})

	next, cmd := m.Update(taskChangedMsg{err: core.ErrSessionExpired})
	m = next.(browseModel)
	if cmd != nil {
		t.Error("an error should not quit or reload")
	}
	view := m.View()
	if !strings.Contains(view, "Session expired. Please log in again.") || !strings.Contains(view, "tdeck login") {
		t.Errorf("view should explain the expiry:\n%s", view)
	}
	if len(m.visible) != 3 {
		t.Error("tasks already loaded should stay visible")
	}
}

func TestBrowse_LoadError(t *testing.T) {
	m := newTestBrowseModel(&fakeTaskManager{})
	m = update(t, m, tasksLoadedMsg{err: errors.New("backend unavailable")})
	if m.loading {
		t.Error("loading should end on error")
	}
	if !strings.Contains(m.View(), "backend unavailable") {
		t.Errorf("view:\n%s", m.View())
	}
}

func TestBrowse_Quit(t *testing.T) {
	m := loaded(t, &fakeTaskManager{})
	_, cmd := m.Update(key("q"))
	if cmd == nil {
		t.Fatal("q should quit")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("q should produce tea.QuitMsg")
	}
}

func TestBrowseCommand_NilTaskManager(t *testing.T) {
	origTaskMgr := TaskMgr
	defer func() { TaskMgr = origTaskMgr }()
	TaskMgr = nil

	_, err := runCmd(t, browseCmd, "", nil)
	if err == nil || !strings.Contains(err.Error(), "task manager not initialized") {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestNextIn(t *testing.T) {
	if got := nextIn(statusCycle, "bogus"); got != core.FilterAll {
		t.Errorf("unknown value should restart the cycle, got %q", got)
	}
	if got := nextIn(statusCycle, string(models.StatusCompleted)); got != core.FilterAll {
		t.Errorf("cycle should wrap, got %q", got)
	}
}
