package cli

import (
	"bytes"
	"context"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/valter-silva-au/taskdeck/internal/core"
	"github.com/valter-silva-au/taskdeck/pkg/models"
)

// cliNow is a fixed clock for output that depends on today.
var cliNow = time.Date(2025, 6, 15, 9, 0, 0, 0, time.UTC)

var cliSession = &models.Session{
	Token: "tok",
	User:  models.User{ID: 7, Name: "Ada", Email: "ada@example.com"},
}

// fakeTaskManager implements core.TaskManager with overridable functions.
// Calls without an override panic through the nil embedded interface.
type fakeTaskManager struct {
	core.TaskManager

	listFn           func(params core.QueryParams) ([]models.Task, error)
	getFn            func(id int64) (*models.Task, error)
	createFn         func(draft models.TaskDraft) (*models.Task, error)
	updateFn         func(id int64, draft models.TaskDraft) (*models.Task, error)
	statusFn         func(id int64, status models.TaskStatus) (*models.Task, error)
	priorityFn       func(id int64, priority models.Priority) (*models.Task, error)
	deleteFn         func(id int64) error
	commentsFn       func(taskID int64) ([]models.Comment, error)
	addCommentFn     func(taskID int64, content string) (*models.Comment, error)
	attachmentsFn    func(taskID int64) ([]models.Attachment, error)
	uploadFn         func(taskID int64, name string, r io.Reader) (*models.Attachment, error)
	downloadFn       func(id int64, w io.Writer) (int64, error)
	deleteAttachFn   func(id int64) error
	depsFn           func(taskID int64) ([]models.Task, error)
	addDepFn         func(taskID, depID int64) error
	removeDepFn      func(taskID, depID int64) error
	subtasksFn       func(taskID int64) ([]models.Task, error)
	addSubtaskFn     func(parentID int64, title string) (*models.Task, error)
	removeSubtaskFn  func(id int64) error
	analyticsFn      func() (*models.Analytics, error)
	sessionsReceived []*models.Session
}

func (f *fakeTaskManager) seen(sess *models.Session) {
	f.sessionsReceived = append(f.sessionsReceived, sess)
}

func (f *fakeTaskManager) ListTasks(_ context.Context, sess *models.Session, params core.QueryParams) ([]models.Task, error) {
	f.seen(sess)
	return f.listFn(params)
}

func (f *fakeTaskManager) GetTask(_ context.Context, sess *models.Session, id int64) (*models.Task, error) {
	f.seen(sess)
	return f.getFn(id)
}

func (f *fakeTaskManager) CreateTask(_ context.Context, sess *models.Session, draft models.TaskDraft) (*models.Task, error) {
	f.seen(sess)
	return f.createFn(draft)
}

func (f *fakeTaskManager) UpdateTask(_ context.Context, sess *models.Session, id int64, draft models.TaskDraft) (*models.Task, error) {
	f.seen(sess)
	return f.updateFn(id, draft)
}

func (f *fakeTaskManager) UpdateStatus(_ context.Context, sess *models.Session, id int64, status models.TaskStatus) (*models.Task, error) {
	f.seen(sess)
	return f.statusFn(id, status)
}

func (f *fakeTaskManager) UpdatePriority(_ context.Context, sess *models.Session, id int64, priority models.Priority) (*models.Task, error) {
	f.seen(sess)
	return f.priorityFn(id, priority)
}

func (f *fakeTaskManager) DeleteTask(_ context.Context, sess *models.Session, id int64) error {
	f.seen(sess)
	return f.deleteFn(id)
}

func (f *fakeTaskManager) ListComments(_ context.Context, sess *models.Session, taskID int64) ([]models.Comment, error) {
	f.seen(sess)
	return f.commentsFn(taskID)
}

func (f *fakeTaskManager) AddComment(_ context.Context, sess *models.Session, taskID int64, content string) (*models.Comment, error) {
	f.seen(sess)
	return f.addCommentFn(taskID, content)
}

func (f *fakeTaskManager) ListAttachments(_ context.Context, sess *models.Session, taskID int64) ([]models.Attachment, error) {
	f.seen(sess)
	return f.attachmentsFn(taskID)
}

func (f *fakeTaskManager) UploadAttachment(_ context.Context, sess *models.Session, taskID int64, name string, r io.Reader) (*models.Attachment, error) {
	f.seen(sess)
	return f.uploadFn(taskID, name, r)
}

func (f *fakeTaskManager) DownloadAttachment(_ context.Context, sess *models.Session, id int64, w io.Writer) (int64, error) {
	f.seen(sess)
	return f.downloadFn(id, w)
}

func (f *fakeTaskManager) DeleteAttachment(_ context.Context, sess *models.Session, id int64) error {
	f.seen(sess)
	return f.deleteAttachFn(id)
}

func (f *fakeTaskManager) ListDependencies(_ context.Context, sess *models.Session, taskID int64) ([]models.Task, error) {
	f.seen(sess)
	return f.depsFn(taskID)
}

func (f *fakeTaskManager) AddDependency(_ context.Context, sess *models.Session, taskID, depID int64) error {
	f.seen(sess)
	return f.addDepFn(taskID, depID)
}

func (f *fakeTaskManager) RemoveDependency(_ context.Context, sess *models.Session, taskID, depID int64) error {
	f.seen(sess)
	return f.removeDepFn(taskID, depID)
}

func (f *fakeTaskManager) ListSubtasks(_ context.Context, sess *models.Session, taskID int64) ([]models.Task, error) {
	f.seen(sess)
	return f.subtasksFn(taskID)
}

func (f *fakeTaskManager) AddSubtask(_ context.Context, sess *models.Session, parentID int64, title string) (*models.Task, error) {
	f.seen(sess)
	return f.addSubtaskFn(parentID, title)
}

func (f *fakeTaskManager) RemoveSubtask(_ context.Context, sess *models.Session, id int64) error {
	f.seen(sess)
	return f.removeSubtaskFn(id)
}

func (f *fakeTaskManager) Analytics(_ context.Context, sess *models.Session) (*models.Analytics, error) {
	f.seen(sess)
	return f.analyticsFn()
}

// fakeAuth implements core.AuthService.
type fakeAuth struct {
	session    *models.Session
	currentErr error
	loginErr   error

	loginEmail, loginPassword string
	signupName                string
	loggedOut                 bool
}

func (a *fakeAuth) Login(_ context.Context, email, password string) (*models.Session, error) {
	a.loginEmail, a.loginPassword = email, password
	if a.loginErr != nil {
		return nil, a.loginErr
	}
	return cliSession, nil
}

func (a *fakeAuth) Signup(_ context.Context, name, email, password string) (*models.Session, error) {
	a.signupName = name
	a.loginEmail, a.loginPassword = email, password
	if a.loginErr != nil {
		return nil, a.loginErr
	}
	return cliSession, nil
}

func (a *fakeAuth) Logout() error {
	a.loggedOut = true
	a.session = nil
	return nil
}

func (a *fakeAuth) Current() (*models.Session, error) {
	if a.currentErr != nil {
		return nil, a.currentErr
	}
	if a.session == nil {
		return nil, core.ErrNotLoggedIn
	}
	return a.session, nil
}

func (a *fakeAuth) Expire() error {
	a.session = nil
	return nil
}

// withServices installs tm and a logged-in fakeAuth for the duration of
// the test, and pins the clock.
func withServices(t *testing.T, tm core.TaskManager) *fakeAuth {
	t.Helper()
	origTaskMgr, origAuth, origNow, origDefaults := TaskMgr, Auth, now, QueryDefaults
	t.Cleanup(func() {
		TaskMgr, Auth, now, QueryDefaults = origTaskMgr, origAuth, origNow, origDefaults
	})

	auth := &fakeAuth{session: cliSession}
	TaskMgr = tm
	Auth = auth
	now = func() time.Time { return cliNow }
	QueryDefaults = core.DefaultQueryParams()
	return auth
}

// runCmd invokes cmd's RunE with output captured. Flags are reset to their
// defaults before flagArgs ("name=value") are applied and again afterwards.
func runCmd(t *testing.T, cmd *cobra.Command, stdin string, args []string, flagArgs ...string) (string, error) {
	t.Helper()
	resetFlags(cmd)
	t.Cleanup(func() { resetFlags(cmd) })
	for _, fa := range flagArgs {
		name, value, _ := strings.Cut(fa, "=")
		if err := cmd.Flags().Set(name, value); err != nil {
			t.Fatalf("setting --%s: %v", name, err)
		}
	}

	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetIn(strings.NewReader(stdin))
	err := cmd.RunE(cmd, args)
	return out.String(), err
}

func resetFlags(cmd *cobra.Command) {
	cmd.Flags().VisitAll(func(f *pflag.Flag) {
		_ = f.Value.Set(f.DefValue)
		f.Changed = false
	})
}

func sampleTasks() []models.Task {
	return []models.Task{
		{ID: 1, Title: "Pay rent", Status: models.StatusTodo, Priority: models.PriorityHigh, Category: models.CategoryPersonal, DueDate: models.NewDate(2025, 6, 10)},
		{ID: 2, Title: "Write report", Status: models.StatusInProgress, Priority: models.PriorityMedium, Category: models.CategoryWork, DueDate: models.NewDate(2025, 6, 20)},
		{ID: 3, Title: "Buy milk", Status: models.StatusCompleted, Priority: models.PriorityLow, Category: models.CategoryShopping, DueDate: models.NewDate(2025, 6, 1)},
	}
}
