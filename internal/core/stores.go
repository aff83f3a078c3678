package core

import (
	"context"
	"io"

	"github.com/valter-silva-au/taskdeck/pkg/models"
)

// TaskAPI is the subset of the backend client that core services need.
// Defining it here avoids importing the integration package. Every
// authenticated call receives the session explicitly.
type TaskAPI interface {
	Login(ctx context.Context, email, password string) (*models.AuthResult, error)
	Signup(ctx context.Context, name, email, password string) (*models.AuthResult, error)

	ListTasks(ctx context.Context, sess *models.Session) ([]models.Task, error)
	GetTask(ctx context.Context, sess *models.Session, id int64) (*models.Task, error)
	CreateTask(ctx context.Context, sess *models.Session, task models.Task) (*models.Task, error)
	UpdateTask(ctx context.Context, sess *models.Session, id int64, task models.Task) (*models.Task, error)
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
	AddSubtask(ctx context.Context, sess *models.Session, parentID int64, subtask models.Task) (*models.Task, error)

	GetAnalytics(ctx context.Context, sess *models.Session) (*models.Analytics, error)
}

// SessionStore persists the local session between invocations.
// This interface is defined locally in core to avoid importing storage.
type SessionStore interface {
	Load() (*models.Session, error)
	Save(sess *models.Session) error
	Clear() error
}
