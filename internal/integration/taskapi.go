package integration

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/valter-silva-au/taskdeck/pkg/models"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

// DefaultBaseURL is the backend the client talks to when none is configured.
const DefaultBaseURL = "http://localhost:8080/api"

// networkErrorMessage is shown when the backend could not be reached.
const networkErrorMessage = "Network error occurred"

// APIError is a non-2xx response from the backend. Message holds the
// server-supplied message when there is one, otherwise a fallback naming
// the failed operation.
type APIError struct {
	Op         string
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s: HTTP %d: %s", e.Op, e.StatusCode, e.Message)
}

// HTTPStatus returns the response status code.
func (e *APIError) HTTPStatus() int { return e.StatusCode }

// UserMessage returns the message to show verbatim.
func (e *APIError) UserMessage() string { return e.Message }

// NetworkError wraps a transport failure (refused connection, timeout,
// DNS) where no response was received.
type NetworkError struct {
	Op  string
	Err error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("%s: %s: %v", e.Op, networkErrorMessage, e.Err)
}

func (e *NetworkError) Unwrap() error { return e.Err }

// UserMessage returns the generic network failure message.
func (e *NetworkError) UserMessage() string { return networkErrorMessage }

// ClientConfig configures a TaskClient.
type ClientConfig struct {
	BaseURL string
	Timeout time.Duration
	// Version is sent in the User-Agent header.
	Version string
	Logger  zerolog.Logger
	// HTTPClient overrides the default instrumented client, for tests.
	HTTPClient *http.Client
}

// TaskClient is the REST client for the task backend. It holds no session
// state: every authenticated call takes the session explicitly.
type TaskClient struct {
	baseURL   string
	userAgent string
	client    *http.Client
	log       zerolog.Logger
}

// NewTaskClient creates a TaskClient. The transport is wrapped with
// otelhttp so spans propagate when a tracer provider is installed.
func NewTaskClient(cfg ClientConfig) *TaskClient {
	baseURL := strings.TrimRight(cfg.BaseURL, "/")
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	version := cfg.Version
	if version == "" {
		version = "dev"
	}
	client := cfg.HTTPClient
	if client == nil {
		client = &http.Client{
			Timeout:   cfg.Timeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		}
	}
	return &TaskClient{
		baseURL:   baseURL,
		userAgent: "tdeck/" + version,
		client:    client,
		log:       cfg.Logger,
	}
}

// BaseURL returns the backend base URL without a trailing slash.
func (c *TaskClient) BaseURL() string { return c.baseURL }

// request describes one backend call.
type request struct {
	op       string
	fallback string
	method   string
	path     string
	query    url.Values
	sess     *models.Session
	body     io.Reader
	ctype    string
}

// do sends the request and returns the response when the status is 2xx.
// The caller must close the body.
func (c *TaskClient) do(ctx context.Context, r request) (*http.Response, error) {
	u := c.baseURL + r.path
	if len(r.query) > 0 {
		u += "?" + r.query.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, r.method, u, r.body)
	if err != nil {
		return nil, fmt.Errorf("%s: building request: %w", r.op, err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)
	reqID := uuid.NewString()
	req.Header.Set("X-Request-ID", reqID)
	if r.ctype != "" {
		req.Header.Set("Content-Type", r.ctype)
	}
	if r.sess != nil && r.sess.Token != "" {
		req.Header.Set("Authorization", "Bearer "+r.sess.Token)
	}

	start := time.Now()
	resp, err := c.client.Do(req)
	if err != nil {
		c.log.Debug().
			Str("method", r.method).
			Str("path", r.path).
			Str("request_id", reqID).
			Err(err).
			Msg("request failed")
		return nil, &NetworkError{Op: r.op, Err: err}
	}
	c.log.Debug().
		Str("method", r.method).
		Str("path", r.path).
		Str("request_id", reqID).
		Int("status", resp.StatusCode).
		Dur("duration", time.Since(start)).
		Msg("request completed")

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		defer resp.Body.Close()
		return nil, &APIError{
			Op:         r.op,
			StatusCode: resp.StatusCode,
			Message:    serverMessage(resp.Body, r.fallback),
		}
	}
	return resp, nil
}

// serverMessage extracts the "message" (or "error") field of a JSON error
// body, falling back to fallback when the body carries neither.
func serverMessage(body io.Reader, fallback string) string {
	data, err := io.ReadAll(io.LimitReader(body, 64<<10))
	if err != nil || len(data) == 0 {
		return fallback
	}
	var payload struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	if err := json.Unmarshal(data, &payload); err != nil {
		return fallback
	}
	if msg := strings.TrimSpace(payload.Message); msg != "" {
		return msg
	}
	if msg := strings.TrimSpace(payload.Error); msg != "" {
		return msg
	}
	return fallback
}

// doJSON sends in (when non-nil) as JSON and decodes the response into out
// (when non-nil).
func (c *TaskClient) doJSON(ctx context.Context, r request, in, out any) error {
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("%s: encoding request: %w", r.op, err)
		}
		r.body = bytes.NewReader(data)
		r.ctype = "application/json"
	}
	resp, err := c.do(ctx, r)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}
		return fmt.Errorf("%s: decoding response: %w", r.op, err)
	}
	return nil
}

func userQuery(sess *models.Session) url.Values {
	q := url.Values{}
	if sess != nil {
		q.Set("userId", strconv.FormatInt(sess.User.ID, 10))
	}
	return q
}

func taskPath(id int64, sub ...string) string {
	p := "/tasks/" + strconv.FormatInt(id, 10)
	for _, s := range sub {
		p += "/" + s
	}
	return p
}

// Login authenticates with email and password.
func (c *TaskClient) Login(ctx context.Context, email, password string) (*models.AuthResult, error) {
	var res models.AuthResult
	err := c.doJSON(ctx, request{
		op: "login", fallback: "Login failed",
		method: http.MethodPost, path: "/auth/login",
	}, map[string]string{"email": email, "password": password}, &res)
	if err != nil {
		return nil, err
	}
	return &res, nil
}

// Signup registers a new account.
func (c *TaskClient) Signup(ctx context.Context, name, email, password string) (*models.AuthResult, error) {
	var res models.AuthResult
	err := c.doJSON(ctx, request{
		op: "signup", fallback: "Signup failed",
		method: http.MethodPost, path: "/auth/signup",
	}, map[string]string{"name": name, "email": email, "password": password}, &res)
	if err != nil {
		return nil, err
	}
	return &res, nil
}

// ListTasks returns every task owned by the session user.
func (c *TaskClient) ListTasks(ctx context.Context, sess *models.Session) ([]models.Task, error) {
	var tasks []models.Task
	err := c.doJSON(ctx, request{
		op: "list tasks", fallback: "Failed to fetch tasks",
		method: http.MethodGet, path: "/tasks", query: userQuery(sess), sess: sess,
	}, nil, &tasks)
	if err != nil {
		return nil, err
	}
	if tasks == nil {
		tasks = []models.Task{}
	}
	return tasks, nil
}

func (c *TaskClient) GetTask(ctx context.Context, sess *models.Session, id int64) (*models.Task, error) {
	var task models.Task
	err := c.doJSON(ctx, request{
		op: "get task", fallback: "Failed to fetch task",
		method: http.MethodGet, path: taskPath(id), sess: sess,
	}, nil, &task)
	if err != nil {
		return nil, err
	}
	return &task, nil
}

func (c *TaskClient) CreateTask(ctx context.Context, sess *models.Session, task models.Task) (*models.Task, error) {
	var created models.Task
	err := c.doJSON(ctx, request{
		op: "create task", fallback: "Failed to create task",
		method: http.MethodPost, path: "/tasks", sess: sess,
	}, task, &created)
	if err != nil {
		return nil, err
	}
	return &created, nil
}

func (c *TaskClient) UpdateTask(ctx context.Context, sess *models.Session, id int64, task models.Task) (*models.Task, error) {
	var updated models.Task
	err := c.doJSON(ctx, request{
		op: "update task", fallback: "Failed to update task",
		method: http.MethodPut, path: taskPath(id), sess: sess,
	}, task, &updated)
	if err != nil {
		return nil, err
	}
	return &updated, nil
}

func (c *TaskClient) DeleteTask(ctx context.Context, sess *models.Session, id int64) error {
	return c.doJSON(ctx, request{
		op: "delete task", fallback: "Failed to delete task",
		method: http.MethodDelete, path: taskPath(id), sess: sess,
	}, nil, nil)
}

func (c *TaskClient) ListComments(ctx context.Context, sess *models.Session, taskID int64) ([]models.Comment, error) {
	var comments []models.Comment
	err := c.doJSON(ctx, request{
		op: "list comments", fallback: "Failed to fetch comments",
		method: http.MethodGet, path: taskPath(taskID, "comments"), sess: sess,
	}, nil, &comments)
	if err != nil {
		return nil, err
	}
	return comments, nil
}

func (c *TaskClient) AddComment(ctx context.Context, sess *models.Session, taskID int64, content string) (*models.Comment, error) {
	var comment models.Comment
	err := c.doJSON(ctx, request{
		op: "add comment", fallback: "Failed to add comment",
		method: http.MethodPost, path: taskPath(taskID, "comments"), sess: sess,
	}, map[string]string{"content": content}, &comment)
	if err != nil {
		return nil, err
	}
	return &comment, nil
}

func (c *TaskClient) ListAttachments(ctx context.Context, sess *models.Session, taskID int64) ([]models.Attachment, error) {
	var atts []models.Attachment
	err := c.doJSON(ctx, request{
		op: "list attachments", fallback: "Failed to fetch attachments",
		method: http.MethodGet, path: taskPath(taskID, "attachments"), sess: sess,
	}, nil, &atts)
	if err != nil {
		return nil, err
	}
	return atts, nil
}

// UploadAttachment streams r as the multipart "file" field.
func (c *TaskClient) UploadAttachment(ctx context.Context, sess *models.Session, taskID int64, fileName string, r io.Reader) (*models.Attachment, error) {
	pr, pw := io.Pipe()
	mw := multipart.NewWriter(pw)
	go func() {
		part, err := mw.CreateFormFile("file", fileName)
		if err != nil {
			pw.CloseWithError(err)
			return
		}
		if _, err := io.Copy(part, r); err != nil {
			pw.CloseWithError(err)
			return
		}
		pw.CloseWithError(mw.Close())
	}()

	resp, err := c.do(ctx, request{
		op: "upload attachment", fallback: "Failed to upload attachment",
		method: http.MethodPost, path: taskPath(taskID, "attachments"), sess: sess,
		body: pr, ctype: mw.FormDataContentType(),
	})
	if err != nil {
		pr.CloseWithError(err)
		return nil, err
	}
	defer resp.Body.Close()

	var att models.Attachment
	if err := json.NewDecoder(resp.Body).Decode(&att); err != nil {
		return nil, fmt.Errorf("upload attachment: decoding response: %w", err)
	}
	return &att, nil
}

// DownloadAttachment copies the attachment body into w and returns the
// number of bytes written.
func (c *TaskClient) DownloadAttachment(ctx context.Context, sess *models.Session, attachmentID int64, w io.Writer) (int64, error) {
	resp, err := c.do(ctx, request{
		op: "download attachment", fallback: "Failed to download attachment",
		method: http.MethodGet, path: "/attachments/" + strconv.FormatInt(attachmentID, 10) + "/download", sess: sess,
	})
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()

	n, err := io.Copy(w, resp.Body)
	if err != nil {
		return n, &NetworkError{Op: "download attachment", Err: err}
	}
	return n, nil
}

func (c *TaskClient) DeleteAttachment(ctx context.Context, sess *models.Session, attachmentID int64) error {
	return c.doJSON(ctx, request{
		op: "delete attachment", fallback: "Failed to delete attachment",
		method: http.MethodDelete, path: "/attachments/" + strconv.FormatInt(attachmentID, 10), sess: sess,
	}, nil, nil)
}

func (c *TaskClient) ListDependencies(ctx context.Context, sess *models.Session, taskID int64) ([]models.Task, error) {
	var deps []models.Task
	err := c.doJSON(ctx, request{
		op: "list dependencies", fallback: "Failed to fetch dependencies",
		method: http.MethodGet, path: taskPath(taskID, "dependencies"), sess: sess,
	}, nil, &deps)
	if err != nil {
		return nil, err
	}
	return deps, nil
}

func (c *TaskClient) AddDependency(ctx context.Context, sess *models.Session, taskID, dependencyID int64) error {
	return c.doJSON(ctx, request{
		op: "add dependency", fallback: "Failed to add dependency",
		method: http.MethodPost, path: taskPath(taskID, "dependencies"), sess: sess,
	}, map[string]int64{"dependencyId": dependencyID}, nil)
}

func (c *TaskClient) RemoveDependency(ctx context.Context, sess *models.Session, taskID, dependencyID int64) error {
	return c.doJSON(ctx, request{
		op: "remove dependency", fallback: "Failed to remove dependency",
		method: http.MethodDelete, path: taskPath(taskID, "dependencies", strconv.FormatInt(dependencyID, 10)), sess: sess,
	}, nil, nil)
}

func (c *TaskClient) ListSubtasks(ctx context.Context, sess *models.Session, taskID int64) ([]models.Task, error) {
	var subs []models.Task
	err := c.doJSON(ctx, request{
		op: "list subtasks", fallback: "Failed to fetch subtasks",
		method: http.MethodGet, path: taskPath(taskID, "subtasks"), sess: sess,
	}, nil, &subs)
	if err != nil {
		return nil, err
	}
	return subs, nil
}

func (c *TaskClient) AddSubtask(ctx context.Context, sess *models.Session, parentID int64, subtask models.Task) (*models.Task, error) {
	var created models.Task
	err := c.doJSON(ctx, request{
		op: "add subtask", fallback: "Failed to add subtask",
		method: http.MethodPost, path: taskPath(parentID, "subtasks"), sess: sess,
	}, subtask, &created)
	if err != nil {
		return nil, err
	}
	return &created, nil
}

// GetAnalytics returns the backend's aggregate counters for the session user.
func (c *TaskClient) GetAnalytics(ctx context.Context, sess *models.Session) (*models.Analytics, error) {
	var a models.Analytics
	err := c.doJSON(ctx, request{
		op: "get analytics", fallback: "Failed to fetch analytics",
		method: http.MethodGet, path: "/analytics", query: userQuery(sess), sess: sess,
	}, nil, &a)
	if err != nil {
		return nil, err
	}
	return &a, nil
}
