package core

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/valter-silva-au/taskdeck/pkg/models"
)

// Field names used as FieldErrors keys.
const (
	FieldTitle       = "title"
	FieldDescription = "description"
	FieldDueDate     = "dueDate"
	FieldCategory    = "category"
	FieldPriority    = "priority"
	FieldStatus      = "status"
	FieldName        = "name"
	FieldEmail       = "email"
	FieldPassword    = "password"
)

// FieldErrors maps a form field name to its error message. An empty map
// means the form passed validation.
type FieldErrors map[string]string

// Error joins all messages as sorted "field: message" lines.
func (fe FieldErrors) Error() string {
	fields := make([]string, 0, len(fe))
	for f := range fe {
		fields = append(fields, f)
	}
	sort.Strings(fields)

	lines := make([]string, len(fields))
	for i, f := range fields {
		lines[i] = fmt.Sprintf("%s: %s", f, fe[f])
	}
	return "validation failed:\n  - " + strings.Join(lines, "\n  - ")
}

// Fields returns the field names with errors in sorted order.
func (fe FieldErrors) Fields() []string {
	fields := make([]string, 0, len(fe))
	for f := range fe {
		fields = append(fields, f)
	}
	sort.Strings(fields)
	return fields
}

// Err returns fe as an error, or nil when there are no messages.
func (fe FieldErrors) Err() error {
	if len(fe) == 0 {
		return nil
	}
	return fe
}

// ValidateDraft checks a task draft before submission. The due date is
// compared against the calendar day of now; time of day is ignored.
func ValidateDraft(d models.TaskDraft, now time.Time) FieldErrors {
	errs := FieldErrors{}

	if strings.TrimSpace(d.Title) == "" {
		errs[FieldTitle] = "Title is required"
	}
	if strings.TrimSpace(d.Description) == "" {
		errs[FieldDescription] = "Description is required"
	}

	if d.DueDate.IsZero() {
		errs[FieldDueDate] = "Due date is required"
	} else if d.DueDate.Before(models.DateOf(now)) {
		errs[FieldDueDate] = "Due date cannot be in the past"
	}

	switch {
	case d.Category == "":
		errs[FieldCategory] = "Category is required"
	case !d.Category.Valid():
		errs[FieldCategory] = "Category must be one of: " + joinValues(models.Categories)
	}

	switch {
	case d.Priority == "":
		errs[FieldPriority] = "Priority is required"
	case !d.Priority.Valid():
		errs[FieldPriority] = "Priority must be one of: " + joinValues(models.Priorities)
	}

	if d.Status != "" && !d.Status.Valid() {
		errs[FieldStatus] = "Status must be one of: " + joinValues(models.Statuses)
	}

	return errs
}

// ValidateCredentials checks the login form.
func ValidateCredentials(email, password string) FieldErrors {
	errs := FieldErrors{}
	if strings.TrimSpace(email) == "" {
		errs[FieldEmail] = "Email is required"
	}
	if password == "" {
		errs[FieldPassword] = "Password is required"
	}
	return errs
}

// ValidateSignup checks the signup form.
func ValidateSignup(name, email, password string) FieldErrors {
	errs := ValidateCredentials(email, password)
	if strings.TrimSpace(name) == "" {
		errs[FieldName] = "Name is required"
	}
	return errs
}

func joinValues[T ~string](values []T) string {
	s := make([]string, len(values))
	for i, v := range values {
		s[i] = string(v)
	}
	return strings.Join(s, ", ")
}
