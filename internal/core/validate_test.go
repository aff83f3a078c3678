package core

import (
	"strings"
	"testing"
	"time"

	"github.com/valter-silva-au/taskdeck/pkg/models"
)

var validateNow = time.Date(2025, time.June, 15, 18, 30, 0, 0, time.UTC)

func validDraft() models.TaskDraft {
	d := models.NewTaskDraft()
	d.Title = "Write report"
	d.Description = "Quarterly numbers"
	d.DueDate = models.NewDate(2025, time.June, 20)
	return d
}

func TestValidateDraft_Valid(t *testing.T) {
	if errs := ValidateDraft(validDraft(), validateNow); len(errs) != 0 {
		t.Errorf("expected no errors, got %v", errs)
	}
}

func TestValidateDraft_Messages(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*models.TaskDraft)
		field  string
		want   string
	}{
		{"blank title", func(d *models.TaskDraft) { d.Title = "   " }, FieldTitle, "Title is required"},
		{"empty description", func(d *models.TaskDraft) { d.Description = "" }, FieldDescription, "Description is required"},
		{"missing due date", func(d *models.TaskDraft) { d.DueDate = models.Date{} }, FieldDueDate, "Due date is required"},
		{"past due date", func(d *models.TaskDraft) { d.DueDate = models.NewDate(2025, time.June, 14) }, FieldDueDate, "Due date cannot be in the past"},
		{"missing category", func(d *models.TaskDraft) { d.Category = "" }, FieldCategory, "Category is required"},
		{"missing priority", func(d *models.TaskDraft) { d.Priority = "" }, FieldPriority, "Priority is required"},
		{"unknown category", func(d *models.TaskDraft) { d.Category = "Hobby" }, FieldCategory, "Category must be one of: Work, Personal, Shopping, Health, Education, Other"},
		{"unknown priority", func(d *models.TaskDraft) { d.Priority = "P1" }, FieldPriority, "Priority must be one of: LOW, MEDIUM, HIGH, URGENT"},
		{"unknown status", func(d *models.TaskDraft) { d.Status = "DONE" }, FieldStatus, "Status must be one of: TODO, IN_PROGRESS, COMPLETED"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := validDraft()
			tt.mutate(&d)
			errs := ValidateDraft(d, validateNow)
			if len(errs) != 1 {
				t.Fatalf("expected exactly one error, got %v", errs)
			}
			if got := errs[tt.field]; got != tt.want {
				t.Errorf("errs[%s] = %q, want %q", tt.field, got, tt.want)
			}
		})
	}
}

func TestValidateDraft_TodayIsAllowed(t *testing.T) {
	d := validDraft()
	d.DueDate = models.NewDate(2025, time.June, 15)
	if errs := ValidateDraft(d, validateNow); len(errs) != 0 {
		t.Errorf("due date of today should pass, got %v", errs)
	}
}

func TestValidateDraft_ReportsAllErrorsAtOnce(t *testing.T) {
	errs := ValidateDraft(models.TaskDraft{}, validateNow)
	want := []string{FieldCategory, FieldDescription, FieldDueDate, FieldPriority, FieldTitle}
	got := errs.Fields()
	if strings.Join(got, ",") != strings.Join(want, ",") {
		t.Errorf("Fields() = %v, want %v", got, want)
	}
}

func TestValidateDraft_EmptyStatusIsAllowed(t *testing.T) {
	d := validDraft()
	d.Status = ""
	if errs := ValidateDraft(d, validateNow); len(errs) != 0 {
		t.Errorf("empty status should pass, got %v", errs)
	}
}

func TestFieldErrors_ErrorAndErr(t *testing.T) {
	var empty FieldErrors
	if empty.Err() != nil {
		t.Error("empty FieldErrors should produce nil error")
	}

	fe := FieldErrors{FieldTitle: "Title is required", FieldDueDate: "Due date is required"}
	err := fe.Err()
	if err == nil {
		t.Fatal("expected error")
	}
	want := "validation failed:\n  - dueDate: Due date is required\n  - title: Title is required"
	if err.Error() != want {
		t.Errorf("Error() = %q, want %q", err.Error(), want)
	}
}

func TestValidateCredentials(t *testing.T) {
	errs := ValidateCredentials(" ", "")
	if errs[FieldEmail] != "Email is required" {
		t.Errorf("email message = %q", errs[FieldEmail])
	}
	if errs[FieldPassword] != "Password is required" {
		t.Errorf("password message = %q", errs[FieldPassword])
	}
	if errs := ValidateCredentials("a@b.c", "secret"); len(errs) != 0 {
		t.Errorf("expected no errors, got %v", errs)
	}
}

func TestValidateSignup(t *testing.T) {
	errs := ValidateSignup("", "a@b.c", "secret")
	if len(errs) != 1 || errs[FieldName] != "Name is required" {
		t.Errorf("expected only name error, got %v", errs)
	}
}

func TestValidateDraft_EmptyTitleAndPastDate(t *testing.T) {
	d := validDraft()
	d.Title = ""
	d.DueDate = models.NewDate(2000, time.January, 1)

	errs := ValidateDraft(d, validateNow)
	want := FieldErrors{
		FieldTitle:   "Title is required",
		FieldDueDate: "Due date cannot be in the past",
	}
	if len(errs) != len(want) {
		t.Fatalf("got %v, want %v", errs, want)
	}
	for f, msg := range want {
		if errs[f] != msg {
			t.Errorf("errs[%s] = %q, want %q", f, errs[f], msg)
		}
	}
}
