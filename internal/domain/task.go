package domain

import (
	"fmt"
	"time"

	apperrors "taskdeck/internal/errors"
)

// ApplyStatusChange sets the task's status and maintains the completion
// timestamp invariant: CompletedAt is non-nil exactly when the task is
// Completed. Entering Completed stamps now; leaving it clears the stamp;
// re-asserting Completed keeps the original stamp.
func ApplyStatusChange(t *Task, newStatus string, now time.Time) {
	switch {
	case newStatus == StatusCompleted && t.Status != StatusCompleted:
		stamp := now
		t.CompletedAt = &stamp
	case newStatus != StatusCompleted:
		t.CompletedAt = nil
	}
	t.Status = newStatus
}

// ValidateTask checks the fields the store cannot enforce on its own.
func ValidateTask(t Task) error {
	if t.Title == "" {
		return apperrors.New(apperrors.CodeInvalidTaskData, "task title is required", nil)
	}
	if t.Status == "" {
		return apperrors.New(apperrors.CodeInvalidStatus, "task status is required", nil)
	}
	if t.Priority == "" {
		return apperrors.New(apperrors.CodeInvalidPriority, "task priority is required", nil)
	}
	completed := t.Status == StatusCompleted
	if completed && t.CompletedAt == nil {
		return apperrors.New(apperrors.CodeInvalidTaskData,
			fmt.Sprintf("task %d is Completed without a completion timestamp", t.ID), nil)
	}
	if !completed && t.CompletedAt != nil {
		return apperrors.New(apperrors.CodeInvalidTaskData,
			fmt.Sprintf("task %d has a completion timestamp but status %q", t.ID, t.Status), nil)
	}
	return nil
}
