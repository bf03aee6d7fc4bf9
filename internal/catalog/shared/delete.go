package shared

import (
	"context"
	"errors"
	"log/slog"

	"github.com/locallibrary/locallibrary/internal/platform/db"
)

// DeleteOutcome is the result of AttemptDelete.
type DeleteOutcome int

const (
	// DeleteSucceeded means the record is gone.
	DeleteSucceeded DeleteOutcome = iota
	// DeleteRetry means the caller should show the confirmation page again.
	DeleteRetry
)

func (o DeleteOutcome) String() string {
	if o == DeleteSucceeded {
		return "deleted"
	}
	return "retry"
}

// DeleteMetrics counts delete attempts.
type DeleteMetrics interface {
	ObserveDelete(entity, outcome string)
}

// DeleteResult carries the outcome and the message to flash.
type DeleteResult struct {
	Outcome DeleteOutcome
	Message string
}

const (
	msgStillReferenced = "could not be deleted because other records still refer to it. Remove those first, then try again."
	msgDeleteFailed    = "could not be deleted. Please try again."
)

// AttemptDelete runs del and folds every failure into DeleteRetry. Storage
// errors never escape as faults; label names the record in the message.
func AttemptDelete(ctx context.Context, logger *slog.Logger, label string, del func(context.Context) error) DeleteResult {
	err := del(ctx)
	if err == nil {
		return DeleteResult{Outcome: DeleteSucceeded, Message: label + " deleted."}
	}
	if logger == nil {
		logger = slog.Default()
	}
	switch {
	case db.IsForeignKeyViolation(err):
		logger.Info("delete blocked by reference", slog.String("record", label), slog.Any("error", err))
		return DeleteResult{Outcome: DeleteRetry, Message: label + " " + msgStillReferenced}
	case errors.Is(err, ErrNotFound):
		logger.Info("delete of missing record", slog.String("record", label))
	default:
		logger.Warn("delete failed", slog.String("record", label), slog.Any("error", err))
	}
	return DeleteResult{Outcome: DeleteRetry, Message: label + " " + msgDeleteFailed}
}
