package loans

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/locallibrary/locallibrary/internal/rbac"
	"github.com/locallibrary/locallibrary/internal/shared"
)

// Renewal outcomes reported to metrics.
const (
	OutcomeRenewed   = "renewed"
	OutcomeRejected  = "rejected"
	OutcomeForbidden = "forbidden"
	OutcomeError     = "error"
)

// AuditRecorder persists audit entries.
type AuditRecorder interface {
	Record(ctx context.Context, log shared.AuditLog) error
}

// CacheInvalidator drops cached catalog statistics.
type CacheInvalidator interface {
	Bump(ctx context.Context) error
}

// MetricsRecorder counts renewal attempts by outcome.
type MetricsRecorder interface {
	ObserveRenewal(outcome string)
}

// Service coordinates loan listings and renewals.
type Service struct {
	repo    Repository
	audit   AuditRecorder
	cache   CacheInvalidator
	metrics MetricsRecorder
	logger  *slog.Logger
	clock   func() time.Time
}

// NewService wires a Service. audit, cache and metrics may be nil.
func NewService(repo Repository, audit AuditRecorder, cache CacheInvalidator, metrics MetricsRecorder, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		repo:    repo,
		audit:   audit,
		cache:   cache,
		metrics: metrics,
		logger:  logger,
		clock:   time.Now,
	}
}

// Today returns the current calendar date.
func (s *Service) Today() time.Time {
	return Date(s.clock())
}

// Borrowed lists the copies the principal currently holds.
func (s *Service) Borrowed(ctx context.Context, p rbac.Principal) ([]LoanRecord, error) {
	if err := rbac.Authorize(p, rbac.ViewOwnBorrowed); err != nil {
		return nil, err
	}
	records, err := s.repo.ListBorrowedBy(ctx, p.UserID)
	if err != nil {
		return nil, err
	}
	held := records[:0]
	for _, r := range records {
		if r.BorrowedBy(p.UserID) {
			held = append(held, r)
		}
	}
	return held, nil
}

// AllBorrowed lists every copy on loan.
func (s *Service) AllBorrowed(ctx context.Context, p rbac.Principal) ([]LoanRecord, error) {
	if err := rbac.Authorize(p, rbac.ViewAllBorrowed); err != nil {
		return nil, err
	}
	return s.repo.ListBorrowed(ctx)
}

// PrepareRenewal loads the copy and the date the form should offer.
func (s *Service) PrepareRenewal(ctx context.Context, p rbac.Principal, id uuid.UUID) (LoanRecord, time.Time, error) {
	if err := rbac.Authorize(p, rbac.RenewLoan); err != nil {
		return LoanRecord{}, time.Time{}, err
	}
	record, err := s.repo.Get(ctx, id)
	if err != nil {
		return LoanRecord{}, time.Time{}, err
	}
	return record, DefaultProposedDate(s.Today()), nil
}

// Renew validates and stores a new due date for a copy on loan.
func (s *Service) Renew(ctx context.Context, p rbac.Principal, req RenewalRequest) (LoanRecord, error) {
	if err := rbac.Authorize(p, rbac.RenewLoan); err != nil {
		s.observe(OutcomeForbidden)
		return LoanRecord{}, err
	}
	record, err := s.repo.Get(ctx, req.RecordID)
	if err != nil {
		if !errors.Is(err, ErrNotFound) {
			s.observe(OutcomeError)
		}
		return LoanRecord{}, err
	}
	if record.Status != StatusOnLoan {
		s.observe(OutcomeRejected)
		return record, ErrNotOnLoan
	}
	dueBack, err := ValidateRenewal(req.ProposedDueBack, s.Today())
	if err != nil {
		s.logger.Info("renewal rejected",
			slog.String("book_instance_id", record.ID.String()),
			slog.Int64("actor_id", p.UserID),
			slog.String("reason", err.Error()))
		s.observe(OutcomeRejected)
		return record, err
	}

	previous := record.DueBack
	ApplyRenewal(&record, dueBack)
	if err := record.Validate(); err != nil {
		s.observe(OutcomeError)
		return LoanRecord{}, fmt.Errorf("loans: renew: %w", err)
	}
	if err := s.repo.UpdateDueBack(ctx, record.ID, *record.DueBack); err != nil {
		s.observe(OutcomeError)
		return LoanRecord{}, err
	}
	s.observe(OutcomeRenewed)

	if s.audit != nil {
		meta := map[string]any{"due_back": record.DueBack.Format(time.DateOnly)}
		if previous != nil {
			meta["previous_due_back"] = previous.Format(time.DateOnly)
		}
		if err := s.audit.Record(ctx, shared.AuditLog{
			ActorID:  p.UserID,
			Action:   "renew",
			Entity:   shared.AuditEntityBookInstance,
			EntityID: record.ID.String(),
			Meta:     meta,
		}); err != nil {
			s.logger.Warn("audit renewal", slog.Any("error", err))
		}
	}
	if s.cache != nil {
		if err := s.cache.Bump(ctx); err != nil {
			s.logger.Warn("invalidate catalog stats", slog.Any("error", err))
		}
	}
	return record, nil
}

func (s *Service) observe(outcome string) {
	if s.metrics != nil {
		s.metrics.ObserveRenewal(outcome)
	}
}
