package books

import (
	"context"
	"log/slog"
	"strconv"

	"github.com/locallibrary/locallibrary/internal/catalog/shared"
	"github.com/locallibrary/locallibrary/internal/platform/db"
	"github.com/locallibrary/locallibrary/internal/rbac"
	internalShared "github.com/locallibrary/locallibrary/internal/shared"
)

// AuditRecorder persists audit entries.
type AuditRecorder interface {
	Record(ctx context.Context, log internalShared.AuditLog) error
}

// CacheInvalidator drops cached catalog statistics.
type CacheInvalidator interface {
	Bump(ctx context.Context) error
}

type Service struct {
	repo    Repository
	audit   AuditRecorder
	cache   CacheInvalidator
	metrics shared.DeleteMetrics
	logger  *slog.Logger
}

func NewService(repo Repository, audit AuditRecorder, cache CacheInvalidator, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{repo: repo, audit: audit, cache: cache, logger: logger}
}

// WithMetrics attaches delete counters.
func (s *Service) WithMetrics(m shared.DeleteMetrics) *Service {
	s.metrics = m
	return s
}

func (s *Service) Get(ctx context.Context, id int64) (Book, error) {
	if id <= 0 {
		return Book{}, shared.ErrNotFound
	}
	return s.repo.Get(ctx, id)
}

func (s *Service) Options(ctx context.Context) (Options, error) {
	return s.repo.Options(ctx)
}

// DeleteCandidate loads the book and how many copies would block deletion.
func (s *Service) DeleteCandidate(ctx context.Context, id int64) (Book, int, error) {
	book, err := s.Get(ctx, id)
	if err != nil {
		return Book{}, 0, err
	}
	copies, err := s.repo.CopyCount(ctx, id)
	if err != nil {
		return Book{}, 0, err
	}
	return book, copies, nil
}

func (s *Service) Create(ctx context.Context, p rbac.Principal, form Form) (Book, error) {
	if err := rbac.Authorize(p, rbac.CreateBook); err != nil {
		return Book{}, err
	}
	book, err := form.Parse()
	if err != nil {
		return Book{}, err
	}
	created, err := s.repo.Create(ctx, book)
	if err != nil {
		return Book{}, storageFieldErrors(err)
	}
	s.changed(ctx, p, "create", created.ID)
	return created, nil
}

func (s *Service) Update(ctx context.Context, p rbac.Principal, id int64, form Form) (Book, error) {
	if err := rbac.Authorize(p, rbac.UpdateBook); err != nil {
		return Book{}, err
	}
	if id <= 0 {
		return Book{}, shared.ErrNotFound
	}
	book, err := form.Parse()
	if err != nil {
		return Book{}, err
	}
	if err := s.repo.Update(ctx, id, book); err != nil {
		return Book{}, storageFieldErrors(err)
	}
	book.ID = id
	s.changed(ctx, p, "update", id)
	return book, nil
}

// Delete removes the book. Storage failures come back as DeleteRetry;
// only authorization failures are returned as errors.
func (s *Service) Delete(ctx context.Context, p rbac.Principal, id int64) (shared.DeleteResult, error) {
	if err := rbac.Authorize(p, rbac.DeleteBook); err != nil {
		return shared.DeleteResult{}, err
	}
	res := shared.AttemptDelete(ctx, s.logger, "Book", func(ctx context.Context) error {
		return s.repo.Delete(ctx, id)
	})
	if s.metrics != nil {
		s.metrics.ObserveDelete(internalShared.AuditEntityBook, res.Outcome.String())
	}
	if res.Outcome == shared.DeleteSucceeded {
		s.changed(ctx, p, "delete", id)
	}
	return res, nil
}

// storageFieldErrors turns constraint failures the user can fix into form
// errors and passes everything else through.
func storageFieldErrors(err error) error {
	switch {
	case db.IsUniqueViolation(err):
		return shared.FieldErrors{FieldISBN: "A book with this ISBN already exists."}
	case db.IsForeignKeyViolation(err):
		return shared.FieldErrors{"general": "The selected author, genre or language no longer exists."}
	}
	return err
}

func (s *Service) changed(ctx context.Context, p rbac.Principal, action string, id int64) {
	if s.audit != nil {
		if err := s.audit.Record(ctx, internalShared.AuditLog{
			ActorID:  p.UserID,
			Action:   action,
			Entity:   internalShared.AuditEntityBook,
			EntityID: strconv.FormatInt(id, 10),
		}); err != nil {
			s.logger.Warn("audit book change", slog.String("action", action), slog.Any("error", err))
		}
	}
	if s.cache != nil {
		if err := s.cache.Bump(ctx); err != nil {
			s.logger.Warn("invalidate catalog stats", slog.Any("error", err))
		}
	}
}
