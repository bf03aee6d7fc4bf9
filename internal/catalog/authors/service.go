package authors

import (
	"context"
	"log/slog"
	"strconv"

	"github.com/locallibrary/locallibrary/internal/catalog/shared"
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

func (s *Service) Get(ctx context.Context, id int64) (Author, error) {
	if id <= 0 {
		return Author{}, shared.ErrNotFound
	}
	return s.repo.Get(ctx, id)
}

// DeleteCandidate loads the author and the titles that would block deletion.
func (s *Service) DeleteCandidate(ctx context.Context, id int64) (Author, []string, error) {
	author, err := s.Get(ctx, id)
	if err != nil {
		return Author{}, nil, err
	}
	titles, err := s.repo.BookTitles(ctx, id)
	if err != nil {
		return Author{}, nil, err
	}
	return author, titles, nil
}

func (s *Service) Create(ctx context.Context, p rbac.Principal, form Form) (Author, error) {
	if err := rbac.Authorize(p, rbac.CreateAuthor); err != nil {
		return Author{}, err
	}
	author, err := form.Parse()
	if err != nil {
		return Author{}, err
	}
	created, err := s.repo.Create(ctx, author)
	if err != nil {
		return Author{}, err
	}
	s.changed(ctx, p, "create", created.ID)
	return created, nil
}

func (s *Service) Update(ctx context.Context, p rbac.Principal, id int64, form Form) (Author, error) {
	if err := rbac.Authorize(p, rbac.UpdateAuthor); err != nil {
		return Author{}, err
	}
	if id <= 0 {
		return Author{}, shared.ErrNotFound
	}
	author, err := form.Parse()
	if err != nil {
		return Author{}, err
	}
	if err := s.repo.Update(ctx, id, author); err != nil {
		return Author{}, err
	}
	author.ID = id
	s.changed(ctx, p, "update", id)
	return author, nil
}

// Delete removes the author. Storage failures come back as DeleteRetry;
// only authorization failures are returned as errors.
func (s *Service) Delete(ctx context.Context, p rbac.Principal, id int64) (shared.DeleteResult, error) {
	if err := rbac.Authorize(p, rbac.DeleteAuthor); err != nil {
		return shared.DeleteResult{}, err
	}
	res := shared.AttemptDelete(ctx, s.logger, "Author", func(ctx context.Context) error {
		return s.repo.Delete(ctx, id)
	})
	if s.metrics != nil {
		s.metrics.ObserveDelete(internalShared.AuditEntityAuthor, res.Outcome.String())
	}
	if res.Outcome == shared.DeleteSucceeded {
		s.changed(ctx, p, "delete", id)
	}
	return res, nil
}

func (s *Service) changed(ctx context.Context, p rbac.Principal, action string, id int64) {
	if s.audit != nil {
		if err := s.audit.Record(ctx, internalShared.AuditLog{
			ActorID:  p.UserID,
			Action:   action,
			Entity:   internalShared.AuditEntityAuthor,
			EntityID: strconv.FormatInt(id, 10),
		}); err != nil {
			s.logger.Warn("audit author change", slog.String("action", action), slog.Any("error", err))
		}
	}
	if s.cache != nil {
		if err := s.cache.Bump(ctx); err != nil {
			s.logger.Warn("invalidate catalog stats", slog.Any("error", err))
		}
	}
}
