package catalog

import (
	"context"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/locallibrary/locallibrary/internal/catalog/shared"
	"github.com/locallibrary/locallibrary/internal/loans"
)

// Words the home page counts.
const (
	StatsGenreWord = "Fantasy"
	StatsTitleWord = "The"
)

// Service answers read-only catalog queries.
type Service struct {
	repo   Repository
	cache  *StatsCache
	logger *slog.Logger
}

// NewService builds the catalog query service. cache may be nil.
func NewService(repo Repository, cache *StatsCache, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{repo: repo, cache: cache, logger: logger}
}

// Stats returns the home page counts, from cache when possible. A cache
// failure falls back to the database.
func (s *Service) Stats(ctx context.Context) (Stats, error) {
	stats, err := s.cache.Fetch(ctx, s.loadStats)
	if err == nil {
		return stats, nil
	}
	if ctx.Err() != nil {
		return Stats{}, err
	}
	s.logger.Warn("catalog stats cache", slog.Any("error", err))
	return s.loadStats(ctx)
}

func (s *Service) loadStats(ctx context.Context) (Stats, error) {
	var stats Stats
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		stats.Books, err = s.repo.CountBooks(ctx, "")
		return err
	})
	g.Go(func() (err error) {
		stats.Copies, err = s.repo.CountCopies(ctx, "")
		return err
	})
	g.Go(func() (err error) {
		stats.Available, err = s.repo.CountCopies(ctx, loans.StatusAvailable)
		return err
	})
	g.Go(func() (err error) {
		stats.Authors, err = s.repo.CountAuthors(ctx)
		return err
	})
	g.Go(func() (err error) {
		stats.FantasyGenres, err = s.repo.CountGenres(ctx, StatsGenreWord)
		return err
	})
	g.Go(func() (err error) {
		stats.BooksWithThe, err = s.repo.CountBooks(ctx, StatsTitleWord)
		return err
	})
	if err := g.Wait(); err != nil {
		return Stats{}, err
	}
	return stats, nil
}

// ListBooks returns one page of books matching the filters.
func (s *Service) ListBooks(ctx context.Context, filters shared.ListFilters) ([]BookSummary, int, error) {
	return s.repo.ListBooks(ctx, filters)
}

// GetBook returns a book with its genres and copies.
func (s *Service) GetBook(ctx context.Context, id int64) (BookDetail, error) {
	if id <= 0 {
		return BookDetail{}, shared.ErrNotFound
	}
	return s.repo.GetBook(ctx, id)
}

// ListAuthors returns one page of authors.
func (s *Service) ListAuthors(ctx context.Context, filters shared.ListFilters) ([]Author, int, error) {
	return s.repo.ListAuthors(ctx, filters)
}

// GetAuthor returns an author with their books.
func (s *Service) GetAuthor(ctx context.Context, id int64) (AuthorDetail, error) {
	if id <= 0 {
		return AuthorDetail{}, shared.ErrNotFound
	}
	return s.repo.GetAuthor(ctx, id)
}

// ListGenres returns every genre with its book count.
func (s *Service) ListGenres(ctx context.Context) ([]GenreCount, error) {
	return s.repo.ListGenres(ctx)
}
