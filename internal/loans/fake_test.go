package loans

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/locallibrary/locallibrary/internal/shared"
)

type memoryRepo struct {
	mu      sync.Mutex
	records map[uuid.UUID]LoanRecord
	updates int
	failGet error
}

func newMemoryRepo(records ...LoanRecord) *memoryRepo {
	repo := &memoryRepo{records: make(map[uuid.UUID]LoanRecord)}
	for _, r := range records {
		repo.records[r.ID] = r
	}
	return repo
}

func (m *memoryRepo) Get(_ context.Context, id uuid.UUID) (LoanRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failGet != nil {
		return LoanRecord{}, m.failGet
	}
	r, ok := m.records[id]
	if !ok {
		return LoanRecord{}, ErrNotFound
	}
	return r, nil
}

func (m *memoryRepo) ListBorrowedBy(_ context.Context, userID int64) ([]LoanRecord, error) {
	return m.filter(func(r LoanRecord) bool { return r.BorrowedBy(userID) }), nil
}

func (m *memoryRepo) ListBorrowed(_ context.Context) ([]LoanRecord, error) {
	return m.filter(func(r LoanRecord) bool { return r.Status == StatusOnLoan }), nil
}

func (m *memoryRepo) ListDueBy(_ context.Context, cutoff time.Time) ([]LoanRecord, error) {
	return m.filter(func(r LoanRecord) bool {
		return r.Status == StatusOnLoan && r.BorrowerID != nil && !r.DueBack.After(Date(cutoff))
	}), nil
}

func (m *memoryRepo) UpdateDueBack(_ context.Context, id uuid.UUID, dueBack time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.records[id]
	if !ok {
		return ErrNotFound
	}
	d := Date(dueBack)
	r.DueBack = &d
	m.records[id] = r
	m.updates++
	return nil
}

func (m *memoryRepo) filter(keep func(LoanRecord) bool) []LoanRecord {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []LoanRecord
	for _, r := range m.records {
		if keep(r) {
			out = append(out, r)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].DueBack.Before(*out[j].DueBack) })
	return out
}

type auditSpy struct {
	entries []shared.AuditLog
}

func (a *auditSpy) Record(_ context.Context, log shared.AuditLog) error {
	a.entries = append(a.entries, log)
	return nil
}

type bumpSpy struct{ bumps int }

func (b *bumpSpy) Bump(context.Context) error {
	b.bumps++
	return nil
}

type metricsSpy struct{ outcomes []string }

func (m *metricsSpy) ObserveRenewal(outcome string) {
	m.outcomes = append(m.outcomes, outcome)
}

func onLoan(borrower int64, due time.Time, title string) LoanRecord {
	return LoanRecord{
		ID:         uuid.New(),
		DueBack:    &due,
		Status:     StatusOnLoan,
		BorrowerID: &borrower,
		BookTitle:  title,
	}
}
