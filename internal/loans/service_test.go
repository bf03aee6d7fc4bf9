package loans

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/locallibrary/locallibrary/internal/rbac"
	"github.com/locallibrary/locallibrary/internal/shared"
)

var fixedToday = day(2024, time.April, 15)

func newTestService(repo Repository) (*Service, *auditSpy, *bumpSpy, *metricsSpy) {
	audit, bump, metrics := &auditSpy{}, &bumpSpy{}, &metricsSpy{}
	svc := NewService(repo, audit, bump, metrics, nil)
	svc.clock = func() time.Time { return fixedToday.Add(9 * time.Hour) }
	return svc, audit, bump, metrics
}

func librarian() rbac.Principal {
	return rbac.NewPrincipal(1, []string{shared.PermCanMarkReturned})
}

func TestRenewStoresNewDueDate(t *testing.T) {
	record := onLoan(7, fixedToday.AddDate(0, 0, 2), "Dune")
	repo := newMemoryRepo(record)
	svc, audit, bump, metrics := newTestService(repo)

	proposed := fixedToday.AddDate(0, 0, 14)
	got, err := svc.Renew(context.Background(), librarian(), RenewalRequest{RecordID: record.ID, ProposedDueBack: proposed})
	require.NoError(t, err)
	assert.Equal(t, proposed, *got.DueBack)

	stored, _ := repo.Get(context.Background(), record.ID)
	assert.Equal(t, proposed, *stored.DueBack)
	assert.Equal(t, StatusOnLoan, stored.Status)
	assert.Equal(t, int64(7), *stored.BorrowerID)

	require.Len(t, audit.entries, 1)
	assert.Equal(t, shared.AuditEntityBookInstance, audit.entries[0].Entity)
	assert.Equal(t, record.ID.String(), audit.entries[0].EntityID)
	assert.Equal(t, 1, bump.bumps)
	assert.Equal(t, []string{OutcomeRenewed}, metrics.outcomes)
}

func TestRenewRejectsOutOfWindowDates(t *testing.T) {
	record := onLoan(7, fixedToday, "Dune")
	repo := newMemoryRepo(record)
	svc, audit, bump, metrics := newTestService(repo)

	_, err := svc.Renew(context.Background(), librarian(), RenewalRequest{RecordID: record.ID, ProposedDueBack: fixedToday.AddDate(0, 0, -1)})
	require.ErrorIs(t, err, ErrRenewalInPast)

	_, err = svc.Renew(context.Background(), librarian(), RenewalRequest{RecordID: record.ID, ProposedDueBack: fixedToday.AddDate(0, 0, 29)})
	require.ErrorIs(t, err, ErrRenewalTooFarAhead)

	assert.Zero(t, repo.updates)
	assert.Empty(t, audit.entries)
	assert.Zero(t, bump.bumps)
	assert.Equal(t, []string{OutcomeRejected, OutcomeRejected}, metrics.outcomes)
}

func TestRenewRequiresPermission(t *testing.T) {
	record := onLoan(7, fixedToday, "Dune")
	repo := newMemoryRepo(record)
	svc, _, _, metrics := newTestService(repo)
	req := RenewalRequest{RecordID: record.ID, ProposedDueBack: fixedToday}

	_, err := svc.Renew(context.Background(), rbac.Anonymous(), req)
	require.ErrorIs(t, err, rbac.ErrUnauthenticated)

	_, err = svc.Renew(context.Background(), rbac.NewPrincipal(7, nil), req)
	require.ErrorIs(t, err, rbac.ErrForbidden)

	assert.Zero(t, repo.updates)
	assert.Equal(t, []string{OutcomeForbidden, OutcomeForbidden}, metrics.outcomes)
}

func TestRenewRejectsCopyNotOnLoan(t *testing.T) {
	record := LoanRecord{ID: uuid.New(), Status: StatusAvailable, BookTitle: "Emma"}
	repo := newMemoryRepo(record)
	svc, _, _, _ := newTestService(repo)

	got, err := svc.Renew(context.Background(), librarian(), RenewalRequest{RecordID: record.ID, ProposedDueBack: fixedToday})
	require.ErrorIs(t, err, ErrNotOnLoan)
	assert.Equal(t, "Emma", got.BookTitle)
	assert.Zero(t, repo.updates)
}

func TestRenewUnknownCopy(t *testing.T) {
	svc, _, _, metrics := newTestService(newMemoryRepo())
	_, err := svc.Renew(context.Background(), librarian(), RenewalRequest{RecordID: uuid.New(), ProposedDueBack: fixedToday})
	require.ErrorIs(t, err, ErrNotFound)
	assert.Empty(t, metrics.outcomes)
}

func TestRenewStorageFailure(t *testing.T) {
	repo := newMemoryRepo()
	repo.failGet = errors.New("connection reset")
	svc, _, _, metrics := newTestService(repo)

	_, err := svc.Renew(context.Background(), librarian(), RenewalRequest{RecordID: uuid.New(), ProposedDueBack: fixedToday})
	require.Error(t, err)
	assert.Equal(t, []string{OutcomeError}, metrics.outcomes)
}

func TestPrepareRenewalOffersDefaultDate(t *testing.T) {
	record := onLoan(7, fixedToday, "Dune")
	svc, _, _, _ := newTestService(newMemoryRepo(record))

	got, proposed, err := svc.PrepareRenewal(context.Background(), librarian(), record.ID)
	require.NoError(t, err)
	assert.Equal(t, record.ID, got.ID)
	assert.Equal(t, fixedToday.AddDate(0, 0, DefaultRenewalDays), proposed)
}

func TestBorrowedListsOnlyOwnLoans(t *testing.T) {
	mine := onLoan(7, fixedToday.AddDate(0, 0, 3), "Dune")
	older := onLoan(7, fixedToday.AddDate(0, 0, -2), "Emma")
	theirs := onLoan(8, fixedToday, "Ulysses")
	svc, _, _, _ := newTestService(newMemoryRepo(mine, older, theirs))

	got, err := svc.Borrowed(context.Background(), rbac.NewPrincipal(7, nil))
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "Emma", got[0].BookTitle)
	assert.Equal(t, "Dune", got[1].BookTitle)

	_, err = svc.Borrowed(context.Background(), rbac.Anonymous())
	assert.ErrorIs(t, err, rbac.ErrUnauthenticated)
}

func TestAllBorrowedRequiresPermission(t *testing.T) {
	svc, _, _, _ := newTestService(newMemoryRepo(onLoan(7, fixedToday, "Dune"), onLoan(8, fixedToday, "Emma")))

	_, err := svc.AllBorrowed(context.Background(), rbac.NewPrincipal(7, nil))
	require.ErrorIs(t, err, rbac.ErrForbidden)

	got, err := svc.AllBorrowed(context.Background(), librarian())
	require.NoError(t, err)
	assert.Len(t, got, 2)
}

// unscopedRepo ignores the borrower filter, as a broken query would.
type unscopedRepo struct {
	*memoryRepo
}

func (u unscopedRepo) ListBorrowedBy(ctx context.Context, _ int64) ([]LoanRecord, error) {
	return u.memoryRepo.ListBorrowed(ctx)
}

func TestBorrowedKeepsOnlyThePrincipalsCopies(t *testing.T) {
	mine := onLoan(7, fixedToday.AddDate(0, 0, 3), "Dune")
	theirs := onLoan(8, fixedToday.AddDate(0, 0, 3), "Emma")
	svc, _, _, _ := newTestService(unscopedRepo{newMemoryRepo(mine, theirs)})

	got, err := svc.Borrowed(context.Background(), rbac.NewPrincipal(7, nil))
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, mine.ID, got[0].ID)
}
