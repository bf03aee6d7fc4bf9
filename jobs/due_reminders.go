package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/hibiken/asynq"

	jobmetrics "github.com/locallibrary/locallibrary/internal/jobs"
	"github.com/locallibrary/locallibrary/internal/loans"
)

// DefaultReminderDays is how far ahead the scan looks when nothing else is set.
const DefaultReminderDays = 3

// DueLoanSource lists copies on loan due on or before a cutoff date.
type DueLoanSource interface {
	ListDueBy(ctx context.Context, cutoff time.Time) ([]loans.LoanRecord, error)
}

// EmailEnqueuer queues mail:send tasks.
type EmailEnqueuer interface {
	EnqueueSendEmail(ctx context.Context, payload SendEmailPayload, opts ...asynq.Option) (*asynq.TaskInfo, error)
}

// DueReminderJob emails each borrower a summary of copies due soon or overdue.
type DueReminderJob struct {
	Loans   DueLoanSource
	Mail    EmailEnqueuer
	Logger  *slog.Logger
	Metrics *jobmetrics.Metrics
	Days    int
	clock   func() time.Time
}

// NewDueReminderJob wires dependencies for the reminder handler.
func NewDueReminderJob(source DueLoanSource, mail EmailEnqueuer, days int, logger *slog.Logger, metrics *jobmetrics.Metrics) *DueReminderJob {
	return &DueReminderJob{
		Loans:   source,
		Mail:    mail,
		Logger:  logger,
		Metrics: metrics,
		Days:    days,
		clock:   time.Now,
	}
}

type borrowerReminder struct {
	email   string
	due     []loans.LoanRecord
	overdue int
}

// Handle processes loans:due_reminder tasks.
func (j *DueReminderJob) Handle(ctx context.Context, t *asynq.Task) error {
	if j == nil || j.Loans == nil || j.Mail == nil {
		return errors.New("due reminder: handler not configured")
	}
	var payload DueReminderPayload
	if len(t.Payload()) > 0 {
		if err := json.Unmarshal(t.Payload(), &payload); err != nil {
			return fmt.Errorf("due reminder: decode payload: %v: %w", err, asynq.SkipRetry)
		}
	}
	_, err := j.Run(ctx, payload.Days)
	return err
}

// Run scans loans and queues one email per borrower, returning how many were queued.
func (j *DueReminderJob) Run(ctx context.Context, days int) (int, error) {
	tracker := j.Metrics.Track(TaskTypeDueReminder)
	sent, err := j.run(ctx, days)
	return sent, tracker.End(err)
}

func (j *DueReminderJob) run(ctx context.Context, days int) (int, error) {
	if days <= 0 {
		days = j.Days
	}
	if days <= 0 {
		days = DefaultReminderDays
	}
	now := j.now()
	today := loans.Date(now)
	retention := reminderRetention(now)
	cutoff := today.AddDate(0, 0, days)
	logger := j.logger().With(slog.String("cutoff", cutoff.Format(time.DateOnly)))

	records, err := j.Loans.ListDueBy(ctx, cutoff)
	if err != nil {
		logger.Error("load due loans", slog.Any("error", err))
		return 0, err
	}
	reminders := groupByBorrower(records, today)
	if len(reminders) == 0 {
		logger.Info("no loans due")
		return 0, nil
	}

	sent, overdue, dueSoon := 0, 0, 0
	for _, rem := range reminders {
		payload := SendEmailPayload{
			To:      rem.email,
			Subject: reminderSubject(rem),
			Body:    reminderBody(rem, today),
		}
		taskID := "due-reminder:" + rem.email + ":" + today.Format(time.DateOnly)
		if _, err := j.Mail.EnqueueSendEmail(ctx, payload, asynq.TaskID(taskID), asynq.Retention(retention)); err != nil {
			if errors.Is(err, asynq.ErrTaskIDConflict) {
				logger.Debug("reminder already queued today", slog.String("to", rem.email))
				continue
			}
			logger.Error("enqueue reminder", slog.String("to", rem.email), slog.Any("error", err))
			return sent, err
		}
		sent++
		if rem.overdue > 0 {
			overdue++
		} else {
			dueSoon++
		}
	}
	j.Metrics.AddReminders("overdue", overdue)
	j.Metrics.AddReminders("due_soon", dueSoon)
	logger.Info("queued loan reminders", slog.Int("emails", sent), slog.Int("loans", len(records)))
	return sent, nil
}

// reminderRetention keeps a delivered reminder until the end of the day so
// its task ID keeps rejecting same-day duplicates.
func reminderRetention(now time.Time) time.Duration {
	y, m, d := now.Date()
	remaining := time.Date(y, m, d+1, 0, 0, 0, 0, now.Location()).Sub(now)
	if remaining < time.Minute {
		return time.Minute
	}
	return remaining
}

func groupByBorrower(records []loans.LoanRecord, today time.Time) []*borrowerReminder {
	var order []*borrowerReminder
	byEmail := make(map[string]*borrowerReminder)
	for _, rec := range records {
		email := strings.TrimSpace(rec.BorrowerEmail)
		if email == "" || rec.Status != loans.StatusOnLoan || rec.DueBack == nil {
			continue
		}
		rem, ok := byEmail[email]
		if !ok {
			rem = &borrowerReminder{email: email}
			byEmail[email] = rem
			order = append(order, rem)
		}
		rem.due = append(rem.due, rec)
		if rec.IsOverdue(today) {
			rem.overdue++
		}
	}
	return order
}

func reminderSubject(rem *borrowerReminder) string {
	if rem.overdue > 0 {
		return "Your library loans are overdue"
	}
	return "Your library loans are due soon"
}

func reminderBody(rem *borrowerReminder, today time.Time) string {
	var b strings.Builder
	b.WriteString("Hello,\n\nThe following books are due back at the library:\n\n")
	for _, rec := range rem.due {
		line := fmt.Sprintf("- %s (due %s)", rec.BookTitle, rec.DueBack.Format(time.DateOnly))
		if rec.IsOverdue(today) {
			line += " OVERDUE"
		}
		b.WriteString(line + "\n")
	}
	b.WriteString("\nYou can renew eligible loans from \"My borrowed books\".\n")
	return b.String()
}

func (j *DueReminderJob) now() time.Time {
	if j.clock == nil {
		return time.Now()
	}
	return j.clock()
}

func (j *DueReminderJob) logger() *slog.Logger {
	if j.Logger == nil {
		return slog.Default()
	}
	return j.Logger
}
