package jobs

import (
	"encoding/json"
	"time"

	"github.com/hibiken/asynq"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskTypeSendEmail is the task type for sending transactional emails.
	TaskTypeSendEmail = "mail:send"
	// TaskTypeDueReminder scans loans and queues reminder emails.
	TaskTypeDueReminder = "loans:due_reminder"
)

// SendEmailPayload describes the information required to send an email.
type SendEmailPayload struct {
	To      string `json:"to"`
	Subject string `json:"subject"`
	Body    string `json:"body"`
}

// DueReminderPayload controls a reminder scan. A zero Days uses the job default.
type DueReminderPayload struct {
	Days int `json:"days,omitempty"`
}

// NewSendEmailTask constructs an Asynq task.
func NewSendEmailTask(payload SendEmailPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskTypeSendEmail, data, asynq.MaxRetry(5), asynq.Timeout(30*time.Second)), nil
}

// NewDueReminderTask constructs the reminder scan task.
func NewDueReminderTask(payload DueReminderPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskTypeDueReminder, data, asynq.MaxRetry(2), asynq.Timeout(5*time.Minute)), nil
}
