package notifier

import (
	"context"
	"fmt"
	"log/slog"
)

// Mailer delivers decision e-mails to applicants.
type Mailer interface {
	Send(ctx context.Context, to, subject, body string) error
}

// LogMailer writes e-mails to the log instead of an SMTP relay. Deployments
// that front mail through an external provider swap this for a real sender.
type LogMailer struct {
	logger *slog.Logger
}

// NewLogMailer creates a LogMailer
func NewLogMailer(logger *slog.Logger) *LogMailer {
	return &LogMailer{logger: logger}
}

func (m *LogMailer) Send(ctx context.Context, to, subject, body string) error {
	m.logger.Info("Sending mail",
		slog.String("to", to),
		slog.String("subject", subject),
		slog.String("body", body),
	)
	return nil
}

// acceptanceMail builds the e-mail sent to an applicant whose proposal was
// accepted. The link opens the job in the freelancer workspace.
func acceptanceMail(jobTitle, jobID, frontendURL string) (subject, body string) {
	subject = "Proposal accepted"
	body = fmt.Sprintf(
		"Congratulations! Your proposal for %q has been accepted.\n\nStart working on the job here: %s/freelancer/jobs/%s\n",
		jobTitle, frontendURL, jobID,
	)
	return subject, body
}

// rejectionMail builds the e-mail sent to an applicant whose proposal was
// declined. The link points back at the public job listing.
func rejectionMail(jobTitle, jobID, frontendURL string) (subject, body string) {
	subject = "Proposal declined"
	body = fmt.Sprintf(
		"Unfortunately your proposal for %q was not selected this time.\n\nBrowse other jobs here: %s/jobs/%s\n",
		jobTitle, frontendURL, jobID,
	)
	return subject, body
}
