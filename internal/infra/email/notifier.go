package email

import (
	"context"
	"fmt"
	"net/smtp"
	"strings"

	"go.uber.org/zap"
)

type SMTPNotifier struct {
	host   string
	port   int
	from   string
	logger *zap.Logger
}

func NewSMTPNotifier(host string, port int, from string, logger *zap.Logger) *SMTPNotifier {
	return &SMTPNotifier{host: host, port: port, from: from, logger: logger}
}

func (n *SMTPNotifier) NotifyFailure(_ context.Context, to, jobID, mediaID, errorMsg string) error {
	addr := fmt.Sprintf("%s:%d", n.host, n.port)

	err := smtp.SendMail(addr, nil, n.from, []string{to}, failureMessage(n.from, to, jobID, mediaID, errorMsg))
	if err != nil {
		n.logger.Error("failed to send failure notification email",
			zap.String("to", to),
			zap.String("job_id", jobID),
			zap.Error(err),
		)
		return fmt.Errorf("send email: %w", err)
	}

	n.logger.Info("failure notification email sent",
		zap.String("to", to),
		zap.String("job_id", jobID),
	)
	return nil
}

func failureMessage(from, to, jobID, mediaID, errorMsg string) []byte {
	subject := fmt.Sprintf("MetaCoach - Content Analysis Failed [Job %s]", jobID)
	body := strings.Join([]string{
		"Hello,",
		"",
		"The analysis of one of your posts could not be completed.",
		"",
		"Job ID: " + jobID,
		"Media ID: " + mediaID,
		"Error: " + errorMsg,
		"",
		"Media without a download URL (copyrighted audio, removed posts) cannot be analysed.",
		"Other failures can be retried by requesting the analysis again.",
		"",
		"-- MetaCoach Analysis Service",
	}, "\r\n")

	return []byte(fmt.Sprintf("From: %s\r\nTo: %s\r\nSubject: %s\r\n\r\n%s", from, to, subject, body))
}
