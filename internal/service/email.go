package service

import (
	"context"
	"fmt"

	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"

	"clubhub-backend/internal/domain"
	"clubhub-backend/internal/logger"
)

type emailService struct {
	client    *sendgrid.Client
	fromEmail string
	fromName  string
	org       string
}

// NewEmailService returns a SendGrid-backed notifier, or a no-op one when apiKey is empty.
func NewEmailService(apiKey, fromEmail, fromName, org string) EmailService {
	if apiKey == "" {
		return noopEmailService{}
	}
	return &emailService{
		client:    sendgrid.NewSendClient(apiKey),
		fromEmail: fromEmail,
		fromName:  fromName,
		org:       org,
	}
}

func (s *emailService) SendStatusNotification(ctx context.Context, req *domain.MembershipRequest) error {
	subject, body, ok := statusMessage(req, s.org)
	if !ok {
		return nil
	}

	from := mail.NewEmail(s.fromName, s.fromEmail)
	to := mail.NewEmail(req.GitHubUsername, req.UserEmail)
	message := mail.NewSingleEmail(from, subject, to, body, "")

	logger.ExternalServiceCall("sendgrid", "SendStatusNotification", "request_id", req.ID, "status", req.Status)
	response, err := s.client.SendWithContext(ctx, message)
	if err == nil && response.StatusCode >= 400 {
		err = fmt.Errorf("sendgrid error: status %d, body: %s", response.StatusCode, response.Body)
	}
	logger.ExternalServiceResult("sendgrid", "SendStatusNotification", err, "request_id", req.ID)
	if err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}
	return nil
}

// statusMessage renders the notification for a status; ok is false when the status warrants none.
func statusMessage(req *domain.MembershipRequest, org string) (subject, body string, ok bool) {
	greeting := fmt.Sprintf("Hello %s,\n\n", req.GitHubUsername)
	footer := "\n\nBest regards,\nThe Club Team"

	switch req.Status {
	case domain.MembershipStatusInviteSent:
		return fmt.Sprintf("Your invitation to %s is on its way", org),
			greeting + fmt.Sprintf("Your request to join the %s GitHub organization was approved. Check your GitHub notifications or email to accept the invitation.", org) + footer, true
	case domain.MembershipStatusAlreadyInvited:
		return fmt.Sprintf("Your %s invitation is waiting", org),
			greeting + fmt.Sprintf("Your request was approved and you already have a pending invitation to %s. Accept it on GitHub to finish joining.", org) + footer, true
	case domain.MembershipStatusAlreadyMember:
		return fmt.Sprintf("You are already a member of %s", org),
			greeting + fmt.Sprintf("Your request was approved; GitHub reports you are already a member of %s.", org) + footer, true
	case domain.MembershipStatusDenied:
		body := greeting + fmt.Sprintf("Your request to join the %s GitHub organization was not approved.", org)
		if req.AdminNotes != "" {
			body += "\n\nNotes from the reviewer: " + req.AdminNotes
		}
		return fmt.Sprintf("Update on your %s membership request", org), body + footer, true
	}
	return "", "", false
}

type noopEmailService struct{}

func (noopEmailService) SendStatusNotification(ctx context.Context, req *domain.MembershipRequest) error {
	logger.Debug("Email disabled, skipping status notification", "request_id", req.ID, "status", req.Status)
	return nil
}
