package email

import (
	"context"
	"fmt"
	"strings"

	"boilerplate_backend/internal/logger"
)

// Service собирает письма из шаблонов и отдает их Sender
type Service struct {
	sender      Sender
	templates   *TemplateManager
	appName     string
	serverURL   string
	frontendURL string
}

func NewService(sender Sender, templates *TemplateManager, appName, serverURL, frontendURL string) *Service {
	return &Service{
		sender:      sender,
		templates:   templates,
		appName:     appName,
		serverURL:   strings.TrimRight(serverURL, "/"),
		frontendURL: strings.TrimRight(frontendURL, "/"),
	}
}

// VerificationURL - ссылка ведет на API, GET /api/auth/verify-email/:token
func (s *Service) VerificationURL(token string) string {
	return fmt.Sprintf("%s/api/auth/verify-email/%s", s.serverURL, token)
}

// ResetURL - ссылка ведет на фронтенд, который потом зовет POST /api/auth/reset-password/:token
func (s *Service) ResetURL(token string) string {
	return fmt.Sprintf("%s/reset-password/%s", s.frontendURL, token)
}

func (s *Service) SendVerificationEmail(ctx context.Context, to, name, token string) error {
	return s.send(ctx, to, "Verify your email address", TemplateVerification, TemplateData{
		"Name":    name,
		"URL":     s.VerificationURL(token),
		"AppName": s.appName,
	})
}

func (s *Service) SendPasswordResetEmail(ctx context.Context, to, name, token string) error {
	return s.send(ctx, to, "Reset Your Password", TemplateReset, TemplateData{
		"Name":    name,
		"URL":     s.ResetURL(token),
		"AppName": s.appName,
	})
}

func (s *Service) send(ctx context.Context, to, subject, templateName string, data TemplateData) error {
	html, err := s.templates.Render(templateName, data)
	if err != nil {
		return err
	}

	err = s.sender.Send(ctx, &Message{
		To:       []string{to},
		Subject:  subject,
		Body:     fmt.Sprintf("%s: %s", subject, data["URL"]),
		HTMLBody: html,
	})
	if err != nil {
		logger.CtxWithError(ctx, "failed to send email", err, "to", to, "template", templateName)
		return err
	}

	logger.CtxInfo(ctx, "email sent", "to", to, "template", templateName)
	return nil
}
