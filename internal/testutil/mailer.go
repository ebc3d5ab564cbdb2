package testutil

import (
	"context"
	"regexp"
	"sync"

	"boilerplate_backend/internal/email"
)

var tokenInURL = regexp.MustCompile(`/(?:verify-email|reset-password)/([0-9a-f]{64})`)

// FakeMailer - email.Sender, который запоминает письма. Err подменяет ошибку отправки
type FakeMailer struct {
	mu   sync.Mutex
	sent []*email.Message
	Err  error
}

func (f *FakeMailer) Send(_ context.Context, msg *email.Message) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.Err != nil {
		return f.Err
	}
	f.sent = append(f.sent, msg)
	return nil
}

func (f *FakeMailer) SetErr(err error) {
	f.mu.Lock()
	f.Err = err
	f.mu.Unlock()
}

func (f *FakeMailer) Sent() []*email.Message {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]*email.Message(nil), f.sent...)
}

// LastToken достает токен из ссылки в последнем письме
func (f *FakeMailer) LastToken() string {
	f.mu.Lock()
	defer f.mu.Unlock()

	if len(f.sent) == 0 {
		return ""
	}
	m := tokenInURL.FindStringSubmatch(f.sent[len(f.sent)-1].HTMLBody)
	if len(m) < 2 {
		return ""
	}
	return m[1]
}

// NewEmailService - настоящий email.Service поверх FakeMailer
func NewEmailService(sender email.Sender) *email.Service {
	tm, err := email.NewTemplateManager()
	if err != nil {
		panic(err)
	}
	return email.NewService(sender, tm, "Test App", "http://localhost:3000", "http://localhost:3001")
}
