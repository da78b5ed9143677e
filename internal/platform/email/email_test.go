package email

import (
	"context"
	"strings"
	"testing"

	"leaveportal/internal/domain/notifications"
	"leaveportal/internal/platform/config"
)

func TestNewWithoutHostDropsMail(t *testing.T) {
	for _, cfg := range []config.Config{
		{EmailEnabled: false, SMTPHost: "smtp.example.com"},
		{EmailEnabled: true},
	} {
		mailer := New(cfg)
		if _, ok := mailer.(noopMailer); !ok {
			t.Fatalf("expected noop mailer for %+v, got %T", cfg, mailer)
		}
		if err := mailer.Send(context.Background(), notifications.Message{To: "a@example.com"}); err != nil {
			t.Fatalf("noop send: %v", err)
		}
	}
	if _, ok := New(config.Config{EmailEnabled: true, SMTPHost: "smtp.example.com"}).(*smtpMailer); !ok {
		t.Fatal("expected smtp mailer when a host is configured")
	}
}

func TestSMTPSendSkipsBlankRecipient(t *testing.T) {
	mailer := &smtpMailer{cfg: config.Config{SMTPHost: "127.0.0.1", SMTPPort: 1}}
	if err := mailer.Send(context.Background(), notifications.Message{To: "  "}); err != nil {
		t.Fatalf("expected blank recipient to be skipped, got %v", err)
	}
}

func TestBuildMessage(t *testing.T) {
	msg := string(buildMessage("portal@example.com", "m@example.com", "New Leave Request / طلب إجازة جديد", "line one\nline two"))

	for _, want := range []string{
		"From: portal@example.com\r\n",
		"To: m@example.com\r\n",
		"Subject: =?UTF-8?b?",
		"Content-Type: text/plain; charset=\"UTF-8\"\r\n",
		"\r\n\r\nline one\r\nline two",
	} {
		if !strings.Contains(msg, want) {
			t.Fatalf("message missing %q:\n%s", want, msg)
		}
	}
}
