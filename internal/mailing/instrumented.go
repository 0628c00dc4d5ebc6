package mailing

import (
	"context"

	"github.com/ignite/newsletter/internal/domain"
)

// Observer receives the result of every send attempt.
type Observer interface {
	ObserveNotification(provider string, err error)
}

type instrumentedSender struct {
	next     Sender
	provider string
	obs      Observer
}

// Instrument wraps next so each Send is reported to obs under provider.
func Instrument(next Sender, provider string, obs Observer) Sender {
	return &instrumentedSender{next: next, provider: provider, obs: obs}
}

func (s *instrumentedSender) Send(ctx context.Context, recipient domain.SubscriberEmail, subject, htmlBody, textBody string) error {
	err := s.next.Send(ctx, recipient, subject, htmlBody, textBody)
	s.obs.ObserveNotification(s.provider, err)
	return err
}
