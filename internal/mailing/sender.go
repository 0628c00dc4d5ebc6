// Package mailing holds the notification port used to email subscribers,
// its transports, and the confirmation message built on top of it.
package mailing

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/ignite/newsletter/internal/domain"
)

// DefaultTimeout bounds one Send when no timeout is configured.
const DefaultTimeout = 10 * time.Second

// Sender delivers one email to one recipient. Implementations make a single
// outbound call per Send, never retry, and never block past their timeout.
type Sender interface {
	Send(ctx context.Context, recipient domain.SubscriberEmail, subject, htmlBody, textBody string) error
}

// HTTPDoer is the interface for executing HTTP requests. *http.Client
// satisfies it.
type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// NotificationError reports a failed delivery attempt. StatusCode is set
// when the provider answered with a non-success status.
type NotificationError struct {
	Provider   string
	StatusCode int
	Err        error
}

func (e *NotificationError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s: send email: status %d", e.Provider, e.StatusCode)
	}
	return fmt.Sprintf("%s: send email: %v", e.Provider, e.Err)
}

func (e *NotificationError) Unwrap() error { return e.Err }

// Timeout reports whether the attempt ran out of time.
func (e *NotificationError) Timeout() bool {
	if errors.Is(e.Err, context.DeadlineExceeded) {
		return true
	}
	var ne net.Error
	return errors.As(e.Err, &ne) && ne.Timeout()
}

func orDefault(d time.Duration) time.Duration {
	if d <= 0 {
		return DefaultTimeout
	}
	return d
}
