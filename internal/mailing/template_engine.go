package mailing

import (
	"context"
	"fmt"

	"github.com/ignite/newsletter/internal/domain"
	"github.com/osteele/liquid"
)

// ConfirmationTemplates are Liquid sources for the welcome message. They
// are rendered with the bindings "name" and "email".
type ConfirmationTemplates struct {
	Subject string
	HTML    string
	Text    string
}

// DefaultConfirmationTemplates is used when configuration provides none.
var DefaultConfirmationTemplates = ConfirmationTemplates{
	Subject: "Welcome to the newsletter, {{ name }}!",
	HTML:    "<p>Hi {{ name | escape }},</p><p>Thanks for subscribing with {{ email | escape }}.</p>",
	Text:    "Hi {{ name }},\nThanks for subscribing with {{ email }}.",
}

// ConfirmationMailer renders the welcome message for a new subscriber and
// hands it to a Sender.
type ConfirmationMailer struct {
	sender  Sender
	subject *liquid.Template
	html    *liquid.Template
	text    *liquid.Template
}

// NewConfirmationMailer parses tpl once; parse errors are returned here so a
// bad template fails at startup rather than per send.
func NewConfirmationMailer(sender Sender, tpl ConfirmationTemplates) (*ConfirmationMailer, error) {
	engine := liquid.NewEngine()

	subject, err := engine.ParseString(tpl.Subject)
	if err != nil {
		return nil, fmt.Errorf("parse subject template: %w", err)
	}
	html, err := engine.ParseString(tpl.HTML)
	if err != nil {
		return nil, fmt.Errorf("parse html template: %w", err)
	}
	text, err := engine.ParseString(tpl.Text)
	if err != nil {
		return nil, fmt.Errorf("parse text template: %w", err)
	}
	return &ConfirmationMailer{sender: sender, subject: subject, html: html, text: text}, nil
}

// Message is a rendered email.
type Message struct {
	Subject  string
	HTMLBody string
	TextBody string
}

// Render builds the welcome message for s.
func (m *ConfirmationMailer) Render(s domain.NewSubscriber) (Message, error) {
	bindings := map[string]any{
		"name":  s.Name.String(),
		"email": s.Email.String(),
	}

	subject, err := m.subject.RenderString(bindings)
	if err != nil {
		return Message{}, fmt.Errorf("render subject: %w", err)
	}
	html, err := m.html.RenderString(bindings)
	if err != nil {
		return Message{}, fmt.Errorf("render html: %w", err)
	}
	text, err := m.text.RenderString(bindings)
	if err != nil {
		return Message{}, fmt.Errorf("render text: %w", err)
	}
	return Message{Subject: subject, HTMLBody: html, TextBody: text}, nil
}

// SendConfirmation renders and sends the welcome message to s.
func (m *ConfirmationMailer) SendConfirmation(ctx context.Context, s domain.NewSubscriber) error {
	msg, err := m.Render(s)
	if err != nil {
		return err
	}
	return m.sender.Send(ctx, s.Email, msg.Subject, msg.HTMLBody, msg.TextBody)
}
