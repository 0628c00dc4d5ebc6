package mailing

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/aws/aws-sdk-go-v2/service/sesv2/types"
	"github.com/ignite/newsletter/internal/domain"
)

// sesAPI is the subset of *sesv2.Client used here.
type sesAPI interface {
	SendEmail(ctx context.Context, in *sesv2.SendEmailInput, optFns ...func(*sesv2.Options)) (*sesv2.SendEmailOutput, error)
}

// SESOptions selects region and credentials. Empty keys fall back to the
// default AWS credential chain (IAM role on ECS).
type SESOptions struct {
	Region    string
	AccessKey string
	SecretKey string
}

// SESSender sends email via AWS SES using the SDK v2.
type SESSender struct {
	api     sesAPI
	sender  domain.SubscriberEmail
	timeout time.Duration
}

// NewSESSender loads AWS configuration and builds an SES v2 client.
func NewSESSender(ctx context.Context, opts SESOptions, sender domain.SubscriberEmail, timeout time.Duration) (*SESSender, error) {
	region := opts.Region
	if region == "" {
		region = "us-east-1"
	}

	loadOpts := []func(*awsconfig.LoadOptions) error{awsconfig.WithRegion(region)}
	if opts.AccessKey != "" && opts.SecretKey != "" {
		loadOpts = append(loadOpts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(opts.AccessKey, opts.SecretKey, ""),
		))
	}

	cfg, err := awsconfig.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}
	return newSESSender(sesv2.NewFromConfig(cfg), sender, timeout), nil
}

func newSESSender(api sesAPI, sender domain.SubscriberEmail, timeout time.Duration) *SESSender {
	return &SESSender{api: api, sender: sender, timeout: orDefault(timeout)}
}

// Send delivers a single message through SES.
func (s *SESSender) Send(ctx context.Context, recipient domain.SubscriberEmail, subject, htmlBody, textBody string) error {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	input := &sesv2.SendEmailInput{
		FromEmailAddress: aws.String(s.sender.String()),
		Destination:      &types.Destination{ToAddresses: []string{recipient.String()}},
		Content: &types.EmailContent{
			Simple: &types.Message{
				Subject: &types.Content{Data: aws.String(subject), Charset: aws.String("UTF-8")},
				Body: &types.Body{
					Html: &types.Content{Data: aws.String(htmlBody), Charset: aws.String("UTF-8")},
				},
			},
		},
	}
	if textBody != "" {
		input.Content.Simple.Body.Text = &types.Content{Data: aws.String(textBody), Charset: aws.String("UTF-8")}
	}

	if _, err := s.api.SendEmail(ctx, input); err != nil {
		return &NotificationError{Provider: "ses", Err: err}
	}
	return nil
}
