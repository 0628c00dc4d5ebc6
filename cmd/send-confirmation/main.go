// Command send-confirmation renders the confirmation email for one address
// and sends it through the configured email client. It is used to check
// email_client settings against a real provider.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/ignite/newsletter/internal/config"
	"github.com/ignite/newsletter/internal/mailing"
	"github.com/ignite/newsletter/internal/service/subscription"
)

func main() {
	configPath := flag.String("config", "config/config.yaml", "config file")
	name := flag.String("name", "", "subscriber name")
	email := flag.String("email", "", "recipient address")
	dryRun := flag.Bool("dry-run", false, "print the rendered message instead of sending")
	flag.Parse()

	if err := run(*configPath, subscription.Form{Name: *name, Email: *email}, *dryRun); err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: %v\n", err)
		os.Exit(1)
	}
}

func run(configPath string, form subscription.Form, dryRun bool) error {
	cfg, err := config.LoadFromEnv(configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	subscriber, err := subscription.Convert(form)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	// a dry run only renders, so no transport is built
	var sender mailing.Sender
	if !dryRun {
		sender, err = mailing.NewSender(ctx, cfg.EmailClient)
		if err != nil {
			return err
		}
	}

	mailer, err := mailing.NewConfirmationMailer(sender, mailing.DefaultConfirmationTemplates)
	if err != nil {
		return err
	}

	if dryRun {
		msg, err := mailer.Render(subscriber)
		if err != nil {
			return err
		}
		fmt.Printf("Subject: %s\n\n%s\n", msg.Subject, msg.TextBody)
		return nil
	}

	if err := mailer.SendConfirmation(ctx, subscriber); err != nil {
		return err
	}
	fmt.Printf("✓ Confirmation sent to %s via %s\n", subscriber.Email, cfg.EmailClient.Provider)
	return nil
}
