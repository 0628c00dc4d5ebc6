package subscription

import "github.com/ignite/newsletter/internal/domain"

// Form is the raw, untrusted body of a subscription request.
type Form struct {
	Name  string
	Email string
}

// Convert validates form into a NewSubscriber. The name is checked first and
// the first failure is returned as-is; errors are never aggregated.
func Convert(form Form) (domain.NewSubscriber, error) {
	name, err := domain.ParseSubscriberName(form.Name)
	if err != nil {
		return domain.NewSubscriber{}, err
	}
	email, err := domain.ParseSubscriberEmail(form.Email)
	if err != nil {
		return domain.NewSubscriber{}, err
	}
	return domain.NewSubscriber{Email: email, Name: name}, nil
}
