// Package subscription implements subscriber intake: converting a raw form
// into a validated domain.NewSubscriber and storing it as a subscription.
//
// The service layer contains the decision logic and depends on the
// Repository interface defined in repository.go. It never imports net/http
// or database/sql directly; the HTTP layer maps its errors to status codes.
package subscription
