package api

import (
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/ignite/newsletter/internal/domain"
	"github.com/ignite/newsletter/internal/metrics"
	"github.com/ignite/newsletter/internal/pkg/httputil"
	"github.com/ignite/newsletter/internal/pkg/logger"
	"github.com/ignite/newsletter/internal/service/subscription"
)

// handleSubscribe accepts a url-encoded name/email form.
//
//	POST /subscriptions
//
// 200 when stored, 400 when the form is missing a field or fails
// validation, 500 when the insert fails. Bodies are always empty.
func (s *Server) handleSubscribe(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	requestID := middleware.GetReqID(r.Context())
	if requestID == "" {
		requestID = uuid.NewString()
	}

	form, formErr := decodeForm(r)

	log := s.log.With(
		"request_id", requestID,
		"subscriber_email", form.Email,
		"subscriber_name", form.Name,
	)
	log.Info("Adding a new subscriber")
	ctx := logger.NewContext(r.Context(), log)

	if formErr != nil {
		log.Info("Rejected subscription form", "reason", formErr)
		s.observe(metrics.OutcomeInvalid, start)
		httputil.BadRequest(w)
		return
	}

	if _, err := s.subscriptions.Subscribe(ctx, form); err != nil {
		var verr *domain.ValidationError
		if errors.As(err, &verr) {
			s.observe(metrics.OutcomeInvalid, start)
			httputil.BadRequest(w)
			return
		}
		s.observe(metrics.OutcomeError, start)
		httputil.InternalError(w)
		return
	}

	s.observe(metrics.OutcomeOK, start)
	httputil.OK(w)
}

// decodeForm reads name and email from a url-encoded body. A missing key is
// a ValidationError; an empty value is left for the parsers to reject.
func decodeForm(r *http.Request) (subscription.Form, error) {
	if err := r.ParseForm(); err != nil {
		return subscription.Form{}, &domain.ValidationError{Field: "form", Reason: "body is not a valid form"}
	}

	form := subscription.Form{
		Name:  r.PostForm.Get("name"),
		Email: r.PostForm.Get("email"),
	}
	if !r.PostForm.Has("name") {
		return form, &domain.ValidationError{Field: "name", Reason: "missing"}
	}
	if !r.PostForm.Has("email") {
		return form, &domain.ValidationError{Field: "email", Reason: "missing"}
	}
	return form, nil
}

func (s *Server) observe(outcome string, start time.Time) {
	if s.metrics == nil {
		return
	}
	s.metrics.ObserveSubscription(outcome, time.Since(start))
}
