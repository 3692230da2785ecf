package controllers

import (
	"net/http"

	"github.com/quayside/quayside-backend/api/middleware"
	"github.com/quayside/quayside-backend/api/responses"
	"github.com/quayside/quayside-backend/api/validators"
	"github.com/quayside/quayside-backend/internal/exceptions"
	"github.com/quayside/quayside-backend/pkg/capability"
	"github.com/quayside/quayside-backend/pkg/enums"
	pkgerrors "github.com/quayside/quayside-backend/pkg/errors"
	"github.com/quayside/quayside-backend/pkg/logger"
)

// ExceptionList returns the triage feed filtered by status, severity, or type.
func ExceptionList(svc exceptions.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "exceptions service unavailable"))
			return
		}

		limit, err := validators.ParseQueryInt(r, "limit", 50, 1, 100)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		offset, err := validators.ParseQueryInt(r, "offset", 0, 0, 10_000)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		filter := exceptions.Filter{
			Status:   enums.ExceptionStatus(validators.SanitizeString(r.URL.Query().Get("status"), 32)),
			Severity: enums.ExceptionSeverity(validators.SanitizeString(r.URL.Query().Get("severity"), 32)),
			Type:     enums.ExceptionType(validators.SanitizeString(r.URL.Query().Get("type"), 64)),
			Limit:    limit,
			Offset:   offset,
		}

		list, err := svc.List(r.Context(), filter)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		views := make([]exceptionView, 0, len(list))
		for _, exception := range list {
			views = append(views, newExceptionView(exception))
		}
		responses.WriteSuccess(w, views)
	}
}

// ExceptionDetail returns a single exception.
func ExceptionDetail(svc exceptions.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "exceptions service unavailable"))
			return
		}

		exceptionID, err := parseUUIDParam(r, "exceptionId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		exception, err := svc.Get(r.Context(), exceptionID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, newExceptionView(*exception))
	}
}

type exceptionTransitionRequest struct {
	Target string `json:"target" validate:"required,oneof=acknowledged investigating resolved closed"`
}

// ExceptionTransition advances an exception one step through triage. Closing
// is gated on a dedicated capability because it removes the exception from
// the feed permanently.
func ExceptionTransition(svc exceptions.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "exceptions service unavailable"))
			return
		}

		exceptionID, err := parseUUIDParam(r, "exceptionId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		actor, err := actorFromContext(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body exceptionTransitionRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		target, err := enums.ParseExceptionStatus(body.Target)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid target status"))
			return
		}

		if target == enums.ExceptionStatusClosed {
			role := enums.StaffRole(middleware.RoleFromContext(r.Context()))
			if !capability.Allows(role, capability.ExceptionsClose) {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeForbidden, "closing exceptions requires elevated access"))
				return
			}
		}

		exception, err := svc.Transition(r.Context(), exceptions.TransitionInput{
			ExceptionID: exceptionID,
			Target:      target,
			ActorUserID: actor.UserID,
			ActorRole:   actor.Role,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, newExceptionView(*exception))
	}
}
