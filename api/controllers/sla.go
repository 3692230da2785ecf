package controllers

import (
	"net/http"
	"time"

	"github.com/quayside/quayside-backend/api/responses"
	"github.com/quayside/quayside-backend/api/validators"
	"github.com/quayside/quayside-backend/internal/sla"
	pkgerrors "github.com/quayside/quayside-backend/pkg/errors"
	"github.com/quayside/quayside-backend/pkg/logger"
)

type deliveryDeliveredRequest struct {
	DeliveredAt time.Time `json:"delivered_at" validate:"required"`
}

// DeliveryDelivered records the actual arrival and freezes the SLA variance.
func DeliveryDelivered(svc sla.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "sla service unavailable"))
			return
		}

		deliveryID, err := parseUUIDParam(r, "deliveryId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body deliveryDeliveredRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		delivery, err := svc.RecordDelivered(r.Context(), deliveryID, body.DeliveredAt)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, newDeliveryView(*delivery, ""))
	}
}

type slaOverrideRequest struct {
	NewSLATarget time.Time `json:"new_sla_target" validate:"required"`
	Reason       string    `json:"reason" validate:"required,min=4"`
}

// DeliverySLAOverride moves a delivery's SLA target. Every override is
// attributed to the acting staff member and published for audit.
func DeliverySLAOverride(svc sla.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "sla service unavailable"))
			return
		}

		deliveryID, err := parseUUIDParam(r, "deliveryId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		actor, err := actorFromContext(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body slaOverrideRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		delivery, err := svc.Override(r.Context(), sla.OverrideInput{
			DeliveryID:   deliveryID,
			NewSLATarget: body.NewSLATarget,
			Reason:       body.Reason,
			ActorUserID:  actor.UserID,
			ActorRole:    actor.Role,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, newDeliveryView(*delivery, ""))
	}
}
