package controllers

import (
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/quayside/quayside-backend/api/responses"
	"github.com/quayside/quayside-backend/api/validators"
	"github.com/quayside/quayside-backend/internal/attention"
	"github.com/quayside/quayside-backend/internal/pooling"
	"github.com/quayside/quayside-backend/pkg/enums"
	pkgerrors "github.com/quayside/quayside-backend/pkg/errors"
	"github.com/quayside/quayside-backend/pkg/logger"
)

type orderIntakeRequest struct {
	VesselID       string    `json:"vessel_id" validate:"required,uuid4"`
	Port           string    `json:"port" validate:"required"`
	ETAWindowStart time.Time `json:"eta_window_start" validate:"required"`
	ETAWindowEnd   time.Time `json:"eta_window_end" validate:"required"`
	Priority       string    `json:"priority" validate:"omitempty,oneof=normal urgent critical"`
	SubtotalCents  int64     `json:"subtotal_cents" validate:"required,gt=0"`
	PaymentRef     string    `json:"payment_ref"`
}

// OrderIntake accepts a confirmed checkout and assigns it to an open pool.
func OrderIntake(svc pooling.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "pooling service unavailable"))
			return
		}

		var body orderIntakeRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		vesselID, err := uuid.Parse(body.VesselID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid vessel id"))
			return
		}

		order, err := svc.IntakeOrder(r.Context(), pooling.IntakeOrderInput{
			VesselID:       vesselID,
			Port:           body.Port,
			ETAWindowStart: body.ETAWindowStart,
			ETAWindowEnd:   body.ETAWindowEnd,
			Priority:       enums.OrderPriority(body.Priority),
			SubtotalCents:  body.SubtotalCents,
			PaymentRef:     body.PaymentRef,
		})
		if err != nil {
			// Coverage misses still persist the order; the error detail carries
			// its id so the console can surface the stranded order.
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, newOrderView(*order, ""))
	}
}

// OrderDetail returns one order plus its derived attention tier.
func OrderDetail(svc pooling.Service, classifier *attention.Classifier, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "pooling service unavailable"))
			return
		}

		orderID, err := parseUUIDParam(r, "orderId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		order, err := svc.GetOrder(r.Context(), orderID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeNotFound, "order not found"))
				return
			}
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "fetch order"))
			return
		}

		tier := enums.AttentionLevel("")
		if classifier != nil {
			tier = classifier.Order(*order, time.Now().UTC())
		}
		responses.WriteSuccess(w, newOrderView(*order, tier))
	}
}
