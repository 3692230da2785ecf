package controllers

import (
	"errors"
	"net/http"
	"time"

	"gorm.io/gorm"

	"github.com/quayside/quayside-backend/api/responses"
	"github.com/quayside/quayside-backend/api/validators"
	"github.com/quayside/quayside-backend/internal/attention"
	"github.com/quayside/quayside-backend/internal/pooling"
	"github.com/quayside/quayside-backend/pkg/enums"
	pkgerrors "github.com/quayside/quayside-backend/pkg/errors"
	"github.com/quayside/quayside-backend/pkg/logger"
)

// PoolList returns pools matching the port/status filters, each graded with
// its derived attention tier.
func PoolList(svc pooling.Service, classifier *attention.Classifier, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "pooling service unavailable"))
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

		filter := pooling.PoolFilter{
			Port:   validators.SanitizeString(r.URL.Query().Get("port"), 64),
			Status: enums.PoolStatus(validators.SanitizeString(r.URL.Query().Get("status"), 32)),
			Limit:  limit,
			Offset: offset,
		}

		pools, err := svc.ListPools(r.Context(), filter)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		now := time.Now().UTC()
		views := make([]poolView, 0, len(pools))
		for _, pool := range pools {
			tier := enums.AttentionLevel("")
			if classifier != nil {
				tier = classifier.Pool(pool, now)
			}
			views = append(views, newPoolView(pool, tier))
		}
		responses.WriteSuccess(w, views)
	}
}

// PoolDetail returns one pool, its member orders, and the attention tier.
func PoolDetail(svc pooling.Service, classifier *attention.Classifier, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "pooling service unavailable"))
			return
		}

		poolID, err := parseUUIDParam(r, "poolId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		pool, err := svc.GetPool(r.Context(), poolID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeNotFound, "pool not found"))
				return
			}
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "fetch pool"))
			return
		}

		orders, err := svc.ListPoolOrders(r.Context(), poolID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list pool orders"))
			return
		}

		now := time.Now().UTC()
		tier := enums.AttentionLevel("")
		if classifier != nil {
			tier = classifier.Pool(*pool, now)
		}

		orderViews := make([]orderView, 0, len(orders))
		for _, order := range orders {
			orderTier := enums.AttentionLevel("")
			if classifier != nil {
				orderTier = classifier.Order(order, now)
			}
			orderViews = append(orderViews, newOrderView(order, orderTier))
		}

		responses.WriteSuccess(w, map[string]any{
			"pool":   newPoolView(*pool, tier),
			"orders": orderViews,
		})
	}
}

// PoolLock locks a pool on explicit staff action. Cutoff-triggered locks run
// in the cron sweep; this path always records a manual trigger plus the actor.
func PoolLock(svc pooling.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "pooling service unavailable"))
			return
		}

		poolID, err := parseUUIDParam(r, "poolId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		actor, err := actorFromContext(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		pool, err := svc.LockPool(r.Context(), poolID, enums.LockTriggerManual, actor)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, newPoolView(*pool, ""))
	}
}
