package controllers

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/quayside/quayside-backend/api/responses"
	"github.com/quayside/quayside-backend/api/validators"
	"github.com/quayside/quayside-backend/internal/export"
	pkgerrors "github.com/quayside/quayside-backend/pkg/errors"
	"github.com/quayside/quayside-backend/pkg/logger"
)

// ExportCSV streams a filtered table view as CSV.
func ExportCSV(svc export.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "export service unavailable"))
			return
		}

		view, err := export.ParseView(strings.TrimSpace(chi.URLParam(r, "view")))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		limit, err := validators.ParseQueryInt(r, "limit", 0, 0, 10_000)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		from, err := parseQueryTime(r, "from", time.Time{})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		to, err := parseQueryTime(r, "to", time.Time{})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		filter := export.Filter{
			Port:   validators.SanitizeString(r.URL.Query().Get("port"), 64),
			Status: validators.SanitizeString(r.URL.Query().Get("status"), 32),
			From:   from,
			To:     to,
			Limit:  limit,
		}

		w.Header().Set("Content-Type", "text/csv; charset=utf-8")
		w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%s-%s.csv",
			view, time.Now().UTC().Format("20060102T150405Z")))

		if err := svc.WriteCSV(r.Context(), w, view, filter); err != nil {
			// Headers are already written; the best we can do is log.
			if logg != nil {
				logg.Error(r.Context(), "csv export failed", err)
			}
		}
	}
}
