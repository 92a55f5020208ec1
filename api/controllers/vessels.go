package controllers

import (
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/harborline/shipline-backend/api/responses"
	"github.com/harborline/shipline-backend/api/validators"
	"github.com/harborline/shipline-backend/internal/vessels"
	"github.com/harborline/shipline-backend/pkg/logger"
)

// VesselList returns one filtered, sorted page of the schedule.
func VesselList(svc vessels.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var query vessels.ListQuery
		if err := validators.DecodeQuery(r, &query); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		page, err := svc.List(r.Context(), query)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, page)
	}
}

func VesselCreate(svc vessels.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body vessels.CreateVesselRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		vessel, err := svc.Create(r.Context(), body)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, vessels.MutationResponse{
			Message: "Vessel created successfully",
			Vessel:  vessel,
		})
	}
}

func VesselGet(svc vessels.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		vessel, err := svc.Get(r.Context(), chi.URLParam(r, "id"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, vessels.VesselResponse{Vessel: vessel})
	}
}

// VesselUpdate applies a partial update; omitted fields are left untouched.
func VesselUpdate(svc vessels.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body vessels.UpdateVesselRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		vessel, err := svc.Update(r.Context(), chi.URLParam(r, "id"), body)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, vessels.MutationResponse{
			Message: "Vessel updated successfully",
			Vessel:  vessel,
		})
	}
}

func VesselDelete(svc vessels.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		vessel, err := svc.Delete(r.Context(), chi.URLParam(r, "id"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, vessels.MutationResponse{
			Message: "Vessel deleted successfully",
			Vessel:  vessel,
		})
	}
}

// VesselBulkDelete removes several vessels at once. Admin only.
func VesselBulkDelete(svc vessels.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body vessels.BulkDeleteRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		deleted, err := svc.BulkDelete(r.Context(), body.IDs)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, vessels.BulkDeleteResponse{
			Message:      fmt.Sprintf("Successfully deleted %d vessels", deleted),
			DeletedCount: deleted,
		})
	}
}

func VesselStats(svc vessels.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		stats, err := svc.Stats(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, stats)
	}
}
