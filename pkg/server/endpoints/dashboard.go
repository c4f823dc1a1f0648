package endpoints

import (
	"net/http"

	"github.com/doodlesbykumbi/jobtracker/pkg/authz"
	"github.com/doodlesbykumbi/jobtracker/pkg/server"
	"github.com/doodlesbykumbi/jobtracker/pkg/server/store"
)

// DashboardResponse summarizes the caller's own applications
type DashboardResponse struct {
	StatusCounts       []store.StatusCount `json:"status_counts"`
	NeedsFollowupCount int64               `json:"needs_followup_count"`
	Total              int64               `json:"total"`
	// AvgDays is reserved for per-stage durations and always empty
	AvgDays []interface{} `json:"avg_days"`
}

// RegisterDashboardEndpoint registers /dashboard/
func RegisterDashboardEndpoint(s *server.Server) {
	api := newApplicationsAPI(s)

	dashboardRouter := s.Router.PathPrefix("/dashboard").Subrouter()
	dashboardRouter.Use(s.JWTMiddleware.Middleware)

	dashboardRouter.HandleFunc("/", handleDashboard(api)).Methods("GET")
}

// handleDashboard reports on the caller's own applications, also for admins.
func handleDashboard(api applicationsAPI) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := requireIdentity(w, r)
		if !ok {
			return
		}
		scope := authz.OwnScope(*id)

		counts, err := api.store.StatusCounts(r.Context(), scope)
		if err != nil {
			respondWithErr(w, r, api.logger, err)
			return
		}
		stale, err := api.store.CountNeedingFollowup(r.Context(), scope, api.followup.Cutoff())
		if err != nil {
			respondWithErr(w, r, api.logger, err)
			return
		}

		var total int64
		for _, c := range counts {
			total += c.Count
		}
		if counts == nil {
			counts = []store.StatusCount{}
		}

		respondWithJSON(w, http.StatusOK, DashboardResponse{
			StatusCounts:       counts,
			NeedsFollowupCount: stale,
			Total:              total,
			AvgDays:            []interface{}{},
		})
	}
}
