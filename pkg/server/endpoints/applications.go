package endpoints

import (
	"encoding/json"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/doodlesbykumbi/jobtracker/pkg/audit"
	"github.com/doodlesbykumbi/jobtracker/pkg/authz"
	"github.com/doodlesbykumbi/jobtracker/pkg/followup"
	"github.com/doodlesbykumbi/jobtracker/pkg/identity"
	"github.com/doodlesbykumbi/jobtracker/pkg/model"
	"github.com/doodlesbykumbi/jobtracker/pkg/query"
	"github.com/doodlesbykumbi/jobtracker/pkg/server"
	"github.com/doodlesbykumbi/jobtracker/pkg/server/respond"
	"github.com/doodlesbykumbi/jobtracker/pkg/server/store"
)

// FollowupMarkedResponse is returned by mark_followup_sent
type FollowupMarkedResponse struct {
	Status          string     `json:"status"`
	LastContactedAt *time.Time `json:"last_contacted_at"`
}

// applicationsAPI holds what the application handlers share
type applicationsAPI struct {
	store       store.ApplicationsStore
	followup    followup.Calculator
	audit       *audit.Logger
	logger      *zap.Logger
	pageSize    int
	maxPageSize int
}

func newApplicationsAPI(s *server.Server) applicationsAPI {
	return applicationsAPI{
		store:       s.ApplicationsStore,
		followup:    s.Followup,
		audit:       s.Audit,
		logger:      s.Logger,
		pageSize:    s.Config.PageSize,
		maxPageSize: s.Config.MaxPageSize,
	}
}

// RegisterApplicationsEndpoints registers the job application endpoints
func RegisterApplicationsEndpoints(s *server.Server) {
	api := newApplicationsAPI(s)

	appsRouter := s.Router.PathPrefix("/applications").Subrouter()
	appsRouter.Use(s.JWTMiddleware.Middleware)

	appsRouter.HandleFunc("/", handleListApplications(api)).Methods("GET")
	appsRouter.HandleFunc("/", handleCreateApplication(api)).Methods("POST")
	appsRouter.HandleFunc("/{id:[0-9]+}/", handleGetApplication(api)).Methods("GET")
	appsRouter.HandleFunc("/{id:[0-9]+}/", handleUpdateApplication(api, false)).Methods("PUT")
	appsRouter.HandleFunc("/{id:[0-9]+}/", handleUpdateApplication(api, true)).Methods("PATCH")
	appsRouter.HandleFunc("/{id:[0-9]+}/", handleDeleteApplication(api)).Methods("DELETE")
	appsRouter.HandleFunc("/{id:[0-9]+}/audits/", handleListAudits(api)).Methods("GET")
	appsRouter.HandleFunc("/{id:[0-9]+}/mark_followup_sent/", handleMarkFollowupSent(api)).Methods("POST")
}

func (api applicationsAPI) logEvent(r *http.Request, id *identity.Identity, appID int64, operation string, err error) {
	event := audit.ApplicationEvent{
		User:          id.Username,
		ClientIP:      clientIP(r),
		ApplicationID: appID,
		Operation:     operation,
		Success:       err == nil,
	}
	if err != nil {
		event.ErrorMessage = err.Error()
	}
	api.audit.Log(event)
}

func handleListApplications(api applicationsAPI) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := requireIdentity(w, r)
		if !ok {
			return
		}

		values := r.URL.Query()
		filter, err := query.ParseApplicationFilter(values, api.followup.Today(), api.followup.Threshold)
		if err != nil {
			respondWithErr(w, r, api.logger, err)
			return
		}
		page, err := query.ParsePage(values, api.pageSize, api.maxPageSize)
		if err != nil {
			respondWithErr(w, r, api.logger, err)
			return
		}

		apps, total, err := api.store.ListApplications(r.Context(), authz.ScopeFor(*id), filter, page)
		if err != nil {
			respondWithErr(w, r, api.logger, err)
			return
		}
		if err := query.CheckPage(page, total); err != nil {
			respondWithErr(w, r, api.logger, err)
			return
		}

		results := make([]ApplicationResponse, 0, len(apps))
		for i := range apps {
			results = append(results, serializeApplication(&apps[i], api.followup, false))
		}
		next, previous := query.Links(absoluteURL(r), page, total)

		respondWithJSON(w, http.StatusOK, ListResponse{
			Count:    total,
			Next:     next,
			Previous: previous,
			Results:  results,
		})
	}
}

func handleCreateApplication(api applicationsAPI) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := requireIdentity(w, r)
		if !ok {
			return
		}

		var body map[string]json.RawMessage
		if err := decodeJSON(r, &body); err != nil {
			respondWithErr(w, r, api.logger, err)
			return
		}
		patch, err := parseApplicationPayload(body, false)
		if err != nil {
			respondWithErr(w, r, api.logger, err)
			return
		}

		app := model.JobApplication{UserID: id.UserID}
		patch.Apply(&app)
		if err := api.store.CreateApplication(r.Context(), &app); err != nil {
			api.logEvent(r, id, 0, "create", err)
			respondWithErr(w, r, api.logger, err)
			return
		}
		api.logEvent(r, id, app.ID, "create", nil)

		respondWithJSON(w, http.StatusCreated, serializeApplication(&app, api.followup, false))
	}
}

func handleGetApplication(api applicationsAPI) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := requireIdentity(w, r)
		if !ok {
			return
		}
		appID, ok := pathID(r)
		if !ok {
			respondWithError(w, respond.KindNotFound, "Not found.")
			return
		}

		app, err := api.store.FetchApplication(r.Context(), authz.ScopeFor(*id), appID)
		if err == nil && !authz.CanAccess(*id, app) {
			err = store.ErrApplicationNotFound
		}
		if err != nil {
			respondWithErr(w, r, api.logger, err)
			return
		}
		respondWithJSON(w, http.StatusOK, serializeApplication(app, api.followup, true))
	}
}

// handleUpdateApplication serves PUT (partial false) and PATCH.
func handleUpdateApplication(api applicationsAPI, partial bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := requireIdentity(w, r)
		if !ok {
			return
		}
		appID, ok := pathID(r)
		if !ok {
			respondWithError(w, respond.KindNotFound, "Not found.")
			return
		}

		var body map[string]json.RawMessage
		if err := decodeJSON(r, &body); err != nil {
			respondWithErr(w, r, api.logger, err)
			return
		}
		patch, err := parseApplicationPayload(body, partial)
		if err != nil {
			respondWithErr(w, r, api.logger, err)
			return
		}

		app, change, err := api.store.UpdateApplication(r.Context(), authz.ScopeFor(*id), appID, patch, id.UserID)
		api.logEvent(r, id, appID, "update", err)
		if err != nil {
			respondWithErr(w, r, api.logger, err)
			return
		}
		if change != nil {
			api.audit.Log(audit.StatusChangeEvent{
				User:           id.Username,
				ApplicationID:  appID,
				PreviousStatus: change.PreviousStatus.String(),
				NewStatus:      change.NewStatus.String(),
			})
		}

		respondWithJSON(w, http.StatusOK, serializeApplication(app, api.followup, true))
	}
}

func handleDeleteApplication(api applicationsAPI) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := requireIdentity(w, r)
		if !ok {
			return
		}
		appID, ok := pathID(r)
		if !ok {
			respondWithError(w, respond.KindNotFound, "Not found.")
			return
		}

		err := api.store.DeleteApplication(r.Context(), authz.ScopeFor(*id), appID)
		api.logEvent(r, id, appID, "delete", err)
		if err != nil {
			respondWithErr(w, r, api.logger, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func handleListAudits(api applicationsAPI) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := requireIdentity(w, r)
		if !ok {
			return
		}
		appID, ok := pathID(r)
		if !ok {
			respondWithError(w, respond.KindNotFound, "Not found.")
			return
		}

		audits, err := api.store.ListAudits(r.Context(), authz.ScopeFor(*id), appID)
		if err != nil {
			respondWithErr(w, r, api.logger, err)
			return
		}
		respondWithJSON(w, http.StatusOK, serializeAudits(audits))
	}
}

func handleMarkFollowupSent(api applicationsAPI) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := requireIdentity(w, r)
		if !ok {
			return
		}
		appID, ok := pathID(r)
		if !ok {
			respondWithError(w, respond.KindNotFound, "Not found.")
			return
		}

		app, err := api.store.MarkFollowupSent(r.Context(), authz.ScopeFor(*id), appID, api.followup.Today())
		api.logEvent(r, id, appID, "mark-followup-sent", err)
		if err != nil {
			respondWithErr(w, r, api.logger, err)
			return
		}
		respondWithJSON(w, http.StatusOK, FollowupMarkedResponse{
			Status:          "follow-up marked",
			LastContactedAt: app.LastContactedAt,
		})
	}
}
