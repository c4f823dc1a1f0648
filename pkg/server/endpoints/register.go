package endpoints

import (
	"github.com/doodlesbykumbi/jobtracker/pkg/server"
)

// RegisterAll registers all API endpoints on the server
func RegisterAll(srv *server.Server) {
	RegisterStatusEndpoints(srv)
	RegisterAuthEndpoints(srv)
	RegisterSocialEndpoints(srv)
	RegisterApplicationsEndpoints(srv)
	RegisterDashboardEndpoint(srv)
}
