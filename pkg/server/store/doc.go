// Package store provides storage abstractions for the job tracker server.
//
// Endpoints depend on these interfaces rather than on gorm directly, so
// handlers can be tested with mocks.
//
// # Available Stores
//
//   - ApplicationsStore: job applications, status audits and dashboard counts
//   - UsersStore: accounts
//   - RefreshTokensStore: refresh token ledger used for rotation
//   - HealthStore: database connectivity
//
// Calls that touch applications take a Scope so that a store never returns
// rows the caller may not see.
//
// # Usage
//
//	apps := gormstore.NewApplicationsStore(db, cfg.Location())
//	app, err := apps.FetchApplication(ctx, store.OwnerScope(userID), 42)
//	if errors.Is(err, store.ErrApplicationNotFound) {
//	    // 404
//	}
package store
