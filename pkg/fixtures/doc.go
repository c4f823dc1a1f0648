// Package fixtures loads users and job applications from YAML documents.
//
// Fixture files seed development databases and demo accounts. Loading is
// idempotent: users are matched by username and applications by owner,
// company and position, so a file can be loaded again after editing.
//
// # Fixture Format
//
// A fixture file is a YAML sequence of tagged statements:
//
//   - !user
//     username: alice
//     email: alice@example.com
//     password: correct horse battery
//   - !user
//     username: root
//     role: admin
//   - !application
//     user: alice
//     company_name: Acme
//     position: Engineer
//     applied_date: 2025-03-01
//     status: phone_screen
//
// A bare `- !user bob` creates a user with an unusable password.
//
// # Loading Fixtures
//
//	loader := fixtures.NewLoader(fixtures.NewGormStore(db, cfg.Location()))
//	result, err := loader.LoadFromReader(ctx, file)
//
// Every statement is applied in one transaction. Status changes of
// existing applications go through the regular update path and are
// audited like changes made over the API.
package fixtures
