// Package model defines the database models for the job tracker.
//
// # Core Models
//
//   - User: an account; its Role decides which applications it can see
//   - JobApplication: one application owned by one user
//   - ApplicationStatusAudit: an append-only record of a status transition
//   - RefreshToken: ledger of issued refresh tokens used for rotation
//
// # Database Schema
//
//   - users
//   - job_applications (user_id -> users, ON DELETE CASCADE)
//   - application_status_audits (application_id -> job_applications, ON DELETE CASCADE)
//   - refresh_tokens (user_id -> users, ON DELETE CASCADE)
//
// PipelineStatus is stored as its snake_case name. The enum methods are
// generated by enumer; run go generate after changing the constants.
package model
