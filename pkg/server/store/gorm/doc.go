// Package gorm provides GORM-based implementations of the store interfaces
// defined in the parent store package.
//
// Multi-step writes (the status audit and refresh token rotation) run in a
// single transaction that locks the affected row with SELECT ... FOR UPDATE.
// Every method uses the caller's context, so a cancelled request rolls back
// its open transaction.
package gorm
