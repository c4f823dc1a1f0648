// Package query turns the query string of an application listing into a
// store.ApplicationFilter and a store.Page.
//
// Supported parameters:
//
//	status     all | needs_followup | interview | <pipeline status>
//	time       this_month
//	month/year a specific calendar month, overriding time
//	page       1-based page number
//	page_size  results per page, capped by the configured maximum
//
// Unknown status values and incomplete month/year pairs produce a
// *validation.Error. Page numbers that are not positive integers, or that
// fall past the last page, produce ErrInvalidPage.
package query
