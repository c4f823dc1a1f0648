// Package identity carries the authenticated caller of a request.
//
// Middleware builds an Identity from a verified access token (or, when the
// development fallback is enabled, from the configured dev account) and
// stores it in the request context. Handlers read it once and pass it on
// explicitly; stores never look it up themselves.
//
//	id := identity.New(claims.UserID, claims.Username, claims.Role).
//	    WithRemoteIP(clientIP).
//	    WithRequestID(requestID)
//	ctx = identity.Set(ctx, id)
//
//	id, ok := identity.Get(ctx)
package identity
