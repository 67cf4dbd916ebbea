// Package auth issues and verifies the HMAC-signed bearer tokens that scope
// API requests to a user. Accounts are managed elsewhere; a token only
// carries the user ID it was issued for.
package auth
