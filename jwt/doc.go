// Package jwt inspects access tokens on the client and signs them for the in-process
// test backend.
//
// Clients cannot verify signatures (they do not hold the key), so [Inspect] decodes
// claims without verification. Its output is for display and expiry hints only and
// must never gate a security decision.
package jwt
