// Package store provides client-side persistence for refresh tokens and the cached
// user profile.
//
// # Implementations
//
//   - [MemoryStore] keeps everything in process memory and forgets it on exit.
//   - [RedisStore] keeps one profile per key prefix in Redis so several processes
//     (CLI invocations, workers) can share a logged-in identity.
//
// # Architecture boundaries
//
// This package owns the [TokenStore] contract and its implementations. It does NOT
// decide when tokens are refreshed or cleared; the root client does.
//
// # What this package must NOT do
//
//   - Store access tokens. Access tokens stay in process memory.
//   - Import goAuthClient (no upward imports).
//   - Interpret token contents.
package store
