// Package internal holds helpers private to goAuthClient.
//
// # What this package must NOT do
//
//   - Export types that appear in the public goAuthClient API.
//   - Be imported by any package outside the goAuthClient module.
package internal
