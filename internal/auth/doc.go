// Package auth provides authentication and authorization functionality for the application.
//
// # Authorization
//
// Authorization is a flat rule table keyed by role. Each Rule names an action, a resource and an
// optional condition evaluated against a Snapshot of the resource (owning client, owning user).
// Policy.Can finds the first rule of the subject's role matching the action and resource:
//   - no rule: deny
//   - rule with condition: the condition decides, a nil snapshot is passed through and denies
//   - rule without condition: allow
//
// The unverified role has no rules and is denied everything.
//
// # Authentication
//
// LocalProvider authenticates against the users table with Argon2id password hashes and registers
// new accounts with the unverified role.
//
// # Middleware
//
// Authenticate resolves the session cookie to a fresh user record and stores it in fiber.Locals.
// Require rejects requests whose user is not allowed the given action on the given resource.
package auth
