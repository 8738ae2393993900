package auth

import "errors"

// Sentinel errors for the authentication core. Handlers translate these into
// generic unauthorized/forbidden/service-unavailable responses — the specific
// condition is never echoed to the client.
var (
	// ErrInvalidCredentials covers both "no such user" and "wrong password"
	// so that login responses carry no enumeration signal.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrTokenExpired means the token was well-formed and correctly signed
	// but is past its embedded expiry.
	ErrTokenExpired = errors.New("token expired")

	// ErrTokenInvalid means the token is malformed, unsigned, or signed with
	// the wrong key or algorithm.
	ErrTokenInvalid = errors.New("token invalid")

	// ErrIdentityNotFound means a verified token references a user id the
	// directory no longer has.
	ErrIdentityNotFound = errors.New("identity not found")

	// ErrIdentityInactive means the directory record exists but was
	// deactivated after the token was issued.
	ErrIdentityInactive = errors.New("identity inactive")

	// ErrDirectoryUnavailable means the user directory could not be reached.
	// It is the only auth error eligible for caller-side retry and must never
	// be collapsed into a credential failure.
	ErrDirectoryUnavailable = errors.New("directory unavailable")

	// ErrHashing is an internal fault in the password hasher (RNG/library
	// failure). Treated as unrecoverable — never fall back to a weak hash.
	ErrHashing = errors.New("password hashing failed")
)
