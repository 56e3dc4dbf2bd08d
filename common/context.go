package common

type contextKey string

// AuthInfoKey is the request-context key under which the JWT middleware
// stores the validated claims.
const AuthInfoKey contextKey = "authInfo"
