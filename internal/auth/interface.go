package auth

// TokenVerifier verifies bearer tokens. The middleware depends on this
// interface so tests can substitute a fake.
type TokenVerifier interface {
	// VerifyToken validates a token string and returns its claims.
	// Returns domain.ErrUnauthorized if the token is invalid, expired, or has an invalid signature.
	VerifyToken(tokenString string) (*Claims, error)

	// Close releases any resources held by the verifier.
	Close() error
}
