package ports

// SecretHasher hashes and verifies API key tokens (Argon2id).
type SecretHasher interface {
	Hash(secret string) (string, error)
	Verify(secret, hash string) bool
}

// TokenVerifier validates a bearer credential issued by the external identity
// provider and returns the subject id. This service never issues credentials.
type TokenVerifier interface {
	VerifyAccessToken(token string) (subject string, err error)
}
