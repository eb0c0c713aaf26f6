package ports

// CredentialService hashes passwords and issues signed access tokens.
type CredentialService interface {
	Hash(password string) (string, error)
	Verify(password, hash string) bool
	IssueToken(username string) (string, error)
	// ValidateToken returns the token subject. Every failure is domain.ErrInvalidToken.
	ValidateToken(token string) (string, error)
}
