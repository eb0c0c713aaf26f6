package service

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"github.com/kidguard/parental-api/internal/core/domain"
)

const defaultTokenTTL = 30 * time.Minute

// CredentialConfig carries the process-wide settings of a CredentialService.
type CredentialConfig struct {
	Secret     string
	TokenTTL   time.Duration
	BcryptCost int
	// Now is the clock used for token issue and expiry checks. Defaults to time.Now.
	Now func() time.Time
}

// CredentialService hashes passwords with bcrypt and signs HS256 access tokens.
type CredentialService struct {
	secret []byte
	ttl    time.Duration
	cost   int
	now    func() time.Time
	parser *jwt.Parser
}

func NewCredentialService(cfg CredentialConfig) *CredentialService {
	if cfg.TokenTTL <= 0 {
		cfg.TokenTTL = defaultTokenTTL
	}
	if cfg.BcryptCost < bcrypt.MinCost || cfg.BcryptCost > bcrypt.MaxCost {
		cfg.BcryptCost = bcrypt.DefaultCost
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}

	return &CredentialService{
		secret: []byte(cfg.Secret),
		ttl:    cfg.TokenTTL,
		cost:   cfg.BcryptCost,
		now:    cfg.Now,
		parser: jwt.NewParser(
			jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
			jwt.WithExpirationRequired(),
			jwt.WithTimeFunc(cfg.Now),
		),
	}
}

func (s *CredentialService) Hash(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.cost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// Verify reports whether password matches hash. A malformed or empty hash never matches.
func (s *CredentialService) Verify(password, hash string) bool {
	if hash == "" {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

func (s *CredentialService) IssueToken(username string) (string, error) {
	if username == "" {
		return "", errors.New("issue token: empty subject")
	}

	now := s.now()
	claims := jwt.RegisteredClaims{
		Subject:   username,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
	}

	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return t.SignedString(s.secret)
}

// ValidateToken checks signature, algorithm and expiry and returns the subject.
// The cause of a failure is not exposed.
func (s *CredentialService) ValidateToken(token string) (string, error) {
	claims := &jwt.RegisteredClaims{}
	tkn, err := s.parser.ParseWithClaims(token, claims, func(*jwt.Token) (interface{}, error) {
		return s.secret, nil
	})
	if err != nil || !tkn.Valid || claims.Subject == "" {
		return "", domain.ErrInvalidToken
	}
	return claims.Subject, nil
}
