package auth

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"github.com/sngm3741/pcb-intake-services/api/internal/domain"
)

const (
	// RoleAdmin is the only role a session credential can carry.
	RoleAdmin = "admin"

	DefaultTTL = time.Hour
	leeway     = 30 * time.Second
)

var errInvalidToken = errors.New("access token is invalid")

// Claims is the payload of an operator session credential.
type Claims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

// Credential is the signed bearer token handed to the operator.
type Credential struct {
	Token     string
	ExpiresAt time.Time
}

// Config provides dependencies for Verifier.
type Config struct {
	PasswordHash  string
	SigningSecret []byte
	Issuer        string
	TTL           time.Duration
	Now           func() time.Time
}

// Verifier checks the operator secret against the provisioned bcrypt hash and
// issues stateless, time-limited session credentials.
type Verifier struct {
	hash   []byte
	secret []byte
	issuer string
	ttl    time.Duration
	now    func() time.Time
}

// NewVerifier constructs a Verifier. Missing secrets are tolerated here and
// reported as ErrServerMisconfigured on first use.
func NewVerifier(cfg Config) *Verifier {
	ttl := cfg.TTL
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	now := cfg.Now
	if now == nil {
		now = time.Now
	}
	return &Verifier{
		hash:   []byte(strings.TrimSpace(cfg.PasswordHash)),
		secret: append([]byte(nil), cfg.SigningSecret...),
		issuer: strings.TrimSpace(cfg.Issuer),
		ttl:    ttl,
		now:    now,
	}
}

// Authenticate compares secret with the reference hash and mints a credential on match.
// There is deliberately no attempt counter or lockout here.
func (v *Verifier) Authenticate(secret string) (Credential, error) {
	if secret == "" {
		return Credential{}, &domain.ValidationError{Field: "secret", Message: "Password required"}
	}
	if len(v.hash) == 0 || len(v.secret) == 0 {
		return Credential{}, domain.ErrServerMisconfigured
	}

	if err := bcrypt.CompareHashAndPassword(v.hash, []byte(secret)); err != nil {
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			return Credential{}, domain.ErrInvalidCredential
		}
		return Credential{}, fmt.Errorf("%w: reference hash unusable: %v", domain.ErrServerMisconfigured, err)
	}

	return v.issue()
}

func (v *Verifier) issue() (Credential, error) {
	now := v.now().UTC()
	expiresAt := now.Add(v.ttl)
	claims := Claims{
		Role: RoleAdmin,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   RoleAdmin,
			Issuer:    v.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(v.secret)
	if err != nil {
		return Credential{}, fmt.Errorf("sign session token: %w", err)
	}
	return Credential{Token: token, ExpiresAt: expiresAt.Truncate(time.Second)}, nil
}

// Parse verifies signature, issuer, expiry and role of a bearer token.
func (v *Verifier) Parse(tokenString string) (*Claims, error) {
	if len(v.secret) == 0 {
		return nil, domain.ErrServerMisconfigured
	}

	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithLeeway(leeway),
		jwt.WithTimeFunc(v.now),
		jwt.WithExpirationRequired(),
	}
	if v.issuer != "" {
		opts = append(opts, jwt.WithIssuer(v.issuer))
	}

	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(*jwt.Token) (any, error) {
		return v.secret, nil
	}, opts...)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, fmt.Errorf("access token has expired: %w", err)
		}
		return nil, fmt.Errorf("%w: %v", errInvalidToken, err)
	}
	if !token.Valid || claims.Role != RoleAdmin {
		return nil, errInvalidToken
	}
	return claims, nil
}

// TTL reports the configured credential lifetime.
func (v *Verifier) TTL() time.Duration {
	return v.ttl
}

// HashSecret produces the bcrypt reference hash provisioned as ADMIN_PASSWORD_HASH.
func HashSecret(secret string, cost int) (string, error) {
	if secret == "" {
		return "", errors.New("secret must not be empty")
	}
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(secret), cost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}
