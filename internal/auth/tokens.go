package auth

import (
	"encoding/hex"
	"encoding/json/v2"
	"errors"
	"fmt"
	"time"

	"aidanwoods.dev/go-paseto"

	"github.com/pmemoapp/pmemo-server/internal/domain"
	"github.com/pmemoapp/pmemo-server/internal/id"
)

const (
	tokenIssuer   = "pmemo-server"
	tokenAudience = "pmemo-client"

	// PASETO v4 symmetric key requirements.
	keyBytesSize = 32 // 256 bits
	keyHexSize   = 64 // 32 bytes as hex string
)

// Token verification errors. The service layer maps these onto domain
// error kinds so expiry and tampering surface differently to clients.
var (
	// ErrTokenInvalid is returned when a token fails decryption or claim rules.
	ErrTokenInvalid = errors.New("invalid token")
	// ErrTokenExpired is returned when a well-formed token is past its expiry.
	ErrTokenExpired = errors.New("token expired")
)

// TokenService handles PASETO token generation and verification.
// Signing and verification are pure functions of the key; the service is
// safe for concurrent use without additional locking.
type TokenService struct {
	symmetricKey paseto.V4SymmetricKey
	tokenTTL     time.Duration
}

// NewTokenService creates a new token service with the given hex-encoded key.
func NewTokenService(keyHex string, tokenTTL time.Duration) (*TokenService, error) {
	if len(keyHex) != keyHexSize {
		return nil, fmt.Errorf("PASETO v4 key must be exactly %d hex characters (%d bytes), got %d", keyHexSize, keyBytesSize, len(keyHex))
	}

	keyBytes, err := hex.DecodeString(keyHex)
	if err != nil {
		return nil, fmt.Errorf("invalid hex string for PASETO key: %w", err)
	}

	key, err := paseto.V4SymmetricKeyFromBytes(keyBytes)
	if err != nil {
		return nil, fmt.Errorf("failed to create PASETO symmetric key: %w", err)
	}

	return &TokenService{
		symmetricKey: key,
		tokenTTL:     tokenTTL,
	}, nil
}

// GenerateAccessToken creates a new PASETO v4.local access token for the user.
// The token is encrypted and embeds the user identity and a fixed-TTL expiry.
// Returns the token string and its expiry time.
func (s *TokenService) GenerateAccessToken(user *domain.User) (string, time.Time, error) {
	now := time.Now()
	expiresAt := now.Add(s.tokenTTL)

	token := paseto.NewToken()

	// Standard claims
	token.SetIssuer(tokenIssuer)
	token.SetSubject(user.ID)
	token.SetAudience(tokenAudience)
	token.SetIssuedAt(now)
	token.SetNotBefore(now)
	token.SetExpiration(expiresAt)

	tokenID, err := id.Generate("token")
	if err != nil {
		return "", time.Time{}, fmt.Errorf("generate token ID: %w", err)
	}
	token.SetJti(tokenID)

	// Our custom claims
	//nolint:errcheck // Token.Set only errors on invalid types, which we control
	_ = token.Set("user_id", user.ID)
	//nolint:errcheck // Token.Set only errors on invalid types, which we control
	_ = token.Set("email", user.Email)

	encrypted := token.V4Encrypt(s.symmetricKey, nil)
	return encrypted, expiresAt, nil
}

// VerifyAccessToken verifies and parses a PASETO access token.
// Returns the claims if valid. Expiry is checked after decryption so an
// expired-but-authentic token yields ErrTokenExpired rather than
// ErrTokenInvalid; any other failure (tampered ciphertext, wrong issuer
// or audience) yields ErrTokenInvalid.
func (s *TokenService) VerifyAccessToken(tokenString string) (*AccessClaims, error) {
	// Expiry is validated separately below, so the parser must not reject
	// expired tokens on its own.
	parser := paseto.NewParserWithoutExpiryCheck()
	parser.AddRule(paseto.ForAudience(tokenAudience))
	parser.AddRule(paseto.IssuedBy(tokenIssuer))

	token, err := parser.ParseV4Local(s.symmetricKey, tokenString, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrTokenInvalid, err)
	}

	expiration, err := token.GetExpiration()
	if err != nil {
		return nil, fmt.Errorf("%w: missing expiration claim", ErrTokenInvalid)
	}
	if time.Now().After(expiration) {
		return nil, ErrTokenExpired
	}

	var claims AccessClaims
	if err := json.Unmarshal(token.ClaimsJSON(), &claims); err != nil {
		return nil, fmt.Errorf("%w: parse claims: %w", ErrTokenInvalid, err)
	}

	return &claims, nil
}

// TokenTTL returns the configured access token lifetime.
func (s *TokenService) TokenTTL() time.Duration {
	return s.tokenTTL
}
