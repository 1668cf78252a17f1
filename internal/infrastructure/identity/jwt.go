package identity

import (
	"context"
	"errors"

	"github.com/golang-jwt/jwt/v5"

	"github.com/bioren/user-directory/internal/core/domain"
)

// JWTVerifier validates HS256 tokens signed with a shared secret. Tokens
// must carry an exp claim.
type JWTVerifier struct {
	secret    []byte
	parser    *jwt.Parser
	roleClaim string
}

func NewJWTVerifier(cfg Config) (*JWTVerifier, error) {
	if cfg.Secret == "" {
		return nil, errors.New("identity: hs256 provider requires a secret")
	}

	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
	}
	if cfg.IssuerURL != "" {
		opts = append(opts, jwt.WithIssuer(cfg.IssuerURL))
	}
	if cfg.Audience != "" {
		opts = append(opts, jwt.WithAudience(cfg.Audience))
	}

	return &JWTVerifier{
		secret:    []byte(cfg.Secret),
		parser:    jwt.NewParser(opts...),
		roleClaim: roleClaimOrDefault(cfg.RoleClaim),
	}, nil
}

func (v *JWTVerifier) Verify(_ context.Context, rawToken string) (*domain.VerifiedIdentity, error) {
	claims := jwt.MapClaims{}
	tkn, err := v.parser.ParseWithClaims(rawToken, claims, func(*jwt.Token) (interface{}, error) {
		return v.secret, nil
	})
	if err != nil {
		return nil, rejected(err)
	}
	if !tkn.Valid {
		return nil, rejected(jwt.ErrTokenSignatureInvalid)
	}

	sub, err := claims.GetSubject()
	if err != nil {
		return nil, rejected(err)
	}
	return identityFromClaims(sub, claims, v.roleClaim)
}
