package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/SereneMind/SereneMind_Chat/backend/chat-server/internal/models"
	"github.com/golang-jwt/jwt/v5"
)

const (
	// 発行側（auth API）と合わせた値
	TokenIssuer   = "mental-assessment-api"
	TokenAudience = "mental-assessment-users"
)

// tokenClaims は資格情報トークンに含まれるクレーム
// 発行側の互換のため、ユーザーIDは "id" と "userId" の両方を受け付けます
type tokenClaims struct {
	ID     string `json:"id,omitempty"`
	UserID string `json:"userId,omitempty"`
	Email  string `json:"email,omitempty"`
	jwt.RegisteredClaims
}

// userID はクレームからユーザーIDを解決します
func (c tokenClaims) userID() string {
	if c.ID != "" {
		return c.ID
	}
	return c.UserID
}

// JWTVerifier はHS256で署名されたJWTを検証するVerifierの実装
type JWTVerifier struct {
	secret []byte
}

// NewJWTVerifier は新しいJWTVerifierを作成します
func NewJWTVerifier(secret string) *JWTVerifier {
	return &JWTVerifier{secret: []byte(secret)}
}

// Verify はトークンを検証してIdentityを返します
// 失敗した場合はErrMissingCredential / ErrExpiredCredential /
// ErrMalformedPayload / ErrInvalidCredential のいずれかを返します
func (v *JWTVerifier) Verify(_ context.Context, credential string) (models.Identity, error) {
	credential = strings.TrimSpace(credential)
	if credential == "" {
		return models.Identity{}, ErrMissingCredential
	}

	var claims tokenClaims
	_, err := jwt.ParseWithClaims(credential, &claims, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return v.secret, nil
	}, jwt.WithIssuer(TokenIssuer), jwt.WithAudience(TokenAudience))
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return models.Identity{}, ErrExpiredCredential
		}
		return models.Identity{}, ErrInvalidCredential
	}

	userID := claims.userID()
	if userID == "" {
		// 署名は正しいがユーザーを特定できないトークン
		return models.Identity{}, ErrMalformedPayload
	}

	return models.Identity{UserID: userID, Email: claims.Email}, nil
}
