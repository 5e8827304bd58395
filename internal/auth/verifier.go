// Package auth は資格情報の検証を担当します
// 不透明なトークンを受け取り、安定したユーザー参照（Identity）に解決します
package auth

import (
	"context"

	"github.com/SereneMind/SereneMind_Chat/backend/chat-server/internal/models"
)

// Verifier は資格情報を検証してIdentityを返すインターフェース
// ペアリングコアから見た外部コラボレーターです
type Verifier interface {
	Verify(ctx context.Context, credential string) (models.Identity, error)
}
