// Package report は通報レコードの永続化を担当します
// ペアリングコアからは追記専用のSinkとして扱われます
package report

import (
	"context"
	"errors"

	"github.com/SereneMind/SereneMind_Chat/backend/chat-server/internal/models"
)

// ErrSinkUnavailable はSinkへの書き込みに失敗したことを表します
// チャットの状態には影響せず、通報者へのエラー通知にのみ使われます
var ErrSinkUnavailable = errors.New("report sink unavailable")

// Sink は通報レコードを受け取るインターフェース
type Sink interface {
	Submit(ctx context.Context, rep models.Report) error
}
