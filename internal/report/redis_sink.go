package report

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/SereneMind/SereneMind_Chat/backend/chat-server/internal/models"
	"github.com/redis/go-redis/v9"
)

const reportsKey = "reports"

// RedisSink は通報レコードをRedisのリストに追記するSinkの実装
// リストは上限件数でトリムされ、古いレコードから捨てられます
type RedisSink struct {
	rdb    *redis.Client
	maxLen int64
}

// NewRedisSink は新しいRedisSinkを作成します
func NewRedisSink(rdb *redis.Client, maxLen int) *RedisSink {
	return &RedisSink{rdb: rdb, maxLen: int64(maxLen)}
}

// Submit は通報レコードをRedisに追記します
// LPUSHとLTRIMをパイプラインでまとめて実行します
func (s *RedisSink) Submit(ctx context.Context, rep models.Report) error {
	b, err := json.Marshal(rep)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrSinkUnavailable, err)
	}
	pipe := s.rdb.TxPipeline()
	pipe.LPush(ctx, reportsKey, b)
	pipe.LTrim(ctx, reportsKey, 0, s.maxLen-1)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("%w: %v", ErrSinkUnavailable, err)
	}
	return nil
}
