package pairing

import "errors"

// カスタムエラー定義
// いずれも接続境界で回復され、他の接続やキューの整合性には影響しません
var (
	ErrNotAuthenticated   = errors.New("not authenticated")
	ErrInvalidRoom        = errors.New("invalid room")
	ErrNoPartnerToReport  = errors.New("no partner to report")
	ErrAlreadyPaired      = errors.New("already in a chat")
	ErrConnectionNotFound = errors.New("connection not found")
)
