package auth

import "errors"

// カスタムエラー定義
// いずれの認証エラーも接続に対して致命的であり、通知後に切断します
var (
	ErrMissingCredential = errors.New("missing credential")
	ErrInvalidCredential = errors.New("invalid credential")
	ErrExpiredCredential = errors.New("expired credential")
	ErrMalformedPayload  = errors.New("malformed credential payload")
)
