package handlers

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

// normalizeID はIDの前後の空白を削除して正規化します
func normalizeID(id string) string {
	return strings.TrimSpace(id)
}

// validateRoomID はルームIDのバリデーションを行います
// ルームIDが空の場合はエラーを返します
func validateRoomID(roomID string) error {
	if normalizeID(roomID) == "" {
		return fmt.Errorf("roomId required")
	}
	return nil
}

// validateMessageText はリレーするメッセージのバリデーションを行います
// 空文字・空白のみ・上限超過を弾きます
func validateMessageText(text string, maxLen int) error {
	if strings.TrimSpace(text) == "" {
		return fmt.Errorf("text required")
	}
	if utf8.RuneCountInString(text) > maxLen {
		return fmt.Errorf("text too long (max %d characters)", maxLen)
	}
	return nil
}

// validateReason は通報理由のバリデーションを行います
func validateReason(reason string, maxLen int) error {
	if strings.TrimSpace(reason) == "" {
		return fmt.Errorf("reason required")
	}
	if utf8.RuneCountInString(reason) > maxLen {
		return fmt.Errorf("reason too long (max %d characters)", maxLen)
	}
	return nil
}
