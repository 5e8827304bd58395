package handlers

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestValidateRoomID(t *testing.T) {
	require.NoError(t, validateRoomID("room_01HXYZ"))
	require.Error(t, validateRoomID(""))
	require.Error(t, validateRoomID("   "))
}

func TestValidateMessageText(t *testing.T) {
	require.NoError(t, validateMessageText("hi", 10))
	require.Error(t, validateMessageText("", 10))
	require.Error(t, validateMessageText("   ", 10))
	require.Error(t, validateMessageText(strings.Repeat("x", 11), 10))
	// 上限はバイト数ではなく文字数
	require.NoError(t, validateMessageText(strings.Repeat("あ", 10), 10))
}

func TestValidateReason(t *testing.T) {
	require.NoError(t, validateReason("spamming links", 100))
	require.Error(t, validateReason("", 100))
	require.Error(t, validateReason(strings.Repeat("x", 101), 100))
}
