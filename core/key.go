package core

import (
	"fmt"
	"strings"
)

// ConversationKey addresses one persisted conversation. A conversation is
// identified by the (user, chat) pair, never by the chat id alone: two users
// may reuse the same chat id without collision.
type ConversationKey struct {
	UserID string
	ChatID string
}

// Validate reports ErrMissingIdentity unless both identifiers are non-empty.
func (k ConversationKey) Validate() error {
	if k.UserID == "" || k.ChatID == "" {
		return ErrMissingIdentity
	}
	return nil
}

// String renders the key in "user:chat" form for logging and map keys.
func (k ConversationKey) String() string {
	return k.UserID + ":" + k.ChatID
}

// FileName returns the deterministic persistence file name for this key.
func (k ConversationKey) FileName() string {
	return fmt.Sprintf("%s_%s.json", k.UserID, k.ChatID)
}

// ParseFileName recovers a key from a persistence file name. The user id is
// taken up to the first underscore, so a user id containing "_" will not
// round-trip; callers should warn when loading such files.
func ParseFileName(name string) (ConversationKey, bool) {
	base, ok := strings.CutSuffix(name, ".json")
	if !ok {
		return ConversationKey{}, false
	}
	user, chat, ok := strings.Cut(base, "_")
	if !ok || user == "" || chat == "" {
		return ConversationKey{}, false
	}
	return ConversationKey{UserID: user, ChatID: chat}, true
}
