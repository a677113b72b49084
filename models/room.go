package models

import "strings"

// Room keys name delivery channels in the registry. A group room fans out to
// every member who joined it; a personal room fans out to all of one user's
// connected devices and is the delivery target for direct messages.
const (
	groupRoomPrefix    = "group:"
	personalRoomPrefix = "user:"
)

// GroupRoom returns the registry key for a group room.
func GroupRoom(groupID string) string {
	return groupRoomPrefix + groupID
}

// PersonalRoom returns the registry key for a user's personal room.
func PersonalRoom(userID string) string {
	return personalRoomPrefix + userID
}

// IsPersonalRoom reports whether key names a personal room and, if so,
// returns the owning user ID.
func IsPersonalRoom(key string) (string, bool) {
	if strings.HasPrefix(key, personalRoomPrefix) {
		return key[len(personalRoomPrefix):], true
	}
	return "", false
}

// RoomRef addresses a message history: either a group room or the
// conversation between an unordered pair of users.
type RoomRef struct {
	Kind    MessageKind
	GroupID string
	UserA   string
	UserB   string
}

// GroupRef builds a RoomRef for a group room's history.
func GroupRef(groupID string) RoomRef {
	return RoomRef{Kind: KindGroup, GroupID: groupID}
}

// DirectRef builds a RoomRef for the direct conversation between two users.
// The pair is unordered; callers may pass the users either way around.
func DirectRef(userA, userB string) RoomRef {
	return RoomRef{Kind: KindDirect, UserA: userA, UserB: userB}
}

// Group is a chat group as stored. Membership gates joinGroup and group sends.
type Group struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	CreatedAt string `json:"created_at,omitempty"`
}
