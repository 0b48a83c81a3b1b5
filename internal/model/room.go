package model

import "github.com/google/uuid"

// World is a logical grouping of rooms, typically one external server.
type World struct {
	ID       uuid.UUID      `json:"id"`
	AgentID  uuid.UUID      `json:"agent_id"`
	Name     string         `json:"name"`
	ServerID string         `json:"server_id,omitempty"`
	Metadata map[string]any `json:"metadata,omitempty"`
}

// ChannelType classifies a room.
type ChannelType string

const (
	ChannelGroup     ChannelType = "GROUP"
	ChannelDM        ChannelType = "DM"
	ChannelVoiceDM   ChannelType = "VOICE_DM"
	ChannelSelf      ChannelType = "SELF"
	ChannelThread    ChannelType = "THREAD"
	ChannelWorld     ChannelType = "WORLD"
	ChannelForum     ChannelType = "FORUM"
	ChannelFeed      ChannelType = "FEED"
	ChannelAPIDirect ChannelType = "API"
)

// Room is a conversation channel.
type Room struct {
	ID        uuid.UUID      `json:"id"`
	AgentID   uuid.UUID      `json:"agent_id"`
	WorldID   uuid.UUID      `json:"world_id,omitempty"`
	Name      string         `json:"name,omitempty"`
	Source    string         `json:"source,omitempty"`
	Type      ChannelType    `json:"type,omitempty"`
	ChannelID string         `json:"channel_id,omitempty"`
	ServerID  string         `json:"server_id,omitempty"`
	Metadata  map[string]any `json:"metadata,omitempty"`
}

// UserState is the participant follow/mute state within a room.
// A nil *UserState means the state is cleared.
type UserState string

const (
	UserStateFollowed UserState = "FOLLOWED"
	UserStateMuted    UserState = "MUTED"
)

// Participant records membership of an entity in a room. Duplicate
// memberships are tolerated; state reads are last-write-wins.
type Participant struct {
	ID        uuid.UUID  `json:"id"`
	EntityID  uuid.UUID  `json:"entity_id"`
	RoomID    uuid.UUID  `json:"room_id"`
	AgentID   uuid.UUID  `json:"agent_id"`
	UserState *UserState `json:"user_state,omitempty"`
	CreatedAt int64      `json:"created_at"`
}
