package store

import (
	"context"
	"encoding/json"

	"github.com/google/uuid"

	"github.com/mwhitby/agent-store/internal/model"
)

// GetMemoriesParams holds filters for listing memories.
type GetMemoriesParams struct {
	RoomID    uuid.UUID // required scope
	TableName string    // logical partition; defaults to "memories"
	Count     int       // 0 means no limit
	Unique    bool      // only rows flagged unique
}

// SearchMemoriesParams holds parameters for embedding similarity search.
type SearchMemoriesParams struct {
	Embedding      []float32
	MatchThreshold float64
	Count          int
	RoomID         uuid.UUID
	TableName      string
	Unique         bool
}

// GetTasksParams holds filters for listing tasks. Tags use AND
// semantics: every listed tag must be present on the task.
type GetTasksParams struct {
	RoomID uuid.UUID
	Tags   []string
}

// LogParams holds a log entry to append.
type LogParams struct {
	EntityID uuid.UUID
	RoomID   uuid.UUID
	Type     string
	Body     map[string]any
}

// LogQuery holds filters for reading the log journal.
type LogQuery struct {
	EntityID uuid.UUID
	RoomID   uuid.UUID // optional
	Type     string    // optional
	Count    int       // 0 means no limit
}

// Store is the persistence contract consumed by the agent runtime and
// by plugins. Mutators that can hit a duplicate key report the conflict
// as a false return instead of an error; getters report absence as a
// nil result (or a false ok); deletes succeed whether or not the row
// existed. Engine failures propagate as errors.
type Store interface {
	// Agents.
	CreateAgent(ctx context.Context, agent *model.Agent) (bool, error)
	GetAgent(ctx context.Context, id uuid.UUID) (*model.Agent, error)
	GetAgents(ctx context.Context) ([]model.Agent, error)
	CountAgents(ctx context.Context) (int, error)
	UpdateAgent(ctx context.Context, id uuid.UUID, update model.AgentUpdate) (bool, error)
	DeleteAgent(ctx context.Context, id uuid.UUID) (bool, error)
	EnsureAgentExists(ctx context.Context, agent *model.Agent) (*model.Agent, error)

	// Entities.
	CreateEntities(ctx context.Context, entities []*model.Entity) (bool, error)
	GetEntitiesByIDs(ctx context.Context, ids []uuid.UUID) ([]model.Entity, error)
	GetEntitiesForRoom(ctx context.Context, roomID uuid.UUID) ([]model.Entity, error)
	UpdateEntity(ctx context.Context, entity *model.Entity) error
	DeleteEntity(ctx context.Context, id uuid.UUID) error

	// Components.
	CreateComponent(ctx context.Context, c *model.Component) (bool, error)
	GetComponent(ctx context.Context, entityID uuid.UUID, ctype string, worldID, sourceEntityID uuid.UUID) (*model.Component, error)
	GetComponents(ctx context.Context, entityID uuid.UUID) ([]model.Component, error)
	UpdateComponent(ctx context.Context, c *model.Component) error
	DeleteComponent(ctx context.Context, id uuid.UUID) error

	// Worlds.
	CreateWorld(ctx context.Context, w *model.World) (uuid.UUID, error)
	GetWorld(ctx context.Context, id uuid.UUID) (*model.World, error)
	GetAllWorlds(ctx context.Context) ([]model.World, error)
	UpdateWorld(ctx context.Context, w *model.World) error
	RemoveWorld(ctx context.Context, id uuid.UUID) error

	// Rooms.
	CreateRooms(ctx context.Context, rooms []*model.Room) ([]uuid.UUID, error)
	GetRoomsByIDs(ctx context.Context, ids []uuid.UUID) ([]model.Room, error)
	GetRoomsByWorld(ctx context.Context, worldID uuid.UUID) ([]model.Room, error)
	UpdateRoom(ctx context.Context, room *model.Room) error
	DeleteRoom(ctx context.Context, id uuid.UUID) error
	DeleteRoomsByWorldID(ctx context.Context, worldID uuid.UUID) error
	DeleteRoomsByServerID(ctx context.Context, serverID string) error

	// Participants.
	AddParticipants(ctx context.Context, entityIDs []uuid.UUID, roomID uuid.UUID) (bool, error)
	RemoveParticipant(ctx context.Context, entityID, roomID uuid.UUID) (bool, error)
	GetParticipantsForEntity(ctx context.Context, entityID uuid.UUID) ([]model.Participant, error)
	GetParticipantsForRoom(ctx context.Context, roomID uuid.UUID) ([]uuid.UUID, error)
	GetRoomsForParticipant(ctx context.Context, entityID uuid.UUID) ([]uuid.UUID, error)
	GetRoomsForParticipants(ctx context.Context, entityIDs []uuid.UUID) ([]uuid.UUID, error)
	GetParticipantUserState(ctx context.Context, roomID, entityID uuid.UUID) (*model.UserState, error)
	SetParticipantUserState(ctx context.Context, roomID, entityID uuid.UUID, state *model.UserState) error

	// Relationships.
	CreateRelationship(ctx context.Context, sourceEntityID, targetEntityID uuid.UUID, tags []string, metadata map[string]any) (bool, error)
	GetRelationship(ctx context.Context, sourceEntityID, targetEntityID uuid.UUID) (*model.Relationship, error)
	GetRelationships(ctx context.Context, entityID uuid.UUID, tags []string) ([]model.Relationship, error)
	UpdateRelationship(ctx context.Context, rel *model.Relationship) error

	// Memories.
	CreateMemory(ctx context.Context, memory *model.Memory, tableName string) (uuid.UUID, error)
	GetMemoryByID(ctx context.Context, id uuid.UUID) (*model.Memory, error)
	GetMemoriesByIDs(ctx context.Context, ids []uuid.UUID) ([]model.Memory, error)
	GetMemories(ctx context.Context, p GetMemoriesParams) ([]model.Memory, error)
	CountMemories(ctx context.Context, roomID uuid.UUID, unique bool, tableName string) (int, error)
	UpdateMemory(ctx context.Context, memory *model.Memory) (bool, error)
	DeleteMemory(ctx context.Context, id uuid.UUID) error
	DeleteAllMemories(ctx context.Context, roomID uuid.UUID, tableName string) error
	SearchMemories(ctx context.Context, p SearchMemoriesParams) ([]model.Memory, error)
	EnsureEmbeddingDimension(dims int) error
	EmbeddingDimension() int

	// Tasks.
	CreateTask(ctx context.Context, task *model.Task) (uuid.UUID, error)
	GetTask(ctx context.Context, id uuid.UUID) (*model.Task, error)
	GetTasks(ctx context.Context, p GetTasksParams) ([]model.Task, error)
	GetTasksByName(ctx context.Context, name string) ([]model.Task, error)
	UpdateTask(ctx context.Context, id uuid.UUID, update model.TaskUpdate) error
	DeleteTask(ctx context.Context, id uuid.UUID) error

	// Cache.
	SetCache(ctx context.Context, key string, value any) (bool, error)
	GetCache(ctx context.Context, key string) (json.RawMessage, bool, error)
	DeleteCache(ctx context.Context, key string) (bool, error)

	// Logs.
	Log(ctx context.Context, p LogParams) error
	GetLogs(ctx context.Context, q LogQuery) ([]model.LogEntry, error)
	DeleteLog(ctx context.Context, id string) error
}

// CacheValue reads a cache entry and unmarshals it into T, preserving
// the stored value's shape. ok is false when the key is absent.
func CacheValue[T any](ctx context.Context, s Store, key string) (value T, ok bool, err error) {
	raw, ok, err := s.GetCache(ctx, key)
	if err != nil || !ok {
		return value, ok, err
	}
	if err := json.Unmarshal(raw, &value); err != nil {
		return value, false, err
	}
	return value, true, nil
}
