package store

// Schema definitions for both engines. The layouts are identical apart
// from column types: ids are TEXT UUIDs on both engines so row keys scan
// the same way everywhere, JSON lives in TEXT columns, and the embedding
// vector is a JSON array on sqlite and a pgvector column on postgres.
// The embeddings row records its own width; search only ever compares
// rows whose width matches the query, so reconfiguring the adapter's
// dimension never has to rewrite stored vectors.
//
// Fragment cleanup on document deletion is done in application code
// inside one transaction rather than by a foreign key, so both engines
// behave identically (fragments reference their parent through JSON
// metadata, not a column).

var schemaSQLite = []string{
	`CREATE TABLE IF NOT EXISTS agents (
		id         TEXT PRIMARY KEY,
		name       TEXT NOT NULL UNIQUE,
		username   TEXT,
		bio        TEXT,
		enabled    INTEGER NOT NULL DEFAULT 1,
		settings   TEXT,
		created_at INTEGER NOT NULL,
		updated_at INTEGER NOT NULL
	)`,

	`CREATE TABLE IF NOT EXISTS worlds (
		id        TEXT PRIMARY KEY,
		agent_id  TEXT NOT NULL REFERENCES agents(id) ON DELETE CASCADE,
		name      TEXT NOT NULL,
		server_id TEXT,
		metadata  TEXT
	)`,
	`CREATE INDEX IF NOT EXISTS idx_worlds_agent ON worlds(agent_id)`,

	`CREATE TABLE IF NOT EXISTS rooms (
		id         TEXT PRIMARY KEY,
		agent_id   TEXT NOT NULL REFERENCES agents(id) ON DELETE CASCADE,
		world_id   TEXT REFERENCES worlds(id) ON DELETE CASCADE,
		name       TEXT,
		source     TEXT,
		type       TEXT,
		channel_id TEXT,
		server_id  TEXT,
		metadata   TEXT,
		created_at INTEGER NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_rooms_world ON rooms(world_id)`,
	`CREATE INDEX IF NOT EXISTS idx_rooms_server ON rooms(server_id)`,

	`CREATE TABLE IF NOT EXISTS entities (
		id       TEXT PRIMARY KEY,
		agent_id TEXT NOT NULL REFERENCES agents(id) ON DELETE CASCADE,
		names    TEXT NOT NULL,
		metadata TEXT
	)`,
	`CREATE INDEX IF NOT EXISTS idx_entities_agent ON entities(agent_id)`,

	`CREATE TABLE IF NOT EXISTS components (
		id               TEXT PRIMARY KEY,
		entity_id        TEXT NOT NULL REFERENCES entities(id) ON DELETE CASCADE,
		agent_id         TEXT NOT NULL REFERENCES agents(id) ON DELETE CASCADE,
		room_id          TEXT,
		world_id         TEXT,
		source_entity_id TEXT,
		type             TEXT NOT NULL,
		data             TEXT,
		created_at       INTEGER NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_components_entity_type ON components(entity_id, type)`,

	// No uniqueness on (entity_id, room_id): duplicate membership rows
	// are tolerated and state reads are last-write-wins.
	`CREATE TABLE IF NOT EXISTS participants (
		id         TEXT PRIMARY KEY,
		entity_id  TEXT NOT NULL REFERENCES entities(id) ON DELETE CASCADE,
		room_id    TEXT NOT NULL REFERENCES rooms(id) ON DELETE CASCADE,
		agent_id   TEXT NOT NULL REFERENCES agents(id) ON DELETE CASCADE,
		user_state TEXT,
		created_at INTEGER NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_participants_room ON participants(room_id)`,
	`CREATE INDEX IF NOT EXISTS idx_participants_entity ON participants(entity_id)`,

	`CREATE TABLE IF NOT EXISTS relationships (
		id               TEXT PRIMARY KEY,
		agent_id         TEXT NOT NULL REFERENCES agents(id) ON DELETE CASCADE,
		source_entity_id TEXT NOT NULL REFERENCES entities(id) ON DELETE CASCADE,
		target_entity_id TEXT NOT NULL REFERENCES entities(id) ON DELETE CASCADE,
		tags             TEXT,
		metadata         TEXT,
		created_at       INTEGER NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_relationships_source ON relationships(source_entity_id)`,
	`CREATE INDEX IF NOT EXISTS idx_relationships_target ON relationships(target_entity_id)`,

	`CREATE TABLE IF NOT EXISTS memories (
		id         TEXT PRIMARY KEY,
		type       TEXT NOT NULL,
		entity_id  TEXT,
		agent_id   TEXT NOT NULL REFERENCES agents(id) ON DELETE CASCADE,
		room_id    TEXT,
		world_id   TEXT,
		content    TEXT NOT NULL,
		metadata   TEXT,
		is_unique  INTEGER NOT NULL DEFAULT 0,
		created_at INTEGER NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_memories_room_type ON memories(room_id, type)`,
	`CREATE INDEX IF NOT EXISTS idx_memories_agent ON memories(agent_id)`,

	`CREATE TABLE IF NOT EXISTS embeddings (
		memory_id TEXT PRIMARY KEY REFERENCES memories(id) ON DELETE CASCADE,
		dims      INTEGER NOT NULL,
		vector    TEXT NOT NULL
	)`,

	`CREATE TABLE IF NOT EXISTS tasks (
		id          TEXT PRIMARY KEY,
		agent_id    TEXT NOT NULL REFERENCES agents(id) ON DELETE CASCADE,
		name        TEXT NOT NULL,
		description TEXT,
		room_id     TEXT,
		world_id    TEXT,
		tags        TEXT,
		metadata    TEXT,
		updated_at  INTEGER NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_tasks_name ON tasks(name)`,
	`CREATE INDEX IF NOT EXISTS idx_tasks_room ON tasks(room_id)`,

	`CREATE TABLE IF NOT EXISTS cache (
		agent_id   TEXT NOT NULL REFERENCES agents(id) ON DELETE CASCADE,
		key        TEXT NOT NULL,
		value      TEXT NOT NULL,
		created_at INTEGER NOT NULL,
		PRIMARY KEY (agent_id, key)
	)`,

	`CREATE TABLE IF NOT EXISTS logs (
		id         TEXT PRIMARY KEY,
		agent_id   TEXT NOT NULL REFERENCES agents(id) ON DELETE CASCADE,
		entity_id  TEXT NOT NULL,
		room_id    TEXT NOT NULL,
		type       TEXT NOT NULL,
		body       TEXT,
		created_at INTEGER NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_logs_entity_room ON logs(entity_id, room_id)`,
}

var schemaPostgres = []string{
	`CREATE EXTENSION IF NOT EXISTS vector`,

	`CREATE TABLE IF NOT EXISTS agents (
		id         TEXT PRIMARY KEY,
		name       TEXT NOT NULL UNIQUE,
		username   TEXT,
		bio        TEXT,
		enabled    BOOLEAN NOT NULL DEFAULT TRUE,
		settings   TEXT,
		created_at BIGINT NOT NULL,
		updated_at BIGINT NOT NULL
	)`,

	`CREATE TABLE IF NOT EXISTS worlds (
		id        TEXT PRIMARY KEY,
		agent_id  TEXT NOT NULL REFERENCES agents(id) ON DELETE CASCADE,
		name      TEXT NOT NULL,
		server_id TEXT,
		metadata  TEXT
	)`,
	`CREATE INDEX IF NOT EXISTS idx_worlds_agent ON worlds(agent_id)`,

	`CREATE TABLE IF NOT EXISTS rooms (
		id         TEXT PRIMARY KEY,
		agent_id   TEXT NOT NULL REFERENCES agents(id) ON DELETE CASCADE,
		world_id   TEXT REFERENCES worlds(id) ON DELETE CASCADE,
		name       TEXT,
		source     TEXT,
		type       TEXT,
		channel_id TEXT,
		server_id  TEXT,
		metadata   TEXT,
		created_at BIGINT NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_rooms_world ON rooms(world_id)`,
	`CREATE INDEX IF NOT EXISTS idx_rooms_server ON rooms(server_id)`,

	`CREATE TABLE IF NOT EXISTS entities (
		id       TEXT PRIMARY KEY,
		agent_id TEXT NOT NULL REFERENCES agents(id) ON DELETE CASCADE,
		names    TEXT NOT NULL,
		metadata TEXT
	)`,
	`CREATE INDEX IF NOT EXISTS idx_entities_agent ON entities(agent_id)`,

	`CREATE TABLE IF NOT EXISTS components (
		id               TEXT PRIMARY KEY,
		entity_id        TEXT NOT NULL REFERENCES entities(id) ON DELETE CASCADE,
		agent_id         TEXT NOT NULL REFERENCES agents(id) ON DELETE CASCADE,
		room_id          TEXT,
		world_id         TEXT,
		source_entity_id TEXT,
		type             TEXT NOT NULL,
		data             TEXT,
		created_at       BIGINT NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_components_entity_type ON components(entity_id, type)`,

	`CREATE TABLE IF NOT EXISTS participants (
		id         TEXT PRIMARY KEY,
		entity_id  TEXT NOT NULL REFERENCES entities(id) ON DELETE CASCADE,
		room_id    TEXT NOT NULL REFERENCES rooms(id) ON DELETE CASCADE,
		agent_id   TEXT NOT NULL REFERENCES agents(id) ON DELETE CASCADE,
		user_state TEXT,
		created_at BIGINT NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_participants_room ON participants(room_id)`,
	`CREATE INDEX IF NOT EXISTS idx_participants_entity ON participants(entity_id)`,

	`CREATE TABLE IF NOT EXISTS relationships (
		id               TEXT PRIMARY KEY,
		agent_id         TEXT NOT NULL REFERENCES agents(id) ON DELETE CASCADE,
		source_entity_id TEXT NOT NULL REFERENCES entities(id) ON DELETE CASCADE,
		target_entity_id TEXT NOT NULL REFERENCES entities(id) ON DELETE CASCADE,
		tags             TEXT,
		metadata         TEXT,
		created_at       BIGINT NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_relationships_source ON relationships(source_entity_id)`,
	`CREATE INDEX IF NOT EXISTS idx_relationships_target ON relationships(target_entity_id)`,

	`CREATE TABLE IF NOT EXISTS memories (
		id         TEXT PRIMARY KEY,
		type       TEXT NOT NULL,
		entity_id  TEXT,
		agent_id   TEXT NOT NULL REFERENCES agents(id) ON DELETE CASCADE,
		room_id    TEXT,
		world_id   TEXT,
		content    TEXT NOT NULL,
		metadata   TEXT,
		is_unique  BOOLEAN NOT NULL DEFAULT FALSE,
		created_at BIGINT NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_memories_room_type ON memories(room_id, type)`,
	`CREATE INDEX IF NOT EXISTS idx_memories_agent ON memories(agent_id)`,

	// The vector column is declared without a fixed width so the adapter
	// dimension can change without a table rewrite; dims scopes searches
	// to rows of matching width.
	`CREATE TABLE IF NOT EXISTS embeddings (
		memory_id TEXT PRIMARY KEY REFERENCES memories(id) ON DELETE CASCADE,
		dims      INTEGER NOT NULL,
		vector    vector NOT NULL
	)`,

	`CREATE TABLE IF NOT EXISTS tasks (
		id          TEXT PRIMARY KEY,
		agent_id    TEXT NOT NULL REFERENCES agents(id) ON DELETE CASCADE,
		name        TEXT NOT NULL,
		description TEXT,
		room_id     TEXT,
		world_id    TEXT,
		tags        TEXT,
		metadata    TEXT,
		updated_at  BIGINT NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_tasks_name ON tasks(name)`,
	`CREATE INDEX IF NOT EXISTS idx_tasks_room ON tasks(room_id)`,

	`CREATE TABLE IF NOT EXISTS cache (
		agent_id   TEXT NOT NULL REFERENCES agents(id) ON DELETE CASCADE,
		key        TEXT NOT NULL,
		value      TEXT NOT NULL,
		created_at BIGINT NOT NULL,
		PRIMARY KEY (agent_id, key)
	)`,

	`CREATE TABLE IF NOT EXISTS logs (
		id         TEXT PRIMARY KEY,
		agent_id   TEXT NOT NULL REFERENCES agents(id) ON DELETE CASCADE,
		entity_id  TEXT NOT NULL,
		room_id    TEXT NOT NULL,
		type       TEXT NOT NULL,
		body       TEXT,
		created_at BIGINT NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_logs_entity_room ON logs(entity_id, room_id)`,
}
