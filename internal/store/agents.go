package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/mwhitby/agent-store/internal/jsonmap"
	"github.com/mwhitby/agent-store/internal/model"
)

const agentColumns = `id, name, username, bio, enabled, settings, created_at, updated_at`

// CreateAgent inserts a new agent. A duplicate id or name reports
// false rather than an error so callers can branch without unwrapping.
func (a *Adapter) CreateAgent(ctx context.Context, agent *model.Agent) (bool, error) {
	if agent.Name == "" {
		return false, fmt.Errorf("agent name is required")
	}
	if agent.ID == uuid.Nil {
		agent.ID = uuid.New()
	}
	settings, err := encodeJSON(agent.Settings)
	if err != nil {
		return false, err
	}

	ts := now()
	agent.CreatedAt, agent.UpdatedAt = ts, ts

	res, err := a.db.exec(ctx,
		`INSERT INTO agents (id, name, username, bio, enabled, settings, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT DO NOTHING`,
		agent.ID.String(), agent.Name, agent.Username, agent.Bio, agent.Enabled, settings, ts, ts)
	if err != nil {
		return false, fmt.Errorf("create agent: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("create agent: %w", err)
	}
	return n > 0, nil
}

// GetAgent returns the agent with the given id, or nil when absent.
func (a *Adapter) GetAgent(ctx context.Context, id uuid.UUID) (*model.Agent, error) {
	row := a.db.queryRow(ctx, `SELECT `+agentColumns+` FROM agents WHERE id = ?`, id.String())
	agent, err := scanAgent(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get agent: %w", err)
	}
	return agent, nil
}

// GetAgents returns every agent, for admin and cleanup flows.
func (a *Adapter) GetAgents(ctx context.Context) ([]model.Agent, error) {
	rows, err := a.db.query(ctx, `SELECT `+agentColumns+` FROM agents ORDER BY created_at`)
	if err != nil {
		return nil, fmt.Errorf("get agents: %w", err)
	}
	defer rows.Close()

	var agents []model.Agent
	for rows.Next() {
		agent, err := scanAgent(rows)
		if err != nil {
			return nil, fmt.Errorf("get agents: %w", err)
		}
		agents = append(agents, *agent)
	}
	return agents, rows.Err()
}

// CountAgents returns the total number of agents.
func (a *Adapter) CountAgents(ctx context.Context) (int, error) {
	var count int
	if err := a.db.queryRow(ctx, `SELECT COUNT(*) FROM agents`).Scan(&count); err != nil {
		return 0, fmt.Errorf("count agents: %w", err)
	}
	return count, nil
}

// UpdateAgent applies a partial update. Settings are deep-merged with
// null-deletes-key semantics at every depth (including inside a
// "secrets" sub-object); scalar fields replace directly. Returns false
// when the agent does not exist.
func (a *Adapter) UpdateAgent(ctx context.Context, id uuid.UUID, update model.AgentUpdate) (bool, error) {
	current, err := a.GetAgent(ctx, id)
	if err != nil {
		return false, err
	}
	if current == nil {
		return false, nil
	}

	if update.Name != nil {
		current.Name = *update.Name
	}
	if update.Username != nil {
		current.Username = *update.Username
	}
	if update.Bio != nil {
		current.Bio = *update.Bio
	}
	if update.Enabled != nil {
		current.Enabled = *update.Enabled
	}
	if update.Settings != nil {
		current.Settings = jsonmap.Merge(current.Settings, update.Settings)
	}

	settings, err := encodeJSON(current.Settings)
	if err != nil {
		return false, err
	}

	_, err = a.db.exec(ctx,
		`UPDATE agents SET name = ?, username = ?, bio = ?, enabled = ?, settings = ?, updated_at = ?
		 WHERE id = ?`,
		current.Name, current.Username, current.Bio, current.Enabled, settings, now(), id.String())
	if err != nil {
		return false, fmt.Errorf("update agent: %w", err)
	}
	return true, nil
}

// DeleteAgent removes an agent and, through cascades, everything it
// owns. Deleting a missing agent still reports true: deletion asserts
// absence, not prior presence.
func (a *Adapter) DeleteAgent(ctx context.Context, id uuid.UUID) (bool, error) {
	if _, err := a.db.exec(ctx, `DELETE FROM agents WHERE id = ?`, id.String()); err != nil {
		return false, fmt.Errorf("delete agent: %w", err)
	}
	return true, nil
}

// EnsureAgentExists is get-or-create keyed by name. When an agent with
// the name already exists it is returned as-is, even if the input
// carries a different id.
func (a *Adapter) EnsureAgentExists(ctx context.Context, agent *model.Agent) (*model.Agent, error) {
	if agent == nil || agent.Name == "" {
		return nil, fmt.Errorf("agent name is required")
	}

	existing, err := a.getAgentByName(ctx, agent.Name)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return existing, nil
	}

	created, err := a.CreateAgent(ctx, agent)
	if err != nil {
		return nil, err
	}
	if created {
		return agent, nil
	}

	// Lost a create race; the winner's row is authoritative.
	existing, err = a.getAgentByName(ctx, agent.Name)
	if err != nil {
		return nil, err
	}
	if existing == nil {
		return nil, fmt.Errorf("ensure agent %q: conflicting insert not visible", agent.Name)
	}
	return existing, nil
}

func (a *Adapter) getAgentByName(ctx context.Context, name string) (*model.Agent, error) {
	row := a.db.queryRow(ctx, `SELECT `+agentColumns+` FROM agents WHERE name = ?`, name)
	agent, err := scanAgent(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get agent by name: %w", err)
	}
	return agent, nil
}

func scanAgent(row scanner) (*model.Agent, error) {
	var agent model.Agent
	var id string
	var username, bio, settings sql.NullString
	if err := row.Scan(&id, &agent.Name, &username, &bio, &agent.Enabled, &settings,
		&agent.CreatedAt, &agent.UpdatedAt); err != nil {
		return nil, err
	}
	parsed, err := uuid.Parse(id)
	if err != nil {
		return nil, fmt.Errorf("parse agent id: %w", err)
	}
	agent.ID = parsed
	agent.Username = username.String
	agent.Bio = bio.String
	agent.Settings, err = decodeJSON(settings)
	if err != nil {
		return nil, err
	}
	return &agent, nil
}

type scanner interface {
	Scan(dest ...any) error
}
