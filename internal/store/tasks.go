package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/mwhitby/agent-store/internal/model"
)

const taskColumns = `id, agent_id, name, description, room_id, world_id, tags, metadata, updated_at`

// CreateTask queues a task and returns its id.
func (a *Adapter) CreateTask(ctx context.Context, task *model.Task) (uuid.UUID, error) {
	if task.Name == "" {
		return uuid.Nil, fmt.Errorf("task name is required")
	}
	if task.ID == uuid.Nil {
		task.ID = uuid.New()
	}
	if task.UpdatedAt == 0 {
		task.UpdatedAt = now()
	}
	tags, err := encodeStringList(task.Tags)
	if err != nil {
		return uuid.Nil, err
	}
	metadata, err := encodeJSON(task.Metadata)
	if err != nil {
		return uuid.Nil, err
	}
	_, err = a.db.exec(ctx,
		`INSERT INTO tasks (`+taskColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		task.ID.String(), a.agentID.String(), task.Name, task.Description,
		nullID(task.RoomID), nullID(task.WorldID), tags, metadata, task.UpdatedAt)
	if err != nil {
		return uuid.Nil, fmt.Errorf("create task: %w", err)
	}
	return task.ID, nil
}

// GetTask returns a task by id, nil when absent.
func (a *Adapter) GetTask(ctx context.Context, id uuid.UUID) (*model.Task, error) {
	row := a.db.queryRow(ctx,
		`SELECT `+taskColumns+` FROM tasks WHERE id = ? AND agent_id = ?`,
		id.String(), a.agentID.String())
	task, err := scanTask(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get task: %w", err)
	}
	return task, nil
}

// GetTasks lists tasks, filtered by room and tags. Every listed tag
// must be present on a task for it to match.
func (a *Adapter) GetTasks(ctx context.Context, p GetTasksParams) ([]model.Task, error) {
	where := []string{"agent_id = ?"}
	args := []any{a.agentID.String()}
	if p.RoomID != uuid.Nil {
		where = append(where, "room_id = ?")
		args = append(args, p.RoomID.String())
	}
	tagConditions("tags", p.Tags, &where, &args)

	rows, err := a.db.query(ctx,
		`SELECT `+taskColumns+` FROM tasks WHERE `+strings.Join(where, " AND ")+
			` ORDER BY updated_at DESC`, args...)
	if err != nil {
		return nil, fmt.Errorf("get tasks: %w", err)
	}
	defer rows.Close()
	return collectTasks(rows)
}

// GetTasksByName lists tasks with an exact name match.
func (a *Adapter) GetTasksByName(ctx context.Context, name string) ([]model.Task, error) {
	rows, err := a.db.query(ctx,
		`SELECT `+taskColumns+` FROM tasks WHERE agent_id = ? AND name = ? ORDER BY updated_at DESC`,
		a.agentID.String(), name)
	if err != nil {
		return nil, fmt.Errorf("get tasks by name: %w", err)
	}
	defer rows.Close()
	return collectTasks(rows)
}

// UpdateTask applies a partial update. Metadata, when present, replaces
// the stored object as a whole. Updating an absent task is a no-op.
func (a *Adapter) UpdateTask(ctx context.Context, id uuid.UUID, update model.TaskUpdate) error {
	set := []string{"updated_at = ?"}
	args := []any{now()}
	if update.Name != nil {
		set = append(set, "name = ?")
		args = append(args, *update.Name)
	}
	if update.Description != nil {
		set = append(set, "description = ?")
		args = append(args, *update.Description)
	}
	if update.RoomID != nil {
		set = append(set, "room_id = ?")
		args = append(args, nullID(*update.RoomID))
	}
	if update.Tags != nil {
		tags, err := encodeStringList(update.Tags)
		if err != nil {
			return err
		}
		set = append(set, "tags = ?")
		args = append(args, tags)
	}
	if update.Metadata != nil {
		metadata, err := encodeJSON(update.Metadata)
		if err != nil {
			return err
		}
		set = append(set, "metadata = ?")
		args = append(args, metadata)
	}
	args = append(args, id.String(), a.agentID.String())

	_, err := a.db.exec(ctx,
		`UPDATE tasks SET `+strings.Join(set, ", ")+` WHERE id = ? AND agent_id = ?`, args...)
	if err != nil {
		return fmt.Errorf("update task: %w", err)
	}
	return nil
}

// DeleteTask removes a task, succeeding whether or not it existed.
func (a *Adapter) DeleteTask(ctx context.Context, id uuid.UUID) error {
	_, err := a.db.exec(ctx,
		`DELETE FROM tasks WHERE id = ? AND agent_id = ?`,
		id.String(), a.agentID.String())
	if err != nil {
		return fmt.Errorf("delete task: %w", err)
	}
	return nil
}

func scanTask(row scanner) (*model.Task, error) {
	var t model.Task
	var id, agentID string
	var description, roomID, worldID, tags, metadata sql.NullString
	if err := row.Scan(&id, &agentID, &t.Name, &description, &roomID, &worldID, &tags, &metadata, &t.UpdatedAt); err != nil {
		return nil, err
	}
	t.ID, _ = uuid.Parse(id)
	t.AgentID, _ = uuid.Parse(agentID)
	t.Description = description.String
	t.RoomID = scanNullID(roomID)
	t.WorldID = scanNullID(worldID)

	t.Tags = decodeStringList(tags)

	var err error
	if t.Metadata, err = decodeJSON(metadata); err != nil {
		return nil, err
	}
	return &t, nil
}

func collectTasks(rows *sql.Rows) ([]model.Task, error) {
	var tasks []model.Task
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, fmt.Errorf("scan task: %w", err)
		}
		tasks = append(tasks, *t)
	}
	return tasks, rows.Err()
}
