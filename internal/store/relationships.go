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

const relationshipColumns = `id, agent_id, source_entity_id, target_entity_id, tags, metadata, created_at`

// CreateRelationship records a directed tie from source to target.
// Direction matters: the reverse tie is a separate row.
func (a *Adapter) CreateRelationship(ctx context.Context, sourceEntityID, targetEntityID uuid.UUID, tags []string, metadata map[string]any) (bool, error) {
	if sourceEntityID == uuid.Nil || targetEntityID == uuid.Nil {
		return false, fmt.Errorf("relationship source and target are required")
	}
	tagsJSON, err := encodeStringList(tags)
	if err != nil {
		return false, err
	}
	metadataJSON, err := encodeJSON(metadata)
	if err != nil {
		return false, err
	}

	_, err = a.db.exec(ctx,
		`INSERT INTO relationships (id, agent_id, source_entity_id, target_entity_id, tags, metadata, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		uuid.New().String(), a.agentID.String(), sourceEntityID.String(), targetEntityID.String(),
		tagsJSON, metadataJSON, now())
	if err != nil {
		return false, fmt.Errorf("create relationship: %w", err)
	}
	return true, nil
}

// GetRelationship looks up the tie for an ordered (source, target)
// pair, nil when absent.
func (a *Adapter) GetRelationship(ctx context.Context, sourceEntityID, targetEntityID uuid.UUID) (*model.Relationship, error) {
	row := a.db.queryRow(ctx,
		`SELECT `+relationshipColumns+` FROM relationships
		 WHERE source_entity_id = ? AND target_entity_id = ? AND agent_id = ?
		 ORDER BY created_at DESC LIMIT 1`,
		sourceEntityID.String(), targetEntityID.String(), a.agentID.String())
	rel, err := scanRelationship(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get relationship: %w", err)
	}
	return rel, nil
}

// GetRelationships returns every relationship where the entity appears
// as source or target. When tags are given, only rows carrying all of
// them match.
func (a *Adapter) GetRelationships(ctx context.Context, entityID uuid.UUID, tags []string) ([]model.Relationship, error) {
	where := []string{"(source_entity_id = ? OR target_entity_id = ?)", "agent_id = ?"}
	args := []any{entityID.String(), entityID.String(), a.agentID.String()}
	tagConditions("tags", tags, &where, &args)

	rows, err := a.db.query(ctx,
		`SELECT `+relationshipColumns+` FROM relationships
		 WHERE `+strings.Join(where, " AND ")+` ORDER BY created_at DESC`, args...)
	if err != nil {
		return nil, fmt.Errorf("get relationships: %w", err)
	}
	defer rows.Close()

	var rels []model.Relationship
	for rows.Next() {
		rel, err := scanRelationship(rows)
		if err != nil {
			return nil, fmt.Errorf("get relationships: %w", err)
		}
		rels = append(rels, *rel)
	}
	return rels, rows.Err()
}

// UpdateRelationship replaces tags and metadata wholesale for the row
// with the given id.
func (a *Adapter) UpdateRelationship(ctx context.Context, rel *model.Relationship) error {
	tagsJSON, err := encodeStringList(rel.Tags)
	if err != nil {
		return err
	}
	metadataJSON, err := encodeJSON(rel.Metadata)
	if err != nil {
		return err
	}
	_, err = a.db.exec(ctx,
		`UPDATE relationships SET tags = ?, metadata = ? WHERE id = ? AND agent_id = ?`,
		tagsJSON, metadataJSON, rel.ID.String(), a.agentID.String())
	if err != nil {
		return fmt.Errorf("update relationship: %w", err)
	}
	return nil
}

func scanRelationship(row scanner) (*model.Relationship, error) {
	var rel model.Relationship
	var id, agentID, sourceID, targetID string
	var tags, metadata sql.NullString
	if err := row.Scan(&id, &agentID, &sourceID, &targetID, &tags, &metadata, &rel.CreatedAt); err != nil {
		return nil, err
	}
	rel.ID, _ = uuid.Parse(id)
	rel.AgentID, _ = uuid.Parse(agentID)
	rel.SourceEntityID, _ = uuid.Parse(sourceID)
	rel.TargetEntityID, _ = uuid.Parse(targetID)
	rel.Tags = decodeStringList(tags)
	m, err := decodeJSON(metadata)
	if err != nil {
		return nil, err
	}
	rel.Metadata = m
	return &rel, nil
}
