package store

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/pgvector/pgvector-go"
)

// dialect confines every engine difference to one small surface:
// driver registration, parameter binding, DDL, JSON field extraction,
// and vector encoding/ranking. All entity logic lives in the Adapter
// and runs identically against both engines.
type dialect interface {
	name() string
	driver() string

	// bind rewrites ?-style placeholders into the engine's native form.
	bind(query string) string

	// schema returns the ordered DDL statements for the initial migration.
	schema() []string

	// jsonText returns a SQL expression extracting a text field from a
	// JSON-typed column.
	jsonText(column, key string) string

	// encodeVector converts an embedding into a driver value.
	encodeVector(vec []float32) (any, error)

	// decodeVector converts a stored column value back into an embedding.
	decodeVector(raw []byte) ([]float32, error)

	// similarityExpr returns a SQL expression computing cosine similarity
	// between the embeddings column and a bound query vector, and whether
	// the engine supports ranking natively at all. Engines without native
	// vector operators are ranked in-process instead.
	similarityExpr() (string, bool)
}

type sqliteDialect struct{}

func (sqliteDialect) name() string             { return "sqlite" }
func (sqliteDialect) driver() string           { return "sqlite" }
func (sqliteDialect) bind(query string) string { return query }
func (sqliteDialect) schema() []string         { return schemaSQLite }

func (sqliteDialect) jsonText(column, key string) string {
	return fmt.Sprintf("json_extract(%s, '$.%s')", column, key)
}

func (sqliteDialect) encodeVector(vec []float32) (any, error) {
	b, err := json.Marshal(vec)
	if err != nil {
		return nil, fmt.Errorf("encode vector: %w", err)
	}
	return string(b), nil
}

func (sqliteDialect) decodeVector(raw []byte) ([]float32, error) {
	var vec []float32
	if err := json.Unmarshal(raw, &vec); err != nil {
		return nil, fmt.Errorf("decode vector: %w", err)
	}
	return vec, nil
}

func (sqliteDialect) similarityExpr() (string, bool) { return "", false }

type postgresDialect struct{}

func (postgresDialect) name() string   { return "postgres" }
func (postgresDialect) driver() string { return "pgx" }

func (postgresDialect) bind(query string) string {
	var b strings.Builder
	b.Grow(len(query) + 8)
	n := 0
	for i := 0; i < len(query); i++ {
		if query[i] == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteByte(query[i])
	}
	return b.String()
}

func (postgresDialect) schema() []string { return schemaPostgres }

func (postgresDialect) jsonText(column, key string) string {
	return fmt.Sprintf("(%s::jsonb ->> '%s')", column, key)
}

func (postgresDialect) encodeVector(vec []float32) (any, error) {
	return pgvector.NewVector(vec), nil
}

func (postgresDialect) decodeVector(raw []byte) ([]float32, error) {
	var v pgvector.Vector
	if err := v.Scan(raw); err != nil {
		return nil, fmt.Errorf("decode vector: %w", err)
	}
	return v.Slice(), nil
}

func (postgresDialect) similarityExpr() (string, bool) {
	return "(1 - (e.vector <=> ?::vector))", true
}
