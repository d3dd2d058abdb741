// Package data provides a PostgreSQL-backed operations layer for resource
// routers. All entities live in one documents table with a jsonb payload and
// an encoded ancestry column, so a single schema serves every level of a
// resource hierarchy:
//
//	CREATE TABLE documents (
//	    id         text        NOT NULL,
//	    tag        text        NOT NULL,
//	    ancestry   text        NOT NULL DEFAULT '',
//	    doc        jsonb       NOT NULL,
//	    created_at timestamptz NOT NULL DEFAULT now(),
//	    updated_at timestamptz NOT NULL DEFAULT now(),
//	    PRIMARY KEY (tag, ancestry, id)
//	);
package data

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/restmount/restmount/ops"
	"github.com/restmount/restmount/resource/key"
)

// Collection is the operations layer for one entity kind. It implements
// ops.Store plus all four extension interfaces, declaring one operation of
// each class: the "exists" facet, the "touch" action, the "count" all-facet,
// and the "purge" all-action.
type Collection struct {
	DB  *sql.DB // Shared database connection pool
	Tag string  // Entity kind this collection serves
}

// NewCollection returns the operations layer for one entity tag backed by
// the given connection pool.
func NewCollection(db *sql.DB, tag string) Collection {
	return Collection{DB: db, Tag: tag}
}

// Find lists the documents in the collection addressed by locations. Query
// parameters other than limit/offset become equality filters on document
// fields, implemented with a jsonb containment match.
func (c Collection) Find(ctx context.Context, locations []key.Segment, params ops.Params) ([]ops.Document, error) {
	filters := filtersFrom(params)

	filter, err := filterJSON(params)
	if err != nil {
		return nil, err
	}

	query := `
		SELECT id, doc, created_at, updated_at
		FROM documents
		WHERE tag = $1 AND ancestry = $2 AND doc @> $3::jsonb
		ORDER BY created_at, id
		LIMIT $4 OFFSET $5`

	rows, err := c.DB.QueryContext(ctx, query, c.Tag, encodeAncestry(locations), string(filter), filters.limit(), filters.offset())
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	docs := []ops.Document{}
	for rows.Next() {
		var (
			id        string
			payload   []byte
			createdAt time.Time
			updatedAt time.Time
		)
		if err := rows.Scan(&id, &payload, &createdAt, &updatedAt); err != nil {
			return nil, err
		}
		doc, err := renderDocument(id, payload, createdAt, updatedAt)
		if err != nil {
			return nil, err
		}
		docs = append(docs, doc)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return docs, nil
}

// Create stores doc as a new document in the addressed collection with a
// server-assigned UUID and returns the stored result including the id and
// timestamps.
func (c Collection) Create(ctx context.Context, locations []key.Segment, doc ops.Document) (ops.Document, error) {
	payload, err := json.Marshal(doc)
	if err != nil {
		return nil, err
	}

	id := uuid.NewString()

	query := `
		INSERT INTO documents (id, tag, ancestry, doc)
		VALUES ($1, $2, $3, $4)
		RETURNING created_at, updated_at`

	var createdAt, updatedAt time.Time
	err = c.DB.QueryRowContext(ctx, query, id, c.Tag, encodeAncestry(locations), string(payload)).
		Scan(&createdAt, &updatedAt)
	if err != nil {
		return nil, err
	}

	return renderDocument(id, payload, createdAt, updatedAt)
}

// Get returns the document addressed by k, or ops.ErrNotFound.
func (c Collection) Get(ctx context.Context, k key.Composite) (ops.Document, error) {
	query := `
		SELECT doc, created_at, updated_at
		FROM documents
		WHERE tag = $1 AND ancestry = $2 AND id = $3`

	var (
		payload   []byte
		createdAt time.Time
		updatedAt time.Time
	)
	err := c.DB.QueryRowContext(ctx, query, c.Tag, encodeAncestry(k.Locations), k.Primary.ID).
		Scan(&payload, &createdAt, &updatedAt)
	if err != nil {
		return nil, notFoundOr(err)
	}

	return renderDocument(k.Primary.ID, payload, createdAt, updatedAt)
}

// Update replaces the stored payload for k and bumps updated_at.
func (c Collection) Update(ctx context.Context, k key.Composite, doc ops.Document) (ops.Document, error) {
	payload, err := json.Marshal(doc)
	if err != nil {
		return nil, err
	}

	query := `
		UPDATE documents
		SET doc = $4, updated_at = now()
		WHERE tag = $1 AND ancestry = $2 AND id = $3
		RETURNING created_at, updated_at`

	var createdAt, updatedAt time.Time
	err = c.DB.QueryRowContext(ctx, query, c.Tag, encodeAncestry(k.Locations), k.Primary.ID, string(payload)).
		Scan(&createdAt, &updatedAt)
	if err != nil {
		return nil, notFoundOr(err)
	}

	return renderDocument(k.Primary.ID, payload, createdAt, updatedAt)
}

// Remove deletes the document addressed by k and returns what was removed.
func (c Collection) Remove(ctx context.Context, k key.Composite) (ops.Document, error) {
	query := `
		DELETE FROM documents
		WHERE tag = $1 AND ancestry = $2 AND id = $3
		RETURNING doc, created_at, updated_at`

	var (
		payload   []byte
		createdAt time.Time
		updatedAt time.Time
	)
	err := c.DB.QueryRowContext(ctx, query, c.Tag, encodeAncestry(k.Locations), k.Primary.ID).
		Scan(&payload, &createdAt, &updatedAt)
	if err != nil {
		return nil, notFoundOr(err)
	}

	return renderDocument(k.Primary.ID, payload, createdAt, updatedAt)
}

// Facets declares the per-item facets this store answers.
func (c Collection) Facets() []string { return []string{"exists"} }

// Facet runs a declared per-item facet.
func (c Collection) Facet(ctx context.Context, k key.Composite, name string, params ops.Params) (any, error) {
	switch name {
	case "exists":
		query := `SELECT EXISTS (SELECT 1 FROM documents WHERE tag = $1 AND ancestry = $2 AND id = $3)`
		var exists bool
		err := c.DB.QueryRowContext(ctx, query, c.Tag, encodeAncestry(k.Locations), k.Primary.ID).Scan(&exists)
		if err != nil {
			return nil, err
		}
		return exists, nil
	default:
		return nil, fmt.Errorf("data: unknown facet %q", name)
	}
}

// Actions declares the per-item actions this store answers.
func (c Collection) Actions() []string { return []string{"touch"} }

// Action runs a declared per-item action.
func (c Collection) Action(ctx context.Context, k key.Composite, name string, payload ops.Document) (any, error) {
	switch name {
	case "touch":
		query := `
			UPDATE documents
			SET updated_at = now()
			WHERE tag = $1 AND ancestry = $2 AND id = $3
			RETURNING doc, created_at, updated_at`

		var (
			stored    []byte
			createdAt time.Time
			updatedAt time.Time
		)
		err := c.DB.QueryRowContext(ctx, query, c.Tag, encodeAncestry(k.Locations), k.Primary.ID).
			Scan(&stored, &createdAt, &updatedAt)
		if err != nil {
			return nil, notFoundOr(err)
		}
		return renderDocument(k.Primary.ID, stored, createdAt, updatedAt)
	default:
		return nil, fmt.Errorf("data: unknown action %q", name)
	}
}

// AllFacets declares the collection-level facets this store answers.
func (c Collection) AllFacets() []string { return []string{"count"} }

// AllFacet runs a declared collection-level facet.
func (c Collection) AllFacet(ctx context.Context, locations []key.Segment, name string, params ops.Params) (any, error) {
	switch name {
	case "count":
		query := `SELECT count(*) FROM documents WHERE tag = $1 AND ancestry = $2`
		var total int
		err := c.DB.QueryRowContext(ctx, query, c.Tag, encodeAncestry(locations)).Scan(&total)
		if err != nil {
			return nil, err
		}
		return total, nil
	default:
		return nil, fmt.Errorf("data: unknown all-facet %q", name)
	}
}

// AllActions declares the collection-level actions this store answers.
func (c Collection) AllActions() []string { return []string{"purge"} }

// AllAction runs a declared collection-level action.
func (c Collection) AllAction(ctx context.Context, locations []key.Segment, name string, payload ops.Document) (any, error) {
	switch name {
	case "purge":
		query := `DELETE FROM documents WHERE tag = $1 AND ancestry = $2`
		result, err := c.DB.ExecContext(ctx, query, c.Tag, encodeAncestry(locations))
		if err != nil {
			return nil, err
		}
		purged, err := result.RowsAffected()
		if err != nil {
			return nil, err
		}
		return ops.Document{"purged": purged}, nil
	default:
		return nil, fmt.Errorf("data: unknown all-action %q", name)
	}
}

// encodeAncestry flattens a location chain into the ancestry column value,
// e.g. [order:17 user:42] -> "order:17/user:42". The chain arrives nearest
// ancestor first and the encoding preserves that order, so keys resolved
// through the same router hierarchy always address the same rows.
func encodeAncestry(locations []key.Segment) string {
	if len(locations) == 0 {
		return ""
	}
	parts := make([]string, len(locations))
	for i, s := range locations {
		parts[i] = s.Tag + ":" + s.ID
	}
	return strings.Join(parts, "/")
}

// renderDocument decodes a stored jsonb payload and overlays the
// server-managed fields.
func renderDocument(id string, payload []byte, createdAt, updatedAt time.Time) (ops.Document, error) {
	doc := ops.Document{}
	if err := json.Unmarshal(payload, &doc); err != nil {
		return nil, err
	}
	doc["id"] = id
	doc["created_at"] = createdAt
	doc["updated_at"] = updatedAt
	return doc, nil
}

// notFoundOr translates an empty result set into the contract sentinel and
// passes every other database error through.
func notFoundOr(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return ops.ErrNotFound
	}
	return err
}
