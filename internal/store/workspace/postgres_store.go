package workspacestore

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"

	_ "github.com/jackc/pgx/v5/stdlib"

	"remixcanvas/internal/workspace"
)

// PostgresStore keeps one jsonb document per owner.
type PostgresStore struct {
	db *sql.DB

	schemaOnce sync.Once
	schemaErr  error
}

func NewPostgresStore(dsn string) (*PostgresStore, error) {
	db, err := sql.Open("pgx", strings.TrimSpace(dsn))
	if err != nil {
		return nil, err
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &PostgresStore{db: db}, nil
}

func (s *PostgresStore) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

func (s *PostgresStore) ensureSchema(ctx context.Context) error {
	s.schemaOnce.Do(func() {
		_, s.schemaErr = s.db.ExecContext(ctx, `
			CREATE TABLE IF NOT EXISTS workspaces (
				owner_id   TEXT PRIMARY KEY,
				doc        JSONB NOT NULL,
				updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
			)`)
	})
	return s.schemaErr
}

func (s *PostgresStore) Load(ctx context.Context, ownerID string) (*workspace.Graph, bool, error) {
	if s == nil || s.db == nil {
		return nil, false, fmt.Errorf("store is nil")
	}
	owner := normalizeOwnerID(ownerID)
	if owner == "" {
		return nil, false, fmt.Errorf("owner_id is required")
	}
	if err := s.ensureSchema(ctx); err != nil {
		return nil, false, err
	}
	var raw []byte
	err := s.db.QueryRowContext(ctx,
		`SELECT doc FROM workspaces WHERE owner_id = $1`, owner).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	var g workspace.Graph
	if err := json.Unmarshal(raw, &g); err != nil {
		return nil, false, fmt.Errorf("decode workspace for %s: %w", owner, err)
	}
	g.Normalize()
	return &g, true, nil
}

func (s *PostgresStore) Save(ctx context.Context, ownerID string, g *workspace.Graph) error {
	if s == nil || s.db == nil {
		return fmt.Errorf("store is nil")
	}
	owner := normalizeOwnerID(ownerID)
	if owner == "" {
		return fmt.Errorf("owner_id is required")
	}
	if g == nil {
		return fmt.Errorf("graph is required")
	}
	if err := s.ensureSchema(ctx); err != nil {
		return err
	}
	raw, err := json.Marshal(g)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO workspaces (owner_id, doc, updated_at)
		VALUES ($1, $2, now())
		ON CONFLICT (owner_id) DO UPDATE SET doc = EXCLUDED.doc, updated_at = now()`,
		owner, raw)
	return err
}
