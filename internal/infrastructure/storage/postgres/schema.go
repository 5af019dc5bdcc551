package postgres

import (
	"context"
	_ "embed"
	"fmt"
)

//go:embed schema.sql
var schemaSQL string

// Schema returns the DDL for every table the engine uses.
func Schema() string {
	return schemaSQL
}

// ApplySchema creates missing tables and indexes. Every statement is idempotent.
func ApplySchema(ctx context.Context, pool *Pool) error {
	if _, err := pool.Exec(ctx, schemaSQL); err != nil {
		return fmt.Errorf("apply schema: %w", err)
	}
	return nil
}
