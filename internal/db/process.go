package db

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/soochol/workbench/internal/workbench"
)

// CreateProcess inserts a new process. The definition is stored as JSON.
func (d *DB) CreateProcess(ctx context.Context, p *workbench.ProcessRecord) error {
	defJSON, err := json.Marshal(p.Definition)
	if err != nil {
		return fmt.Errorf("marshal definition: %w", err)
	}
	_, err = d.Pool.ExecContext(ctx, d.rebind(
		`INSERT INTO processes (id, name, definition, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5)`),
		p.ID, p.Name, string(defJSON), p.CreatedAt, p.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert process: %w", err)
	}
	return nil
}

// GetProcess retrieves a process by ID.
func (d *DB) GetProcess(ctx context.Context, id string) (*workbench.ProcessRecord, error) {
	var p workbench.ProcessRecord
	var defJSON []byte
	err := d.Pool.QueryRowContext(ctx, d.rebind(
		`SELECT id, name, definition, created_at, updated_at
		 FROM processes WHERE id = $1`), id,
	).Scan(&p.ID, &p.Name, &defJSON, &p.CreatedAt, &p.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("process %q: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get process: %w", err)
	}
	if err := json.Unmarshal(defJSON, &p.Definition); err != nil {
		return nil, fmt.Errorf("unmarshal definition: %w", err)
	}
	return &p, nil
}

// ListProcesses returns all processes ordered by updated_at descending.
func (d *DB) ListProcesses(ctx context.Context) ([]*workbench.ProcessRecord, error) {
	rows, err := d.Pool.QueryContext(ctx,
		`SELECT id, name, definition, created_at, updated_at
		 FROM processes ORDER BY updated_at DESC`,
	)
	if err != nil {
		return nil, fmt.Errorf("list processes: %w", err)
	}
	defer rows.Close()

	var result []*workbench.ProcessRecord
	for rows.Next() {
		var p workbench.ProcessRecord
		var defJSON []byte
		if err := rows.Scan(&p.ID, &p.Name, &defJSON, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan process: %w", err)
		}
		if err := json.Unmarshal(defJSON, &p.Definition); err != nil {
			return nil, fmt.Errorf("unmarshal definition: %w", err)
		}
		result = append(result, &p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate processes: %w", err)
	}
	return result, nil
}

// UpdateProcess replaces a process's name, definition and updated_at.
func (d *DB) UpdateProcess(ctx context.Context, p *workbench.ProcessRecord) error {
	defJSON, err := json.Marshal(p.Definition)
	if err != nil {
		return fmt.Errorf("marshal definition: %w", err)
	}
	res, err := d.Pool.ExecContext(ctx, d.rebind(
		`UPDATE processes SET name = $1, definition = $2, updated_at = $3
		 WHERE id = $4`),
		p.Name, string(defJSON), p.UpdatedAt, p.ID,
	)
	if err != nil {
		return fmt.Errorf("update process: %w", err)
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return fmt.Errorf("process %q: %w", p.ID, ErrNotFound)
	}
	return nil
}

// DeleteProcess removes a process by ID.
func (d *DB) DeleteProcess(ctx context.Context, id string) error {
	res, err := d.Pool.ExecContext(ctx, d.rebind(`DELETE FROM processes WHERE id = $1`), id)
	if err != nil {
		return fmt.Errorf("delete process: %w", err)
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return fmt.Errorf("process %q: %w", id, ErrNotFound)
	}
	return nil
}
