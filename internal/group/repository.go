package group

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/fkhayef/chama/internal/database"
)

// Repository handles group persistence. Lookups return (nil, nil) when the
// group does not exist.
type Repository interface {
	List(ctx context.Context) ([]*Group, error)
	GetByID(ctx context.Context, id int64) (*Group, error)
	Create(ctx context.Context, in *Input) (*Group, error)
	Update(ctx context.Context, id int64, in *Input) (*Group, error)
	// Delete removes the group with its members and their contributions in
	// one atomic unit. Returns ErrGroupNotFound when absent.
	Delete(ctx context.Context, id int64) error
}

// PostgresRepository is the Postgres implementation of Repository
type PostgresRepository struct {
	db *sql.DB
}

var _ Repository = (*PostgresRepository)(nil)

// NewPostgresRepository creates a new group repository
func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// List retrieves every group ordered by name
func (r *PostgresRepository) List(ctx context.Context) ([]*Group, error) {
	query := `
		SELECT id, name, cycle_start_date, created_at
		FROM groups
		ORDER BY name, id
	`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list groups: %w", err)
	}
	defer rows.Close()

	groups := []*Group{}
	for rows.Next() {
		group := &Group{}
		if err := rows.Scan(
			&group.ID,
			&group.Name,
			&group.CycleStartDate,
			&group.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan group: %w", err)
		}
		groups = append(groups, group)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate groups: %w", err)
	}

	return groups, nil
}

// GetByID retrieves a group by its ID
func (r *PostgresRepository) GetByID(ctx context.Context, id int64) (*Group, error) {
	query := `
		SELECT id, name, cycle_start_date, created_at
		FROM groups
		WHERE id = $1
	`

	group := &Group{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&group.ID,
		&group.Name,
		&group.CycleStartDate,
		&group.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get group: %w", err)
	}

	return group, nil
}

// Create inserts a new group
func (r *PostgresRepository) Create(ctx context.Context, in *Input) (*Group, error) {
	query := `
		INSERT INTO groups (name, cycle_start_date)
		VALUES ($1, $2)
		RETURNING id, name, cycle_start_date, created_at
	`

	group := &Group{}
	err := r.db.QueryRowContext(ctx, query, in.Name, in.CycleStartDate).Scan(
		&group.ID,
		&group.Name,
		&group.CycleStartDate,
		&group.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create group: %w", err)
	}

	return group, nil
}

// Update replaces the editable fields of a group
func (r *PostgresRepository) Update(ctx context.Context, id int64, in *Input) (*Group, error) {
	query := `
		UPDATE groups
		SET name = $2,
		    cycle_start_date = $3
		WHERE id = $1
		RETURNING id, name, cycle_start_date, created_at
	`

	group := &Group{}
	err := r.db.QueryRowContext(ctx, query, id, in.Name, in.CycleStartDate).Scan(
		&group.ID,
		&group.Name,
		&group.CycleStartDate,
		&group.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to update group: %w", err)
	}

	return group, nil
}

// Delete removes a group, its members and every contribution that
// references either
func (r *PostgresRepository) Delete(ctx context.Context, id int64) error {
	return database.WithTx(ctx, r.db, func(tx *sql.Tx) error {
		var locked int64
		err := tx.QueryRowContext(ctx, `SELECT id FROM groups WHERE id = $1 FOR UPDATE`, id).Scan(&locked)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return ErrGroupNotFound
			}
			return fmt.Errorf("failed to lock group: %w", err)
		}

		contributions := `
			DELETE FROM contributions
			WHERE group_id = $1
			   OR member_id IN (SELECT id FROM members WHERE group_id = $1)
		`
		if _, err := tx.ExecContext(ctx, contributions, id); err != nil {
			return fmt.Errorf("failed to delete group contributions: %w", err)
		}

		if _, err := tx.ExecContext(ctx, `DELETE FROM members WHERE group_id = $1`, id); err != nil {
			return fmt.Errorf("failed to delete group members: %w", err)
		}

		if _, err := tx.ExecContext(ctx, `DELETE FROM groups WHERE id = $1`, id); err != nil {
			return fmt.Errorf("failed to delete group: %w", err)
		}

		return nil
	})
}
