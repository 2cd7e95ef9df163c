package contribution

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/fkhayef/chama/internal/database"
)

const (
	memberConstraint = "contributions_member_id_fkey"
	groupConstraint  = "contributions_group_id_fkey"
)

// Repository handles contribution persistence. Lookups return (nil, nil)
// when the contribution does not exist.
type Repository interface {
	// List returns every contribution, newest date first, then member name
	List(ctx context.Context) ([]*Contribution, error)
	// ListByMember returns a member's contributions, newest date first
	ListByMember(ctx context.Context, memberID int64) ([]*Contribution, error)
	// ListByGroupMembers returns the contributions of every member currently
	// in the group, newest date first, then member name
	ListByGroupMembers(ctx context.Context, groupID int64) ([]*Contribution, error)
	GetByID(ctx context.Context, id int64) (*Contribution, error)
	Create(ctx context.Context, in *Input) (*Contribution, error)
	Update(ctx context.Context, id int64, in *Input) (*Contribution, error)
	// Delete returns ErrContributionNotFound when absent
	Delete(ctx context.Context, id int64) error
}

// PostgresRepository is the Postgres implementation of Repository
type PostgresRepository struct {
	db *sql.DB
}

var _ Repository = (*PostgresRepository)(nil)

// NewPostgresRepository creates a new contribution repository
func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

const selectContributions = `
	SELECT c.id, c.group_id, c.member_id, c.amount, c.date, c.contribution_type,
	       c.recorded_via, c.notes, c.created_at, m.name
	FROM contributions c
	JOIN members m ON m.id = c.member_id
`

type scanner interface {
	Scan(dest ...any) error
}

func scanContribution(row scanner) (*Contribution, error) {
	c := &Contribution{}
	err := row.Scan(
		&c.ID,
		&c.GroupID,
		&c.MemberID,
		&c.Amount,
		&c.Date,
		&c.Type,
		&c.RecordedVia,
		&c.Notes,
		&c.CreatedAt,
		&c.MemberName,
	)
	return c, err
}

func (r *PostgresRepository) query(ctx context.Context, query string, args ...any) ([]*Contribution, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list contributions: %w", err)
	}
	defer rows.Close()

	contributions := []*Contribution{}
	for rows.Next() {
		c, err := scanContribution(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan contribution: %w", err)
		}
		contributions = append(contributions, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate contributions: %w", err)
	}
	return contributions, nil
}

// List retrieves every contribution
func (r *PostgresRepository) List(ctx context.Context) ([]*Contribution, error) {
	return r.query(ctx, selectContributions+` ORDER BY c.date DESC, m.name, c.id DESC`)
}

// ListByMember retrieves a member's contributions
func (r *PostgresRepository) ListByMember(ctx context.Context, memberID int64) ([]*Contribution, error) {
	return r.query(ctx, selectContributions+` WHERE c.member_id = $1 ORDER BY c.date DESC, c.id DESC`, memberID)
}

// ListByGroupMembers retrieves the contributions of a group's members
func (r *PostgresRepository) ListByGroupMembers(ctx context.Context, groupID int64) ([]*Contribution, error) {
	return r.query(ctx, selectContributions+` WHERE m.group_id = $1 ORDER BY c.date DESC, m.name, c.id DESC`, groupID)
}

// GetByID retrieves a contribution by its ID
func (r *PostgresRepository) GetByID(ctx context.Context, id int64) (*Contribution, error) {
	c, err := scanContribution(r.db.QueryRowContext(ctx, selectContributions+` WHERE c.id = $1`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get contribution: %w", err)
	}
	return c, nil
}

// Create inserts a new contribution
func (r *PostgresRepository) Create(ctx context.Context, in *Input) (*Contribution, error) {
	query := `
		WITH inserted AS (
			INSERT INTO contributions (group_id, member_id, amount, date, contribution_type, recorded_via, notes)
			VALUES ($1, $2, $3, $4, $5, $6, $7)
			RETURNING id, group_id, member_id, amount, date, contribution_type, recorded_via, notes, created_at
		)
		SELECT i.id, i.group_id, i.member_id, i.amount, i.date, i.contribution_type,
		       i.recorded_via, i.notes, i.created_at, m.name
		FROM inserted i
		JOIN members m ON m.id = i.member_id
	`

	c, err := scanContribution(r.db.QueryRowContext(ctx, query,
		in.GroupID, in.MemberID, in.Amount, in.Date, in.Type, in.RecordedVia, in.Notes))
	if err != nil {
		if mapped := mapConstraintError(err); mapped != nil {
			return nil, mapped
		}
		return nil, fmt.Errorf("failed to create contribution: %w", err)
	}
	return c, nil
}

// Update replaces the editable fields of a contribution
func (r *PostgresRepository) Update(ctx context.Context, id int64, in *Input) (*Contribution, error) {
	query := `
		WITH updated AS (
			UPDATE contributions
			SET group_id = $2,
			    member_id = $3,
			    amount = $4,
			    date = $5,
			    contribution_type = $6,
			    recorded_via = $7,
			    notes = $8
			WHERE id = $1
			RETURNING id, group_id, member_id, amount, date, contribution_type, recorded_via, notes, created_at
		)
		SELECT u.id, u.group_id, u.member_id, u.amount, u.date, u.contribution_type,
		       u.recorded_via, u.notes, u.created_at, m.name
		FROM updated u
		JOIN members m ON m.id = u.member_id
	`

	c, err := scanContribution(r.db.QueryRowContext(ctx, query,
		id, in.GroupID, in.MemberID, in.Amount, in.Date, in.Type, in.RecordedVia, in.Notes))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		if mapped := mapConstraintError(err); mapped != nil {
			return nil, mapped
		}
		return nil, fmt.Errorf("failed to update contribution: %w", err)
	}
	return c, nil
}

// Delete removes a contribution
func (r *PostgresRepository) Delete(ctx context.Context, id int64) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM contributions WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete contribution: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return ErrContributionNotFound
	}

	return nil
}

func mapConstraintError(err error) error {
	switch {
	case database.IsForeignKeyViolation(err, memberConstraint):
		return ErrReferencedMemberNotFound
	case database.IsForeignKeyViolation(err, groupConstraint):
		return ErrReferencedGroupNotFound
	}
	return nil
}
