package member

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/fkhayef/chama/internal/database"
)

const phoneConstraint = "members_phone_number_key"

// Repository handles member persistence. Lookups return (nil, nil) when the
// member does not exist. Create and Update return ErrPhoneNumberInUse or
// ErrReferencedGroupNotFound when the store rejects the write.
type Repository interface {
	List(ctx context.Context) ([]*Member, error)
	ListByGroup(ctx context.Context, groupID int64) ([]*Member, error)
	GetByID(ctx context.Context, id int64) (*Member, error)
	GetByPhoneNumber(ctx context.Context, phone string) (*Member, error)
	Create(ctx context.Context, in *Input) (*Member, error)
	Update(ctx context.Context, id int64, in *Input) (*Member, error)
	// Delete removes the member and its contributions atomically. Returns
	// ErrMemberNotFound when absent.
	Delete(ctx context.Context, id int64) error
}

// PostgresRepository is the Postgres implementation of Repository
type PostgresRepository struct {
	db *sql.DB
}

var _ Repository = (*PostgresRepository)(nil)

// NewPostgresRepository creates a new member repository
func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

const selectMembers = `
	SELECT m.id, m.group_id, m.name, m.phone_number, m.role, m.joined_at, g.name
	FROM members m
	JOIN groups g ON g.id = m.group_id
`

type scanner interface {
	Scan(dest ...any) error
}

func scanMember(row scanner) (*Member, error) {
	member := &Member{}
	err := row.Scan(
		&member.ID,
		&member.GroupID,
		&member.Name,
		&member.PhoneNumber,
		&member.Role,
		&member.JoinedAt,
		&member.GroupName,
	)
	return member, err
}

func (r *PostgresRepository) query(ctx context.Context, query string, args ...any) ([]*Member, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list members: %w", err)
	}
	defer rows.Close()

	members := []*Member{}
	for rows.Next() {
		member, err := scanMember(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan member: %w", err)
		}
		members = append(members, member)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate members: %w", err)
	}
	return members, nil
}

func (r *PostgresRepository) queryOne(ctx context.Context, query string, args ...any) (*Member, error) {
	member, err := scanMember(r.db.QueryRowContext(ctx, query, args...))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get member: %w", err)
	}
	return member, nil
}

// List retrieves every member ordered by group name, then member name
func (r *PostgresRepository) List(ctx context.Context) ([]*Member, error) {
	return r.query(ctx, selectMembers+` ORDER BY g.name, m.name, m.id`)
}

// ListByGroup retrieves the members of one group ordered by name
func (r *PostgresRepository) ListByGroup(ctx context.Context, groupID int64) ([]*Member, error) {
	return r.query(ctx, selectMembers+` WHERE m.group_id = $1 ORDER BY m.name, m.id`, groupID)
}

// GetByID retrieves a member by its ID
func (r *PostgresRepository) GetByID(ctx context.Context, id int64) (*Member, error) {
	return r.queryOne(ctx, selectMembers+` WHERE m.id = $1`, id)
}

// GetByPhoneNumber retrieves the member holding a phone number
func (r *PostgresRepository) GetByPhoneNumber(ctx context.Context, phone string) (*Member, error) {
	return r.queryOne(ctx, selectMembers+` WHERE m.phone_number = $1`, phone)
}

// Create inserts a new member
func (r *PostgresRepository) Create(ctx context.Context, in *Input) (*Member, error) {
	query := `
		WITH inserted AS (
			INSERT INTO members (group_id, name, phone_number, role)
			VALUES ($1, $2, $3, $4)
			RETURNING id, group_id, name, phone_number, role, joined_at
		)
		SELECT i.id, i.group_id, i.name, i.phone_number, i.role, i.joined_at, g.name
		FROM inserted i
		JOIN groups g ON g.id = i.group_id
	`

	member, err := scanMember(r.db.QueryRowContext(ctx, query, in.GroupID, in.Name, in.PhoneNumber, in.Role))
	if err != nil {
		if mapped := mapConstraintError(err); mapped != nil {
			return nil, mapped
		}
		return nil, fmt.Errorf("failed to create member: %w", err)
	}
	return member, nil
}

// Update replaces the editable fields of a member
func (r *PostgresRepository) Update(ctx context.Context, id int64, in *Input) (*Member, error) {
	query := `
		WITH updated AS (
			UPDATE members
			SET group_id = $2,
			    name = $3,
			    phone_number = $4,
			    role = $5
			WHERE id = $1
			RETURNING id, group_id, name, phone_number, role, joined_at
		)
		SELECT u.id, u.group_id, u.name, u.phone_number, u.role, u.joined_at, g.name
		FROM updated u
		JOIN groups g ON g.id = u.group_id
	`

	member, err := scanMember(r.db.QueryRowContext(ctx, query, id, in.GroupID, in.Name, in.PhoneNumber, in.Role))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		if mapped := mapConstraintError(err); mapped != nil {
			return nil, mapped
		}
		return nil, fmt.Errorf("failed to update member: %w", err)
	}
	return member, nil
}

// Delete removes a member and its contributions
func (r *PostgresRepository) Delete(ctx context.Context, id int64) error {
	return database.WithTx(ctx, r.db, func(tx *sql.Tx) error {
		var locked int64
		err := tx.QueryRowContext(ctx, `SELECT id FROM members WHERE id = $1 FOR UPDATE`, id).Scan(&locked)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return ErrMemberNotFound
			}
			return fmt.Errorf("failed to lock member: %w", err)
		}

		if _, err := tx.ExecContext(ctx, `DELETE FROM contributions WHERE member_id = $1`, id); err != nil {
			return fmt.Errorf("failed to delete member contributions: %w", err)
		}

		if _, err := tx.ExecContext(ctx, `DELETE FROM members WHERE id = $1`, id); err != nil {
			return fmt.Errorf("failed to delete member: %w", err)
		}

		return nil
	})
}

func mapConstraintError(err error) error {
	switch {
	case database.IsUniqueViolation(err, phoneConstraint):
		return ErrPhoneNumberInUse
	case database.IsForeignKeyViolation(err, ""):
		return ErrReferencedGroupNotFound
	}
	return nil
}
