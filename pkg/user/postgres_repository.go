package user

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/fluxpbx/adminapi/pkg/permission"
)

// PostgresRepository implements Repository using PostgreSQL. Every record
// kind maps to one table; SaveChangeSet runs inside a single transaction.
type PostgresRepository struct {
	pool    *pgxpool.Pool
	checker permission.Checker
}

// NewPostgresRepository creates a new PostgreSQL-based user repository
func NewPostgresRepository(pool *pgxpool.Pool, checker permission.Checker) *PostgresRepository {
	return &PostgresRepository{
		pool:    pool,
		checker: checker,
	}
}

// CountByUsername counts users with the username across all tenants
func (r *PostgresRepository) CountByUsername(ctx context.Context, username string) (int64, error) {
	var count int64
	err := r.pool.QueryRow(ctx,
		`SELECT count(*) FROM users WHERE username = $1`, username).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count users by username: %w", err)
	}
	return count, nil
}

// CountByUsernameInDomain counts users with the username inside one tenant
func (r *PostgresRepository) CountByUsernameInDomain(ctx context.Context, username string, domainID uuid.UUID) (int64, error) {
	var count int64
	err := r.pool.QueryRow(ctx,
		`SELECT count(*) FROM users WHERE username = $1 AND domain_uuid = $2`, username, domainID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count users by username in domain: %w", err)
	}
	return count, nil
}

// CountByDomain counts all users inside one tenant
func (r *PostgresRepository) CountByDomain(ctx context.Context, domainID uuid.UUID) (int64, error) {
	var count int64
	err := r.pool.QueryRow(ctx,
		`SELECT count(*) FROM users WHERE domain_uuid = $1`, domainID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count users in domain: %w", err)
	}
	return count, nil
}

// SaveChangeSet applies the change set inside one transaction, checking the
// write capability for each record before inserting it
func (r *PostgresRepository) SaveChangeSet(ctx context.Context, cs ChangeSet) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	for _, rec := range cs.Records {
		if !r.checker.Exists(ctx, rec.Capability()) {
			return fmt.Errorf("%w: %s for %s", ErrCapabilityRequired, rec.Capability(), rec.Kind())
		}
		if err := insertRecord(ctx, tx, rec); err != nil {
			return err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit change set: %w", err)
	}
	return nil
}

func insertRecord(ctx context.Context, tx pgx.Tx, rec Record) error {
	var err error
	switch v := rec.(type) {
	case UserSettingRecord:
		_, err = tx.Exec(ctx, `
			INSERT INTO user_settings (
				user_setting_uuid, user_uuid, domain_uuid,
				setting_category, setting_subcategory, setting_name,
				setting_value, setting_enabled)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
			v.ID, v.UserID, v.DomainID, v.Category, v.Subcategory, v.Name, v.Value, v.Enabled)
	case UserGroupRecord:
		_, err = tx.Exec(ctx, `
			INSERT INTO user_groups (user_group_uuid, domain_uuid, group_uuid, group_name, user_uuid)
			VALUES ($1, $2, $3, $4, $5)`,
			v.ID, v.DomainID, v.GroupID, v.GroupName, v.UserID)
	case ContactRecord:
		_, err = tx.Exec(ctx, `
			INSERT INTO contacts (
				contact_uuid, domain_uuid, contact_type,
				contact_organization, contact_name_given, contact_name_family, contact_nickname)
			VALUES ($1, $2, $3, $4, $5, $6, $7)`,
			v.ID, v.DomainID, v.Type, v.Organization, v.NameGiven, v.NameFamily, v.Nickname)
	case ContactEmailRecord:
		_, err = tx.Exec(ctx, `
			INSERT INTO contact_emails (contact_email_uuid, domain_uuid, contact_uuid, email_address, email_primary)
			VALUES ($1, $2, $3, $4, $5)`,
			v.ID, v.DomainID, v.ContactID, v.Address, v.Primary)
	case UserRecord:
		_, err = tx.Exec(ctx, `
			INSERT INTO users (
				user_uuid, domain_uuid, username, password, salt,
				user_email, user_status, user_type, user_enabled,
				contact_uuid, add_user, add_date)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`,
			v.ID, v.DomainID, v.Username, v.PasswordHash, v.Salt,
			v.Email, v.Status, v.Type, v.Enabled, v.ContactID, v.AddUser, v.AddDate)
	default:
		err = fmt.Errorf("unknown record kind: %s", rec.Kind())
	}
	if err != nil {
		return fmt.Errorf("failed to insert %s record: %w", rec.Kind(), err)
	}
	return nil
}

// GetUser returns a persisted user row
func (r *PostgresRepository) GetUser(ctx context.Context, id uuid.UUID) (User, error) {
	const query = `
		SELECT user_uuid, domain_uuid, username, user_email,
			user_status, user_type, user_enabled, contact_uuid, add_user, add_date
		FROM users WHERE user_uuid = $1`

	var u User
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&u.ID, &u.DomainID, &u.Username, &u.Email,
		&u.Status, &u.Type, &u.Enabled, &u.ContactID, &u.AddUser, &u.AddDate)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return User{}, ErrUserNotFound
		}
		return User{}, fmt.Errorf("failed to get user: %w", err)
	}
	return u, nil
}
