package database

import (
	"context"
	"database/sql"
	"fmt"

	"teacher_referral_bot/internal/domain/teacher"
)

// Custom errors
var ErrTeacherNotFound = fmt.Errorf("teacher not found")

type PostgresTeacherRepository struct {
	db *sql.DB
}

func NewPostgresTeacherRepository(db *sql.DB) *PostgresTeacherRepository {
	return &PostgresTeacherRepository{db: db}
}

// Upsert creates or fully overwrites the profile keyed by account_id. The
// unique constraint on account_id guarantees at most one profile per account
// even when two submissions race.
func (r *PostgresTeacherRepository) Upsert(ctx context.Context, t *teacher.Teacher) error {
	query := `INSERT INTO teachers
               (account_id, full_name, phone_number, region_id, district_id, address, school_name, tier, is_confirmed)
               VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
               ON CONFLICT (account_id) DO UPDATE SET
                   full_name = EXCLUDED.full_name,
                   phone_number = EXCLUDED.phone_number,
                   region_id = EXCLUDED.region_id,
                   district_id = EXCLUDED.district_id,
                   address = EXCLUDED.address,
                   school_name = EXCLUDED.school_name,
                   tier = EXCLUDED.tier,
                   is_confirmed = EXCLUDED.is_confirmed,
                   updated_at = NOW()
               RETURNING id, created_at, updated_at`

	err := r.db.QueryRowContext(ctx, query,
		t.AccountID, t.FullName, t.PhoneNumber, t.RegionID, t.DistrictID,
		t.Address, t.SchoolName, string(t.Tier), t.IsConfirmed,
	).Scan(&t.ID, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		return fmt.Errorf("error upserting teacher: %w", err)
	}
	return nil
}

func (r *PostgresTeacherRepository) GetByID(ctx context.Context, id int64) (*teacher.Teacher, error) {
	query := selectTeacher + ` WHERE id = $1`
	return r.scanOne(r.db.QueryRowContext(ctx, query, id))
}

func (r *PostgresTeacherRepository) GetByAccountID(ctx context.Context, accountID int64) (*teacher.Teacher, error) {
	query := selectTeacher + ` WHERE account_id = $1`
	return r.scanOne(r.db.QueryRowContext(ctx, query, accountID))
}

func (r *PostgresTeacherRepository) UpdateFullName(ctx context.Context, accountID int64, fullName string) error {
	return r.updateField(ctx, `full_name`, fullName, accountID)
}

func (r *PostgresTeacherRepository) UpdatePhoneNumber(ctx context.Context, accountID int64, phoneNumber string) error {
	return r.updateField(ctx, `phone_number`, phoneNumber, accountID)
}

func (r *PostgresTeacherRepository) UpdateSchoolName(ctx context.Context, accountID int64, schoolName string) error {
	return r.updateField(ctx, `school_name`, schoolName, accountID)
}

func (r *PostgresTeacherRepository) UpdateTier(ctx context.Context, accountID int64, tier teacher.Tier) error {
	return r.updateField(ctx, `tier`, string(tier), accountID)
}

func (r *PostgresTeacherRepository) UpdateLocation(ctx context.Context, accountID int64, regionID, districtID int64) error {
	query := `UPDATE teachers
               SET region_id = $1, district_id = $2, updated_at = NOW()
               WHERE account_id = $3`
	res, err := r.db.ExecContext(ctx, query, regionID, districtID, accountID)
	if err != nil {
		return fmt.Errorf("error updating teacher location: %w", err)
	}
	return requireRow(res)
}

func (r *PostgresTeacherRepository) SetConfirmed(ctx context.Context, id int64) error {
	query := `UPDATE teachers SET is_confirmed = TRUE, updated_at = NOW() WHERE id = $1`
	res, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("error confirming teacher: %w", err)
	}
	return requireRow(res)
}

func (r *PostgresTeacherRepository) Delete(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM teachers WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("error deleting teacher: %w", err)
	}
	return requireRow(res)
}

func (r *PostgresTeacherRepository) ListPending(ctx context.Context) ([]*teacher.Teacher, error) {
	query := selectTeacher + ` WHERE is_confirmed = FALSE ORDER BY created_at`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("error listing pending teachers: %w", err)
	}
	defer rows.Close()

	teachers := make([]*teacher.Teacher, 0)
	for rows.Next() {
		t := &teacher.Teacher{}
		if err := rows.Scan(&t.ID, &t.AccountID, &t.FullName, &t.PhoneNumber, &t.RegionID,
			&t.DistrictID, &t.Address, &t.SchoolName, &t.Tier, &t.IsConfirmed,
			&t.CreatedAt, &t.UpdatedAt); err != nil {
			return nil, fmt.Errorf("error scanning pending teacher: %w", err)
		}
		teachers = append(teachers, t)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating pending teachers: %w", err)
	}
	return teachers, nil
}

const selectTeacher = `SELECT id, account_id, full_name, phone_number, region_id, district_id,
               address, school_name, tier, is_confirmed, created_at, updated_at
               FROM teachers`

func (r *PostgresTeacherRepository) scanOne(row *sql.Row) (*teacher.Teacher, error) {
	t := &teacher.Teacher{}
	err := row.Scan(&t.ID, &t.AccountID, &t.FullName, &t.PhoneNumber, &t.RegionID,
		&t.DistrictID, &t.Address, &t.SchoolName, &t.Tier, &t.IsConfirmed,
		&t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrTeacherNotFound
		}
		return nil, fmt.Errorf("error getting teacher: %w", err)
	}
	return t, nil
}

func (r *PostgresTeacherRepository) updateField(ctx context.Context, column, value string, accountID int64) error {
	// column is always one of the fixed names above, never user input.
	query := fmt.Sprintf(`UPDATE teachers SET %s = $1, updated_at = NOW() WHERE account_id = $2`, column)
	res, err := r.db.ExecContext(ctx, query, value, accountID)
	if err != nil {
		return fmt.Errorf("error updating teacher %s: %w", column, err)
	}
	return requireRow(res)
}

func requireRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("error checking affected rows: %w", err)
	}
	if n == 0 {
		return ErrTeacherNotFound
	}
	return nil
}
