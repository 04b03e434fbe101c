package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	// Registers the "sqlite" driver (pure Go).
	_ "modernc.org/sqlite"

	"github.com/B3hnamR/P24-SlotHunter-sub000/internal/domain"
)

// SQLiteRepo implements Repo using an embedded SQLite database.
type SQLiteRepo struct{ db *sql.DB }

// OpenSQLite opens (or creates) the SQLite database at the given path,
// applies recommended PRAGMAs, runs SQL migrations, and returns a repository.
func OpenSQLite(ctx context.Context, path string) (*SQLiteRepo, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}

	// Single-writer engine; keep the pool at one connection.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if err := applyPragmas(ctx, db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("apply pragmas: %w", err)
	}
	if err := RunMigrations(ctx, db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migrations: %w", err)
	}

	return &SQLiteRepo{db: db}, nil
}

func applyPragmas(ctx context.Context, db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode=WAL;",
		"PRAGMA synchronous=NORMAL;",
		"PRAGMA busy_timeout=5000;",
		"PRAGMA foreign_keys=ON;",
	}
	for _, p := range pragmas {
		if _, err := db.ExecContext(ctx, p); err != nil {
			return err
		}
	}
	return nil
}

// Close releases the underlying database resources.
func (r *SQLiteRepo) Close() error { return r.db.Close() }

// SaveBundle upserts the doctor tree produced by one extraction. The doctor
// row is keyed by slug; centers and services are replaced wholesale since the
// extraction result is the authoritative snapshot. Non-functional bundles are
// stored inactive so polling never sees them.
func (r *SQLiteRepo) SaveBundle(ctx context.Context, b *domain.ProfileBundle) (*domain.Doctor, error) {
	if b == nil {
		return nil, errors.New("nil bundle")
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback() }()

	now := time.Now().UTC().Unix()
	active := boolToInt(!b.NonFunctional)

	_, err = tx.ExecContext(ctx, `
		INSERT INTO doctors (name, slug, provider_id, specialty, active, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(slug) DO UPDATE SET
			name        = excluded.name,
			provider_id = excluded.provider_id,
			specialty   = excluded.specialty,
			active      = excluded.active`,
		b.Doctor.Name, b.Doctor.Slug, b.Doctor.ProviderID, b.Doctor.Specialty, active, now,
	)
	if err != nil {
		return nil, err
	}

	var doctorID int64
	if err := tx.QueryRowContext(ctx, `SELECT id FROM doctors WHERE slug = ?`, b.Doctor.Slug).Scan(&doctorID); err != nil {
		return nil, err
	}

	if _, err := tx.ExecContext(ctx, `
		DELETE FROM services WHERE center_id IN (SELECT id FROM centers WHERE doctor_id = ?)`, doctorID); err != nil {
		return nil, err
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM centers WHERE doctor_id = ?`, doctorID); err != nil {
		return nil, err
	}

	for _, c := range b.Doctor.Centers {
		res, err := tx.ExecContext(ctx, `
			INSERT INTO centers (doctor_id, center_id, user_center_id, name, address, phone)
			VALUES (?, ?, ?, ?, ?, ?)`,
			doctorID, c.CenterID, c.UserCenterID, c.Name, c.Address, c.Phone,
		)
		if err != nil {
			return nil, err
		}
		centerRowID, err := res.LastInsertId()
		if err != nil {
			return nil, err
		}
		for _, s := range c.Services {
			if _, err := tx.ExecContext(ctx, `
				INSERT INTO services (center_id, service_id, name) VALUES (?, ?, ?)`,
				centerRowID, s.ServiceID, s.Name,
			); err != nil {
				return nil, err
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return r.GetDoctor(ctx, doctorID)
}

// ListActiveDoctors returns the active doctors with their full center/service
// trees, in catalog (insertion) order. This is the read-once-per-cycle
// snapshot the scheduler iterates.
func (r *SQLiteRepo) ListActiveDoctors(ctx context.Context) ([]domain.Doctor, error) {
	return r.listDoctors(ctx, `WHERE active = 1`)
}

// ListDoctors returns every doctor regardless of the active flag.
func (r *SQLiteRepo) ListDoctors(ctx context.Context) ([]domain.Doctor, error) {
	return r.listDoctors(ctx, ``)
}

func (r *SQLiteRepo) listDoctors(ctx context.Context, where string) ([]domain.Doctor, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, name, slug, provider_id, specialty, active, last_checked, created_at
		FROM doctors `+where+` ORDER BY id ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var res []domain.Doctor
	for rows.Next() {
		d, err := scanDoctor(rows)
		if err != nil {
			return nil, err
		}
		res = append(res, *d)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range res {
		if err := r.loadCenters(ctx, &res[i]); err != nil {
			return nil, err
		}
	}
	return res, nil
}

// GetDoctor returns a doctor with its center/service tree or an error if the
// id is unknown.
func (r *SQLiteRepo) GetDoctor(ctx context.Context, id int64) (*domain.Doctor, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, name, slug, provider_id, specialty, active, last_checked, created_at
		FROM doctors WHERE id = ?`, id)
	d, err := scanDoctor(row)
	if err != nil {
		return nil, err
	}
	if err := r.loadCenters(ctx, d); err != nil {
		return nil, err
	}
	return d, nil
}

type rowScanner interface{ Scan(dest ...any) error }

func scanDoctor(row rowScanner) (*domain.Doctor, error) {
	var (
		d         domain.Doctor
		activeInt int
		checkedNS sql.NullInt64
		createdAt int64
	)
	if err := row.Scan(&d.ID, &d.Name, &d.Slug, &d.ProviderID, &d.Specialty,
		&activeInt, &checkedNS, &createdAt); err != nil {
		return nil, err
	}
	d.Active = activeInt != 0
	d.LastChecked = fromNullInt64(checkedNS)
	d.CreatedAt = time.Unix(createdAt, 0).UTC()
	return &d, nil
}

func (r *SQLiteRepo) loadCenters(ctx context.Context, d *domain.Doctor) error {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, center_id, user_center_id, name, address, phone
		FROM centers WHERE doctor_id = ? ORDER BY id ASC`, d.ID)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var c domain.Center
		if err := rows.Scan(&c.ID, &c.CenterID, &c.UserCenterID, &c.Name, &c.Address, &c.Phone); err != nil {
			return err
		}
		c.DoctorID = d.ID
		d.Centers = append(d.Centers, c)
	}
	if err := rows.Err(); err != nil {
		return err
	}

	for i := range d.Centers {
		if err := r.loadServices(ctx, &d.Centers[i]); err != nil {
			return err
		}
	}
	return nil
}

func (r *SQLiteRepo) loadServices(ctx context.Context, c *domain.Center) error {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, service_id, name FROM services WHERE center_id = ? ORDER BY id ASC`, c.ID)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var s domain.Service
		if err := rows.Scan(&s.ID, &s.ServiceID, &s.Name); err != nil {
			return err
		}
		s.CenterID = c.ID
		c.Services = append(c.Services, s)
	}
	return rows.Err()
}

// SetDoctorActive flips a doctor's active flag; doctors are never deleted.
func (r *SQLiteRepo) SetDoctorActive(ctx context.Context, id int64, active bool) error {
	_, err := r.db.ExecContext(ctx, `UPDATE doctors SET active = ? WHERE id = ?`, boolToInt(active), id)
	return err
}

// TouchDoctorChecked records when a doctor was last polled.
func (r *SQLiteRepo) TouchDoctorChecked(ctx context.Context, id int64, at time.Time) error {
	_, err := r.db.ExecContext(ctx, `UPDATE doctors SET last_checked = ? WHERE id = ?`, at.UTC().Unix(), id)
	return err
}

// EnsureUser inserts a user row if missing and refreshes the display name.
func (r *SQLiteRepo) EnsureUser(ctx context.Context, u *domain.User) error {
	if u == nil {
		return errors.New("nil user")
	}
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO users (id, name, active, created_at) VALUES (?, ?, 1, ?)
		ON CONFLICT(id) DO UPDATE SET name = excluded.name`,
		u.ID, u.Name, time.Now().UTC().Unix(),
	)
	return err
}

// Subscribe activates the (user, doctor) subscription. At most one row ever
// exists per pair; resubscribing toggles it back on.
func (r *SQLiteRepo) Subscribe(ctx context.Context, userID, doctorID int64) error {
	now := time.Now().UTC().Unix()
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO subscriptions (user_id, doctor_id, active, created_at, updated_at)
		VALUES (?, ?, 1, ?, ?)
		ON CONFLICT(user_id, doctor_id) DO UPDATE SET
			active = 1, updated_at = excluded.updated_at`,
		userID, doctorID, now, now,
	)
	return err
}

// Unsubscribe deactivates the (user, doctor) subscription if present.
func (r *SQLiteRepo) Unsubscribe(ctx context.Context, userID, doctorID int64) error {
	return r.DeactivateSubscription(ctx, userID, doctorID)
}

// ListActiveSubscribers resolves the delivery targets for one doctor.
func (r *SQLiteRepo) ListActiveSubscribers(ctx context.Context, doctorID int64) ([]domain.Subscriber, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT u.id, u.name
		FROM subscriptions s
		JOIN users u ON u.id = s.user_id
		WHERE s.doctor_id = ? AND s.active = 1 AND u.active = 1
		ORDER BY u.id ASC`, doctorID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var res []domain.Subscriber
	for rows.Next() {
		var sub domain.Subscriber
		if err := rows.Scan(&sub.UserID, &sub.Name); err != nil {
			return nil, err
		}
		sub.ChatID = sub.UserID
		res = append(res, sub)
	}
	return res, rows.Err()
}

// DeactivateSubscription flips one subscription inactive. Called by the
// fan-out after a permanent delivery failure and by explicit unsubscribes.
func (r *SQLiteRepo) DeactivateSubscription(ctx context.Context, userID, doctorID int64) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE subscriptions SET active = 0, updated_at = ?
		WHERE user_id = ? AND doctor_id = ?`,
		time.Now().UTC().Unix(), userID, doctorID,
	)
	return err
}

// ListUserSubscriptions returns the doctors a user is actively subscribed to.
func (r *SQLiteRepo) ListUserSubscriptions(ctx context.Context, userID int64) ([]domain.Doctor, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT d.id, d.name, d.slug, d.provider_id, d.specialty, d.active, d.last_checked, d.created_at
		FROM subscriptions s
		JOIN doctors d ON d.id = s.doctor_id
		WHERE s.user_id = ? AND s.active = 1
		ORDER BY d.id ASC`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var res []domain.Doctor
	for rows.Next() {
		d, err := scanDoctor(rows)
		if err != nil {
			return nil, err
		}
		res = append(res, *d)
	}
	return res, rows.Err()
}

// AppendCycleRecord appends one audit row for a (doctor, cycle) pass.
func (r *SQLiteRepo) AppendCycleRecord(ctx context.Context, rec domain.AppointmentLog) error {
	created := rec.CreatedAt
	if created.IsZero() {
		created = time.Now().UTC()
	}
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO appointment_logs (doctor_id, slot_count, notified, first_slot, created_at)
		VALUES (?, ?, ?, ?, ?)`,
		rec.DoctorID, rec.SlotCount, rec.Notified, toNullInt64(rec.FirstSlot), created.Unix(),
	)
	return err
}

// RecentCycleRecords returns the newest audit rows for one doctor.
func (r *SQLiteRepo) RecentCycleRecords(ctx context.Context, doctorID int64, limit int) ([]domain.AppointmentLog, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, doctor_id, slot_count, notified, first_slot, created_at
		FROM appointment_logs
		WHERE doctor_id = ?
		ORDER BY created_at DESC LIMIT ?`, doctorID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var res []domain.AppointmentLog
	for rows.Next() {
		var (
			rec       domain.AppointmentLog
			firstNS   sql.NullInt64
			createdAt int64
		)
		if err := rows.Scan(&rec.ID, &rec.DoctorID, &rec.SlotCount, &rec.Notified, &firstNS, &createdAt); err != nil {
			return nil, err
		}
		rec.FirstSlot = fromNullInt64(firstNS)
		rec.CreatedAt = time.Unix(createdAt, 0).UTC()
		res = append(res, rec)
	}
	return res, rows.Err()
}
