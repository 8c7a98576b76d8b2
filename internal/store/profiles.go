// Package store persists device profiles and coordinate records in SQLite.
// Each exported operation is its own transactional unit; multi-call flows on
// top of it are not atomic unless stated otherwise.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/shinjadong/careon-blog-ai/internal/catalog"
)

type Store struct {
	db *sql.DB
}

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

const profileColumns = `profile_id, model, manufacturer, os_version, width, height, dpi,
	device_serials, calibrated, calibration_confidence, notes, created_at, updated_at, last_used_at`

func scanProfile(row interface{ Scan(...any) error }) (*DeviceProfile, error) {
	var (
		p          DeviceProfile
		serialsRaw string
		notes      sql.NullString
		lastUsed   sql.NullTime
	)
	err := row.Scan(
		&p.ProfileID, &p.Model, &p.Manufacturer, &p.OSVersion,
		&p.Width, &p.Height, &p.DPI,
		&serialsRaw, &p.Calibrated, &p.CalibrationConfidence,
		&notes, &p.CreatedAt, &p.UpdatedAt, &lastUsed,
	)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(serialsRaw), &p.DeviceSerials); err != nil {
		return nil, fmt.Errorf("corrupt device_serials for %s: %w", p.ProfileID, err)
	}
	if notes.Valid {
		p.Notes = notes.String
	}
	if lastUsed.Valid {
		t := lastUsed.Time
		p.LastUsedAt = &t
	}
	return &p, nil
}

// CreateProfileSeeded inserts a new profile together with its full default
// coordinate set in one transaction, so no caller can observe a created but
// unseeded profile.
func (s *Store) CreateProfileSeeded(ctx context.Context, p *DeviceProfile, defaults []catalog.DefaultCoordinate) error {
	serials, err := json.Marshal(p.DeviceSerials)
	if err != nil {
		return fmt.Errorf("failed to encode device serials: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	now := time.Now().UTC()
	_, err = tx.ExecContext(ctx, `
		INSERT INTO device_profiles
			(profile_id, model, manufacturer, os_version, width, height, dpi,
			 device_serials, calibrated, calibration_confidence, notes, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		p.ProfileID, p.Model, p.Manufacturer, p.OSVersion, p.Width, p.Height, p.DPI,
		string(serials), p.Calibrated, p.CalibrationConfidence, nullString(p.Notes), now, now,
	)
	if err != nil {
		return fmt.Errorf("failed to insert profile %s: %w", p.ProfileID, err)
	}

	for _, d := range defaults {
		_, err = tx.ExecContext(ctx, `
			INSERT INTO coordinate_configs
				(profile_id, element_kind, element_name, element_description,
				 x, y, confidence, validated, calibration_method, touch_radius,
				 created_at, updated_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, 0, ?, ?, ?, ?)`,
			p.ProfileID, d.Kind.String(), d.Name, d.Description,
			d.X, d.Y, catalog.DefaultConfidence, string(MethodDefault), defaultTouchRadius,
			now, now,
		)
		if err != nil {
			return fmt.Errorf("failed to seed coordinate %s for %s: %w", d.Kind, p.ProfileID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit profile %s: %w", p.ProfileID, err)
	}
	p.CreatedAt = now
	p.UpdatedAt = now
	return nil
}

// GetProfile returns the profile with the given id.
func (s *Store) GetProfile(ctx context.Context, profileID string) (*DeviceProfile, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+profileColumns+` FROM device_profiles WHERE profile_id = ?`, profileID)
	p, err := scanProfile(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrProfileNotFound, profileID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load profile %s: %w", profileID, err)
	}
	return p, nil
}

// ListProfiles returns a page of profiles and the total count.
func (s *Store) ListProfiles(ctx context.Context, offset, limit int) ([]*DeviceProfile, int, error) {
	var total int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM device_profiles`).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count profiles: %w", err)
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT `+profileColumns+` FROM device_profiles ORDER BY created_at, profile_id LIMIT ? OFFSET ?`,
		limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list profiles: %w", err)
	}
	defer rows.Close()

	var profiles []*DeviceProfile
	for rows.Next() {
		p, err := scanProfile(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan profile: %w", err)
		}
		profiles = append(profiles, p)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("failed to iterate profiles: %w", err)
	}
	return profiles, total, nil
}

// ProfileUpdate is a partial update; nil fields are left unchanged.
type ProfileUpdate struct {
	Notes                 *string
	Calibrated            *bool
	CalibrationConfidence *float64
}

// UpdateProfile mutates notes/calibration status and returns the fresh row.
func (s *Store) UpdateProfile(ctx context.Context, profileID string, upd ProfileUpdate) (*DeviceProfile, error) {
	if upd.CalibrationConfidence != nil {
		c := *upd.CalibrationConfidence
		if c < 0 || c > 1 {
			return nil, &ValidationError{Field: "calibration_confidence", Reason: "must be in [0,1]"}
		}
	}

	p, err := s.GetProfile(ctx, profileID)
	if err != nil {
		return nil, err
	}
	if upd.Notes != nil {
		p.Notes = *upd.Notes
	}
	if upd.Calibrated != nil {
		p.Calibrated = *upd.Calibrated
	}
	if upd.CalibrationConfidence != nil {
		p.CalibrationConfidence = *upd.CalibrationConfidence
	}

	now := time.Now().UTC()
	_, err = s.db.ExecContext(ctx, `
		UPDATE device_profiles
		SET notes = ?, calibrated = ?, calibration_confidence = ?, updated_at = ?
		WHERE profile_id = ?`,
		nullString(p.Notes), p.Calibrated, p.CalibrationConfidence, now, profileID)
	if err != nil {
		return nil, fmt.Errorf("failed to update profile %s: %w", profileID, err)
	}
	p.UpdatedAt = now
	return p, nil
}

// SetProfileSerials replaces the serial set and touches last_used_at. Used by
// the registry when merging a newly seen physical unit into a profile.
func (s *Store) SetProfileSerials(ctx context.Context, profileID string, serials []string) error {
	raw, err := json.Marshal(serials)
	if err != nil {
		return fmt.Errorf("failed to encode device serials: %w", err)
	}
	now := time.Now().UTC()
	res, err := s.db.ExecContext(ctx, `
		UPDATE device_profiles
		SET device_serials = ?, updated_at = ?, last_used_at = ?
		WHERE profile_id = ?`,
		string(raw), now, now, profileID)
	if err != nil {
		return fmt.Errorf("failed to update serials for %s: %w", profileID, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("%w: %s", ErrProfileNotFound, profileID)
	}
	return nil
}

// TouchProfileUsed updates last_used_at.
func (s *Store) TouchProfileUsed(ctx context.Context, profileID string) error {
	now := time.Now().UTC()
	_, err := s.db.ExecContext(ctx,
		`UPDATE device_profiles SET last_used_at = ? WHERE profile_id = ?`, now, profileID)
	if err != nil {
		return fmt.Errorf("failed to touch profile %s: %w", profileID, err)
	}
	return nil
}

// DeleteProfile removes a profile; its coordinates go with it via the
// ON DELETE CASCADE foreign key.
func (s *Store) DeleteProfile(ctx context.Context, profileID string) error {
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM device_profiles WHERE profile_id = ?`, profileID)
	if err != nil {
		return fmt.Errorf("failed to delete profile %s: %w", profileID, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("%w: %s", ErrProfileNotFound, profileID)
	}
	return nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
