package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shinjadong/careon-blog-ai/internal/catalog"
)

// defaultTouchRadius is the tap tolerance assigned when callers don't supply
// one.
const defaultTouchRadius = 20

const coordinateColumns = `id, profile_id, element_kind, element_name, element_description,
	x, y, confidence, validated, calibration_method, calibrated_by, calibrated_at,
	touch_radius, usage_count, success_count, fail_count, notes, created_at, updated_at, last_used_at`

func scanCoordinate(row interface{ Scan(...any) error }) (*CoordinateRecord, error) {
	var (
		c            CoordinateRecord
		kind         string
		method       string
		desc         sql.NullString
		calibratedBy sql.NullString
		calibratedAt sql.NullTime
		notes        sql.NullString
		lastUsed     sql.NullTime
	)
	err := row.Scan(
		&c.ID, &c.ProfileID, &kind, &c.Name, &desc,
		&c.X, &c.Y, &c.Confidence, &c.Validated, &method, &calibratedBy, &calibratedAt,
		&c.TouchRadius, &c.UsageCount, &c.SuccessCount, &c.FailCount,
		&notes, &c.CreatedAt, &c.UpdatedAt, &lastUsed,
	)
	if err != nil {
		return nil, err
	}
	c.Kind = catalog.ElementKind(kind)
	c.Method = CalibrationMethod(method)
	if desc.Valid {
		c.Description = desc.String
	}
	if calibratedBy.Valid {
		c.CalibratedBy = calibratedBy.String
	}
	if calibratedAt.Valid {
		t := calibratedAt.Time
		c.CalibratedAt = &t
	}
	if notes.Valid {
		c.Notes = notes.String
	}
	if lastUsed.Valid {
		t := lastUsed.Time
		c.LastUsedAt = &t
	}
	return &c, nil
}

// ListCoordinates returns all records for a profile, optionally filtered to a
// single element kind, ordered by element kind for stable output.
func (s *Store) ListCoordinates(ctx context.Context, profileID string, kind *catalog.ElementKind) ([]*CoordinateRecord, error) {
	query := `SELECT ` + coordinateColumns + ` FROM coordinate_configs WHERE profile_id = ?`
	args := []any{profileID}
	if kind != nil {
		query += ` AND element_kind = ?`
		args = append(args, kind.String())
	}
	query += ` ORDER BY element_kind`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list coordinates for %s: %w", profileID, err)
	}
	defer rows.Close()

	var records []*CoordinateRecord
	for rows.Next() {
		c, err := scanCoordinate(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan coordinate: %w", err)
		}
		records = append(records, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate coordinates: %w", err)
	}
	return records, nil
}

// GetCoordinate returns one record by id.
func (s *Store) GetCoordinate(ctx context.Context, id int64) (*CoordinateRecord, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+coordinateColumns+` FROM coordinate_configs WHERE id = ?`, id)
	c, err := scanCoordinate(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %d", ErrCoordinateNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load coordinate %d: %w", id, err)
	}
	return c, nil
}

// CreateCoordinate inserts a fresh record. A record already present for the
// same (profile, element kind) yields ErrDuplicateElement.
func (s *Store) CreateCoordinate(ctx context.Context, c *CoordinateRecord) (*CoordinateRecord, error) {
	if err := validateCoordinate(c.X, c.Y, c.Confidence, c.TouchRadius); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	res, err := s.db.ExecContext(ctx, `
		INSERT INTO coordinate_configs
			(profile_id, element_kind, element_name, element_description,
			 x, y, confidence, validated, calibration_method, calibrated_by, calibrated_at,
			 touch_radius, notes, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		c.ProfileID, c.Kind.String(), c.Name, nullString(c.Description),
		c.X, c.Y, c.Confidence, c.Validated, string(c.Method),
		nullString(c.CalibratedBy), nullTime(c.CalibratedAt),
		c.TouchRadius, nullString(c.Notes), now, now,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, fmt.Errorf("%w: %s/%s", ErrDuplicateElement, c.ProfileID, c.Kind)
		}
		return nil, fmt.Errorf("failed to create coordinate %s/%s: %w", c.ProfileID, c.Kind, err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("failed to read coordinate id: %w", err)
	}
	return s.GetCoordinate(ctx, id)
}

// Upsert overwrites the coordinate for (profile, element kind), or creates it
// when absent. Overwriting resets validated to false: the new point has not
// proven itself yet. This is the primitive the calibration workflow uses.
func (s *Store) Upsert(ctx context.Context, profileID string, kind catalog.ElementKind, x, y int, method CalibrationMethod, operator string) (*CoordinateRecord, error) {
	if err := validateCoordinate(x, y, confidenceFor(method), defaultTouchRadius); err != nil {
		return nil, err
	}
	elem, ok := catalog.ByKind(kind)
	if !ok {
		return nil, &ValidationError{Field: "element_kind", Reason: "not in catalog: " + kind.String()}
	}

	now := time.Now().UTC()
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO coordinate_configs
			(profile_id, element_kind, element_name, element_description,
			 x, y, confidence, validated, calibration_method, calibrated_by, calibrated_at,
			 touch_radius, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, 0, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (profile_id, element_kind) DO UPDATE SET
			x = excluded.x,
			y = excluded.y,
			confidence = excluded.confidence,
			validated = 0,
			calibration_method = excluded.calibration_method,
			calibrated_by = excluded.calibrated_by,
			calibrated_at = excluded.calibrated_at,
			updated_at = excluded.updated_at`,
		profileID, kind.String(), elem.Name, elem.HelpText,
		x, y, confidenceFor(method), string(method), nullString(operator), now,
		defaultTouchRadius, now, now,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to upsert coordinate %s/%s: %w", profileID, kind, err)
	}

	records, err := s.ListCoordinates(ctx, profileID, &kind)
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("%w: %s/%s", ErrCoordinateNotFound, profileID, kind)
	}
	return records[0], nil
}

// confidenceFor maps a calibration method to its fixed confidence. User
// clicks are trusted equally at 0.95; ratio-derived defaults sit at 0.5.
func confidenceFor(method CalibrationMethod) float64 {
	switch method {
	case MethodDefault:
		return catalog.DefaultConfidence
	default:
		return 0.95
	}
}

// CoordinateUpdate is a partial update; nil fields are left unchanged.
type CoordinateUpdate struct {
	X            *int
	Y            *int
	Confidence   *float64
	Validated    *bool
	Method       *CalibrationMethod
	CalibratedBy *string
	TouchRadius  *int
	Notes        *string
}

// UpdateCoordinate applies a partial update to one record by id.
func (s *Store) UpdateCoordinate(ctx context.Context, id int64, upd CoordinateUpdate) (*CoordinateRecord, error) {
	c, err := s.GetCoordinate(ctx, id)
	if err != nil {
		return nil, err
	}
	if upd.X != nil {
		c.X = *upd.X
	}
	if upd.Y != nil {
		c.Y = *upd.Y
	}
	if upd.Confidence != nil {
		c.Confidence = *upd.Confidence
	}
	if upd.Validated != nil {
		c.Validated = *upd.Validated
	}
	if upd.Method != nil {
		c.Method = *upd.Method
	}
	if upd.CalibratedBy != nil {
		c.CalibratedBy = *upd.CalibratedBy
	}
	if upd.TouchRadius != nil {
		c.TouchRadius = *upd.TouchRadius
	}
	if upd.Notes != nil {
		c.Notes = *upd.Notes
	}
	if err := validateCoordinate(c.X, c.Y, c.Confidence, c.TouchRadius); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	_, err = s.db.ExecContext(ctx, `
		UPDATE coordinate_configs
		SET x = ?, y = ?, confidence = ?, validated = ?, calibration_method = ?,
			calibrated_by = ?, touch_radius = ?, notes = ?, updated_at = ?
		WHERE id = ?`,
		c.X, c.Y, c.Confidence, c.Validated, string(c.Method),
		nullString(c.CalibratedBy), c.TouchRadius, nullString(c.Notes), now, id)
	if err != nil {
		return nil, fmt.Errorf("failed to update coordinate %d: %w", id, err)
	}
	c.UpdatedAt = now
	return c, nil
}

// RecordUsage increments the attempt counter and the success or fail counter
// and refreshes last_used_at. A success additionally marks the coordinate
// validated. Callers treat a failure here as a log-only event; it must never
// abort an in-flight automation step.
func (s *Store) RecordUsage(ctx context.Context, id int64, success bool) error {
	now := time.Now().UTC()
	var res sql.Result
	var err error
	if success {
		res, err = s.db.ExecContext(ctx, `
			UPDATE coordinate_configs
			SET usage_count = usage_count + 1, success_count = success_count + 1,
				validated = 1, last_used_at = ?
			WHERE id = ?`, now, id)
	} else {
		res, err = s.db.ExecContext(ctx, `
			UPDATE coordinate_configs
			SET usage_count = usage_count + 1, fail_count = fail_count + 1,
				last_used_at = ?
			WHERE id = ?`, now, id)
	}
	if err != nil {
		return fmt.Errorf("failed to record usage for coordinate %d: %w", id, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("%w: %d", ErrCoordinateNotFound, id)
	}
	return nil
}

// DeleteCoordinate removes one record by id.
func (s *Store) DeleteCoordinate(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM coordinate_configs WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete coordinate %d: %w", id, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("%w: %d", ErrCoordinateNotFound, id)
	}
	return nil
}

func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}

func nullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *t, Valid: true}
}
