package store_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shinjadong/careon-blog-ai/internal/catalog"
	"github.com/shinjadong/careon-blog-ai/internal/database"
	"github.com/shinjadong/careon-blog-ai/internal/store"
)

func newTestStore(t *testing.T) *store.Store {
	t.Helper()
	db, err := database.OpenInMemory()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return store.New(db.DB)
}

func seedProfile(t *testing.T, s *store.Store, profileID string) *store.DeviceProfile {
	t.Helper()
	p := &store.DeviceProfile{
		ProfileID:     profileID,
		Model:         "SM-S921N",
		Manufacturer:  "samsung",
		OSVersion:     "14",
		Width:         1080,
		Height:        2340,
		DPI:           420,
		DeviceSerials: []string{"R3CX104V"},
	}
	require.NoError(t, s.CreateProfileSeeded(context.Background(), p, catalog.DefaultCoordinates(1080, 2340)))
	return p
}

func TestCreateProfileSeeded(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	seedProfile(t, s, "SM-S921N_1080x2340_abcd1234")

	p, err := s.GetProfile(ctx, "SM-S921N_1080x2340_abcd1234")
	require.NoError(t, err)
	assert.False(t, p.Calibrated)
	assert.Equal(t, []string{"R3CX104V"}, p.DeviceSerials)

	coords, err := s.ListCoordinates(ctx, p.ProfileID, nil)
	require.NoError(t, err)
	require.Len(t, coords, catalog.Size())
	for _, c := range coords {
		assert.Equal(t, catalog.DefaultConfidence, c.Confidence, "seed %s", c.Kind)
		assert.Equal(t, store.MethodDefault, c.Method, "seed %s", c.Kind)
		assert.False(t, c.Validated, "seed %s", c.Kind)
		assert.GreaterOrEqual(t, c.X, 0)
		assert.Less(t, c.X, p.Width)
		assert.GreaterOrEqual(t, c.Y, 0)
		assert.Less(t, c.Y, p.Height)
	}
}

func TestGetProfileNotFound(t *testing.T) {
	s := newTestStore(t)
	_, err := s.GetProfile(context.Background(), "nope")
	assert.ErrorIs(t, err, store.ErrProfileNotFound)
}

func TestListProfilesPaging(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	seedProfile(t, s, "profile_a")
	seedProfile(t, s, "profile_b")
	seedProfile(t, s, "profile_c")

	page, total, err := s.ListProfiles(ctx, 0, 2)
	require.NoError(t, err)
	assert.Equal(t, 3, total)
	assert.Len(t, page, 2)

	page, total, err = s.ListProfiles(ctx, 2, 2)
	require.NoError(t, err)
	assert.Equal(t, 3, total)
	assert.Len(t, page, 1)
}

func TestUpdateProfile(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	p := seedProfile(t, s, "profile_upd")

	calibrated := true
	confidence := 0.95
	notes := "fleet unit 3"
	updated, err := s.UpdateProfile(ctx, p.ProfileID, store.ProfileUpdate{
		Calibrated:            &calibrated,
		CalibrationConfidence: &confidence,
		Notes:                 &notes,
	})
	require.NoError(t, err)
	assert.True(t, updated.Calibrated)
	assert.Equal(t, 0.95, updated.CalibrationConfidence)
	assert.Equal(t, "fleet unit 3", updated.Notes)

	bad := 1.5
	_, err = s.UpdateProfile(ctx, p.ProfileID, store.ProfileUpdate{CalibrationConfidence: &bad})
	assert.True(t, store.IsValidation(err))
}

func TestDeleteProfileCascades(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	p := seedProfile(t, s, "profile_del")

	require.NoError(t, s.DeleteProfile(ctx, p.ProfileID))

	_, err := s.GetProfile(ctx, p.ProfileID)
	assert.ErrorIs(t, err, store.ErrProfileNotFound)

	coords, err := s.ListCoordinates(ctx, p.ProfileID, nil)
	require.NoError(t, err)
	assert.Empty(t, coords)

	assert.ErrorIs(t, s.DeleteProfile(ctx, p.ProfileID), store.ErrProfileNotFound)
}

func TestCreateCoordinateDuplicate(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	p := seedProfile(t, s, "profile_dup")

	// every catalog element is already seeded, so a fresh create collides
	_, err := s.CreateCoordinate(ctx, &store.CoordinateRecord{
		ProfileID:   p.ProfileID,
		Kind:        catalog.KindPublishButton,
		Name:        "publish",
		X:           100,
		Y:           200,
		Confidence:  0.9,
		Method:      store.MethodManualInput,
		TouchRadius: 20,
	})
	assert.ErrorIs(t, err, store.ErrDuplicateElement)
}

func TestCreateCoordinateValidation(t *testing.T) {
	s := newTestStore(t)
	_, err := s.CreateCoordinate(context.Background(), &store.CoordinateRecord{
		ProfileID:   "p",
		Kind:        catalog.KindPublishButton,
		Name:        "publish",
		X:           -1,
		Y:           200,
		Confidence:  0.9,
		TouchRadius: 20,
	})
	assert.True(t, store.IsValidation(err))

	_, err = s.CreateCoordinate(context.Background(), &store.CoordinateRecord{
		ProfileID:   "p",
		Kind:        catalog.KindPublishButton,
		Name:        "publish",
		X:           1,
		Y:           200,
		Confidence:  1.2,
		TouchRadius: 20,
	})
	assert.True(t, store.IsValidation(err))
}

func TestUpsertOverwritesInPlace(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	p := seedProfile(t, s, "profile_upsert")

	kind := catalog.KindTitleField
	first, err := s.Upsert(ctx, p.ProfileID, kind, 540, 350, store.MethodUserClick, "tester")
	require.NoError(t, err)
	assert.Equal(t, 540, first.X)
	assert.Equal(t, 350, first.Y)
	assert.Equal(t, 0.95, first.Confidence)
	assert.Equal(t, store.MethodUserClick, first.Method)
	assert.Equal(t, "tester", first.CalibratedBy)

	second, err := s.Upsert(ctx, p.ProfileID, kind, 541, 351, store.MethodUserClick, "tester")
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID, "upsert must overwrite, not insert")
	assert.Equal(t, 541, second.X)

	records, err := s.ListCoordinates(ctx, p.ProfileID, &kind)
	require.NoError(t, err)
	assert.Len(t, records, 1)
}

func TestUpsertResetsValidated(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	p := seedProfile(t, s, "profile_reval")

	kind := catalog.KindPublishButton
	rec, err := s.Upsert(ctx, p.ProfileID, kind, 900, 150, store.MethodUserClick, "tester")
	require.NoError(t, err)

	require.NoError(t, s.RecordUsage(ctx, rec.ID, true))
	used, err := s.GetCoordinate(ctx, rec.ID)
	require.NoError(t, err)
	assert.True(t, used.Validated)

	rec, err = s.Upsert(ctx, p.ProfileID, kind, 901, 151, store.MethodUserClick, "tester")
	require.NoError(t, err)
	assert.False(t, rec.Validated, "a recalibrated point has not proven itself")
}

func TestUpsertUnknownKind(t *testing.T) {
	s := newTestStore(t)
	p := seedProfile(t, s, "profile_badkind")
	_, err := s.Upsert(context.Background(), p.ProfileID, catalog.ElementKind("bogus"), 1, 1, store.MethodUserClick, "tester")
	assert.True(t, store.IsValidation(err))
}

func TestRecordUsage(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	p := seedProfile(t, s, "profile_usage")

	kind := catalog.KindMainPlusButton
	records, err := s.ListCoordinates(ctx, p.ProfileID, &kind)
	require.NoError(t, err)
	require.Len(t, records, 1)
	id := records[0].ID

	require.NoError(t, s.RecordUsage(ctx, id, true))
	require.NoError(t, s.RecordUsage(ctx, id, true))
	require.NoError(t, s.RecordUsage(ctx, id, false))

	c, err := s.GetCoordinate(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, 3, c.UsageCount)
	assert.Equal(t, 2, c.SuccessCount)
	assert.Equal(t, 1, c.FailCount)
	assert.True(t, c.Validated)
	assert.NotNil(t, c.LastUsedAt)
	assert.InDelta(t, 2.0/3.0, c.SuccessRate(), 1e-9)

	assert.ErrorIs(t, s.RecordUsage(ctx, 99999, true), store.ErrCoordinateNotFound)
}

func TestUpdateCoordinatePartial(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	p := seedProfile(t, s, "profile_patch")

	kind := catalog.KindShareButton
	records, err := s.ListCoordinates(ctx, p.ProfileID, &kind)
	require.NoError(t, err)
	require.Len(t, records, 1)
	orig := records[0]

	x := 333
	radius := 30
	updated, err := s.UpdateCoordinate(ctx, orig.ID, store.CoordinateUpdate{X: &x, TouchRadius: &radius})
	require.NoError(t, err)
	assert.Equal(t, 333, updated.X)
	assert.Equal(t, orig.Y, updated.Y, "unset fields stay put")
	assert.Equal(t, 30, updated.TouchRadius)
}

func TestDeleteCoordinate(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	p := seedProfile(t, s, "profile_coorddel")

	kind := catalog.KindLinkButton
	records, err := s.ListCoordinates(ctx, p.ProfileID, &kind)
	require.NoError(t, err)
	require.Len(t, records, 1)

	require.NoError(t, s.DeleteCoordinate(ctx, records[0].ID))
	_, err = s.GetCoordinate(ctx, records[0].ID)
	assert.ErrorIs(t, err, store.ErrCoordinateNotFound)
}

func TestSetProfileSerials(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	p := seedProfile(t, s, "profile_serials")

	serials := []string{"R3CX104V", "R3CX999Z"}
	require.NoError(t, s.SetProfileSerials(ctx, p.ProfileID, serials))

	got, err := s.GetProfile(ctx, p.ProfileID)
	require.NoError(t, err)
	assert.Equal(t, serials, got.DeviceSerials)
	assert.NotNil(t, got.LastUsedAt)

	assert.ErrorIs(t, s.SetProfileSerials(ctx, "nope", serials), store.ErrProfileNotFound)
}
