package automation

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shinjadong/careon-blog-ai/internal/catalog"
	"github.com/shinjadong/careon-blog-ai/internal/database"
	"github.com/shinjadong/careon-blog-ai/internal/store"
)

type point struct{ x, y int }

// fakeDevice scripts device behavior per coordinate.
type fakeDevice struct {
	connectErrs int // fail this many Connect calls
	failTapsAt  map[point]int
	failAllAt   map[point]bool

	clipboard    string
	clipboardGet string

	taps     []point
	pastes   int
	connects int
}

func newFakeDevice() *fakeDevice {
	return &fakeDevice{
		failTapsAt: make(map[point]int),
		failAllAt:  make(map[point]bool),
	}
}

func (f *fakeDevice) Connect(ctx context.Context) error {
	f.connects++
	if f.connectErrs > 0 {
		f.connectErrs--
		return errors.New("device offline")
	}
	return nil
}

func (f *fakeDevice) Tap(ctx context.Context, x, y int) error {
	p := point{x, y}
	f.taps = append(f.taps, p)
	if f.failAllAt[p] {
		return errors.New("tap did not register")
	}
	if f.failTapsAt[p] > 0 {
		f.failTapsAt[p]--
		return errors.New("tap did not register")
	}
	return nil
}

func (f *fakeDevice) SetClipboard(ctx context.Context, text string) error {
	f.clipboard = text
	return nil
}

func (f *fakeDevice) GetClipboard(ctx context.Context) (string, error) {
	return f.clipboardGet, nil
}

func (f *fakeDevice) Paste(ctx context.Context) error {
	f.pastes++
	return nil
}

func (f *fakeDevice) tapCount(p point) int {
	n := 0
	for _, t := range f.taps {
		if t == p {
			n++
		}
	}
	return n
}

func setupExecutor(t *testing.T, device DeviceController, maxRetries int) (*Executor, *store.Store, *store.DeviceProfile) {
	t.Helper()
	db, err := database.OpenInMemory()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	st := store.New(db.DB)
	profile := &store.DeviceProfile{
		ProfileID:     "SM-S921N_1080x2340_feed5678",
		Model:         "SM-S921N",
		Width:         1080,
		Height:        2340,
		DeviceSerials: []string{"unit-1"},
	}
	require.NoError(t, st.CreateProfileSeeded(context.Background(), profile, catalog.DefaultCoordinates(1080, 2340)))

	exec := NewExecutor(device, st, profile, maxRetries)
	exec.sleep = func(time.Duration) {}
	return exec, st, profile
}

// coordOf reads the stored point for an element so the fake can key on it.
func coordOf(t *testing.T, st *store.Store, profileID string, kind catalog.ElementKind) point {
	t.Helper()
	records, err := st.ListCoordinates(context.Background(), profileID, &kind)
	require.NoError(t, err)
	require.Len(t, records, 1)
	return point{records[0].X, records[0].Y}
}

func TestExecuteSuccess(t *testing.T) {
	device := newFakeDevice()
	device.clipboardGet = "https://blog.naver.com/tester/223000000001\n"
	exec, st, profile := setupExecutor(t, device, 3)

	result, err := exec.ExecuteWithRetry(context.Background(), "제목", "본문 내용", nil)
	require.NoError(t, err)
	assert.True(t, result.Success)
	assert.Equal(t, 9, result.StepsCompleted)
	assert.Equal(t, 9, result.TotalSteps)
	assert.Empty(t, result.FailedStep)
	assert.Equal(t, "https://blog.naver.com/tester/223000000001", result.BlogURL, "clipboard reads are trimmed")
	assert.Equal(t, 1, device.connects)
	assert.Equal(t, 2, device.pastes, "title and content both paste")
	assert.Equal(t, "본문 내용", device.clipboard, "content is the last clipboard write")

	// real use validates the tapped coordinates
	p := coordOf(t, st, profile.ProfileID, catalog.KindMainPlusButton)
	assert.Equal(t, 1, device.tapCount(p))
	kind := catalog.KindPublishButton
	records, err := st.ListCoordinates(context.Background(), profile.ProfileID, &kind)
	require.NoError(t, err)
	assert.True(t, records[0].Validated)
	assert.Equal(t, 1, records[0].SuccessCount)
}

func TestMissingCoordinateFailsBeforeAnyTap(t *testing.T) {
	device := newFakeDevice()
	exec, st, profile := setupExecutor(t, device, 3)

	kind := catalog.KindPublishButton
	records, err := st.ListCoordinates(context.Background(), profile.ProfileID, &kind)
	require.NoError(t, err)
	require.NoError(t, st.DeleteCoordinate(context.Background(), records[0].ID))

	result, err := exec.ExecuteWithRetry(context.Background(), "t", "c", nil)
	assert.Nil(t, result)

	var missing *MissingCoordinateError
	require.ErrorAs(t, err, &missing)
	assert.Equal(t, catalog.KindPublishButton, missing.Kind)
	assert.Empty(t, device.taps, "pre-flight failure must not touch the device")
	assert.Zero(t, device.connects)
}

func TestOptionalElementsNotRequiredForPreflight(t *testing.T) {
	device := newFakeDevice()
	device.clipboardGet = "https://blog.naver.com/t/1"
	exec, st, profile := setupExecutor(t, device, 3)

	// image and link buttons are optional and never part of the sequence
	for _, kind := range []catalog.ElementKind{catalog.KindImageButton, catalog.KindLinkButton} {
		k := kind
		records, err := st.ListCoordinates(context.Background(), profile.ProfileID, &k)
		require.NoError(t, err)
		require.NoError(t, st.DeleteCoordinate(context.Background(), records[0].ID))
	}

	result, err := exec.ExecuteWithRetry(context.Background(), "t", "c", nil)
	require.NoError(t, err)
	assert.True(t, result.Success)
}

func TestConnectFailureExhaustsRetries(t *testing.T) {
	device := newFakeDevice()
	device.connectErrs = 100
	exec, _, _ := setupExecutor(t, device, 3)

	result, err := exec.ExecuteWithRetry(context.Background(), "t", "c", nil)

	var exhausted *RetryExhaustedError
	require.ErrorAs(t, err, &exhausted)
	assert.Equal(t, 3, exhausted.Attempts)
	require.NotNil(t, result)
	assert.False(t, result.Success)
	assert.Contains(t, result.ErrorMessage, "failed to connect to device")
	assert.Equal(t, 0, result.StepsCompleted)
	assert.Equal(t, 3, device.connects, "one connect per attempt")
	assert.Empty(t, device.taps)
}

func TestHardStepFailureRetriesWholeSequence(t *testing.T) {
	device := newFakeDevice()
	exec, st, profile := setupExecutor(t, device, 3)

	first := coordOf(t, st, profile.ProfileID, catalog.KindMainPlusButton)
	device.failAllAt[first] = true

	var backoffs []time.Duration
	exec.sleep = func(d time.Duration) { backoffs = append(backoffs, d) }

	result, err := exec.ExecuteWithRetry(context.Background(), "t", "c", nil)

	var exhausted *RetryExhaustedError
	require.ErrorAs(t, err, &exhausted)
	require.NotNil(t, result)
	assert.False(t, result.Success)
	assert.Equal(t, "main_plus_button", result.FailedStep)
	assert.Equal(t, 0, result.StepsCompleted)
	assert.Contains(t, result.ErrorMessage, "main_plus_button")

	assert.Equal(t, 3, device.tapCount(first), "every attempt restarts at step 1")
	assert.Equal(t, []time.Duration{retryBackoff, retryBackoff}, backoffs,
		"backoff between attempts, none after the last")

	// failed taps are counted against the coordinate
	kind := catalog.KindMainPlusButton
	records, err := st.ListCoordinates(context.Background(), profile.ProfileID, &kind)
	require.NoError(t, err)
	assert.Equal(t, 3, records[0].FailCount)
	assert.False(t, records[0].Validated)
}

func TestTransientFailureRecoversOnRetry(t *testing.T) {
	device := newFakeDevice()
	device.clipboardGet = "https://blog.naver.com/t/2"
	exec, st, profile := setupExecutor(t, device, 3)

	first := coordOf(t, st, profile.ProfileID, catalog.KindMainPlusButton)
	device.failTapsAt[first] = 1

	result, err := exec.ExecuteWithRetry(context.Background(), "t", "c", nil)
	require.NoError(t, err)
	assert.True(t, result.Success)
	assert.Equal(t, 9, result.StepsCompleted)
	assert.Equal(t, 2, device.tapCount(first))
}

func TestSoftStepFailureTolerated(t *testing.T) {
	device := newFakeDevice()
	device.clipboardGet = "https://blog.naver.com/t/3"
	exec, st, profile := setupExecutor(t, device, 3)

	confirm := coordOf(t, st, profile.ProfileID, catalog.KindConfirmButton)
	device.failAllAt[confirm] = true

	result, err := exec.ExecuteWithRetry(context.Background(), "t", "c", nil)
	require.NoError(t, err)
	assert.True(t, result.Success, "optional dialog steps must not fail the run")
	assert.Equal(t, 9, result.StepsCompleted)
	assert.Equal(t, 1, device.connects, "no retry was needed")
}

func TestSoftCopyURLFailureLeavesEmptyURL(t *testing.T) {
	device := newFakeDevice()
	device.clipboardGet = "whatever"
	exec, st, profile := setupExecutor(t, device, 3)

	copyURL := coordOf(t, st, profile.ProfileID, catalog.KindCopyURLButton)
	device.failAllAt[copyURL] = true

	result, err := exec.ExecuteWithRetry(context.Background(), "t", "c", nil)
	require.NoError(t, err)
	assert.True(t, result.Success)
	assert.Empty(t, result.BlogURL, "a failed copy leaves the URL unknown")
}

func TestResumeFromStepStrategy(t *testing.T) {
	device := newFakeDevice()
	device.clipboardGet = "https://blog.naver.com/t/4"
	exec, st, profile := setupExecutor(t, device, 3)
	exec.SetStrategy(ResumeFromStep{})

	content := coordOf(t, st, profile.ProfileID, catalog.KindContentField)
	first := coordOf(t, st, profile.ProfileID, catalog.KindMainPlusButton)
	device.failTapsAt[content] = 1

	result, err := exec.ExecuteWithRetry(context.Background(), "t", "c", nil)
	require.NoError(t, err)
	assert.True(t, result.Success)
	assert.Equal(t, 9, result.StepsCompleted)
	assert.Equal(t, 1, device.tapCount(first), "earlier steps are not replayed")
	assert.Equal(t, 2, device.tapCount(content))
}

func TestExecuteSingleAttempt(t *testing.T) {
	device := newFakeDevice()
	exec, st, profile := setupExecutor(t, device, 3)

	first := coordOf(t, st, profile.ProfileID, catalog.KindMainPlusButton)
	device.failAllAt[first] = true

	result, err := exec.Execute(context.Background(), "t", "c", nil)
	require.NoError(t, err, "execution failures are reported in-band")
	assert.False(t, result.Success)
	assert.Equal(t, "main_plus_button", result.FailedStep)
	assert.Equal(t, 1, device.tapCount(first), "Execute never retries")
}

func TestRetryStrategies(t *testing.T) {
	assert.Equal(t, 0, RestartAll{}.NextStart(5))
	assert.Equal(t, 0, RestartAll{}.NextStart(-1))
	assert.Equal(t, 5, ResumeFromStep{}.NextStart(5))
	assert.Equal(t, 0, ResumeFromStep{}.NextStart(-1))
}
