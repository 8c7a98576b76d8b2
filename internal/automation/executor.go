// Package automation replays the fixed blog-posting sequence against a
// profile's stored coordinates, driving the device through a DeviceController.
package automation

import (
	"context"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/shinjadong/careon-blog-ai/internal/catalog"
	"github.com/shinjadong/careon-blog-ai/internal/logger"
	"github.com/shinjadong/careon-blog-ai/internal/store"
)

// Settle delays give the app UI time to finish its transition before the
// next interaction. Menu opens and publish round-trips need more room than
// plain taps; values are tuned against the Naver Blog app.
const (
	settleMainPlus  = 1000 * time.Millisecond
	settleWriteMenu = 1500 * time.Millisecond
	settleFieldTap  = 500 * time.Millisecond
	settleClipboard = 300 * time.Millisecond
	settlePaste     = 500 * time.Millisecond
	settleTextSize  = 800 * time.Millisecond
	settlePublish   = 2000 * time.Millisecond
	settleConfirm   = 2000 * time.Millisecond
	settleShare     = 1000 * time.Millisecond
	settleCopyURL   = 1000 * time.Millisecond
	settleClipRead  = 500 * time.Millisecond

	// retryBackoff separates whole-sequence attempts.
	retryBackoff = 3 * time.Second

	totalSteps = 9
)

// DefaultMaxRetries is the attempt count when callers don't configure one.
const DefaultMaxRetries = 3

// Executor runs the posting sequence for one profile/device pair. It reads
// coordinates once per call and only writes usage statistics back, so
// executors for different devices can run concurrently.
type Executor struct {
	device     DeviceController
	store      *store.Store
	profile    *store.DeviceProfile
	maxRetries int
	strategy   RetryStrategy

	// sleep is swapped out by tests.
	sleep func(time.Duration)
	log   zerolog.Logger

	coords map[catalog.ElementKind]*store.CoordinateRecord
}

// NewExecutor creates an executor. maxRetries < 1 falls back to
// DefaultMaxRetries. The retry policy defaults to RestartAll.
func NewExecutor(device DeviceController, st *store.Store, profile *store.DeviceProfile, maxRetries int) *Executor {
	if maxRetries < 1 {
		maxRetries = DefaultMaxRetries
	}
	return &Executor{
		device:     device,
		store:      st,
		profile:    profile,
		maxRetries: maxRetries,
		strategy:   RestartAll{},
		sleep:      time.Sleep,
		log:        logger.With("automation"),
	}
}

// SetStrategy replaces the retry policy.
func (e *Executor) SetStrategy(s RetryStrategy) {
	if s != nil {
		e.strategy = s
	}
}

// postStep is one entry of the declarative posting sequence. Hard steps abort
// the attempt on failure; soft steps log and count as completed anyway.
type postStep struct {
	id    string
	hard  bool
	kinds []catalog.ElementKind
	run   func(ctx context.Context, result *PostingResult) error
}

func (e *Executor) sequence(title, content string) []postStep {
	return []postStep{
		{
			id:    "main_plus_button",
			hard:  true,
			kinds: []catalog.ElementKind{catalog.KindMainPlusButton},
			run: func(ctx context.Context, _ *PostingResult) error {
				return e.tapElement(ctx, catalog.KindMainPlusButton, settleMainPlus)
			},
		},
		{
			id:    "write_menu_blog",
			hard:  true,
			kinds: []catalog.ElementKind{catalog.KindWriteMenuBlog},
			run: func(ctx context.Context, _ *PostingResult) error {
				return e.tapElement(ctx, catalog.KindWriteMenuBlog, settleWriteMenu)
			},
		},
		{
			id:    "title_input",
			hard:  true,
			kinds: []catalog.ElementKind{catalog.KindTitleField},
			run: func(ctx context.Context, _ *PostingResult) error {
				return e.injectText(ctx, catalog.KindTitleField, title)
			},
		},
		{
			id:    "content_input",
			hard:  true,
			kinds: []catalog.ElementKind{catalog.KindContentField},
			run: func(ctx context.Context, _ *PostingResult) error {
				return e.injectText(ctx, catalog.KindContentField, content)
			},
		},
		{
			id:    "text_size",
			hard:  false,
			kinds: []catalog.ElementKind{catalog.KindTextSizeButton, catalog.KindTextSizeSmallest},
			run: func(ctx context.Context, _ *PostingResult) error {
				if err := e.tapElement(ctx, catalog.KindTextSizeButton, settleTextSize); err != nil {
					return err
				}
				return e.tapElement(ctx, catalog.KindTextSizeSmallest, settleTextSize)
			},
		},
		{
			id:    "publish",
			hard:  true,
			kinds: []catalog.ElementKind{catalog.KindPublishButton},
			run: func(ctx context.Context, _ *PostingResult) error {
				return e.tapElement(ctx, catalog.KindPublishButton, settlePublish)
			},
		},
		{
			id:    "confirm",
			hard:  false,
			kinds: []catalog.ElementKind{catalog.KindConfirmButton},
			run: func(ctx context.Context, _ *PostingResult) error {
				return e.tapElement(ctx, catalog.KindConfirmButton, settleConfirm)
			},
		},
		{
			id:    "share",
			hard:  false,
			kinds: []catalog.ElementKind{catalog.KindShareButton},
			run: func(ctx context.Context, _ *PostingResult) error {
				return e.tapElement(ctx, catalog.KindShareButton, settleShare)
			},
		},
		{
			id:    "copy_url",
			hard:  false,
			kinds: []catalog.ElementKind{catalog.KindCopyURLButton},
			run: func(ctx context.Context, result *PostingResult) error {
				if err := e.tapElement(ctx, catalog.KindCopyURLButton, settleCopyURL); err != nil {
					return err
				}
				e.sleep(settleClipRead)
				url, err := e.device.GetClipboard(ctx)
				if err != nil {
					return err
				}
				result.BlogURL = strings.TrimSpace(url)
				return nil
			},
		},
	}
}

// loadCoordinates reads the profile's coordinate set into a lookup map.
func (e *Executor) loadCoordinates(ctx context.Context) error {
	records, err := e.store.ListCoordinates(ctx, e.profile.ProfileID, nil)
	if err != nil {
		return err
	}
	e.coords = make(map[catalog.ElementKind]*store.CoordinateRecord, len(records))
	for _, r := range records {
		e.coords[r.Kind] = r
	}
	e.log.Debug().
		Int("count", len(e.coords)).
		Str("profile_id", e.profile.ProfileID).
		Msg("loaded coordinates")
	return nil
}

// preflight verifies that every catalog-required element the sequence touches
// has a coordinate, before any tap is sent.
func (e *Executor) preflight(steps []postStep) error {
	for _, st := range steps {
		for _, kind := range st.kinds {
			elem, ok := catalog.ByKind(kind)
			if !ok || !elem.Required {
				continue
			}
			if _, ok := e.coords[kind]; !ok {
				return &MissingCoordinateError{ProfileID: e.profile.ProfileID, Kind: kind}
			}
		}
	}
	return nil
}

// tapElement taps one element's stored coordinate and waits the settle delay.
// Usage statistics are recorded as a side channel; their write errors are
// logged and swallowed so they can never fail the step.
func (e *Executor) tapElement(ctx context.Context, kind catalog.ElementKind, settle time.Duration) error {
	coord, ok := e.coords[kind]
	if !ok {
		return &MissingCoordinateError{ProfileID: e.profile.ProfileID, Kind: kind}
	}

	err := e.device.Tap(ctx, coord.X, coord.Y)
	if usageErr := e.store.RecordUsage(ctx, coord.ID, err == nil); usageErr != nil {
		e.log.Warn().Err(usageErr).Str("element", kind.String()).Msg("failed to record coordinate usage")
	}
	if err != nil {
		return err
	}

	e.log.Debug().
		Str("element", kind.String()).
		Int("x", coord.X).
		Int("y", coord.Y).
		Msg("tapped element")
	e.sleep(settle)
	return nil
}

// injectText focuses a field and pastes text through the device clipboard.
// The clipboard path carries Korean and other non-ASCII scripts that direct
// key injection drops.
func (e *Executor) injectText(ctx context.Context, kind catalog.ElementKind, text string) error {
	if err := e.tapElement(ctx, kind, settleFieldTap); err != nil {
		return err
	}
	if err := e.device.SetClipboard(ctx, text); err != nil {
		return err
	}
	e.sleep(settleClipboard)
	if err := e.device.Paste(ctx); err != nil {
		return err
	}
	e.sleep(settlePaste)
	return nil
}

// Execute runs a single posting attempt. The returned result reports failure
// in-band; the error return is reserved for pre-flight problems
// (MissingCoordinateError, storage errors) raised before any device
// interaction.
func (e *Executor) Execute(ctx context.Context, title, content string, images []string) (*PostingResult, error) {
	steps := e.sequence(title, content)
	if err := e.loadCoordinates(ctx); err != nil {
		return nil, err
	}
	if err := e.preflight(steps); err != nil {
		return nil, err
	}
	result, _ := e.runAttempt(ctx, steps, 0)
	return result, nil
}

// ExecuteWithRetry runs the sequence up to maxRetries times, sleeping the
// fixed backoff between attempts. Where the next attempt starts is up to the
// configured RetryStrategy; the default restarts from step 1. Returns the
// first successful result, or the last failed result wrapped in
// RetryExhaustedError.
func (e *Executor) ExecuteWithRetry(ctx context.Context, title, content string, images []string) (*PostingResult, error) {
	steps := e.sequence(title, content)
	if err := e.loadCoordinates(ctx); err != nil {
		return nil, err
	}
	if err := e.preflight(steps); err != nil {
		return nil, err
	}

	var last *PostingResult
	startIdx := 0
	for attempt := 1; attempt <= e.maxRetries; attempt++ {
		e.log.Info().
			Int("attempt", attempt).
			Int("max_retries", e.maxRetries).
			Str("profile_id", e.profile.ProfileID).
			Msg("posting attempt")

		result, failedIdx := e.runAttempt(ctx, steps, startIdx)
		if result.Success {
			e.log.Info().
				Str("blog_url", result.BlogURL).
				Float64("execution_seconds", result.ExecutionSeconds()).
				Msg("posting completed")
			return result, nil
		}

		e.log.Warn().
			Int("attempt", attempt).
			Str("failed_step", result.FailedStep).
			Int("steps_completed", result.StepsCompleted).
			Msg("posting attempt failed")

		last = result
		startIdx = e.strategy.NextStart(failedIdx)
		if attempt < e.maxRetries {
			e.sleep(retryBackoff)
		}
	}

	return last, &RetryExhaustedError{Attempts: e.maxRetries, Last: last}
}

// runAttempt executes the sequence once from startIdx. It returns the result
// and the index of the hard step that failed (-1 otherwise).
func (e *Executor) runAttempt(ctx context.Context, steps []postStep, startIdx int) (*PostingResult, int) {
	start := time.Now()
	result := &PostingResult{TotalSteps: totalSteps, StepsCompleted: startIdx}

	if err := e.device.Connect(ctx); err != nil {
		result.ErrorMessage = "failed to connect to device: " + err.Error()
		result.ExecutionTime = time.Since(start)
		return result, -1
	}

	for i := startIdx; i < len(steps); i++ {
		st := steps[i]
		if err := st.run(ctx, result); err != nil {
			if st.hard {
				e.log.Error().
					Err(err).
					Str("step", st.id).
					Msg("hard step failed, aborting attempt")
				result.FailedStep = st.id
				result.ErrorMessage = (&StepExecutionError{StepID: st.id, Err: err}).Error()
				result.ExecutionTime = time.Since(start)
				return result, i
			}
			e.log.Warn().
				Err(err).
				Str("step", st.id).
				Msg("soft step failed, continuing")
		}
		result.StepsCompleted++
	}

	result.Success = true
	result.ExecutionTime = time.Since(start)
	return result, -1
}
