// Package profile maps physical devices to calibration profiles. A profile
// covers every physical unit sharing a model and screen resolution, so one
// calibration pass serves the whole fleet of identical devices.
package profile

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
	"sync"

	"github.com/shinjadong/careon-blog-ai/internal/catalog"
	"github.com/shinjadong/careon-blog-ai/internal/logger"
	"github.com/shinjadong/careon-blog-ai/internal/store"
)

// DeviceInfo is the static identity of one physical unit, as read from the
// device itself.
type DeviceInfo struct {
	Serial       string `json:"device_id"`
	Model        string `json:"model"`
	Manufacturer string `json:"manufacturer"`
	OSVersion    string `json:"os_version"`
	Width        int    `json:"width"`
	Height       int    `json:"height"`
	DPI          int    `json:"dpi"`
}

// Registry resolves device identities to profiles and owns profile lifecycle.
type Registry struct {
	store *store.Store

	// mu serializes GetOrCreate so concurrent scans of the same unseen
	// device cannot race two inserts for one profile id.
	mu sync.Mutex
}

// NewRegistry creates a registry backed by the given store.
func NewRegistry(s *store.Store) *Registry {
	return &Registry{store: s}
}

// Identify derives the stable profile id for a device class. It is a pure
// function of (model, width, height): the model name is normalized
// (trimmed, inner whitespace collapsed) before hashing, serial and OS version
// never participate, so rescanning a known device always lands on the same
// profile.
//
// Format: {model}_{width}x{height}_{hash8}, spaces replaced by underscores.
func Identify(model string, width, height int) string {
	normalized := strings.Join(strings.Fields(strings.TrimSpace(model)), " ")
	base := fmt.Sprintf("%s_%dx%d", normalized, width, height)
	sum := sha256.Sum256([]byte(base))
	return strings.ReplaceAll(base, " ", "_") + "_" + hex.EncodeToString(sum[:])[:8]
}

// GetOrCreate looks up the profile for a scanned device. A known profile
// absorbs the device serial (no-op when already mapped) and refreshes
// last-used. An unseen model+resolution creates a profile seeded with the
// full default coordinate set; the seed and the insert commit together.
func (r *Registry) GetOrCreate(ctx context.Context, info DeviceInfo) (*store.DeviceProfile, error) {
	if info.Model == "" {
		return nil, &store.ValidationError{Field: "model", Reason: "must not be empty"}
	}
	if info.Width <= 0 || info.Height <= 0 {
		return nil, &store.ValidationError{Field: "resolution", Reason: "width and height must be positive"}
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	profileID := Identify(info.Model, info.Width, info.Height)
	log := logger.With("profile")

	existing, err := r.store.GetProfile(ctx, profileID)
	if err == nil {
		if !containsSerial(existing.DeviceSerials, info.Serial) && info.Serial != "" {
			serials := append(append([]string(nil), existing.DeviceSerials...), info.Serial)
			if err := r.store.SetProfileSerials(ctx, profileID, serials); err != nil {
				return nil, err
			}
			existing.DeviceSerials = serials
			log.Info().
				Str("profile_id", profileID).
				Str("serial", info.Serial).
				Msg("added device to existing profile")
		} else if err := r.store.TouchProfileUsed(ctx, profileID); err != nil {
			return nil, err
		}
		return existing, nil
	}

	p := &store.DeviceProfile{
		ProfileID:    profileID,
		Model:        info.Model,
		Manufacturer: info.Manufacturer,
		OSVersion:    info.OSVersion,
		Width:        info.Width,
		Height:       info.Height,
		DPI:          info.DPI,
	}
	if info.Serial != "" {
		p.DeviceSerials = []string{info.Serial}
	} else {
		p.DeviceSerials = []string{}
	}

	defaults := catalog.DefaultCoordinates(info.Width, info.Height)
	if err := r.store.CreateProfileSeeded(ctx, p, defaults); err != nil {
		return nil, err
	}
	log.Info().
		Str("profile_id", profileID).
		Int("seeded", len(defaults)).
		Msg("created new device profile")
	return p, nil
}

// Get returns a profile by id.
func (r *Registry) Get(ctx context.Context, profileID string) (*store.DeviceProfile, error) {
	return r.store.GetProfile(ctx, profileID)
}

// List returns a page of profiles and the total count.
func (r *Registry) List(ctx context.Context, offset, limit int) ([]*store.DeviceProfile, int, error) {
	return r.store.ListProfiles(ctx, offset, limit)
}

// Update mutates notes and calibration status.
func (r *Registry) Update(ctx context.Context, profileID string, upd store.ProfileUpdate) (*store.DeviceProfile, error) {
	return r.store.UpdateProfile(ctx, profileID, upd)
}

// Delete removes a profile and, cascading, all its coordinates.
func (r *Registry) Delete(ctx context.Context, profileID string) error {
	return r.store.DeleteProfile(ctx, profileID)
}

func containsSerial(serials []string, serial string) bool {
	for _, s := range serials {
		if s == serial {
			return true
		}
	}
	return false
}
