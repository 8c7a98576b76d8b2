package automation

import "context"

// DeviceController is the narrow device-control capability the executor
// drives. The production implementation sits in internal/adb; tests use
// fakes.
type DeviceController interface {
	// Connect establishes (or verifies) the control channel.
	Connect(ctx context.Context) error
	Tap(ctx context.Context, x, y int) error
	SetClipboard(ctx context.Context, text string) error
	GetClipboard(ctx context.Context) (string, error)
	// Paste triggers the device's paste key event into the focused field.
	Paste(ctx context.Context) error
}
