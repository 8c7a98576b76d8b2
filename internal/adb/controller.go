// Package adb controls Android devices through the adb binary. It implements
// the automation DeviceController capability and exposes the extra device
// operations the device API needs (scan, static info, screenshot).
package adb

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/shinjadong/careon-blog-ai/internal/logger"
	"github.com/shinjadong/careon-blog-ai/internal/profile"
)

// keycodePaste is the Android KEYCODE_PASTE key event.
const keycodePaste = 279

// Controller drives one device over adb shell commands.
type Controller struct {
	adbPath string
	serial  string
	timeout time.Duration
	log     zerolog.Logger
}

// NewController creates a controller for the device with the given serial.
func NewController(adbPath, serial string, timeout time.Duration) *Controller {
	if adbPath == "" {
		adbPath = "adb"
	}
	return &Controller{
		adbPath: adbPath,
		serial:  serial,
		timeout: timeout,
		log:     logger.With("adb"),
	}
}

// Serial returns the device serial this controller targets.
func (c *Controller) Serial() string { return c.serial }

func (c *Controller) run(ctx context.Context, args ...string) (string, error) {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	full := append([]string{"-s", c.serial}, args...)
	cmd := exec.CommandContext(ctx, c.adbPath, full...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return "", fmt.Errorf("adb %s failed: %w (%s)",
			strings.Join(args, " "), err, strings.TrimSpace(stderr.String()))
	}
	return stdout.String(), nil
}

// Shell executes a shell command on the device and returns its output.
func (c *Controller) Shell(ctx context.Context, command string) (string, error) {
	return c.run(ctx, "shell", command)
}

// Connect verifies the device answers over adb.
func (c *Controller) Connect(ctx context.Context) error {
	out, err := c.Shell(ctx, "echo connected")
	if err != nil {
		return fmt.Errorf("device %s unreachable: %w", c.serial, err)
	}
	if !strings.Contains(out, "connected") {
		return fmt.Errorf("device %s gave unexpected response: %q", c.serial, strings.TrimSpace(out))
	}
	return nil
}

// StaticInfo reads the device's identity: model, manufacturer, OS version and
// display geometry.
func (c *Controller) StaticInfo(ctx context.Context) (profile.DeviceInfo, error) {
	info := profile.DeviceInfo{Serial: c.serial}

	props := map[string]*string{
		"ro.product.model":         &info.Model,
		"ro.product.manufacturer":  &info.Manufacturer,
		"ro.build.version.release": &info.OSVersion,
	}
	for prop, dst := range props {
		out, err := c.Shell(ctx, "getprop "+prop)
		if err != nil {
			return info, fmt.Errorf("failed to read %s: %w", prop, err)
		}
		*dst = strings.TrimSpace(out)
	}

	out, err := c.Shell(ctx, "wm size")
	if err != nil {
		return info, fmt.Errorf("failed to read screen size: %w", err)
	}
	info.Width, info.Height, err = parseWMSize(out)
	if err != nil {
		return info, err
	}

	out, err = c.Shell(ctx, "wm density")
	if err != nil {
		return info, fmt.Errorf("failed to read screen density: %w", err)
	}
	if dpi, err := parseWMDensity(out); err == nil {
		info.DPI = dpi
	}

	return info, nil
}

// parseWMSize extracts width and height from `wm size` output, e.g.
// "Physical size: 1080x2400".
func parseWMSize(out string) (int, int, error) {
	for _, line := range strings.Split(out, "\n") {
		line = strings.TrimSpace(line)
		if !strings.HasPrefix(line, "Physical size:") {
			continue
		}
		res := strings.TrimSpace(strings.TrimPrefix(line, "Physical size:"))
		parts := strings.SplitN(res, "x", 2)
		if len(parts) != 2 {
			break
		}
		w, errW := strconv.Atoi(strings.TrimSpace(parts[0]))
		h, errH := strconv.Atoi(strings.TrimSpace(parts[1]))
		if errW != nil || errH != nil {
			break
		}
		return w, h, nil
	}
	return 0, 0, fmt.Errorf("unparseable wm size output: %q", strings.TrimSpace(out))
}

// parseWMDensity extracts the dpi from `wm density` output, e.g.
// "Physical density: 420".
func parseWMDensity(out string) (int, error) {
	for _, line := range strings.Split(out, "\n") {
		line = strings.TrimSpace(line)
		if !strings.HasPrefix(line, "Physical density:") {
			continue
		}
		return strconv.Atoi(strings.TrimSpace(strings.TrimPrefix(line, "Physical density:")))
	}
	return 0, fmt.Errorf("unparseable wm density output: %q", strings.TrimSpace(out))
}

// Tap sends a touch at the given pixel coordinate.
func (c *Controller) Tap(ctx context.Context, x, y int) error {
	_, err := c.Shell(ctx, fmt.Sprintf("input tap %d %d", x, y))
	return err
}

// Swipe drags from one coordinate to another over durationMs milliseconds.
func (c *Controller) Swipe(ctx context.Context, x1, y1, x2, y2, durationMs int) error {
	_, err := c.Shell(ctx, fmt.Sprintf("input swipe %d %d %d %d %d", x1, y1, x2, y2, durationMs))
	return err
}

// KeyEvent sends an Android key event.
func (c *Controller) KeyEvent(ctx context.Context, keycode int) error {
	_, err := c.Shell(ctx, fmt.Sprintf("input keyevent %d", keycode))
	return err
}

// SetClipboard writes text to the device clipboard. Requires Android 10+ for
// the cmd clipboard service.
func (c *Controller) SetClipboard(ctx context.Context, text string) error {
	escaped := strings.ReplaceAll(text, `"`, `\"`)
	_, err := c.Shell(ctx, fmt.Sprintf(`cmd clipboard set "%s"`, escaped))
	return err
}

// GetClipboard reads the device clipboard content.
func (c *Controller) GetClipboard(ctx context.Context) (string, error) {
	out, err := c.Shell(ctx, "cmd clipboard get")
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(out), nil
}

// Paste triggers a paste into the currently focused field.
func (c *Controller) Paste(ctx context.Context) error {
	return c.KeyEvent(ctx, keycodePaste)
}

// Screenshot captures the screen as PNG bytes via exec-out, avoiding the
// line-ending mangling of plain shell output.
func (c *Controller) Screenshot(ctx context.Context) ([]byte, error) {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}
	cmd := exec.CommandContext(ctx, c.adbPath, "-s", c.serial, "exec-out", "screencap", "-p")
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("screenshot failed: %w (%s)", err, strings.TrimSpace(stderr.String()))
	}
	return stdout.Bytes(), nil
}

// LaunchApp starts an application by package name.
func (c *Controller) LaunchApp(ctx context.Context, pkg string) error {
	_, err := c.Shell(ctx, fmt.Sprintf("monkey -p %s -c android.intent.category.LAUNCHER 1", pkg))
	return err
}

// StopApp force-stops an application.
func (c *Controller) StopApp(ctx context.Context, pkg string) error {
	_, err := c.Shell(ctx, "am force-stop "+pkg)
	return err
}
