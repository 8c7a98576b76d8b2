package adb

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"
	"time"

	"github.com/shinjadong/careon-blog-ai/internal/logger"
	"github.com/shinjadong/careon-blog-ai/internal/profile"
)

// ListSerials returns the serials of devices currently attached and
// authorized.
func ListSerials(ctx context.Context, adbPath string, timeout time.Duration) ([]string, error) {
	if adbPath == "" {
		adbPath = "adb"
	}
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	cmd := exec.CommandContext(ctx, adbPath, "devices")
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("adb devices failed: %w (%s)", err, strings.TrimSpace(stderr.String()))
	}

	return parseDeviceList(stdout.String()), nil
}

// parseDeviceList extracts serials from `adb devices` output. Only devices in
// the "device" state count; unauthorized and offline units are skipped.
func parseDeviceList(out string) []string {
	var serials []string
	for _, line := range strings.Split(out, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "List of devices") {
			continue
		}
		fields := strings.Fields(line)
		if len(fields) >= 2 && fields[1] == "device" {
			serials = append(serials, fields[0])
		}
	}
	return serials
}

// Scan lists attached devices and reads each one's static info. Devices that
// fail to answer are logged and skipped rather than failing the scan.
func Scan(ctx context.Context, adbPath string, timeout time.Duration) ([]profile.DeviceInfo, error) {
	serials, err := ListSerials(ctx, adbPath, timeout)
	if err != nil {
		return nil, err
	}

	log := logger.With("adb")
	infos := make([]profile.DeviceInfo, 0, len(serials))
	for _, serial := range serials {
		c := NewController(adbPath, serial, timeout)
		if err := c.Connect(ctx); err != nil {
			log.Warn().Err(err).Str("serial", serial).Msg("skipping unreachable device")
			continue
		}
		info, err := c.StaticInfo(ctx)
		if err != nil {
			log.Warn().Err(err).Str("serial", serial).Msg("skipping device with unreadable info")
			continue
		}
		infos = append(infos, info)
	}
	return infos, nil
}
