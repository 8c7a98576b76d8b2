package adb

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDeviceList(t *testing.T) {
	out := `List of devices attached
R3CX104VXYZ	device
emulator-5554	device
R3CX999ABC	unauthorized
192.168.0.10:5555	offline

`
	serials := parseDeviceList(out)
	assert.Equal(t, []string{"R3CX104VXYZ", "emulator-5554"}, serials)
}

func TestParseDeviceListEmpty(t *testing.T) {
	assert.Empty(t, parseDeviceList("List of devices attached\n\n"))
}

func TestParseWMSize(t *testing.T) {
	w, h, err := parseWMSize("Physical size: 1080x2340\n")
	require.NoError(t, err)
	assert.Equal(t, 1080, w)
	assert.Equal(t, 2340, h)

	// override lines come after the physical line; the physical one wins
	w, h, err = parseWMSize("Physical size: 1440x3200\nOverride size: 1080x2400\n")
	require.NoError(t, err)
	assert.Equal(t, 1440, w)
	assert.Equal(t, 3200, h)

	_, _, err = parseWMSize("garbage")
	assert.Error(t, err)

	_, _, err = parseWMSize("Physical size: oops\n")
	assert.Error(t, err)
}

func TestParseWMDensity(t *testing.T) {
	dpi, err := parseWMDensity("Physical density: 420\n")
	require.NoError(t, err)
	assert.Equal(t, 420, dpi)

	_, err = parseWMDensity("no density here")
	assert.Error(t, err)
}

func TestNewControllerDefaultsPath(t *testing.T) {
	c := NewController("", "serial-1", 0)
	assert.Equal(t, "adb", c.adbPath)
	assert.Equal(t, "serial-1", c.Serial())
}
