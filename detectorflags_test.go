package qrsdetect

import (
	"flag"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carbocation/qrsdetect/pantompkins"
)

func TestDetectorFlagsDefaults(t *testing.T) {
	fs := flag.NewFlagSet("qrsdetect", flag.ContinueOnError)
	var d DetectorFlags
	d.Register(fs)
	require.NoError(t, fs.Parse(nil))

	cfg, err := d.Resolve(fs)
	require.NoError(t, err)

	det, err := cfg.Detector(360)
	require.NoError(t, err)
	assert.Equal(t, pantompkins.DefaultConfig(360), det)
	assert.False(t, cfg.CompensateDelay)
}

func TestDetectorFlagsOverrideConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"taps": 101, "boundary": "centered", "records": ["100"]}`), 0644))

	fs := flag.NewFlagSet("qrsdetect", flag.ContinueOnError)
	var d DetectorFlags
	d.Register(fs)
	require.NoError(t, fs.Parse([]string{"-config", path, "-boundary", "causal", "-compensate"}))

	cfg, err := d.Resolve(fs)
	require.NoError(t, err)

	// File values survive unless a flag was given.
	assert.Equal(t, 101, cfg.Taps)
	assert.Equal(t, "causal", cfg.Boundary)
	assert.True(t, cfg.CompensateDelay)
	assert.Equal(t, []string{"100"}, cfg.Records)

	det, err := cfg.Detector(360)
	require.NoError(t, err)
	assert.Equal(t, pantompkins.Causal, det.Boundary)
	assert.Equal(t, 101, det.Taps)
}
