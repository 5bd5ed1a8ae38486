package channelconfig

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cyre.run/cyre/internal/types"
)

func TestLoadFileDecodesChannelList(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "channels.yaml")
	contents := `
channels:
  - id: sensor-1
    priority: high
    throttle_ms: 100
    detect_changes: true
  - id: search
    debounce_ms: 250
    max_wait_ms: 1000
    log: true
`
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o644))

	specs, err := LoadFile(path)
	require.NoError(t, err)
	require.Len(t, specs, 2)

	assert.Equal(t, "sensor-1", specs[0].ID)
	assert.Equal(t, "high", specs[0].Priority)
	assert.Equal(t, 100, specs[0].ThrottleMs)
	assert.True(t, specs[0].DetectChanges)

	assert.Equal(t, "search", specs[1].ID)
	assert.Equal(t, 250, specs[1].DebounceMs)
	assert.Equal(t, 1000, specs[1].MaxWaitMs)
	assert.True(t, specs[1].Log)
}

func TestLoadFileMissingChannelsKeyErrors(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "empty.yaml")
	require.NoError(t, os.WriteFile(path, []byte("other_key: 1\n"), 0o644))

	_, err := LoadFile(path)
	assert.Error(t, err)
}

func TestLoadFileMissingFileErrors(t *testing.T) {
	_, err := LoadFile(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestToConfigMapsEveryField(t *testing.T) {
	s := Spec{
		ID:            "x",
		Type:          "sensor",
		Path:          "/a/b",
		Priority:      "low",
		ThrottleMs:    10,
		DebounceMs:    20,
		MaxWaitMs:     30,
		DetectChanges: true,
		DelayMs:       types.IntPtr(40),
		IntervalMs:    50,
		Repeat:        3,
		Log:           true,
		Block:         true,
	}
	cfg := s.ToConfig()

	assert.Equal(t, types.Config{
		ID:            "x",
		Type:          "sensor",
		Path:          "/a/b",
		Priority:      types.PriorityLow,
		ThrottleMs:    10,
		DebounceMs:    20,
		MaxWaitMs:     30,
		DetectChanges: true,
		DelayMs:       types.IntPtr(40),
		IntervalMs:    50,
		Repeat:        3,
		Log:           true,
		Block:         true,
	}, cfg)
}

func TestToConfigsPreservesOrder(t *testing.T) {
	specs := []Spec{{ID: "a"}, {ID: "b"}, {ID: "c"}}
	cfgs := ToConfigs(specs)
	require.Len(t, cfgs, 3)
	assert.Equal(t, []string{"a", "b", "c"}, []string{cfgs[0].ID, cfgs[1].ID, cfgs[2].ID})
}
