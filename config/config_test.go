package config

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault_Valid(t *testing.T) {
	require.NoError(t, Default().Validate())
}

func TestDecode_TOMLOverridesKeepDefaults(t *testing.T) {
	data := []byte(`
gravity_scale = 0.5
limited_lifetime = true
max_lifetime = 1.5
`)
	tun, err := Decode(data, FormatTOML)
	require.NoError(t, err)

	assert.Equal(t, 0.5, tun.GravityScale)
	assert.True(t, tun.LimitedLifetime)
	assert.Equal(t, 1.5, tun.MaxLifetime)
	assert.Equal(t, Default().AirDrag, tun.AirDrag, "unset key should keep default")
}

func TestDecode_YAML(t *testing.T) {
	data := []byte("air_drag: 0.25\nportal_exit_speed_min: 300\n")
	tun, err := Decode(data, FormatYAML)
	require.NoError(t, err)
	assert.Equal(t, 0.25, tun.AirDrag)
	assert.Equal(t, 300.0, tun.PortalExitSpeedMin)

	tun, err = Decode([]byte("# nothing set\n"), FormatYAML)
	require.NoError(t, err)
	assert.Equal(t, Default(), tun)
}

func TestDecode_UnknownKeyRejected(t *testing.T) {
	_, err := Decode([]byte("gravty = 1.0\n"), FormatTOML)
	assert.Error(t, err)

	_, err = Decode([]byte("gravty: 1.0\n"), FormatYAML)
	assert.Error(t, err)
}

func TestValidate_Failures(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Tunables)
	}{
		{"inverted radius range", func(t *Tunables) { t.RadiusScaleMin, t.RadiusScaleMax = 2, 1 }},
		{"negative drag", func(t *Tunables) { t.AirDrag = -1 }},
		{"angle out of range", func(t *Tunables) { t.StreakAngleThreshold = 200 }},
		{"negative lifetime", func(t *Tunables) { t.MaxLifetime = -0.1 }},
		{"streak radius beyond resample range", func(t *Tunables) { t.StreakRadius = t.StreakTraceRange }},
		{"negative streak radius", func(t *Tunables) { t.StreakRadius = -1 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tun := Default()
			tt.mutate(tun)
			assert.ErrorIs(t, tun.Validate(), ErrInvalid)
		})
	}
}

func TestEncodeDecode_TOML(t *testing.T) {
	src := Default()
	src.BeamAccel = 123
	data, err := Encode(src, FormatTOML)
	require.NoError(t, err)

	got, err := Decode(data, FormatTOML)
	require.NoError(t, err)
	assert.Equal(t, src, got)
}

func TestFormatFromPath(t *testing.T) {
	f, err := FormatFromPath("a/b.TOML")
	require.NoError(t, err)
	assert.Equal(t, FormatTOML, f)

	f, err = FormatFromPath("x.yml")
	require.NoError(t, err)
	assert.Equal(t, FormatYAML, f)

	_, err = FormatFromPath("x.json")
	assert.Error(t, err)
}

func TestLoadAuto_FallsBackToDefaults(t *testing.T) {
	old := DefaultConfigPath
	DefaultConfigPath = filepath.Join(t.TempDir(), "missing.toml")
	defer func() { DefaultConfigPath = old }()

	tun, err := LoadAuto("")
	require.NoError(t, err)
	assert.Equal(t, Default(), tun)
}

func TestStore_Swap(t *testing.T) {
	s := NewStore(nil)
	first := s.Load()
	require.NotNil(t, first)

	next := first.Clone()
	next.AirDrag = 9
	prev := s.Swap(next)
	assert.Same(t, first, prev)
	assert.Equal(t, 9.0, s.Load().AirDrag)
}

func TestWatcher_ReloadKeepsPreviousOnError(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "tun.toml")
	require.NoError(t, os.WriteFile(path, []byte("air_drag = 0.5\n"), 0o644))

	store := NewStore(nil)
	w, err := NewWatcher(path, store, nil)
	require.NoError(t, err)

	require.True(t, w.Reload())
	assert.Equal(t, 0.5, store.Load().AirDrag)

	require.NoError(t, os.WriteFile(path, []byte("air_drag = -3\n"), 0o644))
	assert.False(t, w.Reload())
	assert.Equal(t, 0.5, store.Load().AirDrag)
}

func TestWatcher_RunPicksUpWrites(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "tun.yaml")
	require.NoError(t, os.WriteFile(path, []byte("air_drag: 0.3\n"), 0o644))

	store := NewStore(nil)
	w, err := NewWatcher(path, store, nil)
	require.NoError(t, err)

	applied := make(chan *Tunables, 16)
	w.OnApply(func(t *Tunables) {
		select {
		case applied <- t:
		default:
		}
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go w.Run(ctx)

	require.NoError(t, os.WriteFile(path, []byte("air_drag: 0.7\n"), 0o644))

	// Truncate and write may arrive as separate events, wait for the final content
	deadline := time.After(5 * time.Second)
	for {
		select {
		case got := <-applied:
			if got.AirDrag == 0.7 {
				assert.Equal(t, 0.7, store.Load().AirDrag)
				return
			}
		case <-deadline:
			t.Fatal("watcher did not reload")
		}
	}
}
