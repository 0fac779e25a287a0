package neopixel_test

import (
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/LandynMoreno/zolo/internal/animation"
	"github.com/LandynMoreno/zolo/internal/led"
	"github.com/LandynMoreno/zolo/internal/led/ledtest"
	"github.com/LandynMoreno/zolo/internal/neopixel"
	"github.com/LandynMoreno/zolo/internal/surface"
)

func newRing(t *testing.T, count int) (*neopixel.Ring, *ledtest.Recorder) {
	t.Helper()
	rec := ledtest.NewRecorder(count)
	r, err := neopixel.New(neopixel.Options{
		Pin:         18,
		Count:       count,
		Brightness:  1,
		Backends:    []led.Backend{&ledtest.Backend{Rec: rec}},
		JoinTimeout: 200 * time.Millisecond,
	}, zerolog.Nop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = r.Cleanup() })
	return r, rec
}

func TestRing_LifecycleScenario(t *testing.T) {
	r, _ := newRing(t, 12)

	_, err := r.StartAnimation(animation.Pattern{Kind: animation.Rainbow})
	assert.ErrorIs(t, err, surface.ErrNotInitialized)
	assert.ErrorIs(t, r.SetPixel(0, neopixel.Red), surface.ErrNotInitialized)

	mode, err := r.Initialize()
	require.NoError(t, err)
	assert.Equal(t, led.ModeWS281x, mode)

	require.NoError(t, r.SetPixel(3, neopixel.Red))
	assert.ErrorIs(t, r.SetPixel(15, neopixel.Green), surface.ErrOutOfRange)
	assert.Equal(t, neopixel.Red, r.Frame()[3])

	_, err = r.StartAnimation(animation.Pattern{Kind: animation.Rainbow, Speed: 50 * time.Millisecond})
	require.NoError(t, err)
	st := r.Status()
	assert.True(t, st.Initialized)
	assert.Equal(t, led.ModeWS281x, st.Mode)
	assert.Equal(t, animation.Rainbow, st.CurrentPattern)
	assert.Equal(t, animation.Running, st.State)
	assert.InDelta(t, 0.05, st.Speed, 1e-9)
	assert.Equal(t, 12, st.PixelCount)

	require.NoError(t, r.Cleanup())
	for _, c := range r.Frame() {
		assert.Equal(t, surface.Black, c)
	}
	assert.ErrorIs(t, r.SetPixel(0, neopixel.Red), surface.ErrNotInitialized)
	st = r.Status()
	assert.False(t, st.Initialized)
	assert.Equal(t, animation.Idle, st.State)
	require.NoError(t, r.Cleanup(), "cleanup twice")
}

func TestRing_ReinitializeAfterCleanup(t *testing.T) {
	r, _ := newRing(t, 4)
	_, err := r.Initialize()
	require.NoError(t, err)
	require.NoError(t, r.Cleanup())

	_, err = r.Initialize()
	require.NoError(t, err)
	_, err = r.StartAnimation(animation.Pattern{Kind: animation.SpinningDot, Color: neopixel.Blue})
	assert.NoError(t, err)
}

func TestRing_FillInterruptsAnimation(t *testing.T) {
	r, rec := newRing(t, 6)
	_, err := r.Initialize()
	require.NoError(t, err)

	_, err = r.StartAnimation(animation.Pattern{Kind: animation.Rainbow, Speed: time.Millisecond})
	require.NoError(t, err)
	time.Sleep(10 * time.Millisecond)

	require.NoError(t, r.Fill(neopixel.Purple))
	assert.Equal(t, animation.Idle, r.Status().State)
	for _, c := range r.Frame() {
		assert.Equal(t, neopixel.Purple, c)
	}
	n := rec.Len()
	time.Sleep(10 * time.Millisecond)
	assert.Equal(t, n, rec.Len())
}

func TestRing_ShowStatus(t *testing.T) {
	r, _ := newRing(t, 4)
	_, err := r.Initialize()
	require.NoError(t, err)

	require.NoError(t, r.ShowStatus("listening"))
	st := r.Status()
	assert.Equal(t, animation.Breathing, st.CurrentPattern)
	assert.InDelta(t, 0.05, st.Speed, 1e-9)

	require.NoError(t, r.ShowStatus("ERROR"))
	assert.Equal(t, animation.Idle, r.Status().State)
	assert.Equal(t, neopixel.Red, r.Frame()[0])

	require.NoError(t, r.ShowStatus("dancing"))
	assert.Equal(t, neopixel.White, r.Frame()[2])
}

func TestStatusColor(t *testing.T) {
	cases := map[string]surface.RGB{
		"ready":      neopixel.Green,
		"success":    neopixel.Green,
		"listening":  neopixel.Blue,
		"processing": neopixel.Yellow,
		"error":      neopixel.Red,
		"failed":     neopixel.Red,
		"warning":    neopixel.Orange,
		"off":        neopixel.Off,
		"unknown":    neopixel.White,
	}
	for status, want := range cases {
		assert.Equal(t, want, neopixel.StatusColor(status), status)
	}
}

func TestRing_ApplyPreset(t *testing.T) {
	r, _ := newRing(t, 5)
	_, err := r.Initialize()
	require.NoError(t, err)

	require.NoError(t, r.ApplyPreset("ocean_waves", nil))
	f := r.Frame()
	assert.Equal(t, surface.RGB{R: 0x00, G: 0x77, B: 0xBE}, f[0])
	assert.Equal(t, surface.RGB{R: 0x40, G: 0xE0, B: 0xD0}, f[2])
	assert.Equal(t, f[0], f[3])

	require.NoError(t, r.ApplyPreset("custom", []string{"red", "#00f"}))
	f = r.Frame()
	assert.Equal(t, []surface.RGB{neopixel.Red, neopixel.Blue, neopixel.Red, neopixel.Blue, neopixel.Red}, f)

	require.NoError(t, r.ApplyPreset("nope", nil))
	assert.Equal(t, neopixel.White, r.Frame()[4])

	assert.ErrorIs(t, r.ApplyPreset("bad", []string{"chartreuse-ish"}), neopixel.ErrInvalidColor)
}

func TestPresetFrame_ShortHex(t *testing.T) {
	f, err := neopixel.PresetFrame("warm_white", nil, 3)
	require.NoError(t, err)
	assert.Equal(t, surface.RGB{R: 0xDD, G: 0xDD, B: 0xDD}, f[2])
	assert.Len(t, neopixel.PresetNames(), 6)
}

func TestParseColor(t *testing.T) {
	cases := []struct {
		in   string
		want surface.RGB
		err  bool
	}{
		{"red", neopixel.Red, false},
		{" Orange ", neopixel.Orange, false},
		{"#ff8000", surface.RGB{R: 255, G: 128}, false},
		{"FF8000", surface.RGB{R: 255, G: 128}, false},
		{"#fff", neopixel.White, false},
		{"", surface.Black, true},
		{"#zzzzzz", surface.Black, true},
	}
	for _, tc := range cases {
		got, err := neopixel.ParseColor(tc.in)
		if tc.err {
			assert.ErrorIs(t, err, neopixel.ErrInvalidColor, tc.in)
			continue
		}
		require.NoError(t, err, tc.in)
		assert.Equal(t, tc.want, got, tc.in)
	}
	assert.Contains(t, neopixel.ColorNames(), "pink")
	assert.Equal(t, "#ff8000", neopixel.Hex(surface.RGB{R: 255, G: 128}))
}
