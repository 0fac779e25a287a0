package config_test

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/LandynMoreno/zolo/internal/config"
)

func TestLoad_OverlaysDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
driver: spi
led_count: 24
animation:
  speed: 50ms
spi:
  dev: SPI0.0
`), 0644))

	c, err := config.Load(path)
	require.NoError(t, err)
	assert.Equal(t, "spi", c.Driver)
	assert.Equal(t, 24, c.LEDCount)
	assert.Equal(t, 50*time.Millisecond, c.Animation.Speed)
	assert.Equal(t, time.Second, c.Animation.JoinTimeout, "default kept")
	assert.Equal(t, "SPI0.0", c.SPI.Dev)
	assert.Equal(t, 18, c.GPIO)
	assert.Equal(t, 0.5, c.Brightness)
	assert.NoError(t, c.Validate())
}

func TestLoad_MissingFileReturnsDefaults(t *testing.T) {
	c, err := config.Load(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.True(t, errors.Is(err, fs.ErrNotExist))
	require.NotNil(t, c)
	assert.Equal(t, config.Default(), c)
}

func TestLoad_BadYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("led_count: [\n"), 0644))
	_, err := config.Load(path)
	assert.Error(t, err)
}

func TestSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	c := config.Default()
	c.Brightness = 0.25
	c.Sim.Console = true
	require.NoError(t, config.Save(path, c))

	got, err := config.Load(path)
	require.NoError(t, err)
	assert.Equal(t, c, got)
}

func TestValidate(t *testing.T) {
	cases := []struct {
		name string
		edit func(*config.Config)
	}{
		{"count", func(c *config.Config) { c.LEDCount = 0 }},
		{"brightness high", func(c *config.Config) { c.Brightness = 1.5 }},
		{"brightness low", func(c *config.Config) { c.Brightness = -0.1 }},
		{"driver", func(c *config.Config) { c.Driver = "dmx" }},
		{"channel", func(c *config.Config) { c.Channel = 2 }},
		{"speed", func(c *config.Config) { c.Animation.Speed = -time.Second }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			c := config.Default()
			tc.edit(c)
			assert.Error(t, c.Validate())
		})
	}
	assert.NoError(t, config.Default().Validate())
}
