package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadTextConfig(t *testing.T) {
	path := writeFile(t, "accball_config.txt", `
# accelerometer over serial
SOURCE=serial
SERIAL_PORT=/dev/ttyUSB0
SERIAL_BAUD_RATE = 57600
IMU_SAMPLE_INTERVAL=10
SURFACE_WIDTH=400
SURFACE_HEIGHT=800
RENDERERS=console, MQTT ,web
WEB_SERVER_PORT=9090
SOUND_ENABLED=true
LOG_LEVEL=DEBUG
LOG_FILE=/var/log/accball.log
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, SourceSerial, cfg.Source)
	assert.Equal(t, "/dev/ttyUSB0", cfg.SerialPort)
	assert.Equal(t, 57600, cfg.SerialBaudRate)
	assert.Equal(t, 10, cfg.IMUSampleInterval)
	assert.Equal(t, 400, cfg.SurfaceWidth)
	assert.Equal(t, 800, cfg.SurfaceHeight)
	assert.Equal(t, []string{"console", "mqtt", "web"}, cfg.Renderers)
	assert.Equal(t, 9090, cfg.WebServerPort)
	assert.True(t, cfg.SoundEnabled)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "/var/log/accball.log", cfg.LogFile)

	// untouched keys keep defaults
	assert.Equal(t, "tcp://localhost:1883", cfg.MQTTBroker)
	assert.Equal(t, 500, cfg.ConsoleLogInterval)
}

func TestLoadYAMLConfig(t *testing.T) {
	path := writeFile(t, "accball.yaml", `
source: mpu9250
imu_spi_device: /dev/spidev6.0
imu_cs_pin: "18"
imu_accel_range: 2
renderers: [oled, terminal]
surface_width: 0
surface_height: 0
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, SourceMPU9250, cfg.Source)
	assert.Equal(t, "/dev/spidev6.0", cfg.IMUSPIDevice)
	assert.Equal(t, "18", cfg.IMUCSPin)
	assert.Equal(t, byte(2), cfg.IMUAccelRange)
	assert.True(t, cfg.HasRenderer(RendererTerminal))
	assert.True(t, cfg.HasRenderer(RendererOLED))
	assert.False(t, cfg.HasRenderer(RendererWeb))
}

func TestLoadRejectsBadInput(t *testing.T) {
	tests := []struct {
		name    string
		file    string
		content string
		errMsg  string
	}{
		{"unknown key", "c.txt", "NOPE=1\n", "unknown config key"},
		{"missing equals", "c.txt", "SOURCE\n", "invalid config line 1"},
		{"bad range", "c.txt", "IMU_ACCEL_RANGE=7\n", "IMU_ACCEL_RANGE must be 0-3"},
		{"bad int", "c.txt", "SURFACE_WIDTH=wide\n", "invalid SURFACE_WIDTH"},
		{"unknown source", "c.txt", "SOURCE=gps\n", "unknown SOURCE"},
		{"serial without port", "c.txt", "SOURCE=serial\n", "SERIAL_PORT is required"},
		{"unknown renderer", "c.txt", "RENDERERS=console,hologram\n", "unknown renderer"},
		{"auto size without terminal", "c.txt", "SURFACE_WIDTH=0\n", "SURFACE_WIDTH and SURFACE_HEIGHT are required"},
		{"bad log level", "c.txt", "LOG_LEVEL=loud\n", "LOG_LEVEL must be"},
		{"unknown yaml field", "c.yml", "colour: red\n", "failed to parse YAML config"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeFile(t, tt.file, tt.content))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errMsg)
		})
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.txt"))
	require.Error(t, err)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestDefaultIsValid(t *testing.T) {
	assert.NoError(t, Default().validate())
}

func TestShippedConfigsLoad(t *testing.T) {
	for _, name := range []string{"accball_config.txt", "accball.yaml"} {
		t.Run(name, func(t *testing.T) {
			_, err := Load(filepath.Join("..", "..", name))
			require.NoError(t, err)
		})
	}
}
