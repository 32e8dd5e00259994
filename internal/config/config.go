package config

import (
	"bufio"
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Sensor source kinds.
const (
	SourceMock    = "mock"
	SourceMPU9250 = "mpu9250"
	SourceSerial  = "serial"
	SourceMQTT    = "mqtt"
)

// Renderer kinds accepted in RENDERERS.
const (
	RendererTerminal = "terminal"
	RendererOLED     = "oled"
	RendererWeb      = "web"
	RendererMQTT     = "mqtt"
	RendererConsole  = "console"
)

// Config holds all application configuration values.
type Config struct {
	// MQTT
	MQTTBroker           string `yaml:"mqtt_broker"`
	MQTTClientIDProducer string `yaml:"mqtt_client_id_producer"`
	MQTTClientIDSim      string `yaml:"mqtt_client_id_sim"`
	MQTTClientIDConsole  string `yaml:"mqtt_client_id_console"`

	// Topics
	TopicIMU  string `yaml:"topic_imu"`
	TopicBall string `yaml:"topic_ball"`

	// Sensor source: "mock", "mpu9250", "serial", "mqtt"
	Source string `yaml:"source"`

	// IMU Hardware
	IMUSPIDevice string `yaml:"imu_spi_device"`
	IMUCSPin     string `yaml:"imu_cs_pin"`
	// Accelerometer: 0=±2g, 1=±4g, 2=±8g, 3=±16g
	IMUAccelRange byte `yaml:"imu_accel_range"`
	IMUSelfTest   bool `yaml:"imu_self_test"` // run self-test + calibration at startup

	// Serial accelerometer ($IIACC sentences)
	SerialPort     string `yaml:"serial_port"`
	SerialBaudRate int    `yaml:"serial_baud_rate"`

	// Timing
	IMUSampleInterval  int `yaml:"imu_sample_interval"`  // milliseconds
	ConsoleLogInterval int `yaml:"console_log_interval"` // milliseconds

	// Surface in pixels; 0x0 means "size of the terminal"
	SurfaceWidth  int `yaml:"surface_width"`
	SurfaceHeight int `yaml:"surface_height"`

	// Renderers, any of "terminal", "oled", "web", "mqtt", "console"
	Renderers []string `yaml:"renderers"`

	// Web Server
	WebServerPort int `yaml:"web_server_port"`

	// Display
	DisplayI2CBus string `yaml:"display_i2c_bus"` // "" = first available bus

	SoundEnabled bool   `yaml:"sound_enabled"`
	LogLevel     string `yaml:"log_level"`
	LogFile      string `yaml:"log_file"` // "" = stderr
}

// Default returns a configuration that runs the mock source on the console
// without any hardware or broker.
func Default() *Config {
	return &Config{
		MQTTBroker:           "tcp://localhost:1883",
		MQTTClientIDProducer: "accball-producer",
		MQTTClientIDSim:      "accball-sim",
		MQTTClientIDConsole:  "accball-console",
		TopicIMU:             "accball/imu",
		TopicBall:            "accball/ball",
		Source:               SourceMock,
		IMUSPIDevice:         "/dev/spidev0.0",
		IMUCSPin:             "8",
		SerialBaudRate:       115200,
		IMUSampleInterval:    20,
		ConsoleLogInterval:   500,
		SurfaceWidth:         1080,
		SurfaceHeight:        1920,
		Renderers:            []string{RendererConsole},
		WebServerPort:        8080,
		LogLevel:             "info",
	}
}

// Load reads the configuration file and returns a Config struct.
// Files ending in .yaml or .yml are parsed as YAML, anything else as
// KEY=VALUE lines. Unset values keep their defaults.
func Load(configPath string) (*Config, error) {
	cfg := Default()

	switch strings.ToLower(filepath.Ext(configPath)) {
	case ".yaml", ".yml":
		if err := cfg.loadYAML(configPath); err != nil {
			return nil, err
		}
	default:
		if err := cfg.loadText(configPath); err != nil {
			return nil, err
		}
	}

	// Validate required fields
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) loadYAML(configPath string) error {
	data, err := os.ReadFile(configPath)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(c); err != nil {
		return fmt.Errorf("failed to parse YAML config: %w", err)
	}
	return nil
}

func (c *Config) loadText(configPath string) error {
	file, err := os.Open(configPath)
	if err != nil {
		return fmt.Errorf("failed to open config file: %w", err)
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	lineNum := 0

	for scanner.Scan() {
		lineNum++
		line := strings.TrimSpace(scanner.Text())

		// Skip empty lines and comments
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		// Parse KEY=VALUE
		parts := strings.SplitN(line, "=", 2)
		if len(parts) != 2 {
			return fmt.Errorf("invalid config line %d: %q", lineNum, line)
		}

		key := strings.TrimSpace(parts[0])
		value := strings.TrimSpace(parts[1])

		if err := c.setValue(key, value); err != nil {
			return fmt.Errorf("config line %d: %w", lineNum, err)
		}
	}

	if err := scanner.Err(); err != nil {
		return fmt.Errorf("error reading config file: %w", err)
	}
	return nil
}

// setValue sets a config value based on the key.
func (c *Config) setValue(key, value string) error {
	switch key {
	// MQTT
	case "MQTT_BROKER":
		c.MQTTBroker = value
	case "MQTT_CLIENT_ID_PRODUCER":
		c.MQTTClientIDProducer = value
	case "MQTT_CLIENT_ID_SIM":
		c.MQTTClientIDSim = value
	case "MQTT_CLIENT_ID_CONSOLE":
		c.MQTTClientIDConsole = value

	// Topics
	case "TOPIC_IMU":
		c.TopicIMU = value
	case "TOPIC_BALL":
		c.TopicBall = value

	case "SOURCE":
		c.Source = strings.ToLower(value)

	// IMU Hardware
	case "IMU_SPI_DEVICE":
		c.IMUSPIDevice = value
	case "IMU_CS_PIN":
		c.IMUCSPin = value
	case "IMU_ACCEL_RANGE":
		rangeVal, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid IMU_ACCEL_RANGE %q: %w", value, err)
		}
		if rangeVal < 0 || rangeVal > 3 {
			return fmt.Errorf("IMU_ACCEL_RANGE must be 0-3 (0=±2g, 1=±4g, 2=±8g, 3=±16g), got %d", rangeVal)
		}
		c.IMUAccelRange = byte(rangeVal)
	case "IMU_SELF_TEST":
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("invalid IMU_SELF_TEST %q: %w", value, err)
		}
		c.IMUSelfTest = b

	// Serial
	case "SERIAL_PORT":
		c.SerialPort = value
	case "SERIAL_BAUD_RATE":
		rate, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid SERIAL_BAUD_RATE %q: %w", value, err)
		}
		c.SerialBaudRate = rate

	// Timing
	case "IMU_SAMPLE_INTERVAL":
		interval, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid IMU_SAMPLE_INTERVAL %q: %w", value, err)
		}
		c.IMUSampleInterval = interval
	case "CONSOLE_LOG_INTERVAL":
		interval, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid CONSOLE_LOG_INTERVAL %q: %w", value, err)
		}
		c.ConsoleLogInterval = interval

	// Surface
	case "SURFACE_WIDTH":
		w, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid SURFACE_WIDTH %q: %w", value, err)
		}
		c.SurfaceWidth = w
	case "SURFACE_HEIGHT":
		h, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid SURFACE_HEIGHT %q: %w", value, err)
		}
		c.SurfaceHeight = h

	case "RENDERERS":
		c.Renderers = splitList(value)

	// Web Server
	case "WEB_SERVER_PORT":
		port, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid WEB_SERVER_PORT %q: %w", value, err)
		}
		c.WebServerPort = port

	// Display
	case "DISPLAY_I2C_BUS":
		c.DisplayI2CBus = value

	case "SOUND_ENABLED":
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("invalid SOUND_ENABLED %q: %w", value, err)
		}
		c.SoundEnabled = b
	case "LOG_LEVEL":
		c.LogLevel = strings.ToLower(value)
	case "LOG_FILE":
		c.LogFile = value

	default:
		return fmt.Errorf("unknown config key: %q", key)
	}
	return nil
}

func splitList(value string) []string {
	var out []string
	for _, item := range strings.Split(value, ",") {
		item = strings.ToLower(strings.TrimSpace(item))
		if item != "" {
			out = append(out, item)
		}
	}
	return out
}

// HasRenderer reports whether the named renderer is enabled.
func (c *Config) HasRenderer(name string) bool {
	for _, r := range c.Renderers {
		if r == name {
			return true
		}
	}
	return false
}

// validate checks that all required fields are set.
func (c *Config) validate() error {
	switch c.Source {
	case SourceMock:
	case SourceMPU9250:
		if c.IMUSPIDevice == "" {
			return fmt.Errorf("IMU_SPI_DEVICE is required for SOURCE=%s", c.Source)
		}
		if c.IMUCSPin == "" {
			return fmt.Errorf("IMU_CS_PIN is required for SOURCE=%s", c.Source)
		}
	case SourceSerial:
		if c.SerialPort == "" {
			return fmt.Errorf("SERIAL_PORT is required for SOURCE=%s", c.Source)
		}
		if c.SerialBaudRate <= 0 {
			return fmt.Errorf("SERIAL_BAUD_RATE is required for SOURCE=%s", c.Source)
		}
	case SourceMQTT:
		if c.TopicIMU == "" {
			return fmt.Errorf("TOPIC_IMU is required for SOURCE=%s", c.Source)
		}
	default:
		return fmt.Errorf("unknown SOURCE %q (want mock, mpu9250, serial or mqtt)", c.Source)
	}

	if c.IMUAccelRange > 3 {
		return fmt.Errorf("IMU_ACCEL_RANGE must be 0-3, got %d", c.IMUAccelRange)
	}
	if c.IMUSampleInterval <= 0 {
		return fmt.Errorf("IMU_SAMPLE_INTERVAL is required")
	}
	if c.ConsoleLogInterval <= 0 {
		return fmt.Errorf("CONSOLE_LOG_INTERVAL is required")
	}
	if c.SurfaceWidth < 0 || c.SurfaceHeight < 0 {
		return fmt.Errorf("surface size must not be negative, got %dx%d", c.SurfaceWidth, c.SurfaceHeight)
	}
	if (c.SurfaceWidth == 0 || c.SurfaceHeight == 0) && !c.HasRenderer(RendererTerminal) {
		return fmt.Errorf("SURFACE_WIDTH and SURFACE_HEIGHT are required unless the terminal renderer sizes the surface")
	}

	needBroker := c.Source == SourceMQTT || c.HasRenderer(RendererMQTT)
	for _, r := range c.Renderers {
		switch r {
		case RendererTerminal, RendererOLED, RendererConsole:
		case RendererMQTT:
			if c.TopicBall == "" {
				return fmt.Errorf("TOPIC_BALL is required for the mqtt renderer")
			}
		case RendererWeb:
			if c.WebServerPort <= 0 || c.WebServerPort > 65535 {
				return fmt.Errorf("WEB_SERVER_PORT must be 1-65535, got %d", c.WebServerPort)
			}
		default:
			return fmt.Errorf("unknown renderer %q", r)
		}
	}
	if needBroker && c.MQTTBroker == "" {
		return fmt.Errorf("MQTT_BROKER is required")
	}

	switch c.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("LOG_LEVEL must be debug, info, warn or error, got %q", c.LogLevel)
	}
	return nil
}
