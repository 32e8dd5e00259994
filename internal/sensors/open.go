package sensors

import (
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/relabs-tech/accel_ball/internal/config"
	"github.com/relabs-tech/accel_ball/internal/imu"
)

// Open returns the sample source selected by cfg.Source.
func Open(cfg *config.Config, logger *zap.SugaredLogger) (imu.Source, error) {
	switch cfg.Source {
	case config.SourceMock:
		logger.Info("using mock accelerometer source")
		return NewMockSource(time.Duration(cfg.IMUSampleInterval) * time.Millisecond), nil
	case config.SourceMPU9250:
		src, err := NewMPU9250Source(cfg, logger)
		if err != nil {
			return nil, err
		}
		return src, nil
	case config.SourceSerial:
		src, err := NewSerialSource(cfg, logger)
		if err != nil {
			return nil, err
		}
		return src, nil
	case config.SourceMQTT:
		src, err := NewMQTTSource(cfg, logger)
		if err != nil {
			return nil, err
		}
		return src, nil
	default:
		return nil, fmt.Errorf("unknown source %q", cfg.Source)
	}
}
