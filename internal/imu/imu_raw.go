package imu

import "time"

// StandardGravity in m/s².
const StandardGravity = 9.80665

// accelLSBPerG maps the MPU9250 ACCEL_FS_SEL code (0=±2g .. 3=±16g) to
// counts per g.
var accelLSBPerG = [4]float64{16384, 8192, 4096, 2048}

// IMURaw represents a single raw IMU+mag sample in sensor counts.
type IMURaw struct {
	Source string `json:"source"` // device name, e.g. "mpu9250"

	Ax int16 `json:"ax"` // accel
	Ay int16 `json:"ay"`
	Az int16 `json:"az"`

	Gx int16 `json:"gx"` // gyro
	Gy int16 `json:"gy"`
	Gz int16 `json:"gz"`

	Mx int16 `json:"mx"` // magnetometer
	My int16 `json:"my"`
	Mz int16 `json:"mz"`
}

// ToSample converts the accelerometer counts to m/s² for the given full
// scale range code. Out-of-range codes fall back to ±2g.
func (r IMURaw) ToSample(accelRange byte, at time.Time) Sample {
	lsb := accelLSBPerG[0]
	if int(accelRange) < len(accelLSBPerG) {
		lsb = accelLSBPerG[accelRange]
	}
	scale := StandardGravity / lsb
	return Sample{
		Source: r.Source,
		Ax:     float64(r.Ax) * scale,
		Ay:     float64(r.Ay) * scale,
		Az:     float64(r.Az) * scale,
		Time:   at,
	}
}
