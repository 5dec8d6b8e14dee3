package heart

import (
	"encoding/binary"
	"errors"
	"time"
)

// Heart Rate Measurement characteristic flag bits (GATT 0x2A37).
const (
	flagFormatUint16          = 1 << 0
	flagContactDetected       = 1 << 1
	flagContactSupported      = 1 << 2
	flagEnergyExpendedPresent = 1 << 3
	flagRRIntervalsPresent    = 1 << 4
)

// Measurement is a decoded Heart Rate Measurement characteristic value.
type Measurement struct {
	// BPM is the instantaneous heart rate.
	BPM int

	// ContactSupported reports whether the sensor exposes skin contact
	// status; ContactDetected is only meaningful when it does.
	ContactSupported bool
	ContactDetected  bool

	// EnergyExpended in kilojoules, when present.
	EnergyExpended    uint16
	HasEnergyExpended bool

	// RRIntervals are beat-to-beat intervals, when present.
	RRIntervals []time.Duration
}

// Errors returned by ParseMeasurement.
var (
	ErrMeasurementTooShort = errors.New("heart: measurement payload too short")
)

// ParseMeasurement decodes a Heart Rate Measurement characteristic value
// as forwarded by the BLE bridge. The heart-rate field is uint8 or
// uint16 little-endian depending on the format flag; optional fields
// follow in the order defined by the characteristic.
func ParseMeasurement(data []byte) (*Measurement, error) {
	if len(data) < 2 {
		return nil, ErrMeasurementTooShort
	}

	flags := data[0]
	offset := 1
	m := &Measurement{}

	if flags&flagFormatUint16 != 0 {
		if len(data) < offset+2 {
			return nil, ErrMeasurementTooShort
		}
		m.BPM = int(binary.LittleEndian.Uint16(data[offset:]))
		offset += 2
	} else {
		m.BPM = int(data[offset])
		offset++
	}

	if flags&flagContactSupported != 0 {
		m.ContactSupported = true
		m.ContactDetected = flags&flagContactDetected != 0
	}

	if flags&flagEnergyExpendedPresent != 0 {
		if len(data) < offset+2 {
			return nil, ErrMeasurementTooShort
		}
		m.EnergyExpended = binary.LittleEndian.Uint16(data[offset:])
		m.HasEnergyExpended = true
		offset += 2
	}

	if flags&flagRRIntervalsPresent != 0 {
		for offset+2 <= len(data) {
			// RR intervals are in units of 1/1024 s.
			rr := binary.LittleEndian.Uint16(data[offset:])
			m.RRIntervals = append(m.RRIntervals, time.Duration(rr)*time.Second/1024)
			offset += 2
		}
	}

	return m, nil
}
