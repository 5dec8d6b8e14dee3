package heart

import (
	"errors"
	"testing"
	"time"
)

func TestParseMeasurement(t *testing.T) {
	tests := []struct {
		name string
		data []byte
		want Measurement
	}{
		{
			name: "uint8 rate",
			data: []byte{0x00, 72},
			want: Measurement{BPM: 72},
		},
		{
			name: "uint16 rate",
			data: []byte{0x01, 0x2C, 0x01}, // 300 bpm, little-endian
			want: Measurement{BPM: 300},
		},
		{
			name: "contact supported and detected",
			data: []byte{0x06, 65},
			want: Measurement{BPM: 65, ContactSupported: true, ContactDetected: true},
		},
		{
			name: "contact supported, not detected",
			data: []byte{0x04, 65},
			want: Measurement{BPM: 65, ContactSupported: true},
		},
		{
			name: "energy expended",
			data: []byte{0x08, 80, 0x10, 0x00},
			want: Measurement{BPM: 80, EnergyExpended: 16, HasEnergyExpended: true},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseMeasurement(tt.data)
			if err != nil {
				t.Fatalf("ParseMeasurement: %v", err)
			}
			if got.BPM != tt.want.BPM {
				t.Errorf("BPM = %d, want %d", got.BPM, tt.want.BPM)
			}
			if got.ContactSupported != tt.want.ContactSupported ||
				got.ContactDetected != tt.want.ContactDetected {
				t.Errorf("contact = (%v,%v), want (%v,%v)",
					got.ContactSupported, got.ContactDetected,
					tt.want.ContactSupported, tt.want.ContactDetected)
			}
			if got.HasEnergyExpended != tt.want.HasEnergyExpended ||
				got.EnergyExpended != tt.want.EnergyExpended {
				t.Errorf("energy = (%v,%d), want (%v,%d)",
					got.HasEnergyExpended, got.EnergyExpended,
					tt.want.HasEnergyExpended, tt.want.EnergyExpended)
			}
		})
	}
}

func TestParseMeasurementRRIntervals(t *testing.T) {
	// Two RR intervals: 1024/1024s = 1s, 512/1024s = 500ms.
	data := []byte{0x10, 75, 0x00, 0x04, 0x00, 0x02}
	m, err := ParseMeasurement(data)
	if err != nil {
		t.Fatalf("ParseMeasurement: %v", err)
	}
	if len(m.RRIntervals) != 2 {
		t.Fatalf("RR intervals = %d, want 2", len(m.RRIntervals))
	}
	if m.RRIntervals[0] != time.Second {
		t.Errorf("RR[0] = %v, want 1s", m.RRIntervals[0])
	}
	if m.RRIntervals[1] != 500*time.Millisecond {
		t.Errorf("RR[1] = %v, want 500ms", m.RRIntervals[1])
	}
}

func TestParseMeasurementTooShort(t *testing.T) {
	for _, data := range [][]byte{nil, {}, {0x00}, {0x01, 0x50}} {
		if _, err := ParseMeasurement(data); !errors.Is(err, ErrMeasurementTooShort) {
			t.Errorf("ParseMeasurement(%v) err = %v, want ErrMeasurementTooShort", data, err)
		}
	}
}
