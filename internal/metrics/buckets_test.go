// internal/metrics/buckets_test.go
package metrics

import (
	"testing"
	"time"
)

func TestComputeBuckets_UTC(t *testing.T) {
	at := time.Date(2023, 10, 1, 0, 0, 0, 0, time.UTC)

	b := ComputeBuckets(at, time.UTC, true)

	if b.Daily != 1696118400 {
		t.Errorf("Daily = %d, want 1696118400", b.Daily)
	}
	if !b.HasHourly {
		t.Fatal("HasHourly = false, want true")
	}
	if b.Hourly != 1696118400 {
		t.Errorf("Hourly = %d, want 1696118400", b.Hourly)
	}
}

func TestComputeBuckets_MidDay(t *testing.T) {
	// 2023-10-01T14:37:21Z floors to midnight / 14:00
	at := time.Date(2023, 10, 1, 14, 37, 21, 0, time.UTC)

	b := ComputeBuckets(at, time.UTC, true)

	if b.Daily != 1696118400 {
		t.Errorf("Daily = %d, want 1696118400", b.Daily)
	}
	if b.Hourly != 1696118400+14*3600 {
		t.Errorf("Hourly = %d, want %d", b.Hourly, 1696118400+14*3600)
	}
}

func TestComputeBuckets_HourlyDisabled(t *testing.T) {
	at := time.Date(2023, 10, 1, 14, 0, 0, 0, time.UTC)

	b := ComputeBuckets(at, time.UTC, false)

	if b.HasHourly {
		t.Error("HasHourly = true, want false")
	}
}

func TestComputeBuckets_DSTSpringForward(t *testing.T) {
	loc, err := time.LoadLocation("America/New_York")
	if err != nil {
		t.Fatalf("LoadLocation() error = %v", err)
	}

	// 2023-03-12T07:30:00Z is 03:30 EDT, just after the spring-forward
	// transition (02:00 EST -> 03:00 EDT at 07:00Z).
	at := time.Unix(1678606200, 0)

	b := ComputeBuckets(at, loc, true)

	// Local midnight re-expressed with the post-transition offset (EDT, -4):
	// 2023-03-12T04:00:00Z.
	if b.Daily != 1678593600 {
		t.Errorf("Daily = %d, want 1678593600", b.Daily)
	}
	// Local hour start 03:00 EDT = 2023-03-12T07:00:00Z.
	if b.Hourly != 1678604400 {
		t.Errorf("Hourly = %d, want 1678604400", b.Hourly)
	}
}

func TestComputeBuckets_NonUTCZoneOffset(t *testing.T) {
	// Kathmandu is UTC+5:45: hour flooring must respect the :45 offset.
	loc, err := time.LoadLocation("Asia/Kathmandu")
	if err != nil {
		t.Fatalf("LoadLocation() error = %v", err)
	}

	// 2023-10-01T10:00:00Z = 15:45 local; local hour start 15:00 = 09:15Z.
	at := time.Date(2023, 10, 1, 10, 0, 0, 0, time.UTC)

	b := ComputeBuckets(at, loc, true)

	wantHourly := time.Date(2023, 10, 1, 9, 15, 0, 0, time.UTC).Unix()
	if b.Hourly != wantHourly {
		t.Errorf("Hourly = %d, want %d", b.Hourly, wantHourly)
	}

	// Local midnight 2023-10-01T00:00+05:45 = 2023-09-30T18:15Z.
	wantDaily := time.Date(2023, 9, 30, 18, 15, 0, 0, time.UTC).Unix()
	if b.Daily != wantDaily {
		t.Errorf("Daily = %d, want %d", b.Daily, wantDaily)
	}
}
