// internal/metrics/buckets.go
package metrics

import (
	"time"

	"github.com/solatis/tallykeeper/internal/types"
)

// Buckets holds the per-event time-bucket timestamps. Computed once per
// event; every metric generated for the event shares them.
type Buckets struct {
	// Daily is the Unix timestamp of the event's local midnight.
	Daily int64
	// Hourly is the Unix timestamp of the event's local hour start.
	// Valid only when HasHourly.
	Hourly    int64
	HasHourly bool
}

// ComputeBuckets derives the daily (and optionally hourly) bucket for an
// instant in the given timezone.
//
// Both buckets floor using the zone's UTC offset at the event instant:
// bucket = instant - elapsed local clock time since the boundary. On a DST
// day, instants after the transition re-express local midnight with the
// post-transition offset, so their daily timestamp differs from that of
// instants earlier the same local day; hourly buckets follow the local
// hours without skipping or repeating a timestamp.
func ComputeBuckets(at time.Time, loc *time.Location, storeHourly bool) Buckets {
	local := at.In(loc)
	h, m, s := local.Clock()
	unix := at.Unix()

	b := Buckets{
		Daily: unix - int64(h*3600+m*60+s),
	}
	if storeHourly {
		b.Hourly = unix - int64(m*60+s)
		b.HasHourly = true
	}
	return b
}

// each returns the enabled buckets in emission order: daily first, then
// hourly when enabled.
func (b Buckets) each() []bucketStamp {
	if !b.HasHourly {
		return []bucketStamp{{types.BucketDaily, b.Daily}}
	}
	return []bucketStamp{
		{types.BucketDaily, b.Daily},
		{types.BucketHourly, b.Hourly},
	}
}

type bucketStamp struct {
	kind types.BucketType
	ts   int64
}
