package astro_test

import (
	"math"
	"testing"
	"time"

	satellite "github.com/joshuaferrara/go-satellite"

	"github.com/star/starfix/internal/astro"
	"github.com/star/starfix/internal/timescale"
)

// TestGMST validates GMST evaluated on the UT1 Julian date the service uses
// against go-satellite's GSTimeFromDate, which implements the same IAU-82
// model. The dates fall in the leap-second era where UT1 and the calendar
// UTC fields coincide.
func TestGMST(t *testing.T) {
	tests := []struct {
		name string
		time time.Time
	}{
		{"J2000.0 epoch", time.Date(2000, 1, 1, 12, 0, 0, 0, time.UTC)},
		{"Vallado example date", time.Date(2004, 4, 6, 7, 51, 28, 0, time.UTC)},
		{"recent date 2026", time.Date(2026, 2, 6, 4, 1, 0, 0, time.UTC)},
		{"first leap-second year", time.Date(1972, 7, 19, 23, 59, 59, 0, time.UTC)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ut1 := timescale.FromTime(tt.time).UT1()
			our := astro.GMST(ut1.Whole, ut1.Fraction)
			ref := satellite.GSTimeFromDate(
				tt.time.Year(), int(tt.time.Month()), tt.time.Day(),
				tt.time.Hour(), tt.time.Minute(), tt.time.Second(),
			)

			diff := math.Abs(our - ref)
			if diff > math.Pi {
				diff = 2*math.Pi - diff
			}
			// 1e-8 radians ≈ 0.06 arcsec.
			if diff > 1e-8 {
				t.Errorf("GMST(%v) = %.12f rad, go-satellite = %.12f rad (diff=%.2e)", tt.time, our, ref, diff)
			}
		})
	}
}

// TestGMSTBeforeLeapSeconds checks that before 1972 the rotation angle
// follows UT1 rather than the UTC calendar fields.
func TestGMSTBeforeLeapSeconds(t *testing.T) {
	in := timescale.FromTime(time.Date(1955, 7, 19, 23, 59, 59, 0, time.UTC))
	ut1, utc := in.UT1(), in.UTC()
	offsetSec := (ut1.DaysSinceJ2000() - utc.DaysSinceJ2000()) * 86400

	got := astro.GMST(ut1.Whole, ut1.Fraction) - astro.GMST(utc.Whole, utc.Fraction)
	got = math.Remainder(got, 2*math.Pi)
	// One UT1 second turns the Earth by 1.00273791 sidereal seconds.
	want := offsetSec * 1.00273791 / 86400 * 2 * math.Pi
	if math.Abs(got-want) > 1e-9 {
		t.Errorf("GMST(UT1) − GMST(UTC) = %.3e rad, want %.3e rad", got, want)
	}
	if offsetSec < 5 {
		t.Errorf("UT1 − UTC in 1955 = %.3f s, want several seconds", offsetSec)
	}
}
