// Package timescale converts external Unix timestamps into instants that
// carry both an Earth-rotation time (UT1) and a dynamical time (TT/TDB).
//
// The two flavours describe the same physical instant but differ
// numerically by ΔT; sidereal time is evaluated on UT1, ephemeris lookups on
// TT/TDB.
package timescale

import (
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/star/starfix/internal/astro"
)

// ErrInvalidTime is returned for timestamps that are not finite or fall
// outside the representable calendar range.
var ErrInvalidTime = errors.New("invalid time")

const (
	// minUnix is 0001-01-01T00:00:00Z.
	minUnix = -62135596800.0
	// maxUnix is 10000-01-01T00:00:00Z (exclusive).
	maxUnix = 253402300800.0

	unixEpochJD = 2440587.5
	secPerDay   = 86400.0
)

// Instant is a single UTC instant with microsecond resolution.
type Instant struct {
	utc time.Time
}

// Normalize converts Unix seconds (fractional and negative values allowed)
// to an Instant. Fractional seconds are rounded to the nearest microsecond.
func Normalize(unix float64) (Instant, error) {
	if math.IsNaN(unix) || math.IsInf(unix, 0) {
		return Instant{}, fmt.Errorf("%w: timestamp %v is not finite", ErrInvalidTime, unix)
	}
	if unix < minUnix || unix >= maxUnix {
		return Instant{}, fmt.Errorf("%w: timestamp %v outside years 1-9999", ErrInvalidTime, unix)
	}

	sec := math.Floor(unix)
	us := math.RoundToEven((unix - sec) * 1e6)
	if us >= 1e6 {
		sec++
		us -= 1e6
	}
	if sec >= maxUnix {
		return Instant{}, fmt.Errorf("%w: timestamp %v outside years 1-9999", ErrInvalidTime, unix)
	}

	return Instant{utc: time.Unix(int64(sec), int64(us)*1000).UTC()}, nil
}

// FromTime wraps a time.Time, truncating it to microseconds.
func FromTime(t time.Time) Instant {
	return Instant{utc: t.UTC().Truncate(time.Microsecond)}
}

// Time returns the instant as a UTC time.Time.
func (i Instant) Time() time.Time { return i.utc }

// Unix returns the instant as fractional Unix seconds.
func (i Instant) Unix() float64 {
	return float64(i.utc.Unix()) + float64(i.utc.Nanosecond())/1e9
}

// Calendar fields (UTC).

func (i Instant) Year() int         { return i.utc.Year() }
func (i Instant) Month() time.Month { return i.utc.Month() }
func (i Instant) Day() int          { return i.utc.Day() }
func (i Instant) Hour() int         { return i.utc.Hour() }
func (i Instant) Minute() int       { return i.utc.Minute() }
func (i Instant) Second() int       { return i.utc.Second() }

// Microsecond returns the sub-second part in whole microseconds.
func (i Instant) Microsecond() int { return i.utc.Nanosecond() / 1000 }

// FractionalSecond returns Second() plus the sub-second remainder.
func (i Instant) FractionalSecond() float64 {
	return float64(i.utc.Second()) + float64(i.utc.Nanosecond())/1e9
}

// String formats the instant as RFC 3339 with microseconds.
func (i Instant) String() string {
	return i.utc.Format("2006-01-02T15:04:05.000000Z07:00")
}

// DeltaT returns TT − UT1 in seconds at this instant: the leap-second
// offset from 1972 on, the Espenak–Meeus polynomial before.
func (i Instant) DeltaT() float64 {
	if leapEra(i.utc) {
		return i.ttMinusUTC()
	}
	return deltaTPolynomial(decimalYear(i.utc))
}

// ttMinusUTC returns TT − UTC in seconds: TAI − UTC plus 32.184 s.
func (i Instant) ttMinusUTC() float64 {
	return taiMinusUTC(i.utc) + ttMinusTAI
}

// UTC returns the Julian date on the UTC scale.
func (i Instant) UTC() JulianDate {
	return i.julian(0)
}

// UT1 returns the Julian date on the Earth-rotation scale, TT − ΔT. In the
// leap-second era this equals UTC.
func (i Instant) UT1() JulianDate {
	return i.julian(i.ttMinusUTC() - i.DeltaT())
}

// TT returns the Julian date on the Terrestrial Time scale.
func (i Instant) TT() JulianDate {
	return i.julian(i.ttMinusUTC())
}

// TDB returns the Julian date on the Barycentric Dynamical Time scale.
func (i Instant) TDB() JulianDate {
	tt := i.TT()
	g := astro.DegToRad(357.53 + 0.98560028*tt.DaysSinceJ2000())
	offset := 0.001657*math.Sin(g) + 0.000014*math.Sin(2*g)
	return JulianDate{Whole: tt.Whole, Fraction: tt.Fraction + offset/secPerDay}
}

// julian returns the UTC Julian date shifted by offset seconds.
func (i Instant) julian(offset float64) JulianDate {
	secs := i.utc.Unix()
	days := secs / 86400
	rem := secs % 86400
	if rem < 0 {
		rem += 86400
		days--
	}
	frac := (float64(rem) + float64(i.utc.Nanosecond())/1e9 + offset) / secPerDay
	return JulianDate{Whole: unixEpochJD + float64(days), Fraction: frac}
}

// JulianDate is a Julian date split into a whole part and a fraction so
// sub-millisecond resolution survives float64 arithmetic.
type JulianDate struct {
	Whole, Fraction float64
}

// Float returns the Julian date as a single float64.
func (j JulianDate) Float() float64 { return j.Whole + j.Fraction }

// DaysSinceJ2000 returns days elapsed since JD 2451545.0 on this scale.
func (j JulianDate) DaysSinceJ2000() float64 {
	return (j.Whole - astro.J2000) + j.Fraction
}

// Centuries returns Julian centuries since J2000.0 on this scale.
func (j JulianDate) Centuries() float64 {
	return j.DaysSinceJ2000() / astro.DaysPerCentury
}

// decimalYear returns the year with the month midpoint fraction used by the
// ΔT polynomials.
func decimalYear(t time.Time) float64 {
	return float64(t.Year()) + (float64(t.Month())-0.5)/12
}
