package clock

import "time"

// Clock supplies the current time, the current local date string used to
// scope persisted counters, and the weekday index used for daily limit
// lookup. The engine never reads the system clock directly so that tests
// can drive time deterministically.
type Clock interface {
	// Now returns the current time.
	Now() time.Time
	// Today returns the current local date as YYYY-MM-DD.
	Today() string
	// Weekday returns the current weekday, 0 = Monday ... 6 = Sunday.
	Weekday() int
}

type systemClock struct{}

// System returns a Clock backed by the local system time.
func System() Clock {
	return systemClock{}
}

func (systemClock) Now() time.Time {
	return time.Now()
}

func (systemClock) Today() string {
	return time.Now().Format("2006-01-02")
}

func (systemClock) Weekday() int {
	return WeekdayIndex(time.Now())
}

// WeekdayIndex converts a time to the 0 = Monday ... 6 = Sunday index used
// by the settings keys.
func WeekdayIndex(t time.Time) int {
	wd := int(t.Weekday()) // Go: 0 = Sunday
	if wd == 0 {
		return 6
	}
	return wd - 1
}

// Fake is a manually advanced Clock for tests.
type Fake struct {
	Current time.Time
}

// NewFake returns a Fake positioned at the given time.
func NewFake(t time.Time) *Fake {
	return &Fake{Current: t}
}

func (f *Fake) Now() time.Time {
	return f.Current
}

func (f *Fake) Today() string {
	return f.Current.Format("2006-01-02")
}

func (f *Fake) Weekday() int {
	return WeekdayIndex(f.Current)
}

// Advance moves the fake clock forward.
func (f *Fake) Advance(d time.Duration) {
	f.Current = f.Current.Add(d)
}
