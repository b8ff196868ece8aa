package engine

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/rotisserie/eris"
)

// ============================================================================
// TIME WINDOWS — Period ranges and primary/comparison partitioning
// ============================================================================

// TimeMode selects how the comparison period relates to the primary one.
type TimeMode string

const (
	TimeNone TimeMode = "none"
	TimeYoY  TimeMode = "yoy"
	TimeQoQ  TimeMode = "qoq"
)

// ParseTimeMode accepts "none", "yoy", "qoq" and common spellings.
func ParseTimeMode(s string) (TimeMode, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "none", "off":
		return TimeNone, true
	case "yoy", "year-over-year", "year_over_year":
		return TimeYoY, true
	case "qoq", "quarter-over-quarter", "quarter_over_quarter":
		return TimeQoQ, true
	}
	return TimeNone, false
}

// UnmarshalJSON accepts every spelling ParseTimeMode does. null and "" mean
// TimeNone.
func (m *TimeMode) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return eris.Wrap(err, "engine: time mode must be a string")
	}
	mode, ok := ParseTimeMode(s)
	if !ok {
		return eris.Errorf("engine: unknown time mode %q", s)
	}
	*m = mode
	return nil
}

// Period is a calendar year, optionally narrowed to one quarter (1-4).
// A zero Period (Year 0) spans all dates.
type Period struct {
	Year    int `json:"year"`
	Quarter int `json:"quarter,omitempty"`
}

// IsZero reports whether the period is unbounded.
func (p Period) IsZero() bool { return p.Year <= 0 }

// String renders "2024", "Q2 2024" or "All time".
func (p Period) String() string {
	if p.IsZero() {
		return "All time"
	}
	if p.Quarter >= 1 && p.Quarter <= 4 {
		return fmt.Sprintf("Q%d %d", p.Quarter, p.Year)
	}
	return fmt.Sprintf("%d", p.Year)
}

// TimeSelection is the user's period choice.
// With Mode TimeNone only Primary is meaningful.
type TimeSelection struct {
	Mode       TimeMode `json:"mode"`
	Primary    Period   `json:"primary"`
	Comparison Period   `json:"comparison"`
}

// Compares reports whether a comparison set is computed.
func (s TimeSelection) Compares() bool {
	return s.Mode == TimeYoY || s.Mode == TimeQoQ
}

// Resolved fills an unset comparison period with ComparisonPeriod.
func (s TimeSelection) Resolved() TimeSelection {
	if s.Compares() && s.Comparison.IsZero() {
		s.Comparison = ComparisonPeriod(s.Primary, s.Mode)
	}
	return s
}

// DateRange is an inclusive calendar-day range.
type DateRange struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// Contains reports whether t's calendar day falls within [Start, End].
func (r DateRange) Contains(t time.Time) bool {
	d := dayOf(t)
	return !d.Before(r.Start) && !d.After(r.End)
}

// Overlaps reports whether two ranges share at least one day.
func (r DateRange) Overlaps(o DateRange) bool {
	return !r.End.Before(o.Start) && !o.End.Before(r.Start)
}

// String renders "2024-04-01..2024-06-30".
func (r DateRange) String() string {
	return r.Start.Format("2006-01-02") + ".." + r.End.Format("2006-01-02")
}

var (
	minDay = time.Date(1, 1, 1, 0, 0, 0, 0, time.UTC)
	maxDay = time.Date(9999, 12, 31, 0, 0, 0, 0, time.UTC)
)

// DateRangeForPeriod returns the inclusive day range of p: the three months of
// its quarter, or the whole calendar year when no quarter is set.
func DateRangeForPeriod(p Period) DateRange {
	if p.IsZero() {
		return DateRange{Start: minDay, End: maxDay}
	}
	if p.Quarter >= 1 && p.Quarter <= 4 {
		startMonth := time.Month((p.Quarter-1)*3 + 1)
		start := time.Date(p.Year, startMonth, 1, 0, 0, 0, 0, time.UTC)
		end := start.AddDate(0, 3, -1)
		return DateRange{Start: start, End: end}
	}
	return DateRange{
		Start: time.Date(p.Year, time.January, 1, 0, 0, 0, 0, time.UTC),
		End:   time.Date(p.Year, time.December, 31, 0, 0, 0, 0, time.UTC),
	}
}

// ComparisonPeriod derives the default comparison for a primary period:
// the same span one year earlier for YoY, the previous quarter for QoQ.
func ComparisonPeriod(primary Period, mode TimeMode) Period {
	switch mode {
	case TimeYoY:
		return Period{Year: primary.Year - 1, Quarter: primary.Quarter}
	case TimeQoQ:
		if primary.Quarter <= 1 || primary.Quarter > 4 {
			return Period{Year: primary.Year - 1, Quarter: 4}
		}
		return Period{Year: primary.Year, Quarter: primary.Quarter - 1}
	}
	return Period{}
}

// PeriodSets is the result of partitioning records by a TimeSelection.
type PeriodSets struct {
	Primary         []ListingRecord
	Comparison      []ListingRecord
	PrimaryRange    DateRange
	ComparisonRange *DateRange
}

// Partition splits records into the primary and comparison periods.
// With TimeNone the comparison set is empty.
func Partition(records []ListingRecord, sel TimeSelection) PeriodSets {
	sel = sel.Resolved()
	primary := DateRangeForPeriod(sel.Primary)
	out := PeriodSets{
		Primary:      FilterByRange(records, primary),
		PrimaryRange: primary,
	}
	if !sel.Compares() {
		out.Comparison = []ListingRecord{}
		return out
	}

	comparison := DateRangeForPeriod(sel.Comparison)
	out.Comparison = FilterByRange(records, comparison)
	out.ComparisonRange = &comparison
	return out
}

// FilterByRange keeps records whose listing date falls inside r.
func FilterByRange(records []ListingRecord, r DateRange) []ListingRecord {
	out := make([]ListingRecord, 0, len(records))
	for _, rec := range records {
		if r.Contains(rec.Date) {
			out = append(out, rec)
		}
	}
	return out
}

func dayOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
