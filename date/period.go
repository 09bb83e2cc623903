package date

import (
	"fmt"
	"time"

	"github.com/rickar/cal/v2"
	"github.com/rickar/cal/v2/us"
)

// Period is the reporting window of a run, boundaries included.
type Period struct {
	Start Date `json:"start_date"`
	End   Date `json:"end_date"`
}

// NewPeriod returns the period [start, end], or an error if end is before start.
func NewPeriod(start, end Date) (Period, error) {
	if start.IsZero() || end.IsZero() {
		return Period{}, fmt.Errorf("period boundaries must both be set")
	}
	if end.Before(start) {
		return Period{}, fmt.Errorf("invalid period: end %s is before start %s", end, start)
	}
	return Period{Start: start, End: end}, nil
}

// ParsePeriod parses both boundaries in the "DD.MM.YYYY" format.
func ParsePeriod(start, end string) (Period, error) {
	s, err := Parse(start)
	if err != nil {
		return Period{}, fmt.Errorf("start date: %w", err)
	}
	e, err := Parse(end)
	if err != nil {
		return Period{}, fmt.Errorf("end date: %w", err)
	}
	return NewPeriod(s, e)
}

// Token is the period as it appears in artifact names: "<start>__<end>".
func (p Period) Token() string { return p.Start.String() + "__" + p.End.String() }

func (p Period) String() string { return p.Start.String() + ".." + p.End.String() }

// FirstReportDay is the first day a report can cover: the broker has no activity before.
var FirstReportDay = New(2022, time.January, 1)

// holidays are the US public holidays: the markets the reports cover are closed.
var holidays = newHolidays()

func newHolidays() *cal.BusinessCalendar {
	c := cal.NewBusinessCalendar()
	c.AddHoliday(us.Holidays...)
	return c
}

// IsWeekend reports whether d is a Saturday or a Sunday.
func (d Date) IsWeekend() bool {
	wd := d.Weekday()
	return wd == time.Saturday || wd == time.Sunday
}

// Holiday returns the name of the US public holiday falling on d, observed
// days included.
func (d Date) Holiday() (string, bool) {
	actual, observed, h := holidays.IsHoliday(d.time())
	if h == nil || !(actual || observed) {
		return "", false
	}
	if !actual {
		return h.Name + " (observed)", true
	}
	return h.Name, true
}

// IsBusinessDay reports whether d is neither a weekend day nor a holiday.
func (d Date) IsBusinessDay() bool {
	if d.IsWeekend() {
		return false
	}
	_, holiday := d.Holiday()
	return !holiday
}

// NearestBusinessDays returns the closest business days strictly before
// and after d. before is the zero Date if it would fall before FirstReportDay.
func NearestBusinessDays(d Date) (before, after Date) {
	before = d.Add(-1)
	for !before.Before(FirstReportDay) && !before.IsBusinessDay() {
		before = before.Add(-1)
	}
	if before.Before(FirstReportDay) {
		before = Date{}
	}
	after = d.Add(1)
	for !after.IsBusinessDay() {
		after = after.Add(1)
	}
	return before, after
}

// CheckReportPeriod applies the operator rules on a report period: no day
// before FirstReportDay, no weekend or holiday boundary, and end strictly
// after start.
func CheckReportPeriod(p Period) error {
	if p.Start.Before(FirstReportDay) {
		return fmt.Errorf("start %s is before the first report day %s", p.Start, FirstReportDay)
	}
	if !p.End.After(p.Start) {
		return fmt.Errorf("end %s must be after start %s", p.End, p.Start)
	}
	for _, d := range []Date{p.Start, p.End} {
		if d.IsBusinessDay() {
			continue
		}
		what := d.Weekday().String()
		if name, ok := d.Holiday(); ok {
			what = name
		}
		before, after := NearestBusinessDays(d)
		if before.IsZero() {
			return fmt.Errorf("%s is %s, nearest business day is %s", d, what, after)
		}
		return fmt.Errorf("%s is %s, nearest business days are %s and %s", d, what, before, after)
	}
	return nil
}
