package booking

import (
	"errors"
	"time"
)

const dateLayout = "2006-01-02"

// Date is a resource-local calendar day with no time component.
type Date struct {
	value time.Time
}

func NewDate(year int, month time.Month, day int) Date {
	return Date{value: time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

func ParseDate(s string) (Date, error) {
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		return Date{}, errors.New("date must be formatted as YYYY-MM-DD")
	}
	return Date{value: t}, nil
}

func DateOf(t time.Time) Date {
	return NewDate(t.Year(), t.Month(), t.Day())
}

func (d Date) String() string {
	return d.value.Format(dateLayout)
}

func (d Date) Time() time.Time {
	return d.value
}

func (d Date) Equal(other Date) bool {
	return d.value.Equal(other.value)
}

func (d Date) IsZero() bool {
	return d.value.IsZero()
}
