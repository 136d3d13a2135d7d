package models

import (
	"errors"
	"fmt"
	"time"
)

var (
	ErrInvalidMonth = errors.New("month must be between 1 and 12")
	ErrInvalidYear  = errors.New("year must be between 1970 and 9999")
)

// Period is a (month, year) pair; payments and expenses are keyed by it.
type Period struct {
	Month int `bson:"month" json:"month"`
	Year  int `bson:"year" json:"year"`
}

// PeriodOf returns the period containing t.
func PeriodOf(t time.Time) Period {
	return Period{Month: int(t.Month()), Year: t.Year()}
}

func (p Period) Validate() error {
	if p.Month < 1 || p.Month > 12 {
		return ErrInvalidMonth
	}
	if p.Year < 1970 || p.Year > 9999 {
		return ErrInvalidYear
	}
	return nil
}

// Key is the document key used for the member payment map, e.g. "2024-03".
func (p Period) Key() string {
	return fmt.Sprintf("%04d-%02d", p.Year, p.Month)
}

func (p Period) Previous() Period {
	if p.Month == 1 {
		return Period{Month: 12, Year: p.Year - 1}
	}
	return Period{Month: p.Month - 1, Year: p.Year}
}

// Before reports whether p is strictly earlier than o.
func (p Period) Before(o Period) bool {
	if p.Year != o.Year {
		return p.Year < o.Year
	}
	return p.Month < o.Month
}

func (p Period) String() string {
	return p.Key()
}

// TrailingPeriods returns n periods ending at end, oldest first.
func TrailingPeriods(end Period, n int) []Period {
	if n <= 0 {
		return nil
	}
	out := make([]Period, n)
	p := end
	for i := n - 1; i >= 0; i-- {
		out[i] = p
		p = p.Previous()
	}
	return out
}
