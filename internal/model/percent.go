package model

import (
	"encoding/json"
	"fmt"
	"strconv"
)

// Percent is a percentage that may be undefined.
// A ratio over an empty population has no value; Valid is false in that case
// and the value is rendered as "undefined" rather than NaN or 0.
type Percent struct {
	Value float64
	Valid bool
}

// NewPercent returns a defined percentage.
func NewPercent(v float64) Percent {
	return Percent{Value: v, Valid: true}
}

// Ratio returns 100*n/total rounded to one decimal place, or an undefined
// Percent when total is zero.
func Ratio(n, total int) Percent {
	if total == 0 {
		return Percent{}
	}
	return NewPercent(Round1(100 * float64(n) / float64(total)))
}

// Round1 rounds v to one decimal place. The exact binary value of v is
// rounded, and exact halves go to the even digit, so 1.25 becomes 1.2.
func Round1(v float64) float64 {
	r, err := strconv.ParseFloat(strconv.FormatFloat(v, 'f', 1, 64), 64)
	if err != nil {
		return v
	}
	return r
}

// String renders the percentage as "42.5%" or "undefined".
func (p Percent) String() string {
	if !p.Valid {
		return "undefined"
	}
	return fmt.Sprintf("%.1f%%", p.Value)
}

// MarshalJSON encodes a defined percentage as a number and an undefined one as null.
func (p Percent) MarshalJSON() ([]byte, error) {
	if !p.Valid {
		return []byte("null"), nil
	}
	return json.Marshal(p.Value)
}

// UnmarshalJSON implements json.Unmarshaler.
func (p *Percent) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*p = Percent{}
		return nil
	}
	var v float64
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*p = NewPercent(v)
	return nil
}
