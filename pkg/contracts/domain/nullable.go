package domain

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
)

var jsonNull = []byte("null")

// NullFloat is a float64 that may be absent. An absent value means the source
// did not report it, which is different from a reported zero. It serialises
// as JSON null when absent.
type NullFloat struct {
	Float64 float64
	Valid   bool
}

// Float returns a present NullFloat holding v.
func Float(v float64) NullFloat {
	return NullFloat{Float64: v, Valid: true}
}

// Absent returns the absent NullFloat.
func Absent() NullFloat {
	return NullFloat{}
}

// OrZero returns the value, or 0 when absent.
func (n NullFloat) OrZero() float64 {
	if !n.Valid {
		return 0
	}
	return n.Float64
}

// Ptr returns a pointer to the value, or nil when absent.
func (n NullFloat) Ptr() *float64 {
	if !n.Valid {
		return nil
	}
	v := n.Float64
	return &v
}

func (n NullFloat) String() string {
	if !n.Valid {
		return "null"
	}
	return strconv.FormatFloat(n.Float64, 'f', -1, 64)
}

// MarshalJSON implements json.Marshaler. Non-finite values are written as null
// because JSON has no representation for them.
func (n NullFloat) MarshalJSON() ([]byte, error) {
	if !n.Valid || math.IsNaN(n.Float64) || math.IsInf(n.Float64, 0) {
		return jsonNull, nil
	}
	return json.Marshal(n.Float64)
}

// UnmarshalJSON implements json.Unmarshaler.
func (n *NullFloat) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), jsonNull) {
		*n = NullFloat{}
		return nil
	}
	var v float64
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*n = Float(v)
	return nil
}

// NullInt is an int that may be absent, used for year keys that failed to
// parse.
type NullInt struct {
	Int   int
	Valid bool
}

// Int returns a present NullInt holding v.
func Int(v int) NullInt {
	return NullInt{Int: v, Valid: true}
}

func (n NullInt) String() string {
	if !n.Valid {
		return "null"
	}
	return strconv.Itoa(n.Int)
}

// MarshalJSON implements json.Marshaler.
func (n NullInt) MarshalJSON() ([]byte, error) {
	if !n.Valid {
		return jsonNull, nil
	}
	return json.Marshal(n.Int)
}

// UnmarshalJSON implements json.Unmarshaler.
func (n *NullInt) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), jsonNull) {
		*n = NullInt{}
		return nil
	}
	var v int
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*n = Int(v)
	return nil
}
