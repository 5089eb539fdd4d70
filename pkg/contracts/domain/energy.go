package domain

// RawRow is one source record keyed by column name. A missing key means the
// source did not carry the field.
type RawRow map[string]string

// GenerationMix holds electricity generation per source for one year. All
// quantities share the same unit (TWh in the OWID and Ember datasets).
type GenerationMix struct {
	Total   NullFloat `json:"total"`
	Coal    NullFloat `json:"coal"`
	Gas     NullFloat `json:"gas"`
	Oil     NullFloat `json:"oil"`
	Nuclear NullFloat `json:"nuclear"`
	Hydro   NullFloat `json:"hydro"`
	Wind    NullFloat `json:"wind"`
	Solar   NullFloat `json:"solar"`
	Biofuel NullFloat `json:"biofuel"`
	Other   NullFloat `json:"other"` // other renewables
}

// RenewableSum adds the renewable sources. Absent sources count as zero here,
// and only here.
func (g GenerationMix) RenewableSum() float64 {
	return g.Hydro.OrZero() + g.Wind.OrZero() + g.Solar.OrZero() + g.Biofuel.OrZero() + g.Other.OrZero()
}

// YearRecord is the normalized generation mix of the target entity for one
// reporting year.
type YearRecord struct {
	Year       NullInt       `json:"year"`
	Generation GenerationMix `json:"generation"`
}

// Share is the renewable / non-renewable split of total generation, as
// fractions in [0, 1] for well-formed input.
type Share struct {
	Renewable    NullFloat `json:"renewable"`
	NonRenewable NullFloat `json:"nonRenewable"`
}

// Capacity is a placeholder; capacity metrics are not computed.
type Capacity struct{}

// SummaryEntry is one year of the derived summary.
type SummaryEntry struct {
	Year       NullInt       `json:"year"`
	Generation GenerationMix `json:"generation"`
	Share      Share         `json:"share"`
	Capacity   Capacity      `json:"capacity"`
}

// Summary is the persisted artifact: entries ordered by year, newest first.
type Summary []SummaryEntry

// Find returns the first entry for year. The boolean is false when the
// summary holds no such year.
func (s Summary) Find(year int) (SummaryEntry, bool) {
	for _, e := range s {
		if e.Year.Valid && e.Year.Int == year {
			return e, true
		}
	}
	return SummaryEntry{}, false
}

// Years lists the valid years in summary order.
func (s Summary) Years() []int {
	years := make([]int, 0, len(s))
	for _, e := range s {
		if e.Year.Valid {
			years = append(years, e.Year.Int)
		}
	}
	return years
}

// Clone returns a copy that shares no backing array with s.
func (s Summary) Clone() Summary {
	if s == nil {
		return nil
	}
	out := make(Summary, len(s))
	copy(out, s)
	return out
}
