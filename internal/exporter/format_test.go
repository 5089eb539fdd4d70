package exporter

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"energycli/internal/shared/testutil"
	"energycli/pkg/contracts/domain"
)

func TestFormatFloat(t *testing.T) {
	tests := []struct {
		name     string
		input    domain.NullFloat
		expected string
	}{
		{name: "absent", input: domain.Absent(), expected: ""},
		{name: "zero value", input: domain.Float(0), expected: "0"},
		{name: "integer", input: domain.Float(7600), expected: "7600"},
		{name: "decimal", input: domain.Float(1300.25), expected: "1300.25"},
		{name: "small decimal", input: domain.Float(0.001234), expected: "0.001234"},
		{name: "negative", input: domain.Float(-3.5), expected: "-3.5"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, formatFloat(tt.input))
		})
	}
}

func TestFormatShare(t *testing.T) {
	assert.Equal(t, "", formatShare(domain.Absent()))
	assert.Equal(t, "0.2500", formatShare(domain.Float(0.25)))
	assert.Equal(t, "0.1333", formatShare(domain.Float(2.0/15.0)))
	assert.Equal(t, "1.0000", formatShare(domain.Float(1)))
}

func TestFormatInt(t *testing.T) {
	assert.Equal(t, "", formatInt(domain.NullInt{}))
	assert.Equal(t, "2022", formatInt(domain.Int(2022)))
}

func TestRecords(t *testing.T) {
	records := Records(testutil.SampleSummary())

	assert.Len(t, records, 2)
	for _, r := range records {
		assert.Len(t, r, len(Columns))
	}
	assert.Equal(t,
		[]string{"2022", "200", "", "", "", "", "20", "20", "10", "", "", "0.2500", "0.7500"},
		records[0])
	assert.Equal(t, "2021", records[1][0])
	assert.Equal(t, "0.1500", records[1][11])
	assert.Equal(t, "0.8500", records[1][12])
}

func TestRecords_AbsentYearAndShare(t *testing.T) {
	records := Records(domain.Summary{{
		Generation: domain.GenerationMix{Total: domain.Absent()},
		Share:      domain.Share{Renewable: domain.Absent(), NonRenewable: domain.Absent()},
	}})

	assert.Len(t, records, 1)
	for _, cell := range records[0] {
		assert.Empty(t, cell)
	}
}

func TestRecords_Empty(t *testing.T) {
	records := Records(domain.Summary{})
	assert.NotNil(t, records)
	assert.Empty(t, records)
}
