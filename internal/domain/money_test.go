package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFormatMoney(t *testing.T) {
	tests := []struct {
		cents int64
		want  string
	}{
		{0, "0.00"},
		{5, "0.05"},
		{200000, "2000.00"},
		{20200000, "202000.00"},
		{123456789, "1234567.89"},
		{-150, "-1.50"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, FormatMoney(tt.cents))
	}
}

func TestGrossAmount(t *testing.T) {
	assert.Equal(t, int64(202000), GrossAmount(20200000))
	assert.Equal(t, int64(101), GrossAmount(10050))
	assert.Equal(t, int64(100), GrossAmount(10049))
	assert.Equal(t, int64(0), GrossAmount(0))
}

func TestNewPricing(t *testing.T) {
	p := NewPricing(10000000, 2)

	assert.Equal(t, int64(10000000), p.UnitPriceCents)
	assert.Equal(t, int64(20000000), p.SubtotalCents)
	assert.Equal(t, ServiceFeeCents, p.ServiceFeeCents)
	assert.Equal(t, "202000.00", FormatMoney(p.GrandTotalCents))
}
