package common

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestFormatMoney(t *testing.T) {
	assert.Equal(t, "$1234.50", FormatMoney(decimal.NewFromFloat(1234.5)))
	assert.Equal(t, "$0.00", FormatMoney(decimal.Zero))
	assert.Equal(t, "$-250.00", FormatMoney(decimal.NewFromInt(-250)))
}

func TestFormatPct(t *testing.T) {
	assert.Equal(t, "25.0%", FormatPct(0.25))
	assert.Equal(t, "+5.0%", FormatSignedPct(0.05))
	assert.Equal(t, "-3.5%", FormatSignedPct(-0.035))
}
