package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fitalumni/alumni/internal/pkg/apperrors"
)

func TestSalaryDisplay(t *testing.T) {
	tests := []struct {
		name       string
		min, max   string
		currency   string
		negotiable bool
		want       string
	}{
		{"range", "10000000", "15000000", "", false, "10,000,000 - 15,000,000 VND"},
		{"separators accepted", "10,000,000", "15,000,000", "VND", false, "10,000,000 - 15,000,000 VND"},
		{"min only", "8000000", "", "", false, "Từ 8,000,000 VND"},
		{"max only", "", "2000", "USD", false, "Đến 2,000 USD"},
		{"negotiable wins", "1", "2", "", true, SalaryNegotiable},
		{"small amounts", "500", "999", "", false, "500 - 999 VND"},
		{"nothing", "", "", "", false, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := SalaryDisplay(tt.min, tt.max, tt.currency, tt.negotiable)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)

			again, err := SalaryDisplay(tt.min, tt.max, tt.currency, tt.negotiable)
			require.NoError(t, err)
			assert.Equal(t, got, again)
		})
	}
}

func TestSalaryDisplayRejects(t *testing.T) {
	for _, in := range [][2]string{{"20", "10"}, {"-5", ""}, {"", "abc"}, {"1.5", ""}} {
		_, err := SalaryDisplay(in[0], in[1], "", false)
		assert.ErrorIs(t, err, apperrors.ErrValidationFailed, "min=%q max=%q", in[0], in[1])
	}
}

func TestGroupThousands(t *testing.T) {
	assert.Equal(t, "0", groupThousands(0))
	assert.Equal(t, "1,000", groupThousands(1000))
	assert.Equal(t, "123,456,789", groupThousands(123456789))
	assert.Equal(t, "12,345", groupThousands(12345))
}
