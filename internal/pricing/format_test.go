package pricing

import (
	"testing"
)

func TestFormatCurrency(t *testing.T) {
	tests := []struct {
		amount   string
		symbol   string
		places   int32
		expected string
	}{
		{"0", "$", 2, "$0.00"},
		{"21", "$", 2, "$21.00"},
		{"1234.5", "$", 2, "$1,234.50"},
		{"1234567.891", "€", 2, "€1,234,567.89"},
		{"-5", "$", 2, "-$5.00"},
		{"-0.001", "$", 2, "$0.00"},
		{"15.5", "JD ", 3, "JD 15.500"},
		{"999.6", "$", 0, "$1,000"},
	}

	for _, tt := range tests {
		t.Run(tt.expected, func(t *testing.T) {
			got := FormatCurrency(d(tt.amount), tt.symbol, tt.places)
			if got != tt.expected {
				t.Errorf("Expected %q, got %q", tt.expected, got)
			}
		})
	}
}
