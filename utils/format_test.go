package utils

import "testing"

func TestFormatPriceBRL(t *testing.T) {
	cases := []struct {
		in   float64
		want string
	}{
		{350000, "R$ 350.000,00"},
		{1250.5, "R$ 1.250,50"},
		{999.99, "R$ 999,99"},
		{0, "R$ 0,00"},
		{1000000, "R$ 1.000.000,00"},
		{12, "R$ 12,00"},
	}

	for _, c := range cases {
		if got := FormatPriceBRL(c.in); got != c.want {
			t.Errorf("FormatPriceBRL(%v) = %q, want %q", c.in, got, c.want)
		}
	}
}
