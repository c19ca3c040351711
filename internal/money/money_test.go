package money

import "testing"

func TestParseMinor(t *testing.T) {
	cases := []struct {
		input string
		want  int64
	}{
		{"0.01", 1},
		{"1", 100},
		{"1.5", 150},
		{"12.34", 1234},
		{"-3.25", -325},
		{"+7", 700},
		{".50", 50},
	}
	for _, tc := range cases {
		got, err := ParseMinor(tc.input)
		if err != nil {
			t.Fatalf("ParseMinor(%q): unexpected error: %v", tc.input, err)
		}
		if got != tc.want {
			t.Fatalf("ParseMinor(%q) = %d, want %d", tc.input, got, tc.want)
		}
	}
}

func TestParseMinorRejectsBadInput(t *testing.T) {
	for _, input := range []string{"", "abc", "1.2.3", "1,50"} {
		if _, err := ParseMinor(input); err == nil {
			t.Fatalf("expected error for %q", input)
		}
	}
	if _, err := ParseMinor("1.005"); err != ErrTooManyDecimals {
		t.Fatalf("expected ErrTooManyDecimals, got %v", err)
	}
}

func TestFormatMinor(t *testing.T) {
	cases := []struct {
		input int64
		want  string
	}{
		{0, "0.00"},
		{1, "0.01"},
		{150, "1.50"},
		{1234, "12.34"},
		{-325, "-3.25"},
	}
	for _, tc := range cases {
		if got := FormatMinor(tc.input); got != tc.want {
			t.Fatalf("FormatMinor(%d) = %q, want %q", tc.input, got, tc.want)
		}
	}
}

func TestParseFormatRoundTrip(t *testing.T) {
	for _, value := range []int64{0, 1, 99, 100, 12345, -6789} {
		parsed, err := ParseMinor(FormatMinor(value))
		if err != nil {
			t.Fatalf("round trip %d: %v", value, err)
		}
		if parsed != value {
			t.Fatalf("round trip %d produced %d", value, parsed)
		}
	}
}
