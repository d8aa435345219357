package validation

import "testing"

func TestIsValidDate(t *testing.T) {
	cases := []struct {
		date string
		want bool
	}{
		{"01.01.2025", true},
		{"31.12.1999", true},
		{"29.02.2024", true},  // leap year
		{"29.02.2000", true},  // divisible by 400
		{"29.02.2023", false}, // not a leap year
		{"29.02.1900", false}, // divisible by 100 but not 400
		{"31.04.2025", false}, // April has 30 days
		{"00.01.2025", false},
		{"32.01.2025", false},
		{"01.00.2025", false},
		{"01.13.2025", false},
		{"01.01.0999", false}, // year below 1000
		{"01.01.3001", false}, // year above 3000
		{"01.01.1000", true},
		{"01.01.3000", true},
		{"5.1.2025", false}, // padding is mandatory
		{"05-01-2025", false},
		{"05.01.25", false},
		{"05.01.20251", false},
		{"aa.bb.cccc", false},
		{"", false},
	}

	for _, tc := range cases {
		if got := IsValidDate(tc.date); got != tc.want {
			t.Fatalf("IsValidDate(%q) = %v; want %v", tc.date, got, tc.want)
		}
	}
}

func TestParseDate(t *testing.T) {
	day, month, year, ok := ParseDate("29.02.2024")
	if !ok {
		t.Fatalf("expected 29.02.2024 to parse")
	}
	if day != 29 || month != 2 || year != 2024 {
		t.Fatalf("ParseDate = %d.%d.%d; want 29.2.2024", day, month, year)
	}

	if _, _, _, ok := ParseDate("31.04.2025"); ok {
		t.Fatalf("expected 31.04.2025 to be rejected")
	}
}
