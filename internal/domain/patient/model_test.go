package patient

import (
	"testing"
	"time"
)

func TestAgeAt(t *testing.T) {
	p := Patient{DateOfBirth: time.Date(1990, 6, 15, 0, 0, 0, 0, time.UTC)}

	cases := []struct {
		name string
		at   time.Time
		want int
	}{
		{"day before birthday", time.Date(2026, 6, 14, 0, 0, 0, 0, time.UTC), 35},
		{"on birthday", time.Date(2026, 6, 15, 0, 0, 0, 0, time.UTC), 36},
		{"day after birthday", time.Date(2026, 6, 16, 0, 0, 0, 0, time.UTC), 36},
		{"start of year", time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC), 35},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := p.AgeAt(tc.at); got != tc.want {
				t.Errorf("AgeAt(%s) = %d, want %d", tc.at.Format("2006-01-02"), got, tc.want)
			}
		})
	}
}

func TestFullName(t *testing.T) {
	p := Patient{FirstName: "Maria", LastName: "Santos"}
	if got := p.FullName(); got != "Maria Santos" {
		t.Errorf("FullName() = %q", got)
	}
}
