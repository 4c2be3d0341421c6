package slots

import (
	"errors"
	"strconv"
	"testing"
)

func TestParseDuration(t *testing.T) {
	tests := []struct {
		name     string
		expr     string
		wantDays int
		wantText string
		wantErr  bool
	}{
		{name: "one day", expr: "1d", wantDays: 1, wantText: "1 d"},
		{name: "default week", expr: "1w", wantDays: 7, wantText: "1 w"},
		{name: "month", expr: "1m", wantDays: 30, wantText: "1 m"},
		{name: "combined", expr: "1m2w3d", wantDays: 47, wantText: "1 m, 2 w, 3 d"},
		{name: "spaces and commas", expr: " 2w, 1d ", wantDays: 15, wantText: "2 w, 1 d"},
		{name: "upper case unit", expr: "2W", wantDays: 14, wantText: "2 w"},
		{name: "zero plus days", expr: "0w1d", wantDays: 1, wantText: "0 w, 1 d"},
		{name: "empty", expr: "", wantErr: true},
		{name: "unit-less", expr: "7", wantErr: true},
		{name: "unknown unit", expr: "1y", wantErr: true},
		{name: "garbage between tokens", expr: "1wxx2d", wantErr: true},
		{name: "trailing garbage", expr: "1w!", wantErr: true},
		{name: "negative", expr: "-1d", wantErr: true},
		{name: "zero total", expr: "0d", wantErr: true},
		{name: "too long", expr: "200m", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseDuration(tt.expr)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseDuration(%q) error = %v, wantErr %v", tt.expr, err, tt.wantErr)
			}
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidDuration) {
					t.Errorf("ParseDuration(%q) error = %v, want ErrInvalidDuration", tt.expr, err)
				}
				return
			}
			if got.Days != tt.wantDays {
				t.Errorf("ParseDuration(%q).Days = %d, want %d", tt.expr, got.Days, tt.wantDays)
			}
			if got.Text() != tt.wantText {
				t.Errorf("ParseDuration(%q).Text() = %q, want %q", tt.expr, got.Text(), tt.wantText)
			}
		})
	}
}

func TestParseDuration_SumsTokens(t *testing.T) {
	factors := map[string]int{"d": 1, "w": 7, "m": 30}
	for unit, factor := range factors {
		for n := 1; n <= 12; n++ {
			got, err := ParseDuration(strconv.Itoa(n) + unit + "1d")
			if err != nil {
				t.Fatalf("unexpected error for %d%s: %v", n, unit, err)
			}
			if want := n*factor + 1; got.Days != want {
				t.Errorf("%d%s1d = %d days, want %d", n, unit, got.Days, want)
			}
		}
	}
}

