package money

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestParseMinor(t *testing.T) {
	cases := []struct {
		input   string
		want    int64
		wantErr error
	}{
		{input: "100", want: 10000},
		{input: "100.5", want: 10050},
		{input: "100.55", want: 10055},
		{input: "0.01", want: 1},
		{input: ".5", want: 50},
		{input: "-12.34", want: -1234},
		{input: "+3", want: 300},
		{input: " 6000 ", want: 600000},
		{input: "", wantErr: ErrInvalidAmount},
		{input: "abc", wantErr: ErrInvalidAmount},
		{input: "1.234", wantErr: ErrTooManyDecimals},
		{input: "1.2x", wantErr: ErrInvalidAmount},
	}
	for _, tc := range cases {
		got, err := ParseMinor(tc.input)
		if tc.wantErr != nil {
			if err != tc.wantErr {
				t.Fatalf("ParseMinor(%q): expected %v, got %v", tc.input, tc.wantErr, err)
			}
			continue
		}
		if err != nil {
			t.Fatalf("ParseMinor(%q): unexpected error: %v", tc.input, err)
		}
		if got != tc.want {
			t.Fatalf("ParseMinor(%q) = %d, want %d", tc.input, got, tc.want)
		}
	}
}

func TestFormatMinor(t *testing.T) {
	if got := FormatMinor(132500); got != "1325.00" {
		t.Fatalf("unexpected format: %s", got)
	}
	if got := FormatMinor(-50); got != "-0.50" {
		t.Fatalf("unexpected format: %s", got)
	}
	if got := FormatMinor(5); got != "0.05" {
		t.Fatalf("unexpected format: %s", got)
	}
}

func TestWeeklyProfitMinor(t *testing.T) {
	cases := []struct {
		principal int64
		percent   string
		want      int64
	}{
		// 1000.00 at 2.5%/week -> 25.00
		{principal: 100000, percent: "2.5", want: 2500},
		// 6000.00 at 3%/week -> 180.00
		{principal: 600000, percent: "3", want: 18000},
		{principal: 10000, percent: "2.5", want: 250},
		{principal: 33, percent: "2.5", want: 1},
		// half a minor unit rounds to even
		{principal: 20, percent: "2.5", want: 0},
		{principal: 0, percent: "2.5", want: 0},
	}
	for _, tc := range cases {
		percent := decimal.RequireFromString(tc.percent)
		if got := WeeklyProfitMinor(tc.principal, percent); got != tc.want {
			t.Fatalf("WeeklyProfitMinor(%d, %s) = %d, want %d", tc.principal, tc.percent, got, tc.want)
		}
	}
}

func TestWeeklyProfitNoDriftOverTerm(t *testing.T) {
	percent := decimal.RequireFromString("2.5")
	weekly := WeeklyProfitMinor(100000, percent)
	var total int64
	for week := 0; week < 13; week++ {
		total += weekly
	}
	if total != 32500 {
		t.Fatalf("13 weeks of accrual = %d, want 32500", total)
	}
}

func TestParsePercent(t *testing.T) {
	if _, err := ParsePercent("-1"); err != ErrInvalidPercent {
		t.Fatalf("expected ErrInvalidPercent, got %v", err)
	}
	if _, err := ParsePercent("nope"); err != ErrInvalidPercent {
		t.Fatalf("expected ErrInvalidPercent, got %v", err)
	}
	rate, err := ParsePercent("2.5")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rate.String() != "2.5" {
		t.Fatalf("unexpected rate: %s", rate)
	}
}
