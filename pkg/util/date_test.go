package util

import (
	"testing"
	"time"
)

func TestDateOnly(t *testing.T) {
	in := time.Date(2025, 3, 14, 15, 9, 26, 535000000, time.FixedZone("CET", 3600))
	got := DateOnly(in)
	want := time.Date(2025, 3, 14, 0, 0, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Fatalf("unexpected date %v", got)
	}
}

func TestDateOnlyCrossesMidnight(t *testing.T) {
	// 00:30 CET is still the previous day in UTC
	in := time.Date(2025, 3, 14, 0, 30, 0, 0, time.FixedZone("CET", 3600))
	got := DateOnly(in)
	want := time.Date(2025, 3, 13, 0, 0, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Fatalf("unexpected date %v", got)
	}
}

func TestFormatParseRoundTrip(t *testing.T) {
	s := "2025-03-14"
	parsed, err := ParseDate(s)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if FormatDate(parsed) != s {
		t.Fatalf("unexpected format %q", FormatDate(parsed))
	}
}
