package utils

import (
	"testing"
	"time"
)

func TestFormatBytes(t *testing.T) {
	tests := []struct {
		name     string
		bytes    int64
		expected string
	}{
		{name: "zero bytes", bytes: 0, expected: "0 B"},
		{name: "bytes", bytes: 500, expected: "500 B"},
		{name: "kilobytes", bytes: 1024, expected: "1.0 KB"},
		{name: "fractional MB", bytes: 1536 * 1024, expected: "1.5 MB"},
		{name: "gigabytes", bytes: 1024 * 1024 * 1024, expected: "1.0 GB"},
		{name: "caps at TB", bytes: 1024 * 1024 * 1024 * 1024 * 1024, expected: "1024.0 TB"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := FormatBytes(tt.bytes)
			if result != tt.expected {
				t.Errorf("FormatBytes(%d) = %s, want %s", tt.bytes, result, tt.expected)
			}
		})
	}
}

func TestFormatElapsed(t *testing.T) {
	tests := []struct {
		name     string
		d        time.Duration
		expected string
	}{
		{name: "negative", d: -time.Second, expected: "unknown"},
		{name: "milliseconds", d: 850 * time.Millisecond, expected: "850ms"},
		{name: "seconds", d: 4200 * time.Millisecond, expected: "4.2s"},
		{name: "whole minutes", d: 2 * time.Minute, expected: "2m"},
		{name: "minutes with seconds", d: 125 * time.Second, expected: "2m 5s"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := FormatElapsed(tt.d)
			if result != tt.expected {
				t.Errorf("FormatElapsed(%v) = %s, want %s", tt.d, result, tt.expected)
			}
		})
	}
}

func TestIconForCheck(t *testing.T) {
	if IconForCheck(true, true) != "✅" {
		t.Error("2xx check should be a check mark")
	}
	if IconForCheck(true, false) != "⚠️ " {
		t.Error("non-2xx answer should be a warning")
	}
	if IconForCheck(false, false) != "❌" {
		t.Error("unreachable should be a cross")
	}
}

func TestIsLocalhost(t *testing.T) {
	tests := map[string]bool{
		"http://127.0.0.1:8000":   true,
		"http://localhost:8000/":  true,
		"http://[::1]:8000":       true,
		"https://pdf.example.com": false,
		"::not a url::":           false,
	}
	for in, want := range tests {
		if got := IsLocalhost(in); got != want {
			t.Errorf("IsLocalhost(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestDisplayHost(t *testing.T) {
	if got := DisplayHost("http://127.0.0.1:8000"); got != "127.0.0.1:8000" {
		t.Errorf("DisplayHost = %q", got)
	}
	if got := DisplayHost("https://pdf.example.com/api"); got != "pdf.example.com" {
		t.Errorf("DisplayHost = %q", got)
	}
}
