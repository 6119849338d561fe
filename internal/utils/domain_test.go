package utils

import (
	"reflect"
	"testing"
)

func TestNormalizeDomain(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Example.COM", "example.com"},
		{"example.com.", "example.com"},
		{"  ads.example.com  ", "ads.example.com"},
		{"EXAMPLE.COM.", "example.com"},
		{"", ""},
		{".", ""},
		// Unicode names map to punycode
		{"пример.рф", "xn--e1afmkfd.xn--p1ai"},
		{"BÜCHER.de", "xn--bcher-kva.de"},
	}

	for _, tt := range tests {
		if got := NormalizeDomain(tt.in); got != tt.want {
			t.Errorf("NormalizeDomain(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestWalkSuffixes(t *testing.T) {
	var got []string
	WalkSuffixes("cdn.ads.example.com", func(s string) bool {
		got = append(got, s)
		return true
	})

	want := []string{"cdn.ads.example.com", "ads.example.com", "example.com", "com"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("expected suffixes %v, got %v", want, got)
	}
}

func TestWalkSuffixes_EarlyStop(t *testing.T) {
	var got []string
	WalkSuffixes("a.b.c", func(s string) bool {
		got = append(got, s)
		return len(got) < 2
	})

	if len(got) != 2 {
		t.Errorf("expected walk to stop after 2 suffixes, visited %v", got)
	}
}

func TestCountLabels(t *testing.T) {
	tests := []struct {
		domain string
		want   int
	}{
		{"", 0},
		{"com", 1},
		{"example.com", 2},
		{"ads.example.com", 3},
	}

	for _, tt := range tests {
		if got := CountLabels(tt.domain); got != tt.want {
			t.Errorf("CountLabels(%q) = %d, want %d", tt.domain, got, tt.want)
		}
	}
}
