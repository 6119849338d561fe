package filter

import "testing"

func TestGlobFrom(t *testing.T) {
	tests := []struct {
		pattern string
		target  string
		start   int
		want    bool
	}{
		{"banner", "xbannery", 1, true},
		{"banner", "xbannery", 0, false},
		{"ban*ner", "banXXXner", 0, true},
		{"ban*ner", "banner", 0, true},
		{"*x", "aaax", 0, true},
		{"*x", "aaay", 0, false},
		{"x*", "x", 0, true},
		{"abc", "ab", 0, false},
		// '^' is a separator or end of target
		{"a^", "a/", 0, true},
		{"a^", "a:", 0, true},
		{"a^", "a", 0, true},
		{"a^", "ab", 0, false},
		{"a^", "a-", 0, false},
		{"a^b", "a/b", 0, true},
		// pattern need not consume the whole target
		{"ads", "ads.example.com", 0, true},
	}

	for _, tt := range tests {
		if got := globFrom(tt.pattern, tt.target, tt.start); got != tt.want {
			t.Errorf("globFrom(%q, %q, %d) = %v, want %v", tt.pattern, tt.target, tt.start, got, tt.want)
		}
	}
}

func TestIsSeparator(t *testing.T) {
	separators := []byte{'/', ':', '?', '=', '&', ' '}
	for _, c := range separators {
		if !isSeparator(c) {
			t.Errorf("expected %q to be a separator", c)
		}
	}

	hostChars := []byte{'a', 'z', '0', '9', '.', '-', '_', '%'}
	for _, c := range hostChars {
		if isSeparator(c) {
			t.Errorf("expected %q not to be a separator", c)
		}
	}
}
