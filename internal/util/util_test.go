package util

import "testing"

func TestCoalesce(t *testing.T) {
	if got := Coalesce("", "a", "b"); got != "a" {
		t.Errorf("expected 'a', got %q", got)
	}
	if got := Coalesce("", ""); got != "" {
		t.Errorf("expected empty string, got %q", got)
	}
	if got := Coalesce(0, 0, 5); got != 5 {
		t.Errorf("expected 5, got %d", got)
	}
}

func TestParseSize(t *testing.T) {
	cases := []struct {
		in   string
		want int64
	}{
		{"10MB", 10 * 1024 * 1024},
		{"512KB", 512 * 1024},
		{"2GB", 2 * 1024 * 1024 * 1024},
		{"1024", 1024},
		{" 25mb ", 25 * 1024 * 1024},
		{"", 99},
		{"garbage", 99},
	}
	for _, tc := range cases {
		if got := ParseSize(tc.in, 99); got != tc.want {
			t.Errorf("ParseSize(%q): expected %d, got %d", tc.in, tc.want, got)
		}
	}
}
