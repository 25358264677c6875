package util

import "testing"

func TestContains(t *testing.T) {
	exts := []string{".mp3", ".wav"}
	if !Contains(exts, ".wav") {
		t.Error("expected .wav to be found")
	}
	if Contains(exts, ".WAV") {
		t.Error("Contains is case-sensitive")
	}
	if Contains([]int(nil), 1) {
		t.Error("nil slice contains nothing")
	}
}

func TestCoalesce(t *testing.T) {
	if got := Coalesce("", "whisper", "openai"); got != "whisper" {
		t.Errorf("got %q", got)
	}
	if got := Coalesce(0, 0); got != 0 {
		t.Errorf("got %d", got)
	}
}

func TestMaskSecret(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"", ""},
		{"abc", "***"},
		{"sk-1234567890", "sk-***"},
	}
	for _, tc := range tests {
		if got := MaskSecret(tc.in, 3); got != tc.want {
			t.Errorf("MaskSecret(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}
