package phone

import "testing"

func TestNormalizeE164(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"0912345678", "+84912345678"},
		{"+84912345678", "+84912345678"},
		{"091 234 5678", "+84912345678"},
		{"", ""},
		{"abc", "abc"},
		{"123", "123"},
	}

	for _, tt := range tests {
		if got := NormalizeE164(tt.in); got != tt.want {
			t.Errorf("NormalizeE164(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestIsDialable(t *testing.T) {
	if !IsDialable("0912345678") {
		t.Error("valid VN mobile should be dialable")
	}
	if IsDialable("") || IsDialable("abc") || IsDialable("123") {
		t.Error("garbage should not be dialable")
	}
}
