package plate

import "testing"

func TestNormalizeOCR(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want string
	}{
		{"letter O becomes zero", "O12", "012"},
		{"chained confusions", "IS2Z", "1522"},
		{"plain plate untouched", "MH-12 AB 1234", "MH12AB1234"},
		{"lowercase upper-cased first", "o1s", "015"},
		{"punctuation stripped", "KA.01-AB/9999", "KA01AB9999"},
		{"empty", "", ""},
		{"symbols only", "!@# $%", ""},
		{"unicode noise dropped", "МН12", "12"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NormalizeOCR(tt.raw)
			if got != tt.want {
				t.Errorf("NormalizeOCR(%q) = %q, want %q", tt.raw, got, tt.want)
			}
		})
	}
}

func TestNormalizeOCRIdempotent(t *testing.T) {
	inputs := []string{"O12", "IS2Z", "MH-12 AB 1234", "", "o s i z", "DL8CAF5031"}
	for _, raw := range inputs {
		once := NormalizeOCR(raw)
		twice := NormalizeOCR(once)
		if once != twice {
			t.Errorf("NormalizeOCR not idempotent for %q: %q != %q", raw, once, twice)
		}
	}
}

func TestNormalizeOCRCharset(t *testing.T) {
	inputs := []string{"ab-12 ё*", "  OISZ  ", "plate#42", "\t\nKL 07"}
	for _, raw := range inputs {
		got := NormalizeOCR(raw)
		for _, r := range got {
			if !(r >= 'A' && r <= 'Z') && !(r >= '0' && r <= '9') {
				t.Errorf("NormalizeOCR(%q) = %q contains %q outside [A-Z0-9]", raw, got, r)
			}
		}
	}
}

func TestNormalizeBasic(t *testing.T) {
	tests := []struct {
		raw  string
		want string
	}{
		// The region path never corrects OCR confusions.
		{"OSI2", "OSI2"},
		{" ab-12 ", "AB12"},
		{"o i s z", "OISZ"},
		{"", ""},
	}

	for _, tt := range tests {
		if got := NormalizeBasic(tt.raw); got != tt.want {
			t.Errorf("NormalizeBasic(%q) = %q, want %q", tt.raw, got, tt.want)
		}
	}
}
