package charset

import "testing"

func TestIsWhitespace(t *testing.T) {
	for _, r := range []rune{' ', '\t', '\n', '\r', 0x00A0, 0x2003, 0x3000} {
		if !IsWhitespace(r) {
			t.Errorf("IsWhitespace(%U) = false, want true", r)
		}
	}
	for _, r := range []rune{'a', '0', 0x2011} {
		if IsWhitespace(r) {
			t.Errorf("IsWhitespace(%U) = true, want false", r)
		}
	}
}

func TestIsControl(t *testing.T) {
	for _, r := range []rune{'\t', '\n', '\r'} {
		if IsControl(r) {
			t.Errorf("IsControl(%U) = true, want false", r)
		}
	}
	for _, r := range []rune{0x0000, 0x001F, 0x007F, 0x200B, 0x202A, 0x2060} {
		if !IsControl(r) {
			t.Errorf("IsControl(%U) = false, want true", r)
		}
	}
}

func TestIsPunctuation(t *testing.T) {
	for _, r := range []rune{'!', ',', ':', '[', '{', 0x3001, 0xFF01, 0x00B7} {
		if !IsPunctuation(r) {
			t.Errorf("IsPunctuation(%U) = false, want true", r)
		}
	}
	for _, r := range []rune{'a', '0', ' '} {
		if IsPunctuation(r) {
			t.Errorf("IsPunctuation(%U) = true, want false", r)
		}
	}
}

func TestIsCJK(t *testing.T) {
	for _, r := range []rune{0x4E2D, 0x6587, 0x3400, 0xF900} {
		if !IsCJK(r) {
			t.Errorf("IsCJK(%U) = false, want true", r)
		}
	}
	for _, r := range []rune{'a', 0x3041 /* hiragana, not CJK per this table */} {
		if IsCJK(r) {
			t.Errorf("IsCJK(%U) = true, want false", r)
		}
	}
}
