package charset

import "testing"

func TestDecodeASCII(t *testing.T) {
	r, n := Decode([]byte("A"))
	if r != 'A' || n != 1 {
		t.Fatalf("Decode(A) = %q, %d", r, n)
	}
}

func TestDecodeMultiByte(t *testing.T) {
	cases := []struct {
		in   string
		want rune
		size int
	}{
		{"é", 0x00e9, 2},   // é
		{"中", 0x4e2d, 3},   // 中
		{"\U0001F600", 0x1F600, 4}, // emoji
	}
	for _, c := range cases {
		r, n := Decode([]byte(c.in))
		if r != c.want || n != c.size {
			t.Errorf("Decode(%q) = %U, %d; want %U, %d", c.in, r, n, c.want, c.size)
		}
	}
}

func TestDecodeInvalid(t *testing.T) {
	cases := [][]byte{
		{0xC0, 0x80},       // overlong NUL
		{0xED, 0xA0, 0x80}, // surrogate
		{0xF5, 0x80, 0x80, 0x80}, // beyond U+10FFFF
		{0xC2},             // truncated
		{0xC2, 0x20},       // bad continuation byte
		{0x80},             // stray continuation byte
	}
	for _, c := range cases {
		r, n := Decode(c)
		if r != 0 || n != 1 {
			t.Errorf("Decode(% x) = %U, %d; want 0, 1", c, r, n)
		}
	}
}

func TestIteratorSkipsInvalid(t *testing.T) {
	buf := append([]byte("ab"), 0x80)
	buf = append(buf, []byte("c")...)
	it := NewIterator(buf)
	var got []rune
	for {
		r, _, ok := it.Next()
		if !ok {
			break
		}
		got = append(got, r)
	}
	want := []rune{'a', 'b', 0, 'c'}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("rune %d: got %U, want %U", i, got[i], want[i])
		}
	}
}
