// Package vocab implements the WordPiece vocabulary store (spec §3, §4.4):
// an ordered token table loaded from a plain-text file, one token per
// line, with id assignment by line order and O(1) lookups in both
// directions.
package vocab

import (
	"bufio"
	"io"
	"os"

	"github.com/edsrzf/mmap-go"
	"github.com/pkg/errors"
)

// Store is an immutable, ordered vocabulary: id_of and token_of are both
// total functions (spec §3). It is safe to share across goroutines once
// built; nothing in Store is mutated after Load returns.
type Store struct {
	tokens  []string       // id -> token, contiguous from 0
	idOf    map[string]int // token -> id, injective
}

// Load reads a vocabulary file: trims trailing whitespace from each line,
// skips blank lines, and assigns the running non-empty-line count as the
// id (spec §6). Files above mmapThreshold (1 MiB) are read via mmap to avoid
// copying the whole vocabulary into the Go heap before scanning it.
func Load(path string) (*Store, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to open vocab file %q", path)
	}
	defer f.Close()

	fi, err := f.Stat()
	if err != nil {
		return nil, errors.Wrapf(err, "failed to stat vocab file %q", path)
	}

	var r io.Reader
	var m mmap.MMap
	if fi.Size() > mmapThreshold {
		m, err = mmap.Map(f, mmap.RDONLY, 0)
		if err != nil {
			return nil, errors.Wrapf(err, "failed to mmap vocab file %q", path)
		}
		defer m.Unmap()
		r = byteReader(m)
	} else {
		r = f
	}
	return loadFrom(r)
}

// mmapThreshold is the file size above which Load prefers mmap over a
// buffered read. Below it the syscall overhead of mmap isn't worth it.
const mmapThreshold = 1 << 20 // 1 MiB

func byteReader(b []byte) io.Reader {
	return &sliceReader{b: b}
}

type sliceReader struct {
	b   []byte
	pos int
}

func (s *sliceReader) Read(p []byte) (int, error) {
	if s.pos >= len(s.b) {
		return 0, io.EOF
	}
	n := copy(p, s.b[s.pos:])
	s.pos += n
	return n, nil
}

// LoadFromReader builds a Store from an already-open reader, for callers
// that have their own file-handling strategy (tests, embedded resources).
func LoadFromReader(r io.Reader) (*Store, error) {
	return loadFrom(r)
}

func loadFrom(r io.Reader) (*Store, error) {
	s := &Store{idOf: make(map[string]int)}
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := trimTrailingWhitespace(scanner.Text())
		if line == "" {
			continue
		}
		id := len(s.tokens)
		if _, exists := s.idOf[line]; exists {
			return nil, errors.Errorf("vocab file contains duplicate token %q", line)
		}
		s.tokens = append(s.tokens, line)
		s.idOf[line] = id
	}
	if err := scanner.Err(); err != nil {
		return nil, errors.Wrap(err, "failed to scan vocab file")
	}
	return s, nil
}

func trimTrailingWhitespace(s string) string {
	end := len(s)
	for end > 0 {
		c := s[end-1]
		if c == ' ' || c == '\t' || c == '\r' || c == '\n' {
			end--
			continue
		}
		break
	}
	return s[:end]
}

// IDOf returns the id of token, or def if token is not present.
func (s *Store) IDOf(token string, def int) int {
	if id, ok := s.idOf[token]; ok {
		return id
	}
	return def
}

// TokenOf returns the token at id, or "" and false if id is out of range.
func (s *Store) TokenOf(id int) (string, bool) {
	if id < 0 || id >= len(s.tokens) {
		return "", false
	}
	return s.tokens[id], true
}

// Len returns the number of tokens in the vocabulary.
func (s *Store) Len() int { return len(s.tokens) }

// Contains reports whether token is present in the vocabulary.
func (s *Store) Contains(token string) bool {
	_, ok := s.idOf[token]
	return ok
}
