package bpe

import (
	"bufio"
	"encoding/json"
	"io"
	"os"
	"strings"

	"github.com/pkg/errors"
)

// Merges is the ordered BPE merge table (spec §3): rank is the 0-based
// position of a pair among non-skipped lines, with lower rank meaning
// higher priority. Built once at construction and shared read-only
// thereafter.
type Merges struct {
	rank map[pairKey]int
}

type pairKey struct {
	left, right string
}

// LoadMerges reads a merges file (spec §6): blank lines and lines
// starting with '#' are skipped; every remaining line must be exactly
// two whitespace-separated tokens.
func LoadMerges(path string) (*Merges, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to open merges file %q", path)
	}
	defer f.Close()
	return LoadMergesFromReader(f)
}

// LoadMergesFromReader parses merges from an already-open reader.
func LoadMergesFromReader(r io.Reader) (*Merges, error) {
	m := &Merges{rank: make(map[pairKey]int)}
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	rank := 0
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		fields := strings.Fields(line)
		if len(fields) != 2 {
			return nil, errors.Errorf("merges file line %d: expected 2 whitespace-separated tokens, got %d (%q)", lineNo, len(fields), line)
		}
		key := pairKey{fields[0], fields[1]}
		if _, exists := m.rank[key]; exists {
			return nil, errors.Errorf("merges file line %d: duplicate rank for pair (%q, %q)", lineNo, fields[0], fields[1])
		}
		m.rank[key] = rank
		rank++
	}
	if err := scanner.Err(); err != nil {
		return nil, errors.Wrap(err, "failed to scan merges file")
	}
	return m, nil
}

// RankOf returns the rank of (left, right) and whether it has one.
func (m *Merges) RankOf(left, right string) (int, bool) {
	r, ok := m.rank[pairKey{left, right}]
	return r, ok
}

// Len returns the number of merge rules.
func (m *Merges) Len() int { return len(m.rank) }

// Vocab is the BPE vocabulary: a bijection between token string and
// non-negative integer id, loaded from a JSON object (spec §6).
type Vocab struct {
	idOf    map[string]int
	tokenOf map[int]string
}

// LoadVocab reads a BPE vocab file: a JSON object mapping token string
// to integer id. All ids must be non-negative and unique.
func LoadVocab(path string) (*Vocab, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to open BPE vocab file %q", path)
	}
	defer f.Close()
	return LoadVocabFromReader(f)
}

// LoadVocabFromReader parses a BPE vocab from an already-open reader.
func LoadVocabFromReader(r io.Reader) (*Vocab, error) {
	var raw map[string]int
	dec := json.NewDecoder(r)
	if err := dec.Decode(&raw); err != nil {
		return nil, errors.Wrap(err, "BPE vocab file is not a JSON object of string to integer")
	}
	v := &Vocab{
		idOf:    make(map[string]int, len(raw)),
		tokenOf: make(map[int]string, len(raw)),
	}
	for token, id := range raw {
		if id < 0 {
			return nil, errors.Errorf("BPE vocab: token %q has negative id %d", token, id)
		}
		if existing, ok := v.tokenOf[id]; ok {
			return nil, errors.Errorf("BPE vocab: id %d used by both %q and %q", id, existing, token)
		}
		v.idOf[token] = id
		v.tokenOf[id] = token
	}
	return v, nil
}

// IDOf returns the id of token and whether it's present.
func (v *Vocab) IDOf(token string) (int, bool) {
	id, ok := v.idOf[token]
	return id, ok
}

// TokenOf returns the token string for id and whether it's present.
func (v *Vocab) TokenOf(id int) (string, bool) {
	t, ok := v.tokenOf[id]
	return t, ok
}

// Len returns the number of entries in the vocabulary.
func (v *Vocab) Len() int { return len(v.idOf) }
