// Package automaton implements a byte-wise Aho–Corasick automaton (spec
// §3 "Automaton state", §4.5): a compact DFA over 256 byte edges with
// longest-match reporting restricted to explicit (inserted) edges.
package automaton

// node is a build-time trie node. Nodes are discarded once Build freezes
// the automaton into the flat goto/explicit/vocabID arrays below.
type node struct {
	next     [256]int // -1 if absent
	explicit [4]uint64 // bitset: explicit[b/64] bit (b%64)
	fail     int
	vocabID  int // -1 if this state doesn't accept
	length   int // byte length of the keyword accepted here, if any
}

func newNode() *node {
	n := &node{}
	for i := range n.next {
		n.next[i] = -1
	}
	n.vocabID = -1
	return n
}

func (n *node) setExplicit(b byte) {
	n.explicit[b/64] |= 1 << (b % 64)
}

func (n *node) isExplicit(b byte) bool {
	return n.explicit[b/64]&(1<<(b%64)) != 0
}

// Builder accumulates keywords before Build freezes them into an
// Automaton. Create one with NewBuilder; the zero value has no root
// state and cannot be used.
type Builder struct {
	nodes []*node
}

// NewBuilder returns a Builder with only the root state.
func NewBuilder() *Builder {
	b := &Builder{}
	b.nodes = append(b.nodes, newNode())
	return b
}

// Insert adds keyword (as raw bytes) to the trie, associating it with
// vocabID. Edges created by insertion are marked explicit; inserting the
// same keyword twice overwrites its vocabID.
func (b *Builder) Insert(keyword []byte, vocabID int) {
	cur := 0
	for _, c := range keyword {
		n := b.nodes[cur]
		next := n.next[c]
		if next == -1 {
			b.nodes = append(b.nodes, newNode())
			next = len(b.nodes) - 1
			n.next[c] = next
			n.setExplicit(c)
		}
		cur = next
	}
	b.nodes[cur].vocabID = vocabID
	b.nodes[cur].length = len(keyword)
}

// Automaton is the frozen, immutable form of the trie: flat arrays
// addressed by state index, safe to share across goroutines without
// synchronization (spec §5).
type Automaton struct {
	numStates int
	goTo      []int32   // numStates*256
	explicit  []uint64  // numStates*4
	vocabID   []int32   // numStates, -1 if none
	length    []int32   // numStates, byte length of accepted keyword
}

// Build computes failure links via BFS and flattens the trie into an
// Automaton. After Build, goTo is fully populated (every entry defined,
// non-explicit entries filled in from the failure link) but the explicit
// bitset still reflects only the originally inserted edges, which is
// what Search uses to refuse failure-link fallbacks.
func (b *Builder) Build() *Automaton {
	n := len(b.nodes)
	nodes := b.nodes

	// BFS to compute fail links, in the classic Aho-Corasick order: a
	// node's fail link is only valid once its parent's is resolved.
	queue := make([]int, 0, n)
	nodes[0].fail = 0
	for c := 0; c < 256; c++ {
		if nodes[0].next[c] == -1 {
			nodes[0].next[c] = 0
		} else {
			queue = append(queue, nodes[0].next[c])
			nodes[nodes[0].next[c]].fail = 0
		}
	}
	for qi := 0; qi < len(queue); qi++ {
		s := queue[qi]
		sn := nodes[s]
		for c := 0; c < 256; c++ {
			u := sn.next[c]
			if u == -1 {
				// No explicit edge: fold in the failure link's
				// transition so Search never needs a fallback loop.
				sn.next[c] = nodes[sn.fail].next[c]
				continue
			}
			// Explicit edge: compute its fail link from the parent's
			// fail link's transition on the same byte.
			nodes[u].fail = nodes[sn.fail].next[c]
			queue = append(queue, u)
		}
	}

	a := &Automaton{
		numStates: n,
		goTo:      make([]int32, n*256),
		explicit:  make([]uint64, n*4),
		vocabID:   make([]int32, n),
		length:    make([]int32, n),
	}
	for s := 0; s < n; s++ {
		sn := nodes[s]
		for c := 0; c < 256; c++ {
			a.goTo[s*256+c] = int32(sn.next[c])
		}
		copy(a.explicit[s*4:s*4+4], sn.explicit[:])
		a.vocabID[s] = int32(sn.vocabID)
		a.length[s] = int32(sn.length)
	}
	return a
}

// NumStates returns the number of states in the frozen automaton.
func (a *Automaton) NumStates() int { return a.numStates }

// Arrays exposes the frozen flat representation for serialization
// (package cache). The returned slices must not be mutated.
func (a *Automaton) Arrays() (goTo []int32, explicit []uint64, vocabID []int32, length []int32) {
	return a.goTo, a.explicit, a.vocabID, a.length
}

// FromArrays reconstructs an Automaton from previously-serialized flat
// arrays (package cache). Callers must ensure the arrays are consistent
// with numStates (goTo has numStates*256 entries, explicit has
// numStates*4, vocabID and length have numStates each).
func FromArrays(numStates int, goTo []int32, explicit []uint64, vocabID []int32, length []int32) *Automaton {
	return &Automaton{
		numStates: numStates,
		goTo:      goTo,
		explicit:  explicit,
		vocabID:   vocabID,
		length:    length,
	}
}

func (a *Automaton) isExplicit(state int, c byte) bool {
	word := a.explicit[state*4+int(c/64)]
	return word&(1<<(c%64)) != 0
}

// Search returns the longest prefix of bytes[start:] that is an
// accepting state reachable using only explicit edges from the root
// (spec §4.5). It returns (0, -1) when the root has no explicit edge for
// bytes[start] (AC-2), and (len(k), id) for any inserted keyword k found
// at the start of bytes[start:] (AC-1).
func (a *Automaton) Search(data []byte, start int) (matchedLen int, matchedID int) {
	state := 0
	matchedID = -1
	matchedLen = 0
	pos := start
	for pos < len(data) {
		c := data[pos]
		if !a.isExplicit(state, c) {
			break
		}
		state = int(a.goTo[state*256+int(c)])
		pos++
		if a.vocabID[state] != -1 {
			matchedID = int(a.vocabID[state])
			matchedLen = pos - start
		}
	}
	return matchedLen, matchedID
}
