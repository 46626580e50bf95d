// Package cache persists a compiled Aho–Corasick automaton to a sidecar
// file next to the vocabulary it was built from, so a process that
// restarts (or a fleet of processes sharing a vocabulary on disk) doesn't
// pay the build cost again. It is entirely local: no network I/O, in
// keeping with this module's non-goals.
//
// The locking and atomic-write protocol is the same one the teacher uses
// for coordinating concurrent downloads to a shared cache directory:
// acquire a file lock, write to a uniquely-named temp file, then rename
// into place.
package cache

import (
	"bufio"
	"encoding/binary"
	"os"
	"path"
	"time"

	"github.com/gofrs/flock"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"k8s.io/klog/v2"

	"github.com/vocabforge/tokenize/automaton"
)

const magic = "AHCO"
const formatVersion = 1

// Save writes a serves the frozen automaton's flat arrays to path,
// atomically (temp file + rename) and coordinated by a sibling lock file
// so concurrent writers from multiple processes don't corrupt each other.
func Save(a *automaton.Automaton, filePath string) (err error) {
	lockPath := filePath + ".lock"
	fileLock := flock.New(lockPath)
	if err := fileLock.Lock(); err != nil {
		return errors.Wrapf(err, "while locking %q to write automaton cache", lockPath)
	}
	defer func() {
		if unlockErr := fileLock.Unlock(); unlockErr != nil && err == nil {
			err = errors.Wrapf(unlockErr, "unlocking %q", lockPath)
		}
	}()

	tmpPath := path.Join(path.Dir(filePath), "."+uuid.NewString()+".tmp")
	f, err := os.Create(tmpPath)
	if err != nil {
		return errors.Wrapf(err, "creating temp automaton cache file %q", tmpPath)
	}
	w := bufio.NewWriter(f)
	writeErr := writeAutomaton(w, a)
	if writeErr == nil {
		writeErr = w.Flush()
	}
	closeErr := f.Close()
	if writeErr != nil {
		os.Remove(tmpPath)
		return errors.Wrap(writeErr, "writing automaton cache")
	}
	if closeErr != nil {
		os.Remove(tmpPath)
		return errors.Wrapf(closeErr, "closing temp automaton cache file %q", tmpPath)
	}
	if err := os.Rename(tmpPath, filePath); err != nil {
		os.Remove(tmpPath)
		return errors.Wrapf(err, "renaming temp automaton cache file %q to %q", tmpPath, filePath)
	}
	klog.V(2).Infof("cache: wrote automaton cache %q (%d states)", filePath, a.NumStates())
	return nil
}

// Load reads a previously Saved automaton. It returns an error if the
// file is missing, truncated, or was written by an incompatible format
// version; callers should treat any error as "rebuild instead of load".
func Load(filePath string) (*automaton.Automaton, error) {
	f, err := os.Open(filePath)
	if err != nil {
		return nil, errors.Wrapf(err, "opening automaton cache %q", filePath)
	}
	defer f.Close()
	a, err := readAutomaton(bufio.NewReader(f))
	if err != nil {
		return nil, err
	}
	klog.V(2).Infof("cache: loaded automaton cache %q (%d states)", filePath, a.NumStates())
	return a, nil
}

// Fresh reports whether the cache file at cachePath is at least as new
// as the source vocabulary file at sourcePath, i.e. it's safe to Load
// without rebuilding.
func Fresh(cachePath, sourcePath string) bool {
	cfi, err := os.Stat(cachePath)
	if err != nil {
		return false
	}
	sfi, err := os.Stat(sourcePath)
	if err != nil {
		return false
	}
	return !cfi.ModTime().Before(sfi.ModTime())
}

// touch is exposed for tests that need deterministic mtimes without
// sleeping the real clock.
func touch(path string, t time.Time) error {
	return os.Chtimes(path, t, t)
}

func writeAutomaton(w *bufio.Writer, a *automaton.Automaton) error {
	if _, err := w.WriteString(magic); err != nil {
		return err
	}
	if err := binary.Write(w, binary.LittleEndian, uint32(formatVersion)); err != nil {
		return err
	}
	if err := binary.Write(w, binary.LittleEndian, uint32(a.NumStates())); err != nil {
		return err
	}
	goTo, explicit, vocabID, length := a.Arrays()
	for _, arr := range []any{goTo, explicit, vocabID, length} {
		if err := binary.Write(w, binary.LittleEndian, arr); err != nil {
			return err
		}
	}
	return nil
}

func readAutomaton(r *bufio.Reader) (*automaton.Automaton, error) {
	buf := make([]byte, 4)
	if _, err := readFull(r, buf); err != nil {
		return nil, errors.Wrap(err, "reading magic")
	}
	if string(buf) != magic {
		return nil, errors.Errorf("not an automaton cache file (bad magic %q)", buf)
	}
	var version, numStates uint32
	if err := binary.Read(r, binary.LittleEndian, &version); err != nil {
		return nil, err
	}
	if version != formatVersion {
		return nil, errors.Errorf("unsupported automaton cache format version %d", version)
	}
	if err := binary.Read(r, binary.LittleEndian, &numStates); err != nil {
		return nil, err
	}
	goTo := make([]int32, int(numStates)*256)
	explicit := make([]uint64, int(numStates)*4)
	vocabID := make([]int32, numStates)
	length := make([]int32, numStates)
	for _, arr := range []any{goTo, explicit, vocabID, length} {
		if err := binary.Read(r, binary.LittleEndian, arr); err != nil {
			return nil, errors.Wrap(err, "reading automaton arrays")
		}
	}
	return automaton.FromArrays(int(numStates), goTo, explicit, vocabID, length), nil
}

func readFull(r *bufio.Reader, buf []byte) (int, error) {
	n := 0
	for n < len(buf) {
		m, err := r.Read(buf[n:])
		n += m
		if err != nil {
			return n, err
		}
	}
	return n, nil
}
