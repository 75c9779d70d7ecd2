package fjsp

import (
	"bufio"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

const maxLineBytes = 4 << 20

// Loader reads instance files. Relative paths are resolved against BaseDir;
// an empty BaseDir means the current working directory.
type Loader struct {
	BaseDir string
}

// Load reads the instance at path, relative paths being resolved against the working directory.
func Load(path string) (*Instance, error) {
	return Loader{}.Load(path)
}

// Resolve returns the path Load would open for path.
func (l Loader) Resolve(path string) string {
	if filepath.IsAbs(path) || l.BaseDir == "" {
		return path
	}
	return filepath.Join(l.BaseDir, path)
}

// Load opens and parses the instance at path. A file that cannot be opened or read yields a
// *ResourceError, content that does not follow the grammar a *FormatError.
func (l Loader) Load(path string) (*Instance, error) {
	resolved := l.Resolve(path)
	f, err := os.Open(resolved)
	if err != nil {
		return nil, errors.WithStack(&ResourceError{Path: resolved, Err: err})
	}
	defer f.Close()

	inst, err := parse(f, resolved)
	if err != nil {
		return nil, errors.WithMessagef(err, "failed to load instance %s", resolved)
	}
	return inst, nil
}

// Parse reads an instance in the text format:
//
//	J M [extra]
//	ops k m t m t ... k m t ...   (one line per job, machine ids 1-based)
//
// Blank lines are ignored. The optional third header token is not interpreted.
func Parse(r io.Reader) (*Instance, error) {
	return parse(r, "")
}

func parse(r io.Reader, path string) (*Instance, error) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), maxLineBytes)

	type line struct {
		no     int
		fields []string
	}
	var lines []line
	no := 0
	for sc.Scan() {
		no++
		fields := strings.Fields(sc.Text())
		if len(fields) == 0 {
			continue
		}
		lines = append(lines, line{no: no, fields: fields})
	}
	if err := sc.Err(); err != nil {
		if errors.Is(err, bufio.ErrTooLong) {
			return nil, errors.WithStack(formatErrorf(no+1, "line longer than %d bytes", maxLineBytes))
		}
		return nil, errors.WithStack(&ResourceError{Path: path, Err: err})
	}
	if len(lines) == 0 {
		return nil, errors.WithStack(formatErrorf(0, "empty instance"))
	}

	header := lines[0]
	if len(header.fields) < 2 || len(header.fields) > 3 {
		return nil, errors.WithStack(formatErrorf(header.no, "header must have 2 or 3 tokens (got %d)", len(header.fields)))
	}
	jobs, err := positive(header.no, header.fields[0], "job count")
	if err != nil {
		return nil, err
	}
	machines, err := positive(header.no, header.fields[1], "machine count")
	if err != nil {
		return nil, err
	}
	if machines > MaxMachines {
		return nil, errors.WithStack(formatErrorf(header.no, "machine count must be <= %d (got %d)", MaxMachines, machines))
	}

	if got := len(lines) - 1; got != jobs {
		return nil, errors.WithStack(formatErrorf(0, "expected %d job lines (got %d)", jobs, got))
	}

	spec := make([][][]Alternative, jobs)
	for j := 0; j < jobs; j++ {
		l := lines[j+1]
		ops, err := parseJob(l.no, l.fields, machines)
		if err != nil {
			return nil, err
		}
		spec[j] = ops
	}

	inst, err := NewInstance(machines, spec)
	if err != nil {
		return nil, errors.WithStack(formatErrorf(0, "%v", err))
	}
	return inst, nil
}

func parseJob(no int, fields []string, machines int) ([][]Alternative, error) {
	pos := 0
	next := func(what string) (int, error) {
		if pos >= len(fields) {
			return 0, errors.WithStack(formatErrorf(no, "missing %s at token %d", what, pos+1))
		}
		v, err := strconv.Atoi(fields[pos])
		if err != nil {
			return 0, errors.WithStack(formatErrorf(no, "%s %q at token %d is not an integer", what, fields[pos], pos+1))
		}
		pos++
		return v, nil
	}

	count, err := next("operation count")
	if err != nil {
		return nil, err
	}
	if count < 0 {
		return nil, errors.WithStack(formatErrorf(no, "operation count must be >= 0 (got %d)", count))
	}
	// every operation needs at least its machine count token
	if rest := len(fields) - pos; count > rest {
		return nil, errors.WithStack(formatErrorf(no, "%d operations declared but only %d tokens left", count, rest))
	}

	ops := make([][]Alternative, count)
	for o := 0; o < count; o++ {
		k, err := next("machine count")
		if err != nil {
			return nil, err
		}
		if k < 0 {
			return nil, errors.WithStack(formatErrorf(no, "operation %d: machine count must be >= 0 (got %d)", o+1, k))
		}
		if rest := len(fields) - pos; k > rest/2 {
			return nil, errors.WithStack(formatErrorf(no, "operation %d: %d machine pairs declared but only %d tokens left", o+1, k, rest))
		}
		alts := make([]Alternative, k)
		for i := range alts {
			m, err := next("machine id")
			if err != nil {
				return nil, err
			}
			if m < 1 || m > machines {
				return nil, errors.WithStack(formatErrorf(no, "operation %d: machine id %d out of range [1,%d]", o+1, m, machines))
			}
			p, err := next("processing time")
			if err != nil {
				return nil, err
			}
			if p < 0 || p >= Incompatible {
				return nil, errors.WithStack(formatErrorf(no, "operation %d: processing time %d out of range [0,%d)", o+1, p, Incompatible))
			}
			alts[i] = Alternative{Machine: m - 1, Time: p}
		}
		ops[o] = alts
	}
	if pos != len(fields) {
		return nil, errors.WithStack(formatErrorf(no, "%d unexpected trailing tokens after %d operations", len(fields)-pos, count))
	}
	return ops, nil
}

func positive(no int, tok, what string) (int, error) {
	v, err := strconv.Atoi(tok)
	if err != nil {
		return 0, errors.WithStack(formatErrorf(no, "%s %q is not an integer", what, tok))
	}
	if v <= 0 {
		return 0, errors.WithStack(formatErrorf(no, "%s must be > 0 (got %d)", what, v))
	}
	return v, nil
}
