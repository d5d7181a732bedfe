package samtext

import (
	"bufio"
	"io"

	"github.com/pkg/errors"
)

// maxLineBytes bounds a single SAM line.  Long-read alignments carry SEQ/QUAL
// columns well past bufio's 64KiB default token limit.
const maxLineBytes = 16 << 20

// Scanner provides a convenient interface for reading SAM text records.  It
// skips header ("@...") and blank lines, so both "samtools view" and
// "samtools view -h" output are accepted.  The Scan method parses the next
// record, returning a boolean indicating whether the scan succeeded.
// Scanners are not threadsafe.
type Scanner struct {
	b    *bufio.Scanner
	err  error
	line int
}

// NewScanner constructs a new Scanner reading SAM text from r.
func NewScanner(r io.Reader) *Scanner {
	b := bufio.NewScanner(r)
	b.Buffer(make([]byte, 64<<10), maxLineBytes)
	return &Scanner{b: b}
}

// Scan parses the next record into rec.  Once Scan returns false, it never
// returns true again.  Upon completion the caller should check Err to
// distinguish end of stream from a read or parse error.
func (s *Scanner) Scan(rec *Record) bool {
	if s.err != nil {
		return false
	}
	for s.b.Scan() {
		s.line++
		text := s.b.Text()
		if len(text) == 0 || text[0] == '@' {
			continue
		}
		r, err := ParseRecord(text)
		if err != nil {
			s.err = errors.Wrapf(err, "line %d", s.line)
			return false
		}
		*rec = r
		return true
	}
	s.err = s.b.Err()
	return false
}

// Err returns the scanning error, if any.
func (s *Scanner) Err() error { return s.err }
