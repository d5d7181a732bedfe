package samtext_test

import (
	"strings"
	"testing"

	"github.com/grailbio/testutil/assert"
	"github.com/grailbio/testutil/expect"
	"github.com/seqyard/matelen/encoding/samtext"
)

func TestScanner(t *testing.T) {
	in := strings.Join([]string{
		"@HD\tVN:1.6\tSO:queryname",
		"@SQ\tSN:chr1\tLN:248956422",
		"r1\t99\tchr1\t100\t60\t50M\t=\t120\t70\t*\t*\tNM:i:0",
		"",
		"r2\t0\tchr1\t500\t60\t75M\t*\t0\t0\t*\t*",
	}, "\n") + "\n"

	s := samtext.NewScanner(strings.NewReader(in))
	var names []string
	rec := &samtext.Record{}
	for s.Scan(rec) {
		names = append(names, rec.Name)
	}
	assert.NoError(t, s.Err())
	expect.EQ(t, names, []string{"r1", "r2"})
}

func TestScannerEmpty(t *testing.T) {
	s := samtext.NewScanner(strings.NewReader(""))
	rec := &samtext.Record{}
	expect.False(t, s.Scan(rec))
	expect.Nil(t, s.Err())
}

func TestScannerHeaderOnly(t *testing.T) {
	s := samtext.NewScanner(strings.NewReader("@SQ\tSN:chr1\tLN:1000\n"))
	rec := &samtext.Record{}
	expect.False(t, s.Scan(rec))
	expect.Nil(t, s.Err())
}

// A malformed record stops the scan with an error naming the line.
func TestScannerParseError(t *testing.T) {
	in := strings.Join([]string{
		"@SQ\tSN:chr1\tLN:1000",
		"r1\t99\tchr1\t100\t60\t50M\t=\t120\t70\t*\t*",
		"r2\tbadflag\tchr1\t200\t60\t50M\t*\t0\t0\t*\t*",
	}, "\n") + "\n"

	s := samtext.NewScanner(strings.NewReader(in))
	rec := &samtext.Record{}
	expect.True(t, s.Scan(rec))
	expect.False(t, s.Scan(rec))
	err := s.Err()
	expect.True(t, err != nil)
	expect.True(t, strings.Contains(err.Error(), "line 3"), "err=%v", err)
	// Scan never returns true again after an error.
	expect.False(t, s.Scan(rec))
}
