// Package sampipe spawns samtools to turn binary alignment containers into
// the SAM text streams the core consumes.  Container decoding and name
// sorting are external-process concerns; this package only manages the
// pipes.
package sampipe

import (
	"bytes"
	"context"
	"io"
	"os/exec"
	"strconv"

	"github.com/grailbio/base/log"
	"github.com/pkg/errors"
)

// excludeFlags drops secondary (0x100) and supplementary (0x800) alignments;
// the core handles primary alignments only.
const excludeFlags = 0x900

// procReader streams the stdout of a child-process chain.  Close closes the
// pipe and reaps every process in the chain, surfacing the first nonzero
// exit together with whatever that process wrote to stderr.
type procReader struct {
	io.ReadCloser
	cmds    []*exec.Cmd
	stderrs []*bytes.Buffer
}

func (p *procReader) Close() error {
	p.ReadCloser.Close()
	var err error
	for i, cmd := range p.cmds {
		if e := cmd.Wait(); e != nil && err == nil {
			err = errors.Wrapf(e, "%v: %s", cmd.Args, bytes.TrimSpace(p.stderrs[i].Bytes()))
		}
	}
	return err
}

// startChain starts the given commands with each one's stdout piped into the
// next one's stdin, and returns the final stdout.
func startChain(cmds ...*exec.Cmd) (io.ReadCloser, error) {
	pr := &procReader{}
	for i, cmd := range cmds {
		stderr := &bytes.Buffer{}
		cmd.Stderr = stderr
		stdout, err := cmd.StdoutPipe()
		if err != nil {
			return nil, err
		}
		if i+1 < len(cmds) {
			cmds[i+1].Stdin = stdout
		} else {
			pr.ReadCloser = stdout
		}
		log.Debug.Printf("sampipe: starting %v", cmd.Args)
		if err := cmd.Start(); err != nil {
			return nil, errors.Wrapf(err, "couldn't start %v", cmd.Args)
		}
		pr.cmds = append(pr.cmds, cmd)
		pr.stderrs = append(pr.stderrs, stderr)
	}
	return pr, nil
}

// View streams the primary alignments of a BAM/CRAM/SAM file as SAM text via
// "samtools view".  The caller must Close the returned reader to reap the
// child process.
func View(ctx context.Context, path string) (io.ReadCloser, error) {
	return startChain(exec.CommandContext(ctx, "samtools", "view", "-F", strconv.Itoa(excludeFlags), path))
}

// SortByName streams the primary alignments of a BAM/CRAM/SAM file as SAM
// text in query-name order, making mate records adjacent.  The filter and
// the sort run as a samtools pipeline.  threads <= 1 sorts single-threaded.
func SortByName(ctx context.Context, path string, threads int) (io.ReadCloser, error) {
	view := exec.CommandContext(ctx, "samtools", "view", "-h", "-F", strconv.Itoa(excludeFlags), path)
	sortArgs := []string{"sort", "-n", "-O", "sam"}
	if threads > 1 {
		sortArgs = append(sortArgs, "-@", strconv.Itoa(threads))
	}
	sortArgs = append(sortArgs, "-")
	return startChain(view, exec.CommandContext(ctx, "samtools", sortArgs...))
}
