package main

/*
bio-matelen reports, for each read or read pair in an alignment stream, the
total mapped length, the mapped length after removing mate overlap, and the
mismatch counts, one TSV row per read/pair.  Input must be grouped by query
name (mates adjacent); pass -sort-by-name to have samtools establish that
order first.
*/

import (
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/grailbio/base/grail"
	"github.com/grailbio/base/log"
	"github.com/grailbio/base/vcontext"
	"github.com/seqyard/matelen/matelen"
	"github.com/seqyard/matelen/sampipe"
)

var (
	endType    = flag.String("end-type", "PE", "Sequencing end type; PE (paired-end) or SE (single-end)")
	format     = flag.String("format", matelen.DefaultOpts.Format, "Output format; 'tsv', 'tsv-gz' and 'tsv-bgz' supported")
	outPath    = flag.String("out", "matelen.tsv", "Output path")
	bam        = flag.Bool("bam", false, "Decode the input with 'samtools view' instead of reading it as SAM text; implied by a .bam/.cram suffix")
	sortByName = flag.Bool("sort-by-name", false, "Name-sort the input with 'samtools sort -n' first; implies -bam handling")
	threads    = flag.Int("threads", 1, "Thread count forwarded to samtools sort and the bgzf compressor")
)

func bioMatelenUsage() {
	fmt.Printf("Usage: %s [OPTIONS] alignpath\n", os.Args[0])
	fmt.Printf("Other options:\n")
	flag.PrintDefaults()
}

func main() {
	flag.Usage = bioMatelenUsage
	shutdown := grail.Init()
	defer shutdown()

	if flag.NArg() != 1 {
		log.Fatalf("Exactly one positional argument (alignpath) expected; please check flag syntax: '%s'", strings.Join(flag.Args(), " "))
	}
	inPath := flag.Arg(0)
	ctx := vcontext.Background()

	opts := matelen.DefaultOpts
	opts.Format = *format
	opts.Parallelism = *threads
	var err error
	if opts.EndType, err = matelen.ParseEndType(*endType); err != nil {
		log.Fatalf("%v", err)
	}

	var (
		in      io.Reader
		closeIn func() error
	)
	switch {
	case *sortByName:
		rc, err := sampipe.SortByName(ctx, inPath, *threads)
		if err != nil {
			log.Fatalf("%v", err)
		}
		in, closeIn = rc, rc.Close
	case *bam || strings.HasSuffix(inPath, ".bam") || strings.HasSuffix(inPath, ".cram"):
		rc, err := sampipe.View(ctx, inPath)
		if err != nil {
			log.Fatalf("%v", err)
		}
		in, closeIn = rc, rc.Close
	default:
		if in, closeIn, err = matelen.OpenInput(ctx, inPath); err != nil {
			log.Fatalf("%v", err)
		}
	}

	if err = matelen.Run(ctx, in, *outPath, opts); err != nil {
		log.Panicf("%v", err)
	}
	if err = closeIn(); err != nil {
		log.Fatalf("%v", err)
	}
	log.Debug.Printf("exiting")
}
