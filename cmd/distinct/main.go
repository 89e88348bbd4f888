// Command distinct estimates the number of distinct lines in its
// input.
//
// Lines are read from the named files, or from stdin when none are
// given, hashed with xxhash and folded into a HyperLogLog sketch. The
// sketch can be carried across runs with -state and combined with
// other saved sketches with -merge:
//
//	cat access.log | distinct -p 16
//	distinct -state visitors.hll monday.log
//	distinct -q -merge east.hll,west.hll /dev/null
//
// The estimate is printed to stdout; everything else goes to stderr as
// JSON log lines.
package main

import (
	"bufio"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/cespare/xxhash/v2"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	"github.com/streamstats/hyperloglog"
)

func main() {
	var (
		precision = flag.Uint("p", 14, "sketch precision, registers = 2^p")
		rsd       = flag.Float64("rsd", 0, "target relative standard deviation, overrides -p when set")
		statePath = flag.String("state", "", "sketch file, restored when present and rewritten on exit")
		mergeList = flag.String("merge", "", "comma separated sketch files folded into the result")
		quiet     = flag.Bool("q", false, "log errors only")
	)
	flag.Parse()

	log.SetFormatter(&log.JSONFormatter{})
	log.SetOutput(os.Stderr)
	if *quiet {
		log.SetLevel(log.ErrorLevel)
	}

	h, err := openSketch(*precision, *rsd, *statePath)
	if err != nil {
		log.WithError(err).Fatal("opening sketch")
	}

	var lines uint64
	if paths := flag.Args(); len(paths) > 0 {
		for _, path := range paths {
			n, err := ingestFile(h, path)
			if err != nil {
				log.WithError(err).WithField("file", path).Fatal("reading input")
			}
			lines += n
		}
	} else {
		n, err := ingest(h, os.Stdin)
		if err != nil {
			log.WithError(err).Fatal("reading stdin")
		}
		lines += n
	}

	if *mergeList != "" {
		merged, err := mergeSketches(h, strings.Split(*mergeList, ","))
		if err != nil {
			log.WithError(err).Fatal("merging sketches")
		}
		h = merged
	}

	if *statePath != "" {
		if err := saveSketch(h, *statePath); err != nil {
			log.WithError(err).WithField("file", *statePath).Fatal("saving sketch")
		}
	}

	log.WithFields(log.Fields{
		"lines":     lines,
		"estimate":  h.Count(),
		"precision": h.Precision(),
		"bytes":     h.SizeInBytes(),
	}).Info("done")
	fmt.Println(h.Count())
}

// openSketch restores the sketch saved at statePath, or builds an
// empty one from the requested parameters when there is nothing to
// restore.
func openSketch(precision uint, rsd float64, statePath string) (*hyperloglog.HyperLogLog, error) {
	if statePath != "" {
		data, err := os.ReadFile(statePath)
		switch {
		case err == nil:
			return hyperloglog.BuildFromBytes(data)
		case !os.IsNotExist(err):
			return nil, err
		}
	}
	if rsd > 0 {
		b, err := hyperloglog.NewBuilderForRSD(rsd)
		if err != nil {
			return nil, err
		}
		return b.Build(), nil
	}
	if precision > hyperloglog.MaxPrecision {
		return nil, errors.Wrapf(hyperloglog.ErrInvalidPrecision, "got %d", precision)
	}
	b, err := hyperloglog.NewBuilder(uint8(precision))
	if err != nil {
		return nil, err
	}
	return b.Build(), nil
}

func ingestFile(h *hyperloglog.HyperLogLog, path string) (uint64, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, err
	}
	defer f.Close()
	return ingest(h, f)
}

// ingest folds every input line into the sketch and returns the number
// of lines read.
func ingest(h *hyperloglog.HyperLogLog, r io.Reader) (uint64, error) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	var n uint64
	for sc.Scan() {
		h.InsertHash64(xxhash.Sum64(sc.Bytes()))
		n++
	}
	return n, sc.Err()
}

// mergeSketches folds previously saved sketches into h, leaving the
// files as they are.
func mergeSketches(h *hyperloglog.HyperLogLog, paths []string) (*hyperloglog.HyperLogLog, error) {
	others := make([]hyperloglog.Sketch, 0, len(paths))
	for _, path := range paths {
		data, err := os.ReadFile(strings.TrimSpace(path))
		if err != nil {
			return nil, err
		}
		o, err := hyperloglog.BuildFromBytes(data)
		if err != nil {
			return nil, errors.Wrapf(err, "sketch %s", path)
		}
		others = append(others, o)
	}
	return h.Merge(others...)
}

func saveSketch(h *hyperloglog.HyperLogLog, path string) error {
	data, err := h.MarshalBinary()
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}
