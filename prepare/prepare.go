// Package prepare turns a Stack Exchange posts dump into labelled train and test sets.
package prepare

import (
	"bufio"
	"encoding/xml"
	"io"
	"math/rand"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/hscells/tagpipe/params"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"gopkg.in/cheggaaa/pb.v1"
)

const (
	// TrainFile is the name of the prepared train set.
	TrainFile = "train.tsv"
	// TestFile is the name of the prepared test set.
	TestFile = "test.tsv"

	maxLineSize = 64 * 1024 * 1024
)

// Post is one labelled question.
type Post struct {
	ID    int64
	Label int
	Text  string
}

// Stats counts where the posts of a dump went.
type Stats struct {
	Train   int
	Test    int
	Skipped int
}

type row struct {
	ID    string `xml:"Id,attr"`
	Tags  string `xml:"Tags,attr"`
	Title string `xml:"Title,attr"`
	Body  string `xml:"Body,attr"`
}

// collapse replaces runs of whitespace with a single space and trims the ends.
func collapse(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// ParsePost parses one <row/> element of a posts dump. The post is labelled 1 when its tags contain tag.
func ParsePost(line, tag string) (Post, error) {
	var r row
	if err := xml.Unmarshal([]byte(line), &r); err != nil {
		return Post{}, err
	}
	id, err := strconv.ParseInt(r.ID, 10, 64)
	if err != nil {
		return Post{}, errors.Wrapf(err, "post id %q", r.ID)
	}
	p := Post{ID: id, Text: collapse(r.Title) + " " + collapse(r.Body)}
	if strings.Contains(r.Tags, tag) {
		p.Label = 1
	}
	return p, nil
}

// Process reads a posts dump line by line and writes each post to train or test. A random draw is made
// for every line, before it is parsed, so the split only depends on the seed and the line order. Lines
// that are not posts (the XML header, the enclosing element, broken rows) are skipped.
func Process(r io.Reader, train, test io.Writer, p params.Prepare) (Stats, error) {
	var stats Stats
	rng := rand.New(rand.NewSource(p.Seed))

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), maxLineSize)
	n := 0
	for scanner.Scan() {
		n++
		toTrain := rng.Float64() > p.Split
		post, err := ParsePost(scanner.Text(), p.Tag)
		if err != nil {
			log.Debug().Int("line", n).Err(err).Msg("skipping broken line")
			stats.Skipped++
			continue
		}
		w := test
		if toTrain {
			w = train
			stats.Train++
		} else {
			stats.Test++
		}
		if err := WritePost(w, post); err != nil {
			return stats, err
		}
	}
	return stats, errors.Wrap(scanner.Err(), "reading posts")
}

// File prepares the posts dump at input into outDir/train.tsv and outDir/test.tsv.
func File(input, outDir string, p params.Prepare, progress bool) (Stats, error) {
	f, err := os.Open(input)
	if err != nil {
		return Stats{}, errors.Wrapf(err, "opening %s", input)
	}
	defer f.Close()

	var in io.Reader = f
	if progress {
		info, err := f.Stat()
		if err != nil {
			return Stats{}, errors.Wrapf(err, "stat %s", input)
		}
		bar := pb.New64(info.Size()).SetUnits(pb.U_BYTES)
		bar.Output = os.Stderr
		bar.Start()
		defer bar.Finish()
		in = bar.NewProxyReader(f)
	}

	if err := os.MkdirAll(outDir, 0755); err != nil {
		return Stats{}, errors.Wrapf(err, "creating %s", outDir)
	}
	train, err := os.Create(filepath.Join(outDir, TrainFile))
	if err != nil {
		return Stats{}, errors.Wrap(err, "creating train set")
	}
	defer train.Close()
	test, err := os.Create(filepath.Join(outDir, TestFile))
	if err != nil {
		return Stats{}, errors.Wrap(err, "creating test set")
	}
	defer test.Close()

	trainW, testW := bufio.NewWriter(train), bufio.NewWriter(test)
	stats, err := Process(in, trainW, testW, p)
	if err != nil {
		return stats, err
	}
	if err := trainW.Flush(); err != nil {
		return stats, errors.Wrap(err, "writing train set")
	}
	if err := testW.Flush(); err != nil {
		return stats, errors.Wrap(err, "writing test set")
	}
	if stats.Skipped > 0 {
		log.Warn().Int("skipped", stats.Skipped).Msg("skipped lines that were not posts")
	}
	return stats, nil
}
