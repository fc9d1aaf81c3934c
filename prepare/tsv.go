package prepare

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// WritePost writes a post as one id, label, text line.
func WritePost(w io.Writer, p Post) error {
	_, err := fmt.Fprintf(w, "%d\t%d\t%s\n", p.ID, p.Label, p.Text)
	return errors.Wrap(err, "writing post")
}

// ReadPosts reads posts written by WritePost.
func ReadPosts(r io.Reader) ([]Post, error) {
	var posts []Post
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), maxLineSize)
	n := 0
	for scanner.Scan() {
		n++
		fields := strings.SplitN(scanner.Text(), "\t", 3)
		if len(fields) != 3 {
			return nil, errors.Errorf("line %d: expected 3 fields, got %d", n, len(fields))
		}
		id, err := strconv.ParseInt(fields[0], 10, 64)
		if err != nil {
			return nil, errors.Wrapf(err, "line %d: id", n)
		}
		label, err := strconv.Atoi(fields[1])
		if err != nil || (label != 0 && label != 1) {
			return nil, errors.Errorf("line %d: label %q is not 0 or 1", n, fields[1])
		}
		posts = append(posts, Post{ID: id, Label: label, Text: fields[2]})
	}
	return posts, errors.Wrap(scanner.Err(), "reading posts")
}

// ReadPostsFile reads the posts of a prepared set.
func ReadPostsFile(path string) ([]Post, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "opening %s", path)
	}
	defer f.Close()
	posts, err := ReadPosts(f)
	return posts, errors.Wrap(err, path)
}
