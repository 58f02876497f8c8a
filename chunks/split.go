package chunks

import (
	"errors"
	"fmt"
	"iter"
)

var ErrInvalidWindow = errors.New("invalid chunk window")

const (
	DefaultSize    = 10000
	DefaultOverlap = 500
)

// CheckWindow reports whether size and overlap describe windows that advance.
func CheckWindow(size, overlap int) error {
	if size <= 0 || overlap < 0 || overlap >= size {
		return fmt.Errorf("%w: size %d, overlap %d", ErrInvalidWindow, size, overlap)
	}
	return nil
}

// Split cuts text into windows of size runes, adjacent windows sharing overlap runes.
// The last window ends at the end of text and may be shorter.
func Split(text string, size, overlap int) ([]string, error) {
	seq, err := Seq(text, size, overlap)
	if err != nil {
		return nil, err
	}
	var ret []string
	for chunk := range seq {
		ret = append(ret, chunk)
	}
	return ret, nil
}

func Seq(text string, size, overlap int) (iter.Seq[string], error) {
	if err := CheckWindow(size, overlap); err != nil {
		return nil, err
	}
	step := size - overlap
	return func(yield func(string) bool) {
		runes := []rune(text)
		n := len(runes)
		for start := 0; start < n; start += step {
			end := min(start+size, n)
			if !yield(string(runes[start:end])) {
				return
			}
			if end == n {
				return
			}
		}
	}, nil
}
