package engines

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/gabriel-vasile/mimetype"
)

var ErrNotText = errors.New("document is not text")

// LoadDocument reads the whole document from path, or from stdin when path is "-".
func LoadDocument(path string) (string, error) {
	var content []byte
	var err error
	if path == "-" {
		content, err = io.ReadAll(os.Stdin)
	} else {
		content, err = os.ReadFile(path)
	}
	if err != nil {
		return "", fmt.Errorf("load document: %w", err)
	}
	if !isText(content) {
		return "", fmt.Errorf("load document %s: %w: %s", path, ErrNotText, mimetype.Detect(content))
	}
	return string(content), nil
}

func isText(content []byte) bool {
	if len(content) == 0 {
		return true
	}
	for t := mimetype.Detect(content); t != nil; t = t.Parent() {
		if t.Is("text/plain") {
			return true
		}
	}
	return false
}
