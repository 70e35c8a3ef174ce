package classvm

import (
	"fmt"
	"os"
	"path/filepath"
)

// FileSource implements ByteSource by reading "<name>.class" out of a
// single directory on disk (§6: "reads a file named <referenced-name>.class
// from the working directory when resolving a new class reference").
type FileSource struct {
	Dir string
}

// ReadAll reads <Dir>/<className>.class.
func (s FileSource) ReadAll(className string) ([]byte, error) {
	path := filepath.Join(s.Dir, className+".class")
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrIO, err)
	}
	return data, nil
}
