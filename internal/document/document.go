package document

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

// ParseError reports a file whose content could not be decoded as YAML.
// The scan driver records it on the file result and moves on; it never
// aborts a scan.
type ParseError struct {
	// Path is the file that failed to parse.
	Path string

	// Err is the underlying decoder error.
	Err error
}

// Error implements the error interface.
func (e *ParseError) Error() string {
	return fmt.Sprintf("parse %s: %v", e.Path, e.Err)
}

// Unwrap returns the underlying decoder error.
func (e *ParseError) Unwrap() error {
	return e.Err
}

// Load reads path and decodes it as a YAML stream.
// It returns one root node per non-empty document, in stream order.
func Load(path string) ([]*yaml.Node, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read playbook file: %w", err)
	}
	return Parse(data, path)
}

// Parse decodes data as a YAML stream and returns the root node of each
// non-empty document. Playbook trees routinely contain multi-document
// files (for example a play followed by a vars document), so a single
// yaml.Unmarshal would silently drop everything after the first document.
func Parse(data []byte, path string) ([]*yaml.Node, error) {
	decoder := yaml.NewDecoder(bytes.NewReader(data))

	var roots []*yaml.Node
	for {
		var doc yaml.Node
		if err := decoder.Decode(&doc); err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, &ParseError{Path: path, Err: err}
		}
		if root := documentRoot(&doc); root != nil {
			roots = append(roots, root)
		}
	}
	return roots, nil
}

// documentRoot unwraps a document node to its content root.
// Empty documents (a bare ---) return nil and are skipped.
func documentRoot(doc *yaml.Node) *yaml.Node {
	if doc.Kind != yaml.DocumentNode || len(doc.Content) == 0 {
		return nil
	}
	root := doc.Content[0]
	if root.Kind == yaml.ScalarNode && root.Tag == nullTag {
		return nil
	}
	return root
}
