package workindex

import (
	"bytes"
	"fmt"

	"gopkg.in/yaml.v3"
)

// Header is the fixed schema-reference line at the top of every
// work-index.yaml, followed by a blank line. Editors use it for
// completion and validation; the store writes it back verbatim on
// every save.
const Header = "# yaml-language-server: $schema=./SCHEMA/work-flow-schema.json\n\n"

// Encode serializes a document to its canonical textual form: the schema
// header plus a YAML body whose key order follows the struct declarations
// (never re-sorted; the file is hand-edited and diffed by humans).
func Encode(doc *Document) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteString(Header)

	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(doc); err != nil {
		return nil, fmt.Errorf("encoding work index: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("encoding work index: %w", err)
	}
	return buf.Bytes(), nil
}

// Decode parses work-index.yaml content into a Document. Empty content
// (or a bare header) yields an empty document, not an error. Missing
// keys default to empty sequences.
//
// Malformed shapes fail with ErrCorrupt. That includes a stories entry
// that is not a mapping (e.g. a stray string left by a hand edit):
// silently skipping it would drop the line on the next save, so the load
// is rejected instead and the file stays untouched for the human to fix.
func Decode(content []byte) (*Document, error) {
	var doc Document
	if err := yaml.Unmarshal(content, &doc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorrupt, err)
	}
	return &doc, nil
}
