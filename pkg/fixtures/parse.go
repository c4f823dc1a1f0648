package fixtures

import (
	"errors"
	"io"

	"gopkg.in/yaml.v3"
)

// Parse parses fixture YAML from a reader. An empty document has no
// statements.
func Parse(r io.Reader) (Statements, error) {
	var statements Statements
	decoder := yaml.NewDecoder(r)
	if err := decoder.Decode(&statements); err != nil {
		if errors.Is(err, io.EOF) {
			return Statements{}, nil
		}
		return nil, err
	}
	return statements, nil
}
