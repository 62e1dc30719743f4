package conf

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

var ErrSchemaViolation = errors.New("schema violation")

// Schema validates json configuration documents.
type Schema struct {
	schema *gojsonschema.Schema
}

func NewSchema(document []byte) (*Schema, error) {
	schema, err := gojsonschema.NewSchema(gojsonschema.NewBytesLoader(document))
	if err != nil {
		return nil, fmt.Errorf("failed to compile schema: %w", err)
	}

	return &Schema{schema: schema}, nil
}

func (s *Schema) Validate(document []byte) error {
	result, err := s.schema.Validate(gojsonschema.NewBytesLoader(document))
	if err != nil {
		return err
	}

	if result.Valid() {
		return nil
	}

	messages := make([]string, 0, len(result.Errors()))
	for _, desc := range result.Errors() {
		messages = append(messages, desc.String())
	}

	return fmt.Errorf("%w: %s", ErrSchemaViolation, strings.Join(messages, "; "))
}

func (s *Schema) ValidateFile(name string) error {
	document, err := os.ReadFile(name)
	if err != nil {
		return err
	}

	return s.Validate(document)
}
