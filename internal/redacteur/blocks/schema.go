package blocks

import (
	"bytes"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/aisa-it/redacteur/internal/redacteur/editor/edtypes"
	jsonschema "github.com/santhosh-tekuri/jsonschema/v6"
)

//go:embed schemas/*.json
var schemaFS embed.FS

const schemaBaseURL = "redacteur://blocks/"

var (
	ErrUnknownBlock = errors.New("unknown block type")
	ErrInvalidAttrs = errors.New("invalid block attributes")
)

var compiled struct {
	once    sync.Once
	err     error
	schemas map[edtypes.BlockType]*jsonschema.Schema
}

func loadSchemas() {
	c := jsonschema.NewCompiler()
	c.AssertFormat()

	compiled.schemas = make(map[edtypes.BlockType]*jsonschema.Schema, len(edtypes.BlockTypes))
	for _, t := range edtypes.BlockTypes {
		raw, err := schemaFS.ReadFile("schemas/" + string(t) + ".json")
		if err != nil {
			compiled.err = fmt.Errorf("read %s schema: %w", t, err)
			return
		}
		doc, err := jsonschema.UnmarshalJSON(bytes.NewReader(raw))
		if err != nil {
			compiled.err = fmt.Errorf("unmarshal %s schema: %w", t, err)
			return
		}
		url := schemaBaseURL + string(t) + ".json"
		if err := c.AddResource(url, doc); err != nil {
			compiled.err = fmt.Errorf("add %s schema resource: %w", t, err)
			return
		}
		s, err := c.Compile(url)
		if err != nil {
			compiled.err = fmt.Errorf("compile %s schema: %w", t, err)
			return
		}
		compiled.schemas[t] = s
	}
}

// Validate проверяет JSON-атрибуты блока по схеме его типа.
func Validate(t edtypes.BlockType, raw []byte) error {
	compiled.once.Do(loadSchemas)
	if compiled.err != nil {
		return compiled.err
	}

	s, ok := compiled.schemas[t]
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownBlock, t)
	}

	doc, err := jsonschema.UnmarshalJSON(bytes.NewReader(raw))
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidAttrs, err)
	}
	if err := s.Validate(doc); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidAttrs, err)
	}
	return nil
}

// Decode проверяет атрибуты и разбирает их в блок указанного типа.
func Decode(t edtypes.BlockType, raw []byte) (edtypes.Block, error) {
	if err := Validate(t, raw); err != nil {
		return nil, err
	}
	b := edtypes.NewBlock(t)
	if b == nil {
		return nil, fmt.Errorf("%w: %q", ErrUnknownBlock, t)
	}
	if err := json.Unmarshal(raw, b); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidAttrs, err)
	}
	return b, nil
}
