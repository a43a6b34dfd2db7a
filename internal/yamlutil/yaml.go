// Package yamlutil decodes the YAML configuration a publishing run loads.
// It keeps goccy/go-yaml behind one seam so the rest of the tree never
// imports the library directly.
package yamlutil

import (
	"errors"
	"fmt"

	"github.com/goccy/go-yaml"
)

// MaxConfigSize caps config input. Publishing configs are a few hundred
// bytes; anything past 1MB is a wrong file or garbage.
const MaxConfigSize = 1 << 20

var (
	ErrEmptyDocument    = errors.New("yamlutil: empty document")
	ErrNilDestination   = errors.New("yamlutil: nil destination pointer")
	ErrDocumentTooLarge = errors.New("yamlutil: document exceeds maximum size")
)

// DecodeStrict parses data into v, rejecting unknown fields so a config
// typo fails the run loudly instead of silently publishing with defaults.
func DecodeStrict(data []byte, v any) error {
	if len(data) == 0 {
		return ErrEmptyDocument
	}
	if len(data) > MaxConfigSize {
		return fmt.Errorf("%w: %d bytes (max %d)", ErrDocumentTooLarge, len(data), MaxConfigSize)
	}
	if v == nil {
		return ErrNilDestination
	}
	if err := yaml.UnmarshalWithOptions(data, v, yaml.Strict()); err != nil {
		return fmt.Errorf("yamlutil: %w", err)
	}
	return nil
}
