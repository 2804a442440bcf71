package amocrm

import (
	"fmt"
)

// LinkMode selects whether a descriptor creates or removes a relation.
type LinkMode string

// Link modes.
const (
	ModeLink   LinkMode = "link"
	ModeUnlink LinkMode = "unlink"
)

// Metadata keys accepted per mode.
var linkMetadataKeys = map[LinkMode][]string{
	ModeLink:   {"main_contact", "quantity", "catalog_id", "price_id"},
	ModeUnlink: {"updated_by", "catalog_id"},
}

// MetadataKeys returns the optional metadata keys of a mode in wire order.
func (m LinkMode) MetadataKeys() []string {
	return append([]string(nil), linkMetadataKeys[m]...)
}

// LinkDescriptor is a directed relation between two entities.
type LinkDescriptor struct {
	From     EntityType `validate:"required,amo_linkable"`
	FromID   int        `validate:"gt=0"`
	To       EntityType `validate:"required,amo_linkable"`
	ToID     int        `validate:"gt=0"`
	Metadata Record     `validate:"-"`
}

// Validate checks the mandatory parts of the descriptor.
func (d LinkDescriptor) Validate() error {
	if err := validate.Struct(d); err != nil {
		return NewConfigurationError(EntityLinks, "validate", "", fmt.Errorf("%w: %w", ErrInvalidLink, err))
	}

	return nil
}

// DescriptorFromValues reads a descriptor from link entity values. Every
// value except the four mandatory ones is treated as metadata, so raw
// "metadata" objects and flat fields are both accepted.
func DescriptorFromValues(values Record) (LinkDescriptor, error) {
	descriptor := LinkDescriptor{Metadata: Record{}}

	descriptor.From = asEntityType(values["from"])
	descriptor.To = asEntityType(values["to"])
	descriptor.FromID, _ = AsInt(values["from_id"])
	descriptor.ToID, _ = AsInt(values["to_id"])

	if nested, ok := values["metadata"].(map[string]any); ok {
		for key, value := range nested {
			descriptor.Metadata[key] = value
		}
	}

	for key, value := range values {
		switch key {
		case "from", "from_id", "to", "to_id", "metadata":
		default:
			descriptor.Metadata[key] = value
		}
	}

	if err := descriptor.Validate(); err != nil {
		return LinkDescriptor{}, err
	}

	return descriptor, nil
}

func asEntityType(value any) EntityType {
	switch v := value.(type) {
	case EntityType:
		return v
	case string:
		return EntityType(v)
	default:
		return ""
	}
}
