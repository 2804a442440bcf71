package amocrm

// CustomFieldValue is one value of a custom field. EnumID selects a list
// option for select-like fields.
type CustomFieldValue struct {
	Value  any    `json:"value,omitempty"   yaml:"value,omitempty"`
	EnumID int    `json:"enum_id,omitempty" yaml:"enum_id,omitempty"`
	Enum   string `json:"enum,omitempty"    yaml:"enum,omitempty"`
}

// CustomField carries the values of one account-configured field.
type CustomField struct {
	FieldID   int                `json:"field_id"             yaml:"field_id"`
	FieldCode string             `json:"field_code,omitempty" yaml:"field_code,omitempty"`
	Values    []CustomFieldValue `json:"values"               yaml:"values"`
}

// NewCustomField builds a field from plain values.
func NewCustomField(id int, values ...any) CustomField {
	field := CustomField{FieldID: id, Values: make([]CustomFieldValue, 0, len(values))}
	for _, value := range values {
		field.Values = append(field.Values, CustomFieldValue{Value: value})
	}

	return field
}

// WithEnum appends an enumerated value.
func (f CustomField) WithEnum(enumID int, value any) CustomField {
	f.Values = append(f.Values, CustomFieldValue{Value: value, EnumID: enumID})

	return f
}
