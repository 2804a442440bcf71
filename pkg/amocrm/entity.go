package amocrm

import (
	"encoding/json"
	"math"
	"reflect"
	"strconv"
	"strings"
)

// FieldIdentity is the name of the identity field shared by all entities.
const FieldIdentity = "id"

// FieldHook normalises a value before it is stored.
type FieldHook func(value any) (any, error)

// Capability attaches a hook to one field. Capabilities are composed into
// field sets so that shared behaviour does not depend on the entity type.
type Capability struct {
	Field string
	Hook  FieldHook
}

// FieldSet is the immutable list of recognised fields of an entity type.
// It is safe for concurrent use.
type FieldSet struct {
	entity EntityType
	names  []string
	index  map[string]struct{}
	hooks  map[string]FieldHook
}

// NewFieldSet declares the recognised fields of an entity type. A capability
// for a field that is not declared is ignored.
func NewFieldSet(entity EntityType, names []string, capabilities ...Capability) *FieldSet {
	fs := &FieldSet{
		entity: entity,
		names:  append([]string(nil), names...),
		index:  make(map[string]struct{}, len(names)),
		hooks:  make(map[string]FieldHook),
	}

	for _, name := range names {
		fs.index[name] = struct{}{}
	}

	for _, capability := range capabilities {
		if _, ok := fs.index[capability.Field]; ok && capability.Hook != nil {
			fs.hooks[capability.Field] = capability.Hook
		}
	}

	return fs
}

// Entity returns the entity type the set belongs to.
func (fs *FieldSet) Entity() EntityType {
	return fs.entity
}

// Names returns the recognised field names in declaration order.
func (fs *FieldSet) Names() []string {
	return append([]string(nil), fs.names...)
}

// Has reports whether name is a recognised field.
func (fs *FieldSet) Has(name string) bool {
	_, ok := fs.index[name]

	return ok
}

// Model is anything that can be submitted as part of a batch.
type Model interface {
	Type() EntityType
	Values() Record
	ID() (int, error)
}

// Entity is the value store behind every model. It is not safe for
// concurrent mutation.
type Entity struct {
	fields *FieldSet
	values map[string]any
}

// NewEntity creates an empty entity for the given field set.
func NewEntity(fields *FieldSet) *Entity {
	return &Entity{
		fields: fields,
		values: make(map[string]any),
	}
}

// Type returns the entity type.
func (e *Entity) Type() EntityType {
	return e.fields.entity
}

// Fields returns the recognised field set.
func (e *Entity) Fields() *FieldSet {
	return e.fields
}

// Set stores value under field after running the field's hook.
func (e *Entity) Set(field string, value any) error {
	if !e.fields.Has(field) {
		return NewConfigurationError(e.fields.entity, "set", field, ErrUnknownField)
	}

	if hook, ok := e.fields.hooks[field]; ok {
		normalized, err := hook(value)
		if err != nil {
			return NewConfigurationError(e.fields.entity, "set", field, err)
		}

		value = normalized
	}

	e.values[field] = value

	return nil
}

// SetValues stores every entry of values, stopping at the first failure.
func (e *Entity) SetValues(values Record) error {
	for field, value := range values {
		if err := e.Set(field, value); err != nil {
			return err
		}
	}

	return nil
}

// Get returns the last value set for field.
func (e *Entity) Get(field string) (any, bool) {
	value, ok := e.values[field]

	return value, ok
}

// Has reports whether field was explicitly set.
func (e *Entity) Has(field string) bool {
	_, ok := e.values[field]

	return ok
}

// Unset removes an explicitly set value.
func (e *Entity) Unset(field string) {
	delete(e.values, field)
}

// Values returns a snapshot of the explicitly set fields. Nested models are
// flattened to records.
func (e *Entity) Values() Record {
	out := make(Record, len(e.values))
	for field, value := range e.values {
		out[field] = snapshot(value)
	}

	return out
}

// ID returns the identity as a positive integer.
func (e *Entity) ID() (int, error) {
	value, ok := e.values[FieldIdentity]
	if !ok {
		return 0, NewConfigurationError(e.fields.entity, "identity", FieldIdentity, ErrIdentityRequired)
	}

	id, ok := AsInt(value)
	if !ok || id <= 0 {
		return 0, NewConfigurationError(e.fields.entity, "identity", FieldIdentity, ErrInvalidIdentity)
	}

	return id, nil
}

func snapshot(value any) any {
	switch v := value.(type) {
	case Model:
		return v.Values()
	case map[string]any:
		out := make(map[string]any, len(v))
		for key, item := range v {
			out[key] = snapshot(item)
		}

		return out
	case []any:
		out := make([]any, len(v))
		for i, item := range v {
			out[i] = snapshot(item)
		}

		return out
	case []map[string]any:
		out := make([]any, len(v))
		for i, item := range v {
			out[i] = snapshot(item)
		}

		return out
	case []Model:
		out := make([]any, len(v))
		for i, item := range v {
			out[i] = item.Values()
		}

		return out
	case []string:
		return append([]string(nil), v...)
	case []int:
		return append([]int(nil), v...)
	default:
		return value
	}
}

// AsInt coerces integral JSON-ish values to int.
func AsInt(value any) (int, bool) {
	switch v := value.(type) {
	case int:
		return v, true
	case int8:
		return int(v), true
	case int16:
		return int(v), true
	case int32:
		return int(v), true
	case int64:
		return int(v), true
	case uint:
		return int(v), true
	case uint32:
		return int(v), true
	case uint64:
		return int(v), true
	case float32:
		return floatToInt(float64(v))
	case float64:
		return floatToInt(v)
	case json.Number:
		n, err := v.Int64()
		if err != nil {
			return 0, false
		}

		return int(n), true
	case string:
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return 0, false
		}

		return n, true
	default:
		return 0, false
	}
}

func floatToInt(f float64) (int, bool) {
	if f != math.Trunc(f) || math.IsInf(f, 0) || math.IsNaN(f) {
		return 0, false
	}

	return int(f), true
}

// Truthy reports whether a value counts as set for optional metadata:
// nil, false, zero numbers, empty strings, "0" and empty collections do not.
func Truthy(value any) bool {
	switch v := value.(type) {
	case nil:
		return false
	case bool:
		return v
	case string:
		return v != "" && v != "0"
	case int:
		return v != 0
	case int64:
		return v != 0
	case int32:
		return v != 0
	case float64:
		return v != 0
	case float32:
		return v != 0
	case json.Number:
		f, err := v.Float64()

		return err == nil && f != 0
	case []any:
		return len(v) > 0
	case []string:
		return len(v) > 0
	case []int:
		return len(v) > 0
	case map[string]any:
		return len(v) > 0
	default:
		return truthyKind(reflect.ValueOf(value))
	}
}

func truthyKind(v reflect.Value) bool {
	switch v.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return v.Int() != 0
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return v.Uint() != 0
	case reflect.Float32, reflect.Float64:
		return v.Float() != 0
	case reflect.String:
		return v.Len() > 0 && v.String() != "0"
	case reflect.Slice, reflect.Map, reflect.Array:
		return v.Len() > 0
	case reflect.Pointer, reflect.Interface:
		return !v.IsNil()
	default:
		return true
	}
}
