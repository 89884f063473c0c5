// Package schema declares the fields of component and variant types: their
// semantic type and the default used when neither an entity nor its prototype
// supplies a value.
package schema

import (
	"fmt"
)

// Type is the semantic type of a field.
type Type uint8

const (
	TypeAny Type = iota
	TypeInt
	TypeFloat
	TypeBool
	TypeString
	// TypeUid references another entity by its document uid.
	TypeUid
	TypeVec2
	TypeBox2
	TypeList
	TypeStruct
	// TypeVariant holds a tagged value built by the variant registry.
	TypeVariant
	// TypeMap is a free-form mapping kept as is.
	TypeMap
)

var typeNames = [...]string{
	TypeAny:     "any",
	TypeInt:     "int",
	TypeFloat:   "float",
	TypeBool:    "bool",
	TypeString:  "string",
	TypeUid:     "uid",
	TypeVec2:    "vec2",
	TypeBox2:    "box2",
	TypeList:    "list",
	TypeStruct:  "struct",
	TypeVariant: "variant",
	TypeMap:     "map",
}

func (t Type) String() string {
	if int(t) < len(typeNames) {
		return typeNames[t]
	}
	return fmt.Sprintf("type(%d)", t)
}

// Field describes one declared field.
type Field struct {
	Name        string
	Type        Type
	Default     any
	Required    bool
	Nullable    bool
	Elem        *Field  // element of a TypeList
	Fields      []Field // members of a TypeStruct
	Description string
}

// AsRequired returns a copy of f that has no fallback default.
func (f Field) AsRequired() Field {
	f.Required = true
	f.Default = nil
	return f
}

// Describe returns a copy of f with a description.
func (f Field) Describe(text string) Field {
	f.Description = text
	return f
}

func Int(name string, def int64) Field {
	return Field{Name: name, Type: TypeInt, Default: def}
}

func Float(name string, def float64) Field {
	return Field{Name: name, Type: TypeFloat, Default: def}
}

func Bool(name string, def bool) Field {
	return Field{Name: name, Type: TypeBool, Default: def}
}

func String(name string, def string) Field {
	return Field{Name: name, Type: TypeString, Default: def}
}

// Uid declares a nullable entity reference defaulting to null.
func Uid(name string) Field {
	return Field{Name: name, Type: TypeUid, Nullable: true}
}

func Vec2(name string) Field {
	return Field{Name: name, Type: TypeVec2}
}

func Box2(name string) Field {
	return Field{Name: name, Type: TypeBox2}
}

// ListOf declares a list whose elements follow elem. The element name is only
// used in error paths.
func ListOf(name string, elem Field) Field {
	return Field{Name: name, Type: TypeList, Elem: &elem}
}

func Struct(name string, fields ...Field) Field {
	return Field{Name: name, Type: TypeStruct, Fields: fields}
}

// Variant declares a nullable tagged value defaulting to null.
func Variant(name string) Field {
	return Field{Name: name, Type: TypeVariant, Nullable: true}
}

func Any(name string) Field {
	return Field{Name: name, Type: TypeAny, Nullable: true}
}

func Map(name string) Field {
	return Field{Name: name, Type: TypeMap, Nullable: true}
}
