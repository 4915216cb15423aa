// Package service implements the user-declared RPC surface: services,
// methods, and events.
package service

import (
	"encoding/json"
	"strings"
)

// ArgType is one of the closed set of semantic types allowed for method
// arguments, method returns, and event payload fields.
type ArgType string

// The closed set of semantic types: a tagged variant, not ad-hoc
// reflection.
const (
	TypeBool   ArgType = "bool"
	TypeInt    ArgType = "int"
	TypeFloat  ArgType = "float"
	TypeString ArgType = "string"
	TypeList   ArgType = "list"
	TypeMap    ArgType = "map"
)

// Arg is a (name, semantic-type) pair, used for method arguments, method
// returns, and event sends-lists.
type Arg struct {
	Name string
	Type ArgType
}

// String renders an Arg as "name: type", used when serializing a
// service/device description document.
func (a Arg) String() string {
	return a.Name + ": " + string(a.Type)
}

// MatchesType reports whether value satisfies the declared semantic type t.
//
// Numbers decoded from JSON arrive either as float64 (encoding/json's
// default) or json.Number (when a decoder uses UseNumber, as the device hub
// does for method arguments so int/float can be told apart). A JSON number
// satisfies "int" only when it has no fractional part.
func MatchesType(value any, t ArgType) bool {
	switch t {
	case TypeBool:
		_, ok := value.(bool)
		return ok
	case TypeString:
		_, ok := value.(string)
		return ok
	case TypeList:
		_, ok := value.([]any)
		return ok
	case TypeMap:
		_, ok := value.(map[string]any)
		return ok
	case TypeInt:
		return isWholeNumber(value)
	case TypeFloat:
		return isNumber(value)
	default:
		return false
	}
}

func isNumber(value any) bool {
	switch value.(type) {
	case json.Number, float64:
		return true
	default:
		return false
	}
}

func isWholeNumber(value any) bool {
	switch v := value.(type) {
	case json.Number:
		return !strings.ContainsAny(string(v), ".eE")
	case float64:
		return v == float64(int64(v))
	default:
		return false
	}
}
