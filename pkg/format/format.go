// Package format renders stack elements as text for diagnostic dumps.
package format

import (
	"fmt"
	"sort"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/mholzen/guardstack/pkg/stack"
)

// Renderer turns one element into text.
type Renderer[T stack.Element] func(T) string

// Builtins maps each renderer name to a one-line description.
var Builtins = map[string]string{
	"plain":   "decimal value",
	"char":    "value followed by the character it encodes",
	"hex":     "hexadecimal value",
	"grouped": "decimal value with locale digit grouping",
}

func ListBuiltins() []string {
	names := make([]string, 0, len(Builtins))
	for name := range Builtins {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func Plain[T stack.Element](v T) string {
	return fmt.Sprint(v)
}

func Char[T stack.Element](v T) string {
	return fmt.Sprintf("%v (%c)", v, rune(v))
}

func Hex[T stack.Element](v T) string {
	return fmt.Sprintf("%#x", v)
}

// Grouped renders numbers with the digit grouping of tag, e.g. 1,234,567
// for English.
func Grouped[T stack.Element](tag language.Tag) Renderer[T] {
	p := message.NewPrinter(tag)
	return func(v T) string {
		return p.Sprintf("%v", v)
	}
}

// Lookup returns the renderer registered under name. An empty name is plain.
func Lookup[T stack.Element](name string) (Renderer[T], error) {
	switch name {
	case "", "plain":
		return Plain[T], nil
	case "char":
		return Char[T], nil
	case "hex":
		return Hex[T], nil
	case "grouped":
		return Grouped[T](language.English), nil
	}
	return nil, fmt.Errorf("unknown renderer %q (expected one of: %v)", name, ListBuiltins())
}
