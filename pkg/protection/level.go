// Package protection selects which integrity mechanisms a stack carries.
package protection

import (
	"fmt"
	"strings"

	"github.com/samber/lo"
)

// Level is a set of independently toggleable protections. It is fixed when a
// stack is constructed and never changes per call.
type Level uint8

const (
	// Dump validates before every mutating operation and dumps the stack on failure.
	Dump Level = 1 << iota
	// Boundary places sentinel words around the bookkeeping fields and the data region.
	Boundary
	// Hashing keeps struct and content checksums current on every mutation.
	Hashing
)

const (
	None Level = 0
	All        = Dump | Boundary | Hashing
)

type flagName struct {
	flag Level
	name string
}

var flagNames = []flagName{
	{Dump, "dump"},
	{Boundary, "boundary"},
	{Hashing, "hashing"},
}

var tokenMap = map[string]Level{
	"none":     None,
	"dump":     Dump,
	"boundary": Boundary,
	"canary":   Boundary,
	"hashing":  Hashing,
	"hash":     Hashing,
	"all":      All,
}

// Has reports whether every flag in f is set.
func (l Level) Has(f Level) bool {
	return l&f == f
}

func (l Level) String() string {
	switch l {
	case None:
		return "none"
	case All:
		return "all"
	}
	names := lo.FilterMap(flagNames, func(entry flagName, _ int) (string, bool) {
		return entry.name, l.Has(entry.flag)
	})
	if l&^All != 0 {
		names = append(names, fmt.Sprintf("0x%02x", uint8(l&^All)))
	}
	return strings.Join(names, "+")
}

// Parse converts a textual level such as "all", "dump+hashing" or
// "boundary,hash" into a Level. Tokens are case-insensitive and may be
// separated by ',', '+' or '|'. An empty string is None.
func Parse(raw string) (Level, error) {
	tokens := strings.FieldsFunc(strings.ToLower(raw), func(r rune) bool {
		return r == ',' || r == '+' || r == '|'
	})
	tokens = lo.Compact(lo.Map(tokens, func(t string, _ int) string {
		return strings.TrimSpace(t)
	}))

	level := None
	for _, token := range tokens {
		flag, ok := tokenMap[token]
		if !ok {
			return None, fmt.Errorf("unknown protection %q (expected one of: %s)", token, strings.Join(Names(), ", "))
		}
		level |= flag
	}
	return level, nil
}

// Names lists the tokens Parse accepts, without aliases.
func Names() []string {
	return []string{"none", "dump", "boundary", "hashing", "all"}
}

// Combinations returns all eight levels in ascending order.
func Combinations() []Level {
	return lo.Times(int(All)+1, func(i int) Level {
		return Level(i)
	})
}
