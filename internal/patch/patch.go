// Package patch merges partial styling values into existing ones.
//
// Merge rules, applied at every nesting level of the struct:
//   - string fields: a non-empty patch value replaces the base, an empty one keeps it
//   - *bool fields: a non-nil patch value replaces the base, nil keeps it
//   - nested structs (labelStyle, fieldStyle) merge field by field, never wholesale
//
// The practical effect is that editing one label decoration leaves sibling
// decorations and the field style untouched.
package patch

import (
	"dario.cat/mergo"
	"github.com/charmbracelet/log"
)

// Merge returns base with p merged over it. base and p are not modified. A
// merge failure is logged and the base is returned unchanged.
func Merge[T any](base, p T) T {
	out := base
	if err := mergo.Merge(&out, p, mergo.WithOverride, mergo.WithoutDereference); err != nil {
		log.Warn("style patch not applied", "error", err)
		return base
	}
	return out
}
