// Package dialog resolves recognized labels and composes notification text
package dialog

import (
	"math/rand"
	"strings"
)

// Placeholder is replaced by the display name in match templates.
const Placeholder = "{}"

// Mapping translates raw recognized text into a display name.
type Mapping struct {
	names map[string]string
}

// NewMapping copies m so later changes to it are not observed.
func NewMapping(m map[string]string) Mapping {
	names := make(map[string]string, len(m))
	for k, v := range m {
		names[k] = v
	}
	return Mapping{names: names}
}

// Resolve returns the display name for text. Matching is exact and case-sensitive.
func (m Mapping) Resolve(text string) (string, bool) {
	if text == "" {
		return "", false
	}
	name, ok := m.names[text]
	return name, ok
}

// Len returns the number of labels.
func (m Mapping) Len() int { return len(m.names) }

// Picker returns a uniform index in [0, n).
type Picker func(n int) int

// Option configures a Composer.
type Option func(*Composer)

// WithPicker replaces the random source.
func WithPicker(p Picker) Option {
	return func(c *Composer) { c.pick = p }
}

// Composer picks and fills message templates. Both pools must be non-empty.
type Composer struct {
	match   []string
	noMatch []string
	pick    Picker
}

// NewComposer creates a composer over copies of the two pools.
func NewComposer(match, noMatch []string, opts ...Option) *Composer {
	c := &Composer{
		match:   append([]string(nil), match...),
		noMatch: append([]string(nil), noMatch...),
		pick:    rand.Intn,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Compose returns a no-match template verbatim when ok is false,
// otherwise a match template with the placeholder replaced by name.
func (c *Composer) Compose(name string, ok bool) string {
	if !ok {
		return c.noMatch[c.pick(len(c.noMatch))]
	}
	tpl := c.match[c.pick(len(c.match))]
	return strings.Replace(tpl, Placeholder, name, 1)
}
