// Package prompt builds the instruction text sent to the generation backend.
// Each instruction is an ordered list of named fragments; a fragment renders
// only when its Include rule holds, and fragments always render in
// declaration order.
package prompt

import (
	"strings"

	"callinsight_backend/internal/callqa/domain"
)

// Task selects which instruction is being composed.
type Task int

const (
	TaskAnalysis Task = iota
	TaskChat
)

func (t Task) String() string {
	if t == TaskChat {
		return "chat"
	}
	return "analysis"
}

// Context is everything a fragment may read.
type Context struct {
	Task          Task
	ReferenceText string
	RedactPII     bool
	Analysis      *domain.CallAnalysis
}

// HasReference reports whether the reference text carries any content.
// The text itself is used verbatim when it does.
func (c Context) HasReference() bool {
	return strings.TrimSpace(c.ReferenceText) != ""
}

// Fragment is one named directive block.
type Fragment struct {
	Name    string
	Include func(Context) bool
	Render  func(Context) string
}

// Composer renders fragments in declaration order.
type Composer struct {
	fragments []Fragment
}

// NewComposer returns a composer over the given fragments. A nil Include
// means the fragment is always rendered.
func NewComposer(fragments ...Fragment) *Composer {
	return &Composer{fragments: append([]Fragment(nil), fragments...)}
}

// Compose renders the included fragments joined by blank lines.
func (c *Composer) Compose(ctx Context) string {
	parts := make([]string, 0, len(c.fragments))
	for _, f := range c.fragments {
		if included(f, ctx) {
			parts = append(parts, f.Render(ctx))
		}
	}
	return strings.Join(parts, "\n\n")
}

// Fragments returns the names of the fragments Compose would render for ctx.
func (c *Composer) Fragments(ctx Context) []string {
	names := make([]string, 0, len(c.fragments))
	for _, f := range c.fragments {
		if included(f, ctx) {
			names = append(names, f.Name)
		}
	}
	return names
}

func included(f Fragment, ctx Context) bool {
	return f.Include == nil || f.Include(ctx)
}

func always(Context) bool { return true }

func static(text string) func(Context) string {
	return func(Context) string { return text }
}
