// Package sanitize turns markup into plain text.
package sanitize

import (
	"regexp"
	"strings"
)

var (
	// scriptStyleRegex matches script and style elements including their bodies.
	scriptStyleRegex = regexp.MustCompile(`(?is)<(script|style)\b[^>]*>.*?</(script|style)>`)
	// blockTagRegex matches tags that end a visual line.
	blockTagRegex = regexp.MustCompile(`(?i)<\s*(br|/p|/div|/li|/tr|/h[1-6])\b[^>]*>`)
	// htmlTagRegex matches HTML tags
	htmlTagRegex   = regexp.MustCompile(`<[^>]*>`)
	spaceRunRegex  = regexp.MustCompile(`[ \t\f\v]+`)
	blankLineRegex = regexp.MustCompile(`\n\s*\n+`)
)

var entityReplacer = strings.NewReplacer(
	"&nbsp;", " ",
	"&lt;", "<",
	"&gt;", ">",
	"&quot;", "\"",
	"&#39;", "'",
	"&amp;", "&",
)

// StripHTML removes all HTML tags from a string and returns readable text.
// Block-level tags become line breaks so paragraphs stay apart.
func StripHTML(s string) string {
	result := scriptStyleRegex.ReplaceAllString(s, "")
	result = blockTagRegex.ReplaceAllString(result, "\n")
	result = htmlTagRegex.ReplaceAllString(result, "")
	result = entityReplacer.Replace(result)
	// Re-strip after entity decode to catch encoded tags
	result = htmlTagRegex.ReplaceAllString(result, "")
	return Text(result)
}

// Text normalizes whitespace: runs of spaces collapse to one and blank line
// runs collapse to a single empty line.
func Text(s string) string {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	s = spaceRunRegex.ReplaceAllString(s, " ")
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimSpace(line)
	}
	s = strings.Join(lines, "\n")
	s = blankLineRegex.ReplaceAllString(s, "\n\n")
	return strings.TrimSpace(s)
}
