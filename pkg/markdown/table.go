package markdown

import (
	"strings"
)

// Section is one rendered table with an optional heading and notes.
type Section struct {
	Heading string
	Notes   []string
	Lines   []string
}

// TableMarkdown lays sections out as markdown, each table in a fenced
// code block. Lines must not contain color escapes.
func TableMarkdown(sections ...Section) string {
	var b strings.Builder
	for i, s := range sections {
		if i > 0 {
			b.WriteString("\n")
		}
		if s.Heading != "" {
			b.WriteString("## ")
			b.WriteString(s.Heading)
			b.WriteString("\n\n")
		}
		for _, n := range s.Notes {
			b.WriteString("- ")
			b.WriteString(n)
			b.WriteString("\n")
		}
		if len(s.Notes) > 0 {
			b.WriteString("\n")
		}
		if len(s.Lines) == 0 {
			continue
		}
		fence := strings.Repeat("`", max(3, longestRun(s.Lines, '`')+1))
		b.WriteString(fence)
		b.WriteString("text\n")
		for _, l := range s.Lines {
			b.WriteString(l)
			b.WriteString("\n")
		}
		b.WriteString(fence)
		b.WriteString("\n")
	}
	return b.String()
}

// TableHTML renders sections as a sanitized HTML fragment. Links and
// images are dropped.
func TableHTML(sections ...Section) string {
	return RenderToHTMLWithOptions(TableMarkdown(sections...), RenderOptions{NoLinks: true, NoImages: true})
}

func longestRun(lines []string, c byte) int {
	longest := 0
	for _, l := range lines {
		run := 0
		for i := 0; i < len(l); i++ {
			if l[i] != c {
				run = 0
				continue
			}
			run++
			longest = max(longest, run)
		}
	}
	return longest
}
