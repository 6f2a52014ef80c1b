package render

import (
	"fmt"
	"strings"

	"bitgrid/pkg/format"
	"bitgrid/pkg/style"
)

type align int

const (
	alignLeft align = iota
	alignCenter
	alignRight
)

// pad returns the spaces to put left and right of text in a field of
// width w. Extra space from centering goes right.
func pad(text string, w int, a align) (left, right int) {
	gap := w - style.Width(text)
	if gap <= 0 {
		return 0, 0
	}
	switch a {
	case alignLeft:
		return 0, gap
	case alignRight:
		return gap, 0
	default:
		return gap / 2, gap - gap/2
	}
}

// compactBits renders n bits of v with no separator, e.g. "0101".
func compactBits(v byte, n int) string {
	return fmt.Sprintf("%0*b", n, v)
}

// spacedBits renders n bits of v separated by spaces, e.g. "0 1 0 1".
func spacedBits(v byte, n int) string {
	var b strings.Builder
	for i := n - 1; i >= 0; i-- {
		if b.Len() > 0 {
			b.WriteByte(' ')
		}
		if v&(1<<i) != 0 {
			b.WriteByte('1')
		} else {
			b.WriteByte('0')
		}
	}
	return b.String()
}

func decimal(v byte) string {
	return fmt.Sprintf("(%d)", v)
}

func decoded(v byte) string {
	return fmt.Sprintf("(%d) '%c'", v, format.Char(v))
}

// wrap breaks text into lines no wider than width. Words wider than the
// line are cut, after the last hyphen that fits when there is one.
func wrap(text string, width int) []string {
	if width < 1 {
		width = 1
	}
	var lines []string
	cur := ""
	for _, word := range strings.Fields(text) {
		for style.Width(word) > width {
			if cur != "" {
				lines = append(lines, cur)
				cur = ""
			}
			head, rest := cut(word, width)
			if i := strings.LastIndexByte(head, '-'); i > 0 && i < len(head)-1 {
				head, rest = word[:i+1], word[i+1:]
			}
			lines = append(lines, head)
			word = rest
		}
		switch {
		case word == "":
		case cur == "":
			cur = word
		case style.Width(cur)+1+style.Width(word) <= width:
			cur += " " + word
		default:
			lines = append(lines, cur)
			cur = word
		}
	}
	if cur != "" {
		lines = append(lines, cur)
	}
	return lines
}

// cut splits s after at most width columns, keeping at least one rune in
// head.
func cut(s string, width int) (head, rest string) {
	w := 0
	for i, r := range s {
		rw := style.Width(string(r))
		if w+rw > width && i > 0 {
			return s[:i], s[i:]
		}
		w += rw
	}
	return s, ""
}

func digits(n int) int {
	return len(fmt.Sprint(n))
}
