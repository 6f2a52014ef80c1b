package markdown

import (
	"github.com/microcosm-cc/bluemonday"
	"github.com/russross/blackfriday/v2"
)

// RenderOptions restricts what the sanitizer lets through.
type RenderOptions struct {
	NoLinks  bool
	NoImages bool
}

// RenderToHTML converts markdown text to sanitized HTML.
func RenderToHTML(markdown string) string {
	return RenderToHTMLWithOptions(markdown, RenderOptions{})
}

// RenderToHTMLWithOptions converts markdown text to HTML with blackfriday
// and sanitizes the result with bluemonday.
func RenderToHTMLWithOptions(markdown string, opts RenderOptions) string {
	unsafeHTML := blackfriday.Run(
		[]byte(markdown),
		blackfriday.WithExtensions(
			blackfriday.CommonExtensions|
				blackfriday.AutoHeadingIDs|
				blackfriday.Footnotes,
		),
	)
	return string(policy(opts).SanitizeBytes(unsafeHTML))
}

func policy(opts RenderOptions) *bluemonday.Policy {
	if !opts.NoLinks && !opts.NoImages {
		p := bluemonday.UGCPolicy()
		allowFormatting(p)
		return p
	}

	p := bluemonday.NewPolicy()
	p.AllowStandardAttributes()
	p.AllowElements(
		"h1", "h2", "h3", "h4", "h5", "h6",
		"p", "br", "hr", "pre", "code", "span",
		"strong", "em", "del",
		"ul", "ol", "li", "blockquote",
		"table", "thead", "tbody", "tr", "th", "td",
	)
	if !opts.NoLinks {
		p.AllowStandardURLs()
		p.AllowAttrs("href").OnElements("a")
	}
	if !opts.NoImages {
		p.AllowImages()
	}
	allowFormatting(p)
	return p
}

func allowFormatting(p *bluemonday.Policy) {
	p.AllowAttrs("class").Matching(bluemonday.SpaceSeparatedTokens).OnElements("code", "pre", "span")
	p.AllowAttrs("id").Matching(bluemonday.SpaceSeparatedTokens).OnElements("h1", "h2", "h3", "h4", "h5", "h6")
}
