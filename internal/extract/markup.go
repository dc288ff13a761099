package extract

import (
	"html"
	"regexp"
	"strings"
)

var (
	scriptTag     = regexp.MustCompile(`(?is)<script[^>]*>.*?</script>`)
	styleTag      = regexp.MustCompile(`(?is)<style[^>]*>.*?</style>`)
	noscriptTag   = regexp.MustCompile(`(?is)<noscript[^>]*>.*?</noscript>`)
	headTag       = regexp.MustCompile(`(?is)<head[^>]*>.*?</head>`)
	svgTag        = regexp.MustCompile(`(?is)<svg[^>]*>.*?</svg>`)
	htmlComments  = regexp.MustCompile(`(?s)<!--.*?-->`)
	closeBlocks   = regexp.MustCompile(`(?i)</(p|div|h[1-6]|li|tr|blockquote|pre|table|section|article)>`)
	openBlocks    = regexp.MustCompile(`(?i)<(p|div|h[1-6]|li|tr|blockquote|pre|table|section|article)[^>]*>`)
	breakTags     = regexp.MustCompile(`(?i)<(br|hr)\s*/?>`)
	anyTag        = regexp.MustCompile(`<[^>]+>`)
	multiSpaces   = regexp.MustCompile(`[ \t]+`)
	multiNewlines = regexp.MustCompile(`\n{3,}`)

	codeFence  = regexp.MustCompile("(?s)```.*?```")
	inlineCode = regexp.MustCompile("`([^`]+)`")
	mdImage    = regexp.MustCompile(`!\[[^\]]*\]\([^)]+\)`)
	mdLink     = regexp.MustCompile(`\[([^\]]+)\]\([^)]+\)`)
	mdHeading  = regexp.MustCompile(`(?m)^#{1,6}[ \t]+`)
	mdEmphasis = regexp.MustCompile(`(\*\*|__|\*|_)(\S[^*_]*?\S|\S)(\*\*|__|\*|_)`)
	mdQuote    = regexp.MustCompile(`(?m)^>[ \t]?`)
	mdRule     = regexp.MustCompile(`(?m)^[ \t]*[-*_]{3,}[ \t]*$`)
	mdBullet   = regexp.MustCompile(`(?m)^[ \t]*[-*+][ \t]+`)
	mdNumbered = regexp.MustCompile(`(?m)^[ \t]*\d+\.[ \t]+`)
)

// stripHTML removes tags and non-content elements and decodes entities.
func stripHTML(content string) string {
	for _, re := range []*regexp.Regexp{scriptTag, styleTag, noscriptTag, headTag, svgTag, htmlComments} {
		content = re.ReplaceAllString(content, "")
	}
	content = openBlocks.ReplaceAllString(content, "\n")
	content = closeBlocks.ReplaceAllString(content, "\n")
	content = breakTags.ReplaceAllString(content, "\n")
	content = anyTag.ReplaceAllString(content, "")
	content = html.UnescapeString(content)
	content = strings.ReplaceAll(content, "\u00a0", " ")
	content = multiSpaces.ReplaceAllString(content, " ")
	return compactLines(content)
}

// stripMarkdown keeps the prose of a markdown document. Code blocks are
// dropped; inline code keeps its text.
func stripMarkdown(content string) string {
	content = strings.ReplaceAll(content, "\r\n", "\n")
	content = codeFence.ReplaceAllString(content, "")
	content = mdImage.ReplaceAllString(content, "")
	content = mdLink.ReplaceAllString(content, "$1")
	content = inlineCode.ReplaceAllString(content, "$1")
	content = mdHeading.ReplaceAllString(content, "")
	content = mdRule.ReplaceAllString(content, "")
	content = mdBullet.ReplaceAllString(content, "")
	content = mdNumbered.ReplaceAllString(content, "")
	content = mdQuote.ReplaceAllString(content, "")
	content = mdEmphasis.ReplaceAllString(content, "$2")
	content = multiNewlines.ReplaceAllString(content, "\n\n")
	return strings.TrimSpace(content)
}

// compactLines trims every line and drops the empty ones.
func compactLines(content string) string {
	lines := strings.Split(content, "\n")
	kept := lines[:0]
	for _, line := range lines {
		if line = strings.TrimSpace(line); line != "" {
			kept = append(kept, line)
		}
	}
	return strings.Join(kept, "\n")
}
