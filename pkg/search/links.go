package search

import (
	"regexp"
	"strings"
)

// linkPattern matches `link: <url>` tokens (and the `URL: <url>` form some
// providers emit). The URL runs until whitespace, a comma or a closing bracket.
var linkPattern = regexp.MustCompile(`(?i)\b(?:link|url):\s*(https?://[^\],\s]+)`)

// ParseLinks extracts URLs from search result text in order of appearance.
// Tokens without an http(s) scheme are ignored and trailing sentence
// punctuation is dropped. Balanced parentheses stay part of the URL.
func ParseLinks(text string) []string {
	matches := linkPattern.FindAllStringSubmatch(text, -1)
	links := make([]string, 0, len(matches))
	for _, m := range matches {
		link := trimTrailing(m[1])
		if link == "http://" || link == "https://" || !hasHost(link) {
			continue
		}
		links = append(links, link)
	}
	return links
}

// trimTrailing drops trailing '.' and ';', and a trailing ')' only when it
// has no matching '(' in the URL.
func trimTrailing(link string) string {
	for link != "" {
		switch link[len(link)-1] {
		case '.', ';':
		case ')':
			if strings.Count(link, ")") <= strings.Count(link, "(") {
				return link
			}
		default:
			return link
		}
		link = link[:len(link)-1]
	}
	return link
}

func hasHost(link string) bool {
	rest := link[strings.Index(link, "://")+3:]
	return rest != "" && rest[0] != '/'
}
