// Package names splits a free-form display name into its parts and derives the short name
// used to greet the buyer in emails.
package names

import (
	"regexp"
	"strings"
)

type Parts struct {
	Title  string
	First  string
	Middle string
	Last   string
	Nick   string
	Suffix string
}

var nicknamePattern = regexp.MustCompile(`"([^"]+)"|“([^”]+)”|\(([^)]+)\)|(?:^|\s)'([^']+)'(?:\s|$)`)

var titles = map[string]bool{
	"mr": true, "mrs": true, "ms": true, "miss": true, "mx": true, "dr": true,
	"prof": true, "rev": true, "fr": true, "sir": true, "dame": true, "hon": true,
}

var suffixes = map[string]bool{
	"jr": true, "sr": true, "ii": true, "iii": true, "iv": true, "v": true,
	"phd": true, "md": true, "esq": true, "jnr": true, "snr": true,
}

// particles start a compound last name ("van Beethoven", "de la Cruz").
var particles = map[string]bool{
	"van": true, "von": true, "der": true, "den": true, "de": true, "del": true, "della": true,
	"di": true, "da": true, "la": true, "le": true, "du": true, "st": true, "ter": true, "ten": true,
	"bin": true, "ibn": true,
}

// Parse never fails; names it cannot make sense of come back partially filled.
func Parse(full string) Parts {
	var p Parts

	rest, nicks := extractNicknames(full)
	p.Nick = strings.Join(nicks, ", ")

	segments := splitSegments(rest)
	var suffixParts []string
	for len(segments) > 1 && isSuffix(segments[len(segments)-1]) {
		suffixParts = append([]string{segments[len(segments)-1]}, suffixParts...)
		segments = segments[:len(segments)-1]
	}

	var tokens []string
	lastFromComma := ""
	switch len(segments) {
	case 0:
	case 1:
		tokens = strings.Fields(segments[0])
	default:
		// "Last, First Middle"
		lastFromComma = segments[0]
		tokens = strings.Fields(strings.Join(segments[1:], " "))
	}

	for len(tokens) > 1 && titles[normalize(tokens[0])] {
		p.Title = strings.TrimSpace(p.Title + " " + tokens[0])
		tokens = tokens[1:]
	}
	for len(tokens) > 1 && isSuffix(tokens[len(tokens)-1]) {
		suffixParts = append([]string{tokens[len(tokens)-1]}, suffixParts...)
		tokens = tokens[:len(tokens)-1]
	}
	p.Suffix = strings.Join(suffixParts, " ")

	if lastFromComma != "" {
		p.Last = lastFromComma
		if len(tokens) > 0 {
			p.First = tokens[0]
			p.Middle = strings.Join(tokens[1:], " ")
		}
		return p
	}

	switch n := len(tokens); n {
	case 0:
	case 1:
		p.First = tokens[0]
	default:
		p.First = tokens[0]
		lastStart := n - 1
		for lastStart > 1 && particles[normalize(tokens[lastStart-1])] {
			lastStart--
		}
		p.Last = strings.Join(tokens[lastStart:], " ")
		p.Middle = strings.Join(tokens[1:lastStart], " ")
	}
	return p
}

// GreetingName composes first, middle and nickname in that order, skipping what is missing.
func GreetingName(p Parts) string {
	switch {
	case p.Middle != "" && p.Nick != "":
		return join(p.First, p.Middle, p.Nick)
	case p.Middle != "":
		return join(p.First, p.Middle)
	case p.Nick != "":
		return join(p.First, p.Nick)
	default:
		return p.First
	}
}

func Greeting(full string) string {
	return GreetingName(Parse(full))
}

func extractNicknames(s string) (string, []string) {
	var nicks []string
	for _, m := range nicknamePattern.FindAllStringSubmatch(s, -1) {
		for _, g := range m[1:] {
			if g = strings.TrimSpace(g); g != "" {
				nicks = append(nicks, g)
				break
			}
		}
	}
	return nicknamePattern.ReplaceAllString(s, " "), nicks
}

func splitSegments(s string) []string {
	var out []string
	for _, seg := range strings.Split(s, ",") {
		if seg = strings.TrimSpace(seg); seg != "" {
			out = append(out, seg)
		}
	}
	return out
}

func isSuffix(s string) bool {
	return suffixes[normalize(s)]
}

func normalize(s string) string {
	return strings.ToLower(strings.ReplaceAll(strings.TrimSpace(s), ".", ""))
}

func join(parts ...string) string {
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p != "" {
			out = append(out, p)
		}
	}
	return strings.Join(out, " ")
}
