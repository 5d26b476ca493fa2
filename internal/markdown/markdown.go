// Package markdown extracts structure from note bodies: YAML frontmatter,
// [[wikilinks]], and inline #hashtags.
package markdown

import (
	"bytes"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"
)

var (
	wikilinkRe = regexp.MustCompile(`\[\[(.*?)\]\]`)
	hashtagRe  = regexp.MustCompile(`(?:^|\s)#([A-Za-z][A-Za-z0-9_/-]*)`)
	slugStrip  = regexp.MustCompile(`[^a-z0-9/_-]+`)
)

// Document holds the structure extracted from a markdown body.
type Document struct {
	Frontmatter map[string]any
	Body        string
	Links       []string
	Tags        []string
	Title       string
}

// Parse extracts frontmatter, wikilinks, and hashtags from raw markdown.
func Parse(data []byte) *Document {
	fm, body := splitFrontmatter(data)
	return &Document{
		Frontmatter: fm,
		Body:        body,
		Links:       Wikilinks(body),
		Tags:        Hashtags(body, fm),
		Title:       Title(fm, body),
	}
}

// splitFrontmatter separates YAML frontmatter (between leading --- delimiters)
// from the markdown body. Missing or malformed frontmatter yields the whole
// content as body.
func splitFrontmatter(data []byte) (map[string]any, string) {
	const delim = "---"
	trimmed := bytes.TrimLeft(data, "\n\r")

	if !bytes.HasPrefix(trimmed, []byte(delim)) {
		return nil, string(data)
	}

	rest := trimmed[len(delim):]
	idx := bytes.Index(rest, []byte("\n"+delim))
	if idx < 0 {
		return nil, string(data)
	}

	yamlBlock := rest[:idx]
	afterDelim := rest[idx+1+len(delim):]
	body := strings.TrimLeft(string(afterDelim), "\n\r")

	var fm map[string]any
	if err := yaml.Unmarshal(yamlBlock, &fm); err != nil {
		return nil, string(data)
	}

	return fm, body
}

// Wikilinks returns deduplicated wikilink targets, normalising aliases:
// [[Target|Alias]] resolves to Target.
func Wikilinks(body string) []string {
	matches := wikilinkRe.FindAllStringSubmatch(body, -1)
	seen := make(map[string]struct{}, len(matches))
	var out []string
	for _, m := range matches {
		target := m[1]
		if i := strings.Index(target, "|"); i >= 0 {
			target = target[:i]
		}
		target = strings.TrimSpace(target)
		if target == "" {
			continue
		}
		if _, ok := seen[target]; ok {
			continue
		}
		seen[target] = struct{}{}
		out = append(out, target)
	}
	return out
}

// Hashtags collects inline #tags from body plus the frontmatter "tags" list.
func Hashtags(body string, fm map[string]any) []string {
	seen := make(map[string]struct{})
	var out []string

	add := func(tag string) {
		tag = strings.TrimSpace(tag)
		if tag == "" {
			return
		}
		if _, dup := seen[tag]; dup {
			return
		}
		seen[tag] = struct{}{}
		out = append(out, tag)
	}

	if fm != nil {
		if raw, ok := fm["tags"]; ok {
			if list, ok := raw.([]any); ok {
				for _, item := range list {
					if s, ok := item.(string); ok {
						add(s)
					}
				}
			}
		}
	}

	for _, m := range hashtagRe.FindAllStringSubmatch(body, -1) {
		add(m[1])
	}

	return out
}

// Title returns the frontmatter "title" if present, otherwise the first
// H1 heading, otherwise empty string.
func Title(fm map[string]any, body string) string {
	if fm != nil {
		if t, ok := fm["title"]; ok {
			if s, ok := t.(string); ok && s != "" {
				return s
			}
		}
	}
	for _, line := range strings.Split(body, "\n") {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "# ") {
			return strings.TrimSpace(trimmed[2:])
		}
	}
	return ""
}

// Slugify lowercases a tag name and strips characters outside the slug
// alphabet, collapsing whitespace runs to single dashes.
func Slugify(name string) string {
	s := strings.ToLower(strings.TrimSpace(name))
	s = strings.Join(strings.Fields(s), "-")
	s = slugStrip.ReplaceAllString(s, "")
	s = strings.Trim(s, "-")
	return s
}
