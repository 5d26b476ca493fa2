package markdown

import (
	"testing"
)

func TestParse_FrontmatterAndBody(t *testing.T) {
	input := []byte("---\ntitle: Hello\ntags:\n  - go\n  - othala\n---\n# Hello\nBody text.\n")
	doc := Parse(input)
	if doc.Title != "Hello" {
		t.Errorf("title = %q, want %q", doc.Title, "Hello")
	}
	if len(doc.Tags) < 2 || doc.Tags[0] != "go" || doc.Tags[1] != "othala" {
		t.Errorf("tags = %v, want [go othala]", doc.Tags)
	}
	if doc.Body != "# Hello\nBody text.\n" {
		t.Errorf("body = %q", doc.Body)
	}
}

func TestParse_NoFrontmatter(t *testing.T) {
	input := []byte("# Just a heading\nSome text.\n")
	doc := Parse(input)
	if doc.Frontmatter != nil {
		t.Errorf("expected nil frontmatter, got %v", doc.Frontmatter)
	}
	if doc.Title != "Just a heading" {
		t.Errorf("title = %q, want %q", doc.Title, "Just a heading")
	}
}

func TestParse_InvalidYAMLFallback(t *testing.T) {
	input := []byte("---\n: invalid: yaml: {{{\n---\nBody\n")
	doc := Parse(input)
	// Invalid YAML falls back to treating everything as body.
	if doc.Frontmatter != nil {
		t.Errorf("expected nil frontmatter on invalid YAML")
	}
}

func TestWikilinks_Basic(t *testing.T) {
	body := "See [[Note A]] and [[Note B|alias]].\nAlso [[Note A]] again."
	links := Wikilinks(body)
	if len(links) != 2 {
		t.Fatalf("len(links) = %d, want 2", len(links))
	}
	if links[0] != "Note A" || links[1] != "Note B" {
		t.Errorf("links = %v", links)
	}
}

func TestWikilinks_EmptyTarget(t *testing.T) {
	links := Wikilinks("see [[ ]] and [[|alias]]")
	if len(links) != 0 {
		t.Errorf("expected no links, got %v", links)
	}
}

func TestHashtags_InlineAndFrontmatter(t *testing.T) {
	fm := map[string]any{
		"tags": []any{"alpha"},
	}
	body := "Some text #beta and #alpha again."
	tags := Hashtags(body, fm)
	// alpha from frontmatter, beta from body; alpha not duplicated.
	if len(tags) != 2 || tags[0] != "alpha" || tags[1] != "beta" {
		t.Errorf("tags = %v, want [alpha beta]", tags)
	}
}

func TestTitle_FrontmatterOverH1(t *testing.T) {
	fm := map[string]any{"title": "FM Title"}
	body := "# H1 Title\ntext"
	if got := Title(fm, body); got != "FM Title" {
		t.Errorf("title = %q, want %q", got, "FM Title")
	}
}

func TestTitle_H1Fallback(t *testing.T) {
	if got := Title(nil, "some text\n# My Heading\nmore"); got != "My Heading" {
		t.Errorf("title = %q, want %q", got, "My Heading")
	}
}

func TestSlugify(t *testing.T) {
	cases := []struct{ in, want string }{
		{"Deep Work", "deep-work"},
		{"  Spaced  Out  ", "spaced-out"},
		{"already-slugged", "already-slugged"},
		{"nested/path", "nested/path"},
		{"Weird!@#Chars", "weirdchars"},
	}
	for _, c := range cases {
		if got := Slugify(c.in); got != c.want {
			t.Errorf("Slugify(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}
