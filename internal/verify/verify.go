// Package verify checks a written document: every relative script and
// stylesheet reference must resolve to a file on disk, seen from the
// document's own directory.
package verify

import (
	"io"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/net/html"

	"git.home.luguber.info/inful/pagebundle/internal/foundation/errors"
)

// AssetLink is one script src or stylesheet href found in the document.
type AssetLink struct {
	Tag       string // script or link
	Attribute string // src or href
	URL       string
	// Resolved is the file the URL points to; empty for links that are not
	// checked (absolute, root-relative or non-file URLs).
	Resolved string
}

// Result lists the checked links and those whose target is missing.
type Result struct {
	Links   []AssetLink
	Missing []AssetLink
}

// OK reports whether every checked link resolved.
func (r *Result) OK() bool { return len(r.Missing) == 0 }

// Document parses the HTML file at path and checks its asset links.
func Document(path string) (*Result, error) {
	f, err := os.Open(filepath.Clean(path))
	if err != nil {
		return nil, errors.WrapError(err, errors.CategoryFileSystem, "failed to open output document").
			WithContext("path", path).
			Build()
	}
	defer func() { _ = f.Close() }()

	return Reader(f, filepath.Dir(path))
}

// Reader checks the document read from r, resolving links against baseDir.
func Reader(r io.Reader, baseDir string) (*Result, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return nil, errors.WrapError(err, errors.CategoryValidation, "failed to parse output document").Build()
	}

	res := &Result{}
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			if link, ok := assetLink(n); ok {
				link.Resolved = resolve(baseDir, link.URL)
				res.Links = append(res.Links, link)
				if link.Resolved != "" {
					if _, statErr := os.Stat(link.Resolved); statErr != nil {
						res.Missing = append(res.Missing, link)
					}
				}
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)
	return res, nil
}

func assetLink(n *html.Node) (AssetLink, bool) {
	switch n.Data {
	case "script":
		if src := getAttr(n, "src"); src != "" {
			return AssetLink{Tag: "script", Attribute: "src", URL: src}, true
		}
	case "link":
		if !strings.EqualFold(getAttr(n, "rel"), "stylesheet") {
			return AssetLink{}, false
		}
		if href := getAttr(n, "href"); href != "" {
			return AssetLink{Tag: "link", Attribute: "href", URL: href}, true
		}
	}
	return AssetLink{}, false
}

// resolve maps a document-relative URL to a file path under baseDir.
func resolve(baseDir, raw string) string {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil || u.Scheme != "" || u.Host != "" || u.Path == "" || strings.HasPrefix(u.Path, "/") {
		return ""
	}
	return filepath.Join(baseDir, filepath.FromSlash(u.Path))
}

func getAttr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}
