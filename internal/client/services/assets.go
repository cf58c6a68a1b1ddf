package services

import (
	"net/url"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// assetURLs returns the image sources referenced by an item body, resolved
// against the item's own URL. Duplicates and data: URLs are skipped.
func assetURLs(body, base string) []string {
	root, err := html.Parse(strings.NewReader(body))
	if err != nil {
		return nil
	}

	baseURL, err := url.Parse(base)
	if err != nil {
		baseURL = nil
	}

	var (
		out  []string
		seen = map[string]bool{}
	)
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && (n.DataAtom == atom.Img || n.DataAtom == atom.Source) {
			for _, a := range n.Attr {
				if a.Key != "src" {
					continue
				}
				if u := resolveAsset(baseURL, a.Val); u != "" && !seen[u] {
					seen[u] = true
					out = append(out, u)
				}
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(root)
	return out
}

func resolveAsset(base *url.URL, ref string) string {
	ref = strings.TrimSpace(ref)
	if ref == "" || strings.HasPrefix(ref, "data:") {
		return ""
	}
	u, err := url.Parse(ref)
	if err != nil {
		return ""
	}
	if !u.IsAbs() {
		if base == nil || !base.IsAbs() {
			return ""
		}
		u = base.ResolveReference(u)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return ""
	}
	return u.String()
}
