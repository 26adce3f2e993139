package harness

import (
	"io"
	"strings"

	"golang.org/x/net/html"
)

// ParseHTMLCatalog parses test cases from an HTML document. Every
// <case image="…" preset="…"> element contributes one case; its text content
// becomes the description.
//
//	<catalog>
//	  <case image="DSC03024.tif" preset="testing/preset_grain_no_blur.bs">grain</case>
//	</catalog>
func ParseHTMLCatalog(r io.Reader) ([]TestCase, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return nil, err
	}

	var cases []TestCase
	var findElements func(*html.Node)
	findElements = func(n *html.Node) {
		if n.Type == html.ElementNode && n.Data == "case" {
			cases = append(cases, parseCaseElement(n))
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			findElements(c)
		}
	}
	findElements(doc)

	return cases, nil
}

func parseCaseElement(n *html.Node) TestCase {
	var tc TestCase
	for _, attr := range n.Attr {
		switch attr.Key {
		case "image":
			tc.Image = strings.TrimSpace(attr.Val)
		case "preset":
			tc.Preset = strings.TrimSpace(attr.Val)
		}
	}
	tc.Description = strings.TrimSpace(textContent(n))
	return tc
}

func textContent(n *html.Node) string {
	var sb strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			sb.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return sb.String()
}
