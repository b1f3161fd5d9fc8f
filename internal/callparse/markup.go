package callparse

import (
	"io"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// findFirst returns the first element with the given tag in document order.
func findFirst(n *html.Node, tag atom.Atom) *html.Node {
	if n.Type == html.ElementNode && n.DataAtom == tag {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if found := findFirst(c, tag); found != nil {
			return found
		}
	}
	return nil
}

// findAll returns every descendant element with the given tag in document order.
func findAll(n *html.Node, tag atom.Atom) []*html.Node {
	var out []*html.Node
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			if c.Type == html.ElementNode && c.DataAtom == tag {
				out = append(out, c)
			}
			walk(c)
		}
	}
	walk(n)
	return out
}

// textFragments collects the text nodes under n in document order.
// Script and style contents are not text.
func textFragments(n *html.Node) []string {
	var out []string
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			switch c.Type {
			case html.TextNode:
				out = append(out, c.Data)
			case html.ElementNode:
				if c.DataAtom == atom.Script || c.DataAtom == atom.Style {
					continue
				}
				walk(c)
			}
		}
	}
	walk(n)
	return out
}

// tableRows converts every tr under table into a Row of its td cells.
func tableRows(table *html.Node) []Row {
	trs := findAll(table, atom.Tr)
	rows := make([]Row, 0, len(trs))
	for _, tr := range trs {
		tds := findAll(tr, atom.Td)
		row := Row{Cells: make([]Cell, len(tds))}
		for i, td := range tds {
			row.Cells[i] = Cell{Fragments: textFragments(td)}
		}
		rows = append(rows, row)
	}
	return rows
}

// firstTableRows parses a document and returns the rows of its first table.
func firstTableRows(r io.Reader) ([]Row, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return nil, err
	}
	table := findFirst(doc, atom.Table)
	if table == nil {
		return nil, ErrNoTableFound
	}
	return tableRows(table), nil
}
