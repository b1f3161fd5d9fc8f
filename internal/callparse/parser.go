package callparse

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"strings"
)

// ErrNoTableFound is returned when a document has no table element.
var ErrNoTableFound = errors.New("no table found in document")

// Parser turns exported call documents into records. A Parser holds only its
// locale and is safe for concurrent use.
type Parser struct {
	loc Locale
}

// NewParser returns a Parser for the given locale.
func NewParser(loc Locale) *Parser {
	return &Parser{loc: loc}
}

// ParseReader reads a whole document and extracts its call records.
func (p *Parser) ParseReader(r io.Reader) (*Result, error) {
	rows, err := firstTableRows(r)
	if err != nil {
		if errors.Is(err, ErrNoTableFound) {
			return nil, err
		}
		return nil, fmt.Errorf("parse html: %w", err)
	}
	return p.Assemble(rows), nil
}

// Parse extracts the call records of a document held in memory.
func (p *Parser) Parse(markup string) (*Result, error) {
	return p.ParseReader(strings.NewReader(markup))
}

// ParseBytes is Parse for a byte slice.
func (p *Parser) ParseBytes(markup []byte) (*Result, error) {
	return p.ParseReader(bytes.NewReader(markup))
}

// Assemble runs already extracted rows through a fresh Assembler.
func (p *Parser) Assemble(rows []Row) *Result {
	a := NewAssembler(p.loc)
	for _, row := range rows {
		a.Add(row)
	}
	res := a.Finish()
	return &res
}

// Parse extracts call records using the Russian export locale.
func Parse(markup string) (*Result, error) {
	return NewParser(RussianLocale()).Parse(markup)
}
