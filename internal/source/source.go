// Package source loads exported call documents and decodes them to UTF-8.
package source

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	htmlcharset "golang.org/x/net/html/charset"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// ErrUnknownCharset is returned for a charset name no decoder exists for.
var ErrUnknownCharset = errors.New("unknown charset")

// Document is one exported call file.
type Document struct {
	Name    string
	Content []byte // UTF-8
	Charset string // charset the bytes were decoded from
}

// lookup resolves a charset name. The code pages telephony exports actually
// use are matched first; anything else goes through the WHATWG label table.
func lookup(name string) (encoding.Encoding, string, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	switch name {
	case "utf-8", "utf8":
		return unicode.UTF8, "utf-8", nil
	case "windows-1251", "cp1251":
		return charmap.Windows1251, "windows-1251", nil
	case "koi8-r":
		return charmap.KOI8R, "koi8-r", nil
	case "ibm866", "cp866":
		return charmap.CodePage866, "ibm866", nil
	case "iso-8859-5":
		return charmap.ISO8859_5, "iso-8859-5", nil
	case "windows-1252", "cp1252":
		return charmap.Windows1252, "windows-1252", nil
	}
	if enc, canonical := htmlcharset.Lookup(name); enc != nil {
		return enc, canonical, nil
	}
	return nil, "", fmt.Errorf("%w: %s", ErrUnknownCharset, name)
}

// sniffLen is how far DetermineEncoding looks for a <meta> declaration.
const sniffLen = 1024

// declaresCharset reports whether the document head mentions a charset, so a
// windows-1252 answer from the sniffer came from the document itself.
func declaresCharset(data []byte) bool {
	head := data
	if len(head) > sniffLen {
		head = head[:sniffLen]
	}
	return bytes.Contains(bytes.ToLower(head), []byte("charset"))
}

// Decode converts raw bytes to UTF-8. With an empty charset the encoding is
// sniffed from a BOM or <meta> declaration. Undeclared input that is valid
// UTF-8 over its whole length is kept as is, anything else is read as
// windows-1251 rather than the HTML default of windows-1252.
func Decode(data []byte, charset string) ([]byte, string, error) {
	var (
		enc  encoding.Encoding
		name string
		err  error
	)
	if charset != "" {
		enc, name, err = lookup(charset)
		if err != nil {
			return nil, "", err
		}
	} else {
		var certain bool
		enc, name, certain = htmlcharset.DetermineEncoding(data, "text/html")
		if !certain && name == "windows-1252" && !declaresCharset(data) {
			if utf8.Valid(data) {
				enc, name = unicode.UTF8, "utf-8"
			} else {
				enc, name = charmap.Windows1251, "windows-1251"
			}
		}
	}

	if name == "utf-8" {
		return bytes.TrimPrefix(data, []byte("\xef\xbb\xbf")), name, nil
	}

	out, err := io.ReadAll(transform.NewReader(bytes.NewReader(data), enc.NewDecoder()))
	if err != nil {
		return nil, "", fmt.Errorf("decode %s: %w", name, err)
	}
	return out, name, nil
}

// Read decodes a document from r.
func Read(r io.Reader, name, charset string) (*Document, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", name, err)
	}
	content, used, err := Decode(data, charset)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", name, err)
	}
	return &Document{Name: name, Content: content, Charset: used}, nil
}

// ReadFile loads and decodes a document from disk.
func ReadFile(path, charset string) (*Document, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open: %w", err)
	}
	defer f.Close()
	return Read(f, path, charset)
}

// IsCallExport reports whether a file name looks like an exported call page.
// The export's own index.html is a listing, not a call.
func IsCallExport(name string) bool {
	base := filepath.Base(name)
	if base == "index.html" {
		return false
	}
	return strings.EqualFold(filepath.Ext(base), ".html")
}

// Discover returns the call exports at path, which may be a file or a
// directory. Subdirectories are only searched when recursive is set.
// Paths come back in lexical order.
func Discover(path string, recursive bool) ([]string, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}
	if !info.IsDir() {
		if !IsCallExport(path) {
			return nil, fmt.Errorf("not a call export: %s", path)
		}
		return []string{path}, nil
	}

	var files []string
	err = filepath.WalkDir(path, func(p string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if p != path && !recursive {
				return filepath.SkipDir
			}
			return nil
		}
		if IsCallExport(d.Name()) {
			files = append(files, p)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return files, nil
}
