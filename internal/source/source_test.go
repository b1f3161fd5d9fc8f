package source

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/encoding/charmap"
)

func cp1251(t *testing.T, s string) []byte {
	t.Helper()
	out, err := charmap.Windows1251.NewEncoder().Bytes([]byte(s))
	require.NoError(t, err)
	return out
}

func TestDecode_UTF8Passthrough(t *testing.T) {
	in := []byte("<table><tr><td>Клиент</td></tr></table>")
	out, name, err := Decode(in, "")
	require.NoError(t, err)
	assert.Equal(t, "utf-8", name)
	assert.Equal(t, in, out)
}

func TestDecode_StripsUTF8BOM(t *testing.T) {
	out, name, err := Decode([]byte("\xef\xbb\xbf<p>Сотрудник</p>"), "")
	require.NoError(t, err)
	assert.Equal(t, "utf-8", name)
	assert.Equal(t, "<p>Сотрудник</p>", string(out))
}

func TestDecode_MetaCharset(t *testing.T) {
	doc := `<html><head><meta http-equiv="Content-Type" content="text/html; charset=windows-1251"></head><body>Клиент</body></html>`
	out, name, err := Decode(cp1251(t, doc), "")
	require.NoError(t, err)
	assert.Equal(t, "windows-1251", name)
	assert.Equal(t, doc, string(out))
}

func TestDecode_UndeclaredLegacyBytes(t *testing.T) {
	out, name, err := Decode(cp1251(t, "<p>Запись разговоров</p>"), "")
	require.NoError(t, err)
	assert.Equal(t, "windows-1251", name)
	assert.Equal(t, "<p>Запись разговоров</p>", string(out))
}

func TestDecode_UTF8AfterLongASCIIHead(t *testing.T) {
	doc := "<html><head><style>" + strings.Repeat("td { padding: 2px; }\n", 60) + "</style></head><body><table>" +
		"<tr><td>Запись разговоров<br>05.Mar.2024 14:03:27</td></tr>" +
		"<tr><td>Кто звонил:</td><td>101</td></tr>" +
		"<tr><td>Клиент</td><td>14:03:35</td><td>Алло</td></tr>" +
		"</table></body></html>"
	require.Greater(t, strings.Index(doc, "Запись"), 1024)

	out, name, err := Decode([]byte(doc), "")
	require.NoError(t, err)
	assert.Equal(t, "utf-8", name)
	assert.Equal(t, doc, string(out))
}

func TestDecode_UndeclaredLegacyAfterLongASCIIHead(t *testing.T) {
	doc := "<style>" + strings.Repeat("td { padding: 2px; }\n", 60) + "</style><p>Клиент</p>"

	out, name, err := Decode(cp1251(t, doc), "")
	require.NoError(t, err)
	assert.Equal(t, "windows-1251", name)
	assert.Equal(t, doc, string(out))
}

func TestDecode_DeclaredWindows1252Kept(t *testing.T) {
	in := []byte("<html><head><meta charset=\"windows-1252\"></head><body>caf\xe9</body></html>")

	out, name, err := Decode(in, "")
	require.NoError(t, err)
	assert.Equal(t, "windows-1252", name)
	assert.Contains(t, string(out), "café")
}

func TestDecode_ExplicitCharset(t *testing.T) {
	koi, err := charmap.KOI8R.NewEncoder().Bytes([]byte("Длительность"))
	require.NoError(t, err)

	out, name, err := Decode(koi, "KOI8-R")
	require.NoError(t, err)
	assert.Equal(t, "koi8-r", name)
	assert.Equal(t, "Длительность", string(out))

	_, _, err = Decode([]byte("x"), "klingon")
	assert.ErrorIs(t, err, ErrUnknownCharset)
}

func TestIsCallExport(t *testing.T) {
	assert.True(t, IsCallExport("/data/html/call-1.html"))
	assert.True(t, IsCallExport("CALL.HTML"))
	assert.False(t, IsCallExport("/data/html/index.html"))
	assert.False(t, IsCallExport("notes.txt"))
	assert.False(t, IsCallExport("call.htm"))
}

func TestDiscover(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"b.html", "a.HTML", "index.html", "readme.txt", "sub/c.html"} {
		p := filepath.Join(dir, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755))
		require.NoError(t, os.WriteFile(p, []byte("<table></table>"), 0o644))
	}

	files, err := Discover(dir, false)
	require.NoError(t, err)
	assert.Equal(t, []string{filepath.Join(dir, "a.HTML"), filepath.Join(dir, "b.html")}, files)

	files, err = Discover(dir, true)
	require.NoError(t, err)
	assert.Len(t, files, 3)

	files, err = Discover(filepath.Join(dir, "b.html"), false)
	require.NoError(t, err)
	assert.Len(t, files, 1)

	_, err = Discover(filepath.Join(dir, "readme.txt"), false)
	assert.Error(t, err)

	_, err = Discover(filepath.Join(dir, "missing"), false)
	assert.Error(t, err)
}

func TestReadFile(t *testing.T) {
	p := filepath.Join(t.TempDir(), "call.html")
	require.NoError(t, os.WriteFile(p, cp1251(t, "<td>Клиент</td>"), 0o644))

	doc, err := ReadFile(p, "cp1251")
	require.NoError(t, err)
	assert.Equal(t, p, doc.Name)
	assert.Equal(t, "windows-1251", doc.Charset)
	assert.Equal(t, "<td>Клиент</td>", string(doc.Content))

	_, err = ReadFile(filepath.Join(t.TempDir(), "nope.html"), "")
	assert.Error(t, err)
}
