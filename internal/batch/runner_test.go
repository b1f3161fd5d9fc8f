package batch

import (
	"context"
	"encoding/csv"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/encoding/charmap"

	"github.com/MikeSquared-Agency/mangoconv/internal/callparse"
	"github.com/MikeSquared-Agency/mangoconv/internal/export"
	"github.com/MikeSquared-Agency/mangoconv/internal/ingest"
)

const firstCall = `<html><body><table>
<tr><td>Запись разговоров<br>05.Mar.2024 14:03:27</td></tr>
<tr><td>Кто звонил:</td><td>101</td></tr>
<tr><td>Длительность:</td><td>1:05</td></tr>
<tr><td>Сотрудник</td><td>14:03:30</td><td>Добрый день</td></tr>
<tr><td>Клиент</td><td>14:03:35</td><td>Здравствуйте</td></tr>
</table></body></html>`

const secondCall = `<html><head><meta charset="windows-1251"></head><body><table>
<tr><td>Кто звонил:</td><td>202</td></tr>
<tr><td>Клиент</td><td>09:00:00</td><td>Алло</td></tr>
</table></body></html>`

func writeFile(t *testing.T, path string, data []byte) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, data, 0o644))
}

func cp1251(t *testing.T, s string) []byte {
	t.Helper()
	out, err := charmap.Windows1251.NewEncoder().String(s)
	require.NoError(t, err)
	return []byte(out)
}

func newRunner(cfg Config) *Runner {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	svc := ingest.New(callparse.NewParser(callparse.RussianLocale()), logger)
	return NewRunner(cfg, svc, logger)
}

func readCSV(t *testing.T, path string) [][]string {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(string(data), "\ufeff"), "missing BOM")
	records, err := csv.NewReader(strings.NewReader(strings.TrimPrefix(string(data), "\ufeff"))).ReadAll()
	require.NoError(t, err)
	return records
}

func seedInput(t *testing.T) string {
	t.Helper()
	in := t.TempDir()
	writeFile(t, filepath.Join(in, "a.html"), []byte(firstCall))
	writeFile(t, filepath.Join(in, "B.HTML"), cp1251(t, secondCall))
	writeFile(t, filepath.Join(in, "broken.html"), []byte("<p>no table</p>"))
	writeFile(t, filepath.Join(in, "index.html"), []byte(firstCall))
	writeFile(t, filepath.Join(in, "notes.txt"), []byte("ignore me"))
	writeFile(t, filepath.Join(in, "sub", "c.html"), []byte(firstCall))
	return in
}

func TestRun_MergedCSV(t *testing.T) {
	in := seedInput(t)
	out := filepath.Join(t.TempDir(), "nested", "calls.csv")

	report, err := newRunner(Config{Input: in, Output: out, Workers: 2}).Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 3, report.FilesFound)
	assert.Equal(t, 2, report.FilesParsed)
	assert.Equal(t, 1, report.FilesFailed)
	assert.Equal(t, 3, report.Turns)
	assert.Equal(t, out, report.Output)
	assert.NotEmpty(t, report.RunID)
	require.Len(t, report.Failed, 1)
	assert.Equal(t, filepath.Join(in, "broken.html"), report.Failed[0].Path)

	records := readCSV(t, out)
	require.Len(t, records, 4, "header plus one row per utterance")
	assert.Equal(t, callparse.FieldCallDatetimeRaw, records[0][0])
	// B.HTML sorts before a.html.
	assert.Equal(t, "202", records[1][3])
	assert.Equal(t, "Алло", records[1][11])
	assert.Equal(t, "101", records[2][3])
	assert.Equal(t, "65", records[2][6])

	saved, err := LoadReport(DefaultReportPath(out))
	require.NoError(t, err)
	assert.Equal(t, report.RunID, saved.RunID)
}

func TestRun_Recursive(t *testing.T) {
	in := seedInput(t)
	out := filepath.Join(t.TempDir(), "calls.csv")

	report, err := newRunner(Config{Input: in, Output: out, Recursive: true, View: export.ViewHeaders}).Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 4, report.FilesFound)
	assert.Equal(t, 3, report.FilesParsed)

	records := readCSV(t, out)
	assert.Len(t, records, 4, "header plus one row per call")
}

func TestRun_SequentialMatchesParallel(t *testing.T) {
	in := seedInput(t)
	dir := t.TempDir()
	seq := filepath.Join(dir, "seq.csv")
	par := filepath.Join(dir, "par.csv")

	_, err := newRunner(Config{Input: in, Output: seq, Workers: 1}).Run(context.Background())
	require.NoError(t, err)
	_, err = newRunner(Config{Input: in, Output: par, Workers: 8}).Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, readCSV(t, seq), readCSV(t, par))
}

func TestRun_NothingParsed(t *testing.T) {
	in := t.TempDir()
	writeFile(t, filepath.Join(in, "broken.html"), []byte("<p>no table</p>"))
	out := filepath.Join(t.TempDir(), "calls.csv")

	report, err := newRunner(Config{Input: in, Output: out}).Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, report.FilesParsed)
	assert.Empty(t, report.Output)

	_, err = os.Stat(out)
	assert.True(t, os.IsNotExist(err), "no CSV should be written")
	_, err = os.Stat(DefaultReportPath(out))
	assert.NoError(t, err, "report is still written")
}

func TestRun_SingleFile(t *testing.T) {
	in := t.TempDir()
	path := filepath.Join(in, "a.html")
	writeFile(t, path, []byte(firstCall))
	out := filepath.Join(t.TempDir(), "calls.csv")

	report, err := newRunner(Config{Input: path, Output: out}).Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{path}, report.Processed)
}

func TestRun_MissingInput(t *testing.T) {
	_, err := newRunner(Config{Input: filepath.Join(t.TempDir(), "missing"), Output: "x.csv"}).Run(context.Background())
	assert.Error(t, err)
}

func TestRun_Cancelled(t *testing.T) {
	in := seedInput(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := newRunner(Config{Input: in, Output: filepath.Join(t.TempDir(), "calls.csv")}).Run(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}
