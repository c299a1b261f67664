package export

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/aussiebroadwan/eventim-report/internal/report/domain"
	"github.com/aussiebroadwan/eventim-report/pkg/slogx"
)

func logContext(t *testing.T) (context.Context, *bytes.Buffer) {
	t.Helper()

	var logs bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&logs, nil))
	return slogx.WithContext(t.Context(), logger), &logs
}

func readRows(t *testing.T, buf *bytes.Buffer, sheet string) [][]string {
	t.Helper()

	f, err := excelize.OpenReader(buf)
	require.NoError(t, err)
	t.Cleanup(func() { _ = f.Close() })

	rows, err := f.GetRows(sheet)
	require.NoError(t, err)
	return rows
}

func TestXLSXWriter(t *testing.T) {
	t.Parallel()

	t.Run("header then rows with gaps", func(t *testing.T) {
		t.Parallel()

		var r1, r2 domain.Record
		r1.Set("id", int64(7))
		r1.Set("name", "Show")
		r1.Set("paid", true)
		r2.Set("id", int64(8))
		r2.Set("price", 12.5)
		r2.Set("note", nil)

		ctx, logs := logContext(t)
		var buf bytes.Buffer
		err := NewXLSXWriter().WriteTable(ctx, &buf, domain.NewTable([]domain.Record{r1, r2}))
		require.NoError(t, err)
		require.Empty(t, logs.String())

		rows := readRows(t, &buf, DefaultSheet)
		require.Equal(t, [][]string{
			{"id", "name", "paid", "price", "note"},
			{"7", "Show", "TRUE"},
			{"8", "", "", "12.5"},
		}, rows)
	})

	t.Run("custom sheet name", func(t *testing.T) {
		t.Parallel()

		var rec domain.Record
		rec.Set("a", "x")

		var buf bytes.Buffer
		w := &XLSXWriter{Sheet: "Registrations"}
		require.NoError(t, w.WriteTable(t.Context(), &buf, domain.NewTable([]domain.Record{rec})))

		rows := readRows(t, &buf, "Registrations")
		require.Equal(t, [][]string{{"a"}, {"x"}}, rows)
	})

	t.Run("oversized string is cut and logged", func(t *testing.T) {
		t.Parallel()

		var rec domain.Record
		rec.Set("id", int64(1))
		rec.Set("notes", strings.Repeat("ä", 40000))

		ctx, logs := logContext(t)
		var buf bytes.Buffer
		require.NoError(t, NewXLSXWriter().WriteTable(ctx, &buf, domain.NewTable([]domain.Record{rec})))

		rows := readRows(t, &buf, DefaultSheet)
		require.Len(t, rows, 2)
		require.Equal(t, excelize.TotalCellChars, utf8.RuneCountInString(rows[1][1]))

		out := logs.String()
		require.Contains(t, out, `"msg":"cell truncated"`)
		require.Contains(t, out, `"column":"notes"`)
		require.Contains(t, out, `"row":2`)
		require.Contains(t, out, `"length":40000`)
	})

	t.Run("string at the limit is kept whole", func(t *testing.T) {
		t.Parallel()

		var rec domain.Record
		rec.Set("notes", strings.Repeat("x", excelize.TotalCellChars))

		ctx, logs := logContext(t)
		var buf bytes.Buffer
		require.NoError(t, NewXLSXWriter().WriteTable(ctx, &buf, domain.NewTable([]domain.Record{rec})))
		require.NotContains(t, logs.String(), "cell truncated")
	})
}
