package storage

import (
	"bufio"
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// Columns is the stored column order. New columns are only ever appended;
// readers backfill any column a file lacks.
var Columns = []string{
	"search_key",
	"search_time",
	"keyword",
	"article_index",
	"title",
	"url",
	"snippet",
	"ai_summary",
	"related_keywords",
	"published_date",
}

const utf8BOM = "\ufeff"

func (r Row) record() []string {
	return []string{
		r.SessionKey,
		r.CreatedAt,
		r.Keyword,
		strconv.Itoa(r.ArticleIndex),
		r.Title,
		r.URL,
		r.Snippet,
		r.AISummary,
		r.RelatedKeywords,
		r.PublishedDate,
	}
}

// WriteCSV writes a header line followed by rows.
func WriteCSV(w io.Writer, rows []Row) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(Columns); err != nil {
		return err
	}
	for _, r := range rows {
		if err := cw.Write(r.record()); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// ReadCSV parses a table written by WriteCSV, or by an older writer with
// fewer columns. A leading BOM is ignored. An article_index that is not an
// integer is stored as -1 so only that session fails to decode.
func ReadCSV(r io.Reader) ([]Row, error) {
	br := bufio.NewReader(r)
	if b, err := br.Peek(len(utf8BOM)); err == nil && bytes.Equal(b, []byte(utf8BOM)) {
		_, _ = br.Discard(len(utf8BOM))
	}

	cr := csv.NewReader(br)
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}

	pos := make(map[string]int, len(header))
	for i, name := range header {
		pos[strings.TrimSpace(name)] = i
	}
	if _, ok := pos["search_key"]; !ok {
		return nil, fmt.Errorf("read header: missing search_key column")
	}

	var rows []Row
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read row: %w", err)
		}

		field := func(name string) string {
			i, ok := pos[name]
			if !ok || i >= len(rec) {
				return ""
			}
			return rec[i]
		}

		row := Row{
			SessionKey:      field("search_key"),
			CreatedAt:       field("search_time"),
			Keyword:         field("keyword"),
			Title:           field("title"),
			URL:             field("url"),
			Snippet:         field("snippet"),
			AISummary:       field("ai_summary"),
			RelatedKeywords: field("related_keywords"),
			PublishedDate:   field("published_date"),
		}
		row.ArticleIndex = parseIndex(field("article_index"))
		rows = append(rows, row)
	}
	return rows, nil
}

func parseIndex(s string) int {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		// Spreadsheet tools may rewrite integers as "3.0".
		f, ferr := strconv.ParseFloat(s, 64)
		if ferr != nil || f != float64(int(f)) {
			return -1
		}
		n = int(f)
	}
	return n
}
