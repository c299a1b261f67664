// Package flatten turns a nested registration document into a single row.
//
// Every non-object value becomes one cell named after the last segment of
// its path, so {"event":{"name":{"en":"Show"}}} yields a column "en". Dots
// inside a key separate segments too: {"meta.source":"web"} yields "source".
// Two paths ending in the same name share one column: the value found later
// in document order wins, and the column stays where it first appeared.
package flatten

import (
	"bytes"
	"encoding/json"
	"errors"
	"strconv"
	"strings"

	"github.com/tidwall/gjson"

	"github.com/aussiebroadwan/eventim-report/internal/report/domain"
)

var (
	ErrInvalidJSON = errors.New("flatten: invalid JSON")
	ErrNotObject   = errors.New("flatten: document is not a JSON object")
)

// Flatten parses body and returns its leaves as an ordered record.
func Flatten(body []byte) (domain.Record, error) {
	if !gjson.ValidBytes(body) {
		return domain.Record{}, ErrInvalidJSON
	}

	doc := gjson.ParseBytes(body)
	if !doc.IsObject() {
		return domain.Record{}, ErrNotObject
	}

	var rec domain.Record
	walk(doc, &rec)
	return rec, nil
}

func walk(obj gjson.Result, rec *domain.Record) {
	obj.ForEach(func(key, value gjson.Result) bool {
		if value.IsObject() {
			walk(value, rec)
			return true
		}
		rec.Set(leafName(key.String()), cell(value))
		return true
	})
}

// leafName keeps what follows the last dot, so a key that itself contains
// dots ("name.en") lands in the same column as the nested form.
func leafName(key string) string {
	return key[strings.LastIndexByte(key, '.')+1:]
}

// cell converts a leaf to the value written to the sheet.
func cell(v gjson.Result) any {
	switch v.Type {
	case gjson.Null:
		return nil
	case gjson.True:
		return true
	case gjson.False:
		return false
	case gjson.String:
		return v.Str
	case gjson.Number:
		return number(v)
	default:
		// arrays
		return compact(v.Raw)
	}
}

func number(v gjson.Result) any {
	if !strings.ContainsAny(v.Raw, ".eE") {
		if n, err := strconv.ParseInt(v.Raw, 10, 64); err == nil {
			return n
		}
	}
	return v.Num
}

func compact(raw string) string {
	var buf bytes.Buffer
	if err := json.Compact(&buf, []byte(raw)); err != nil {
		return raw
	}
	return buf.String()
}
