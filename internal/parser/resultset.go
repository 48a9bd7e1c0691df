package parser

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/preston-bernstein/nba-stats-service/internal/domain"
)

type statsPayload struct {
	Resource   string           `json:"resource"`
	Parameters map[string]any   `json:"parameters,omitempty"`
	ResultSets []statsResultSet `json:"resultSets"`
}

type statsResultSet struct {
	Name    string   `json:"name"`
	Headers []string `json:"headers"`
	RowSet  [][]any  `json:"rowSet"`
}

// table indexes a result set's columns by header name.
type table struct {
	kind    domain.Kind
	name    string
	columns map[string]int
	rows    [][]any
}

func decodeTable(kind domain.Kind, raw []byte, name string, required ...string) (statsPayload, table, error) {
	var payload statsPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		return payload, table{}, decodeError(kind, err)
	}
	var set *statsResultSet
	for i := range payload.ResultSets {
		if name == "" || strings.EqualFold(payload.ResultSets[i].Name, name) {
			set = &payload.ResultSets[i]
			break
		}
	}
	if set == nil {
		return payload, table{}, fieldError(kind, "resultSets", fmt.Sprintf("result set %q missing", name))
	}
	t := table{kind: kind, name: set.Name, columns: make(map[string]int, len(set.Headers)), rows: set.RowSet}
	for i, h := range set.Headers {
		t.columns[h] = i
	}
	for _, h := range required {
		if _, ok := t.columns[h]; !ok {
			return payload, table{}, fieldError(kind, "resultSets."+set.Name+".headers", "missing column "+h)
		}
	}
	return payload, t, nil
}

func (t table) cell(row []any, column string) any {
	idx, ok := t.columns[column]
	if !ok || idx >= len(row) {
		return nil
	}
	return row[idx]
}

func (t table) str(row []any, column string) string {
	switch v := t.cell(row, column).(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(v)
	case float64:
		return trimFloat(v)
	default:
		return fmt.Sprint(v)
	}
}

func (t table) integer(row []any, column string) (int, error) {
	switch v := t.cell(row, column).(type) {
	case nil:
		return 0, nil
	case float64:
		return int(v), nil
	case string:
		return atoi(v)
	default:
		return 0, fmt.Errorf("column %s: unexpected %T", column, v)
	}
}

func (t table) number(row []any, column string) (float64, error) {
	switch v := t.cell(row, column).(type) {
	case nil:
		return 0, nil
	case float64:
		return v, nil
	case string:
		if strings.TrimSpace(v) == "" {
			return 0, nil
		}
		f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			return 0, fmt.Errorf("column %s: %w", column, err)
		}
		return f, nil
	default:
		return 0, fmt.Errorf("column %s: unexpected %T", column, v)
	}
}

func (t table) rowError(i int, column string, err error) *ParseError {
	return &ParseError{
		Kind:  t.kind,
		Field: fmt.Sprintf("resultSets.%s.rowSet[%d].%s", t.name, i, column),
		Err:   err,
	}
}

func trimFloat(v float64) string {
	if v == float64(int64(v)) {
		return fmt.Sprintf("%d", int64(v))
	}
	return fmt.Sprintf("%g", v)
}

// nullable renders empty strings as JSON null, the way the stats API does.
func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}
