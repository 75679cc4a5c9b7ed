package postgresengine_test

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/AntonStoeckl/coding-rules-query-go/rulesquery/postgresengine/internal/adapters"
)

// fakeResponse answers every query containing the fragment.
type fakeResponse struct {
	contains string
	rows     [][]any
	err      error
}

// fakeDB is an in-memory adapters.DBAdapter recording all statements.
type fakeDB struct {
	mu           sync.Mutex
	responses    []fakeResponse
	queries      []string
	statements   []string
	execErr      error
	rowsAffected int64
}

func (f *fakeDB) respond(contains string, rows ...[]any) *fakeDB {
	f.responses = append(f.responses, fakeResponse{contains: contains, rows: rows})
	return f
}

func (f *fakeDB) fail(contains string, err error) *fakeDB {
	f.responses = append(f.responses, fakeResponse{contains: contains, err: err})
	return f
}

func (f *fakeDB) Query(_ context.Context, query string) (adapters.DBRows, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.queries = append(f.queries, query)

	for _, response := range f.responses {
		if strings.Contains(query, response.contains) {
			if response.err != nil {
				return nil, response.err
			}

			return &fakeRows{rows: response.rows, index: -1}, nil
		}
	}

	return &fakeRows{index: -1}, nil
}

func (f *fakeDB) Exec(_ context.Context, query string) (adapters.DBResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.statements = append(f.statements, query)

	if f.execErr != nil {
		return nil, f.execErr
	}

	return fakeResult(f.rowsAffected), nil
}

func (f *fakeDB) executedQueries() []string {
	f.mu.Lock()
	defer f.mu.Unlock()

	return append([]string(nil), f.queries...)
}

func (f *fakeDB) executedStatements() []string {
	f.mu.Lock()
	defer f.mu.Unlock()

	return append([]string(nil), f.statements...)
}

type fakeRows struct {
	rows  [][]any
	index int
}

func (r *fakeRows) Next() bool {
	r.index++
	return r.index < len(r.rows)
}

func (r *fakeRows) Scan(dest ...any) error {
	row := r.rows[r.index]
	if len(row) != len(dest) {
		return fmt.Errorf("expected %d destinations, got %d", len(row), len(dest))
	}

	for i, value := range row {
		switch target := dest[i].(type) {
		case *string:
			v, ok := value.(string)
			if !ok {
				return errors.New("column is not a string")
			}
			*target = v
		case *int64:
			v, ok := value.(int64)
			if !ok {
				return errors.New("column is not an int64")
			}
			*target = v
		case *bool:
			v, ok := value.(bool)
			if !ok {
				return errors.New("column is not a bool")
			}
			*target = v
		case *time.Time:
			v, ok := value.(time.Time)
			if !ok {
				return errors.New("column is not a time")
			}
			*target = v
		default:
			return fmt.Errorf("unsupported destination %T", target)
		}
	}

	return nil
}

func (r *fakeRows) Err() error {
	return nil
}

func (r *fakeRows) Close() error {
	return nil
}

type fakeResult int64

func (r fakeResult) RowsAffected() (int64, error) {
	return int64(r), nil
}

// ruleRow renders a rule row the way the search query selects it.
func ruleRow(id, key, name, language, ruleType, severity string, tagsJSON string, createdAt time.Time) []any {
	repository, _, _ := strings.Cut(key, ":")

	return []any{
		id, key, repository, name, language, ruleType, severity, "READY", false,
		tagsJSON, "[]", "[]", "[]", "[]", "[]",
		"[]", createdAt,
	}
}
