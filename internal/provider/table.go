package provider

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
)

// ErrNoRows indicates a single-row query matched no rows.
var ErrNoRows = errors.New("no rows")

// From starts a query against the passed table of the provider's database.
// Requests carry the browser's access token, so row level security applies
// as it would for the signed-in user.
func (b Browser) From(table string) Table {
	return Table{browser: b, name: table}
}

type Table struct {
	browser Browser
	name    string
}

// Insert inserts records into the Table. Each record is encoded as JSON.
func (t Table) Insert(ctx context.Context, records ...interface{}) error {
	bearer, err := t.browser.bearer(ctx)
	if err != nil {
		return err
	}

	if err := t.browser.client.do(ctx, request{
		method: http.MethodPost,
		path:   "/rest/v1/" + url.PathEscape(t.name),
		header: http.Header{"Prefer": []string{"return=minimal"}},
		bearer: bearer,
		body:   records,
	}, nil); err != nil {
		return fmt.Errorf("insert; table: %s, error: %w", t.name, err)
	}
	return nil
}

// Select starts a read of the passed columns. No columns selects all of them.
func (t Table) Select(columns ...string) Query {
	selected := "*"
	if len(columns) > 0 {
		selected = strings.Join(columns, ",")
	}
	return Query{
		table:   t,
		filters: url.Values{"select": []string{selected}},
	}
}

// Query is an immutable read of a Table.
type Query struct {
	table   Table
	filters url.Values
}

// Eq filters the Query to rows whose column equals value.
func (q Query) Eq(column string, value interface{}) Query {
	filters := make(url.Values, len(q.filters)+1)
	for key, values := range q.filters {
		filters[key] = append([]string(nil), values...)
	}
	filters.Add(column, fmt.Sprintf("eq.%v", value))

	return Query{table: q.table, filters: filters}
}

// Single reads exactly one row into dst. If no row matches, ErrNoRows is
// returned.
func (q Query) Single(ctx context.Context, dst interface{}) error {
	bearer, err := q.table.browser.bearer(ctx)
	if err != nil {
		return err
	}

	err = q.table.browser.client.do(ctx, request{
		method: http.MethodGet,
		path:   "/rest/v1/" + url.PathEscape(q.table.name),
		query:  q.filters,
		header: http.Header{"Accept": []string{"application/vnd.pgrst.object+json"}},
		bearer: bearer,
	}, dst)
	if perr, ok := AsError(err); ok && perr.Status == http.StatusNotAcceptable {
		return fmt.Errorf("single; table: %s, %w: %s", q.table.name, ErrNoRows, perr.Message)
	}
	if err != nil {
		return fmt.Errorf("single; table: %s, error: %w", q.table.name, err)
	}
	return nil
}
