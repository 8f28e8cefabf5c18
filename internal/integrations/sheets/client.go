// Package sheets persists completed records to a Google Sheets tab. The
// schema (tab existence, header row) is reconciled before every append
// rather than cached: the remote sheet can be edited by humans between
// writes and the write rate is low.
package sheets

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/cenkalti/backoff/v4"

	"casebot/internal/domain"
)

// Fixed metadata columns preceding the per-question columns.
var metaHeader = []string{"Timestamp", "Identity ID", "Display Name"}

const appendMaxRetries = 2 // retries after the first attempt

// sheetsAPI is the minimal spreadsheet interface required by Client.
// Defined here for testability.
type sheetsAPI interface {
	ListTabs(ctx context.Context) ([]string, error)
	AddTab(ctx context.Context, title string) error
	HeaderRow(ctx context.Context, tab string) ([]string, error)
	WriteHeaderRow(ctx context.Context, tab string, values []string) error
	AppendRow(ctx context.Context, tab string, values []string) error
}

// SchemaError reports a failure while reconciling the tab or header row.
type SchemaError struct {
	Err error
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("sheets: schema reconciliation: %v", e.Err)
}

func (e *SchemaError) Unwrap() error { return e.Err }

// WriteError reports a failure while appending a data row.
type WriteError struct {
	Err error
}

func (e *WriteError) Error() string {
	return fmt.Sprintf("sheets: row append: %v", e.Err)
}

func (e *WriteError) Unwrap() error { return e.Err }

// Client writes completed records to one named tab of a spreadsheet.
type Client struct {
	api     sheetsAPI
	tab     string
	catalog domain.Catalog
}

// New creates a Client targeting the given tab.
func New(api sheetsAPI, tab string, catalog domain.Catalog) (*Client, error) {
	if api == nil {
		return nil, errors.New("sheets: api must not be nil")
	}
	if tab == "" {
		return nil, errors.New("sheets: tab name must not be empty")
	}
	if catalog.Len() == 0 {
		return nil, errors.New("sheets: catalog must not be empty")
	}
	return &Client{api: api, tab: tab, catalog: catalog}, nil
}

// timeNow is indirected for tests.
var timeNow = func() time.Time {
	return time.Now().UTC()
}

// newAppendBackOff is indirected so tests can drop the retry delays.
var newAppendBackOff = func() backoff.BackOff {
	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = 500 * time.Millisecond
	return backoff.WithMaxRetries(bo, appendMaxRetries)
}

// EnsureReady reconciles the remote schema: the tab is created when absent
// and the header row is written when row 1 is empty. A non-empty header is
// never overwritten, even when it no longer matches the catalog — only
// absence is repaired, not drift.
func (c *Client) EnsureReady(ctx context.Context) error {
	tabs, err := c.api.ListTabs(ctx)
	if err != nil {
		return &SchemaError{Err: fmt.Errorf("list tabs: %w", err)}
	}

	found := false
	for _, t := range tabs {
		if t == c.tab {
			found = true
			break
		}
	}
	if !found {
		// No lock against a concurrent creator; a duplicate-tab rejection
		// from the service fails this submission.
		if err := c.api.AddTab(ctx, c.tab); err != nil {
			return &SchemaError{Err: fmt.Errorf("add tab %q: %w", c.tab, err)}
		}
	}

	header, err := c.api.HeaderRow(ctx, c.tab)
	if err != nil {
		return &SchemaError{Err: fmt.Errorf("read header: %w", err)}
	}
	if len(header) > 0 {
		return nil
	}
	if err := c.api.WriteHeaderRow(ctx, c.tab, c.headerRow()); err != nil {
		return &SchemaError{Err: fmt.Errorf("write header: %w", err)}
	}
	return nil
}

// AppendRecord appends one completed record as a new row: timestamp,
// identity metadata, then one cell per catalog question in order (empty
// when the record lacks the key). The append is retried with exponential
// backoff before giving up. No dedup key is generated: a retry after a
// false-negative network error can produce a duplicate row.
func (c *Client) AppendRecord(ctx context.Context, rec domain.CompletedRecord) error {
	row := c.recordRow(rec)
	op := func() error {
		return c.api.AppendRow(ctx, c.tab, row)
	}
	if err := backoff.Retry(op, backoff.WithContext(newAppendBackOff(), ctx)); err != nil {
		return &WriteError{Err: err}
	}
	return nil
}

func (c *Client) headerRow() []string {
	return append(append([]string{}, metaHeader...), c.catalog.HeaderLabels()...)
}

func (c *Client) recordRow(rec domain.CompletedRecord) []string {
	row := make([]string, 0, 3+c.catalog.Len())
	row = append(row,
		timeNow().Format(time.RFC3339),
		strconv.FormatInt(rec.Identity, 10),
		rec.DisplayName,
	)
	for _, key := range c.catalog.Keys() {
		row = append(row, rec.Answers[key])
	}
	return row
}
