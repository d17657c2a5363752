package store

import (
	"context"
	"fmt"

	"golang.org/x/oauth2/google"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"

	"github.com/JeremyDillmann/task-bot-ai/app/tasks"
)

// firstDataRow leaves row 1 for the sheet header.
const firstDataRow = 2

var _ tasks.Store = &SheetsStore{}

// SheetsStore keeps the task list in a Google spreadsheet, one task per row.
type SheetsStore struct {
	srv           *sheets.Service
	spreadsheetID string
	sheet         string
}

// NewSheetsStore builds the adapter from service-account credentials.
// Missing credentials or spreadsheet ID yield ErrUnavailable instead of a
// half-configured client.
func NewSheetsStore(ctx context.Context, credentialsJSON []byte, spreadsheetID, sheet string) (*SheetsStore, error) {
	if len(credentialsJSON) == 0 || spreadsheetID == "" {
		return nil, fmt.Errorf("%w: missing credentials or spreadsheet id", ErrUnavailable)
	}
	if sheet == "" {
		sheet = "Tasks"
	}
	conf, err := google.JWTConfigFromJSON(credentialsJSON, sheets.SpreadsheetsScope)
	if err != nil {
		return nil, fmt.Errorf("%w: parse credentials: %v", ErrUnavailable, err)
	}
	srv, err := sheets.NewService(ctx, option.WithHTTPClient(conf.Client(ctx)))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return &SheetsStore{srv: srv, spreadsheetID: spreadsheetID, sheet: sheet}, nil
}

func (s *SheetsStore) ListActive(ctx context.Context) ([]tasks.Task, error) {
	values, err := s.readAll(ctx)
	if err != nil {
		return nil, err
	}
	var out []tasks.Task
	for i, cells := range values {
		if t, ok := fromRow(firstDataRow+i, cells); ok {
			out = append(out, t)
		}
	}
	return out, nil
}

// Append writes new rows at the first row after the highest occupied one.
// A blind end-of-sheet append would leave the gaps of earlier soft-deletes
// in place forever.
func (s *SheetsStore) Append(ctx context.Context, ts []tasks.Task) error {
	if len(ts) == 0 {
		return nil
	}
	values, err := s.readAll(ctx)
	if err != nil {
		return err
	}
	next := firstDataRow
	for i, cells := range values {
		if rowOccupied(cells) {
			next = firstDataRow + i + 1
		}
	}
	rows := make([][]any, 0, len(ts))
	for _, t := range ts {
		rows = append(rows, toRow(t))
	}
	rng := fmt.Sprintf("%s!A%d:G%d", s.sheet, next, next+len(ts)-1)
	_, err = s.srv.Spreadsheets.Values.
		Update(s.spreadsheetID, rng, &sheets.ValueRange{Values: rows}).
		ValueInputOption("RAW").
		Context(ctx).
		Do()
	if err != nil {
		return fmt.Errorf("%w: append: %v", ErrUnavailable, err)
	}
	return nil
}

func (s *SheetsStore) Update(ctx context.Context, row int, t tasks.Task) error {
	rng := fmt.Sprintf("%s!A%d:G%d", s.sheet, row, row)
	_, err := s.srv.Spreadsheets.Values.
		Update(s.spreadsheetID, rng, &sheets.ValueRange{Values: [][]any{toRow(t)}}).
		ValueInputOption("RAW").
		Context(ctx).
		Do()
	if err != nil {
		return fmt.Errorf("%w: update row %d: %v", ErrUnavailable, row, err)
	}
	return nil
}

// Clear blanks the row. Row numbers of subsequent tasks stay put.
func (s *SheetsStore) Clear(ctx context.Context, row int) error {
	rng := fmt.Sprintf("%s!A%d:G%d", s.sheet, row, row)
	_, err := s.srv.Spreadsheets.Values.
		Clear(s.spreadsheetID, rng, &sheets.ClearValuesRequest{}).
		Context(ctx).
		Do()
	if err != nil {
		return fmt.Errorf("%w: clear row %d: %v", ErrUnavailable, row, err)
	}
	return nil
}

func (s *SheetsStore) readAll(ctx context.Context) ([][]any, error) {
	rng := fmt.Sprintf("%s!A%d:G", s.sheet, firstDataRow)
	resp, err := s.srv.Spreadsheets.Values.Get(s.spreadsheetID, rng).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("%w: read: %v", ErrUnavailable, err)
	}
	return resp.Values, nil
}
