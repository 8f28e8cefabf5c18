package sheets

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/oauth2/google"
	"golang.org/x/oauth2/jwt"
	"google.golang.org/api/option"
	sheetsapi "google.golang.org/api/sheets/v4"
)

// GoogleAPI implements the spreadsheet primitives on top of the Google
// Sheets v4 service, authenticated as a service account.
type GoogleAPI struct {
	svc           *sheetsapi.Service
	spreadsheetID string
}

// NewGoogleAPI builds a Sheets service signed with the service account's
// email and PEM private key.
func NewGoogleAPI(ctx context.Context, spreadsheetID, accountEmail, privateKey string) (*GoogleAPI, error) {
	if spreadsheetID == "" {
		return nil, errors.New("sheets: spreadsheet id must not be empty")
	}
	if accountEmail == "" || privateKey == "" {
		return nil, errors.New("sheets: service account credentials must not be empty")
	}

	conf := &jwt.Config{
		Email:      accountEmail,
		PrivateKey: []byte(privateKey),
		Scopes:     []string{sheetsapi.SpreadsheetsScope},
		TokenURL:   google.JWTTokenURL,
	}
	svc, err := sheetsapi.NewService(ctx, option.WithHTTPClient(conf.Client(ctx)))
	if err != nil {
		return nil, fmt.Errorf("sheets: create service: %w", err)
	}
	return &GoogleAPI{svc: svc, spreadsheetID: spreadsheetID}, nil
}

func (g *GoogleAPI) ListTabs(ctx context.Context) ([]string, error) {
	resp, err := g.svc.Spreadsheets.Get(g.spreadsheetID).Fields("sheets.properties.title").Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("sheets: get spreadsheet: %w", err)
	}
	titles := make([]string, 0, len(resp.Sheets))
	for _, sh := range resp.Sheets {
		if sh.Properties != nil {
			titles = append(titles, sh.Properties.Title)
		}
	}
	return titles, nil
}

func (g *GoogleAPI) AddTab(ctx context.Context, title string) error {
	req := &sheetsapi.BatchUpdateSpreadsheetRequest{
		Requests: []*sheetsapi.Request{{
			AddSheet: &sheetsapi.AddSheetRequest{
				Properties: &sheetsapi.SheetProperties{Title: title},
			},
		}},
	}
	if _, err := g.svc.Spreadsheets.BatchUpdate(g.spreadsheetID, req).Context(ctx).Do(); err != nil {
		return fmt.Errorf("sheets: add sheet %q: %w", title, err)
	}
	return nil
}

func (g *GoogleAPI) HeaderRow(ctx context.Context, tab string) ([]string, error) {
	resp, err := g.svc.Spreadsheets.Values.Get(g.spreadsheetID, tab+"!1:1").Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("sheets: get header: %w", err)
	}
	if len(resp.Values) == 0 {
		return nil, nil
	}
	row := make([]string, 0, len(resp.Values[0]))
	for _, cell := range resp.Values[0] {
		row = append(row, fmt.Sprint(cell))
	}
	return row, nil
}

func (g *GoogleAPI) WriteHeaderRow(ctx context.Context, tab string, values []string) error {
	vr := &sheetsapi.ValueRange{Values: [][]interface{}{toCells(values)}}
	_, err := g.svc.Spreadsheets.Values.Update(g.spreadsheetID, tab+"!A1", vr).
		ValueInputOption("RAW").Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("sheets: update header: %w", err)
	}
	return nil
}

func (g *GoogleAPI) AppendRow(ctx context.Context, tab string, values []string) error {
	vr := &sheetsapi.ValueRange{Values: [][]interface{}{toCells(values)}}
	_, err := g.svc.Spreadsheets.Values.Append(g.spreadsheetID, tab+"!A1", vr).
		ValueInputOption("USER_ENTERED").InsertDataOption("INSERT_ROWS").Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("sheets: append row: %w", err)
	}
	return nil
}

func toCells(values []string) []interface{} {
	cells := make([]interface{}, len(values))
	for i, v := range values {
		cells[i] = v
	}
	return cells
}
