package Sheets

import (
	"context"
	"fmt"
	"log"
	"os"
	"regexp"
	"strings"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"golang.org/x/oauth2/jwt"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"
)

// ValueRange is a single range write inside a batch update.
type ValueRange struct {
	Range  string
	Values [][]interface{}
}

// Values is the subset of the spreadsheet values API the inspection engine
// talks to. The live implementation is Client; tests swap in a fake.
type Values interface {
	GetRows(ctx context.Context, spreadsheetID, readRange string) ([][]string, error)
	AppendRow(ctx context.Context, spreadsheetID, appendRange string, row []interface{}) (int, error)
	UpdateCell(ctx context.Context, spreadsheetID, cellRange string, value interface{}) error
	UpdateRange(ctx context.Context, spreadsheetID, updateRange string, values [][]interface{}) error
	BatchUpdate(ctx context.Context, spreadsheetID string, data []ValueRange) error
}

// Client wraps the Google Sheets values API with service account auth.
type Client struct {
	service *sheets.Service
	config  *jwt.Config
}

// NewClient builds a Sheets client from the GOOGLE_* environment variables.
func NewClient(ctx context.Context) (*Client, error) {
	clientEmail := os.Getenv("GOOGLE_CLIENT_EMAIL")
	privateKey := strings.ReplaceAll(os.Getenv("GOOGLE_PRIVATE_KEY"), `\n`, "\n")
	scopes := strings.Split(os.Getenv("GOOGLE_SCOPES"), ",")

	if clientEmail == "" || privateKey == "" {
		return nil, fmt.Errorf("missing GOOGLE_CLIENT_EMAIL or GOOGLE_PRIVATE_KEY")
	}

	config := &jwt.Config{
		Email:      clientEmail,
		PrivateKey: []byte(privateKey),
		Scopes:     scopes,
		TokenURL:   google.JWTTokenURL,
	}

	service, err := sheets.NewService(ctx, option.WithTokenSource(config.TokenSource(ctx)))
	if err != nil {
		return nil, fmt.Errorf("failed to create sheets service: %v", err)
	}

	log.Println("Google Sheets client initialized")
	return &Client{service: service, config: config}, nil
}

// TokenSource exposes the service account token source so the report
// pipeline can authenticate the PDF export and the Drive upload.
func (c *Client) TokenSource(ctx context.Context) oauth2.TokenSource {
	return c.config.TokenSource(ctx)
}

// GetRows reads a range and flattens every cell to a string.
func (c *Client) GetRows(ctx context.Context, spreadsheetID, readRange string) ([][]string, error) {
	resp, err := c.service.Spreadsheets.Values.Get(spreadsheetID, readRange).Context(ctx).Do()
	if err != nil {
		return nil, err
	}

	rows := make([][]string, 0, len(resp.Values))
	for _, row := range resp.Values {
		cells := make([]string, len(row))
		for i, cell := range row {
			cells[i] = fmt.Sprintf("%v", cell)
		}
		rows = append(rows, cells)
	}
	return rows, nil
}

var rowNumberPattern = regexp.MustCompile(`\d+`)

// AppendRow appends one row beneath the existing data of the range and
// returns the sheet row number it landed on.
func (c *Client) AppendRow(ctx context.Context, spreadsheetID, appendRange string, row []interface{}) (int, error) {
	resp, err := c.service.Spreadsheets.Values.Append(spreadsheetID, appendRange, &sheets.ValueRange{
		Values: [][]interface{}{row},
	}).ValueInputOption("RAW").Context(ctx).Do()
	if err != nil {
		return 0, err
	}

	if resp.Updates == nil || resp.Updates.UpdatedRange == "" {
		return 0, fmt.Errorf("append response missing updated range")
	}

	// The updated range looks like 'Hoja 1'!A23:FE23, the trailing number
	// is the inserted row.
	matches := rowNumberPattern.FindAllString(resp.Updates.UpdatedRange, -1)
	if len(matches) == 0 {
		return 0, fmt.Errorf("could not parse row number from range %q", resp.Updates.UpdatedRange)
	}

	var inserted int
	fmt.Sscanf(matches[len(matches)-1], "%d", &inserted)
	return inserted, nil
}

// UpdateCell writes a single value.
func (c *Client) UpdateCell(ctx context.Context, spreadsheetID, cellRange string, value interface{}) error {
	return c.UpdateRange(ctx, spreadsheetID, cellRange, [][]interface{}{{value}})
}

// UpdateRange overwrites a range with the given matrix.
func (c *Client) UpdateRange(ctx context.Context, spreadsheetID, updateRange string, values [][]interface{}) error {
	_, err := c.service.Spreadsheets.Values.Update(spreadsheetID, updateRange, &sheets.ValueRange{
		Values: values,
	}).ValueInputOption("RAW").Context(ctx).Do()
	return err
}

// BatchUpdate writes several ranges in one request. Used to fill the report
// template in a single round trip.
func (c *Client) BatchUpdate(ctx context.Context, spreadsheetID string, data []ValueRange) error {
	batch := &sheets.BatchUpdateValuesRequest{
		ValueInputOption: "RAW",
	}
	for _, vr := range data {
		batch.Data = append(batch.Data, &sheets.ValueRange{Range: vr.Range, Values: vr.Values})
	}

	_, err := c.service.Spreadsheets.Values.BatchUpdate(spreadsheetID, batch).Context(ctx).Do()
	return err
}

// ColumnLetter converts a zero based column index to its A1 letter. Counter
// columns never get past Z in practice, but two letter columns are handled
// anyway.
func ColumnLetter(index int) string {
	letter := ""
	index++
	for index > 0 {
		index--
		letter = string(rune('A'+index%26)) + letter
		index /= 26
	}
	return letter
}
