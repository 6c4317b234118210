package sheets

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"
)

// Grid is a worksheet read and written as a grid of strings.
// Rows and columns are 1-based.
type Grid interface {
	GetAllValues(ctx context.Context) ([][]string, error)
	GetRange(ctx context.Context, a1 string) ([][]string, error)
	UpdateCell(ctx context.Context, row, col int, value string) error
	UpdateRow(ctx context.Context, row int, values []string) error
	AppendRow(ctx context.Context, values []string) error
}

// Client talks to one spreadsheet through the Sheets API with a service account
type Client struct {
	spreadsheetID string
	service       *sheets.Service
}

// NewClient authenticates with credentials, which is either the service
// account JSON itself or a path to it.
func NewClient(ctx context.Context, spreadsheetID, credentials string) (*Client, error) {
	var credOpt option.ClientOption
	if strings.HasPrefix(strings.TrimSpace(credentials), "{") {
		credOpt = option.WithCredentialsJSON([]byte(credentials))
	} else {
		credOpt = option.WithCredentialsFile(credentials)
	}

	service, err := sheets.NewService(ctx,
		credOpt,
		option.WithScopes(sheets.SpreadsheetsScope),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create sheets service: %w", err)
	}

	return &Client{
		spreadsheetID: spreadsheetID,
		service:       service,
	}, nil
}

// NewClientWithHTTP builds a client on an already authorised HTTP client.
func NewClientWithHTTP(ctx context.Context, spreadsheetID string, httpClient *http.Client, endpoint string) (*Client, error) {
	opts := []option.ClientOption{option.WithHTTPClient(httpClient)}
	if endpoint != "" {
		opts = append(opts, option.WithEndpoint(endpoint))
	}
	service, err := sheets.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create sheets service: %w", err)
	}
	return &Client{spreadsheetID: spreadsheetID, service: service}, nil
}

// TabInfo describes one worksheet of the spreadsheet
type TabInfo struct {
	Title   string
	GID     int64
	Rows    int64
	Columns int64
	Hidden  bool
}

// Tabs lists the spreadsheet's worksheets
func (c *Client) Tabs(ctx context.Context) ([]TabInfo, error) {
	spreadsheet, err := c.service.Spreadsheets.Get(c.spreadsheetID).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve spreadsheet metadata: %w", err)
	}

	var tabs []TabInfo
	for _, sheet := range spreadsheet.Sheets {
		props := sheet.Properties
		if props == nil {
			continue
		}
		tab := TabInfo{Title: props.Title, GID: props.SheetId, Hidden: props.Hidden}
		if props.GridProperties != nil {
			tab.Rows = props.GridProperties.RowCount
			tab.Columns = props.GridProperties.ColumnCount
		}
		tabs = append(tabs, tab)
	}
	return tabs, nil
}

// Worksheet returns a handle on the worksheet named title
func (c *Client) Worksheet(title string) *Worksheet {
	return &Worksheet{client: c, title: title}
}

// Worksheet is a single tab of the spreadsheet
type Worksheet struct {
	client *Client
	title  string
}

const requestTimeout = 30 * time.Second

func (w *Worksheet) GetAllValues(ctx context.Context) ([][]string, error) {
	return w.get(ctx, quoteTitle(w.title))
}

func (w *Worksheet) GetRange(ctx context.Context, a1 string) ([][]string, error) {
	return w.get(ctx, quoteTitle(w.title)+"!"+a1)
}

func (w *Worksheet) get(ctx context.Context, rng string) ([][]string, error) {
	ctx, cancel := context.WithTimeout(ctx, requestTimeout)
	defer cancel()

	resp, err := w.client.service.Spreadsheets.Values.Get(w.client.spreadsheetID, rng).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", rng, err)
	}
	return toStrings(resp.Values), nil
}

func (w *Worksheet) UpdateCell(ctx context.Context, row, col int, value string) error {
	rng := quoteTitle(w.title) + "!" + CellRef(row, col)
	return w.update(ctx, rng, []interface{}{value})
}

func (w *Worksheet) UpdateRow(ctx context.Context, row int, values []string) error {
	rng := quoteTitle(w.title) + "!" + CellRef(row, 1)
	return w.update(ctx, rng, toInterfaces(values))
}

func (w *Worksheet) update(ctx context.Context, rng string, row []interface{}) error {
	ctx, cancel := context.WithTimeout(ctx, requestTimeout)
	defer cancel()

	vr := &sheets.ValueRange{Values: [][]interface{}{row}}
	_, err := w.client.service.Spreadsheets.Values.Update(w.client.spreadsheetID, rng, vr).
		ValueInputOption("USER_ENTERED").
		Context(ctx).
		Do()
	if err != nil {
		return fmt.Errorf("failed to update %s: %w", rng, err)
	}
	return nil
}

func (w *Worksheet) AppendRow(ctx context.Context, values []string) error {
	ctx, cancel := context.WithTimeout(ctx, requestTimeout)
	defer cancel()

	rng := quoteTitle(w.title) + "!A1"
	vr := &sheets.ValueRange{Values: [][]interface{}{toInterfaces(values)}}
	_, err := w.client.service.Spreadsheets.Values.Append(w.client.spreadsheetID, rng, vr).
		ValueInputOption("USER_ENTERED").
		InsertDataOption("INSERT_ROWS").
		Context(ctx).
		Do()
	if err != nil {
		return fmt.Errorf("failed to append row to %s: %w", w.title, err)
	}
	return nil
}

// CellRef converts a 1-based row and column to A1 notation
func CellRef(row, col int) string {
	return ColumnLetter(col) + fmt.Sprint(row)
}

// ColumnLetter converts a 1-based column index to its letter, e.g. 28 -> AB
func ColumnLetter(col int) string {
	var letters []byte
	for col > 0 {
		col--
		letters = append([]byte{byte('A' + col%26)}, letters...)
		col /= 26
	}
	return string(letters)
}

func quoteTitle(title string) string {
	return "'" + strings.ReplaceAll(title, "'", "''") + "'"
}

func toStrings(values [][]interface{}) [][]string {
	out := make([][]string, len(values))
	for i, row := range values {
		out[i] = make([]string, len(row))
		for j, v := range row {
			out[i][j] = fmt.Sprint(v)
		}
	}
	return out
}

func toInterfaces(values []string) []interface{} {
	out := make([]interface{}, len(values))
	for i, v := range values {
		out[i] = v
	}
	return out
}
