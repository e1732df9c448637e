package google

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"enriquecer/internal/core"
	ports "enriquecer/internal/sheets"

	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"
)

const defaultSummarySheet = "Resumo"

// Options configures the Sheets mirror.
type Options struct {
	SpreadsheetID string
	// SheetName holds one row per transaction.
	SheetName string
	// SummarySheetName holds the monthly series. Defaults to "Resumo".
	SummarySheetName string
	// Service account credentials; inline JSON wins over the file.
	CredentialsJSON string
	CredentialsFile string
}

type Client struct {
	svc           *gsheet.Service
	spreadsheetID string
	sheetName     string
	summarySheet  string
}

var _ ports.SnapshotWriter = (*Client)(nil)

// New creates a Sheets client authenticated with a service account.
func New(ctx context.Context, opts Options) (*Client, error) {
	id := strings.TrimSpace(opts.SpreadsheetID)
	if id == "" {
		return nil, errors.New("missing GOOGLE_SPREADSHEET_ID")
	}

	svc, err := newSheetsService(ctx, opts.CredentialsJSON, opts.CredentialsFile)
	if err != nil {
		return nil, fmt.Errorf("sheets service: %w", err)
	}
	return newWithService(svc, id, opts.SheetName, opts.SummarySheetName), nil
}

func newWithService(svc *gsheet.Service, id, sheet, summary string) *Client {
	if strings.TrimSpace(sheet) == "" {
		sheet = "Lançamentos"
	}
	if strings.TrimSpace(summary) == "" {
		summary = defaultSummarySheet
	}
	return &Client{svc: svc, spreadsheetID: id, sheetName: sheet, summarySheet: summary}
}

// newSheetsService initializes a Sheets Service using Service Account credentials,
// falling back to GOOGLE_APPLICATION_CREDENTIALS when neither is set.
func newSheetsService(ctx context.Context, inlineJSON, file string) (*gsheet.Service, error) {
	inlineJSON = strings.TrimSpace(inlineJSON)
	file = strings.TrimSpace(file)
	if inlineJSON == "" && file == "" {
		file = strings.TrimSpace(os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"))
	}

	var credentialsJSON []byte
	switch {
	case inlineJSON != "":
		slog.InfoContext(ctx, "Using inline JSON credentials")
		credentialsJSON = []byte(inlineJSON)
	case file != "":
		var err error
		credentialsJSON, err = os.ReadFile(file)
		if err != nil {
			return nil, fmt.Errorf("read service account file: %w", err)
		}
		slog.InfoContext(ctx, "Read credentials file", "path", file, "size", len(credentialsJSON))
	default:
		return nil, errors.New("missing service account credentials (set GOOGLE_SERVICE_ACCOUNT_JSON, GOOGLE_SERVICE_ACCOUNT_FILE, or GOOGLE_APPLICATION_CREDENTIALS)")
	}

	service, err := gsheet.NewService(ctx,
		goption.WithCredentialsJSON(credentialsJSON),
		goption.WithScopes(gsheet.SpreadsheetsScope))
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}
	return service, nil
}

// WriteSnapshot clears both mirror sheets and rewrites them from txs.
func (c *Client) WriteSnapshot(ctx context.Context, txs []core.Transaction) error {
	if c.svc == nil {
		return errors.New("sheets service not initialized")
	}

	txRange := fmt.Sprintf("%s!A:F", c.sheetName)
	sumRange := fmt.Sprintf("%s!A:D", c.summarySheet)

	_, err := c.svc.Spreadsheets.Values.BatchClear(c.spreadsheetID, &gsheet.BatchClearValuesRequest{
		Ranges: []string{txRange, sumRange},
	}).Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("clear %s: %w", c.spreadsheetID, err)
	}

	req := &gsheet.BatchUpdateValuesRequest{
		ValueInputOption: "RAW",
		Data: []*gsheet.ValueRange{
			{Range: fmt.Sprintf("%s!A1", c.sheetName), Values: transactionRows(txs)},
			{Range: fmt.Sprintf("%s!A1", c.summarySheet), Values: summaryRows(core.BuildMonthlySeries(txs))},
		},
	}
	resp, err := c.svc.Spreadsheets.Values.BatchUpdate(c.spreadsheetID, req).Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("write snapshot: %w", err)
	}

	slog.InfoContext(ctx, "Snapshot written to Google Sheets",
		"spreadsheet", c.spreadsheetID,
		"sheet", c.sheetName,
		"rows", len(txs),
		"updated_cells", resp.TotalUpdatedCells)
	return nil
}

var (
	transactionHeader = []interface{}{"ID", "Data", "Tipo", "Descrição", "Categoria", "Valor"}
	summaryHeader     = []interface{}{"Mês", "Receitas", "Despesas", "Resultado"}
)

func transactionRows(txs []core.Transaction) [][]interface{} {
	rows := make([][]interface{}, 0, len(txs)+1)
	rows = append(rows, transactionHeader)
	for _, t := range txs {
		rows = append(rows, []interface{}{t.ID, t.Date, string(t.Kind), t.Description, t.CategoryName(), t.Amount})
	}
	return rows
}

func summaryRows(series []core.MonthBucket) [][]interface{} {
	rows := make([][]interface{}, 0, len(series)+1)
	rows = append(rows, summaryHeader)
	for _, b := range series {
		rows = append(rows, []interface{}{b.Month, b.Income, b.Expense, b.Result})
	}
	return rows
}
