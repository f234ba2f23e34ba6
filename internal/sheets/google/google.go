package google

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"

	"servicos/internal/core"
	ports "servicos/internal/sheets"
)

// Config selects the spreadsheet and the service account used to write it.
type Config struct {
	SpreadsheetID      string
	SheetName          string // base name, the event year is prefixed
	ServiceAccountJSON string
	ServiceAccountFile string
	Location           *time.Location
}

type Client struct {
	svc           *gsheet.Service
	spreadsheetID string
	sheetBase     string
	loc           *time.Location

	mu     sync.Mutex
	header map[string]bool // sheets known to carry the header row
}

var _ ports.Ledger = (*Client)(nil)

// New creates a ledger client authenticated with a service account.
func New(ctx context.Context, cfg Config) (*Client, error) {
	if strings.TrimSpace(cfg.SpreadsheetID) == "" {
		return nil, errors.New("missing GOOGLE_SPREADSHEET_ID")
	}
	creds, err := credentials(cfg)
	if err != nil {
		return nil, err
	}
	svc, err := gsheet.NewService(ctx,
		goption.WithCredentialsJSON(creds),
		goption.WithScopes(gsheet.SpreadsheetsScope))
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}
	slog.InfoContext(ctx, "Google Sheets service created", "spreadsheet_id", cfg.SpreadsheetID)
	return newClient(svc, cfg), nil
}

func newClient(svc *gsheet.Service, cfg Config) *Client {
	base := strings.TrimSpace(cfg.SheetName)
	if base == "" {
		base = "Serviços"
	}
	loc := cfg.Location
	if loc == nil {
		loc = time.Local
	}
	return &Client{
		svc:           svc,
		spreadsheetID: strings.TrimSpace(cfg.SpreadsheetID),
		sheetBase:     base,
		loc:           loc,
		header:        map[string]bool{},
	}
}

// credentials prefers inline JSON, then a file, then GOOGLE_APPLICATION_CREDENTIALS.
func credentials(cfg Config) ([]byte, error) {
	inline := strings.TrimSpace(cfg.ServiceAccountJSON)
	file := strings.TrimSpace(cfg.ServiceAccountFile)
	if inline == "" && file == "" {
		file = strings.TrimSpace(os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"))
	}
	switch {
	case inline != "":
		return []byte(inline), nil
	case file != "":
		b, err := os.ReadFile(file)
		if err != nil {
			return nil, fmt.Errorf("read service account file: %w", err)
		}
		return b, nil
	default:
		return nil, errors.New("missing service account credentials (set GOOGLE_SERVICE_ACCOUNT_JSON, GOOGLE_SERVICE_ACCOUNT_FILE, or GOOGLE_APPLICATION_CREDENTIALS)")
	}
}

// AppendEvent appends the event row to the sheet of the event's year and
// returns the updated range.
func (c *Client) AppendEvent(ctx context.Context, e core.RecordEvent) (string, error) {
	if c.svc == nil {
		return "", errors.New("sheets service not initialized")
	}
	sheet := yearPrefixedName(c.sheetBase, e.OccurredAt.In(c.loc).Year())
	if err := c.ensureHeader(ctx, sheet); err != nil {
		return "", err
	}

	vr := &gsheet.ValueRange{Values: [][]any{ports.Row(e, c.loc)}}
	resp, err := c.svc.Spreadsheets.Values.Append(c.spreadsheetID, sheet+"!A:K", vr).
		ValueInputOption("USER_ENTERED").
		InsertDataOption("INSERT_ROWS").
		Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("append to sheet %s: %w", sheet, err)
	}
	if resp.Updates != nil && resp.Updates.UpdatedRange != "" {
		return resp.Updates.UpdatedRange, nil
	}
	return sheet, nil
}

func (c *Client) ensureHeader(ctx context.Context, sheet string) error {
	c.mu.Lock()
	known := c.header[sheet]
	c.mu.Unlock()
	if known {
		return nil
	}

	rng := sheet + "!A1:K1"
	resp, err := c.svc.Spreadsheets.Values.Get(c.spreadsheetID, rng).Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("read header %s: %w", rng, err)
	}
	if len(resp.Values) == 0 {
		vr := &gsheet.ValueRange{Values: [][]any{ports.Header}}
		if _, err := c.svc.Spreadsheets.Values.Update(c.spreadsheetID, rng, vr).
			ValueInputOption("RAW").Context(ctx).Do(); err != nil {
			return fmt.Errorf("write header %s: %w", rng, err)
		}
	}

	c.mu.Lock()
	c.header[sheet] = true
	c.mu.Unlock()
	return nil
}

// EventIDs reads the event id column of the current year's sheet.
func (c *Client) EventIDs(ctx context.Context) (map[string]struct{}, error) {
	if c.svc == nil {
		return nil, errors.New("sheets service not initialized")
	}
	sheet := yearPrefixedName(c.sheetBase, time.Now().In(c.loc).Year())
	rng := sheet + "!B:B"
	resp, err := c.svc.Spreadsheets.Values.Get(c.spreadsheetID, rng).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", rng, err)
	}
	return ports.EventIDsFromColumn(resp.Values), nil
}

// yearPrefixedName returns "<year> <base>" unless base already starts with
// a four digit year.
func yearPrefixedName(base string, year int) string {
	b := strings.TrimSpace(base)
	if len(b) >= 5 && b[4] == ' ' {
		if _, err := strconv.Atoi(b[:4]); err == nil {
			return b
		}
	}
	return fmt.Sprintf("%d %s", year, b)
}
