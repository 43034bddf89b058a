// Package export writes back-office reports (client list, transaction
// ledger) as CSV or XLSX files into a configured directory.
package export

import (
	"encoding/csv"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"

	"github.com/xuri/excelize/v2"

	"github.com/alialsharqawi/bank-backoffice/internal/bank"
	"github.com/alialsharqawi/bank-backoffice/internal/clock"
	"github.com/alialsharqawi/bank-backoffice/internal/ledger"
	"github.com/alialsharqawi/bank-backoffice/internal/session"
)

var clientHeader = []string{"Account Number", "Full Name", "Email", "Phone", "Balance"}
var ledgerHeader = []string{"Date", "Time", "Principal", "Operation", "Amount", "From", "To", "Balance After"}
var sessionHeader = []string{"Date", "Time", "Action", "Principal", "Full Name", "Permissions", "Duration"}

// Exporter writes dated report files. Secrets (PINs, passwords) are never
// part of a report.
type Exporter struct {
	dir    string
	clk    clock.Clock
	logger *slog.Logger
}

func New(dir string, clk clock.Clock, logger *slog.Logger) *Exporter {
	if logger == nil {
		logger = slog.Default()
	}
	return &Exporter{dir: dir, clk: clk, logger: logger}
}

func (e *Exporter) target(stem, ext string) (string, error) {
	if err := os.MkdirAll(e.dir, 0o755); err != nil {
		return "", fmt.Errorf("create export dir: %w", err)
	}
	return filepath.Join(e.dir, fmt.Sprintf("%s_%s.%s", stem, e.clk.Now().Format("20060102"), ext)), nil
}

func clientRow(c *bank.Client) []string {
	return []string{
		c.AccountNumber,
		c.FullName(),
		c.Email,
		c.Phone,
		strconv.FormatFloat(c.Balance, 'f', 2, 64),
	}
}

func ledgerRow(r ledger.Record) []string {
	return []string{
		r.Date,
		r.Time,
		r.Principal,
		string(r.Op),
		strconv.FormatFloat(r.Amount, 'f', 2, 64),
		r.From,
		r.To,
		strconv.FormatFloat(r.BalanceAfter, 'f', 2, 64),
	}
}

// ClientsCSV writes the client list and returns the file path.
func (e *Exporter) ClientsCSV(clients []*bank.Client) (string, error) {
	rows := make([][]string, 0, len(clients))
	for _, c := range clients {
		rows = append(rows, clientRow(c))
	}
	return e.writeCSV("clients", clientHeader, rows)
}

// LedgerCSV writes the full transaction ledger and returns the file path.
func (e *Exporter) LedgerCSV(records []ledger.Record) (string, error) {
	rows := make([][]string, 0, len(records))
	for _, r := range records {
		rows = append(rows, ledgerRow(r))
	}
	return e.writeCSV("transactions", ledgerHeader, rows)
}

func (e *Exporter) writeCSV(stem string, header []string, rows [][]string) (string, error) {
	path, err := e.target(stem, "csv")
	if err != nil {
		return "", err
	}

	file, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("create %s: %w", path, err)
	}
	defer file.Close()

	w := csv.NewWriter(file)
	if err := w.Write(header); err != nil {
		return "", fmt.Errorf("write header: %w", err)
	}
	for _, row := range rows {
		if err := w.Write(row); err != nil {
			return "", fmt.Errorf("write row: %w", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return "", fmt.Errorf("flush %s: %w", path, err)
	}

	e.logger.Info("report written", "path", path, "rows", len(rows))
	return path, nil
}

func sessionRow(e session.Entry) []string {
	return []string{
		e.Date,
		e.Time,
		string(e.Action),
		e.PrincipalID,
		e.FullName,
		e.Permissions,
		e.Duration,
	}
}

// SessionsCSV writes a session log and returns the file path.
func (e *Exporter) SessionsCSV(entries []session.Entry) (string, error) {
	rows := make([][]string, 0, len(entries))
	for _, entry := range entries {
		rows = append(rows, sessionRow(entry))
	}
	return e.writeCSV("sessions", sessionHeader, rows)
}

// SessionsXLSX writes a session log as a spreadsheet and returns the file
// path.
func (e *Exporter) SessionsXLSX(entries []session.Entry) (string, error) {
	rows := make([][]string, 0, len(entries))
	for _, entry := range entries {
		rows = append(rows, sessionRow(entry))
	}
	return e.writeXLSX("sessions", "Sessions", sessionHeader, rows)
}

// ClientsXLSX writes the client list as a spreadsheet and returns the file
// path.
func (e *Exporter) ClientsXLSX(clients []*bank.Client) (string, error) {
	rows := make([][]string, 0, len(clients))
	for _, c := range clients {
		rows = append(rows, clientRow(c))
	}
	return e.writeXLSX("clients", "Clients", clientHeader, rows)
}

// LedgerXLSX writes the full transaction ledger as a spreadsheet and
// returns the file path.
func (e *Exporter) LedgerXLSX(records []ledger.Record) (string, error) {
	rows := make([][]string, 0, len(records))
	for _, r := range records {
		rows = append(rows, ledgerRow(r))
	}
	return e.writeXLSX("transactions", "Transactions", ledgerHeader, rows)
}

func (e *Exporter) writeXLSX(stem, sheet string, header []string, rows [][]string) (string, error) {
	path, err := e.target(stem, "xlsx")
	if err != nil {
		return "", err
	}

	f := excelize.NewFile()
	defer f.Close()

	index, err := f.NewSheet(sheet)
	if err != nil {
		return "", fmt.Errorf("new sheet: %w", err)
	}
	f.SetActiveSheet(index)

	for i, h := range header {
		cell, err := excelize.CoordinatesToCellName(i+1, 1)
		if err != nil {
			return "", err
		}
		if err := f.SetCellValue(sheet, cell, h); err != nil {
			return "", err
		}
	}
	for ri, row := range rows {
		for ci, v := range row {
			cell, err := excelize.CoordinatesToCellName(ci+1, ri+2)
			if err != nil {
				return "", err
			}
			if err := f.SetCellValue(sheet, cell, v); err != nil {
				return "", err
			}
		}
	}

	lastCol, err := excelize.ColumnNumberToName(len(header))
	if err != nil {
		return "", err
	}
	if err := f.SetColWidth(sheet, "A", lastCol, 16); err != nil {
		return "", err
	}

	if err := f.SaveAs(path); err != nil {
		return "", fmt.Errorf("save %s: %w", path, err)
	}

	e.logger.Info("report written", "path", path, "rows", len(rows))
	return path, nil
}
