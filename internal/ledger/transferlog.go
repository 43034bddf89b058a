package ledger

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"sync"

	"github.com/alialsharqawi/bank-backoffice/internal/clock"
	"github.com/alialsharqawi/bank-backoffice/internal/store"
)

const transferFieldCount = 8

// TransferRecord is one line of the legacy admin-transfer log
// (Transactions.txt), kept alongside the unified ledger because the
// transfer-history views still read it.
type TransferRecord struct {
	Date        string
	Time        string
	Admin       string
	Amount      float64
	From        string
	FromBalance float64
	To          string
	ToBalance   float64
}

// TransferLog owns Transactions.txt. Append-only, " || "-delimited.
type TransferLog struct {
	mu     sync.Mutex
	path   string
	clk    clock.Clock
	logger *slog.Logger
}

func NewTransferLog(path string, clk clock.Clock, logger *slog.Logger) *TransferLog {
	if logger == nil {
		logger = slog.Default()
	}
	return &TransferLog{
		path:   path,
		clk:    clk,
		logger: logger.With("file", filepath.Base(path)),
	}
}

// Append writes one admin-transfer line.
func (t *TransferLog) Append(ctx context.Context, admin string, amount float64, from string, fromBalance float64, to string, toBalance float64) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return err
	}

	now := t.clk.Now()
	line := store.JoinFields([]string{
		clock.FormatDate(now),
		clock.FormatTime(now),
		admin,
		formatAmount(amount),
		from,
		formatAmount(fromBalance),
		to,
		formatAmount(toBalance),
	}, store.FieldSep)

	if err := os.MkdirAll(filepath.Dir(t.path), 0o755); err != nil {
		return fmt.Errorf("%w: %w", store.ErrStorageUnavailable, err)
	}
	file, err := os.OpenFile(t.path, os.O_WRONLY|os.O_CREATE|os.O_APPEND, 0o644)
	if err != nil {
		t.logger.Error("open for append failed", "error", err)
		return fmt.Errorf("%w: %w", store.ErrStorageUnavailable, err)
	}
	defer file.Close()

	if _, err := file.WriteString(line + "\n"); err != nil {
		return fmt.Errorf("%w: %w", store.ErrStorageUnavailable, err)
	}
	return nil
}

// All returns the transfer history in file order.
func (t *TransferLog) All(ctx context.Context) ([]TransferRecord, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	file, err := os.Open(t.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		t.logger.Error("open for read failed", "error", err)
		return nil, fmt.Errorf("%w: %w", store.ErrStorageUnavailable, err)
	}
	defer file.Close()

	var records []TransferRecord
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		fields := store.SplitFields(scanner.Text(), store.FieldSep)
		if len(fields) < transferFieldCount {
			continue
		}
		amount, err := strconv.ParseFloat(fields[3], 64)
		if err != nil {
			return nil, fmt.Errorf("transfer line %d amount: %w", len(records)+1, err)
		}
		fromBalance, err := strconv.ParseFloat(fields[5], 64)
		if err != nil {
			return nil, fmt.Errorf("transfer line %d from balance: %w", len(records)+1, err)
		}
		toBalance, err := strconv.ParseFloat(fields[7], 64)
		if err != nil {
			return nil, fmt.Errorf("transfer line %d to balance: %w", len(records)+1, err)
		}
		records = append(records, TransferRecord{
			Date:        fields[0],
			Time:        fields[1],
			Admin:       fields[2],
			Amount:      amount,
			From:        fields[4],
			FromBalance: fromBalance,
			To:          fields[6],
			ToBalance:   toBalance,
		})
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("%w: %w", store.ErrStorageUnavailable, err)
	}
	return records, nil
}
