// Package ledger is the append-only money-movement log shared by the whole
// system, plus the legacy admin-transfer log. Records are never edited or
// removed; every query view is a fresh linear scan.
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

// Op tags one ledger record with the operation that produced it. The
// ADMIN_/ADM_ variants mark operations an admin performed on a client's
// behalf, so views can separate them from self-service activity.
type Op string

const (
	OpDeposit          Op = "DEPOSIT"
	OpWithdraw         Op = "WITHDRAW"
	OpTransferOut      Op = "TRANSFER_OUT"
	OpTransferIn       Op = "TRANSFER_IN"
	OpAdminDeposit     Op = "ADMIN_DEPOSIT"
	OpAdminWithdraw    Op = "ADMIN_WITHDRAW"
	OpAdminTransferOut Op = "ADM_TRANS_OUT"
	OpAdminTransferIn  Op = "ADM_TRANS_IN"
)

// Placeholder fills the unused counterparty side of a record.
const Placeholder = "-"

const recordFieldCount = 8

// Record is one immutable ledger line. Principal is the acting admin
// username or client account number.
type Record struct {
	Date         string
	Time         string
	Principal    string
	Op           Op
	Amount       float64
	From         string
	To           string
	BalanceAfter float64
}

// Ledger owns AllTransactions.txt.
type Ledger struct {
	mu     sync.Mutex
	path   string
	clk    clock.Clock
	logger *slog.Logger
}

func New(path string, clk clock.Clock, logger *slog.Logger) *Ledger {
	if logger == nil {
		logger = slog.Default()
	}
	return &Ledger{
		path:   path,
		clk:    clk,
		logger: logger.With("file", filepath.Base(path)),
	}
}

func formatAmount(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

func (l *Ledger) append(ctx context.Context, principal string, op Op, amount float64, from, to string, balanceAfter float64) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return err
	}

	now := l.clk.Now()
	line := store.JoinFields([]string{
		clock.FormatDate(now),
		clock.FormatTime(now),
		principal,
		string(op),
		formatAmount(amount),
		from,
		to,
		formatAmount(balanceAfter),
	}, store.LogSep)

	if err := os.MkdirAll(filepath.Dir(l.path), 0o755); err != nil {
		return fmt.Errorf("%w: %w", store.ErrStorageUnavailable, err)
	}
	file, err := os.OpenFile(l.path, os.O_WRONLY|os.O_CREATE|os.O_APPEND, 0o644)
	if err != nil {
		l.logger.Error("open for append failed", "error", err)
		return fmt.Errorf("%w: %w", store.ErrStorageUnavailable, err)
	}
	defer file.Close()

	if _, err := file.WriteString(line + "\n"); err != nil {
		return fmt.Errorf("%w: %w", store.ErrStorageUnavailable, err)
	}
	return nil
}

// LogDeposit records a client self-service deposit.
func (l *Ledger) LogDeposit(ctx context.Context, account string, amount, balanceAfter float64) error {
	return l.append(ctx, account, OpDeposit, amount, Placeholder, account, balanceAfter)
}

// LogWithdraw records a client self-service withdrawal.
func (l *Ledger) LogWithdraw(ctx context.Context, account string, amount, balanceAfter float64) error {
	return l.append(ctx, account, OpWithdraw, amount, account, Placeholder, balanceAfter)
}

// LogTransfer records both sides of a client transfer: two appends sharing
// amount and counterparties, with opposite direction tags and each side's
// own balance-after. The pair is not atomic; a crash can leave one side.
func (l *Ledger) LogTransfer(ctx context.Context, from, to string, amount, fromBalanceAfter, toBalanceAfter float64) error {
	if err := l.append(ctx, from, OpTransferOut, amount, from, to, fromBalanceAfter); err != nil {
		return err
	}
	return l.append(ctx, to, OpTransferIn, amount, from, to, toBalanceAfter)
}

// LogAdminDeposit records a deposit an admin performed on a client account.
func (l *Ledger) LogAdminDeposit(ctx context.Context, admin, account string, amount, balanceAfter float64) error {
	return l.append(ctx, admin, OpAdminDeposit, amount, Placeholder, account, balanceAfter)
}

// LogAdminWithdraw records a withdrawal an admin performed on a client
// account.
func (l *Ledger) LogAdminWithdraw(ctx context.Context, admin, account string, amount, balanceAfter float64) error {
	return l.append(ctx, admin, OpAdminWithdraw, amount, account, Placeholder, balanceAfter)
}

// LogAdminTransfer records both sides of an admin-initiated transfer; the
// acting principal on both records is the admin username.
func (l *Ledger) LogAdminTransfer(ctx context.Context, admin, from, to string, amount, fromBalanceAfter, toBalanceAfter float64) error {
	if err := l.append(ctx, admin, OpAdminTransferOut, amount, from, to, fromBalanceAfter); err != nil {
		return err
	}
	return l.append(ctx, admin, OpAdminTransferIn, amount, from, to, toBalanceAfter)
}

// All returns every ledger record in file order. A missing file is an
// empty ledger.
func (l *Ledger) All(ctx context.Context) ([]Record, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	file, err := os.Open(l.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		l.logger.Error("open for read failed", "error", err)
		return nil, fmt.Errorf("%w: %w", store.ErrStorageUnavailable, err)
	}
	defer file.Close()

	var records []Record
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		fields := store.SplitFields(scanner.Text(), store.LogSep)
		if len(fields) < recordFieldCount {
			continue
		}
		amount, err := strconv.ParseFloat(fields[4], 64)
		if err != nil {
			return nil, fmt.Errorf("ledger line %d amount: %w", len(records)+1, err)
		}
		balanceAfter, err := strconv.ParseFloat(fields[7], 64)
		if err != nil {
			return nil, fmt.Errorf("ledger line %d balance: %w", len(records)+1, err)
		}
		records = append(records, Record{
			Date:         fields[0],
			Time:         fields[1],
			Principal:    fields[2],
			Op:           Op(fields[3]),
			Amount:       amount,
			From:         fields[5],
			To:           fields[6],
			BalanceAfter: balanceAfter,
		})
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("%w: %w", store.ErrStorageUnavailable, err)
	}
	return records, nil
}

// ForAccount returns every record that touches the account: records it
// acted in, plus each directional side that names it as counterparty.
func (l *Ledger) ForAccount(ctx context.Context, account string) ([]Record, error) {
	all, err := l.All(ctx)
	if err != nil {
		return nil, err
	}
	var out []Record
	for _, r := range all {
		if r.Touches(account) {
			out = append(out, r)
		}
	}
	return out, nil
}

// Touches reports whether the record involves the account, honoring the
// direction of each operation type.
func (r Record) Touches(account string) bool {
	if r.Principal == account {
		return true
	}
	switch r.Op {
	case OpTransferOut, OpAdminWithdraw, OpAdminTransferOut:
		return r.From == account
	case OpTransferIn, OpAdminDeposit, OpAdminTransferIn:
		return r.To == account
	}
	return false
}

// ByType returns every record with the given operation tag.
func (l *Ledger) ByType(ctx context.Context, op Op) ([]Record, error) {
	all, err := l.All(ctx)
	if err != nil {
		return nil, err
	}
	var out []Record
	for _, r := range all {
		if r.Op == op {
			out = append(out, r)
		}
	}
	return out, nil
}

// AdminActions returns every record produced by an admin acting on a
// client's behalf.
func (l *Ledger) AdminActions(ctx context.Context) ([]Record, error) {
	all, err := l.All(ctx)
	if err != nil {
		return nil, err
	}
	var out []Record
	for _, r := range all {
		switch r.Op {
		case OpAdminDeposit, OpAdminWithdraw, OpAdminTransferOut, OpAdminTransferIn:
			out = append(out, r)
		}
	}
	return out, nil
}
