package ledger_test

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/alialsharqawi/bank-backoffice/internal/clock"
	"github.com/alialsharqawi/bank-backoffice/internal/ledger"
)

var fixedTime = time.Date(2024, time.March, 5, 15, 4, 5, 0, time.UTC)

func setupLedger(t *testing.T) *ledger.Ledger {
	t.Helper()
	return ledger.New(filepath.Join(t.TempDir(), "AllTransactions.txt"), clock.Fixed(fixedTime), nil)
}

func TestLogDeposit(t *testing.T) {
	l := setupLedger(t)

	if err := l.LogDeposit(context.Background(), "C100", 500, 500); err != nil {
		t.Fatal(err)
	}

	records, err := l.All(context.Background())

	if err != nil {
		t.Fatal(err)
	}
	if len(records) != 1 {
		t.Fatalf("expected 1 record, got %d", len(records))
	}

	r := records[0]
	if r.Date != "5/3/2024" || r.Time != "03:04:05 PM" {
		t.Fatalf("unexpected timestamp: %s %s", r.Date, r.Time)
	}
	if r.Op != ledger.OpDeposit {
		t.Fatalf("unexpected op: %s", r.Op)
	}
	if r.Principal != "C100" || r.From != ledger.Placeholder || r.To != "C100" {
		t.Fatalf("unexpected parties: %+v", r)
	}
	if r.Amount != 500 || r.BalanceAfter != 500 {
		t.Fatalf("unexpected amounts: %+v", r)
	}
}

func TestLogWithdrawDirection(t *testing.T) {
	l := setupLedger(t)

	if err := l.LogWithdraw(context.Background(), "C100", 200, 300); err != nil {
		t.Fatal(err)
	}

	records, err := l.All(context.Background())

	if err != nil {
		t.Fatal(err)
	}

	r := records[0]
	if r.Op != ledger.OpWithdraw {
		t.Fatalf("unexpected op: %s", r.Op)
	}
	if r.From != "C100" || r.To != ledger.Placeholder {
		t.Fatalf("unexpected parties: %+v", r)
	}
}

func TestLogTransferWritesBothSides(t *testing.T) {
	l := setupLedger(t)

	if err := l.LogTransfer(context.Background(), "C100", "C200", 50, 250, 150); err != nil {
		t.Fatal(err)
	}

	records, err := l.All(context.Background())

	if err != nil {
		t.Fatal(err)
	}
	if len(records) != 2 {
		t.Fatalf("expected 2 records, got %d", len(records))
	}

	out, in := records[0], records[1]
	if out.Op != ledger.OpTransferOut || in.Op != ledger.OpTransferIn {
		t.Fatalf("unexpected tag order: %s then %s", out.Op, in.Op)
	}
	if out.Amount != in.Amount {
		t.Fatalf("amounts differ: %f vs %f", out.Amount, in.Amount)
	}
	if out.From != "C100" || out.To != "C200" || in.From != "C100" || in.To != "C200" {
		t.Fatalf("counterparties differ: %+v / %+v", out, in)
	}
	if out.Principal != "C100" || in.Principal != "C200" {
		t.Fatalf("unexpected principals: %q / %q", out.Principal, in.Principal)
	}
	if out.BalanceAfter != 250 || in.BalanceAfter != 150 {
		t.Fatalf("unexpected balances: %f / %f", out.BalanceAfter, in.BalanceAfter)
	}
}

func TestLogAdminTransferActsAsAdmin(t *testing.T) {
	l := setupLedger(t)

	if err := l.LogAdminTransfer(context.Background(), "ada", "C100", "C200", 50, 250, 150); err != nil {
		t.Fatal(err)
	}

	records, err := l.All(context.Background())

	if err != nil {
		t.Fatal(err)
	}
	if len(records) != 2 {
		t.Fatalf("expected 2 records, got %d", len(records))
	}
	if records[0].Op != ledger.OpAdminTransferOut || records[1].Op != ledger.OpAdminTransferIn {
		t.Fatalf("unexpected tags: %s / %s", records[0].Op, records[1].Op)
	}
	for _, r := range records {
		if r.Principal != "ada" {
			t.Fatalf("expected the admin as principal, got %q", r.Principal)
		}
	}
}

func TestForAccountHonorsDirection(t *testing.T) {
	l := setupLedger(t)

	if err := l.LogTransfer(context.Background(), "C100", "C200", 50, 250, 150); err != nil {
		t.Fatal(err)
	}
	if err := l.LogDeposit(context.Background(), "C300", 10, 10); err != nil {
		t.Fatal(err)
	}
	if err := l.LogAdminDeposit(context.Background(), "ada", "C200", 25, 175); err != nil {
		t.Fatal(err)
	}

	// only the out-side row names C100 as its acting party
	forC100, err := l.ForAccount(context.Background(), "C100")
	if err != nil {
		t.Fatal(err)
	}
	if len(forC100) != 1 {
		t.Fatalf("expected 1 record for C100, got %d", len(forC100))
	}

	// the in-side transfer row plus the admin deposit aimed at C200
	forC200, err := l.ForAccount(context.Background(), "C200")
	if err != nil {
		t.Fatal(err)
	}
	if len(forC200) != 2 {
		t.Fatalf("expected 2 records for C200, got %d", len(forC200))
	}

	forC300, err := l.ForAccount(context.Background(), "C300")
	if err != nil {
		t.Fatal(err)
	}
	if len(forC300) != 1 {
		t.Fatalf("expected 1 record for C300, got %d", len(forC300))
	}
}

func TestByTypeAndAdminActions(t *testing.T) {
	l := setupLedger(t)

	if err := l.LogDeposit(context.Background(), "C100", 500, 500); err != nil {
		t.Fatal(err)
	}
	if err := l.LogAdminWithdraw(context.Background(), "ada", "C100", 100, 400); err != nil {
		t.Fatal(err)
	}
	if err := l.LogDeposit(context.Background(), "C200", 50, 50); err != nil {
		t.Fatal(err)
	}

	deposits, err := l.ByType(context.Background(), ledger.OpDeposit)
	if err != nil {
		t.Fatal(err)
	}
	if len(deposits) != 2 {
		t.Fatalf("expected 2 deposits, got %d", len(deposits))
	}

	adminActions, err := l.AdminActions(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if len(adminActions) != 1 || adminActions[0].Op != ledger.OpAdminWithdraw {
		t.Fatalf("unexpected admin actions: %+v", adminActions)
	}
}

func TestAllMissingFileIsEmpty(t *testing.T) {
	l := setupLedger(t)

	records, err := l.All(context.Background())

	if err != nil {
		t.Fatal(err)
	}
	if len(records) != 0 {
		t.Fatalf("expected no records, got %d", len(records))
	}
}
