package bank_test

import (
	"context"
	"testing"
	"time"

	"github.com/alialsharqawi/bank-backoffice/internal/bank"
	"github.com/alialsharqawi/bank-backoffice/internal/clock"
	"github.com/alialsharqawi/bank-backoffice/internal/ledger"
	"github.com/alialsharqawi/bank-backoffice/internal/secret"
)

type fixture struct {
	service   bank.Service
	clients   *bank.ClientRepo
	ledger    *ledger.Ledger
	transfers *ledger.TransferLog
}

func setupBankService(t *testing.T) *fixture {
	t.Helper()

	dir := t.TempDir()
	cipher := secret.NewCaesar(secret.DefaultCaesarShift)
	clk := clock.Fixed(time.Date(2024, time.March, 5, 15, 4, 5, 0, time.UTC))

	clients := bank.NewClientRepo(dir+"/Clients.txt", cipher, nil)
	led := ledger.New(dir+"/AllTransactions.txt", clk, nil)
	transfers := ledger.NewTransferLog(dir+"/Transactions.txt", clk, nil)

	return &fixture{
		service:   bank.NewService(clients, led, transfers, nil),
		clients:   clients,
		ledger:    led,
		transfers: transfers,
	}
}

func (f *fixture) addClient(t *testing.T, accountNumber string, balance float64) {
	t.Helper()

	client := f.clients.New(accountNumber)
	client.FirstName = "Test"
	client.LastName = "Client"
	client.PIN = "1234"

	if err := client.Save(context.Background()); err != nil {
		t.Fatal(err)
	}
	if balance > 0 {
		if err := client.Deposit(context.Background(), balance); err != nil {
			t.Fatal(err)
		}
	}
}

func (f *fixture) balance(t *testing.T, accountNumber string) float64 {
	t.Helper()

	client, err := f.clients.Find(context.Background(), accountNumber)
	if err != nil {
		t.Fatal(err)
	}
	if client.IsEmpty() {
		t.Fatalf("client %q not found", accountNumber)
	}
	return client.Balance
}
