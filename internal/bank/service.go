package bank

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/alialsharqawi/bank-backoffice/internal/ledger"
)

// Service coordinates client balance mutations with ledger logging. The
// balance is always updated and saved first, the ledger entry written
// second; the two writes are not atomic, matching the historical behavior.
type Service interface {
	Deposit(ctx context.Context, request DepositRequest) (*DepositResponse, error)
	Withdraw(ctx context.Context, request WithdrawRequest) (*WithdrawResponse, error)
	Transfer(ctx context.Context, request TransferRequest) (*TransferResponse, error)
	AdminDeposit(ctx context.Context, request AdminDepositRequest) (*DepositResponse, error)
	AdminWithdraw(ctx context.Context, request AdminWithdrawRequest) (*WithdrawResponse, error)
	AdminTransfer(ctx context.Context, request AdminTransferRequest) (*TransferResponse, error)
	TotalBalances(ctx context.Context) (float64, error)
}

type service struct {
	logger    *slog.Logger
	clients   *ClientRepo
	ledger    *ledger.Ledger
	transfers *ledger.TransferLog
}

func NewService(clients *ClientRepo, led *ledger.Ledger, transfers *ledger.TransferLog, logger *slog.Logger) Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &service{
		logger:    logger,
		clients:   clients,
		ledger:    led,
		transfers: transfers,
	}
}

func (s *service) findClient(ctx context.Context, accountNumber string, missing error) (*Client, error) {
	client, err := s.clients.Find(ctx, accountNumber)
	if err != nil {
		return nil, err
	}
	if client.IsEmpty() {
		return nil, fmt.Errorf("%q: %w", accountNumber, missing)
	}
	return client, nil
}

func (s *service) Deposit(ctx context.Context, request DepositRequest) (*DepositResponse, error) {
	client, err := s.findClient(ctx, request.AccountNumber, ErrClientNotFound)
	if err != nil {
		return nil, err
	}

	balanceBefore := client.Balance
	if err := client.Deposit(ctx, request.Amount); err != nil {
		return nil, err
	}

	if err := s.ledger.LogDeposit(ctx, client.AccountNumber, request.Amount, client.Balance); err != nil {
		return nil, fmt.Errorf("deposit saved but ledger write failed: %w", err)
	}

	return &DepositResponse{BalanceBefore: balanceBefore, BalanceAfter: client.Balance}, nil
}

func (s *service) Withdraw(ctx context.Context, request WithdrawRequest) (*WithdrawResponse, error) {
	client, err := s.findClient(ctx, request.AccountNumber, ErrClientNotFound)
	if err != nil {
		return nil, err
	}

	balanceBefore := client.Balance
	if err := client.Withdraw(ctx, request.Amount); err != nil {
		return nil, err
	}

	if err := s.ledger.LogWithdraw(ctx, client.AccountNumber, request.Amount, client.Balance); err != nil {
		return nil, fmt.Errorf("withdrawal saved but ledger write failed: %w", err)
	}

	return &WithdrawResponse{BalanceBefore: balanceBefore, BalanceAfter: client.Balance}, nil
}

// transfer debits the source, credits the destination and returns both
// balances. Shared by the client and admin transfer paths.
func (s *service) transfer(ctx context.Context, request TransferRequest) (*TransferResponse, *Client, *Client, error) {
	from, err := s.findClient(ctx, request.FromAccount, ErrTransferFromNotFound)
	if err != nil {
		return nil, nil, nil, err
	}
	to, err := s.findClient(ctx, request.ToAccount, ErrTransferToNotFound)
	if err != nil {
		return nil, nil, nil, err
	}

	response := &TransferResponse{
		FromBalanceBefore: from.Balance,
		ToBalanceBefore:   to.Balance,
	}

	if err := from.Withdraw(ctx, request.Amount); err != nil {
		return nil, nil, nil, err
	}
	if err := to.Deposit(ctx, request.Amount); err != nil {
		return nil, nil, nil, err
	}

	response.FromBalanceAfter = from.Balance
	response.ToBalanceAfter = to.Balance
	return response, from, to, nil
}

func (s *service) Transfer(ctx context.Context, request TransferRequest) (*TransferResponse, error) {
	response, from, to, err := s.transfer(ctx, request)
	if err != nil {
		return nil, err
	}

	err = s.ledger.LogTransfer(ctx, from.AccountNumber, to.AccountNumber,
		request.Amount, from.Balance, to.Balance)
	if err != nil {
		return nil, fmt.Errorf("transfer saved but ledger write failed: %w", err)
	}

	return response, nil
}

func (s *service) AdminDeposit(ctx context.Context, request AdminDepositRequest) (*DepositResponse, error) {
	client, err := s.findClient(ctx, request.AccountNumber, ErrClientNotFound)
	if err != nil {
		return nil, err
	}

	balanceBefore := client.Balance
	if err := client.Deposit(ctx, request.Amount); err != nil {
		return nil, err
	}

	err = s.ledger.LogAdminDeposit(ctx, request.AdminUsername, client.AccountNumber, request.Amount, client.Balance)
	if err != nil {
		return nil, fmt.Errorf("deposit saved but ledger write failed: %w", err)
	}

	return &DepositResponse{BalanceBefore: balanceBefore, BalanceAfter: client.Balance}, nil
}

func (s *service) AdminWithdraw(ctx context.Context, request AdminWithdrawRequest) (*WithdrawResponse, error) {
	client, err := s.findClient(ctx, request.AccountNumber, ErrClientNotFound)
	if err != nil {
		return nil, err
	}

	balanceBefore := client.Balance
	if err := client.Withdraw(ctx, request.Amount); err != nil {
		return nil, err
	}

	err = s.ledger.LogAdminWithdraw(ctx, request.AdminUsername, client.AccountNumber, request.Amount, client.Balance)
	if err != nil {
		return nil, fmt.Errorf("withdrawal saved but ledger write failed: %w", err)
	}

	return &WithdrawResponse{BalanceBefore: balanceBefore, BalanceAfter: client.Balance}, nil
}

func (s *service) AdminTransfer(ctx context.Context, request AdminTransferRequest) (*TransferResponse, error) {
	response, from, to, err := s.transfer(ctx, request.TransferRequest)
	if err != nil {
		return nil, err
	}

	err = s.ledger.LogAdminTransfer(ctx, request.AdminUsername, from.AccountNumber, to.AccountNumber,
		request.Amount, from.Balance, to.Balance)
	if err != nil {
		return nil, fmt.Errorf("transfer saved but ledger write failed: %w", err)
	}

	// legacy transfer history keeps its own copy of admin transfers
	err = s.transfers.Append(ctx, request.AdminUsername, request.Amount,
		from.AccountNumber, from.Balance, to.AccountNumber, to.Balance)
	if err != nil {
		return nil, fmt.Errorf("transfer saved but history write failed: %w", err)
	}

	return response, nil
}

func (s *service) TotalBalances(ctx context.Context) (float64, error) {
	return s.clients.TotalBalances(ctx)
}
