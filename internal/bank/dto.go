package bank

type DepositRequest struct {
	AccountNumber string
	Amount        float64
}

type DepositResponse struct {
	BalanceBefore float64
	BalanceAfter  float64
}

type WithdrawRequest struct {
	AccountNumber string
	Amount        float64
}

type WithdrawResponse struct {
	BalanceBefore float64
	BalanceAfter  float64
}

type TransferRequest struct {
	FromAccount string
	ToAccount   string
	Amount      float64
}

type TransferResponse struct {
	FromBalanceBefore float64
	FromBalanceAfter  float64
	ToBalanceBefore   float64
	ToBalanceAfter    float64
}

// AdminRequest wraps a client operation performed by an admin on the
// client's behalf; the admin username becomes the acting principal in the
// ledger.
type AdminRequest struct {
	AdminUsername string
}

type AdminDepositRequest struct {
	AdminRequest
	DepositRequest
}

type AdminWithdrawRequest struct {
	AdminRequest
	WithdrawRequest
}

type AdminTransferRequest struct {
	AdminRequest
	TransferRequest
}
