package bank

import (
	"errors"
)

var ErrEmptyObject = errors.New("cannot save an empty object")
var ErrKeyExists = errors.New("primary key already exists")
var ErrInsufficientFunds = errors.New("insufficient funds")
var ErrInvalidAmount = errors.New("invalid transaction amount")
var ErrMalformedRecord = errors.New("malformed record line")
var ErrClientNotFound = errors.New("client not found")
var ErrTransferFromNotFound = errors.New("transfer source account not found")
var ErrTransferToNotFound = errors.New("transfer destination account not found")
