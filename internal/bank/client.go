package bank

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/alialsharqawi/bank-backoffice/internal/secret"
	"github.com/alialsharqawi/bank-backoffice/internal/store"
)

const clientFieldCount = 7

// Client is a bank account holder identified by a unique account number.
// The PIN is encrypted at rest.
type Client struct {
	Person
	AccountNumber string
	PIN           string
	Balance       float64

	mode    Mode
	deleted bool
	repo    *ClientRepo
}

func (c *Client) Key() string       { return c.AccountNumber }
func (c *Client) Deleted() bool     { return c.deleted }
func (c *Client) SetDeleted(d bool) { c.deleted = d }

func (c *Client) IsEmpty() bool { return c.mode == ModeEmpty }
func (c *Client) Mode() Mode    { return c.mode }

// Save persists the client according to its lifecycle mode; see Admin.Save
// for the mode contract.
func (c *Client) Save(ctx context.Context) error {
	switch c.mode {
	case ModeNew:
		exists, err := c.repo.Exists(ctx, c.AccountNumber)
		if err != nil {
			return err
		}
		if exists {
			return fmt.Errorf("client %q: %w", c.AccountNumber, ErrKeyExists)
		}
		if err := c.repo.file.AppendOne(ctx, c); err != nil {
			return err
		}
		c.mode = ModeExisting
		return nil
	case ModeExisting:
		return c.repo.file.Update(ctx, c)
	default:
		return ErrEmptyObject
	}
}

// Delete tombstones the stored record and resets the receiver to the Empty
// sentinel, freeing the account number for reuse.
func (c *Client) Delete(ctx context.Context) error {
	if c.mode != ModeExisting {
		return ErrEmptyObject
	}
	if err := c.repo.file.Delete(ctx, c.AccountNumber); err != nil {
		return err
	}
	repo := c.repo
	*c = Client{repo: repo}
	return nil
}

// Deposit credits the balance and saves immediately.
func (c *Client) Deposit(ctx context.Context, amount float64) error {
	if amount <= 0 {
		return ErrInvalidAmount
	}
	c.Balance += amount
	return c.Save(ctx)
}

// Withdraw debits the balance and saves immediately. The balance can never
// go negative: an amount above the current balance is refused and leaves
// both the object and the file untouched.
func (c *Client) Withdraw(ctx context.Context, amount float64) error {
	if amount <= 0 {
		return ErrInvalidAmount
	}
	if amount > c.Balance {
		return ErrInsufficientFunds
	}
	c.Balance -= amount
	return c.Save(ctx)
}

// ClientRepo owns Clients.txt.
type ClientRepo struct {
	file   *store.File[*Client]
	cipher secret.Cipher
}

func NewClientRepo(path string, cipher secret.Cipher, logger *slog.Logger) *ClientRepo {
	r := &ClientRepo{cipher: cipher}
	r.file = store.NewFile(path, store.Codec[*Client]{
		Marshal:   r.marshalLine,
		Unmarshal: r.unmarshalLine,
	}, logger)
	return r
}

func (r *ClientRepo) marshalLine(c *Client) (string, error) {
	return store.JoinFields([]string{
		c.FirstName,
		c.LastName,
		c.Email,
		c.Phone,
		c.AccountNumber,
		r.cipher.Encrypt(c.PIN),
		// six decimal places, the precision the legacy files carry
		strconv.FormatFloat(c.Balance, 'f', 6, 64),
	}, store.FieldSep), nil
}

func (r *ClientRepo) unmarshalLine(line string) (*Client, error) {
	fields := store.SplitFields(line, store.FieldSep)
	if len(fields) != clientFieldCount {
		return nil, fmt.Errorf("%w: want %d fields, got %d", ErrMalformedRecord, clientFieldCount, len(fields))
	}
	pin, err := r.cipher.Decrypt(fields[5])
	if err != nil {
		return nil, fmt.Errorf("client %q pin: %w", fields[4], err)
	}
	balance, err := strconv.ParseFloat(fields[6], 64)
	if err != nil {
		return nil, fmt.Errorf("client %q balance: %w", fields[4], err)
	}
	return &Client{
		Person: Person{
			FirstName: fields[0],
			LastName:  fields[1],
			Email:     fields[2],
			Phone:     fields[3],
		},
		AccountNumber: fields[4],
		PIN:           pin,
		Balance:       balance,
		mode:          ModeExisting,
		repo:          r,
	}, nil
}

// Empty returns the sentinel returned by find misses.
func (r *ClientRepo) Empty() *Client {
	return &Client{repo: r}
}

// New returns a client in New mode with the chosen account number, zero
// balance and every other field blank.
func (r *ClientRepo) New(accountNumber string) *Client {
	return &Client{AccountNumber: accountNumber, mode: ModeNew, repo: r}
}

// Find looks a client up by account number. A miss returns the Empty
// sentinel, never an error.
func (r *ClientRepo) Find(ctx context.Context, accountNumber string) (*Client, error) {
	client, ok, err := r.file.Find(ctx, func(c *Client) bool {
		return c.AccountNumber == accountNumber
	})
	if err != nil {
		return nil, err
	}
	if !ok {
		return r.Empty(), nil
	}
	return client, nil
}

// FindWithPIN is the ATM login lookup: both account number and PIN must
// match.
func (r *ClientRepo) FindWithPIN(ctx context.Context, accountNumber, pin string) (*Client, error) {
	client, ok, err := r.file.Find(ctx, func(c *Client) bool {
		return c.AccountNumber == accountNumber && c.PIN == pin
	})
	if err != nil {
		return nil, err
	}
	if !ok {
		return r.Empty(), nil
	}
	return client, nil
}

func (r *ClientRepo) Exists(ctx context.Context, accountNumber string) (bool, error) {
	client, err := r.Find(ctx, accountNumber)
	if err != nil {
		return false, err
	}
	return !client.IsEmpty(), nil
}

func (r *ClientRepo) List(ctx context.Context) ([]*Client, error) {
	return r.file.LoadAll(ctx)
}

// TotalBalances sums every client balance in the store.
func (r *ClientRepo) TotalBalances(ctx context.Context) (float64, error) {
	clients, err := r.List(ctx)
	if err != nil {
		return 0, err
	}
	var total float64
	for _, c := range clients {
		total += c.Balance
	}
	return total, nil
}
