package bank

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/alialsharqawi/bank-backoffice/internal/store"
)

const currencyFieldCount = 4

// Currency holds a country's exchange rate against the USD. Both the
// country and the currency code are unique among live records.
type Currency struct {
	Country string
	Code    string
	Name    string
	Rate    float64

	mode    Mode
	deleted bool
	repo    *CurrencyRepo
}

func (c *Currency) Key() string       { return c.Code }
func (c *Currency) Deleted() bool     { return c.deleted }
func (c *Currency) SetDeleted(d bool) { c.deleted = d }

func (c *Currency) IsEmpty() bool { return c.mode == ModeEmpty }
func (c *Currency) Mode() Mode    { return c.mode }

// Save appends a New currency after checking that neither its code nor its
// country is already taken; Existing currencies overwrite their stored
// line.
func (c *Currency) Save(ctx context.Context) error {
	switch c.mode {
	case ModeNew:
		taken, err := c.repo.codeOrCountryTaken(ctx, c.Code, c.Country)
		if err != nil {
			return err
		}
		if taken {
			return fmt.Errorf("currency %q/%q: %w", c.Code, c.Country, ErrKeyExists)
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

// UpdateRate mutates the rate and persists immediately.
func (c *Currency) UpdateRate(ctx context.Context, rate float64) error {
	if c.mode != ModeExisting {
		return ErrEmptyObject
	}
	c.Rate = rate
	return c.repo.file.Update(ctx, c)
}

// Delete tombstones the stored record and resets the receiver to the Empty
// sentinel.
func (c *Currency) Delete(ctx context.Context) error {
	if c.mode != ModeExisting {
		return ErrEmptyObject
	}
	if err := c.repo.file.Delete(ctx, c.Code); err != nil {
		return err
	}
	repo := c.repo
	*c = Currency{repo: repo}
	return nil
}

// ConvertTo converts an amount of this currency into the target currency
// through their USD rates.
func (c *Currency) ConvertTo(amount float64, to *Currency) float64 {
	return amount * (to.Rate / c.Rate)
}

// CurrencyRepo owns Currencies.txt.
type CurrencyRepo struct {
	file *store.File[*Currency]
}

func NewCurrencyRepo(path string, logger *slog.Logger) *CurrencyRepo {
	r := &CurrencyRepo{}
	r.file = store.NewFile(path, store.Codec[*Currency]{
		Marshal:   r.marshalLine,
		Unmarshal: r.unmarshalLine,
	}, logger)
	return r
}

func (r *CurrencyRepo) marshalLine(c *Currency) (string, error) {
	return store.JoinFields([]string{
		c.Country,
		c.Code,
		c.Name,
		strconv.FormatFloat(c.Rate, 'f', 6, 64),
	}, store.FieldSep), nil
}

func (r *CurrencyRepo) unmarshalLine(line string) (*Currency, error) {
	fields := store.SplitFields(line, store.FieldSep)
	if len(fields) != currencyFieldCount {
		return nil, fmt.Errorf("%w: want %d fields, got %d", ErrMalformedRecord, currencyFieldCount, len(fields))
	}
	rate, err := strconv.ParseFloat(fields[3], 64)
	if err != nil {
		return nil, fmt.Errorf("currency %q rate: %w", fields[1], err)
	}
	return &Currency{
		Country: fields[0],
		Code:    fields[1],
		Name:    fields[2],
		Rate:    rate,
		mode:    ModeExisting,
		repo:    r,
	}, nil
}

// Empty returns the sentinel returned by find misses.
func (r *CurrencyRepo) Empty() *Currency {
	return &Currency{repo: r}
}

// New returns a currency in New mode ready to be saved.
func (r *CurrencyRepo) New(country, code, name string, rate float64) *Currency {
	return &Currency{
		Country: country,
		Code:    code,
		Name:    name,
		Rate:    rate,
		mode:    ModeNew,
		repo:    r,
	}
}

// FindByCode looks a currency up by its code, case-insensitively. A miss
// returns the Empty sentinel, never an error.
func (r *CurrencyRepo) FindByCode(ctx context.Context, code string) (*Currency, error) {
	currency, ok, err := r.file.Find(ctx, func(c *Currency) bool {
		return strings.EqualFold(c.Code, code)
	})
	if err != nil {
		return nil, err
	}
	if !ok {
		return r.Empty(), nil
	}
	return currency, nil
}

// FindByCountry looks a currency up by country name, case-insensitively.
func (r *CurrencyRepo) FindByCountry(ctx context.Context, country string) (*Currency, error) {
	currency, ok, err := r.file.Find(ctx, func(c *Currency) bool {
		return strings.EqualFold(c.Country, country)
	})
	if err != nil {
		return nil, err
	}
	if !ok {
		return r.Empty(), nil
	}
	return currency, nil
}

func (r *CurrencyRepo) codeOrCountryTaken(ctx context.Context, code, country string) (bool, error) {
	_, ok, err := r.file.Find(ctx, func(c *Currency) bool {
		return strings.EqualFold(c.Code, code) || strings.EqualFold(c.Country, country)
	})
	if err != nil {
		return false, err
	}
	return ok, nil
}

// List returns every live currency, i.e. all USD rates.
func (r *CurrencyRepo) List(ctx context.Context) ([]*Currency, error) {
	return r.file.LoadAll(ctx)
}
