package bank_test

import (
	"context"
	"errors"
	"math"
	"path/filepath"
	"testing"

	"github.com/alialsharqawi/bank-backoffice/internal/bank"
)

func setupCurrencyRepo(t *testing.T) *bank.CurrencyRepo {
	t.Helper()
	return bank.NewCurrencyRepo(filepath.Join(t.TempDir(), "Currencies.txt"), nil)
}

func TestCurrencyLifecycle(t *testing.T) {
	testCases := []struct {
		name     string
		testFunc func(t *testing.T, repo *bank.CurrencyRepo)
	}{
		{
			name: "save new currency then find it by code and country",
			testFunc: func(t *testing.T, repo *bank.CurrencyRepo) {
				if err := repo.New("Japan", "JPY", "Japanese Yen", 147.5).Save(context.Background()); err != nil {
					t.Fatal(err)
				}

				byCode, err := repo.FindByCode(context.Background(), "jpy")
				if err != nil {
					t.Fatal(err)
				}
				if byCode.IsEmpty() || byCode.Country != "Japan" {
					t.Fatalf("code lookup failed: %+v", byCode)
				}

				byCountry, err := repo.FindByCountry(context.Background(), "JAPAN")
				if err != nil {
					t.Fatal(err)
				}
				if byCountry.IsEmpty() || byCountry.Code != "JPY" {
					t.Fatalf("country lookup failed: %+v", byCountry)
				}
			},
		},
		{
			name: "save refuses a taken code regardless of case",
			testFunc: func(t *testing.T, repo *bank.CurrencyRepo) {
				if err := repo.New("Japan", "JPY", "Japanese Yen", 147.5).Save(context.Background()); err != nil {
					t.Fatal(err)
				}

				err := repo.New("Nowhere", "jpy", "Fake Yen", 1).Save(context.Background())
				if !errors.Is(err, bank.ErrKeyExists) {
					t.Fatalf("expected ErrKeyExists, got %v", err)
				}
			},
		},
		{
			name: "save refuses a taken country",
			testFunc: func(t *testing.T, repo *bank.CurrencyRepo) {
				if err := repo.New("Japan", "JPY", "Japanese Yen", 147.5).Save(context.Background()); err != nil {
					t.Fatal(err)
				}

				err := repo.New("japan", "JPX", "Other Yen", 1).Save(context.Background())
				if !errors.Is(err, bank.ErrKeyExists) {
					t.Fatalf("expected ErrKeyExists, got %v", err)
				}
			},
		},
		{
			name: "update rate persists immediately",
			testFunc: func(t *testing.T, repo *bank.CurrencyRepo) {
				currency := repo.New("Japan", "JPY", "Japanese Yen", 147.5)

				if err := currency.Save(context.Background()); err != nil {
					t.Fatal(err)
				}
				if err := currency.UpdateRate(context.Background(), 150.25); err != nil {
					t.Fatal(err)
				}

				found, err := repo.FindByCode(context.Background(), "JPY")
				if err != nil {
					t.Fatal(err)
				}
				if found.Rate != 150.25 {
					t.Fatalf("expected rate 150.25, got %f", found.Rate)
				}
			},
		},
		{
			name: "delete frees both code and country",
			testFunc: func(t *testing.T, repo *bank.CurrencyRepo) {
				currency := repo.New("Japan", "JPY", "Japanese Yen", 147.5)

				if err := currency.Save(context.Background()); err != nil {
					t.Fatal(err)
				}
				if err := currency.Delete(context.Background()); err != nil {
					t.Fatal(err)
				}
				if !currency.IsEmpty() {
					t.Fatal("expected the object to reset to the empty sentinel")
				}

				if err := repo.New("Japan", "JPY", "Japanese Yen", 147.5).Save(context.Background()); err != nil {
					t.Fatal(err)
				}
			},
		},
		{
			name: "update rate on the empty sentinel is rejected",
			testFunc: func(t *testing.T, repo *bank.CurrencyRepo) {
				err := repo.Empty().UpdateRate(context.Background(), 1)
				if !errors.Is(err, bank.ErrEmptyObject) {
					t.Fatalf("expected ErrEmptyObject, got %v", err)
				}
			},
		},
	}

	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			testCase.testFunc(t, setupCurrencyRepo(t))
		})
	}
}

func TestCurrencyConvert(t *testing.T) {
	eur := &bank.Currency{Code: "EUR", Rate: 0.9}
	jpy := &bank.Currency{Code: "JPY", Rate: 147.5}

	// 100 EUR through the USD rates
	got := eur.ConvertTo(100, jpy)
	expected := 100 * (147.5 / 0.9)

	if math.Abs(got-expected) > 1e-9 {
		t.Fatalf("expected %f, got %f", expected, got)
	}

	// converting into the same rate is identity
	if got := eur.ConvertTo(42, eur); math.Abs(got-42) > 1e-9 {
		t.Fatalf("expected 42, got %f", got)
	}
}
