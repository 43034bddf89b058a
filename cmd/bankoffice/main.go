package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"time"

	"github.com/alialsharqawi/bank-backoffice/internal/bank"
	"github.com/alialsharqawi/bank-backoffice/internal/clock"
	"github.com/alialsharqawi/bank-backoffice/internal/export"
	"github.com/alialsharqawi/bank-backoffice/internal/ledger"
	"github.com/alialsharqawi/bank-backoffice/internal/secret"
	"github.com/alialsharqawi/bank-backoffice/internal/session"
)

// bankoffice runs one back-office operation per invocation, for example:
//
//	bankoffice add-client -first F -last L -email E -phone P -pin 1234
//	bankoffice deposit -account C100 -amount 500
//	bankoffice transfer -from C100 -to C200 -amount 50
//	bankoffice admin-login -username u -password p
//	bankoffice export-transactions -xlsx
func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
			// convert all int64 to string, so it does not break some log visualization tools built with JavaScript
			if a.Value.Kind() == slog.KindInt64 {
				return slog.String(a.Key, strconv.FormatInt(a.Value.Int64(), 10))
			}
			return a
		},
	})).With("app", "bankoffice")

	if len(os.Args) < 2 {
		logger.Error("no command given")
		os.Exit(1)
	}

	appConfig, err := bank.LoadConfig()

	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	cipher, err := secret.FromConfig(appConfig.CipherScheme, appConfig.CipherShift, appConfig.CipherPassphrase)

	if err != nil {
		logger.Error("failed to build cipher", "error", err)
		os.Exit(1)
	}

	idProvider, err := bank.NewIDProvider(appConfig.NodeID)

	if err != nil {
		logger.Error("failed to build id provider", "error", err)
		os.Exit(1)
	}

	clk := clock.System()

	a := &app{
		admins:     bank.NewAdminRepo(appConfig.AdminsFile, cipher, logger),
		clients:    bank.NewClientRepo(appConfig.ClientsFile, cipher, logger),
		currencies: bank.NewCurrencyRepo(appConfig.CurrenciesFile, logger),
		ledger:     ledger.New(appConfig.LedgerFile, clk, logger),
		adminLog:   session.NewAdminLog(appConfig.AdminSessionLog, clk, logger),
		clientLog:  session.NewClientLog(appConfig.ClientSessionLog, clk, logger),
		exporter:   export.New(appConfig.ExportDir, clk, logger),
		idProvider: idProvider,
	}
	a.service = bank.NewService(a.clients, a.ledger, ledger.NewTransferLog(appConfig.TransferLogFile, clk, logger), logger)

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	command := os.Args[1]

	if err := a.run(ctx, command, os.Args[2:]); err != nil {
		logger.Error("command failed", "command", command, "error", err)
		os.Exit(1)
	}
}

type app struct {
	admins     *bank.AdminRepo
	clients    *bank.ClientRepo
	currencies *bank.CurrencyRepo
	ledger     *ledger.Ledger
	adminLog   *session.Log
	clientLog  *session.Log
	exporter   *export.Exporter
	service    bank.Service
	idProvider bank.IDProvider
}

func (a *app) run(ctx context.Context, command string, args []string) error {
	switch command {
	case "list-clients":
		list, err := a.clients.List(ctx)
		if err != nil {
			return err
		}
		for _, c := range list {
			fmt.Printf("%s\t%s\t%.2f\n", c.AccountNumber, c.FullName(), c.Balance)
		}
		return nil

	case "total-balances":
		total, err := a.service.TotalBalances(ctx)
		if err != nil {
			return err
		}
		fmt.Printf("%.2f\n", total)
		return nil

	case "add-client":
		fs := flag.NewFlagSet(command, flag.ExitOnError)
		first := fs.String("first", "", "first name")
		last := fs.String("last", "", "last name")
		email := fs.String("email", "", "email")
		phone := fs.String("phone", "", "phone")
		pin := fs.String("pin", "", "pin code")
		account := fs.String("account", "", "account number (minted when empty)")
		fs.Parse(args)

		number := *account
		if number == "" {
			number = a.idProvider.NextAccountNumber()
		}
		client := a.clients.New(number)
		client.FirstName = *first
		client.LastName = *last
		client.Email = *email
		client.Phone = *phone
		client.PIN = *pin
		if err := client.Save(ctx); err != nil {
			return err
		}
		fmt.Println(number)
		return nil

	case "delete-client":
		fs := flag.NewFlagSet(command, flag.ExitOnError)
		account := fs.String("account", "", "account number")
		fs.Parse(args)

		client, err := a.clients.Find(ctx, *account)
		if err != nil {
			return err
		}
		if client.IsEmpty() {
			return bank.ErrClientNotFound
		}
		return client.Delete(ctx)

	case "deposit":
		fs := flag.NewFlagSet(command, flag.ExitOnError)
		account := fs.String("account", "", "account number")
		amount := fs.Float64("amount", 0, "amount")
		fs.Parse(args)

		response, err := a.service.Deposit(ctx, bank.DepositRequest{AccountNumber: *account, Amount: *amount})
		if err != nil {
			return err
		}
		fmt.Printf("%.2f -> %.2f\n", response.BalanceBefore, response.BalanceAfter)
		return nil

	case "withdraw":
		fs := flag.NewFlagSet(command, flag.ExitOnError)
		account := fs.String("account", "", "account number")
		amount := fs.Float64("amount", 0, "amount")
		fs.Parse(args)

		response, err := a.service.Withdraw(ctx, bank.WithdrawRequest{AccountNumber: *account, Amount: *amount})
		if err != nil {
			return err
		}
		fmt.Printf("%.2f -> %.2f\n", response.BalanceBefore, response.BalanceAfter)
		return nil

	case "transfer":
		fs := flag.NewFlagSet(command, flag.ExitOnError)
		from := fs.String("from", "", "source account")
		to := fs.String("to", "", "destination account")
		amount := fs.Float64("amount", 0, "amount")
		fs.Parse(args)

		response, err := a.service.Transfer(ctx, bank.TransferRequest{FromAccount: *from, ToAccount: *to, Amount: *amount})
		if err != nil {
			return err
		}
		fmt.Printf("from %.2f -> %.2f, to %.2f -> %.2f\n",
			response.FromBalanceBefore, response.FromBalanceAfter,
			response.ToBalanceBefore, response.ToBalanceAfter)
		return nil

	case "admin-deposit", "admin-withdraw":
		fs := flag.NewFlagSet(command, flag.ExitOnError)
		username := fs.String("username", "", "admin username")
		account := fs.String("account", "", "account number")
		amount := fs.Float64("amount", 0, "amount")
		fs.Parse(args)

		admin, err := a.authorize(ctx, *username, bank.PermTransactions)
		if err != nil {
			return err
		}
		var before, after float64
		if command == "admin-deposit" {
			response, err := a.service.AdminDeposit(ctx, bank.AdminDepositRequest{
				AdminRequest:   bank.AdminRequest{AdminUsername: admin.Username},
				DepositRequest: bank.DepositRequest{AccountNumber: *account, Amount: *amount},
			})
			if err != nil {
				return err
			}
			before, after = response.BalanceBefore, response.BalanceAfter
		} else {
			response, err := a.service.AdminWithdraw(ctx, bank.AdminWithdrawRequest{
				AdminRequest:    bank.AdminRequest{AdminUsername: admin.Username},
				WithdrawRequest: bank.WithdrawRequest{AccountNumber: *account, Amount: *amount},
			})
			if err != nil {
				return err
			}
			before, after = response.BalanceBefore, response.BalanceAfter
		}
		fmt.Printf("%.2f -> %.2f\n", before, after)
		return nil

	case "admin-transfer":
		fs := flag.NewFlagSet(command, flag.ExitOnError)
		username := fs.String("username", "", "admin username")
		from := fs.String("from", "", "source account")
		to := fs.String("to", "", "destination account")
		amount := fs.Float64("amount", 0, "amount")
		fs.Parse(args)

		admin, err := a.authorize(ctx, *username, bank.PermTransactions)
		if err != nil {
			return err
		}
		response, err := a.service.AdminTransfer(ctx, bank.AdminTransferRequest{
			AdminRequest:    bank.AdminRequest{AdminUsername: admin.Username},
			TransferRequest: bank.TransferRequest{FromAccount: *from, ToAccount: *to, Amount: *amount},
		})
		if err != nil {
			return err
		}
		fmt.Printf("from %.2f -> %.2f, to %.2f -> %.2f\n",
			response.FromBalanceBefore, response.FromBalanceAfter,
			response.ToBalanceBefore, response.ToBalanceAfter)
		return nil

	case "add-admin":
		fs := flag.NewFlagSet(command, flag.ExitOnError)
		username := fs.String("username", "", "username")
		password := fs.String("password", "", "password")
		first := fs.String("first", "", "first name")
		last := fs.String("last", "", "last name")
		email := fs.String("email", "", "email")
		phone := fs.String("phone", "", "phone")
		perms := fs.Int("permissions", int(bank.PermAll), "permission mask, -1 for full access")
		fs.Parse(args)

		admin := a.admins.New(*username)
		admin.Password = *password
		admin.FirstName = *first
		admin.LastName = *last
		admin.Email = *email
		admin.Phone = *phone
		admin.Permissions = bank.Permission(*perms)
		if err := admin.Save(ctx); err != nil {
			return err
		}
		fmt.Println(admin.Username)
		return nil

	case "list-admins":
		list, err := a.admins.List(ctx)
		if err != nil {
			return err
		}
		for _, ad := range list {
			fmt.Printf("%s\t%s\t%d\n", ad.Username, ad.FullName(), ad.Permissions)
		}
		return nil

	case "admin-login", "admin-logout":
		fs := flag.NewFlagSet(command, flag.ExitOnError)
		username := fs.String("username", "", "username")
		password := fs.String("password", "", "password")
		fs.Parse(args)

		admin, err := a.admins.FindWithPassword(ctx, *username, *password)
		if err != nil {
			return err
		}
		if admin.IsEmpty() {
			return fmt.Errorf("invalid credentials for admin %q", *username)
		}
		action := session.ActionLogin
		if command == "admin-logout" {
			action = session.ActionLogout
		}
		return a.adminLog.Register(ctx, session.Principal{
			ID:          admin.Username,
			DisplayName: admin.FullName(),
			Permissions: int(admin.Permissions),
		}, action)

	case "client-login", "client-logout":
		fs := flag.NewFlagSet(command, flag.ExitOnError)
		account := fs.String("account", "", "account number")
		pin := fs.String("pin", "", "pin code")
		fs.Parse(args)

		client, err := a.clients.FindWithPIN(ctx, *account, *pin)
		if err != nil {
			return err
		}
		if client.IsEmpty() {
			return fmt.Errorf("invalid credentials for account %q", *account)
		}
		action := session.ActionLogin
		if command == "client-logout" {
			action = session.ActionLogout
		}
		return a.clientLog.Register(ctx, session.Principal{
			ID:          client.AccountNumber,
			DisplayName: client.FullName(),
		}, action)

	case "sessions":
		fs := flag.NewFlagSet(command, flag.ExitOnError)
		clientLog := fs.Bool("clients", false, "show client sessions instead of admin sessions")
		fs.Parse(args)

		log := a.adminLog
		if *clientLog {
			log = a.clientLog
		}
		entries, err := log.Entries(ctx)
		if err != nil {
			return err
		}
		for _, e := range entries {
			fmt.Printf("%s %s\t%s\t%s\t%s\n", e.Date, e.Time, e.PrincipalID, e.Action, e.Duration)
		}
		return nil

	case "add-currency":
		fs := flag.NewFlagSet(command, flag.ExitOnError)
		country := fs.String("country", "", "country")
		code := fs.String("code", "", "currency code")
		name := fs.String("name", "", "currency name")
		rate := fs.Float64("rate", 0, "rate against the base currency")
		fs.Parse(args)

		currency := a.currencies.New(*country, *code, *name, *rate)
		return currency.Save(ctx)

	case "list-currencies":
		list, err := a.currencies.List(ctx)
		if err != nil {
			return err
		}
		for _, c := range list {
			fmt.Printf("%s\t%s\t%s\t%.4f\n", c.Code, c.Country, c.Name, c.Rate)
		}
		return nil

	case "convert":
		fs := flag.NewFlagSet(command, flag.ExitOnError)
		from := fs.String("from", "", "source currency code")
		to := fs.String("to", "", "destination currency code")
		amount := fs.Float64("amount", 0, "amount")
		fs.Parse(args)

		fromCurrency, err := a.currencies.FindByCode(ctx, *from)
		if err != nil {
			return err
		}
		toCurrency, err := a.currencies.FindByCode(ctx, *to)
		if err != nil {
			return err
		}
		if fromCurrency.IsEmpty() || toCurrency.IsEmpty() {
			return bank.ErrEmptyObject
		}
		fmt.Printf("%.4f\n", fromCurrency.ConvertTo(*amount, toCurrency))
		return nil

	case "transactions":
		fs := flag.NewFlagSet(command, flag.ExitOnError)
		account := fs.String("account", "", "only transactions touching this account")
		fs.Parse(args)

		var records []ledger.Record
		var err error
		if *account == "" {
			records, err = a.ledger.All(ctx)
		} else {
			records, err = a.ledger.ForAccount(ctx, *account)
		}
		if err != nil {
			return err
		}
		for _, r := range records {
			fmt.Println(formatLedgerRow(r))
		}
		return nil

	case "export-clients":
		fs := flag.NewFlagSet(command, flag.ExitOnError)
		xlsx := fs.Bool("xlsx", false, "write xlsx instead of csv")
		fs.Parse(args)

		list, err := a.clients.List(ctx)
		if err != nil {
			return err
		}
		var path string
		if *xlsx {
			path, err = a.exporter.ClientsXLSX(list)
		} else {
			path, err = a.exporter.ClientsCSV(list)
		}
		if err != nil {
			return err
		}
		fmt.Println(path)
		return nil

	case "export-sessions":
		fs := flag.NewFlagSet(command, flag.ExitOnError)
		clientLog := fs.Bool("clients", false, "export client sessions instead of admin sessions")
		xlsx := fs.Bool("xlsx", false, "write xlsx instead of csv")
		fs.Parse(args)

		log := a.adminLog
		if *clientLog {
			log = a.clientLog
		}
		entries, err := log.Entries(ctx)
		if err != nil {
			return err
		}
		var path string
		if *xlsx {
			path, err = a.exporter.SessionsXLSX(entries)
		} else {
			path, err = a.exporter.SessionsCSV(entries)
		}
		if err != nil {
			return err
		}
		fmt.Println(path)
		return nil

	case "export-transactions":
		fs := flag.NewFlagSet(command, flag.ExitOnError)
		xlsx := fs.Bool("xlsx", false, "write xlsx instead of csv")
		fs.Parse(args)

		records, err := a.ledger.All(ctx)
		if err != nil {
			return err
		}
		var path string
		if *xlsx {
			path, err = a.exporter.LedgerXLSX(records)
		} else {
			path, err = a.exporter.LedgerCSV(records)
		}
		if err != nil {
			return err
		}
		fmt.Println(path)
		return nil

	default:
		return fmt.Errorf("unknown command %q", command)
	}
}

func formatLedgerRow(r ledger.Record) string {
	return fmt.Sprintf("%s %s\t%s\t%s\t%.2f\t%s -> %s\t%.2f",
		r.Date, r.Time, r.Principal, r.Op, r.Amount, r.From, r.To, r.BalanceAfter)
}

func (a *app) authorize(ctx context.Context, username string, required bank.Permission) (*bank.Admin, error) {
	admin, err := a.admins.Find(ctx, username)
	if err != nil {
		return nil, err
	}
	if admin.IsEmpty() {
		return nil, fmt.Errorf("unknown admin %q", username)
	}
	if !admin.CheckAccess(required) {
		return nil, fmt.Errorf("admin %q lacks permission %d", username, required)
	}
	return admin, nil
}
