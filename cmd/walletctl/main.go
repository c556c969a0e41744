package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/olekukonko/tablewriter"

	"github.com/kislikjeka/walletclient/internal/infra/gateway/walletapi"
	redisinfra "github.com/kislikjeka/walletclient/internal/infra/redis"
	"github.com/kislikjeka/walletclient/internal/ledger"
	"github.com/kislikjeka/walletclient/internal/session"
	apperrors "github.com/kislikjeka/walletclient/internal/shared/errors"
	"github.com/kislikjeka/walletclient/pkg/config"
	"github.com/kislikjeka/walletclient/pkg/logger"
	"github.com/kislikjeka/walletclient/pkg/money"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	cmd := os.Args[1]
	if cmd == "help" || cmd == "-h" || cmd == "--help" {
		printUsage()
		return
	}

	run, ok := commands[cmd]
	if !ok {
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", cmd)
		printUsage()
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Args[2:]); err != nil {
		fail(err)
	}
}

var commands = map[string]func(context.Context, []string) error{
	"register": runRegister,
	"balance":  runBalance,
	"load":     runLoad,
	"transfer": runTransfer,
	"history":  runHistory,
	"users":    runUsers,
}

func printUsage() {
	fmt.Println("Wallet CLI")
	fmt.Println("\nUsage:")
	fmt.Println("  walletctl <command> [options]")
	fmt.Println("\nCommands:")
	fmt.Println("  register   Create a new account")
	fmt.Println("  balance    Show the current balance")
	fmt.Println("  load       Add funds to the balance")
	fmt.Println("  transfer   Send money to another user")
	fmt.Println("  history    List transactions, newest first")
	fmt.Println("  users      List recipients")
	fmt.Println("  help       Show this help message")
	fmt.Println("\nCredentials come from -email/-password or WALLET_EMAIL/WALLET_PASSWORD.")
	fmt.Println("Run 'walletctl <command> -h' for more information on a command.")
}

// fail prints a user-facing message for err and exits
func fail(err error) {
	appErr := apperrors.Describe(err)
	fmt.Fprintf(os.Stderr, "Error: %s\n", appErr.Message)
	if appErr.Retryable {
		fmt.Fprintln(os.Stderr, "The request can be retried.")
	}
	os.Exit(1)
}

type credentials struct {
	email    *string
	password *string
}

func credentialFlags(fs *flag.FlagSet) credentials {
	return credentials{
		email:    fs.String("email", os.Getenv("WALLET_EMAIL"), "account email"),
		password: fs.String("password", os.Getenv("WALLET_PASSWORD"), "account password"),
	}
}

type app struct {
	cfg     *config.Config
	log     *logger.Logger
	manager *session.Manager
	closers []func() error
}

func newApp(ctx context.Context) (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, apperrors.Validation(err.Error())
	}

	log := logger.NewDefault(cfg.Env)
	client := walletapi.NewClient(cfg.APIURL, log,
		walletapi.WithTimeout(cfg.APITimeout),
		walletapi.WithRateLimit(cfg.APIRate, 1),
	)

	a := &app{cfg: cfg, log: log}

	var opts []session.ManagerOption
	if cfg.RedisEnabled() {
		rdb, err := redisinfra.Connect(ctx, cfg.RedisURL, cfg.RedisPassword)
		if err != nil {
			// the directory cache is optional
			log.Warn("Redis unavailable, directory cache disabled", "error", err)
		} else {
			a.closers = append(a.closers, rdb.Close)
			opts = append(opts, session.WithDirectory(redisinfra.NewDirectoryCache(rdb, cfg.DirectoryCacheTTL, log)))
		}
	}

	a.manager = session.NewManager(client, log, opts...)
	return a, nil
}

func (a *app) close() {
	a.manager.Logout()
	for _, c := range a.closers {
		if err := c(); err != nil {
			a.log.Debug("close failed", "error", err)
		}
	}
}

func (a *app) login(ctx context.Context, creds credentials) (*session.Session, error) {
	return a.manager.Login(ctx, *creds.email, *creds.password)
}

func runRegister(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("register", flag.ExitOnError)
	creds := credentialFlags(fs)
	_ = fs.Parse(args)

	a, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer a.close()

	u, err := a.manager.Register(ctx, *creds.email, *creds.password)
	if err != nil {
		return err
	}
	fmt.Printf("Registered %s (balance %s)\n", u.Email, money.Dollars(u.Balance))
	return nil
}

func runBalance(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("balance", flag.ExitOnError)
	creds := credentialFlags(fs)
	_ = fs.Parse(args)

	a, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer a.close()

	s, err := a.login(ctx, creds)
	if err != nil {
		return err
	}
	fmt.Printf("%s: %s\n", s.User().Email, money.Dollars(s.Balance()))
	return nil
}

func runLoad(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("load", flag.ExitOnError)
	creds := credentialFlags(fs)
	amountFlag := fs.String("amount", "", "amount to add, e.g. 25.50")
	_ = fs.Parse(args)

	amount, err := money.Parse(*amountFlag)
	if err != nil {
		return apperrors.Validation(err.Error())
	}

	a, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer a.close()

	s, err := a.login(ctx, creds)
	if err != nil {
		return err
	}
	balance, err := s.LoadBalance(ctx, amount)
	if err != nil {
		return err
	}
	fmt.Printf("Loaded %s, new balance %s\n", money.Dollars(amount), money.Dollars(balance))
	return nil
}

func runTransfer(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("transfer", flag.ExitOnError)
	creds := credentialFlags(fs)
	to := fs.String("to", "", "recipient email")
	amountFlag := fs.String("amount", "", "amount to send, e.g. 30")
	_ = fs.Parse(args)

	if *to == "" {
		return apperrors.Validation("-to is required")
	}
	amount, err := money.Parse(*amountFlag)
	if err != nil {
		return apperrors.Validation(err.Error())
	}

	a, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer a.close()

	s, err := a.login(ctx, creds)
	if err != nil {
		return err
	}
	recipient, err := s.FindRecipient(ctx, *to)
	if err != nil {
		return err
	}

	tx, err := s.Transfer(ctx, recipient, amount)
	if err != nil {
		return err
	}
	fmt.Printf("Sent %s to %s (transaction %s)\n", money.Dollars(tx.Amount), recipient.Email, tx.ID)
	fmt.Printf("Balance: %s\n", money.Dollars(s.Balance()))
	return nil
}

func runHistory(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("history", flag.ExitOnError)
	creds := credentialFlags(fs)
	_ = fs.Parse(args)

	a, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer a.close()

	s, err := a.login(ctx, creds)
	if err != nil {
		return err
	}
	if err := s.RefreshHistory(ctx); err != nil {
		return err
	}

	renderHistory(os.Stdout, s.Entries())
	return nil
}

func renderHistory(w io.Writer, entries []ledger.Entry) {
	if len(entries) == 0 {
		fmt.Fprintln(w, "No transactions yet.")
		return
	}

	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"Date", "Amount", "Counterparty", "Status"})
	for _, e := range entries {
		table.Append(entryRow(e))
	}
	table.Render()
}

func entryRow(e ledger.Entry) []string {
	return []string{
		e.Transaction.CreatedAt.Local().Format("2006-01-02 15:04"),
		e.Amount,
		e.Counterparty,
		string(e.Transaction.Status),
	}
}

func runUsers(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("users", flag.ExitOnError)
	creds := credentialFlags(fs)
	search := fs.String("search", "", "filter by email substring")
	_ = fs.Parse(args)

	a, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer a.close()

	s, err := a.login(ctx, creds)
	if err != nil {
		return err
	}
	users, err := s.Recipients(ctx, *search)
	if err != nil {
		return err
	}
	renderUsers(os.Stdout, users)
	return nil
}

func renderUsers(w io.Writer, users []ledger.User) {
	if len(users) == 0 {
		fmt.Fprintln(w, "No matching users.")
		return
	}

	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"ID", "Email"})
	for _, u := range users {
		table.Append([]string{u.ID, u.Email})
	}
	table.Render()
}
