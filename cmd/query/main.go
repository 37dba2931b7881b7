// Command query is a command-line client for the secure trade query
// service. It talks to the executor backend directly using the same
// policies as the HTTP server.
//
// Usage:
//
//	query -config config/config.yaml totals <date_from> <date_to>
//	query -config config/config.yaml transactions <market|client> <date_from> <date_to> [flags]
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"sort"
	"strings"
	"time"

	"TradeGate/internal/di"
	"TradeGate/internal/domain/models"
	"TradeGate/internal/policy"
	"TradeGate/internal/usecase"
	"TradeGate/pkg/config"
)

func main() {
	configPath := flag.String("config", "config/config.yaml", "config file path")
	flag.Parse()

	args := flag.Args()
	if len(args) < 1 {
		usage()
		os.Exit(1)
	}

	cfg, err := config.LoadWithEnv(*configPath)
	if err != nil {
		fatal("config load failed: %v", err)
	}

	svc, err := buildService(cfg)
	if err != nil {
		fatal("init failed: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	switch args[0] {
	case "totals":
		runTotals(ctx, svc, args[1:])
	case "transactions":
		runTransactions(ctx, svc, args[1:])
	default:
		usage()
		os.Exit(1)
	}
}

func buildService(cfg *config.Config) (*usecase.SecureQueryService, error) {
	logger, err := di.ProvideLogger(cfg)
	if err != nil {
		return nil, err
	}
	chClient, err := di.ProvideClickHouseClient(cfg)
	if err != nil {
		return nil, err
	}
	exec, err := di.ProvideQueryExecutor(cfg, chClient)
	if err != nil {
		return nil, err
	}
	id := di.ProvideIdentityProvider(cfg)

	return usecase.NewSecureQueryService(exec, id,
		usecase.WithLagPolicy(policy.NewLagPolicy(cfg.Controls.LagDays)),
		usecase.WithThresholdGuard(policy.NewThresholdGuard(cfg.Controls.MinContributors)),
		usecase.WithTable(cfg.Executor.Table),
		usecase.WithLogger(logger),
	), nil
}

func runTotals(ctx context.Context, svc *usecase.SecureQueryService, args []string) {
	if len(args) != 2 {
		fmt.Fprintln(os.Stderr, "usage: query totals <date_from> <date_to>")
		os.Exit(1)
	}
	dateFrom, dateTo := args[0], args[1]

	fmt.Printf("Querying market totals from %s to %s (lag applied automatically)\n\n", dateFrom, dateTo)

	res, err := svc.AggregateTotals(ctx, dateFrom, dateTo)
	if err != nil {
		fatal("totals query failed: %v", err)
	}

	if res.Insufficient != nil {
		fmt.Printf("Error: %s\n", res.Insufficient.Error)
		fmt.Printf("Contributors: %d (minimum required: %d)\n",
			res.Insufficient.ContributorCount, res.Insufficient.MinimumRequired)
		os.Exit(1)
	}

	t := res.Totals
	fmt.Printf("Market Totals (%d-day lag):\n", t.LagAppliedDays)
	fmt.Printf("  Period: %s to %s\n\n", t.PeriodStart, t.PeriodEnd)
	fmt.Printf("  Total Volume: EUR %.2fM\n", t.TotalVolumeEUR)
	fmt.Printf("  Buy Volume:   EUR %.2fM (%.1f%%)\n", t.BuyVolumeEUR, t.BuyPct)
	fmt.Printf("  Sell Volume:  EUR %.2fM (%.1f%%)\n\n", t.SellVolumeEUR, t.SellPct)
	fmt.Printf("  Total Trades: %d\n", t.TotalTrades)
	fmt.Printf("  Buy Trades:   %d\n", t.BuyTrades)
	fmt.Printf("  Sell Trades:  %d\n\n", t.SellTrades)
	fmt.Printf("  Contributors: %d\n", t.ContributorCount)
}

func runTransactions(ctx context.Context, svc *usecase.SecureQueryService, args []string) {
	fs := flag.NewFlagSet("transactions", flag.ExitOnError)
	limit := fs.Int("limit", 10, "max records to return")
	offset := fs.Int("offset", 0, "records to skip")
	groupBy := fs.String("group-by", "", "group results by field or time period")

	filterFlags := map[string]*string{}
	for _, name := range []string{
		"isin", "ticker", "side", "dealer", "sector", "region",
		"currency", "seniority", "credit-grade", "bond-category",
	} {
		filterFlags[name] = fs.String(name, "", "filter by "+strings.ReplaceAll(name, "-", " "))
	}

	if len(args) < 3 {
		fmt.Fprintln(os.Stderr, "usage: query transactions <market|client> <date_from> <date_to> [flags]")
		os.Exit(1)
	}
	qctx, dateFrom, dateTo := args[0], args[1], args[2]
	if err := fs.Parse(args[3:]); err != nil {
		os.Exit(1)
	}

	filters := policy.FilterSpec{}
	for name, v := range filterFlags {
		if *v != "" {
			filters[strings.ReplaceAll(name, "-", "_")] = *v
		}
	}

	fmt.Printf("TRANSACTION HISTORY - %s CONTEXT\n", strings.ToUpper(qctx))
	fmt.Printf("Date Range: %s to %s\n", dateFrom, dateTo)
	if len(filters) > 0 {
		fmt.Printf("Filters: %v\n", filters)
	}
	if *groupBy != "" {
		fmt.Printf("Grouped by: %s\n", *groupBy)
	}
	fmt.Println()

	res, err := svc.QueryRecords(ctx, usecase.QueryParams{
		DateFrom: dateFrom,
		DateTo:   dateTo,
		Context:  qctx,
		Filters:  filters,
		Limit:    *limit,
		Offset:   *offset,
		GroupBy:  *groupBy,
	})
	if err != nil {
		fatal("transactions query failed: %v", err)
	}

	if res.Grouped != nil {
		printGrouped(res.Grouped)
		return
	}
	printList(res.List, *offset)
}

func printList(list *models.TransactionList, offset int) {
	fmt.Printf("Actual Period: %s to %s\n", list.PeriodStart, list.PeriodEnd)
	if list.LagAppliedDays > 0 {
		fmt.Printf("Lag Applied: %d days\n", list.LagAppliedDays)
	}
	fmt.Printf("Total Matching Trades: %d\n", list.Pagination.Total)
	fmt.Printf("Showing: %d trades\n\n%s\n\n", len(list.Data), list.Note)

	if len(list.Data) == 0 {
		fmt.Println("No transactions found for this query.")
		return
	}

	for i, trade := range list.Data {
		fmt.Printf("%d. %s %s  %s %s (%s)\n",
			offset+i+1,
			trade.String("trade_date"), trade.String("trade_time"),
			trade.String("side"), trade.String("ticker"), trade.String("isin"))
		if size := trade.String("size_display"); size != "" {
			fmt.Printf("   Size: %s (capped)\n", size)
		} else if size := trade.String("size_actual"); size != "" {
			fmt.Printf("   Size: EUR %sM (actual)\n", size)
		}
		fmt.Printf("   Price: %s\n", trade.String("price"))
		if dealer := trade.String("dealer"); dealer != "" {
			fmt.Printf("   Dealer: %s (%s)\n", dealer, trade.String("dealer_abbrev"))
		}
		fmt.Printf("   Sector: %s, Region: %s\n", trade.String("sector"), trade.String("region"))
		fmt.Printf("   Currency: %s, Maturity: %s\n\n", trade.String("currency"), trade.String("maturity"))
	}
}

func printGrouped(res *models.GroupedResult) {
	fmt.Printf("Actual Period: %s to %s\n", res.PeriodStart, res.PeriodEnd)
	fmt.Printf("Grouped by: %s\n", res.GroupedBy)
	fmt.Printf("Total Groups: %d\n\n", res.TotalGroups)

	if len(res.GroupedData) == 0 {
		fmt.Println("No transactions found for this query.")
		return
	}

	names := make([]string, 0, len(res.GroupedData))
	for name := range res.GroupedData {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		group := res.GroupedData[name]
		s := group.Summary
		fmt.Printf("== %s ==\n", name)
		fmt.Printf("Total Transactions: %d\n", s.Count)
		fmt.Printf("Total Volume: EUR %.2fM\n", s.TotalVolume)
		fmt.Printf("Buys: %d | Sells: %d\n", s.BuyCount, s.SellCount)
		fmt.Printf("Currencies: %s\n\n", strings.Join(s.Currencies, ", "))
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, "usage:")
	fmt.Fprintln(os.Stderr, "  query [-config path] totals <date_from> <date_to>")
	fmt.Fprintln(os.Stderr, "  query [-config path] transactions <market|client> <date_from> <date_to> [flags]")
}

func fatal(format string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(1)
}
