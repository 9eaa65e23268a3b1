package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"fintrack/internal/analytics"
	"fintrack/internal/core"
	"fintrack/internal/integrity"
	"fintrack/internal/ledger"
	"fintrack/internal/sheets"
	gsheet "fintrack/internal/sheets/google"
	"fintrack/internal/transfer"
)

// errCheckFailed is returned by check when a data file has issues.
var errCheckFailed = errors.New("data check found issues")

func (a *app) flagSet(name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(a.stderr)
	return fs
}

func usagef(format string, args ...any) error {
	return fmt.Errorf("%w: %s", errUsage, fmt.Sprintf(format, args...))
}

func (a *app) today() core.Date {
	now := a.now()
	return core.NewDate(now.Year(), int(now.Month()), now.Day())
}

// monthFlag registers -month YYYY-MM, defaulting to the current month.
func (a *app) monthFlag(fs *flag.FlagSet) *string {
	return fs.String("month", a.now().Format("2006-01"), "month as YYYY-MM")
}

func parseMonth(s string) (int, int, error) {
	t, err := time.Parse("2006-01", strings.TrimSpace(s))
	if err != nil {
		return 0, 0, usagef("invalid month %q, want YYYY-MM", s)
	}
	return t.Year(), int(t.Month()), nil
}

func (a *app) cmdAdd(ctx context.Context, args []string) error {
	fs := a.flagSet("add")
	kind := fs.String("type", "expense", "expense or income")
	date := fs.String("date", "", "date as YYYY-MM-DD (default today)")
	category := fs.String("category", "", "expense category or income source")
	desc := fs.String("desc", "", "description")
	amount := fs.String("amount", "", "amount, e.g. 12.34")
	if err := fs.Parse(args); err != nil {
		return err
	}

	k, err := core.ParseKind(*kind)
	if err != nil {
		return usagef("%v", err)
	}
	d := a.today()
	if *date != "" {
		if d, err = core.ParseDate(*date); err != nil {
			return usagef("%v", err)
		}
	}
	if strings.TrimSpace(*category) == "" {
		return usagef("-category is required")
	}
	cents, err := core.ParseDecimalToCents(*amount)
	if err != nil {
		return usagef("%v", err)
	}

	tx, err := a.svc.Record(ctx, core.Transaction{
		Date:        d,
		Kind:        k,
		Category:    strings.TrimSpace(*category),
		Description: strings.TrimSpace(*desc),
		Amount:      core.Money{Cents: cents},
	})
	if err != nil {
		return err
	}

	fmt.Fprintf(a.stdout, "Recorded %s of %s in %s on %s", tx.Kind, tx.Amount.Display(), tx.Category, tx.Date)
	if tx.ID != "" {
		fmt.Fprintf(a.stdout, " (id %s)", tx.ID)
	}
	fmt.Fprintln(a.stdout)
	return nil
}

func (a *app) cmdList(ctx context.Context, args []string) error {
	fs := a.flagSet("list")
	days := fs.Int("days", 0, "only the last N days (0 for all)")
	kind := fs.String("type", "", "only expense or income")
	newest := fs.Bool("newest", false, "newest first instead of ledger order")
	if err := fs.Parse(args); err != nil {
		return err
	}

	var want core.Kind
	if *kind != "" {
		k, err := core.ParseKind(*kind)
		if err != nil {
			return usagef("%v", err)
		}
		want = k
	}

	res, err := a.svc.Ledger().ReadAll(ctx)
	if err != nil {
		return err
	}

	var matches []ledger.Match
	if want != "" {
		matches = append(matches, ledger.KindIs(want))
	}
	if *days > 0 {
		matches = append(matches, ledger.WithinDays(a.today(), *days))
	}
	recs := ledger.FilterRecords(res.Records, matches...)
	if *newest {
		recs = ledger.SortRecordsNewestFirst(recs)
	}

	tw := tabwriter.NewWriter(a.stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "POS\tID\tDATE\tTYPE\tCATEGORY\tDESCRIPTION\tAMOUNT")
	for _, rec := range recs {
		tx := rec.Transaction
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\t%s\t%s\n",
			rec.Position, orDash(tx.ID), tx.Date, tx.Kind, tx.Category, tx.Description, tx.Amount.Display())
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	a.warnSkipped(res.Skipped)
	return nil
}

func (a *app) warnSkipped(n int) {
	if n > 0 {
		fmt.Fprintf(a.stderr, "%d malformed line(s) skipped; run 'fintrack check' for details\n", n)
	}
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

// target registers -id and -pos, the two ways to address a record.
type target struct {
	id  *string
	pos *int
}

func targetFlags(fs *flag.FlagSet) target {
	return target{
		id:  fs.String("id", "", "transaction id"),
		pos: fs.Int("pos", -1, "position as shown by list (for records without id)"),
	}
}

func (t target) validate() error {
	switch {
	case *t.id != "" && *t.pos >= 0:
		return usagef("use either -id or -pos, not both")
	case *t.id == "" && *t.pos < 0:
		return usagef("-id or -pos is required")
	}
	return nil
}

func (t target) String() string {
	if *t.id != "" {
		return "id " + *t.id
	}
	return fmt.Sprintf("position %d", *t.pos)
}

func (a *app) cmdEdit(ctx context.Context, args []string) error {
	fs := a.flagSet("edit")
	tgt := targetFlags(fs)
	fs.String("date", "", "new date as YYYY-MM-DD")
	fs.String("type", "", "new type")
	fs.String("category", "", "new category or source")
	fs.String("desc", "", "new description")
	fs.String("amount", "", "new amount, e.g. 12.34")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if err := tgt.validate(); err != nil {
		return err
	}

	var p ledger.Patch
	fs.Visit(func(f *flag.Flag) {
		v := f.Value.String()
		switch f.Name {
		case "date":
			p.Date = &v
		case "type":
			p.Kind = &v
		case "category":
			p.Category = &v
		case "desc":
			p.Description = &v
		case "amount":
			p.Amount = &v
		}
	})
	if p.IsEmpty() {
		fmt.Fprintln(a.stdout, "Nothing to change")
		return nil
	}

	var (
		ok  bool
		err error
	)
	if *tgt.id != "" {
		ok, err = a.svc.Edit(ctx, *tgt.id, p)
	} else {
		ok, err = a.svc.EditAt(ctx, *tgt.pos, p)
	}
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("no transaction at %s", tgt)
	}
	fmt.Fprintf(a.stdout, "Updated transaction at %s\n", tgt)
	if *tgt.id == "" {
		return nil
	}
	rec, found, err := a.svc.Ledger().Find(ctx, *tgt.id)
	if err != nil || !found {
		return err
	}
	tx := rec.Transaction
	fmt.Fprintf(a.stdout, "Now: %s %s %s %q %s\n", tx.Date, tx.Kind, tx.Category, tx.Description, tx.Amount.Display())
	return nil
}

func (a *app) cmdDelete(ctx context.Context, args []string) error {
	fs := a.flagSet("delete")
	tgt := targetFlags(fs)
	if err := fs.Parse(args); err != nil {
		return err
	}
	if err := tgt.validate(); err != nil {
		return err
	}

	var (
		ok  bool
		err error
	)
	if *tgt.id != "" {
		ok, err = a.svc.Delete(ctx, *tgt.id)
	} else {
		ok, err = a.svc.DeleteAt(ctx, *tgt.pos)
	}
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("no transaction at %s", tgt)
	}
	fmt.Fprintf(a.stdout, "Deleted transaction at %s\n", tgt)
	return nil
}

func (a *app) cmdBalance(ctx context.Context, args []string) error {
	fs := a.flagSet("balance")
	month := a.monthFlag(fs)
	if err := fs.Parse(args); err != nil {
		return err
	}
	y, m, err := parseMonth(*month)
	if err != nil {
		return err
	}

	st, err := a.svc.Load(ctx)
	if err != nil {
		return err
	}
	txs := st.Transactions()

	all := analytics.Totals(txs)
	ms := analytics.MonthlySummary(txs, y, m)

	tw := tabwriter.NewWriter(a.stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "\tINCOME\tEXPENSES\tBALANCE")
	fmt.Fprintf(tw, "All time\t%s\t%s\t%s\n", core.FormatCents(all.Income), core.FormatCents(all.Expense), core.FormatCents(all.Balance))
	fmt.Fprintf(tw, "%04d-%02d\t%s\t%s\t%s\n", y, m, core.FormatCents(ms.Income), core.FormatCents(ms.Expense), core.FormatCents(ms.Balance))
	if err := tw.Flush(); err != nil {
		return err
	}
	a.warnSkipped(st.Ledger.Skipped)
	return nil
}

func (a *app) cmdSummary(ctx context.Context, args []string) error {
	fs := a.flagSet("summary")
	month := a.monthFlag(fs)
	if err := fs.Parse(args); err != nil {
		return err
	}
	y, m, err := parseMonth(*month)
	if err != nil {
		return err
	}

	st, err := a.svc.Load(ctx)
	if err != nil {
		return err
	}
	txs, budgets := st.Transactions(), st.BudgetList()
	w := a.stdout

	s := analytics.MonthlySummary(txs, y, m)
	fmt.Fprintf(w, "Summary for %04d-%02d\n", y, m)
	fmt.Fprintf(w, "  Income:   %s\n", core.FormatCents(s.Income))
	fmt.Fprintf(w, "  Expenses: %s\n", core.FormatCents(s.Expense))
	fmt.Fprintf(w, "  Balance:  %s\n", core.FormatCents(s.Balance))
	fmt.Fprintf(w, "  Average daily expense: %s\n", core.FormatCents(int64(analytics.AverageDailyExpense(txs, y, m)+0.5)))

	printChange(w, "Spending", analytics.MonthOverMonth(txs, core.Expense, y, m))
	printChange(w, "Income", analytics.MonthOverMonth(txs, core.Income, y, m))

	printBreakdown(w, "Expenses by category", analytics.ExpenseBreakdown(txs, y, m))
	printBreakdown(w, "Income by source", analytics.IncomeBySource(txs, y, m))

	if alerts := analytics.Alerts(txs, budgets, y, m); len(alerts) > 0 {
		fmt.Fprintln(w, "\nAlerts")
		for _, al := range alerts {
			fmt.Fprintf(w, "  [%s] %s\n", al.Kind, al.Message)
		}
	}
	if advice := analytics.Recommendations(txs, budgets, y, m); len(advice) > 0 {
		fmt.Fprintln(w, "\nRecommendations")
		for _, ad := range advice {
			fmt.Fprintf(w, "  - %s\n", ad.Message)
		}
	}

	recent := ledger.SortNewestFirst(ledger.LastDays(ledger.OfKind(txs, core.Expense), a.today(), 7))
	if len(recent) > 0 {
		fmt.Fprintln(w, "\nExpenses in the last 7 days")
		for i, tx := range recent {
			if i == 5 {
				fmt.Fprintf(w, "  ... and %d more\n", len(recent)-5)
				break
			}
			fmt.Fprintf(w, "  %s  %-14s %10s  %s\n", tx.Date, tx.Category, tx.Amount.Display(), tx.Description)
		}
	}

	a.warnSkipped(st.Ledger.Skipped)
	return nil
}

func printChange(w io.Writer, label string, c analytics.Change) {
	if !c.Comparable {
		fmt.Fprintf(w, "  %s vs previous month: n/a\n", label)
		return
	}
	fmt.Fprintf(w, "  %s vs previous month: %+.1f%%\n", label, c.Percent)
}

func printBreakdown(w io.Writer, title string, rows []core.CategoryAmount) {
	if len(rows) == 0 {
		return
	}
	fmt.Fprintf(w, "\n%s\n", title)
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	for _, r := range rows {
		fmt.Fprintf(tw, "  %s\t%s\t%.1f%%\n", r.Name, r.Amount.Display(), r.Percentage)
	}
	tw.Flush()
}

func (a *app) cmdHealth(ctx context.Context, args []string) error {
	fs := a.flagSet("health")
	month := a.monthFlag(fs)
	trend := fs.Int("trend", 6, "months of savings trend to show")
	if err := fs.Parse(args); err != nil {
		return err
	}
	y, m, err := parseMonth(*month)
	if err != nil {
		return err
	}

	st, err := a.svc.Load(ctx)
	if err != nil {
		return err
	}
	txs, budgets := st.Transactions(), st.BudgetList()
	w := a.stdout

	h := analytics.HealthScore(txs, budgets, y, m)
	fmt.Fprintf(w, "Financial health for %04d-%02d: %d/100 (%s)\n", y, m, h.Total, h.Tier())
	fmt.Fprintf(w, "  Savings rate:       %2d/%d\n", h.SavingsRate, analytics.MaxSavingsRatePoints)
	fmt.Fprintf(w, "  Budget adherence:   %2d/%d\n", h.BudgetAdherence, analytics.MaxBudgetAdherencePoints)
	fmt.Fprintf(w, "  Income vs expenses: %2d/%d\n", h.IncomeVsExpense, analytics.MaxIncomeVsExpensePoints)
	fmt.Fprintf(w, "  Debt management:    %2d/%d\n", h.DebtManagement, analytics.MaxDebtManagementPoints)
	fmt.Fprintf(w, "\n%s\n", h.Recommendation())

	if rate, ok := analytics.SavingsRate(txs, y, m); ok {
		fmt.Fprintf(w, "\nSavings rate: %.1f%%\n", rate)
	} else {
		fmt.Fprintln(w, "\nSavings rate: n/a (no income)")
	}

	if points := analytics.SavingsTrend(txs, y, m, *trend); len(points) > 0 {
		fmt.Fprintln(w, "\nSavings trend")
		for _, p := range points {
			fmt.Fprintf(w, "  %04d-%02d  %s\n", p.Year, p.Month, core.FormatCents(p.Savings))
		}
	}

	today := a.today()
	if today.In(y, m) {
		if db := analytics.RemainingDailyBudget(txs, budgets, today); db.Available {
			if db.Over {
				fmt.Fprintf(w, "\nBudget exhausted: spent %s of %s\n", core.FormatCents(db.Spent), core.FormatCents(db.Total))
			} else {
				fmt.Fprintf(w, "\nYou can spend %s per day for the remaining %d day(s)\n", core.FormatCents(db.PerDay), db.RemainingDays)
			}
		}
	}
	return nil
}

func (a *app) cmdBudget(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return usagef("budget needs a subcommand: set, delete or list")
	}
	sub, rest := args[0], args[1:]
	switch sub {
	case "set":
		fs := a.flagSet("budget set")
		category := fs.String("category", "", "expense category")
		limit := fs.String("limit", "", "monthly limit, e.g. 500.00")
		if err := fs.Parse(rest); err != nil {
			return err
		}
		cents, err := core.ParseDecimalToCents(*limit)
		if err != nil {
			return usagef("%v", err)
		}
		b := core.Budget{Category: strings.TrimSpace(*category), Limit: core.Money{Cents: cents}}
		if err := a.svc.SetBudget(ctx, b); err != nil {
			return err
		}
		fmt.Fprintf(a.stdout, "Budget for %s set to %s\n", b.Category, b.Limit.Display())
		return nil

	case "delete":
		fs := a.flagSet("budget delete")
		category := fs.String("category", "", "expense category")
		if err := fs.Parse(rest); err != nil {
			return err
		}
		ok, err := a.svc.DeleteBudget(ctx, strings.TrimSpace(*category))
		if err != nil {
			return err
		}
		if !ok {
			return fmt.Errorf("no budget set for %q", *category)
		}
		fmt.Fprintf(a.stdout, "Budget for %s deleted\n", *category)
		return nil

	case "list":
		fs := a.flagSet("budget list")
		month := a.monthFlag(fs)
		if err := fs.Parse(rest); err != nil {
			return err
		}
		y, m, err := parseMonth(*month)
		if err != nil {
			return err
		}
		st, err := a.svc.Load(ctx)
		if err != nil {
			return err
		}
		return a.printBudgets(st.Transactions(), st.BudgetList(), y, m)

	default:
		return usagef("unknown budget subcommand %q", sub)
	}
}

func (a *app) printBudgets(txs []core.Transaction, budgets []core.Budget, y, m int) error {
	if len(budgets) == 0 {
		fmt.Fprintln(a.stdout, "No budgets set")
		return nil
	}
	tw := tabwriter.NewWriter(a.stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "CATEGORY\tBUDGET\tSPENT\tREMAINING\tUSED\tSTATUS")
	for _, l := range analytics.BudgetStatus(txs, budgets, y, m) {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%.1f%%\t%s\n", l.Category,
			core.FormatCents(l.Budget), core.FormatCents(l.Spent), core.FormatCents(l.Remaining), l.Utilization, l.Status)
	}
	o := analytics.OverallBudget(txs, budgets, y, m)
	fmt.Fprintf(tw, "TOTAL\t%s\t%s\t%s\t%.1f%%\t%s\n",
		core.FormatCents(o.Budget), core.FormatCents(o.Spent), core.FormatCents(o.Remaining), o.Utilization, o.Status)
	return tw.Flush()
}

func (a *app) cmdExport(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return usagef("export needs a format: csv, json, report, sqlite or sheets")
	}
	format, rest := args[0], args[1:]

	fs := a.flagSet("export " + format)
	var out *string
	var month *string
	switch format {
	case "csv":
		out = fs.String("out", "transactions_export.csv", "destination file")
	case "json":
		out = fs.String("out", "transactions_export.json", "destination file")
	case "report":
		out = fs.String("out", "", "destination file (default monthly_report_YYYY_MM.json)")
		month = a.monthFlag(fs)
	case "sqlite":
		out = fs.String("out", "fintrack_snapshot.db", "destination database")
	case "sheets":
	default:
		return usagef("unknown export format %q", format)
	}
	if err := fs.Parse(rest); err != nil {
		return err
	}

	st, err := a.svc.Load(ctx)
	if err != nil {
		return err
	}
	txs, budgets := st.Transactions(), st.BudgetList()

	switch format {
	case "csv":
		err = transfer.ExportCSV(txs, *out)
	case "json":
		err = transfer.ExportJSON(txs, *out)
	case "report":
		y, m, perr := parseMonth(*month)
		if perr != nil {
			return perr
		}
		if *out == "" {
			*out = fmt.Sprintf("monthly_report_%04d_%02d.json", y, m)
		}
		_, err = transfer.ExportMonthlyReport(txs, budgets, y, m, a.now(), *out)
	case "sqlite":
		var rep transfer.SQLiteReport
		rep, err = transfer.ExportSQLite(ctx, txs, budgets, *out, a.now())
		if err == nil {
			a.printSnapshot(rep, *out)
			return nil
		}
	case "sheets":
		return a.exportSheets(ctx, txs)
	}
	if errors.Is(err, transfer.ErrNothingToExport) {
		fmt.Fprintln(a.stdout, "Nothing to export")
		return nil
	}
	if err != nil {
		return err
	}
	fmt.Fprintf(a.stdout, "Exported %d transaction(s) to %s\n", len(txs), *out)
	return nil
}

func (a *app) printSnapshot(rep transfer.SQLiteReport, path string) {
	fmt.Fprintf(a.stdout, "Snapshot %s written at %s: %d transaction(s), %d budget(s)\n",
		path, rep.TakenAt.Format(time.RFC3339), rep.Transactions, rep.Budgets)
	if len(rep.MonthTotals) == 0 {
		return
	}
	fmt.Fprintf(a.stdout, "This month by category:\n")
	tw := tabwriter.NewWriter(a.stdout, 0, 0, 2, ' ', 0)
	for _, ct := range rep.MonthTotals {
		fmt.Fprintf(tw, "  %s\t%s\t%s\n", ct.Kind, ct.Category, core.Money{Cents: ct.Total}.Display())
	}
	tw.Flush()
}

func (a *app) exportSheets(ctx context.Context, txs []core.Transaction) error {
	if !a.cfg.SheetsEnabled() {
		return usagef("GOOGLE_SPREADSHEET_ID is not set")
	}
	client, err := gsheet.New(ctx, a.cfg.GoogleSpreadsheetID, gsheet.Credentials{
		JSON: a.cfg.GoogleServiceAccountJSON,
		File: a.cfg.GoogleServiceAccountFile,
	})
	if err != nil {
		return err
	}
	n, err := sheets.NewExporter(client, a.cfg.GoogleSheetName).Export(ctx, txs)
	if errors.Is(err, sheets.ErrNoTransactions) {
		fmt.Fprintln(a.stdout, "Nothing to export")
		return nil
	}
	if err != nil {
		return err
	}
	fmt.Fprintf(a.stdout, "Exported %d transaction(s) to sheet %s\n", n, a.cfg.GoogleSheetName)
	return nil
}

func (a *app) cmdImport(ctx context.Context, args []string) error {
	fs := a.flagSet("import")
	dryRun := fs.Bool("dry-run", false, "report what would be imported without writing")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		return usagef("import needs exactly one CSV file")
	}

	report, err := a.svc.StageImport(ctx, fs.Arg(0))
	if err != nil {
		return err
	}

	for _, issue := range report.Issues {
		fmt.Fprintf(a.stderr, "row %d: %s\n", issue.Row, issue.Reason)
	}

	imported := 0
	if !*dryRun {
		stored, err := a.svc.CommitImport(ctx, report)
		if err != nil {
			return err
		}
		imported = len(stored)
	} else {
		imported = len(report.Accepted)
	}

	verb := "Imported"
	if *dryRun {
		verb = "Would import"
	}
	fmt.Fprintf(a.stdout, "%s %d transaction(s); skipped %d (%d invalid, %d duplicate)\n",
		verb, imported, report.Skipped(), report.Invalid, report.Duplicates)
	return nil
}

func (a *app) cmdBackup(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return usagef("backup needs a subcommand: create, list or restore")
	}
	sub, rest := args[0], args[1:]
	switch sub {
	case "create":
		res, err := a.backups.Create(ctx)
		if err != nil {
			return err
		}
		fmt.Fprintf(a.stdout, "Backup created: %s (%d file(s))\n", res.Path, len(res.Included))
		for _, m := range res.Missing {
			fmt.Fprintf(a.stderr, "not found, skipped: %s\n", m)
		}
		if len(res.Removed) > 0 {
			fmt.Fprintf(a.stdout, "Removed %d old backup(s)\n", len(res.Removed))
		}
		return nil

	case "list":
		archives, err := a.backups.List()
		if err != nil {
			return err
		}
		if len(archives) == 0 {
			fmt.Fprintln(a.stdout, "No backups found")
			return nil
		}
		tw := tabwriter.NewWriter(a.stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintln(tw, "NAME\tSIZE\tCREATED")
		for _, ar := range archives {
			fmt.Fprintf(tw, "%s\t%d\t%s\n", ar.Name, ar.Size, ar.ModTime.Format("2006-01-02 15:04:05"))
		}
		return tw.Flush()

	case "restore":
		fs := a.flagSet("backup restore")
		yes := fs.Bool("yes", false, "confirm overwriting the current data files")
		dest := fs.String("dest", a.cfg.Paths().DataDir, "directory to restore into")
		if err := fs.Parse(rest); err != nil {
			return err
		}
		if fs.NArg() != 1 {
			return usagef("restore needs exactly one archive name or path")
		}
		if !*yes {
			return usagef("restore overwrites files in %s; rerun with -yes to confirm", *dest)
		}
		names, err := a.backups.Restore(ctx, fs.Arg(0), *dest)
		if err != nil {
			return err
		}
		fmt.Fprintf(a.stdout, "Restored %s into %s\n", strings.Join(names, ", "), *dest)
		return nil

	default:
		return usagef("unknown backup subcommand %q", sub)
	}
}

func (a *app) cmdCheck(ctx context.Context, args []string) error {
	fs := a.flagSet("check")
	if err := fs.Parse(args); err != nil {
		return err
	}

	paths := a.cfg.Paths()
	report, err := integrity.Check(ctx, paths.LedgerFile, paths.BudgetFile)
	if err != nil {
		return err
	}

	for _, fr := range []integrity.FileReport{report.Ledger, report.Budgets} {
		if !fr.Exists {
			fmt.Fprintf(a.stdout, "%s: not found\n", fr.Path)
			continue
		}
		fmt.Fprintf(a.stdout, "%s: %d record(s), %d issue(s)\n", fr.Path, fr.Records, len(fr.Issues))
		for _, d := range fr.Issues {
			fmt.Fprintf(a.stdout, "  line %d: %s\n", d.Line+1, d.Reason)
		}
		for _, w := range fr.Warnings {
			fmt.Fprintf(a.stdout, "  warning: %s\n", w)
		}
	}

	if !report.OK() {
		return errCheckFailed
	}
	fmt.Fprintln(a.stdout, "All data files are valid")
	return nil
}
