package transfer

import (
	"bytes"
	"fmt"
	"time"

	"github.com/pkg/errors"

	"fintrack/internal/analytics"
	"fintrack/internal/core"
	"fintrack/internal/fileutil"
)

// reportTopCategories is how many expense categories the report ranks.
const reportTopCategories = 3

// MonthlyReport is the JSON document written by ExportMonthlyReport.
// All amounts are display strings.
type MonthlyReport struct {
	ReportDate        string                       `json:"report_date"`
	Month             string                       `json:"month"`
	Summary           ReportSummary                `json:"summary"`
	Transactions      []exportRecord               `json:"transactions"`
	BudgetPerformance map[string]BudgetPerformance `json:"budget_performance"`
	Analytics         ReportAnalytics              `json:"analytics"`
	Recommendations   []string                     `json:"recommendations"`
}

type ReportSummary struct {
	TotalIncome   string `json:"total_income"`
	TotalExpenses string `json:"total_expenses"`
	NetBalance    string `json:"net_balance"`
}

type BudgetPerformance struct {
	Budgeted           string `json:"budgeted"`
	Spent              string `json:"spent"`
	Remaining          string `json:"remaining"`
	UtilizationPercent string `json:"utilization_percent"`
	Status             string `json:"status"`
}

type ReportAnalytics struct {
	SpendingPatterns     []CategoryShare           `json:"spending_patterns"`
	SavingsRate          string                    `json:"savings_rate"`
	FinancialHealthScore int                       `json:"financial_health_score"`
	HealthBreakdown      analytics.HealthBreakdown `json:"health_breakdown"`
	TopCategories        []CategoryShare           `json:"top_categories"`
	SavingsTrend         []analytics.MonthSavings  `json:"savings_trend"`
}

type CategoryShare struct {
	Category   string `json:"category"`
	Amount     string `json:"amount"`
	Percentage string `json:"percentage"`
}

// BuildMonthlyReport assembles the report for (year, month). now only sets report_date.
func BuildMonthlyReport(txs []core.Transaction, budgets []core.Budget, year, month int, now time.Time) MonthlyReport {
	monthTxs := analytics.ForMonth(txs, year, month)
	sum := analytics.MonthlySummary(monthTxs, year, month)

	r := MonthlyReport{
		ReportDate: now.Format("2006-01-02 15:04:05"),
		Month:      fmt.Sprintf("%04d-%02d", year, month),
		Summary: ReportSummary{
			TotalIncome:   core.FormatCents(sum.Income),
			TotalExpenses: core.FormatCents(sum.Expense),
			NetBalance:    core.FormatCents(sum.Balance),
		},
		Transactions:      toExport(monthTxs),
		BudgetPerformance: make(map[string]BudgetPerformance, len(budgets)),
	}

	for _, line := range analytics.BudgetStatus(monthTxs, budgets, year, month) {
		r.BudgetPerformance[line.Category] = BudgetPerformance{
			Budgeted:           core.FormatCents(line.Budget),
			Spent:              core.FormatCents(line.Spent),
			Remaining:          core.FormatCents(line.Remaining),
			UtilizationPercent: fmt.Sprintf("%.2f%%", line.Utilization),
			Status:             string(line.Status),
		}
	}

	health := analytics.HealthScore(monthTxs, budgets, year, month)
	r.Analytics = ReportAnalytics{
		SpendingPatterns:     shares(analytics.ExpenseBreakdown(monthTxs, year, month)),
		SavingsRate:          "N/A",
		FinancialHealthScore: health.Total,
		HealthBreakdown:      health,
		TopCategories:        shares(analytics.TopCategories(monthTxs, year, month, reportTopCategories)),
		SavingsTrend:         analytics.SavingsTrend(txs, year, month, 3),
	}
	if rate, ok := analytics.SavingsRate(monthTxs, year, month); ok {
		r.Analytics.SavingsRate = fmt.Sprintf("%.2f%%", rate)
	}

	r.Recommendations = []string{health.Recommendation()}
	for _, a := range analytics.Recommendations(txs, budgets, year, month) {
		r.Recommendations = append(r.Recommendations, a.Message)
	}
	return r
}

func shares(in []core.CategoryAmount) []CategoryShare {
	out := make([]CategoryShare, len(in))
	for i, c := range in {
		out[i] = CategoryShare{
			Category:   c.Name,
			Amount:     c.Amount.Display(),
			Percentage: fmt.Sprintf("%.2f%%", c.Percentage),
		}
	}
	return out
}

// ExportMonthlyReport writes the report for (year, month) to dest. It returns
// ErrNothingToExport when there are neither transactions nor budgets.
func ExportMonthlyReport(txs []core.Transaction, budgets []core.Budget, year, month int, now time.Time, dest string) (MonthlyReport, error) {
	if len(txs) == 0 && len(budgets) == 0 {
		return MonthlyReport{}, ErrNothingToExport
	}
	report := BuildMonthlyReport(txs, budgets, year, month, now)
	var buf bytes.Buffer
	if err := writeIndented(&buf, report); err != nil {
		return MonthlyReport{}, err
	}
	if err := fileutil.WriteFileAtomic(dest, buf.Bytes()); err != nil {
		return MonthlyReport{}, errors.Wrapf(err, "export report to %s", dest)
	}
	return report, nil
}
