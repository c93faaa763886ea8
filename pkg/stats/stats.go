package stats

import (
	"sort"

	"github.com/rfmelo/gastos/pkg/models"
)

// Stats holds the aggregate metrics derived from a ledger. All values are
// zero for an empty ledger.
type Stats struct {
	TotalExpense          float64         `json:"total_expense"`
	TotalIncome           float64         `json:"total_income"`
	Balance               float64         `json:"balance"`
	MonthlyAverageExpense float64         `json:"monthly_average_expense"`
	TopExpenseCategory    models.Category `json:"top_expense_category"`
	TopExpenseAmount      float64         `json:"top_expense_amount"`
}

// CategoryShare is one category's slice of the total absolute volume,
// suitable for rendering a distribution chart.
type CategoryShare struct {
	Category models.Category `json:"category"`
	Amount   float64         `json:"amount"`
	Fraction float64         `json:"fraction"`
}

// Compute derives aggregate metrics from a ledger. Pure function: the caller
// filters beforehand if a restricted view is wanted.
func Compute(l models.Ledger) Stats {
	var s Stats
	months := make(map[string]struct{})
	expenseByCategory := make(map[models.Category]float64)

	for _, t := range l {
		s.Balance += t.Amount
		if t.Amount < 0 {
			s.TotalExpense += -t.Amount
			expenseByCategory[t.Category] += -t.Amount
		} else if t.Amount > 0 {
			s.TotalIncome += t.Amount
		}
		months[t.Date.Format("2006-01")] = struct{}{}
	}

	if len(months) > 0 {
		s.MonthlyAverageExpense = s.TotalExpense / float64(len(months))
	}

	// Lexicographic walk keeps tie-breaking deterministic.
	categories := make([]string, 0, len(expenseByCategory))
	for c := range expenseByCategory {
		categories = append(categories, string(c))
	}
	sort.Strings(categories)
	for _, c := range categories {
		if amount := expenseByCategory[models.Category(c)]; amount > s.TopExpenseAmount {
			s.TopExpenseCategory = models.Category(c)
			s.TopExpenseAmount = amount
		}
	}
	return s
}

// ByCategory sums the absolute value of every record per category and
// returns each category's fraction of the total, largest first.
func ByCategory(l models.Ledger) []CategoryShare {
	byCategory := make(map[models.Category]float64)
	var total float64
	for _, t := range l {
		amount := t.Amount
		if amount < 0 {
			amount = -amount
		}
		byCategory[t.Category] += amount
		total += amount
	}

	shares := make([]CategoryShare, 0, len(byCategory))
	for category, amount := range byCategory {
		share := CategoryShare{Category: category, Amount: amount}
		if total > 0 {
			share.Fraction = amount / total
		}
		shares = append(shares, share)
	}
	sort.Slice(shares, func(i, j int) bool {
		if shares[i].Amount != shares[j].Amount {
			return shares[i].Amount > shares[j].Amount
		}
		return shares[i].Category < shares[j].Category
	})
	return shares
}
