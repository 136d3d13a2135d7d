package models

// PaymentStats summarises dues collection for one period.
type PaymentStats struct {
	Month           int     `json:"month"`
	Year            int     `json:"year"`
	TotalMembers    int     `json:"totalMembers"`
	PaidMembers     int     `json:"paidMembers"`
	UnpaidMembers   int     `json:"unpaidMembers"`
	TotalCollection float64 `json:"totalCollection"`
}

// ChartPoint is one period of the dashboard time series.
type ChartPoint struct {
	Month      int     `json:"month"`
	Year       int     `json:"year"`
	Collection float64 `json:"collection"`
	Expense    float64 `json:"expense"`
}

// DashboardSummary is the admin dashboard projection for the current period.
type DashboardSummary struct {
	TotalMembers      int          `json:"totalMembers"`
	MonthlyCollection float64      `json:"monthlyCollection"`
	MonthlyExpenses   float64      `json:"monthlyExpenses"`
	NetBalance        float64      `json:"netBalance"`
	ChartData         []ChartPoint `json:"chartData"`
}
