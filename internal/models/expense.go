package models

import (
	"time"

	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Expense represents the club's running costs for one period.
type Expense struct {
	ID              primitive.ObjectID `bson:"_id,omitempty" json:"_id"`
	Month           int                `bson:"month" json:"month"`
	Year            int                `bson:"year" json:"year"`
	ElectricityBill float64            `bson:"electricity_bill" json:"electricityBill"`
	InternetBill    float64            `bson:"internet_bill" json:"internetBill"`
	Miscellaneous   float64            `bson:"miscellaneous" json:"miscellaneous"`
	TotalExpense    float64            `bson:"total_expense" json:"totalExpense"`
	CreatedAt       time.Time          `bson:"created_at" json:"createdAt"`
}

func (e Expense) Period() Period {
	return Period{Month: e.Month, Year: e.Year}
}

// Recompute sets TotalExpense to the sum of the components.
func (e *Expense) Recompute() {
	e.TotalExpense = Sum(e.ElectricityBill, e.InternetBill, e.Miscellaneous)
}

// Sum adds amounts in decimal to avoid float drift in totals.
func Sum(amounts ...float64) float64 {
	total := decimal.Zero
	for _, a := range amounts {
		total = total.Add(decimal.NewFromFloat(a))
	}
	return total.InexactFloat64()
}
