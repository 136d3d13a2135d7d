package models

import (
	"encoding/json"
	"errors"
	"sort"
	"time"
)

type Role string

const (
	RoleAdmin  Role = "admin"
	RoleMember Role = "member"
)

var ErrInvalidRole = errors.New("role must be admin or member")

// ParseRole defaults an empty role to member.
func ParseRole(s string) (Role, error) {
	switch Role(s) {
	case "":
		return RoleMember, nil
	case RoleAdmin, RoleMember:
		return Role(s), nil
	}
	return "", ErrInvalidRole
}

type PaymentStatus string

const (
	StatusPaid    PaymentStatus = "paid"
	StatusNotPaid PaymentStatus = "not_paid"
)

var ErrInvalidStatus = errors.New("status must be paid or not_paid")

func (s PaymentStatus) Validate() error {
	if s != StatusPaid && s != StatusNotPaid {
		return ErrInvalidStatus
	}
	return nil
}

// DefaultDues is the monthly amount assumed when a record carries none.
const DefaultDues = 100.0

// PaymentRecord is one member's dues entry for a period.
// PaidDate is set iff Status is paid.
type PaymentRecord struct {
	Month    int           `bson:"month" json:"month"`
	Year     int           `bson:"year" json:"year"`
	Status   PaymentStatus `bson:"status" json:"status"`
	Amount   float64       `bson:"amount" json:"amount"`
	PaidDate *time.Time    `bson:"paid_date,omitempty" json:"paidDate"`
}

func NewPaymentRecord(p Period, status PaymentStatus, amount float64, now time.Time) PaymentRecord {
	rec := PaymentRecord{Month: p.Month, Year: p.Year, Status: status, Amount: amount}
	if status == StatusPaid {
		paid := now
		rec.PaidDate = &paid
	}
	return rec
}

func (r PaymentRecord) Period() Period {
	return Period{Month: r.Month, Year: r.Year}
}

// EffectiveAmount treats a missing amount as the default dues.
func (r PaymentRecord) EffectiveAmount() float64 {
	if r.Amount == 0 {
		return DefaultDues
	}
	return r.Amount
}

// Member model. Payments are keyed by Period.Key so a member holds at most
// one record per period.
type Member struct {
	MemberID     string                   `bson:"_id" json:"memberId"`
	MemberName   string                   `bson:"member_name" json:"memberName"`
	PasswordHash string                   `bson:"password,omitempty" json:"-"`
	Role         Role                     `bson:"role" json:"role"`
	Payments     map[string]PaymentRecord `bson:"payments" json:"-"`
	CreatedAt    time.Time                `bson:"created_at" json:"createdAt"`
}

// PaymentFor returns the member's record for p, if any.
func (m *Member) PaymentFor(p Period) (PaymentRecord, bool) {
	rec, ok := m.Payments[p.Key()]
	return rec, ok
}

// PaidFor reports whether the member paid for p and the amount counted.
func (m *Member) PaidFor(p Period) (float64, bool) {
	rec, ok := m.PaymentFor(p)
	if !ok || rec.Status != StatusPaid {
		return 0, false
	}
	return rec.EffectiveAmount(), true
}

// SetPayment replaces whatever record exists for the record's period.
func (m *Member) SetPayment(rec PaymentRecord) {
	if m.Payments == nil {
		m.Payments = make(map[string]PaymentRecord)
	}
	m.Payments[rec.Period().Key()] = rec
}

// MonthlyPayments returns the records ordered by year then month.
func (m *Member) MonthlyPayments() []PaymentRecord {
	out := make([]PaymentRecord, 0, len(m.Payments))
	for _, rec := range m.Payments {
		out = append(out, rec)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].Period().Before(out[j].Period())
	})
	return out
}

// MarshalJSON renders payments as the ordered monthlyPayments list clients expect.
func (m Member) MarshalJSON() ([]byte, error) {
	type view struct {
		MemberID        string          `json:"memberId"`
		MemberName      string          `json:"memberName"`
		Role            Role            `json:"role"`
		MonthlyPayments []PaymentRecord `json:"monthlyPayments"`
		CreatedAt       time.Time       `json:"createdAt"`
	}
	return json.Marshal(view{
		MemberID:        m.MemberID,
		MemberName:      m.MemberName,
		Role:            m.Role,
		MonthlyPayments: m.MonthlyPayments(),
		CreatedAt:       m.CreatedAt,
	})
}
