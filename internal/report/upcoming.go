package report

import (
	"sort"
	"time"

	"github.com/jask/liquidity/internal/database/repository"
)

// Urgency bands for upcoming payments.
const (
	UrgencySoon     = "soon"
	UrgencyUpcoming = "upcoming"

	soonDays = 3
)

// UpcomingPayment is an account whose next due date falls inside the window.
type UpcomingPayment struct {
	Account   repository.Account
	DueDate   time.Time
	DaysUntil int
	Urgency   string
}

func dateOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func daysIn(y int, m time.Month) int {
	return time.Date(y, m+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

func clampedDay(y int, m time.Month, day int) time.Time {
	if n := daysIn(y, m); day > n {
		day = n
	}
	return time.Date(y, m, day, 0, 0, 0, 0, time.UTC)
}

// NextDueDate returns the first date on or after today that matches dueDay.
// A due day past the end of a month lands on that month's last day.
func NextDueDate(dueDay int, today time.Time) time.Time {
	today = dateOf(today)
	due := clampedDay(today.Year(), today.Month(), dueDay)
	if due.Before(today) {
		first := time.Date(today.Year(), today.Month()+1, 1, 0, 0, 0, 0, time.UTC)
		due = clampedDay(first.Year(), first.Month(), dueDay)
	}
	return due
}

// UpcomingPayments lists active accounts with a payment and a due day that
// comes due within windowDays of today (both ends inclusive), soonest first.
func UpcomingPayments(accounts []repository.Account, today time.Time, windowDays int) []UpcomingPayment {
	today = dateOf(today)
	var out []UpcomingPayment
	for _, a := range accounts {
		if !a.IsActive || a.DueDay == nil || !a.MinimumPayment.IsPositive() {
			continue
		}
		due := NextDueDate(*a.DueDay, today)
		days := int(due.Sub(today).Hours() / 24)
		if days > windowDays {
			continue
		}
		urgency := UrgencyUpcoming
		if days <= soonDays {
			urgency = UrgencySoon
		}
		out = append(out, UpcomingPayment{Account: a, DueDate: due, DaysUntil: days, Urgency: urgency})
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].DaysUntil != out[j].DaysUntil {
			return out[i].DaysUntil < out[j].DaysUntil
		}
		return out[i].Account.Name < out[j].Account.Name
	})
	return out
}
