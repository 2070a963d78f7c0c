package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// AlertCondition is the direction a price alert fires on.
type AlertCondition string

const (
	AlertAbove AlertCondition = "ABOVE"
	AlertBelow AlertCondition = "BELOW"
)

// ParseAlertCondition validates and normalizes an alert condition string.
func ParseAlertCondition(s string) (AlertCondition, bool) {
	switch c := AlertCondition(s); c {
	case AlertAbove, AlertBelow:
		return c, true
	}
	return "", false
}

// PriceAlert fires a notification when an asset crosses a target price.
// Alerts trigger once: the checker deactivates them after firing.
type PriceAlert struct {
	ID          string          `json:"id" badgerhold:"key"`
	UserID      string          `json:"user_id"`
	Symbol      string          `json:"symbol"`
	TargetPrice decimal.Decimal `json:"target_price"`
	Condition   AlertCondition  `json:"condition"`
	Active      bool            `json:"active"`
	CreatedAt   time.Time       `json:"created_at"`
	TriggeredAt time.Time       `json:"triggered_at,omitzero"`
}

// ShouldTrigger reports whether the alert fires at the given price.
func (a *PriceAlert) ShouldTrigger(price decimal.Decimal) bool {
	if !a.Active {
		return false
	}
	switch a.Condition {
	case AlertAbove:
		return price.GreaterThanOrEqual(a.TargetPrice)
	case AlertBelow:
		return price.LessThanOrEqual(a.TargetPrice)
	}
	return false
}
