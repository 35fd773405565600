package enum

// ── Group A: Payment state machine ──

type PaymentStatus string

const (
	PaymentStatusSelecting  PaymentStatus = "SELECTING"
	PaymentStatusCollecting PaymentStatus = "COLLECTING"
	PaymentStatusCompleted  PaymentStatus = "COMPLETED"
)

type PaymentMethod string

const (
	PaymentMethodUnset PaymentMethod = ""
	PaymentMethodCash  PaymentMethod = "CASH"
	PaymentMethodCard  PaymentMethod = "CARD"
)

// Valid reports whether m is a method the terminal can settle with.
func (m PaymentMethod) Valid() bool {
	switch m {
	case PaymentMethodCash, PaymentMethodCard:
		return true
	}
	return false
}

// ── Group B: Display / queue event types ──

const (
	EventReceiptIssued   = "receipt.issued"
	EventRefundCompleted = "refund.completed"
	EventOrderCleared    = "order.cleared"
	EventKitchenTicket   = "kitchen.ticket"
	EventSessionSnapshot = "session.snapshot"
)

// ── Group C: Configurable labels ──

const (
	CategoryBeverages  = "beverages"
	CategoryAppetizers = "appetizers"
	CategorySalads     = "salads"
	CategoryMainCourse = "mainCourse"
	CategoryDesserts   = "desserts"
)

// TipPresets are the percentages offered as one-tap tip buttons.
var TipPresets = []int{0, 10, 15, 20}
