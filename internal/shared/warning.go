package shared

// Warning is a non-blocking notice returned to the operator alongside a
// successful result.
type Warning struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (w Warning) String() string { return w.Message }

// Warning codes.
const (
	WarningCancelWithBalance = "cancel_with_balance"
	WarningZeroPayment       = "zero_payment"
	WarningAttachmentFailed  = "attachment_degraded"
	WarningDeliveryFailed    = "delivery_failed"
)
