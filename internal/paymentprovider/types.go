package paymentprovider

// Режимы сессии оплаты.
const (
	ModePayment      = "payment"
	ModeSubscription = "subscription"
)

// EventCheckoutSessionCompleted тип события об успешной оплате.
const EventCheckoutSessionCompleted = "checkout.session.completed"

// CheckoutParams параметры сессии оплаты
type CheckoutParams struct {
	PriceID       string
	Mode          string
	CustomerEmail string
	SuccessURL    string
	CancelURL     string
	Metadata      map[string]string
}

// CheckoutSessionObject поля объекта сессии из события checkout.session.completed,
// которые нужны для зачисления оплаты
type CheckoutSessionObject struct {
	ID       string            `json:"id"`
	Customer string            `json:"customer"`
	Metadata map[string]string `json:"metadata"`
}
