// Package paymentprovider оборачивает API Stripe: сессии оплаты, портал
// управления подпиской и проверку подписи вебхуков.
package paymentprovider

import (
	"context"
	"errors"
	"fmt"

	stripe "github.com/stripe/stripe-go/v82"
	portalsession "github.com/stripe/stripe-go/v82/billingportal/session"
	checkoutsession "github.com/stripe/stripe-go/v82/checkout/session"
	"github.com/stripe/stripe-go/v82/webhook"
)

// Client клиент Stripe.
type Client struct {
	checkout      checkoutsession.Client
	portal        portalsession.Client
	webhookSecret string
}

// NewClient создаёт клиент для боевого API Stripe.
func NewClient(secretKey, webhookSecret string) *Client {
	return NewClientWithBackend(stripe.GetBackend(stripe.APIBackend), secretKey, webhookSecret)
}

// NewClientWithBackend создаёт клиент поверх произвольного backend.
func NewClientWithBackend(backend stripe.Backend, secretKey, webhookSecret string) *Client {
	return &Client{
		checkout:      checkoutsession.Client{B: backend, Key: secretKey},
		portal:        portalsession.Client{B: backend, Key: secretKey},
		webhookSecret: webhookSecret,
	}
}

// CreateCheckoutSession создаёт сессию оплаты и возвращает её URL.
func (c *Client) CreateCheckoutSession(ctx context.Context, p CheckoutParams) (string, error) {
	const op = "paymentprovider.CreateCheckoutSession"

	params := &stripe.CheckoutSessionParams{
		Mode:       stripe.String(p.Mode),
		SuccessURL: stripe.String(p.SuccessURL),
		CancelURL:  stripe.String(p.CancelURL),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{
				Price:    stripe.String(p.PriceID),
				Quantity: stripe.Int64(1),
			},
		},
		PaymentMethodTypes: stripe.StringSlice([]string{"card"}),
	}
	params.Context = ctx
	if p.CustomerEmail != "" {
		params.CustomerEmail = stripe.String(p.CustomerEmail)
	}
	// В режиме подписки покупатель создаётся всегда, параметр допустим только для разовой оплаты.
	if p.Mode == ModePayment {
		params.CustomerCreation = stripe.String(string(stripe.CheckoutSessionCustomerCreationAlways))
	}
	for k, v := range p.Metadata {
		params.AddMetadata(k, v)
	}

	session, err := c.checkout.New(params)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	if session.URL == "" {
		return "", fmt.Errorf("%s: %w", op, errors.New("checkout session has no url"))
	}
	return session.URL, nil
}

// CreatePortalSession создаёт сессию портала управления подпиской.
func (c *Client) CreatePortalSession(ctx context.Context, customerRef, returnURL string) (string, error) {
	const op = "paymentprovider.CreatePortalSession"

	params := &stripe.BillingPortalSessionParams{
		Customer:  stripe.String(customerRef),
		ReturnURL: stripe.String(returnURL),
	}
	params.Context = ctx

	session, err := c.portal.New(params)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	return session.URL, nil
}

// ConstructEvent проверяет подпись вебхука и разбирает событие.
func (c *Client) ConstructEvent(payload []byte, signatureHeader string) (stripe.Event, error) {
	const op = "paymentprovider.ConstructEvent"

	event, err := webhook.ConstructEventWithOptions(payload, signatureHeader, c.webhookSecret,
		webhook.ConstructEventOptions{IgnoreAPIVersionMismatch: true})
	if err != nil {
		return stripe.Event{}, fmt.Errorf("%s: %w", op, err)
	}
	return event, nil
}
