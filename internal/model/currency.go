package model

import (
	"time"

	"github.com/GoPolymarket/econgate/internal/schema"
	"github.com/google/uuid"
)

type Currency struct {
	CurrencyID   string         `json:"currencyId" validate:"required"`
	Code         string         `json:"code" validate:"required,pattern=currency"`
	Symbol       string         `json:"symbol,omitempty"`
	Name         string         `json:"name,omitempty"`
	Type         CurrencyType   `json:"type" validate:"required,enum"`
	ExchangeRate schema.Decimal `json:"exchangeRate" validate:"required,dgt=0"`
	IsTradeable  bool           `json:"isTradeable"`
}

type ExchangeCurrencyRequest struct {
	CharacterID  string         `json:"character_id" validate:"required"`
	FromCurrency string         `json:"from_currency" validate:"required,pattern=currency"`
	ToCurrency   string         `json:"to_currency" validate:"required,pattern=currency"`
	Amount       schema.Decimal `json:"amount" validate:"required,dgte=0.01"`
}

// ExchangeCurrencyResponse settles an exchange. The received amount is the
// sent amount at the quoted rate, net of the fee.
type ExchangeCurrencyResponse struct {
	TransactionID  uuid.UUID      `json:"transaction_id" validate:"required"`
	FromCurrency   string         `json:"from_currency,omitempty" validate:"omitempty,pattern=currency"`
	ToCurrency     string         `json:"to_currency,omitempty" validate:"omitempty,pattern=currency"`
	AmountSent     schema.Decimal `json:"amount_sent" validate:"required,dgt=0"`
	AmountReceived schema.Decimal `json:"amount_received" validate:"required,dgte=0"`
	ExchangeRate   schema.Decimal `json:"exchange_rate" validate:"required,dgt=0"`
	Fee            schema.Decimal `json:"fee" validate:"required,dgte=0"`
	ExecutedAt     time.Time      `json:"executed_at" validate:"required"`
}

func (r ExchangeCurrencyResponse) Invariants() []schema.Violation {
	if !r.AmountSent.IsSet() || !r.ExchangeRate.IsSet() || !r.AmountReceived.IsSet() || !r.Fee.IsSet() {
		return nil
	}
	want := r.AmountSent.Mul(r.ExchangeRate.Decimal).Sub(r.Fee.Decimal)
	if !r.AmountReceived.Equal(want) {
		return []schema.Violation{{
			Field:   "amount_received",
			Rule:    "exchange_settles",
			Message: "amount received must equal amount sent x rate - fee (" + want.String() + ")",
		}}
	}
	return nil
}
