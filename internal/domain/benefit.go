package domain

import "github.com/shopspring/decimal"

func init() {
	// The admin UI consumes valor/amount as JSON numbers, not quoted strings.
	decimal.MarshalJSONWithoutQuotes = true
}

// Benefit is a corporate benefit record. JSON field names follow the wire
// format the admin UI speaks (nome/descricao/valor/ativo).
type Benefit struct {
	ID        int64           `json:"id"`
	Nome      string          `json:"nome"`
	Descricao string          `json:"descricao"`
	Valor     decimal.Decimal `json:"valor"`
	Ativo     bool            `json:"ativo"`
	Version   int64           `json:"version"`
}

// TransferRequest is the payload from the client. It is consumed once by the
// transfer engine and never persisted.
type TransferRequest struct {
	FromID int64           `json:"fromId"`
	ToID   int64           `json:"toId"`
	Amount decimal.Decimal `json:"amount"`
}

// BenefitInput carries the mutable fields for create and update.
// ExpectedVersion, when set on an update, must match the stored record's
// current version or the update is rejected with a version conflict.
type BenefitInput struct {
	Nome            string
	Descricao       string
	Valor           decimal.Decimal
	Ativo           bool
	ExpectedVersion *int64
}

// TransferResult is the canonical response for a completed transfer.
type TransferResult struct {
	Message string  `json:"message"`
	From    Benefit `json:"from"`
	To      Benefit `json:"to"`
}
