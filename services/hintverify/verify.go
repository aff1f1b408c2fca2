package hintverify

import (
	"context"
	"fmt"
	"os"
	"strconv"

	"github.com/shopspring/decimal"
)

// TokenDelta is the net token balance change of one owner in a
// transaction. Positive means the owner received tokens.
type TokenDelta struct {
	Owner  string
	Amount decimal.Decimal
}

// TxFetcher loads a referenced transaction and reduces it to per-owner
// token deltas for the configured hint mint.
type TxFetcher interface {
	TokenDeltas(ctx context.Context, txRef string) ([]TokenDelta, error)
}

// PriceSource returns the current token/USD price.
type PriceSource interface {
	TokenPriceUSD(ctx context.Context) (decimal.Decimal, error)
}

// Set at startup; tests swap in fakes.
var (
	Fetcher TxFetcher
	Price   PriceSource
)

type Verification struct {
	ExpectedTokenAmount decimal.Decimal `json:"expected_token_amount"`
	PaidTokenAmount     decimal.Decimal `json:"paid_token_amount"`
}

func tolerancePct(key string, fallback int64) decimal.Decimal {
	if raw := os.Getenv(key); raw != "" {
		if v, err := strconv.ParseInt(raw, 10, 64); err == nil && v > 0 {
			fallback = v
		}
	}
	return decimal.NewFromInt(fallback).Div(decimal.NewFromInt(100))
}

// VerifyPayment checks that the referenced on-chain transaction pays
// priceUSD worth of tokens, split between the treasury and the burn
// wallet. Tolerances absorb price-oracle drift between the client's
// quote and ours: ±5% on the total, ±10% on each leg against an even
// split. Anything else is rejected with the reason.
func VerifyPayment(ctx context.Context, txRef string, priceUSD decimal.Decimal) (Verification, error) {
	if Fetcher == nil || Price == nil {
		return Verification{}, fmt.Errorf("hint verification not configured")
	}

	treasury := os.Getenv("TREASURY_WALLET")
	burn := os.Getenv("BURN_WALLET")
	if treasury == "" || burn == "" {
		return Verification{}, fmt.Errorf("treasury/burn wallets not configured")
	}

	price, err := Price.TokenPriceUSD(ctx)
	if err != nil {
		return Verification{}, fmt.Errorf("fetch token price: %w", err)
	}
	if !price.IsPositive() {
		return Verification{}, fmt.Errorf("price oracle returned non-positive price %s", price)
	}

	expected := priceUSD.Div(price)

	deltas, err := Fetcher.TokenDeltas(ctx, txRef)
	if err != nil {
		return Verification{}, fmt.Errorf("fetch transaction %s: %w", txRef, err)
	}

	received := map[string]decimal.Decimal{}
	for _, d := range deltas {
		if d.Amount.IsPositive() {
			received[d.Owner] = received[d.Owner].Add(d.Amount)
		}
	}

	if len(received) != 2 {
		return Verification{}, fmt.Errorf("expected exactly two positive transfers, found %d", len(received))
	}

	toTreasury, ok := received[treasury]
	if !ok {
		return Verification{}, fmt.Errorf("no transfer to the treasury wallet")
	}
	toBurn, ok := received[burn]
	if !ok {
		return Verification{}, fmt.Errorf("no transfer to the burn wallet")
	}

	total := toTreasury.Add(toBurn)
	totalTol := expected.Mul(tolerancePct("HINT_TOTAL_TOLERANCE_PCT", 5))
	if total.Sub(expected).Abs().GreaterThan(totalTol) {
		return Verification{}, fmt.Errorf(
			"total transfer %s outside tolerance of expected %s", total, expected)
	}

	half := expected.Div(decimal.NewFromInt(2))
	splitTol := half.Mul(tolerancePct("HINT_SPLIT_TOLERANCE_PCT", 10))
	for name, amount := range map[string]decimal.Decimal{"treasury": toTreasury, "burn": toBurn} {
		if amount.Sub(half).Abs().GreaterThan(splitTol) {
			return Verification{}, fmt.Errorf(
				"%s transfer %s outside tolerance of half the expected amount %s", name, amount, half)
		}
	}

	return Verification{ExpectedTokenAmount: expected, PaidTokenAmount: total}, nil
}
