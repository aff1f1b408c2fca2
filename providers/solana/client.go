package solana

import (
	"context"
	"fmt"
	"os"
	"time"

	"pinghunt/services/hintverify"

	solanago "github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/programs/system"
	"github.com/gagliardetto/solana-go/rpc"
	"github.com/shopspring/decimal"
)

// Client wraps the Solana RPC endpoint for the two on-chain operations
// the service performs: sending the treasury funding transfer and
// inspecting a referenced transaction's token balance deltas.
// Implements funding.TreasurySender and hintverify.TxFetcher.
type Client struct {
	rpc      *rpc.Client
	treasury solanago.PrivateKey
	hintMint solanago.PublicKey
	timeout  time.Duration
}

func NewClient() (*Client, error) {
	endpoint := os.Getenv("SOLANA_RPC_URL")
	if endpoint == "" {
		endpoint = rpc.MainNetBeta_RPC
	}

	treasury, err := solanago.PrivateKeyFromBase58(os.Getenv("TREASURY_SECRET_KEY"))
	if err != nil {
		return nil, fmt.Errorf("parse TREASURY_SECRET_KEY: %w", err)
	}

	hintMint, err := solanago.PublicKeyFromBase58(os.Getenv("HINT_TOKEN_MINT"))
	if err != nil {
		return nil, fmt.Errorf("parse HINT_TOKEN_MINT: %w", err)
	}

	return &Client{
		rpc:      rpc.New(endpoint),
		treasury: treasury,
		hintMint: hintMint,
		timeout:  30 * time.Second,
	}, nil
}

// SendTreasuryTransfer moves lamports from the treasury to a prize
// wallet and returns the transaction signature.
func (c *Client) SendTreasuryTransfer(ctx context.Context, destination string, lamports int64) (string, error) {
	dest, err := solanago.PublicKeyFromBase58(destination)
	if err != nil {
		return "", fmt.Errorf("parse destination %s: %w", destination, err)
	}
	if lamports <= 0 {
		return "", fmt.Errorf("invalid transfer amount %d", lamports)
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	recent, err := c.rpc.GetLatestBlockhash(ctx, rpc.CommitmentFinalized)
	if err != nil {
		return "", fmt.Errorf("get latest blockhash: %w", err)
	}

	tx, err := solanago.NewTransaction(
		[]solanago.Instruction{
			system.NewTransferInstruction(
				uint64(lamports),
				c.treasury.PublicKey(),
				dest,
			).Build(),
		},
		recent.Value.Blockhash,
		solanago.TransactionPayer(c.treasury.PublicKey()),
	)
	if err != nil {
		return "", fmt.Errorf("build transfer transaction: %w", err)
	}

	_, err = tx.Sign(func(key solanago.PublicKey) *solanago.PrivateKey {
		if key.Equals(c.treasury.PublicKey()) {
			return &c.treasury
		}
		return nil
	})
	if err != nil {
		return "", fmt.Errorf("sign transfer transaction: %w", err)
	}

	sig, err := c.rpc.SendTransaction(ctx, tx)
	if err != nil {
		return "", fmt.Errorf("send transfer transaction: %w", err)
	}

	return sig.String(), nil
}

// TokenDeltas fetches a transaction and reduces its pre/post token
// balances to per-owner net changes for the hint mint.
func (c *Client) TokenDeltas(ctx context.Context, txRef string) ([]hintverify.TokenDelta, error) {
	sig, err := solanago.SignatureFromBase58(txRef)
	if err != nil {
		return nil, fmt.Errorf("parse transaction reference: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	maxVersion := uint64(0)
	out, err := c.rpc.GetTransaction(ctx, sig, &rpc.GetTransactionOpts{
		Encoding:                       solanago.EncodingBase64,
		Commitment:                     rpc.CommitmentConfirmed,
		MaxSupportedTransactionVersion: &maxVersion,
	})
	if err != nil {
		return nil, fmt.Errorf("get transaction: %w", err)
	}
	if out == nil || out.Meta == nil {
		return nil, fmt.Errorf("transaction has no metadata")
	}
	if out.Meta.Err != nil {
		return nil, fmt.Errorf("transaction failed on-chain: %v", out.Meta.Err)
	}

	byOwner := map[string]decimal.Decimal{}
	add := func(balances []rpc.TokenBalance, sign int64) error {
		for _, b := range balances {
			if !b.Mint.Equals(c.hintMint) || b.Owner == nil || b.UiTokenAmount == nil {
				continue
			}
			raw, err := decimal.NewFromString(b.UiTokenAmount.Amount)
			if err != nil {
				return fmt.Errorf("parse token amount %q: %w", b.UiTokenAmount.Amount, err)
			}
			amount := raw.Shift(-int32(b.UiTokenAmount.Decimals)).Mul(decimal.NewFromInt(sign))
			owner := b.Owner.String()
			byOwner[owner] = byOwner[owner].Add(amount)
		}
		return nil
	}
	if err := add(out.Meta.PostTokenBalances, 1); err != nil {
		return nil, err
	}
	if err := add(out.Meta.PreTokenBalances, -1); err != nil {
		return nil, err
	}

	deltas := make([]hintverify.TokenDelta, 0, len(byOwner))
	for owner, amount := range byOwner {
		if amount.IsZero() {
			continue
		}
		deltas = append(deltas, hintverify.TokenDelta{Owner: owner, Amount: amount})
	}
	return deltas, nil
}
