package funding

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"pinghunt/database"
	"pinghunt/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

type fakeSender struct {
	calls int
	sig   string
	err   error
}

func (f *fakeSender) SendTreasuryTransfer(ctx context.Context, destination string, lamports int64) (string, error) {
	f.calls++
	if f.err != nil {
		return "", f.err
	}
	return f.sig, nil
}

func testDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "funding.db")), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))
	return db
}

func useSender(t *testing.T, s TreasurySender) {
	t.Helper()
	prev := Sender
	Sender = s
	t.Cleanup(func() { Sender = prev })
}

func pendingPing(t *testing.T, db *gorm.DB, lamports int64) *models.Ping {
	t.Helper()
	p := &models.Ping{
		ClaimType:       models.ClaimTypeNFC,
		ClaimStatus:     models.ClaimStatusPending,
		PrizeLamports:   lamports,
		WalletPublicKey: "8Zp5p8pXLZqFzQy6tS4N2bqW7rDkCqUvYxJhGmA3fEdc",
		FundStatus:      models.FundStatusPending,
	}
	require.NoError(t, db.Create(p).Error)
	return p
}

func TestFundZeroAmountSkips(t *testing.T) {
	db := testDB(t)
	sender := &fakeSender{sig: "sig"}
	useSender(t, sender)

	p := pendingPing(t, db, 0)

	out, err := Fund(context.Background(), db, p)
	require.NoError(t, err)
	assert.Equal(t, models.FundStatusSkipped, out.Status)
	assert.Zero(t, sender.calls)

	var reloaded models.Ping
	require.NoError(t, db.First(&reloaded, p.ID).Error)
	assert.Equal(t, models.FundStatusSkipped, reloaded.FundStatus)

	var count int64
	require.NoError(t, db.Model(&models.TransferLog{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestFundSuccess(t *testing.T) {
	db := testDB(t)
	sender := &fakeSender{sig: "funded-sig"}
	useSender(t, sender)

	p := pendingPing(t, db, 1_000_000_000)

	out, err := Fund(context.Background(), db, p)
	require.NoError(t, err)
	assert.Equal(t, models.FundStatusSuccess, out.Status)
	assert.Equal(t, "funded-sig", out.TxSignature)
	assert.Equal(t, 1, sender.calls)

	var reloaded models.Ping
	require.NoError(t, db.First(&reloaded, p.ID).Error)
	assert.Equal(t, models.FundStatusSuccess, reloaded.FundStatus)
	assert.Equal(t, "funded-sig", reloaded.FundTxSig)

	var transfer models.TransferLog
	require.NoError(t, db.Where("ping_id = ?", p.ID).First(&transfer).Error)
	assert.Equal(t, models.FundStatusSuccess, transfer.Status)
	assert.Equal(t, int64(1_000_000_000), transfer.Lamports)
}

func TestFundIdempotentSecondCall(t *testing.T) {
	db := testDB(t)
	sender := &fakeSender{sig: "once-sig"}
	useSender(t, sender)

	p := pendingPing(t, db, 500_000_000)

	_, err := Fund(context.Background(), db, p)
	require.NoError(t, err)

	out, err := Fund(context.Background(), db, p)
	require.NoError(t, err)
	assert.Equal(t, models.FundStatusSuccess, out.Status)
	assert.Equal(t, "once-sig", out.TxSignature)

	// exactly one transfer executed, exactly one log row
	assert.Equal(t, 1, sender.calls)
	var count int64
	require.NoError(t, db.Model(&models.TransferLog{}).Where("ping_id = ?", p.ID).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestFundPerPingCap(t *testing.T) {
	db := testDB(t)
	sender := &fakeSender{sig: "sig"}
	useSender(t, sender)
	t.Setenv("FUND_PER_PING_CAP", "100")

	p := pendingPing(t, db, 200)

	_, err := Fund(context.Background(), db, p)
	require.ErrorIs(t, err, ErrPerPingCap)
	assert.Zero(t, sender.calls)
}

func TestFundDailyCap(t *testing.T) {
	db := testDB(t)
	sender := &fakeSender{sig: "sig"}
	useSender(t, sender)
	t.Setenv("FUND_DAILY_CAP", "1000")

	// 900 lamports already funded today
	require.NoError(t, db.Create(&models.TransferLog{
		PingID:       999,
		TransferType: models.TransferTypeFunding,
		Lamports:     900,
		Status:       models.FundStatusSuccess,
	}).Error)

	p := pendingPing(t, db, 200)

	_, err := Fund(context.Background(), db, p)
	require.ErrorIs(t, err, ErrDailyCap)
	assert.Zero(t, sender.calls)

	// under the cap goes through
	q := pendingPing(t, db, 100)
	out, err := Fund(context.Background(), db, q)
	require.NoError(t, err)
	assert.Equal(t, models.FundStatusSuccess, out.Status)
}

func TestFundFailureThenHumanRetrigger(t *testing.T) {
	db := testDB(t)
	sender := &fakeSender{err: errors.New("rpc unavailable")}
	useSender(t, sender)

	p := pendingPing(t, db, 100)

	_, err := Fund(context.Background(), db, p)
	require.Error(t, err)
	require.NotErrorIs(t, err, ErrAlreadyInFlight)

	var reloaded models.Ping
	require.NoError(t, db.First(&reloaded, p.ID).Error)
	assert.Equal(t, models.FundStatusFailed, reloaded.FundStatus)

	var transfer models.TransferLog
	require.NoError(t, db.Where("ping_id = ?", p.ID).First(&transfer).Error)
	assert.Equal(t, models.FundStatusFailed, transfer.Status)

	// a second approval reclaims the failed row and transfers
	sender.err = nil
	sender.sig = "retry-sig"

	out, err := Fund(context.Background(), db, p)
	require.NoError(t, err)
	assert.Equal(t, models.FundStatusSuccess, out.Status)
	assert.Equal(t, "retry-sig", out.TxSignature)
	assert.Equal(t, 2, sender.calls)

	var count int64
	require.NoError(t, db.Model(&models.TransferLog{}).Where("ping_id = ?", p.ID).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestFundPendingRowIsInFlight(t *testing.T) {
	db := testDB(t)
	sender := &fakeSender{sig: "sig"}
	useSender(t, sender)

	p := pendingPing(t, db, 100)
	require.NoError(t, db.Create(&models.TransferLog{
		PingID:       p.ID,
		TransferType: models.TransferTypeFunding,
		Lamports:     100,
		Status:       models.FundStatusPending,
	}).Error)

	_, err := Fund(context.Background(), db, p)
	require.ErrorIs(t, err, ErrAlreadyInFlight)
	assert.Zero(t, sender.calls)
}

func TestFundNoSenderConfigured(t *testing.T) {
	db := testDB(t)
	useSender(t, nil)

	p := pendingPing(t, db, 100)

	_, err := Fund(context.Background(), db, p)
	require.ErrorIs(t, err, ErrNotConfigured)
}
