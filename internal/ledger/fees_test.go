package ledger

import (
	"context"
	"encoding/binary"
	"errors"
	"io"
	"log"
	"testing"

	"curvefund/internal/domain"
	"curvefund/internal/solana"
	"curvefund/internal/solana/stub"
)

func testLogger() *log.Logger {
	return log.New(io.Discard, "", 0)
}

// poolAccountData builds pool account bytes with the given fee counters.
func poolAccountData(baseFee, quoteFee uint64) []byte {
	data := make([]byte, poolDataMinLen+64)
	binary.LittleEndian.PutUint64(data[baseFeeOffset:], baseFee)
	binary.LittleEndian.PutUint64(data[quoteFeeOffset:], quoteFee)
	return data
}

func TestReader_FetchFees(t *testing.T) {
	rpc := stub.NewRPCClient()
	reader := NewReader(rpc, testQuoteMint, testPoolConfig, testLogger())

	addr, err := DerivePoolAddress(testQuoteMint, testBaseMint, testPoolConfig)
	if err != nil {
		t.Fatalf("DerivePoolAddress: %v", err)
	}
	rpc.Accounts[addr] = &solana.AccountInfo{
		Owner: DBCProgramID,
		Data:  poolAccountData(50, 2_000_000),
	}

	fees, err := reader.FetchFees(context.Background(), testBaseMint)
	if err != nil {
		t.Fatalf("FetchFees: %v", err)
	}

	if fees.BaseFee != 50 {
		t.Errorf("BaseFee = %d, want 50", fees.BaseFee)
	}
	if fees.QuoteFee != 2_000_000 {
		t.Errorf("QuoteFee = %d, want 2000000", fees.QuoteFee)
	}
	if total := fees.Total(); total != 52 {
		t.Errorf("Total = %v, want 52", total)
	}
}

func TestReader_FetchFees_NoPoolAccount(t *testing.T) {
	rpc := stub.NewRPCClient()
	reader := NewReader(rpc, testQuoteMint, testPoolConfig, testLogger())

	// Token never traded: no pool account exists.
	fees, err := reader.FetchFees(context.Background(), testBaseMint)
	if err != nil {
		t.Fatalf("FetchFees: %v", err)
	}
	if fees != (domain.FeeSnapshot{}) {
		t.Errorf("expected zero snapshot, got %+v", fees)
	}
}

func TestReader_FetchFees_MalformedMint(t *testing.T) {
	rpc := stub.NewRPCClient()
	reader := NewReader(rpc, testQuoteMint, testPoolConfig, testLogger())

	fees, err := reader.FetchFees(context.Background(), "not-a-mint")
	if err != nil {
		t.Fatalf("FetchFees: %v", err)
	}
	if fees != (domain.FeeSnapshot{}) {
		t.Errorf("expected zero snapshot, got %+v", fees)
	}
}

func TestReader_FetchFees_LedgerDown(t *testing.T) {
	rpc := stub.NewRPCClient()
	rpc.Err = errors.New("connection refused")
	reader := NewReader(rpc, testQuoteMint, testPoolConfig, testLogger())

	_, err := reader.FetchFees(context.Background(), testBaseMint)
	if !errors.Is(err, ErrLedgerUnavailable) {
		t.Errorf("expected ErrLedgerUnavailable, got %v", err)
	}
}

func TestReader_FetchFees_TruncatedAccount(t *testing.T) {
	rpc := stub.NewRPCClient()
	reader := NewReader(rpc, testQuoteMint, testPoolConfig, testLogger())

	addr, err := DerivePoolAddress(testQuoteMint, testBaseMint, testPoolConfig)
	if err != nil {
		t.Fatalf("DerivePoolAddress: %v", err)
	}
	rpc.Accounts[addr] = &solana.AccountInfo{Data: []byte{1, 2, 3}}

	_, err = reader.FetchFees(context.Background(), testBaseMint)
	if !errors.Is(err, ErrLedgerUnavailable) {
		t.Errorf("expected ErrLedgerUnavailable for truncated data, got %v", err)
	}
}
