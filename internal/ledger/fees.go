package ledger

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"log"

	"curvefund/internal/domain"
	"curvefund/internal/solana"
)

// ErrLedgerUnavailable is returned when the ledger endpoint cannot answer.
// Callers must surface this as a degraded state, never as zero fees: a
// campaign with real funds raised must not report zero on an outage.
var ErrLedgerUnavailable = errors.New("ledger unavailable")

// Pool account layout prefix: discriminator(8) | total trading base fee
// u64 LE | total trading quote fee u64 LE | ... . Offsets are part of the
// program's account contract.
const (
	baseFeeOffset  = 8
	quoteFeeOffset = baseFeeOffset + 8
	poolDataMinLen = quoteFeeOffset + 8
)

// Reader fetches accumulated trading fees for a token's bonding-curve pool.
type Reader struct {
	rpc        solana.RPCClient
	quoteMint  string
	poolConfig string
	logger     *log.Logger
}

// NewReader creates a fee reader bound to one network's quote mint and
// pool config key.
func NewReader(rpc solana.RPCClient, quoteMint, poolConfig string, logger *log.Logger) *Reader {
	return &Reader{
		rpc:        rpc,
		quoteMint:  quoteMint,
		poolConfig: poolConfig,
		logger:     logger,
	}
}

// FetchFees returns the accumulated trading-fee counters for tokenMint's
// pool. A pool that does not exist (token never traded) or a malformed
// mint yields a zero snapshot, not an error; an unreachable ledger yields
// ErrLedgerUnavailable.
func (r *Reader) FetchFees(ctx context.Context, tokenMint string) (domain.FeeSnapshot, error) {
	addr, err := DerivePoolAddress(r.quoteMint, tokenMint, r.poolConfig)
	if err != nil {
		// Malformed mint: no pool can exist for it.
		r.logger.Printf("fee lookup skipped for mint %s: %v", tokenMint, err)
		return domain.FeeSnapshot{}, nil
	}

	info, err := r.rpc.GetAccountInfo(ctx, addr)
	if err != nil {
		return domain.FeeSnapshot{}, fmt.Errorf("%w: get pool account %s: %v", ErrLedgerUnavailable, addr, err)
	}
	if info == nil {
		// Pool not created yet: a normal state for untraded tokens.
		return domain.FeeSnapshot{}, nil
	}

	if len(info.Data) < poolDataMinLen {
		return domain.FeeSnapshot{}, fmt.Errorf("%w: pool account %s data too short: %d bytes", ErrLedgerUnavailable, addr, len(info.Data))
	}

	return domain.FeeSnapshot{
		BaseFee:  binary.LittleEndian.Uint64(info.Data[baseFeeOffset:]),
		QuoteFee: binary.LittleEndian.Uint64(info.Data[quoteFeeOffset:]),
	}, nil
}
