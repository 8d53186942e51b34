package solana

import "context"

// RPCClient defines the Solana RPC HTTP interface this service consumes:
// read-only account lookups against the ledger.
type RPCClient interface {
	// GetAccountInfo retrieves account info by public key. Returns
	// (nil, nil) when the account does not exist.
	GetAccountInfo(ctx context.Context, pubkey string) (*AccountInfo, error)
}

// AccountInfo represents Solana account information.
type AccountInfo struct {
	Lamports   uint64
	Owner      string
	Data       []byte // raw account data, decoded from base64
	Executable bool
	RentEpoch  uint64
}
