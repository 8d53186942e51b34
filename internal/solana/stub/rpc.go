package stub

import (
	"context"

	"curvefund/internal/solana"
)

// RPCClient implements solana.RPCClient for testing. Accounts maps pubkey
// to account info; a missing key behaves like a nonexistent account. Err,
// when set, is returned from every call to simulate an unreachable endpoint.
type RPCClient struct {
	Accounts map[string]*solana.AccountInfo
	Err      error
}

// NewRPCClient creates a new stub RPC client.
func NewRPCClient() *RPCClient {
	return &RPCClient{
		Accounts: make(map[string]*solana.AccountInfo),
	}
}

// GetAccountInfo retrieves account info from the stub store.
func (c *RPCClient) GetAccountInfo(_ context.Context, pubkey string) (*solana.AccountInfo, error) {
	if c.Err != nil {
		return nil, c.Err
	}
	return c.Accounts[pubkey], nil
}
