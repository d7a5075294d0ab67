package core

import (
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"

	"basepulse/core/events"
	"basepulse/core/state"
)

var genesisAppliedKey = []byte("genesis/applied")

// ApplyGenesis credits the initial balance allocation exactly once per
// database. It reports whether the allocation was applied; a node restarted
// on an existing data directory is a no-op.
func (n *Node) ApplyGenesis(alloc map[common.Address]*big.Int) (bool, error) {
	applied := false
	err := n.write(func(txn *state.Txn, buf *events.Buffer) error {
		ok, err := txn.KVGet(genesisAppliedKey, nil)
		if err != nil {
			return err
		}
		if ok {
			return nil
		}
		for addr, amount := range alloc {
			if amount == nil || amount.Sign() < 0 {
				return fmt.Errorf("core: invalid genesis allocation for %s", addr.Hex())
			}
			account, err := txn.GetAccount(addr)
			if err != nil {
				return err
			}
			account.Balance = new(big.Int).Add(account.Balance, amount)
			if err := txn.PutAccount(addr, account); err != nil {
				return err
			}
		}
		applied = true
		return txn.KVPut(genesisAppliedKey, true)
	})
	if err != nil {
		return false, err
	}
	return applied, nil
}
