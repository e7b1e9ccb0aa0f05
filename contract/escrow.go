package contract

import (
	eth "github.com/ethereum/go-ethereum/common"

	"github.com/quickex-network/xraynode/common"
)

// CreateEscrow is a placeholder: it allocates the next escrow ID and stores
// a two-party record. No locking, release or dispute flow exists; the amount
// is accepted for interface compatibility and not recorded.
func (c *Contract) CreateEscrow(from eth.Address, to eth.Address, _ uint64) (uint64, error) {
	id, err := c.store.NextEscrowID()
	if err != nil {
		return 0, err
	}
	record := common.EscrowRecord{ID: id, From: from, To: to}
	if err := c.store.StoreEscrowRecord(record); err != nil {
		return 0, err
	}
	return id, nil
}

// GetEscrow returns a stored escrow record.
func (c *Contract) GetEscrow(id uint64) (common.EscrowRecord, error) {
	return c.store.RetrieveEscrowRecord(id)
}

// HealthCheck reports that the contract core is operational.
func (c *Contract) HealthCheck() bool {
	return true
}
