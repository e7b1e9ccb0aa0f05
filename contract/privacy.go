package contract

import (
	eth "github.com/ethereum/go-ethereum/common"

	"github.com/quickex-network/xraynode/common"
)

// SetPrivacy overwrites or creates the per-account privacy flag and always
// succeeds. There is deliberately no ownership check on owner: any caller
// may set any account's flag, matching the source contract's behavior. The
// asymmetry with the admin path is preserved, not corrected.
func (c *Contract) SetPrivacy(owner eth.Address, enabled bool) error {
	if err := c.store.StorePrivacyFlag(owner, enabled); err != nil {
		return err
	}
	c.events.PrivacyToggled(common.PrivacyToggledEvent{
		Owner:     owner,
		Enabled:   enabled,
		Timestamp: c.TimeNow().Unix(),
	})
	return nil
}

// GetPrivacy returns the stored flag, or false when no entry exists.
func (c *Contract) GetPrivacy(owner eth.Address) (bool, error) {
	return c.store.RetrievePrivacyFlag(owner)
}
