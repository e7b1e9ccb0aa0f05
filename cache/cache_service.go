package cache

import (
	"fmt"
	"time"

	eth "github.com/ethereum/go-ethereum/common"
	"github.com/patrickmn/go-cache"

	"github.com/quickex-network/xraynode/common"
)

const signerSigTTL = 15 * time.Minute

// CacheService keeps two short-lived maps: signatures already seen on
// privileged requests (replay protection) and a read cache for privacy
// flags.
type CacheService struct {
	signerCache  *cache.Cache
	privacyCache *cache.Cache
}

func New() *CacheService {
	cacheService := CacheService{}
	return &cacheService
}

func (*CacheService) ID() string {
	return common.CACHE_SERVICE_NAME
}

func (c *CacheService) Start() error {
	c.signerCache = cache.New(cache.NoExpiration, time.Minute)
	c.privacyCache = cache.New(5*time.Minute, time.Minute)
	return nil
}

func (c *CacheService) Stop() error {
	return nil
}

func (c *CacheService) IsRunning() bool {
	return c.signerCache != nil
}

func (c *CacheService) Call(method string, args ...interface{}) (interface{}, error) {
	switch method {
	case "signer_sig_exists":

		var args0 string
		_ = common.CastOrUnmarshal(args[0], &args0)

		exists := c.signerSigExists(args0)
		return exists, nil
	case "record_signer_sig":

		var args0 string
		_ = common.CastOrUnmarshal(args[0], &args0)

		return nil, c.recordSignerSig(args0)
	case "cache_privacy_flag":

		var owner eth.Address
		var enabled bool
		_ = common.CastOrUnmarshal(args[0], &owner)
		_ = common.CastOrUnmarshal(args[1], &enabled)

		c.cachePrivacyFlag(owner, enabled)
		return nil, nil
	case "cached_privacy_flag":

		var owner eth.Address
		_ = common.CastOrUnmarshal(args[0], &owner)

		enabled, found := c.cachedPrivacyFlag(owner)
		return common.PrivacyFlagLookup{Enabled: enabled, Found: found}, nil
	}
	return nil, fmt.Errorf("cache service method %v not found", method)
}

func (c *CacheService) signerSigExists(signature string) (exists bool) {
	_, exists = c.signerCache.Get(signature)
	return
}

func (c *CacheService) recordSignerSig(signature string) error {
	// Entries must outlive the 10 minute freshness window on privileged
	// messages, or a captured signature becomes replayable once evicted.
	return c.signerCache.Add(signature, true, signerSigTTL)
}

func (c *CacheService) cachePrivacyFlag(owner eth.Address, enabled bool) {
	c.privacyCache.Set(owner.Hex(), enabled, cache.DefaultExpiration)
}

func (c *CacheService) cachedPrivacyFlag(owner eth.Address) (enabled bool, found bool) {
	value, found := c.privacyCache.Get(owner.Hex())
	if !found {
		return false, false
	}
	enabled = value.(bool)
	return enabled, true
}
