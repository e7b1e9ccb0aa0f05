package rpc

import (
	"context"
	"crypto/ecdsa"
	"math/big"
	"strconv"
	"testing"
	"time"

	eth "github.com/ethereum/go-ethereum/common"
	ethcrypto "github.com/ethereum/go-ethereum/crypto"
	fastjson "github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quickex-network/xraynode/cache"
	"github.com/quickex-network/xraynode/common"
	"github.com/quickex-network/xraynode/config"
	"github.com/quickex-network/xraynode/contract"
	"github.com/quickex-network/xraynode/crypto"
	"github.com/quickex-network/xraynode/db"
	"github.com/quickex-network/xraynode/eventbus"
	"github.com/quickex-network/xraynode/events"
)

// newTestNode wires db, cache, events and contract services on a fresh bus,
// starting them synchronously so handlers can be exercised without the full
// node lifecycle.
func newTestNode(t *testing.T) eventbus.Bus {
	t.Helper()
	config.GlobalConfig = &config.Config{BasePath: t.TempDir()}

	bus := eventbus.New()
	registry := common.NewServiceRegistry(bus)
	registry.SetupMethodRouting()

	services := []common.IService{
		db.New(),
		cache.New(),
		events.New(bus),
		contract.New(bus),
	}
	for _, s := range services {
		require.NoError(t, registry.RegisterService(s))
		require.NoError(t, s.Start())
	}
	t.Cleanup(func() { _ = registry.StopAll() })
	return bus
}

func rawParams(t *testing.T, params interface{}) *fastjson.RawMessage {
	t.Helper()
	data, err := fastjson.Marshal(params)
	require.NoError(t, err)
	raw := fastjson.RawMessage(data)
	return &raw
}

func signedPauseParams(t *testing.T, key *ecdsa.PrivateKey, paused bool, timestamp time.Time) SetPausedParams {
	t.Helper()
	message := PauseSwitchMessage{
		Timestamp: strconv.FormatInt(timestamp.Unix(), 10),
		Message:   SetPausedMethod,
		Paused:    paused,
	}
	sig := crypto.SignData([]byte(message.String()), key)
	return SetPausedParams{PauseSwitchMessage: message, Signature: sig.Raw}
}

func signedAdminParams(t *testing.T, key *ecdsa.PrivateKey, newAdmin eth.Address, timestamp time.Time) SetAdminParams {
	t.Helper()
	message := AdminTransferMessage{
		Timestamp: strconv.FormatInt(timestamp.Unix(), 10),
		Message:   SetAdminMethod,
		NewAdmin:  newAdmin,
	}
	sig := crypto.SignData([]byte(message.String()), key)
	return SetAdminParams{AdminTransferMessage: message, Signature: sig.Raw}
}

func TestInitializeAndAdminFlow(t *testing.T) {
	bus := newTestNode(t)
	ctx := context.Background()

	adminKey, err := ethcrypto.GenerateKey()
	require.NoError(t, err)
	adminAddr := ethcrypto.PubkeyToAddress(adminKey.PublicKey)

	outsiderKey, err := ethcrypto.GenerateKey()
	require.NoError(t, err)

	// pause before initialize must fail with NotInitialized
	_, rpcErr := SetPausedHandler{bus: bus, TimeNow: time.Now}.ServeJSONRPC(ctx,
		rawParams(t, signedPauseParams(t, adminKey, true, time.Now())))
	require.NotNil(t, rpcErr)
	assert.EqualValues(t, -32002, rpcErr.Code)

	// reading the admin before initialize is not an error, just absent
	adminResult, rpcErr := GetAdminHandler{bus}.ServeJSONRPC(ctx, rawParams(t, GetAdminParams{}))
	require.Nil(t, rpcErr)
	assert.False(t, adminResult.(GetAdminResult).Exists)
	assert.Empty(t, adminResult.(GetAdminResult).Admin)

	result, rpcErr := InitializeHandler{bus}.ServeJSONRPC(ctx, rawParams(t, InitializeParams{Admin: adminAddr}))
	require.Nil(t, rpcErr)
	assert.Equal(t, adminAddr.String(), result.(InitializeResult).Admin)

	// a second initialize must fail regardless of payload
	_, rpcErr = InitializeHandler{bus}.ServeJSONRPC(ctx, rawParams(t, InitializeParams{Admin: adminAddr}))
	require.NotNil(t, rpcErr)
	assert.EqualValues(t, -32001, rpcErr.Code)

	adminResult, rpcErr = GetAdminHandler{bus}.ServeJSONRPC(ctx, rawParams(t, GetAdminParams{}))
	require.Nil(t, rpcErr)
	assert.True(t, adminResult.(GetAdminResult).Exists)
	assert.Equal(t, adminAddr.String(), adminResult.(GetAdminResult).Admin)

	// a signature from anyone but the admin is rejected after recovery
	_, rpcErr = SetPausedHandler{bus: bus, TimeNow: time.Now}.ServeJSONRPC(ctx,
		rawParams(t, signedPauseParams(t, outsiderKey, true, time.Now())))
	require.NotNil(t, rpcErr)
	assert.EqualValues(t, -32003, rpcErr.Code)

	pausedResult, rpcErr := IsPausedHandler{bus}.ServeJSONRPC(ctx, rawParams(t, IsPausedParams{}))
	require.Nil(t, rpcErr)
	assert.False(t, pausedResult.(IsPausedResult).Paused)

	params := signedPauseParams(t, adminKey, true, time.Now())
	result, rpcErr = SetPausedHandler{bus: bus, TimeNow: time.Now}.ServeJSONRPC(ctx, rawParams(t, params))
	require.Nil(t, rpcErr)
	assert.True(t, result.(SetPausedResult).Paused)

	pausedResult, rpcErr = IsPausedHandler{bus}.ServeJSONRPC(ctx, rawParams(t, IsPausedParams{}))
	require.Nil(t, rpcErr)
	assert.True(t, pausedResult.(IsPausedResult).Paused)

	// replaying the exact same signed request is rejected by the signer cache
	_, rpcErr = SetPausedHandler{bus: bus, TimeNow: time.Now}.ServeJSONRPC(ctx, rawParams(t, params))
	require.NotNil(t, rpcErr)
}

func TestSetAdminTransfersAuthority(t *testing.T) {
	bus := newTestNode(t)
	ctx := context.Background()

	oldKey, err := ethcrypto.GenerateKey()
	require.NoError(t, err)
	oldAddr := ethcrypto.PubkeyToAddress(oldKey.PublicKey)
	newKey, err := ethcrypto.GenerateKey()
	require.NoError(t, err)
	newAddr := ethcrypto.PubkeyToAddress(newKey.PublicKey)

	_, rpcErr := InitializeHandler{bus}.ServeJSONRPC(ctx, rawParams(t, InitializeParams{Admin: oldAddr}))
	require.Nil(t, rpcErr)

	result, rpcErr := SetAdminHandler{bus: bus, TimeNow: time.Now}.ServeJSONRPC(ctx,
		rawParams(t, signedAdminParams(t, oldKey, newAddr, time.Now())))
	require.Nil(t, rpcErr)
	assert.Equal(t, newAddr.String(), result.(SetAdminResult).NewAdmin)

	// the old admin lost all capability with the transfer
	_, rpcErr = SetPausedHandler{bus: bus, TimeNow: time.Now}.ServeJSONRPC(ctx,
		rawParams(t, signedPauseParams(t, oldKey, true, time.Now())))
	require.NotNil(t, rpcErr)
	assert.EqualValues(t, -32003, rpcErr.Code)

	_, rpcErr = SetPausedHandler{bus: bus, TimeNow: time.Now}.ServeJSONRPC(ctx,
		rawParams(t, signedPauseParams(t, newKey, true, time.Now())))
	require.Nil(t, rpcErr)
}

func TestSetPausedRejectsStaleAndMislabeled(t *testing.T) {
	bus := newTestNode(t)
	ctx := context.Background()

	adminKey, err := ethcrypto.GenerateKey()
	require.NoError(t, err)
	adminAddr := ethcrypto.PubkeyToAddress(adminKey.PublicKey)
	_, rpcErr := InitializeHandler{bus}.ServeJSONRPC(ctx, rawParams(t, InitializeParams{Admin: adminAddr}))
	require.Nil(t, rpcErr)

	stale := signedPauseParams(t, adminKey, true, time.Now().Add(-11*time.Minute))
	_, rpcErr = SetPausedHandler{bus: bus, TimeNow: time.Now}.ServeJSONRPC(ctx, rawParams(t, stale))
	require.NotNil(t, rpcErr)
	assert.EqualValues(t, -32602, rpcErr.Code)

	// a forward-dated message would otherwise stay replayable indefinitely
	future := signedPauseParams(t, adminKey, true, time.Now().Add(5*time.Minute))
	_, rpcErr = SetPausedHandler{bus: bus, TimeNow: time.Now}.ServeJSONRPC(ctx, rawParams(t, future))
	require.NotNil(t, rpcErr)
	assert.EqualValues(t, -32602, rpcErr.Code)

	mislabeled := signedPauseParams(t, adminKey, true, time.Now())
	mislabeled.PauseSwitchMessage.Message = "SomethingElse"
	_, rpcErr = SetPausedHandler{bus: bus, TimeNow: time.Now}.ServeJSONRPC(ctx, rawParams(t, mislabeled))
	require.NotNil(t, rpcErr)
	assert.EqualValues(t, -32602, rpcErr.Code)
}

func TestPrivacyHandlers(t *testing.T) {
	bus := newTestNode(t)
	ctx := context.Background()
	owner := eth.HexToAddress("0x1111111111111111111111111111111111111111")

	// reads default to disabled, writes need no signature
	result, rpcErr := GetPrivacyHandler{bus}.ServeJSONRPC(ctx, rawParams(t, GetPrivacyParams{Owner: owner}))
	require.Nil(t, rpcErr)
	assert.False(t, result.(GetPrivacyResult).Enabled)

	setResult, rpcErr := SetPrivacyHandler{bus}.ServeJSONRPC(ctx, rawParams(t, SetPrivacyParams{Owner: owner, Enabled: true}))
	require.Nil(t, rpcErr)
	assert.True(t, setResult.(SetPrivacyResult).Enabled)

	result, rpcErr = GetPrivacyHandler{bus}.ServeJSONRPC(ctx, rawParams(t, GetPrivacyParams{Owner: owner}))
	require.Nil(t, rpcErr)
	assert.True(t, result.(GetPrivacyResult).Enabled)
}

func TestCommitmentHandlers(t *testing.T) {
	ctx := context.Background()
	owner := eth.HexToAddress("0x1111111111111111111111111111111111111111")
	amount := big.NewInt(1000000)
	salt := []byte("random_salt")

	created, rpcErr := CreateAmountCommitmentHandler{}.ServeJSONRPC(ctx,
		rawParams(t, CreateAmountCommitmentParams{Owner: owner, Amount: *amount, Salt: salt}))
	require.Nil(t, rpcErr)
	digestHex := created.(CreateAmountCommitmentResult).Commitment

	verified, rpcErr := VerifyAmountCommitmentHandler{}.ServeJSONRPC(ctx,
		rawParams(t, VerifyAmountCommitmentParams{Commitment: digestHex, Owner: owner, Amount: *amount, Salt: salt}))
	require.Nil(t, rpcErr)
	assert.True(t, verified.(VerifyAmountCommitmentResult).Valid)

	verified, rpcErr = VerifyAmountCommitmentHandler{}.ServeJSONRPC(ctx,
		rawParams(t, VerifyAmountCommitmentParams{Commitment: digestHex, Owner: owner, Amount: *amount, Salt: []byte("wrong_salt")}))
	require.Nil(t, rpcErr)
	assert.False(t, verified.(VerifyAmountCommitmentResult).Valid)

	_, rpcErr = VerifyAmountCommitmentHandler{}.ServeJSONRPC(ctx,
		rawParams(t, VerifyAmountCommitmentParams{Commitment: "abcd", Owner: owner, Amount: *amount, Salt: salt}))
	require.NotNil(t, rpcErr)
}

func TestEscrowAndHealthHandlers(t *testing.T) {
	bus := newTestNode(t)
	ctx := context.Background()
	alice := eth.HexToAddress("0x1111111111111111111111111111111111111111")
	bob := eth.HexToAddress("0x2222222222222222222222222222222222222222")

	result, rpcErr := CreateEscrowHandler{bus}.ServeJSONRPC(ctx,
		rawParams(t, CreateEscrowParams{From: alice, To: bob, Amount: 1000000}))
	require.Nil(t, rpcErr)
	assert.EqualValues(t, 1, result.(CreateEscrowResult).EscrowID)

	health, rpcErr := HealthHandler{}.ServeJSONRPC(ctx, nil)
	require.Nil(t, rpcErr)
	assert.Equal(t, "Ok", health.(HealthResult).Status)
}

func TestAccountEventsHandler(t *testing.T) {
	bus := newTestNode(t)
	ctx := context.Background()
	owner := eth.HexToAddress("0x1111111111111111111111111111111111111111")

	_, rpcErr := SetPrivacyHandler{bus}.ServeJSONRPC(ctx, rawParams(t, SetPrivacyParams{Owner: owner, Enabled: true}))
	require.Nil(t, rpcErr)

	result, rpcErr := AccountEventsHandler{bus}.ServeJSONRPC(ctx, rawParams(t, AccountEventsParams{Account: owner}))
	require.Nil(t, rpcErr)
	records := result.(AccountEventsResult).Events
	require.Len(t, records, 1)
	assert.Equal(t, common.PrivacyToggledKind, records[0].Kind)
}
