package rpc

import (
	"context"
	"encoding/hex"
	"errors"
	"math/big"
	"strconv"
	"strings"
	"time"

	eth "github.com/ethereum/go-ethereum/common"
	fastjson "github.com/goccy/go-json"
	"github.com/osamingo/jsonrpc/v2"
	log "github.com/sirupsen/logrus"

	"github.com/quickex-network/xraynode/commitment"
	"github.com/quickex-network/xraynode/common"
	"github.com/quickex-network/xraynode/contract"
	"github.com/quickex-network/xraynode/crypto"
	"github.com/quickex-network/xraynode/telemetry"
)

type (
	InitializeParams struct {
		Admin eth.Address `json:"admin"`
	}
	InitializeResult struct {
		Admin string `json:"admin"`
	}
	PauseSwitchMessage struct {
		Timestamp string `json:"timestamp"`
		Message   string `json:"message"`
		Paused    bool   `json:"paused"`
	}
	SetPausedParams struct {
		PauseSwitchMessage PauseSwitchMessage `json:"pause_switch_message"`
		Signature          []byte             `json:"signature"`
	}
	SetPausedResult struct {
		Paused bool `json:"paused"`
	}
	AdminTransferMessage struct {
		Timestamp string      `json:"timestamp"`
		Message   string      `json:"message"`
		NewAdmin  eth.Address `json:"new_admin"`
	}
	SetAdminParams struct {
		AdminTransferMessage AdminTransferMessage `json:"admin_transfer_message"`
		Signature            []byte               `json:"signature"`
	}
	SetAdminResult struct {
		NewAdmin string `json:"new_admin"`
	}
	IsPausedParams struct {
	}
	IsPausedResult struct {
		Paused bool `json:"paused"`
	}
	GetAdminParams struct {
	}
	GetAdminResult struct {
		Admin  string `json:"admin"`
		Exists bool   `json:"exists"`
	}
	SetPrivacyParams struct {
		Owner   eth.Address `json:"owner"`
		Enabled bool        `json:"enabled"`
	}
	SetPrivacyResult struct {
		Owner   string `json:"owner"`
		Enabled bool   `json:"enabled"`
	}
	GetPrivacyParams struct {
		Owner eth.Address `json:"owner"`
	}
	GetPrivacyResult struct {
		Enabled bool `json:"enabled"`
	}
	CreateAmountCommitmentParams struct {
		Owner  eth.Address `json:"owner"`
		Amount big.Int     `json:"amount"`
		Salt   []byte      `json:"salt"`
	}
	CreateAmountCommitmentResult struct {
		Commitment string `json:"commitment"`
	}
	VerifyAmountCommitmentParams struct {
		Commitment string      `json:"commitment"`
		Owner      eth.Address `json:"owner"`
		Amount     big.Int     `json:"amount"`
		Salt       []byte      `json:"salt"`
	}
	VerifyAmountCommitmentResult struct {
		Valid bool `json:"valid"`
	}
	CreateEscrowParams struct {
		From   eth.Address `json:"from"`
		To     eth.Address `json:"to"`
		Amount uint64      `json:"amount"`
	}
	CreateEscrowResult struct {
		EscrowID uint64 `json:"escrow_id"`
	}
	AccountEventsParams struct {
		Account eth.Address `json:"account"`
	}
	AccountEventsResult struct {
		Events []common.EventRecord `json:"events"`
	}
	HealthParams struct {
	}
	HealthResult struct {
		Status string `json:"status"`
	}
)

func (m *PauseSwitchMessage) String() string {
	return strings.Join([]string{m.Timestamp, m.Message, strconv.FormatBool(m.Paused)}, common.Delimiter1)
}

func (m *AdminTransferMessage) String() string {
	return strings.Join([]string{m.Timestamp, m.Message, m.NewAdmin.String()}, common.Delimiter1)
}

// validateTimestamp rejects stale and forward-dated privileged messages. The
// 10 minute window bounds how long a captured signature stays usable, the
// signer cache rejects replays inside the window, and the skew bound keeps a
// far-future timestamp from producing a signature that never expires.
func validateTimestamp(timestamp string, timeNow func() time.Time) *jsonrpc.Error {
	unixTime, err := strconv.ParseInt(timestamp, 10, 64)
	if err != nil {
		log.WithError(err).Error("could not parse time signed")
		return &jsonrpc.Error{Code: -32602, Message: "Input error", Data: "could not parse timestamp"}
	}
	signed := time.Unix(unixTime, 0)
	if signed.Add(10 * time.Minute).Before(timeNow()) {
		return &jsonrpc.Error{Code: -32602, Message: "Input error", Data: "signature expired"}
	}
	if signed.After(timeNow().Add(time.Minute)) {
		return &jsonrpc.Error{Code: -32602, Message: "Input error", Data: "signature timestamp in the future"}
	}
	return nil
}

func authenticateSigner(broker *common.MessageBroker, canonical string, sig []byte) (eth.Address, *jsonrpc.Error) {
	sigHex := hex.EncodeToString(sig)
	exists, err := broker.CacheMethods().SignerSigExists(sigHex)
	if err != nil {
		return eth.Address{}, &jsonrpc.Error{Code: -32603, Message: "Internal error", Data: "could not check signature cache"}
	}
	if exists {
		return eth.Address{}, &jsonrpc.Error{Code: -32602, Message: "Input error", Data: "duplicate signature"}
	}
	signer, err := crypto.RecoverAddress([]byte(canonical), sig)
	if err != nil {
		log.WithError(err).Error("could not recover signer address")
		return eth.Address{}, &jsonrpc.Error{Code: -32602, Message: "Input error", Data: "invalid signature"}
	}
	if err := broker.CacheMethods().RecordSignerSig(sigHex); err != nil {
		return eth.Address{}, &jsonrpc.Error{Code: -32602, Message: "Input error", Data: "duplicate signature"}
	}
	return signer, nil
}

func contractError(err error) *jsonrpc.Error {
	switch {
	case errors.Is(err, contract.ErrAlreadyInitialized):
		return &jsonrpc.Error{Code: -32001, Message: "Already initialized"}
	case errors.Is(err, contract.ErrNotInitialized):
		return &jsonrpc.Error{Code: -32002, Message: "Not initialized"}
	case errors.Is(err, contract.ErrUnauthorized):
		return &jsonrpc.Error{Code: -32003, Message: "Unauthorized"}
	}
	return &jsonrpc.Error{Code: -32603, Message: "Internal error", Data: err.Error()}
}

func (h HealthHandler) ServeJSONRPC(_ context.Context, _ *fastjson.RawMessage) (interface{}, *jsonrpc.Error) {
	return HealthResult{Status: "Ok"}, nil
}

func (h InitializeHandler) ServeJSONRPC(c context.Context, params *fastjson.RawMessage) (interface{}, *jsonrpc.Error) {

	broker := common.NewServiceBroker(h.bus, "initialize_handler")
	var p InitializeParams
	if err := jsonrpc.Unmarshal(params, &p); err != nil {
		return nil, err
	}

	if err := broker.ContractMethods().Initialize(p.Admin); err != nil {
		return nil, contractError(err)
	}

	log.WithField("admin", p.Admin.String()).Info("Initialize")
	return InitializeResult{Admin: p.Admin.String()}, nil
}

func (h SetPausedHandler) ServeJSONRPC(c context.Context, params *fastjson.RawMessage) (interface{}, *jsonrpc.Error) {

	broker := common.NewServiceBroker(h.bus, "set_paused_handler")
	var p SetPausedParams
	if err := jsonrpc.Unmarshal(params, &p); err != nil {
		return nil, err
	}

	if p.PauseSwitchMessage.Message != SetPausedMethod {
		log.WithField("message", p.PauseSwitchMessage.Message).Error("message not SetPaused")
		return nil, &jsonrpc.Error{Code: -32602, Message: "Input error", Data: "message is not SetPaused"}
	}
	if rpcErr := validateTimestamp(p.PauseSwitchMessage.Timestamp, h.TimeNow); rpcErr != nil {
		return nil, rpcErr
	}
	signer, rpcErr := authenticateSigner(broker, p.PauseSwitchMessage.String(), p.Signature)
	if rpcErr != nil {
		return nil, rpcErr
	}

	if err := broker.ContractMethods().SetPaused(signer, p.PauseSwitchMessage.Paused); err != nil {
		return nil, contractError(err)
	}

	log.WithFields(log.Fields{
		"signer": signer.String(),
		"paused": p.PauseSwitchMessage.Paused,
	}).Info("SetPaused")
	return SetPausedResult{Paused: p.PauseSwitchMessage.Paused}, nil
}

func (h SetAdminHandler) ServeJSONRPC(c context.Context, params *fastjson.RawMessage) (interface{}, *jsonrpc.Error) {

	broker := common.NewServiceBroker(h.bus, "set_admin_handler")
	var p SetAdminParams
	if err := jsonrpc.Unmarshal(params, &p); err != nil {
		return nil, err
	}

	if p.AdminTransferMessage.Message != SetAdminMethod {
		log.WithField("message", p.AdminTransferMessage.Message).Error("message not SetAdmin")
		return nil, &jsonrpc.Error{Code: -32602, Message: "Input error", Data: "message is not SetAdmin"}
	}
	if rpcErr := validateTimestamp(p.AdminTransferMessage.Timestamp, h.TimeNow); rpcErr != nil {
		return nil, rpcErr
	}
	signer, rpcErr := authenticateSigner(broker, p.AdminTransferMessage.String(), p.Signature)
	if rpcErr != nil {
		return nil, rpcErr
	}

	if err := broker.ContractMethods().SetAdmin(signer, p.AdminTransferMessage.NewAdmin); err != nil {
		return nil, contractError(err)
	}

	log.WithFields(log.Fields{
		"signer":   signer.String(),
		"newAdmin": p.AdminTransferMessage.NewAdmin.String(),
	}).Info("SetAdmin")
	return SetAdminResult{NewAdmin: p.AdminTransferMessage.NewAdmin.String()}, nil
}

func (h IsPausedHandler) ServeJSONRPC(c context.Context, params *fastjson.RawMessage) (interface{}, *jsonrpc.Error) {

	broker := common.NewServiceBroker(h.bus, "is_paused_handler")
	paused, err := broker.ContractMethods().IsPaused()
	if err != nil {
		return nil, contractError(err)
	}
	return IsPausedResult{Paused: paused}, nil
}

func (h GetAdminHandler) ServeJSONRPC(c context.Context, params *fastjson.RawMessage) (interface{}, *jsonrpc.Error) {

	broker := common.NewServiceBroker(h.bus, "get_admin_handler")
	admin, exists, err := broker.ContractMethods().GetAdmin()
	if err != nil {
		return nil, contractError(err)
	}
	if !exists {
		// absence is a legal pre-initialization read, not an error
		return GetAdminResult{Admin: "", Exists: false}, nil
	}
	return GetAdminResult{Admin: admin.String(), Exists: true}, nil
}

func (h SetPrivacyHandler) ServeJSONRPC(c context.Context, params *fastjson.RawMessage) (interface{}, *jsonrpc.Error) {

	broker := common.NewServiceBroker(h.bus, "set_privacy_handler")
	var p SetPrivacyParams
	if err := jsonrpc.Unmarshal(params, &p); err != nil {
		return nil, err
	}

	if err := broker.ContractMethods().SetPrivacy(p.Owner, p.Enabled); err != nil {
		return nil, contractError(err)
	}

	return SetPrivacyResult{Owner: p.Owner.String(), Enabled: p.Enabled}, nil
}

func (h GetPrivacyHandler) ServeJSONRPC(c context.Context, params *fastjson.RawMessage) (interface{}, *jsonrpc.Error) {

	broker := common.NewServiceBroker(h.bus, "get_privacy_handler")
	var p GetPrivacyParams
	if err := jsonrpc.Unmarshal(params, &p); err != nil {
		return nil, err
	}

	enabled, err := broker.ContractMethods().GetPrivacy(p.Owner)
	if err != nil {
		return nil, contractError(err)
	}
	return GetPrivacyResult{Enabled: enabled}, nil
}

func (h CreateAmountCommitmentHandler) ServeJSONRPC(c context.Context, params *fastjson.RawMessage) (interface{}, *jsonrpc.Error) {

	var p CreateAmountCommitmentParams
	if err := jsonrpc.Unmarshal(params, &p); err != nil {
		return nil, err
	}

	digest, err := commitment.Create(p.Owner, &p.Amount, p.Salt)
	if err != nil {
		return nil, &jsonrpc.Error{Code: -32602, Message: "Input error", Data: err.Error()}
	}

	telemetry.IncrementCommitmentCreated()
	return CreateAmountCommitmentResult{Commitment: digest.Hex()}, nil
}

func (h VerifyAmountCommitmentHandler) ServeJSONRPC(c context.Context, params *fastjson.RawMessage) (interface{}, *jsonrpc.Error) {

	var p VerifyAmountCommitmentParams
	if err := jsonrpc.Unmarshal(params, &p); err != nil {
		return nil, err
	}

	digest, err := commitment.DigestFromHex(p.Commitment)
	if err != nil {
		return nil, &jsonrpc.Error{Code: -32602, Message: "Input error", Data: err.Error()}
	}

	telemetry.IncrementCommitmentVerified()
	valid := commitment.Verify(digest, p.Owner, &p.Amount, p.Salt)
	return VerifyAmountCommitmentResult{Valid: valid}, nil
}

func (h CreateEscrowHandler) ServeJSONRPC(c context.Context, params *fastjson.RawMessage) (interface{}, *jsonrpc.Error) {

	broker := common.NewServiceBroker(h.bus, "create_escrow_handler")
	var p CreateEscrowParams
	if err := jsonrpc.Unmarshal(params, &p); err != nil {
		return nil, err
	}

	id, err := broker.ContractMethods().CreateEscrow(p.From, p.To, p.Amount)
	if err != nil {
		return nil, contractError(err)
	}

	log.WithField("escrowID", id).Info("CreateEscrow")
	return CreateEscrowResult{EscrowID: id}, nil
}

func (h AccountEventsHandler) ServeJSONRPC(c context.Context, params *fastjson.RawMessage) (interface{}, *jsonrpc.Error) {

	broker := common.NewServiceBroker(h.bus, "account_events_handler")
	var p AccountEventsParams
	if err := jsonrpc.Unmarshal(params, &p); err != nil {
		return nil, err
	}

	records, err := broker.EventsMethods().RetrieveByAccount(p.Account)
	if err != nil {
		return nil, &jsonrpc.Error{Code: -32603, Message: "Internal error", Data: err.Error()}
	}
	return AccountEventsResult{Events: records}, nil
}
