package bft

import (
	"crypto/ecdsa"
	"crypto/rand"
	"errors"
	"fmt"

	eth "github.com/ethereum/go-ethereum/common"
	log "github.com/sirupsen/logrus"
	abcitypes "github.com/tendermint/tendermint/abci/types"
	"github.com/torusresearch/bijson"

	"github.com/quickex-network/xraynode/crypto"
)

const (
	InitializeTxType   byte = 1
	SetPausedTxType    byte = 2
	SetAdminTxType     byte = 3
	SetPrivacyTxType   byte = 4
	CreateEscrowTxType byte = 5
)

// DefaultBFTTxWrapper is the authenticated envelope every tx travels in. The
// signature covers msg type, nonce and body, and the sender identity is the
// address recovered from it.
type DefaultBFTTxWrapper struct {
	BFTTx     []byte `json:"bft_tx"`
	Nonce     []byte `json:"nonce"`
	MsgType   byte   `json:"msg_type"`
	Signature []byte `json:"signature"`
}

func (w DefaultBFTTxWrapper) GetSerializedBody() []byte {
	body := []byte{w.MsgType}
	body = append(body, w.Nonce...)
	body = append(body, w.BFTTx...)
	return body
}

type InitializeTx struct {
	Admin eth.Address `json:"admin"`
}

type SetPausedTx struct {
	Paused bool `json:"paused"`
}

type SetAdminTx struct {
	NewAdmin eth.Address `json:"new_admin"`
}

type SetPrivacyTx struct {
	Owner   eth.Address `json:"owner"`
	Enabled bool        `json:"enabled"`
}

type CreateEscrowTx struct {
	From   eth.Address `json:"from"`
	To     eth.Address `json:"to"`
	Amount uint64      `json:"amount"`
}

// NewBFTTxWrapper signs body with key and wraps it for broadcast.
func NewBFTTxWrapper(msgType byte, body interface{}, key *ecdsa.PrivateKey) (DefaultBFTTxWrapper, error) {
	data, err := bijson.Marshal(body)
	if err != nil {
		return DefaultBFTTxWrapper{}, err
	}
	nonce := make([]byte, 16)
	if _, err := rand.Read(nonce); err != nil {
		return DefaultBFTTxWrapper{}, err
	}
	wrapper := DefaultBFTTxWrapper{
		BFTTx:   data,
		Nonce:   nonce,
		MsgType: msgType,
	}
	sig := crypto.SignData(wrapper.GetSerializedBody(), key)
	wrapper.Signature = sig.Raw
	return wrapper, nil
}

// validateTx runs the stateless admissibility checks for CheckTx against the
// lagging state of the last committed block. DeliverTx re-validates against
// the contract service, which stays authoritative.
func (abci *ABCI) validateTx(tx []byte, msgType byte, sender eth.Address, state *State) (bool, error) {
	switch msgType {
	case InitializeTxType:
		var parsedTx InitializeTx
		if err := bijson.Unmarshal(tx, &parsedTx); err != nil {
			log.WithError(err).Error("CheckTx:Initialize")
			return false, err
		}
		if state.Initialized {
			return false, errors.New("contract already initialized")
		}
		return true, nil

	case SetPausedTxType:
		var parsedTx SetPausedTx
		if err := bijson.Unmarshal(tx, &parsedTx); err != nil {
			log.WithError(err).Error("CheckTx:SetPaused")
			return false, err
		}
		if !state.Initialized {
			return false, errors.New("contract not initialized")
		}
		if sender != state.Admin {
			return false, errors.New("sender is not the admin")
		}
		return true, nil

	case SetAdminTxType:
		var parsedTx SetAdminTx
		if err := bijson.Unmarshal(tx, &parsedTx); err != nil {
			log.WithError(err).Error("CheckTx:SetAdmin")
			return false, err
		}
		if !state.Initialized {
			return false, errors.New("contract not initialized")
		}
		if sender != state.Admin {
			return false, errors.New("sender is not the admin")
		}
		return true, nil

	case SetPrivacyTxType:
		// any signer may write any owner's flag, mirroring the registry
		var parsedTx SetPrivacyTx
		if err := bijson.Unmarshal(tx, &parsedTx); err != nil {
			log.WithError(err).Error("CheckTx:SetPrivacy")
			return false, err
		}
		return true, nil

	case CreateEscrowTxType:
		var parsedTx CreateEscrowTx
		if err := bijson.Unmarshal(tx, &parsedTx); err != nil {
			log.WithError(err).Error("CheckTx:CreateEscrow")
			return false, err
		}
		if sender != parsedTx.From {
			return false, errors.New("sender is not the escrow source")
		}
		return true, nil
	}
	return false, errors.New("tx type not recognized")
}

func (abci *ABCI) ValidateAndUpdateAndTagBFTTx(bftTx []byte, msgType byte, sender eth.Address) (bool, *[]abcitypes.EventAttribute, error) {
	var tags []abcitypes.EventAttribute

	switch msgType {
	case InitializeTxType:
		log.Debug("Received initialize tx")
		var tx InitializeTx
		if err := bijson.Unmarshal(bftTx, &tx); err != nil {
			log.WithError(err).Error("InitializeBFTTx failed")
			return false, &tags, err
		}

		if err := abci.broker.ContractMethods().Initialize(tx.Admin); err != nil {
			return false, &tags, err
		}

		abci.state.Initialized = true
		abci.state.Admin = tx.Admin
		abci.state.Paused = false
		tags = []abcitypes.EventAttribute{
			{Key: []byte("initialize"), Value: []byte(tx.Admin.String())},
		}
		return true, &tags, nil

	case SetPausedTxType:
		log.Debug("Received set paused tx")
		var tx SetPausedTx
		if err := bijson.Unmarshal(bftTx, &tx); err != nil {
			log.WithError(err).Error("SetPausedBFTTx failed")
			return false, &tags, err
		}

		if err := abci.broker.ContractMethods().SetPaused(sender, tx.Paused); err != nil {
			return false, &tags, err
		}

		abci.state.Paused = tx.Paused
		tags = []abcitypes.EventAttribute{
			{Key: []byte("set_paused"), Value: []byte(fmt.Sprintf("%v", tx.Paused))},
		}
		return true, &tags, nil

	case SetAdminTxType:
		log.Debug("Received set admin tx")
		var tx SetAdminTx
		if err := bijson.Unmarshal(bftTx, &tx); err != nil {
			log.WithError(err).Error("SetAdminBFTTx failed")
			return false, &tags, err
		}

		if err := abci.broker.ContractMethods().SetAdmin(sender, tx.NewAdmin); err != nil {
			return false, &tags, err
		}

		abci.state.Admin = tx.NewAdmin
		tags = []abcitypes.EventAttribute{
			{Key: []byte("set_admin"), Value: []byte(tx.NewAdmin.String())},
		}
		return true, &tags, nil

	case SetPrivacyTxType:
		log.Debug("Received set privacy tx")
		var tx SetPrivacyTx
		if err := bijson.Unmarshal(bftTx, &tx); err != nil {
			log.WithError(err).Error("SetPrivacyBFTTx failed")
			return false, &tags, err
		}

		if err := abci.broker.ContractMethods().SetPrivacy(tx.Owner, tx.Enabled); err != nil {
			return false, &tags, err
		}

		tags = []abcitypes.EventAttribute{
			{Key: []byte("set_privacy"), Value: []byte(tx.Owner.String())},
		}
		return true, &tags, nil

	case CreateEscrowTxType:
		log.Debug("Received create escrow tx")
		var tx CreateEscrowTx
		if err := bijson.Unmarshal(bftTx, &tx); err != nil {
			log.WithError(err).Error("CreateEscrowBFTTx failed")
			return false, &tags, err
		}

		if sender != tx.From {
			return false, &tags, errors.New("sender is not the escrow source")
		}

		id, err := abci.broker.ContractMethods().CreateEscrow(tx.From, tx.To, tx.Amount)
		if err != nil {
			return false, &tags, err
		}

		tags = []abcitypes.EventAttribute{
			{Key: []byte("create_escrow"), Value: []byte(fmt.Sprintf("%d", id))},
		}
		return true, &tags, nil
	}

	return false, &tags, errors.New("tx type not recognized")
}
