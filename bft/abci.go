package bft

import (
	"fmt"
	"time"

	eth "github.com/ethereum/go-ethereum/common"
	ethcrypto "github.com/ethereum/go-ethereum/crypto"
	log "github.com/sirupsen/logrus"
	code "github.com/tendermint/tendermint/abci/example/code"
	abcitypes "github.com/tendermint/tendermint/abci/types"
	"github.com/tendermint/tendermint/version"
	tmdb "github.com/tendermint/tm-db"
	"github.com/torusresearch/bijson"

	"github.com/quickex-network/xraynode/common"
	"github.com/quickex-network/xraynode/config"
	"github.com/quickex-network/xraynode/crypto"
)

var (
	stateKey   = []byte("sk")
	appInfoKey = []byte("ai")
)

// ABCI hosts the contract state machine behind a consensus engine. The
// contract service stays authoritative for contract state; the app keeps a
// mirror of the admin machine for CheckTx and folds every applied tx into a
// rolling digest that becomes the app hash.
type ABCI struct {
	db        *tmdb.GoLevelDB
	broker    *common.MessageBroker
	state     *State
	prevState *State
	info      *AppInfo
}

type State struct {
	BlockTime   time.Time   `json:"-"`
	Initialized bool        `json:"initialized"`
	Admin       eth.Address `json:"admin"`
	Paused      bool        `json:"paused"`
	TxCount     uint64      `json:"tx_count"`
	TxDigest    []byte      `json:"tx_digest"`
}

type AppInfo struct {
	Height  int64  `json:"height"`
	AppHash []byte `json:"app_hash"`
}

type getPrivacyQuery struct {
	Owner eth.Address `json:"owner"`
}

func (a *ABCI) NewABCI(broker *common.MessageBroker) *ABCI {
	db, err := tmdb.NewGoLevelDB("bftstate", config.GlobalConfig.BasePath+"/bftstate")
	if err != nil {
		log.WithError(err).Fatal("could not start GoLevelDB for bft state")
	}
	abci := ABCI{db: db, broker: broker}
	_, stateExists := abci.LoadState()

	if !stateExists {
		abci.state = &State{}
		abci.prevState = &State{}
		abci.info = &AppInfo{
			Height: 0,
		}
	}

	return &abci
}

func (abci *ABCI) DeliverTx(req abcitypes.RequestDeliverTx) abcitypes.ResponseDeliverTx {
	tx := req.GetTx()
	parsedTx, sender, err := authenticateBftTx(tx)
	if err != nil {
		return abcitypes.ResponseDeliverTx{Code: code.CodeTypeUnauthorized}
	}

	correct, tags, err := abci.ValidateAndUpdateAndTagBFTTx(parsedTx.BFTTx, parsedTx.MsgType, sender)
	if err != nil {
		log.WithError(err).Error("could not validate BFTTx")
		return abcitypes.ResponseDeliverTx{Code: code.CodeTypeUnauthorized}
	}

	if !correct {
		log.Error("tx not correct, could not be validated")
		return abcitypes.ResponseDeliverTx{Code: code.CodeTypeUnknownError}
	}

	abci.state.TxCount++
	abci.state.TxDigest = ethcrypto.Keccak256(abci.state.TxDigest, tx)

	if tags == nil {
		tags = new([]abcitypes.EventAttribute)
	}

	return abcitypes.ResponseDeliverTx{Code: code.CodeTypeOK, Events: []abcitypes.Event{{Type: "contract", Attributes: *tags}}}
}

func (abci *ABCI) CheckTx(req abcitypes.RequestCheckTx) abcitypes.ResponseCheckTx {
	tx := req.GetTx()
	parsedTx, sender, err := authenticateBftTx(tx)
	if err != nil {
		return abcitypes.ResponseCheckTx{Code: code.CodeTypeUnauthorized}
	}
	validated, err := abci.validateTx(parsedTx.BFTTx, parsedTx.MsgType, sender, abci.prevState)
	if err != nil {
		log.WithError(err).Error("could not validate BFTTx in checkTx")
	}

	if !validated {
		return abcitypes.ResponseCheckTx{Code: code.CodeTypeUnauthorized}
	}

	return abcitypes.ResponseCheckTx{Code: code.CodeTypeOK}
}

func (abci *ABCI) BeginBlock(req abcitypes.RequestBeginBlock) abcitypes.ResponseBeginBlock {
	abci.state.BlockTime = req.Header.GetTime()
	return abcitypes.ResponseBeginBlock{}
}

func (abci *ABCI) InitChain(req abcitypes.RequestInitChain) abcitypes.ResponseInitChain {
	return abcitypes.ResponseInitChain{}
}

func (abci *ABCI) ListSnapshots(abcitypes.RequestListSnapshots) abcitypes.ResponseListSnapshots {
	resp := abcitypes.ResponseListSnapshots{Snapshots: []*abcitypes.Snapshot{}}
	return resp
}

func (abci *ABCI) LoadSnapshotChunk(req abcitypes.RequestLoadSnapshotChunk) abcitypes.ResponseLoadSnapshotChunk {
	return abcitypes.ResponseLoadSnapshotChunk{}
}

func (abci *ABCI) SetOption(req abcitypes.RequestSetOption) abcitypes.ResponseSetOption {
	return abcitypes.ResponseSetOption{}
}

func (abci *ABCI) OfferSnapshot(abcitypes.RequestOfferSnapshot) abcitypes.ResponseOfferSnapshot {
	return abcitypes.ResponseOfferSnapshot{}
}

func (abci *ABCI) EndBlock(req abcitypes.RequestEndBlock) abcitypes.ResponseEndBlock {
	log.WithFields(log.Fields{
		"EndBlockHeight": req.Height,
		"TxCount":        abci.state.TxCount,
	}).Debug("EndBlock")
	return abcitypes.ResponseEndBlock{}
}

func (app *ABCI) Info(req abcitypes.RequestInfo) (resInfo abcitypes.ResponseInfo) {
	return abcitypes.ResponseInfo{
		Version:          version.ABCIVersion,
		AppVersion:       version.BlockProtocol,
		LastBlockAppHash: app.info.AppHash,
		LastBlockHeight:  app.info.Height,
	}
}

func (abci *ABCI) ApplySnapshotChunk(abcitypes.RequestApplySnapshotChunk) abcitypes.ResponseApplySnapshotChunk {
	return abcitypes.ResponseApplySnapshotChunk{}
}

func (abci *ABCI) Commit() abcitypes.ResponseCommit {
	// hash of the current state, covering the rolling tx digest
	byt, err := bijson.Marshal(abci.state)
	if err != nil {
		log.WithError(err).Fatal("could not marshal app state")
	}
	currAppHash := ethcrypto.Keccak256(byt)

	abci.info.AppHash = currAppHash
	abci.info.Height += 1
	abci.SaveState()
	abci.prevState = nil
	err = bijson.Unmarshal(byt, &abci.prevState)
	if err != nil {
		log.WithError(err).Fatal("could not copy lagging state")
	}

	return abcitypes.ResponseCommit{Data: currAppHash}
}

func (abci *ABCI) Query(reqQuery abcitypes.RequestQuery) (resQuery abcitypes.ResponseQuery) {
	log.WithFields(log.Fields{
		"Path":       reqQuery.Path,
		"stringData": string(reqQuery.Data),
	}).Debug("query to ABCIApp")

	switch reqQuery.Path {
	case "IsPaused":
		paused, err := abci.broker.ContractMethods().IsPaused()
		if err != nil {
			return abcitypes.ResponseQuery{Code: 10, Info: fmt.Sprintf("could not query pause switch: %v", err)}
		}
		b, err := bijson.Marshal(paused)
		if err != nil {
			return abcitypes.ResponseQuery{Code: 10, Info: "could not serialise pause switch"}
		}
		return abcitypes.ResponseQuery{Code: 0, Value: b}

	case "GetAdmin":
		admin, exists, err := abci.broker.ContractMethods().GetAdmin()
		if err != nil {
			return abcitypes.ResponseQuery{Code: 10, Info: fmt.Sprintf("could not query admin: %v", err)}
		}
		if !exists {
			return abcitypes.ResponseQuery{Code: 10, Info: "not initialized"}
		}
		b, err := bijson.Marshal(admin)
		if err != nil {
			return abcitypes.ResponseQuery{Code: 10, Info: "could not serialise admin"}
		}
		return abcitypes.ResponseQuery{Code: 0, Value: b}

	case "GetPrivacy":
		var queryArgs getPrivacyQuery
		err := bijson.Unmarshal(reqQuery.Data, &queryArgs)
		if err != nil {
			return abcitypes.ResponseQuery{Code: 10, Info: fmt.Sprintf("could not parse query into arguments: %s", string(reqQuery.Data))}
		}
		enabled, err := abci.broker.ContractMethods().GetPrivacy(queryArgs.Owner)
		if err != nil {
			return abcitypes.ResponseQuery{Code: 10, Info: fmt.Sprintf("could not query privacy flag: %v", err)}
		}
		b, err := bijson.Marshal(enabled)
		if err != nil {
			return abcitypes.ResponseQuery{Code: 10, Info: "could not serialise privacy flag"}
		}
		return abcitypes.ResponseQuery{Code: 0, Value: b}

	default:
		return abcitypes.ResponseQuery{Log: fmt.Sprintf("Invalid query path, got %v", reqQuery.Path)}
	}
}

func (app *ABCI) LoadState() (State, bool) {
	stateBytes, err := app.db.Get(stateKey)
	if err != nil {
		log.Error(err)
	}
	infoBytes, err := app.db.Get(appInfoKey)
	if err != nil {
		log.Error(err)
	}
	var state, prevState State
	var info AppInfo
	stateExists := false
	if len(stateBytes) != 0 {
		stateExists = true
		err := bijson.Unmarshal(stateBytes, &state)
		if err != nil {
			panic(err)
		}
		err = bijson.Unmarshal(stateBytes, &prevState)
		if err != nil {
			panic(err)
		}
		err = bijson.Unmarshal(infoBytes, &info)
		if err != nil {
			panic(err)
		}
	}
	app.state = &state
	app.prevState = &prevState
	app.info = &info
	return state, stateExists
}

func (abci *ABCI) SaveState() State {
	stateBytes, err := bijson.Marshal(abci.state)
	if err != nil {
		panic(err)
	}
	if err = abci.db.Set(stateKey, stateBytes); err != nil {
		log.Errorf("error during setting state, err=%s", err)
	}
	infoBytes, err := bijson.Marshal(abci.info)
	if err != nil {
		panic(err)
	}
	if err = abci.db.Set(appInfoKey, infoBytes); err != nil {
		log.Errorf("error during setting state, err=%s", err)
	}
	return *abci.state
}

func authenticateBftTx(tx []byte) (parsedTx DefaultBFTTxWrapper, sender eth.Address, err error) {
	err = bijson.Unmarshal(tx, &parsedTx)
	if err != nil {
		log.Errorf("could not unmarshal headers from tx: %v", err)
		return parsedTx, sender, err
	}

	sender, err = crypto.RecoverAddress(parsedTx.GetSerializedBody(), parsedTx.Signature)
	if err != nil {
		log.Errorf("bfttx not valid: error %v", err)
		return parsedTx, sender, err
	}
	return
}
