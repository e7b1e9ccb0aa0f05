package rpc

import (
	"time"

	"github.com/osamingo/jsonrpc/v2"

	"github.com/quickex-network/xraynode/eventbus"
)

const (
	InitializeMethod             = "Initialize"
	SetPausedMethod              = "SetPaused"
	SetAdminMethod               = "SetAdmin"
	IsPausedMethod               = "IsPaused"
	GetAdminMethod               = "GetAdmin"
	SetPrivacyMethod             = "SetPrivacy"
	GetPrivacyMethod             = "GetPrivacy"
	CreateAmountCommitmentMethod = "CreateAmountCommitment"
	VerifyAmountCommitmentMethod = "VerifyAmountCommitment"
	CreateEscrowMethod           = "CreateEscrow"
	AccountEventsMethod          = "AccountEvents"
	HealthMethod                 = "HealthCheck"
)

type (
	InitializeHandler struct {
		bus eventbus.Bus
	}
	SetPausedHandler struct {
		bus     eventbus.Bus
		TimeNow func() time.Time
	}
	SetAdminHandler struct {
		bus     eventbus.Bus
		TimeNow func() time.Time
	}
	IsPausedHandler struct {
		bus eventbus.Bus
	}
	GetAdminHandler struct {
		bus eventbus.Bus
	}
	SetPrivacyHandler struct {
		bus eventbus.Bus
	}
	GetPrivacyHandler struct {
		bus eventbus.Bus
	}
	CreateAmountCommitmentHandler struct {
	}
	VerifyAmountCommitmentHandler struct {
	}
	CreateEscrowHandler struct {
		bus eventbus.Bus
	}
	AccountEventsHandler struct {
		bus eventbus.Bus
	}
	HealthHandler struct {
	}
)

func SetUpJRPCHandler(eventBus eventbus.Bus) (*jsonrpc.MethodRepository, error) {
	mr := jsonrpc.NewMethodRepository()

	if err := mr.RegisterMethod(HealthMethod, HealthHandler{}, HealthParams{}, HealthResult{}); err != nil {
		return nil, err
	}

	if err := mr.RegisterMethod(InitializeMethod, InitializeHandler{eventBus}, InitializeParams{}, InitializeResult{}); err != nil {
		return nil, err
	}

	if err := mr.RegisterMethod(SetPausedMethod, SetPausedHandler{bus: eventBus, TimeNow: time.Now}, SetPausedParams{}, SetPausedResult{}); err != nil {
		return nil, err
	}

	if err := mr.RegisterMethod(SetAdminMethod, SetAdminHandler{bus: eventBus, TimeNow: time.Now}, SetAdminParams{}, SetAdminResult{}); err != nil {
		return nil, err
	}

	if err := mr.RegisterMethod(IsPausedMethod, IsPausedHandler{eventBus}, IsPausedParams{}, IsPausedResult{}); err != nil {
		return nil, err
	}

	if err := mr.RegisterMethod(GetAdminMethod, GetAdminHandler{eventBus}, GetAdminParams{}, GetAdminResult{}); err != nil {
		return nil, err
	}

	if err := mr.RegisterMethod(SetPrivacyMethod, SetPrivacyHandler{eventBus}, SetPrivacyParams{}, SetPrivacyResult{}); err != nil {
		return nil, err
	}

	if err := mr.RegisterMethod(GetPrivacyMethod, GetPrivacyHandler{eventBus}, GetPrivacyParams{}, GetPrivacyResult{}); err != nil {
		return nil, err
	}

	if err := mr.RegisterMethod(CreateAmountCommitmentMethod, CreateAmountCommitmentHandler{}, CreateAmountCommitmentParams{}, CreateAmountCommitmentResult{}); err != nil {
		return nil, err
	}

	if err := mr.RegisterMethod(VerifyAmountCommitmentMethod, VerifyAmountCommitmentHandler{}, VerifyAmountCommitmentParams{}, VerifyAmountCommitmentResult{}); err != nil {
		return nil, err
	}

	if err := mr.RegisterMethod(CreateEscrowMethod, CreateEscrowHandler{eventBus}, CreateEscrowParams{}, CreateEscrowResult{}); err != nil {
		return nil, err
	}

	if err := mr.RegisterMethod(AccountEventsMethod, AccountEventsHandler{eventBus}, AccountEventsParams{}, AccountEventsResult{}); err != nil {
		return nil, err
	}

	return mr, nil
}
