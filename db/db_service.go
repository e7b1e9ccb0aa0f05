package db

import (
	"fmt"

	eth "github.com/ethereum/go-ethereum/common"

	"github.com/quickex-network/xraynode/common"
	"github.com/quickex-network/xraynode/config"
)

type DBService struct {
	dbInstance *DBWrapper
}

func New() *DBService {
	return &DBService{}
}

func (*DBService) ID() string {
	return common.DB_SERVICE_NAME
}

func (service *DBService) Start() error {
	dbPath := fmt.Sprintf("%s/contractdb", config.GlobalConfig.BasePath)
	db, err := NewDB(dbPath)
	if err != nil {
		return err
	}
	service.dbInstance = db
	return nil
}

func (service *DBService) Stop() error {
	if service.dbInstance == nil {
		return nil
	}
	return service.dbInstance.Close()
}

func (service *DBService) IsRunning() bool {
	return service.dbInstance != nil
}

func (d *DBService) Call(method string, args ...interface{}) (interface{}, error) {

	switch method {
	case "store_admin_state":

		var state common.AdminState
		_ = common.CastOrUnmarshal(args[0], &state)

		return nil, d.dbInstance.StoreAdminState(state)
	case "retrieve_admin_state":

		state, exists, err := d.dbInstance.RetrieveAdminState()
		if err != nil {
			return nil, err
		}
		return common.AdminStateLookup{State: state, Exists: exists}, nil
	case "store_privacy_flag":

		var owner eth.Address
		var enabled bool
		_ = common.CastOrUnmarshal(args[0], &owner)
		_ = common.CastOrUnmarshal(args[1], &enabled)

		return nil, d.dbInstance.StorePrivacyFlag(owner, enabled)
	case "retrieve_privacy_flag":

		var owner eth.Address
		_ = common.CastOrUnmarshal(args[0], &owner)

		return d.dbInstance.RetrievePrivacyFlag(owner)
	case "next_escrow_id":

		return d.dbInstance.NextEscrowID()
	case "store_escrow_record":

		var record common.EscrowRecord
		_ = common.CastOrUnmarshal(args[0], &record)

		return nil, d.dbInstance.StoreEscrowRecord(record)
	case "retrieve_escrow_record":

		var id uint64
		_ = common.CastOrUnmarshal(args[0], &id)

		return d.dbInstance.RetrieveEscrowRecord(id)
	}
	return nil, fmt.Errorf("db service method %v not found", method)
}
