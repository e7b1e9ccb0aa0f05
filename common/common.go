package common

import (
	"os"
)

const (
	CONTRACT_SERVICE_NAME = "contract"
	DB_SERVICE_NAME       = "db"
	CACHE_SERVICE_NAME    = "cache"
	EVENTS_SERVICE_NAME   = "events"
	SERVER_SERVICE_NAME   = "server"
	ABCI_SERVICE_NAME     = "abci"
)

const Delimiter1 = "\x1c"

// EventBusBytes marks values that crossed the bus in serialized form and
// must be unmarshalled rather than casted.
type EventBusBytes []byte

func DoesFileExist(fileName string) bool {
	_, err := os.Stat(fileName)
	if err != nil {
		if os.IsNotExist(err) {
			return false
		} else if os.IsPermission(err) {
			return false
		}
		return true
	}
	return true
}
