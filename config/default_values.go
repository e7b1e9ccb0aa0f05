package config

var (
	DefaultBasePath          = "/tmp/xray-data"
	DefaultHttpServerPort    = "80"
	DefaultTelemetryPort     = "9090"
	DefaultAbciListenAddress = "unix://xray.sock"
)
