package start

import (
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/quickex-network/xraynode/common"
	"github.com/quickex-network/xraynode/config"
	"github.com/quickex-network/xraynode/node"
	"github.com/quickex-network/xraynode/telemetry"
)

const (
	configFileFlag    = "config"
	dataDirFlag       = "data-dir"
	serverPortFlag    = "server-port"
	telemetryPortFlag = "telemetry-port"
	abciListenFlag    = "abci-listen"
	ipAddressFlag     = "ip-address"
	domainFlag        = "domain"
)

var cfgFilePath string
var conf = config.GetDefaultConfig()

func GetCommand() *cobra.Command {
	var cmd = &cobra.Command{
		Use:   "start",
		Short: "Command to start the node",
		RunE:  runCommand,
	}

	setFlags(cmd)

	return cmd
}

func setFlags(cmd *cobra.Command) {
	setConfigFileFlags(cmd)
	setParamsFlags(cmd)
}

func setConfigFileFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(
		&cfgFilePath,
		configFileFlag,
		"./config.json",
		"Used to specify JSON config file path",
	)
}

func setParamsFlags(cmd *cobra.Command) {

	d := config.GetDefaultConfig()

	cmd.Flags().StringVar(
		&conf.BasePath,
		dataDirFlag,
		d.BasePath,
		"Used to specify the data directory used for storing contract state",
	)

	cmd.Flags().StringVar(
		&conf.HttpServerPort,
		serverPortFlag,
		d.HttpServerPort,
		"Used to specify the server port",
	)

	cmd.Flags().StringVar(
		&conf.TelemetryPort,
		telemetryPortFlag,
		d.TelemetryPort,
		"Used to specify the telemetry port",
	)

	cmd.Flags().StringVar(
		&conf.AbciListenAddress,
		abciListenFlag,
		d.AbciListenAddress,
		"Used to specify the ABCI socket listen address",
	)

	cmd.Flags().StringVar(
		&conf.IPAddress,
		ipAddressFlag,
		"",
		"Used to specify the ip address of the node",
	)

	cmd.Flags().StringVar(
		&conf.Domain,
		domainFlag,
		"",
		"Used to specify the domain name of the current node",
	)
}

func runCommand(cmd *cobra.Command, _ []string) error {
	if common.DoesFileExist(cfgFilePath) {
		c, err := config.ConfigFromFile(cfgFilePath)
		if err != nil {
			log.Infof("Config file parsing error")
			return err
		}
		err = c.VerifyRequired()
		if err != nil {
			log.Infof("Config missing error")
			return err
		}
		conf = c
	} else if err := conf.VerifyRequired(); err != nil {
		log.Infof("Params flag error %s", err)
		return err
	}

	go telemetry.StartClient(conf.TelemetryPort)
	node.Start(conf)
	return nil
}
