package serve

import (
	"context"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/ValentinKolb/dRPC/cmd/util"
	"github.com/ValentinKolb/dRPC/lib/addtwoints"
	"github.com/ValentinKolb/dRPC/rpc/common"
	"github.com/ValentinKolb/dRPC/rpc/node"
	"github.com/ValentinKolb/dRPC/rpc/service"
	"github.com/ValentinKolb/dRPC/rpc/transport"
	"github.com/ValentinKolb/dRPC/rpc/transport/tcp"
	"github.com/ValentinKolb/dRPC/rpc/waitset"
	"github.com/VictoriaMetrics/metrics"
	"github.com/lni/dragonboat/v4/logger"
	"github.com/spf13/cobra"
)

var Logger = logger.GetLogger("rpc/service")

// ServeCommand runs the bundled add-two-ints service until interrupted
var ServeCommand = &cobra.Command{
	Use:   "serve",
	Short: "Run the add-two-ints demo service",
	Long: util.WrapString(`Run the bundled add-two-ints service on a TCP endpoint.
The service answers every request {a, b} with {sum: a+b} and keeps serving
until interrupted.`),
	RunE: runServe,
}

func init() {
	cobra.OnInitialize(util.InitConfig)

	util.SetupTransportFlags(ServeCommand)

	key := "metrics-endpoint"
	ServeCommand.Flags().String(key, "", util.WrapString("Address of the Prometheus metrics listener (empty = disabled)"))
}

func runServe(cmd *cobra.Command, _ []string) error {
	if err := util.BindCommandFlags(cmd); err != nil {
		return err
	}

	config := util.GetServiceConfig()
	common.InitLoggers(config.LogLevel)
	Logger.Infof(config.String())

	ser, err := util.GetSerializer()
	if err != nil {
		return err
	}

	// Optional Prometheus endpoint
	if config.MetricsEndpoint != "" {
		go func() {
			http.HandleFunc("/metrics", func(w http.ResponseWriter, _ *http.Request) {
				metrics.WritePrometheus(w, true)
			})
			Logger.Infof("serving metrics on %s", config.MetricsEndpoint)
			Logger.Errorf("%v", http.ListenAndServe(config.MetricsEndpoint, nil))
		}()
	}

	n, err := node.New(common.NodeConfig{Name: "drpc-serve", LogLevel: config.LogLevel}, tcp.New(config.Transport))
	if err != nil {
		return err
	}

	svc, err := service.New(n, config.Topic, ser,
		transport.EndpointOptions{QueueSize: config.Transport.QueueSize}, addtwoints.Handler)
	if err != nil {
		return err
	}
	defer func() {
		if err := svc.Close(); err != nil {
			Logger.Errorf("failed to close service: %v", err)
		}
		if err := n.Close(); err != nil {
			Logger.Errorf("failed to close node: %v", err)
		}
	}()

	ws := waitset.New()
	ws.Add(svc)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	Logger.Infof("serving topic %q on %s", config.Topic, config.Transport.Endpoint)
	if err := ws.Spin(ctx); err != context.Canceled {
		return err
	}
	Logger.Infof("shutting down")
	return nil
}
