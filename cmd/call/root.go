package call

import (
	"context"
	"fmt"
	"time"

	"github.com/ValentinKolb/dRPC/cmd/util"
	"github.com/ValentinKolb/dRPC/lib/addtwoints"
	"github.com/ValentinKolb/dRPC/rpc/client"
	"github.com/ValentinKolb/dRPC/rpc/common"
	"github.com/ValentinKolb/dRPC/rpc/node"
	"github.com/ValentinKolb/dRPC/rpc/transport"
	"github.com/ValentinKolb/dRPC/rpc/transport/tcp"
	"github.com/ValentinKolb/dRPC/rpc/waitset"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// CallCommand sends one request to a running add-two-ints service
var CallCommand = &cobra.Command{
	Use:   "call",
	Short: "Call the add-two-ints demo service once",
	Long: util.WrapString(`Send one request {a, b} to a running add-two-ints
service and print the sum from the correlated response.`),
	RunE: runCall,
}

func init() {
	cobra.OnInitialize(util.InitConfig)

	util.SetupTransportFlags(CallCommand)

	CallCommand.Flags().Int64("a", 41, util.WrapString("First summand"))
	CallCommand.Flags().Int64("b", 1, util.WrapString("Second summand"))
	CallCommand.Flags().Int("timeout", 10, util.WrapString("How long to wait for the response (in seconds)"))
}

func runCall(cmd *cobra.Command, _ []string) error {
	if err := util.BindCommandFlags(cmd); err != nil {
		return err
	}

	config := util.GetClientConfig()
	common.InitLoggers(viper.GetString("log-level"))

	ser, err := util.GetSerializer()
	if err != nil {
		return err
	}

	n, err := node.New(common.NodeConfig{Name: "drpc-call"}, tcp.New(config.Transport))
	if err != nil {
		return err
	}

	cli, err := client.New[addtwoints.Request, addtwoints.Response](n, config.Topic, ser,
		transport.EndpointOptions{QueueSize: config.Transport.QueueSize})
	if err != nil {
		return err
	}
	defer func() {
		_ = cli.Close()
		_ = n.Close()
	}()

	ws := waitset.New()
	ws.Add(cli)

	req := &addtwoints.Request{
		A: viper.GetInt64("a"),
		B: viper.GetInt64("b"),
	}

	future, err := cli.CallAsync(req)
	if err != nil {
		return fmt.Errorf("failed to send request: %w", err)
	}

	ctx := context.Background()
	if config.TimeoutSecond > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, time.Duration(config.TimeoutSecond)*time.Second)
		defer cancel()
	}

	resp, err := waitset.SpinUntilFutureComplete(ctx, ws, future)
	if err != nil {
		return fmt.Errorf("no response: %w", err)
	}

	fmt.Printf("Result of %d + %d is: %d\n", req.A, req.B, resp.Sum)
	return nil
}
