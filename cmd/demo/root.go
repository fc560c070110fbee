package demo

import (
	"context"
	"fmt"
	"time"

	"github.com/ValentinKolb/dRPC/cmd/util"
	"github.com/ValentinKolb/dRPC/lib/addtwoints"
	"github.com/ValentinKolb/dRPC/rpc/client"
	"github.com/ValentinKolb/dRPC/rpc/common"
	"github.com/ValentinKolb/dRPC/rpc/node"
	"github.com/ValentinKolb/dRPC/rpc/service"
	"github.com/ValentinKolb/dRPC/rpc/transport"
	"github.com/ValentinKolb/dRPC/rpc/transport/inproc"
	"github.com/ValentinKolb/dRPC/rpc/waitset"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// DemoCommand runs client and service in one process over the in-memory
// transport
var DemoCommand = &cobra.Command{
	Use:   "demo",
	Short: "Run the full request/response loop in one process",
	Long: util.WrapString(`Create a node, an add-two-ints service and a client
on the in-memory transport, send one request through the wait set and print
the correlated response. No network involved.`),
	RunE: runDemo,
}

func init() {
	cobra.OnInitialize(util.InitConfig)

	DemoCommand.Flags().Int64("a", 41, util.WrapString("First summand"))
	DemoCommand.Flags().Int64("b", 1, util.WrapString("Second summand"))
	DemoCommand.Flags().String("log-level", "info", util.WrapString("Log level (debug, info, warn, error)"))
}

func runDemo(cmd *cobra.Command, _ []string) error {
	if err := util.BindCommandFlags(cmd); err != nil {
		return err
	}

	common.InitLoggers(viper.GetString("log-level"))

	ser, err := util.GetSerializer()
	if err != nil {
		return err
	}

	n, err := node.New(common.NodeConfig{Name: "drpc-demo"}, inproc.New())
	if err != nil {
		return err
	}

	svc, err := service.New(n, addtwoints.Topic, ser, transport.EndpointOptions{}, addtwoints.Handler)
	if err != nil {
		return err
	}

	cli, err := client.New[addtwoints.Request, addtwoints.Response](n, addtwoints.Topic, ser, transport.EndpointOptions{})
	if err != nil {
		return err
	}

	defer func() {
		_ = cli.Close()
		_ = svc.Close()
		_ = n.Close()
	}()

	ws := waitset.New()
	ws.Add(svc)
	ws.Add(cli)

	req := &addtwoints.Request{
		A: viper.GetInt64("a"),
		B: viper.GetInt64("b"),
	}

	future, err := cli.CallAsync(req)
	if err != nil {
		return fmt.Errorf("failed to send request: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	resp, err := waitset.SpinUntilFutureComplete(ctx, ws, future)
	if err != nil {
		return fmt.Errorf("no response: %w", err)
	}

	fmt.Printf("Result of %d + %d is: %d\n", req.A, req.B, resp.Sum)
	return nil
}
