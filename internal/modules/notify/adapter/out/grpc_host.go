package out

import (
	"context"
	"fmt"
	"os/exec"
	"time"

	notifyrpc "pursue/internal/modules/notify/adapter/out/rpc"
	"pursue/internal/modules/notify/domain"
	notifyout "pursue/internal/modules/notify/port/out"

	hclog "github.com/hashicorp/go-hclog"
	"github.com/hashicorp/go-plugin"
)

const defaultStartTimeout = 3 * time.Second

type GRPCHost struct {
	logger hclog.Logger
}

// NewGRPCHost launches push providers as go-plugin subprocesses. A nil logger
// discards plugin output.
func NewGRPCHost(logger hclog.Logger) notifyout.Host {
	if logger == nil {
		logger = hclog.NewNullLogger()
	}
	return &GRPCHost{logger: logger}
}

func (h *GRPCHost) Open(_ context.Context, manifest domain.Manifest) (notifyout.Connection, error) {
	client := plugin.NewClient(&plugin.ClientConfig{
		HandshakeConfig:  notifyrpc.HandshakeConfig,
		AllowedProtocols: []plugin.Protocol{plugin.ProtocolGRPC},
		Plugins:          notifyrpc.PluginMap(nil),
		Cmd:              exec.Command(manifest.Binary),
		Managed:          true,
		StartTimeout:     defaultStartTimeout,
		Logger:           h.logger.Named("push"),
	})

	rpcClient, err := client.Client()
	if err != nil {
		client.Kill()
		return nil, fmt.Errorf("start push plugin: %w", err)
	}
	raw, err := rpcClient.Dispense(notifyrpc.PluginMapKey)
	if err != nil {
		client.Kill()
		return nil, fmt.Errorf("dispense push plugin: %w", err)
	}
	typed, ok := raw.(notifyrpc.PushProviderClient)
	if !ok {
		client.Kill()
		return nil, fmt.Errorf("push plugin rpc client type mismatch")
	}
	return &grpcConnection{client: client, rpc: typed}, nil
}

type grpcConnection struct {
	client *plugin.Client
	rpc    notifyrpc.PushProviderClient
}

func (c *grpcConnection) Metadata(ctx context.Context) (domain.Metadata, error) {
	meta, err := c.rpc.GetMetadata(ctx)
	if err != nil {
		return domain.Metadata{}, fmt.Errorf("get metadata: %w", err)
	}
	return domain.Metadata{Name: meta.Name, Version: meta.Version}, nil
}

func (c *grpcConnection) Send(ctx context.Context, message domain.Message) error {
	response, err := c.rpc.Send(ctx, &notifyrpc.SendRequest{
		UserID:  message.UserID,
		GroupID: message.GroupID,
		Type:    message.Type,
		Title:   message.Title,
		Body:    message.Body,
		Data:    message.Data,
	})
	if err != nil {
		return fmt.Errorf("send: %w", err)
	}
	if !response.Accepted {
		return fmt.Errorf("%w: %s", domain.ErrRejected, response.Reason)
	}
	return nil
}

func (c *grpcConnection) Close() {
	c.client.Kill()
}
