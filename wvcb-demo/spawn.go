package main

import (
	"context"
	"time"

	"github.com/hsfzxjy/wvcb/internal/config"
	"github.com/hsfzxjy/wvcb/internal/ipc"
)

type SpawnCommand struct {
	config.SpawnOpts
}

func (cmd *SpawnCommand) Execute(args []string) error {
	path := cmd.Socket.Path
	if path == "" {
		var c config.ConfigStruct
		if err := c.Parse(cmd.ConfigFile); err != nil {
			return err
		}
		path = c.Ipc.SocketPath
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	client, err := ipc.Dial(ctx, path)
	if err != nil {
		return err
	}
	defer client.Close()

	time.Sleep(time.Duration(cmd.Delay) * time.Millisecond)
	if err := client.Write("webview_unbind", boundName); err != nil {
		return err
	}
	return client.Write("webview_terminate")
}
