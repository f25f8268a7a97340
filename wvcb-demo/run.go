package main

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"os/signal"
	"syscall"
	"time"

	"github.com/hsfzxjy/wvcb"
	"github.com/hsfzxjy/wvcb/internal/config"
	"github.com/hsfzxjy/wvcb/internal/ipc"
	"github.com/hsfzxjy/wvcb/jsrt"
	"github.com/hsfzxjy/wvcb/webview"
	"go.uber.org/zap"
)

const boundName = "boundFn"

type RunCommand struct {
	config.RunOpts
}

func (cmd *RunCommand) Execute(args []string) error {
	var c config.ConfigStruct
	if err := c.Parse(cmd.ConfigFile); err != nil {
		return err
	}
	if cmd.Library != "" {
		c.Library.Path = cmd.Library
	}
	if cmd.Script != "" {
		c.Script.Path = cmd.Script
	}
	if cmd.NoIpc {
		c.Ipc.Enabled = false
	}

	logger, err := newLogger(&c)
	if err != nil {
		return err
	}
	defer logger.Sync()
	wvcb.SetLogger(logger)

	lib, err := webview.Load(c.Library.Path)
	if err != nil {
		return err
	}

	loop := wvcb.NewLoop(wvcb.WithLogger(logger.Named("loop"))).Start()
	defer loop.Close()
	tr := wvcb.New(loop, wvcb.WithLogger(logger.Named("trampoline")))

	rt, err := jsrt.New(loop)
	if err != nil {
		return err
	}
	defer rt.Close()
	defer func() {
		tr.Shutdown()
		logger.Info("callbacks shut down", zap.Any("stats", tr.Stats()))
	}()
	if err := rt.Register("log", func(msg string) { logger.Info(msg) }); err != nil {
		return err
	}
	if c.Script.Path != "" {
		err = rt.LoadFile(c.Script.Path)
	} else {
		_, err = rt.Eval(defaultScript)
	}
	if err != nil {
		return err
	}

	w := lib.Create(c.Window.Debug)
	if w == 0 {
		return fmt.Errorf("webview_create returned no window")
	}
	defer lib.Destroy(w)
	html := c.Window.HTML
	if html == "" {
		html = defaultHTML
	}
	if err := setupWindow(lib, w, &c, html); err != nil {
		return err
	}

	if c.Ipc.Enabled {
		srv, err := ipc.Serve(c.Ipc.SocketPath, remoteHandler(lib, w), logger.Named("ipc"))
		if err != nil {
			return err
		}
		defer srv.Close()
		if err := spawnSelf(srv.Path()); err != nil {
			logger.Warn("remote control not spawned", zap.Error(err))
		}
	}

	bindCb := tr.Bind(w, rt.BindFunc(c.Script.Bind), lib)
	bound, err := bindCb.Arg("I am the bound arg")
	if err != nil {
		return err
	}
	if err := lib.Bind(w, boundName, bindCb.Ptr(), bound.Ptr); err != nil {
		return err
	}
	dpCb := tr.Dispatch(rt.Func(c.Script.Dispatch))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	go func() {
		<-ctx.Done()
		lib.Terminate(w)
	}()
	go drive(ctx, logger, lib, w, dpCb, bindCb)

	logger.Info("webview running", zap.String("title", c.Window.Title))
	return lib.Run(w)
}

func setupWindow(lib *webview.Lib, w wvcb.Window, c *config.ConfigStruct, html string) error {
	if err := lib.SetSize(w, c.Window.Width, c.Window.Height, webview.HintNone); err != nil {
		return err
	}
	if err := lib.SetTitle(w, c.Window.Title); err != nil {
		return err
	}
	return lib.SetHTML(w, html)
}

// drive plays the part of application code running off the UI thread: it
// calls the bound function from the page, dispatches a few values and then
// closes both callbacks while calls may still be in flight.
func drive(ctx context.Context, logger *zap.Logger, lib *webview.Lib, w wvcb.Window, dpCb, bindCb *wvcb.Callback) {
	select {
	case <-time.After(time.Second):
	case <-ctx.Done():
		return
	}
	lib.Eval(w, boundName+"().then(res => appendBoundRes(res));")
	for i := 0; i < 4; i++ {
		lib.Eval(w, fmt.Sprintf("%s(%d).then(res => appendBoundRes(res));", boundName, i))
	}

	values := []any{nil, map[string]any{"val": "I am an Object arg"}, []any{"I am an Object array arg"}, 123.321, "etc..."}
	for _, v := range values {
		ref, err := dpCb.Arg(v)
		if err != nil {
			logger.Warn("dispatch argument not staged", zap.Error(err))
			continue
		}
		if err := lib.Dispatch(w, dpCb.Ptr(), ref.Ptr); err != nil {
			logger.Warn("dispatch failed", zap.Error(err))
		}
	}
	dpCb.Close(false)

	select {
	case <-time.After(500 * time.Millisecond):
	case <-ctx.Done():
		return
	}
	lib.Unbind(w, boundName)
	bindCb.Close(false)
}

func remoteHandler(lib *webview.Lib, w wvcb.Window) ipc.Handler {
	return func(ins ipc.Instruction) error {
		arg := func(i int) (string, error) {
			if i >= len(ins.Args) {
				return "", fmt.Errorf("%s: missing argument %d", ins.Command, i)
			}
			return ins.Args[i], nil
		}
		switch ins.Command {
		case "webview_terminate":
			return lib.Terminate(w)
		case "webview_unbind":
			name, err := arg(0)
			if err != nil {
				return err
			}
			return lib.Unbind(w, name)
		case "webview_eval":
			js, err := arg(0)
			if err != nil {
				return err
			}
			return lib.Eval(w, js)
		case "webview_set_title":
			title, err := arg(0)
			if err != nil {
				return err
			}
			return lib.SetTitle(w, title)
		default:
			return fmt.Errorf("unknown command %q", ins.Command)
		}
	}
}

func spawnSelf(socketPath string) error {
	exe, err := os.Executable()
	if err != nil {
		return err
	}
	cmd := exec.Command(exe, "spawn", socketPath)
	cmd.Stdout, cmd.Stderr = os.Stdout, os.Stderr
	if err := cmd.Start(); err != nil {
		return err
	}
	go cmd.Wait()
	return nil
}
