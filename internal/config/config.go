package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/mitchellh/mapstructure"
	"github.com/spf13/viper"
)

const DefaultFile = "wvcb.config.yaml"

type ConfigStruct struct {
	Library struct {
		Path string `ms:"path"`
	} `ms:"library"`
	Window struct {
		Title  string `ms:"title"`
		Width  int    `ms:"width"`
		Height int    `ms:"height"`
		Debug  bool   `ms:"debug"`
		HTML   string `ms:"html"`
	} `ms:"window"`
	Script struct {
		Path     string `ms:"path"`
		Dispatch string `ms:"dispatch"`
		Bind     string `ms:"bind"`
	} `ms:"script"`
	Ipc struct {
		Enabled    bool   `ms:"enabled"`
		SocketPath string `ms:"socket-path"`
	} `ms:"ipc"`
	Log struct {
		Level       string `ms:"level"`
		Development bool   `ms:"development"`
	} `ms:"log"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("library.path", "")
	v.SetDefault("window.title", "Thread-safe Webview")
	v.SetDefault("window.width", 1200)
	v.SetDefault("window.height", 1200)
	v.SetDefault("window.debug", false)
	v.SetDefault("window.html", "")
	v.SetDefault("script.path", "")
	v.SetDefault("script.dispatch", "onDispatch")
	v.SetDefault("script.bind", "onBind")
	v.SetDefault("ipc.enabled", true)
	v.SetDefault("ipc.socket-path", filepath.Join(os.TempDir(), "wvcb.sock"))
	v.SetDefault("log.level", "info")
	v.SetDefault("log.development", false)
}

// Parse reads the YAML file at path. An empty path looks for DefaultFile in
// the working directory and falls back to defaults when there is none.
// WVCB_* variables override file values, e.g. WVCB_WINDOW_TITLE, and
// SOCKET_PATH overrides ipc.socket-path.
func (c *ConfigStruct) Parse(path string) error {
	v := viper.New()
	v.SetConfigType("yaml")
	setDefaults(v)

	v.SetEnvPrefix("WVCB")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()
	if err := v.BindEnv("ipc.socket-path", "WVCB_IPC_SOCKET_PATH", "SOCKET_PATH"); err != nil {
		return err
	}

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName(strings.TrimSuffix(DefaultFile, filepath.Ext(DefaultFile)))
		v.AddConfigPath(".")
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return fmt.Errorf("reading config: %w", err)
		}
	}

	err := v.UnmarshalExact(c, func(dc *mapstructure.DecoderConfig) {
		dc.ErrorUnused = true
		dc.TagName = "ms"
	})
	if err != nil {
		return fmt.Errorf("decoding config: %w", err)
	}

	if c.Library.Path != "" {
		if c.Library.Path, err = filepath.Abs(c.Library.Path); err != nil {
			return err
		}
	}
	if c.Window.Width <= 0 || c.Window.Height <= 0 {
		return fmt.Errorf("invalid window size %dx%d", c.Window.Width, c.Window.Height)
	}
	return nil
}
