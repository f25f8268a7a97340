package config

type RunOpts struct {
	ConfigFile string `short:"c" long:"config" description:"Path to wvcb config file"`
	Library    string `short:"l" long:"library" description:"Path to libwebview, overrides library.path"`
	Script     string `short:"s" long:"script" description:"JS or TS file with the dispatch and bind handlers"`
	NoIpc      bool   `long:"no-ipc" description:"Do not serve the remote-control socket"`
}

type SpawnOpts struct {
	ConfigFile string `short:"c" long:"config" description:"Path to wvcb config file"`
	Delay      int    `short:"d" long:"delay" default:"5000" description:"Milliseconds to wait before sending commands"`
	Socket     struct {
		Path string `positional-arg-name:"socket-path"`
	} `positional-args:"yes"`
}
