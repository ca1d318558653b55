package configuration

type Configuration struct {
	Backend     string `usage:"native backend: inproc or libindy"`
	CallTimeout string `usage:"max wait for a native completion, 0s waits forever"`
	Workers     int    `usage:"inproc worker goroutines"`
	Script      string `usage:"read commands from this file instead of stdin"`
	LogLevel    string `usage:"debug, info, warn or error"`
	NoColor     bool   `usage:"disable colored output"`
	Version     bool   `usage:"show version and exit"`
	ShowBanner  bool   `usage:"show big banner"`
	ShowConfig  bool   `usage:"print config"`
}

func Default() Configuration {
	return Configuration{
		Backend:     "inproc",
		CallTimeout: "0s",
		Workers:     4,
		LogLevel:    "warn",
	}
}
