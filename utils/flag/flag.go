/*
flag Package set up cli flags shared across services

Usage:

	Flags listed in this package are shared across boundaries and service-agnostic
	For service dependent flags please define in their respective package

TODO(jamie): move to more powerful cli lib https://github.com/spf13/cobra
*/

package flag

import (
	"flag"
)

const (
	APIServer = "api_server"
)

var (
	// Name of the running service, attached to every log line and trace.
	ServiceName *string
	// Run against the in-memory store instead of PostgreSQL / Redis. Only
	// meant for local development.
	UseMemoryStore *bool
	// Path to the yaml app setting file, empty means built-in defaults.
	AppSettingPath *string
)

func init() {
	ServiceName = flag.String("service", APIServer, "name of the service, default to 'api_server'")
	UseMemoryStore = flag.Bool("memory", false, "use in-memory storage instead of postgres and redis")
	AppSettingPath = flag.String("config", "", "path to the yaml app setting file")
}

// ParseFlags must be called in main before reading any flag.
func ParseFlags() {
	flag.Parse()
}
