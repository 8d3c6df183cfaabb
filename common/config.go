package common

import (
	"encoding/json"
	"io"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

// DefaultListenAddress is used when the configuration doesn't set one
const DefaultListenAddress = ":8080"

// Config is the render service configuration
type Config struct {
	ListenAddress string
	// Accounts maps account names, as used in request paths, to their ECS credentials
	Accounts map[string]Account
	// Token is the shared secret; requests carry a bcrypt hash of it
	Token    string
	LogLevel string
	Version  Version `json:"-"`
}

// Account is an AWS account task definitions can be registered in
type Account struct {
	Region string
	Akid   string
	Secret string
	// DefaultExecutionRoleArn is applied to task definitions without an execution role
	DefaultExecutionRoleArn string
}

// Version is the build information reported by the service
type Version struct {
	Version           string
	VersionPrerelease string
	BuildStamp        string
	GitHash           string
}

// ReadConfig decodes the configuration from an io Reader and fills in defaults
func ReadConfig(r io.Reader) (Config, error) {
	var c Config
	log.Infoln("Reading configuration")
	if err := json.NewDecoder(r).Decode(&c); err != nil {
		return c, errors.Wrap(err, "unable to decode JSON message")
	}

	if c.ListenAddress == "" {
		c.ListenAddress = DefaultListenAddress
	}

	if c.Token == "" {
		return c, errors.New("token is required")
	}

	return c, nil
}

// Level is the logrus level for the configured log level, info if it's unset or unknown
func (c Config) Level() log.Level {
	switch c.LogLevel {
	case "error":
		return log.ErrorLevel
	case "warn":
		return log.WarnLevel
	case "debug":
		return log.DebugLevel
	default:
		return log.InfoLevel
	}
}
