/*
Package configuration - reads the server configuration file. After ReadConfig
every setting is available through the global Config structure with the
documented defaults filled in for anything the file omits.
*/
package configuration

import (
	"io/ioutil"
	"os"
	"time"

	"gopkg.in/yaml.v2"
)

// ConfigFile - the whole configuration file
type ConfigFile struct {
	ServerTCPPort       string `yaml:"ServerTCPPort"`       // Bind address for the game listener, "host:port" or ":port"
	MaxPlayers          uint16 `yaml:"MaxPlayers"`          // Size of the player slot pool
	MaxSessions         uint16 `yaml:"MaxSessions"`         // Maximum concurrent game sessions
	HeartbeatPeriod     uint16 `yaml:"HeartbeatPeriod"`     // Seconds between heartbeat passes
	GracefulCheckPeriod uint16 `yaml:"GracefulCheckPeriod"` // Seconds between graceful timeout passes
	GracefulTimeout     uint16 `yaml:"GracefulTimeout"`     // Seconds a session survives a clean disconnect
	MaxMissedHeartbeats uint16 `yaml:"MaxMissedHeartbeats"` // Missed heartbeat ceiling before the session is terminated
	DisableHeartbeat    bool   `yaml:"DisableHeartbeat"`    // Turns the heartbeat task off, graceful timeouts stay active
	MaxPacketSize       uint16 `yaml:"MaxPacketSize"`       // Maximum buffered Kb per connection without a terminator
	MaxConnectionFromIP uint32 `yaml:"MaxConnectionFromIP"` // Connection limit per remote IP, 0 disables the limit
	OldIPAddrTimeout    uint16 `yaml:"OldIPAddrTimeout"`    // Minutes of inactivity after which an IP counter resets
	ResultStore         string `yaml:"ResultStore"`         // Path to the finished match ledger, created when missing
	LogPath             string `yaml:"LogPath"`             // Directory for rotated log files, empty logs to stdout only
	SaveDuration        uint16 `yaml:"SaveDuration"`        // Minutes between log file rotations
}

// Config - global structure with the whole server configuration
var Config ConfigFile

// ReadConfig - loads filePath and applies defaults for missing values
func ReadConfig(filePath string) error {
	f, err := os.Open(filePath)
	if err != nil {
		return err
	}
	defer f.Close()
	data, err := ioutil.ReadAll(f)
	if err != nil {
		return err
	}
	if err = yaml.Unmarshal(data, &Config); err != nil {
		return err
	}
	applyDefaults(&Config)
	return nil
}

func applyDefaults(c *ConfigFile) {
	if len(c.ServerTCPPort) == 0 {
		c.ServerTCPPort = ":10000"
	}
	if c.MaxPlayers == 0 {
		c.MaxPlayers = 10
	}
	if c.MaxSessions == 0 {
		c.MaxSessions = 10
	}
	if c.HeartbeatPeriod == 0 {
		c.HeartbeatPeriod = 2
	}
	if c.GracefulCheckPeriod == 0 {
		c.GracefulCheckPeriod = 1
	}
	if c.GracefulTimeout == 0 {
		c.GracefulTimeout = 30
	}
	if c.MaxMissedHeartbeats == 0 {
		c.MaxMissedHeartbeats = 20
	}
	if c.MaxPacketSize == 0 {
		c.MaxPacketSize = 4 // Kb
	}
	if c.OldIPAddrTimeout == 0 {
		c.OldIPAddrTimeout = uint16(12 * 60)
	}
	if c.SaveDuration == 0 {
		c.SaveDuration = uint16(24 * 60) // Once a day by default
	}
}

// HeartbeatPeriodDuration - heartbeat pass period as a time.Duration
func HeartbeatPeriodDuration() time.Duration {
	return time.Duration(Config.HeartbeatPeriod) * time.Second
}

// GracefulCheckDuration - graceful pass period as a time.Duration
func GracefulCheckDuration() time.Duration {
	return time.Duration(Config.GracefulCheckPeriod) * time.Second
}

// GracefulTimeoutDuration - reconnect grace window as a time.Duration
func GracefulTimeoutDuration() time.Duration {
	return time.Duration(Config.GracefulTimeout) * time.Second
}
