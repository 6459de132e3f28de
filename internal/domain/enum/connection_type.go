package enum

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// ConnectionType is how a configured printer is reached
type ConnectionType string

const (
	ConnectionTypeNetwork ConnectionType = "network"
	ConnectionTypeSerial  ConnectionType = "serial"
	ConnectionTypeUSB     ConnectionType = "usb"
	ConnectionTypeSystem  ConnectionType = "system"
	ConnectionTypeBrowser ConnectionType = "browser"
)

func (t ConnectionType) String() string {
	return string(t)
}

// IsValid reports whether t is one of the known connection types
func (t ConnectionType) IsValid() bool {
	switch t {
	case ConnectionTypeNetwork, ConnectionTypeSerial, ConnectionTypeUSB, ConnectionTypeSystem, ConnectionTypeBrowser:
		return true
	}
	return false
}

func (t ConnectionType) MarshalJSON() ([]byte, error) {
	return json.Marshal(string(t))
}

func (t *ConnectionType) UnmarshalJSON(data []byte) error {
	var str string
	if err := json.Unmarshal(data, &str); err != nil {
		return err
	}
	ct := ConnectionType(str)
	if !ct.IsValid() {
		return fmt.Errorf("unknown connection type %q", str)
	}
	*t = ct
	return nil
}

func (t ConnectionType) Value() (driver.Value, error) {
	return string(t), nil
}

func (t *ConnectionType) Scan(value interface{}) error {
	if value == nil {
		*t = ConnectionTypeBrowser
		return nil
	}
	switch v := value.(type) {
	case string:
		*t = ConnectionType(v)
	case []byte:
		*t = ConnectionType(string(v))
	}
	return nil
}
