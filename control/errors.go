package control

import "fmt"

// ConfigError flags a control parameter that is missing or out of range.
type ConfigError struct {
	Name   string
	Reason string
}

func (e ConfigError) Error() string {
	return fmt.Sprintf("config error: %v %v", e.Name, e.Reason)
}
