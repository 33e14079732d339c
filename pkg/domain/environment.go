package domain

import (
	"fmt"
	"strings"
)

// Environment is the deployment stage the service runs in. Trust decisions
// depend on it, so it is passed explicitly instead of read from process state.
type Environment int

const (
	EnvironmentProduction Environment = iota
	EnvironmentStaging
	EnvironmentTesting
	EnvironmentDevelopment
)

var environmentNames = map[Environment]string{
	EnvironmentProduction:  "production",
	EnvironmentStaging:     "staging",
	EnvironmentTesting:     "testing",
	EnvironmentDevelopment: "development",
}

// ParseEnvironment accepts the lowercase environment names. An empty value
// yields production so a misconfigured deployment never loosens trust.
func ParseEnvironment(s string) (Environment, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return EnvironmentProduction, nil
	}
	for env, name := range environmentNames {
		if name == s {
			return env, nil
		}
	}
	return EnvironmentProduction, fmt.Errorf("unknown environment: %s", s)
}

func (e Environment) String() string {
	if name, ok := environmentNames[e]; ok {
		return name
	}
	return "unknown"
}

// IsProduction reports whether e is the production stage.
func (e Environment) IsProduction() bool {
	return e == EnvironmentProduction
}
