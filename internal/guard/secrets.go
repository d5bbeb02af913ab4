package guard

import (
	"os"
	"strconv"
)

const DefaultEnvPrefix = "API_KEY"

// LookupFunc has the signature of os.LookupEnv.
type LookupFunc func(key string) (string, bool)

type SecretSource string

const (
	SourceExplicit    SecretSource = "explicit"
	SourceEnvironment SecretSource = "environment"
)

// LoadSecrets scans PREFIX_1, PREFIX_2, ... and stops at the first missing or
// empty entry. A nil lookup reads the process environment.
func LoadSecrets(prefix string, lookup LookupFunc) []string {
	if lookup == nil {
		lookup = os.LookupEnv
	}
	var out []string
	for i := 1; ; i++ {
		v, ok := lookup(prefix + "_" + strconv.Itoa(i))
		if !ok || v == "" {
			return out
		}
		out = append(out, v)
	}
}
