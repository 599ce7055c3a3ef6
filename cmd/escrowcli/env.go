package main

import (
	"os"
)

// env returns the value of an environment variable if provided (even if empty)
// or a fallback value.
func env(name, fallback string) string {
	if v, ok := os.LookupEnv(name); ok {
		return v
	}
	return fallback
}

// defaultKeyPath is where keygen writes and sign reads the private key.
func defaultKeyPath() string {
	return env("ESCROWCLI_PRIV_KEY", os.Getenv("HOME")+"/.escrowd.priv.key")
}

// defaultTmAddr is the address of the tendermint RPC server.
func defaultTmAddr() string {
	return env("ESCROWCLI_TM_ADDR", "http://localhost:26657")
}
