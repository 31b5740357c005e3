// Package session bootstraps the shared connection every Cache
// obtained from it multiplexes over (spec §5: "one underlying
// connection/channel per session, shared by all maps in that
// session"). Session/connection bootstrap and TLS setup are named in
// spec §1 as external collaborators referenced only by contract; this
// package is the concrete realization of that contract, grounded on
// the teacher's own Config/ClientFromConfig split (rpc_client.go).
package session

import (
	"os"
	"strings"
	"time"
)

// DefaultRequestTimeout mirrors the teacher's DefaultTimeout constant
// (rpc_client.go). It is the value Session.RequestTimeout reports when
// RequestTimeoutInMillis is unset; no operation in this module applies
// that value as a deadline, so each call is bounded only by the
// context its caller passes.
const DefaultRequestTimeout = 10 * time.Second

// Options configures a Session (spec §6 Configuration surface).
type Options struct {
	Address                string
	RequestTimeoutInMillis int
	TLSEnabled             bool
	CACertPath             string
	ClientCertPath         string
	ClientKeyPath          string
	Format                 string
	LogMinLevel            string // "DEBUG" | "WARN" | "ERR"; default "WARN"
}

// truthyTLSEnabled is the set of TLS_ENABLED values spec §6 requires
// to select a default of true.
var truthyTLSEnabled = map[string]bool{"true": true, "1": true}

// NewOptionsFromEnv seeds Options.TLSEnabled from the TLS_ENABLED
// environment variable before the caller applies any explicit
// overrides (spec §6).
func NewOptionsFromEnv() Options {
	var opts Options
	if v, ok := os.LookupEnv("TLS_ENABLED"); ok {
		opts.TLSEnabled = truthyTLSEnabled[strings.ToLower(strings.TrimSpace(v))]
	}
	return opts
}

func (o Options) requestTimeout() time.Duration {
	if o.RequestTimeoutInMillis <= 0 {
		return DefaultRequestTimeout
	}
	return time.Duration(o.RequestTimeoutInMillis) * time.Millisecond
}
