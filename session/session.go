package session

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"errors"
	"log"
	"os"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/keepalive"

	"github.com/rlubke/coherence-go-client/internal/wire"
	"github.com/rlubke/coherence-go-client/pb"
	"github.com/rlubke/coherence-go-client/serializer"
)

// defaultKeepaliveTime/Timeout mirror the ChannelOptions defaults
// used by the pack's own gRPC streaming client (laserstream SDK),
// applied here as the Session's fixed keepalive policy.
const (
	defaultKeepaliveTime    = 30 * time.Second
	defaultKeepaliveTimeout = 5 * time.Second
)

var errMissingTLSPaths = errors.New("session: tlsEnabled requires caCertPath, clientCertPath, and clientKeyPath")

// Session owns the one gRPC connection every Cache obtained from it
// shares (spec §5). Sessions own channels; each map owns its own
// Events Manager on top of that shared channel (spec §9 "avoid global
// mutable state").
type Session struct {
	opts   Options
	conn   *grpc.ClientConn
	client pb.NamedCacheClient
	ser    serializer.Serializer
	logger *log.Logger
}

// New dials the configured address and returns a Session ready to
// produce Cache instances. newClient adapts a *grpc.ClientConn into a
// pb.NamedCacheClient; production callers pass the generated
// constructor, tests pass a fake.
func New(ctx context.Context, opts Options, newClient func(*grpc.ClientConn) pb.NamedCacheClient, logger *log.Logger) (*Session, error) {
	if opts.TLSEnabled && (opts.CACertPath == "" || opts.ClientCertPath == "" || opts.ClientKeyPath == "") {
		return nil, wire.Newf(wire.KindPreconditionFailure, "session.New",
			errMissingTLSPaths)
	}

	creds, err := dialCredentials(opts)
	if err != nil {
		return nil, wire.Newf(wire.KindPreconditionFailure, "session.New", err)
	}

	ser, err := serializer.ByFormat(opts.Format)
	if err != nil {
		return nil, wire.Newf(wire.KindPreconditionFailure, "session.New", err)
	}

	conn, err := grpc.DialContext(ctx, opts.Address,
		grpc.WithTransportCredentials(creds),
		grpc.WithKeepaliveParams(keepalive.ClientParameters{
			Time:                defaultKeepaliveTime,
			Timeout:             defaultKeepaliveTimeout,
			PermitWithoutStream: true,
		}),
	)
	if err != nil {
		return nil, wire.Newf(wire.KindTransportFailure, "session.New", err)
	}

	if logger == nil {
		logger = log.Default()
	}

	return &Session{
		opts:   opts,
		conn:   conn,
		client: newClient(conn),
		ser:    ser,
		logger: logger,
	}, nil
}

func dialCredentials(opts Options) (credentials.TransportCredentials, error) {
	if !opts.TLSEnabled {
		return insecure.NewCredentials(), nil
	}

	cert, err := tls.LoadX509KeyPair(opts.ClientCertPath, opts.ClientKeyPath)
	if err != nil {
		return nil, err
	}
	caBytes, err := os.ReadFile(opts.CACertPath)
	if err != nil {
		return nil, err
	}
	pool := x509.NewCertPool()
	if !pool.AppendCertsFromPEM(caBytes) {
		return nil, errors.New("session: failed to parse caCertPath PEM data")
	}

	return credentials.NewTLS(&tls.Config{
		Certificates: []tls.Certificate{cert},
		RootCAs:      pool,
	}), nil
}

// Close tears down the shared connection. Caches obtained from this
// Session must not be used afterward.
func (s *Session) Close() error {
	return s.conn.Close()
}

// Client exposes the underlying gRPC stub for package cache.
func (s *Session) Client() pb.NamedCacheClient { return s.client }

// Serializer exposes the session's configured Serializer for package cache.
func (s *Session) Serializer() serializer.Serializer { return s.ser }

// Logger exposes the session's logger for package cache.
func (s *Session) Logger() *log.Logger { return s.logger }

// RequestTimeout reports the configured per-call timeout. Neither the
// Session nor package cache applies it to requests; callers bound
// each call through the context they pass.
func (s *Session) RequestTimeout() time.Duration { return s.opts.requestTimeout() }

// LogMinLevel exposes the configured minimum log level for package cache.
func (s *Session) LogMinLevel() string { return s.opts.LogMinLevel }
