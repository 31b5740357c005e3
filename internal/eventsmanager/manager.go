// Package eventsmanager implements the Events Manager (spec §4.5):
// it owns the one duplex stream for a map, routes every inbound
// message, correlates outbound subscription acks, and manages
// lifecycle notifications (DESTROYED/TRUNCATED).
//
// Its shape is grounded directly on the teacher's RPCClient
// (rpc_client.go): dispatch/dispatchLock becomes pendingAcks/mu;
// listen() becomes dispatchLoop; respondSeq() becomes resolveAck;
// Close()/deregisterAll() becomes Close(); shutdownCh becomes
// closedCh. Where the teacher dispatches one seqHandler per
// outstanding call, this manager additionally fans events out to
// many coalesced listenergroup.Group instances via two indexes
// (keyGroups, filterGroups) plus a third (filterIdIndex) for O(1)
// routing of server-assigned filter ids, per spec §3.
package eventsmanager

import (
	"context"
	"io"
	"log"
	"sync"
	"sync/atomic"

	multierror "github.com/hashicorp/go-multierror"
	"github.com/hashicorp/logutils"

	"github.com/rlubke/coherence-go-client/internal/event"
	"github.com/rlubke/coherence-go-client/internal/factory"
	"github.com/rlubke/coherence-go-client/internal/listenergroup"
	"github.com/rlubke/coherence-go-client/internal/wire"
	"github.com/rlubke/coherence-go-client/pb"
	"github.com/rlubke/coherence-go-client/serializer"
)

// Lifecycle identifies a map-scoped lifecycle notification.
type Lifecycle int

const (
	LifecycleDestroyed Lifecycle = iota
	LifecycleTruncated
)

type ackResult struct {
	err error
}

// Manager is process-wide, map-scoped: exactly one Manager exists per
// Cache, created lazily on the first addListener call (spec §3
// Events Manager lifecycle).
type Manager struct {
	client    pb.NamedCacheClient
	cacheName string
	ser       serializer.Serializer
	logger    *log.Logger

	mu           sync.Mutex
	keyGroups    map[string]*listenergroup.KeyGroup
	filterGroups map[string]*listenergroup.FilterGroup
	filterIDIdx  map[wire.FilterID]*listenergroup.FilterGroup
	pendingAcks  map[wire.CorrelationID]chan ackResult
	stream       pb.EventsStream
	cancel       context.CancelFunc
	closing      bool
	destroyed    bool

	streamOnce sync.Once
	streamErr  error

	nextFilterID int32

	closedCh    chan struct{}
	errCh       chan error
	lifecycleCh chan Lifecycle
}

// New constructs a Manager for cacheName. The duplex stream is not
// opened until the first subscription attempt (spec §4.5).
func New(client pb.NamedCacheClient, cacheName string, ser serializer.Serializer, logger *log.Logger, minLevel string) *Manager {
	if logger == nil {
		logger = log.Default()
	}
	if minLevel == "" {
		minLevel = "WARN"
	}
	logger = leveledLogger(logger, minLevel)
	return &Manager{
		client:       client,
		cacheName:    cacheName,
		ser:          ser,
		logger:       logger,
		keyGroups:    make(map[string]*listenergroup.KeyGroup),
		filterGroups: make(map[string]*listenergroup.FilterGroup),
		filterIDIdx:  make(map[wire.FilterID]*listenergroup.FilterGroup),
		pendingAcks:  make(map[wire.CorrelationID]chan ackResult),
		closedCh:     make(chan struct{}),
		errCh:        make(chan error, 16),
		lifecycleCh:  make(chan Lifecycle, 4),
	}
}

// Errors returns the channel asynchronous TransportFailure errors
// (the stream ending or failing while not closing) are published on
// (spec §7). Unrecognized inbound messages are logged, not published.
func (m *Manager) Errors() <-chan error { return m.errCh }

// Lifecycle returns the channel DESTROYED/TRUNCATED notifications are
// published on (spec §4.5).
func (m *Manager) Lifecycle() <-chan Lifecycle { return m.lifecycleCh }

// Destroyed reports whether a DESTROYED message has been observed for
// this map (spec scenario 5: subsequent operations then fail with
// PreconditionFailure).
func (m *Manager) Destroyed() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.destroyed
}

// ensureStream opens the duplex stream on first use and returns the
// cached handle thereafter (spec §4.5: "idempotent and returns a
// one-shot cached handle").
func (m *Manager) ensureStream(ctx context.Context) (pb.EventsStream, error) {
	m.streamOnce.Do(func() {
		m.streamErr = m.openStream(ctx)
	})
	if m.streamErr != nil {
		return nil, m.streamErr
	}
	m.mu.Lock()
	s := m.stream
	m.mu.Unlock()
	return s, nil
}

func (m *Manager) openStream(ctx context.Context) error {
	streamCtx, cancel := context.WithCancel(context.Background())
	stream, err := m.client.Events(streamCtx)
	if err != nil {
		cancel()
		return wire.Newf(wire.KindTransportFailure, "eventsmanager.ensureStream", err)
	}
	m.mu.Lock()
	m.cancel = cancel
	m.mu.Unlock()

	go m.dispatchLoop(stream)

	initReq := factory.Init(m.cacheName)
	uid := wire.CorrelationID(initReq.Uid)
	ch := make(chan ackResult, 1)
	m.mu.Lock()
	m.pendingAcks[uid] = ch
	m.mu.Unlock()

	if err := stream.Send(initReq); err != nil {
		m.mu.Lock()
		delete(m.pendingAcks, uid)
		m.mu.Unlock()
		cancel()
		return wire.Newf(wire.KindTransportFailure, "eventsmanager.ensureStream", err)
	}

	select {
	case res := <-ch:
		if res.err != nil {
			cancel()
			return res.err
		}
	case <-ctx.Done():
		m.mu.Lock()
		delete(m.pendingAcks, uid)
		m.mu.Unlock()
		cancel()
		return wire.Newf(wire.KindTimeout, "eventsmanager.ensureStream", ctx.Err())
	case <-m.closedCh:
		cancel()
		return wire.Newf(wire.KindCancelled, "eventsmanager.ensureStream", nil)
	}

	m.mu.Lock()
	m.stream = stream
	m.mu.Unlock()
	return nil
}

// WriteRequest implements listenergroup.Subscriber: it registers a
// one-shot continuation keyed by the request's correlation id, writes
// the request, and blocks until ack or error (spec §4.5 writeRequest).
func (m *Manager) WriteRequest(ctx context.Context, req *pb.ListenerRequest) error {
	stream, err := m.ensureStream(ctx)
	if err != nil {
		return err
	}

	uid := wire.CorrelationID(req.Uid)
	ch := make(chan ackResult, 1)

	m.mu.Lock()
	if m.closing {
		m.mu.Unlock()
		return wire.Newf(wire.KindCancelled, "eventsmanager.writeRequest", nil)
	}
	m.pendingAcks[uid] = ch
	m.mu.Unlock()

	if err := stream.Send(req); err != nil {
		m.mu.Lock()
		delete(m.pendingAcks, uid)
		m.mu.Unlock()
		return wire.Newf(wire.KindTransportFailure, "eventsmanager.writeRequest", err)
	}

	select {
	case res := <-ch:
		return res.err
	case <-ctx.Done():
		m.mu.Lock()
		delete(m.pendingAcks, uid)
		m.mu.Unlock()
		return wire.Newf(wire.KindTimeout, "eventsmanager.writeRequest", ctx.Err())
	case <-m.closedCh:
		return wire.Newf(wire.KindCancelled, "eventsmanager.writeRequest", nil)
	}
}

func (m *Manager) dispatchLoop(stream pb.EventsStream) {
	for {
		resp, err := stream.Recv()
		if err != nil {
			m.handleStreamEnd(err)
			return
		}
		m.handleResponse(resp)
	}
}

func (m *Manager) handleStreamEnd(err error) {
	m.mu.Lock()
	closing := m.closing
	m.mu.Unlock()
	if closing {
		return // expected, suppressed per spec §7 Cancelled
	}
	if err == io.EOF {
		err = io.ErrUnexpectedEOF
	}
	m.surfaceError(wire.Newf(wire.KindTransportFailure, "eventsmanager.dispatchLoop", err))
}

func (m *Manager) surfaceError(err error) {
	m.logger.Printf("[ERR] eventsmanager(%s): %v", m.cacheName, err)
	select {
	case m.errCh <- err:
	default:
		m.logger.Printf("[WARN] eventsmanager(%s): dropping error, channel full", m.cacheName)
	}
}

// emitLifecycle holds mu for the send so it can never race Close's
// close(m.lifecycleCh): either this runs first and Close blocks on mu
// until it's done, or closing is already true and this is a no-op.
func (m *Manager) emitLifecycle(l Lifecycle) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closing {
		return
	}
	select {
	case m.lifecycleCh <- l:
	default:
		m.logger.Printf("[WARN] eventsmanager(%s): dropping lifecycle notification, channel full", m.cacheName)
	}
}

func (m *Manager) handleResponse(resp *pb.ListenerResponse) {
	switch resp.Type {
	case pb.ListenerResponseSubscribed, pb.ListenerResponseUnsubscribed:
		m.resolveAck(wire.CorrelationID(resp.Uid))
	case pb.ListenerResponseDestroyed:
		m.mu.Lock()
		m.destroyed = true
		m.mu.Unlock()
		m.emitLifecycle(LifecycleDestroyed)
	case pb.ListenerResponseTruncated:
		m.emitLifecycle(LifecycleTruncated)
	case pb.ListenerResponseEvent:
		m.dispatchEvent(resp)
	default:
		m.logger.Printf("[WARN] eventsmanager(%s): unrecognized response type %v", m.cacheName, resp.Type)
	}
}

func (m *Manager) resolveAck(uid wire.CorrelationID) {
	m.mu.Lock()
	ch, ok := m.pendingAcks[uid]
	if ok {
		delete(m.pendingAcks, uid)
	}
	m.mu.Unlock()
	if ok {
		ch <- ackResult{}
	}
}

// dispatchEvent constructs the immutable MapEvent and notifies every
// matching group: filter-id matches first, then the key-fingerprint
// match, neither suppressing the other (spec §4.5).
func (m *Manager) dispatchEvent(resp *pb.ListenerResponse) {
	ev := event.New(m.cacheName, m.ser, resp)

	m.mu.Lock()
	var groups []listenergroup.Group
	seen := make(map[*listenergroup.FilterGroup]bool, len(resp.FilterIds))
	for _, fid := range resp.FilterIds {
		if g, ok := m.filterIDIdx[wire.FilterID(fid)]; ok && !seen[g] {
			seen[g] = true
			groups = append(groups, g)
		}
	}
	if fp := serializer.FingerprintBytes(resp.Key); fp != "" {
		if g, ok := m.keyGroups[fp]; ok {
			groups = append(groups, g)
		}
	}
	m.mu.Unlock()

	for _, g := range groups {
		g.Notify(ev)
	}
}

// Close cancels the duplex stream and rejects every outstanding ack
// with Cancelled (spec §4.5 close, §8 invariant 4).
func (m *Manager) Close() error {
	m.mu.Lock()
	if m.closing {
		m.mu.Unlock()
		return nil
	}
	m.closing = true
	pending := m.pendingAcks
	m.pendingAcks = make(map[wire.CorrelationID]chan ackResult)
	cancel := m.cancel
	close(m.lifecycleCh)
	m.mu.Unlock()

	close(m.closedCh)

	var merr *multierror.Error
	cancelledErr := wire.Newf(wire.KindCancelled, "eventsmanager.Close", nil)
	for _, ch := range pending {
		ch <- ackResult{err: cancelledErr}
	}
	if cancel != nil {
		cancel()
	}
	return merr.ErrorOrNil()
}

// nextFilterIDValue returns the next client-assigned filter id (spec
// §4.1: "filter-subscription requests carry a client-assigned filter
// id that the server will echo").
func (m *Manager) nextFilterIDValue() wire.FilterID {
	return wire.FilterID(atomic.AddInt32(&m.nextFilterID, 1))
}

// leveledLogger wraps l with logutils level filtering, matching the
// teacher's own logutils.LevelFilter usage around a stdlib *log.Logger.
func leveledLogger(l *log.Logger, minLevel string) *log.Logger {
	filter := &logutils.LevelFilter{
		Levels:   []logutils.LogLevel{"DEBUG", "WARN", "ERR"},
		MinLevel: logutils.LogLevel(minLevel),
		Writer:   l.Writer(),
	}
	return log.New(filter, l.Prefix(), l.Flags())
}
