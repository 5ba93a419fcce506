// (c) netherd contributors 2023
//
// SPDX-License-Identifier: MIT

package dnsd

import (
	"context"
	"log/slog"
	"net/netip"
	"strings"
	"time"

	"github.com/netherd/netherd/daemon"
	"github.com/netherd/netherd/fault"
	"github.com/netherd/netherd/metrics"
	"github.com/netherd/netherd/promise"

	"github.com/google/uuid"
)

// DNSDaemon resolves host names in the background: producers enqueue lookup
// operations from arbitrary goroutines and immediately receive a promise,
// while the daemon's single worker goroutine executes the blocking lookups
// one at a time, in submission order, settling each promise in turn.
//
// Callers already running off the main loop can bypass the queue and use the
// synchronous [DNSDaemon.LookUp] on their own goroutine instead.
type DNSDaemon struct {
	d        *daemon.Daemon
	resolver Resolver
	log      *slog.Logger
	met      *metrics.DaemonMetrics
	timeout  time.Duration
	poll     time.Duration
}

// DNSDaemonOption can be passed to New when creating new [DNSDaemon] objects.
type DNSDaemonOption func(*DNSDaemon)

// WithResolver selects the resolution backend; the default is the
// [SystemResolver].
func WithResolver(r Resolver) DNSDaemonOption {
	return func(d *DNSDaemon) {
		d.resolver = r
	}
}

// WithLogger lets the daemon log through the specified logger instead of
// [slog.Default].
func WithLogger(log *slog.Logger) DNSDaemonOption {
	return func(d *DNSDaemon) {
		d.log = log
	}
}

// WithMetrics instruments the daemon with the specified Prometheus
// collectors.
func WithMetrics(m *metrics.DaemonMetrics) DNSDaemonOption {
	return func(d *DNSDaemon) {
		d.met = m
	}
}

// WithLookupTimeout bounds each queued lookup's resolver call. Zero means no
// bound beyond what the resolver imposes itself.
func WithLookupTimeout(timeout time.Duration) DNSDaemonOption {
	return func(d *DNSDaemon) {
		d.timeout = timeout
	}
}

// WithPollInterval overrides the worker's bounded wait between drain cycles;
// see [daemon.WithPollInterval].
func WithPollInterval(interval time.Duration) DNSDaemonOption {
	return func(d *DNSDaemon) {
		d.poll = interval
	}
}

// New returns a new, not yet started DNS daemon. Call [DNSDaemon.Start] and
// [DNSDaemon.Stop] once each during the host application's startup and
// shutdown sequences.
func New(options ...DNSDaemonOption) *DNSDaemon {
	d := &DNSDaemon{
		resolver: &SystemResolver{},
	}
	for _, opt := range options {
		opt(d)
	}
	if d.log == nil {
		d.log = slog.Default()
	}
	opts := []daemon.Option{
		daemon.WithLogger(d.log),
		daemon.WithMetrics(d.met),
	}
	if d.poll != 0 {
		opts = append(opts, daemon.WithPollInterval(d.poll))
	}
	d.d = daemon.New("dns", opts...)
	return d
}

// Start spins up the daemon's worker goroutine. Starting an already running
// daemon panics; see [daemon.Daemon.Start].
func (d *DNSDaemon) Start() {
	d.d.Start()
}

// Stop terminates the worker goroutine, waits for it to exit and discards any
// lookups still queued; their promises stay pending forever. Previously
// settled promises remain settled and readable. Stopping an already stopped
// daemon is a no-op.
func (d *DNSDaemon) Stop() {
	d.d.Stop()
}

// LookUp synchronously resolves the specified host and port into a socket
// address, blocking the calling goroutine for the duration of the lookup. The
// host may be a name, an IP literal, or a bracketed IPv6 literal such as
// "[::1]". On resolver failure the returned error is a [fault.Fault] with
// [fault.StatusResolverFailure] carrying the resolver's native diagnostic
// message.
func (d *DNSDaemon) LookUp(ctx context.Context, host string, port uint16) (netip.AddrPort, error) {
	addrport, err := lookUp(ctx, d.resolver, host, port)
	if err != nil {
		d.log.Debug("dns lookup failure", "host", host, "port", port, "err", err)
		return netip.AddrPort{}, err
	}
	d.log.Debug("dns lookup success", "host", host, "port", port, "result", addrport)
	return addrport, nil
}

// EnqueueForLookup submits a lookup of the specified host and port to the
// daemon and immediately returns the associated promise, never blocking the
// caller. On success the resolved address is written into the specified slot
// strictly before the promise settles, so observers seeing the promise
// succeed are guaranteed a fully populated slot. On failure the promise
// carries a [fault.Fault]; resolver failures keep their specific status and
// message, any other error is normalized into a generic internal fault.
//
// A producer that stops caring for the result should call the promise's
// Forget method: the daemon then skips the lookup entirely if it hasn't
// reached it yet.
func (d *DNSDaemon) EnqueueForLookup(slot *netip.AddrPort, host string, port uint16) *promise.Promise {
	p := promise.New()
	d.d.Submit(&queryOperation{
		daemon:  d,
		promise: p,
		slot:    slot,
		host:    host,
		port:    port,
		id:      uuid.NewString(),
	})
	return p
}

// queryOperation is one queued lookup, bound to the promise it settles and
// the slot it publishes the resolved address through.
type queryOperation struct {
	daemon  *DNSDaemon
	promise *promise.Promise
	slot    *netip.AddrPort
	host    string
	port    uint16
	id      string
}

var _ daemon.Operation = (*queryOperation)(nil)

// Discarded reports producer abandonment to the daemon worker.
func (op *queryOperation) Discarded() bool {
	if !op.promise.Abandoned() {
		return false
	}
	op.daemon.log.Debug("discarding abandoned dns query",
		"id", op.id, "host", op.host)
	return true
}

// Execute resolves the host and settles the promise. The slot is written only
// on the success path, before settling.
func (op *queryOperation) Execute() {
	d := op.daemon
	ctx := context.Background()
	if d.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, d.timeout)
		defer cancel()
	}
	addrport, err := lookUp(ctx, d.resolver, op.host, op.port)
	if err != nil {
		d.log.Info("dns lookup failure",
			"id", op.id, "host", op.host, "port", op.port, "err", err)
		d.met.Failed()
		op.promise.SetFailure(fault.Normalize(err))
		return
	}
	d.log.Debug("dns lookup success",
		"id", op.id, "host", op.host, "port", op.port, "result", addrport)
	*op.slot = addrport
	op.promise.SetSuccess()
}

// lookUp is the underlying blocking lookup primitive: bracket-strip the host,
// short-circuit IP literals, otherwise ask the resolver and build the socket
// address from the first result.
func lookUp(ctx context.Context, resolver Resolver, host string, port uint16) (netip.AddrPort, error) {
	host = stripBrackets(host)
	if addr, err := netip.ParseAddr(host); err == nil {
		return netip.AddrPortFrom(addr.Unmap(), port), nil
	}
	addrs, err := resolver.LookupHost(ctx, host)
	if err != nil {
		return netip.AddrPort{}, resolverFault(err)
	}
	if len(addrs) == 0 {
		return netip.AddrPort{}, fault.Newf(fault.StatusResolverFailure,
			"lookup %s: no addresses", host)
	}
	return netip.AddrPortFrom(addrs[0], port), nil
}

// resolverFault turns a resolver error into a resolver-failure fault,
// preserving faults the resolver raised itself.
func resolverFault(err error) error {
	if f, ok := err.(*fault.Fault); ok {
		return f
	}
	return fault.New(fault.StatusResolverFailure, err.Error())
}

// stripBrackets removes the brackets from a "[...]" IPv6 address literal in
// bracket notation, leaving all other host strings alone.
func stripBrackets(host string) string {
	if strings.HasPrefix(host, "[") && strings.HasSuffix(host, "]") {
		return host[1 : len(host)-1]
	}
	return host
}
