// (c) netherd contributors 2023
//
// SPDX-License-Identifier: MIT

package dnsd

import (
	"context"
	"net"
	"net/netip"

	"github.com/netherd/netherd/fault"

	"github.com/miekg/dns"
)

// Resolver is the pluggable name-to-address resolution backend of the DNS
// daemon. Implementations perform a blocking lookup of all addresses of a
// host name; the daemon then picks the first result.
type Resolver interface {
	LookupHost(ctx context.Context, host string) ([]netip.Addr, error)
}

// SystemResolver resolves host names through the operating system's resolver
// mechanism (getaddrinfo or Go's built-in equivalent), honoring /etc/hosts,
// search lists, et cetera. The zero value is ready to use.
type SystemResolver struct {
	// R optionally overrides the resolver used; nil means
	// [net.DefaultResolver].
	R *net.Resolver
}

var _ Resolver = (*SystemResolver)(nil)

// LookupHost resolves the specified host name into its IP addresses.
func (r *SystemResolver) LookupHost(ctx context.Context, host string) ([]netip.Addr, error) {
	res := r.R
	if res == nil {
		res = net.DefaultResolver
	}
	ipaddrs, err := res.LookupIPAddr(ctx, host)
	if err != nil {
		return nil, err
	}
	addrs := make([]netip.Addr, 0, len(ipaddrs))
	for _, ipaddr := range ipaddrs {
		addr, ok := netip.AddrFromSlice(ipaddr.IP)
		if !ok {
			continue
		}
		addrs = append(addrs, addr.Unmap())
	}
	return addrs, nil
}

// ClientResolver resolves host names by sending A and AAAA queries to one
// specific DNS server, bypassing the system resolver mechanism. Use it when
// lookups must be answered by a particular resolver, such as an embedded or
// split-horizon DNS server.
type ClientResolver struct {
	client *dns.Client
	addr   string // resolver address in "host:port" format.
}

var _ Resolver = (*ClientResolver)(nil)

// NewClientResolver returns a resolver talking to the DNS server at the
// specified address (in "host:port" format) using the specified DNS client.
// A nil client queries over plain UDP with default timeouts.
func NewClientResolver(clnt *dns.Client, addr string) *ClientResolver {
	if clnt == nil {
		clnt = &dns.Client{}
	}
	return &ClientResolver{client: clnt, addr: addr}
}

// LookupHost queries the configured DNS server for the A and AAAA records of
// the specified host name. The two queries for a single name are not
// concurrent. A name yielding neither A nor AAAA answers is an error.
func (r *ClientResolver) LookupHost(ctx context.Context, host string) ([]netip.Addr, error) {
	name := dns.Fqdn(host)
	var addrs []netip.Addr
	for _, qtype := range []uint16{dns.TypeA, dns.TypeAAAA} {
		// don't fire the next query if the context has been cancelled in the
		// meantime.
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		msg := new(dns.Msg)
		msg.SetQuestion(name, qtype)
		reply, _, err := r.client.ExchangeContext(ctx, msg, r.addr)
		if err != nil {
			return nil, err
		}
		for _, rr := range reply.Answer {
			switch addrRR := rr.(type) {
			case *dns.A:
				if addr, ok := netip.AddrFromSlice(addrRR.A); ok {
					addrs = append(addrs, addr.Unmap())
				}
			case *dns.AAAA:
				if addr, ok := netip.AddrFromSlice(addrRR.AAAA); ok {
					addrs = append(addrs, addr)
				}
			}
		}
	}
	if len(addrs) == 0 {
		return nil, fault.Newf(fault.StatusResolverFailure,
			"query for %q yields no A or AAAA answers", host)
	}
	return addrs, nil
}
