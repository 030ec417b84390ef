package probe

import (
	"context"
	"errors"
	"net"
	"strings"
	"time"
)

// DNS classes reported by CheckDNS.
const (
	DNSResolves    = "RESOLVES"
	DNSNXDomain    = "NXDOMAIN"
	DNSNoARecord   = "NO_A_RECORD"
	DNSUnavailable = "SERVFAIL_or_TIMEOUT"
	DNSInvalidName = "INVALID_NAME"
)

// DNSStatus is the class of a host name plus the resolver's address lookup
// error, if any.
type DNSStatus struct {
	Class         string
	ResolverError string
}

var dnsTimeout = 3 * time.Second

// CheckDNS classifies the resolvability of a host name using the OS resolver.
func CheckDNS(ctx context.Context, domain string) DNSStatus {
	var s DNSStatus
	domain = strings.TrimSpace(domain)
	if domain == "" || strings.Contains(domain, "://") {
		s.Class = DNSInvalidName
		return s
	}
	if net.ParseIP(domain) != nil {
		s.Class = DNSResolves
		return s
	}

	ctx, cancel := context.WithTimeout(ctx, dnsTimeout)
	defer cancel()
	r := &net.Resolver{}

	ips, err := r.LookupIP(ctx, "ip", domain)
	switch {
	case err == nil && len(ips) > 0:
		s.Class = DNSResolves
		return s
	case err != nil:
		s.ResolverError = err.Error()
		var de *net.DNSError
		if errors.As(err, &de) {
			if de.IsNotFound {
				s.Class = DNSNXDomain
			} else if de.IsTemporary || de.Timeout() {
				s.Class = DNSUnavailable
			}
		}
	}

	// a zone with name servers but no address records still exists
	if ns, err := r.LookupNS(ctx, domain); err == nil && len(ns) > 0 {
		s.Class = DNSNoARecord
	}

	if s.Class == "" {
		if s.ResolverError != "" {
			s.Class = DNSUnavailable
		} else {
			s.Class = DNSNXDomain
		}
	}
	return s
}
