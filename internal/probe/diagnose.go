package probe

import (
	"context"
	"fmt"
	"net/url"

	"github.com/hamed0406/pingsweep/internal/domain"
)

// DNSDiagnoser wraps a Checker and, for outcomes that settled as Error,
// appends the DNS class of the target host to the cause. The outcome kind is
// never changed.
type DNSDiagnoser struct {
	Inner  Checker
	Lookup func(ctx context.Context, host string) DNSStatus
}

func NewDNSDiagnoser(inner Checker) *DNSDiagnoser {
	return &DNSDiagnoser{Inner: inner, Lookup: CheckDNS}
}

func (d *DNSDiagnoser) Check(ctx context.Context, target string) domain.Outcome {
	out := d.Inner.Check(ctx, target)
	if out.Kind != domain.KindError {
		return out
	}
	dns := d.Lookup(ctx, extractHost(target))
	if dns.ResolverError != "" {
		out.Cause = fmt.Errorf("%w (dns=%s: %s)", out.Cause, dns.Class, dns.ResolverError)
	} else {
		out.Cause = fmt.Errorf("%w (dns=%s)", out.Cause, dns.Class)
	}
	return out
}

func extractHost(raw string) string {
	u, err := url.Parse(raw)
	if err != nil || u.Hostname() == "" {
		return raw
	}
	return u.Hostname()
}
