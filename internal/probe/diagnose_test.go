package probe

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/hamed0406/pingsweep/internal/domain"
)

// fakeChecker returns a fixed outcome for every target.
type fakeChecker struct {
	out domain.Outcome
}

func (f *fakeChecker) Check(_ context.Context, target string) domain.Outcome {
	out := f.out
	out.URL = target
	return out
}

func TestDNSDiagnoser_AnnotatesErrors(t *testing.T) {
	cause := errors.New("dial tcp: no such host")
	var looked string
	d := &DNSDiagnoser{
		Inner: &fakeChecker{out: domain.Failure("", cause)},
		Lookup: func(_ context.Context, host string) DNSStatus {
			looked = host
			return DNSStatus{Class: DNSNXDomain}
		},
	}

	out := d.Check(context.Background(), "https://missing.example.test:8443/path")
	if out.Kind != domain.KindError {
		t.Fatalf("kind changed: %+v", out)
	}
	if looked != "missing.example.test" {
		t.Fatalf("want lookup of host only, got %q", looked)
	}
	if !errors.Is(out.Cause, cause) {
		t.Fatalf("original cause lost: %v", out.Cause)
	}
	if !strings.Contains(out.Cause.Error(), "dns=NXDOMAIN") {
		t.Fatalf("want dns class in cause, got %q", out.Cause)
	}
}

func TestDNSDiagnoser_IncludesResolverError(t *testing.T) {
	d := &DNSDiagnoser{
		Inner: &fakeChecker{out: domain.Failure("", errors.New("dial tcp: i/o timeout"))},
		Lookup: func(context.Context, string) DNSStatus {
			return DNSStatus{Class: DNSUnavailable, ResolverError: "lookup api.example.test: server misbehaving"}
		},
	}

	out := d.Check(context.Background(), "https://api.example.test")
	want := "(dns=SERVFAIL_or_TIMEOUT: lookup api.example.test: server misbehaving)"
	if !strings.Contains(out.Cause.Error(), want) {
		t.Fatalf("want %q in cause, got %q", want, out.Cause)
	}
}

func TestDNSDiagnoser_LeavesOtherOutcomes(t *testing.T) {
	called := false
	lookup := func(_ context.Context, host string) DNSStatus {
		called = true
		return DNSStatus{}
	}
	for _, in := range []domain.Outcome{domain.Success("", 200, 0), domain.Timeout("")} {
		d := &DNSDiagnoser{Inner: &fakeChecker{out: in}, Lookup: lookup}
		out := d.Check(context.Background(), "https://example.test")
		if out.Kind != in.Kind {
			t.Fatalf("want %s, got %s", in.Kind, out.Kind)
		}
	}
	if called {
		t.Fatalf("lookup should only run for errors")
	}
}

func TestCheckDNS_InvalidAndLiteral(t *testing.T) {
	if s := CheckDNS(context.Background(), ""); s.Class != DNSInvalidName {
		t.Fatalf("want %s for empty name, got %s", DNSInvalidName, s.Class)
	}
	if s := CheckDNS(context.Background(), "https://x"); s.Class != DNSInvalidName {
		t.Fatalf("want %s for url, got %s", DNSInvalidName, s.Class)
	}
	if s := CheckDNS(context.Background(), "127.0.0.1"); s.Class != DNSResolves {
		t.Fatalf("want %s for ip literal, got %s", DNSResolves, s.Class)
	}
}
