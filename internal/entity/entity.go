// Package entity classifies the thing being looked up as a domain or an IP address.
package entity

import (
	"errors"
	"fmt"
	"net/netip"
	"regexp"
	"strings"

	"golang.org/x/net/publicsuffix"
)

// Kind discriminates domain lookups from IP address lookups.
type Kind int

const (
	KindDomain Kind = iota
	KindIP
)

func (k Kind) String() string {
	switch k {
	case KindIP:
		return "ip"
	default:
		return "domain"
	}
}

// ErrInvalid is returned for input that is neither an IP address nor a hostname.
var ErrInvalid = errors.New("invalid entity")

var hostnameRegexp = regexp.MustCompile(`^([a-z0-9_]([a-z0-9\-_]{0,61}[a-z0-9])?\.)*[a-z0-9]([a-z0-9\-]{0,61}[a-z0-9])?$`)

// Entity is an immutable, classified lookup target.
type Entity struct {
	name string
	kind Kind
	addr netip.Addr
	apex string
}

// Parse normalizes raw and classifies it. Classification happens exactly once.
func Parse(raw string) (Entity, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return Entity{}, fmt.Errorf("%w: empty", ErrInvalid)
	}

	if addr, err := netip.ParseAddr(s); err == nil {
		addr = addr.Unmap()
		return Entity{name: addr.String(), kind: KindIP, addr: addr}, nil
	}

	host := strings.ToLower(strings.TrimSuffix(s, "."))
	if len(host) > 253 || !hostnameRegexp.MatchString(host) {
		return Entity{}, fmt.Errorf("%w: %q", ErrInvalid, raw)
	}

	apex, err := publicsuffix.EffectiveTLDPlusOne(host)
	if err != nil {
		apex = host
	}
	return Entity{name: host, kind: KindDomain, apex: apex}, nil
}

// MustParse is like Parse but panics on error. Intended for tests and constants.
func MustParse(raw string) Entity {
	e, err := Parse(raw)
	if err != nil {
		panic(err)
	}
	return e
}

func (e Entity) String() string { return e.name }
func (e Entity) Kind() Kind     { return e.kind }
func (e Entity) IsIP() bool     { return e.kind == KindIP }

// Apex returns the registrable domain (eTLD+1). Empty for IP entities.
func (e Entity) Apex() string { return e.apex }

// IsPublic reports whether an IP entity is globally routable. Always false for domains.
func (e Entity) IsPublic() bool {
	if e.kind != KindIP {
		return false
	}
	a := e.addr
	return a.IsValid() && a.IsGlobalUnicast() && !a.IsPrivate() && !a.IsLoopback() && !a.IsLinkLocalUnicast()
}
