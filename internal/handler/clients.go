package handler

import (
	"context"

	"github.com/kluth/wtfis/internal/clients"
)

// CoreClient is the mandatory threat intelligence provider. It can also serve
// as the WHOIS source.
type CoreClient interface {
	WhoisClient
	GetDomain(ctx context.Context, domain string) (*clients.Domain, error)
	GetIPAddress(ctx context.Context, ip string) (*clients.IPAddress, error)
	GetDomainResolutions(ctx context.Context, domain string, limit int) (*clients.Resolutions, error)
}

// WhoisClient fetches registration data.
type WhoisClient interface {
	Name() string
	GetWhois(ctx context.Context, entity string) (*clients.Whois, error)
}

// GeoASNClient resolves location and network ownership of IPs.
type GeoASNClient interface {
	GetGeoASNs(ctx context.Context, ips ...string) (clients.GeoASNMap, error)
}

// ShodanClient looks up device exposure of IPs.
type ShodanClient interface {
	GetHosts(ctx context.Context, ips ...string) (clients.ShodanMap, error)
}

// GreyNoiseClient classifies internet background noise.
type GreyNoiseClient interface {
	GetIPs(ctx context.Context, ips ...string) (clients.GreyNoiseMap, error)
}

// AbuseIPDBClient aggregates abuse reports.
type AbuseIPDBClient interface {
	CheckAll(ctx context.Context, ips ...string) (clients.AbuseMap, error)
}

// URLhausClient looks up malware distribution URLs by host.
type URLhausClient interface {
	GetHost(ctx context.Context, host string) (clients.URLhausHost, error)
}

// Clients is the set of provider clients a handler drives.
type Clients struct {
	Core   CoreClient
	GeoASN GeoASNClient
	Whois  WhoisClient

	Shodan    Capability[ShodanClient]
	GreyNoise Capability[GreyNoiseClient]
	AbuseIPDB Capability[AbuseIPDBClient]
	URLhaus   Capability[URLhausClient]
}

// optional lists the configured optional providers.
func (c Clients) optional() []string {
	var names []string
	for _, p := range []struct {
		name    string
		present bool
	}{
		{"Shodan", c.Shodan.Present()},
		{"GreyNoise", c.GreyNoise.Present()},
		{"AbuseIPDB", c.AbuseIPDB.Present()},
		{"URLhaus", c.URLhaus.Present()},
	} {
		if p.present {
			names = append(names, p.name)
		}
	}
	return names
}
