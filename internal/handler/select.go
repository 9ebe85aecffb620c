package handler

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/kluth/wtfis/internal/clients"
	"github.com/kluth/wtfis/internal/entity"
)

// ipwhoisRate spaces out requests to the free geolocation tier, which is
// metered per month.
const ipwhoisRate = 0.75

// Credentials are the provider API keys available to a run.
type Credentials struct {
	VirusTotal string
	IP2Whois   string
	Shodan     string
	GreyNoise  string
	AbuseIPDB  string
	URLhaus    string
}

// Options select the providers for one lookup.
type Options struct {
	Entity      entity.Entity
	Credentials Credentials

	UseShodan    bool
	UseGreyNoise bool
	UseAbuseIPDB bool
	UseURLhaus   bool
}

// Factory constructs provider clients. Tests substitute fakes.
type Factory interface {
	VirusTotal(apiKey string) CoreClient
	IPWhois() GeoASNClient
	IP2Whois(apiKey string) WhoisClient
	Shodan(apiKey string) ShodanClient
	GreyNoise(apiKey string) GreyNoiseClient
	AbuseIPDB(apiKey string) AbuseIPDBClient
	URLhaus(authKey string) URLhausClient
}

// HTTPFactory builds the real HTTP clients.
type HTTPFactory struct {
	HTTPClient *http.Client
	Logger     *slog.Logger
}

func (f HTTPFactory) opts(extra ...clients.Option) []clients.Option {
	var opts []clients.Option
	if f.HTTPClient != nil {
		opts = append(opts, clients.WithHTTPClient(f.HTTPClient))
	}
	if f.Logger != nil {
		opts = append(opts, clients.WithLogger(f.Logger))
	}
	return append(opts, extra...)
}

func (f HTTPFactory) VirusTotal(apiKey string) CoreClient {
	return clients.NewVirusTotalClient(apiKey, f.opts()...)
}

func (f HTTPFactory) IPWhois() GeoASNClient {
	return clients.NewIPWhoisClient(f.opts(clients.WithRateLimit(ipwhoisRate))...)
}

func (f HTTPFactory) IP2Whois(apiKey string) WhoisClient {
	return clients.NewIP2WhoisClient(apiKey, f.opts()...)
}

func (f HTTPFactory) Shodan(apiKey string) ShodanClient {
	return clients.NewShodanClient(apiKey, f.opts()...)
}

func (f HTTPFactory) GreyNoise(apiKey string) GreyNoiseClient {
	return clients.NewGreyNoiseClient(apiKey, f.opts()...)
}

func (f HTTPFactory) AbuseIPDB(apiKey string) AbuseIPDBClient {
	return clients.NewAbuseIPDBClient(apiKey, f.opts()...)
}

func (f HTTPFactory) URLhaus(authKey string) URLhausClient {
	return clients.NewURLhausClient(authKey, f.opts()...)
}

// SelectClients applies the selection policy. VirusTotal is mandatory. The
// WHOIS source is IP2Whois when its key is set and the entity is a domain,
// otherwise VirusTotal. Optional providers are configured only when enabled.
func SelectClients(opts Options, f Factory) (Clients, error) {
	creds := opts.Credentials
	if creds.VirusTotal == "" {
		return Clients{}, fmt.Errorf("VirusTotal: %w", ErrMissingCredential)
	}

	cl := Clients{
		Core:   f.VirusTotal(creds.VirusTotal),
		GeoASN: f.IPWhois(),

		Shodan:    Absent[ShodanClient](),
		GreyNoise: Absent[GreyNoiseClient](),
		AbuseIPDB: Absent[AbuseIPDBClient](),
		URLhaus:   Absent[URLhausClient](),
	}

	if creds.IP2Whois != "" && !opts.Entity.IsIP() {
		cl.Whois = f.IP2Whois(creds.IP2Whois)
	} else {
		cl.Whois = cl.Core
	}

	if opts.UseShodan {
		if creds.Shodan == "" {
			return Clients{}, fmt.Errorf("Shodan: %w", ErrMissingCredential)
		}
		cl.Shodan = Configured(f.Shodan(creds.Shodan))
	}
	if opts.UseGreyNoise {
		if creds.GreyNoise == "" {
			return Clients{}, fmt.Errorf("GreyNoise: %w", ErrMissingCredential)
		}
		cl.GreyNoise = Configured(f.GreyNoise(creds.GreyNoise))
	}
	if opts.UseAbuseIPDB {
		if creds.AbuseIPDB == "" {
			return Clients{}, fmt.Errorf("AbuseIPDB: %w", ErrMissingCredential)
		}
		cl.AbuseIPDB = Configured(f.AbuseIPDB(creds.AbuseIPDB))
	}
	if opts.UseURLhaus {
		cl.URLhaus = Configured(f.URLhaus(creds.URLhaus))
	}
	return cl, nil
}
