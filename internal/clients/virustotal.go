package clients

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// DefaultVirusTotalURL is the VirusTotal v3 API root.
const DefaultVirusTotalURL = "https://www.virustotal.com/api/v3"

// PopularityRank is a domain's position in one popularity list.
type PopularityRank struct {
	Rank      int   `json:"rank"`
	Timestamp int64 `json:"timestamp"`
}

// Domain is the VirusTotal domain object.
type Domain struct {
	ID         string           `json:"id"`
	Attributes DomainAttributes `json:"attributes"`
}

// DomainAttributes holds the subset of domain attributes shown in reports.
type DomainAttributes struct {
	Categories           map[string]string         `json:"categories"`
	CreationDate         int64                     `json:"creation_date"`
	LastAnalysisStats    AnalysisStats             `json:"last_analysis_stats"`
	LastModificationDate int64                     `json:"last_modification_date"`
	PopularityRanks      map[string]PopularityRank `json:"popularity_ranks"`
	Registrar            string                    `json:"registrar"`
	Reputation           int                       `json:"reputation"`
	Tags                 []string                  `json:"tags"`
}

// LastModified returns the last modification date as a time.
func (a DomainAttributes) LastModified() time.Time { return unixTime(a.LastModificationDate) }

// IPAddress is the VirusTotal IP address object.
type IPAddress struct {
	ID         string       `json:"id"`
	Attributes IPAttributes `json:"attributes"`
}

// IPAttributes holds the subset of IP attributes shown in reports.
type IPAttributes struct {
	ASN                  int           `json:"asn"`
	ASOwner              string        `json:"as_owner"`
	Continent            string        `json:"continent"`
	Country              string        `json:"country"`
	Network              string        `json:"network"`
	LastAnalysisStats    AnalysisStats `json:"last_analysis_stats"`
	LastModificationDate int64         `json:"last_modification_date"`
	Reputation           int           `json:"reputation"`
	Tags                 []string      `json:"tags"`
}

// LastModified returns the last modification date as a time.
func (a IPAttributes) LastModified() time.Time { return unixTime(a.LastModificationDate) }

// Resolution is one historical A/AAAA resolution of a domain.
type Resolution struct {
	ID         string               `json:"id"`
	Attributes ResolutionAttributes `json:"attributes"`
}

// ResolutionAttributes describes when and where a domain resolved.
type ResolutionAttributes struct {
	Date                       int64         `json:"date"`
	HostName                   string        `json:"host_name"`
	IPAddress                  string        `json:"ip_address"`
	IPAddressLastAnalysisStats AnalysisStats `json:"ip_address_last_analysis_stats"`
	Resolver                   string        `json:"resolver"`
}

// Resolved returns the resolution date as a time.
func (a ResolutionAttributes) Resolved() time.Time { return unixTime(a.Date) }

// Resolutions is a page of domain resolutions plus the total count VirusTotal knows of.
type Resolutions struct {
	Data []Resolution `json:"data"`
	Meta struct {
		Count int `json:"count"`
	} `json:"meta"`
}

// IPs returns up to max distinct resolved addresses in the order returned.
func (r Resolutions) IPs(max int) []string {
	seen := make(map[string]bool)
	var ips []string
	for i, res := range r.Data {
		if i == max {
			break
		}
		ip := res.Attributes.IPAddress
		if ip == "" || seen[ip] {
			continue
		}
		seen[ip] = true
		ips = append(ips, ip)
	}
	return ips
}

// VirusTotalClient queries the VirusTotal v3 API. It is the core provider and
// doubles as a WHOIS source.
type VirusTotalClient struct {
	base
	apiKey string
}

// NewVirusTotalClient creates a VirusTotal client authenticated with apiKey.
func NewVirusTotalClient(apiKey string, opts ...Option) *VirusTotalClient {
	return &VirusTotalClient{
		base:   newBase("VirusTotal", DefaultVirusTotalURL, opts),
		apiKey: apiKey,
	}
}

func (c *VirusTotalClient) get(ctx context.Context, path string, query url.Values, out any) error {
	req, err := c.newRequest(ctx, http.MethodGet, path, query, nil)
	if err != nil {
		return err
	}
	req.Header.Set("x-apikey", c.apiKey)
	return c.do(req, out)
}

// GetDomain fetches the domain report.
func (c *VirusTotalClient) GetDomain(ctx context.Context, domain string) (*Domain, error) {
	var env struct {
		Data Domain `json:"data"`
	}
	if err := c.get(ctx, "/domains/"+url.PathEscape(domain), nil, &env); err != nil {
		return nil, fmt.Errorf("fetching domain %q: %w", domain, err)
	}
	return &env.Data, nil
}

// GetIPAddress fetches the IP address report.
func (c *VirusTotalClient) GetIPAddress(ctx context.Context, ip string) (*IPAddress, error) {
	var env struct {
		Data IPAddress `json:"data"`
	}
	if err := c.get(ctx, "/ip_addresses/"+url.PathEscape(ip), nil, &env); err != nil {
		return nil, fmt.Errorf("fetching IP %q: %w", ip, err)
	}
	return &env.Data, nil
}

// GetDomainResolutions fetches at most limit historical resolutions.
func (c *VirusTotalClient) GetDomainResolutions(ctx context.Context, domain string, limit int) (*Resolutions, error) {
	q := url.Values{}
	q.Set("limit", strconv.Itoa(limit))

	var res Resolutions
	if err := c.get(ctx, "/domains/"+url.PathEscape(domain)+"/resolutions", q, &res); err != nil {
		return nil, fmt.Errorf("fetching resolutions for %q: %w", domain, err)
	}
	return &res, nil
}

type vtWhoisPage struct {
	Data []struct {
		Attributes struct {
			FirstSeenDate int64             `json:"first_seen_date"`
			LastUpdated   int64             `json:"last_updated"`
			WhoisMap      map[string]string `json:"whois_map"`
		} `json:"attributes"`
	} `json:"data"`
}

// GetWhois fetches the most recent historical WHOIS record of a domain or IP.
func (c *VirusTotalClient) GetWhois(ctx context.Context, entity string) (*Whois, error) {
	collection := "domains"
	if isIP(entity) {
		collection = "ip_addresses"
	}

	q := url.Values{}
	q.Set("limit", "1")

	var page vtWhoisPage
	path := "/" + collection + "/" + url.PathEscape(entity) + "/historical_whois"
	if err := c.get(ctx, path, q, &page); err != nil {
		return nil, fmt.Errorf("fetching whois for %q: %w", entity, err)
	}

	w := &Whois{Source: "virustotal", Domain: entity}
	if len(page.Data) == 0 {
		return w, nil
	}
	attrs := page.Data[0].Attributes
	m := attrs.WhoisMap
	pick := func(keys ...string) string {
		for _, k := range keys {
			if v := strings.TrimSpace(m[k]); v != "" {
				return v
			}
		}
		return ""
	}

	w.Registrar = pick("Registrar", "registrar")
	w.Organization = pick("Registrant Organization", "Registrant Organisation", "OrgName", "Organization", "org-name")
	w.Name = pick("Registrant Name", "NetName", "netname")
	w.Email = pick("Registrant Email", "OrgAbuseEmail", "abuse-mailbox")
	w.Phone = pick("Registrant Phone", "OrgAbusePhone")
	w.Street = pick("Registrant Street", "Address", "address")
	w.City = pick("Registrant City", "City")
	w.State = pick("Registrant State/Province", "StateProv")
	w.Country = pick("Registrant Country", "Country", "country")
	w.PostalCode = pick("Registrant Postal Code", "PostalCode")
	w.DNSSEC = pick("DNSSEC")
	w.Registered = parseTime(pick("Creation Date", "RegDate", "created"))
	w.Updated = parseTime(pick("Updated Date", "Updated", "last-modified"))
	w.Expires = parseTime(pick("Registry Expiry Date", "Registrar Registration Expiration Date"))
	if w.Updated.IsZero() {
		w.Updated = unixTime(attrs.LastUpdated)
	}
	for _, ns := range strings.Split(pick("Name Server", "Name Servers", "nserver"), "|") {
		if ns = strings.ToLower(strings.TrimSpace(ns)); ns != "" {
			w.NameServers = append(w.NameServers, ns)
		}
	}
	return w, nil
}
