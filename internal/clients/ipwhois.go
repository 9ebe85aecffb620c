package clients

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
)

// DefaultIPWhoisURL is the free ipwho.is endpoint.
const DefaultIPWhoisURL = "https://ipwho.is"

// IPWhoisClient resolves IP geolocation and ASN ownership. It needs no credential.
type IPWhoisClient struct {
	base
}

// NewIPWhoisClient creates a geolocation/ASN client.
func NewIPWhoisClient(opts ...Option) *IPWhoisClient {
	return &IPWhoisClient{base: newBase("IPWhois", DefaultIPWhoisURL, opts)}
}

type ipwhoisResponse struct {
	IP          string `json:"ip"`
	Success     bool   `json:"success"`
	Message     string `json:"message"`
	Continent   string `json:"continent"`
	Country     string `json:"country"`
	CountryCode string `json:"country_code"`
	Region      string `json:"region"`
	City        string `json:"city"`
	Connection  struct {
		ASN    int    `json:"asn"`
		Org    string `json:"org"`
		ISP    string `json:"isp"`
		Domain string `json:"domain"`
	} `json:"connection"`
}

// emptyRangeMessages are the failure messages ipwho.is uses for addresses
// that have no owner. They produce an empty record rather than an error.
var emptyRangeMessages = []string{"reserved range", "private range", "bogon"}

// GetGeoASN looks up a single IP address. Private and reserved addresses yield
// an empty GeoASN with only the IP set.
func (c *IPWhoisClient) GetGeoASN(ctx context.Context, ip string) (GeoASN, error) {
	req, err := c.newRequest(ctx, http.MethodGet, "/"+url.PathEscape(ip), nil, nil)
	if err != nil {
		return GeoASN{}, err
	}

	var resp ipwhoisResponse
	if err := c.do(req, &resp); err != nil {
		return GeoASN{}, fmt.Errorf("fetching geolocation for %q: %w", ip, err)
	}

	if !resp.Success {
		msg := strings.ToLower(resp.Message)
		for _, m := range emptyRangeMessages {
			if strings.Contains(msg, m) {
				return GeoASN{IP: ip}, nil
			}
		}
		return GeoASN{}, fmt.Errorf("fetching geolocation for %q: %s", ip, resp.Message)
	}

	return GeoASN{
		IP:          ip,
		Continent:   resp.Continent,
		Country:     resp.Country,
		CountryCode: resp.CountryCode,
		Region:      resp.Region,
		City:        resp.City,
		ASN:         resp.Connection.ASN,
		Org:         resp.Connection.Org,
		ISP:         resp.Connection.ISP,
		Domain:      resp.Connection.Domain,
	}, nil
}

// GetGeoASNs looks up each address in turn and stops at the first failure.
func (c *IPWhoisClient) GetGeoASNs(ctx context.Context, ips ...string) (GeoASNMap, error) {
	out := make(GeoASNMap, len(ips))
	for _, ip := range ips {
		g, err := c.GetGeoASN(ctx, ip)
		if err != nil {
			return nil, err
		}
		out[ip] = g
	}
	return out, nil
}
