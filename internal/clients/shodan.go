package clients

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"sort"
)

// DefaultShodanURL is the Shodan REST API root.
const DefaultShodanURL = "https://api.shodan.io"

// ShodanService is one open port and the software identified on it.
type ShodanService struct {
	Port      int    `json:"port"`
	Transport string `json:"transport"`
	Product   string `json:"product,omitempty"`
	Version   string `json:"version,omitempty"`
}

// ShodanHost is the exposure summary Shodan holds for an IP.
type ShodanHost struct {
	IP         string          `json:"ip_str"`
	OS         string          `json:"os,omitempty"`
	Org        string          `json:"org,omitempty"`
	ISP        string          `json:"isp,omitempty"`
	Tags       []string        `json:"tags,omitempty"`
	LastUpdate string          `json:"last_update,omitempty"`
	Services   []ShodanService `json:"data,omitempty"`
}

// SortedServices returns the services ordered by port then transport.
func (h ShodanHost) SortedServices() []ShodanService {
	out := append([]ShodanService(nil), h.Services...)
	sort.Slice(out, func(i, j int) bool {
		if out[i].Port != out[j].Port {
			return out[i].Port < out[j].Port
		}
		return out[i].Transport < out[j].Transport
	})
	return out
}

// ShodanMap indexes ShodanHost records by IP address.
type ShodanMap map[string]ShodanHost

// ShodanClient queries the Shodan host API.
type ShodanClient struct {
	base
	apiKey string
}

// NewShodanClient creates a Shodan client authenticated with apiKey.
func NewShodanClient(apiKey string, opts ...Option) *ShodanClient {
	return &ShodanClient{
		base:   newBase("Shodan", DefaultShodanURL, opts),
		apiKey: apiKey,
	}
}

// GetHost fetches the host summary of ip. found is false when Shodan has never
// scanned the address.
func (c *ShodanClient) GetHost(ctx context.Context, ip string) (host ShodanHost, found bool, err error) {
	q := url.Values{}
	q.Set("key", c.apiKey)
	q.Set("minify", "false")

	req, err := c.newRequest(ctx, http.MethodGet, "/shodan/host/"+url.PathEscape(ip), q, nil)
	if err != nil {
		return ShodanHost{}, false, err
	}
	if err := c.do(req, &host); err != nil {
		if IsNotFound(err) {
			return ShodanHost{}, false, nil
		}
		return ShodanHost{}, false, fmt.Errorf("fetching host %q: %w", ip, err)
	}
	return host, true, nil
}

// GetHosts looks up each address; unknown addresses are left out of the map.
func (c *ShodanClient) GetHosts(ctx context.Context, ips ...string) (ShodanMap, error) {
	out := make(ShodanMap)
	for _, ip := range ips {
		host, found, err := c.GetHost(ctx, ip)
		if err != nil {
			return nil, err
		}
		if found {
			out[ip] = host
		}
	}
	return out, nil
}
