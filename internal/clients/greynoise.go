package clients

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
)

// DefaultGreyNoiseURL is the GreyNoise community API root.
const DefaultGreyNoiseURL = "https://api.greynoise.io/v3/community"

// GreyNoiseIP is the community classification of an IP.
type GreyNoiseIP struct {
	IP             string `json:"ip"`
	Noise          bool   `json:"noise"`
	Riot           bool   `json:"riot"`
	Classification string `json:"classification,omitempty"`
	Name           string `json:"name,omitempty"`
	Link           string `json:"link,omitempty"`
	LastSeen       string `json:"last_seen,omitempty"`
	Message        string `json:"message,omitempty"`
}

// GreyNoiseMap indexes GreyNoiseIP records by IP address.
type GreyNoiseMap map[string]GreyNoiseIP

// GreyNoiseClient queries the GreyNoise community API.
type GreyNoiseClient struct {
	base
	apiKey string
}

// NewGreyNoiseClient creates a GreyNoise client authenticated with apiKey.
func NewGreyNoiseClient(apiKey string, opts ...Option) *GreyNoiseClient {
	return &GreyNoiseClient{
		base:   newBase("GreyNoise", DefaultGreyNoiseURL, opts),
		apiKey: apiKey,
	}
}

// GetIP classifies ip. An address GreyNoise has never observed is returned
// with Noise and Riot false and no error.
func (c *GreyNoiseClient) GetIP(ctx context.Context, ip string) (GreyNoiseIP, error) {
	req, err := c.newRequest(ctx, http.MethodGet, "/"+url.PathEscape(ip), nil, nil)
	if err != nil {
		return GreyNoiseIP{}, err
	}
	req.Header.Set("key", c.apiKey)

	var out GreyNoiseIP
	if err := c.do(req, &out); err != nil {
		if IsNotFound(err) {
			return GreyNoiseIP{IP: ip, Message: "IP not observed scanning the internet or contained in RIOT data set."}, nil
		}
		return GreyNoiseIP{}, fmt.Errorf("fetching %q: %w", ip, err)
	}
	return out, nil
}

// GetIPs classifies each address in turn.
func (c *GreyNoiseClient) GetIPs(ctx context.Context, ips ...string) (GreyNoiseMap, error) {
	out := make(GreyNoiseMap, len(ips))
	for _, ip := range ips {
		g, err := c.GetIP(ctx, ip)
		if err != nil {
			return nil, err
		}
		out[ip] = g
	}
	return out, nil
}
