package clients

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
)

// DefaultAbuseIPDBURL is the AbuseIPDB v2 API root.
const DefaultAbuseIPDBURL = "https://api.abuseipdb.com/api/v2"

// abuseMaxAgeDays bounds the reporting window queried.
const abuseMaxAgeDays = "90"

// AbuseReport is the AbuseIPDB check result for an IP.
type AbuseReport struct {
	IP                   string   `json:"ipAddress"`
	IsPublic             bool     `json:"isPublic"`
	IsWhitelisted        bool     `json:"isWhitelisted"`
	AbuseConfidenceScore int      `json:"abuseConfidenceScore"`
	CountryCode          string   `json:"countryCode,omitempty"`
	UsageType            string   `json:"usageType,omitempty"`
	ISP                  string   `json:"isp,omitempty"`
	Domain               string   `json:"domain,omitempty"`
	Hostnames            []string `json:"hostnames,omitempty"`
	TotalReports         int      `json:"totalReports"`
	NumDistinctUsers     int      `json:"numDistinctUsers"`
	LastReportedAt       string   `json:"lastReportedAt,omitempty"`
}

// AbuseMap indexes AbuseReport records by IP address.
type AbuseMap map[string]AbuseReport

// AbuseIPDBClient queries the AbuseIPDB check endpoint.
type AbuseIPDBClient struct {
	base
	apiKey string
}

// NewAbuseIPDBClient creates an AbuseIPDB client authenticated with apiKey.
func NewAbuseIPDBClient(apiKey string, opts ...Option) *AbuseIPDBClient {
	return &AbuseIPDBClient{
		base:   newBase("AbuseIPDB", DefaultAbuseIPDBURL, opts),
		apiKey: apiKey,
	}
}

// Check fetches the abuse report of ip.
func (c *AbuseIPDBClient) Check(ctx context.Context, ip string) (AbuseReport, error) {
	q := url.Values{}
	q.Set("ipAddress", ip)
	q.Set("maxAgeInDays", abuseMaxAgeDays)

	req, err := c.newRequest(ctx, http.MethodGet, "/check", q, nil)
	if err != nil {
		return AbuseReport{}, err
	}
	req.Header.Set("Key", c.apiKey)

	var env struct {
		Data AbuseReport `json:"data"`
	}
	if err := c.do(req, &env); err != nil {
		return AbuseReport{}, fmt.Errorf("checking %q: %w", ip, err)
	}
	return env.Data, nil
}

// CheckAll fetches reports for each address in turn.
func (c *AbuseIPDBClient) CheckAll(ctx context.Context, ips ...string) (AbuseMap, error) {
	out := make(AbuseMap, len(ips))
	for _, ip := range ips {
		r, err := c.Check(ctx, ip)
		if err != nil {
			return nil, err
		}
		out[ip] = r
	}
	return out, nil
}
