package clients

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
)

// DefaultIP2WhoisURL is the IP2WHOIS v2 endpoint.
const DefaultIP2WhoisURL = "https://api.ip2whois.com/v2"

// IP2WhoisClient queries the dedicated IP2WHOIS domain WHOIS service.
type IP2WhoisClient struct {
	base
	apiKey string
}

// NewIP2WhoisClient creates an IP2WHOIS client authenticated with apiKey.
func NewIP2WhoisClient(apiKey string, opts ...Option) *IP2WhoisClient {
	return &IP2WhoisClient{
		base:   newBase("IP2Whois", DefaultIP2WhoisURL, opts),
		apiKey: apiKey,
	}
}

type ip2whoisContact struct {
	Name          string `json:"name"`
	Organization  string `json:"organization"`
	StreetAddress string `json:"street_address"`
	City          string `json:"city"`
	Region        string `json:"region"`
	ZipCode       string `json:"zip_code"`
	Country       string `json:"country"`
	Phone         string `json:"phone"`
	Email         string `json:"email"`
}

type ip2whoisResponse struct {
	Domain     string `json:"domain"`
	CreateDate string `json:"create_date"`
	UpdateDate string `json:"update_date"`
	ExpireDate string `json:"expire_date"`
	Registrar  struct {
		Name string `json:"name"`
		URL  string `json:"url"`
	} `json:"registrar"`
	Registrant  ip2whoisContact `json:"registrant"`
	Nameservers []string        `json:"nameservers"`
}

// GetWhois fetches the WHOIS record of a domain.
func (c *IP2WhoisClient) GetWhois(ctx context.Context, domain string) (*Whois, error) {
	q := url.Values{}
	q.Set("key", c.apiKey)
	q.Set("domain", domain)

	req, err := c.newRequest(ctx, http.MethodGet, "", q, nil)
	if err != nil {
		return nil, err
	}

	var resp ip2whoisResponse
	if err := c.do(req, &resp); err != nil {
		return nil, fmt.Errorf("fetching whois for %q: %w", domain, err)
	}

	r := resp.Registrant
	return &Whois{
		Source:       "ip2whois",
		Domain:       resp.Domain,
		Registrar:    resp.Registrar.Name,
		Organization: r.Organization,
		Name:         r.Name,
		Email:        r.Email,
		Phone:        r.Phone,
		Street:       r.StreetAddress,
		City:         r.City,
		State:        r.Region,
		Country:      r.Country,
		PostalCode:   r.ZipCode,
		NameServers:  resp.Nameservers,
		Registered:   parseTime(resp.CreateDate),
		Updated:      parseTime(resp.UpdateDate),
		Expires:      parseTime(resp.ExpireDate),
	}, nil
}
