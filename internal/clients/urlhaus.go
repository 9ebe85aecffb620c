package clients

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"sort"
	"strings"
)

// DefaultURLhausURL is the URLhaus v1 API root.
const DefaultURLhausURL = "https://urlhaus-api.abuse.ch/v1"

// URLhausURL is one malware distribution URL hosted on the looked-up host.
type URLhausURL struct {
	URL       string   `json:"url"`
	Status    string   `json:"url_status"`
	DateAdded string   `json:"date_added"`
	Threat    string   `json:"threat"`
	Tags      []string `json:"tags"`
}

// URLhausHost is the URLhaus record of a host.
type URLhausHost struct {
	Host        string            `json:"host"`
	QueryStatus string            `json:"query_status"`
	Reference   string            `json:"urlhaus_reference,omitempty"`
	FirstSeen   string            `json:"firstseen,omitempty"`
	Blacklists  map[string]string `json:"blacklists,omitempty"`
	URLs        []URLhausURL      `json:"urls,omitempty"`
}

// Found reports whether URLhaus knows the host at all.
func (h URLhausHost) Found() bool { return h.QueryStatus == "ok" }

// OnlineCount returns the number of malware URLs still online.
func (h URLhausHost) OnlineCount() int {
	n := 0
	for _, u := range h.URLs {
		if u.Status == "online" {
			n++
		}
	}
	return n
}

// Threats returns the distinct threat types, sorted.
func (h URLhausHost) Threats() []string {
	return distinct(h.URLs, func(u URLhausURL) []string { return []string{u.Threat} })
}

// Tags returns the distinct URL tags, sorted.
func (h URLhausHost) Tags() []string {
	return distinct(h.URLs, func(u URLhausURL) []string { return u.Tags })
}

func distinct(urls []URLhausURL, f func(URLhausURL) []string) []string {
	seen := make(map[string]bool)
	var out []string
	for _, u := range urls {
		for _, v := range f(u) {
			if v == "" || seen[v] {
				continue
			}
			seen[v] = true
			out = append(out, v)
		}
	}
	sort.Strings(out)
	return out
}

// URLhausClient queries the URLhaus host endpoint.
type URLhausClient struct {
	base
	authKey string
}

// NewURLhausClient creates a URLhaus client. authKey may be empty.
func NewURLhausClient(authKey string, opts ...Option) *URLhausClient {
	return &URLhausClient{
		base:    newBase("URLhaus", DefaultURLhausURL, opts),
		authKey: authKey,
	}
}

// GetHost fetches the URLhaus record of a domain or IP. A host with no
// record returns QueryStatus "no_results" and no error.
func (c *URLhausClient) GetHost(ctx context.Context, host string) (URLhausHost, error) {
	form := url.Values{}
	form.Set("host", host)

	req, err := c.newRequest(ctx, http.MethodPost, "/host/", nil, strings.NewReader(form.Encode()))
	if err != nil {
		return URLhausHost{}, err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	if c.authKey != "" {
		req.Header.Set("Auth-Key", c.authKey)
	}

	var out URLhausHost
	if err := c.do(req, &out); err != nil {
		return URLhausHost{}, fmt.Errorf("fetching host %q: %w", host, err)
	}

	switch out.QueryStatus {
	case "ok", "no_results":
		if out.Host == "" {
			out.Host = host
		}
		return out, nil
	default:
		return URLhausHost{}, fmt.Errorf("fetching host %q: query status %q", host, out.QueryStatus)
	}
}
