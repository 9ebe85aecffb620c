package clients

import (
	"net/netip"
	"time"
)

// AnalysisStats summarizes the verdicts of the VirusTotal engines.
type AnalysisStats struct {
	Harmless   int `json:"harmless"`
	Malicious  int `json:"malicious"`
	Suspicious int `json:"suspicious"`
	Timeout    int `json:"timeout"`
	Undetected int `json:"undetected"`
}

// Total returns the number of engines that produced a verdict.
func (s AnalysisStats) Total() int {
	return s.Harmless + s.Malicious + s.Suspicious + s.Timeout + s.Undetected
}

// Whois is the normalized registration record, whichever provider produced it.
type Whois struct {
	Source       string    `json:"source"`
	Domain       string    `json:"domain,omitempty"`
	Registrar    string    `json:"registrar,omitempty"`
	Organization string    `json:"organization,omitempty"`
	Name         string    `json:"name,omitempty"`
	Email        string    `json:"email,omitempty"`
	Phone        string    `json:"phone,omitempty"`
	Street       string    `json:"street,omitempty"`
	City         string    `json:"city,omitempty"`
	State        string    `json:"state,omitempty"`
	Country      string    `json:"country,omitempty"`
	PostalCode   string    `json:"postal_code,omitempty"`
	NameServers  []string  `json:"name_servers,omitempty"`
	DNSSEC       string    `json:"dnssec,omitempty"`
	Registered   time.Time `json:"registered,omitzero"`
	Updated      time.Time `json:"updated,omitzero"`
	Expires      time.Time `json:"expires,omitzero"`
}

// Empty reports whether the provider had no registration data at all.
func (w Whois) Empty() bool {
	return w.Registrar == "" && w.Organization == "" && w.Name == "" &&
		len(w.NameServers) == 0 && w.Registered.IsZero() && w.Country == ""
}

// GeoASN is the location and network ownership of one IP address.
type GeoASN struct {
	IP          string `json:"ip"`
	Continent   string `json:"continent,omitempty"`
	Country     string `json:"country,omitempty"`
	CountryCode string `json:"country_code,omitempty"`
	Region      string `json:"region,omitempty"`
	City        string `json:"city,omitempty"`
	ASN         int    `json:"asn,omitempty"`
	Org         string `json:"org,omitempty"`
	ISP         string `json:"isp,omitempty"`
	Domain      string `json:"domain,omitempty"`
}

// Empty reports whether no owner is assigned, as for private or reserved ranges.
func (g GeoASN) Empty() bool {
	return g.ASN == 0 && g.Org == "" && g.ISP == "" && g.Country == ""
}

// GeoASNMap indexes GeoASN records by IP address.
type GeoASNMap map[string]GeoASN

// parseTime accepts the handful of date layouts the providers emit.
func parseTime(s string) time.Time {
	for _, layout := range []string{
		time.RFC3339,
		"2006-01-02T15:04:05Z0700",
		"2006-01-02T15:04:05",
		"2006-01-02 15:04:05 MST",
		"2006-01-02 15:04:05",
		"2006-01-02",
	} {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC()
		}
	}
	return time.Time{}
}

func unixTime(sec int64) time.Time {
	if sec == 0 {
		return time.Time{}
	}
	return time.Unix(sec, 0).UTC()
}

func isIP(s string) bool {
	_, err := netip.ParseAddr(s)
	return err == nil
}
