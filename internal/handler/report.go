package handler

import (
	"github.com/kluth/wtfis/internal/clients"
	"github.com/kluth/wtfis/internal/entity"
)

// Visitor renders one report variant per method. A renderer that implements
// Visitor handles every entity kind by construction.
type Visitor interface {
	VisitDomain(r *DomainReport) error
	VisitIP(r *IPReport) error
}

// Report is the result bundle of a completed fetch. It is either a
// *DomainReport or an *IPReport.
type Report interface {
	Kind() entity.Kind
	Accept(v Visitor) error
	sealed()
}

// Enrichments are the results shared by both report variants. Maps are keyed
// by IP address. A nil field means the provider was not configured or failed.
type Enrichments struct {
	GeoASN    clients.GeoASNMap    `json:"geoasn"`
	Whois     *clients.Whois       `json:"whois"`
	Shodan    clients.ShodanMap    `json:"shodan,omitempty"`
	GreyNoise clients.GreyNoiseMap `json:"greynoise,omitempty"`
	AbuseIPDB clients.AbuseMap     `json:"abuseipdb,omitempty"`
	URLhaus   *clients.URLhausHost `json:"urlhaus,omitempty"`
}

// DomainReport is the result bundle of a domain lookup.
type DomainReport struct {
	Entity         string               `json:"entity"`
	Apex           string               `json:"apex,omitempty"`
	VirusTotal     *clients.Domain      `json:"virustotal"`
	Resolutions    *clients.Resolutions `json:"resolutions,omitempty"`
	MaxResolutions int                  `json:"max_resolutions"`
	Enrichments
	Warnings []string `json:"warnings,omitempty"`
}

func (*DomainReport) Kind() entity.Kind        { return entity.KindDomain }
func (r *DomainReport) Accept(v Visitor) error { return v.VisitDomain(r) }
func (*DomainReport) sealed()                  {}

// IPReport is the result bundle of an IP address lookup.
type IPReport struct {
	Entity     string             `json:"entity"`
	VirusTotal *clients.IPAddress `json:"virustotal"`
	Enrichments
	Warnings []string `json:"warnings,omitempty"`
}

func (*IPReport) Kind() entity.Kind        { return entity.KindIP }
func (r *IPReport) Accept(v Visitor) error { return v.VisitIP(r) }
func (*IPReport) sealed()                  {}
