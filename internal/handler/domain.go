package handler

import (
	"context"

	"github.com/kluth/wtfis/internal/clients"
	"github.com/kluth/wtfis/internal/progress"
)

// DomainHandler fetches everything known about a domain or FQDN.
type DomainHandler struct {
	base
	maxResolutions int

	vt          *clients.Domain
	resolutions *clients.Resolutions
}

// Fetch runs core, resolutions, geo/ASN over the resolved IPs, whois and then
// the optional providers.
func (h *DomainHandler) Fetch(ctx context.Context, emit progress.Emit) error {
	return h.run(ctx, emit, h.fetch)
}

// fetch resolves the domain first. The geolocation and enrichment phases are
// keyed by the resolved addresses.
func (h *DomainHandler) fetch(ctx context.Context) error {
	name := h.entity.String()

	h.start("Fetching data from VirusTotal", 33)
	vt, err := mandatory("VirusTotal", func() (*clients.Domain, error) {
		return h.clients.Core.GetDomain(ctx, name)
	})
	if err != nil {
		return err
	}
	h.vt = vt
	h.advance(33)

	if h.maxResolutions > 0 {
		res, err := mandatory("VirusTotal", func() (*clients.Resolutions, error) {
			return h.clients.Core.GetDomainResolutions(ctx, name, h.maxResolutions)
		})
		if err != nil {
			return err
		}
		h.resolutions = res
	}
	h.advance(34)

	ips := h.resolvedIPs()
	if len(ips) > 0 {
		h.start("Fetching IP location and ASN", 50)
		geo, err := mandatory("IPWhois", func() (clients.GeoASNMap, error) {
			return h.clients.GeoASN.GetGeoASNs(ctx, ips...)
		})
		if err != nil {
			return err
		}
		h.enrich.GeoASN = geo
		h.advance(50)
	} else {
		h.enrich.GeoASN = clients.GeoASNMap{}
	}

	h.start("Fetching domain whois", 50)
	whois, err := mandatory(h.clients.Whois.Name(), func() (*clients.Whois, error) {
		return h.clients.Whois.GetWhois(ctx, name)
	})
	if err != nil {
		return err
	}
	h.enrich.Whois = whois
	h.advance(50)

	h.fetchOptional(ctx, ips, name, "domain")
	return nil
}

// resolvedIPs returns the distinct addresses among the displayed resolutions.
func (h *DomainHandler) resolvedIPs() []string {
	if h.resolutions == nil {
		return nil
	}
	return h.resolutions.IPs(h.maxResolutions)
}

// Report returns the domain report. It fails until Fetch has succeeded.
func (h *DomainHandler) Report() (Report, error) {
	if err := h.ready(); err != nil {
		return nil, err
	}
	return &DomainReport{
		Entity:         h.entity.String(),
		Apex:           h.entity.Apex(),
		VirusTotal:     h.vt,
		Resolutions:    h.resolutions,
		MaxResolutions: h.maxResolutions,
		Enrichments:    h.enrich,
		Warnings:       h.Warnings(),
	}, nil
}
