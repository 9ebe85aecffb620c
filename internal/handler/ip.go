package handler

import (
	"context"

	"github.com/kluth/wtfis/internal/clients"
	"github.com/kluth/wtfis/internal/progress"
)

// IPHandler fetches everything known about a single IP address.
type IPHandler struct {
	base

	vt *clients.IPAddress
}

// Fetch runs core, geo/ASN, whois and then the optional providers.
func (h *IPHandler) Fetch(ctx context.Context, emit progress.Emit) error {
	return h.run(ctx, emit, h.fetch)
}

func (h *IPHandler) fetch(ctx context.Context) error {
	ip := h.entity.String()

	h.start("Fetching data from VirusTotal", 50)
	vt, err := mandatory("VirusTotal", func() (*clients.IPAddress, error) {
		return h.clients.Core.GetIPAddress(ctx, ip)
	})
	if err != nil {
		return err
	}
	h.vt = vt
	h.advance(50)

	h.start("Fetching IP location and ASN", 50)
	geo, err := mandatory("IPWhois", func() (clients.GeoASNMap, error) {
		return h.clients.GeoASN.GetGeoASNs(ctx, ip)
	})
	if err != nil {
		return err
	}
	h.enrich.GeoASN = geo
	h.advance(50)

	h.start("Fetching IP whois", 50)
	whois, err := mandatory(h.clients.Whois.Name(), func() (*clients.Whois, error) {
		return h.clients.Whois.GetWhois(ctx, ip)
	})
	if err != nil {
		return err
	}
	h.enrich.Whois = whois
	h.advance(50)

	h.fetchOptional(ctx, []string{ip}, ip, "IP")
	return nil
}

// Report returns the IP report. It fails until Fetch has succeeded.
func (h *IPHandler) Report() (Report, error) {
	if err := h.ready(); err != nil {
		return nil, err
	}
	return &IPReport{
		Entity:      h.entity.String(),
		VirusTotal:  h.vt,
		Enrichments: h.enrich,
		Warnings:    h.Warnings(),
	}, nil
}
