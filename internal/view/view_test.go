package view

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/kluth/wtfis/internal/clients"
	"github.com/kluth/wtfis/internal/handler"
)

func domainReport() *handler.DomainReport {
	res := &clients.Resolutions{}
	for _, ip := range []string{"93.184.216.34", "93.184.216.35"} {
		var r clients.Resolution
		r.Attributes.IPAddress = ip
		r.Attributes.Date = 1700000000
		res.Data = append(res.Data, r)
	}
	res.Meta.Count = 7

	vt := &clients.Domain{ID: "www.example.com"}
	vt.Attributes.LastAnalysisStats = clients.AnalysisStats{Malicious: 1, Harmless: 60, Undetected: 29}
	vt.Attributes.Categories = map[string]string{"Forcepoint": "reference", "BitDefender": "reference"}
	vt.Attributes.PopularityRanks = map[string]clients.PopularityRank{"Majestic": {Rank: 12}}

	return &handler.DomainReport{
		Entity:         "www.example.com",
		Apex:           "example.com",
		VirusTotal:     vt,
		Resolutions:    res,
		MaxResolutions: 2,
		Enrichments: handler.Enrichments{
			GeoASN: clients.GeoASNMap{
				"93.184.216.34": {IP: "93.184.216.34", ASN: 15133, Org: "Edgecast", ISP: "Verizon", City: "Norwell", Country: "United States"},
			},
			Whois: &clients.Whois{
				Source:      "ip2whois",
				Domain:      "example.com",
				Registrar:   "RESERVED-Internet Assigned Numbers Authority",
				NameServers: []string{"a.iana-servers.net", "b.iana-servers.net"},
			},
			GreyNoise: clients.GreyNoiseMap{
				"93.184.216.34": {IP: "93.184.216.34", Riot: true, Classification: "benign", Name: "Edgecast"},
			},
		},
		Warnings: []string{"Could not fetch Shodan: API returned status 401"},
	}
}

func ipReport(ip string, geo clients.GeoASN) *handler.IPReport {
	return &handler.IPReport{
		Entity:     ip,
		VirusTotal: &clients.IPAddress{ID: ip},
		Enrichments: handler.Enrichments{
			GeoASN: clients.GeoASNMap{ip: geo},
			Whois:  &clients.Whois{Source: "virustotal"},
		},
	}
}

func render(t *testing.T, r handler.Report, opts Options) string {
	t.Helper()
	var buf bytes.Buffer
	if err := Render(&buf, r, opts); err != nil {
		t.Fatalf("Render() error: %v", err)
	}
	return buf.String()
}

func TestTerminalDomain(t *testing.T) {
	out := render(t, domainReport(), Options{OneColumn: true, NoColor: true})

	for _, want := range []string{
		"www.example.com",
		"Apex:",
		"1/90 malicious",
		"Majestic (12)",
		"reference",
		"Resolutions",
		"93.184.216.34",
		"AS15133 (Edgecast)",
		"Norwell, United States",
		"riot benign (Edgecast)",
		"+5 more",
		"Whois",
		"b.iana-servers.net",
		"source: ip2whois",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q\n%s", want, out)
		}
	}
	if strings.Contains(out, "\x1b[") {
		t.Error("output contains escape codes with colour disabled")
	}
}

func TestTerminalIPEmptySections(t *testing.T) {
	out := render(t, ipReport("10.0.0.5", clients.GeoASN{IP: "10.0.0.5"}), Options{OneColumn: true, NoColor: true})

	if !strings.Contains(out, "IPWhois") || !strings.Contains(out, "no data") {
		t.Errorf("empty geo section not rendered\n%s", out)
	}
	for _, absent := range []string{"Shodan", "URLhaus", "Other", "source:"} {
		if strings.Contains(out, absent) {
			t.Errorf("output contains %q\n%s", absent, out)
		}
	}
}

func TestTerminalTwoColumns(t *testing.T) {
	one := render(t, domainReport(), Options{OneColumn: true, NoColor: true})
	two := render(t, domainReport(), Options{NoColor: true})
	if strings.Count(two, "\n") >= strings.Count(one, "\n") {
		t.Errorf("two-column output is not shorter: %d vs %d lines", strings.Count(two, "\n"), strings.Count(one, "\n"))
	}
}

func TestJSON(t *testing.T) {
	out := render(t, domainReport(), Options{Format: FormatJSON})

	var got struct {
		Kind     string   `json:"kind"`
		Entity   string   `json:"entity"`
		Warnings []string `json:"warnings"`
		Whois    struct {
			Source string `json:"source"`
		} `json:"whois"`
	}
	if err := json.Unmarshal([]byte(out), &got); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if got.Kind != "domain" || got.Entity != "www.example.com" || got.Whois.Source != "ip2whois" || len(got.Warnings) != 1 {
		t.Errorf("decoded = %+v", got)
	}
}

func TestPDF(t *testing.T) {
	for _, r := range []handler.Report{domainReport(), ipReport("93.184.216.34", clients.GeoASN{IP: "93.184.216.34", ASN: 15133})} {
		out := render(t, r, Options{Format: FormatPDF})
		if !strings.HasPrefix(out, "%PDF-") {
			t.Errorf("%T: output is not a PDF", r)
		}
	}
}

func TestRenderErrors(t *testing.T) {
	var buf bytes.Buffer
	if err := Render(&buf, nil, Options{}); !errors.Is(err, ErrUnsupportedEntity) {
		t.Errorf("nil report error = %v", err)
	}
	if err := Render(&buf, &handler.IPReport{}, Options{}); !errors.Is(err, ErrUnsupportedEntity) {
		t.Errorf("empty report error = %v", err)
	}
	if err := Render(&buf, domainReport(), Options{Format: "xml"}); !errors.Is(err, ErrUnknownFormat) {
		t.Errorf("unknown format error = %v", err)
	}
	if buf.Len() != 0 {
		t.Errorf("output written on error: %q", buf.String())
	}
}

func TestValidFormat(t *testing.T) {
	for format, want := range map[string]bool{"": true, "terminal": true, "json": true, "pdf": true, "html": false} {
		if got := ValidFormat(format); got != want {
			t.Errorf("ValidFormat(%q) = %v", format, got)
		}
	}
}
