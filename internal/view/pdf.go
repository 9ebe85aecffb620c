package view

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/go-pdf/fpdf"

	"github.com/kluth/wtfis/internal/clients"
	"github.com/kluth/wtfis/internal/handler"
)

// PDF renders a one-page summary of a report.
type PDF struct {
	w   io.Writer
	now func() time.Time
}

func NewPDF(w io.Writer) *PDF {
	return &PDF{w: w, now: time.Now}
}

var (
	pdfDark = []int{36, 41, 46}
	pdfGray = []int{106, 115, 125}
	pdfRed  = []int{215, 58, 73}
)

type pdfDoc struct {
	*fpdf.Fpdf
	tr func(string) string
}

func (p *PDF) newDoc(title string) *pdfDoc {
	f := fpdf.New("P", "mm", "A4", "")
	d := &pdfDoc{Fpdf: f, tr: f.UnicodeTranslatorFromDescriptor("")}
	d.AddPage()
	d.SetFont("Arial", "B", 18)
	d.SetTextColor(pdfDark[0], pdfDark[1], pdfDark[2])
	d.Cell(0, 12, d.tr(title))
	d.Ln(14)
	return d
}

func (d *pdfDoc) heading(text string) {
	d.SetFont("Arial", "B", 12)
	d.SetTextColor(pdfDark[0], pdfDark[1], pdfDark[2])
	d.SetFillColor(246, 248, 250)
	d.CellFormat(0, 7, d.tr(text), "", 1, "L", true, 0, "")
	d.Ln(1)
}

func (d *pdfDoc) field(label, value string) {
	d.coloredField(label, value, pdfDark)
}

func (d *pdfDoc) coloredField(label, value string, rgb []int) {
	if value == "" {
		return
	}
	d.SetFont("Arial", "B", 10)
	d.SetTextColor(pdfGray[0], pdfGray[1], pdfGray[2])
	d.CellFormat(40, 6, d.tr(label), "", 0, "L", false, 0, "")
	d.SetFont("Arial", "", 10)
	d.SetTextColor(rgb[0], rgb[1], rgb[2])
	d.MultiCell(0, 6, d.tr(value), "", "L", false)
}

func (d *pdfDoc) analysis(s clients.AnalysisStats) {
	rgb := pdfDark
	if s.Malicious > 0 {
		rgb = pdfRed
	}
	d.coloredField("Analysis", fmt.Sprintf("%d/%d malicious", s.Malicious, s.Total()), rgb)
}

func (d *pdfDoc) geo(g clients.GeoASN) {
	if g.Empty() {
		d.field("Location", "no data")
		return
	}
	d.field("ASN", asnText(g))
	d.field("ISP", g.ISP)
	d.field("Location", smartJoin(", ", g.City, g.Region, g.Country))
}

func (d *pdfDoc) enrichments(ip string, e handler.Enrichments) {
	if h, ok := e.Shodan[ip]; ok {
		d.field("Shodan", smartJoin(", ", h.OS, strings.ReplaceAll(services(h), "\n", ", ")))
	}
	if g, ok := e.GreyNoise[ip]; ok {
		d.field("GreyNoise", smartJoin(" ", g.Classification, parens(g.Name), g.Message))
	}
	if a, ok := e.AbuseIPDB[ip]; ok {
		d.field("AbuseIPDB", fmt.Sprintf("%d%% confidence, %d reports", a.AbuseConfidenceScore, a.TotalReports))
	}
}

func (d *pdfDoc) urlhaus(h *clients.URLhausHost) {
	if h == nil {
		return
	}
	d.heading("URLhaus")
	if !h.Found() {
		d.field("Malware URLs", "none")
		return
	}
	d.field("Malware URLs", fmt.Sprintf("%d (%d online)", len(h.URLs), h.OnlineCount()))
	d.field("Threats", strings.Join(h.Threats(), ", "))
	d.field("Tags", strings.Join(h.Tags(), ", "))
}

func (d *pdfDoc) whois(w *clients.Whois) {
	if w == nil || w.Empty() {
		return
	}
	d.heading("Whois (" + w.Source + ")")
	d.field("Registrar", w.Registrar)
	d.field("Organization", w.Organization)
	d.field("Country", w.Country)
	d.field("Nameservers", strings.Join(w.NameServers, ", "))
	d.field("Registered", formatTime(w.Registered))
	d.field("Expires", formatTime(w.Expires))
}

func (d *pdfDoc) warnings(ws []string) {
	if len(ws) == 0 {
		return
	}
	d.heading("Warnings")
	d.SetFont("Arial", "", 9)
	for _, w := range ws {
		d.MultiCell(0, 5, d.tr(w), "", "L", false)
	}
}

func (p *PDF) finish(d *pdfDoc) error {
	d.SetY(-15)
	d.SetFont("Arial", "I", 8)
	d.SetTextColor(128, 128, 128)
	d.CellFormat(0, 10, "Generated "+p.now().UTC().Format(time.RFC3339), "", 0, "C", false, 0, "")
	return d.Output(p.w)
}

func (p *PDF) VisitDomain(r *handler.DomainReport) error {
	if r == nil || r.VirusTotal == nil {
		return ErrUnsupportedEntity
	}
	d := p.newDoc(r.Entity)
	a := r.VirusTotal.Attributes

	d.heading("VirusTotal")
	if r.Apex != r.Entity {
		d.field("Apex", r.Apex)
	}
	d.analysis(a.LastAnalysisStats)
	d.field("Reputation", fmt.Sprintf("%d", a.Reputation))
	d.field("Categories", strings.Join(categories(a.Categories), ", "))
	d.field("Last Modified", formatTime(a.LastModified()))
	d.urlhaus(r.URLhaus)

	if r.Resolutions != nil && len(r.Resolutions.Data) > 0 {
		d.heading("Resolutions")
		for i, res := range r.Resolutions.Data {
			if i == r.MaxResolutions {
				break
			}
			ip := res.Attributes.IPAddress
			d.SetFont("Arial", "B", 10)
			d.Cell(0, 6, ip)
			d.Ln(6)
			d.analysis(res.Attributes.IPAddressLastAnalysisStats)
			d.field("Resolved", formatTime(res.Attributes.Resolved()))
			if g, ok := r.GeoASN[ip]; ok {
				d.geo(g)
			}
			d.enrichments(ip, r.Enrichments)
		}
		if more := r.Resolutions.Meta.Count - r.MaxResolutions; more > 0 {
			d.SetFont("Arial", "I", 9)
			d.Cell(0, 6, fmt.Sprintf("+%d more", more))
			d.Ln(6)
		}
	}

	d.whois(r.Whois)
	d.warnings(r.Warnings)
	return p.finish(d)
}

func (p *PDF) VisitIP(r *handler.IPReport) error {
	if r == nil || r.VirusTotal == nil {
		return ErrUnsupportedEntity
	}
	d := p.newDoc(r.Entity)
	a := r.VirusTotal.Attributes

	d.heading("VirusTotal")
	d.analysis(a.LastAnalysisStats)
	d.field("Reputation", fmt.Sprintf("%d", a.Reputation))
	d.field("Tags", strings.Join(a.Tags, ", "))
	d.field("Updated", formatTime(a.LastModified()))

	d.heading("IPWhois")
	d.geo(r.GeoASN[r.Entity])
	d.enrichments(r.Entity, r.Enrichments)
	d.urlhaus(r.URLhaus)

	d.whois(r.Whois)
	d.warnings(r.Warnings)
	return p.finish(d)
}
