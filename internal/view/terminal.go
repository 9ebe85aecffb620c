package view

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/kluth/wtfis/internal/clients"
	"github.com/kluth/wtfis/internal/handler"
)

// Terminal renders reports as bordered panels.
type Terminal struct {
	w         io.Writer
	oneColumn bool
	theme     theme
}

// NewTerminal returns a terminal renderer writing to w. With noColor set the
// output carries no colour codes regardless of the terminal.
func NewTerminal(w io.Writer, oneColumn, noColor bool) *Terminal {
	return &Terminal{
		w:         w,
		oneColumn: oneColumn,
		theme:     newTheme(newRenderer(w, noColor)),
	}
}

func (t *Terminal) VisitDomain(r *handler.DomainReport) error {
	if r == nil || r.VirusTotal == nil {
		return ErrUnsupportedEntity
	}
	return t.print(
		t.domainPanel(r),
		t.resolutionsPanel(r),
		t.theme.whois(r.Whois, whoisTitle(r.Whois, r.Entity)),
	)
}

func (t *Terminal) VisitIP(r *handler.IPReport) error {
	if r == nil || r.VirusTotal == nil {
		return ErrUnsupportedEntity
	}
	return t.print(
		t.ipPanel(r),
		t.theme.whois(r.Whois, whoisTitle(r.Whois, r.Entity)),
	)
}

func whoisTitle(w *clients.Whois, fallback string) string {
	if w != nil && w.Domain != "" {
		return w.Domain
	}
	return fallback
}

func (t *Terminal) print(panels ...string) error {
	var shown []string
	for _, p := range panels {
		if p != "" {
			shown = append(shown, p)
		}
	}
	var out string
	if t.oneColumn {
		out = lipgloss.JoinVertical(lipgloss.Left, shown...)
	} else {
		out = lipgloss.JoinHorizontal(lipgloss.Top, intersperse(shown, " ")...)
	}
	_, err := fmt.Fprintf(t.w, "\n%s\n", out)
	return err
}

func intersperse(items []string, sep string) []string {
	if len(items) < 2 {
		return items
	}
	out := make([]string, 0, 2*len(items)-1)
	for i, it := range items {
		if i > 0 {
			out = append(out, sep)
		}
		out = append(out, it)
	}
	return out
}

func (t *Terminal) domainPanel(r *handler.DomainReport) string {
	content := []string{t.theme.domainVT(r.VirusTotal, r.Apex)}
	if r.URLhaus != nil {
		content = append(content, t.theme.urlhaus(r.URLhaus))
	}
	return t.theme.panelize(r.VirusTotal.ID, strings.Join(content, "\n\n"))
}

func (t *Terminal) resolutionsPanel(r *handler.DomainReport) string {
	res := r.Resolutions
	if res == nil || len(res.Data) == 0 {
		return ""
	}
	th := t.theme

	var blocks []string
	for i, d := range res.Data {
		if i == r.MaxResolutions {
			break
		}
		a := d.Attributes
		ip := a.IPAddress
		rows := []row{
			{"Analysis:", th.analysis(a.IPAddressLastAnalysisStats)},
			{"Resolved:", formatTime(a.Resolved())},
		}
		if g, ok := r.GeoASN[ip]; ok {
			rows = append(rows, geoRows(g)...)
		}
		if h, ok := r.Shodan[ip]; ok {
			rows = append(rows, th.shodanRows(h)...)
		}
		rows = append(rows, th.otherRows(ip, r.GreyNoise, r.AbuseIPDB)...)
		blocks = append(blocks, th.subheading.Render(ip)+"\n"+th.table(rows...))
	}

	body := th.heading.Render("Resolutions") + "\n" + strings.Join(blocks, "\n\n")
	if more := res.Meta.Count - r.MaxResolutions; more > 0 {
		body += "\n\n" + th.footer.Render(fmt.Sprintf("+%d more", more))
	}
	return th.panelize("", body)
}

func (t *Terminal) ipPanel(r *handler.IPReport) string {
	th := t.theme
	ip := r.Entity
	content := []string{th.ipVT(r.VirusTotal)}
	if g, ok := r.GeoASN[ip]; ok {
		content = append(content, th.geoASN(g))
	}
	if h, ok := r.Shodan[ip]; ok {
		content = append(content, th.shodan(h))
	}
	if r.URLhaus != nil {
		content = append(content, th.urlhaus(r.URLhaus))
	}
	if other := th.otherRows(ip, r.GreyNoise, r.AbuseIPDB); len(other) > 0 {
		content = append(content, th.section("Other", th.table(other...)))
	}
	return th.panelize(r.VirusTotal.ID, strings.Join(content, "\n\n"))
}
