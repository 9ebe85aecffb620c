package view

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/kluth/wtfis/internal/clients"
)

const timeLayout = "2006-01-02T15:04:05Z"

// row is one label/value line of a section. Rows with an empty value are
// not rendered.
type row struct {
	label string
	value string
}

// table aligns rows on the widest label.
func (t theme) table(rows ...row) string {
	width := 0
	for _, r := range rows {
		if r.value != "" && lipgloss.Width(r.label) > width {
			width = lipgloss.Width(r.label)
		}
	}
	var lines []string
	for _, r := range rows {
		if r.value == "" {
			continue
		}
		label := t.label.Render(r.label + strings.Repeat(" ", width-lipgloss.Width(r.label)))
		valueLines := strings.Split(r.value, "\n")
		lines = append(lines, label+" "+valueLines[0])
		for _, l := range valueLines[1:] {
			lines = append(lines, strings.Repeat(" ", width+1)+l)
		}
	}
	return strings.Join(lines, "\n")
}

func (t theme) section(heading, body string) string {
	if body == "" {
		body = t.muted.Render("no data")
	}
	return t.heading.Render(heading) + "\n" + body
}

func (t theme) analysis(s clients.AnalysisStats) string {
	bad := s.Malicious + s.Suspicious
	return t.scoreStyle(bad).Render(fmt.Sprintf("%d/%d malicious", s.Malicious, s.Total()))
}

func (t theme) reputation(rep int) string {
	st := t.good
	if rep < 0 {
		st = t.bad
	}
	return st.Render(fmt.Sprintf("%d", rep))
}

func (t theme) joinTags(tags []string) string {
	if len(tags) == 0 {
		return ""
	}
	styled := make([]string, len(tags))
	for i, tag := range tags {
		styled[i] = t.tags.Render(tag)
	}
	return strings.Join(styled, ", ")
}

func formatTime(ts time.Time) string {
	if ts.IsZero() {
		return ""
	}
	return ts.Format(timeLayout)
}

// smartJoin joins the non-empty parts.
func smartJoin(sep string, parts ...string) string {
	var out []string
	for _, p := range parts {
		if p != "" {
			out = append(out, p)
		}
	}
	return strings.Join(out, sep)
}

func popularity(ranks map[string]clients.PopularityRank) string {
	if len(ranks) == 0 {
		return ""
	}
	names := make([]string, 0, len(ranks))
	for name := range ranks {
		names = append(names, name)
	}
	sort.Strings(names)
	lines := make([]string, len(names))
	for i, name := range names {
		lines[i] = fmt.Sprintf("%s (%d)", name, ranks[name].Rank)
	}
	return strings.Join(lines, "\n")
}

func categories(cats map[string]string) []string {
	seen := map[string]bool{}
	var out []string
	for _, c := range cats {
		if !seen[c] {
			seen[c] = true
			out = append(out, c)
		}
	}
	sort.Strings(out)
	return out
}

func (t theme) domainVT(d *clients.Domain, apex string) string {
	a := d.Attributes
	rows := []row{
		{"Analysis:", t.analysis(a.LastAnalysisStats)},
		{"Reputation:", t.reputation(a.Reputation)},
		{"Popularity:", popularity(a.PopularityRanks)},
		{"Categories:", t.joinTags(categories(a.Categories))},
		{"Last Modified:", formatTime(a.LastModified())},
	}
	if apex != "" && apex != d.ID {
		rows = append([]row{{"Apex:", apex}}, rows...)
	}
	return t.section("VirusTotal", t.table(rows...))
}

func (t theme) ipVT(ip *clients.IPAddress) string {
	a := ip.Attributes
	return t.section("VirusTotal", t.table(
		row{"Analysis:", t.analysis(a.LastAnalysisStats)},
		row{"Reputation:", t.reputation(a.Reputation)},
		row{"Tags:", t.joinTags(a.Tags)},
		row{"Updated:", formatTime(a.LastModified())},
	))
}

func asnText(g clients.GeoASN) string {
	if g.ASN == 0 {
		return g.Org
	}
	return smartJoin(" ", fmt.Sprintf("AS%d", g.ASN), parens(g.Org))
}

func parens(s string) string {
	if s == "" {
		return ""
	}
	return "(" + s + ")"
}

func geoRows(g clients.GeoASN) []row {
	if g.Empty() {
		return nil
	}
	return []row{
		{"ASN:", asnText(g)},
		{"ISP:", g.ISP},
		{"Location:", smartJoin(", ", g.City, g.Region, g.Country)},
	}
}

func (t theme) geoASN(g clients.GeoASN) string {
	return t.section("IPWhois", t.table(geoRows(g)...))
}

func services(h clients.ShodanHost) string {
	var lines []string
	for _, s := range h.SortedServices() {
		lines = append(lines, smartJoin(" ", fmt.Sprintf("%d/%s", s.Port, s.Transport), s.Product, s.Version))
	}
	return strings.Join(lines, "\n")
}

func (t theme) shodanRows(h clients.ShodanHost) []row {
	return []row{
		{"OS:", h.OS},
		{"Services:", services(h)},
		{"Tags:", t.joinTags(h.Tags)},
	}
}

func (t theme) shodan(h clients.ShodanHost) string {
	rows := append(t.shodanRows(h), row{"Last Scan:", h.LastUpdate})
	return t.section("Shodan", t.table(rows...))
}

func (t theme) urlhaus(h *clients.URLhausHost) string {
	if !h.Found() {
		return t.section("URLhaus", t.muted.Render("no malware URLs"))
	}
	count := t.scoreStyle(len(h.URLs)).Render(fmt.Sprintf("%d (%d online)", len(h.URLs), h.OnlineCount()))
	var lists []string
	for name, status := range h.Blacklists {
		lists = append(lists, name+": "+status)
	}
	sort.Strings(lists)
	return t.section("URLhaus", t.table(
		row{"Malware URLs:", count},
		row{"Blocklists:", strings.Join(lists, "\n")},
		row{"Threats:", t.joinTags(h.Threats())},
		row{"Tags:", t.joinTags(h.Tags())},
	))
}

func (t theme) greynoise(g clients.GreyNoiseIP) string {
	if !g.Noise && !g.Riot && g.Classification == "" {
		return t.muted.Render("not observed")
	}
	var flags []string
	if g.Riot {
		flags = append(flags, t.good.Render("riot"))
	}
	if g.Noise {
		flags = append(flags, t.warn.Render("noise"))
	}
	class := g.Classification
	switch class {
	case "malicious":
		class = t.bad.Render(class)
	case "benign":
		class = t.good.Render(class)
	}
	return smartJoin(" ", strings.Join(flags, " "), class, parens(g.Name))
}

func (t theme) abuse(a clients.AbuseReport) string {
	if a.IsWhitelisted {
		return t.good.Render("whitelisted")
	}
	score := t.scoreStyle(a.AbuseConfidenceScore / 20).Render(fmt.Sprintf("%d%% confidence", a.AbuseConfidenceScore))
	return fmt.Sprintf("%s, %d reports by %d users", score, a.TotalReports, a.NumDistinctUsers)
}

// otherRows renders the per-IP enrichments that have no section of their own.
func (t theme) otherRows(ip string, gn clients.GreyNoiseMap, ab clients.AbuseMap) []row {
	var rows []row
	if g, ok := gn[ip]; ok {
		rows = append(rows, row{"GreyNoise:", t.greynoise(g)})
	}
	if a, ok := ab[ip]; ok {
		rows = append(rows, row{"AbuseIPDB:", t.abuse(a)})
	}
	return rows
}

func (t theme) whois(w *clients.Whois, title string) string {
	if w == nil || w.Empty() {
		return ""
	}
	body := t.table(
		row{"Registrar:", w.Registrar},
		row{"Organization:", w.Organization},
		row{"Name:", w.Name},
		row{"Email:", w.Email},
		row{"Phone:", w.Phone},
		row{"Street:", w.Street},
		row{"City:", w.City},
		row{"State:", w.State},
		row{"Country:", w.Country},
		row{"Postcode:", w.PostalCode},
		row{"Nameservers:", strings.Join(w.NameServers, "\n")},
		row{"DNSSEC:", w.DNSSEC},
		row{"Registered:", formatTime(w.Registered)},
		row{"Updated:", formatTime(w.Updated)},
		row{"Expires:", formatTime(w.Expires)},
	)
	return t.panelize(title, t.section("Whois", body)+"\n"+t.footer.Render("source: "+w.Source))
}

func (t theme) panelize(title, body string) string {
	if title != "" {
		body = t.title.Render(title) + "\n\n" + body
	}
	return t.panel.Render(body)
}
