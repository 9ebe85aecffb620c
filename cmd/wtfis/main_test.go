package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/kluth/wtfis/internal/config"
)

// upstreamTransport sends every request to one test server, recording the
// original host in a header.
type upstreamTransport struct {
	target *url.URL
}

func (t upstreamTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	r := req.Clone(req.Context())
	r.Header.Set("X-Upstream-Host", req.URL.Host)
	r.URL.Scheme = t.target.Scheme
	r.URL.Host = t.target.Host
	r.Host = t.target.Host
	return http.DefaultTransport.RoundTrip(r)
}

func providerServer(t *testing.T, vtStatus int) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		host := r.Header.Get("X-Upstream-Host")
		switch {
		case host == "www.virustotal.com" && strings.HasSuffix(r.URL.Path, "/historical_whois"):
			fmt.Fprint(w, `{"data":[]}`)
		case host == "www.virustotal.com" && r.URL.Path == "/api/v3/ip_addresses/93.184.216.34":
			if vtStatus != http.StatusOK {
				w.WriteHeader(vtStatus)
				fmt.Fprint(w, `{"error":{"code":"WrongCredentialsError","message":"Wrong API key"}}`)
				return
			}
			fmt.Fprint(w, `{"data":{"id":"93.184.216.34","attributes":{"reputation":0,"last_analysis_stats":{"harmless":70,"malicious":0,"undetected":20}}}}`)
		case host == "ipwho.is":
			fmt.Fprint(w, `{"ip":"93.184.216.34","success":true,"country":"United States","city":"Norwell","connection":{"asn":15133,"org":"Edgecast","isp":"Verizon"}}`)
		case host == "urlhaus-api.abuse.ch":
			w.WriteHeader(http.StatusInternalServerError)
		default:
			t.Errorf("unexpected request %s %s%s", r.Method, host, r.URL.Path)
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	t.Cleanup(srv.Close)
	return srv
}

func testApp(t *testing.T, srv *httptest.Server, env map[string]string) (*app, *bytes.Buffer, *bytes.Buffer) {
	t.Helper()
	target, err := url.Parse(srv.URL)
	if err != nil {
		t.Fatal(err)
	}
	var stdout, stderr bytes.Buffer
	return &app{
		stdout: &stdout,
		stderr: &stderr,
		source: config.Source{
			Getenv:  func(k string) string { return env[k] },
			HomeDir: t.TempDir(),
		},
		httpClient: &http.Client{Transport: upstreamTransport{target: target}},
	}, &stdout, &stderr
}

func execute(a *app, args ...string) error {
	cmd := newRootCmd(a)
	cmd.SetArgs(args)
	cmd.SetOut(a.stdout)
	cmd.SetErr(a.stderr)
	return cmd.ExecuteContext(context.Background())
}

func TestRunIPLookup(t *testing.T) {
	a, stdout, stderr := testApp(t, providerServer(t, http.StatusOK), map[string]string{config.EnvVirusTotal: "vt"})

	if err := execute(a, "93.184.216.34", "--no-color", "--one-column", "--quiet"); err != nil {
		t.Fatalf("execute() error: %v", err)
	}
	for _, want := range []string{"93.184.216.34", "0/90 malicious", "AS15133 (Edgecast)", "Norwell, United States"} {
		if !strings.Contains(stdout.String(), want) {
			t.Errorf("stdout missing %q\n%s", want, stdout.String())
		}
	}
	if stderr.Len() != 0 {
		t.Errorf("stderr = %q, want empty", stderr.String())
	}
}

func TestRunOptionalProviderWarning(t *testing.T) {
	a, stdout, stderr := testApp(t, providerServer(t, http.StatusOK), map[string]string{config.EnvVirusTotal: "vt"})

	if err := execute(a, "93.184.216.34", "-u", "-q", "-f", "json"); err != nil {
		t.Fatalf("execute() error: %v", err)
	}
	if !strings.Contains(stderr.String(), "Could not fetch URLhaus") {
		t.Errorf("stderr = %q, want URLhaus warning", stderr.String())
	}

	var got struct {
		Kind     string          `json:"kind"`
		URLhaus  json.RawMessage `json:"urlhaus"`
		Warnings []string        `json:"warnings"`
	}
	if err := json.Unmarshal(stdout.Bytes(), &got); err != nil {
		t.Fatalf("invalid JSON output: %v", err)
	}
	if got.Kind != "ip" || got.URLhaus != nil || len(got.Warnings) != 1 {
		t.Errorf("report = %+v", got)
	}
}

func TestRunMandatoryFailure(t *testing.T) {
	a, stdout, _ := testApp(t, providerServer(t, http.StatusUnauthorized), map[string]string{config.EnvVirusTotal: "bad"})

	err := execute(a, "93.184.216.34", "-q")
	var exitErr *ExitError
	if !errors.As(err, &exitErr) || exitErr.Code != 1 {
		t.Fatalf("error = %v, want ExitError code 1", err)
	}
	if !strings.Contains(exitErr.Message, "Wrong API key") {
		t.Errorf("message = %q", exitErr.Message)
	}
	if stdout.Len() != 0 {
		t.Errorf("report rendered after mandatory failure: %q", stdout.String())
	}
}

func TestRunConfigErrors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Errorf("unexpected request %s", r.URL)
	}))
	defer srv.Close()

	tests := []struct {
		name string
		env  map[string]string
		args []string
		want error
	}{
		{"missing VirusTotal key", nil, []string{"example.com"}, config.ErrMissingKey},
		{"shodan without key", map[string]string{config.EnvVirusTotal: "vt"}, []string{"example.com", "-s"}, config.ErrMissingKey},
		{"too many resolutions", map[string]string{config.EnvVirusTotal: "vt"}, []string{"example.com", "-m", "11"}, config.ErrInvalid},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a, _, _ := testApp(t, srv, tt.env)
			err := execute(a, tt.args...)
			var exitErr *ExitError
			if !errors.As(err, &exitErr) || exitErr.Code != 1 {
				t.Fatalf("error = %v, want ExitError code 1", err)
			}
			if !errors.Is(err, tt.want) {
				t.Errorf("error = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestRunOutputFile(t *testing.T) {
	a, stdout, _ := testApp(t, providerServer(t, http.StatusOK), map[string]string{config.EnvVirusTotal: "vt"})
	out := filepath.Join(t.TempDir(), "report.pdf")

	if err := execute(a, "93.184.216.34", "-q", "-f", "pdf", "-o", out); err != nil {
		t.Fatalf("execute() error: %v", err)
	}
	data, err := os.ReadFile(out)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.HasPrefix(data, []byte("%PDF-")) {
		t.Error("output file is not a PDF")
	}
	if stdout.Len() != 0 {
		t.Errorf("stdout = %q, want empty", stdout.String())
	}
}

func TestHandleLookup(t *testing.T) {
	a, _, _ := testApp(t, providerServer(t, http.StatusOK), map[string]string{config.EnvVirusTotal: "vt"})

	var req mcp.CallToolRequest
	req.Params.Arguments = map[string]interface{}{"entity": "93.184.216.34", "max_resolutions": float64(2)}
	res, err := a.handleLookup(context.Background(), req)
	if err != nil {
		t.Fatalf("handleLookup() error: %v", err)
	}
	if res.IsError {
		t.Fatalf("tool error: %+v", res.Content)
	}
	text, ok := res.Content[0].(mcp.TextContent)
	if !ok {
		t.Fatalf("content = %T", res.Content[0])
	}
	if !strings.Contains(text.Text, `"kind": "ip"`) {
		t.Errorf("result = %s", text.Text)
	}
}

func TestHandleLookupBadArguments(t *testing.T) {
	a, _, _ := testApp(t, providerServer(t, http.StatusOK), map[string]string{config.EnvVirusTotal: "vt"})

	for _, args := range []map[string]interface{}{
		{},
		{"entity": 42},
		{"entity": "example.com", "use_shodan": "yes"},
		{"entity": "not a host"},
	} {
		var req mcp.CallToolRequest
		req.Params.Arguments = args
		res, err := a.handleLookup(context.Background(), req)
		if err != nil {
			t.Fatalf("handleLookup(%v) error: %v", args, err)
		}
		if !res.IsError {
			t.Errorf("handleLookup(%v) succeeded", args)
		}
	}
}
