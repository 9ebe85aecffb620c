package entity

import (
	"errors"
	"testing"
)

func TestParse(t *testing.T) {
	tests := []struct {
		input    string
		wantName string
		wantKind Kind
		wantApex string
		wantErr  bool
	}{
		{"93.184.216.34", "93.184.216.34", KindIP, "", false},
		{"  10.0.0.5 ", "10.0.0.5", KindIP, "", false},
		{"2606:2800:220:1:248:1893:25c8:1946", "2606:2800:220:1:248:1893:25c8:1946", KindIP, "", false},
		{"::ffff:1.2.3.4", "1.2.3.4", KindIP, "", false},
		{"example.com", "example.com", KindDomain, "example.com", false},
		{"WWW.Example.COM.", "www.example.com", KindDomain, "example.com", false},
		{"foo.bar.co.uk", "foo.bar.co.uk", KindDomain, "bar.co.uk", false},
		{"", "", KindDomain, "", true},
		{"http://example.com/path", "", KindDomain, "", true},
		{"bad domain.com", "", KindDomain, "", true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := Parse(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Parse(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if tt.wantErr {
				if !errors.Is(err, ErrInvalid) {
					t.Errorf("Parse(%q) error = %v, want ErrInvalid", tt.input, err)
				}
				return
			}
			if got.String() != tt.wantName {
				t.Errorf("Parse(%q).String() = %q, want %q", tt.input, got.String(), tt.wantName)
			}
			if got.Kind() != tt.wantKind {
				t.Errorf("Parse(%q).Kind() = %v, want %v", tt.input, got.Kind(), tt.wantKind)
			}
			if got.Apex() != tt.wantApex {
				t.Errorf("Parse(%q).Apex() = %q, want %q", tt.input, got.Apex(), tt.wantApex)
			}
		})
	}
}

func TestIsPublic(t *testing.T) {
	tests := []struct {
		input string
		want  bool
	}{
		{"93.184.216.34", true},
		{"10.0.0.5", false},
		{"192.168.1.1", false},
		{"127.0.0.1", false},
		{"169.254.1.1", false},
		{"example.com", false},
	}
	for _, tt := range tests {
		if got := MustParse(tt.input).IsPublic(); got != tt.want {
			t.Errorf("IsPublic(%q) = %v, want %v", tt.input, got, tt.want)
		}
	}
}
