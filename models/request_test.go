package models

import "testing"

func TestAuditRequest_Validate(t *testing.T) {
	tests := []struct {
		name    string
		url     string
		wantErr bool
	}{
		{"empty", "", true},
		{"whitespace", "   ", true},
		{"relative", "/recipe/123", true},
		{"no host", "https://", true},
		{"ftp scheme", "ftp://example.com/file", true},
		{"garbage", "ht!tp://%zz", true},
		{"https", "https://example.com/recipe", false},
		{"http with port", "http://localhost:8080/page", false},
		{"padded", "  https://example.com  ", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := &AuditRequest{URL: tt.url}
			err := req.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate(%q) error = %v, wantErr %v", tt.url, err, tt.wantErr)
			}
		})
	}
}

func TestAuditRequest_ValidateTrims(t *testing.T) {
	req := &AuditRequest{URL: "  https://example.com/x \n"}
	if err := req.Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if req.URL != "https://example.com/x" {
		t.Errorf("URL not trimmed: %q", req.URL)
	}
}
