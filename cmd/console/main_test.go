package main

import "testing"

func TestAPIRoot(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"http://127.0.0.1:8080", "http://127.0.0.1:8080/api/v1"},
		{"http://127.0.0.1:8080/", "http://127.0.0.1:8080/api/v1"},
		{" https://erp.example.com/api/v1/ ", "https://erp.example.com/api/v1"},
	}
	for _, tt := range tests {
		if got := apiRoot(tt.in); got != tt.want {
			t.Errorf("apiRoot(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestLoadConfig_DefaultsWithoutFile(t *testing.T) {
	cfg, level, err := loadConfig("")
	if err != nil {
		t.Fatalf("loadConfig: %v", err)
	}
	if cfg.APIURL == "" || level != "info" {
		t.Errorf("unexpected defaults %+v, %q", cfg, level)
	}
}

func TestLoadConfig_MissingFile(t *testing.T) {
	if _, _, err := loadConfig("does-not-exist.yaml"); err == nil {
		t.Fatal("expected an error for a missing file")
	}
}
