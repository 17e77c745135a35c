package project

import "testing"

func TestIsValidModulePath(t *testing.T) {
	tests := []struct {
		path string
		want bool
	}{
		{"app", true},
		{"lib/str", true},
		{"a/b/c", true},
		{"_hidden/x1", true},
		{"", false},
		{"a//b", false},
		{"/a", false},
		{"a/", false},
		{"a/../b", false},
		{"a/./b", false},
		{"1abc", false},
		{"приложение", false},
		{"a b", false},
	}

	for _, tt := range tests {
		if got := IsValidModulePath(tt.path); got != tt.want {
			t.Errorf("IsValidModulePath(%q) = %v, want %v", tt.path, got, tt.want)
		}
	}
}

func TestNormalizeModulePath(t *testing.T) {
	tests := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{in: "lib/str.ag", want: "lib/str"},
		{in: "lib\\str.ag", want: "lib/str"},
		{in: "/lib/str/", want: "lib/str"},
		{in: "app", want: "app"},
		{in: ".ag", wantErr: true},
		{in: "", wantErr: true},
		{in: "a//b", wantErr: true},
		{in: "a/../b", wantErr: true},
	}

	for _, tt := range tests {
		got, err := NormalizeModulePath(tt.in)
		if tt.wantErr {
			if err == nil {
				t.Errorf("NormalizeModulePath(%q) = %q, want error", tt.in, got)
			}
			continue
		}
		if err != nil {
			t.Errorf("NormalizeModulePath(%q) failed: %v", tt.in, err)
			continue
		}
		if got != tt.want {
			t.Errorf("NormalizeModulePath(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
