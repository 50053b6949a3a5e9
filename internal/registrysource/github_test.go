package registrysource

import "testing"

func TestIsRemote(t *testing.T) {
	tests := []struct {
		in   string
		want bool
	}{
		{"owner/repo", true},
		{"owner/repo@main", true},
		{"owner/repo/sub/dir", true},
		{"./registry", false},
		{"/abs/registry", false},
		{"registry", false},
		{"", false},
	}
	for _, tt := range tests {
		if got := IsRemote(tt.in); got != tt.want {
			t.Errorf("IsRemote(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestParseRef(t *testing.T) {
	tests := []struct {
		in   string
		want Ref
	}{
		{"owner/repo", Ref{Owner: "owner", Repo: "repo", Path: "."}},
		{"owner/repo@v1.2.3", Ref{Owner: "owner", Repo: "repo", Ref: "v1.2.3", Path: "."}},
		{"owner/repo@main/semconv", Ref{Owner: "owner", Repo: "repo", Ref: "main", Path: "semconv"}},
		{"owner/repo/semconv/registry", Ref{Owner: "owner", Repo: "repo", Path: "semconv/registry"}},
	}
	for _, tt := range tests {
		got, err := ParseRef(tt.in)
		if err != nil {
			t.Fatalf("ParseRef(%q) error: %v", tt.in, err)
		}
		if got != tt.want {
			t.Errorf("ParseRef(%q) = %+v, want %+v", tt.in, got, tt.want)
		}
	}
}

func TestParseRef_Invalid(t *testing.T) {
	if _, err := ParseRef("justonename"); err == nil {
		t.Fatal("expected error for single-segment source")
	}
}

func TestFS_RemotePath(t *testing.T) {
	f := &FS{ref: Ref{Owner: "o", Repo: "r", Path: "."}}
	if got := f.remotePath("."); got != "." {
		t.Errorf("remotePath(.) = %q, want .", got)
	}
	if got := f.remotePath("http.yaml"); got != "http.yaml" {
		t.Errorf("remotePath(http.yaml) = %q, want http.yaml", got)
	}

	f2 := &FS{ref: Ref{Owner: "o", Repo: "r", Path: "semconv"}}
	if got := f2.remotePath("."); got != "semconv" {
		t.Errorf("remotePath(.) = %q, want semconv", got)
	}
	if got := f2.remotePath("http.yaml"); got != "semconv/http.yaml" {
		t.Errorf("remotePath(http.yaml) = %q, want semconv/http.yaml", got)
	}
}
