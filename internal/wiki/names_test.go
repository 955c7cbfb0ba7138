package wiki_test

import (
	"testing"

	"moin2git/internal/wiki"
)

func TestDecodePageName(t *testing.T) {
	tests := []struct {
		name    string
		encoded string
		want    string
	}{
		{name: "plain ascii", encoded: "FrontPage", want: "FrontPage"},
		{name: "multi byte groups", encoded: "Tom(c3a1)s(20)S(c3a1)nchez(20)Garc(c3ad)a", want: "Tomás Sánchez García"},
		{name: "four digit group", encoded: "Caf(c3a9)(20)Bar", want: "Café Bar"},
		{name: "two byte group split in chunks", encoded: "Na(c3b1)o", want: "Naño"},
		{name: "slash produces subpage", encoded: "Parent(2f)Child", want: "Parent/Child"},
		{name: "odd trailing digit dropped", encoded: "A(414)B", want: "AAB"},
		{name: "uppercase hex is not a group", encoded: "A(C3A1)B", want: "A(C3A1)B"},
		{name: "too long group untouched", encoded: "A(c3a1c3)B", want: "A(c3a1c3)B"},
		{name: "stray percent passes through", encoded: "100%(20)done", want: "100% done"},
		{name: "literal percent escape decoded", encoded: "a%41", want: "aA"},
		{name: "plus is not a space", encoded: "C++", want: "C++"},
		{name: "empty", encoded: "", want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := wiki.DecodePageName(tt.encoded); got != tt.want {
				t.Errorf("DecodePageName(%q) = %q, want %q", tt.encoded, got, tt.want)
			}
		})
	}
}

func TestNewPageIdentity(t *testing.T) {
	id := wiki.NewPageIdentity("Tom(c3a1)s")
	if id.Encoded != "Tom(c3a1)s" || id.Decoded != "Tomás" {
		t.Errorf("NewPageIdentity() = %+v", id)
	}
}

func TestPagePath(t *testing.T) {
	tests := []struct {
		name      string
		decoded   string
		extension string
		want      string
		wantErr   bool
	}{
		{name: "default extension", decoded: "FrontPage", extension: "rst", want: "FrontPage.rst"},
		{name: "no extension", decoded: "FrontPage", extension: "", want: "FrontPage"},
		{name: "subpage", decoded: "Parent/Child", extension: "rst", want: "Parent/Child.rst"},
		{name: "unicode", decoded: "Tomás Sánchez", extension: "md", want: "Tomás Sánchez.md"},
		{name: "inner dot dot cleaned", decoded: "A/../B", extension: "rst", want: "B.rst"},
		{name: "escape rejected", decoded: "../etc/passwd", extension: "rst", wantErr: true},
		{name: "absolute rejected", decoded: "/etc/passwd", extension: "rst", wantErr: true},
		{name: "empty rejected", decoded: "", extension: "rst", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, err := wiki.PagePath(tt.decoded, tt.extension)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("PagePath(%q) = %q, want error", tt.decoded, got)
				}
				return
			}
			if err != nil {
				t.Fatalf("PagePath(%q) error = %v", tt.decoded, err)
			}
			if got != tt.want {
				t.Errorf("PagePath(%q) = %q, want %q", tt.decoded, got, tt.want)
			}
		})
	}
}
