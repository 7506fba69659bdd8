package paths

import (
	"reflect"
	"runtime"
	"testing"
)

func strptr(s string) *string { return &s }

func TestParseDirectoriesSep(t *testing.T) {
	tests := []struct {
		name  string
		input *string
		sep   rune
		want  []string
		ok    bool
	}{
		{"three dirs", strptr("/a:/b:/c"), ':', []string{"/a", "/b", "/c"}, true},
		{"adjacent separators", strptr("/a::/b"), ':', []string{"/a", "", "/b"}, true},
		{"trailing separator", strptr("/a:"), ':', []string{"/a", ""}, true},
		{"leading separator", strptr(":/a"), ':', []string{"", "/a"}, true},
		{"empty", strptr(""), ':', []string{""}, true},
		{"single", strptr("/only"), ':', []string{"/only"}, true},
		{"windows", strptr(`C:\a;D:\b`), ';', []string{`C:\a`, `D:\b`}, true},
		{"colon kept with semicolon sep", strptr(`C:\a`), ';', []string{`C:\a`}, true},
		{"nil", nil, ':', nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ParseDirectoriesSep(tt.input, tt.sep)
			if ok != tt.ok {
				t.Fatalf("ok = %v, want %v", ok, tt.ok)
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestParseDirectoriesHostSeparator(t *testing.T) {
	want := ':'
	if runtime.GOOS == "windows" {
		want = ';'
	}
	if Separator != want {
		t.Fatalf("Separator = %q, want %q", Separator, want)
	}

	in := "x" + string(Separator) + "y"
	got, ok := ParseDirectories(&in)
	if !ok || !reflect.DeepEqual(got, []string{"x", "y"}) {
		t.Errorf("ParseDirectories(%q) = %q, %v", in, got, ok)
	}
}

func TestNonEmpty(t *testing.T) {
	got := NonEmpty([]string{"", "/a", "", "/b", ""})
	if !reflect.DeepEqual(got, []string{"/a", "/b"}) {
		t.Errorf("NonEmpty = %q", got)
	}
}
