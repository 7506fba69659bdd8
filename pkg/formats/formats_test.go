package formats

import (
	"errors"
	"testing"
)

func TestNewReader(t *testing.T) {
	tests := []struct {
		path    string
		want    string
		wantErr bool
	}{
		{"scene.yaml", "scene", false},
		{"scene.YML", "scene", false},
		{"dir/model.rsm", "rsm", false},
		{"model.RSM", "rsm", false},
		{"scene.dae", "", true},
		{"noext", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			r, err := NewReader(tt.path, Options{})
			if tt.wantErr {
				if !errors.Is(err, ErrUnsupportedFormat) {
					t.Errorf("got %v, want ErrUnsupportedFormat", err)
				}
				return
			}
			if err != nil {
				t.Fatal(err)
			}
			if got := readerKind(r); got != tt.want {
				t.Errorf("reader = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestNewReaderForData(t *testing.T) {
	if got := readerKind(NewReaderForData(buildRSM(1, 5, "root"), Options{})); got != "rsm" {
		t.Errorf("RSM data: reader = %s", got)
	}
	if got := readerKind(NewReaderForData([]byte("bodies: []"), Options{})); got != "scene" {
		t.Errorf("YAML data: reader = %s", got)
	}
}

func TestNewWriter(t *testing.T) {
	if _, err := NewWriter("out.yaml"); err != nil {
		t.Errorf("yaml: %v", err)
	}
	if _, err := NewWriter("out.rsm"); !errors.Is(err, ErrUnsupportedFormat) {
		t.Errorf("rsm: got %v, want ErrUnsupportedFormat", err)
	}
}

func readerKind(r Reader) string {
	switch r.(type) {
	case *SceneReader:
		return "scene"
	case *RSMReader:
		return "rsm"
	default:
		return "unknown"
	}
}
