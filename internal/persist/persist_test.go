package persist

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/admpjgj/yxip/internal/model"
)

func TestWriteEndpoints(t *testing.T) {
	eps := []model.Endpoint{
		{Octets: [4]uint8{1, 2, 3, 4}},
		{Octets: [4]uint8{8, 8, 8, 8}, Port: 8080, HasPort: true},
	}
	path := filepath.Join(t.TempDir(), "ip.txt")
	if err := WriteEndpoints(path, eps); err != nil {
		t.Fatal(err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	want := "1.2.3.4\n8.8.8.8:8080\n"
	if string(data) != want {
		t.Fatalf("got %q, want %q", data, want)
	}
}

func TestWriteEndpointsEmptySetStillCreatesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ip.txt")
	if err := WriteEndpoints(path, nil); err != nil {
		t.Fatal(err)
	}
	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("artifact missing: %v", err)
	}
	if info.Size() != 0 {
		t.Fatalf("empty set produced %d bytes", info.Size())
	}
}

func TestWriteEndpointsTruncatesPrevious(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ip.txt")
	if err := os.WriteFile(path, []byte("stale content\n"), 0644); err != nil {
		t.Fatal(err)
	}
	if err := WriteEndpoints(path, []model.Endpoint{{Octets: [4]uint8{9, 9, 9, 9}}}); err != nil {
		t.Fatal(err)
	}
	data, _ := os.ReadFile(path)
	if string(data) != "9.9.9.9\n" {
		t.Fatalf("got %q", data)
	}
}

func TestWriteEndpointsUnwritablePath(t *testing.T) {
	err := WriteEndpoints(filepath.Join(t.TempDir(), "missing", "ip.txt"), nil)
	if err == nil {
		t.Fatal("want error for unwritable path")
	}
}
