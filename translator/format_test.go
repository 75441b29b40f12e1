package translator

import (
	"bytes"
	"go/format"
	"os"
	"testing"
)

func TestSourcesAreFormatted(t *testing.T) {
	for _, name := range []string{"types.go", "parser.go"} {
		src, err := os.ReadFile(name)
		if err != nil {
			t.Fatalf("read %s: %v", name, err)
		}
		formatted, err := format.Source(src)
		if err != nil {
			t.Fatalf("format %s: %v", name, err)
		}
		if !bytes.Equal(src, formatted) {
			t.Errorf("%s is not gofmt-formatted", name)
		}
	}
}
