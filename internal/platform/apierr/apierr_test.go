package apierr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
)

func TestStatusOf(t *testing.T) {
	cause := errors.New("bad yaml")
	err := fmt.Errorf("import: %w", New(http.StatusUnprocessableEntity, "import_failed", cause))

	status, code, ok := StatusOf(err)
	if !ok || status != http.StatusUnprocessableEntity || code != "import_failed" {
		t.Fatalf("StatusOf: %d %q %v", status, code, ok)
	}
	if !errors.Is(err, cause) || err.Error() != "import: bad yaml" {
		t.Fatalf("cause lost: %v", err)
	}
	if _, _, ok := StatusOf(cause); ok {
		t.Fatalf("plain error has no status")
	}
}
