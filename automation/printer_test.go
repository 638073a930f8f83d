package automation

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPDFMissingBrowser(t *testing.T) {
	p := NewPrinter(filepath.Join(t.TempDir(), "no-such-chrome"), nil)
	_, err := p.PDF(context.Background(), "<html><body>x</body></html>")
	assert.Error(t, err)
}
