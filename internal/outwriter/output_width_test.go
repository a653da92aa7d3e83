package outwriter

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/essalab/essa/internal/contract"
)

// TestGetTerminalWidth tests the width override and the detection fallback.
func TestGetTerminalWidth(t *testing.T) {
	t.Run("explicit override wins", func(t *testing.T) {
		assert.Equal(t, 120, GetTerminalWidth(&contract.Config{Width: 120}))
	})

	t.Run("auto detection never returns zero", func(t *testing.T) {
		// Under `go test` stdout is typically a pipe, so this exercises
		// the 80-column fallback; on a real terminal it reports the size.
		width := GetTerminalWidth(&contract.Config{})
		assert.Greater(t, width, 0)
	})
}

// TestWidthConstrainsScanTable tests that the width override caps the
// rendered table instead of being ignored.
func TestWidthConstrainsScanTable(t *testing.T) {
	res := scanResultFixture()
	rows := topScanRows(res, 0)
	fmtFloat, _ := createFormatters(2)

	render := func(width int) string {
		cfg := &contract.Config{Precision: 2, Width: width}
		var buf bytes.Buffer
		require.NoError(t, writeScanTable(rows, res, cfg, fmtFloat, time.Second, &buf))
		return buf.String()
	}

	wide := render(200)
	assert.Contains(t, wide, "Z-SCORE")

	// Six columns into 24 cells leaves no room for a one-line header, so
	// the header must wrap.
	narrow := render(24)
	assert.NotContains(t, narrow, "Z-SCORE")
	assert.NotEqual(t, wide, narrow)
}
