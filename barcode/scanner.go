package barcode

import (
	"fmt"
	"strconv"
	"sync"
	"time"
)

const (
	// ScannerGap is the longest pause between keystrokes of one scan.
	// Human typing is slower and resets the buffer.
	ScannerGap = 100 * time.Millisecond
	// minimum buffered length for Enter to count as a scan
	minScanLength = 3

	KeyEnter = "Enter"
)

// Detector tells hardware-scanner input apart from typing by keystroke
// timing. Keys are named the way browsers report them: single characters,
// or names such as "Enter" and "Shift".
type Detector struct {
	mu     sync.Mutex
	buf    []rune
	last   time.Time
	onScan func(code string)
}

func NewDetector(onScan func(code string)) *Detector {
	return &Detector{onScan: onScan}
}

// Key feeds one keystroke observed at time at. It returns the scanned code
// when this key completes a scan.
func (d *Detector) Key(key string, at time.Time) (string, bool) {
	d.mu.Lock()
	if !d.last.IsZero() && at.Sub(d.last) > ScannerGap {
		d.buf = d.buf[:0]
	}
	d.last = at

	var code string
	switch runes := []rune(key); {
	case key == KeyEnter:
		if len(d.buf) >= minScanLength {
			code = string(d.buf)
			d.buf = d.buf[:0]
		}
	case len(runes) == 1:
		d.buf = append(d.buf, runes[0])
	}
	d.mu.Unlock()

	if code == "" {
		return "", false
	}
	if d.onScan != nil {
		d.onScan(code)
	}
	return code, true
}

// Reset discards any partial input.
func (d *Detector) Reset() {
	d.mu.Lock()
	d.buf = d.buf[:0]
	d.last = time.Time{}
	d.mu.Unlock()
}

// Generate returns the fallback barcode for a medicine registered without
// one: "BC-" followed by the last six digits of the Unix millisecond clock.
func Generate(now time.Time) string {
	ms := strconv.FormatInt(now.UnixMilli(), 10)
	if len(ms) > 6 {
		ms = ms[len(ms)-6:]
	}
	return fmt.Sprintf("BC-%s", ms)
}
