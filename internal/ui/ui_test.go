package ui

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPrinter_PlainForNonTTY(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	p.Successf("done %d", 3)
	p.Errorf("failed")

	assert.Equal(t, "done 3\nfailed\n", buf.String())
	assert.NotContains(t, buf.String(), "\033[")
}

func TestIsTTY_NonFileWriter(t *testing.T) {
	assert.False(t, IsTTY(&bytes.Buffer{}))
	assert.False(t, IsTTY(nil))
}

func TestDetectCI(t *testing.T) {
	t.Setenv("CI", "true")
	assert.True(t, DetectCI())
}

func TestDetectNoColor(t *testing.T) {
	t.Setenv("NO_COLOR", "1")
	assert.True(t, DetectNoColor())
}
