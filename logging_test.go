package shadows

import (
	"bytes"
	"log"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDefaultLogger_Levels(t *testing.T) {
	var out, errOut bytes.Buffer
	l := NewDefaultLogger("shadows", false)
	l.out = log.New(&out, "", 0)
	l.err = log.New(&errOut, "", 0)

	l.Debugf("hidden %d", 1)
	assert.Empty(t, out.String())

	l.SetDebug(true)
	assert.True(t, l.DebugEnabled())
	l.Debugf("shown %d", 2)
	l.Infof("info")
	l.Warnf("warn")
	l.Errorf("boom: %s", "gpu")

	assert.Contains(t, out.String(), "[shadows] DEBUG: shown 2")
	assert.Contains(t, out.String(), "[shadows] INFO: info")
	assert.Contains(t, errOut.String(), "[shadows] WARN: warn")
	assert.Contains(t, errOut.String(), "[shadows] ERROR: boom: gpu")
}

func TestNopLogger(t *testing.T) {
	l := NewNopLogger()
	l.SetDebug(true)
	assert.False(t, l.DebugEnabled())
	l.Errorf("ignored")
}
