package term

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/backmassage/clipnamer/internal/config"
)

func TestConfigure(t *testing.T) {
	t.Cleanup(func() { Configure(config.ColorNever) })

	Configure(config.ColorAlways)
	assert.True(t, Enabled())
	assert.Equal(t, "\033[0m", NC)

	Configure(config.ColorNever)
	assert.False(t, Enabled())
	assert.Empty(t, Red)
}

func TestIsTerminal(t *testing.T) {
	assert.False(t, IsTerminal(nil))

	f, err := os.CreateTemp(t.TempDir(), "out")
	if assert.NoError(t, err) {
		defer f.Close()
		assert.False(t, IsTerminal(f))
	}
}
