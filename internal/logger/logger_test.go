package logger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func TestNewLogger(t *testing.T) {
	t.Run("rejects unknown level", func(t *testing.T) {
		_, err := NewLogger("chatty", "console")
		assert.Error(t, err)
	})

	t.Run("builds both encoders", func(t *testing.T) {
		for _, format := range []string{"json", "console"} {
			log, err := NewLogger("debug", format)
			require.NoError(t, err, format)
			assert.True(t, log.Core().Enabled(zapcore.DebugLevel), format)
		}
	})
}
