package logs

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/reusedev/autowriter-client/config"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

func TestParseLogLevel(t *testing.T) {
	require.Equal(t, zerolog.DebugLevel, parseLogLevel("DEBUG"))
	require.Equal(t, zerolog.WarnLevel, parseLogLevel("warn"))
	require.Equal(t, zerolog.InfoLevel, parseLogLevel(""))
	require.Equal(t, zerolog.InfoLevel, parseLogLevel("verbose"))
}

func TestInitLoggerWritesFile(t *testing.T) {
	prev := zerolog.GlobalLevel()
	t.Cleanup(func() { zerolog.SetGlobalLevel(prev) })

	path := filepath.Join(t.TempDir(), "client.log")
	InitLogger(config.Log{LogLevel: "info", LogFile: path, LogMaxSize: 1})
	Logger.Info().Str("path", "/img_proc/gen_hw_image").Msg("image request")

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Contains(t, string(data), `"path":"/img_proc/gen_hw_image"`)
}
