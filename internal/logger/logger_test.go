package logger

import (
	"bytes"
	"encoding/json"
	"os"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"
)

func TestSetLevel(t *testing.T) {
	defer SetLevel("info")

	SetLevel("DEBUG")
	require.Equal(t, logrus.DebugLevel, Logger.GetLevel())

	SetLevel("bogus")
	require.Equal(t, logrus.InfoLevel, Logger.GetLevel())
}

func TestWithFields_JSON(t *testing.T) {
	var buf bytes.Buffer
	SetOutput(&buf)
	defer SetOutput(os.Stdout)

	WithFields(logrus.Fields{"bubble_count": 3}).Info("analysis completed")

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	require.Equal(t, "analysis completed", entry["msg"])
	require.Equal(t, float64(3), entry["bubble_count"])
}
