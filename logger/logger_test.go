package logger

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/apextelemetry/apextelemetry/config"

	"github.com/op/go-logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in      config.LogLevel
		want    logging.Level
		wantErr bool
	}{
		{config.Debug, logging.DEBUG, false},
		{config.Info, logging.INFO, false},
		{config.Notice, logging.NOTICE, false},
		{config.Warn, logging.WARNING, false},
		{config.Error, logging.ERROR, false},
		{config.LogLevel("loud"), logging.INFO, true},
	}
	for _, tt := range tests {
		got, err := ParseLevel(tt.in)
		if tt.wantErr {
			assert.Error(t, err, tt.in)
			continue
		}
		assert.NoError(t, err)
		assert.Equal(t, tt.want, got, tt.in)
	}
}

func TestInitLoggerWritesFile(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("APEX_LOG_FOLDER", dir)

	InitLogger(logging.ERROR)
	defer CloseLogger()

	Debugf("lap %d recorded", 12)

	data, err := os.ReadFile(filepath.Join(dir, logFileName))
	require.NoError(t, err)
	assert.Contains(t, string(data), "lap 12 recorded")
}
