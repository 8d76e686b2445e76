package logger

import (
	"bytes"
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
)

func TestNew_JSONFormat(t *testing.T) {
	buf := &bytes.Buffer{}
	log := New("debug", "json", buf)

	log.Debug().Str("file", "expenses.csv").Msg("parsed")

	assert.Contains(t, buf.String(), `"message":"parsed"`)
	assert.Contains(t, buf.String(), `"file":"expenses.csv"`)
}

func TestNew_LevelFilters(t *testing.T) {
	buf := &bytes.Buffer{}
	log := New("warn", "json", buf)

	log.Info().Msg("hidden")
	assert.Empty(t, buf.String())

	log.Warn().Msg("shown")
	assert.Contains(t, buf.String(), "shown")
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want zerolog.Level
	}{
		{"debug", zerolog.DebugLevel},
		{" WARN ", zerolog.WarnLevel},
		{"error", zerolog.ErrorLevel},
		{"", zerolog.InfoLevel},
		{"verbose", zerolog.InfoLevel},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseLevel(tt.in))
		})
	}
}

func TestFromContext(t *testing.T) {
	buf := &bytes.Buffer{}
	ctx := WithContext(context.Background(), New("info", "json", buf))

	log := FromContext(ctx)
	log.Info().Msg("test")

	assert.NotZero(t, buf.Len())
}

func TestFromContext_Missing(t *testing.T) {
	log := FromContext(context.Background())
	assert.Equal(t, zerolog.Disabled, log.GetLevel())
}

func TestWithFields(t *testing.T) {
	buf := &bytes.Buffer{}
	log := WithFields(New("info", "json", buf), map[string]any{"report_id": "r-1"})

	log.Info().Msg("stored")

	assert.Contains(t, buf.String(), `"report_id":"r-1"`)
}
