package denorm_test

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/syssam/denorm"
)

func TestNewConfigDefaults(t *testing.T) {
	t.Parallel()

	c, err := denorm.NewConfig()
	require.NoError(t, err)
	assert.Equal(t, denorm.Lazy, c.Strategy)
	assert.Equal(t, "people", c.Pluralizer("person"))
	assert.Equal(t, "stories", c.Pluralizer("story"))
	assert.NotNil(t, c.Logger)
	assert.Nil(t, c.Stats)
}

func TestOptions(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))
	stats := &denorm.Stats{}
	upper := func(s string) string { return strings.ToUpper(s) }

	c, err := denorm.NewConfig(
		denorm.WithStrategy(denorm.Eager),
		denorm.WithPluralizer(upper),
		denorm.WithLogger(logger),
		denorm.WithStats(stats),
		nil,
	)
	require.NoError(t, err)
	assert.Equal(t, denorm.Eager, c.Strategy)
	assert.Equal(t, "PERSON", c.Pluralizer("person"))
	assert.Same(t, logger, c.Logger)
	assert.Same(t, stats, c.Stats)

	c, err = denorm.NewConfig(denorm.WithLogger(nil))
	require.NoError(t, err)
	assert.NotNil(t, c.Logger)
}

func TestOptionErrors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		opt    denorm.Option
		option string
	}{
		{"strategy", denorm.WithStrategy(denorm.Strategy(5)), "Strategy"},
		{"pluralizer", denorm.WithPluralizer(nil), "Pluralizer"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := denorm.NewConfig(tt.opt)
			require.Error(t, err)
			var ce *denorm.ConfigError
			require.ErrorAs(t, err, &ce)
			assert.Equal(t, tt.option, ce.Option)
		})
	}
}
