package root_test

import (
	"os"
	"testing"

	"fjacquet/extracto-ofx/cmd/root"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	root.Init()
}

func TestRootCommand_Metadata(t *testing.T) {
	assert.Equal(t, "extracto-ofx", root.Cmd.Use)
	assert.Contains(t, root.Cmd.Short, "OFX")
	assert.Contains(t, root.Cmd.Long, "BBVA, Santander and Inversis")
	assert.NotNil(t, root.Cmd.Run)
	assert.NotNil(t, root.Cmd.PersistentPreRunE)
	assert.NotNil(t, root.Cmd.PersistentPostRun)
}

func TestRootCommand_Flags(t *testing.T) {
	tests := []struct {
		name      string
		shorthand string
	}{
		{"input", "i"},
		{"output", "o"},
		{"validate", "v"},
		{"format", "f"},
		{"config", ""},
		{"log-level", ""},
		{"log-format", ""},
		{"currency", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			flag := root.Cmd.PersistentFlags().Lookup(tt.name)
			require.NotNil(t, flag)
			assert.Equal(t, tt.shorthand, flag.Shorthand)
		})
	}
}

func TestRootCommand_Run(t *testing.T) {
	assert.NotPanics(t, func() {
		root.Cmd.Run(&cobra.Command{}, []string{})
	})
}

func TestGetConfig_Defaults(t *testing.T) {
	saved := root.AppConfig
	t.Cleanup(func() { root.AppConfig = saved })
	root.AppConfig = nil

	cfg := root.GetConfig()
	require.NotNil(t, cfg)
	assert.Equal(t, "EUR", cfg.OFX.Currency)
}

func TestGetContainer(t *testing.T) {
	saved := root.AppContainer
	t.Cleanup(func() { root.AppContainer = saved })
	root.AppContainer = nil

	c := root.GetContainer()
	require.NotNil(t, c)
	assert.Same(t, c, root.GetContainer())
	_, err := c.GetParser("bbva")
	assert.NoError(t, err)
}

func TestPersistentPreRunE(t *testing.T) {
	savedConfig, savedContainer := root.AppConfig, root.AppContainer
	t.Cleanup(func() {
		root.AppConfig = savedConfig
		root.AppContainer = savedContainer
	})
	t.Setenv("HOME", t.TempDir())
	chdir(t, t.TempDir())

	require.NoError(t, root.Cmd.PersistentFlags().Set("currency", "usd"))
	t.Cleanup(func() { _ = root.Cmd.PersistentFlags().Set("currency", "") })

	require.NoError(t, root.Cmd.PersistentPreRunE(root.Cmd, nil))
	require.NotNil(t, root.AppConfig)
	require.NotNil(t, root.AppContainer)
	assert.Equal(t, "usd", root.AppConfig.OFX.Currency)
}

func TestPersistentPreRunE_InvalidLogLevel(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	chdir(t, t.TempDir())

	require.NoError(t, root.Cmd.PersistentFlags().Set("log-level", "loud"))
	t.Cleanup(func() { _ = root.Cmd.PersistentFlags().Set("log-level", "info") })

	err := root.Cmd.PersistentPreRunE(root.Cmd, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid log level")
}

func TestCommonFlags_Structure(t *testing.T) {
	flags := root.CommonFlags{Input: "in.xlsx", Output: "out.ofx", Validate: true, Format: "ofx"}

	assert.Equal(t, "in.xlsx", flags.Input)
	assert.Equal(t, "out.ofx", flags.Output)
	assert.True(t, flags.Validate)
	assert.Equal(t, "ofx", flags.Format)
}

// chdir changes the working directory for the duration of the test.
func chdir(t *testing.T, dir string) {
	t.Helper()
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(wd) })
}
