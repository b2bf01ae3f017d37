package commands

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/royalton/portal/pkg/logger"
)

func TestRoutesCommand(t *testing.T) {
	log = logger.NewNope()

	t.Run("lists pages in table order", func(t *testing.T) {
		var out bytes.Buffer
		cmd := routesCmd()
		cmd.SetOut(&out)
		cmd.SetArgs([]string{})
		require.NoError(t, cmd.Execute())

		lines := bytes.Split(bytes.TrimSpace(out.Bytes()), []byte("\n"))
		require.Contains(t, string(lines[0]), "/")
		require.Contains(t, string(lines[len(lines)-1]), "/admin")
	})

	t.Run("explains resolution", func(t *testing.T) {
		var out bytes.Buffer
		cmd := routesCmd()
		cmd.SetOut(&out)
		cmd.SetArgs([]string{"/track?number=TXP1", "/nowhere#top"})
		require.NoError(t, cmd.Execute())

		got := out.String()
		require.Regexp(t, `/track\?number=TXP1\s+exact\s+/track`, got)
		require.Regexp(t, `/nowhere#top\s+fallback\s+/\n`, got)
	})
}

func TestMigrateNeedsDatabase(t *testing.T) {
	log = logger.NewNope()
	cfg.DB.URL = ""

	cmd := migrateCmd()
	cmd.SetArgs([]string{"status"})
	cmd.SilenceErrors = true
	require.ErrorIs(t, cmd.Execute(), errNoDatabase)

	cmd = migrateCmd()
	cmd.SetArgs([]string{"sideways"})
	cmd.SilenceErrors = true
	cmd.SilenceUsage = true
	require.Error(t, cmd.Execute())
}
