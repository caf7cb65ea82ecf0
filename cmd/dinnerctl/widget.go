package main

import (
	"net/http"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"deathbydinner-backend/internal/logging"
	"deathbydinner-backend/internal/widget"
	"deathbydinner-backend/internal/widget/tui"
)

func newWidgetCmd(v *viper.Viper) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "widget",
		Short: "Open the persona chat widget in the terminal",
		PreRunE: func(cmd *cobra.Command, args []string) error {
			return bindFlags(cmd, v)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			logger, closeLog, err := widgetLogger(v.GetString("log-file"), v.GetString("log-level"))
			if err != nil {
				return err
			}
			defer closeLog()

			ctx := cmd.Context()
			client := widget.NewRelayClient(v.GetString("server"), v.GetString("persona"), http.DefaultClient)

			info, err := client.FetchPersona(ctx)
			if err != nil {
				return errors.Wrapf(err, "failed to load persona %q", v.GetString("persona"))
			}
			logger.Info().Str("persona", info.Name).Msg("widget started")

			ctrl := widget.NewController(info.Greeting, client, logger)
			if _, err := tea.NewProgram(tui.New(ctx, ctrl, client, info), tea.WithAltScreen()).Run(); err != nil {
				return errors.Wrap(err, "widget exited with error")
			}
			return nil
		},
	}

	cmd.Flags().String("server", "http://localhost:8080", "Relay server base URL")
	cmd.Flags().String("persona", "maitre-deno", "Persona slug to chat with")
	cmd.Flags().String("log-file", "", "Write widget logs to this file")
	cmd.Flags().String("log-level", "info", "Log level for --log-file")
	return cmd
}

// The TUI owns the terminal, so logs only go somewhere when a file is given.
func widgetLogger(path, level string) (zerolog.Logger, func(), error) {
	if path == "" {
		return zerolog.Nop(), func() {}, nil
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return zerolog.Nop(), nil, errors.Wrap(err, "failed to open log file")
	}
	logger := zerolog.New(f).Level(logging.ParseLevel(level)).With().Timestamp().Logger()
	return logger, func() { f.Close() }, nil
}
