package main

import (
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/sooswastaken/Avalon/config"
	"github.com/sooswastaken/Avalon/logger"
)

const releaseVersion = "1.0.0"

type flags struct {
	configPath string
	serverURL  string
	roomID     string
	credential string
	verbose    bool
}

func newCmd(f *flags) *cobra.Command {
	v := viper.New()
	v.SetEnvPrefix("AVALON")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	cmd := &cobra.Command{
		Use:           "avalon",
		Short:         "Terminal client for the Avalon game server.",
		Args:          cobra.ExactArgs(0),
		SilenceErrors: true,
		SilenceUsage:  true,
		Version:       releaseVersion,
		RunE: func(cmd *cobra.Command, args []string) error {
			if f.verbose {
				logger.InitConsole()
			} else {
				logger.Init()
			}
			defer logger.Sync()

			cfg, err := config.LoadConfig(f.configPath)
			if err != nil {
				return err
			}
			if f.serverURL != "" {
				cfg.Server.URL = f.serverURL
			}
			return run(cfg, f)
		},
	}

	cmd.Flags().StringVar(&f.configPath, "config", ".", "directory containing config.yaml")
	cmd.Flags().StringVar(&f.serverURL, "server", "", "websocket endpoint of the game server")
	cmd.Flags().StringVar(&f.roomID, "room", "", "room id to join")
	cmd.Flags().StringVar(&f.credential, "credential", "", "session credential, overrides the cached one")
	cmd.Flags().BoolVarP(&f.verbose, "verbose", "v", false, "log to the console")

	cmd.Flags().VisitAll(func(fl *pflag.Flag) {
		if v.IsSet(fl.Name) && !fl.Changed {
			fl.Value.Set(v.GetString(fl.Name))
		}
	})

	return cmd
}

func main() {
	f := &flags{}
	cobra.CheckErr(newCmd(f).Execute())
}
