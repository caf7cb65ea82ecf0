package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	v := viper.New()
	v.SetEnvPrefix("DINNERCTL")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	root := &cobra.Command{
		Use:           "dinnerctl",
		Short:         "Death by Dinner chat widget and operator tools",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(newWidgetCmd(v), newOpsTokenCmd(v))
	return root
}

// bindFlags makes every flag of cmd readable through v, so DINNERCTL_<FLAG>
// fills in anything not given on the command line.
func bindFlags(cmd *cobra.Command, v *viper.Viper) error {
	return v.BindPFlags(cmd.Flags())
}
