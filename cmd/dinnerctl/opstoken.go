package main

import (
	"fmt"
	"time"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"deathbydinner-backend/internal/middleware"
)

func newOpsTokenCmd(v *viper.Viper) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ops-token",
		Short: "Print a token for the operator event feed",
		PreRunE: func(cmd *cobra.Command, args []string) error {
			return bindFlags(cmd, v)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			secret := v.GetString("secret")
			if secret == "" {
				return errors.New("secret is required (--secret or DINNERCTL_SECRET)")
			}
			operator := v.GetString("operator")
			if operator == "" {
				return errors.New("operator is required")
			}

			token, err := middleware.NewOpsAuth(secret).GenerateToken(operator, v.GetDuration("ttl"))
			if err != nil {
				return errors.Wrap(err, "failed to sign token")
			}
			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}

	cmd.Flags().String("secret", "", "Signing secret, must match the server's OPS_JWT_SECRET")
	cmd.Flags().String("operator", "ops", "Operator name stored in the token subject")
	cmd.Flags().Duration("ttl", 12*time.Hour, "Token lifetime")
	return cmd
}
