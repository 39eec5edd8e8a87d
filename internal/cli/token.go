package cli

import (
	"fmt"
	"strconv"

	"github.com/ikkim/cartcore-backend/pkg/util"
	"github.com/spf13/cobra"
)

func newTokenCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "token <user_id> <email>",
		Short: "Issue an access and refresh token pair for local testing",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			userID, err := strconv.ParseUint(args[0], 10, 64)
			if err != nil || userID == 0 {
				return fmt.Errorf("invalid user id %q", args[0])
			}

			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			pair, err := util.GenerateTokenPair(uint(userID), args[1], cfg.JWT.Secret,
				cfg.JWT.AccessTokenExpiry, cfg.JWT.RefreshTokenExpiry)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "access_token=%s\nrefresh_token=%s\n", pair.AccessToken, pair.RefreshToken)
			return nil
		},
	}
}
