package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/turtacn/oralrisk/internal/application/dto"
	appservice "github.com/turtacn/oralrisk/internal/application/service"
	"github.com/turtacn/oralrisk/internal/domain/service"
	"github.com/turtacn/oralrisk/internal/infrastructure/crypto"
	"github.com/turtacn/oralrisk/internal/infrastructure/persistence"
	"github.com/turtacn/oralrisk/pkg/constants"
)

var accountReq dto.RegisterRequest

// accountsCmd groups account administration commands.
var accountsCmd = &cobra.Command{
	Use:   "accounts",
	Short: "Manage clinician accounts",
}

// accountsAddCmd registers an account with the same rules as the web form.
// accountsAddCmd 按照与注册页面相同的规则创建账户。
var accountsAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Register a clinician account",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, log, err := loadConfig()
		if err != nil {
			return err
		}
		ctx := cmd.Context()

		stores, err := persistence.NewStores(ctx, cfg, log)
		if err != nil {
			return err
		}
		defer stores.Close()

		accounts := appservice.NewAccountAppService(stores.Accounts, crypto.NewBcryptHasher(constants.DefaultBcryptCost), service.NewNoopMetrics(), log)
		resp, err := accounts.Register(ctx, &accountReq)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Account %s created at %s\n", resp.Username, resp.CreatedAt)
		return nil
	},
}

func init() {
	accountsAddCmd.Flags().StringVar(&accountReq.Username, "username", "", "account username")
	accountsAddCmd.Flags().StringVar(&accountReq.Email, "email", "", "contact email")
	accountsAddCmd.Flags().StringVar(&accountReq.Phone, "phone", "", "contact phone")
	accountsAddCmd.Flags().StringVar(&accountReq.Password, "password", "", "account password")
	_ = accountsAddCmd.MarkFlagRequired("username")
	_ = accountsAddCmd.MarkFlagRequired("password")

	accountsCmd.AddCommand(accountsAddCmd)
	rootCmd.AddCommand(accountsCmd)
}
