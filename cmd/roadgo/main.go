// Command roadgo drives Azure AD device-identity and Primary Refresh
// Token operations from the shell: acquiring tokens with the classic
// OAuth2 grants, enrolling and joining devices, and acquiring, renewing,
// and redeeming Primary Refresh Tokens.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var debug bool

func commandRoot() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "roadgo",
		Short: "Azure AD device identity and Primary Refresh Token client",
		Run: func(cmd *cobra.Command, args []string) {
			cmd.Help()
			os.Exit(2)
		},
	}
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug logging")
	rootCmd.AddCommand(commandAuth())
	rootCmd.AddCommand(commandDevice())
	rootCmd.AddCommand(commandPRT())
	rootCmd.AddCommand(commandVersion())
	return rootCmd
}

func main() {
	if err := commandRoot().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err.Error())
		os.Exit(2)
	}
}
