package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	roadgo "github.com/lobpang/roadgo"
)

func commandAuth() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "auth",
		Short: "Acquire tokens with the classic OAuth2 grants",
	}
	cmd.AddCommand(commandAuthPassword())
	cmd.AddCommand(commandAuthRefresh())
	cmd.AddCommand(commandAuthCode())
	cmd.AddCommand(commandAuthSAML())
	return cmd
}

func newAuthContext(clientID, tenant, resource, scope, username, password string) *roadgo.Context {
	c := roadgo.NewContext(clientID)
	c.Tenant = tenant
	c.ResourceURI = resource
	c.Scope = scope
	c.Username = username
	c.Password = password
	c.Logger = newLogger()
	return c
}

func commandAuthPassword() *cobra.Command {
	var clientID, tenant, resource, scope, username, password, out string
	cmd := &cobra.Command{
		Use:   "password",
		Short: "Authenticate with a username and password",
		RunE: func(cmd *cobra.Command, args []string) error {
			c := newAuthContext(clientID, tenant, resource, scope, username, password)
			data, err := c.Password(context.Background(), "", nil)
			if err != nil {
				return err
			}
			return printOrSave(data, out)
		},
	}
	bindCommonAuthFlags(cmd, &clientID, &tenant, &resource, &scope, &out)
	cmd.Flags().StringVar(&username, "username", "", "account username")
	cmd.Flags().StringVar(&password, "password", "", "account password")
	return cmd
}

func commandAuthRefresh() *cobra.Command {
	var clientID, tenant, resource, scope, refreshToken, out string
	cmd := &cobra.Command{
		Use:   "refresh",
		Short: "Exchange a refresh token for a new access token",
		RunE: func(cmd *cobra.Command, args []string) error {
			c := newAuthContext(clientID, tenant, resource, scope, "", "")
			data, err := c.RefreshToken(context.Background(), refreshToken, "", nil)
			if err != nil {
				return err
			}
			return printOrSave(data, out)
		},
	}
	bindCommonAuthFlags(cmd, &clientID, &tenant, &resource, &scope, &out)
	cmd.Flags().StringVar(&refreshToken, "refresh-token", "", "refresh token to redeem")
	return cmd
}

func commandAuthCode() *cobra.Command {
	var clientID, tenant, resource, scope, code, redirectURI, out string
	cmd := &cobra.Command{
		Use:   "code",
		Short: "Exchange an authorization code for tokens",
		RunE: func(cmd *cobra.Command, args []string) error {
			c := newAuthContext(clientID, tenant, resource, scope, "", "")
			data, err := c.AuthorizationCode(context.Background(), code, redirectURI, "", "", nil)
			if err != nil {
				return err
			}
			return printOrSave(data, out)
		},
	}
	bindCommonAuthFlags(cmd, &clientID, &tenant, &resource, &scope, &out)
	cmd.Flags().StringVar(&code, "code", "", "authorization code")
	cmd.Flags().StringVar(&redirectURI, "redirect-uri", "", "redirect URI the code was issued for")
	return cmd
}

func commandAuthSAML() *cobra.Command {
	var clientID, tenant, resource, scope, assertionPath, out string
	cmd := &cobra.Command{
		Use:   "saml",
		Short: "Authenticate with a SAML 1.1 bearer assertion",
		RunE: func(cmd *cobra.Command, args []string) error {
			assertion, err := readFileBytes(assertionPath)
			if err != nil {
				return err
			}
			c := newAuthContext(clientID, tenant, resource, scope, "", "")
			data, err := c.SAML(context.Background(), assertion, nil)
			if err != nil {
				return err
			}
			return printOrSave(data, out)
		},
	}
	bindCommonAuthFlags(cmd, &clientID, &tenant, &resource, &scope, &out)
	cmd.Flags().StringVar(&assertionPath, "assertion", "", "path to the raw SAML assertion")
	return cmd
}

func bindCommonAuthFlags(cmd *cobra.Command, clientID, tenant, resource, scope, out *string) {
	cmd.Flags().StringVar(clientID, "client-id", "", "OAuth2 client ID")
	cmd.Flags().StringVar(tenant, "tenant", "", "tenant ID or domain")
	cmd.Flags().StringVar(resource, "resource", "", "v1 resource URI or alias")
	cmd.Flags().StringVar(scope, "scope", "", "v2 scope string")
	cmd.Flags().StringVar(out, "out", "", "write the resulting token record to this file instead of stdout")
}

func printOrSave(v interface{}, out string) error {
	if out != "" {
		return writeJSON(out, v)
	}
	fmt.Printf("%+v\n", v)
	return nil
}
