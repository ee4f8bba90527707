package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/lobpang/roadgo/prt"
)

func commandPRT() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "prt",
		Short: "Acquire, renew, and redeem Primary Refresh Tokens",
	}
	cmd.AddCommand(commandPRTAcquire())
	cmd.AddCommand(commandPRTRenew())
	cmd.AddCommand(commandPRTCookie())
	cmd.AddCommand(commandPRTRedeem())
	return cmd
}

func commandPRTAcquire() *cobra.Command {
	var keyIn, certIn, username, password, refreshToken, out string
	cmd := &cobra.Command{
		Use:   "acquire",
		Short: "Acquire a new PRT by signing a JWT-bearer assertion with the device certificate",
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := loadIdentity(keyIn, certIn)
			if err != nil {
				return err
			}
			client, err := defaultHTTPClient()
			if err != nil {
				return err
			}

			var cred prt.Credential
			switch {
			case username != "" && password != "":
				cred.Password = &prt.PasswordCredential{Username: username, Password: password}
			case refreshToken != "":
				cred.RefreshToken = refreshToken
			default:
				return fmt.Errorf("prt acquire: supply --username/--password or --refresh-token")
			}

			result, err := prt.Acquire(context.Background(), client, id, cred)
			if err != nil {
				return err
			}
			return saveMaterial(out, result.Material)
		},
	}
	cmd.Flags().StringVar(&keyIn, "key-in", "device.key", "path to the device private key")
	cmd.Flags().StringVar(&certIn, "cert-in", "device.crt", "path to the device certificate")
	cmd.Flags().StringVar(&username, "username", "", "account username (password grant)")
	cmd.Flags().StringVar(&password, "password", "", "account password (password grant)")
	cmd.Flags().StringVar(&refreshToken, "refresh-token", "", "existing refresh token (refresh_token grant)")
	cmd.Flags().StringVar(&out, "out", "prt.json", "path to write the resulting PRT material")
	return cmd
}

func commandPRTRenew() *cobra.Command {
	var materialIn, out string
	cmd := &cobra.Command{
		Use:   "renew",
		Short: "Renew a PRT using its session key",
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := loadMaterial(materialIn)
			if err != nil {
				return err
			}
			client, err := defaultHTTPClient()
			if err != nil {
				return err
			}
			renewed, err := prt.Renew(context.Background(), client, m)
			if err != nil {
				return err
			}
			return saveMaterial(out, renewed)
		},
	}
	cmd.Flags().StringVar(&materialIn, "in", "prt.json", "path to the existing PRT material")
	cmd.Flags().StringVar(&out, "out", "prt.json", "path to write the renewed PRT material")
	return cmd
}

func commandPRTCookie() *cobra.Command {
	var materialIn, nonce, version string
	cmd := &cobra.Command{
		Use:   "cookie",
		Short: "Build a PRT cookie for browser-based SSO redemption",
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := loadMaterial(materialIn)
			if err != nil {
				return err
			}
			var cookie string
			switch version {
			case "1":
				cookie, _, err = prt.BuildCookieV1(m.SessionKey, m.RefreshToken, nonce, nil)
			default:
				cookie, err = prt.BuildCookieV2(m.SessionKey, m.RefreshToken, nonce)
			}
			if err != nil {
				return err
			}
			fmt.Println(cookie)
			return nil
		},
	}
	cmd.Flags().StringVar(&materialIn, "in", "prt.json", "path to the PRT material")
	cmd.Flags().StringVar(&nonce, "nonce", "", "request_nonce from GetCookieNonce")
	cmd.Flags().StringVar(&version, "kdf-version", "2", "KDF version to sign the cookie with: 1 or 2")
	return cmd
}

func commandPRTRedeem() *cobra.Command {
	var materialIn, clientID, redirectURI, resource, nonce string
	cmd := &cobra.Command{
		Use:   "redeem",
		Short: "Redeem a PRT cookie for an authorization code at the authorize endpoint",
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := loadMaterial(materialIn)
			if err != nil {
				return err
			}
			client, err := defaultHTTPClient()
			if err != nil {
				return err
			}

			ctx := context.Background()
			if nonce == "" {
				nonce, err = prt.GetCookieNonce(ctx, client, clientID, redirectURI, resource)
				if err != nil {
					return err
				}
			}

			cookie, err := prt.BuildCookieV2(m.SessionKey, m.RefreshToken, nonce)
			if err != nil {
				return err
			}

			result, err := prt.AuthenticateWithPRTCookie(ctx, client, cookie, clientID, redirectURI, resource)
			if stale, ok := err.(*prt.StaleNonceError); ok {
				cookie, err = prt.BuildCookieV2(m.SessionKey, m.RefreshToken, stale.Nonce)
				if err != nil {
					return err
				}
				result, err = prt.AuthenticateWithPRTCookie(ctx, client, cookie, clientID, redirectURI, resource)
			}
			if err != nil {
				return err
			}
			fmt.Printf("authorization code: %s\n", result.Code)
			return nil
		},
	}
	cmd.Flags().StringVar(&materialIn, "in", "prt.json", "path to the PRT material")
	cmd.Flags().StringVar(&clientID, "client-id", "", "OAuth2 client ID")
	cmd.Flags().StringVar(&redirectURI, "redirect-uri", "", "redirect URI registered for client-id")
	cmd.Flags().StringVar(&resource, "resource", "", "resource URI or alias to request")
	cmd.Flags().StringVar(&nonce, "nonce", "", "request_nonce; discovered automatically when omitted")
	return cmd
}
