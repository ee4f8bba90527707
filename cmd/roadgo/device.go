package main

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/lobpang/roadgo/device"
	"github.com/lobpang/roadgo/pkg/httpclient"
)

func commandDevice() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "device",
		Short: "Enroll, join, and manage device identities",
	}
	cmd.AddCommand(commandDeviceJoin())
	cmd.AddCommand(commandDeviceHybridJoin())
	cmd.AddCommand(commandDeviceDelete())
	cmd.AddCommand(commandDeviceRegisterHello())
	return cmd
}

func defaultHTTPClient() (httpclient.Client, error) {
	return httpclient.New(httpclient.Options{VerifyTLS: true})
}

func commandDeviceJoin() *cobra.Command {
	var accessToken, deviceName, deviceType, osVersion, targetDomain, keyOut, certOut string
	cmd := &cobra.Command{
		Use:   "join",
		Short: "Perform a primary Azure AD join and save the resulting identity",
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := defaultHTTPClient()
			if err != nil {
				return err
			}
			id, err := device.Enroll(context.Background(), client, accessToken, device.EnrollRequest{
				DeviceName:   deviceName,
				DeviceType:   deviceType,
				OSVersion:    osVersion,
				TargetDomain: targetDomain,
				JoinType:     device.JoinTypeAzureADJoin,
			})
			if err != nil {
				return err
			}
			return saveIdentity(keyOut, certOut, id)
		},
	}
	cmd.Flags().StringVar(&accessToken, "access-token", "", "bearer access token authorizing enrollment")
	cmd.Flags().StringVar(&deviceName, "device-name", "", "device display name")
	cmd.Flags().StringVar(&deviceType, "device-type", "Windows", "Windows or MacOS")
	cmd.Flags().StringVar(&osVersion, "os-version", "", "reported OS version")
	cmd.Flags().StringVar(&targetDomain, "target-domain", "", "tenant domain to join")
	cmd.Flags().StringVar(&keyOut, "key-out", "device.key", "path to write the device private key")
	cmd.Flags().StringVar(&certOut, "cert-out", "device.crt", "path to write the device certificate")
	return cmd
}

func commandDeviceHybridJoin() *cobra.Command {
	var keyIn, certIn, deviceName, deviceType, osVersion, targetDomain, objectSID, tenantID, keyOut, certOut string
	cmd := &cobra.Command{
		Use:   "hybridjoin",
		Short: "Register a cloud identity for an existing on-prem AD device",
		RunE: func(cmd *cobra.Command, args []string) error {
			existing, err := loadIdentity(keyIn, certIn)
			if err != nil {
				return err
			}
			client, err := defaultHTTPClient()
			if err != nil {
				return err
			}
			id, err := device.HybridJoin(context.Background(), client, existing, device.HybridJoinRequest{
				DeviceName:   deviceName,
				DeviceType:   deviceType,
				OSVersion:    osVersion,
				TargetDomain: targetDomain,
				ObjectSID:    objectSID,
				TenantID:     tenantID,
			})
			if err != nil {
				return err
			}
			return saveIdentity(keyOut, certOut, id)
		},
	}
	cmd.Flags().StringVar(&keyIn, "key-in", "device.key", "path to the existing on-prem device private key")
	cmd.Flags().StringVar(&certIn, "cert-in", "device.crt", "path to the existing on-prem device certificate")
	cmd.Flags().StringVar(&deviceName, "device-name", "", "device display name")
	cmd.Flags().StringVar(&deviceType, "device-type", "Windows", "Windows or MacOS")
	cmd.Flags().StringVar(&osVersion, "os-version", "", "reported OS version")
	cmd.Flags().StringVar(&targetDomain, "target-domain", "", "tenant domain to join")
	cmd.Flags().StringVar(&objectSID, "object-sid", "", "on-prem AD object SID")
	cmd.Flags().StringVar(&tenantID, "tenant-id", "", "target tenant ID")
	cmd.Flags().StringVar(&keyOut, "key-out", "device-cloud.key", "path to write the new device private key")
	cmd.Flags().StringVar(&certOut, "cert-out", "device-cloud.crt", "path to write the new device certificate")
	return cmd
}

func commandDeviceDelete() *cobra.Command {
	var keyIn, certIn, deviceID string
	var verifyTLS bool
	cmd := &cobra.Command{
		Use:   "delete",
		Short: "Delete a device from Azure AD using its own certificate",
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := loadIdentity(keyIn, certIn)
			if err != nil {
				return err
			}
			if deviceID != "" {
				id.DeviceID = deviceID
			}
			return device.Delete(context.Background(), id, verifyTLS)
		},
	}
	cmd.Flags().StringVar(&keyIn, "key-in", "device.key", "path to the device private key")
	cmd.Flags().StringVar(&certIn, "cert-in", "device.crt", "path to the device certificate")
	cmd.Flags().StringVar(&deviceID, "device-id", "", "override the device ID parsed from the certificate CN")
	cmd.Flags().BoolVar(&verifyTLS, "verify-tls", true, "verify the server's TLS certificate")
	return cmd
}

func commandDeviceRegisterHello() *cobra.Command {
	var accessToken, keyOut string
	cmd := &cobra.Command{
		Use:   "registerhello",
		Short: "Generate and register a Windows Hello key",
		RunE: func(cmd *cobra.Command, args []string) error {
			hello, err := device.CreateHelloKey()
			if err != nil {
				return err
			}
			client, err := defaultHTTPClient()
			if err != nil {
				return err
			}
			if err := device.RegisterHelloKey(context.Background(), client, hello, accessToken); err != nil {
				return err
			}
			return writeJSON(keyOut, hello)
		},
	}
	cmd.Flags().StringVar(&accessToken, "access-token", "", "bearer access token authorizing registration")
	cmd.Flags().StringVar(&keyOut, "out", "hello.json", "path to write the Hello key material")
	return cmd
}
