package main

import (
	"encoding/json"
	"os"

	"github.com/pkg/errors"

	"github.com/lobpang/roadgo/device"
	"github.com/lobpang/roadgo/prt"
	"github.com/lobpang/roadgo/token"
)

func readFileBytes(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "reading %s", path)
	}
	return data, nil
}

func writeJSON(path string, v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return errors.Wrap(err, "encoding output")
	}
	return os.WriteFile(path, data, 0o600)
}

func readJSON(path string, v interface{}) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return errors.Wrapf(err, "reading %s", path)
	}
	return json.Unmarshal(data, v)
}

func saveTokenData(path string, data *token.Data) error {
	return writeJSON(path, data)
}

func loadIdentity(keyPath, certPath string) (*device.Identity, error) {
	keyPEM, err := os.ReadFile(keyPath)
	if err != nil {
		return nil, errors.Wrapf(err, "reading %s", keyPath)
	}
	certPEM, err := os.ReadFile(certPath)
	if err != nil {
		return nil, errors.Wrapf(err, "reading %s", certPath)
	}
	return device.LoadIdentity(keyPEM, certPEM)
}

func saveIdentity(keyPath, certPath string, id *device.Identity) error {
	if err := os.WriteFile(keyPath, id.EncodeKeyPEM(), 0o600); err != nil {
		return errors.Wrapf(err, "writing %s", keyPath)
	}
	if err := os.WriteFile(certPath, id.EncodeCertPEM(), 0o644); err != nil {
		return errors.Wrapf(err, "writing %s", certPath)
	}
	return nil
}

func loadMaterial(path string) (*prt.Material, error) {
	var m prt.Material
	if err := readJSON(path, &m); err != nil {
		return nil, err
	}
	return &m, nil
}

func saveMaterial(path string, m *prt.Material) error {
	return writeJSON(path, m)
}
