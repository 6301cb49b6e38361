package k8s

import (
	"encoding/base64"
	"fmt"
	"os"
)

// WriteCAFile decodes a base64 CA bundle into a new file under dir (the
// system temp dir if empty) and returns its path. The file is left in place
// for the lifetime of the execution environment.
func WriteCAFile(dir, data string) (string, error) {
	pem, err := base64.StdEncoding.DecodeString(data)
	if err != nil {
		return "", fmt.Errorf("decode CA data: %w", err)
	}

	f, err := os.CreateTemp(dir, "eks-ca-*.crt")
	if err != nil {
		return "", fmt.Errorf("create CA file: %w", err)
	}
	defer func() { _ = f.Close() }()

	if _, err := f.Write(pem); err != nil {
		return "", fmt.Errorf("write CA file %s: %w", f.Name(), err)
	}
	if err := f.Sync(); err != nil {
		return "", fmt.Errorf("sync CA file %s: %w", f.Name(), err)
	}
	return f.Name(), nil
}
