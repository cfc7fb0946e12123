package tool

import (
	"crypto/tls"
	"os"
	"path/filepath"
	"testing"
)

func TestIsFileExists(t *testing.T) {
	dir := t.TempDir()
	filename := filepath.Join(dir, "present")
	if err := os.WriteFile(filename, []byte("x"), 0600); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		filename string
		want     bool
	}{
		{filename, true},
		{filepath.Join(dir, "absent"), false},
	}
	for _, tt := range tests {
		got, err := IsFileExists(tt.filename)
		if err != nil {
			t.Errorf("IsFileExists(%s) error: %v", tt.filename, err)
		}
		if got != tt.want {
			t.Errorf("IsFileExists(%s) = %v, want %v", tt.filename, got, tt.want)
		}
	}
}

func TestGenerateTlsCertificate(t *testing.T) {
	dir := t.TempDir()
	keyFilename := filepath.Join(dir, "key.pem")
	certFilename := filepath.Join(dir, "cert.pem")

	if err := GenerateTlsCertificate("jypelle", "Solfeggio Server", keyFilename, certFilename, []string{"localhost"}); err != nil {
		t.Fatalf("GenerateTlsCertificate: %v", err)
	}
	if _, err := tls.LoadX509KeyPair(certFilename, keyFilename); err != nil {
		t.Errorf("LoadX509KeyPair: %v", err)
	}
}
