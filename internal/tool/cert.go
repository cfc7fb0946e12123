package tool

import (
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/x509"
	"crypto/x509/pkix"
	"encoding/pem"
	"fmt"
	"math/big"
	"net"
	"os"
	"time"
)

// GenerateTlsCertificate writes a self-signed ECDSA P-256 server certificate valid for ten
// years. Without hostnames, the certificate covers localhost and the machine hostname.
func GenerateTlsCertificate(
	organization string,
	serverCommonName string,
	serverKeyFilename, serverCertFilename string,
	hostnames []string) error {

	if len(hostnames) == 0 {
		hostnames = []string{"localhost", "127.0.0.1", "::1"}
		if hostname, err := os.Hostname(); err == nil {
			hostnames = append(hostnames, hostname)
		}
	}

	serverKey, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	if err != nil {
		return fmt.Errorf("Unable to generate server key: %v", err)
	}
	if err = writePem(serverKeyFilename, 0600, "EC PRIVATE KEY", func() ([]byte, error) { return x509.MarshalECPrivateKey(serverKey) }); err != nil {
		return err
	}

	serialNumber, err := rand.Int(rand.Reader, new(big.Int).Lsh(big.NewInt(1), 128))
	if err != nil {
		return fmt.Errorf("Unable to generate serial number: %v", err)
	}

	notBefore := time.Now()
	serverTemplate := x509.Certificate{
		SerialNumber: serialNumber,
		Subject: pkix.Name{
			Organization: []string{organization},
			CommonName:   serverCommonName,
		},
		NotBefore:             notBefore,
		NotAfter:              notBefore.AddDate(10, 0, 0),
		KeyUsage:              x509.KeyUsageDigitalSignature | x509.KeyUsageKeyEncipherment,
		ExtKeyUsage:           []x509.ExtKeyUsage{x509.ExtKeyUsageServerAuth},
		BasicConstraintsValid: true,
	}

	for _, h := range hostnames {
		if ip := net.ParseIP(h); ip != nil {
			serverTemplate.IPAddresses = append(serverTemplate.IPAddresses, ip)
		} else {
			serverTemplate.DNSNames = append(serverTemplate.DNSNames, h)
		}
	}

	return writePem(serverCertFilename, 0644, "CERTIFICATE", func() ([]byte, error) {
		return x509.CreateCertificate(rand.Reader, &serverTemplate, &serverTemplate, &serverKey.PublicKey, serverKey)
	})
}

func writePem(filename string, perm os.FileMode, blockType string, encode func() ([]byte, error)) error {
	b, err := encode()
	if err != nil {
		return fmt.Errorf("Unable to encode %s: %v", filename, err)
	}
	file, err := os.OpenFile(filename, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, perm)
	if err != nil {
		return fmt.Errorf("Unable to create %s: %v", filename, err)
	}
	if err = pem.Encode(file, &pem.Block{Type: blockType, Bytes: b}); err != nil {
		file.Close()
		return fmt.Errorf("Unable to write %s: %v", filename, err)
	}
	return file.Close()
}
