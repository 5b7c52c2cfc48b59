package config

import (
	"crypto/tls"
	"crypto/x509"
)

// KeyPairRaw holds PEM encoded TLS material inline in the YAML file.
type KeyPairRaw struct {
	Key  string `yaml:"key" env:"TLS_KEY"`
	Cert string `yaml:"cert" env:"TLS_CERT"`
}

func (k KeyPairRaw) Enabled() bool {
	return k.Key != "" && k.Cert != ""
}

// Certificate parses the key pair. It returns nil when TLS is not configured.
func (k KeyPairRaw) Certificate() (*tls.Certificate, error) {
	if !k.Enabled() {
		return nil, nil
	}

	keyPair, err := tls.X509KeyPair([]byte(k.Cert), []byte(k.Key))
	if err != nil {
		return nil, err
	}
	keyPair.Leaf, err = x509.ParseCertificate(keyPair.Certificate[0])
	if err != nil {
		return nil, err
	}

	return &keyPair, nil
}
