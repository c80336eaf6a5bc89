// Command devtoken mints RS256 bearer tokens for exercising the API's OIDC
// authentication locally. With --generate-keys it writes a fresh key pair
// instead.
package main

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/pem"
	"errors"
	"fmt"
	"os"
	"os/user"
	"path/filepath"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/spf13/pflag"
)

const (
	privateKeyFile = "jwt_private.pem"
	publicKeyFile  = "jwt_public.pem"
)

type mintOptions struct {
	KeyPath  string
	Issuer   string
	Audience string
	Subject  string
	Scopes   string
	KeyID    string
	Expires  time.Duration
}

func main() {
	subject := "dev-user"
	if u, err := user.Current(); err == nil {
		subject = u.Username
	}

	var opts mintOptions
	dir := pflag.String("dir", ".auth", "Directory holding the key pair")
	generate := pflag.Bool("generate-keys", false, "Write a new RSA key pair to --dir and exit")
	bits := pflag.Int("bits", 2048, "RSA key size for --generate-keys")
	pflag.StringVar(&opts.Issuer, "issuer", "https://localhost:9000", "Token issuer")
	pflag.StringVar(&opts.Audience, "audience", "dogbreeds-graphql", "Token audience (comma-separated)")
	pflag.StringVar(&opts.Subject, "subject", subject, "Token subject")
	pflag.StringVar(&opts.Scopes, "scope", "", "Space-separated scope claim (optional)")
	pflag.StringVar(&opts.KeyID, "kid", "local-key", "Key ID header")
	pflag.DurationVar(&opts.Expires, "expires", time.Hour, "Token lifetime")
	pflag.Parse()

	if *generate {
		priv, pub, err := generateKeys(*dir, *bits)
		if err != nil {
			exitErr(err)
		}
		fmt.Printf("Wrote %s and %s\n", priv, pub)
		return
	}

	opts.KeyPath = filepath.Join(*dir, privateKeyFile)
	token, err := mint(opts, time.Now())
	if err != nil {
		exitErr(err)
	}
	fmt.Println(token)
}

func mint(opts mintOptions, now time.Time) (string, error) {
	key, err := loadPrivateKey(opts.KeyPath)
	if err != nil {
		return "", err
	}
	if opts.Expires <= 0 {
		return "", errors.New("expires must be positive")
	}

	claims := jwt.MapClaims{
		"iss": opts.Issuer,
		"sub": opts.Subject,
		"aud": splitList(opts.Audience),
		"iat": now.Unix(),
		"nbf": now.Add(-time.Minute).Unix(),
		"exp": now.Add(opts.Expires).Unix(),
	}
	if s := strings.TrimSpace(opts.Scopes); s != "" {
		claims["scope"] = s
	}

	token := jwt.NewWithClaims(jwt.SigningMethodRS256, claims)
	token.Header["kid"] = opts.KeyID
	return token.SignedString(key)
}

func generateKeys(dir string, bits int) (privatePath, publicPath string, err error) {
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return "", "", fmt.Errorf("failed to create dir: %w", err)
	}
	key, err := rsa.GenerateKey(rand.Reader, bits)
	if err != nil {
		return "", "", fmt.Errorf("failed to generate key: %w", err)
	}
	publicBytes, err := x509.MarshalPKIXPublicKey(&key.PublicKey)
	if err != nil {
		return "", "", fmt.Errorf("failed to marshal public key: %w", err)
	}

	privatePath = filepath.Join(dir, privateKeyFile)
	publicPath = filepath.Join(dir, publicKeyFile)
	if err := writePEM(privatePath, "RSA PRIVATE KEY", x509.MarshalPKCS1PrivateKey(key), 0o600); err != nil {
		return "", "", err
	}
	if err := writePEM(publicPath, "PUBLIC KEY", publicBytes, 0o644); err != nil {
		return "", "", err
	}
	return privatePath, publicPath, nil
}

func writePEM(path, pemType string, der []byte, perm os.FileMode) error {
	data := pem.EncodeToMemory(&pem.Block{Type: pemType, Bytes: der})
	if err := os.WriteFile(path, data, perm); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}

// loadPrivateKey accepts PKCS#1 and PKCS#8 RSA keys.
func loadPrivateKey(path string) (*rsa.PrivateKey, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read private key: %w", err)
	}
	block, _ := pem.Decode(data)
	if block == nil {
		return nil, errors.New("failed to decode private key pem")
	}
	if key, err := x509.ParsePKCS1PrivateKey(block.Bytes); err == nil {
		return key, nil
	}
	parsed, err := x509.ParsePKCS8PrivateKey(block.Bytes)
	if err != nil {
		return nil, fmt.Errorf("failed to parse private key: %w", err)
	}
	key, ok := parsed.(*rsa.PrivateKey)
	if !ok {
		return nil, errors.New("unsupported private key type")
	}
	return key, nil
}

func splitList(value string) []string {
	var out []string
	for _, item := range strings.Split(value, ",") {
		if trimmed := strings.TrimSpace(item); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func exitErr(err error) {
	fmt.Fprintln(os.Stderr, err.Error())
	os.Exit(1)
}
