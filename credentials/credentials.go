// Package credentials provides secure API key storage for the vidscribe CLI.
// The key is stored in ~/.vidscribe/credentials.yaml, encrypted at rest with
// AES-256-GCM. The encryption key lives in the system keyring; for CI, set
// VIDSCRIBE_ENCRYPTION_KEY to a 64-character hex string (32 bytes).
//
// VIDSCRIBE_API_KEY, when set, bypasses the store entirely.
package credentials

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// Credential storage constants.
const (
	DefaultCredentialsDir  = ".vidscribe"
	DefaultCredentialsFile = "credentials.yaml"
)

// Common errors.
var (
	// ErrNoCredentials is returned when no API key is stored.
	ErrNoCredentials = errors.New("no credentials stored")
	// ErrEncryptionFailed is returned when encryption/decryption fails.
	ErrEncryptionFailed = errors.New("encryption failed")
)

// Credentials holds the stored authentication credentials.
type Credentials struct {
	// APIKey is the stored API key (encrypted at rest).
	APIKey string `yaml:"api_key"`
	// ServiceURL is the analysis service this credential is for.
	ServiceURL string `yaml:"service_url,omitempty"`
	// LastUpdated is when the credentials were last updated.
	LastUpdated time.Time `yaml:"last_updated"`
}

// Store manages credential storage operations.
type Store struct {
	credentialsDir string
	encryptionKey  []byte
	keyProvider    KeyProvider
}

// CredentialsDir returns the credentials directory path.
// Uses $VIDSCRIBE_CONFIG_DIR if set, otherwise ~/.vidscribe
func CredentialsDir() (string, error) {
	if dir := os.Getenv("VIDSCRIBE_CONFIG_DIR"); dir != "" {
		return dir, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("getting home directory: %w", err)
	}
	return filepath.Join(home, DefaultCredentialsDir), nil
}

// NewStore creates a credential store using the default key provider.
func NewStore() (*Store, error) {
	keyProvider, err := GetDefaultKeyProvider()
	if err != nil {
		return nil, fmt.Errorf("initializing key provider: %w", err)
	}
	return NewStoreWithKeyProvider(keyProvider)
}

// NewStoreWithKeyProvider creates a credential store with a custom key
// provider. This is primarily used for testing.
func NewStoreWithKeyProvider(keyProvider KeyProvider) (*Store, error) {
	dir, err := CredentialsDir()
	if err != nil {
		return nil, fmt.Errorf("getting credentials directory: %w", err)
	}

	key, err := keyProvider.GetKey()
	if err != nil {
		return nil, fmt.Errorf("getting encryption key: %w", err)
	}

	return &Store{
		credentialsDir: dir,
		encryptionKey:  key,
		keyProvider:    keyProvider,
	}, nil
}

// KeyStorageDescription reports where the encryption key is kept.
func (s *Store) KeyStorageDescription() string {
	return s.keyProvider.Description()
}

// SaveAPIKey encrypts and stores the API key.
func (s *Store) SaveAPIKey(apiKey, serviceURL string) error {
	if apiKey == "" {
		return errors.New("API key is empty")
	}

	encrypted, err := s.encrypt(apiKey)
	if err != nil {
		return err
	}

	creds := Credentials{
		APIKey:      encrypted,
		ServiceURL:  serviceURL,
		LastUpdated: time.Now().UTC(),
	}

	if err := os.MkdirAll(s.credentialsDir, 0700); err != nil {
		return fmt.Errorf("creating credentials directory: %w", err)
	}

	data, err := yaml.Marshal(&creds)
	if err != nil {
		return fmt.Errorf("marshaling credentials: %w", err)
	}

	path := filepath.Join(s.credentialsDir, DefaultCredentialsFile)
	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("writing credentials file: %w", err)
	}
	return nil
}

// LoadAPIKey returns the stored API key. VIDSCRIBE_API_KEY, when set,
// overrides the store.
func (s *Store) LoadAPIKey() (string, error) {
	if key := os.Getenv("VIDSCRIBE_API_KEY"); key != "" {
		return key, nil
	}

	creds, err := s.load()
	if err != nil {
		return "", err
	}
	if creds.APIKey == "" {
		return "", ErrNoCredentials
	}
	return s.decrypt(creds.APIKey)
}

// Info returns the stored credential metadata without decrypting the key.
func (s *Store) Info() (*Credentials, error) {
	return s.load()
}

// Delete removes the stored credentials.
func (s *Store) Delete() error {
	path := filepath.Join(s.credentialsDir, DefaultCredentialsFile)
	if err := os.Remove(path); err != nil {
		if os.IsNotExist(err) {
			return ErrNoCredentials
		}
		return fmt.Errorf("removing credentials file: %w", err)
	}
	return nil
}

func (s *Store) load() (*Credentials, error) {
	path := filepath.Join(s.credentialsDir, DefaultCredentialsFile)
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrNoCredentials
		}
		return nil, fmt.Errorf("reading credentials file: %w", err)
	}

	var creds Credentials
	if err := yaml.Unmarshal(data, &creds); err != nil {
		return nil, fmt.Errorf("parsing credentials file: %w", err)
	}
	return &creds, nil
}

// encrypt seals plaintext with AES-256-GCM; the nonce is prepended to the
// ciphertext and the whole blob is base64-encoded.
func (s *Store) encrypt(plaintext string) (string, error) {
	block, err := aes.NewCipher(s.encryptionKey)
	if err != nil {
		return "", fmt.Errorf("%w: creating cipher: %v", ErrEncryptionFailed, err)
	}

	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return "", fmt.Errorf("%w: creating GCM: %v", ErrEncryptionFailed, err)
	}

	nonce := make([]byte, gcm.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return "", fmt.Errorf("%w: generating nonce: %v", ErrEncryptionFailed, err)
	}

	sealed := gcm.Seal(nonce, nonce, []byte(plaintext), nil)
	return base64.StdEncoding.EncodeToString(sealed), nil
}

func (s *Store) decrypt(ciphertext string) (string, error) {
	data, err := base64.StdEncoding.DecodeString(ciphertext)
	if err != nil {
		return "", fmt.Errorf("%w: decoding base64: %v", ErrEncryptionFailed, err)
	}

	block, err := aes.NewCipher(s.encryptionKey)
	if err != nil {
		return "", fmt.Errorf("%w: creating cipher: %v", ErrEncryptionFailed, err)
	}

	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return "", fmt.Errorf("%w: creating GCM: %v", ErrEncryptionFailed, err)
	}

	nonceSize := gcm.NonceSize()
	if len(data) < nonceSize {
		return "", fmt.Errorf("%w: ciphertext too short", ErrEncryptionFailed)
	}

	nonce, sealed := data[:nonceSize], data[nonceSize:]
	plaintext, err := gcm.Open(nil, nonce, sealed, nil)
	if err != nil {
		return "", fmt.Errorf("%w: decryption failed: %v", ErrEncryptionFailed, err)
	}
	return string(plaintext), nil
}
