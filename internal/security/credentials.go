package security

import (
	"context"
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"fmt"
	"log/slog"
	"os"

	"golang.org/x/crypto/scrypt"
	"gopkg.in/yaml.v2"
)

// scrypt parameters (OWASP recommended interactive settings)
const (
	scryptN      = 32768
	scryptR      = 8
	scryptP      = 1
	scryptKeyLen = 32
	saltLen      = 16
)

// Verifier checks a supplied username/password pair and returns
// allow or deny. Implementations issue no sessions or tokens; a
// verifier is a pre-flight gate, nothing more.
type Verifier interface {
	Verify(ctx context.Context, username, password string) bool
}

// StaticVerifier compares against a fixed in-memory mapping of
// plaintext credentials. It exists for tests and local demos only;
// production deployments use ScryptVerifier.
type StaticVerifier struct {
	users  map[string]string
	logger *slog.Logger
}

// NewStaticVerifier creates a verifier over a fixed credential map
func NewStaticVerifier(users map[string]string, logger *slog.Logger) *StaticVerifier {
	if logger == nil {
		logger = slog.Default()
	}
	return &StaticVerifier{users: users, logger: logger}
}

// Verify reports whether the pair matches the fixed mapping. The
// password comparison is constant-time.
func (v *StaticVerifier) Verify(ctx context.Context, username, password string) bool {
	expected, ok := v.users[username]
	if !ok {
		// Burn a comparison anyway so unknown users cost the same
		subtle.ConstantTimeCompare([]byte(password), []byte(password))
		v.logger.WarnContext(ctx, "sign-in denied: unknown user",
			slog.String("username", username))
		return false
	}

	allowed := subtle.ConstantTimeCompare([]byte(expected), []byte(password)) == 1
	if !allowed {
		v.logger.WarnContext(ctx, "sign-in denied: wrong password",
			slog.String("username", username))
	}
	return allowed
}

// credentialRecord is one stored credential with its scrypt-derived key
type credentialRecord struct {
	Salt string `yaml:"salt"`
	Key  string `yaml:"key"`
}

// credentialsFile is the on-disk credential store format
type credentialsFile struct {
	Users map[string]credentialRecord `yaml:"users"`
}

// ScryptVerifier checks passwords against scrypt-derived keys loaded
// from a YAML credential store. Plaintext passwords are never stored.
type ScryptVerifier struct {
	users  map[string]credentialRecord
	logger *slog.Logger
}

// NewScryptVerifier loads a credential store from path
func NewScryptVerifier(path string, logger *slog.Logger) (*ScryptVerifier, error) {
	if logger == nil {
		logger = slog.Default()
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read credentials file: %w", err)
	}

	var store credentialsFile
	if err := yaml.Unmarshal(data, &store); err != nil {
		return nil, fmt.Errorf("failed to parse credentials file: %w", err)
	}

	return &ScryptVerifier{users: store.Users, logger: logger}, nil
}

// Verify derives a key from the supplied password and compares it with
// the stored key in constant time
func (v *ScryptVerifier) Verify(ctx context.Context, username, password string) bool {
	record, ok := v.users[username]
	if !ok {
		v.logger.WarnContext(ctx, "sign-in denied: unknown user",
			slog.String("username", username))
		return false
	}

	salt, err := base64.StdEncoding.DecodeString(record.Salt)
	if err != nil {
		v.logger.ErrorContext(ctx, "corrupt credential salt",
			slog.String("username", username))
		return false
	}
	stored, err := base64.StdEncoding.DecodeString(record.Key)
	if err != nil {
		v.logger.ErrorContext(ctx, "corrupt credential key",
			slog.String("username", username))
		return false
	}

	derived, err := scrypt.Key([]byte(password), salt, scryptN, scryptR, scryptP, scryptKeyLen)
	if err != nil {
		v.logger.ErrorContext(ctx, "key derivation failed",
			slog.String("error", err.Error()))
		return false
	}

	allowed := subtle.ConstantTimeCompare(derived, stored) == 1
	if !allowed {
		v.logger.WarnContext(ctx, "sign-in denied: wrong password",
			slog.String("username", username))
	}
	return allowed
}

// HashCredential derives a new salt and scrypt key for a password,
// base64-encoded for storage. Used by provisioning tooling and tests.
func HashCredential(password string) (saltB64, keyB64 string, err error) {
	salt := make([]byte, saltLen)
	if _, err := rand.Read(salt); err != nil {
		return "", "", fmt.Errorf("failed to generate salt: %w", err)
	}

	key, err := scrypt.Key([]byte(password), salt, scryptN, scryptR, scryptP, scryptKeyLen)
	if err != nil {
		return "", "", fmt.Errorf("key derivation failed: %w", err)
	}

	return base64.StdEncoding.EncodeToString(salt), base64.StdEncoding.EncodeToString(key), nil
}

// WriteCredentialsFile persists a username → password mapping as a
// scrypt credential store. Intended for provisioning, not request
// handling.
func WriteCredentialsFile(path string, plaintext map[string]string) error {
	store := credentialsFile{Users: make(map[string]credentialRecord, len(plaintext))}
	for username, password := range plaintext {
		salt, key, err := HashCredential(password)
		if err != nil {
			return fmt.Errorf("failed to hash credential for %s: %w", username, err)
		}
		store.Users[username] = credentialRecord{Salt: salt, Key: key}
	}

	data, err := yaml.Marshal(&store)
	if err != nil {
		return fmt.Errorf("failed to marshal credentials: %w", err)
	}

	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write credentials file: %w", err)
	}
	return nil
}
