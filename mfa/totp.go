// Package mfa generates TOTP enrollment material and verifies time-based
// codes, with one-time backup codes as the out-of-band recovery path.
package mfa

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"io"
	"strings"
	"time"

	"github.com/pquerna/otp"
	"github.com/pquerna/otp/totp"
)

const (
	secretBytes    = 20
	backupCodeHex  = 4 // 4 random bytes → 8 hex characters
	defaultPeriod  = 30
	defaultSkew    = 1
	defaultBackups = 10
)

// Config fixes the TOTP parameters. Defaults match the common authenticator
// apps: 30-second step, 6 digits, SHA1, ±1 step of clock-skew tolerance.
type Config struct {
	Issuer          string
	Period          uint
	Skew            uint
	BackupCodeCount int
}

// Manager generates secrets and verifies codes. Stateless and safe for
// concurrent use.
type Manager struct {
	config Config
}

// NewManager applies defaults and returns a Manager.
func NewManager(cfg Config) (*Manager, error) {
	if cfg.Issuer == "" {
		return nil, errors.New("mfa issuer is required")
	}
	if cfg.Period == 0 {
		cfg.Period = defaultPeriod
	}
	if cfg.Skew == 0 {
		cfg.Skew = defaultSkew
	}
	if cfg.BackupCodeCount <= 0 {
		cfg.BackupCodeCount = defaultBackups
	}
	return &Manager{config: cfg}, nil
}

// GenerateSecret produces a fresh random secret and the otpauth://
// provisioning URI for the given account label. The secret grants nothing
// until the caller confirms enrollment and persists it.
func (m *Manager) GenerateSecret(account string) (secret, provisioningURI string, err error) {
	key, err := totp.Generate(totp.GenerateOpts{
		Issuer:      m.config.Issuer,
		AccountName: account,
		Period:      m.config.Period,
		SecretSize:  secretBytes,
		Digits:      otp.DigitsSix,
		Algorithm:   otp.AlgorithmSHA1,
	})
	if err != nil {
		return "", "", err
	}
	return key.Secret(), key.URL(), nil
}

// VerifyCode checks a submitted code against the secret at the given time,
// accepting the immediately preceding and following steps to absorb client
// clock drift.
func (m *Manager) VerifyCode(secret, code string, at time.Time) bool {
	ok, err := totp.ValidateCustom(strings.TrimSpace(code), secret, at, totp.ValidateOpts{
		Period:    m.config.Period,
		Skew:      m.config.Skew,
		Digits:    otp.DigitsSix,
		Algorithm: otp.AlgorithmSHA1,
	})
	return err == nil && ok
}

// NewBackupCodes generates the configured number of one-time recovery
// codes: 8 uppercase hex characters each. Callers store only their hashes.
func (m *Manager) NewBackupCodes() ([]string, error) {
	codes := make([]string, m.config.BackupCodeCount)
	for i := range codes {
		raw := make([]byte, backupCodeHex)
		if _, err := io.ReadFull(rand.Reader, raw); err != nil {
			return nil, err
		}
		codes[i] = strings.ToUpper(hex.EncodeToString(raw))
	}
	return codes, nil
}

// HashBackupCode normalizes and hashes a backup code for storage or lookup.
// The plaintext code is never persisted.
func HashBackupCode(code string) [32]byte {
	normalized := strings.ToUpper(strings.TrimSpace(code))
	return sha256.Sum256([]byte(normalized))
}
