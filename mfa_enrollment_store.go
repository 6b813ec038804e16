package authcore

import (
	"context"
	"encoding/hex"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/vitalit-os/authcore/mfa"
)

var errEnrollmentMissing = errors.New("enrollment ticket missing")

// pendingEnrollment is the parked state between BeginMFAEnrollment and
// ConfirmMFAEnrollment. The TOTP secret must round-trip in plaintext — it
// is verified and then handed to the directory — but backup codes are
// hashed before they ever touch Redis.
type pendingEnrollment struct {
	AccountID        string
	Secret           string
	ProvisioningURI  string
	BackupCodeHashes [][32]byte
}

type pendingEnrollmentRow struct {
	AccountID       string   `json:"account_id"`
	Secret          string   `json:"secret"`
	ProvisioningURI string   `json:"uri"`
	BackupHashes    []string `json:"backup_hashes"`
}

// mfaEnrollmentStore keeps pending enrollments in Redis under a TTL, so
// abandoned enrollments vanish on their own and an unconfirmed secret can
// never outlive its ticket.
type mfaEnrollmentStore struct {
	redis  redis.UniversalClient
	prefix string
	ttl    time.Duration
}

func newMFAEnrollmentStore(client redis.UniversalClient, prefix string, ttl time.Duration) *mfaEnrollmentStore {
	if prefix == "" {
		prefix = "ac"
	}
	return &mfaEnrollmentStore{redis: client, prefix: prefix, ttl: ttl}
}

func (s *mfaEnrollmentStore) key(ticketID string) string {
	return s.prefix + ":me:" + ticketID
}

// Put parks a new enrollment and returns its ticket ID.
func (s *mfaEnrollmentStore) Put(ctx context.Context, accountID, secret, uri string, backupCodes []string) (string, error) {
	row := pendingEnrollmentRow{
		AccountID:       accountID,
		Secret:          secret,
		ProvisioningURI: uri,
		BackupHashes:    make([]string, len(backupCodes)),
	}
	for i, code := range backupCodes {
		h := mfa.HashBackupCode(code)
		row.BackupHashes[i] = hex.EncodeToString(h[:])
	}

	data, err := json.Marshal(row)
	if err != nil {
		return "", err
	}

	ticketID := uuid.NewString()
	if err := s.redis.Set(ctx, s.key(ticketID), data, s.ttl).Err(); err != nil {
		return "", err
	}
	return ticketID, nil
}

// Get loads a pending enrollment; errEnrollmentMissing covers both unknown
// and expired tickets.
func (s *mfaEnrollmentStore) Get(ctx context.Context, ticketID string) (*pendingEnrollment, error) {
	data, err := s.redis.Get(ctx, s.key(ticketID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, errEnrollmentMissing
		}
		return nil, err
	}

	row := pendingEnrollmentRow{}
	if err := json.Unmarshal(data, &row); err != nil {
		return nil, errEnrollmentMissing
	}

	pending := &pendingEnrollment{
		AccountID:        row.AccountID,
		Secret:           row.Secret,
		ProvisioningURI:  row.ProvisioningURI,
		BackupCodeHashes: make([][32]byte, 0, len(row.BackupHashes)),
	}
	for _, encoded := range row.BackupHashes {
		raw, decodeErr := hex.DecodeString(encoded)
		if decodeErr != nil || len(raw) != 32 {
			continue
		}
		var h [32]byte
		copy(h[:], raw)
		pending.BackupCodeHashes = append(pending.BackupCodeHashes, h)
	}
	return pending, nil
}

func (s *mfaEnrollmentStore) Delete(ctx context.Context, ticketID string) error {
	return s.redis.Del(ctx, s.key(ticketID)).Err()
}
