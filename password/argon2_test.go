package password

import (
	"strings"
	"testing"
)

func testConfig() Config {
	return Config{
		Memory:      8 * 1024,
		Time:        1,
		Parallelism: 1,
		SaltLength:  16,
		KeyLength:   16,
	}
}

func TestHashAndVerify(t *testing.T) {
	h, err := NewHasher(testConfig())
	if err != nil {
		t.Fatalf("NewHasher: %v", err)
	}

	digest, err := h.Hash("correct-horse-battery")
	if err != nil {
		t.Fatalf("Hash: %v", err)
	}
	if !strings.HasPrefix(digest, "$argon2id$") {
		t.Fatalf("digest missing PHC prefix: %q", digest)
	}

	if !h.Verify("correct-horse-battery", digest) {
		t.Error("correct password rejected")
	}
	if h.Verify("wrong-password", digest) {
		t.Error("wrong password accepted")
	}
	if h.Verify("", digest) {
		t.Error("empty password accepted")
	}
}

func TestHashProducesFreshSalt(t *testing.T) {
	h, err := NewHasher(testConfig())
	if err != nil {
		t.Fatalf("NewHasher: %v", err)
	}

	a, err := h.Hash("same-password")
	if err != nil {
		t.Fatalf("Hash: %v", err)
	}
	b, err := h.Hash("same-password")
	if err != nil {
		t.Fatalf("Hash: %v", err)
	}
	if a == b {
		t.Error("two hashes of the same password are identical; salt not fresh")
	}
}

func TestVerifyUsesEmbeddedParameters(t *testing.T) {
	low, err := NewHasher(testConfig())
	if err != nil {
		t.Fatalf("NewHasher: %v", err)
	}
	digest, err := low.Hash("migrating-password")
	if err != nil {
		t.Fatalf("Hash: %v", err)
	}

	// A hasher configured with different costs must still verify old digests
	// from their embedded parameters.
	high, err := NewHasher(Config{
		Memory:      16 * 1024,
		Time:        2,
		Parallelism: 2,
		SaltLength:  16,
		KeyLength:   32,
	})
	if err != nil {
		t.Fatalf("NewHasher: %v", err)
	}
	if !high.Verify("migrating-password", digest) {
		t.Error("digest with older cost parameters rejected")
	}
}

func TestVerifyMalformedDigest(t *testing.T) {
	h, err := NewHasher(testConfig())
	if err != nil {
		t.Fatalf("NewHasher: %v", err)
	}

	malformed := []string{
		"",
		"plaintext",
		"$argon2id$",
		"$argon2i$v=19$m=8192,t=1,p=1$c2FsdHNhbHRzYWx0c2FsdA$a2V5a2V5a2V5a2V5a2V5a2V5",
		"$argon2id$v=18$m=8192,t=1,p=1$c2FsdHNhbHRzYWx0c2FsdA$a2V5a2V5a2V5a2V5a2V5a2V5",
		"$argon2id$v=19$m=0,t=1,p=1$c2FsdHNhbHRzYWx0c2FsdA$a2V5a2V5a2V5a2V5a2V5a2V5",
		"$argon2id$v=19$m=8192,t=1,p=1$!!!$a2V5a2V5a2V5a2V5a2V5a2V5",
		"$argon2id$v=19$m=8192,t=1,p=1$c2FsdHNhbHRzYWx0c2FsdA$!!!",
	}
	for _, digest := range malformed {
		if h.Verify("anything", digest) {
			t.Errorf("malformed digest accepted: %q", digest)
		}
	}
}

func TestNewHasherEnforcesFloors(t *testing.T) {
	cases := []struct {
		name string
		cfg  Config
	}{
		{"memory", Config{Memory: 4096, Time: 1, Parallelism: 1, SaltLength: 16, KeyLength: 16}},
		{"time", Config{Memory: 8192, Time: 0, Parallelism: 1, SaltLength: 16, KeyLength: 16}},
		{"parallelism", Config{Memory: 8192, Time: 1, Parallelism: 0, SaltLength: 16, KeyLength: 16}},
		{"salt", Config{Memory: 8192, Time: 1, Parallelism: 1, SaltLength: 8, KeyLength: 16}},
		{"key", Config{Memory: 8192, Time: 1, Parallelism: 1, SaltLength: 16, KeyLength: 8}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := NewHasher(tc.cfg); err == nil {
				t.Errorf("config below %s floor accepted", tc.name)
			}
		})
	}
}
