package password

import (
	"strings"
	"testing"
)

func testConfig() Config {
	// Floor-level costs keep the suite fast while exercising the real KDF.
	return Config{
		Memory:      8 * 1024,
		Time:        1,
		Parallelism: 1,
		SaltLength:  16,
		KeyLength:   16,
	}
}

func TestHashAndVerify(t *testing.T) {
	hasher, err := NewHasher(testConfig())
	if err != nil {
		t.Fatalf("NewHasher failed: %v", err)
	}

	encoded, err := hasher.Hash("1qazxsw2#portal")
	if err != nil {
		t.Fatalf("Hash failed: %v", err)
	}
	if !strings.HasPrefix(encoded, "$argon2id$") {
		t.Fatalf("unexpected hash format: %q", encoded)
	}

	ok, err := hasher.Verify("1qazxsw2#portal", encoded)
	if err != nil {
		t.Fatalf("Verify failed: %v", err)
	}
	if !ok {
		t.Fatal("correct password should verify")
	}

	ok, err = hasher.Verify("wrong-password", encoded)
	if err != nil {
		t.Fatalf("Verify failed: %v", err)
	}
	if ok {
		t.Fatal("wrong password should not verify")
	}
}

func TestHashIsSalted(t *testing.T) {
	hasher, err := NewHasher(testConfig())
	if err != nil {
		t.Fatalf("NewHasher failed: %v", err)
	}

	a, err := hasher.Hash("same-password")
	if err != nil {
		t.Fatalf("Hash failed: %v", err)
	}
	b, err := hasher.Hash("same-password")
	if err != nil {
		t.Fatalf("Hash failed: %v", err)
	}
	if a == b {
		t.Fatal("two hashes of the same password should differ by salt")
	}
}

func TestVerifyUsesEmbeddedParameters(t *testing.T) {
	original, err := NewHasher(Config{
		Memory:      16 * 1024,
		Time:        2,
		Parallelism: 1,
		SaltLength:  16,
		KeyLength:   32,
	})
	if err != nil {
		t.Fatalf("NewHasher failed: %v", err)
	}

	encoded, err := original.Hash("1qazxsw2#portal")
	if err != nil {
		t.Fatalf("Hash failed: %v", err)
	}

	// A hasher configured with different costs must still verify older
	// hashes by honoring the parameters baked into the PHC string.
	current, err := NewHasher(testConfig())
	if err != nil {
		t.Fatalf("NewHasher failed: %v", err)
	}
	ok, err := current.Verify("1qazxsw2#portal", encoded)
	if err != nil {
		t.Fatalf("Verify failed: %v", err)
	}
	if !ok {
		t.Fatal("hash with foreign parameters should still verify")
	}
}

func TestVerifyRejectsMalformedHashes(t *testing.T) {
	hasher, err := NewHasher(testConfig())
	if err != nil {
		t.Fatalf("NewHasher failed: %v", err)
	}

	cases := []string{
		"",
		"plaintext",
		"$bcrypt$v=19$m=8192,t=1,p=1$c2FsdHNhbHRzYWx0c2FsdA$aGFzaA",
		"$argon2id$v=99$m=8192,t=1,p=1$c2FsdHNhbHRzYWx0c2FsdA$aGFzaA",
		"$argon2id$v=19$m=8192,t=1$c2FsdHNhbHRzYWx0c2FsdA$aGFzaA",
		"$argon2id$v=19$m=8192,t=1,p=1$!!!$aGFzaA",
		"$argon2id$v=19$m=8192,t=1,p=1$c2FsdHNhbHRzYWx0c2FsdA$!!!",
		"$argon2id$v=19$m=0,t=1,p=1$c2FsdHNhbHRzYWx0c2FsdA$aGFzaA",
	}
	for _, c := range cases {
		if _, err := hasher.Verify("password", c); err == nil {
			t.Fatalf("Verify(%q) should have failed", c)
		}
	}
}

func TestNewHasherEnforcesMinimumCosts(t *testing.T) {
	base := testConfig()

	mutations := []func(*Config){
		func(c *Config) { c.Memory = 1024 },
		func(c *Config) { c.Time = 0 },
		func(c *Config) { c.Parallelism = 0 },
		func(c *Config) { c.SaltLength = 8 },
		func(c *Config) { c.KeyLength = 8 },
	}
	for i, mutate := range mutations {
		cfg := base
		mutate(&cfg)
		if _, err := NewHasher(cfg); err == nil {
			t.Fatalf("mutation %d should have been rejected", i)
		}
	}
}
