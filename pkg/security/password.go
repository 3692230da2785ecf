package security

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"fmt"
	"strconv"
	"strings"

	"github.com/quayside/quayside-backend/pkg/config"
	"golang.org/x/crypto/argon2"
)

var provisionCharset = []rune("ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789")

// ErrInvalidHash signals an encoded hash that does not follow the argon2id format.
var ErrInvalidHash = fmt.Errorf("invalid argon2id hash")

// ArgonParams are the Argon2id cost parameters carried inside each encoded hash.
type ArgonParams struct {
	Memory      uint32
	Time        uint32
	Parallelism uint8
	SaltLen     uint32
	KeyLen      uint32
}

// HashPassword derives an Argon2id hash and returns it in the standard
// $argon2id$ encoded form.
func HashPassword(password string, cfg config.PasswordConfig) (string, error) {
	if password == "" {
		return "", fmt.Errorf("password cannot be empty")
	}

	params := boundedParams(cfg)
	salt := make([]byte, params.SaltLen)
	if _, err := rand.Read(salt); err != nil {
		return "", fmt.Errorf("generate salt: %w", err)
	}

	key := argon2.IDKey([]byte(password), salt, params.Time, params.Memory, params.Parallelism, params.KeyLen)

	return fmt.Sprintf("$argon2id$v=19$m=%d,t=%d,p=%d$%s$%s",
		params.Memory, params.Time, params.Parallelism,
		base64.RawStdEncoding.EncodeToString(salt),
		base64.RawStdEncoding.EncodeToString(key)), nil
}

// VerifyPassword re-derives the key with the parameters embedded in the
// encoded hash and compares in constant time.
func VerifyPassword(password, encoded string) (bool, error) {
	params, salt, key, err := parseEncodedHash(encoded)
	if err != nil {
		return false, err
	}

	computed := argon2.IDKey([]byte(password), salt, params.Time, params.Memory, params.Parallelism, params.KeyLen)

	return subtle.ConstantTimeCompare(key, computed) == 1, nil
}

// boundedParams clamps config values into safe Argon2id ranges so a bad env
// var cannot produce a trivially weak or memory-exhausting hash.
func boundedParams(cfg config.PasswordConfig) ArgonParams {
	return ArgonParams{
		Memory:      boundUint32(cfg.ArgonMemoryKB, 8, 512*1024),
		Time:        boundUint32(cfg.ArgonTime, 1, 10),
		Parallelism: uint8(boundInt(cfg.ArgonParallelism, 1, 255)),
		SaltLen:     boundUint32(cfg.ArgonSaltLen, 8, 64),
		KeyLen:      boundUint32(cfg.ArgonKeyLen, 16, 64),
	}
}

func parseEncodedHash(encoded string) (ArgonParams, []byte, []byte, error) {
	parts := strings.Split(encoded, "$")
	if len(parts) != 6 || parts[1] != "argon2id" {
		return ArgonParams{}, nil, nil, ErrInvalidHash
	}

	var params ArgonParams
	for _, token := range strings.Split(parts[3], ",") {
		name, value, ok := strings.Cut(token, "=")
		if !ok {
			return ArgonParams{}, nil, nil, ErrInvalidHash
		}
		switch name {
		case "m":
			v, err := strconv.ParseUint(value, 10, 32)
			if err != nil {
				return ArgonParams{}, nil, nil, ErrInvalidHash
			}
			params.Memory = uint32(v)
		case "t":
			v, err := strconv.ParseUint(value, 10, 32)
			if err != nil {
				return ArgonParams{}, nil, nil, ErrInvalidHash
			}
			params.Time = uint32(v)
		case "p":
			v, err := strconv.ParseUint(value, 10, 8)
			if err != nil {
				return ArgonParams{}, nil, nil, ErrInvalidHash
			}
			params.Parallelism = uint8(v)
		}
	}

	salt, err := base64.RawStdEncoding.DecodeString(parts[4])
	if err != nil {
		return ArgonParams{}, nil, nil, ErrInvalidHash
	}
	key, err := base64.RawStdEncoding.DecodeString(parts[5])
	if err != nil {
		return ArgonParams{}, nil, nil, ErrInvalidHash
	}

	params.SaltLen = uint32(len(salt))
	params.KeyLen = uint32(len(key))

	return params, salt, key, nil
}

func boundInt(value, min, max int) int {
	if value < min {
		return min
	}
	if value > max {
		return max
	}
	return value
}

func boundUint32(value, min, max int) uint32 {
	return uint32(boundInt(value, min, max))
}

// GenerateTempPassword produces a random credential for operationally
// provisioned staff accounts. The holder is expected to rotate it on first login.
func GenerateTempPassword(length int) (string, error) {
	if length <= 0 {
		return "", fmt.Errorf("length must be positive")
	}

	out := make([]rune, length)
	for i := range out {
		idx, err := charIndex(len(provisionCharset))
		if err != nil {
			return "", err
		}
		out[i] = provisionCharset[idx]
	}
	return string(out), nil
}

func charIndex(max int) (int, error) {
	if max <= 0 {
		return 0, fmt.Errorf("invalid max %d", max)
	}
	var buf [1]byte
	if _, err := rand.Read(buf[:]); err != nil {
		return 0, err
	}
	return int(buf[0]) % max, nil
}
