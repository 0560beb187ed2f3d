package security

import (
	"crypto/sha256"
	"encoding/json"
	"errors"
	"fmt"
	"reflect"

	"github.com/lestrrat-go/jwx/v2/jwa"
	"github.com/lestrrat-go/jwx/v2/jwe"
)

// DefaultSecret is the application secret used when none is configured
const DefaultSecret = "psicomed-secret-key"

// ErrDecrypt is returned for any ciphertext that cannot be decrypted or decoded
var ErrDecrypt = errors.New("unable to decrypt data")

// Cipher encrypts JSON-serializable values at rest as JWE compact tokens
// (direct key agreement, AES-256-GCM content encryption).
type Cipher struct {
	key []byte
}

// NewCipher derives the content key from secret. An empty secret uses DefaultSecret.
func NewCipher(secret string) *Cipher {
	if secret == "" {
		secret = DefaultSecret
	}
	sum := sha256.Sum256([]byte(secret))
	return &Cipher{key: sum[:]}
}

// Encrypt serializes v to JSON and encrypts it. A nil value encrypts to the empty string.
func (c *Cipher) Encrypt(v any) (string, error) {
	if v == nil {
		return "", nil
	}
	payload, err := json.Marshal(v)
	if err != nil {
		return "", fmt.Errorf("failed to encode value: %w", err)
	}
	token, err := jwe.Encrypt(payload,
		jwe.WithKey(jwa.DIRECT, c.key),
		jwe.WithContentEncryption(jwa.A256GCM),
	)
	if err != nil {
		return "", fmt.Errorf("failed to encrypt value: %w", err)
	}
	return string(token), nil
}

// Decrypt decrypts blob and decodes the JSON payload into out.
// Malformed input yields ErrDecrypt and leaves out untouched.
func (c *Cipher) Decrypt(blob string, out any) error {
	if blob == "" {
		return ErrDecrypt
	}
	payload, err := jwe.Decrypt([]byte(blob), jwe.WithKey(jwa.DIRECT, c.key))
	if err != nil {
		return fmt.Errorf("%w: %v", ErrDecrypt, err)
	}
	if err := unmarshalInto(payload, out); err != nil {
		return fmt.Errorf("%w: %v", ErrDecrypt, err)
	}
	return nil
}

// unmarshalInto decodes into a fresh value and only assigns it to out on success
func unmarshalInto(payload []byte, out any) error {
	rv := reflect.ValueOf(out)
	if rv.Kind() != reflect.Pointer || rv.IsNil() {
		return errors.New("decode target must be a non-nil pointer")
	}
	tmp := reflect.New(rv.Elem().Type())
	if err := json.Unmarshal(payload, tmp.Interface()); err != nil {
		return err
	}
	rv.Elem().Set(tmp.Elem())
	return nil
}
