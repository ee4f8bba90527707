package roadcrypto

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/binary"

	"github.com/pkg/errors"
)

// kdfLabel is the fixed label NIST SP 800-108 counter-mode KBKDF uses
// for every PRT-related key derivation.
var kdfLabel = []byte("AzureAD-SecureConversation")

// contextSize is the length of a freshly generated KDF context, unless
// the caller supplies their own (e.g. when re-deriving a previously
// issued cookie's key).
const contextSize = 24

// KDFv1 derives a 32-byte key from the PRT session key using
// counter-mode KBKDF-HMAC-SHA256 (NIST SP 800-108), counter before
// fixed data, 4-byte counter and 4-byte length fields. If context is
// nil, 24 random bytes are generated. Returns the context used (so
// callers can embed it in a JWT header) and the derived key.
func KDFv1(sessionKey, context []byte) ([]byte, []byte, error) {
	if context == nil {
		var err error
		context, err = RandBytes(contextSize)
		if err != nil {
			return nil, nil, err
		}
	}

	derived, err := kbkdfHMACSHA256(sessionKey, kdfLabel, context, 32)
	if err != nil {
		return nil, nil, err
	}
	return context, derived, nil
}

// KDFv2 first folds the JWT body bytes into the context
// (SHA256(context || body)) and then runs KDFv1 with that derived
// context. Used whenever a JWT header carries kdf_ver: 2.
func KDFv2(sessionKey, context, jwtBody []byte) ([]byte, []byte, error) {
	h := sha256.New()
	h.Write(context)
	h.Write(jwtBody)
	kdfContext := h.Sum(nil)
	return KDFv1(sessionKey, kdfContext)
}

// kbkdfHMACSHA256 implements NIST SP 800-108 counter-mode KDF with
// rlen=4, llen=4, the counter placed before the fixed input data:
//
//	K(i) = PRF(KI, [i]_4 || Label || 0x00 || Context || [L]_4)
//
// concatenated until outputBytes have been produced.
func kbkdfHMACSHA256(key, label, context []byte, outputBytes int) ([]byte, error) {
	if len(key) == 0 {
		return nil, errors.New("kbkdf: empty key")
	}

	mac := hmac.New(sha256.New, key)
	blockSize := mac.Size()
	numBlocks := (outputBytes + blockSize - 1) / blockSize

	var lengthBuf [4]byte
	binary.BigEndian.PutUint32(lengthBuf[:], uint32(outputBytes*8))

	out := make([]byte, 0, numBlocks*blockSize)
	for i := 1; i <= numBlocks; i++ {
		mac.Reset()

		var counterBuf [4]byte
		binary.BigEndian.PutUint32(counterBuf[:], uint32(i))

		mac.Write(counterBuf[:])
		mac.Write(label)
		mac.Write([]byte{0x00})
		mac.Write(context)
		mac.Write(lengthBuf[:])

		out = mac.Sum(out)
	}
	return out[:outputBytes], nil
}
