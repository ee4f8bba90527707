package roadcrypto

import (
	"crypto/rsa"
	"encoding/binary"
	"math/big"

	"github.com/pkg/errors"
)

// rsa1Magic is the 4-byte magic Microsoft CNG uses for an RSA public
// key blob (BCRYPT_RSAKEY_BLOB, BCRYPT_RSAPUBLIC_MAGIC).
var rsa1Magic = [4]byte{'R', 'S', 'A', '1'}

// EncodeRSA1Blob serializes an RSA public key into the CNG
// BCRYPT_RSAKEY_BLOB wire format: a fixed 24-byte header (the "RSA1"
// magic and five little-endian u32 fields) followed by the big-endian
// exponent and modulus.
//
//	"RSA1" | u32(bit length) | u32(exponent len) | u32(modulus len) | u32(0) | u32(0) | exponent | modulus
func EncodeRSA1Blob(pub *rsa.PublicKey) []byte {
	exponent := bigIntBytes(int64(pub.E))
	modulus := pub.N.Bytes()

	buf := make([]byte, 0, 20+len(exponent)+len(modulus))
	buf = append(buf, rsa1Magic[:]...)
	buf = appendUint32(buf, uint32(pub.N.BitLen()))
	buf = appendUint32(buf, uint32(len(exponent)))
	buf = appendUint32(buf, uint32(len(modulus)))
	// No private key material, so both remaining header fields are zero.
	buf = appendUint32(buf, 0)
	buf = appendUint32(buf, 0)
	buf = append(buf, exponent...)
	buf = append(buf, modulus...)
	return buf
}

// DecodeRSA1Blob parses a CNG BCRYPT_RSAKEY_BLOB back into its public
// numbers, verifying the header's declared lengths match the payload.
func DecodeRSA1Blob(blob []byte) (*rsa.PublicKey, error) {
	if len(blob) < 24 {
		return nil, errors.New("rsa1 blob too short")
	}
	if string(blob[:4]) != string(rsa1Magic[:]) {
		return nil, errors.New("rsa1 blob: bad magic")
	}
	expLen := binary.LittleEndian.Uint32(blob[8:12])
	modLen := binary.LittleEndian.Uint32(blob[12:16])
	want := 24 + int(expLen) + int(modLen)
	if len(blob) != want {
		return nil, errors.Errorf("rsa1 blob: expected %d bytes, got %d", want, len(blob))
	}

	expBytes := blob[24 : 24+expLen]
	modBytes := blob[24+expLen:]

	e := 0
	for _, b := range expBytes {
		e = e<<8 | int(b)
	}

	pub := &rsa.PublicKey{N: new(big.Int).SetBytes(modBytes), E: e}
	return pub, nil
}

func appendUint32(buf []byte, v uint32) []byte {
	var tmp [4]byte
	binary.LittleEndian.PutUint32(tmp[:], v)
	return append(buf, tmp[:]...)
}

// bigIntBytes renders a small positive integer (the RSA exponent) as
// minimum-length big-endian bytes, matching Python's
// int.to_bytes(ceil(bit_length/8), 'big').
func bigIntBytes(v int64) []byte {
	if v == 0 {
		return []byte{0}
	}
	var tmp []byte
	for v > 0 {
		tmp = append([]byte{byte(v & 0xff)}, tmp...)
		v >>= 8
	}
	return tmp
}
