package license

import "crypto/aes"

// sMatrix is the fixed 16-byte table the cache file's AES-128 key is
// derived from — the same construction the wire transport uses for its
// body encryption, since both decrypt against the same licensing
// ciphertext format.
var sMatrix = [aes.BlockSize]byte{
	0x5a, 0x3c, 0x91, 0xe4, 0x7b, 0x2f, 0xd8, 0x06,
	0xc1, 0x4e, 0x99, 0x8a, 0x23, 0x67, 0xf0, 0x15,
}

func deriveKey() []byte {
	key := make([]byte, aes.BlockSize)
	copy(key, sMatrix[:])
	return key
}

// decryptEntry decrypts one 16-byte AES-ECB ciphertext block in place.
func decryptEntry(block []byte) error {
	if len(block) != aes.BlockSize {
		return ErrNoLicense
	}
	cipher, err := aes.NewCipher(deriveKey())
	if err != nil {
		return err
	}
	cipher.Decrypt(block, block)
	return nil
}

// encryptEntry is decryptEntry's inverse, used when writing the cache
// back out after the duplicate-entry cleaner or a server-refreshed entry.
func encryptEntry(block []byte) error {
	if len(block) != aes.BlockSize {
		return ErrNoLicense
	}
	cipher, err := aes.NewCipher(deriveKey())
	if err != nil {
		return err
	}
	cipher.Encrypt(block, block)
	return nil
}
