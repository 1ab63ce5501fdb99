package interfaces

// Crypter is the encrypt-at-rest capability handed to the identity
// resolver. Key management lives with the implementation.
type Crypter interface {
	Encrypt(plaintext string) (string, error)
	Decrypt(ciphertext string) (string, error)
}
