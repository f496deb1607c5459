package service

import "go-gin-auth-service/pkg/utils"

// CredentialVerifier hashes and checks passwords.
type CredentialVerifier interface {
	Hash(password string) (string, error)
	Verify(password, digest string) bool
}

type BcryptCredentials struct{ Cost int }

func NewBcryptCredentials(cost int) *BcryptCredentials { return &BcryptCredentials{Cost: cost} }

func (b *BcryptCredentials) Hash(password string) (string, error) {
	return utils.HashPassword(password, b.Cost)
}

func (b *BcryptCredentials) Verify(password, digest string) bool {
	return utils.CheckPassword(password, digest)
}
