package server

type EncryptWordRequest struct {
	Word       string `json:"word" binding:"required"`
	Passphrase string `json:"passphrase" binding:"required"`
}

type EncryptWordResponse struct {
	Ciphertext string `json:"ciphertext"`
	Tag        string `json:"tag"`
}

type DecryptWordRequest struct {
	Ciphertext string `json:"ciphertext" binding:"required"`
	Passphrase string `json:"passphrase" binding:"required"`
	Tag        string `json:"tag"`
}

type DecryptWordResponse struct {
	Plaintext string `json:"plaintext"`
	Verified  bool   `json:"verified"`
}

// ErrorResponse is returned for every failed request.
type ErrorResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}
