// Package index maintains a user's private file list as a single
// encrypted blob. The blob key is derived from the user secret via
// PBKDF2; per-file keys live in plaintext only inside the decrypted
// record list, never server-side. All mutation is full
// decrypt -> modify -> re-encrypt -> persist on the client.
package index

import "time"

// FileRecord is one entry in a user's file index. Key and Nonce are the
// base64url per-file key material needed to decrypt that file; they are
// confidential and only ever appear inside the decrypted list or a share
// link fragment.
type FileRecord struct {
	FileID       string     `json:"fileId"`
	Name         string     `json:"name"`
	Size         int64      `json:"size"`
	MimeType     string     `json:"mimeType"`
	StorageKey   string     `json:"storageKey"`
	Key          string     `json:"key"`
	Nonce        string     `json:"nonce"`
	UploadedAt   time.Time  `json:"uploadedAt"`
	ExpiresAt    *time.Time `json:"expiresAt,omitempty"`
	MaxDownloads int        `json:"maxDownloads,omitempty"`
	Downloads    int        `json:"downloads"`
}

// BlobVersion is the current Blob format version. Bump it when the KDF
// parameters or layout change so older blobs remain decodable.
const BlobVersion = 1

// Blob is the tagged envelope persisted per user: the encrypted record
// list plus everything needed to re-derive its key. Salt is fixed for the
// lifetime of a user's index; Nonce is fresh on every write.
type Blob struct {
	Version    int    `json:"version"`
	Salt       []byte `json:"salt"`
	Iterations int    `json:"iterations"`
	Nonce      []byte `json:"nonce"`
	Ciphertext []byte `json:"ciphertext"`
}
