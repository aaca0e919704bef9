package store

import "context"

// Well-known keys.
const (
	KeyDocument         = "smaidrm_data"
	KeySession          = "smaidrm_current_user"
	KeyActivityLog      = "smaidrm_logs"
	KeyHideAnnouncement = "hide_announcement"
)

// Namespace is a persistent key-value space holding JSON values.
//
// Get returns ErrNotFound for an absent key. Delete of an absent key is not
// an error. Any other failure is an *UnavailableError.
type Namespace interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Put(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
}

var (
	_ Namespace = (*Store)(nil)
	_ Namespace = (*Memory)(nil)
)
