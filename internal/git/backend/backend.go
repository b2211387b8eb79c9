package backend

import (
	"context"
	"errors"
)

var ErrObjectNotFound = errors.New("object not found")

// Backend abstracts access to repository data.
//
// The CLI implementation shells out to the git executable; the native one reads
// through go-git. Both hand back raw object bytes so decoding stays in one place.
type Backend interface {
	RepoPath() string
	ReadObject(ctx context.Context, hash string) (Object, error)

	HeadState(ctx context.Context) (hash string, headName string, ok bool, err error)
	ListRefs(ctx context.Context) ([]Ref, error)
}
