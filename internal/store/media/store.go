// Package mediastore persists generated image and video bytes.
package mediastore

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

var ErrNotFound = errors.New("media not found")

// Object is a stored payload plus its mime type.
type Object struct {
	MIMEType string
	Data     []byte
}

// Store keys objects by owner, board and a per-result name.
type Store interface {
	Put(ctx context.Context, ownerID, boardID, name string, obj Object) (key string, err error)
	Get(ctx context.Context, key string) (Object, error)
}

func objectKey(ownerID, boardID, name string) (string, error) {
	ownerID = strings.TrimSpace(ownerID)
	boardID = strings.TrimSpace(boardID)
	name = strings.TrimSpace(name)
	if ownerID == "" || boardID == "" || name == "" {
		return "", fmt.Errorf("owner_id, board_id and name are required")
	}
	return ownerID + "/" + boardID + "/" + name, nil
}
