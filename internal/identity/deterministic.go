package identity

import (
	"strings"

	hashid "github.com/goliatone/hashid/pkg/hashid"
	"github.com/google/uuid"
)

const namespace = "go-polycontent:"

// UUID derives a deterministic UUID from a stable key using go-hashid.
//
// Callers must prefix keys by entity kind so different kinds never collide.
func UUID(key string) uuid.UUID {
	trimmed := strings.TrimSpace(key)
	if trimmed == "" {
		return uuid.Nil
	}
	uid, err := hashid.NewUUID(trimmed, hashid.WithHashAlgorithm(hashid.SHA256), hashid.WithNormalization(true))
	if err != nil || uid == uuid.Nil {
		return uuid.NewSHA1(uuid.NameSpaceOID, []byte(trimmed))
	}
	return uid
}

// ContentTypeUUID is the storage key of a content type.
func ContentTypeUUID(id string) uuid.UUID {
	return UUID(namespace + "content_type:" + strings.TrimSpace(id))
}

// VariantUUID is the storage key of a variant overlay.
func VariantUUID(id string) uuid.UUID {
	return UUID(namespace + "variant:" + strings.TrimSpace(id))
}

// TranslationUUID is the storage key of a translation overlay.
func TranslationUUID(id string) uuid.UUID {
	return UUID(namespace + "translation:" + strings.TrimSpace(id))
}

// NewID returns a random identifier with the given prefix, e.g. "ver_<uuid>".
func NewID(prefix string) string {
	id := uuid.NewString()
	if prefix == "" {
		return id
	}
	return prefix + "_" + id
}
