package snapshot

import (
	"context"
	"fmt"
	"path"
	"strings"

	"github.com/cespare/xxhash/v2"

	"github.com/vango-dev/vrt/internal/errors"
)

// ContentType is the MIME type every snapshot is stored with.
const ContentType = "text/html; charset=utf-8"

// Store persists rendered HTML. Keys are content addressed, so storing
// the same markup under the same name twice yields the same key.
type Store interface {
	Put(ctx context.Context, name string, html []byte) (key string, err error)
}

// Hash returns the 16 hex digit xxhash of html.
func Hash(html []byte) string {
	return fmt.Sprintf("%016x", xxhash.Sum64(html))
}

// Key builds the object key prefix/name-<hash>.html.
func Key(prefix, name string, html []byte) string {
	file := name + "-" + Hash(html) + ".html"
	if prefix == "" {
		return file
	}
	return path.Join(prefix, file)
}

// CleanName reduces name to letters, digits, '-' and '_'.
func CleanName(name string) (string, error) {
	var b strings.Builder
	for _, r := range strings.TrimSpace(name) {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			b.WriteRune(r)
		default:
			b.WriteByte('-')
		}
	}
	cleaned := strings.Trim(b.String(), "-")
	if cleaned == "" {
		return "", errors.New("E140").
			WithDetailf("snapshot name %q has no usable characters", name)
	}
	return cleaned, nil
}
