// Package storage puts uploaded files somewhere public: Aliyun OSS when
// configured, the local upload dir otherwise.
package storage

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"io"
	"path"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	helper "rojasfit_backend/internals/helpers"
)

// Store writes r under key and returns the public URL of the object.
type Store interface {
	Put(ctx context.Context, key string, r io.Reader, contentType string) (string, error)
}

var reExt = regexp.MustCompile(`^\.[a-z0-9]{1,8}$`)

// ObjectKey builds "<prefix>/<slug>_<yyyymmdd_hhmmss>_<hex6><ext>" from a
// client file name. Directory parts of the name are dropped.
func ObjectKey(prefix, filename string, now time.Time) string {
	name := path.Base(strings.ReplaceAll(filename, `\`, "/"))
	ext := strings.ToLower(filepath.Ext(name))
	base := strings.TrimSuffix(name, filepath.Ext(name))
	if !reExt.MatchString(ext) {
		ext = ""
	}
	key := fmt.Sprintf("%s_%s_%s%s", helper.Slugify(base, 60), now.Format("20060102_150405"), randHex(3), ext)
	if prefix = strings.Trim(prefix, "/"); prefix != "" {
		key = prefix + "/" + key
	}
	return key
}

func randHex(n int) string {
	b := make([]byte, n)
	_, _ = rand.Read(b)
	return hex.EncodeToString(b)
}
