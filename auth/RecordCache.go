package auth

import (
	"encoding/json"
	"errors"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/Azure/azure-sdk-for-go/sdk/azidentity"
	"github.com/adrg/xdg"
	"github.com/charmbracelet/log"
)

const (
	recordCacheSubdir    = "photobrowser/accounts"
	recordCacheDirPerms  = 0o700
	recordCacheFilePerms = 0o600
)

// RecordCache persists the authentication record of the most recent account
// of each kind. A record holds no secrets; it only identifies which account
// the token cache should be searched for.
type RecordCache struct {
	dir string
}

// NewRecordCache stores records under dir, or under the XDG cache home when
// dir is empty.
func NewRecordCache(dir string) (*RecordCache, error) {
	if dir == "" {
		dir = filepath.Join(xdg.CacheHome, recordCacheSubdir)
	}
	if err := os.MkdirAll(dir, recordCacheDirPerms); err != nil {
		return nil, wrapServiceError("unable to create account cache directory", err)
	}
	return &RecordCache{dir: dir}, nil
}

func (c *RecordCache) path(kind AccountKind) string {
	return filepath.Join(c.dir, kind.String()+".json")
}

// Load returns the cached record for kind. A missing or unreadable record is
// reported as a cache miss.
func (c *RecordCache) Load(kind AccountKind) (azidentity.AuthenticationRecord, bool) {
	var record azidentity.AuthenticationRecord
	data, err := os.ReadFile(c.path(kind))
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			log.Debug("Failed to read cached account", "kind", kind, "error", err)
		}
		return record, false
	}
	if err := json.Unmarshal(data, &record); err != nil {
		log.Debug("Ignoring corrupt cached account", "kind", kind, "error", err)
		return record, false
	}
	return record, true
}

// Save refuses records without a version since they cannot be read back.
func (c *RecordCache) Save(kind AccountKind, record azidentity.AuthenticationRecord) error {
	if record.Version == "" {
		return wrapServiceError("account record of "+kind.String()+" has no version", nil)
	}
	data, err := json.Marshal(record)
	if err != nil {
		return wrapServiceError("unable to encode account record", err)
	}
	if err := os.WriteFile(c.path(kind), data, recordCacheFilePerms); err != nil {
		return wrapServiceError("unable to write account record", err)
	}
	return nil
}

func (c *RecordCache) Remove(kind AccountKind) error {
	if err := os.Remove(c.path(kind)); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return wrapServiceError("unable to remove account record", err)
	}
	return nil
}
