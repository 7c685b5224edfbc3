// profile.go: Slicer profile documents and the category store
//
// Profiles are JSON documents under <settingsRoot>/<category>/<name>.json
// for three fixed categories. Documents are kept as raw bytes and edited
// with sjson so a shallow key overwrite preserves every untouched sibling
// key and the original document order byte-for-byte.

package sliceguard

import (
	"encoding/json"
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"github.com/agilira/go-errors"
	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"
)

// The three fixed profile categories.
const (
	CategoryMachine  = "machine"
	CategoryFilament = "filament"
	CategoryProcess  = "process"
)

// ProfileCategories lists the allowed categories in their canonical order.
var ProfileCategories = []string{CategoryMachine, CategoryFilament, CategoryProcess}

// dryRunSuffix names the sibling file a dry-run update writes instead of
// overwriting the original profile.
const dryRunSuffix = "_modified"

// ProfileDocument is one loaded profile: its identity plus the raw JSON
// bytes, already strict-parsed once at load time.
type ProfileDocument struct {
	Category string
	Name     string
	Path     string
	Raw      []byte
}

// Value returns the top-level value for key, or a non-existent result when
// the key is absent.
func (d *ProfileDocument) Value(key string) gjson.Result {
	return gjson.GetBytes(d.Raw, escapeJSONKey(key))
}

// Decode unmarshals the document into a generic map.
func (d *ProfileDocument) Decode() (map[string]interface{}, error) {
	return ParseProfile(d.Raw, d.Path)
}

// ParseProfile strict-parses profile JSON. Any malformed input fails with
// ParseFailure carrying the human label of the source, typically the
// resolved path. There is no lenient recovery.
func ParseProfile(data []byte, label string) (map[string]interface{}, error) {
	var doc map[string]interface{}
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, parseFailure(err, label)
	}
	return doc, nil
}

// ProfileStore exposes the profile operations an automated caller invokes:
// list, load, save and shallow update. Every path it builds goes through
// name validation first and the sandbox second.
type ProfileStore struct {
	fs    *SafeFS
	audit *AuditLogger
}

// NewProfileStore creates a store over a sandboxed filesystem. The audit
// logger may be nil.
func NewProfileStore(fs *SafeFS, audit *AuditLogger) *ProfileStore {
	return &ProfileStore{fs: fs, audit: audit}
}

// validCategory rejects anything outside the three fixed categories.
func validCategory(category string) error {
	for _, c := range ProfileCategories {
		if category == c {
			return nil
		}
	}
	return errors.New(ErrCodeAccessDenied,
		fmt.Sprintf("access denied: unknown profile category %q (permitted: %s)",
			category, strings.Join(ProfileCategories, ", "))).
		WithContext("category", category)
}

// profilePath builds <settingsRoot>/<category>/<name>.json after both
// gates have passed.
func (s *ProfileStore) profilePath(category, name string) (string, error) {
	if err := validCategory(category); err != nil {
		return "", err
	}
	if err := ValidateName(name); err != nil {
		return "", err
	}
	base := strings.TrimSuffix(name, ".json") + ".json"
	return filepath.Join(s.fs.Sandbox().SettingsRoot(), category, base), nil
}

// ListProfiles returns the profile names in a category, sorted, without
// the .json extension. A category directory that does not exist yet means
// "no profiles", not an error; that tolerance lives here, not in SafeFS.
func (s *ProfileStore) ListProfiles(category string) ([]string, error) {
	if err := validCategory(category); err != nil {
		return nil, err
	}

	dir := filepath.Join(s.fs.Sandbox().SettingsRoot(), category)
	entries, err := s.fs.ListDir(dir)
	if err != nil {
		if IsNotFound(err) {
			return []string{}, nil
		}
		return nil, err
	}

	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		if strings.HasSuffix(entry, ".json") {
			names = append(names, strings.TrimSuffix(entry, ".json"))
		}
	}
	sort.Strings(names)
	return names, nil
}

// LoadProfile reads and strict-parses one profile document.
func (s *ProfileStore) LoadProfile(category, name string) (*ProfileDocument, error) {
	path, err := s.profilePath(category, name)
	if err != nil {
		return nil, err
	}

	raw, err := s.fs.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if _, err := ParseProfile(raw, path); err != nil {
		return nil, err
	}

	return &ProfileDocument{
		Category: category,
		Name:     strings.TrimSuffix(name, ".json"),
		Path:     path,
		Raw:      raw,
	}, nil
}

// SaveProfile validates and writes a whole profile document, creating the
// category directory if needed. The write is audited.
func (s *ProfileStore) SaveProfile(category, name string, data []byte) error {
	path, err := s.profilePath(category, name)
	if err != nil {
		return err
	}
	if _, err := ParseProfile(data, path); err != nil {
		return err
	}

	if err := s.fs.MkdirAll(filepath.Dir(path)); err != nil {
		return err
	}
	if err := s.fs.WriteFile(path, data); err != nil {
		return err
	}

	if s.audit != nil {
		s.audit.Record("profile_save", map[string]interface{}{
			"category": category,
			"name":     name,
			"path":     path,
		})
	}
	return nil
}

// UpdateProfile applies shallow top-level key overwrites to a profile.
// Untouched sibling keys and document order survive byte-for-byte. With
// dryRun set the original is left intact and the result is written to a
// sibling <name>_modified.json; the returned path names whichever file was
// written.
func (s *ProfileStore) UpdateProfile(category, name string, changes map[string]interface{}, dryRun bool) (string, error) {
	doc, err := s.LoadProfile(category, name)
	if err != nil {
		return "", err
	}

	updated := doc.Raw
	oldValues := make(map[string]interface{}, len(changes))
	for key, value := range changes {
		oldValues[key] = doc.Value(key).Value()
		updated, err = sjson.SetBytes(updated, escapeJSONKey(key), value)
		if err != nil {
			return "", parseFailure(err, doc.Path)
		}
	}

	target := doc.Path
	targetName := doc.Name
	if dryRun {
		targetName = doc.Name + dryRunSuffix
		target = filepath.Join(filepath.Dir(doc.Path), targetName+".json")
	}

	if err := s.fs.WriteFile(target, updated); err != nil {
		return "", err
	}

	if s.audit != nil {
		s.audit.Record("profile_update", map[string]interface{}{
			"category":   category,
			"name":       doc.Name,
			"target":     target,
			"dry_run":    dryRun,
			"old_values": oldValues,
			"new_values": changes,
		})
	}
	return target, nil
}

// escapeJSONKey makes a literal profile key safe for gjson/sjson path
// syntax, so keys containing dots or wildcards stay shallow.
func escapeJSONKey(key string) string {
	replacer := strings.NewReplacer(".", `\.`, "*", `\*`, "?", `\?`, "|", `\|`, "#", `\#`, "@", `\@`)
	return replacer.Replace(key)
}
