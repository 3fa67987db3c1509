package domain

import "strings"

// Blob names of the serialization view, in emission order
const (
	BlobMeta     = "asset.meta"
	BlobPathname = "pathname"
	BlobAsset    = "asset"
)

// Entry is the payload of an AssetRecord: either a DirectoryEntry or a FileEntry.
type Entry interface {
	isEntry()
}

// DirectoryEntry marks a record that carries no content
type DirectoryEntry struct{}

// FileEntry holds the full content of a regular file
type FileEntry struct {
	Content []byte
}

func (DirectoryEntry) isEntry() {}
func (FileEntry) isEntry() {}

// AssetRecord is the self-contained logical record of one asset tree entry
type AssetRecord struct {
	Identifier  string
	LogicalPath string
	Meta        []byte
	Entry       Entry
}

// Blob is one named member of a record's serialization view
type Blob struct {
	Name string
	Data []byte
}

// IsDirectory reports whether the record describes a directory
func (r *AssetRecord) IsDirectory() bool {
	_, ok := r.Entry.(DirectoryEntry)
	return ok
}

// Content returns the file content and true, or nil and false for directories
func (r *AssetRecord) Content() ([]byte, bool) {
	f, ok := r.Entry.(FileEntry)
	if !ok {
		return nil, false
	}
	return f.Content, true
}

// WithContent returns a copy of a file record whose content is replaced.
// Directory records are returned unchanged.
func (r *AssetRecord) WithContent(content []byte) *AssetRecord {
	if r.IsDirectory() {
		return r
	}
	owned := make([]byte, len(content))
	copy(owned, content)

	next := *r
	next.Entry = FileEntry{Content: owned}
	return &next
}

// Blobs returns the serialization view: asset.meta, pathname and, for files, asset.
func (r *AssetRecord) Blobs() []Blob {
	blobs := []Blob{
		{Name: BlobMeta, Data: r.Meta},
		{Name: BlobPathname, Data: []byte(r.LogicalPath)},
	}
	if content, ok := r.Content(); ok {
		blobs = append(blobs, Blob{Name: BlobAsset, Data: content})
	}
	return blobs
}

// MemberName returns the archive member name for one of the record's blobs
func (r *AssetRecord) MemberName(blob string) string {
	return r.Identifier + "/" + blob
}

// BuildTag is the short source revision embedded into the version stamp.
// The zero value means no tag could be derived.
type BuildTag struct {
	value string
}

// NewBuildTag returns a tag for the given revision; blank input yields an absent tag
func NewBuildTag(revision string) BuildTag {
	return BuildTag{value: strings.TrimSpace(revision)}
}

// Value returns the tag and whether it is present
func (t BuildTag) Value() (string, bool) {
	return t.value, t.value != ""
}

func (t BuildTag) String() string {
	if t.value == "" {
		return "none"
	}
	return t.value
}

// StampVersion returns the version-stamp content for the given version and tag
func StampVersion(version string, tag BuildTag) []byte {
	if v, ok := tag.Value(); ok {
		return []byte(version + "\n" + v)
	}
	return []byte(version)
}
