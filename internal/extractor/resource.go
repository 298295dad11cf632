package extractor

import (
	"net/url"
	"path"
	"strings"
)

// DefaultResourceExtensions is the list of file extensions that point to non-HTML resources: images, media, archives, packages and documents.
var DefaultResourceExtensions = []string{
	".ai", ".avi", ".bin", ".bmp", ".deb", ".doc", ".docx", ".exe", ".flv", ".gif", ".gz",
	".jpeg", ".jpg", ".mkv", ".mov", ".mp3", ".mp4", ".odt", ".ogg", ".pdf", ".png", ".psd",
	".rar", ".rpm", ".ts", ".txt", ".webm", ".xml", ".xlsx", ".xz", ".zip",
}

// ResourceClassifier decides whether an url points to a non-HTML resource by looking at the extension of its path.
//
// The check is syntactic only. The content type of the response is still authoritative once the url is fetched.
type ResourceClassifier struct {
	extensions map[string]struct{}
}

// IsResource returns true if the path of the url ends with one of the denied extensions.
//
// For example, with the default extensions:
//   - http://example.com/report.pdf: true
//   - http://example.com/archive.tar.gz: true
//   - http://example.com/IMAGE.PNG?size=large: true
//   - http://example.com/page.html: false
//   - http://example.com/downloads/: false
func (c ResourceClassifier) IsResource(rawURL string) bool {
	p := rawURL

	if u, err := url.Parse(rawURL); err == nil {
		p = u.Path
	}

	ext := strings.ToLower(path.Ext(p))
	if ext == "" {
		return false
	}

	_, ok := c.extensions[ext]

	return ok
}

// NewResourceClassifier creates a new classifier for the given extensions. If no extension is given, DefaultResourceExtensions is used.
func NewResourceClassifier(extensions ...string) *ResourceClassifier {
	if len(extensions) == 0 {
		extensions = DefaultResourceExtensions
	}

	c := &ResourceClassifier{extensions: make(map[string]struct{}, len(extensions))}

	for _, ext := range extensions {
		ext = strings.ToLower(strings.TrimSpace(ext))

		if ext == "" {
			continue
		}

		if !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}

		c.extensions[ext] = struct{}{}
	}

	return c
}
