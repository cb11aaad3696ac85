// Package routepath maps route files to route paths, dotted module paths,
// topics and command names.
package routepath

import (
	"path/filepath"
	"regexp"
	"strings"
)

// IndexSegment is the file name (without extension) that stands for its
// directory's own root.
const IndexSegment = "index"

var (
	paramPattern    = regexp.MustCompile(`\[(\w+)\]`)
	underscoreParam = regexp.MustCompile(`^_(\w+)_$`)
	sanitizePattern = regexp.MustCompile(`[^a-zA-Z0-9{}]`)
)

// Translator converts route files into route paths.
type Translator struct {
	// Sanitize replaces every character other than letters, digits and
	// braces with an underscore, segment by segment.
	Sanitize bool
}

// Derive returns the route path for file, which must live under root.
//
//	users/[user_id].go        → /users/{user_id}
//	users/_user_id_/index.go  → /users/{user_id}
//	users/index.go            → /users
//	index.go                  → /
//	hello/world.go            → /hello/world
//
// Malformed brackets are passed through untouched.
func (t Translator) Derive(file, root string) string {
	parts := Segments(file, root)
	if n := len(parts); n > 0 && parts[n-1] == IndexSegment {
		parts = parts[:n-1]
	}

	for i, part := range parts {
		part = Param(part)
		if t.Sanitize {
			part = Sanitize(part)
		}
		parts[i] = part
	}

	return "/" + strings.Join(parts, "/")
}

// Derive is Translator{}.Derive: no sanitization.
func Derive(file, root string) string {
	return Translator{}.Derive(file, root)
}

// Segments splits the path of file relative to root into its segments, with
// the extension removed from the last one.
func Segments(file, root string) []string {
	rel, err := filepath.Rel(root, file)
	if err != nil {
		rel = file
	}
	rel = filepath.ToSlash(rel)
	rel = strings.ReplaceAll(rel, "\\", "/")
	rel = strings.TrimSuffix(rel, filepath.Ext(rel))

	var parts []string
	for _, part := range strings.Split(rel, "/") {
		if part == "" || part == "." {
			continue
		}
		parts = append(parts, part)
	}
	return parts
}

// Param rewrites each [name] in segment to {name}. A whole segment spelled
// _name_ is rewritten the same way, since Go rejects brackets in file and
// package names.
func Param(segment string) string {
	if m := underscoreParam.FindStringSubmatch(segment); m != nil {
		return "{" + m[1] + "}"
	}
	return paramPattern.ReplaceAllString(segment, "{$1}")
}

// Sanitize replaces characters other than [A-Za-z0-9{}] with "_".
func Sanitize(segment string) string {
	return sanitizePattern.ReplaceAllString(segment, "_")
}

// ModulePath returns the dotted module path of file: anchor followed by
// every segment relative to root. Segments are kept verbatim.
func ModulePath(file, root, anchor string) string {
	parts := Segments(file, root)
	if anchor != "" {
		parts = append([]string{anchor}, parts...)
	}
	return strings.Join(parts, ".")
}

// Anchor returns the dotted prefix for modules under root. When one of
// root's segments equals pkg, the anchor starts at the last such segment
// ("src/app/routes/http", "app" → "app.routes.http"); otherwise it is
// root's base name.
func Anchor(root, pkg string) string {
	clean := filepath.ToSlash(filepath.Clean(root))
	parts := strings.Split(clean, "/")

	if pkg != "" {
		for i := len(parts) - 1; i >= 0; i-- {
			if parts[i] == pkg {
				return strings.Join(parts[i:], ".")
			}
		}
	}

	base := filepath.Base(filepath.Clean(root))
	if base == "." || base == "/" {
		return ""
	}
	return base
}

// Topic converts a route path to a dotted topic name: /a/b → a.b.
func Topic(route string) string {
	return strings.ReplaceAll(strings.Trim(route, "/"), "/", ".")
}

// CommandName converts a route path to a sub-command name: /a/b/ → a_b.
func CommandName(route string) string {
	return strings.ReplaceAll(strings.Trim(route, "/"), "/", "_")
}
