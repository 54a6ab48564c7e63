package descriptor

import (
	"fmt"
	"strings"
)

// CoordinateError reports a library name that is not group:artifact:version.
type CoordinateError struct {
	Name string
}

func (e *CoordinateError) Error() string {
	return fmt.Sprintf("malformed library coordinate %q: want group:artifact:version", e.Name)
}

// Coordinate is a parsed "group:artifact:version[:classifier]" name.
type Coordinate struct {
	Group      string
	Artifact   string
	Version    string
	Classifier string
}

// ParseCoordinate splits a library name. Fewer than three non-empty segments
// yield a *CoordinateError.
func ParseCoordinate(name string) (Coordinate, error) {
	parts := strings.Split(name, ":")
	if len(parts) < 3 {
		return Coordinate{}, &CoordinateError{Name: name}
	}
	for _, p := range parts[:3] {
		if p == "" {
			return Coordinate{}, &CoordinateError{Name: name}
		}
	}
	c := Coordinate{Group: parts[0], Artifact: parts[1], Version: parts[2]}
	if len(parts) > 3 {
		c.Classifier = strings.Join(parts[3:], ":")
	}
	return c, nil
}

// Key is the identity used for deduplication; the version is ignored.
func (c Coordinate) Key() string {
	return c.Group + ":" + c.Artifact
}

// Path is the repository-relative path of the jar, e.g.
// net/fabricmc/sponge-mixin/0.15.4/sponge-mixin-0.15.4.jar.
func (c Coordinate) Path() string {
	file := c.Artifact + "-" + c.Version
	if c.Classifier != "" {
		file += "-" + c.Classifier
	}
	return strings.ReplaceAll(c.Group, ".", "/") + "/" + c.Artifact + "/" + c.Version + "/" + file + ".jar"
}

// IsNativeName reports whether a library name encodes a native classifier.
func IsNativeName(name string) bool {
	return strings.Contains(name, "natives-")
}
