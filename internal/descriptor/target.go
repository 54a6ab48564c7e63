package descriptor

import (
	"errors"
	"fmt"
	"strings"
)

// ErrMalformedTargetID is returned for version ids that do not name a
// loader/game pair.
var ErrMalformedTargetID = errors.New("malformed target version id")

const targetPrefix = "fabric-loader-"

// Target identifies the loader and base game a version id is built from.
type Target struct {
	ID            string
	LoaderVersion string
	GameVersion   string
}

// ParseTargetID splits "fabric-loader-<loaderVersion>-<gameVersion>". The
// loader version is everything up to the first '-' after the prefix.
func ParseTargetID(id string) (Target, error) {
	rest, ok := strings.CutPrefix(id, targetPrefix)
	if !ok {
		return Target{}, fmt.Errorf("%w: %q", ErrMalformedTargetID, id)
	}
	loader, game, ok := strings.Cut(rest, "-")
	if !ok || loader == "" || game == "" {
		return Target{}, fmt.Errorf("%w: %q", ErrMalformedTargetID, id)
	}
	return Target{ID: id, LoaderVersion: loader, GameVersion: game}, nil
}

// TargetID builds the version id for a loader/game pair.
func TargetID(loaderVersion, gameVersion string) string {
	return targetPrefix + loaderVersion + "-" + gameVersion
}
