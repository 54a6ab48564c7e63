package descriptor

import (
	"encoding/json"
	"errors"
	"fmt"
)

// ErrNotLaunchable is returned when a descriptor still depends on a parent or
// lacks the asset index or client downloads.
var ErrNotLaunchable = errors.New("descriptor is not launchable")

// Version is a launch descriptor (versions/<id>/<id>.json).
type Version struct {
	ID                     string              `json:"id"`
	InheritsFrom           string              `json:"inheritsFrom,omitempty"`
	Type                   string              `json:"type,omitempty"`
	MainClass              string              `json:"mainClass,omitempty"`
	ReleaseTime            string              `json:"releaseTime,omitempty"`
	Time                   string              `json:"time,omitempty"`
	Arguments              *Arguments          `json:"arguments,omitempty"`
	Libraries              []Library           `json:"libraries"`
	AssetIndex             *AssetIndex         `json:"assetIndex,omitempty"`
	Assets                 string              `json:"assets,omitempty"`
	Downloads              map[string]Download `json:"downloads,omitempty"`
	JavaVersion            json.RawMessage     `json:"javaVersion,omitempty"`
	Logging                json.RawMessage     `json:"logging,omitempty"`
	ComplianceLevel        *int                `json:"complianceLevel,omitempty"`
	MinimumLauncherVersion *int                `json:"minimumLauncherVersion,omitempty"`
}

// Arguments holds game and JVM arguments. Elements are either plain strings
// or rule objects, kept verbatim.
type Arguments struct {
	Game []json.RawMessage `json:"game,omitempty"`
	JVM  []json.RawMessage `json:"jvm,omitempty"`
}

// AssetIndex locates the asset index document.
type AssetIndex struct {
	ID        string `json:"id"`
	SHA1      string `json:"sha1,omitempty"`
	Size      int64  `json:"size,omitempty"`
	TotalSize int64  `json:"totalSize,omitempty"`
	URL       string `json:"url"`
}

// Download is a top-level download such as the client jar.
type Download struct {
	SHA1 string `json:"sha1,omitempty"`
	Size int64  `json:"size,omitempty"`
	URL  string `json:"url"`
}

// Library is one dependency of a descriptor.
type Library struct {
	Name      string            `json:"name"`
	URL       string            `json:"url,omitempty"`
	Downloads *LibraryDownloads `json:"downloads,omitempty"`
	Natives   map[string]string `json:"natives,omitempty"`
	Rules     json.RawMessage   `json:"rules,omitempty"`
	Extract   json.RawMessage   `json:"extract,omitempty"`
	MD5       string            `json:"md5,omitempty"`
	SHA1      string            `json:"sha1,omitempty"`
	SHA256    string            `json:"sha256,omitempty"`
	SHA512    string            `json:"sha512,omitempty"`
	Size      int64             `json:"size,omitempty"`
}

// LibraryDownloads lists the default artifact and named classifiers.
type LibraryDownloads struct {
	Artifact    *Artifact           `json:"artifact,omitempty"`
	Classifiers map[string]Artifact `json:"classifiers,omitempty"`
}

// Artifact is a downloadable library file.
type Artifact struct {
	Path string `json:"path,omitempty"`
	SHA1 string `json:"sha1,omitempty"`
	Size int64  `json:"size"`
	URL  string `json:"url"`
}

// Launchable reports whether v can be handed to the game launcher as is.
func (v *Version) Launchable() error {
	switch {
	case v.InheritsFrom != "":
		return fmt.Errorf("%w: %s still inherits from %s", ErrNotLaunchable, v.ID, v.InheritsFrom)
	case v.AssetIndex == nil:
		return fmt.Errorf("%w: %s has no assetIndex", ErrNotLaunchable, v.ID)
	case len(v.Downloads) == 0:
		return fmt.Errorf("%w: %s has no downloads", ErrNotLaunchable, v.ID)
	}
	return nil
}

// Clone returns a deep copy of v.
func (v *Version) Clone() *Version {
	if v == nil {
		return nil
	}
	out := *v
	if v.Arguments != nil {
		args := Arguments{
			Game: cloneRawList(v.Arguments.Game),
			JVM:  cloneRawList(v.Arguments.JVM),
		}
		out.Arguments = &args
	}
	if v.Libraries != nil {
		out.Libraries = make([]Library, len(v.Libraries))
		for i, lib := range v.Libraries {
			out.Libraries[i] = lib.Clone()
		}
	}
	if v.AssetIndex != nil {
		ai := *v.AssetIndex
		out.AssetIndex = &ai
	}
	out.Downloads = cloneDownloads(v.Downloads)
	out.JavaVersion = cloneRaw(v.JavaVersion)
	out.Logging = cloneRaw(v.Logging)
	if v.ComplianceLevel != nil {
		n := *v.ComplianceLevel
		out.ComplianceLevel = &n
	}
	if v.MinimumLauncherVersion != nil {
		n := *v.MinimumLauncherVersion
		out.MinimumLauncherVersion = &n
	}
	return &out
}

// Clone returns a deep copy of l.
func (l Library) Clone() Library {
	out := l
	if l.Downloads != nil {
		d := LibraryDownloads{}
		if l.Downloads.Artifact != nil {
			a := *l.Downloads.Artifact
			d.Artifact = &a
		}
		if l.Downloads.Classifiers != nil {
			d.Classifiers = make(map[string]Artifact, len(l.Downloads.Classifiers))
			for k, a := range l.Downloads.Classifiers {
				d.Classifiers[k] = a
			}
		}
		out.Downloads = &d
	}
	if l.Natives != nil {
		out.Natives = make(map[string]string, len(l.Natives))
		for k, v := range l.Natives {
			out.Natives[k] = v
		}
	}
	out.Rules = cloneRaw(l.Rules)
	out.Extract = cloneRaw(l.Extract)
	return out
}

func cloneDownloads(in map[string]Download) map[string]Download {
	if in == nil {
		return nil
	}
	out := make(map[string]Download, len(in))
	for k, d := range in {
		out[k] = d
	}
	return out
}

func cloneRaw(r json.RawMessage) json.RawMessage {
	if r == nil {
		return nil
	}
	return append(json.RawMessage(nil), r...)
}

func cloneRawList(in []json.RawMessage) []json.RawMessage {
	if in == nil {
		return nil
	}
	out := make([]json.RawMessage, len(in))
	for i, r := range in {
		out[i] = cloneRaw(r)
	}
	return out
}
