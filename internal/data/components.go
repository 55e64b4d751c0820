package data

import "fmt"

// Component identifies one independently versioned slice of model data.
type Component int

const (
	// ComponentBase covers address expansions, numeric expressions, and
	// transliteration tables.
	ComponentBase Component = iota
	// ComponentParser covers the CRF address parser model.
	ComponentParser
	// ComponentLanguageClassifier covers the language classification model.
	ComponentLanguageClassifier
	// ComponentAll selects every component.
	ComponentAll
)

// String returns the component's short name.
func (c Component) String() string {
	switch c {
	case ComponentBase:
		return "base"
	case ComponentParser:
		return "parser"
	case ComponentLanguageClassifier:
		return "language_classifier"
	case ComponentAll:
		return "all"
	default:
		return fmt.Sprintf("component(%d)", int(c))
	}
}

// ComponentInfo describes how one component is versioned, downloaded, and
// installed under the data directory.
type ComponentInfo struct {
	// Name is the component's short identifier, used for telemetry labels.
	Name string

	// Version is the current target version, compared by exact string
	// equality against the component's version file.
	Version string

	// ChunkCount is the number of byte-range chunks the archive is fetched
	// in. 1 means a single plain GET.
	ChunkCount int

	// ArchiveFilename is the release asset name on the download host.
	ArchiveFilename string

	// DisplayName is used in logs and progress messages.
	DisplayName string

	// VersionFile is the marker file at the data directory root recording
	// the installed version. Written last, after successful extraction.
	VersionFile string

	// Subdirs are the directories the archive populates, removed before a
	// new version is extracted to avoid stale residue.
	Subdirs []string
}

// The parser model is by far the largest archive, so it is retrieved as
// ranged chunks; the other two fit a single request.
var componentInfos = map[Component]ComponentInfo{
	ComponentBase: {
		Name:            "base",
		Version:         "v1.0.0",
		ChunkCount:      1,
		ArchiveFilename: "libpostal_data.tar.gz",
		DisplayName:     "base data",
		VersionFile:     "base_data_file_version",
		Subdirs:         []string{"address_expansions", "numex", "transliteration"},
	},
	ComponentParser: {
		Name:            "parser",
		Version:         "v1.0.0",
		ChunkCount:      4,
		ArchiveFilename: "parser.tar.gz",
		DisplayName:     "address parser model",
		VersionFile:     "parser_model_file_version",
		Subdirs:         []string{"address_parser"},
	},
	ComponentLanguageClassifier: {
		Name:            "language_classifier",
		Version:         "v1.0.0",
		ChunkCount:      1,
		ArchiveFilename: "language_classifier.tar.gz",
		DisplayName:     "language classifier model",
		VersionFile:     "language_classifier_model_file_version",
		Subdirs:         []string{"language_classifier"},
	},
}

// acquisitionOrder fixes the sequence components are acquired in.
var acquisitionOrder = []Component{
	ComponentBase,
	ComponentParser,
	ComponentLanguageClassifier,
}

// Info returns the descriptor for a single component. ComponentAll has no
// descriptor of its own.
func (c Component) Info() (ComponentInfo, bool) {
	info, ok := componentInfos[c]
	return info, ok
}

// requiredFiles is the fixed set of relative paths that must exist and be
// non-empty for the data directory to be considered available.
var requiredFiles = []string{
	"address_expansions/address_dictionary.dat",
	"numex/numex.dat",
	"transliteration/transliteration.dat",
	"address_parser/address_parser_crf.dat",
	"address_parser/address_parser_phrases.dat",
	"address_parser/address_parser_postal_codes.dat",
	"address_parser/address_parser_vocab.trie",
	"language_classifier/language_classifier.dat",
}

// RequiredFiles returns a copy of the required relative file paths.
func RequiredFiles() []string {
	out := make([]string, len(requiredFiles))
	copy(out, requiredFiles)
	return out
}
