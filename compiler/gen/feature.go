package gen

import "fmt"

var (
	// FeatureAPI switches the build to API mode: controllers render JSON
	// resources instead of HTML pages, and route lines land in the API
	// registry of the dialect.
	FeatureAPI = Feature{
		Name:        "api",
		Stage:       Stable,
		Default:     false,
		Description: "Generates JSON resource controllers and registers routes in the API registry",
	}

	// FeatureFactory emits a test-data factory per table, on dialects
	// that implement FactoryGenerator.
	FeatureFactory = Feature{
		Name:        "factory",
		Stage:       Beta,
		Default:     false,
		Description: "Emits a test-data factory per table with fake values matching the column types",
	}

	// FeatureManifest records every written artifact in .faber/manifest so
	// a later run can report drift. The manifest never influences conflict
	// resolution; it is a reporting surface only.
	FeatureManifest = Feature{
		Name:        "manifest",
		Stage:       Beta,
		Default:     true,
		Description: "Records written artifacts and their checksums for the status command",
	}

	// AllFeatures holds a list of all feature-flags.
	AllFeatures = []Feature{
		FeatureAPI,
		FeatureFactory,
		FeatureManifest,
	}
)

// FeatureByName returns the feature-flag registered under name.
func FeatureByName(name string) (Feature, error) {
	for _, f := range AllFeatures {
		if f.Name == name {
			return f, nil
		}
	}
	return Feature{}, fmt.Errorf("faber: unknown feature %q", name)
}

// FeatureStage describes the stage of the codegen feature.
type FeatureStage int

const (
	_ FeatureStage = iota

	// Experimental features are in development, and actively being tested.
	Experimental

	// Alpha features are features whose initial development was finished,
	// but we expect breaking-changes to their APIs.
	Alpha

	// Beta features are Alpha features that were added to the public
	// documentation, and no breaking-changes are expected for them.
	Beta

	// Stable features are Beta features that were running for a while in
	// real projects.
	Stable
)

// A Feature of the faber codegen.
type Feature struct {
	// Name of the feature.
	Name string

	// Stage of the feature.
	Stage FeatureStage

	// Default indicates if this feature is enabled by default.
	Default bool

	// A Description of this feature.
	Description string
}
