// Package registry embeds the default reference data: the city gazetteer, the
// newsroom source registry, the sentiment lexicon and the media bias ratings.
package registry

import _ "embed"

var (
	//go:embed data/gazetteer.yaml
	gazetteer []byte

	//go:embed data/sources.yaml
	sources []byte

	//go:embed data/lexicon.yaml
	lexicon []byte

	//go:embed data/media_bias.csv
	mediaBias []byte
)

// Gazetteer returns the default city gazetteer YAML.
func Gazetteer() []byte { return gazetteer }

// Sources returns the default newsroom registry YAML.
func Sources() []byte { return sources }

// Lexicon returns the default sentiment lexicon YAML.
func Lexicon() []byte { return lexicon }

// MediaBias returns the default media bias CSV.
func MediaBias() []byte { return mediaBias }
