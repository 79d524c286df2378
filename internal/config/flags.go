package config

import (
	"flag"
	"os"
)

// parses CLI flags for the assets subcommand
func ParseAssetsFlags() Flags {
	args := os.Args[2:]

	fs := flag.NewFlagSet("assets", flag.ExitOnError)
	path := fs.String("path", "./resources/assets.json", "path to assets JSON file")
	clearFlag := fs.Bool("clear", false, "recreate the content table before ingesting")
	skipExisting := fs.Bool("skip-existing", false, "skip assets whose id is already stored")
	keyframes := fs.Bool("keyframes", false, "also store one record per video keyframe")
	fs.Parse(args) //nolint:errcheck,gosec // G104: ExitOnError flag set handles errors

	return Flags{
		Path:         *path,
		Clear:        *clearFlag,
		SkipExisting: *skipExisting,
		Keyframes:    *keyframes,
	}
}

// parses CLI flags for the create-index subcommand
func ParseIndexFlags() IndexFlags {
	args := os.Args[2:]

	fs := flag.NewFlagSet("create-index", flag.ExitOnError)
	indexType := fs.String("type", "IVF_PQ", "index type (IVF_PQ, IVF_FLAT, HNSW)")
	partitions := fs.Int("partitions", 256, "number of IVF partitions")
	subVectors := fs.Int("sub-vectors", 96, "number of PQ sub-vectors")
	metric := fs.String("metric", "cosine", "distance metric (only cosine is searchable)")
	fs.Parse(args) //nolint:errcheck,gosec // G104: ExitOnError flag set handles errors

	return IndexFlags{
		Type:       *indexType,
		Partitions: *partitions,
		SubVectors: *subVectors,
		Metric:     *metric,
	}
}

// returns default flags for asset ingestion
func DefaultAssetsFlags() Flags {
	return Flags{Path: "./resources/assets.json"}
}
