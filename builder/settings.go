package builder

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/ttvmkos/r5nav/hulls"
	"github.com/ttvmkos/r5nav/recast"
)

// / Region partition type names as stored in build settings files.
const (
	PartitionWatershed = "watershed"
	PartitionMonotone  = "monotone"
	PartitionLayers    = "layers"
)

// / Polygons with a quantized surface area at or below this threshold are
// / flagged #DT_POLYFLAGS_TOO_SMALL.
const SmallPolygonThreshold = 120

// BuildSettings is the full set of recognised build configuration
// options. The zero value is not usable; start from DefaultSettings.
type BuildSettings struct {
	// Cell size in world units.
	CellSize float32 `yaml:"cellSize"`
	// Cell height in world units.
	CellHeight float32 `yaml:"cellHeight"`
	// Agent height in world units.
	AgentHeight float32 `yaml:"agentHeight"`
	// Agent radius in world units.
	AgentRadius float32 `yaml:"agentRadius"`
	// Agent max climb in world units.
	AgentMaxClimb float32 `yaml:"agentMaxClimb"`
	// Agent max slope in degrees.
	AgentMaxSlope float32 `yaml:"agentMaxSlope"`
	// Size of the tile in voxels.
	TileSize int `yaml:"tileSize"`
	// Region minimum size in voxels. (minRegionArea = size*size)
	RegionMinSize int `yaml:"minRegionArea"`
	// Region merge size in voxels. (mergeRegionArea = size*size)
	RegionMergeSize int `yaml:"mergeRegionArea"`
	// Edge max length in world units.
	EdgeMaxLen float32 `yaml:"edgeMaxLen"`
	// Edge max error in voxels.
	EdgeMaxError float32 `yaml:"edgeMaxError"`
	// Maximum verts per polygon. [Limits: 3..6]
	VertsPerPoly int `yaml:"vertsPerPoly"`
	// Cell grid resolution for the per-poly diamond cells.
	PolyCellRes int `yaml:"polyCellRes"`
	// Detail sample distance in voxels.
	DetailSampleDist float32 `yaml:"detailSampleDist"`
	// Detail sample max error in voxel heights.
	DetailSampleMaxError float32 `yaml:"detailSampleMaxError"`
	// Partition type: watershed, monotone or layers.
	PartitionType string `yaml:"partitionType"`
	// Filter toggles.
	FilterLowHangingObstacles   bool `yaml:"filterLowHangingObstacles"`
	FilterLedgeSpans            bool `yaml:"filterLedgeSpans"`
	FilterWalkableLowHeightSpans bool `yaml:"filterWalkableLowHeightSpans"`
	// Build extents; clamped to the input mesh bounds when zero.
	NavBounds [2][3]float32 `yaml:"navBounds"`
}

// DefaultSettings returns the build settings for the given navmesh type,
// derived from its hull definition.
func DefaultSettings(navMeshType hulls.NavMeshType) BuildSettings {
	h := &hulls.Hulls[navMeshType]
	return BuildSettings{
		CellSize:                     16.0,
		CellHeight:                   5.85,
		AgentHeight:                  h.Height,
		AgentRadius:                  h.Radius,
		AgentMaxClimb:                h.ClimbHeight,
		AgentMaxSlope:                45.0,
		TileSize:                     h.TileSize,
		RegionMinSize:                4,
		RegionMergeSize:              20,
		EdgeMaxLen:                   192.0,
		EdgeMaxError:                 1.3,
		VertsPerPoly:                 6,
		PolyCellRes:                  h.CellResolution,
		DetailSampleDist:             6.0,
		DetailSampleMaxError:         1.0,
		PartitionType:                PartitionWatershed,
		FilterLowHangingObstacles:    true,
		FilterLedgeSpans:             true,
		FilterWalkableLowHeightSpans: true,
	}
}

// PartitionTypeValue maps the settings string to the recast partition
// constant. Unknown strings fall back to watershed.
func (s *BuildSettings) PartitionTypeValue() int {
	switch s.PartitionType {
	case PartitionMonotone:
		return recast.RC_PARTITION_MONOTONE
	case PartitionLayers:
		return recast.RC_PARTITION_LAYERS
	default:
		return recast.RC_PARTITION_WATERSHED
	}
}

// Validate rejects configurations the pipeline cannot build with.
func (s *BuildSettings) Validate() error {
	if s.CellSize <= 0 {
		return fmt.Errorf("settings: cellSize must be positive, got %g", s.CellSize)
	}
	if s.CellHeight <= 0 {
		return fmt.Errorf("settings: cellHeight must be positive, got %g", s.CellHeight)
	}
	if s.TileSize <= 0 {
		return fmt.Errorf("settings: tileSize must be positive, got %d", s.TileSize)
	}
	if s.VertsPerPoly < 3 || s.VertsPerPoly > 6 {
		return fmt.Errorf("settings: vertsPerPoly must be within [3..6], got %d", s.VertsPerPoly)
	}
	switch s.PartitionType {
	case PartitionWatershed, PartitionMonotone, PartitionLayers:
	default:
		return fmt.Errorf("settings: unknown partitionType %q", s.PartitionType)
	}
	return nil
}

// LoadSettings reads build settings from a YAML file.
func LoadSettings(path string) (BuildSettings, error) {
	var s BuildSettings
	data, err := os.ReadFile(path)
	if err != nil {
		return s, err
	}
	if err := yaml.Unmarshal(data, &s); err != nil {
		return s, err
	}
	if err := s.Validate(); err != nil {
		return s, err
	}
	return s, nil
}

// SaveSettings writes build settings to a YAML file.
func SaveSettings(path string, s BuildSettings) error {
	data, err := yaml.Marshal(&s)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}
