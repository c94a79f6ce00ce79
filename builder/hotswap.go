package builder

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/ttvmkos/r5nav/detour"
	"github.com/ttvmkos/r5nav/hulls"
	"github.com/ttvmkos/r5nav/recast"
)

// / NavMeshSet owns the navmesh instance of every hull for one level.
// / The original keeps these in process-wide globals; here the set is an
// / explicit owner passed into the build and query APIs.
type NavMeshSet struct {
	dir       string
	levelName string
	meshes    [hulls.NAVMESH_COUNT]*detour.DtNavMesh
	logger    *zap.Logger

	// PreSwapHook runs before a hot swap frees the live navmeshes;
	// PostSwapHook runs after the reload completed.
	PreSwapHook  func()
	PostSwapHook func()
}

// / Creates a navmesh set rooted at the given directory for the given level.
func NewNavMeshSet(dir, levelName string, logger *zap.Logger) *NavMeshSet {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &NavMeshSet{
		dir:       dir,
		levelName: levelName,
		logger:    logger,
	}
}

// / Gets the navmesh by type. [small, med_short, medium, large, extra_large]
func (s *NavMeshSet) GetNavMeshByType(t hulls.NavMeshType) *detour.DtNavMesh {
	if t < 0 || t >= hulls.NAVMESH_COUNT {
		return nil
	}
	return s.meshes[t]
}

// / Frees the navmesh of the given type. Safe when the slot is empty.
func (s *NavMeshSet) FreeNavMeshByType(t hulls.NavMeshType) {
	if t < 0 || t >= hulls.NAVMESH_COUNT {
		return
	}
	s.meshes[t] = nil
}

// / The on-disk path of the navmesh file for the given hull.
func (s *NavMeshSet) FilePath(t hulls.NavMeshType) string {
	return filepath.Join(s.dir, hulls.NavMeshFileName(s.levelName, t))
}

// / Loads every hull's navmesh file. Missing or corrupt files leave
// / their slot empty; the caller can inspect the result with IsLoaded.
func (s *NavMeshSet) LevelInit() {
	for i := hulls.NavMeshType(0); i < hulls.NAVMESH_COUNT; i++ {
		path := s.FilePath(i)
		mesh, err := detour.LoadNavMesh(path)
		if err != nil {
			if !os.IsNotExist(err) {
				s.logger.Warn("navmesh load failed",
					zap.String("path", path),
					zap.Error(err))
			}
			s.meshes[i] = nil
			continue
		}
		s.meshes[i] = mesh
	}
}

// / Frees the memory used by all valid navmesh slots.
func (s *NavMeshSet) LevelShutdown() {
	for i := hulls.NavMeshType(0); i < hulls.NAVMESH_COUNT; i++ {
		s.FreeNavMeshByType(i)
	}
}

// / Reports which navmesh files failed to load.
// / Returns true if at least one navmesh loaded successfully.
func (s *NavMeshSet) IsLoaded() bool {
	missing := 0
	for i := hulls.NavMeshType(0); i < hulls.NAVMESH_COUNT; i++ {
		if s.meshes[i] == nil {
			s.logger.Warn(fmt.Sprintf("NavMesh '%s' not loaded", s.FilePath(i)))
			missing++
		}
	}
	return missing != int(hulls.NAVMESH_COUNT)
}

// / Saves every built navmesh slot to its hull file.
func (s *NavMeshSet) SaveAll() error {
	for i := hulls.NavMeshType(0); i < hulls.NAVMESH_COUNT; i++ {
		if s.meshes[i] == nil {
			continue
		}
		if err := detour.SaveNavMesh(s.FilePath(i), s.meshes[i]); err != nil {
			return err
		}
	}
	return nil
}

// / Installs a freshly built navmesh into the slot for its type.
func (s *NavMeshSet) SetNavMesh(t hulls.NavMeshType, mesh *detour.DtNavMesh) {
	if t < 0 || t >= hulls.NAVMESH_COUNT {
		return
	}
	s.meshes[t] = mesh
}

// / Hot swaps the navmesh set with the current files on the disk. All
// / types are reloaded; if the file for a type no longer exists its slot
// / stays empty. Holders of per-instance query state must re-attach
// / through the reattach callback, which is invoked once per slot with
// / the new mesh (possibly nil).
func (s *NavMeshSet) HotSwap(reattach func(t hulls.NavMeshType, mesh *detour.DtNavMesh)) error {
	if s.PreSwapHook != nil {
		s.PreSwapHook()
	}

	// Free and re-init the navmesh slots.
	s.LevelShutdown()
	s.LevelInit()

	var err error
	s.IsLoaded()
	for i := hulls.NavMeshType(0); i < hulls.NAVMESH_COUNT; i++ {
		if s.meshes[i] == nil {
			err = fmt.Errorf("hotswap: failed to hot swap navmesh set: one or more missing navmesh types")
			break
		}
	}

	// Reinitialize attached queries to point at the new containers.
	if reattach != nil {
		for i := hulls.NavMeshType(0); i < hulls.NAVMESH_COUNT; i++ {
			reattach(i, s.meshes[i])
		}
	}

	if s.PostSwapHook != nil {
		s.PostSwapHook()
	}

	return err
}

// / Determines whether the goal poly is reachable from the start poly on
// / the navmesh serving the given anim type, consulting only static
// / pathing data.
func (s *NavMeshSet) IsGoalPolyReachable(animType hulls.TraverseAnimType, fromRef, goalRef detour.DtPolyRef) bool {
	navType := hulls.NavMeshTypeForAnimType(animType)
	nav := s.GetNavMeshByType(navType)
	if nav == nil {
		return false
	}

	hasAnimType := animType != hulls.ANIMTYPE_NONE
	traverseTableIndex := 0
	if hasAnimType {
		traverseTableIndex = hulls.TraverseTableIndexForAnimType(animType)
	}

	return nav.IsGoalPolyReachable(fromRef, goalRef, !hasAnimType, traverseTableIndex)
}

// / Builds every hull's navmesh for the level and installs each into the
// / set, saving it to its hull file. Settings derive from the hull
// / catalogue; customize applies per-hull overrides when non-nil.
func BuildAllHulls(ctx context.Context, geom *InputGeom, set *NavMeshSet,
	rcCtx *recast.BuildContext, customize func(t hulls.NavMeshType, s *BuildSettings)) error {

	for i := hulls.NavMeshType(0); i < hulls.NAVMESH_COUNT; i++ {
		settings := DefaultSettings(i)
		if customize != nil {
			customize(i, &settings)
		}

		b, err := NewBuilder(geom, settings, i, rcCtx)
		if err != nil {
			return err
		}
		if err := b.Build(ctx); err != nil {
			return err
		}

		set.SetNavMesh(i, b.NavMesh())
		if err := detour.SaveNavMesh(set.FilePath(i), b.NavMesh()); err != nil {
			return err
		}
	}

	return nil
}
