// Package hierarchy maintains the parent/child transform graph and the
// per-frame render order derived from it, grounded on HierarchyManager.cpp
// from the original engine this core was distilled from.
package hierarchy

import (
	"math"
	"sort"

	"github.com/rs/zerolog"

	"muscle-dreamer/internal/core/ecs"
)

// maxSubdivisionDepth bounds the render-order interval subdivision recursion.
// A hierarchy nested deeper than this would make child intervals underflow
// float64 precision well before it would matter for draw order. Past the
// cap subdivision stops: deeper descendants get no new RenderOrder in that
// pass (they keep their previous value), a full Update leaves them out of
// RenderOrder(), and a warning is logged once.
const maxSubdivisionDepth = 16

// RenderKind classifies an entity for the final render-order projection.
// Renderers live outside this core; Hierarchy only needs to know which of
// the two output sequences (world-space, screen-space UI) an entity belongs
// to, and takes that answer from a caller-supplied Classifier.
type RenderKind int

const (
	RenderKindNone RenderKind = iota
	RenderKindWorld
	RenderKindUI
)

// Classifier tells Hierarchy whether id should appear in the world-render or
// UI-render sequence, or neither. A nil Classifier leaves both sequences
// empty; RenderOrder() is unaffected.
type Classifier func(ecs.EntityID) RenderKind

// LayerEnabledChecker reports whether a layer index is currently enabled.
// LayerIndex satisfies this; passing nil treats every layer as enabled.
type LayerEnabledChecker interface {
	IsLayerEnabled(layer int) bool
}

// Hierarchy tracks parent/child transform linkage for a Store and recomputes
// world transforms and render order once per frame via Update.
type Hierarchy struct {
	store  *ecs.Store
	layers LayerEnabledChecker
	log    zerolog.Logger

	classify Classifier

	// parentOrder holds root entities in active layers, sorted by sceneID:
	// this is the order transforms and render order are computed in.
	parentOrder []ecs.EntityID
	// hierarchyOrder is the same but includes roots in disabled layers, for
	// editor/debug consumers that need the full tree.
	hierarchyOrder []ecs.EntityID

	sceneOrder map[float64]ecs.EntityID
	sorted     []ecs.EntityID
	worldOrder []ecs.EntityID
	uiOrder    []ecs.EntityID

	lastDelta      float64
	depthCapLogged bool
}

// New creates a Hierarchy over store. layers may be nil, in which case every
// layer is treated as enabled.
func New(store *ecs.Store, layers LayerEnabledChecker, log zerolog.Logger) *Hierarchy {
	return &Hierarchy{
		store:      store,
		layers:     layers,
		log:        log.With().Str("component", "hierarchy").Logger(),
		sceneOrder: make(map[float64]ecs.EntityID),
	}
}

// SetClassifier installs the render-kind classifier used by subsequent
// Update calls to split RenderOrder into WorldRenderOrder/UIRenderOrder.
func (h *Hierarchy) SetClassifier(fn Classifier) { h.classify = fn }

// isDescendantOf reports whether ancestor appears somewhere in start's
// parent chain, matching the original RecursionHelper cycle check: to
// attach child under parent we must confirm parent is not already a
// descendant of child.
func (h *Hierarchy) isDescendantOf(start, ancestor ecs.EntityID) bool {
	cur := start
	for {
		desc, err := ecs.Get[ecs.EntityDescriptor](h.store, cur)
		if err != nil || desc.Parent == ecs.InvalidEntityID {
			return false
		}
		if desc.Parent == ancestor {
			return true
		}
		cur = desc.Parent
	}
}

// AttachChild parents child under parent. It rejects the attach with
// InvalidHierarchy if doing so would create a cycle (parent is already a
// descendant of child); the call is then a no-op. Attaching an entity with
// no EntityDescriptor is silently ignored.
func (h *Hierarchy) AttachChild(parent, child ecs.EntityID) error {
	childDesc, err := ecs.Get[ecs.EntityDescriptor](h.store, child)
	if err != nil {
		return nil
	}
	if parent == child || h.isDescendantOf(parent, child) {
		return &ecs.EngineError{Code: ecs.ErrInvalidHierarchy, Message: "attach would create a cycle", Entity: child}
	}
	parentDesc, err := ecs.Get[ecs.EntityDescriptor](h.store, parent)
	if err != nil {
		return nil
	}

	if childDesc.Parent != ecs.InvalidEntityID {
		if oldParent, err := ecs.Get[ecs.EntityDescriptor](h.store, childDesc.Parent); err == nil {
			delete(oldParent.Children, child)
		}
	}
	if parentDesc.Children == nil {
		parentDesc.Children = make(map[ecs.EntityID]struct{})
	}
	parentDesc.Children[child] = struct{}{}
	childDesc.Parent = parent

	if parentT, err := ecs.Get[ecs.Transform](h.store, parent); err == nil {
		if childT, err := ecs.Get[ecs.Transform](h.store, child); err == nil {
			childT.RelPosition = worldToLocal(*parentT, childT.Position)
			childT.RelOrientation = ecs.WrapAngle(childT.Orientation - parentT.Orientation)
		}
	}
	if !parentDesc.IsActive {
		childDesc.IsActive = false
	}

	h.refreshRenderOrderFrom(parent)
	return nil
}

// DetachChild removes child from its parent's children set, zeros its
// relative transform, and refreshes render order starting at child. A
// dead or parentless child is a no-op.
func (h *Hierarchy) DetachChild(child ecs.EntityID) {
	childDesc, err := ecs.Get[ecs.EntityDescriptor](h.store, child)
	if err != nil || !childDesc.IsAlive || childDesc.Parent == ecs.InvalidEntityID {
		return
	}
	if childDesc.Parent != ecs.InvalidEntityID {
		if oldParent, err := ecs.Get[ecs.EntityDescriptor](h.store, childDesc.Parent); err == nil {
			delete(oldParent.Children, child)
		}
	}
	childDesc.Parent = ecs.InvalidEntityID
	if childT, err := ecs.Get[ecs.Transform](h.store, child); err == nil {
		childT.RelPosition = ecs.Vector2{}
		childT.RelOrientation = 0
	}
	h.refreshRenderOrderFrom(child)
}

// HasParent reports whether id currently has a parent.
func (h *Hierarchy) HasParent(id ecs.EntityID) bool {
	desc, err := ecs.Get[ecs.EntityDescriptor](h.store, id)
	return err == nil && desc.Parent != ecs.InvalidEntityID
}

// IsEffectivelyActive reports whether id and every one of its ancestors has
// IsActive set, matching the EntityDescriptor.isActive invariant.
func (h *Hierarchy) IsEffectivelyActive(id ecs.EntityID) bool {
	cur := id
	for {
		desc, err := ecs.Get[ecs.EntityDescriptor](h.store, cur)
		if err != nil {
			return false
		}
		if !desc.IsActive {
			return false
		}
		if desc.Parent == ecs.InvalidEntityID {
			return true
		}
		cur = desc.Parent
	}
}

// Update runs the four per-frame passes: rebuild the parent list, propagate
// world transforms down each tree, recompute render order, and project the
// sorted result into world/UI sequences via the installed Classifier.
func (h *Hierarchy) Update() {
	h.rebuildParentList()
	h.propagateTransforms()
	h.recomputeRenderOrder()
}

// ParentOrder returns root entities in active layers, sorted by sceneID.
func (h *Hierarchy) ParentOrder() []ecs.EntityID { return h.parentOrder }

// HierarchyOrder returns root entities across all layers (including
// disabled ones), sorted by sceneID, for editor/debug consumers.
func (h *Hierarchy) HierarchyOrder() []ecs.EntityID { return h.hierarchyOrder }

// RenderOrder returns every entity with an assigned render order, sorted
// ascending by that value.
func (h *Hierarchy) RenderOrder() []ecs.EntityID { return h.sorted }

// WorldRenderOrder returns RenderOrder filtered to RenderKindWorld entities.
func (h *Hierarchy) WorldRenderOrder() []ecs.EntityID { return h.worldOrder }

// UIRenderOrder returns RenderOrder filtered to RenderKindUI entities.
func (h *Hierarchy) UIRenderOrder() []ecs.EntityID { return h.uiOrder }

func (h *Hierarchy) rebuildParentList() {
	mask := ecs.MaskOf[ecs.EntityDescriptor](h.store) | ecs.MaskOf[ecs.Transform](h.store)
	candidates := h.store.EntitiesInPool(mask)

	type rootEntry struct {
		sceneID int
		id      ecs.EntityID
	}
	var all, active []rootEntry

	for _, id := range candidates {
		if id == ecs.CameraEntityID {
			continue
		}
		desc, err := ecs.Get[ecs.EntityDescriptor](h.store, id)
		if err != nil || desc.Parent != ecs.InvalidEntityID || !desc.IsAlive {
			continue
		}
		all = append(all, rootEntry{desc.SceneID, id})
		if desc.IsActive && (h.layers == nil || h.layers.IsLayerEnabled(desc.LayerIndex)) {
			active = append(active, rootEntry{desc.SceneID, id})
		}
	}

	sort.Slice(all, func(i, j int) bool { return all[i].sceneID < all[j].sceneID })
	sort.Slice(active, func(i, j int) bool { return active[i].sceneID < active[j].sceneID })

	h.hierarchyOrder = h.hierarchyOrder[:0]
	for _, r := range all {
		h.hierarchyOrder = append(h.hierarchyOrder, r.id)
	}
	h.parentOrder = h.parentOrder[:0]
	for _, r := range active {
		h.parentOrder = append(h.parentOrder, r.id)
	}
}

func (h *Hierarchy) propagateTransforms() {
	for _, root := range h.parentOrder {
		h.propagateChildren(root)
	}
}

func (h *Hierarchy) propagateChildren(parent ecs.EntityID) {
	parentDesc, err := ecs.Get[ecs.EntityDescriptor](h.store, parent)
	if err != nil || len(parentDesc.Children) == 0 {
		return
	}
	parentT, err := ecs.Get[ecs.Transform](h.store, parent)
	if err != nil {
		return
	}
	snapshot := *parentT
	for child := range parentDesc.Children {
		if childT, err := ecs.Get[ecs.Transform](h.store, child); err == nil {
			childT.Position = localToWorld(snapshot, childT.RelPosition)
			childT.Orientation = ecs.WrapAngle(snapshot.Orientation + childT.RelOrientation)
		}
		if childDesc, err := ecs.Get[ecs.EntityDescriptor](h.store, child); err == nil && len(childDesc.Children) > 0 {
			h.propagateChildren(child)
		}
	}
}

// recomputeRenderOrder assigns renderOrder = sceneId + layerIndex*delta to
// every root, delta = 100 * len(parentOrder), then subdivides [ro, ro+1)
// among each root's descendants.
func (h *Hierarchy) recomputeRenderOrder() {
	delta := 100.0 * float64(len(h.parentOrder))
	h.lastDelta = delta
	h.sceneOrder = make(map[float64]ecs.EntityID, len(h.parentOrder))

	for _, id := range h.parentOrder {
		desc, err := ecs.Get[ecs.EntityDescriptor](h.store, id)
		if err != nil {
			continue
		}
		ro := float64(desc.SceneID) + float64(desc.LayerIndex)*delta
		desc.RenderOrder = ro
		h.sceneOrder[ro] = id
		if len(desc.Children) > 0 {
			h.subdivide(id, ro, ro+1, 1)
		}
	}
	h.rebuildSorted()
}

// refreshRenderOrderFrom recomputes render order for just target's root
// subtree, so AttachChild/DetachChild leave render order consistent before
// the next full Update rather than only after it.
func (h *Hierarchy) refreshRenderOrderFrom(target ecs.EntityID) {
	root := h.rootOf(target)
	desc, err := ecs.Get[ecs.EntityDescriptor](h.store, root)
	if err != nil {
		return
	}
	delta := h.lastDelta
	if delta == 0 {
		delta = 100
	}
	ro := float64(desc.SceneID) + float64(desc.LayerIndex)*delta
	delete(h.sceneOrder, desc.RenderOrder)
	desc.RenderOrder = ro
	h.sceneOrder[ro] = root
	if len(desc.Children) > 0 {
		h.subdivide(root, ro, ro+1, 1)
	}
	h.rebuildSorted()
}

func (h *Hierarchy) rootOf(id ecs.EntityID) ecs.EntityID {
	cur := id
	for {
		desc, err := ecs.Get[ecs.EntityDescriptor](h.store, cur)
		if err != nil || desc.Parent == ecs.InvalidEntityID {
			return cur
		}
		cur = desc.Parent
	}
}

func (h *Hierarchy) subdivide(parent ecs.EntityID, min, max float64, depth int) {
	if depth > maxSubdivisionDepth {
		if !h.depthCapLogged {
			h.log.Warn().Int("depth", depth).Msg("render-order subdivision depth capped")
			h.depthCapLogged = true
		}
		return
	}
	parentDesc, err := ecs.Get[ecs.EntityDescriptor](h.store, parent)
	if err != nil || len(parentDesc.Children) == 0 {
		return
	}

	children := make([]ecs.EntityID, 0, len(parentDesc.Children))
	for c := range parentDesc.Children {
		children = append(children, c)
	}
	sort.Slice(children, func(i, j int) bool {
		di, _ := ecs.Get[ecs.EntityDescriptor](h.store, children[i])
		dj, _ := ecs.Get[ecs.EntityDescriptor](h.store, children[j])
		return di.SceneID < dj.SceneID
	})

	step := (max - min) / float64(len(children)+1)
	for i, c := range children {
		cd, err := ecs.Get[ecs.EntityDescriptor](h.store, c)
		if err != nil {
			continue
		}
		ro := min + step*float64(i+1)
		delete(h.sceneOrder, cd.RenderOrder)
		cd.RenderOrder = ro
		h.sceneOrder[ro] = c
		if len(cd.Children) > 0 {
			h.subdivide(c, ro, ro+step, depth+1)
		}
	}
}

func (h *Hierarchy) rebuildSorted() {
	keys := make([]float64, 0, len(h.sceneOrder))
	for k := range h.sceneOrder {
		keys = append(keys, k)
	}
	sort.Float64s(keys)

	h.sorted = h.sorted[:0]
	h.worldOrder = h.worldOrder[:0]
	h.uiOrder = h.uiOrder[:0]
	for _, k := range keys {
		id := h.sceneOrder[k]
		h.sorted = append(h.sorted, id)
		if h.classify == nil {
			continue
		}
		switch h.classify(id) {
		case RenderKindWorld:
			h.worldOrder = append(h.worldOrder, id)
		case RenderKindUI:
			h.uiOrder = append(h.uiOrder, id)
		}
	}
}

func rotate(v ecs.Vector2, theta float64) ecs.Vector2 {
	c, s := math.Cos(theta), math.Sin(theta)
	return ecs.Vector2{X: v.X*c - v.Y*s, Y: v.X*s + v.Y*c}
}

func worldToLocal(parent ecs.Transform, worldPos ecs.Vector2) ecs.Vector2 {
	return rotate(worldPos.Sub(parent.Position), -parent.Orientation)
}

func localToWorld(parent ecs.Transform, localPos ecs.Vector2) ecs.Vector2 {
	return parent.Position.Add(rotate(localPos, parent.Orientation))
}
