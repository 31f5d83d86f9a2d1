package ecs

// Store is the EntityStore: dense sparse-set component pools keyed by
// entity id, plus a per-entity bitmask recording pool membership.
//
// Destruction is deferred: Destroy marks an entity dead and queues it;
// FlushDestroyed (called once per frame, between frames) actually removes
// its components from every pool. No system may mutate a dead entity's
// components during the frame it was destroyed in.
type Store struct {
	pools   map[ComponentType]pool
	bitOf   map[ComponentType]ComponentMask
	nextBit uint

	masks  map[EntityID]ComponentMask
	nextID EntityID

	pendingDestroy []EntityID
}

// NewStore creates an EntityStore and reserves entity 0 for the default
// camera.
func NewStore() *Store {
	s := &Store{
		pools: make(map[ComponentType]pool),
		bitOf: make(map[ComponentType]ComponentMask),
		masks: make(map[EntityID]ComponentMask),
	}
	s.masks[CameraEntityID] = 0
	s.nextID = CameraEntityID + 1
	Assign(s, CameraEntityID, EntityDescriptor{
		Name:     "MainCamera",
		Parent:   InvalidEntityID,
		Children: map[EntityID]struct{}{},
		IsActive: true,
		IsAlive:  true,
	})
	return s
}

// Create allocates a new, monotonically increasing entity id and gives it a
// default EntityDescriptor. Ids are never reused within a run.
func (s *Store) Create() EntityID {
	id := s.nextID
	s.nextID++
	s.masks[id] = 0
	Assign(s, id, EntityDescriptor{
		Parent:   InvalidEntityID,
		Children: map[EntityID]struct{}{},
		IsActive: true,
		IsAlive:  true,
	})
	return id
}

// IsValid reports whether id was issued and has not yet been purged by
// FlushDestroyed.
func (s *Store) IsValid(id EntityID) bool {
	_, ok := s.masks[id]
	return ok
}

// Mask returns id's current component bitmask.
func (s *Store) Mask(id EntityID) ComponentMask {
	return s.masks[id]
}

// EntitiesInPool returns every valid entity whose mask contains all the bits
// set in mask. Order is unspecified; callers needing deterministic order
// should go through LayerIndex instead.
func (s *Store) EntitiesInPool(mask ComponentMask) []EntityID {
	out := make([]EntityID, 0)
	for id, m := range s.masks {
		if m&mask == mask {
			out = append(out, id)
		}
	}
	return out
}

// Destroy marks id dead (IsAlive = false) and queues it for removal at the
// next FlushDestroyed. It is a no-op for an invalid id.
func (s *Store) Destroy(id EntityID) {
	desc, err := Get[EntityDescriptor](s, id)
	if err != nil {
		return
	}
	if !desc.IsAlive {
		return
	}
	desc.IsAlive = false
	s.pendingDestroy = append(s.pendingDestroy, id)
}

// FlushDestroyed purges every queued entity from every pool. onDetach, if
// non-nil, is called for each purged entity before its components are
// removed, so scripts can receive OnDetach while their data is still live.
func (s *Store) FlushDestroyed(onDetach func(EntityID)) {
	if len(s.pendingDestroy) == 0 {
		return
	}
	for _, id := range s.pendingDestroy {
		if onDetach != nil {
			onDetach(id)
		}
		if desc, err := Get[EntityDescriptor](s, id); err == nil {
			if desc.Parent != InvalidEntityID {
				if parent, err := Get[EntityDescriptor](s, desc.Parent); err == nil {
					delete(parent.Children, id)
				}
			}
			for child := range desc.Children {
				if childDesc, err := Get[EntityDescriptor](s, child); err == nil {
					childDesc.Parent = InvalidEntityID
				}
			}
		}
		for _, p := range s.pools {
			p.remove(id)
		}
		delete(s.masks, id)
	}
	s.pendingDestroy = s.pendingDestroy[:0]
}
