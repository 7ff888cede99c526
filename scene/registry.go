package scene

// The Registry tracks the set of objects that participate in ray tracing.
// Any membership change flags the registry as dirty; consumers rebuild
// their derived data lazily and then clear the flag. Registration order is
// preserved so that rebuilds are deterministic.
//
// A Registry is not safe for concurrent use.
type Registry struct {
	objects []*Object
	members map[*Object]struct{}
	dirty   bool
}

// Create an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		members: make(map[*Object]struct{}),
	}
}

// Register an object. Registering an object twice has no effect on the
// membership but still flags the registry as dirty. Returns true if the
// object was added.
func (r *Registry) Register(obj *Object) bool {
	r.dirty = true
	if obj == nil {
		return false
	}
	if _, exists := r.members[obj]; exists {
		return false
	}

	r.members[obj] = struct{}{}
	r.objects = append(r.objects, obj)
	return true
}

// Unregister an object. Returns true if the object was a member.
func (r *Registry) Unregister(obj *Object) bool {
	r.dirty = true
	if _, exists := r.members[obj]; !exists {
		return false
	}

	delete(r.members, obj)
	for index, o := range r.objects {
		if o == obj {
			r.objects = append(r.objects[:index], r.objects[index+1:]...)
			break
		}
	}
	return true
}

// Check whether obj is registered.
func (r *Registry) Contains(obj *Object) bool {
	_, exists := r.members[obj]
	return exists
}

// Get the registered objects in registration order.
func (r *Registry) Objects() []*Object {
	out := make([]*Object, len(r.objects))
	copy(out, r.objects)
	return out
}

// Get number of registered objects.
func (r *Registry) Len() int {
	return len(r.objects)
}

// Returns true if the registry changed since the last call to ClearDirty.
func (r *Registry) Dirty() bool {
	return r.dirty
}

// Force a rebuild on the next frame.
func (r *Registry) MarkDirty() {
	r.dirty = true
}

// Clear the dirty flag.
func (r *Registry) ClearDirty() {
	r.dirty = false
}
