package classvm

import "fmt"

// Registry is the process-wide, insertion-ordered table of all loaded
// classes (§3, §4.7). It is logically global for the interpreter's
// lifetime; every Class holds a back-pointer to it (set by add).
type Registry struct {
	classes   []*Class
	byName    map[string]*Class
	MainClass *Class
	MainName  string
}

// NewRegistry returns an empty registry ready to accept built-ins and
// parsed classes.
func NewRegistry() *Registry {
	return &Registry{byName: make(map[string]*Class)}
}

// Add appends class to the registry and installs the back-pointer.
// Once a built-in class is registered, no parsed class may overwrite
// it; class names are unique in the registry (§3's invariant).
func (r *Registry) Add(class *Class) error {
	if class == nil {
		return fmt.Errorf("%w: cannot register a nil class", ErrResolve)
	}
	if existing, ok := r.byName[class.Name]; ok {
		if existing.BuiltIn {
			return fmt.Errorf("%w: class %s is already registered as a built-in", ErrResolve, class.Name)
		}
		return fmt.Errorf("%w: class %s is already registered", ErrResolve, class.Name)
	}

	class.registry = r
	r.classes = append(r.classes, class)
	r.byName[class.Name] = class
	return nil
}

// GetByName looks up a class by exact name. It uses a map rather than
// a linear scan; since names are unique the result is the same.
func (r *Registry) GetByName(name string) (*Class, bool) {
	c, ok := r.byName[name]
	return c, ok
}

// GetByIndex resolves index via resolveClassName on the supplied pool
// and looks up the resulting name.
func (r *Registry) GetByIndex(pool *ConstantPool, index uint16) (*Class, bool) {
	name := pool.resolveClassName(index)
	if name == "" {
		return nil, false
	}
	return r.GetByName(name)
}

// MainMethod scans all classes for a method named exactly "main"; the
// first match wins and its class becomes MainClass (§4.7).
func (r *Registry) MainMethod() (*Method, error) {
	for _, c := range r.classes {
		for _, m := range c.Methods {
			if m.Name == "main" {
				r.MainClass = c
				r.MainName = c.Name
				return m, nil
			}
		}
	}
	return nil, fmt.Errorf("%w: no method named main found in any loaded class", ErrResolve)
}

// resolveMethod looks up (name, descriptor) on class, walking parent
// pointers on miss so a method defined only on a built-in ancestor
// (e.g. java/lang/Object.<init>) is still found (§4.6 step 4's parent
// resolution, §4.9.1 step 2).
func (r *Registry) resolveMethod(class *Class, name, descriptor string) (*Method, error) {
	for c := class; c != nil; c = c.Parent {
		if m, ok := c.FindMethod(name, descriptor); ok {
			return m, nil
		}
	}
	return nil, fmt.Errorf("%w: method %s%s not found on class %s or its ancestors", ErrResolve, name, descriptor, class.Name)
}
