package classvm

import (
	"fmt"
)

// classFileMagic is the fixed magic number every class file must open
// with (§4.6 step 1).
const classFileMagic = 0xCAFEBABE

// ByteSource is the loader's only external collaborator: given a bare
// class name (no ".class" suffix and no path), it returns that class
// file's bytes or reports that it could not find one (§6). Filesystem
// access itself is out of scope for this module; the CLI entry point
// supplies the concrete implementation.
type ByteSource interface {
	ReadAll(className string) ([]byte, error)
}

// Loader parses class files and resolves cross-class references
// transitively into a shared Registry (§1, §4.6).
type Loader struct {
	registry *Registry
	source   ByteSource
}

// NewLoader returns a Loader that will resolve referenced classes
// through source and register everything into registry. Callers
// should register built-ins into registry before calling Load so
// java/lang/Object and friends are already present when parsed
// classes resolve their parent pointers (§4.6 step 4).
func NewLoader(registry *Registry, source ByteSource) *Loader {
	return &Loader{registry: registry, source: source}
}

// Load reads className's class file (transitively loading any class
// it references that isn't already registered) and returns the
// resulting Class. Failure to load a referenced class fails the whole
// load (§4.2).
func (l *Loader) Load(className string) (*Class, error) {
	if existing, ok := l.registry.GetByName(className); ok {
		return existing, nil
	}

	data, err := l.source.ReadAll(className)
	if err != nil {
		return nil, fmt.Errorf("%w: reading class %s: %v", ErrIO, className, err)
	}

	class, err := l.parseClassFile(className, data)
	if err != nil {
		return nil, err
	}

	if err := l.registry.Add(class); err != nil {
		return nil, err
	}

	// Walk the constant pool for every referenced class not already
	// registered and not the class just loaded, loading each
	// transitively (§4.2, §4.6 step 9).
	for _, refName := range class.pool.referencedClassNames() {
		if refName == className {
			continue
		}
		if _, ok := l.registry.GetByName(refName); ok {
			continue
		}
		if _, err := l.Load(refName); err != nil {
			return nil, err
		}
	}

	return class, nil
}

func (l *Loader) parseClassFile(className string, data []byte) (*Class, error) {
	r := newReader(data)

	magic, err := r.u32be()
	if err != nil {
		return nil, fmt.Errorf("%w: reading magic for %s: %v", ErrParse, className, err)
	}
	if magic != classFileMagic {
		return nil, fmt.Errorf("%w: %s has bad magic %#x, expected %#x", ErrParse, className, magic, uint32(classFileMagic))
	}

	// minor, major versions: ignored (§4.6 step 2).
	if err := r.skip(4); err != nil {
		return nil, fmt.Errorf("%w: reading class file version for %s: %v", ErrParse, className, err)
	}

	pool, err := parseConstantPool(r)
	if err != nil {
		return nil, fmt.Errorf("parsing constant pool of %s: %w", className, err)
	}

	if _, err := r.u16be(); err != nil { // access flags, unused
		return nil, fmt.Errorf("%w: reading access_flags for %s: %v", ErrParse, className, err)
	}

	thisIdx, err := r.u16be()
	if err != nil {
		return nil, fmt.Errorf("%w: reading this_class for %s: %v", ErrParse, className, err)
	}
	superIdx, err := r.u16be()
	if err != nil {
		return nil, fmt.Errorf("%w: reading super_class for %s: %v", ErrParse, className, err)
	}

	thisName := pool.resolveString(thisIdx)
	if thisName == "" {
		thisName = className
	}

	var parent *Class
	if superIdx != 0 {
		superName := pool.resolveString(superIdx)
		parent, _ = l.registry.GetByName(superName)
		// A nil parent here (super not yet registered) is accepted per
		// §4.6 step 4: a later pass cannot re-resolve it, so parents
		// must already be present (typically java/lang/Object is a
		// built-in registered before any parsed class).
	}

	interfacesCount, err := r.u16be()
	if err != nil {
		return nil, fmt.Errorf("%w: reading interfaces_count for %s: %v", ErrParse, className, err)
	}
	for i := 0; i < int(interfacesCount); i++ {
		// Interfaces are not used by dispatch (§4.6 step 5): each u16
		// index is read past without resolving its name.
		if _, err := r.u16be(); err != nil {
			return nil, fmt.Errorf("%w: reading interface entry for %s: %v", ErrParse, className, err)
		}
	}

	fieldsTable, err := parseFieldOrMethodTable(r, pool)
	if err != nil {
		return nil, fmt.Errorf("parsing fields table of %s: %w", className, err)
	}
	methodsTable, err := parseFieldOrMethodTable(r, pool)
	if err != nil {
		return nil, fmt.Errorf("parsing methods table of %s: %w", className, err)
	}
	if _, _, err := parseAttributeTable(r, pool); err != nil {
		return nil, fmt.Errorf("parsing class attributes of %s: %w", className, err)
	}

	class := &Class{
		Name:   thisName,
		Parent: parent,
		pool:   pool,
	}

	// Partition the fields table: ACC_STATIC fields become static-field
	// slots on the class, the rest become the instance-field template
	// (§4.6 step 7).
	for _, f := range fieldsTable {
		if f.isStatic() {
			class.StaticFields = append(class.StaticFields, Field{Name: f.Name, Value: NoneVariant})
		} else {
			class.InstanceFields = append(class.InstanceFields, f.Name)
		}
	}

	for _, m := range methodsTable {
		method := &Method{
			Owner:       class,
			Name:        m.Name,
			AccessFlags: m.AccessFlags,
			Descriptors: parseMethodDescriptor(m.Descriptor),
		}
		if m.Code != nil {
			method.Code = m.Code.Code
			method.MaxStack = m.Code.MaxStack
			method.MaxLocals = m.Code.MaxLocals
		}
		class.Methods = append(class.Methods, method)
		if method.Name == "<clinit>" && method.Descriptors.Raw == "()V" {
			class.clinit = method
		}
	}

	return class, nil
}
