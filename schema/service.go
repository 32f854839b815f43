package schema

// FunctionDef is a single RPC function.
type FunctionDef struct {
	Name string `validate:"required"`

	// Args in declaration order. Ids follow the declared argument ids.
	Args []*Field

	// ReturnType is the declared return type; Void is permitted here and
	// only here.
	ReturnType Type

	// Exceptions are the declared throws clauses in declaration order.
	Exceptions []*Field

	// Oneway marks a fire-and-forget call with no reply on the wire.
	Oneway bool

	// Doc is the documentation comment, if any.
	Doc string
}

// ReturnsVoid reports whether the function has no return value.
func (f *FunctionDef) ReturnsVoid() bool {
	return f.ReturnType == nil || TrueType(f.ReturnType).Kind() == KindVoid
}

// ServiceDef is a named service interface. A service may extend a single
// parent; the chain is acyclic.
type ServiceDef struct {
	Name string `validate:"required"`

	// Parent is the extended service, or nil.
	Parent *ServiceDef

	// Functions in declaration order.
	Functions []*FunctionDef

	// Doc is the documentation comment, if any.
	Doc string
}

// AllFunctions returns the service's functions together with every inherited
// function, child-first along the parent chain.
func (s *ServiceDef) AllFunctions() []*FunctionDef {
	var all []*FunctionDef
	for svc := s; svc != nil; svc = svc.Parent {
		all = append(all, svc.Functions...)
	}
	return all
}
