package schema

import (
	"fmt"

	"github.com/go-playground/validator/v10"
)

// Const is a named top-level constant declaration.
type Const struct {
	Name  string `validate:"required"`
	Type  Type
	Value *ConstValue
}

// Schema is the root of the resolved model for one program: every named
// declaration the generator will walk, in declaration order.
type Schema struct {
	// Name is the program name; it becomes the generated package name.
	Name string `validate:"required"`

	Typedefs []*TypedefDef
	Enums    []*EnumDef
	Structs  []*StructDef
	Consts   []*Const
	Services []*ServiceDef
}

// FindStruct looks up a struct or exception by name. Returns nil if not found.
func (s *Schema) FindStruct(name string) *StructDef {
	for _, sd := range s.Structs {
		if sd.Name == name {
			return sd
		}
	}
	return nil
}

// FindEnum looks up an enum by name. Returns nil if not found.
func (s *Schema) FindEnum(name string) *EnumDef {
	for _, e := range s.Enums {
		if e.Name == name {
			return e
		}
	}
	return nil
}

// FindService looks up a service by name. Returns nil if not found.
func (s *Schema) FindService(name string) *ServiceDef {
	for _, svc := range s.Services {
		if svc.Name == name {
			return svc
		}
	}
	return nil
}

// ValidationError is a schema structural error.
type ValidationError struct {
	Code    string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

var structValidator = validator.New(validator.WithRequiredStructEnabled())

// Validate checks the schema for structural issues. It returns all problems
// found, not just the first. Inheritance cycles are reported before any
// per-declaration checks so later passes can assume an acyclic chain.
func (s *Schema) Validate() []error {
	var errs []error

	if cycleErrs := s.detectServiceCycles(); len(cycleErrs) > 0 {
		for _, e := range cycleErrs {
			errs = append(errs, e)
		}
		return errs
	}

	if err := structValidator.Struct(s); err != nil {
		errs = append(errs, &ValidationError{
			Code:    "invalid_declaration",
			Message: err.Error(),
		})
	}

	seenTypes := make(map[string]bool)
	checkName := func(kind, name string) {
		if name == "" {
			return
		}
		if seenTypes[name] {
			errs = append(errs, &ValidationError{
				Code:    "duplicate_type",
				Message: fmt.Sprintf("duplicate %s name: %s", kind, name),
			})
		}
		seenTypes[name] = true
	}
	for _, td := range s.Typedefs {
		checkName("typedef", td.Name)
	}
	for _, e := range s.Enums {
		checkName("enum", e.Name)
		seenMembers := make(map[string]bool)
		for _, m := range e.Members {
			if seenMembers[m.Name] {
				errs = append(errs, &ValidationError{
					Code:    "duplicate_enum_member",
					Message: fmt.Sprintf("enum %s: duplicate member %s", e.Name, m.Name),
				})
			}
			seenMembers[m.Name] = true
		}
	}
	for _, sd := range s.Structs {
		checkName(sd.StructKind.String(), sd.Name)
		errs = append(errs, validateFieldIDs(sd)...)
	}

	for _, svc := range s.Services {
		seenFuncs := make(map[string]string)
		for chain := svc; chain != nil; chain = chain.Parent {
			for _, fn := range chain.Functions {
				if owner, ok := seenFuncs[fn.Name]; ok {
					errs = append(errs, &ValidationError{
						Code: "duplicate_function",
						Message: fmt.Sprintf("service %s: function %s collides with %s.%s",
							svc.Name, fn.Name, owner, fn.Name),
					})
				}
				seenFuncs[fn.Name] = chain.Name
			}
		}
	}

	return errs
}

// validateFieldIDs checks that field ids are unique within a struct.
func validateFieldIDs(sd *StructDef) []error {
	var errs []error
	seen := make(map[int16]string)
	for _, f := range sd.Fields {
		if prev, ok := seen[f.ID]; ok {
			errs = append(errs, &ValidationError{
				Code: "duplicate_field_id",
				Message: fmt.Sprintf("%s %s: field id %d used by both %s and %s",
					sd.StructKind, sd.Name, f.ID, prev, f.Name),
			})
		}
		seen[f.ID] = f.Name
	}
	return errs
}

// detectServiceCycles checks for cycles in service inheritance.
func (s *Schema) detectServiceCycles() []*ValidationError {
	var errs []*ValidationError
	for _, svc := range s.Services {
		slow, fast := svc, svc.Parent
		for fast != nil && fast.Parent != nil {
			if slow == fast {
				errs = append(errs, &ValidationError{
					Code:    "circular_inheritance",
					Message: "circular service inheritance involving " + svc.Name,
				})
				break
			}
			slow = slow.Parent
			fast = fast.Parent.Parent
		}
	}
	return errs
}
