package sast

import (
	"fmt"
	"math/big"
	"strings"
)

// Type is the specification-language view of a host type. Equality is
// structural; user-defined types compare by declaration id.
type Type interface {
	String() string
	isType()
}

// IntType covers intN/uintN for every solc bit width, plus the
// unbounded literal type used before promotion (Bits == 0).
type IntType struct {
	Signed bool
	Bits   int
}

type AddressType struct {
	Payable bool
}

type BoolType struct{}

type StringType struct{}

// BytesType is dynamic "bytes"; FixedBytesType is bytesN.
type BytesType struct{}

type FixedBytesType struct {
	Size int
}

type ArrayType struct {
	Elem Type
	// Size is nil for dynamic arrays.
	Size *big.Int
}

type MappingType struct {
	Key   Type
	Value Type
}

type TupleType struct {
	Elements []Type
}

type UserDefinedKind string

const (
	ContractKind UserDefinedKind = "contract"
	StructKind   UserDefinedKind = "struct"
	EnumKind     UserDefinedKind = "enum"
)

// UserDefinedType names a contract, struct or enum by its host
// declaration id, so two mentions of the same definition compare equal
// regardless of spelling.
type UserDefinedType struct {
	Kind UserDefinedKind
	Name string
	Decl int
}

type FunctionType struct {
	Params  []Type
	Returns []Type
}

// TypeOfType is the meta-type of a type expression in type-of-type
// positions, e.g. the callee of a cast.
type TypeOfType struct {
	Inner Type
}

func (*IntType) isType()         {}
func (*AddressType) isType()     {}
func (*BoolType) isType()        {}
func (*StringType) isType()      {}
func (*BytesType) isType()       {}
func (*FixedBytesType) isType()  {}
func (*ArrayType) isType()       {}
func (*MappingType) isType()     {}
func (*TupleType) isType()       {}
func (*UserDefinedType) isType() {}
func (*FunctionType) isType()    {}
func (*TypeOfType) isType()      {}

func (t *IntType) String() string {
	if t.Bits == 0 {
		if t.Signed {
			return "int_const"
		}
		return "uint_const"
	}
	if t.Signed {
		return fmt.Sprintf("int%d", t.Bits)
	}
	return fmt.Sprintf("uint%d", t.Bits)
}

func (t *AddressType) String() string {
	if t.Payable {
		return "address payable"
	}
	return "address"
}

func (*BoolType) String() string   { return "bool" }
func (*StringType) String() string { return "string" }
func (*BytesType) String() string  { return "bytes" }

func (t *FixedBytesType) String() string { return fmt.Sprintf("bytes%d", t.Size) }

func (t *ArrayType) String() string {
	if t.Size == nil {
		return t.Elem.String() + "[]"
	}
	return fmt.Sprintf("%s[%s]", t.Elem.String(), t.Size.String())
}

func (t *MappingType) String() string {
	return fmt.Sprintf("mapping(%s => %s)", t.Key.String(), t.Value.String())
}

func (t *TupleType) String() string {
	parts := make([]string, len(t.Elements))
	for i, e := range t.Elements {
		parts[i] = e.String()
	}
	return "tuple(" + strings.Join(parts, ",") + ")"
}

func (t *UserDefinedType) String() string {
	return fmt.Sprintf("%s %s", t.Kind, t.Name)
}

func (t *FunctionType) String() string {
	params := make([]string, len(t.Params))
	for i, p := range t.Params {
		params[i] = p.String()
	}
	rets := make([]string, len(t.Returns))
	for i, r := range t.Returns {
		rets[i] = r.String()
	}
	s := "function (" + strings.Join(params, ",") + ")"
	if len(rets) > 0 {
		s += " returns (" + strings.Join(rets, ",") + ")"
	}
	return s
}

func (t *TypeOfType) String() string {
	return "type(" + t.Inner.String() + ")"
}

// TypesEqual compares two spec types structurally.
func TypesEqual(a, b Type) bool {
	switch at := a.(type) {
	case *IntType:
		bt, ok := b.(*IntType)
		return ok && at.Signed == bt.Signed && at.Bits == bt.Bits
	case *AddressType:
		bt, ok := b.(*AddressType)
		return ok && at.Payable == bt.Payable
	case *BoolType:
		_, ok := b.(*BoolType)
		return ok
	case *StringType:
		_, ok := b.(*StringType)
		return ok
	case *BytesType:
		_, ok := b.(*BytesType)
		return ok
	case *FixedBytesType:
		bt, ok := b.(*FixedBytesType)
		return ok && at.Size == bt.Size
	case *ArrayType:
		bt, ok := b.(*ArrayType)
		if !ok || !TypesEqual(at.Elem, bt.Elem) {
			return false
		}
		if (at.Size == nil) != (bt.Size == nil) {
			return false
		}
		return at.Size == nil || at.Size.Cmp(bt.Size) == 0
	case *MappingType:
		bt, ok := b.(*MappingType)
		return ok && TypesEqual(at.Key, bt.Key) && TypesEqual(at.Value, bt.Value)
	case *TupleType:
		bt, ok := b.(*TupleType)
		if !ok || len(at.Elements) != len(bt.Elements) {
			return false
		}
		for i := range at.Elements {
			if !TypesEqual(at.Elements[i], bt.Elements[i]) {
				return false
			}
		}
		return true
	case *UserDefinedType:
		bt, ok := b.(*UserDefinedType)
		return ok && at.Kind == bt.Kind && at.Decl == bt.Decl
	case *FunctionType:
		bt, ok := b.(*FunctionType)
		if !ok || len(at.Params) != len(bt.Params) || len(at.Returns) != len(bt.Returns) {
			return false
		}
		for i := range at.Params {
			if !TypesEqual(at.Params[i], bt.Params[i]) {
				return false
			}
		}
		for i := range at.Returns {
			if !TypesEqual(at.Returns[i], bt.Returns[i]) {
				return false
			}
		}
		return true
	case *TypeOfType:
		bt, ok := b.(*TypeOfType)
		return ok && TypesEqual(at.Inner, bt.Inner)
	}
	return false
}

// IsNumeric reports whether t participates in arithmetic promotion.
func IsNumeric(t Type) bool {
	_, ok := t.(*IntType)
	return ok
}

// PromoteInts picks the wider of two integer types. Mixed signedness
// has no promotion and returns nil.
func PromoteInts(a, b *IntType) *IntType {
	if a.Bits != 0 && b.Bits != 0 && a.Signed != b.Signed {
		return nil
	}
	// Constants adopt the sized operand's type.
	if a.Bits == 0 {
		return b
	}
	if b.Bits == 0 {
		return a
	}
	if a.Bits >= b.Bits {
		return a
	}
	return b
}
