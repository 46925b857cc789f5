package specparse

import (
	"fmt"
	"math/big"
	"strings"

	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"

	"scribble/internal/sast"
)

// The host compiler reports resolved types as strings
// ("mapping(address => uint256)", "struct Vault.Position storage ref",
// "function (uint256) view returns (bool)"). This grammar rebuilds
// sast types from that external representation.

type typeStringNode struct {
	Base     *baseTypeNode      `@@`
	Suffixes []*arraySuffixNode `@@*`
	Location []string           `( @("memory" | "storage" | "calldata") @("ref" | "pointer" | "slice")? )?`
}

type baseTypeNode struct {
	Mapping    *mappingTypeNode    `  @@`
	Function   *functionTypeNode   `| @@`
	Tuple      *tupleTypeNode      `| @@`
	TypeOf     *typeOfNode         `| @@`
	IntConst   *intConstNode       `| @@`
	Named      *namedTypeNode      `| @@`
	Elementary *elementaryTypeNode `| @@`
}

type mappingTypeNode struct {
	Key   *typeStringNode `"mapping" "(" @@`
	Value *typeStringNode `"=>" @@ ")"`
}

type functionTypeNode struct {
	Params     []*typeStringNode `"function" "(" [ @@ { "," @@ } ] ")"`
	Mutability *string           `[ @("pure" | "view" | "payable" | "nonpayable") ]`
	Visibility *string           `[ @("external" | "internal") ]`
	Returns    []*typeStringNode `[ "returns" "(" @@ { "," @@ } ")" ]`
}

type tupleTypeNode struct {
	Elements []*typeStringNode `"tuple" "(" [ @@ { "," @@ } ] ")"`
}

type typeOfNode struct {
	Inner *typeStringNode `"type" "(" @@ ")"`
}

type intConstNode struct {
	Negative bool   `"int_const" [ @"-" ]`
	Digits   string `@Integer`
}

type namedTypeNode struct {
	Kind string `@("contract" | "struct" | "enum" | "library")`
	Name string `@(Ident { "." Ident })`
}

type elementaryTypeNode struct {
	Name    string `@Ident`
	Payable bool   `[ @"payable" ]`
}

type arraySuffixNode struct {
	Open   bool    `"["`
	Length *string `[ @Integer ]`
	Close  bool    `"]"`
}

var typeStringLexer = lexer.MustSimple([]lexer.SimpleRule{
	{Name: "Ident", Pattern: `[a-zA-Z_$][a-zA-Z0-9_$]*`},
	{Name: "Integer", Pattern: `[0-9]+`},
	{Name: "Arrow", Pattern: `=>`},
	{Name: "Punct", Pattern: `[()\[\],.\-]`},
	{Name: "Whitespace", Pattern: `[ \t]+`},
})

var typeStringParser = participle.MustBuild[typeStringNode](
	participle.Lexer(typeStringLexer),
	participle.Elide("Whitespace"),
	participle.UseLookahead(3),
)

// TypeResolver maps a named contract/struct/enum to its host
// declaration id, or a negative id when unknown.
type TypeResolver func(kind sast.UserDefinedKind, name string) int

// ParseTypeString rebuilds a sast type from a host-compiler type string.
func ParseTypeString(s string, resolve TypeResolver) (sast.Type, error) {
	node, err := typeStringParser.ParseString("", s)
	if err != nil {
		return nil, fmt.Errorf("malformed type string %q: %w", s, err)
	}
	return convertTypeString(node, resolve)
}

func convertTypeString(node *typeStringNode, resolve TypeResolver) (sast.Type, error) {
	t, err := convertBaseType(node.Base, resolve)
	if err != nil {
		return nil, err
	}
	for _, suffix := range node.Suffixes {
		arr := &sast.ArrayType{Elem: t}
		if suffix.Length != nil {
			size, ok := new(big.Int).SetString(*suffix.Length, 10)
			if !ok {
				return nil, fmt.Errorf("malformed array length %q", *suffix.Length)
			}
			arr.Size = size
		}
		t = arr
	}
	// Data location does not change the specification view of the type.
	return t, nil
}

func convertBaseType(node *baseTypeNode, resolve TypeResolver) (sast.Type, error) {
	switch {
	case node.Mapping != nil:
		key, err := convertTypeString(node.Mapping.Key, resolve)
		if err != nil {
			return nil, err
		}
		value, err := convertTypeString(node.Mapping.Value, resolve)
		if err != nil {
			return nil, err
		}
		return &sast.MappingType{Key: key, Value: value}, nil

	case node.Function != nil:
		fn := &sast.FunctionType{}
		for _, p := range node.Function.Params {
			t, err := convertTypeString(p, resolve)
			if err != nil {
				return nil, err
			}
			fn.Params = append(fn.Params, t)
		}
		for _, r := range node.Function.Returns {
			t, err := convertTypeString(r, resolve)
			if err != nil {
				return nil, err
			}
			fn.Returns = append(fn.Returns, t)
		}
		return fn, nil

	case node.Tuple != nil:
		tuple := &sast.TupleType{}
		for _, e := range node.Tuple.Elements {
			t, err := convertTypeString(e, resolve)
			if err != nil {
				return nil, err
			}
			tuple.Elements = append(tuple.Elements, t)
		}
		return tuple, nil

	case node.TypeOf != nil:
		inner, err := convertTypeString(node.TypeOf.Inner, resolve)
		if err != nil {
			return nil, err
		}
		return &sast.TypeOfType{Inner: inner}, nil

	case node.IntConst != nil:
		return &sast.IntType{Signed: node.IntConst.Negative}, nil

	case node.Named != nil:
		kind := sast.UserDefinedKind(node.Named.Kind)
		if node.Named.Kind == "library" {
			kind = sast.ContractKind
		}
		name := node.Named.Name
		// Qualified names resolve by their last segment.
		if idx := strings.LastIndex(name, "."); idx >= 0 {
			name = name[idx+1:]
		}
		decl := -1
		if resolve != nil {
			decl = resolve(kind, name)
		}
		return &sast.UserDefinedType{Kind: kind, Name: node.Named.Name, Decl: decl}, nil

	case node.Elementary != nil:
		if node.Elementary.Name == "address" {
			return &sast.AddressType{Payable: node.Elementary.Payable}, nil
		}
		if t := elementaryType(node.Elementary.Name); t != nil {
			return t, nil
		}
		return nil, fmt.Errorf("unknown elementary type %q", node.Elementary.Name)
	}
	return nil, fmt.Errorf("empty type string")
}
