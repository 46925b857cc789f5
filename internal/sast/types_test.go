package sast

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStructuralTypeEquality(t *testing.T) {
	u256 := &IntType{Bits: 256}
	assert.True(t, TypesEqual(u256, &IntType{Bits: 256}))
	assert.False(t, TypesEqual(u256, &IntType{Bits: 128}))
	assert.False(t, TypesEqual(u256, &IntType{Signed: true, Bits: 256}))

	addr := &AddressType{}
	assert.True(t, TypesEqual(addr, &AddressType{}))
	assert.False(t, TypesEqual(addr, &AddressType{Payable: true}))

	m := &MappingType{Key: &AddressType{}, Value: u256}
	assert.True(t, TypesEqual(m, &MappingType{Key: &AddressType{}, Value: &IntType{Bits: 256}}))
	assert.False(t, TypesEqual(m, &MappingType{Key: &AddressType{}, Value: &BoolType{}}))

	fixed := &ArrayType{Elem: u256, Size: big.NewInt(3)}
	dyn := &ArrayType{Elem: u256}
	assert.False(t, TypesEqual(fixed, dyn))
	assert.True(t, TypesEqual(fixed, &ArrayType{Elem: &IntType{Bits: 256}, Size: big.NewInt(3)}))
}

func TestUserDefinedTypesCompareByDeclaration(t *testing.T) {
	a := &UserDefinedType{Kind: ContractKind, Name: "Token", Decl: 7}
	b := &UserDefinedType{Kind: ContractKind, Name: "Token_1", Decl: 7}
	c := &UserDefinedType{Kind: ContractKind, Name: "Token", Decl: 9}

	assert.True(t, TypesEqual(a, b), "renamed mentions of one declaration stay equal")
	assert.False(t, TypesEqual(a, c))
}

func TestIntegerPromotion(t *testing.T) {
	u8 := &IntType{Bits: 8}
	u256 := &IntType{Bits: 256}
	i128 := &IntType{Signed: true, Bits: 128}
	constant := &IntType{}

	assert.Equal(t, u256, PromoteInts(u8, u256))
	assert.Equal(t, u256, PromoteInts(u256, u8))
	assert.Nil(t, PromoteInts(u256, i128), "mixed signedness has no promotion")
	assert.Equal(t, u8, PromoteInts(constant, u8), "constants adopt the sized operand")
	assert.Equal(t, i128, PromoteInts(i128, constant))
}

func TestTypeStrings(t *testing.T) {
	assert.Equal(t, "uint256", (&IntType{Bits: 256}).String())
	assert.Equal(t, "int8", (&IntType{Signed: true, Bits: 8}).String())
	assert.Equal(t, "mapping(address => uint256)",
		(&MappingType{Key: &AddressType{}, Value: &IntType{Bits: 256}}).String())
	assert.Equal(t, "uint256[]", (&ArrayType{Elem: &IntType{Bits: 256}}).String())
	assert.Equal(t, "bytes32", (&FixedBytesType{Size: 32}).String())
}
