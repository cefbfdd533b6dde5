package types

var primitiveByName = map[string]Primitive{
	"string": String,
	"int":    Int,
	"bool":   Bool,
	"unit":   Unit,
}

// IsReservedTypeName reports whether name is reserved for built-in types.
func IsReservedTypeName(name string) bool {
	_, ok := primitiveByName[name]
	return ok
}

// LookupPrimitive returns the primitive type spelled name.
func LookupPrimitive(name string) (Primitive, bool) {
	p, ok := primitiveByName[name]
	return p, ok
}
