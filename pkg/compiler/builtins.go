package compiler

// The resolver maps bare calls and method calls to fixed runtime entry
// points. Everything here is a static table: resolution either succeeds with
// one entry point or fails with a ResolutionError, never a silent no-op.

// builtinSpec describes one bare built-in function.
type builtinSpec struct {
	entry     string
	minArity  int
	maxArity  int // -1: variadic
	hasResult bool
	result    ValueKind // kind of the result, for receiver inference
}

var builtins = map[string]builtinSpec{
	"print": {entry: "print", minArity: 0, maxArity: -1},
	"len":   {entry: "len", minArity: 1, maxArity: 1, hasResult: true, result: KindNumber},
	"str":   {entry: "str", minArity: 1, maxArity: 1, hasResult: true, result: KindString},
	"int":   {entry: "int", minArity: 1, maxArity: 1, hasResult: true, result: KindNumber},
	"float": {entry: "float", minArity: 1, maxArity: 1, hasResult: true, result: KindNumber},
	"abs":   {entry: "abs", minArity: 1, maxArity: 1, hasResult: true, result: KindNumber},
	"min":   {entry: "min", minArity: 2, maxArity: 2, hasResult: true, result: KindNumber},
	"max":   {entry: "max", minArity: 2, maxArity: 2, hasResult: true, result: KindNumber},
	"input": {entry: "input", minArity: 0, maxArity: 1, hasResult: true, result: KindString},
}

// methodSpec describes one receiver method. arity counts the explicit
// arguments, not the receiver, which is always passed as the first operand.
type methodSpec struct {
	entry     string
	arity     int
	hasResult bool
	result    ValueKind
}

// listMethods route to the dynamic-array runtime contract.
var listMethods = map[string]methodSpec{
	"append": {entry: "array_push", arity: 1},
	"pop":    {entry: "array_pop", arity: 0, hasResult: true, result: KindUnknown},
	"insert": {entry: "array_insert", arity: 2},
	"clear":  {entry: "array_clear", arity: 0},
}

// stringMethods route to the string runtime contract.
var stringMethods = map[string]methodSpec{
	"upper": {entry: "str_upper", arity: 0, hasResult: true, result: KindString},
	"lower": {entry: "str_lower", arity: 0, hasResult: true, result: KindString},
	"strip": {entry: "str_strip", arity: 0, hasResult: true, result: KindString},
	"find":  {entry: "str_find", arity: 1, hasResult: true, result: KindNumber},
	"split": {entry: "str_split", arity: 1, hasResult: true, result: KindList},
}

// dictMethods route to the hash-map runtime contract.
var dictMethods = map[string]methodSpec{
	"keys":   {entry: "map_keys", arity: 0, hasResult: true, result: KindList},
	"values": {entry: "map_values", arity: 0, hasResult: true, result: KindList},
	"clear":  {entry: "map_clear", arity: 0},
}

// Entry points for operations the surface language spells as syntax rather
// than calls: literals and indexing.
const (
	entryArrayCreate = "array_create"
	entryArrayPush   = "array_push"
	entryArrayGet    = "array_get"
	entryArraySet    = "array_set"
	entryArrayLen    = "array_len"
	entryMapCreate   = "map_create"
	entryMapGet      = "map_get"
	entryMapSet      = "map_set"
	entryStrIndex    = "str_index"
)

// resolveBuiltin checks name and arity against the builtin table. Unknown
// names return (zero, false, nil) so the caller can try user functions;
// known names with a bad arity are a hard ResolutionError.
func resolveBuiltin(name string, argc, line, col int) (builtinSpec, bool, error) {
	spec, ok := builtins[name]
	if !ok {
		return builtinSpec{}, false, nil
	}
	if argc < spec.minArity {
		return builtinSpec{}, false, errResolve(line, col,
			"%s takes at least %d argument(s), got %d", name, spec.minArity, argc)
	}
	if spec.maxArity >= 0 && argc > spec.maxArity {
		return builtinSpec{}, false, errResolve(line, col,
			"%s takes at most %d argument(s), got %d", name, spec.maxArity, argc)
	}
	return spec, true, nil
}

// resolveMethod dispatches method on a receiver of the given kind. Ambiguous
// and unknown receivers fail: the resolver never guesses.
func resolveMethod(recv ValueKind, method string, argc, line, col int) (methodSpec, error) {
	var table map[string]methodSpec
	switch recv {
	case KindList:
		table = listMethods
	case KindString:
		table = stringMethods
	case KindDict:
		table = dictMethods
	case KindAmbiguous:
		return methodSpec{}, errResolve(line, col,
			"receiver of .%s() has conflicting inferred kinds; assign it a single kind first", method)
	default:
		return methodSpec{}, errResolve(line, col,
			"cannot infer receiver kind for .%s(); receiver is %s", method, recv)
	}
	spec, ok := table[method]
	if !ok {
		return methodSpec{}, errResolve(line, col, "unknown %s method %q", recv, method)
	}
	if argc != spec.arity {
		return methodSpec{}, errResolve(line, col,
			"%s.%s takes %d argument(s), got %d", recv, method, spec.arity, argc)
	}
	return spec, nil
}
