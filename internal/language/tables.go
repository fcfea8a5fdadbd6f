package language

// genericDelimiters is the shared punctuation set used by the generic
// fallback profile and as the base for most language tables.
const genericDelimiters = "+-*/%=<>!&|^~(){}[],.;:"

// defaultSpecialSuffixes are the structural trailing sequences bracket-based
// languages trigger on, ordered longest-first.
var defaultSpecialSuffixes = []string{"()", "{}", "[]", "(", ")", "{", "}", "[", "]", ":"}

// profileSpec declares one language's tables. Resolution is data-driven;
// there is no per-language type. A nil special list means the default
// bracket set.
type profileSpec struct {
	keywords   []string
	delimiters string
	special    []string
	aliases    []string
}

var profileSpecs = map[string]profileSpec{
	"go": {
		keywords: []string{
			"break", "case", "chan", "const", "continue", "default", "defer",
			"else", "fallthrough", "for", "func", "go", "goto", "if", "import",
			"interface", "map", "package", "range", "return", "select",
			"struct", "switch", "type", "var",
		},
		delimiters: genericDelimiters,
	},
	"python": {
		keywords: []string{
			"and", "as", "assert", "async", "await", "break", "class",
			"continue", "def", "del", "elif", "else", "except", "finally",
			"for", "from", "global", "if", "import", "in", "is", "lambda",
			"nonlocal", "not", "or", "pass", "raise", "return", "try",
			"while", "with", "yield",
		},
		delimiters: genericDelimiters + "@",
	},
	"javascript": {
		keywords: []string{
			"async", "await", "break", "case", "catch", "class", "const",
			"continue", "debugger", "default", "delete", "do", "else",
			"export", "extends", "finally", "for", "function", "if", "import",
			"in", "instanceof", "let", "new", "of", "return", "static",
			"super", "switch", "this", "throw", "try", "typeof", "var",
			"void", "while", "with", "yield",
		},
		delimiters: genericDelimiters + "?",
		aliases:    []string{"javascriptreact", "jsx"},
	},
	"typescript": {
		keywords: []string{
			"abstract", "any", "as", "async", "await", "break", "case",
			"catch", "class", "const", "continue", "declare", "default",
			"delete", "do", "else", "enum", "export", "extends", "finally",
			"for", "function", "if", "implements", "import", "in",
			"instanceof", "interface", "is", "keyof", "let", "namespace",
			"new", "of", "private", "protected", "public", "readonly",
			"return", "satisfies", "static", "super", "switch", "this",
			"throw", "try", "type", "typeof", "var", "void", "while",
			"yield",
		},
		delimiters: genericDelimiters + "?",
		aliases:    []string{"typescriptreact", "tsx"},
	},
	"java": {
		keywords: []string{
			"abstract", "assert", "boolean", "break", "byte", "case", "catch",
			"char", "class", "const", "continue", "default", "do", "double",
			"else", "enum", "extends", "final", "finally", "float", "for",
			"if", "implements", "import", "instanceof", "int", "interface",
			"long", "native", "new", "package", "private", "protected",
			"public", "record", "return", "short", "static", "strictfp",
			"super", "switch", "synchronized", "this", "throw", "throws",
			"transient", "try", "var", "void", "volatile", "while",
		},
		delimiters: genericDelimiters + "@?",
	},
	"c": {
		keywords: []string{
			"auto", "break", "case", "char", "const", "continue", "default",
			"do", "double", "else", "enum", "extern", "float", "for", "goto",
			"if", "inline", "int", "long", "register", "restrict", "return",
			"short", "signed", "sizeof", "static", "struct", "switch",
			"typedef", "union", "unsigned", "void", "volatile", "while",
		},
		delimiters: genericDelimiters + "#?",
	},
	"cpp": {
		keywords: []string{
			"auto", "bool", "break", "case", "catch", "class", "const",
			"constexpr", "continue", "decltype", "default", "delete", "do",
			"else", "enum", "explicit", "extern", "final", "for", "friend",
			"if", "inline", "mutable", "namespace", "new", "noexcept",
			"nullptr", "operator", "override", "private", "protected",
			"public", "return", "sizeof", "static", "struct", "switch",
			"template", "this", "throw", "try", "typedef", "typename",
			"union", "using", "virtual", "void", "volatile", "while",
		},
		delimiters: genericDelimiters + "#?",
		aliases:    []string{"c++"},
	},
	"csharp": {
		keywords: []string{
			"abstract", "as", "async", "await", "base", "bool", "break",
			"case", "catch", "class", "const", "continue", "default",
			"delegate", "do", "else", "enum", "event", "explicit", "extern",
			"finally", "fixed", "for", "foreach", "goto", "if", "implicit",
			"in", "interface", "internal", "is", "lock", "namespace", "new",
			"operator", "out", "override", "params", "private", "protected",
			"public", "readonly", "record", "ref", "return", "sealed",
			"sizeof", "static", "struct", "switch", "this", "throw", "try",
			"typeof", "unsafe", "using", "var", "virtual", "void",
			"volatile", "while",
		},
		delimiters: genericDelimiters + "@?",
	},
	"rust": {
		keywords: []string{
			"as", "async", "await", "break", "const", "continue", "crate",
			"dyn", "else", "enum", "extern", "fn", "for", "if", "impl", "in",
			"let", "loop", "match", "mod", "move", "mut", "pub", "ref",
			"return", "self", "static", "struct", "trait", "type", "unsafe",
			"use", "where", "while",
		},
		delimiters: genericDelimiters + "#?'",
	},
	"ruby": {
		keywords: []string{
			"alias", "and", "begin", "break", "case", "class", "def",
			"defined?", "do", "else", "elsif", "end", "ensure", "for", "if",
			"in", "module", "next", "not", "or", "redo", "rescue", "retry",
			"return", "self", "super", "then", "unless", "until", "when",
			"while", "yield",
		},
		delimiters: genericDelimiters + "@?",
	},
	"php": {
		keywords: []string{
			"abstract", "and", "array", "as", "break", "callable", "case",
			"catch", "class", "clone", "const", "continue", "declare",
			"default", "do", "echo", "else", "elseif", "enum", "extends",
			"final", "finally", "fn", "for", "foreach", "function", "global",
			"if", "implements", "include", "instanceof", "interface",
			"match", "namespace", "new", "or", "print", "private",
			"protected", "public", "readonly", "require", "return", "static",
			"switch", "throw", "trait", "try", "use", "var", "while", "yield",
		},
		delimiters: genericDelimiters + "$@?",
	},
	"kotlin": {
		keywords: []string{
			"abstract", "as", "break", "by", "catch", "class", "companion",
			"const", "continue", "data", "do", "else", "enum", "finally",
			"for", "fun", "if", "import", "in", "init", "interface",
			"internal", "is", "lateinit", "object", "open", "override",
			"package", "private", "protected", "public", "return", "sealed",
			"suspend", "throw", "try", "typealias", "val", "var", "when",
			"while",
		},
		delimiters: genericDelimiters + "@?",
	},
	"scala": {
		keywords: []string{
			"abstract", "case", "catch", "class", "def", "do", "else",
			"enum", "extends", "final", "finally", "for", "given", "if",
			"implicit", "import", "lazy", "match", "new", "object",
			"override", "package", "private", "protected", "return",
			"sealed", "then", "throw", "trait", "try", "type", "using",
			"val", "var", "while", "with", "yield",
		},
		delimiters: genericDelimiters + "@?",
	},
	"shellscript": {
		keywords: []string{
			"case", "do", "done", "elif", "else", "esac", "fi", "for",
			"function", "if", "in", "select", "then", "until", "while",
		},
		delimiters: genericDelimiters + "$#",
		aliases:    []string{"sh", "bash", "zsh"},
	},
	"sql": {
		keywords: []string{
			"alter", "and", "as", "between", "by", "case", "create",
			"delete", "distinct", "drop", "exists", "from", "group",
			"having", "in", "insert", "into", "join", "like", "limit",
			"not", "on", "or", "order", "select", "set", "table", "union",
			"update", "values", "where",
		},
		delimiters: genericDelimiters,
		// Braces, brackets and colons are not SQL structure; only
		// parentheses open a completion site.
		special: []string{"()", "(", ")"},
	},
}

// languageAliases maps alternate editor language ids onto canonical table
// keys. Built once at init from the alias lists above.
var languageAliases = func() map[string]string {
	m := make(map[string]string)
	for id, spec := range profileSpecs {
		for _, alias := range spec.aliases {
			m[alias] = id
		}
	}
	return m
}()
