package lang

import (
	"github.com/smacker/go-tree-sitter/c"
	"github.com/smacker/go-tree-sitter/cpp"
)

func init() {
	Languages["cpp"] = &Language{
		Name: "cpp",
		Extensions: []string{
			".h", ".hh", ".hpp", ".hxx", ".h++", ".inl", ".ipp", ".tpp",
			".ixx", ".cppm", ".ccm", ".cxxm", ".c++m",
			".cc", ".cpp", ".cxx", ".c++",
		},
		lang: cpp.GetLanguage(),
	}
	// Plain C sources only. Headers are parsed as C++ because the C++
	// grammar accepts C declarations and .h is shared by both.
	Languages["c"] = &Language{
		Name:       "c",
		Extensions: []string{".c"},
		lang:       c.GetLanguage(),
	}
}
