package main

import (
	"encoding/json"
	"io"
	"io/ioutil"
	"os"

	"github.com/ztrue/tracerr"

	"github.com/pontaoski/van/ast"
	"github.com/pontaoski/van/semantics"
)

type typeInfo struct {
	Package  string            `json:"package,omitempty"`
	Bindings map[string]string `json:"bindings"`
	Structs  map[string]string `json:"structs,omitempty"`
}

func collectTypeInfo(pkg string, v *semantics.Visitor) typeInfo {
	t := typeInfo{
		Package:  pkg,
		Bindings: map[string]string{},
		Structs:  map[string]string{},
	}

	for name, typ := range v.Globals() {
		t.Bindings[name] = ast.TypeString(typ)
	}

	aliases := v.TypeTab().Root()
	for _, name := range aliases.Aliases() {
		typ, _ := aliases.GetAlias(name)
		if st, ok := typ.(ast.StructType); ok {
			t.Structs[name] = ast.TypeString(st)
		}
	}

	return t
}

func encodeTypeInfo(w io.Writer, t typeInfo) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return tracerr.Wrap(enc.Encode(t))
}

func writeTypeInfo(path string, t typeInfo) error {
	fi, err := os.Create(path)
	if err != nil {
		return tracerr.Wrap(err)
	}
	defer fi.Close()

	return encodeTypeInfo(fi, t)
}

func getTypeInfoFromFile(path string) (t typeInfo, err error) {
	data, err := ioutil.ReadFile(path)
	if err != nil {
		return typeInfo{}, tracerr.Wrap(err)
	}

	err = json.Unmarshal(data, &t)
	return t, tracerr.Wrap(err)
}
