// Command adtgen turns sum declarations into marker-method Go code.
//
//	sum Expression = Block | Number | Call ;
//
// becomes an Expression interface with an is_Expression method, implemented
// by each listed type.
package main

import (
	"fmt"
	"io/ioutil"
	"os"
	"path/filepath"

	"github.com/alecthomas/participle"

	. "github.com/dave/jennifer/jen"
)

type SumDecls struct {
	Sums []*Sum `@@*`
}

type Sum struct {
	Name  string   `"sum" @Ident "="`
	Cases []string `@Ident ( "|" @Ident )* ";"`
}

func (s *SumDecls) check() error {
	seen := map[string]bool{}
	for _, sum := range s.Sums {
		if seen[sum.Name] {
			return fmt.Errorf("sum %s declared twice", sum.Name)
		}
		seen[sum.Name] = true

		cases := map[string]bool{}
		for _, c := range sum.Cases {
			if cases[c] {
				return fmt.Errorf("sum %s lists %s twice", sum.Name, c)
			}
			cases[c] = true
		}
	}
	return nil
}

func GenerateDecls(source, pkgname string, s *SumDecls) string {
	f := NewFile(pkgname)
	f.HeaderComment(fmt.Sprintf("Code generated by adtgen from %s. DO NOT EDIT.", source))

	for _, sum := range s.Sums {
		f.Type().Id(sum.Name).Interface(
			Id("is_" + sum.Name).Params(),
		)

		for _, c := range sum.Cases {
			f.Func().Params(Id(c)).Id("is_" + sum.Name).Params().Block()
		}
	}

	return fmt.Sprintf("%#v", f)
}

func main() {
	parser := participle.MustBuild(&SumDecls{})

	if len(os.Args) != 4 {
		fmt.Fprintln(os.Stderr, "usage: adtgen <in.adt> <out.go> <package>")
		os.Exit(2)
	}
	in := os.Args[1]
	out := os.Args[2]
	pkgname := os.Args[3]

	inData, err := ioutil.ReadFile(in)
	if err != nil {
		panic(err)
	}

	decls := SumDecls{}
	err = parser.ParseBytes(inData, &decls)
	if err != nil {
		panic(err)
	}
	if err := decls.check(); err != nil {
		panic(err)
	}

	err = ioutil.WriteFile(out, []byte(GenerateDecls(filepath.Base(in), pkgname, &decls)), 0o644)
	if err != nil {
		panic(err)
	}
}
