package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/yungbote/productgraph/internal/app"
	"github.com/yungbote/productgraph/internal/importers"
	"github.com/yungbote/productgraph/internal/platform/dbctx"
)

type paramList []string

func (l *paramList) String() string { return strings.Join(*l, ",") }
func (l *paramList) Set(v string) error {
	v = strings.TrimSpace(v)
	if v != "" {
		*l = append(*l, v)
	}
	return nil
}

func main() {
	var params paramList
	var name string
	var list bool
	flag.StringVar(&name, "importer", "yaml", "importer name")
	flag.Var(&params, "param", "importer parameter as key=value (repeatable)")
	flag.BoolVar(&list, "list", false, "print importers and their default parameters")
	flag.Parse()

	application, err := app.New()
	if err != nil {
		fmt.Printf("init app: %v\n", err)
		os.Exit(1)
	}
	defer application.Close()

	pm := application.Services.Products
	if list {
		for importer, defaults := range pm.Importers() {
			fmt.Printf("%s %v\n", importer, defaults)
		}
		return
	}

	p := importers.Parameters{}
	for _, kv := range params {
		key, value, ok := strings.Cut(kv, "=")
		if !ok {
			fmt.Printf("invalid -param %q, want key=value\n", kv)
			os.Exit(2)
		}
		p[strings.TrimSpace(key)] = strings.TrimSpace(value)
	}

	imported, err := pm.ImportTypes(dbctx.Context{Ctx: context.Background()}, name, p)
	if err != nil {
		fmt.Printf("import: %v\n", err)
		os.Exit(1)
	}
	for _, t := range imported {
		b := t.Base()
		fmt.Printf("imported %s %s id=%d\n", t.Kind(), b.Identity.String(), b.ID)
	}
}
