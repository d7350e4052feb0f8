package main

import (
	"flag"
	"log"
	"os"

	vexc "github.com/vexlang/vexc"
	"github.com/vexlang/vexc/internal/config"
)

const defaultWritePermission = 0644 // -rw-r--r--

func main() {
	var (
		sourcePath          = flag.String("input", "", "Path to the Vex source file")
		outputPath          = flag.String("output", "/dev/stdout", "Path to the generated Go file")
		packageName         = flag.String("package", "main", "Package name of the generated Go file")
		removeRuntimeLib    = flag.Bool("remove-runtime-lib", false, "Splice the runtime ABI into the output instead of importing it")
		optimizeConstants   = flag.Bool("optimize-constants", true, "Fold compile-time-constant expressions before emission")
		tabWidth            = flag.Int("tab-width", 4, "Columns a tab character counts for when measuring indentation")
	)
	flag.Parse()

	if *sourcePath == "" {
		log.Fatal("Vex source file not informed")
	}

	source, err := os.ReadFile(*sourcePath)
	if err != nil {
		log.Fatalf("Can't read source file: %s", err.Error())
	}

	cfg := config.New()
	cfg.SetString("emit.package_name", *packageName)
	cfg.SetBool("emit.remove_runtime_lib", *removeRuntimeLib)
	cfg.SetBool("emit.optimize_constants", *optimizeConstants)
	cfg.SetInt("lexer.tab_width", *tabWidth)

	out, err := vexc.Compile(source, cfg)
	if err != nil {
		log.Fatalf("Can't compile %s: %s", *sourcePath, err.Error())
	}

	if err := os.WriteFile(*outputPath, []byte(out), defaultWritePermission); err != nil {
		log.Fatalf("Can't write output: %s", err.Error())
	}
}
