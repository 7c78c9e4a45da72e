package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/XtremeTHN/nxroms/internal/config"
	"github.com/XtremeTHN/nxroms/pkg/container"
	"github.com/XtremeTHN/nxroms/pkg/extract"
	"github.com/XtremeTHN/nxroms/pkg/keys"
	"github.com/XtremeTHN/nxroms/pkg/readable"
)

func main() {
	keysPath := flag.String("k", "", "Path to prod.keys")
	configPath := flag.String("config", "", "Path to an optional YAML config file")
	outDir := flag.String("o", "", "Output directory (created if missing; no files are written to it)")
	verbose := flag.Bool("v", false, "Verbose output")
	flag.Parse()

	cfg := &config.Config{}
	if *configPath != "" {
		loaded, err := config.Load(*configPath)
		if err != nil {
			fmt.Printf("Error loading config: %v\n", err)
			os.Exit(1)
		}
		cfg = loaded
	}

	if *keysPath == "" {
		*keysPath = cfg.KeysFile
	}
	if *outDir == "" {
		*outDir = cfg.OutputDir
	}
	verboseSet := false
	flag.Visit(func(f *flag.Flag) {
		if f.Name == "v" {
			verboseSet = true
		}
	})
	if !verboseSet {
		*verbose = cfg.Verbose
	}

	fmt.Println("nxroms")

	var store *keys.Store
	var err error
	if *keysPath != "" {
		store, err = keys.Load(*keysPath)
	} else {
		store, err = keys.LoadDefault()
	}
	if err != nil {
		fmt.Printf("Error loading keys: %v\n", err)
		fmt.Println("Please provide a key file with -k or place one at ~/.switch/prod.keys")
		os.Exit(1)
	}

	args := flag.Args()
	if len(args) == 0 {
		fmt.Println("Usage: nxroms [options] <file>")
		return
	}

	if err := run(args[0], store, *outDir, *verbose); err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}
}

func run(inputFile string, store *keys.Store, outDir string, verbose bool) error {
	f, err := readable.OpenFile(inputFile)
	if err != nil {
		return fmt.Errorf("opening file: %w", err)
	}
	defer f.Close()

	var source extract.NCASource
	switch strings.ToLower(filepath.Ext(inputFile)) {
	case ".nsp":
		nsp, err := container.OpenNSP(f)
		if err != nil {
			return fmt.Errorf("parsing nsp: %w", err)
		}
		if verbose {
			fmt.Printf("Found NSP with %d entries.\n", len(nsp.Entries()))
		}
		source = extract.FromNSP(nsp)
	case ".xci":
		xci, err := container.OpenXCI(f)
		if err != nil {
			return fmt.Errorf("parsing xci: %w", err)
		}
		if verbose {
			fmt.Printf("Found XCI, card size %s, partitions: %v\n", xci.CardSize, xci.PartitionNames())
		}
		secure, ok := xci.Partition("secure")
		if !ok {
			return fmt.Errorf("xci has no secure partition")
		}
		source = extract.FromPFS0(secure)
	default:
		return fmt.Errorf("unrecognized extension %q, expected .nsp or .xci", filepath.Ext(inputFile))
	}

	header, body, err := extract.FindControlNCA(source, store)
	if err != nil {
		return fmt.Errorf("locating control nca: %w", err)
	}

	meta, err := extract.ReadNACP(header, body)
	if err != nil {
		return fmt.Errorf("reading control.nacp: %w", err)
	}

	fmt.Printf("Version: %s\n", meta.Version)
	for _, t := range meta.Titles {
		fmt.Printf("  %s - %s\n", t.Name, t.Publisher)
	}

	if outDir != "" {
		if err := os.MkdirAll(outDir, 0o755); err != nil {
			return fmt.Errorf("creating output dir: %w", err)
		}
	}

	return nil
}
