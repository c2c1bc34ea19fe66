// Command log-to-json converts an obstacle-avoidance log into the
// scans.json sample array served by scan-server, and can store the result
// as a run in the run database.
//
// Usage:
//
//	log-to-json [-o scans.json] [-db runs.db [-import name]] <logfile>
package main

import (
	"bytes"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/banshee-data/scanview/internal/db"
	"github.com/banshee-data/scanview/internal/fsutil"
	"github.com/banshee-data/scanview/internal/logconv"
	"github.com/banshee-data/scanview/internal/scan"
	"github.com/banshee-data/scanview/internal/security"
	"github.com/banshee-data/scanview/internal/version"
)

var (
	output      = flag.String("o", "scans.json", "Output file, or - for stdout")
	dbPath      = flag.String("db", "", "Run database to import into")
	importName  = flag.String("import", "", "Run name for the import (default: log file name)")
	showVersion = flag.Bool("version", false, "Print version and exit")
)

type options struct {
	input      string
	output     string
	dbPath     string
	importName string
}

// convert parses opts.input and writes the JSON to opts.output.
func convert(opts options, fsys fsutil.FileSystem, stdout io.Writer) (scan.Sequence, error) {
	data, err := fsys.ReadFile(opts.input)
	if err != nil {
		return nil, fmt.Errorf("read log: %w", err)
	}

	var buf bytes.Buffer
	seq, err := logconv.Convert(bytes.NewReader(data), &buf)
	if err != nil {
		return nil, fmt.Errorf("convert %s: %w", opts.input, err)
	}

	if opts.output == "-" {
		if _, err := buf.WriteTo(stdout); err != nil {
			return nil, fmt.Errorf("write output: %w", err)
		}
		return seq, nil
	}
	if err := security.ValidateExportPath(opts.output); err != nil {
		return nil, fmt.Errorf("invalid output path: %w", err)
	}
	if err := fsys.WriteFile(opts.output, buf.Bytes(), 0644); err != nil {
		return nil, fmt.Errorf("write output: %w", err)
	}
	return seq, nil
}

// importRun stores seq as a new run.
func importRun(opts options, seq scan.Sequence) (*db.Run, error) {
	database, err := db.NewDB(opts.dbPath)
	if err != nil {
		return nil, fmt.Errorf("open run database: %w", err)
	}
	defer database.Close()

	name := opts.importName
	if name == "" {
		base := filepath.Base(opts.input)
		name = strings.TrimSuffix(base, filepath.Ext(base))
	}
	return database.CreateRun(name, opts.input, seq)
}

func main() {
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "usage: log-to-json [flags] <logfile>\n")
		flag.PrintDefaults()
	}
	flag.Parse()

	if *showVersion {
		fmt.Println(version.String())
		return
	}
	if flag.NArg() != 1 {
		flag.Usage()
		os.Exit(2)
	}

	opts := options{
		input:      flag.Arg(0),
		output:     *output,
		dbPath:     *dbPath,
		importName: *importName,
	}
	seq, err := convert(opts, fsutil.OSFileSystem{}, os.Stdout)
	if err != nil {
		log.Fatalf("%v", err)
	}
	if opts.output != "-" {
		log.Printf("wrote %d samples to %s", len(seq), opts.output)
	}

	if opts.dbPath != "" {
		run, err := importRun(opts, seq)
		if err != nil {
			log.Fatalf("import failed: %v", err)
		}
		log.Printf("imported run %s (%q, %d samples)", run.ID, run.Name, run.SampleCount)
	}
}
