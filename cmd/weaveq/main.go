// Command weaveq is the weave query engine's CLI driver (spec §6):
// -c <config>, -q <query> (- for stdin), -o <output> (- for stdout).
package main

import (
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/wbrown/weaveq/config"
	"github.com/wbrown/weaveq/lang"
	"github.com/wbrown/weaveq/resulthandler"
	"github.com/wbrown/weaveq/source/csvsrc"
	"github.com/wbrown/weaveq/source/jsonlsrc"
	"github.com/wbrown/weaveq/source/jsonsrc"
	"github.com/wbrown/weaveq/source/kvsrc"
	"github.com/wbrown/weaveq/source/registry"
	"github.com/wbrown/weaveq/wlog"
)

func main() {
	var configPath string
	var queryArg string
	var outputPath string
	var stream bool
	var table bool
	var debug bool

	flag.StringVar(&configPath, "c", "", "config file path")
	flag.StringVar(&queryArg, "q", "", "query text, or - to read from stdin")
	flag.StringVar(&outputPath, "o", "-", "output path, or - for stdout")
	flag.BoolVar(&stream, "stream", false, "consume sources in stream mode instead of batch")
	flag.BoolVar(&table, "table", false, "render results as a table instead of text lines")
	flag.BoolVar(&debug, "debug", false, "enable debug logging")
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s -q <query> [-c <config>] [-o <output>]\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
	}
	flag.Parse()

	if queryArg == "" {
		flag.Usage()
		os.Exit(1)
	}

	logger := wlog.Logger(wlog.Noop{})
	if debug {
		logger = wlog.NewConsole(os.Stderr, true)
	}

	queryText, err := readQuery(queryArg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error reading query: %v\n", err)
		os.Exit(1)
	}

	var cfg *config.Config
	if configPath != "" {
		cfg, err = config.Load(configPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "error loading config: %v\n", err)
			os.Exit(1)
		}
	}

	reg := registry.New()
	reg.Register("json", jsonsrc.NewBuilder(logger, cfg.OptionsFor("json")))
	reg.Register("jsonl", jsonlsrc.NewBuilder(cfg.OptionsFor("jsonl")))
	reg.Register("csv", csvsrc.NewBuilder(cfg.OptionsFor("csv")))
	reg.Register("kv", kvsrc.NewBuilder(cfg.OptionsFor("kv")))

	out, closeOut, err := openOutput(outputPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error opening output: %v\n", err)
		os.Exit(1)
	}
	defer closeOut()

	builder, err := lang.Compile(queryText, reg, logger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "compile error: %v\n", err)
		os.Exit(1)
	}

	if table {
		th := resulthandler.NewTable(out, true)
		builder.ResultHandler(th)
		if err := builder.Execute(stream); err != nil {
			fmt.Fprintf(os.Stderr, "execution error: %v\n", err)
			os.Exit(1)
		}
		th.Flush()
		return
	}

	tl := resulthandler.NewTextLine(out)
	builder.ResultHandler(tl)
	if err := builder.Execute(stream); err != nil {
		fmt.Fprintf(os.Stderr, "execution error: %v\n", err)
		os.Exit(1)
	}
}

func readQuery(arg string) (string, error) {
	if arg == "-" {
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			return "", err
		}
		return string(data), nil
	}
	if _, err := os.Stat(arg); err == nil {
		data, err := os.ReadFile(arg)
		if err != nil {
			return "", err
		}
		return string(data), nil
	}
	return arg, nil
}

func openOutput(path string) (io.Writer, func(), error) {
	if path == "-" || path == "" {
		return os.Stdout, func() {}, nil
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, nil, err
	}
	return f, func() { f.Close() }, nil
}
