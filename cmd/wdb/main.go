package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/andreyvit/wdb"
	"github.com/andreyvit/wdb/server"
)

const helpMessage = `
wdb is a tiny nested document store with a binary snapshot format.

Usage: wdb [options] <command>

      -config     =string   TOML configuration file (serve only)
      -http       =string   Address for HTTP server, overrides config
      -o          =string   Output file for demo (default "test.database")
      -format     =string   Output format for dump: text, json, msgpack, binary
      -h, -help   (flag)    Show help message

Commands:

  serve                  Serve the world over HTTP until interrupted.
  demo                   Write the encoded sample world to the -o file.
  dump <file>            Decode a binary world file and print it.
`

var (
	showHelp    = flag.Bool("help", false, "")
	configPath  = flag.String("config", "", "")
	httpAddress = flag.String("http", "", "")
	outPath     = flag.String("o", "test.database", "")
	format      = flag.String("format", "text", "")
)

func usage() {
	fmt.Print(helpMessage)
}

func main() {
	flag.BoolVar(showHelp, "h", false, "Show help message")
	flag.Usage = usage
	flag.Parse()

	if *showHelp || flag.NArg() == 0 {
		flag.Usage()
		os.Exit(0)
	}

	var err error
	switch cmd := flag.Arg(0); cmd {
	case "serve":
		err = serve()
	case "demo":
		err = demo(*outPath)
	case "dump":
		if flag.NArg() != 2 {
			err = fmt.Errorf("dump requires a file name")
		} else {
			err = dump(flag.Arg(1), *format)
		}
	default:
		err = fmt.Errorf("unknown command %q", cmd)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "wdb: %v\n", err)
		os.Exit(1)
	}
}

func serve() error {
	cfg, err := server.LoadConfig(*configPath)
	if err != nil {
		return err
	}
	if *httpAddress != "" {
		cfg.Server.Address = *httpAddress
	}
	logger, closeLog, err := cfg.Logging.NewLogger(os.Stdout)
	if err != nil {
		return err
	}
	defer closeLog()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	srv, err := server.Open(ctx, cfg, logger)
	if err != nil {
		return err
	}
	return srv.Serve(ctx)
}

func demo(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	_, err = wdb.DemoWorld().WriteTo(f)
	if err != nil {
		f.Close()
		return err
	}
	if err := f.Sync(); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func dump(path, formatName string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()
	w, err := wdb.ReadWorld(f)
	if err != nil {
		return err
	}

	if formatName == "text" {
		fmt.Print(w.Dump(wdb.DumpAll))
		return nil
	}
	fm, err := wdb.ParseFormat(formatName)
	if err != nil {
		return err
	}
	out, err := w.Export(fm)
	if err != nil {
		return err
	}
	_, err = os.Stdout.Write(out)
	return err
}
