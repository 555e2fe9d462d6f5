package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"syscall"

	"git.sr.ht/~sircmpwn/getopt"
	"github.com/fatih/color"

	"github.com/titivuk/apl/config"
	"github.com/titivuk/apl/history"
	"github.com/titivuk/apl/interpreter"
	"github.com/titivuk/apl/lexer"
	"github.com/titivuk/apl/repl"
	"github.com/titivuk/apl/server"
)

const version = "0.3.0"

const usage = `usage: apl [options] [file]

if no file is given an interactive session is started.

options:
  -c FILE    read settings from FILE [default=$HOME/.apl.yml]
  -e SOURCE  run SOURCE and exit
  -H FILE    record evaluated lines in the SQLite database FILE
  -s ADDR    serve sessions over HTTP on ADDR
  -n         disable colored output
  -v         show debug messages
  -V         print apl version (%q)
  -h         show this help
`

func main() {
	os.Exit(run(os.Args, os.Stdin, os.Stdout, os.Stderr))
}

type options struct {
	configPath  string
	historyPath string
	source      string
	addr        string
	noColor     bool
	verbose     bool
	file        string
}

func run(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	logger := log.New(stderr, "apl: ", log.LstdFlags)

	opts, optind, err := getopt.Getopts(args, "c:e:H:s:nvVh")
	if err != nil {
		fmt.Fprintln(stderr, err)
		fmt.Fprintf(stderr, usage, version)
		return 2
	}

	var o options
	for _, opt := range opts {
		switch opt.Option {
		case 'c':
			o.configPath = opt.Value
		case 'e':
			o.source = opt.Value
		case 'H':
			o.historyPath = opt.Value
		case 's':
			o.addr = opt.Value
		case 'n':
			o.noColor = true
		case 'v':
			o.verbose = true
		case 'V':
			fmt.Fprintln(stdout, version)
			return 0
		default: // case 'h':
			fmt.Fprintf(stdout, usage, version)
			return 0
		}
	}

	rest := args[optind:]
	if len(rest) > 1 {
		fmt.Fprintf(stderr, usage, version)
		return 2
	}
	if len(rest) == 1 {
		o.file = rest[0]
	}

	if o.configPath == "" {
		o.configPath = config.DefaultPath()
	}
	cfg, err := config.Load(o.configPath)
	if err != nil {
		logger.Println(err)
		return 1
	}

	debug := log.New(io.Discard, "", 0)
	if o.verbose || cfg.Verbose {
		debug = logger
	}
	if cfg.Path != "" {
		debug.Printf("loaded settings from %s", cfg.Path)
	}

	useColor := !o.noColor && cfg.UseColor(!color.NoColor)

	historyPath := cfg.History.Path
	if o.historyPath != "" {
		historyPath = o.historyPath
	}

	var hist *history.Log
	if historyPath != "" {
		hist, err = history.Open(historyPath)
		if err != nil {
			logger.Println(err)
			return 1
		}
		defer hist.Close()
		debug.Printf("recording history in %s", historyPath)
	}

	switch {
	case o.addr != "":
		cfg.Server.Addr = o.addr
		return serve(cfg, logger)
	case o.source != "":
		return runLines(interpreter.NewSession(), "", []string{o.source}, hist, stdout, stderr, useColor, logger)
	case o.file != "":
		lines, err := readLines(o.file)
		if err != nil {
			logger.Println(err)
			return 1
		}
		return runLines(interpreter.NewSession(), o.file, lines, hist, stdout, stderr, useColor, logger)
	}

	err = repl.Start(stdin, stdout, repl.Options{
		Prompt:       cfg.Prompt,
		Color:        useColor,
		History:      hist,
		HistoryLimit: cfg.History.Limit,
		Logger:       logger,
	})
	if err != nil {
		logger.Println(err)
		return 1
	}
	return 0
}

func serve(cfg *config.Config, logger *log.Logger) int {
	srv := server.New(cfg.Server, logger)

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigs
		logger.Println("shutting down")
		if err := srv.Shutdown(); err != nil {
			logger.Println(err)
		}
	}()

	if err := srv.ListenAndServe(); err != nil {
		logger.Printf("error in ListenAndServe: %v", err)
		return 1
	}
	return 0
}

func readLines(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	var lines []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		lines = append(lines, scanner.Text())
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}

	return lines, nil
}

// runLines evaluates lines in one session and stops at the first error.
// Blank lines are skipped but still counted for error positions.
func runLines(sess *interpreter.Session, name string, lines []string, hist *history.Log, stdout, stderr io.Writer, useColor bool, logger *log.Logger) int {
	red := color.New(color.FgRed)
	if useColor {
		red.EnableColor()
	} else {
		red.DisableColor()
	}

	for i, line := range lines {
		line = interpreter.TrimLine(line)
		if line == "" {
			continue
		}

		res, err := sess.Run(line)
		if err != nil {
			record(hist, line, err.Error(), false, logger)

			if name != "" {
				red.Fprintf(stderr, "%s:%d: %v\n", name, i+1, err)
			} else {
				red.Fprintln(stderr, err)
			}
			var lexErr *lexer.LexicalError
			if errors.As(err, &lexErr) {
				red.Fprintln(stderr, lexErr.Caret())
			}
			return 1
		}

		outcome := res.Value.Inspect()
		if res.Kind == interpreter.KindProgram {
			outcome = sess.Store().String()
		}
		record(hist, line, outcome, true, logger)
		fmt.Fprintln(stdout, outcome)
	}

	return 0
}

func record(hist *history.Log, source, outcome string, ok bool, logger *log.Logger) {
	if hist == nil {
		return
	}
	if err := hist.Record(source, outcome, ok); err != nil {
		logger.Println(err)
	}
}
