// Package repl implements the interactive read-eval-print loop.
package repl

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"log"
	"strconv"
	"strings"

	"github.com/fatih/color"
	"gopkg.in/yaml.v3"

	"github.com/titivuk/apl/ast"
	"github.com/titivuk/apl/history"
	"github.com/titivuk/apl/interpreter"
	"github.com/titivuk/apl/lexer"
)

const ExitCommand = "exit"

const helpText = `lines are programs (var x = 1; x = x + 1;) or single expressions (x * 2)
  :vars            print every variable as YAML
  :reset           forget every variable
  :tokens <src>    list the tokens of src
  :ast <src>       print the tree of src and its fingerprint
  :history [n]     show the last n evaluated lines
  :help            show this message
  exit             leave`

type Options struct {
	Prompt string
	Color  bool

	// History may be nil, lines are then not recorded.
	History      *history.Log
	HistoryLimit int

	// Logger receives failures of the history log. Nil discards them.
	Logger *log.Logger

	Session *interpreter.Session
}

type repl struct {
	out     io.Writer
	opts    Options
	session *interpreter.Session
	logger  *log.Logger

	errColor  *color.Color
	okColor   *color.Color
	metaColor *color.Color
}

// Start reads lines from in until EOF or exit, writing results to out.
func Start(in io.Reader, out io.Writer, opts Options) error {
	r := newRepl(out, opts)
	scanner := bufio.NewScanner(in)

	for {
		fmt.Fprint(out, r.opts.Prompt)
		if !scanner.Scan() {
			fmt.Fprintln(out)
			return scanner.Err()
		}

		line := interpreter.TrimLine(scanner.Text())
		if line == "" {
			continue
		}
		if line == ExitCommand {
			return nil
		}

		r.handle(line)
	}
}

func newRepl(out io.Writer, opts Options) *repl {
	if opts.Prompt == "" {
		opts.Prompt = "apl> "
	}
	if opts.HistoryLimit <= 0 {
		opts.HistoryLimit = 20
	}

	r := &repl{
		out:       out,
		opts:      opts,
		session:   opts.Session,
		logger:    opts.Logger,
		errColor:  color.New(color.FgRed),
		okColor:   color.New(color.FgGreen),
		metaColor: color.New(color.FgCyan),
	}
	if r.session == nil {
		r.session = interpreter.NewSession()
	}
	if r.logger == nil {
		r.logger = log.New(io.Discard, "", 0)
	}

	for _, c := range []*color.Color{r.errColor, r.okColor, r.metaColor} {
		if opts.Color {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
	}

	return r
}

func (r *repl) handle(line string) {
	if strings.HasPrefix(line, ":") {
		r.meta(line)
		return
	}

	outcome, ok := r.eval(line)
	if r.opts.History != nil {
		if err := r.opts.History.Record(line, outcome, ok); err != nil {
			r.logger.Printf("history: %v", err)
		}
	}
}

// eval runs line and prints its result, returning what was printed.
func (r *repl) eval(line string) (string, bool) {
	res, err := r.session.Run(line)
	if err != nil {
		r.printError(err)
		return err.Error(), false
	}

	var outcome string
	switch res.Kind {
	case interpreter.KindProgram:
		outcome = r.session.Store().String()
	default:
		outcome = res.Value.Inspect()
	}

	r.okColor.Fprintln(r.out, outcome)
	return outcome, true
}

func (r *repl) printError(err error) {
	r.errColor.Fprintln(r.out, err.Error())

	var lexErr *lexer.LexicalError
	if errors.As(err, &lexErr) {
		r.errColor.Fprintln(r.out, lexErr.Caret())
	}
}

func (r *repl) meta(line string) {
	cmd, arg, _ := strings.Cut(line, " ")
	arg = interpreter.TrimLine(arg)

	switch cmd {
	case ":help":
		fmt.Fprintln(r.out, helpText)
	case ":vars":
		r.vars()
	case ":reset":
		r.session.Reset()
		r.metaColor.Fprintln(r.out, "store cleared")
	case ":tokens":
		r.tokens(arg)
	case ":ast":
		r.ast(arg)
	case ":history":
		r.history(arg)
	default:
		r.errColor.Fprintf(r.out, "unknown command %s, try :help\n", cmd)
	}
}

func (r *repl) vars() {
	out, err := yaml.Marshal(r.session.Store())
	if err != nil {
		r.printError(err)
		return
	}

	fmt.Fprint(r.out, string(out))
}

func (r *repl) tokens(src string) {
	toks, diagnostics := lexer.TokenizeAll(src)
	for _, tok := range toks {
		fmt.Fprintf(r.out, "%3d  %s\n", tok.Pos, tok)
	}
	for _, d := range diagnostics {
		r.errColor.Fprintln(r.out, d)
	}
}

func (r *repl) ast(src string) {
	node, kind, err := interpreter.Parse(src)
	if err != nil {
		r.printError(err)
		return
	}

	fmt.Fprintln(r.out, node.String())
	r.metaColor.Fprintf(r.out, "%s, fingerprint %016x\n", kind, ast.Fingerprint(node))
}

func (r *repl) history(arg string) {
	if r.opts.History == nil {
		r.errColor.Fprintln(r.out, "history is disabled")
		return
	}

	n := r.opts.HistoryLimit
	if arg != "" {
		v, err := strconv.Atoi(arg)
		if err != nil || v <= 0 {
			r.errColor.Fprintf(r.out, "history: expected a positive count, got %q\n", arg)
			return
		}
		n = v
	}

	entries, err := r.opts.History.Recent(n)
	if err != nil {
		r.printError(err)
		return
	}

	// oldest first so the newest line sits right above the prompt
	for i := len(entries) - 1; i >= 0; i-- {
		e := entries[i]
		mark := "ok "
		if !e.OK {
			mark = "err"
		}
		fmt.Fprintf(r.out, "%4d %s %s  => %s\n", e.ID, mark, e.Source, e.Outcome)
	}
}
