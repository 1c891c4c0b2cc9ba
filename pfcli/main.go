package main

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/chzyer/readline"
	"github.com/npillmayer/schuko/schukonf/testconfig"
	"github.com/npillmayer/schuko/tracing"
	"github.com/npillmayer/schuko/tracing/gologadapter"
	"github.com/npillmayer/schuko/tracing/trace2go"
	"github.com/pterm/pterm"
	"github.com/timheilig/pfloppy"
	"github.com/timheilig/pfloppy/ttf"
)

// tracer traces with key 'font.cli'
func tracer() tracing.Trace {
	return tracing.Select("font.cli")
}

var traceLevels = map[string]tracing.TraceLevel{
	"Debug": tracing.LevelDebug,
	"Info":  tracing.LevelInfo,
	"Error": tracing.LevelError,
}

func main() {
	tlevel := flag.String("trace", "Info", "Trace level [Debug|Info|Error]")
	fontname := flag.String("font", "", "Font file to inspect (CFF, TrueType or OpenType)")
	flag.Parse()
	level, ok := traceLevels[*tlevel]
	if !ok {
		fmt.Fprintf(os.Stderr, "pfcli: invalid trace level %q\n", *tlevel)
		os.Exit(2)
	}
	initDisplay()
	if err := setupTracing(); err != nil {
		fmt.Fprintf(os.Stderr, "pfcli: cannot configure tracing: %v\n", err)
		os.Exit(1)
	}
	repl, err := readline.New("pf > ")
	if err != nil {
		tracer().Errorf(err.Error())
		os.Exit(3)
	}
	defer repl.Close()
	intp := &Intp{repl: repl}
	pterm.Info.Println("pfcli font inspector, quit with <ctrl>D")
	if err := intp.loadFont(*fontname); err != nil {
		tracer().Errorf(err.Error())
		os.Exit(4)
	}
	// decoding traces stay quiet while loading, then follow the flag
	for _, key := range []string{"font.cli", "font.pfloppy", "font.cff", "font.ttf"} {
		tracing.Select(key).SetTraceLevel(level)
	}
	tracer().Infof("trace level is %s", *tlevel)
	intp.REPL()
}

func setupTracing() error {
	tracing.RegisterTraceAdapter("go", gologadapter.GetAdapter(), false)
	conf := testconfig.Conf{
		"tracing.adapter":    "go",
		"trace.font.cli":     "Info",
		"trace.font.pfloppy": "Error",
		"trace.font.cff":     "Error",
		"trace.font.ttf":     "Error",
	}
	if err := trace2go.ConfigureRoot(conf, "trace", trace2go.ReplaceTracers(true)); err != nil {
		return err
	}
	tracing.SetTraceSelector(trace2go.Selector())
	return nil
}

func initDisplay() {
	pterm.Info.Prefix = pterm.Prefix{
		Text:  " pf ",
		Style: pterm.NewStyle(pterm.BgLightBlue, pterm.FgBlack),
	}
	pterm.Error.Prefix = pterm.Prefix{
		Text:  " ERR ",
		Style: pterm.NewStyle(pterm.BgRed, pterm.FgWhite),
	}
}

// Intp holds the font being inspected and the REPL state.
type Intp struct {
	font  *pfloppy.Font
	repl  *readline.Instance
	table ttf.Table // current TrueType table
	fontx int       // current font of a CFF font set
}

func (intp *Intp) String() string {
	if intp == nil || intp.font == nil {
		return "()"
	}
	sb := strings.Builder{}
	sb.WriteString(fmt.Sprintf("( %s", intp.font.Kind))
	if intp.table != nil {
		sb.WriteString(fmt.Sprintf(" table=%s", intp.table.Self().NameTag()))
	}
	if len(intp.font.CFF) > 1 {
		sb.WriteString(fmt.Sprintf(" font=%d", intp.fontx))
	}
	sb.WriteString(" )")
	return sb.String()
}

// REPL starts interactive mode.
func (intp *Intp) REPL() {
	for {
		pterm.Println(intp.String())
		line, err := intp.repl.Readline()
		if err != nil { // io.EOF
			break
		}
		if line = strings.TrimSpace(line); line == "" {
			continue
		}
		cmd := parseCommand(line)
		err, quit := intp.execute(cmd)
		if err != nil {
			tracer().Errorf(err.Error())
			continue
		}
		if quit {
			break
		}
	}
	pterm.Info.Println("Good bye!")
}

type Op struct {
	code int
	arg  string
}

type Command struct {
	ops []Op
}

const (
	QUIT int = iota
	HELP
	TABLES
	TABLE
	GLYPH
	CMAP
	DICT
	MAP
	FONT
)

var opMap = map[string]int{
	"quit":   QUIT,
	"help":   HELP,
	"tables": TABLES,
	"table":  TABLE,
	"glyph":  GLYPH,
	"cmap":   CMAP,
	"dict":   DICT,
	"map":    MAP,
	"font":   FONT,
}

var opNames = []string{
	"quit",
	"help",
	"tables",
	"table",
	"glyph",
	"cmap",
	"dict",
	"map",
	"font",
}

// parseCommand splits a line into steps "op" or "op:arg". Unknown ops turn
// into help requests. Steps after quit are dropped.
func parseCommand(line string) *Command {
	cmd := &Command{}
	for _, step := range strings.Fields(line) {
		name, arg, _ := strings.Cut(step, ":")
		code, ok := opMap[strings.ToLower(name)]
		if !ok {
			code, arg = HELP, ""
		}
		cmd.ops = append(cmd.ops, Op{code: code, arg: arg})
		if arg == "" {
			tracer().Infof("%s", opNames[code])
		} else {
			tracer().Infof("%s: looking for '%s'", opNames[code], arg)
		}
		if code == QUIT {
			break
		}
	}
	return cmd
}

var commandFn = map[int]func(*Intp, *Op) (error, bool){
	QUIT:   quitOp,
	HELP:   helpOp,
	TABLES: tablesOp,
	TABLE:  tableOp,
	GLYPH:  glyphOp,
	CMAP:   cmapOp,
	DICT:   dictOp,
	MAP:    mapOp,
	FONT:   fontOp,
}

func (intp *Intp) execute(cmd *Command) (err error, stop bool) {
	tracer().Debugf("cmd = %v", cmd.ops)
	for _, c := range cmd.ops {
		f, ok := commandFn[c.code]
		if !ok {
			pterm.Error.Printf("unknown command code: %d\n", c.code)
			return nil, false
		}
		err, stop = f(intp, &c)
		if err != nil {
			pterm.Error.Println(err)
			return
		}
		if stop {
			return
		}
	}
	return
}

func quitOp(intp *Intp, op *Op) (error, bool) {
	pterm.Println("Goodbye!")
	return nil, true
}

// --- Font Loading -----------------------------------------------------

func (intp *Intp) loadFont(fontname string) (err error) {
	if fontname == "" {
		return errors.New("no font given, use -font <file>")
	}
	if intp.font, err = pfloppy.LoadFont(fontname); err != nil {
		tracer().Errorf("cannot load font %s: %s", fontname, err)
		return
	}
	tracer().Infof("loaded font = %s", intp.font)
	intp.table, intp.fontx = nil, 0
	pterm.Printf("%s\n", intp.font)
	return nil
}

// ----------------------------------------------------------------------

var ERR_NO_TTF = errors.New("font has no TrueType tables")
var ERR_NO_CFF = errors.New("font has no CFF data")

func (intp *Intp) checkTTF() (*ttf.Font, error) {
	if intp.font == nil || intp.font.TTF == nil {
		return nil, ERR_NO_TTF
	}
	return intp.font.TTF, nil
}

func (op *Op) noArg() bool {
	return op.arg == ""
}

func (op *Op) hasArg() (string, bool) {
	if op.arg == "" {
		return "", false
	}
	return op.arg, true
}
