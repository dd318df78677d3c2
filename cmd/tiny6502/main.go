// Command tiny6502 is a multi-pass cross-assembler for the MOS 6502
// family: NMOS 6502, NMOS with illegal opcodes, WDC 65C02, and WDC 65816.
package main

import (
	"fmt"
	"log/slog"
	"os"
	"sort"
	"strings"
	"time"

	getopt "github.com/pborman/getopt/v2"
	env "github.com/xyproto/env/v2"

	"github.com/xyproto/asm6502/internal/anon"
	"github.com/xyproto/asm6502/internal/assemble"
	"github.com/xyproto/asm6502/internal/diag"
	"github.com/xyproto/asm6502/internal/encoder"
	"github.com/xyproto/asm6502/internal/eval"
	"github.com/xyproto/asm6502/internal/lexer"
	"github.com/xyproto/asm6502/internal/listing"
	"github.com/xyproto/asm6502/internal/macro"
	"github.com/xyproto/asm6502/internal/output"
	"github.com/xyproto/asm6502/internal/parser"
	"github.com/xyproto/asm6502/internal/source"
	"github.com/xyproto/asm6502/internal/symtab"
	"github.com/xyproto/asm6502/internal/value"
	"github.com/xyproto/asm6502/internal/xlog"
)

// defines accumulates repeatable -D/--define NAME=expr arguments; it
// implements getopt.Value so getopt/v2 can append to it across repeated
// flag occurrences.
type defines []string

func (d *defines) String() string { return strings.Join(*d, ",") }
func (d *defines) Set(value string, _ getopt.Option) error {
	*d = append(*d, value)
	return nil
}

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	optCaseSensitive := getopt.BoolLong("case-sensitive", 'C', "treat identifiers as case-sensitive")
	optCPU := getopt.StringLong("cpu", 'c', env.StrOr("TINY6502_CPU", "6502"), "target CPU: 6502|6502i|65c02|65816")
	optFormat := getopt.StringLong("format", 'f', "flat", "output format: flat|cbm")
	optOutput := getopt.StringLong("output", 'o', "a.out", "output file")
	optLabel := getopt.StringLong("label", 'l', "", "emit symbol report to this file")
	optList := getopt.StringLong("list", 'L', "", "emit disassembly listing to this file")
	optVersion := getopt.BoolLong("version", 'V', "print version and exit")
	optHelp := getopt.BoolLong("help", 'h', "show this help")
	var optDefines defines
	getopt.FlagLong(&optDefines, "define", 'D', "define NAME=expr before parsing (repeatable)")

	getopt.Parse()
	if *optHelp {
		getopt.Usage()
		return 0
	}
	if *optVersion {
		fmt.Println("tiny6502 (asm6502)")
		return 0
	}

	color := !env.Bool("NO_COLOR")
	logHandler := xlog.NewHandler(nil, os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn})
	slog.SetDefault(slog.New(logHandler))

	inputs := getopt.Args()
	if len(inputs) != 1 {
		fmt.Fprintln(os.Stderr, "tiny6502: exactly one input file is required")
		getopt.Usage()
		return 1
	}
	inputPath := inputs[0]

	cpu, ok := encoder.ParseCPU(*optCPU)
	if !ok {
		fmt.Fprintf(os.Stderr, "tiny6502: unknown CPU %q\n", *optCPU)
		return 1
	}
	format, err := output.ParseFormat(*optFormat)
	if err != nil {
		fmt.Fprintln(os.Stderr, "tiny6502:", err)
		return 1
	}

	file, err := source.Load(inputPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, "tiny6502:", err)
		return 1
	}

	sink := diag.NewSink(os.Stderr, color)
	ctx := eval.NewContext(symtab.New(*optCaseSensitive), anon.New())

	for _, d := range optDefines {
		if err := applyDefine(ctx, d); err != nil {
			fmt.Fprintln(os.Stderr, "tiny6502:", err)
			return 1
		}
	}

	reserved := lexer.NewReservedWords(*optCaseSensitive)
	lx := lexer.New(file, reserved)
	p := parser.New(lx, ctx, macro.New())
	stmts, parseErrs := p.ParseProgram()
	for _, e := range parseErrs {
		sink.Report(parseErrorToDiagnostic(e, file))
	}
	if sink.HasErrors() {
		return 1
	}

	binCache := source.NewBinaryCache()
	res, err := assemble.Run(stmts, ctx, binCache, assemble.Options{CPU: cpu, Origin: 0})
	if err != nil {
		fmt.Fprintln(os.Stderr, "tiny6502:", err)
		return 1
	}
	slog.Debug("assembly converged", "passes", res.Passes)
	for _, w := range res.Warnings {
		slog.Warn(w)
	}

	if err := os.WriteFile(*optOutput, output.Encode(format, res.Origin, res.Bytes), 0o644); err != nil {
		fmt.Fprintln(os.Stderr, "tiny6502:", err)
		return 1
	}

	if *optList != "" {
		if err := writeListing(*optList, res, inputPath, args); err != nil {
			fmt.Fprintln(os.Stderr, "tiny6502:", err)
			return 1
		}
	}
	if *optLabel != "" {
		if err := writeLabelReport(*optLabel, ctx.Symbols); err != nil {
			fmt.Fprintln(os.Stderr, "tiny6502:", err)
			return 1
		}
	}

	if sink.HasErrors() {
		return 1
	}
	return 0
}

// applyDefine parses one -D NAME=expr argument with the same grammar as
// an assignment statement (spec.md §6).
func applyDefine(ctx *eval.Context, def string) error {
	name, exprSrc, ok := strings.Cut(def, "=")
	if !ok {
		return fmt.Errorf("-D %s: expected NAME=expr", def)
	}
	name = strings.TrimSpace(name)
	src := fmt.Sprintf("%s = %s\n", name, strings.TrimSpace(exprSrc))

	file := source.FromBytes("<define "+name+">", []byte(src))
	reserved := lexer.NewReservedWords(false)
	lx := lexer.New(file, reserved)
	p := parser.New(lx, ctx, macro.New())
	stmts, errs := p.ParseProgram()
	if len(errs) > 0 {
		return fmt.Errorf("-D %s: %v", def, errs[0])
	}
	if len(stmts) != 1 || stmts[0].AssignName == "" {
		return fmt.Errorf("-D %s: not an assignment", def)
	}
	v := stmts[0].AssignExpr.Value()
	if v.IsUndefined() {
		return fmt.Errorf("-D %s: expression did not resolve", def)
	}
	return ctx.Symbols.Define(stmts[0].AssignName, v)
}

func parseErrorToDiagnostic(err error, file *source.File) diag.Diagnostic {
	if pe, ok := err.(*parser.ParseError); ok {
		return diag.Diagnostic{Severity: diag.Error, Message: pe.Msg, Tok: pe.Tok, Line: file.Line(pe.Tok.Line)}
	}
	return diag.Diagnostic{Severity: diag.Error, Message: err.Error()}
}

func writeListing(path string, res *assemble.Result, inputPath string, args []string) error {
	b := listing.NewBuilder()
	for _, line := range res.Lines {
		if !line.Listed {
			continue
		}
		b.Add(listing.Entry{
			Kind:       lineKind(line),
			PC:         line.PC,
			Bytes:      line.Bytes,
			Operand:    lineOperand(line),
			SourceLine: sourceLineFor(line),
		})
	}
	invocation := "tiny6502 " + strings.Join(args, " ")
	content := b.Render(inputPath, invocation, time.Now())
	return os.WriteFile(path, []byte(content), 0o644)
}

func lineKind(line assemble.Line) listing.Kind {
	switch {
	case line.Stmt.AssignName != "":
		return listing.KindAssignment
	case line.Stmt.Mnemonic != "":
		return listing.KindInstruction
	case line.Stmt.Directive != "":
		return listing.KindPseudoOp
	default:
		return listing.KindUnassembled
	}
}

func lineOperand(line assemble.Line) string {
	stmt := line.Stmt
	switch {
	case stmt.AssignName != "":
		return fmt.Sprintf("%s = $%x", stmt.AssignName, uint64(int64(stmt.AssignExpr.Value())))
	case stmt.Mnemonic != "":
		return listing.FormatOperand(stmt.Mnemonic, stmt.Operand, len(line.Bytes)-1)
	case stmt.Directive != "":
		return strings.ToLower(stmt.Directive)
	default:
		return ""
	}
}

func sourceLineFor(line assemble.Line) string {
	return fmt.Sprintf("%s:%d", line.Stmt.File, line.Stmt.Line)
}

func writeLabelReport(path string, symbols *symtab.Table) error {
	var entries []listing.Symbol
	symbols.Each(func(name string, v value.Value) {
		entries = append(entries, listing.Symbol{Name: name, Value: v})
	})
	sort.Slice(entries, func(i, j int) bool { return entries[i].Name < entries[j].Name })
	return os.WriteFile(path, []byte(listing.LabelReport(entries)), 0o644)
}
