// Copyright 2025, Jason S. McMullan <jason.mcmullan@gmail.com>

// Package asm implements a macro assembler for the LS-8.
//
// Each source line holds an optional label, then an instruction or a
// directive:
//
//	start:  LDI R0, 8       ; comment
//	        PRN R0          # also a comment
//	        .byte 0x01, 'A'
//	        .equ COUNT $(3 * 4)
//
// Operands are registers (R0-R7, SP), numbers, characters, labels, equates
// or $(...) expressions evaluated with Starlark. The number of operands an
// instruction takes comes from its opcode bits.
package asm

import (
	"bufio"
	"fmt"
	"io"
	"maps"
	"regexp"
	"slices"
	"strconv"
	"strings"

	"go.starlark.net/starlark"
	"go.starlark.net/syntax"
	"go.uber.org/zap"

	"github.com/ezrec/ls8/cpu"
	"github.com/ezrec/ls8/internal"
	"github.com/ezrec/ls8/program"
)

// Macro represents a macro definition in the assembly language.
type Macro struct {
	LineNo int      // Line number of the macro definition.
	Args   []string // Arguments for the macro.
	Lines  []string // Lines of macro text to expand.
}

// Statement is an assembled line with its source location and bytes.
type Statement struct {
	LineNo  int
	Address int
	Words   []string
	Codes   []byte
	Link    map[int]string // Code index to label, resolved after parsing.
}

// Predefined system equates
var sysEquate = map[string]string{
	"LINENO": "0",
}

// Assembler is a two pass macro assembler for the LS-8.
type Assembler struct {
	Verbose   bool        // If set, logs the assembler actions.
	Logger    *zap.Logger // Destination of log records; nil discards.
	Statement []Statement // List of generated statements.

	predefine map[string]string   // Predefines
	Label     map[string]int      // Map of labels to addresses.
	Equate    map[string]string   // Map of equates.
	Macro     map[string](*Macro) // Map of macros.

	expansions int // Macro expansions, for unique local labels.
}

// Predefine defines a new equate or redefines an existing equate.
func (asm *Assembler) Predefine(equ string, value string) {
	if asm.predefine == nil {
		asm.predefine = map[string]string{equ: value}
	} else {
		asm.predefine[equ] = value
	}
}

func (asm *Assembler) logger() *zap.Logger {
	if asm.Logger == nil {
		asm.Logger = zap.NewNop()
	}
	return asm.Logger
}

// registerMap is a map of register names to register indices.
var registerMap = map[string]int{
	"R0": 0,
	"R1": 1,
	"R2": 2,
	"R3": 3,
	"R4": 4,
	"R5": 5,
	"R6": 6,
	"R7": 7,
	"SP": cpu.REG_SP,
}

var (
	reRegister   = regexp.MustCompile(`^[Rr][0-9]+$`)
	reIdentifier = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)
	reCharacter  = regexp.MustCompile(`'\\?[^']'`)
	reExpression = regexp.MustCompile(`\$\([^\$]*\)`)
)

// opcodeMap maps upper case mnemonics to opcodes.
var opcodeMap = internal.Symbols(cpu.Mnemonics())

// valueOf returns the value of a simple word.
// Negative values down to -128 are stored as two's complement.
func (asm *Assembler) valueOf(word string) (value byte, err error) {
	// Valid character literals were expanded by parseLine.
	if strings.HasPrefix(word, "'") {
		err = ErrParseCharacter(word)
		return
	}

	invert := false
	if len(word) > 1 && word[0] == '~' {
		invert = true
		word = word[1:]
	}

	v64, err := strconv.ParseInt(word, 0, 64)
	if err != nil {
		err = ErrParseNumber(word)
		return
	}

	if v64 < -128 || v64 > 0xff {
		err = ErrValueRange
		return
	}

	value = byte(v64)
	if invert {
		value = ^value
	}

	return
}

// parenEval does compile-time $(...) evaluations.
// Equates and the labels defined so far are visible to the expression.
func (asm *Assembler) parenEval(expr string) (value byte, err error) {
	thread := starlark.Thread{}
	opts := syntax.FileOptions{}
	pred := starlark.StringDict{}
	for key, str := range asm.Equate {
		var v byte
		v, err = asm.valueOf(str)
		if err != nil {
			// Ignore non-integer equates. They may be registers
			// or something else.
			err = nil
			continue
		}
		pred[key] = starlark.MakeInt(int(v))
	}
	for key, address := range asm.Label {
		pred[key] = starlark.MakeInt(address)
	}

	prog := "rc=" + expr + "\n"
	dict, err := starlark.ExecFileOptions(&opts, &thread, "expr", prog, pred)
	if err != nil {
		return
	}
	st_rc, ok := dict["rc"]
	if !ok {
		err = ErrParseExpression(expr)
		return
	}
	st_int, ok := st_rc.(starlark.Int)
	if !ok {
		err = ErrParseExpression(expr)
		return
	}
	st_int64, ok := st_int.Int64()
	if !ok || st_int64 < -128 || st_int64 > 0xff {
		err = ErrValueRange
		return
	}

	value = byte(st_int64)
	return
}

// stripComment removes a ';' or '#' comment, ignoring quoted characters.
func stripComment(text string) string {
	quoted := false
	for n := 0; n < len(text); n++ {
		switch text[n] {
		case '\\':
			if quoted {
				n++
			}
		case '\'':
			quoted = !quoted
		case ';', '#':
			if !quoted {
				return text[:n]
			}
		}
	}
	return text
}

// splitWords splits a line on spaces, tabs and commas.
func splitWords(line string) []string {
	return strings.FieldsFunc(line, func(r rune) bool {
		return r == ' ' || r == '\t' || r == ','
	})
}

// parseLine parses a single line into words, handling equates,
// labels and macro expansion.
func (asm *Assembler) parseLine(line string, lineno int) (words []string, err error) {
	// Set line number.
	asm.Equate["LINENO"] = fmt.Sprintf("%v", lineno)

	// Do 'x' evaluations
	line = reCharacter.ReplaceAllStringFunc(line, func(word string) string {
		str := word[1 : len(word)-1]
		if str[0] == '\\' {
			str = str[1:]
			switch str {
			case "\\":
				str = "\\"
			case "n":
				str = "\n"
			case "r":
				str = "\r"
			case "t":
				str = "\t"
			case "0":
				str = "\000"
			default:
				return word
			}
		}
		return fmt.Sprintf("%v", str[0])
	})

	// Do $() evaluations
	line = reExpression.ReplaceAllStringFunc(line, func(str string) string {
		value, _err := asm.parenEval(str[2 : len(str)-1])
		if _err != nil {
			err = _err
		}
		return fmt.Sprintf("%v", value)
	})
	if err != nil {
		return
	}

	words = splitWords(line)
	if len(words) == 0 {
		return
	}

	// .equ CONST VALUE
	if strings.EqualFold(words[0], ".equ") {
		if len(words) != 3 || !reIdentifier.MatchString(words[1]) {
			err = ErrEquateSyntax
			return
		}
		_, ok := asm.Equate[words[1]]
		if ok {
			err = ErrEquateDuplicate
			return
		}
		asm.Equate[words[1]] = words[2]
		words = words[:0]
		return
	}

	for n, word := range words {
		// Check for equate next
		equate, ok := asm.Equate[word]
		if ok {
			words[n] = equate
		}
	}

	for strings.HasSuffix(words[0], ":") {
		label := words[0][:len(words[0])-1]
		if !reIdentifier.MatchString(label) {
			err = ErrLabelInvalid
			return
		}
		_, ok := asm.Label[label]
		if ok {
			err = ErrLabelDuplicate
			return
		}

		asm.Label[label] = asm.currentAddress()
		words = words[1:]
		if len(words) == 0 {
			return
		}
	}

	// .macro processing
	macro, ok := asm.Macro[words[0]]
	if ok {
		name := words[0]

		args := words[1:]
		if len(args) != len(macro.Args) {
			err = ErrMacroSyntax
			return
		}
		// Turn args into equs
		old_equate := maps.Clone(asm.Equate)
		for n, arg := range macro.Args {
			asm.Equate[arg] = args[n]
		}
		defer func() { asm.Equate = old_equate }()

		asm.expansions++
		local := fmt.Sprintf("%v_%v_", name, asm.expansions)

		for n, line := range macro.Lines {
			lineno := macro.LineNo + n

			line = strings.ReplaceAll(line, "@", local)
			words, err = asm.parseLine(line, lineno)
			if err != nil {
				err = ErrMacro{Macro: name, Line: lineno, Err: err}
				return
			}

			err = asm.parseWords(words, lineno)
			if err != nil {
				err = ErrMacro{Macro: name, Line: lineno, Err: err}
				return
			}
		}

		words = nil
		return
	}

	return
}

// currentAddress gets the address of the next statement.
func (asm *Assembler) currentAddress() int {
	if len(asm.Statement) == 0 {
		return 0
	}

	last := asm.Statement[len(asm.Statement)-1]

	return last.Address + len(last.Codes)
}

// operand resolves an instruction or .byte argument. Identifiers that
// are not registers are labels, resolved when linking.
func (asm *Assembler) operand(word string) (value byte, label string, err error) {
	reg, ok := registerMap[strings.ToUpper(word)]
	if ok {
		value = byte(reg)
		return
	}

	if reRegister.MatchString(word) {
		err = ErrRegisterInvalid
		return
	}

	if reIdentifier.MatchString(word) {
		label = word
		return
	}

	value, err = asm.valueOf(word)
	return
}

// parseWords assembles a statement from the words of a line.
func (asm *Assembler) parseWords(words []string, lineno int) (err error) {
	var codes []byte
	var link map[int]string

	// no-op
	if len(words) == 0 {
		return
	}

	initial_words := slices.Clone(words)
	address := asm.currentAddress()

	defer func() {
		if err != nil || len(codes) == 0 {
			return
		}
		if address+len(codes) > program.IMAGE_LIMIT {
			err = ErrProgramTooLarge
			return
		}
		statement := Statement{LineNo: lineno, Address: address, Words: initial_words, Codes: codes, Link: link}
		asm.Statement = append(asm.Statement, statement)
	}()

	args := words[1:]
	addArgs := func() (err error) {
		for _, arg := range args {
			value, label, err := asm.operand(arg)
			if err != nil {
				return err
			}
			if len(label) != 0 {
				if link == nil {
					link = map[int]string{}
				}
				link[len(codes)] = label
			}
			codes = append(codes, value)
		}
		return
	}

	mnemonic := strings.ToUpper(words[0])

	if mnemonic == ".BYTE" {
		if len(args) == 0 {
			err = ErrByteSyntax
			return
		}
		err = addArgs()
		return
	}

	op, ok := opcodeMap[mnemonic]
	if !ok {
		if strings.HasPrefix(mnemonic, ".") {
			err = ErrDirectiveUnknown
		} else {
			err = ErrOpcodeInvalid
		}
		return
	}

	if len(args) != op.Operands() {
		err = ErrOperandCount
		return
	}

	codes = append(codes, byte(op))
	err = addArgs()
	return
}

// Parse parses an input stream into a program image.
func (asm *Assembler) Parse(input io.Reader) (prog *program.Program, err error) {
	scanner := bufio.NewScanner(input)

	var line string
	var lineno int
	var macro *Macro

	defer func() {
		if err != nil {
			err = ErrSyntax{LineNo: lineno, Line: line, Err: err}
		}
	}()

	asm.Label = map[string]int{}
	asm.Statement = asm.Statement[:0]
	asm.expansions = 0
	asm.Macro = map[string](*Macro){}
	asm.Equate = maps.Clone(sysEquate)
	for attr, val := range asm.predefine {
		asm.Equate[attr] = val
	}

	if asm.Verbose {
		for name, value := range internal.SortedSymbols(asm.Equate) {
			asm.logger().Debug("equate", zap.String("name", name), zap.String("value", value))
		}
	}

	for scanner.Scan() {
		text := scanner.Text()
		lineno += 1

		if asm.Verbose {
			asm.logger().Debug("line", zap.Int("lineno", lineno), zap.String("text", text))
		}

		line = strings.TrimSpace(stripComment(text))
		words := splitWords(line)

		// .macro NAME arg...
		if len(words) > 0 && strings.EqualFold(words[0], ".macro") {
			if macro != nil {
				err = ErrMacroNesting
				return
			}
			if len(words) < 2 || !reIdentifier.MatchString(words[1]) {
				err = ErrMacroSyntax
				return
			}
			_, ok := asm.Macro[words[1]]
			if ok {
				err = ErrMacroDuplicate
				return
			}
			macro = &Macro{
				LineNo: lineno + 1,
			}
			if len(words) > 2 {
				macro.Args = words[2:]
			}
			asm.Macro[words[1]] = macro
			continue
		}

		if len(words) > 0 && strings.EqualFold(words[0], ".endm") {
			if macro == nil {
				err = ErrMacroLonelyEndm
				return
			}
			macro = nil
			continue
		}

		if macro != nil {
			macro.Lines = append(macro.Lines, line)
			continue
		}

		words, err = asm.parseLine(line, lineno)
		if err != nil {
			return
		}

		err = asm.parseWords(words, lineno)
		if err != nil {
			return
		}
	}

	err = scanner.Err()
	if err != nil {
		return
	}

	if macro != nil {
		err = ErrMacroLonely
		return
	}

	// Final linking of labels.
	for n := range asm.Statement {
		st := &asm.Statement[n]
		for index, label := range st.Link {
			address, ok := asm.Label[label]
			if !ok {
				lineno = st.LineNo
				line = strings.Join(st.Words, " ")
				err = ErrLabelMissing(label)
				return
			}
			if address > 0xff {
				lineno = st.LineNo
				line = strings.Join(st.Words, " ")
				err = ErrValueRange
				return
			}
			st.Codes[index] = byte(address)
		}
	}

	prog = &program.Program{}
	for _, st := range asm.Statement {
		for n, code := range st.Codes {
			pl := program.Line{
				LineNo:  st.LineNo,
				Address: st.Address + n,
				Value:   code,
			}
			if n == 0 {
				pl.Comment = strings.Join(st.Words, " ")
			}
			prog.Lines = append(prog.Lines, pl)
		}
	}

	return
}
