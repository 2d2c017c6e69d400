// nbt - NBT codec CLI tool
//
// Usage:
//
//	nbt dump [file]        Print binary NBT as SNBT text
//	nbt encode [file]      Parse SNBT text and write binary NBT
//	nbt to-json [file]     Convert binary NBT to JSON
//	nbt from-json [file]   Convert JSON to binary NBT
//	nbt to-cbor [file]     Convert binary NBT to CBOR (--diag for diagnostic text)
//	nbt size [file]        Print the encoded size of each root
//	nbt hash [file]        Print the BLAKE3 fingerprint of each root
//	nbt version            Print version info
//
// If no file is given, reads from stdin. Compression of binary input is
// detected automatically. Defaults come from the file named by --config or
// NBT_CONFIG; flags override it. Set NBT_DEBUG=1 for debug logging.
package main

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/pflag"

	"github.com/Neumenon/nbt/config"
	"github.com/Neumenon/nbt/nbt"
	"github.com/Neumenon/nbt/stream"
)

const version = "0.1.0"

// Exit codes.
const (
	exitOK      = 0
	exitFailure = 1
	exitUsage   = 2
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}

// usageError marks errors caused by the command line rather than the input.
type usageError struct {
	err error
}

func (e *usageError) Error() string { return e.err.Error() }
func (e *usageError) Unwrap() error { return e.err }

func usagef(format string, args ...any) error {
	return &usageError{err: fmt.Errorf(format, args...)}
}

// command describes one subcommand. textOut and binaryOut select which
// output flags it accepts.
type command struct {
	summary   string
	textOut   bool
	binaryOut bool
	run       func(a *app, input io.Reader) error
}

var commands = map[string]command{
	"dump":      {summary: "Print binary NBT as SNBT text", textOut: true, run: cmdDump},
	"encode":    {summary: "Parse SNBT text and write binary NBT", binaryOut: true, run: cmdEncode},
	"to-json":   {summary: "Convert binary NBT to JSON", textOut: true, run: cmdToJSON},
	"from-json": {summary: "Convert JSON to binary NBT", binaryOut: true, run: cmdFromJSON},
	"to-cbor":   {summary: "Convert binary NBT to CBOR", run: cmdToCBOR},
	"size":      {summary: "Print the encoded size of each root", run: cmdSize},
	"hash":      {summary: "Print the BLAKE3 fingerprint of each root", run: cmdHash},
}

var commandOrder = []string{"dump", "encode", "to-json", "from-json", "to-cbor", "size", "hash"}

// app carries the streams and settings of one invocation.
type app struct {
	stdin  io.Reader
	stdout io.Writer
	stderr io.Writer

	cfg    *config.Config
	logger *slog.Logger

	rootName    string
	rootNameSet bool
	diag        bool
}

func run(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	if len(args) == 0 {
		printUsage(stderr)
		return exitUsage
	}

	name := args[0]
	switch name {
	case "help", "-h", "--help":
		printUsage(stdout)
		return exitOK
	case "version", "-v", "--version":
		fmt.Fprintf(stdout, "nbt %s\n", version)
		return exitOK
	}

	cmd, ok := commands[name]
	if !ok {
		fmt.Fprintf(stderr, "nbt: unknown command: %s\n", name)
		printUsage(stderr)
		return exitUsage
	}

	a := &app{stdin: stdin, stdout: stdout, stderr: stderr}
	err := a.execute(name, cmd, args[1:])
	if err == nil {
		return exitOK
	}

	fmt.Fprintf(stderr, "nbt %s: %v\n", name, err)
	var ue *usageError
	if errors.As(err, &ue) {
		return exitUsage
	}
	return exitFailure
}

func (a *app) execute(name string, cmd command, args []string) error {
	fs := pflag.NewFlagSet("nbt "+name, pflag.ContinueOnError)
	fs.SetOutput(io.Discard)

	var (
		configPath  string
		output      string
		maxDepth    int
		sortKeys    bool
		pretty      bool
		indent      string
		compression string
		level       int
	)
	fs.StringVar(&configPath, "config", "", "config file (.yaml, .yml or .toml); default $"+config.EnvVar)
	fs.StringVarP(&output, "output", "o", "", "output file (default: stdout)")
	fs.IntVar(&maxDepth, "max-depth", 0, "maximum container nesting of the input")
	fs.BoolVar(&sortKeys, "sort-keys", false, "write compound keys in sorted order")
	if cmd.textOut {
		fs.BoolVarP(&pretty, "pretty", "p", false, "indented output")
		fs.StringVar(&indent, "indent", "", "indent unit for --pretty (default: two spaces)")
	}
	if cmd.binaryOut {
		fs.StringVarP(&compression, "compression", "c", "", "output compression: none, gzip, zlib, zstd, lz4")
		fs.IntVar(&level, "level", 0, "compression level (0: format default)")
		fs.StringVarP(&a.rootName, "name", "n", "", "root name (default: taken from the input)")
	}
	if name == "to-cbor" {
		fs.BoolVar(&a.diag, "diag", false, "print CBOR diagnostic notation instead of bytes")
	}
	fs.BoolP("help", "h", false, "show help")

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			printCommandUsage(a.stdout, name, cmd, fs)
			return nil
		}
		return &usageError{err: err}
	}
	if help, _ := fs.GetBool("help"); help {
		printCommandUsage(a.stdout, name, cmd, fs)
		return nil
	}
	rest := fs.Args()
	if len(rest) > 1 {
		return usagef("expected at most one input file, got %d", len(rest))
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	if fs.Changed("output") {
		cfg.Output = output
	}
	if fs.Changed("max-depth") {
		cfg.MaxDepth = maxDepth
	}
	if fs.Changed("sort-keys") {
		cfg.SortKeys = sortKeys
	}
	if fs.Changed("pretty") {
		cfg.Pretty = pretty
	}
	if fs.Changed("indent") {
		cfg.Indent = indent
	}
	if fs.Changed("compression") {
		cfg.Compression = compression
	}
	if fs.Changed("level") {
		cfg.Level = level
	}
	if err := cfg.Validate(); err != nil {
		return &usageError{err: err}
	}
	a.rootNameSet = fs.Changed("name")
	a.cfg = cfg
	a.logger = newLogger(a.stderr, cfg)
	a.logger.Debug("starting", "command", name, "config", configPath, "compression", cfg.Compression)

	input := a.stdin
	if len(rest) == 1 && rest[0] != "-" {
		f, err := os.Open(rest[0])
		if err != nil {
			return err
		}
		defer f.Close()
		input = f
	}
	return cmd.run(a, input)
}

func newLogger(w io.Writer, cfg *config.Config) *slog.Logger {
	level := cfg.SlogLevel()
	if os.Getenv("NBT_DEBUG") != "" {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

// ============================================================
// Input and output
// ============================================================

func (a *app) readRoots(input io.Reader) ([]nbt.NamedTag, error) {
	r, err := stream.NewReader(input,
		stream.WithMaxDepth(a.cfg.MaxDepth),
		stream.WithLogger(a.logger),
	)
	if err != nil {
		return nil, err
	}
	defer r.Close()

	roots, err := r.ReadAll()
	if err != nil {
		return nil, err
	}
	if len(roots) == 0 {
		return nil, stream.ErrNoRoot
	}
	return roots, nil
}

// parseNamed parses SNBT text, accepting the `name: value` form that dump
// prints. The --name flag overrides a name found in the text.
func (a *app) parseNamed(text string) (nbt.NamedTag, error) {
	tokens, err := nbt.Tokenize(text)
	if err != nil {
		return nbt.NamedTag{}, err
	}

	name := a.rootName
	if len(tokens) > 2 && tokens[1].Type == nbt.TokenColon &&
		(tokens[0].Type == nbt.TokenIdent || tokens[0].Type == nbt.TokenString) {
		if !a.rootNameSet {
			name = tokens[0].Value
		}
		tokens = tokens[2:]
	}

	tag, err := nbt.ParseTokens(tokens, nbt.ParseOptions{MaxDepth: a.cfg.MaxDepth})
	if err != nil {
		return nbt.NamedTag{}, err
	}
	return nbt.Named(name, tag), nil
}

func (a *app) toStdout() bool {
	return a.cfg.Output == "" || a.cfg.Output == "-"
}

// writeOutput writes data to the configured output.
func (a *app) writeOutput(data []byte) error {
	if a.toStdout() {
		_, err := a.stdout.Write(data)
		return err
	}
	return os.WriteFile(a.cfg.Output, data, 0o644)
}

// writeRoot encodes nt with the configured compression.
func (a *app) writeRoot(nt nbt.NamedTag) error {
	comp := a.cfg.CompressionKind()
	opts := []stream.WriterOption{stream.WithLevel(a.cfg.Level)}
	if a.cfg.SortKeys {
		opts = append(opts, stream.WithSortedKeys())
	}
	a.logger.Debug("writing root", "name", nt.Name, "compression", comp.String(), "output", a.cfg.Output)

	if !a.toStdout() {
		return stream.WriteFile(a.cfg.Output, nt, comp, opts...)
	}
	w, err := stream.NewWriter(a.stdout, comp, opts...)
	if err != nil {
		return err
	}
	if err := w.WriteRoot(nt); err != nil {
		w.Close()
		return err
	}
	return w.Close()
}

// ============================================================
// Commands
// ============================================================

// cmdDump: binary NBT -> SNBT
func cmdDump(a *app, input io.Reader) error {
	roots, err := a.readRoots(input)
	if err != nil {
		return err
	}
	var sb strings.Builder
	for _, nt := range roots {
		sb.WriteString(nbt.EmitNamed(nt, a.cfg.EmitOptions()))
		sb.WriteByte('\n')
	}
	return a.writeOutput([]byte(sb.String()))
}

// cmdEncode: SNBT -> binary NBT
func cmdEncode(a *app, input io.Reader) error {
	data, err := io.ReadAll(input)
	if err != nil {
		return fmt.Errorf("read input: %w", err)
	}
	nt, err := a.parseNamed(string(data))
	if err != nil {
		return err
	}
	return a.writeRoot(nt)
}

// cmdToJSON: binary NBT -> JSON, one document per root
func cmdToJSON(a *app, input io.Reader) error {
	roots, err := a.readRoots(input)
	if err != nil {
		return err
	}
	var buf bytes.Buffer
	for _, nt := range roots {
		var data []byte
		if a.cfg.Pretty {
			data, err = nbt.ToJSONIndent(nt.Tag, a.cfg.Indent)
		} else {
			data, err = nbt.ToJSON(nt.Tag)
		}
		if err != nil {
			return fmt.Errorf("root %q: %w", nt.Name, err)
		}
		buf.Write(data)
		buf.WriteByte('\n')
	}
	return a.writeOutput(buf.Bytes())
}

// cmdFromJSON: JSON -> binary NBT
func cmdFromJSON(a *app, input io.Reader) error {
	data, err := io.ReadAll(input)
	if err != nil {
		return fmt.Errorf("read input: %w", err)
	}
	tag, err := nbt.FromJSON(data)
	if err != nil {
		return err
	}
	return a.writeRoot(nbt.Named(a.rootName, tag))
}

// cmdToCBOR: binary NBT -> CBOR sequence, or diagnostic text with --diag
func cmdToCBOR(a *app, input io.Reader) error {
	roots, err := a.readRoots(input)
	if err != nil {
		return err
	}
	var buf bytes.Buffer
	for _, nt := range roots {
		data, err := nbt.ToCBOR(nt.Tag)
		if err != nil {
			return fmt.Errorf("root %q: %w", nt.Name, err)
		}
		if !a.diag {
			buf.Write(data)
			continue
		}
		diag, err := nbt.DiagnoseCBOR(data)
		if err != nil {
			return fmt.Errorf("root %q: %w", nt.Name, err)
		}
		buf.WriteString(diag)
		buf.WriteByte('\n')
	}
	return a.writeOutput(buf.Bytes())
}

// cmdSize: name, kind and uncompressed encoded size of each root
func cmdSize(a *app, input io.Reader) error {
	roots, err := a.readRoots(input)
	if err != nil {
		return err
	}
	var sb strings.Builder
	total := 0
	for _, nt := range roots {
		n := nbt.NamedSize(nt)
		total += n
		fmt.Fprintf(&sb, "%s\t%s\t%d\n", nt.Name, nt.Tag.Title(), n)
	}
	if len(roots) > 1 {
		fmt.Fprintf(&sb, "total\t\t%d\n", total)
	}
	return a.writeOutput([]byte(sb.String()))
}

// cmdHash: BLAKE3 fingerprint of each root, sha256sum style
func cmdHash(a *app, input io.Reader) error {
	roots, err := a.readRoots(input)
	if err != nil {
		return err
	}
	var sb strings.Builder
	for _, nt := range roots {
		d, err := stream.Fingerprint(nt)
		if err != nil {
			return fmt.Errorf("root %q: %w", nt.Name, err)
		}
		fmt.Fprintf(&sb, "%s  %s\n", d, nt.Name)
	}
	return a.writeOutput([]byte(sb.String()))
}

// ============================================================
// Usage
// ============================================================

func printUsage(w io.Writer) {
	fmt.Fprintf(w, "nbt - NBT codec CLI tool (v%s)\n\nUsage:\n", version)
	for _, name := range commandOrder {
		fmt.Fprintf(w, "  nbt %-10s [flags] [file]  %s\n", name, commands[name].summary)
	}
	fmt.Fprint(w, `  nbt version                      Print version info

If no file is given, reads from stdin. Run "nbt <command> --help" for flags.

Examples:
  nbt dump level.dat
  nbt dump --pretty --sort-keys level.dat
  echo '{name: Steve, health: 20s}' | nbt encode -c none -n player > player.nbt
  nbt dump level.dat | nbt encode -o copy.dat
  nbt to-cbor --diag player.nbt
`)
}

func printCommandUsage(w io.Writer, name string, cmd command, fs *pflag.FlagSet) {
	fmt.Fprintf(w, "nbt %s - %s\n\nUsage:\n  nbt %s [flags] [file]\n\nFlags:\n", name, cmd.summary, name)
	fs.SetOutput(w)
	fs.PrintDefaults()
	fs.SetOutput(io.Discard)
}
