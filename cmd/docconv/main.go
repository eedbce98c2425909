// docconv converts documents between extended JSON text, Python pickle and
// CBOR.
//
// Usage:
//
//	docconv [flags] <input> [output]
//
// Input and output are file paths, "-" for stdin/stdout, or store:<name>
// for a document in the blob store configured with --config. Output
// defaults to stdout.
//
// Examples:
//
//	docconv --to pickle config.json config.pkl
//	docconv --format --sort-keys state.pkl
//	docconv --config s3.yaml --compress zstd local.json store:docs/local.json
//	docconv --disassemble state.pkl
//	docconv --from json --to cbor - out.cbor
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/pflag"

	"github.com/hupe1980/docval"
	"github.com/hupe1980/docval/blobstore"
	"github.com/hupe1980/docval/codec"
	"github.com/hupe1980/docval/escape"
	"github.com/hupe1980/docval/pickle"
	"github.com/hupe1980/docval/text"
	"github.com/hupe1980/docval/value"
)

const storeScheme = "store:"

func main() {
	ctx := context.Background()
	if err := run(ctx, os.Args[1:], os.Stdin, os.Stdout, os.Stderr); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return
		}
		fmt.Fprintf(os.Stderr, "docconv: %v\n", err)
		os.Exit(1)
	}
}

// options holds the parsed command line.
type options struct {
	from        string
	to          string
	format      bool
	sortKeys    bool
	hex         bool
	oneChar     bool
	strict      bool
	escape      string
	compress    string
	disassemble bool
	configPath  string
	verbose     bool
}

func (o *options) addFlags(fs *pflag.FlagSet) {
	fs.StringVar(&o.from, "from", "auto", "input format: auto, json, pickle or cbor")
	fs.StringVar(&o.to, "to", "json", "output format: json, pickle or cbor")
	fs.BoolVarP(&o.format, "format", "f", false, "pretty-print JSON output")
	fs.BoolVarP(&o.sortKeys, "sort-keys", "s", false, "sort dict keys in JSON output")
	fs.BoolVar(&o.hex, "hex", false, "write integers as hexadecimal")
	fs.BoolVar(&o.oneChar, "one-char", false, "write null, true and false as n, t and f")
	fs.BoolVar(&o.strict, "strict", false, "reject JSON extensions on input")
	fs.StringVar(&o.escape, "escape", "all", "string escaping: all, controls or hex")
	fs.StringVar(&o.compress, "compress", "none", "frame output with none, lz4 or zstd")
	fs.BoolVar(&o.disassemble, "disassemble", false, "list the opcodes of a pickle input (or the diagnostic notation of a cbor input) instead of converting")
	fs.StringVar(&o.configPath, "config", os.Getenv("DOCCONV_CONFIG"), "YAML config describing the store for store:<name> arguments")
	fs.BoolVarP(&o.verbose, "verbose", "v", false, "log at debug level")
}

// textFlags translates the output options into serializer flags.
func (o *options) textFlags() (text.Flags, error) {
	var flags text.Flags
	if o.format {
		flags |= text.Format
	}
	if o.sortKeys {
		flags |= text.SortDictKeys
	}
	if o.hex {
		flags |= text.HexIntegers
	}
	if o.oneChar {
		flags |= text.OneCharacterTrivialConstants
	}

	mode, err := escape.ParseMode(o.escape)
	if err != nil {
		return 0, err
	}
	switch mode {
	case escape.ModeControls:
		flags |= text.EscapeControlsOnly
	case escape.ModeHex:
		flags |= text.HexEscapes
	}
	return flags, nil
}

func run(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer) error {
	var opts options
	fs := pflag.NewFlagSet("docconv", pflag.ContinueOnError)
	fs.SetOutput(stderr)
	opts.addFlags(fs)
	fs.Usage = func() {
		fmt.Fprintf(stderr, "Usage: docconv [flags] <input> [output]\n\nFlags:\n")
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() < 1 || fs.NArg() > 2 {
		fs.Usage()
		return fmt.Errorf("expected an input and an optional output, got %d arguments", fs.NArg())
	}
	input := fs.Arg(0)
	output := fs.Arg(1)

	cfg, err := LoadConfig(opts.configPath)
	if err != nil {
		return err
	}
	if opts.verbose {
		cfg.Log.Level = "debug"
	}
	logger, err := newLogger(cfg.Log, stderr)
	if err != nil {
		return err
	}

	c := &converter{
		opts:   opts,
		cfg:    cfg,
		logger: logger,
		stdin:  stdin,
		stdout: stdout,
	}
	defer c.close()
	return c.convert(ctx, input, output)
}

func newLogger(lc LogConfig, w io.Writer) (*docval.Logger, error) {
	level, err := lc.level()
	if err != nil {
		return nil, err
	}
	handlerOpts := &slog.HandlerOptions{Level: level}
	if lc.JSON {
		return docval.NewLogger(slog.NewJSONHandler(w, handlerOpts)), nil
	}
	return docval.NewLogger(slog.NewTextHandler(w, handlerOpts)), nil
}

type converter struct {
	opts   options
	cfg    *Config
	logger *docval.Logger
	stdin  io.Reader
	stdout io.Writer

	blobs blobstore.BlobStore
	store *docval.Store
}

func (c *converter) close() {
	if c.store != nil {
		_ = c.store.Close()
	}
}

func (c *converter) convert(ctx context.Context, input, output string) error {
	data, err := c.read(ctx, input)
	if err != nil {
		return err
	}

	in, err := inputCodec(c.opts.from, c.opts.strict, data)
	if err != nil {
		return err
	}
	c.logger.DebugContext(ctx, "input decoded",
		"input", input,
		"codec", in.Name(),
		"bytes", len(data),
	)

	if c.opts.disassemble {
		return c.dump(data, in, output)
	}

	v, err := in.Unmarshal(data)
	if err != nil {
		return fmt.Errorf("%s: %w", input, err)
	}

	out, err := c.outputCodec()
	if err != nil {
		return err
	}
	return c.write(ctx, output, v, out)
}

// inputCodec picks the codec for data. An explicit format still honors a
// compressed frame around the payload.
func inputCodec(from string, strict bool, data []byte) (codec.Codec, error) {
	detected := codec.Detect(data)
	frame, compressed := detected.(codec.Compressed)
	if compressed {
		detected = frame.Inner
	}

	var c codec.Codec
	switch from {
	case "auto", "":
		c = detected
		if _, ok := c.(codec.JSON); ok {
			c = codec.JSON{Strict: strict}
		}
	case "json":
		c = codec.JSON{Strict: strict}
	case "pickle":
		c = codec.Pickle{}
	case "cbor":
		c = codec.CBOR{}
	default:
		return nil, fmt.Errorf("unknown input format %q", from)
	}

	if compressed {
		return codec.Compressed{Inner: c, Compression: frame.Compression}, nil
	}
	return c, nil
}

func (c *converter) outputCodec() (codec.Codec, error) {
	var inner codec.Codec
	switch c.opts.to {
	case "json":
		flags, err := c.opts.textFlags()
		if err != nil {
			return nil, err
		}
		inner = textCodec{flags: flags}
	case "pickle":
		inner = codec.Pickle{}
	case "cbor":
		inner = codec.CBOR{}
	default:
		return nil, fmt.Errorf("unknown output format %q", c.opts.to)
	}

	comp, ok := codec.ParseCompression(c.opts.compress)
	if !ok {
		return nil, fmt.Errorf("unknown compression %q", c.opts.compress)
	}
	if comp == codec.CompressionNone {
		return inner, nil
	}
	return codec.Compressed{Inner: inner, Compression: comp}, nil
}

func (c *converter) dump(data []byte, in codec.Codec, output string) error {
	if frame, ok := in.(codec.Compressed); ok {
		raw, err := codec.Decompress(data)
		if err != nil {
			return err
		}
		data, in = raw, frame.Inner
	}
	if output != "" && output != "-" {
		return errors.New("--disassemble writes to stdout only")
	}
	switch in.(type) {
	case codec.Pickle:
		return pickle.Dump(c.stdout, data)
	case codec.CBOR:
		diag, err := codec.DiagnoseCBOR(data)
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(c.stdout, diag)
		return err
	}
	return fmt.Errorf("--disassemble needs a pickle or cbor input, got %s", in.Name())
}

func (c *converter) read(ctx context.Context, input string) ([]byte, error) {
	switch {
	case input == "-":
		return io.ReadAll(c.stdin)
	case strings.HasPrefix(input, storeScheme):
		blobs, err := c.blobStore(ctx)
		if err != nil {
			return nil, err
		}
		name := strings.TrimPrefix(input, storeScheme)
		data, err := blobstore.ReadAll(ctx, blobs, name)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", input, err)
		}
		return data, nil
	default:
		return os.ReadFile(input)
	}
}

func (c *converter) write(ctx context.Context, output string, v value.Value, out codec.Codec) error {
	switch {
	case output == "" || output == "-":
		data, err := out.Marshal(v)
		if err != nil {
			return err
		}
		if _, ok := out.(textCodec); ok {
			data = append(data, '\n')
		}
		_, err = c.stdout.Write(data)
		return err

	case strings.HasPrefix(output, storeScheme):
		store, err := c.documentStore(ctx, out)
		if err != nil {
			return err
		}
		return store.Save(ctx, strings.TrimPrefix(output, storeScheme), v)

	default:
		data, err := out.Marshal(v)
		if err != nil {
			return err
		}
		dir, name := filepath.Split(output)
		if dir == "" {
			dir = "."
		}
		if err := blobstore.NewLocalStore(dir).Put(ctx, name, data); err != nil {
			return err
		}
		c.logger.LogSave(ctx, output, len(data), nil)
		return nil
	}
}

func (c *converter) blobStore(ctx context.Context) (blobstore.BlobStore, error) {
	if c.blobs != nil {
		return c.blobs, nil
	}
	blobs, err := c.cfg.OpenStore(ctx)
	if err != nil {
		return nil, err
	}
	c.blobs = blobs
	return blobs, nil
}

func (c *converter) documentStore(ctx context.Context, out codec.Codec) (*docval.Store, error) {
	blobs, err := c.blobStore(ctx)
	if err != nil {
		return nil, err
	}
	c.store = docval.New(blobs,
		docval.WithCodec(out),
		docval.WithLogger(c.logger),
		docval.WithResourceConfig(c.cfg.ResourceConfig()),
		docval.WithCache(c.cfg.Store.CacheBytes),
	)
	return c.store, nil
}

// textCodec writes text with arbitrary serializer flags. Unmarshal accepts
// the extended grammar.
type textCodec struct {
	flags text.Flags
}

func (t textCodec) Marshal(v value.Value) ([]byte, error) { return text.Serialize(v, t.flags), nil }

func (t textCodec) Unmarshal(data []byte) (value.Value, error) { return text.Parse(data, false) }

func (t textCodec) Name() string { return "json" }
