package main

import (
	"context"
	"fmt"
	"os"

	"github.com/chzyer/readline"
	"github.com/rs/xid"
	flag "maunium.net/go/mauflag"

	"maunium.net/go/wtserialize/config"
	"maunium.net/go/wtserialize/dom"
	"maunium.net/go/wtserialize/escape"
	"maunium.net/go/wtserialize/handler"
	"maunium.net/go/wtserialize/handler/wikidefault"
	"maunium.net/go/wtserialize/internal/logsetup"
	"maunium.net/go/wtserialize/serialize"
)

var configPath = flag.MakeFull("c", "config", "The path to your config file.", "config.yaml").String()
var writeExampleConfig = flag.MakeFull("e", "generate-example-config", "Save the example config to the config path and quit.", "false").Bool()
var inputPath = flag.MakeFull("i", "input", "Path to a DOM snapshot JSON file to serialize. With no value, starts an interactive REPL.", "").String()
var sourcePath = flag.MakeFull("s", "source", "Path to the original wikitext source, required for -selser.", "").String()
var selser = flag.MakeFull("m", "selser", "Run in selective-serialization mode.", "false").Bool()
var wantHelp, _ = flag.MakeHelpFlag()

func main() {
	flag.SetHelpTitles(
		"wtserialize - a wikitext DOM-to-wikitext serializer",
		"wtserialize [-c path] [-i path | REPL] [-s path] [-m]",
	)
	if err := flag.Parse(); err != nil {
		_, _ = fmt.Fprintln(os.Stderr, err)
		flag.PrintHelp()
		os.Exit(1)
	} else if *wantHelp {
		flag.PrintHelp()
		os.Exit(0)
	}

	if *writeExampleConfig {
		if err := config.WriteDefault(*configPath, config.ExampleYAML); err != nil {
			_, _ = fmt.Fprintln(os.Stderr, "wtserialize: write example config:", err)
			os.Exit(1)
		}
		return
	}

	cfg, _, err := config.Load(*configPath, config.ExampleYAML)
	if err != nil {
		_, _ = fmt.Fprintln(os.Stderr, "wtserialize:", err)
		os.Exit(1)
	}

	log, err := logsetup.Setup(cfg.Logging)
	if err != nil {
		_, _ = fmt.Fprintln(os.Stderr, "wtserialize:", err)
		os.Exit(1)
	}

	registry := handler.New()
	wikidefault.Register(registry)

	env := &serialize.Env{
		Oracle:        escape.DefaultOracle{},
		Registry:      registry,
		Log:           *log,
		ScrubWikitext: cfg.ScrubWikitext,
	}

	if *inputPath != "" {
		if err := runOnce(env, *inputPath, *sourcePath, cfg.Selser || *selser); err != nil {
			log.Error().Err(err).Msg("serialize failed")
			os.Exit(1)
		}
		return
	}

	if err := runREPL(env, cfg); err != nil {
		log.Error().Err(err).Msg("REPL exited with error")
		os.Exit(1)
	}
}

func runOnce(env *serialize.Env, path, sourcePath string, useSelser bool) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}
	body, err := dom.DecodeJSON(data)
	if err != nil {
		return err
	}
	if useSelser {
		src, err := os.ReadFile(sourcePath)
		if err != nil {
			return fmt.Errorf("read source %s: %w", sourcePath, err)
		}
		env.Source = string(src)
	}
	out, err := serializeWithID(env, body, useSelser)
	if err != nil {
		return err
	}
	fmt.Println(out)
	return nil
}

func serializeWithID(env *serialize.Env, body *dom.Node, useSelser bool) (string, error) {
	id := xid.New().String()
	log := env.Log.With().Str("serialize_id", id).Logger()
	scoped := *env
	scoped.Log = log
	ctx := log.WithContext(context.Background())
	return serialize.Serialize(ctx, body, serialize.Options{Selser: useSelser, Env: &scoped})
}

// runREPL implements the -i-less interactive mode: read one JSON DOM
// snapshot per line from readline and print its serialization; a snapshot
// spanning several lines is not supported. Grounded on the teacher's
// hicli/hitest readline loop.
func runREPL(env *serialize.Env, cfg *config.Config) error {
	rl, err := readline.New("dom> ")
	if err != nil {
		return fmt.Errorf("start readline: %w", err)
	}
	defer func() { _ = rl.Close() }()

	for {
		line, err := rl.Readline()
		if err != nil {
			return nil
		}
		if line == "" {
			continue
		}
		body, err := dom.DecodeJSON([]byte(line))
		if err != nil {
			fmt.Fprintln(os.Stderr, "parse error:", err)
			continue
		}
		out, err := serializeWithID(env, body, cfg.Selser)
		if err != nil {
			fmt.Fprintln(os.Stderr, "serialize error:", err)
			continue
		}
		fmt.Println(out)
	}
}
