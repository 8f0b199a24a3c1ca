// Command streamschema creates and drops stream tables, or prints the DDL for them.
//
// Usage:
//
//	streamschema [-config file.yaml] [-emit-only] [-debug] create -stream NAME [-metadata k1,k2]
//	streamschema [-config file.yaml] [-emit-only] [-debug] drop -stream NAME
//
// Without -config the connection comes from STREAMSCHEMA_DRIVER and STREAMSCHEMA_DSN,
// falling back to an in-memory SQLite database.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/AntonStoeckl/stream-tables-eventstore-go/eventstore"
	"github.com/AntonStoeckl/stream-tables-eventstore-go/eventstore/sqlengine"
)

const (
	commandCreate = "create"
	commandDrop   = "drop"
)

var (
	errMissingCommand = errors.New("missing command, expected create or drop")
	errUnknownCommand = errors.New("unknown command")
	errMissingStream  = errors.New("missing -stream")
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fmt.Fprintf(os.Stderr, "streamschema: %v\n", err)
		os.Exit(1)
	}
}

type schemaCommand struct {
	name       string
	streamName eventstore.StreamName
	sample     eventstore.Metadata
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	flags := flag.NewFlagSet("streamschema", flag.ContinueOnError)
	flags.SetOutput(stderr)

	configFile := flags.String("config", "", "Path to configuration file (YAML or JSON)")
	emitOnly := flags.Bool("emit-only", false, "Print the DDL instead of executing it")
	debug := flags.Bool("debug", false, "Log executed SQL")

	if err := flags.Parse(args); err != nil {
		return err
	}

	command, err := parseCommand(flags.Args(), stderr)
	if err != nil {
		return err
	}

	cfg, err := loadConfig(*configFile)
	if err != nil {
		return err
	}

	if *emitOnly {
		// DDL rendering only needs a store, not the configured database.
		cfg.Connection = DefaultConfig().Connection
	}

	level := slog.LevelInfo
	if *debug {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: level}))

	es, err := sqlengine.NewStreamStoreFromConfig(ctx, cfg.Connection, append(cfg.Options(), sqlengine.WithLogger(logger))...)
	if err != nil {
		return fmt.Errorf("failed to open stream store: %w", err)
	}
	defer func() {
		if closeErr := es.Close(); closeErr != nil {
			logger.Warn("closing the stream store failed", "error", closeErr.Error())
		}
	}()

	if *emitOnly {
		return emitDDL(es, command, stdout)
	}

	return executeDDL(ctx, es, command)
}

func parseCommand(args []string, stderr io.Writer) (schemaCommand, error) {
	if len(args) == 0 {
		return schemaCommand{}, errMissingCommand
	}

	name := args[0]
	if name != commandCreate && name != commandDrop {
		return schemaCommand{}, fmt.Errorf("%w: %q", errUnknownCommand, name)
	}

	flags := flag.NewFlagSet(name, flag.ContinueOnError)
	flags.SetOutput(stderr)

	stream := flags.String("stream", "", "Stream name, e.g. My\\Model\\User")
	metadata := flags.String("metadata", "", "Comma separated metadata keys (create only)")

	if err := flags.Parse(args[1:]); err != nil {
		return schemaCommand{}, err
	}

	streamName, err := eventstore.BuildStreamName(*stream)
	if err != nil {
		return schemaCommand{}, errors.Join(errMissingStream, err)
	}

	return schemaCommand{
		name:       name,
		streamName: streamName,
		sample:     sampleFromKeys(*metadata),
	}, nil
}

// sampleFromKeys builds a metadata sample whose keys become the metadata columns, in the given order.
func sampleFromKeys(keys string) eventstore.Metadata {
	var pairs []eventstore.MetadataPair

	for _, key := range strings.Split(keys, ",") {
		key = strings.TrimSpace(key)
		if key == "" {
			continue
		}

		pairs = append(pairs, eventstore.KV(key, ""))
	}

	return eventstore.BuildMetadata(pairs...)
}

func loadConfig(configFile string) (*Config, error) {
	cfg := DefaultConfig()

	if configFile != "" {
		var err error
		if cfg, err = LoadFromFile(configFile); err != nil {
			return nil, err
		}
	}

	if err := LoadFromEnv(cfg); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

func emitDDL(es *sqlengine.StreamStore, command schemaCommand, stdout io.Writer) error {
	var ddl string

	switch command.name {
	case commandCreate:
		var err error
		if ddl, err = es.CreateSchemaSQL(command.streamName, command.sample); err != nil {
			return err
		}
	case commandDrop:
		ddl = es.DropSchemaSQL(command.streamName)
	}

	_, err := fmt.Fprintf(stdout, "%s;\n", ddl)

	return err
}

func executeDDL(ctx context.Context, es *sqlengine.StreamStore, command schemaCommand) error {
	switch command.name {
	case commandCreate:
		return es.CreateSchemaFor(ctx, command.streamName, command.sample)
	case commandDrop:
		return es.DropSchemaFor(ctx, command.streamName)
	default:
		return fmt.Errorf("%w: %q", errUnknownCommand, command.name)
	}
}
