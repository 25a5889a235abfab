// Package main is vastctl, a thin cobra CLI shell over the storage core:
// seal an active partition from a CSV file, query a sealed partition with
// a single predicate, and report a partition's status. The core's
// expression syntax is in-memory only (§4.7); this CLI exposes one
// predicate at a time rather than a textual query language.
package main

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/solarflare-labs/vastore/internal/engine"
	"github.com/solarflare-labs/vastore/internal/predicate"
	"github.com/solarflare-labs/vastore/internal/query"
	"github.com/solarflare-labs/vastore/internal/schema"
	"github.com/solarflare-labs/vastore/internal/table"
	"github.com/solarflare-labs/vastore/internal/value"
	"github.com/solarflare-labs/vastore/pkg/accountant"
	"github.com/solarflare-labs/vastore/pkg/config"
	pkgerrors "github.com/solarflare-labs/vastore/pkg/errors"
	"github.com/solarflare-labs/vastore/pkg/logger"
	readercsv "github.com/solarflare-labs/vastore/pkg/reader/csv"
	"github.com/solarflare-labs/vastore/pkg/status"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "vastctl",
		Short: "Operate a vastore data directory",
	}

	rootCmd.AddCommand(sealCmd())
	rootCmd.AddCommand(queryCmd())
	rootCmd.AddCommand(statusCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

type sealFlags struct {
	dataDir    string
	configFile string
	layout     string
	fields     string
	csvFile    string
	capacity   int
}

func sealCmd() *cobra.Command {
	flags := &sealFlags{}
	cmd := &cobra.Command{
		Use:   "seal <csv-file>",
		Short: "Ingest a CSV file into a fresh partition and seal it",
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			flags.csvFile = args[0]
			return runSeal(flags)
		},
	}

	cmd.Flags().StringVar(&flags.dataDir, "data-dir", "", "Override the configured data directory")
	cmd.Flags().StringVar(&flags.configFile, "config", "", "Path to a vastore.toml configuration file")
	cmd.Flags().StringVar(&flags.layout, "layout", "", "Record type name the CSV rows belong to (required)")
	cmd.Flags().StringVar(&flags.fields, "fields", "",
		"Comma-separated name:kind pairs describing the CSV header, e.g. ts:time,addr:address,port:count (required)")
	cmd.Flags().IntVar(&flags.capacity, "capacity", 0, "Override the configured partition row capacity")

	return cmd
}

func runSeal(flags *sealFlags) error {
	if flags.layout == "" || flags.fields == "" {
		return fmt.Errorf("--layout and --fields are required")
	}

	rt, err := parseFields(flags.fields)
	if err != nil {
		return err
	}

	opts, err := loadOptions(flags.configFile, flags.dataDir, flags.capacity)
	if err != nil {
		return err
	}

	ctx := context.Background()
	log := logger.NewDevelopment("vastctl")
	store, err := engine.New(ctx, engine.Config{Options: opts, Logger: log})
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer store.Close()

	f, err := os.Open(flags.csvFile)
	if err != nil {
		return fmt.Errorf("open csv file: %w", err)
	}
	defer f.Close()

	acct := accountant.NewInProc(64)
	defer acct.Close()

	sc := schema.New()
	if err := sc.Add(flags.layout, rt); err != nil {
		return err
	}

	csvReader := readercsv.New(flags.layout, f, acct)
	csvReader.SetSchema(sc)

	active := store.NewPartition()
	defer active.Close()
	sealedDir := ""
	_, readErr := csvReader.Read(ctx, 1<<30, 4096, func(slice *table.Slice) error {
		sealed, dir, err := active.Add(ctx, slice)
		if err != nil {
			return err
		}
		if sealed {
			sealedDir = dir
		}
		return nil
	})
	if readErr != nil && !pkgerrors.IsEndOfInput(readErr) {
		return fmt.Errorf("read csv: %w", readErr)
	}

	if sealedDir == "" {
		dir, err := active.Seal(ctx)
		if err != nil {
			return fmt.Errorf("seal: %w", err)
		}
		sealedDir = dir
	}

	fmt.Printf("partition %s sealed at %s\n", active.UUID(), sealedDir)
	return nil
}

// parseFields turns a "name:kind,name:kind" description into a record
// type. vastctl has no schema-inference step (out of scope, §1): the
// caller names each CSV column's kind explicitly.
func parseFields(spec string) (schema.Type, error) {
	parts := strings.Split(spec, ",")
	fields := make([]schema.Field, 0, len(parts))
	for _, part := range parts {
		nameKind := strings.SplitN(part, ":", 2)
		if len(nameKind) != 2 {
			return schema.Type{}, fmt.Errorf("invalid field spec %q, want name:kind", part)
		}
		kind, err := parseKind(nameKind[1])
		if err != nil {
			return schema.Type{}, err
		}
		fields = append(fields, schema.Field{Name: nameKind[0], Type: schema.Scalar(kind)})
	}
	return schema.RecordOf(fields...), nil
}

func parseKind(s string) (schema.Kind, error) {
	switch s {
	case "bool":
		return schema.KindBool, nil
	case "integer":
		return schema.KindInteger, nil
	case "count":
		return schema.KindCount, nil
	case "real":
		return schema.KindReal, nil
	case "string":
		return schema.KindString, nil
	case "pattern":
		return schema.KindPattern, nil
	case "address":
		return schema.KindAddress, nil
	case "subnet":
		return schema.KindSubnet, nil
	case "time":
		return schema.KindTime, nil
	case "duration":
		return schema.KindDuration, nil
	default:
		return 0, fmt.Errorf("unknown field kind %q", s)
	}
}

type queryFlags struct {
	dataDir    string
	configFile string
	partition  string
	field      string
	op         string
	value      string
	valueType  string
}

func queryCmd() *cobra.Command {
	flags := &queryFlags{}
	cmd := &cobra.Command{
		Use:   "query",
		Short: "Evaluate a single predicate against a sealed partition",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			return runQuery(flags)
		},
	}

	cmd.Flags().StringVar(&flags.dataDir, "data-dir", "", "Override the configured data directory")
	cmd.Flags().StringVar(&flags.configFile, "config", "", "Path to a vastore.toml configuration file")
	cmd.Flags().StringVar(&flags.partition, "partition", "", "Partition uuid (required)")
	cmd.Flags().StringVar(&flags.field, "field", "", "Dotted field path, e.g. zeek.conn.port (required)")
	cmd.Flags().StringVar(&flags.op, "op", "==", "Operator: == != < <= > >=")
	cmd.Flags().StringVar(&flags.value, "value", "", "Operand, parsed per --value-type")
	cmd.Flags().StringVar(&flags.valueType, "value-type", "string", "Operand type: string|integer|count|real|bool|address|time|duration")

	return cmd
}

func runQuery(flags *queryFlags) error {
	if flags.partition == "" || flags.field == "" {
		return fmt.Errorf("--partition and --field are required")
	}

	id, err := uuid.Parse(flags.partition)
	if err != nil {
		return fmt.Errorf("invalid --partition: %w", err)
	}

	op, err := parseOp(flags.op)
	if err != nil {
		return err
	}

	val, err := parseValue(flags.valueType, flags.value)
	if err != nil {
		return err
	}

	opts, err := loadOptions(flags.configFile, flags.dataDir, 0)
	if err != nil {
		return err
	}

	ctx := context.Background()
	log := logger.NewDevelopment("vastctl")
	store, err := engine.New(ctx, engine.Config{Options: opts, Logger: log})
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer store.Close()

	expr := query.Predicate{Extractor: query.FieldExtractor{Path: flags.field}, Op: op, Value: val}

	results, err := store.Query(ctx, id, expr)
	if err != nil {
		return fmt.Errorf("query: %w", err)
	}

	matched := 0
	for _, r := range results {
		matched += len(r.Mask())
	}
	fmt.Printf("matched %d row(s) across %d slice(s)\n", matched, len(results))
	return nil
}

type statusFlags struct {
	dataDir    string
	configFile string
	partition  string
	verbosity  string
}

func statusCmd() *cobra.Command {
	flags := &statusFlags{}
	cmd := &cobra.Command{
		Use:   "status",
		Short: "Report a partition's status record",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			return runStatus(flags)
		},
	}

	cmd.Flags().StringVar(&flags.dataDir, "data-dir", "", "Override the configured data directory")
	cmd.Flags().StringVar(&flags.configFile, "config", "", "Path to a vastore.toml configuration file")
	cmd.Flags().StringVar(&flags.partition, "partition", "", "Partition uuid (required)")
	cmd.Flags().StringVar(&flags.verbosity, "verbosity", "terse", "terse|info|detailed|debug")

	return cmd
}

func runStatus(flags *statusFlags) error {
	if flags.partition == "" {
		return fmt.Errorf("--partition is required")
	}

	id, err := uuid.Parse(flags.partition)
	if err != nil {
		return fmt.Errorf("invalid --partition: %w", err)
	}

	v, err := parseVerbosity(flags.verbosity)
	if err != nil {
		return err
	}

	opts, err := loadOptions(flags.configFile, flags.dataDir, 0)
	if err != nil {
		return err
	}

	ctx := context.Background()
	log := logger.NewDevelopment("vastctl")
	store, err := engine.New(ctx, engine.Config{Options: opts, Logger: log})
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer store.Close()

	rec, err := store.Status(ctx, id, v)
	if err != nil {
		return fmt.Errorf("load partition: %w", err)
	}

	r, _ := rec.Record()
	for i, name := range r.Names {
		fmt.Printf("%s: %s\n", name, printValue(r.Values[i]))
	}
	return nil
}

func loadOptions(configFile, dataDirOverride string, capacityOverride int) (config.Options, error) {
	var opts []config.OptionFunc
	if dataDirOverride != "" {
		opts = append(opts, config.WithDataDir(dataDirOverride))
	}
	if capacityOverride > 0 {
		opts = append(opts, config.WithPartitionCapacity(capacityOverride))
	}
	return config.Load(configFile, opts...)
}

func parseOp(s string) (predicate.Op, error) {
	switch s {
	case "==":
		return predicate.Equal, nil
	case "!=":
		return predicate.NotEqual, nil
	case "<":
		return predicate.Less, nil
	case "<=":
		return predicate.LessEqual, nil
	case ">":
		return predicate.Greater, nil
	case ">=":
		return predicate.GreaterEqual, nil
	case "in":
		return predicate.In, nil
	case "has":
		return predicate.Has, nil
	default:
		return 0, fmt.Errorf("unknown operator %q", s)
	}
}

func parseValue(valueType, text string) (value.Data, error) {
	switch valueType {
	case "string":
		return value.String(text), nil
	case "integer":
		i, err := strconv.ParseInt(text, 10, 64)
		if err != nil {
			return value.Data{}, err
		}
		return value.Integer(i), nil
	case "count":
		u, err := strconv.ParseUint(text, 10, 64)
		if err != nil {
			return value.Data{}, err
		}
		return value.Count(u), nil
	case "real":
		f, err := strconv.ParseFloat(text, 64)
		if err != nil {
			return value.Data{}, err
		}
		return value.Real(f), nil
	case "bool":
		b, err := strconv.ParseBool(text)
		if err != nil {
			return value.Data{}, err
		}
		return value.Bool(b), nil
	case "address":
		return value.ParseAs(value.TagAddress, text)
	case "time":
		return value.ParseAs(value.TagTime, text)
	case "duration":
		return value.ParseAs(value.TagDuration, text)
	default:
		return value.Data{}, fmt.Errorf("unknown --value-type %q", valueType)
	}
}

func parseVerbosity(s string) (status.Verbosity, error) {
	switch s {
	case "terse":
		return status.Terse, nil
	case "info":
		return status.Info, nil
	case "detailed":
		return status.Detailed, nil
	case "debug":
		return status.Debug, nil
	default:
		return 0, fmt.Errorf("unknown --verbosity %q", s)
	}
}

func printValue(v value.Data) string {
	if s, ok := v.String(); ok {
		return s
	}
	if u, ok := v.Count(); ok {
		return strconv.FormatUint(u, 10)
	}
	if b, ok := v.Bool(); ok {
		return strconv.FormatBool(b)
	}
	return fmt.Sprintf("%v", v)
}
