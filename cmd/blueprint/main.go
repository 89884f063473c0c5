package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/zeusync/blueprint/internal/config"
	"github.com/zeusync/blueprint/internal/core/document"
	"github.com/zeusync/blueprint/internal/core/maps"
	"github.com/zeusync/blueprint/internal/core/models"
	"github.com/zeusync/blueprint/internal/injector"
	"github.com/zeusync/blueprint/pkg/sequence"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

type rootFlags struct {
	configPath string
	prototypes []string
	level      string
	mapInit    bool
}

func newRootCmd() *cobra.Command {
	flags := &rootFlags{}
	root := &cobra.Command{
		Use:          "blueprint",
		Short:        "Load prototype and map documents into an entity graph",
		SilenceUsage: true,
	}
	root.PersistentFlags().StringVar(&flags.configPath, "config", "", "YAML config file")
	root.PersistentFlags().StringSliceVar(&flags.prototypes, "prototypes", nil, "prototype files (overrides config)")
	root.PersistentFlags().StringVar(&flags.level, "log-level", "", "debug, info, warn, error or silent (overrides config)")
	root.PersistentFlags().BoolVar(&flags.mapInit, "map-init", false, "run map init on maps saved before it")

	root.AddCommand(newLoadCmd(flags), newPrototypesCmd(flags))
	return root
}

func newLoadCmd(flags *rootFlags) *cobra.Command {
	var tree bool
	cmd := &cobra.Command{
		Use:     "load [map]",
		Short:   "Load one map and print a summary",
		Example: "blueprint load --prototypes protos.yml station.yml --tree",
		Args:    cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := flags.config()
			if err != nil {
				return err
			}
			if len(args) == 1 {
				cfg.Map = args[0]
			}
			if cfg.Map == "" {
				return errors.New("no map given")
			}

			loader, err := prepare(cfg)
			if err != nil {
				return err
			}
			doc, err := readDocument(cfg.Map)
			if err != nil {
				return err
			}
			mapID := loader.CreateMap()
			handle, err := loader.LoadMap(mapID, doc)
			if err != nil {
				return err
			}
			m, err := loader.Map(mapID)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			printSummary(out, loader, m, handle)
			if tree {
				for _, root := range m.Roots() {
					printTree(out, root, 0)
				}
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&tree, "tree", false, "print the entity hierarchy")
	return cmd
}

func newPrototypesCmd(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "prototypes",
		Short: "Check prototype files and list the registered ids",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := flags.config()
			if err != nil {
				return err
			}
			loader, err := prepare(cfg)
			if err != nil {
				return err
			}
			if err := loader.Store().Validate(); err != nil {
				return err
			}
			for _, id := range loader.Store().IDs() {
				fmt.Fprintln(cmd.OutOrStdout(), id)
			}
			return nil
		},
	}
}

// config reads the config file, if any, and applies flag overrides.
func (f *rootFlags) config() (config.Config, error) {
	cfg := config.Default()
	if f.configPath != "" {
		var err error
		if cfg, err = config.LoadFile(f.configPath); err != nil {
			return config.Config{}, err
		}
	}
	if len(f.prototypes) > 0 {
		cfg.Prototypes = f.prototypes
	}
	if f.level != "" {
		cfg.LogLevel = f.level
	}
	if f.mapInit {
		cfg.RunMapInit = true
	}
	return cfg, cfg.Validate()
}

// prepare builds a loader and registers every configured prototype file.
func prepare(cfg config.Config) (*maps.Loader, error) {
	loader, err := injector.InitializeLoader(cfg)
	if err != nil {
		return nil, err
	}
	var docs []document.Value
	for _, path := range cfg.Prototypes {
		read, err := readDocuments(path)
		if err != nil {
			return nil, err
		}
		docs = append(docs, read...)
	}
	if err := loader.LoadPrototypes(docs...); err != nil {
		return nil, err
	}
	return loader, nil
}

func readDocuments(path string) ([]document.Value, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	docs, err := document.DecodeYAML(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return docs, nil
}

func readDocument(path string) (document.Value, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	doc, err := document.ParseYAML(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return doc, nil
}

func printSummary(w io.Writer, loader *maps.Loader, m *maps.Map, h *maps.GridHandle) {
	fmt.Fprintf(w, "map %d %q by %q\n", m.ID, m.Name, m.Author)
	fmt.Fprintf(w, "  entities: %d\n", h.Entities)
	fmt.Fprintf(w, "  map init: %t\n", h.MapInitialized)
	fmt.Fprintf(w, "  checksum: %016x\n", h.Checksum)
	byProto := sequence.GroupBy(sequence.From(m.Entities()), (*models.Entity).Prototype)
	protos := make([]string, 0, len(byProto))
	for id := range byProto {
		if id != "" {
			protos = append(protos, id)
		}
	}
	sort.Strings(protos)
	for _, id := range protos {
		fmt.Fprintf(w, "  prototype %s: %d\n", id, len(byProto[id]))
	}
	for _, g := range h.Grids {
		owner, ok := loader.Entity(g.Owner())
		if !ok {
			continue
		}
		fmt.Fprintf(w, "  grid %d: owner uid %d, %d chunks, %d entities\n", g.Index(), owner.Uid(), g.ChunkCount(), len(g.Entities()))
	}
}

func printTree(w io.Writer, e *models.Entity, depth int) {
	label := e.Prototype()
	if label == "" {
		label = "-"
	}
	fmt.Fprintf(w, "%suid %d %s [%s]\n", strings.Repeat("  ", depth), e.Uid(), label, strings.Join(e.ComponentNames(), ", "))
	for _, c := range e.Children() {
		printTree(w, c, depth+1)
	}
}
