package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"text/tabwriter"

	"github.com/sifan077/CharacterVault/config"
	"github.com/sifan077/CharacterVault/internal/app/model"
	"github.com/sifan077/CharacterVault/internal/client/altbackend"
	"github.com/sifan077/CharacterVault/internal/client/api"
	"github.com/sifan077/CharacterVault/internal/client/collection"
	"github.com/sifan077/CharacterVault/internal/client/rickmorty"
	"github.com/sifan077/CharacterVault/internal/state"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// cli carries the resolved base addresses shared by every subcommand.
type cli struct {
	cfg    config.ClientConfig
	logger *zap.Logger
	asJSON bool
}

func newRootCmd(cfg config.ClientConfig, log *zap.Logger) *cobra.Command {
	if log == nil {
		log = zap.NewNop()
	}
	c := &cli{cfg: cfg, logger: log}

	root := &cobra.Command{
		Use:          "charactersctl",
		Short:        "Browse and create characters across the configured sources",
		SilenceUsage: true,
	}
	root.PersistentFlags().StringVar(&c.cfg.LocalBaseURL, "local-url", cfg.LocalBaseURL, "collection service address")
	root.PersistentFlags().StringVar(&c.cfg.ExternalBaseURL, "external-url", cfg.ExternalBaseURL, "public character API address")
	root.PersistentFlags().StringVar(&c.cfg.AlternateBaseURL, "alternate-url", cfg.AlternateBaseURL, "alternate backend address")
	root.PersistentFlags().DurationVar(&c.cfg.Timeout, "timeout", cfg.Timeout, "per-request timeout")
	root.PersistentFlags().BoolVar(&c.asJSON, "json", false, "print JSON instead of a table")

	root.AddCommand(c.listCmd(), c.showCmd(), c.searchCmd(), c.createCmd())
	return root
}

func (c *cli) options() []api.Option {
	return []api.Option{api.WithTimeout(c.cfg.Timeout), api.WithUserAgent("charactersctl")}
}

func (c *cli) store() *state.Store {
	return state.New(state.Sources{
		External:  rickmorty.New(c.cfg.ExternalBaseURL, c.options()...),
		Local:     collection.New(c.cfg.LocalBaseURL, c.options()...),
		Alternate: altbackend.New(c.cfg.AlternateBaseURL, c.options()...),
	}, state.Options{Logger: c.logger})
}

func (c *cli) listCmd() *cobra.Command {
	var (
		source string
		page   int
	)
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List characters from one data source or all of them",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			mode, err := state.ParseDataSource(source)
			if err != nil {
				return err
			}
			st := c.store()
			if err := st.SetDataSource(cmd.Context(), mode); err != nil {
				return err
			}
			if page > 1 {
				if err := st.GoToPage(cmd.Context(), page); err != nil {
					return err
				}
			}
			snap := st.Snapshot()
			if err := c.print(cmd.OutOrStdout(), snap.Displayed()); err != nil {
				return err
			}
			if state.PlanFor(mode).LoadExternal && !c.asJSON {
				fmt.Fprintf(cmd.ErrOrStderr(), "page %d of %d\n", snap.CurrentPage, snap.TotalPages)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&source, "source", string(state.SourceAll), "data source: all, api, local or go")
	cmd.Flags().IntVar(&page, "page", 1, "external API page")
	return cmd
}

func (c *cli) showCmd() *cobra.Command {
	var source string
	cmd := &cobra.Command{
		Use:   "show <id>",
		Short: "Show one character",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil || id < 1 {
				return fmt.Errorf("id must be a positive integer, got %q", args[0])
			}
			mode, err := state.ParseDataSource(source)
			if err != nil {
				return err
			}

			var resp api.Response[model.Character]
			switch mode {
			case state.SourceExternal:
				resp = rickmorty.New(c.cfg.ExternalBaseURL, c.options()...).GetCharacter(cmd.Context(), id)
			case state.SourceAlternate:
				resp = altbackend.New(c.cfg.AlternateBaseURL, c.options()...).Get(cmd.Context(), id)
			default:
				resp = collection.New(c.cfg.LocalBaseURL, c.options()...).Get(cmd.Context(), id)
			}
			character, err := resp.Unwrap()
			if err != nil {
				return err
			}
			return c.print(cmd.OutOrStdout(), []model.Character{character})
		},
	}
	cmd.Flags().StringVar(&source, "source", string(state.SourceLocal), "data source: api, local or go")
	return cmd
}

func (c *cli) searchCmd() *cobra.Command {
	var page int
	cmd := &cobra.Command{
		Use:   "search <name>",
		Short: "Search the public character API by name",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			result, err := rickmorty.New(c.cfg.ExternalBaseURL, c.options()...).
				SearchCharacters(cmd.Context(), args[0], page).Unwrap()
			if err != nil {
				return err
			}
			return c.print(cmd.OutOrStdout(), result.Results)
		},
	}
	cmd.Flags().IntVar(&page, "page", 1, "result page")
	return cmd
}

func (c *cli) createCmd() *cobra.Command {
	var file string
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a character in the collection from a JSON file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			req, err := readRequest(cmd.InOrStdin(), file)
			if err != nil {
				return err
			}
			created, err := c.store().CreateLocal(cmd.Context(), req)
			if err != nil {
				var apiErr *api.Error
				if errors.As(err, &apiErr) && apiErr.Details != nil {
					details, _ := json.Marshal(apiErr.Details)
					fmt.Fprintf(cmd.ErrOrStderr(), "details: %s\n", details)
				}
				return err
			}
			return c.print(cmd.OutOrStdout(), []model.Character{*created})
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "-", "request JSON file, - for stdin")
	return cmd
}

func readRequest(stdin io.Reader, file string) (*model.CreateCharacterRequest, error) {
	r := stdin
	if file != "-" {
		f, err := os.Open(file)
		if err != nil {
			return nil, fmt.Errorf("open request: %w", err)
		}
		defer f.Close()
		r = f
	}
	var req model.CreateCharacterRequest
	if err := json.NewDecoder(r).Decode(&req); err != nil {
		return nil, fmt.Errorf("decode request: %w", err)
	}
	return &req, nil
}

func (c *cli) print(w io.Writer, characters []model.Character) error {
	if c.asJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(characters)
	}
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tSTATUS\tSPECIES\tGENDER\tORIGIN")
	for _, ch := range characters {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\t%s\n", ch.ID, ch.Name, ch.Status, ch.Species, ch.Gender, ch.Origin.Name)
	}
	return tw.Flush()
}
