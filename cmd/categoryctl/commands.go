package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/media-shelf/backend/internal/application/usecase/category"
	"github.com/media-shelf/backend/internal/domain/entity"
	"github.com/media-shelf/backend/internal/integration/persistence/model"
)

func migrateCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the category tables",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if _, err := a.connect(); err != nil {
				return err
			}
			if err := a.database.AutoMigrate(model.AllModels()...); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "migrations applied")
			return nil
		},
	}
}

func createCmd(a *app) *cobra.Command {
	var parent string

	cmd := &cobra.Command{
		Use:   "create <owner-id> <name>",
		Short: "Append a category as the last root or the last child of --parent",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ownerID, err := parseID("owner", args[0])
			if err != nil {
				return err
			}

			input := category.CreateCategoryInput{OwnerID: ownerID, Name: args[1]}
			if parent != "" {
				parentID, err := parseID("parent", parent)
				if err != nil {
					return err
				}
				input.ParentID = &parentID
			}

			injector, err := a.connect()
			if err != nil {
				return err
			}
			output, err := injector.Categories.Create.Execute(cmd.Context(), input)
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\t%s\n", output.Category.ID, output.Category.Path, output.Category.Name)
			return nil
		},
	}
	cmd.Flags().StringVar(&parent, "parent", "", "parent category ID")

	return cmd
}

func treeCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "tree <owner-id>",
		Short: "Print an owner's category forest",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ownerID, err := parseID("owner", args[0])
			if err != nil {
				return err
			}

			injector, err := a.connect()
			if err != nil {
				return err
			}
			output, err := injector.Categories.Tree.Execute(cmd.Context(), category.GetCategoryTreeInput{OwnerID: ownerID})
			if err != nil {
				return err
			}

			printTree(cmd.OutOrStdout(), output.Roots)
			return nil
		},
	}
}

func pathCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "path <owner-id> <category-id>",
		Short: "Print the chain of categories from the root down to a category",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ownerID, err := parseID("owner", args[0])
			if err != nil {
				return err
			}
			categoryID, err := parseID("category", args[1])
			if err != nil {
				return err
			}

			injector, err := a.connect()
			if err != nil {
				return err
			}
			output, err := injector.Categories.Path.Execute(cmd.Context(), category.GetCategoryPathInput{
				OwnerID:    ownerID,
				CategoryID: categoryID,
			})
			if err != nil {
				return err
			}

			chain := make([]string, len(output.Categories))
			for i, c := range output.Categories {
				chain[i] = c.Name
			}
			fmt.Fprintln(cmd.OutOrStdout(), strings.Join(chain, " > "))
			return nil
		},
	}
}

func tokenCmd(a *app) *cobra.Command {
	var email string

	cmd := &cobra.Command{
		Use:   "token <owner-id>",
		Short: "Issue a development access token for an owner",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ownerID, err := parseID("owner", args[0])
			if err != nil {
				return err
			}
			if a.cfg.Server.Environment == "production" {
				return fmt.Errorf("refusing to issue tokens in production")
			}

			injector, err := a.connect()
			if err != nil {
				return err
			}
			token, err := injector.TokenService.GenerateAccessToken(cmd.Context(), ownerID, email)
			if err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "email claim to embed")

	return cmd
}

func parseID(what, raw string) (uuid.UUID, error) {
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, fmt.Errorf("invalid %s id %q: %w", what, raw, err)
	}
	return id, nil
}

// printTree writes one line per node, indented by depth.
func printTree(w io.Writer, nodes []*entity.CategoryNode) {
	for _, node := range nodes {
		fmt.Fprintf(w, "%s%-8s %s\n", strings.Repeat("  ", node.Level), node.Path, node.Name)
		printTree(w, node.Children)
	}
}
