package cmd

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/eykd/docint/internal/check"
	"github.com/eykd/docint/internal/validator"
)

func newValidateCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate <path>",
		Short: "Check one document's frontmatter, sections, links and code blocks",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			repoRoot, _ := cmd.Flags().GetString("repo-root")
			strict, _ := cmd.Flags().GetBool("strict")
			jsonMode, _ := cmd.Flags().GetBool("json")

			root, rel, err := a.locateDocument(repoRoot, args[0])
			if err != nil {
				return err
			}
			resolver, err := check.NewResolver(a.env.Fs, root)
			if err != nil {
				return err
			}
			res := validator.New(resolver, a.cfg.Rules()).ValidateFile(cmd.Context(), rel)

			if jsonMode {
				if err := json.NewEncoder(cmd.OutOrStdout()).Encode(res); err != nil {
					return fmt.Errorf("encoding result: %w", err)
				}
			} else {
				printFindings(cmd.OutOrStdout(), res.Path, res.Findings)
			}

			if strict && res.HasFindings() {
				return fmt.Errorf("%s: %d finding(s)", sanitizeText(res.Path), len(res.Findings))
			}
			return nil
		},
	}

	cmd.Flags().String("repo-root", "", "repository root for absolute links (default: current directory)")
	cmd.Flags().Bool("strict", false, "exit non-zero when the document has findings")
	cmd.Flags().Bool("json", false, "output the document result as JSON")
	return cmd
}

// locateDocument resolves the repository root and the document path
// relative to it. The document must exist inside the root.
func (a *app) locateDocument(repoRoot, doc string) (string, string, error) {
	root, err := a.repoRoot(repoRoot)
	if err != nil {
		return "", "", err
	}

	full, err := a.absPath(doc)
	if err != nil {
		return "", "", fmt.Errorf("resolving document path: %w", err)
	}
	if _, err := a.env.Fs.Stat(full); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", "", fmt.Errorf("document not found: %s", doc)
		}
		return "", "", fmt.Errorf("cannot stat document: %w", err)
	}
	rel, err := filepath.Rel(root, full)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", "", fmt.Errorf("document %s is outside repository root %s", doc, root)
	}
	return root, filepath.ToSlash(rel), nil
}

// repoRoot resolves the --repo-root flag value, defaulting to the current
// directory, and checks that it is a directory.
func (a *app) repoRoot(flag string) (string, error) {
	if flag == "" {
		flag = "."
	}
	root, err := a.absPath(flag)
	if err != nil {
		return "", fmt.Errorf("resolving repository root: %w", err)
	}
	info, err := a.env.Fs.Stat(root)
	if err != nil {
		return "", fmt.Errorf("repository root %s: %w", root, err)
	}
	if !info.IsDir() {
		return "", fmt.Errorf("repository root %s is not a directory", root)
	}
	return root, nil
}
