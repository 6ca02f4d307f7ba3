package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"launchhub/internal/model"
)

const version = "0.4.0"

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "launchctl",
		Short: "Launch readiness toolkit for local project files",
		Long: `launchctl computes insights, exports reports, scores recommendations and
renders document templates from project files on disk.

Project and progress files may be JSON or YAML.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(newInsightsCmd())
	root.AddCommand(newExportCmd())
	root.AddCommand(newRecommendCmd())
	root.AddCommand(newRenderCmd())
	return root
}

// readDoc decodes a JSON or YAML file into v. YAML goes through JSON so the
// json field names apply to both. "-" reads stdin.
func readDoc(cmd *cobra.Command, path string, v any) error {
	var (
		data []byte
		err  error
	)
	if path == "-" {
		data, err = io.ReadAll(cmd.InOrStdin())
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return fmt.Errorf("cannot read %s: %w", path, err)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		var raw any
		if err := yaml.Unmarshal(data, &raw); err != nil {
			return fmt.Errorf("%s: invalid YAML: %w", path, err)
		}
		if data, err = json.Marshal(raw); err != nil {
			return fmt.Errorf("%s: %w", path, err)
		}
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("%s: invalid document: %w", path, err)
	}
	return nil
}

// loadProject reads the project and, when progressPath is set, its progress.
func loadProject(cmd *cobra.Command, projectPath, progressPath string) (*model.Project, *model.UserProgress, error) {
	var p model.Project
	if err := readDoc(cmd, projectPath, &p); err != nil {
		return nil, nil, err
	}
	if progressPath == "" {
		return &p, nil, nil
	}
	var u model.UserProgress
	if err := readDoc(cmd, progressPath, &u); err != nil {
		return nil, nil, err
	}
	return &p, &u, nil
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
