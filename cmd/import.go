package main

import (
	"path/filepath"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/proofpanel/proofpanel/internal/importer"
)

var importCmd = &cobra.Command{
	Use:   "import <file.xlsx|file.csv>",
	Short: "Import a respondent roster from a spreadsheet",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		a, err := initApp(ctx)
		if err != nil {
			return err
		}
		defer a.Close()

		im := importer.New(a.store)
		path := args[0]

		var res *importer.Result
		switch strings.ToLower(filepath.Ext(path)) {
		case ".xlsx":
			res, err = im.ImportXLSX(ctx, path)
		case ".csv":
			res, err = im.ImportCSV(ctx, path)
		default:
			return eris.Errorf("unsupported file type: %s", path)
		}
		if err != nil {
			return err
		}

		zap.L().Info("import finished",
			zap.String("file", path),
			zap.Int("imported", res.Imported),
			zap.Int("skipped", res.Skipped),
		)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(importCmd)
}
