package main

import (
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
)

var exportDir string

var exportCmd = &cobra.Command{
	Use:   "export <id>",
	Short: "Export robot login data to <wechat_id>.json",
	Args:  cobra.ExactArgs(1),
	RunE:  runExport,
}

var importCmd = &cobra.Command{
	Use:   "import <id> <file.json>",
	Short: "Import robot login data from a JSON file",
	Args:  cobra.ExactArgs(2),
	RunE:  runImport,
}

func init() {
	exportCmd.Flags().StringVarP(&exportDir, "output", "o", ".", "directory to write the file into")
	rootCmd.AddCommand(exportCmd, importCmd)
}

func runExport(cmd *cobra.Command, args []string) error {
	id, err := parseID(args[0])
	if err != nil {
		return err
	}
	ctx, cancel := commandContext(cmd)
	defer cancel()

	sink := &fileSink{dir: exportDir}
	if err := services.Menus.Menu(id).ExportLoginData(ctx, sink); err != nil {
		return err
	}
	printf("%s\n", sink.path)
	return nil
}

func runImport(cmd *cobra.Command, args []string) error {
	id, err := parseID(args[0])
	if err != nil {
		return err
	}
	data, err := os.ReadFile(args[1])
	if err != nil {
		return err
	}
	ctx, cancel := commandContext(cmd)
	defer cancel()

	menu := services.Menus.Menu(id)
	if err := menu.SelectImportFile(ctx, filepath.Base(args[1]), data); err != nil {
		return err
	}
	return menu.ImportLoginData(ctx)
}
